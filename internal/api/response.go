// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/chronographus/internal/logging"
	"github.com/tomtom215/chronographus/internal/models"
	"github.com/tomtom215/chronographus/internal/timeline"
	"github.com/tomtom215/chronographus/internal/validation"
)

// Response is the standard envelope for every API endpoint.
type Response struct {
	// Success indicates whether the request was handled.
	Success bool `json:"success"`

	// Data carries the payload (null on error).
	Data interface{} `json:"data,omitempty"`

	// ErrorCode is the stable machine-readable failure kind.
	ErrorCode string `json:"error_code,omitempty"`

	// ErrorMessage is the human-readable failure description.
	ErrorMessage string `json:"error_message,omitempty"`

	// Details carries structured error context, e.g. per-field
	// validation messages.
	Details interface{} `json:"details,omitempty"`

	// Meta carries response metadata.
	Meta *Meta `json:"meta,omitempty"`
}

// Meta is the response metadata block.
type Meta struct {
	// RequestID is the unique request identifier for tracing.
	RequestID string `json:"request_id,omitempty"`

	// Timestamp is when the response was generated.
	Timestamp time.Time `json:"timestamp"`

	// DurationMs is the request processing time in milliseconds.
	DurationMs int64 `json:"duration_ms,omitempty"`

	// Pagination is present on paginated list responses.
	Pagination *models.PageInfo `json:"pagination,omitempty"`
}

// Stable wire codes. The first six map one-to-one onto the timeline
// sentinel errors; NOT_FOUND covers unmatched routes.
const (
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeRateLimited      = "RATE_LIMITED"
	CodeInvalidArgument  = "INVALID_ARGUMENT"
	CodeDeadlineExceeded = "DEADLINE_EXCEEDED"
	CodeInternal         = "INTERNAL"
	CodeUnavailable      = "UNAVAILABLE"
	CodeNotFound         = "NOT_FOUND"
)

// ResponseWriter writes standardized envelopes for one request.
type ResponseWriter struct {
	w         http.ResponseWriter
	r         *http.Request
	startTime time.Time
}

// NewResponseWriter creates a response writer for the request.
func NewResponseWriter(w http.ResponseWriter, r *http.Request) *ResponseWriter {
	return &ResponseWriter{
		w:         w,
		r:         r,
		startTime: time.Now(),
	}
}

// Success writes a 200 envelope with data.
func (rw *ResponseWriter) Success(data interface{}) {
	rw.SuccessWithPagination(data, nil)
}

// SuccessWithPagination writes a 200 envelope with data and a
// pagination block.
func (rw *ResponseWriter) SuccessWithPagination(data interface{}, pagination *models.PageInfo) {
	rw.writeJSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
		Meta: &Meta{
			RequestID:  logging.RequestID(rw.r.Context()),
			Timestamp:  time.Now().UTC(),
			DurationMs: time.Since(rw.startTime).Milliseconds(),
			Pagination: pagination,
		},
	})
}

// Error writes an error envelope with the given status and code.
func (rw *ResponseWriter) Error(statusCode int, code, message string) {
	rw.ErrorWithDetails(statusCode, code, message, nil)
}

// ErrorWithDetails writes an error envelope with structured context.
func (rw *ResponseWriter) ErrorWithDetails(statusCode int, code, message string, details interface{}) {
	rw.writeJSON(statusCode, Response{
		Success:      false,
		ErrorCode:    code,
		ErrorMessage: message,
		Details:      details,
		Meta: &Meta{
			RequestID:  logging.RequestID(rw.r.Context()),
			Timestamp:  time.Now().UTC(),
			DurationMs: time.Since(rw.startTime).Milliseconds(),
		},
	})
}

// FromError maps a pipeline error onto the wire: the sentinel kind
// determines the status and code, the wrapped message rides along.
func (rw *ResponseWriter) FromError(err error) {
	var ve *validation.RequestValidationError
	if errors.As(err, &ve) {
		rw.ErrorWithDetails(http.StatusBadRequest, CodeInvalidArgument, "request validation failed", ve.Details())
		return
	}
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		logging.Ctx(rw.r.Context()).Error().Err(err).
			Str("path", rw.r.URL.Path).
			Msg("request failed")
	}
	rw.Error(status, code, err.Error())
}

// statusFor resolves the HTTP status and wire code for a pipeline
// error. Authorization failures use 403 with the UNAUTHORIZED code;
// credential failures are written as 401 by the admission middleware
// before a pipeline error can exist.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, timeline.ErrUnauthorized):
		return http.StatusForbidden, CodeUnauthorized
	case errors.Is(err, timeline.ErrRateLimited):
		return http.StatusTooManyRequests, CodeRateLimited
	case errors.Is(err, timeline.ErrInvalidArgument):
		return http.StatusBadRequest, CodeInvalidArgument
	case errors.Is(err, timeline.ErrDeadlineExceeded):
		return http.StatusGatewayTimeout, CodeDeadlineExceeded
	case errors.Is(err, timeline.ErrUnavailable):
		return http.StatusServiceUnavailable, CodeUnavailable
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

// writeJSON writes the envelope with proper headers.
func (rw *ResponseWriter) writeJSON(statusCode int, resp Response) {
	rw.w.Header().Set("Content-Type", "application/json; charset=utf-8")
	rw.w.WriteHeader(statusCode)

	if err := json.NewEncoder(rw.w).Encode(resp); err != nil {
		logging.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// WriteError is a convenience for writing error envelopes from
// middleware, where no ResponseWriter exists yet.
func WriteError(w http.ResponseWriter, r *http.Request, statusCode int, code, message string) {
	NewResponseWriter(w, r).Error(statusCode, code, message)
}
