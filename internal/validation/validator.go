// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

// Package validation provides struct validation using go-playground/validator
// v10 behind a thread-safe singleton.
//
// Request structs declare their constraints with tags and handlers call
// ValidateStruct before touching the pipeline:
//
//	type EngagementRequest struct {
//	    ViewerID string  `json:"viewer_id" validate:"required"`
//	    NoteID   string  `json:"note_id" validate:"required"`
//	    Action   string  `json:"action" validate:"required,engagement_action"`
//	    Duration float64 `json:"duration_seconds" validate:"gte=0"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    // verr.Fields() carries per-field details for the response envelope
//	}
//
// The custom engagement_action tag accepts the recordable actions
// (like, reshare, reply, follow, hide). The timeline_algorithm tag accepts
// chronological, hybrid or empty.
package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/tomtom215/chronographus/internal/models"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError describes a single failed constraint.
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return e.Message
}

// RequestValidationError aggregates every failed constraint of one request.
type RequestValidationError struct {
	fields []FieldError
}

// Fields returns the individual field errors.
func (ve *RequestValidationError) Fields() []FieldError {
	return ve.fields
}

// Error implements the error interface with a combined message.
func (ve *RequestValidationError) Error() string {
	if len(ve.fields) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(ve.fields))
	for i, f := range ve.fields {
		msgs[i] = f.Message
	}
	return strings.Join(msgs, "; ")
}

// Details exposes the field errors in envelope-friendly form.
func (ve *RequestValidationError) Details() map[string]interface{} {
	if len(ve.fields) == 0 {
		return nil
	}
	fields := make([]map[string]interface{}, len(ve.fields))
	for i, f := range ve.fields {
		fields[i] = map[string]interface{}{
			"field":   f.Field,
			"tag":     f.Tag,
			"message": f.Message,
		}
	}
	return map[string]interface{}{"fields": fields}
}

// GetValidator returns the singleton validator, initializing it with the
// custom tags on first use.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// engagement_action: one of the recordable interaction names.
		_ = validate.RegisterValidation("engagement_action", func(fl validator.FieldLevel) bool {
			return models.ValidEngagementAction(fl.Field().String())
		})

		// timeline_algorithm: chronological, hybrid, or empty for
		// "use the resolved default".
		_ = validate.RegisterValidation("timeline_algorithm", func(fl validator.FieldLevel) bool {
			_, err := models.ParseAlgorithm(fl.Field().String())
			return err == nil
		})
	})
	return validate
}

// ValidateStruct validates s, returning nil on success or a
// *RequestValidationError carrying every failed field.
func ValidateStruct(s interface{}) *RequestValidationError {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &RequestValidationError{fields: []FieldError{{
			Field:   "unknown",
			Tag:     "unknown",
			Message: err.Error(),
		}}}
	}

	fields := make([]FieldError, len(verrs))
	for i, fe := range verrs {
		fields[i] = FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			Message: translate(fe),
		}
	}
	return &RequestValidationError{fields: fields}
}

var messageTemplates = map[string]string{
	"required":           "%s is required",
	"engagement_action":  "%s must be one of: like, reshare, reply, follow, hide",
	"timeline_algorithm": "%s must be chronological or hybrid",
}

var messageTemplatesWithParam = map[string]string{
	"oneof": "%s must be one of: %s",
	"gte":   "%s must be greater than or equal to %s",
	"lte":   "%s must be less than or equal to %s",
	"gt":    "%s must be greater than %s",
	"lt":    "%s must be less than %s",
}

func translate(fe validator.FieldError) string {
	field, tag, param := fe.Field(), fe.Tag(), fe.Param()

	if tpl, ok := messageTemplates[tag]; ok {
		return fmt.Sprintf(tpl, field)
	}
	if tpl, ok := messageTemplatesWithParam[tag]; ok {
		return fmt.Sprintf(tpl, field, param)
	}

	isString := fe.Kind().String() == "string"
	switch tag {
	case "min":
		if isString {
			return fmt.Sprintf("%s must be at least %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		if isString {
			return fmt.Sprintf("%s must be at most %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at most %s", field, param)
	default:
		return fmt.Sprintf("%s failed %s validation", field, tag)
	}
}
