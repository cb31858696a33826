// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package timeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/chronographus/internal/config"
	"github.com/tomtom215/chronographus/internal/logging"
	"github.com/tomtom215/chronographus/internal/metrics"
)

// Reranker is the optional heavy re-ranker consulted on For-You requests
// that opt in. Returned scores are keyed by note id; ids absent from the
// map keep their local score.
type Reranker interface {
	RankForYou(ctx context.Context, viewerID string, candidateIDs []string, limit int) (map[string]float64, error)
}

// overdriveMaxBody bounds how much of a re-ranker response is read.
const overdriveMaxBody = 4 << 20

// HTTPReranker calls the Overdrive ranking service over HTTP. All calls
// run through a circuit breaker: a sick ranker degrades to local ordering
// instead of adding its timeout to every opted-in request.
type HTTPReranker struct {
	url     string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[map[string]float64]
	logger  zerolog.Logger
}

// NewHTTPReranker builds the Overdrive client from config. Returns nil
// when the re-ranker is disabled or has no URL, so callers can wire the
// result directly as an optional dependency.
func NewHTTPReranker(cfg config.OverdriveConfig) *HTTPReranker {
	if !cfg.Enabled || cfg.URL == "" {
		return nil
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 300 * time.Millisecond
	}
	return &HTTPReranker{
		url:     cfg.URL,
		client:  &http.Client{Timeout: timeout},
		breaker: newOverdriveBreaker(),
		logger:  logging.WithComponent("timeline.overdrive"),
	}
}

// newOverdriveBreaker opens after five consecutive failures and probes
// again after 30 seconds.
func newOverdriveBreaker() *gobreaker.CircuitBreaker[map[string]float64] {
	return gobreaker.NewCircuitBreaker[map[string]float64](gobreaker.Settings{
		Name:        "overdrive",
		MaxRequests: 2,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			toStr := overdriveStateString(to)
			logging.Info().
				Str("from", overdriveStateString(from)).
				Str("to", toStr).
				Msg("[OVERDRIVE] Breaker transition")
			metrics.RecordBreakerTransition(name, toStr)
		},
	})
}

func overdriveStateString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

type overdriveRequest struct {
	ViewerID     string   `json:"viewer_id"`
	CandidateIDs []string `json:"candidate_ids"`
	Limit        int      `json:"limit"`
}

type overdriveResponse struct {
	Scores map[string]float64 `json:"scores"`
}

// RankForYou implements Reranker.
func (r *HTTPReranker) RankForYou(ctx context.Context, viewerID string, candidateIDs []string, limit int) (map[string]float64, error) {
	start := time.Now()
	scores, err := r.breaker.Execute(func() (map[string]float64, error) {
		return r.call(ctx, viewerID, candidateIDs, limit)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.RecordOverdriveCall("rejected", 0)
		} else {
			metrics.RecordOverdriveCall("error", 0)
		}
		return nil, err
	}
	metrics.RecordOverdriveCall("ok", time.Since(start))
	return scores, nil
}

func (r *HTTPReranker) call(ctx context.Context, viewerID string, candidateIDs []string, limit int) (map[string]float64, error) {
	body, err := json.Marshal(overdriveRequest{
		ViewerID:     viewerID,
		CandidateIDs: candidateIDs,
		Limit:        limit,
	})
	if err != nil {
		return nil, fmt.Errorf("encode overdrive request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build overdrive request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("overdrive call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, overdriveMaxBody))
		return nil, fmt.Errorf("overdrive returned status %d", resp.StatusCode)
	}

	var decoded overdriveResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, overdriveMaxBody)).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode overdrive response: %w", err)
	}
	return decoded.Scores, nil
}
