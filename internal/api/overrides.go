// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/tomtom215/chronographus/internal/models"
	"github.com/tomtom215/chronographus/internal/timeline"
)

// Override headers. All are optional; values that fail to parse are
// ignored so a broken experiment header never fails a user request.
const (
	headerRateRPM        = "x-rate-rpm"
	headerDiscoveryShare = "x-discovery-share"
	headerUseOverdrive   = "x-use-overdrive"

	abWeightPrefix = "x-ab-"
	abWeightSuffix = "-weight"
	capPrefix      = "x-cap-"
	capForYou      = "-for-you"
)

// truthy reports whether a header or query value opts in.
func truthy(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

// parseOverrides reads the experiment headers into req. For the For-You
// surface, the -for-you cap variant wins over the plain one and the
// discovery-share header takes effect.
func parseOverrides(r *http.Request, req *timeline.Request, forYou bool) {
	for _, src := range models.AllSources {
		name := src.String()

		if v := r.Header.Get(abWeightPrefix + name + abWeightSuffix); v != "" {
			if w, err := strconv.ParseFloat(v, 64); err == nil && w > 0 {
				if req.ABWeights == nil {
					req.ABWeights = make(map[models.Source]float64, 4)
				}
				req.ABWeights[src] = w
			}
		}

		capValue := r.Header.Get(capPrefix + name)
		if forYou {
			if v := r.Header.Get(capPrefix + name + capForYou); v != "" {
				capValue = v
			}
		}
		if capValue != "" {
			if c, err := strconv.Atoi(capValue); err == nil && c >= 0 {
				if req.Caps == nil {
					req.Caps = make(map[models.Source]int, 4)
				}
				req.Caps[src] = c
			}
		}
	}

	if forYou {
		if v := r.Header.Get(headerDiscoveryShare); v != "" {
			if share, err := strconv.ParseFloat(v, 64); err == nil {
				req.DiscoveryShare = &share
			}
		}
	}

	if truthy(r.Header.Get(headerUseOverdrive)) {
		req.UseOverdrive = true
	}
}

// rateOverride reads the downward-only x-rate-rpm header. Zero means
// no override.
func rateOverride(r *http.Request) int {
	v := r.Header.Get(headerRateRPM)
	if v == "" {
		return 0
	}
	rpm, err := strconv.Atoi(v)
	if err != nil || rpm <= 0 {
		return 0
	}
	return rpm
}

// queryInt parses an integer query parameter. Absent values yield the
// fallback; malformed values are a client error.
func queryInt(r *http.Request, name string, fallback int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", name, timeline.ErrInvalidArgument)
	}
	return n, nil
}

// limitParam resolves the page limit. An omitted parameter falls back
// to the configured default page size; an explicit limit=0 is honored
// and yields an empty page with pagination intact. Values above the
// page size ceiling are clamped.
func (h *Handlers) limitParam(r *http.Request) (int, error) {
	def := h.cfg.API.DefaultPageSize
	if def <= 0 {
		def = 20
	}
	limit, err := queryInt(r, "limit", def)
	if err != nil {
		return 0, err
	}
	if maxPage := h.cfg.API.MaxPageSize; maxPage > 0 && limit > maxPage {
		limit = maxPage
	}
	return limit, nil
}

// timelineRequest builds the pipeline request from query parameters and
// override headers. The second return reports whether the response
// should include per-item ranking signals.
func (h *Handlers) timelineRequest(r *http.Request, forYou bool) (timeline.Request, bool, error) {
	q := r.URL.Query()

	req := timeline.Request{ViewerID: q.Get("viewer_id")}

	if v := q.Get("algorithm"); v != "" {
		algo, err := models.ParseAlgorithm(v)
		if err != nil {
			return timeline.Request{}, false, fmt.Errorf("%v: %w", err, timeline.ErrInvalidArgument)
		}
		req.Algorithm = algo
	}

	var err error
	if req.Offset, err = queryInt(r, "offset", 0); err != nil {
		return timeline.Request{}, false, err
	}
	if req.Limit, err = h.limitParam(r); err != nil {
		return timeline.Request{}, false, err
	}

	parseOverrides(r, &req, forYou)

	return req, truthy(q.Get("include_ranking_signals")), nil
}
