// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package authz

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// decisionsTotal counts authorization decisions by outcome.
	decisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authz_decisions_total",
			Help: "Authorization decisions by outcome",
		},
		[]string{"decision"},
	)

	// deniedTotal tracks denials separately for alerting.
	deniedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "authz_denied_total",
			Help: "Authorization denials",
		},
	)
)

func recordDecision(allowed bool) {
	if allowed {
		decisionsTotal.WithLabelValues("allowed").Inc()
		return
	}
	decisionsTotal.WithLabelValues("denied").Inc()
	deniedTotal.Inc()
}
