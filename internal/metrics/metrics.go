// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for the timeline pipeline:
// - API endpoint latency and throughput
// - Assembly pipeline stages (sources, filter, ranking, cache)
// - Fan-out queue pressure
// - Streaming session lifecycle
// - Event bridge and engagement store activity

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of in-flight API requests",
		},
	)

	RateLimitRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_rejections_total",
			Help: "Total number of token bucket denials",
		},
		[]string{"endpoint_class"},
	)

	// Timeline Assembly Metrics
	TimelineAssemblies = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "timeline_assemblies_total",
			Help: "Total number of full timeline assemblies (cache misses)",
		},
		[]string{"algorithm"},
	)

	TimelineAssemblyDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "timeline_assembly_duration_seconds",
			Help:    "End-to-end assembly duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"algorithm"},
	)

	TimelineItemsAssembled = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "timeline_items_assembled",
			Help:    "Items per assembled timeline after caps and thresholds",
			Buckets: []float64{0, 5, 10, 20, 30, 50, 75, 100},
		},
	)

	RankerFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ranker_fallbacks_total",
			Help: "Ranker failures that fell back to chronological ordering",
		},
	)

	// Candidate Source Metrics
	SourceFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "source_fetch_duration_seconds",
			Help:    "Candidate source fetch duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.2, 0.5, 1},
		},
		[]string{"source"},
	)

	SourceFetchFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "source_fetch_failures_total",
			Help: "Candidate source fetches that failed or timed out",
		},
		[]string{"source"},
	)

	SourceCandidates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "source_candidates_total",
			Help: "Candidate notes returned per source",
		},
		[]string{"source"},
	)

	// Content Filter Metrics
	FilterBlocked = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filter_blocked_total",
			Help: "Notes removed by the content filter, by reason",
		},
		[]string{"reason"},
	)

	FilterFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "filter_failures_total",
			Help: "Content filter failures (requests failed closed)",
		},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Cache hits by tier and entry kind",
		},
		[]string{"tier", "kind"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Cache misses by tier and entry kind",
		},
		[]string{"tier", "kind"},
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_evictions_total",
			Help: "Cache evictions by entry kind (LRU and TTL)",
		},
		[]string{"kind"},
	)

	AuthorInvalidations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cache_author_invalidations_total",
			Help: "Timeline invalidations triggered per author write events",
		},
	)

	DurableCacheErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "durable_cache_errors_total",
			Help: "Durable tier failures absorbed by the in-process tier",
		},
	)

	// Fan-out Metrics
	FanoutQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fanout_queue_depth",
			Help: "Current number of queued fan-out tasks",
		},
	)

	FanoutTasksProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fanout_tasks_processed_total",
			Help: "Fan-out tasks completed, by event kind",
		},
		[]string{"kind"},
	)

	FanoutTasksShed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fanout_tasks_shed_total",
			Help: "Oldest tasks dropped because the fan-out queue was full",
		},
	)

	FanoutRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fanout_retries_total",
			Help: "Fan-out tasks re-queued after follow graph failures",
		},
	)

	FanoutTasksAbandoned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fanout_tasks_abandoned_total",
			Help: "Fan-out tasks dropped after exhausting retries",
		},
	)

	FanoutFollowersNotified = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fanout_followers_notified_total",
			Help: "Follower cache invalidations performed by the fan-out worker",
		},
	)

	// Streaming Metrics
	StreamSessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "stream_sessions_active",
			Help: "Currently registered streaming sessions",
		},
	)

	StreamDeliveries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stream_deliveries_total",
			Help: "Timeline updates delivered to subscribers",
		},
	)

	StreamDrops = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stream_drops_total",
			Help: "Timeline updates dropped before delivery, by reason",
		},
		[]string{"reason"}, // "rate_limited", "queue_full", "closed"
	)

	StreamKeepAlives = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stream_keepalives_total",
			Help: "Keep-alive sentinels sent on idle streams",
		},
	)

	// Engagement Metrics
	EngagementEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engagement_events_total",
			Help: "Recorded engagement actions",
		},
		[]string{"action"},
	)

	EngagementStoreErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "engagement_store_errors_total",
			Help: "Engagement event log write failures",
		},
	)

	// External Re-ranker Metrics
	OverdriveCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "overdrive_calls_total",
			Help: "External re-ranker calls, by result",
		},
		[]string{"result"}, // "ok", "error", "open"
	)

	OverdriveDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "overdrive_call_duration_seconds",
			Help:    "External re-ranker call duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	// Event Bridge Metrics
	BridgePublishes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_publishes_total",
			Help: "Note events published to the bridge, by result",
		},
		[]string{"result"}, // "ok", "error"
	)

	BridgeConsumed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bridge_consumed_total",
			Help: "Note events consumed from the bridge",
		},
	)

	BridgeParseFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bridge_parse_failures_total",
			Help: "Bridge messages that failed to decode",
		},
	)

	// Circuit Breaker Metrics
	BreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "to_state"},
	)
)

// Cache tier and kind label values.
const (
	TierMemory  = "memory"
	TierDurable = "durable"

	KindTimeline = "timeline"
	KindProfile  = "profile"
	KindLastRead = "lastread"
)

// RecordAPIRequest records one served API request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordRateLimited records one token bucket denial.
func RecordRateLimited(endpointClass string) {
	RateLimitRejections.WithLabelValues(endpointClass).Inc()
}

// RecordAssembly records one full (cache-miss) timeline assembly.
func RecordAssembly(algorithm string, duration time.Duration, items int) {
	TimelineAssemblies.WithLabelValues(algorithm).Inc()
	TimelineAssemblyDuration.WithLabelValues(algorithm).Observe(duration.Seconds())
	TimelineItemsAssembled.Observe(float64(items))
}

// RecordRankerFallback records one chronological fallback after a ranker
// failure.
func RecordRankerFallback() {
	RankerFallbacks.Inc()
}

// RecordSourceFetch records one candidate source fetch.
func RecordSourceFetch(source string, duration time.Duration, candidates int, err error) {
	SourceFetchDuration.WithLabelValues(source).Observe(duration.Seconds())
	if err != nil {
		SourceFetchFailures.WithLabelValues(source).Inc()
		return
	}
	SourceCandidates.WithLabelValues(source).Add(float64(candidates))
}

// RecordFilterBlock records one note removed by the content filter.
func RecordFilterBlock(reason string) {
	FilterBlocked.WithLabelValues(reason).Inc()
}

// RecordCacheHit records a cache hit for one tier and entry kind.
func RecordCacheHit(tier, kind string) {
	CacheHits.WithLabelValues(tier, kind).Inc()
}

// RecordCacheMiss records a cache miss for one tier and entry kind.
func RecordCacheMiss(tier, kind string) {
	CacheMisses.WithLabelValues(tier, kind).Inc()
}

// RecordCacheEviction records one evicted entry.
func RecordCacheEviction(kind string) {
	CacheEvictions.WithLabelValues(kind).Inc()
}

// RecordDurableCacheError records one absorbed durable tier failure.
func RecordDurableCacheError() {
	DurableCacheErrors.Inc()
}

// RecordFanoutProcessed records one completed fan-out task.
func RecordFanoutProcessed(kind string) {
	FanoutTasksProcessed.WithLabelValues(kind).Inc()
}

// RecordStreamDrop records one dropped stream update.
func RecordStreamDrop(reason string) {
	StreamDrops.WithLabelValues(reason).Inc()
}

// RecordEngagement records one engagement action.
func RecordEngagement(action string) {
	EngagementEvents.WithLabelValues(action).Inc()
}

// RecordOverdriveCall records one external re-ranker call.
func RecordOverdriveCall(result string, duration time.Duration) {
	OverdriveCalls.WithLabelValues(result).Inc()
	if result == "ok" {
		OverdriveDuration.Observe(duration.Seconds())
	}
}

// RecordBreakerTransition records one circuit breaker state change.
func RecordBreakerTransition(name, toState string) {
	BreakerTransitions.WithLabelValues(name, toState).Inc()
}
