// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/tomtom215/chronographus/internal/auth"
	"github.com/tomtom215/chronographus/internal/config"
)

// Router wires the handler set into the chi route tree.
type Router struct {
	cfg      *config.Config
	handlers *Handlers
}

// NewRouter creates the router over a built handler set.
func NewRouter(cfg *config.Config, handlers *Handlers) *Router {
	return &Router{cfg: cfg, handlers: handlers}
}

// Setup configures all HTTP routes. Each endpoint class gets its own
// admission group so the per-caller buckets charge the right budget.
func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()
	h := rt.handlers

	r.Use(RequestID())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: rt.cfg.API.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{headerRequestID},
		MaxAge:         86400,
	}))
	r.Use(RequestLogger())
	// Compress skips hijacked connections, so WebSocket upgrades on
	// /timeline/subscribe pass through untouched.
	r.Use(chimiddleware.Compress(5, "application/json"))

	// Coarse IP-level pre-limit in front of the per-caller buckets.
	if !rt.cfg.API.RateLimitDisabled && rt.cfg.API.IPRateLimitRPM > 0 {
		r.Use(httprate.LimitByRealIP(rt.cfg.API.IPRateLimitRPM, time.Minute))
	}

	r.Route("/api/v1/timeline", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(h.admit(auth.ClassTimeline))

			r.Get("/", h.GetTimeline)
			r.Get("/foryou", h.GetForYouTimeline)
			r.Get("/following", h.GetFollowingTimeline)
			r.Get("/user/{user_id}", h.GetUserTimeline)
			r.Post("/refresh", h.RefreshTimeline)
			r.Post("/read", h.MarkTimelineRead)
		})

		// Subscriptions hold a connection open, so they charge the
		// tighter streaming budget.
		r.Group(func(r chi.Router) {
			r.Use(h.admit(auth.ClassStreaming))

			r.Get("/subscribe", h.SubscribeTimeline)
		})
	})

	r.Route("/api/v1/engagement", func(r chi.Router) {
		r.Use(h.admit(auth.ClassEngagement))

		r.Post("/", h.RecordEngagement)
	})

	r.Route("/api/v1/preferences", func(r chi.Router) {
		r.Use(h.admit(auth.ClassPreferences))

		r.Get("/", h.GetPreferences)
		r.Put("/", h.UpdatePreferences)
		r.Post("/mutes", h.AddMute)
		r.Delete("/mutes", h.RemoveMute)
	})

	r.Get("/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	if rt.cfg.API.SwaggerEnabled {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
			httpSwagger.DeepLinking(true),
			httpSwagger.DocExpansion("list"),
			httpSwagger.DomID("swagger-ui"),
		))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, http.StatusNotFound, CodeNotFound, "no such route")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, http.StatusMethodNotAllowed, CodeInvalidArgument, "method not allowed")
	})

	return r
}
