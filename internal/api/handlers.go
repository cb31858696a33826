// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/chronographus/internal/auth"
	"github.com/tomtom215/chronographus/internal/authz"
	"github.com/tomtom215/chronographus/internal/cache"
	"github.com/tomtom215/chronographus/internal/config"
	"github.com/tomtom215/chronographus/internal/fanout"
	"github.com/tomtom215/chronographus/internal/logging"
	"github.com/tomtom215/chronographus/internal/models"
	"github.com/tomtom215/chronographus/internal/streaming"
	"github.com/tomtom215/chronographus/internal/timeline"
	"github.com/tomtom215/chronographus/internal/validation"
)

const maxBodyBytes = 1 << 20

// EngagementStore is the slice of the analytics store the API consumes
// for the health surface.
type EngagementStore interface {
	Ping(ctx context.Context) error
}

// BridgeStatus reports event-bridge connectivity for the health
// surface.
type BridgeStatus interface {
	Connected() bool
}

// HandlerDeps wires the handlers' collaborators. Config, Service,
// Authenticator and Guard are required; the rest enrich the health
// surface and streaming endpoint when present.
type HandlerDeps struct {
	Config     *config.Config
	Service    *timeline.Service
	Authn      auth.Authenticator
	Guard      *authz.Guard
	Limiter    *auth.RateLimiter
	Hub        *streaming.Hub
	Cache      *cache.TieredCache
	Fanout     *fanout.Worker
	Engagement EngagementStore
	Bridge     BridgeStatus
}

// Handlers binds the HTTP surface to the timeline service.
type Handlers struct {
	cfg        *config.Config
	service    *timeline.Service
	authn      auth.Authenticator
	guard      *authz.Guard
	limiter    *auth.RateLimiter
	hub        *streaming.Hub
	cache      *cache.TieredCache
	fanout     *fanout.Worker
	engagement EngagementStore
	bridge     BridgeStatus

	started time.Time
	logger  zerolog.Logger
}

// NewHandlers builds the handler set.
func NewHandlers(deps HandlerDeps) (*Handlers, error) {
	if deps.Config == nil {
		return nil, fmt.Errorf("api: config is required")
	}
	if deps.Service == nil {
		return nil, fmt.Errorf("api: timeline service is required")
	}
	if deps.Authn == nil {
		return nil, fmt.Errorf("api: authenticator is required")
	}
	if deps.Guard == nil {
		return nil, fmt.Errorf("api: authorization guard is required")
	}
	return &Handlers{
		cfg:        deps.Config,
		service:    deps.Service,
		authn:      deps.Authn,
		guard:      deps.Guard,
		limiter:    deps.Limiter,
		hub:        deps.Hub,
		cache:      deps.Cache,
		fanout:     deps.Fanout,
		engagement: deps.Engagement,
		bridge:     deps.Bridge,
		started:    time.Now(),
		logger:     logging.WithComponent("api"),
	}, nil
}

// requireViewer enforces that the admitted caller may act for viewerID.
func (h *Handlers) requireViewer(r *http.Request, viewerID string) error {
	caller := identityFrom(r.Context())
	if h.guard.CanActFor(caller, viewerID) {
		return nil
	}
	return fmt.Errorf("caller %q may not act for viewer %q: %w",
		caller.Subject, viewerID, timeline.ErrUnauthorized)
}

// decodeBody reads a bounded JSON body into dst.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("malformed JSON body: %v: %w", err, timeline.ErrInvalidArgument)
	}
	return nil
}

// timelineItem is the wire projection of one ranked item. The signal
// breakdown is elided unless the request opted in.
type timelineItem struct {
	Note            models.Note             `json:"note"`
	Source          models.Source           `json:"source"`
	FinalScore      float64                 `json:"final_score"`
	Signals         *models.RankingSignals  `json:"signals,omitempty"`
	InjectedAt      time.Time               `json:"injected_at"`
	InjectionReason string                  `json:"injection_reason,omitempty"`
}

// timelinePayload is the data block of every timeline response. The
// pagination block rides in the envelope meta.
type timelinePayload struct {
	Items    []timelineItem          `json:"items"`
	Metadata models.TimelineMetadata `json:"metadata"`
}

// projectPage converts a service page to its wire shape.
func projectPage(page *models.TimelinePage, includeSignals bool) (timelinePayload, *models.PageInfo) {
	items := make([]timelineItem, 0, len(page.Items))
	for i := range page.Items {
		item := timelineItem{
			Note:            page.Items[i].Note,
			Source:          page.Items[i].Source,
			FinalScore:      page.Items[i].FinalScore,
			InjectedAt:      page.Items[i].InjectedAt,
			InjectionReason: page.Items[i].InjectionReason,
		}
		if includeSignals {
			signals := page.Items[i].Signals
			item.Signals = &signals
		}
		items = append(items, item)
	}
	pagination := page.Pagination
	return timelinePayload{Items: items, Metadata: page.Metadata}, &pagination
}

// timelineVariant selects which service read a timeline GET maps to.
type timelineVariant int

const (
	generalTimeline timelineVariant = iota
	forYouTimeline
	followingTimeline
)

// serveTimeline is the shared GET path: parse, authorize, read,
// project.
func (h *Handlers) serveTimeline(w http.ResponseWriter, r *http.Request, variant timelineVariant) {
	rw := NewResponseWriter(w, r)

	req, includeSignals, err := h.timelineRequest(r, variant == forYouTimeline)
	if err != nil {
		rw.FromError(err)
		return
	}
	if req.ViewerID == "" {
		rw.Error(http.StatusBadRequest, CodeInvalidArgument, "viewer_id is required")
		return
	}
	if err := h.requireViewer(r, req.ViewerID); err != nil {
		rw.FromError(err)
		return
	}

	var page *models.TimelinePage
	switch variant {
	case forYouTimeline:
		page, err = h.service.GetForYouTimeline(r.Context(), req)
	case followingTimeline:
		page, err = h.service.GetFollowingTimeline(r.Context(), req)
	default:
		page, err = h.service.GetTimeline(r.Context(), req)
	}
	if err != nil {
		rw.FromError(err)
		return
	}

	payload, pagination := projectPage(page, includeSignals)
	rw.SuccessWithPagination(payload, pagination)
}

// GetTimeline serves the general timeline.
//
// @Summary Get timeline
// @Description Returns the viewer's assembled timeline: ranked items, metadata and pagination.
// @Tags Timeline
// @Produce json
// @Param viewer_id query string true "Viewer identity"
// @Param algorithm query string false "Ranking algorithm" Enums(chronological, hybrid)
// @Param offset query int false "Pagination offset" default(0)
// @Param limit query int false "Page size (0 returns an empty page)" default(20)
// @Param include_ranking_signals query bool false "Include the per-item signal breakdown"
// @Success 200 {object} Response{data=timelinePayload}
// @Failure 400 {object} Response "Invalid parameters"
// @Failure 401 {object} Response "Missing or invalid credentials"
// @Failure 403 {object} Response "Caller may not act for this viewer"
// @Failure 429 {object} Response "Rate limited"
// @Router /timeline [get]
func (h *Handlers) GetTimeline(w http.ResponseWriter, r *http.Request) {
	h.serveTimeline(w, r, generalTimeline)
}

// GetForYouTimeline serves the discovery timeline.
//
// @Summary Get For-You timeline
// @Description Returns the discovery timeline. Honors the x-discovery-share and x-cap-*-for-you override headers and the optional external re-ranker.
// @Tags Timeline
// @Produce json
// @Param viewer_id query string true "Viewer identity"
// @Param offset query int false "Pagination offset" default(0)
// @Param limit query int false "Page size (0 returns an empty page)" default(20)
// @Param include_ranking_signals query bool false "Include the per-item signal breakdown"
// @Success 200 {object} Response{data=timelinePayload}
// @Failure 400 {object} Response "Invalid parameters"
// @Failure 403 {object} Response "Caller may not act for this viewer"
// @Router /timeline/foryou [get]
func (h *Handlers) GetForYouTimeline(w http.ResponseWriter, r *http.Request) {
	h.serveTimeline(w, r, forYouTimeline)
}

// GetFollowingTimeline serves the follows-only chronological timeline.
//
// @Summary Get Following timeline
// @Description Returns the chronological timeline restricted to followed authors.
// @Tags Timeline
// @Produce json
// @Param viewer_id query string true "Viewer identity"
// @Param offset query int false "Pagination offset" default(0)
// @Param limit query int false "Page size (0 returns an empty page)" default(20)
// @Success 200 {object} Response{data=timelinePayload}
// @Failure 400 {object} Response "Invalid parameters"
// @Failure 403 {object} Response "Caller may not act for this viewer"
// @Router /timeline/following [get]
func (h *Handlers) GetFollowingTimeline(w http.ResponseWriter, r *http.Request) {
	h.serveTimeline(w, r, followingTimeline)
}

// GetUserTimeline serves one author's notes, newest first, filtered for
// the viewer.
//
// @Summary Get a user timeline
// @Description Returns notes authored by the target user, newest first, mute/safety-filtered for the viewer but not ranked.
// @Tags Timeline
// @Produce json
// @Param user_id path string true "Target author"
// @Param viewer_id query string true "Viewer identity"
// @Param offset query int false "Pagination offset" default(0)
// @Param limit query int false "Page size (0 returns an empty page)" default(20)
// @Success 200 {object} Response{data=timelinePayload}
// @Failure 400 {object} Response "Invalid parameters"
// @Failure 403 {object} Response "Caller may not act for this viewer"
// @Router /timeline/user/{user_id} [get]
func (h *Handlers) GetUserTimeline(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	targetUserID := chi.URLParam(r, "user_id")
	viewerID := r.URL.Query().Get("viewer_id")
	if viewerID == "" {
		rw.Error(http.StatusBadRequest, CodeInvalidArgument, "viewer_id is required")
		return
	}

	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		rw.FromError(err)
		return
	}
	limit, err := h.limitParam(r)
	if err != nil {
		rw.FromError(err)
		return
	}

	if err := h.requireViewer(r, viewerID); err != nil {
		rw.FromError(err)
		return
	}

	page, err := h.service.GetUserTimeline(r.Context(), viewerID, targetUserID, offset, limit)
	if err != nil {
		rw.FromError(err)
		return
	}

	payload, pagination := projectPage(page, false)
	rw.SuccessWithPagination(payload, pagination)
}

// refreshBody is the RefreshTimeline request shape.
type refreshBody struct {
	ViewerID string    `json:"viewer_id" validate:"required"`
	Since    time.Time `json:"since"`
	MaxItems int       `json:"max_items" validate:"gte=0"`
}

// RefreshTimeline invalidates and regenerates the viewer's timeline.
//
// @Summary Refresh timeline
// @Description Invalidates the viewer's cached timeline, regenerates it and returns only items newer than since, capped at max_items. Refreshes are throttled per viewer.
// @Tags Timeline
// @Accept json
// @Produce json
// @Param request body refreshBody true "Refresh request"
// @Success 200 {object} Response{data=timelinePayload}
// @Failure 400 {object} Response "Invalid parameters"
// @Failure 403 {object} Response "Caller may not act for this viewer"
// @Failure 429 {object} Response "Refresh throttled"
// @Router /timeline/refresh [post]
func (h *Handlers) RefreshTimeline(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var body refreshBody
	if err := decodeBody(w, r, &body); err != nil {
		rw.FromError(err)
		return
	}
	if verr := validation.ValidateStruct(body); verr != nil {
		rw.FromError(verr)
		return
	}
	if err := h.requireViewer(r, body.ViewerID); err != nil {
		rw.FromError(err)
		return
	}

	page, err := h.service.RefreshTimeline(r.Context(), timeline.RefreshRequest{
		ViewerID: body.ViewerID,
		Since:    body.Since,
		MaxItems: body.MaxItems,
	})
	if err != nil {
		rw.FromError(err)
		return
	}

	payload, pagination := projectPage(page, false)
	rw.SuccessWithPagination(payload, pagination)
}

// readBody is the MarkTimelineRead request shape.
type readBody struct {
	ViewerID  string    `json:"viewer_id" validate:"required"`
	ReadUntil time.Time `json:"read_until" validate:"required"`
}

// readReceipt acknowledges an advanced read mark.
type readReceipt struct {
	ViewerID  string    `json:"viewer_id"`
	ReadUntil time.Time `json:"read_until"`
}

// MarkTimelineRead advances the viewer's last-read mark.
//
// @Summary Mark timeline read
// @Description Advances the viewer's monotonic last-read mark; an older timestamp never rewinds it.
// @Tags Timeline
// @Accept json
// @Produce json
// @Param request body readBody true "Read mark"
// @Success 200 {object} Response{data=readReceipt}
// @Failure 400 {object} Response "Invalid parameters"
// @Failure 403 {object} Response "Caller may not act for this viewer"
// @Router /timeline/read [post]
func (h *Handlers) MarkTimelineRead(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var body readBody
	if err := decodeBody(w, r, &body); err != nil {
		rw.FromError(err)
		return
	}
	if verr := validation.ValidateStruct(body); verr != nil {
		rw.FromError(verr)
		return
	}
	if err := h.requireViewer(r, body.ViewerID); err != nil {
		rw.FromError(err)
		return
	}

	if err := h.service.MarkTimelineRead(r.Context(), body.ViewerID, body.ReadUntil); err != nil {
		rw.FromError(err)
		return
	}
	rw.Success(readReceipt{ViewerID: body.ViewerID, ReadUntil: body.ReadUntil})
}

// engagementBody is the RecordEngagement request shape.
type engagementBody struct {
	ViewerID        string  `json:"viewer_id" validate:"required"`
	NoteID          string  `json:"note_id" validate:"required"`
	Action          string  `json:"action" validate:"required,oneof=like reshare reply follow hide"`
	DurationSeconds float64 `json:"duration_seconds" validate:"gte=0"`
}

// engagementReceipt acknowledges a recorded interaction.
type engagementReceipt struct {
	ViewerID string `json:"viewer_id"`
	NoteID   string `json:"note_id"`
	Action   string `json:"action"`
}

// RecordEngagement records one viewer interaction with a note.
//
// @Summary Record engagement
// @Description Records a like, reshare, reply, follow or hide. Updates affinity state and appends to the analytics log.
// @Tags Engagement
// @Accept json
// @Produce json
// @Param request body engagementBody true "Engagement event"
// @Success 200 {object} Response{data=engagementReceipt}
// @Failure 400 {object} Response "Invalid parameters"
// @Failure 403 {object} Response "Caller may not act for this viewer"
// @Router /engagement [post]
func (h *Handlers) RecordEngagement(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var body engagementBody
	if err := decodeBody(w, r, &body); err != nil {
		rw.FromError(err)
		return
	}
	if verr := validation.ValidateStruct(body); verr != nil {
		rw.FromError(verr)
		return
	}
	if err := h.requireViewer(r, body.ViewerID); err != nil {
		rw.FromError(err)
		return
	}

	err := h.service.RecordEngagement(r.Context(), timeline.EngagementRequest{
		ViewerID:        body.ViewerID,
		NoteID:          body.NoteID,
		Action:          models.EngagementAction(body.Action),
		DurationSeconds: body.DurationSeconds,
	})
	if err != nil {
		rw.FromError(err)
		return
	}
	rw.Success(engagementReceipt{ViewerID: body.ViewerID, NoteID: body.NoteID, Action: body.Action})
}

// GetPreferences returns the viewer's stored configuration overlay and
// mute sets.
//
// @Summary Get preferences
// @Description Returns the viewer's stored timeline configuration overlay, muted users and muted keywords.
// @Tags Preferences
// @Produce json
// @Param viewer_id query string true "Viewer identity"
// @Success 200 {object} Response{data=timeline.Preferences}
// @Failure 400 {object} Response "Invalid parameters"
// @Failure 403 {object} Response "Caller may not act for this viewer"
// @Router /preferences [get]
func (h *Handlers) GetPreferences(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	viewerID := r.URL.Query().Get("viewer_id")
	if viewerID == "" {
		rw.Error(http.StatusBadRequest, CodeInvalidArgument, "viewer_id is required")
		return
	}
	if err := h.requireViewer(r, viewerID); err != nil {
		rw.FromError(err)
		return
	}

	prefs, err := h.service.GetPreferences(r.Context(), viewerID)
	if err != nil {
		rw.FromError(err)
		return
	}
	rw.Success(prefs)
}

// preferencesBody is the UpdatePreferences request shape. Only positive
// config fields take effect; zero fields keep defaults.
type preferencesBody struct {
	ViewerID string                `json:"viewer_id" validate:"required"`
	Config   models.TimelineConfig `json:"config"`
	ShowNSFW *bool                 `json:"show_nsfw,omitempty"`
}

// UpdatePreferences stores the viewer's configuration overlay.
//
// @Summary Update preferences
// @Description Stores the viewer's timeline configuration overlay (positive fields only) and the optional NSFW visibility flag. Invalidates the viewer's cached timeline.
// @Tags Preferences
// @Accept json
// @Produce json
// @Param request body preferencesBody true "Preference overlay"
// @Success 200 {object} Response{data=timeline.Preferences}
// @Failure 400 {object} Response "Invalid parameters"
// @Failure 403 {object} Response "Caller may not act for this viewer"
// @Router /preferences [put]
func (h *Handlers) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var body preferencesBody
	if err := decodeBody(w, r, &body); err != nil {
		rw.FromError(err)
		return
	}
	if verr := validation.ValidateStruct(body); verr != nil {
		rw.FromError(verr)
		return
	}
	if err := h.requireViewer(r, body.ViewerID); err != nil {
		rw.FromError(err)
		return
	}

	if err := h.service.UpdatePreferences(r.Context(), body.ViewerID, body.Config); err != nil {
		rw.FromError(err)
		return
	}
	if body.ShowNSFW != nil {
		if err := h.service.SetShowNSFW(r.Context(), body.ViewerID, *body.ShowNSFW); err != nil {
			rw.FromError(err)
			return
		}
	}

	prefs, err := h.service.GetPreferences(r.Context(), body.ViewerID)
	if err != nil {
		rw.FromError(err)
		return
	}
	rw.Success(prefs)
}

// muteBody is the AddMute / RemoveMute request shape.
type muteBody struct {
	ViewerID string `json:"viewer_id" validate:"required"`
	Kind     string `json:"kind" validate:"required,oneof=user keyword"`
	Value    string `json:"value" validate:"required"`
}

// AddMute mutes a user or keyword for the viewer.
//
// @Summary Add a mute
// @Description Adds a muted user or muted keyword for the viewer and invalidates the cached timeline.
// @Tags Preferences
// @Accept json
// @Produce json
// @Param request body muteBody true "Mute target"
// @Success 200 {object} Response{data=timeline.Preferences}
// @Failure 400 {object} Response "Invalid parameters"
// @Failure 403 {object} Response "Caller may not act for this viewer"
// @Router /preferences/mutes [post]
func (h *Handlers) AddMute(w http.ResponseWriter, r *http.Request) {
	h.handleMute(w, r, true)
}

// RemoveMute unmutes a user or keyword for the viewer.
//
// @Summary Remove a mute
// @Description Removes a muted user or muted keyword for the viewer and invalidates the cached timeline.
// @Tags Preferences
// @Accept json
// @Produce json
// @Param request body muteBody true "Mute target"
// @Success 200 {object} Response{data=timeline.Preferences}
// @Failure 400 {object} Response "Invalid parameters"
// @Failure 403 {object} Response "Caller may not act for this viewer"
// @Router /preferences/mutes [delete]
func (h *Handlers) RemoveMute(w http.ResponseWriter, r *http.Request) {
	h.handleMute(w, r, false)
}

func (h *Handlers) handleMute(w http.ResponseWriter, r *http.Request, add bool) {
	rw := NewResponseWriter(w, r)

	var body muteBody
	if err := decodeBody(w, r, &body); err != nil {
		rw.FromError(err)
		return
	}
	if verr := validation.ValidateStruct(body); verr != nil {
		rw.FromError(verr)
		return
	}
	if err := h.requireViewer(r, body.ViewerID); err != nil {
		rw.FromError(err)
		return
	}

	kind := timeline.MuteKind(body.Kind)
	var err error
	if add {
		err = h.service.AddMute(r.Context(), body.ViewerID, kind, body.Value)
	} else {
		err = h.service.RemoveMute(r.Context(), body.ViewerID, kind, body.Value)
	}
	if err != nil {
		rw.FromError(err)
		return
	}

	prefs, err := h.service.GetPreferences(r.Context(), body.ViewerID)
	if err != nil {
		rw.FromError(err)
		return
	}
	rw.Success(prefs)
}
