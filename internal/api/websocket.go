// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/chronographus/internal/logging"
	"github.com/tomtom215/chronographus/internal/streaming"
)

// upgrader builds the WebSocket upgrader with origin checking.
func (h *Handlers) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkStreamOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkStreamOrigin validates browser origins against the configured
// CORS list. Requests without an Origin header come from non-browser
// clients and pass; those already cleared the admission chain.
func (h *Handlers) checkStreamOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range h.cfg.API.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	logging.Ctx(r.Context()).Warn().
		Str("origin", origin).
		Msg("stream subscription rejected from unauthorized origin")
	return false
}

// SubscribeTimeline upgrades the connection and streams timeline
// updates for the viewer until either side disconnects.
//
// @Summary Subscribe to timeline updates
// @Description Upgrades to a WebSocket and streams TimelineUpdate frames: new_items, item_update, item_deleted, timeline_refreshed and keep_alive heartbeats.
// @Tags Timeline
// @Produce json
// @Param viewer_id query string true "Viewer identity"
// @Success 101 {string} string "Switching Protocols"
// @Failure 400 {object} Response "Invalid parameters"
// @Failure 403 {object} Response "Caller may not act for this viewer"
// @Failure 503 {object} Response "Streaming disabled"
// @Router /timeline/subscribe [get]
func (h *Handlers) SubscribeTimeline(w http.ResponseWriter, r *http.Request) {
	viewerID := r.URL.Query().Get("viewer_id")
	if viewerID == "" {
		WriteError(w, r, http.StatusBadRequest, CodeInvalidArgument, "viewer_id is required")
		return
	}
	if err := h.requireViewer(r, viewerID); err != nil {
		NewResponseWriter(w, r).FromError(err)
		return
	}
	if h.hub == nil {
		WriteError(w, r, http.StatusServiceUnavailable, CodeUnavailable, "streaming is disabled")
		return
	}

	session, err := h.hub.Subscribe(viewerID)
	if err != nil {
		NewResponseWriter(w, r).FromError(err)
		return
	}

	upgrader := h.upgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the handshake failure.
		h.hub.Unsubscribe(session)
		logging.Ctx(r.Context()).Debug().Err(err).Msg("websocket upgrade failed")
		return
	}

	h.logger.Debug().
		Str("viewer_id", viewerID).
		Str("session_id", session.ID()).
		Msg("stream session opened")

	// Run owns the connection and the session from here; it returns
	// when the subscriber disconnects or the server shuts down.
	streaming.NewClient(h.hub, session, conn).Run(r.Context())
}
