// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package streaming

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/tomtom215/chronographus/internal/logging"
	"github.com/tomtom215/chronographus/internal/models"
)

const (
	// pongWait is how long we wait for a pong before declaring the
	// subscriber dead.
	pongWait = 60 * time.Second

	// pingPeriod must be shorter than pongWait so the deadline is
	// refreshed before it fires.
	pingPeriod = (pongWait * 9) / 10

	// maxInboundBytes bounds reads; the subscribe endpoint carries no
	// inbound protocol, so anything larger than a control frame is junk.
	maxInboundBytes = 512
)

// Client pumps one session's updates over a websocket connection.
// The read side only services control frames and disconnect detection.
type Client struct {
	hub     *Hub
	session *Session
	conn    *websocket.Conn
	logger  zerolog.Logger
}

// NewClient wraps an upgraded connection around a subscribed session.
func NewClient(hub *Hub, session *Session, conn *websocket.Conn) *Client {
	return &Client{
		hub:     hub,
		session: session,
		conn:    conn,
		logger: logging.WithComponent("streaming").With().
			Str("session_id", session.ID()).
			Str("viewer_id", session.ViewerID()).
			Logger(),
	}
}

// Run services the connection until the subscriber disconnects, the
// session closes, or ctx is canceled. It always unsubscribes the session
// and closes the connection before returning.
func (c *Client) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer c.hub.Unsubscribe(c.session)
	defer c.conn.Close()

	go c.readPump(cancel)
	c.writeLoop(ctx)
}

// readPump drains inbound frames so pongs and close frames are
// processed. Any read error means the subscriber is gone.
func (c *Client) readPump(cancel context.CancelFunc) {
	defer cancel()

	c.conn.SetReadLimit(maxInboundBytes)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived) {
				c.logger.Debug().Err(err).Msg("Subscriber closed abnormally")
			}
			return
		}
		// Data frames on this endpoint carry no meaning; drop them.
	}
}

// writeLoop delivers queued updates in FIFO order. Session keep-alives
// arrive at the heartbeat cadence, so the loop wakes often enough to
// interleave transport pings without a second timer goroutine.
func (c *Client) writeLoop(ctx context.Context) {
	lastPing := time.Now()

	for {
		update, err := c.session.Next(ctx)
		if err != nil {
			// Closed session or canceled context; attempt a clean
			// goodbye but do not wait on a broken peer.
			deadline := time.Now().Add(c.hub.cfg.WriteTimeout)
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
			return
		}

		if err := c.writeUpdate(update); err != nil {
			c.logger.Debug().Err(err).Msg("Update write failed")
			return
		}

		if time.Since(lastPing) >= pingPeriod {
			deadline := time.Now().Add(c.hub.cfg.WriteTimeout)
			if err := c.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				c.logger.Debug().Err(err).Msg("Ping write failed")
				return
			}
			lastPing = time.Now()
		}
	}
}

func (c *Client) writeUpdate(update models.TimelineUpdate) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.hub.cfg.WriteTimeout)); err != nil {
		return err
	}
	return c.conn.WriteJSON(update)
}
