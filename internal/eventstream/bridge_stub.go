// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

//go:build !nats

package eventstream

import (
	"context"

	"github.com/tomtom215/chronographus/internal/config"
	"github.com/tomtom215/chronographus/internal/models"
)

// Bridge is a stub when NATS dependencies are not compiled in. Build
// with -tags=nats to enable the JetStream bridge; without it,
// in-process callbacks are the only note event path.
type Bridge struct{}

// NewBridge returns ErrBridgeDisabled when NATS support is not
// compiled in.
func NewBridge(cfg config.NATSConfig, store NoteStore, sink NoteSink) (*Bridge, error) {
	return nil, ErrBridgeDisabled
}

// PublishNote is a stub that returns ErrBridgeDisabled.
func (b *Bridge) PublishNote(ctx context.Context, kind Kind, note models.Note) error {
	return ErrBridgeDisabled
}

// Connected always reports false for the stub.
func (b *Bridge) Connected() bool {
	return false
}

// Serve is a stub that returns ErrBridgeDisabled.
func (b *Bridge) Serve(ctx context.Context) error {
	return ErrBridgeDisabled
}

// String identifies the bridge in supervisor logs.
func (b *Bridge) String() string {
	return "event-bridge"
}

// Close is a no-op stub.
func (b *Bridge) Close() error {
	return nil
}
