// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

//go:build nats

package eventstream

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/tomtom215/chronographus/internal/config"
)

const (
	// streamMaxAge bounds replay depth. Note events older than this
	// have no consumer value: caches expire in minutes and the store
	// reseeds from its own source of truth.
	streamMaxAge = 7 * 24 * time.Hour

	// duplicateWindow is how long JetStream remembers event ids for
	// publish deduplication.
	duplicateWindow = 2 * time.Minute
)

// ensureStream creates the note event stream on first run and updates
// its configuration on later ones. Idempotent, so every instance can
// call it at startup.
func ensureStream(ctx context.Context, js jetstream.JetStream, cfg config.NATSConfig) (jetstream.Stream, error) {
	streamCfg := jetstream.StreamConfig{
		Name:        cfg.StreamName,
		Subjects:    []string{cfg.SubjectPrefix + ".>"},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      streamMaxAge,
		Duplicates:  duplicateWindow,
		Replicas:    1,
		Storage:     jetstream.FileStorage,
		AllowDirect: true,
		Discard:     jetstream.DiscardOld,
	}

	_, err := js.Stream(ctx, cfg.StreamName)
	if err == nil {
		stream, err := js.UpdateStream(ctx, streamCfg)
		if err != nil {
			return nil, fmt.Errorf("update stream %s: %w", cfg.StreamName, err)
		}
		return stream, nil
	}

	if errors.Is(err, jetstream.ErrStreamNotFound) {
		stream, err := js.CreateStream(ctx, streamCfg)
		if err != nil {
			return nil, fmt.Errorf("create stream %s: %w", cfg.StreamName, err)
		}
		return stream, nil
	}

	return nil, fmt.Errorf("check stream %s: %w", cfg.StreamName, err)
}
