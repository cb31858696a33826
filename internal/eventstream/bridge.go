// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

//go:build nats

package eventstream

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog"

	"github.com/tomtom215/chronographus/internal/config"
	"github.com/tomtom215/chronographus/internal/logging"
	"github.com/tomtom215/chronographus/internal/metrics"
	"github.com/tomtom215/chronographus/internal/models"
)

const streamInitTimeout = 30 * time.Second

// Bridge ties the note write path to JetStream: an optional embedded
// server, a breaker-guarded publisher, and a durable consumer that
// lands every event in the local note store and the fan-out queue.
type Bridge struct {
	cfg        config.NATSConfig
	server     *EmbeddedServer
	conn       *natsgo.Conn
	publisher  *Publisher
	subscriber *Subscriber
	store      NoteStore
	sink       NoteSink
	logger     zerolog.Logger
}

// NewBridge assembles the bridge per cfg. Every consumed event flows
// through store then sink, so both are required. On error all
// partially started pieces are torn down.
func NewBridge(cfg config.NATSConfig, store NoteStore, sink NoteSink) (*Bridge, error) {
	if store == nil {
		return nil, fmt.Errorf("bridge requires a note store")
	}
	if sink == nil {
		return nil, fmt.Errorf("bridge requires a note sink")
	}

	b := &Bridge{
		cfg:    cfg,
		store:  store,
		sink:   sink,
		logger: logging.WithComponent("bridge"),
	}
	wmLogger := newWatermillLogger()

	url := cfg.URL
	if cfg.EmbeddedServer {
		srv, err := NewEmbeddedServer("127.0.0.1", 4222, cfg.StoreDir)
		if err != nil {
			return nil, err
		}
		b.server = srv
		url = srv.ClientURL()
		b.logger.Info().Str("url", url).Str("store_dir", cfg.StoreDir).Msg("embedded NATS server started")
	}

	conn, err := natsgo.Connect(url,
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2*time.Second),
	)
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	b.conn = conn

	js, err := jetstream.New(conn)
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), streamInitTimeout)
	defer cancel()
	stream, err := ensureStream(ctx, js, cfg)
	if err != nil {
		b.Close()
		return nil, err
	}
	info := stream.CachedInfo()
	b.logger.Info().
		Str("stream", info.Config.Name).
		Strs("subjects", info.Config.Subjects).
		Msg("JetStream stream ready")

	pub, err := newPublisher(url, cfg, wmLogger)
	if err != nil {
		b.Close()
		return nil, err
	}
	b.publisher = pub

	sub, err := newSubscriber(url, cfg, wmLogger)
	if err != nil {
		b.Close()
		return nil, err
	}
	b.subscriber = sub

	return b, nil
}

// PublishNote emits one note write event onto the stream.
func (b *Bridge) PublishNote(ctx context.Context, kind Kind, note models.Note) error {
	return b.publisher.Publish(ctx, NewNoteEvent(kind, note))
}

// Connected reports broker connectivity for the health surface.
func (b *Bridge) Connected() bool {
	return b.conn != nil && b.conn.Status() == natsgo.CONNECTED
}

// Serve consumes note events until the context is canceled. It
// implements suture.Service.
func (b *Bridge) Serve(ctx context.Context) error {
	topic := b.cfg.SubjectPrefix + ".>"
	messages, err := b.subscriber.Subscribe(ctx, topic)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", topic, err)
	}

	b.logger.Info().
		Str("topic", topic).
		Str("durable", b.cfg.DurableName).
		Msg("bridge consumer started")

	for {
		select {
		case <-ctx.Done():
			b.logger.Info().Msg("bridge consumer stopped")
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				b.logger.Info().Msg("bridge consumer stopped")
				return nil
			}
			b.consume(msg)
		}
	}
}

// consume applies one message. Payloads that fail to decode or
// validate are acked and dropped after counting: redelivery cannot fix
// a malformed event.
func (b *Bridge) consume(msg *message.Message) {
	event, err := UnmarshalNoteEvent(msg.Payload)
	if err == nil {
		err = event.Validate()
	}
	if err != nil {
		metrics.BridgeParseFailures.Inc()
		b.logger.Warn().Err(err).Str("message_uuid", msg.UUID).Msg("dropping undecodable note event")
		msg.Ack()
		return
	}

	b.apply(event)
	metrics.BridgeConsumed.Inc()
	msg.Ack()
}

// apply lands one event: the store write makes the note visible to
// future assemblies, the sink callback queues the per-follower
// effects.
func (b *Bridge) apply(event *NoteEvent) {
	switch event.Kind {
	case KindCreated:
		b.store.PutNote(event.Note)
		b.sink.OnNoteCreated(event.Note)
	case KindUpdated:
		b.store.PutNote(event.Note)
		b.sink.OnNoteUpdated(event.Note)
	case KindDeleted:
		b.store.DeleteNote(event.Note.NoteID)
		b.sink.OnNoteDeleted(event.Note)
	}
}

// String identifies the bridge in supervisor logs.
func (b *Bridge) String() string {
	return "event-bridge"
}

// Close tears the bridge down in dependency order: consumers and
// producers first, then the connection, the embedded server last.
// Safe to call on a partially constructed bridge.
func (b *Bridge) Close() error {
	var firstErr error

	if b.subscriber != nil {
		if err := b.subscriber.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		b.subscriber = nil
	}
	if b.publisher != nil {
		if err := b.publisher.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		b.publisher = nil
	}
	if b.conn != nil {
		b.conn.Close()
		b.conn = nil
	}
	if b.server != nil {
		b.server.Shutdown()
		b.server = nil
	}

	return firstErr
}
