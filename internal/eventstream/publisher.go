// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

//go:build nats

package eventstream

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/chronographus/internal/config"
	"github.com/tomtom215/chronographus/internal/logging"
	"github.com/tomtom215/chronographus/internal/metrics"
)

// Publisher writes note events to JetStream. Publishes run behind a
// circuit breaker so a broker outage fails fast instead of stalling
// note writes on broker retries.
type Publisher struct {
	publisher message.Publisher
	breaker   *gobreaker.CircuitBreaker[any]
	prefix    string

	mu     sync.RWMutex
	closed bool
}

// newPublisher creates the watermill JetStream publisher. The stream is
// provisioned by ensureStream before this runs, so AutoProvision stays
// off and publishes to a missing stream fail loudly.
func newPublisher(url string, cfg config.NATSConfig, logger watermill.LoggerAdapter) (*Publisher, error) {
	if logger == nil {
		logger = watermill.NewStdLogger(false, false)
	}

	natsOpts := []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2 * time.Second),
		natsgo.DisconnectErrHandler(func(nc *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("publisher disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("publisher reconnected", watermill.LogFields{
				"url": nc.ConnectedUrl(),
			})
		}),
	}

	publishOpts := []natsgo.PubOpt{
		natsgo.RetryAttempts(3),
		natsgo.RetryWait(100 * time.Millisecond),
	}
	if cfg.PublishTimeout > 0 {
		publishOpts = append(publishOpts, natsgo.AckWait(cfg.PublishTimeout))
	}

	wmConfig := wmNats.PublisherConfig{
		URL:         url,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			Disabled:       false,
			AutoProvision:  false,
			TrackMsgId:     true,
			PublishOptions: publishOpts,
		},
	}

	pub, err := wmNats.NewPublisher(wmConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill publisher: %w", err)
	}

	return &Publisher{
		publisher: pub,
		breaker:   newPublishBreaker(),
		prefix:    cfg.SubjectPrefix,
	}, nil
}

// newPublishBreaker builds the circuit breaker guarding publishes.
// Opens after five consecutive failures; half-open probes resume after
// ten seconds.
func newPublishBreaker() *gobreaker.CircuitBreaker[any] {
	cbName := "bridge-publisher"

	return gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     10 * time.Second,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := publishBreakerState(from)
			toStr := publishBreakerState(to)
			logging.Info().Str("from", fromStr).Str("to", toStr).Msg("[BRIDGE] Publisher breaker transition")
			metrics.RecordBreakerTransition(name, toStr)
		},
	})
}

// publishBreakerState converts circuit breaker state to string for logging.
func publishBreakerState(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Publish sends one note event to its per-kind subject. The event id
// rides along as Nats-Msg-Id, so JetStream drops duplicates within the
// stream's duplicate window.
func (p *Publisher) Publish(ctx context.Context, event *NoteEvent) error {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return fmt.Errorf("bridge publisher is closed")
	}
	p.mu.RUnlock()

	data, err := event.Marshal()
	if err != nil {
		return err
	}

	msg := message.NewMessage(event.EventID, data)
	msg.Metadata.Set(natsgo.MsgIdHdr, event.EventID)
	msg.Metadata.Set("kind", string(event.Kind))
	msg.Metadata.Set("note_id", event.Note.NoteID)

	_, err = p.breaker.Execute(func() (any, error) {
		return nil, p.publisher.Publish(event.Topic(p.prefix), msg)
	})
	if err != nil {
		metrics.BridgePublishes.WithLabelValues("error").Inc()
		return fmt.Errorf("publish note event: %w", err)
	}

	metrics.BridgePublishes.WithLabelValues("ok").Inc()
	return nil
}

// Close gracefully shuts down the publisher.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	return p.publisher.Close()
}
