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

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"

	"github.com/tomtom215/chronographus/internal/config"
)

const (
	subscriberAckWait      = 30 * time.Second
	subscriberCloseTimeout = 10 * time.Second
	subscriberMaxDeliver   = 5
	subscriberMaxPending   = 1000
)

// Subscriber is the durable JetStream consumer behind the bridge. A
// single consumer goroutine keeps event order intact; the queue group
// spreads load when more instances join.
type Subscriber struct {
	subscriber message.Subscriber
}

// newSubscriber creates a durable subscriber bound to the note event
// stream. DeliverAll means the first deployment of a durable consumer
// drains events already in the stream; later restarts resume from the
// acked position.
func newSubscriber(url string, cfg config.NATSConfig, logger watermill.LoggerAdapter) (*Subscriber, error) {
	if logger == nil {
		logger = watermill.NewStdLogger(false, false)
	}

	natsOpts := []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2 * time.Second),
		natsgo.DisconnectErrHandler(func(nc *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("subscriber disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("subscriber reconnected", watermill.LogFields{
				"url": nc.ConnectedUrl(),
			})
		}),
	}

	// BindStream is required: the bridge subscribes to a wildcard
	// topic, and stream names cannot contain wildcards.
	subOpts := []natsgo.SubOpt{
		natsgo.MaxDeliver(subscriberMaxDeliver),
		natsgo.MaxAckPending(subscriberMaxPending),
		natsgo.AckWait(subscriberAckWait),
		natsgo.DeliverAll(),
		natsgo.BindStream(cfg.StreamName),
	}

	wmConfig := wmNats.SubscriberConfig{
		URL:              url,
		QueueGroupPrefix: cfg.QueueGroup,
		SubscribersCount: 1,
		AckWaitTimeout:   subscriberAckWait,
		CloseTimeout:     subscriberCloseTimeout,
		NatsOptions:      natsOpts,
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			Disabled:         false,
			AutoProvision:    false,
			AckAsync:         false,
			SubscribeOptions: subOpts,
			DurablePrefix:    cfg.DurableName,
		},
	}

	sub, err := wmNats.NewSubscriber(wmConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill subscriber: %w", err)
	}

	return &Subscriber{subscriber: sub}, nil
}

// Subscribe returns a channel of messages for the given topic. The
// channel closes when the context is canceled or the subscriber shuts
// down.
func (s *Subscriber) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return s.subscriber.Subscribe(ctx, topic)
}

// Close gracefully shuts down the subscriber.
func (s *Subscriber) Close() error {
	return s.subscriber.Close()
}
