// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

//go:build integration

package testinfra

import (
	"context"
	"net/http"
	"testing"
	"time"

	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// TestNATSContainer verifies the container comes up with JetStream
// enabled and accepts client traffic. Requires Docker; skipped
// elsewhere.
func TestNATSContainer(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	SkipIfNoDocker(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker, err := NewNATSContainer(ctx)
	if err != nil {
		t.Fatalf("Failed to create NATS container: %v", err)
	}
	defer CleanupContainer(t, ctx, broker.Container)

	t.Logf("NATS container started at: %s", broker.URL)

	resp, err := http.Get(broker.MonitorURL + "/healthz")
	if err != nil {
		logs, _ := broker.Logs(ctx)
		t.Fatalf("Failed to reach monitoring endpoint: %v\nContainer logs:\n%s", err, logs)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected healthz status 200, got %d", resp.StatusCode)
	}

	nc, err := natsgo.Connect(broker.URL)
	if err != nil {
		t.Fatalf("Failed to connect to NATS: %v", err)
	}
	defer nc.Close()

	// Core NATS round trip.
	sub, err := nc.SubscribeSync("testinfra.echo")
	if err != nil {
		t.Fatalf("SubscribeSync failed: %v", err)
	}
	if err := nc.Publish("testinfra.echo", []byte("hello")); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	msg, err := sub.NextMsg(5 * time.Second)
	if err != nil {
		t.Fatalf("NextMsg failed: %v", err)
	}
	if string(msg.Data) != "hello" {
		t.Errorf("Expected payload hello, got %q", msg.Data)
	}

	// JetStream must be enabled: create a stream, publish, and read
	// the message back through a consumer.
	js, err := jetstream.New(nc)
	if err != nil {
		t.Fatalf("JetStream context failed: %v", err)
	}

	stream, err := js.CreateStream(ctx, jetstream.StreamConfig{
		Name:     "TESTINFRA",
		Subjects: []string{"testinfra.js.>"},
	})
	if err != nil {
		t.Fatalf("CreateStream failed: %v", err)
	}

	if _, err := js.Publish(ctx, "testinfra.js.one", []byte("durable")); err != nil {
		t.Fatalf("JetStream publish failed: %v", err)
	}

	consumer, err := stream.CreateConsumer(ctx, jetstream.ConsumerConfig{
		Durable:   "testinfra-reader",
		AckPolicy: jetstream.AckExplicitPolicy,
	})
	if err != nil {
		t.Fatalf("CreateConsumer failed: %v", err)
	}

	batch, err := consumer.Fetch(1, jetstream.FetchMaxWait(5*time.Second))
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	var got []byte
	for m := range batch.Messages() {
		got = m.Data()
		if err := m.Ack(); err != nil {
			t.Errorf("Ack failed: %v", err)
		}
	}
	if string(got) != "durable" {
		t.Errorf("Expected payload durable, got %q", got)
	}
}
