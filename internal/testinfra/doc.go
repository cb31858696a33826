// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

// Package testinfra provides container-backed infrastructure for
// integration tests.
//
// The package uses testcontainers-go to run a real NATS JetStream
// broker in Docker, so bridge tests can exercise an external broker
// instead of the in-process embedded server.
//
// # NATS Container
//
//	func TestBridgeAgainstExternalBroker(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//
//	    ctx := context.Background()
//	    broker, err := testinfra.NewNATSContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer broker.Terminate(ctx)
//
//	    cfg := config.NATSConfig{URL: broker.URL, EmbeddedServer: false, ...}
//	    // ...
//	}
//
// # CI Considerations
//
// These tests require Docker and live behind the integration build
// tag. They skip gracefully when no daemon is reachable, and the first
// run may need to pull the server image.
package testinfra
