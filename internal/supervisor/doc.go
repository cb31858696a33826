// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

/*
Package supervisor provides process supervision for chronographus using
suture v4.

This package implements a hierarchical supervisor tree that manages the
lifecycle of all long-running services in the application. It provides
Erlang/OTP-style supervision with automatic restart, failure isolation,
and graceful shutdown.

# Overview

The supervisor tree organizes services into three layers for failure
isolation:

	RootSupervisor ("chronographus")
	├── DataSupervisor ("data-layer")
	│   ├── engagement retention pruner
	│   ├── trending candidate refresher
	│   └── cache janitor
	├── DeliverySupervisor ("delivery-layer")
	│   ├── streaming hub
	│   ├── fan-out worker
	│   └── event bridge (build tag: nats)
	└── APISupervisor ("api-layer")
	    ├── HTTPServerService
	    └── rate limiter janitor

This hierarchy ensures that:
  - A fan-out crash doesn't drop live websocket upgrades
  - A DuckDB stall in retention pruning doesn't block timeline serving
  - Each layer restarts independently with its own failure counter

# Usage Example

Basic setup in main.go:

	logger := logging.NewSlogLogger()
	tree, err := supervisor.NewSupervisorTree(logger, supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}

	tree.AddDataService(engagementStore)
	tree.AddDataService(trendingRefresher)
	tree.AddDeliveryService(hub)
	tree.AddDeliveryService(fanoutWorker)
	tree.AddAPIService(limiter)
	tree.AddAPIService(supervisor.NewHTTPServerService(srv, 10*time.Second))

	// Blocks until the context is canceled.
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    return err
	}

Background operation:

	errChan := tree.ServeBackground(ctx)

	// Do other setup...

	if err := <-errChan; err != nil {
	    log.Printf("Supervisor error: %v", err)
	}

# Configuration

The TreeConfig controls restart behavior:

	config := supervisor.TreeConfig{
	    FailureThreshold: 5.0,              // Failures before backoff
	    FailureDecay:     30.0,             // Seconds for failures to decay
	    FailureBackoff:   15 * time.Second, // Backoff duration
	    ShutdownTimeout:  10 * time.Second, // Per-service shutdown timeout
	}

Default values match suture's production-ready defaults.

# Service Interface

All services must implement suture.Service:

	type Service interface {
	    Serve(ctx context.Context) error
	}

Return behavior:
  - Return nil: service stopped cleanly, will not be restarted
  - Return error: service crashed, will be restarted
  - Context canceled: shutdown requested, return promptly

Most chronographus components implement this directly; only the HTTP
server needs the HTTPServerService adapter because net/http predates
context-driven lifecycles.

Supervisor events (starts, failures, backoff) are logged through
sutureslog, which speaks slog; logging.NewSlogLogger bridges that into
the process-wide zerolog output.

# Build Tags

The event bridge is controlled by the nats build tag. Without it the
bridge constructor fails with ErrBridgeDisabled and nothing is added to
the delivery layer.

# What Is NOT Supervised

The engagement DuckDB connection itself is not supervised - it is an
embedded library, and the store's retention pruner is the only
long-running part. The in-memory note store and the tiered cache are
passive data structures; the cache janitor in the data layer drives
the cache's expiry sweeps and durable-tier GC.

# Debugging Shutdown Issues

If services don't stop within the timeout:

	report, err := tree.UnstoppedServiceReport()
	for _, svc := range report {
	    log.Printf("Service didn't stop: %v", svc)
	}

Common causes:
  - Goroutines not respecting context cancellation
  - Blocked network I/O without deadlines

# Thread Safety

The SupervisorTree is safe for concurrent use: services can be added
from any goroutine and multiple services can crash simultaneously.
*/
package supervisor
