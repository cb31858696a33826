// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

//go:build integration

package testinfra

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	// DefaultNATSImage is the official NATS server image. Pinned to a
	// minor version so CI runs stay reproducible.
	DefaultNATSImage = "nats:2.12-alpine"

	// natsClientPort is the NATS client protocol port.
	natsClientPort = "4222"

	// natsMonitorPort is the HTTP monitoring port.
	natsMonitorPort = "8222"
)

// NATSContainer represents a running NATS JetStream container for
// testing the event bridge against a real external broker, as opposed
// to the in-process embedded server.
type NATSContainer struct {
	testcontainers.Container
	// URL is the client connection URL, e.g. nats://127.0.0.1:49321.
	URL string
	// MonitorURL is the HTTP monitoring endpoint (healthz, varz).
	MonitorURL string
}

// NATSOption configures the NATS container.
type NATSOption func(*natsConfig)

type natsConfig struct {
	image        string
	startTimeout time.Duration
}

// WithNATSImage sets a custom NATS Docker image.
func WithNATSImage(image string) NATSOption {
	return func(c *natsConfig) {
		c.image = image
	}
}

// WithStartTimeout sets the timeout for waiting for the server to
// become ready.
func WithStartTimeout(timeout time.Duration) NATSOption {
	return func(c *natsConfig) {
		c.startTimeout = timeout
	}
}

// NewNATSContainer creates and starts a NATS server container with
// JetStream enabled.
//
// Example:
//
//	ctx := context.Background()
//	broker, err := NewNATSContainer(ctx)
//	if err != nil {
//	    t.Fatal(err)
//	}
//	defer broker.Terminate(ctx)
//
//	nc, err := natsgo.Connect(broker.URL)
func NewNATSContainer(ctx context.Context, opts ...NATSOption) (*NATSContainer, error) {
	cfg := &natsConfig{
		image:        DefaultNATSImage,
		startTimeout: 60 * time.Second,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	req := testcontainers.ContainerRequest{
		Image:        cfg.image,
		ExposedPorts: []string{natsClientPort + "/tcp", natsMonitorPort + "/tcp"},
		Cmd:          []string{"-js", "-m", natsMonitorPort},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort(natsClientPort+"/tcp"),
			wait.ForLog("Server is ready"),
		).WithStartupTimeout(cfg.startTimeout),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("create nats container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get container host: %w", err)
	}

	clientPort, err := container.MappedPort(ctx, natsClientPort)
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get mapped client port: %w", err)
	}

	monitorPort, err := container.MappedPort(ctx, natsMonitorPort)
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get mapped monitor port: %w", err)
	}

	return &NATSContainer{
		Container:  container,
		URL:        fmt.Sprintf("nats://%s:%s", host, clientPort.Port()),
		MonitorURL: fmt.Sprintf("http://%s:%s", host, monitorPort.Port()),
	}, nil
}

// Terminate stops and removes the container.
func (c *NATSContainer) Terminate(ctx context.Context) error {
	return c.Container.Terminate(ctx)
}

// Logs returns the container logs for debugging.
func (c *NATSContainer) Logs(ctx context.Context) (string, error) {
	reader, err := c.Container.Logs(ctx)
	if err != nil {
		return "", fmt.Errorf("get logs: %w", err)
	}
	defer reader.Close()

	logs, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("read logs: %w", err)
	}

	return string(logs), nil
}
