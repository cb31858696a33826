// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

//go:build nats

package eventstream

import (
	"fmt"
	"time"

	"github.com/nats-io/nats-server/v2/server"
)

const serverReadyTimeout = 30 * time.Second

// EmbeddedServer runs an in-process NATS JetStream server so a
// single-binary deployment needs no external broker. Note events are
// small, so the payload ceiling stays at 1MB.
type EmbeddedServer struct {
	server    *server.Server
	clientURL string
}

// NewEmbeddedServer creates and starts an embedded server listening on
// host:port with JetStream state under storeDir. Port -1 picks a free
// port, which tests rely on.
func NewEmbeddedServer(host string, port int, storeDir string) (*EmbeddedServer, error) {
	opts := &server.Options{
		ServerName: "chronographus-notes",
		Host:       host,
		Port:       port,
		JetStream:  true,
		StoreDir:   storeDir,
		DontListen: false,
		Debug:      false,
		Trace:      false,
		NoLog:      false,
		MaxPayload: 1 * 1024 * 1024,
	}

	ns, err := server.NewServer(opts)
	if err != nil {
		return nil, fmt.Errorf("create NATS server: %w", err)
	}

	ns.ConfigureLogger()

	go ns.Start()

	if !ns.ReadyForConnections(serverReadyTimeout) {
		ns.Shutdown()
		return nil, fmt.Errorf("NATS server not ready within timeout")
	}

	return &EmbeddedServer{
		server:    ns,
		clientURL: ns.ClientURL(),
	}, nil
}

// ClientURL returns the connection URL for clients.
func (s *EmbeddedServer) ClientURL() string {
	return s.clientURL
}

// Shutdown stops the server and waits for it to exit.
func (s *EmbeddedServer) Shutdown() {
	s.server.Shutdown()
	s.server.WaitForShutdown()
}

// Running reports server health.
func (s *EmbeddedServer) Running() bool {
	return s.server.Running()
}
