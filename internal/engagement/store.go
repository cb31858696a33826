// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package engagement

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/rs/zerolog"

	"github.com/tomtom215/chronographus/internal/config"
	"github.com/tomtom215/chronographus/internal/logging"
)

// queryBudget caps any single statement that arrives without a
// deadline of its own.
const queryBudget = 30 * time.Second

// Store is the append-only engagement event log. Rows are inserted on
// every recorded action, read back by the aggregate queries, and
// eventually removed by retention pruning; they are never updated.
type Store struct {
	conn   *sql.DB
	cfg    config.EngagementConfig
	logger zerolog.Logger
}

// New opens the event log and creates the schema when missing. An
// empty cfg.Path opens an in-memory database, which tests use.
func New(cfg config.EngagementConfig) (*Store, error) {
	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}

	if path != ":memory:" {
		dir := filepath.Dir(path)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("create engagement data directory %s: %w", dir, err)
			}
		}
	}

	threads := cfg.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	maxMemory := cfg.MaxMemory
	if maxMemory == "" {
		maxMemory = "512MB"
	}

	// Extension auto-install stays off so startup cannot hang on a
	// network fetch; the event log uses no extensions.
	dsn := fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s&autoinstall_known_extensions=false&autoload_known_extensions=false",
		path, threads, maxMemory)

	conn, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, fmt.Errorf("open engagement store: %w", err)
	}

	s := &Store{
		conn:   conn,
		cfg:    cfg,
		logger: logging.WithComponent("engagement"),
	}
	s.configurePool()

	if err := s.createSchema(); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("initialize engagement schema: %w", err)
	}

	return s, nil
}

// configurePool sets connection pool parameters.
func (s *Store) configurePool() {
	s.conn.SetMaxOpenConns(runtime.NumCPU())
	s.conn.SetMaxIdleConns(2)
	s.conn.SetConnMaxLifetime(time.Hour)
	s.conn.SetConnMaxIdleTime(5 * time.Minute)
}

// schemaContext bounds schema statements so a wedged database file
// fails startup instead of hanging it.
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createSchema creates the event table and its indexes. Event ids are
// TEXT because the producers already mint UUID strings and the column
// only ever round-trips them.
func (s *Store) createSchema() error {
	ctx, cancel := schemaContext()
	defer cancel()

	queries := []string{
		`CREATE TABLE IF NOT EXISTS engagement_events (
			event_id TEXT PRIMARY KEY,
			viewer_id TEXT NOT NULL,
			note_id TEXT NOT NULL,
			author_id TEXT NOT NULL,
			action TEXT NOT NULL,
			duration_seconds DOUBLE NOT NULL DEFAULT 0,
			occurred_at TIMESTAMP NOT NULL,
			recorded_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_engagement_note ON engagement_events(note_id)`,
		`CREATE INDEX IF NOT EXISTS idx_engagement_viewer_time ON engagement_events(viewer_id, occurred_at)`,
		`CREATE INDEX IF NOT EXISTS idx_engagement_occurred ON engagement_events(occurred_at)`,
	}

	for _, query := range queries {
		if _, err := s.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("execute schema statement: %w", err)
		}
	}

	// Flush the WAL so a crash before the first natural checkpoint
	// cannot leave schema statements pending replay.
	if err := s.checkpoint(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("checkpoint after schema initialization failed")
	}

	return nil
}

// Ping reports whether the event log is reachable. The health surface
// calls this with a short deadline.
func (s *Store) Ping(ctx context.Context) error {
	if s.conn == nil {
		return fmt.Errorf("engagement store is not open")
	}
	return s.conn.PingContext(ctx)
}

// Close checkpoints the WAL and releases the connection pool.
func (s *Store) Close() error {
	if s.conn == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), queryBudget)
	if err := s.checkpoint(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("checkpoint before close failed")
	}
	cancel()

	return s.conn.Close()
}

func (s *Store) checkpoint(ctx context.Context) error {
	if _, err := s.conn.ExecContext(ctx, "CHECKPOINT"); err != nil {
		return fmt.Errorf("checkpoint: %w", err)
	}
	return nil
}

// ensureContext caps a statement at queryBudget unless the caller set
// a tighter deadline.
func (s *Store) ensureContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		return context.WithTimeout(context.Background(), queryBudget)
	}
	if _, ok := ctx.Deadline(); !ok {
		return context.WithTimeout(ctx, queryBudget)
	}
	return ctx, func() {}
}

// closeQuietly closes a resource in an error path where the Close
// error is not actionable.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}
