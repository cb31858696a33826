// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package fanout

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/chronographus/internal/config"
	"github.com/tomtom215/chronographus/internal/logging"
	"github.com/tomtom215/chronographus/internal/metrics"
	"github.com/tomtom215/chronographus/internal/models"
)

// followerBatchSize bounds one uninterrupted invalidation burst when an
// author's follower set exceeds the shard threshold.
const followerBatchSize = 1000

// EventKind tags a note write event.
type EventKind string

const (
	NoteCreated EventKind = "created"
	NoteUpdated EventKind = "updated"
	NoteDeleted EventKind = "deleted"
)

// Task is one queued fan-out unit of work.
type Task struct {
	Kind       EventKind
	Note       models.Note
	EnqueuedAt time.Time

	attempts int
}

// FollowerGraph resolves the followers a note write must reach.
type FollowerGraph interface {
	Followers(ctx context.Context, authorID string) ([]string, error)
}

// TimelineCache is the invalidation surface the worker drives.
type TimelineCache interface {
	InvalidateTimeline(viewerID string) bool
	InvalidateAuthor(authorID string) int
}

// UpdatePublisher pushes incremental updates into open stream sessions.
type UpdatePublisher interface {
	Publish(viewerID string, update models.TimelineUpdate)
}

// Worker is the single consumer of the fan-out queue.
type Worker struct {
	cfg      config.FanoutConfig
	graph    FollowerGraph
	cache    TimelineCache
	notifier UpdatePublisher

	mu    sync.Mutex
	queue []Task
	wake  chan struct{}

	processed atomic.Int64
	shed      atomic.Int64
	retried   atomic.Int64
	abandoned atomic.Int64

	logger zerolog.Logger
}

// NewWorker builds the fan-out worker. The notifier is optional.
func NewWorker(cfg config.FanoutConfig, graph FollowerGraph, cache TimelineCache, notifier UpdatePublisher) (*Worker, error) {
	if graph == nil {
		return nil, fmt.Errorf("fanout: follower graph is required")
	}
	if cache == nil {
		return nil, fmt.Errorf("fanout: timeline cache is required")
	}
	if cfg.QueueCapacity <= 0 {
		cfg.QueueCapacity = 10000
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 100 * time.Millisecond
	}
	if cfg.ShardThreshold <= 0 {
		cfg.ShardThreshold = 100000
	}
	return &Worker{
		cfg:      cfg,
		graph:    graph,
		cache:    cache,
		notifier: notifier,
		queue:    make([]Task, 0, 64),
		wake:     make(chan struct{}, 1),
		logger:   logging.WithComponent("fanout"),
	}, nil
}

// OnNoteCreated enqueues a created-note fan-out task.
func (w *Worker) OnNoteCreated(note models.Note) {
	w.enqueue(Task{Kind: NoteCreated, Note: note, EnqueuedAt: time.Now()})
}

// OnNoteUpdated enqueues an updated-note fan-out task.
func (w *Worker) OnNoteUpdated(note models.Note) {
	w.enqueue(Task{Kind: NoteUpdated, Note: note, EnqueuedAt: time.Now()})
}

// OnNoteDeleted enqueues a deleted-note fan-out task.
func (w *Worker) OnNoteDeleted(note models.Note) {
	w.enqueue(Task{Kind: NoteDeleted, Note: note, EnqueuedAt: time.Now()})
}

// enqueue admits the task, shedding the oldest queued task when the
// queue is at capacity. Producers never block.
func (w *Worker) enqueue(task Task) {
	if task.Note.AuthorID == "" {
		return
	}

	w.mu.Lock()
	if len(w.queue) >= w.cfg.QueueCapacity {
		shedded := w.queue[0]
		w.queue = w.queue[1:]
		w.shed.Add(1)
		metrics.FanoutTasksShed.Inc()
		w.logger.Warn().
			Str("kind", string(shedded.Kind)).
			Str("note_id", shedded.Note.NoteID).
			Msg("fanout queue full, shed oldest task")
	}
	w.queue = append(w.queue, task)
	depth := len(w.queue)
	w.mu.Unlock()

	metrics.FanoutQueueDepth.Set(float64(depth))

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// dequeue pops the oldest task.
func (w *Worker) dequeue() (Task, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.queue) == 0 {
		return Task{}, false
	}
	task := w.queue[0]
	w.queue = w.queue[1:]
	metrics.FanoutQueueDepth.Set(float64(len(w.queue)))
	return task, true
}

// Serve consumes the queue until the context is cancelled. It implements
// suture.Service.
func (w *Worker) Serve(ctx context.Context) error {
	w.logger.Info().
		Int("queue_capacity", w.cfg.QueueCapacity).
		Int("shard_threshold", w.cfg.ShardThreshold).
		Msg("fanout worker started")

	for {
		task, ok := w.dequeue()
		if !ok {
			select {
			case <-ctx.Done():
				w.logger.Info().Msg("fanout worker stopped")
				return ctx.Err()
			case <-w.wake:
				continue
			}
		}

		if err := ctx.Err(); err != nil {
			w.logger.Info().Msg("fanout worker stopped")
			return err
		}
		w.process(ctx, task)
	}
}

// String identifies the worker in supervisor logs.
func (w *Worker) String() string { return "fanout-worker" }

// process applies one task: resolve followers, invalidate their cached
// timelines and push a stream update. Deletions additionally purge every
// cached timeline still containing the author's notes. Follow-graph
// failures retry in place so per-follower ordering is preserved.
func (w *Worker) process(ctx context.Context, task Task) {
	for {
		followers, err := w.graph.Followers(ctx, task.Note.AuthorID)
		if err == nil {
			w.apply(ctx, task, followers)
			w.processed.Add(1)
			metrics.RecordFanoutProcessed(string(task.Kind))
			return
		}

		task.attempts++
		if task.attempts > w.cfg.MaxRetries {
			w.abandoned.Add(1)
			metrics.FanoutTasksAbandoned.Inc()
			w.logger.Warn().
				Err(err).
				Str("kind", string(task.Kind)).
				Str("note_id", task.Note.NoteID).
				Int("attempts", task.attempts).
				Msg("fanout task abandoned after retries")
			return
		}

		w.retried.Add(1)
		metrics.FanoutRetries.Inc()
		backoff := w.cfg.RetryBackoff << (task.attempts - 1)
		w.logger.Debug().
			Err(err).
			Str("note_id", task.Note.NoteID).
			Int("attempt", task.attempts).
			Dur("backoff", backoff).
			Msg("follow graph lookup failed, retrying")

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
	}
}

// apply performs the per-follower effects. Follower sets beyond the
// shard threshold run in batches with scheduler yields between them so
// one viral author cannot monopolize the worker.
func (w *Worker) apply(ctx context.Context, task Task, followers []string) {
	// Updates and deletes purge every cached timeline carrying the
	// author, not just followers; recommended and trending surfaces may
	// hold the note for viewers outside the follow graph.
	if task.Kind == NoteUpdated || task.Kind == NoteDeleted {
		purged := w.cache.InvalidateAuthor(task.Note.AuthorID)
		w.logger.Debug().
			Str("note_id", task.Note.NoteID).
			Str("kind", string(task.Kind)).
			Int("timelines_purged", purged).
			Msg("author timelines purged")
	}

	update := w.updateFor(task)
	sharded := len(followers) > w.cfg.ShardThreshold

	for start := 0; start < len(followers); start += followerBatchSize {
		if err := ctx.Err(); err != nil {
			return
		}
		end := min(start+followerBatchSize, len(followers))
		for _, follower := range followers[start:end] {
			w.cache.InvalidateTimeline(follower)
			if w.notifier != nil {
				w.notifier.Publish(follower, update)
			}
			metrics.FanoutFollowersNotified.Inc()
		}
		if sharded {
			runtime.Gosched()
		}
	}

	w.logger.Debug().
		Str("kind", string(task.Kind)).
		Str("note_id", task.Note.NoteID).
		Str("author_id", task.Note.AuthorID).
		Int("followers", len(followers)).
		Bool("sharded", sharded).
		Msg("fanout task applied")
}

// updateFor builds the stream update pushed to each follower.
func (w *Worker) updateFor(task Task) models.TimelineUpdate {
	update := models.TimelineUpdate{
		Timestamp:      time.Now().UTC(),
		AffectedNoteID: task.Note.NoteID,
	}
	switch task.Kind {
	case NoteCreated:
		update.UpdateType = models.UpdateNewItems
		update.AffectedItems = []models.RankedItem{{
			Note:            task.Note,
			Source:          models.SourceFollowing,
			FinalScore:      float64(task.Note.CreatedAt.Unix()),
			InjectedAt:      update.Timestamp,
			InjectionReason: "fanout",
		}}
	case NoteUpdated:
		update.UpdateType = models.UpdateItemUpdate
	case NoteDeleted:
		update.UpdateType = models.UpdateItemDeleted
	}
	return update
}

// QueueDepth returns the number of queued tasks.
func (w *Worker) QueueDepth() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.queue)
}

// Stats is a point-in-time counter snapshot for the health surface.
type Stats struct {
	QueueDepth int   `json:"queue_depth"`
	Processed  int64 `json:"processed"`
	Shed       int64 `json:"shed"`
	Retried    int64 `json:"retried"`
	Abandoned  int64 `json:"abandoned"`
}

// Stats returns the current worker counters.
func (w *Worker) Stats() Stats {
	return Stats{
		QueueDepth: w.QueueDepth(),
		Processed:  w.processed.Load(),
		Shed:       w.shed.Load(),
		Retried:    w.retried.Load(),
		Abandoned:  w.abandoned.Load(),
	}
}
