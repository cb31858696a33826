// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package cache

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/chronographus/internal/logging"
	"github.com/tomtom215/chronographus/internal/models"
)

// Sentinel errors for the durable tier.
var (
	// ErrNotFound is returned when a key is absent or expired.
	ErrNotFound = errors.New("entry not found")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("durable cache is closed")
)

// Key prefixes for the durable tier
const (
	prefixTimeline = "timeline:"
	prefixProfile  = "profile:"
	prefixLastRead = "lastread:"
)

// DurableConfig configures the BadgerDB-backed durable tier.
type DurableConfig struct {
	// Path is the on-disk directory for the database.
	// Ignored when InMemory is set.
	Path string

	// InMemory runs BadgerDB without disk persistence.
	// Intended for tests.
	InMemory bool

	// SyncWrites forces fsync on every write. The durable tier is a
	// cache, so this defaults to false: losing recent writes on crash
	// only costs a reassembly.
	SyncWrites bool

	// GCRatio is the value-log garbage collection threshold passed to
	// BadgerDB. Defaults to 0.5 when zero.
	GCRatio float64
}

// DurableCache is the optional persistent cache tier backed by BadgerDB.
//
// It survives process restarts so viewers get warm timelines immediately
// after a deploy instead of a reassembly stampede. Values are stored as
// JSON with BadgerDB's native TTL; expired keys read as ErrNotFound.
type DurableCache struct {
	db      *badger.DB
	gcRatio float64

	mu     sync.RWMutex
	closed bool
}

// OpenDurable opens (or creates) the durable tier.
func OpenDurable(cfg DurableConfig) (*DurableCache, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("durable cache path is required")
	}

	opts := badger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.SyncWrites = cfg.SyncWrites

	// Reduce logging verbosity
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	gcRatio := cfg.GCRatio
	if gcRatio == 0 {
		gcRatio = 0.5
	}

	logging.Info().
		Str("path", cfg.Path).
		Bool("in_memory", cfg.InMemory).
		Bool("sync_writes", cfg.SyncWrites).
		Msg("Durable cache tier opened")

	return &DurableCache{db: db, gcRatio: gcRatio}, nil
}

// GetTimeline returns the stored timeline for a viewer.
func (d *DurableCache) GetTimeline(viewerID string) (*CachedTimeline, error) {
	var timeline CachedTimeline
	if err := d.get(prefixTimeline+viewerID, &timeline); err != nil {
		return nil, err
	}
	return &timeline, nil
}

// PutTimeline stores a timeline for a viewer with the given TTL.
func (d *DurableCache) PutTimeline(viewerID string, timeline *CachedTimeline, ttl time.Duration) error {
	return d.set(prefixTimeline+viewerID, timeline, ttl)
}

// DeleteTimeline removes the stored timeline for a viewer.
// Deleting an absent key is not an error.
func (d *DurableCache) DeleteTimeline(viewerID string) error {
	return d.delete(prefixTimeline + viewerID)
}

// GetProfile returns the stored viewer profile.
func (d *DurableCache) GetProfile(viewerID string) (*models.ViewerProfile, error) {
	var profile models.ViewerProfile
	if err := d.get(prefixProfile+viewerID, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// PutProfile stores a viewer profile with the given TTL.
func (d *DurableCache) PutProfile(viewerID string, profile *models.ViewerProfile, ttl time.Duration) error {
	return d.set(prefixProfile+viewerID, profile, ttl)
}

// DeleteProfile removes the stored viewer profile.
// Deleting an absent key is not an error.
func (d *DurableCache) DeleteProfile(viewerID string) error {
	return d.delete(prefixProfile + viewerID)
}

// GetLastRead returns the viewer's last-read marker.
func (d *DurableCache) GetLastRead(viewerID string) (time.Time, error) {
	var readAt time.Time
	if err := d.get(prefixLastRead+viewerID, &readAt); err != nil {
		return time.Time{}, err
	}
	return readAt, nil
}

// SetLastRead stores the viewer's last-read marker with the given TTL.
func (d *DurableCache) SetLastRead(viewerID string, readAt time.Time, ttl time.Duration) error {
	return d.set(prefixLastRead+viewerID, readAt, ttl)
}

// RunGC runs one round of value-log garbage collection, repeating while
// BadgerDB reports progress. Intended to be called periodically by the
// cache maintenance service.
func (d *DurableCache) RunGC() error {
	d.mu.RLock()
	if d.closed {
		d.mu.RUnlock()
		return ErrClosed
	}
	d.mu.RUnlock()

	for {
		err := d.db.RunValueLogGC(d.gcRatio)
		if errors.Is(err, badger.ErrNoRewrite) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("value log GC: %w", err)
		}
	}
}

// SizeBytes returns the current LSM and value-log sizes.
func (d *DurableCache) SizeBytes() (lsm, vlog int64) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return 0, 0
	}
	return d.db.Size()
}

// Close shuts down the database. Subsequent operations return ErrClosed.
func (d *DurableCache) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true
	return d.db.Close()
}

func (d *DurableCache) get(key string, v any) error {
	d.mu.RLock()
	if d.closed {
		d.mu.RUnlock()
		return ErrClosed
	}
	d.mu.RUnlock()

	err := d.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get %s: %w", key, err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, v)
		})
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("durable get: %w", err)
	}
	return nil
}

func (d *DurableCache) set(key string, v any, ttl time.Duration) error {
	d.mu.RLock()
	if d.closed {
		d.mu.RUnlock()
		return ErrClosed
	}
	d.mu.RUnlock()

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}

	err = d.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(key), data)
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})
	if err != nil {
		return fmt.Errorf("durable set: %w", err)
	}
	return nil
}

func (d *DurableCache) delete(key string) error {
	d.mu.RLock()
	if d.closed {
		d.mu.RUnlock()
		return ErrClosed
	}
	d.mu.RUnlock()

	err := d.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(key))
		if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("durable delete: %w", err)
	}
	return nil
}
