// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/apex/log"
)

// Store persists a whole Snapshot. Implementations never see partial updates:
// every Save carries the complete mapping.
type Store interface {
	// Load returns the persisted snapshot. A store that has never been written
	// returns an empty snapshot and a nil error.
	Load(ctx context.Context) (Snapshot, error)

	// Save replaces the persisted snapshot with s.
	Save(ctx context.Context, s Snapshot) error
}

// ErrorHandler receives persistence failures that the Cache recovers from.
// op is "load" or "save".
type ErrorHandler func(op string, err error)

// Classifier returns the kind of a bare (untagged) value found under key on
// load. Returning "" drops the entry.
type Classifier func(key string, value json.RawMessage) Kind

// Cache is a key to Entry mapping backed by a Store. It is loaded once when
// created and flushed in full after every Put.
type Cache struct {
	mu       sync.Mutex
	saveMu   sync.Mutex
	entries  Snapshot
	store    Store
	logger   log.Interface
	onError  ErrorHandler
	classify Classifier
	now      func() time.Time
}

// Option customizes a Cache.
type Option func(*Cache)

// WithLogger sets the logger used for cache events. Defaults to log.Log.
func WithLogger(l log.Interface) Option {
	return func(c *Cache) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithErrorHandler sets a callback for recovered load/save failures.
func WithErrorHandler(h ErrorHandler) Option {
	return func(c *Cache) { c.onError = h }
}

// WithClassifier sets the function used to tag untagged entries on load.
func WithClassifier(fn Classifier) Option {
	return func(c *Cache) { c.classify = fn }
}

// New builds a Cache over store and loads it. Load failures are logged and
// reported to the error handler; the cache then starts empty and is not
// reloaded. A nil store yields a memory-only cache.
func New(ctx context.Context, store Store, opts ...Option) *Cache {
	c := &Cache{
		entries: make(Snapshot),
		store:   store,
		logger:  log.Log,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	if store == nil {
		return c
	}

	snap, err := store.Load(ctx)
	if err != nil {
		c.report("load", err)
		return c
	}

	for key, entry := range snap {
		if entry.Kind == "" && c.classify != nil {
			entry.Kind = c.classify(key, entry.Value)
		}
		if !entry.Kind.Valid() {
			c.logger.Debugf("dropping cache entry with unknown kind: %s", key)
			continue
		}
		c.entries[key] = entry
	}
	c.logger.Debugf("loaded %d cache entries", len(c.entries))

	return c
}

// Get returns the raw value stored under key when it is of the wanted kind.
func (c *Cache) Get(key string, kind Kind) (json.RawMessage, bool) {
	c.mu.Lock()
	entry, ok := c.entries[key]
	c.mu.Unlock()

	if !ok {
		return nil, false
	}
	if entry.Kind != kind {
		c.logger.Warnf("cache entry %s is %s, wanted %s", key, entry.Kind, kind)
		return nil, false
	}
	return entry.Value, true
}

// Lookup decodes the value stored under key into v. It reports false on a miss,
// a kind mismatch, or a value that no longer decodes.
func (c *Cache) Lookup(key string, kind Kind, v any) bool {
	raw, ok := c.Get(key, kind)
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, v); err != nil {
		c.logger.WithError(err).Warnf("failed to decode cache entry %s", key)
		return false
	}
	return true
}

// Put stores value under key and flushes the cache. It returns ErrKindConflict
// if key already holds another kind of entry. Flush failures are reported to
// the error handler, not returned.
func (c *Cache) Put(ctx context.Context, key string, kind Kind, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}

	c.mu.Lock()
	if prev, ok := c.entries[key]; ok && prev.Kind != kind {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s is %s, not %s", ErrKindConflict, key, prev.Kind, kind)
	}
	c.entries[key] = Entry{Kind: kind, Value: raw, StoredAt: c.now().UTC()}
	c.mu.Unlock()

	if c.store == nil {
		return nil
	}
	if err := c.Flush(ctx); err != nil {
		c.report("save", err)
	}
	return nil
}

// Flush writes the whole cache to the store. It returns ErrNoStore for a
// memory-only cache.
func (c *Cache) Flush(ctx context.Context) error {
	if c.store == nil {
		return ErrNoStore
	}

	// Saves are serialized so an older snapshot can never land after a newer one.
	c.saveMu.Lock()
	defer c.saveMu.Unlock()

	c.mu.Lock()
	snap := c.entries.Clone()
	c.mu.Unlock()

	if err := c.store.Save(ctx, snap); err != nil {
		return fmt.Errorf("failed to save cache: %w", err)
	}
	return nil
}

// Clear removes every entry and flushes the now empty cache.
func (c *Cache) Clear(ctx context.Context) error {
	c.mu.Lock()
	c.entries = make(Snapshot)
	c.mu.Unlock()
	if c.store == nil {
		return nil
	}
	return c.Flush(ctx)
}

// Len returns the number of entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Keys returns the cached keys in sorted order.
func (c *Cache) Keys() []string {
	c.mu.Lock()
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	c.mu.Unlock()

	sort.Strings(keys)
	return keys
}

// Entry returns a copy of the entry stored under key.
func (c *Cache) Entry(key string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if ok {
		e.Value = append(json.RawMessage(nil), e.Value...)
	}
	return e, ok
}

// Store returns the backing store, which may be nil.
func (c *Cache) Store() Store {
	return c.store
}

func (c *Cache) report(op string, err error) {
	c.logger.WithError(err).Warnf("cache %s failed", op)
	if c.onError != nil {
		c.onError(op, err)
	}
}
