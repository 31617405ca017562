// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"context"
	"sync"
)

// MemoryStore keeps the snapshot in process memory. It backs the cache when
// persistence is disabled and serves as a deterministic store in tests.
type MemoryStore struct {
	mu    sync.Mutex
	snap  Snapshot
	saves int

	// LoadErr and SaveErr, when set, are returned by Load and Save.
	LoadErr error
	SaveErr error
}

// NewMemoryStore returns a store seeded with a copy of initial.
func NewMemoryStore(initial Snapshot) *MemoryStore {
	return &MemoryStore{snap: initial.Clone()}
}

// Load returns a copy of the held snapshot.
func (s *MemoryStore) Load(_ context.Context) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.LoadErr != nil {
		return nil, s.LoadErr
	}
	return s.snap.Clone(), nil
}

// Save replaces the held snapshot with a copy of snap.
func (s *MemoryStore) Save(_ context.Context, snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.snap = snap.Clone()
	s.saves++
	return nil
}

// Snapshot returns a copy of the held snapshot.
func (s *MemoryStore) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.Clone()
}

// Saves returns how many times Save succeeded.
func (s *MemoryStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

func (s *MemoryStore) String() string {
	return "memory"
}
