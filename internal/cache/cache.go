// Copyright 2025 Turkmen Assistant Project
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cache provides an expiring single-use entry store used for login
// challenges. Time is injected through a Clock capability so expiry is
// testable without wall-clock coupling.
package cache

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Clock supplies the current time
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall-clock implementation of Clock
type SystemClock struct{}

// Now returns the current wall-clock time
func (SystemClock) Now() time.Time {
	return time.Now()
}

type entry struct {
	value     string
	expiresAt time.Time
}

// Store holds expiring single-use entries keyed by id
type Store struct {
	mu      sync.Mutex
	entries map[string]entry
	clock   Clock
	logger  *zap.Logger
}

// NewStore creates an empty store using the given clock
func NewStore(clock Clock, logger *zap.Logger) *Store {
	return &Store{
		entries: make(map[string]entry),
		clock:   clock,
		logger:  logger,
	}
}

// Put inserts or replaces an entry that expires after ttl
func (s *Store) Put(id, value string, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = entry{value: value, expiresAt: s.clock.Now().Add(ttl)}
}

// Consume returns the entry's value and removes it. Expired or unknown ids
// report false. Each entry can be consumed at most once.
func (s *Store) Consume(id string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return "", false
	}
	delete(s.entries, id)

	if s.clock.Now().After(e.expiresAt) {
		return "", false
	}
	return e.value, true
}

// Sweep removes expired entries and returns how many were dropped
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	removed := 0
	for id, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, id)
			removed++
		}
	}

	if removed > 0 {
		s.logger.Debug("Swept expired cache entries", zap.Int("removed", removed))
	}
	return removed
}

// Len returns the number of stored entries, expired ones included
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// StartSweeper runs periodic sweeps until the context is cancelled
func (s *Store) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Sweep()
			}
		}
	}()
}
