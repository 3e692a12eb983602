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

package cache

import (
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

// fakeClock advances only when told to
type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.now = f.now.Add(d)
}

func newTestStore(t *testing.T) (*Store, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	return NewStore(clock, zaptest.NewLogger(t)), clock
}

func TestConsume_ReturnsValueOnce(t *testing.T) {
	store, _ := newTestStore(t)
	store.Put("id-1", "ABC12", time.Minute)

	value, ok := store.Consume("id-1")
	if !ok || value != "ABC12" {
		t.Fatalf("expected the stored value, got %q (%v)", value, ok)
	}

	if _, ok := store.Consume("id-1"); ok {
		t.Errorf("expected a second consume to fail")
	}
}

func TestConsume_UnknownID(t *testing.T) {
	store, _ := newTestStore(t)

	if _, ok := store.Consume("missing"); ok {
		t.Errorf("expected unknown id to report false")
	}
}

func TestConsume_ExpiredEntry(t *testing.T) {
	store, clock := newTestStore(t)
	store.Put("id-1", "ABC12", time.Minute)

	clock.Advance(2 * time.Minute)

	if _, ok := store.Consume("id-1"); ok {
		t.Errorf("expected expired entry to report false")
	}
	// Expired entries are dropped by the failed consume
	if store.Len() != 0 {
		t.Errorf("expected the expired entry removed, got %d entries", store.Len())
	}
}

func TestPut_ReplacesExisting(t *testing.T) {
	store, _ := newTestStore(t)
	store.Put("id-1", "old", time.Minute)
	store.Put("id-1", "new", time.Minute)

	value, ok := store.Consume("id-1")
	if !ok || value != "new" {
		t.Errorf("expected the replaced value, got %q (%v)", value, ok)
	}
}

func TestSweep_DropsOnlyExpired(t *testing.T) {
	store, clock := newTestStore(t)
	store.Put("stale-1", "a", time.Minute)
	store.Put("stale-2", "b", time.Minute)
	store.Put("fresh", "c", time.Hour)

	clock.Advance(10 * time.Minute)

	if removed := store.Sweep(); removed != 2 {
		t.Errorf("expected 2 entries swept, got %d", removed)
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 entry left, got %d", store.Len())
	}
	if _, ok := store.Consume("fresh"); !ok {
		t.Errorf("expected the fresh entry to survive the sweep")
	}
}

func TestSweep_NothingExpired(t *testing.T) {
	store, _ := newTestStore(t)
	store.Put("id-1", "a", time.Minute)

	if removed := store.Sweep(); removed != 0 {
		t.Errorf("expected nothing swept, got %d", removed)
	}
}
