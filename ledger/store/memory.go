// Package store provides EventStore implementations.
package store

import (
	"context"
	"sync"

	"github.com/warp/stock-ledger/ledger"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu      sync.RWMutex
	events  []ledger.Event
	byID    map[ledger.EventID]int
	nextSeq int64
}

func NewMemory() *Memory {
	return &Memory{
		byID:    make(map[ledger.EventID]int),
		nextSeq: 1,
	}
}

// Append adds a single event and assigns its sequence. Append-only.
func (m *Memory) Append(_ context.Context, ev ledger.Event) (ledger.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.appendLocked(ev)
}

// AppendBatch adds multiple events atomically.
func (m *Memory) AppendBatch(_ context.Context, evs []ledger.Event) ([]ledger.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Check all ids first so a mid-batch duplicate cannot leave a partial write.
	seen := make(map[ledger.EventID]bool, len(evs))
	for _, ev := range evs {
		if _, ok := m.byID[ev.ID]; ok || seen[ev.ID] {
			return nil, ledger.ErrDuplicateEventID
		}
		seen[ev.ID] = true
	}

	out := make([]ledger.Event, 0, len(evs))
	for _, ev := range evs {
		stored, err := m.appendLocked(ev)
		if err != nil {
			return nil, err
		}
		out = append(out, stored)
	}
	return out, nil
}

func (m *Memory) appendLocked(ev ledger.Event) (ledger.Event, error) {
	if _, ok := m.byID[ev.ID]; ok {
		return ledger.Event{}, ledger.ErrDuplicateEventID
	}
	ev.Seq = m.nextSeq
	m.nextSeq++
	m.byID[ev.ID] = len(m.events)
	m.events = append(m.events, ev)
	return ev, nil
}

// Snapshot returns a copy of all events in insertion order. The caller owns
// the copy; later appends do not affect it.
func (m *Memory) Snapshot(_ context.Context) ([]ledger.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ledger.Event, len(m.events))
	copy(out, m.events)
	return out, nil
}

func (m *Memory) SnapshotRange(_ context.Context, from, to ledger.Date) ([]ledger.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []ledger.Event
	for _, ev := range m.events {
		if ev.Date.AfterOrEqual(from) && ev.Date.BeforeOrEqual(to) {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (m *Memory) Exists(_ context.Context, id ledger.EventID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.byID[id]
	return ok, nil
}

// Get returns a stored event by id.
func (m *Memory) Get(_ context.Context, id ledger.EventID) (ledger.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if i, ok := m.byID[id]; ok {
		return m.events[i], nil
	}
	return ledger.Event{}, ledger.ErrEventNotFound
}
