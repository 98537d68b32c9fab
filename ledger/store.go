/*
store.go - Persistence interface for the event store

PURPOSE:
  Defines the boundary between the engine and whatever holds the events.
  The engine itself owns no I/O: every computation takes an immutable
  snapshot obtained from a store. Implementations may use SQLite or plain
  memory; the contract is the same.

APPEND-ONLY CONTRACT:
  - Append / AppendBatch are the only writes. No update, no delete.
  - Edits and deletions are modeled upstream as new events; historical
    folded output is never rewritten in place.
  - Append assigns the monotonic insertion sequence (Event.Seq). The
    sequence is the documented tie-break for same-date ordering, so it
    must be stable and reproducible - never a wall-clock timestamp.

SNAPSHOT SEMANTICS:
  Snapshot returns a copy the caller owns. The engine treats it as
  read-only; concurrent writes to the store do not affect a fold already
  holding its snapshot. Consistency of the snapshot is the store's job.

IMPLEMENTATIONS:
  - ledger/store/memory.go: In-memory for testing/dev
  - store/sqlite/sqlite.go: Production SQLite
*/
package ledger

import "context"

// EventStore persists ledger events. Append-only.
type EventStore interface {
	// Append persists one event and returns it with its assigned sequence.
	// Fails with ErrDuplicateEventID if the id already exists.
	Append(ctx context.Context, ev Event) (Event, error)

	// AppendBatch persists multiple events atomically, in argument order.
	// Either all are written (with consecutive sequences) or none are.
	AppendBatch(ctx context.Context, evs []Event) ([]Event, error)

	// Snapshot returns a copy of all events in insertion order.
	Snapshot(ctx context.Context) ([]Event, error)

	// SnapshotRange returns events with date in [from, to], insertion order.
	SnapshotRange(ctx context.Context, from, to Date) ([]Event, error)

	// Exists checks whether an event id is already stored.
	Exists(ctx context.Context, id EventID) (bool, error)
}
