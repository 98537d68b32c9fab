/*
Package sqlite provides a SQLite-backed implementation of the event store
and master-data persistence.

PURPOSE:
  Implements ledger.EventStore plus the master-data tables the catalog is
  loaded from. In production the same patterns apply to PostgreSQL - only
  minor SQL dialect differences.

APPEND-ONLY ENFORCEMENT:
  - No UPDATE statements on the events table
  - No DELETE statements on the events table (Reset wipes everything for
    dev/demo use and is the single deliberate exception)
  - Corrections happen upstream as new events

SEQUENCE ASSIGNMENT:
  The events table uses an AUTOINCREMENT integer primary key as the
  insertion sequence. AUTOINCREMENT (not plain rowid) guarantees the
  sequence never reuses a value, so the statement tie-break stays
  reproducible even across a dev reset.

KEY TABLES:
  events:          Immutable ledger of stock movements
  locations:       Warehouses
  resource_types:  Stock variants (fuel types) with their unit
  suppliers, recipients, projects: filter/display master data

WAL MODE:
  SQLite is opened with WAL for better concurrency: multiple readers
  don't block, single writer at a time, better crash recovery.

USAGE:
  store, err := sqlite.New("./data/ledger.db")
  if err != nil { log.Fatal(err) }
  defer store.Close()

  catalog, _ := store.LoadCatalog(ctx)
  engine := ledger.NewEngine(catalog)

SEE ALSO:
  - ledger/store.go: Interface definition
  - ledger/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/stock-ledger/ledger"
)

// Store implements ledger.EventStore and master-data persistence using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows one writer; a second pooled connection would also give
	// ":memory:" databases a fresh, schemaless copy.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Events (append-only ledger)
	CREATE TABLE IF NOT EXISTS events (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		kind TEXT NOT NULL,
		event_date TEXT NOT NULL,
		location_id TEXT NOT NULL,
		resource_type_id TEXT NOT NULL,
		quantity TEXT NOT NULL,
		unit TEXT NOT NULL,
		counterpart_location_id TEXT,
		supplier_id TEXT,
		recipient_id TEXT,
		project_id TEXT,
		invoice TEXT,
		notes TEXT,
		created_at TEXT NOT NULL DEFAULT (datetime('now'))
	);

	CREATE INDEX IF NOT EXISTS idx_events_date
		ON events(event_date);
	CREATE INDEX IF NOT EXISTS idx_events_location_resource_date
		ON events(location_id, resource_type_id, event_date);
	CREATE INDEX IF NOT EXISTS idx_events_recipient
		ON events(recipient_id) WHERE recipient_id IS NOT NULL;
	CREATE INDEX IF NOT EXISTS idx_events_project
		ON events(project_id) WHERE project_id IS NOT NULL;

	-- Master data
	CREATE TABLE IF NOT EXISTS locations (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS resource_types (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		unit TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS suppliers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS recipients (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		name TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// EVENT STORE
// =============================================================================

const eventColumns = `seq, id, kind, event_date, location_id, resource_type_id,
	quantity, unit, counterpart_location_id, supplier_id, recipient_id,
	project_id, invoice, notes`

// Append persists one event and returns it with its assigned sequence.
func (s *Store) Append(ctx context.Context, ev ledger.Event) (ledger.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendWith(ctx, s.db, ev)
}

// AppendBatch persists multiple events atomically, in argument order.
func (s *Store) AppendBatch(ctx context.Context, evs []ledger.Event) ([]ledger.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	out := make([]ledger.Event, 0, len(evs))
	for _, ev := range evs {
		stored, err := s.appendWith(ctx, tx, ev)
		if err != nil {
			return nil, err
		}
		out = append(out, stored)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return out, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) appendWith(ctx context.Context, db execer, ev ledger.Event) (ledger.Event, error) {
	var exists bool
	err := db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM events WHERE id = ?)`, string(ev.ID)).Scan(&exists)
	if err != nil {
		return ledger.Event{}, err
	}
	if exists {
		return ledger.Event{}, ledger.ErrDuplicateEventID
	}

	res, err := db.ExecContext(ctx, `
		INSERT INTO events (id, kind, event_date, location_id, resource_type_id,
			quantity, unit, counterpart_location_id, supplier_id, recipient_id,
			project_id, invoice, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(ev.ID), string(ev.Kind), ev.Date.String(),
		string(ev.Location), string(ev.Resource),
		ev.Quantity.Value.String(), string(ev.Quantity.Unit),
		nullable(string(ev.Counterpart)), nullable(string(ev.Supplier)),
		nullable(string(ev.Recipient)), nullable(string(ev.Project)),
		nullable(ev.Invoice), nullable(ev.Notes),
	)
	if err != nil {
		return ledger.Event{}, fmt.Errorf("append event %s: %w", ev.ID, err)
	}

	seq, err := res.LastInsertId()
	if err != nil {
		return ledger.Event{}, err
	}
	ev.Seq = seq
	return ev, nil
}

// Snapshot returns all events in insertion order.
func (s *Store) Snapshot(ctx context.Context) ([]ledger.Event, error) {
	return s.queryEvents(ctx,
		`SELECT `+eventColumns+` FROM events ORDER BY seq`)
}

// SnapshotRange returns events with date in [from, to], insertion order.
func (s *Store) SnapshotRange(ctx context.Context, from, to ledger.Date) ([]ledger.Event, error) {
	return s.queryEvents(ctx,
		`SELECT `+eventColumns+` FROM events
		 WHERE event_date >= ? AND event_date <= ? ORDER BY seq`,
		from.String(), to.String())
}

// Exists checks whether an event id is already stored.
func (s *Store) Exists(ctx context.Context, id ledger.EventID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM events WHERE id = ?)`, string(id)).Scan(&exists)
	return exists, err
}

// Get returns a stored event by id.
func (s *Store) Get(ctx context.Context, id ledger.EventID) (ledger.Event, error) {
	evs, err := s.queryEvents(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = ?`, string(id))
	if err != nil {
		return ledger.Event{}, err
	}
	if len(evs) == 0 {
		return ledger.Event{}, ledger.ErrEventNotFound
	}
	return evs[0], nil
}

func (s *Store) queryEvents(ctx context.Context, query string, args ...any) ([]ledger.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []ledger.Event
	for rows.Next() {
		var (
			ev            ledger.Event
			id, kind      string
			dateStr       string
			loc, res      string
			quantity      string
			unit          string
			counterpart   sql.NullString
			supplier      sql.NullString
			recipient     sql.NullString
			project       sql.NullString
			invoice, note sql.NullString
		)
		if err := rows.Scan(&ev.Seq, &id, &kind, &dateStr, &loc, &res,
			&quantity, &unit, &counterpart, &supplier, &recipient,
			&project, &invoice, &note); err != nil {
			return nil, err
		}

		d, err := ledger.ParseDate(dateStr)
		if err != nil {
			return nil, fmt.Errorf("event %s: %w", id, err)
		}

		ev.ID = ledger.EventID(id)
		ev.Kind = ledger.EventKind(kind)
		ev.Date = d
		ev.Location = ledger.LocationID(loc)
		ev.Resource = ledger.ResourceTypeID(res)
		ev.Quantity = ledger.Quantity{
			Value: ledger.MustParseDecimal(quantity),
			Unit:  ledger.Unit(unit),
		}
		ev.Counterpart = ledger.LocationID(counterpart.String)
		ev.Supplier = ledger.SupplierID(supplier.String)
		ev.Recipient = ledger.RecipientID(recipient.String)
		ev.Project = ledger.ProjectID(project.String)
		ev.Invoice = invoice.String
		ev.Notes = note.String

		events = append(events, ev)
	}
	return events, rows.Err()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// =============================================================================
// MASTER DATA
// =============================================================================

func (s *Store) SaveLocation(ctx context.Context, l ledger.Location) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO locations (id, name) VALUES (?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name`,
		string(l.ID), l.Name)
	return err
}

func (s *Store) ListLocations(ctx context.Context) ([]ledger.Location, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM locations ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ledger.Location
	for rows.Next() {
		var l ledger.Location
		var id string
		if err := rows.Scan(&id, &l.Name); err != nil {
			return nil, err
		}
		l.ID = ledger.LocationID(id)
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *Store) SaveResourceType(ctx context.Context, r ledger.ResourceType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO resource_types (id, name, unit) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name, unit = excluded.unit`,
		string(r.ID), r.Name, string(r.Unit))
	return err
}

func (s *Store) ListResourceTypes(ctx context.Context) ([]ledger.ResourceType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, unit FROM resource_types ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ledger.ResourceType
	for rows.Next() {
		var r ledger.ResourceType
		var id, unit string
		if err := rows.Scan(&id, &r.Name, &unit); err != nil {
			return nil, err
		}
		r.ID = ledger.ResourceTypeID(id)
		r.Unit = ledger.Unit(unit)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) SaveSupplier(ctx context.Context, sup ledger.Supplier) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO suppliers (id, name) VALUES (?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name`,
		string(sup.ID), sup.Name)
	return err
}

func (s *Store) ListSuppliers(ctx context.Context) ([]ledger.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM suppliers ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ledger.Supplier
	for rows.Next() {
		var sup ledger.Supplier
		var id string
		if err := rows.Scan(&id, &sup.Name); err != nil {
			return nil, err
		}
		sup.ID = ledger.SupplierID(id)
		out = append(out, sup)
	}
	return out, rows.Err()
}

func (s *Store) SaveRecipient(ctx context.Context, r ledger.Recipient) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO recipients (id, kind, name) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET kind = excluded.kind, name = excluded.name`,
		string(r.ID), string(r.Kind), r.Name)
	return err
}

func (s *Store) ListRecipients(ctx context.Context) ([]ledger.Recipient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.QueryContext(ctx, `SELECT id, kind, name FROM recipients ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ledger.Recipient
	for rows.Next() {
		var r ledger.Recipient
		var id, kind string
		if err := rows.Scan(&id, &kind, &r.Name); err != nil {
			return nil, err
		}
		r.ID = ledger.RecipientID(id)
		r.Kind = ledger.RecipientKind(kind)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) SaveProject(ctx context.Context, p ledger.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO projects (id, name) VALUES (?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name`,
		string(p.ID), p.Name)
	return err
}

func (s *Store) ListProjects(ctx context.Context) ([]ledger.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM projects ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ledger.Project
	for rows.Next() {
		var p ledger.Project
		var id string
		if err := rows.Scan(&id, &p.Name); err != nil {
			return nil, err
		}
		p.ID = ledger.ProjectID(id)
		out = append(out, p)
	}
	return out, rows.Err()
}

// LoadCatalog assembles a catalog from the master-data tables.
func (s *Store) LoadCatalog(ctx context.Context) (*ledger.Catalog, error) {
	catalog := ledger.NewCatalog()

	locations, err := s.ListLocations(ctx)
	if err != nil {
		return nil, err
	}
	for _, l := range locations {
		catalog.AddLocation(l)
	}

	resources, err := s.ListResourceTypes(ctx)
	if err != nil {
		return nil, err
	}
	for _, r := range resources {
		catalog.AddResourceType(r)
	}

	suppliers, err := s.ListSuppliers(ctx)
	if err != nil {
		return nil, err
	}
	for _, sup := range suppliers {
		catalog.AddSupplier(sup)
	}

	recipients, err := s.ListRecipients(ctx)
	if err != nil {
		return nil, err
	}
	for _, r := range recipients {
		catalog.AddRecipient(r)
	}

	projects, err := s.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range projects {
		catalog.AddProject(p)
	}

	return catalog, nil
}

// Reset wipes all data. Dev/demo use only.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM events;
		DELETE FROM locations;
		DELETE FROM resource_types;
		DELETE FROM suppliers;
		DELETE FROM recipients;
		DELETE FROM projects;
	`)
	return err
}
