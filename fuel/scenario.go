/*
scenario.go - Loadable demo scenarios

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	data for testing and demos. Each scenario declares master data
	(locations, resource types, suppliers, recipients, projects) and a
	stream of ledger events.

SCENARIO FORMAT:

	Scenarios are YAML documents. Built-in ones are embedded below as
	string constants; deployments can also ship their own files and load
	them with ParseScenario. Quantities are decimal strings so fixture
	values survive round trips exactly ("250.5" stays 250.5).

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Save master data
 3. Append events in declaration order (the store assigns sequence
    numbers, so declaration order becomes the same-date tie-break)

ADDING NEW SCENARIOS:
 1. Write the YAML document as a string constant
 2. Append it to builtinDocs

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - api/handlers.go: LoadScenario, ListScenarios handlers
*/
package fuel

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/warp/stock-ledger/ledger"
)

// =============================================================================
// SCENARIO DOCUMENT
// =============================================================================

type Scenario struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`

	Locations     []scenarioLocation     `yaml:"locations"`
	ResourceTypes []scenarioResourceType `yaml:"resource_types"`
	Suppliers     []scenarioSupplier     `yaml:"suppliers"`
	Recipients    []scenarioRecipient    `yaml:"recipients"`
	Projects      []scenarioProject      `yaml:"projects"`
	Events        []scenarioEvent        `yaml:"events"`
}

type scenarioLocation struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

type scenarioResourceType struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	Unit string `yaml:"unit"`
}

type scenarioSupplier struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

type scenarioRecipient struct {
	ID   string `yaml:"id"`
	Kind string `yaml:"kind"`
	Name string `yaml:"name"`
}

type scenarioProject struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

type scenarioEvent struct {
	ID          string `yaml:"id"`
	Kind        string `yaml:"kind"`
	Date        string `yaml:"date"`
	Location    string `yaml:"location"`
	Resource    string `yaml:"resource"`
	Quantity    string `yaml:"quantity"`
	Counterpart string `yaml:"counterpart,omitempty"`
	Supplier    string `yaml:"supplier,omitempty"`
	Recipient   string `yaml:"recipient,omitempty"`
	Project     string `yaml:"project,omitempty"`
	Invoice     string `yaml:"invoice,omitempty"`
	Notes       string `yaml:"notes,omitempty"`
}

// ParseScenario decodes one YAML scenario document.
func ParseScenario(doc []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(doc, &s); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if s.ID == "" {
		return nil, fmt.Errorf("parse scenario: missing id")
	}
	return &s, nil
}

// LedgerEvents converts the declared event stream into ledger events, in
// declaration order. Quantities and dates are validated here so a broken
// fixture fails at load time, not mid-statement.
func (s *Scenario) LedgerEvents() ([]ledger.Event, error) {
	out := make([]ledger.Event, 0, len(s.Events))
	for i, se := range s.Events {
		date, err := ledger.ParseDate(se.Date)
		if err != nil {
			return nil, fmt.Errorf("scenario %s event %d: %w", s.ID, i, err)
		}
		value, err := decimal.NewFromString(se.Quantity)
		if err != nil {
			return nil, fmt.Errorf("scenario %s event %d: quantity %q: %w", s.ID, i, se.Quantity, err)
		}
		unit := s.unitOf(se.Resource)
		out = append(out, ledger.Event{
			ID:          ledger.EventID(se.ID),
			Kind:        ledger.EventKind(se.Kind),
			Date:        date,
			Location:    ledger.LocationID(se.Location),
			Resource:    ledger.ResourceTypeID(se.Resource),
			Quantity:    ledger.Quantity{Value: value, Unit: unit},
			Counterpart: ledger.LocationID(se.Counterpart),
			Supplier:    ledger.SupplierID(se.Supplier),
			Recipient:   ledger.RecipientID(se.Recipient),
			Project:     ledger.ProjectID(se.Project),
			Invoice:     se.Invoice,
			Notes:       se.Notes,
		})
	}
	return out, nil
}

func (s *Scenario) unitOf(resource string) ledger.Unit {
	for _, rt := range s.ResourceTypes {
		if rt.ID == resource {
			return ledger.Unit(rt.Unit)
		}
	}
	return ""
}

// =============================================================================
// APPLY - Load a scenario into the stores
// =============================================================================

// MasterStore is the slice of the persistence layer a scenario needs for
// master data. *sqlite.Store satisfies it.
type MasterStore interface {
	SaveLocation(ctx context.Context, l ledger.Location) error
	SaveResourceType(ctx context.Context, r ledger.ResourceType) error
	SaveSupplier(ctx context.Context, s ledger.Supplier) error
	SaveRecipient(ctx context.Context, r ledger.Recipient) error
	SaveProject(ctx context.Context, p ledger.Project) error
}

// Apply saves the scenario's master data and appends its events. The caller
// is expected to have reset the stores first; Apply itself never deletes.
func (s *Scenario) Apply(ctx context.Context, master MasterStore, events ledger.EventStore) error {
	for _, l := range s.Locations {
		if err := master.SaveLocation(ctx, ledger.Location{ID: ledger.LocationID(l.ID), Name: l.Name}); err != nil {
			return fmt.Errorf("scenario %s: save location %s: %w", s.ID, l.ID, err)
		}
	}
	for _, rt := range s.ResourceTypes {
		record := ledger.ResourceType{
			ID:   ledger.ResourceTypeID(rt.ID),
			Name: rt.Name,
			Unit: ledger.Unit(rt.Unit),
		}
		if err := master.SaveResourceType(ctx, record); err != nil {
			return fmt.Errorf("scenario %s: save resource type %s: %w", s.ID, rt.ID, err)
		}
	}
	for _, sup := range s.Suppliers {
		if err := master.SaveSupplier(ctx, ledger.Supplier{ID: ledger.SupplierID(sup.ID), Name: sup.Name}); err != nil {
			return fmt.Errorf("scenario %s: save supplier %s: %w", s.ID, sup.ID, err)
		}
	}
	for _, rec := range s.Recipients {
		record := ledger.Recipient{
			ID:   ledger.RecipientID(rec.ID),
			Kind: ledger.RecipientKind(rec.Kind),
			Name: rec.Name,
		}
		if err := master.SaveRecipient(ctx, record); err != nil {
			return fmt.Errorf("scenario %s: save recipient %s: %w", s.ID, rec.ID, err)
		}
	}
	for _, p := range s.Projects {
		if err := master.SaveProject(ctx, ledger.Project{ID: ledger.ProjectID(p.ID), Name: p.Name}); err != nil {
			return fmt.Errorf("scenario %s: save project %s: %w", s.ID, p.ID, err)
		}
	}

	evs, err := s.LedgerEvents()
	if err != nil {
		return err
	}
	if _, err := events.AppendBatch(ctx, evs); err != nil {
		return fmt.Errorf("scenario %s: append events: %w", s.ID, err)
	}
	return nil
}

// =============================================================================
// BUILT-IN SCENARIOS
// =============================================================================

// Builtin returns the embedded scenarios, parsed. The documents are
// compile-time constants, so a parse failure is a programming error.
func Builtin() ([]*Scenario, error) {
	out := make([]*Scenario, 0, len(builtinDocs))
	for _, doc := range builtinDocs {
		s, err := ParseScenario([]byte(doc))
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// BuiltinByID returns one embedded scenario.
func BuiltinByID(id string) (*Scenario, error) {
	all, err := Builtin()
	if err != nil {
		return nil, err
	}
	for _, s := range all {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, fmt.Errorf("unknown scenario %q", id)
}

var builtinDocs = []string{siteDepotScenario, negativeAuditScenario}

// siteDepotScenario is the standard demo: two warehouses, a supply run,
// an inter-site transfer, and disbursements to a driver and a generator.
const siteDepotScenario = `
id: site-depot
name: Site Depot
description: Two warehouses with supplies, a transfer, and disbursements
locations:
  - {id: w1, name: Main Warehouse}
  - {id: w2, name: Site Depot}
resource_types:
  - {id: diesel, name: Diesel, unit: liters}
  - {id: petrol, name: Petrol, unit: liters}
suppliers:
  - {id: sup-petrotrade, name: PetroTrade Ltd}
recipients:
  - {id: rec-osei, kind: driver, name: K. Osei}
  - {id: rec-gen04, kind: generator, name: GEN-04}
projects:
  - {id: prj-bridge, name: Bridge Rehabilitation}
events:
  - {id: ev-001, kind: opening_balance, date: "2026-01-01", location: w1, resource: diesel, quantity: "1000"}
  - {id: ev-002, kind: supply, date: "2026-01-10", location: w1, resource: diesel, quantity: "500",
     supplier: sup-petrotrade, invoice: INV-2026-014}
  - {id: ev-003, kind: transfer, date: "2026-01-15", location: w1, resource: diesel, quantity: "300",
     counterpart: w2}
  - {id: ev-004, kind: disbursement, date: "2026-01-20", location: w1, resource: diesel, quantity: "200",
     recipient: rec-osei, project: prj-bridge}
  - {id: ev-005, kind: disbursement, date: "2026-01-22", location: w2, resource: diesel, quantity: "80.5",
     recipient: rec-gen04, project: prj-bridge}
  - {id: ev-006, kind: opening_balance, date: "2026-01-01", location: w1, resource: petrol, quantity: "120"}
`

// negativeAuditScenario shows a balance driven below zero by an issue
// recorded before its supply paperwork arrived. The statement flags it;
// nothing rejects it.
const negativeAuditScenario = `
id: negative-audit
name: Negative Balance Audit
description: Disbursement recorded ahead of its supply, balance dips below zero
locations:
  - {id: w1, name: Main Warehouse}
resource_types:
  - {id: diesel, name: Diesel, unit: liters}
suppliers:
  - {id: sup-petrotrade, name: PetroTrade Ltd}
recipients:
  - {id: rec-kmc312, kind: vehicle, name: KMC 312}
events:
  - {id: ev-101, kind: opening_balance, date: "2026-02-01", location: w1, resource: diesel, quantity: "50"}
  - {id: ev-102, kind: disbursement, date: "2026-02-03", location: w1, resource: diesel, quantity: "120",
     recipient: rec-kmc312}
  - {id: ev-103, kind: supply, date: "2026-02-05", location: w1, resource: diesel, quantity: "400",
     supplier: sup-petrotrade, invoice: INV-2026-031}
`
