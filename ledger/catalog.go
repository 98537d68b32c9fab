/*
catalog.go - Master-data lookup for the engine

PURPOSE:
  The Catalog is the engine's read-only view of master data: which
  locations, resource types, suppliers, recipients, and projects exist.
  The engine needs it for two things only:
    1. Existence checks at normalization time (an event referencing an
       unknown location/resource is rejected, never silently folded)
    2. Label enrichment in statement output

  Master data is created elsewhere (CRUD forms, seed fixtures); the
  catalog never mutates events and the engine never mutates the catalog.

RECIPIENT KINDS:
  Disbursement recipients are a closed tagged union (driver, employee,
  vehicle, generator, other) with one label rule per variant. Adding a
  kind means extending the switch in Recipient.Label - a compile-visible
  change, not a string-keyed branch buried in report code.

SEE ALSO:
  - normalize.go: Uses existence checks
  - statement.go: Uses display names for row labels
*/
package ledger

import "sync"

// =============================================================================
// MASTER-DATA RECORDS
// =============================================================================

// Location is a physical warehouse. Identity only: capacity and address
// metadata live upstream and are irrelevant to the ledger.
type Location struct {
	ID   LocationID
	Name string
}

// ResourceType is a stock variant (a fuel type). The unit travels with the
// resource type so every quantity for it folds in the same unit.
type ResourceType struct {
	ID   ResourceTypeID
	Name string
	Unit Unit
}

type Supplier struct {
	ID   SupplierID
	Name string
}

type Project struct {
	ID   ProjectID
	Name string
}

// =============================================================================
// RECIPIENT - Closed tagged union of disbursement targets
// =============================================================================

type RecipientKind string

const (
	RecipientDriver    RecipientKind = "driver"
	RecipientEmployee  RecipientKind = "employee"
	RecipientVehicle   RecipientKind = "vehicle"
	RecipientGenerator RecipientKind = "generator"
	RecipientOther     RecipientKind = "other"
)

type Recipient struct {
	ID   RecipientID
	Kind RecipientKind
	Name string
}

// Label resolves the display label for the recipient. One rule per variant;
// the default arm only fires for data recorded before a kind existed.
func (r Recipient) Label() string {
	switch r.Kind {
	case RecipientDriver:
		return "driver " + r.Name
	case RecipientEmployee:
		return r.Name
	case RecipientVehicle:
		return "vehicle " + r.Name
	case RecipientGenerator:
		return "generator " + r.Name
	case RecipientOther:
		return r.Name
	default:
		return string(r.ID)
	}
}

// =============================================================================
// CATALOG
// =============================================================================

// Catalog holds master-data lookups. Safe for concurrent readers; writers
// are expected only during load/seed, guarded by the same mutex.
type Catalog struct {
	mu            sync.RWMutex
	locations     map[LocationID]Location
	resourceTypes map[ResourceTypeID]ResourceType
	suppliers     map[SupplierID]Supplier
	recipients    map[RecipientID]Recipient
	projects      map[ProjectID]Project
}

func NewCatalog() *Catalog {
	return &Catalog{
		locations:     make(map[LocationID]Location),
		resourceTypes: make(map[ResourceTypeID]ResourceType),
		suppliers:     make(map[SupplierID]Supplier),
		recipients:    make(map[RecipientID]Recipient),
		projects:      make(map[ProjectID]Project),
	}
}

func (c *Catalog) AddLocation(l Location) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.locations[l.ID] = l
}

func (c *Catalog) AddResourceType(r ResourceType) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resourceTypes[r.ID] = r
}

func (c *Catalog) AddSupplier(s Supplier) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.suppliers[s.ID] = s
}

func (c *Catalog) AddRecipient(r Recipient) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recipients[r.ID] = r
}

func (c *Catalog) AddProject(p Project) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.projects[p.ID] = p
}

// Existence checks (normalization hot path).

func (c *Catalog) HasLocation(id LocationID) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.locations[id]
	return ok
}

func (c *Catalog) HasResourceType(id ResourceTypeID) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.resourceTypes[id]
	return ok
}

// Lookups for output enrichment. Missing entries fall back to the raw id so
// a statement never fails just because a display name is gone.

func (c *Catalog) LocationName(id LocationID) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if l, ok := c.locations[id]; ok {
		return l.Name
	}
	return string(id)
}

func (c *Catalog) ResourceTypeName(id ResourceTypeID) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if r, ok := c.resourceTypes[id]; ok {
		return r.Name
	}
	return string(id)
}

func (c *Catalog) ResourceUnit(id ResourceTypeID) Unit {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if r, ok := c.resourceTypes[id]; ok {
		return r.Unit
	}
	return ""
}

func (c *Catalog) SupplierName(id SupplierID) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if s, ok := c.suppliers[id]; ok {
		return s.Name
	}
	return string(id)
}

func (c *Catalog) RecipientLabel(id RecipientID) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if r, ok := c.recipients[id]; ok {
		return r.Label()
	}
	return string(id)
}

func (c *Catalog) ProjectName(id ProjectID) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if p, ok := c.projects[id]; ok {
		return p.Name
	}
	return string(id)
}

// Listings, sorted by the store that produced them or by the caller.

func (c *Catalog) Locations() []Location {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Location, 0, len(c.locations))
	for _, l := range c.locations {
		out = append(out, l)
	}
	return out
}

func (c *Catalog) ResourceTypes() []ResourceType {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]ResourceType, 0, len(c.resourceTypes))
	for _, r := range c.resourceTypes {
		out = append(out, r)
	}
	return out
}

func (c *Catalog) Suppliers() []Supplier {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Supplier, 0, len(c.suppliers))
	for _, s := range c.suppliers {
		out = append(out, s)
	}
	return out
}

func (c *Catalog) Recipients() []Recipient {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Recipient, 0, len(c.recipients))
	for _, r := range c.recipients {
		out = append(out, r)
	}
	return out
}

func (c *Catalog) Projects() []Project {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Project, 0, len(c.projects))
	for _, p := range c.projects {
		out = append(out, p)
	}
	return out
}
