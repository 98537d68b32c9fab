/*
Package ledger provides the core stock ledger engine.

PURPOSE:
  This package contains the types and algorithms for tracking a fungible
  stock (fuel, but any consumable works) across multiple warehouses and
  resource variants. Four kinds of dated events feed the ledger — opening
  balances, supplies, transfers, and disbursements — and the engine folds
  them into current balances and date-ordered running-balance statements.

KEY CONCEPTS IN THIS FILE (types.go):
  - Quantity: A magnitude with a unit (e.g., 500 liters)
  - Event: A raw dated ledger event as recorded upstream
  - Line: A canonical signed ledger line produced by normalization
  - BalanceKey: The (location, resource type) pair balances are kept per

DESIGN PRINCIPLES:
  1. Immutability: Events are never modified once folded into a report
  2. Precision: Uses decimal.Decimal to avoid floating-point errors
  3. Unsigned storage: Event quantities are magnitudes; the kind - never a
     stored sign - determines direction
  4. Statelessness: The engine is a pure fold over a snapshot; no balance
     is cached between calls

USAGE:
  engine := ledger.NewEngine(catalog)
  lines, err := engine.Normalize(events)
  balances := engine.Balances(lines)

SEE ALSO:
  - normalize.go: Event-to-line expansion and validation
  - balance.go: Aggregate balance folding
  - statement.go: Running-balance statement reconstruction
*/
package ledger

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// QUANTITY - Magnitude with unit
// =============================================================================

type Quantity struct {
	Value decimal.Decimal
	Unit  Unit
}

type Unit string

const (
	UnitLiters    Unit = "liters"
	UnitKilograms Unit = "kilograms"
	UnitPieces    Unit = "pieces"
)

func NewQuantity(value float64, unit Unit) Quantity {
	return Quantity{Value: decimal.NewFromFloat(value), Unit: unit}
}

func NewQuantityFromInt(value int, unit Unit) Quantity {
	return Quantity{Value: decimal.NewFromInt(int64(value)), Unit: unit}
}

func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func (q Quantity) Zero() Quantity              { return Quantity{Value: decimal.Zero, Unit: q.Unit} }
func (q Quantity) Add(o Quantity) Quantity     { return Quantity{Value: q.Value.Add(o.Value), Unit: q.unitOr(o)} }
func (q Quantity) Sub(o Quantity) Quantity     { return Quantity{Value: q.Value.Sub(o.Value), Unit: q.unitOr(o)} }
func (q Quantity) Neg() Quantity               { return Quantity{Value: q.Value.Neg(), Unit: q.Unit} }
func (q Quantity) Abs() Quantity               { return Quantity{Value: q.Value.Abs(), Unit: q.Unit} }
func (q Quantity) IsNegative() bool            { return q.Value.IsNegative() }
func (q Quantity) IsZero() bool                { return q.Value.IsZero() }
func (q Quantity) IsPositive() bool            { return q.Value.IsPositive() }
func (q Quantity) Equal(o Quantity) bool       { return q.Value.Equal(o.Value) }
func (q Quantity) GreaterThan(o Quantity) bool { return q.Value.GreaterThan(o.Value) }
func (q Quantity) LessThan(o Quantity) bool    { return q.Value.LessThan(o.Value) }
func (q Quantity) String() string              { return q.Value.String() }

// unitOr keeps the receiver's unit unless it is unset (the zero Quantity).
func (q Quantity) unitOr(o Quantity) Unit {
	if q.Unit != "" {
		return q.Unit
	}
	return o.Unit
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EventID string
type LocationID string
type ResourceTypeID string
type SupplierID string
type RecipientID string
type ProjectID string

// =============================================================================
// EVENT - Raw dated ledger event, as recorded upstream
// =============================================================================

type EventKind string

const (
	KindOpeningBalance EventKind = "opening_balance" // Stock counted on hand at a date
	KindSupply         EventKind = "supply"          // Inbound delivery from a supplier
	KindTransfer       EventKind = "transfer"        // Movement between two locations
	KindDisbursement   EventKind = "disbursement"    // Outbound issue to a recipient

	// Line-only kinds: a stored transfer expands into exactly one of each.
	KindTransferOut EventKind = "transfer_out"
	KindTransferIn  EventKind = "transfer_in"
)

// Event is the central entity: one dated quantity effect recorded upstream.
//
// INVARIANTS:
//   - Quantity is a non-negative magnitude; Kind determines direction.
//     A stored signed field would invite sign-flip bugs, so there isn't one.
//   - A transfer is stored as ONE record (Location = source, Counterpart =
//     destination) and expanded into two lines at read time. This keeps the
//     conservation property self-evident at the data-model level.
//   - Seq is a monotonic insertion sequence assigned by the event store.
//     It is the tie-break when dates collide, so statement ordering is
//     reproducible across runs and platforms.
type Event struct {
	ID       EventID
	Kind     EventKind
	Date     Date
	Location LocationID
	Resource ResourceTypeID
	Quantity Quantity

	// Transfers only: the receiving location.
	Counterpart LocationID

	// Filterable/display metadata. Not part of the balance computation.
	Supplier  SupplierID
	Recipient RecipientID
	Project   ProjectID
	Invoice   string
	Notes     string

	// Assigned by the event store on append. Zero until stored.
	Seq int64
}

// IsTransfer reports whether the event must expand into two lines.
func (e Event) IsTransfer() bool { return e.Kind == KindTransfer }

// =============================================================================
// LINE - Canonical signed ledger line
// =============================================================================

// Line is the normalized form every computation folds over: one signed
// quantity effect on one (location, resource type) pair. Lines are produced
// only by Engine.Normalize; callers never construct signed deltas directly.
type Line struct {
	EventID  EventID
	Kind     EventKind // Line kind: transfer events appear as transfer_out/transfer_in
	Date     Date
	Location LocationID
	Resource ResourceTypeID
	Delta    Quantity // Signed: positive inbound, negative outbound

	// Ordering: (Date, Seq, Leg) is a total order over lines.
	Seq int64
	Leg int // 0 for single-line events and transfer-out, 1 for transfer-in

	// Transfer legs only: the location on the other side of the movement.
	Counterpart LocationID

	// Metadata carried through for filtering and labels.
	Supplier  SupplierID
	Recipient RecipientID
	Project   ProjectID
	Invoice   string
	Notes     string
}

// Inbound returns the positive part of the delta (zero for outbound lines).
func (l Line) Inbound() Quantity {
	if l.Delta.IsNegative() {
		return l.Delta.Zero()
	}
	return l.Delta
}

// Outbound returns the magnitude of the negative part of the delta.
func (l Line) Outbound() Quantity {
	if l.Delta.IsNegative() {
		return l.Delta.Neg()
	}
	return l.Delta.Zero()
}

// =============================================================================
// BALANCE KEY - What aggregate balances are kept per
// =============================================================================

type BalanceKey struct {
	Location LocationID
	Resource ResourceTypeID
}
