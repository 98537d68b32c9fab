/*
normalize.go - Event-to-line expansion and validation

PURPOSE:
  Converts the raw event kinds into canonical signed ledger lines. This is
  the ONLY place a sign is attached to a quantity; everything downstream
  (balance folding, statements) is a plain sum over the lines produced here.

SIGN CONVENTION (must never change):

  kind            location used   signed delta
  --------------  --------------  ------------
  OpeningBalance  own             +quantity
  Supply          own             +quantity
  TransferOut     source          -quantity
  TransferIn      destination     +quantity
  Disbursement    own             -quantity

  A stored transfer record expands into EXACTLY two lines (out + in), so
  moving stock between warehouses never creates or destroys quantity: the
  two legs always sum to zero.

VALIDATION:
  Normalization rejects rather than drops. A self-transfer, an unknown
  location/resource reference, or a negative magnitude fails the whole
  call with InvalidEventError - silently folding such an event with a
  zero effect would corrupt the balance without any visible error.

SEE ALSO:
  - catalog.go: Existence checks used here
  - balance.go, statement.go: Consumers of the produced lines
*/
package ledger

// =============================================================================
// ENGINE - Stateless fold engine over event snapshots
// =============================================================================

// Engine folds event snapshots into balances and statements. It holds only
// a catalog reference; it keeps no state between calls and never mutates
// the snapshots it is given. Concurrent calls are independent.
type Engine struct {
	Catalog *Catalog
}

func NewEngine(catalog *Catalog) *Engine {
	return &Engine{Catalog: catalog}
}

// =============================================================================
// NORMALIZATION
// =============================================================================

// Normalize expands a snapshot of raw events into canonical signed lines.
// The first invalid event fails the whole call; no partial line set leaks
// into a fold.
func (e *Engine) Normalize(events []Event) ([]Line, error) {
	lines := make([]Line, 0, len(events))
	for _, ev := range events {
		expanded, err := e.expand(ev)
		if err != nil {
			return nil, err
		}
		lines = append(lines, expanded...)
	}
	return lines, nil
}

// expand validates one event and produces its lines. Pure and total for
// valid events: every transfer yields exactly two lines, everything else
// exactly one.
func (e *Engine) expand(ev Event) ([]Line, error) {
	if ev.Quantity.IsNegative() {
		return nil, invalidEvent(ev, ErrNegativeQuantity)
	}
	if !e.Catalog.HasLocation(ev.Location) {
		return nil, invalidEvent(ev, ErrUnknownLocation)
	}
	if !e.Catalog.HasResourceType(ev.Resource) {
		return nil, invalidEvent(ev, ErrUnknownResourceType)
	}

	switch ev.Kind {
	case KindOpeningBalance, KindSupply:
		return []Line{lineFor(ev, ev.Kind, ev.Location, ev.Quantity, 0)}, nil

	case KindDisbursement:
		return []Line{lineFor(ev, ev.Kind, ev.Location, ev.Quantity.Neg(), 0)}, nil

	case KindTransfer:
		if ev.Counterpart == "" {
			return nil, invalidEvent(ev, ErrMissingCounterpart)
		}
		if ev.Counterpart == ev.Location {
			return nil, invalidEvent(ev, ErrSelfTransfer)
		}
		if !e.Catalog.HasLocation(ev.Counterpart) {
			return nil, invalidEvent(ev, ErrUnknownLocation)
		}
		out := lineFor(ev, KindTransferOut, ev.Location, ev.Quantity.Neg(), 0)
		out.Counterpart = ev.Counterpart
		in := lineFor(ev, KindTransferIn, ev.Counterpart, ev.Quantity, 1)
		in.Counterpart = ev.Location
		return []Line{out, in}, nil

	default:
		return nil, invalidEvent(ev, ErrUnknownKind)
	}
}

func lineFor(ev Event, kind EventKind, loc LocationID, delta Quantity, leg int) Line {
	return Line{
		EventID:   ev.ID,
		Kind:      kind,
		Date:      ev.Date,
		Location:  loc,
		Resource:  ev.Resource,
		Delta:     delta,
		Seq:       ev.Seq,
		Leg:       leg,
		Supplier:  ev.Supplier,
		Recipient: ev.Recipient,
		Project:   ev.Project,
		Invoice:   ev.Invoice,
		Notes:     ev.Notes,
	}
}
