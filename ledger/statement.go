/*
statement.go - Filtered running-balance statement

PURPOSE:
  The hard half of the engine: a chronologically ordered statement whose
  running-balance column reflects the true physical balance for the
  filtered scope at each row - not a cumulative sum of the displayed rows
  in isolation.

THE SUBTLE PART:
  When the filter has a start date, the first displayed row must already
  stand on everything that happened BEFORE the start (same scope, date
  bound ignored). The algorithm:

    1. Apply every predicate except the lower date bound -> scoped lines
    2. Partition scoped lines into before-start and window
    3. Opening balance = sum over before-start (0 when no start given)
    4. Sort window by (date, insertion seq, transfer leg) - a total,
       reproducible order; dates alone are not
    5. Prefix-sum fold over the window, one output row per line
    6. When a start was given, prepend a synthetic "opening balance" row
       dated at the start with zero inbound/outbound

  The boundary invariant: with no upper bound, the final running balance
  equals the aggregate balance (balance.go) for the same scope.

EDGE POLICY:
  An empty window is not an error: the statement is empty except for the
  opening row (still emitted, value 0 or the before-start fold) when a
  start was given. From > To just makes the window empty. The engine does
  no validation of the filter's internal consistency beyond computing.

SEE ALSO:
  - filter.go: Scope vs window split
  - balance.go: The order-independent aggregate the boundary must agree with
*/
package ledger

import "sort"

// =============================================================================
// STATEMENT OUTPUT
// =============================================================================

// StatementRow is one line of the statement. Inbound and outbound are
// non-negative magnitudes; exactly one of them is non-zero for event rows,
// both are zero for the synthetic opening row.
type StatementRow struct {
	EventID  EventID
	Date     Date
	Kind     EventKind
	Label    string
	Inbound  Quantity
	Outbound Quantity
	Balance  Quantity
	Opening  bool // true only for the synthetic opening-balance row
}

// StatementResult carries the rows plus the fold's boundary values.
type StatementResult struct {
	Rows    []StatementRow
	Opening Quantity // balance at the window start (zero value when no From)
	Closing Quantity // running balance after the last row

	// NegativeObserved reports that some running balance (opening included)
	// went below zero. A reportable condition, not an error: the host flags
	// it to an operator, the engine only computes and exposes the sign.
	NegativeObserved bool
}

// =============================================================================
// STATEMENT COMPUTATION
// =============================================================================

// Statement computes the filtered running-balance statement over an
// already-normalized line snapshot. Calling it twice with the same inputs
// yields identical output: the input slice is never reordered in place.
func (e *Engine) Statement(lines []Line, f Filter) StatementResult {
	var before, window []Line
	for _, l := range lines {
		if !f.MatchesScope(l) {
			continue
		}
		switch {
		case f.From != nil && l.Date.Before(*f.From):
			before = append(before, l)
		case f.InWindow(l.Date):
			window = append(window, l)
		}
	}

	var opening Quantity
	for _, l := range before {
		opening = opening.Add(l.Delta)
	}

	sort.Slice(window, func(i, j int) bool {
		a, b := window[i], window[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.Seq != b.Seq {
			return a.Seq < b.Seq
		}
		return a.Leg < b.Leg
	})

	result := StatementResult{
		Opening:          opening,
		NegativeObserved: opening.IsNegative(),
	}

	if f.From != nil {
		result.Rows = append(result.Rows, StatementRow{
			Date:     *f.From,
			Kind:     KindOpeningBalance,
			Label:    "opening balance",
			Inbound:  opening.Zero(),
			Outbound: opening.Zero(),
			Balance:  opening,
			Opening:  true,
		})
	}

	balance := opening
	for _, l := range window {
		balance = balance.Add(l.Delta)
		if balance.IsNegative() {
			result.NegativeObserved = true
		}
		result.Rows = append(result.Rows, StatementRow{
			EventID:  l.EventID,
			Date:     l.Date,
			Kind:     l.Kind,
			Label:    e.label(l),
			Inbound:  l.Inbound(),
			Outbound: l.Outbound(),
			Balance:  balance,
		})
	}
	result.Closing = balance

	return result
}

// label builds the row's description from line metadata and catalog names.
// Enrichment only: a missing catalog entry degrades to the raw id, never
// changes the computation.
func (e *Engine) label(l Line) string {
	switch l.Kind {
	case KindOpeningBalance:
		return "opening balance"
	case KindSupply:
		label := "supply"
		if l.Supplier != "" {
			label += " from " + e.Catalog.SupplierName(l.Supplier)
		}
		if l.Invoice != "" {
			label += " (invoice " + l.Invoice + ")"
		}
		return label
	case KindTransferOut:
		return "transfer to " + e.Catalog.LocationName(l.Counterpart)
	case KindTransferIn:
		return "transfer from " + e.Catalog.LocationName(l.Counterpart)
	case KindDisbursement:
		label := "issued"
		if l.Recipient != "" {
			label += " to " + e.Catalog.RecipientLabel(l.Recipient)
		}
		if l.Project != "" {
			label += " for " + e.Catalog.ProjectName(l.Project)
		}
		return label
	default:
		return string(l.Kind)
	}
}
