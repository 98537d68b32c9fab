/*
balance.go - Aggregate current balance

PURPOSE:
  Answers "how much is on hand right now?" for every (location, resource
  type) pair that has at least one ledger line. This is the simple half of
  the engine: addition is commutative, so no ordering is needed - the sum
  over a group is the balance, whatever order the lines arrive in.

REPORTING NEGATIVES:
  A negative computed balance is surfaced, never rejected. Disbursements
  are routinely recorded before their supply paperwork lands; refusing to
  compute would make the ledger unusable during normal operational delay.
  Flagging negatives to an operator is the caller's job.

SEE ALSO:
  - statement.go: The order-sensitive half (running balances)
*/
package ledger

// Balances returns the net on-hand quantity per (location, resource type)
// pair. Pairs that never appear in any line are absent; a pair whose lines
// sum to zero is present with a zero balance.
func (e *Engine) Balances(lines []Line) map[BalanceKey]Quantity {
	balances := make(map[BalanceKey]Quantity)
	for _, l := range lines {
		key := BalanceKey{Location: l.Location, Resource: l.Resource}
		if cur, ok := balances[key]; ok {
			balances[key] = cur.Add(l.Delta)
		} else {
			balances[key] = l.Delta
		}
	}
	return balances
}

// BalanceOf is a convenience for a single pair. The bool reports whether
// the pair has any lines at all (distinguishing "absent" from "zero").
func (e *Engine) BalanceOf(lines []Line, location LocationID, resource ResourceTypeID) (Quantity, bool) {
	q, ok := e.Balances(lines)[BalanceKey{Location: location, Resource: resource}]
	return q, ok
}

// ScopedTotal sums the deltas of all lines matching the filter's non-date
// predicates AND its date window. The statement's boundary-agreement
// property holds against this: with no upper bound, the statement's final
// running balance equals this total for the same scope.
func (e *Engine) ScopedTotal(lines []Line, f Filter) Quantity {
	var total Quantity
	for _, l := range lines {
		if f.MatchesScope(l) && f.InWindow(l.Date) {
			total = total.Add(l.Delta)
		}
	}
	return total
}
