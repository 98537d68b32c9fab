/*
statement_test.go - Behavior tests for the running statement

ORGANIZATION:
  1. Point-in-time reconstruction (opening row) - the subtle requirement
  2. Ordering and tie-breaks
  3. Boundary agreement with the aggregate balance
  4. Edge cases: empty scope, inverted window, no bounds
  5. Idempotence

Each test names the behavior, with GIVEN/WHEN/THEN comments.
*/
package ledger_test

import (
	"testing"
	"time"

	"github.com/warp/stock-ledger/ledger"
)

func mustLines(t *testing.T, engine *ledger.Engine, events []ledger.Event) []ledger.Line {
	t.Helper()
	lines, err := engine.Normalize(events)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	return lines
}

// =============================================================================
// POINT-IN-TIME RECONSTRUCTION
// =============================================================================

func TestStatement_ScenarioB_OpeningRowReflectsHistoryBeforeStart(t *testing.T) {
	// GIVEN: Scenario A at W1 (opening 1000 on 01-01, supply 500 on 01-10,
	//        transfer-out 300 on 01-15, disbursement 200 on 01-20)
	// WHEN: Statement for W1 diesel with start=2024-01-12, end=2024-01-31
	// THEN: Opening row dated 01-12 with balance 1500 (both earlier events),
	//       then transfer-out (1200), then disbursement (1000)

	engine := newTestEngine()
	lines := mustLines(t, engine, scenarioA())

	res := engine.Statement(lines, ledger.Filter{
		Location: ledger.LocationRef("w1"),
		Resource: ledger.ResourceRef("diesel"),
		From:     ledger.DateRef(date(2024, time.January, 12)),
		To:       ledger.DateRef(date(2024, time.January, 31)),
	})

	if len(res.Rows) != 3 {
		t.Fatalf("expected 3 rows (opening + 2 events), got %d", len(res.Rows))
	}

	openingRow := res.Rows[0]
	if !openingRow.Opening {
		t.Fatal("first row must be the synthetic opening row")
	}
	if !openingRow.Date.Equal(date(2024, time.January, 12)) {
		t.Errorf("opening row must be dated at the filter start, got %s", openingRow.Date)
	}
	if !openingRow.Balance.Equal(liters(1500)) {
		t.Errorf("opening balance must fold all history before start: expected 1500, got %v", openingRow.Balance)
	}
	if !openingRow.Inbound.IsZero() || !openingRow.Outbound.IsZero() {
		t.Error("opening row carries no inbound/outbound of its own")
	}

	if res.Rows[1].Kind != ledger.KindTransferOut || !res.Rows[1].Balance.Equal(liters(1200)) {
		t.Errorf("expected transfer-out at balance 1200, got %s at %v", res.Rows[1].Kind, res.Rows[1].Balance)
	}
	if res.Rows[2].Kind != ledger.KindDisbursement || !res.Rows[2].Balance.Equal(liters(1000)) {
		t.Errorf("expected disbursement at balance 1000, got %s at %v", res.Rows[2].Kind, res.Rows[2].Balance)
	}
	if !res.Closing.Equal(liters(1000)) {
		t.Errorf("expected closing 1000, got %v", res.Closing)
	}
}

func TestStatement_OpeningRowEqualsAggregateBeforeStart(t *testing.T) {
	// Property: the synthetic opening value equals the aggregate balance of
	// the same scope restricted to dates strictly before the start.

	engine := newTestEngine()
	events := append(scenarioA(),
		supply("ev-5", 5, date(2024, time.January, 11), "w1", "diesel", 70),
		disbursement("ev-6", 6, date(2024, time.January, 5), "w1", "diesel", 40),
	)
	lines := mustLines(t, engine, events)

	start := date(2024, time.January, 12)
	scope := ledger.Filter{
		Location: ledger.LocationRef("w1"),
		Resource: ledger.ResourceRef("diesel"),
	}

	res := engine.Statement(lines, ledger.Filter{
		Location: scope.Location,
		Resource: scope.Resource,
		From:     ledger.DateRef(start),
	})

	before := scope
	before.To = ledger.DateRef(start.AddDays(-1))
	want := engine.ScopedTotal(lines, before)

	if !res.Opening.Equal(want) {
		t.Errorf("opening %v disagrees with pre-start aggregate %v", res.Opening, want)
	}
}

func TestStatement_NoStart_BeginsFromZero(t *testing.T) {
	// GIVEN: No lower date bound
	// THEN: No synthetic row; the first row's balance is its own effect

	engine := newTestEngine()
	lines := mustLines(t, engine, scenarioA())

	res := engine.Statement(lines, ledger.Filter{
		Location: ledger.LocationRef("w1"),
		Resource: ledger.ResourceRef("diesel"),
	})

	if len(res.Rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(res.Rows))
	}
	if res.Rows[0].Opening {
		t.Error("no synthetic opening row without a start date")
	}
	if !res.Rows[0].Balance.Equal(liters(1000)) {
		t.Errorf("first row balance must be its own effect, got %v", res.Rows[0].Balance)
	}
}

// =============================================================================
// ORDERING
// =============================================================================

func TestStatement_SameDateTieBrokenByInsertionSequence(t *testing.T) {
	// GIVEN: Three events on the same date with seqs out of slice order
	// THEN: Rows come out in seq order, reproducibly

	engine := newTestEngine()
	sameDay := date(2024, time.April, 10)
	events := []ledger.Event{
		disbursement("ev-c", 3, sameDay, "w1", "diesel", 50),
		supply("ev-a", 1, sameDay, "w1", "diesel", 200),
		disbursement("ev-b", 2, sameDay, "w1", "diesel", 30),
	}
	lines := mustLines(t, engine, events)

	res := engine.Statement(lines, ledger.Filter{
		Location: ledger.LocationRef("w1"),
		Resource: ledger.ResourceRef("diesel"),
	})

	wantOrder := []ledger.EventID{"ev-a", "ev-b", "ev-c"}
	for i, want := range wantOrder {
		if res.Rows[i].EventID != want {
			t.Fatalf("row %d: expected %s, got %s", i, want, res.Rows[i].EventID)
		}
	}
	if !res.Closing.Equal(liters(120)) {
		t.Errorf("expected closing 120, got %v", res.Closing)
	}
}

func TestStatement_TransferLegsOrderedOutBeforeIn(t *testing.T) {
	// An unfiltered statement sees both legs of a transfer; the out leg
	// sorts before the in leg at the same (date, seq).

	engine := newTestEngine()
	lines := mustLines(t, engine, []ledger.Event{
		transfer("t-1", 1, date(2024, time.April, 1), "w1", "w2", "diesel", 100),
	})

	res := engine.Statement(lines, ledger.Filter{Resource: ledger.ResourceRef("diesel")})
	if len(res.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(res.Rows))
	}
	if res.Rows[0].Kind != ledger.KindTransferOut || res.Rows[1].Kind != ledger.KindTransferIn {
		t.Errorf("expected out then in, got %s then %s", res.Rows[0].Kind, res.Rows[1].Kind)
	}
}

// =============================================================================
// BOUNDARY AGREEMENT
// =============================================================================

func TestStatement_FinalBalanceAgreesWithAggregate(t *testing.T) {
	// Property: with no upper bound, the statement's closing balance equals
	// the aggregate current balance restricted to the same scope.

	engine := newTestEngine()
	events := append(scenarioA(),
		supply("ev-5", 5, date(2024, time.March, 1), "w2", "diesel", 55),
		disbursement("ev-6", 6, date(2024, time.March, 7), "w2", "diesel", 20),
	)
	lines := mustLines(t, engine, events)

	for _, loc := range []ledger.LocationID{"w1", "w2"} {
		scope := ledger.Filter{
			Location: ledger.LocationRef(loc),
			Resource: ledger.ResourceRef("diesel"),
		}
		res := engine.Statement(lines, scope)
		agg, _ := engine.BalanceOf(lines, loc, "diesel")
		if !res.Closing.Equal(agg) {
			t.Errorf("%s: closing %v disagrees with aggregate %v", loc, res.Closing, agg)
		}
	}
}

// =============================================================================
// EDGE CASES
// =============================================================================

func TestStatement_ScenarioD_EmptyScopeWithStart_OpeningRowOfZero(t *testing.T) {
	// GIVEN: A filter matching no events, with a start date
	// THEN: A single opening row of value 0, no error

	engine := newTestEngine()
	lines := mustLines(t, engine, scenarioA())

	res := engine.Statement(lines, ledger.Filter{
		Location: ledger.LocationRef("w3"),
		Resource: ledger.ResourceRef("petrol"),
		From:     ledger.DateRef(date(2024, time.January, 1)),
	})

	if len(res.Rows) != 1 {
		t.Fatalf("expected only the opening row, got %d rows", len(res.Rows))
	}
	if !res.Rows[0].Opening || !res.Rows[0].Balance.IsZero() {
		t.Errorf("expected opening row of 0, got %+v", res.Rows[0])
	}
}

func TestStatement_EmptyScopeWithoutStart_EmptyStatement(t *testing.T) {
	engine := newTestEngine()
	lines := mustLines(t, engine, scenarioA())

	res := engine.Statement(lines, ledger.Filter{
		Location: ledger.LocationRef("w3"),
	})
	if len(res.Rows) != 0 {
		t.Errorf("expected empty statement, got %d rows", len(res.Rows))
	}
	if !res.Closing.IsZero() {
		t.Errorf("expected zero closing, got %v", res.Closing)
	}
}

func TestStatement_StartAfterEnd_OpeningRowOnly(t *testing.T) {
	// GIVEN: From later than To
	// THEN: Empty window, opening row still emitted with pre-From history

	engine := newTestEngine()
	lines := mustLines(t, engine, scenarioA())

	res := engine.Statement(lines, ledger.Filter{
		Location: ledger.LocationRef("w1"),
		Resource: ledger.ResourceRef("diesel"),
		From:     ledger.DateRef(date(2024, time.February, 1)),
		To:       ledger.DateRef(date(2024, time.January, 1)),
	})

	if len(res.Rows) != 1 {
		t.Fatalf("expected opening row only, got %d rows", len(res.Rows))
	}
	if !res.Rows[0].Balance.Equal(liters(1000)) {
		t.Errorf("opening must still fold pre-start history, got %v", res.Rows[0].Balance)
	}
}

func TestStatement_RecipientFilter_ScopesDisbursements(t *testing.T) {
	// GIVEN: Disbursements to two different recipients
	// WHEN: Filtering by one recipient
	// THEN: Only that recipient's rows appear (running balance over that scope)

	engine := newTestEngine()
	d1 := disbursement("ev-1", 1, date(2024, time.May, 1), "w1", "diesel", 30)
	d2 := disbursement("ev-2", 2, date(2024, time.May, 2), "w1", "diesel", 45)
	d2.Recipient = "rec-2"
	lines := mustLines(t, engine, []ledger.Event{d1, d2})

	res := engine.Statement(lines, ledger.Filter{
		Recipient: ledger.RecipientRef("rec-2"),
	})
	if len(res.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(res.Rows))
	}
	if res.Rows[0].EventID != "ev-2" {
		t.Errorf("expected ev-2, got %s", res.Rows[0].EventID)
	}
}

func TestStatement_NegativeRunningBalance_Flagged(t *testing.T) {
	// GIVEN: A disbursement recorded before the supply that covers it
	// THEN: The dip below zero is computed, emitted, and flagged

	engine := newTestEngine()
	lines := mustLines(t, engine, []ledger.Event{
		disbursement("ev-1", 1, date(2024, time.May, 1), "w1", "diesel", 100),
		supply("ev-2", 2, date(2024, time.May, 3), "w1", "diesel", 400),
	})

	res := engine.Statement(lines, ledger.Filter{
		Location: ledger.LocationRef("w1"),
		Resource: ledger.ResourceRef("diesel"),
	})

	if !res.NegativeObserved {
		t.Error("expected NegativeObserved to be set")
	}
	if !res.Rows[0].Balance.Equal(liters(-100)) {
		t.Errorf("expected first balance -100, got %v", res.Rows[0].Balance)
	}
	if !res.Closing.Equal(liters(300)) {
		t.Errorf("expected closing 300, got %v", res.Closing)
	}
}

func TestStatement_Labels_EnrichedFromCatalog(t *testing.T) {
	engine := newTestEngine()
	lines := mustLines(t, engine, scenarioA())

	res := engine.Statement(lines, ledger.Filter{
		Location: ledger.LocationRef("w1"),
		Resource: ledger.ResourceRef("diesel"),
	})

	wantLabels := []string{
		"opening balance",
		"supply from PetroTrade (invoice INV-ev-2)",
		"transfer to Site Depot",
		"issued to driver K. Osei for Bridge Rehab",
	}
	for i, want := range wantLabels {
		if res.Rows[i].Label != want {
			t.Errorf("row %d: expected label %q, got %q", i, want, res.Rows[i].Label)
		}
	}
}

// =============================================================================
// IDEMPOTENCE
// =============================================================================

func TestStatement_Idempotent(t *testing.T) {
	// Calling twice with the same snapshot and filter yields identical
	// output, and the input slice order is untouched.

	engine := newTestEngine()
	lines := mustLines(t, engine, scenarioA())
	orig := make([]ledger.Line, len(lines))
	copy(orig, lines)

	f := ledger.Filter{
		Location: ledger.LocationRef("w1"),
		Resource: ledger.ResourceRef("diesel"),
		From:     ledger.DateRef(date(2024, time.January, 12)),
	}

	first := engine.Statement(lines, f)
	second := engine.Statement(lines, f)

	if len(first.Rows) != len(second.Rows) {
		t.Fatalf("row counts differ: %d vs %d", len(first.Rows), len(second.Rows))
	}
	for i := range first.Rows {
		a, b := first.Rows[i], second.Rows[i]
		if a.EventID != b.EventID || !a.Balance.Equal(b.Balance) || a.Label != b.Label {
			t.Errorf("row %d differs between calls: %+v vs %+v", i, a, b)
		}
	}
	for i := range lines {
		if lines[i].EventID != orig[i].EventID || lines[i].Leg != orig[i].Leg {
			t.Fatal("Statement must not reorder the caller's line slice")
		}
	}
}
