package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/stock-ledger/ledger"
	"github.com/warp/stock-ledger/store/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testEvent(id string, day int) ledger.Event {
	return ledger.Event{
		ID:       ledger.EventID(id),
		Kind:     ledger.KindSupply,
		Date:     ledger.NewDate(2024, time.July, day),
		Location: "w1",
		Resource: "diesel",
		Quantity: ledger.NewQuantity(250.5, ledger.UnitLiters),
		Supplier: "sup-1",
		Invoice:  "INV-" + id,
	}
}

func TestStore_AppendRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	stored, err := store.Append(ctx, testEvent("ev-1", 4))
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.Seq)

	got, err := store.Get(ctx, "ev-1")
	require.NoError(t, err)
	assert.Equal(t, stored.Seq, got.Seq)
	assert.Equal(t, ledger.KindSupply, got.Kind)
	assert.Equal(t, "2024-07-04", got.Date.String())
	assert.True(t, got.Quantity.Equal(ledger.NewQuantity(250.5, ledger.UnitLiters)),
		"decimal quantity must survive the round trip exactly")
	assert.Equal(t, ledger.SupplierID("sup-1"), got.Supplier)
	assert.Equal(t, "INV-ev-1", got.Invoice)
}

func TestStore_TransferRoundTripKeepsCounterpart(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ev := ledger.Event{
		ID: "t-1", Kind: ledger.KindTransfer,
		Date: ledger.NewDate(2024, time.July, 10), Location: "w1",
		Counterpart: "w2", Resource: "diesel",
		Quantity: ledger.NewQuantity(75, ledger.UnitLiters),
	}
	_, err := store.Append(ctx, ev)
	require.NoError(t, err)

	got, err := store.Get(ctx, "t-1")
	require.NoError(t, err)
	assert.Equal(t, ledger.LocationID("w2"), got.Counterpart)
}

func TestStore_DuplicateEventID_Rejected(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Append(ctx, testEvent("ev-1", 1))
	require.NoError(t, err)

	_, err = store.Append(ctx, testEvent("ev-1", 2))
	assert.ErrorIs(t, err, ledger.ErrDuplicateEventID)
}

func TestStore_AppendBatch_Atomic(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Append(ctx, testEvent("ev-1", 1))
	require.NoError(t, err)

	_, err = store.AppendBatch(ctx, []ledger.Event{
		testEvent("ev-2", 2),
		testEvent("ev-1", 3), // duplicate rolls back the whole batch
	})
	assert.ErrorIs(t, err, ledger.ErrDuplicateEventID)

	exists, err := store.Exists(ctx, "ev-2")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestStore_SnapshotOrderedBySequence(t *testing.T) {
	// Events appended out of date order still snapshot in insertion order.
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Append(ctx, testEvent("ev-late", 28))
	require.NoError(t, err)
	_, err = store.Append(ctx, testEvent("ev-early", 2))
	require.NoError(t, err)

	snap, err := store.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap, 2)
	assert.Equal(t, ledger.EventID("ev-late"), snap[0].ID)
	assert.Equal(t, ledger.EventID("ev-early"), snap[1].ID)
	assert.Less(t, snap[0].Seq, snap[1].Seq)
}

func TestStore_SnapshotRange(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i, id := range []string{"ev-1", "ev-2", "ev-3"} {
		_, err := store.Append(ctx, testEvent(id, 1+i*10)) // days 1, 11, 21
		require.NoError(t, err)
	}

	snap, err := store.SnapshotRange(ctx,
		ledger.NewDate(2024, time.July, 5),
		ledger.NewDate(2024, time.July, 15))
	require.NoError(t, err)
	require.Len(t, snap, 1)
	assert.Equal(t, ledger.EventID("ev-2"), snap[0].ID)
}

func TestStore_LoadCatalog(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveLocation(ctx, ledger.Location{ID: "w1", Name: "Main Warehouse"}))
	require.NoError(t, store.SaveResourceType(ctx, ledger.ResourceType{ID: "diesel", Name: "Diesel", Unit: ledger.UnitLiters}))
	require.NoError(t, store.SaveSupplier(ctx, ledger.Supplier{ID: "sup-1", Name: "PetroTrade"}))
	require.NoError(t, store.SaveRecipient(ctx, ledger.Recipient{ID: "rec-1", Kind: ledger.RecipientVehicle, Name: "KMC 312"}))
	require.NoError(t, store.SaveProject(ctx, ledger.Project{ID: "prj-1", Name: "Bridge Rehab"}))

	catalog, err := store.LoadCatalog(ctx)
	require.NoError(t, err)

	assert.True(t, catalog.HasLocation("w1"))
	assert.True(t, catalog.HasResourceType("diesel"))
	assert.Equal(t, "Main Warehouse", catalog.LocationName("w1"))
	assert.Equal(t, ledger.UnitLiters, catalog.ResourceUnit("diesel"))
	assert.Equal(t, "vehicle KMC 312", catalog.RecipientLabel("rec-1"))
}

func TestStore_EndToEndFold(t *testing.T) {
	// Store feeds the engine: snapshot, normalize, fold.
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveLocation(ctx, ledger.Location{ID: "w1", Name: "Main"}))
	require.NoError(t, store.SaveLocation(ctx, ledger.Location{ID: "w2", Name: "Depot"}))
	require.NoError(t, store.SaveResourceType(ctx, ledger.ResourceType{ID: "diesel", Name: "Diesel", Unit: ledger.UnitLiters}))

	_, err := store.AppendBatch(ctx, []ledger.Event{
		{ID: "e1", Kind: ledger.KindOpeningBalance, Date: ledger.NewDate(2024, time.January, 1),
			Location: "w1", Resource: "diesel", Quantity: ledger.NewQuantity(1000, ledger.UnitLiters)},
		{ID: "e2", Kind: ledger.KindTransfer, Date: ledger.NewDate(2024, time.January, 15),
			Location: "w1", Counterpart: "w2", Resource: "diesel", Quantity: ledger.NewQuantity(300, ledger.UnitLiters)},
	})
	require.NoError(t, err)

	catalog, err := store.LoadCatalog(ctx)
	require.NoError(t, err)
	snap, err := store.Snapshot(ctx)
	require.NoError(t, err)

	engine := ledger.NewEngine(catalog)
	lines, err := engine.Normalize(snap)
	require.NoError(t, err)

	balances := engine.Balances(lines)
	assert.True(t, balances[ledger.BalanceKey{Location: "w1", Resource: "diesel"}].Equal(ledger.NewQuantity(700, ledger.UnitLiters)))
	assert.True(t, balances[ledger.BalanceKey{Location: "w2", Resource: "diesel"}].Equal(ledger.NewQuantity(300, ledger.UnitLiters)))
}
