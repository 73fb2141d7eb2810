package sqlite

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/billing-engine/billing"
	"github.com/warp/billing-engine/engine"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_TopologyRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.SaveBlock(ctx, engine.Block{ID: "B1", Name: "Bloc 1"}))
	require.NoError(t, store.SaveStair(ctx, engine.Stair{ID: "S1", BlockID: "B1", Name: "Scara A"}))
	require.NoError(t, store.SaveApartment(ctx, engine.Apartment{
		ID: "A1", Number: "1", Owner: "Popescu", Persons: 3,
		Surface: decimal.RequireFromString("52.5"), StairID: "S1",
	}))

	topo, err := billing.LoadTopology(ctx, store)
	require.NoError(t, err)
	require.Len(t, topo.Apartments, 1)
	apt := topo.Apartments[0]
	assert.Equal(t, 3, apt.Persons)
	assert.True(t, apt.Surface.Equal(decimal.RequireFromString("52.5")))
	assert.Equal(t, engine.StairID("S1"), apt.StairID)

	// Upsert replaces in place.
	require.NoError(t, store.SaveApartment(ctx, engine.Apartment{
		ID: "A1", Number: "1", Persons: 4,
		Surface: decimal.RequireFromString("52.5"), StairID: "S1",
	}))
	topo, err = billing.LoadTopology(ctx, store)
	require.NoError(t, err)
	require.Len(t, topo.Apartments, 1)
	assert.Equal(t, 4, topo.Apartments[0].Persons)
}

func TestStore_ExpenseEntryMapsSurviveRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	oldIdx := decimal.RequireFromString("120.5")
	newIdx := decimal.RequireFromString("128.75")
	e := engine.ExpenseRecord{
		ID:               "exp-1",
		Name:             "Apă rece",
		Period:           "2026-08",
		DistributionType: engine.DistributeByConsumption,
		ReceptionMode:    engine.ReceptionAssociation,
		UnitPrice:        decimal.RequireFromString("9.5"),
		BillAmount:       engine.NewAmount(360.50),
		IsUnitBased:      true,
		Consumption: map[engine.ApartmentID]decimal.Decimal{
			"A1": decimal.RequireFromString("8.25"),
		},
		Indexes: map[engine.ApartmentID]map[string]engine.IndexReading{
			"A2": {"bath": {OldIndex: &oldIdx, NewIndex: &newIdx}},
		},
	}
	require.NoError(t, store.SaveExpense(ctx, e))

	got, err := store.GetExpense(ctx, "exp-1")
	require.NoError(t, err)
	assert.True(t, got.BillAmount.Equal(engine.NewAmount(360.50)))
	assert.True(t, got.Consumption["A1"].Equal(decimal.RequireFromString("8.25")))
	reading := got.Indexes["A2"]["bath"]
	require.NotNil(t, reading.NewIndex)
	assert.True(t, reading.Consumed().Equal(decimal.RequireFromString("8.25")))

	// Saving again with a replaced value overwrites, never appends.
	got.Consumption["A1"] = decimal.RequireFromString("10")
	require.NoError(t, store.SaveExpense(ctx, got))
	again, err := store.GetExpense(ctx, "exp-1")
	require.NoError(t, err)
	assert.True(t, again.Consumption["A1"].Equal(decimal.RequireFromString("10")))
}

func TestStore_GetExpense_NotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.GetExpense(context.Background(), "missing")
	assert.ErrorIs(t, err, billing.ErrExpenseNotFound)
}

func TestStore_ExpenseConfigStoredAsJSON(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	cfg := engine.DefaultConfig("Ascensor")
	cfg.DistributionType = engine.DistributeByPerson
	cfg.Participation = engine.ParticipationMap{"A1": engine.Excluded()}
	require.NoError(t, store.SaveExpenseConfig(ctx, cfg))

	got, found, err := store.ExpenseConfig(ctx, "Ascensor")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, engine.DistributeByPerson, got.DistributionType)
	assert.Equal(t, engine.ParticipationExcluded, got.Participation.For("A1").Kind)

	_, found, err = store.ExpenseConfig(ctx, "Necunoscut")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStore_PendingLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	qty := decimal.RequireFromString("8")
	require.NoError(t, store.SavePending(ctx, billing.PendingEntry{
		ExpenseName: "Apă rece", Period: "2026-08", ApartmentID: "A1", Consumption: &qty,
	}))
	// Second save for the same apartment replaces the first.
	qty2 := decimal.RequireFromString("9")
	require.NoError(t, store.SavePending(ctx, billing.PendingEntry{
		ExpenseName: "Apă rece", Period: "2026-08", ApartmentID: "A1", Consumption: &qty2,
	}))

	entries, err := store.PendingFor(ctx, "Apă rece", "2026-08")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].Consumption)
	assert.True(t, entries[0].Consumption.Equal(qty2))

	require.NoError(t, store.DeletePending(ctx, "Apă rece", "2026-08"))
	entries, err = store.PendingFor(ctx, "Apă rece", "2026-08")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStore_PeriodLockFlag(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	locked, err := store.IsPeriodLocked(ctx, "2026-08")
	require.NoError(t, err)
	assert.False(t, locked)

	require.NoError(t, store.SetPeriodLocked(ctx, "2026-08", true))
	locked, err = store.IsPeriodLocked(ctx, "2026-08")
	require.NoError(t, err)
	assert.True(t, locked)

	require.NoError(t, store.SetPeriodLocked(ctx, "2026-08", false))
	locked, err = store.IsPeriodLocked(ctx, "2026-08")
	require.NoError(t, err)
	assert.False(t, locked)
}
