package billing_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/billing-engine/billing"
	"github.com/warp/billing-engine/billing/store"
	"github.com/warp/billing-engine/engine"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func testTopology() engine.Topology {
	mkApt := func(id string, persons int, surface float64, stair string) engine.Apartment {
		return engine.Apartment{
			ID:      engine.ApartmentID(id),
			Number:  id,
			Persons: persons,
			Surface: decimal.NewFromFloat(surface),
			StairID: engine.StairID(stair),
		}
	}
	return engine.Topology{
		Blocks: []engine.Block{{ID: "B1", Name: "Bloc 1"}},
		Stairs: []engine.Stair{
			{ID: "S1", BlockID: "B1", Name: "Scara A"},
			{ID: "S2", BlockID: "B1", Name: "Scara B"},
		},
		Apartments: []engine.Apartment{
			mkApt("A1", 2, 50, "S1"),
			mkApt("A2", 3, 60, "S1"),
			mkApt("A3", 1, 40, "S2"),
		},
	}
}

func waterExpense(bill float64) engine.ExpenseRecord {
	return engine.ExpenseRecord{
		ID:               "exp-1",
		Name:             "Apă rece",
		Period:           "2026-08",
		DistributionType: engine.DistributeByConsumption,
		ReceptionMode:    engine.ReceptionAssociation,
		UnitPrice:        decimal.NewFromInt(5),
		Consumption: map[engine.ApartmentID]decimal.Decimal{
			"A1": decimal.NewFromInt(10),
			"A2": decimal.NewFromInt(20),
			"A3": decimal.NewFromInt(10),
		},
		BillAmount:  engine.NewAmount(bill),
		IsUnitBased: true,
	}
}

func resolveWaterConfig(t *testing.T) engine.ExpenseTypeConfig {
	t.Helper()
	cfg, err := billing.ConfigResolver{}.Resolve(context.Background(), "Apă rece")
	require.NoError(t, err)
	return cfg
}

// =============================================================================
// STATEMENT COMPOSITION
// =============================================================================

func TestBuildStatement_RowAndFooterConsistency(t *testing.T) {
	// The footer totals must be the exact sum of the row values: one
	// computation feeds header, rows, and footer.
	e := waterExpense(215) // entered sum is 200; 15 RON surplus
	st := billing.BuildStatement(e, resolveWaterConfig(t), engine.AssociationScope(), testTopology())

	apportioned := engine.ZeroAmount
	difference := engine.ZeroAmount
	total := engine.ZeroAmount
	for _, row := range st.Rows {
		apportioned = apportioned.Add(row.Apportioned)
		difference = difference.Add(row.Difference)
		total = total.Add(row.Total)
		assert.True(t, row.Total.Equal(row.Apportioned.Add(row.Difference)))
	}
	assert.True(t, st.ApportionedTotal.Equal(apportioned))
	assert.True(t, st.DifferenceTotal.Equal(difference))
	assert.True(t, st.Total.Equal(total))

	// Reconciliation closure at association scope.
	assert.True(t, st.Total.WithinTolerance(e.BillAmount),
		"final total %v should reconcile to bill %v", st.Total.Value, e.BillAmount.Value)
}

func TestBuildStatement_StairView_SlicesGlobalDifference(t *testing.T) {
	// The per-stair difference column is the stair's slice of the
	// association-wide difference, never an independent recomputation.
	e := waterExpense(215)
	cfg := resolveWaterConfig(t)
	topo := testTopology()

	assoc := billing.BuildStatement(e, cfg, engine.AssociationScope(), topo)
	s1 := billing.BuildStatement(e, cfg, engine.StairScope("S1"), topo)
	s2 := billing.BuildStatement(e, cfg, engine.StairScope("S2"), topo)

	assert.True(t, assoc.DifferenceTotal.Equal(s1.DifferenceTotal.Add(s2.DifferenceTotal)),
		"stair slices must sum to the association difference")

	require.Len(t, s1.Rows, 2)
	for _, row := range s1.Rows {
		assert.True(t, row.Difference.Equal(assoc.Rows[rowIndex(assoc, row.Apartment.ID)].Difference),
			"apartment %s difference must match its global share", row.Apartment.ID)
	}
}

func rowIndex(st billing.Statement, id engine.ApartmentID) int {
	for i, row := range st.Rows {
		if row.Apartment.ID == id {
			return i
		}
	}
	return -1
}

func TestBuildStatement_UnknownExpected_EnteredOnlyView(t *testing.T) {
	// A per-block bill viewed per stair of a multi-stair block has no
	// determinable expected amount.
	e := engine.ExpenseRecord{
		ID:               "exp-2",
		Name:             "Curățenie",
		Period:           "2026-08",
		DistributionType: engine.DistributeByApartment,
		ReceptionMode:    engine.ReceptionPerBlock,
		AmountsByBlock:   map[engine.BlockID]engine.Amount{"B1": engine.NewAmount(300)},
	}
	cfg, err := billing.ConfigResolver{}.Resolve(context.Background(), "Curățenie")
	require.NoError(t, err)

	st := billing.BuildStatement(e, cfg, engine.StairScope("S1"), testTopology())
	assert.False(t, st.ExpectedKnown)
	for _, row := range st.Rows {
		assert.True(t, row.Apportioned.IsZero(), "nothing to split without a knowable expected amount")
	}
}

func TestBuildStatement_ZeroWeightWarningSurfaces(t *testing.T) {
	e := engine.ExpenseRecord{
		ID:               "exp-3",
		Name:             "Fond reparații",
		Period:           "2026-08",
		DistributionType: engine.DistributeByQuota,
		ReceptionMode:    engine.ReceptionAssociation,
		Amount:           engine.NewAmount(500),
	}
	cfg, err := billing.ConfigResolver{}.Resolve(context.Background(), "Fond reparații")
	require.NoError(t, err)
	cfg.Participation = engine.ParticipationMap{
		"A1": engine.Excluded(), "A2": engine.Excluded(), "A3": engine.Excluded(),
	}

	st := billing.BuildStatement(e, cfg, engine.AssociationScope(), testTopology())
	require.Len(t, st.Warnings, 1)
	assert.Equal(t, engine.WarnZeroWeight, st.Warnings[0].Code)
}

// =============================================================================
// ROLLUP REPORT
// =============================================================================

func TestRollupReport_StairTotalsReassembleBill(t *testing.T) {
	e := waterExpense(215)
	rows := billing.RollupReport(e, resolveWaterConfig(t), testTopology(), engine.ScopeStair)
	require.Len(t, rows, 2)

	total := engine.ZeroAmount
	for _, row := range rows {
		total = total.Add(row.Total)
	}
	assert.True(t, total.WithinTolerance(e.BillAmount))
}

// =============================================================================
// PERIOD LOCK + DISTRIBUTION
// =============================================================================

func TestDistributeExpense_PromotesAndDiscardsPending(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	mem.SetTopology(testTopology())

	ten := decimal.NewFromInt(10)
	require.NoError(t, mem.SavePending(ctx, billing.PendingEntry{
		ExpenseName: "Apă rece",
		Period:      "2026-08",
		ApartmentID: "A1",
		Consumption: &ten,
	}))

	e := engine.ExpenseRecord{
		ID:               "exp-9",
		Name:             "Apă rece",
		Period:           "2026-08",
		DistributionType: engine.DistributeByConsumption,
		ReceptionMode:    engine.ReceptionAssociation,
		UnitPrice:        decimal.NewFromInt(5),
		IsUnitBased:      true,
	}
	distributed, err := billing.DistributeExpense(ctx, mem, mem, e)
	require.NoError(t, err)
	assert.True(t, distributed.Consumption["A1"].Equal(ten), "pending value should be promoted")

	left, err := mem.PendingFor(ctx, "Apă rece", "2026-08")
	require.NoError(t, err)
	assert.Empty(t, left, "promoted entries are discarded")
}

func TestMemory_PeriodLockSignal(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()

	locked, err := mem.IsPeriodLocked(ctx, "2026-08")
	require.NoError(t, err)
	assert.False(t, locked)

	mem.LockPeriod("2026-08")
	locked, err = mem.IsPeriodLocked(ctx, "2026-08")
	require.NoError(t, err)
	assert.True(t, locked)
}
