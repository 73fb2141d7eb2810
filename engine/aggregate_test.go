package engine_test

import (
	"testing"

	"github.com/warp/billing-engine/engine"
)

func TestAggregate_PerStairTotals(t *testing.T) {
	// GIVEN: Per-apartment amounts over the test topology
	// WHEN: Rolling up per stair
	// THEN: One row per stair, sums over its apartments, topology order

	amounts := map[engine.ApartmentID]engine.Amount{
		"A1": ron(10), "A2": ron(20), "A3": ron(5), "A4": ron(40),
	}
	rows := engine.Aggregate(amounts, testTopology(), engine.ScopeStair)
	if len(rows) != 3 {
		t.Fatalf("expected 3 stair rows, got %d", len(rows))
	}
	if !rows[0].Total.Equal(ron(30)) || !rows[1].Total.Equal(ron(5)) || !rows[2].Total.Equal(ron(40)) {
		t.Errorf("stair totals: got {%v, %v, %v}, want {30, 5, 40}",
			rows[0].Total.Value, rows[1].Total.Value, rows[2].Total.Value)
	}
}

func TestAggregate_PerBlockTotals(t *testing.T) {
	amounts := map[engine.ApartmentID]engine.Amount{
		"A1": ron(10), "A2": ron(20), "A3": ron(5), "A4": ron(40),
	}
	rows := engine.Aggregate(amounts, testTopology(), engine.ScopeBlock)
	if len(rows) != 2 {
		t.Fatalf("expected 2 block rows, got %d", len(rows))
	}
	if !rows[0].Total.Equal(ron(35)) || !rows[1].Total.Equal(ron(40)) {
		t.Errorf("block totals: got {%v, %v}, want {35, 40}", rows[0].Total.Value, rows[1].Total.Value)
	}
}

func TestAggregate_AssociationTotal(t *testing.T) {
	// Apartments missing from the amounts map count as zero.
	amounts := map[engine.ApartmentID]engine.Amount{"A1": ron(10), "A4": ron(40)}
	rows := engine.Aggregate(amounts, testTopology(), engine.ScopeAssociation)
	if len(rows) != 1 || !rows[0].Total.Equal(ron(50)) {
		t.Fatalf("expected single association row totalling 50, got %+v", rows)
	}
	if rows[0].Apartments != 4 {
		t.Errorf("expected 4 apartments counted, got %d", rows[0].Apartments)
	}
}
