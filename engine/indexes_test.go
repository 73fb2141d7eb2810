package engine_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/warp/billing-engine/engine"
)

func dec(v float64) *decimal.Decimal {
	d := decimal.NewFromFloat(v)
	return &d
}

func indexConfig() engine.ExpenseTypeConfig {
	cfg := engine.DefaultConfig("Apă rece")
	cfg.DistributionType = engine.DistributeByConsumption
	cfg.Indexes = engine.IndexConfiguration{
		InputMode: engine.InputIndexes,
		IndexTypes: []engine.IndexType{
			{ID: "bath", Name: "Baie"},
			{ID: "kitchen", Name: "Bucătărie"},
		},
	}
	return cfg
}

func TestMeteredConsumption_IndexMode_SumsMeters(t *testing.T) {
	// GIVEN: Two meters with full readings: bath 120->132, kitchen 80->85
	// WHEN: Resolving consumption
	// THEN: 12 + 5 = 17

	e := engine.ExpenseRecord{
		DistributionType: engine.DistributeByConsumption,
		Indexes: map[engine.ApartmentID]map[string]engine.IndexReading{
			"A1": {
				"bath":    {OldIndex: dec(120), NewIndex: dec(132)},
				"kitchen": {OldIndex: dec(80), NewIndex: dec(85)},
			},
		},
	}
	got := engine.MeteredConsumption(e, indexConfig(), "A1")
	if !got.Equal(decimal.NewFromInt(17)) {
		t.Errorf("expected 17, got %v", got)
	}
}

func TestMeteredConsumption_IndexMode_MissingReadingContributesZero(t *testing.T) {
	// GIVEN: Kitchen meter has only a new reading
	// WHEN: Resolving consumption
	// THEN: Only the bath meter counts

	e := engine.ExpenseRecord{
		DistributionType: engine.DistributeByConsumption,
		Indexes: map[engine.ApartmentID]map[string]engine.IndexReading{
			"A1": {
				"bath":    {OldIndex: dec(100), NewIndex: dec(110)},
				"kitchen": {NewIndex: dec(85)},
			},
		},
	}
	got := engine.MeteredConsumption(e, indexConfig(), "A1")
	if !got.Equal(decimal.NewFromInt(10)) {
		t.Errorf("expected 10, got %v", got)
	}
}

func TestMeteredConsumption_IndexMode_SupersedesManualValue(t *testing.T) {
	// GIVEN: Index mode active, but a stale manual quantity of 99 lingers
	// WHEN: Resolving consumption
	// THEN: The index-derived value wins; the manual value is ignored

	e := engine.ExpenseRecord{
		DistributionType: engine.DistributeByConsumption,
		Consumption:      map[engine.ApartmentID]decimal.Decimal{"A1": decimal.NewFromInt(99)},
		Indexes: map[engine.ApartmentID]map[string]engine.IndexReading{
			"A1": {"bath": {OldIndex: dec(10), NewIndex: dec(14)}},
		},
	}
	got := engine.MeteredConsumption(e, indexConfig(), "A1")
	if !got.Equal(decimal.NewFromInt(4)) {
		t.Errorf("expected index-derived 4, got %v", got)
	}
}

func TestMeteredConsumption_ManualMode_IgnoresIndexes(t *testing.T) {
	// GIVEN: Manual mode, with index readings also present
	// WHEN: Resolving consumption
	// THEN: The manual value wins; the two modes never merge

	cfg := engine.DefaultConfig("Apă rece")
	cfg.DistributionType = engine.DistributeByConsumption
	e := engine.ExpenseRecord{
		DistributionType: engine.DistributeByConsumption,
		Consumption:      map[engine.ApartmentID]decimal.Decimal{"A1": decimal.NewFromInt(7)},
		Indexes: map[engine.ApartmentID]map[string]engine.IndexReading{
			"A1": {"bath": {OldIndex: dec(10), NewIndex: dec(14)}},
		},
	}
	got := engine.MeteredConsumption(e, cfg, "A1")
	if !got.Equal(decimal.NewFromInt(7)) {
		t.Errorf("expected manual 7, got %v", got)
	}
}

func TestMeteredConsumption_DecreasingCounter_ReadsZero(t *testing.T) {
	// Counter replacement mid-period shows new < old; treat as no consumption.
	e := engine.ExpenseRecord{
		DistributionType: engine.DistributeByConsumption,
		Indexes: map[engine.ApartmentID]map[string]engine.IndexReading{
			"A1": {"bath": {OldIndex: dec(500), NewIndex: dec(3)}},
		},
	}
	got := engine.MeteredConsumption(e, indexConfig(), "A1")
	if !got.IsZero() {
		t.Errorf("expected 0 for decreasing counter, got %v", got)
	}
}
