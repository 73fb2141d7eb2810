/*
indexes.go - Metered consumption resolution

PURPOSE:
  Converts old/new counter-index pairs into a consumption quantity per
  apartment when an expense captures meter readings instead of typed-in
  quantities. The two input modes are mutually exclusive per expense:
  index mode ignores any legacy manual value and manual mode ignores
  indexes entirely. They are never merged.
*/
package engine

import "github.com/shopspring/decimal"

// MeteredConsumption returns the consumption quantity for an apartment on a
// metered expense, honoring the configured input mode.
//
// Manual mode: the typed-in quantity (missing -> 0).
// Index mode: sum of (new - old) across configured meters; a meter missing
// either reading contributes 0.
func MeteredConsumption(e ExpenseRecord, cfg ExpenseTypeConfig, id ApartmentID) decimal.Decimal {
	if cfg.Indexes.InputMode != InputIndexes {
		return e.ManualConsumption(id)
	}
	readings := e.Indexes[id]
	if readings == nil {
		return decimal.Zero
	}
	total := decimal.Zero
	if len(cfg.Indexes.IndexTypes) > 0 {
		for _, it := range cfg.Indexes.IndexTypes {
			total = total.Add(readings[it.ID].Consumed())
		}
		return total
	}
	// No meter catalogue configured: count every recorded meter.
	for _, r := range readings {
		total = total.Add(r.Consumed())
	}
	return total
}
