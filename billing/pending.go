/*
pending.go - Pre-distribution data entry

PURPOSE:
  Operators often start typing consumption or index readings before the
  month's expense is formally distributed. Those values are captured as
  PendingEntry records keyed by expense-type name and apartment, then
  promoted into the ExpenseRecord's entry maps when distribution happens,
  and discarded afterwards.
*/
package billing

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/warp/billing-engine/engine"
)

// PendingEntry holds values captured before an expense is distributed.
// Pointer fields distinguish "not entered" from zero.
type PendingEntry struct {
	ExpenseName string
	Period      string
	ApartmentID engine.ApartmentID

	Consumption      *decimal.Decimal
	IndividualAmount *engine.Amount
	Indexes          map[string]engine.IndexReading
}

// PendingStore persists pending entries until promotion.
type PendingStore interface {
	SavePending(ctx context.Context, entry PendingEntry) error
	PendingFor(ctx context.Context, expenseName, period string) ([]PendingEntry, error)
	DeletePending(ctx context.Context, expenseName, period string) error
}

// PromotePending migrates captured values into a freshly distributed
// expense record. Existing record values win over pending ones: the record
// is the source of truth once distribution starts.
func PromotePending(e *engine.ExpenseRecord, entries []PendingEntry) {
	for _, entry := range entries {
		if entry.Consumption != nil && !entry.Consumption.IsNegative() {
			if e.Consumption == nil {
				e.Consumption = make(map[engine.ApartmentID]decimal.Decimal)
			}
			if _, exists := e.Consumption[entry.ApartmentID]; !exists {
				e.Consumption[entry.ApartmentID] = *entry.Consumption
			}
		}
		if entry.IndividualAmount != nil && !entry.IndividualAmount.IsNegative() {
			if e.IndividualAmounts == nil {
				e.IndividualAmounts = make(map[engine.ApartmentID]engine.Amount)
			}
			if _, exists := e.IndividualAmounts[entry.ApartmentID]; !exists {
				e.IndividualAmounts[entry.ApartmentID] = *entry.IndividualAmount
			}
		}
		if len(entry.Indexes) > 0 {
			if e.Indexes == nil {
				e.Indexes = make(map[engine.ApartmentID]map[string]engine.IndexReading)
			}
			if e.Indexes[entry.ApartmentID] == nil {
				e.Indexes[entry.ApartmentID] = make(map[string]engine.IndexReading)
			}
			for meterID, reading := range entry.Indexes {
				if _, exists := e.Indexes[entry.ApartmentID][meterID]; !exists {
					e.Indexes[entry.ApartmentID][meterID] = reading
				}
			}
		}
	}
}

// DistributeExpense promotes pending entries into the record, persists it,
// and discards the promoted entries. The caller has already checked the
// period lock.
func DistributeExpense(ctx context.Context, expenses ExpenseStore, pending PendingStore, e engine.ExpenseRecord) (engine.ExpenseRecord, error) {
	if pending != nil {
		entries, err := pending.PendingFor(ctx, e.Name, e.Period)
		if err != nil {
			return engine.ExpenseRecord{}, err
		}
		PromotePending(&e, entries)
	}
	if err := expenses.SaveExpense(ctx, e); err != nil {
		return engine.ExpenseRecord{}, err
	}
	if pending != nil {
		if err := pending.DeletePending(ctx, e.Name, e.Period); err != nil {
			return engine.ExpenseRecord{}, err
		}
	}
	return e, nil
}
