/*
expense.go - Expense records and entered-value access

PURPOSE:
  ExpenseRecord is one distributed expense for a billing period. Its entry
  maps (consumption, individual amounts, counter indexes) are filled in
  incrementally while data entry proceeds; every accessor therefore
  tolerates missing values and treats them as zero.

LIFECYCLE:
  Created when an expense is "distributed" for a period. Entry maps are
  mutated by value replacement as operators type. The record freezes once
  the period is marked read-only by the sheet-lifecycle collaborator; the
  lock is enforced by callers, never consulted here.
*/
package engine

import "github.com/shopspring/decimal"

// IndexReading is one meter's old/new counter pair. Pointers distinguish
// "not yet entered" from zero.
type IndexReading struct {
	OldIndex *decimal.Decimal
	NewIndex *decimal.Decimal
}

// Consumed returns new - old when both readings are present, else zero.
// A negative delta (decreasing counter) also reads as zero.
func (r IndexReading) Consumed() decimal.Decimal {
	if r.OldIndex == nil || r.NewIndex == nil {
		return decimal.Zero
	}
	d := r.NewIndex.Sub(*r.OldIndex)
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// ExpenseRecord is a distributed expense for one billing period.
type ExpenseRecord struct {
	ID     ExpenseID
	Name   string
	Period string

	DistributionType DistributionType
	ReceptionMode    ReceptionMode

	// Expected total when ReceptionMode is association-wide and the expense
	// is not metered.
	Amount Amount
	// Expected totals at finer granularity.
	AmountsByBlock map[BlockID]Amount
	AmountsByStair map[StairID]Amount

	// Metered expenses.
	UnitPrice   decimal.Decimal
	Consumption map[ApartmentID]decimal.Decimal
	// BillAmount is the expected total for metered association-wide bills;
	// it may differ from the entered sum by provider rounding/estimation.
	BillAmount Amount
	// IsUnitBased enables difference reconciliation against BillAmount.
	IsUnitBased bool

	// Directly entered per-apartment amounts (individual distribution).
	IndividualAmounts map[ApartmentID]Amount

	// Counter readings per apartment per meter, when the expense type uses
	// index input.
	Indexes map[ApartmentID]map[string]IndexReading
}

// ManualConsumption returns the typed-in quantity for an apartment, zero if
// absent or negative.
func (e ExpenseRecord) ManualConsumption(id ApartmentID) decimal.Decimal {
	if e.Consumption == nil {
		return decimal.Zero
	}
	q, ok := e.Consumption[id]
	if !ok || q.IsNegative() {
		return decimal.Zero
	}
	return q
}

// IndividualAmount returns the directly entered amount for an apartment,
// zero if absent or negative.
func (e ExpenseRecord) IndividualAmount(id ApartmentID) Amount {
	if e.IndividualAmounts == nil {
		return ZeroAmount
	}
	a, ok := e.IndividualAmounts[id]
	if !ok || a.IsNegative() {
		return ZeroAmount
	}
	return a
}

// EnteredTotal sums the raw entered values for the given apartments before
// any participation override: consumption x unit price for metered expenses,
// the entered amount for individual ones, zero for formula methods. Used for
// the entered-sum fallback view when an expected amount is unknowable.
func (e ExpenseRecord) EnteredTotal(cfg ExpenseTypeConfig, apartments []Apartment) Amount {
	total := ZeroAmount
	switch e.DistributionType {
	case DistributeByConsumption:
		for _, apt := range apartments {
			q := MeteredConsumption(e, cfg, apt.ID)
			total = total.Add(Amount{Value: q.Mul(e.UnitPrice)})
		}
	case DistributeIndividual:
		for _, apt := range apartments {
			total = total.Add(e.IndividualAmount(apt.ID))
		}
	}
	return total
}

// HasEntries reports whether any entry value exists for the given apartments.
func (e ExpenseRecord) HasEntries(cfg ExpenseTypeConfig, apartments []Apartment) bool {
	for _, apt := range apartments {
		switch e.DistributionType {
		case DistributeByConsumption:
			if !MeteredConsumption(e, cfg, apt.ID).IsZero() {
				return true
			}
		case DistributeIndividual:
			if !e.IndividualAmount(apt.ID).IsZero() {
				return true
			}
		}
	}
	return false
}
