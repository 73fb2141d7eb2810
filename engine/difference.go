/*
difference.go - Bill-vs-entered reconciliation

PURPOSE:
  A metered bill's total rarely equals the sum of consumption x unit price
  exactly: providers round, estimate, and true-up. For unit-based expenses
  this file computes a per-apartment "difference" correction so that
  entered + difference reconciles to the billed total.

SCOPE RULE:
  The difference is ALWAYS computed over the association-wide apartment
  set and then sliced per requested scope by summing the relevant subset.
  Recomputing it independently per scope would let stair, block, and
  association views drift apart.

ELIGIBILITY:
  Excluded apartments take no share unless IncludeExcluded is set; Fixed
  apartments take no share unless IncludeFixedAmount is set. With
  AdjustByParticipation, each eligible share is additionally scaled by the
  apartment's percentage multiplier - the same multiplier as in
  apportionment, applied exactly once.

NON-UNIT-BASED EXPENSES:
  Formula-computed methods are exact and require no reconciliation;
  Reconcile returns an all-zero map for them.
*/
package engine

import "github.com/shopspring/decimal"

// DifferenceResult carries the association-wide difference distribution.
type DifferenceResult struct {
	// PerApartment has an entry for every apartment passed in, possibly zero.
	PerApartment map[ApartmentID]Amount
	// Total is the gap being closed: bill amount minus apportioned sum.
	Total    Amount
	Warnings []Warning
}

// Slice sums the difference over a subset of apartments, for per-scope views.
func (r DifferenceResult) Slice(apartments []Apartment) Amount {
	total := ZeroAmount
	for _, apt := range apartments {
		total = total.Add(r.PerApartment[apt.ID])
	}
	return total
}

// Reconcile distributes the gap between the billed total and the apportioned
// sum across eligible apartments. apartments must be the association-wide
// set; callers slice the result per scope. Pure.
func Reconcile(e ExpenseRecord, cfg ExpenseTypeConfig, apartments []Apartment) DifferenceResult {
	res := DifferenceResult{PerApartment: make(map[ApartmentID]Amount, len(apartments))}
	for _, apt := range apartments {
		res.PerApartment[apt.ID] = ZeroAmount
	}
	if !e.IsUnitBased {
		return res
	}

	apportioned := Apportion(e, cfg, apartments, associationExpected(e))
	res.Total = e.BillAmount.Sub(apportioned.Total())
	if res.Total.IsZero() {
		return res
	}

	weights := differenceWeights(e, cfg, apartments)
	totalWeight := decimal.Zero
	for _, w := range weights {
		totalWeight = totalWeight.Add(w)
	}
	if totalWeight.IsZero() {
		res.Warnings = append(res.Warnings, zeroWeightWarning(res.Total))
		return res
	}

	for id, w := range weights {
		res.PerApartment[id] = res.Total.Mul(w).Div(totalWeight)
	}
	return res
}

func differenceWeights(e ExpenseRecord, cfg ExpenseTypeConfig, apartments []Apartment) map[ApartmentID]decimal.Decimal {
	weights := make(map[ApartmentID]decimal.Decimal, len(apartments))

	for _, apt := range apartments {
		p := cfg.Participation.For(apt.ID)
		switch p.Kind {
		case ParticipationExcluded:
			if !cfg.Difference.IncludeExcluded {
				continue
			}
		case ParticipationFixed:
			if !cfg.Difference.IncludeFixedAmount {
				continue
			}
		}

		w := differenceBaseWeight(e, cfg, apt)
		if cfg.Difference.AdjustmentMode == AdjustByParticipation {
			w = w.Mul(p.Multiplier())
		}
		if w.IsZero() {
			continue
		}
		weights[apt.ID] = w
	}
	return weights
}

func differenceBaseWeight(e ExpenseRecord, cfg ExpenseTypeConfig, apt Apartment) decimal.Decimal {
	switch cfg.Difference.Method {
	case DifferenceByConsumption:
		return MeteredConsumption(e, cfg, apt.ID)
	case DifferenceByPerson:
		if apt.Persons <= 0 {
			return decimal.Zero
		}
		return decimal.NewFromInt(int64(apt.Persons))
	default: // apartment: equal split
		return one
	}
}
