/*
apportion.go - The five distribution algorithms

PURPOSE:
  Computes each apartment's pre-reconciliation owed amount for an expense.
  This is the canonical implementation: header totals, row amounts, and
  footer totals must all be derived from this one computation.

ALGORITHMS:
  consumption: quantity x unit price per apartment (entry-based)
  individual:  directly entered amount per apartment (entry-based)
  apartment:   equal split (formula-based, reweighted)
  person:      proportional to occupants (formula-based, reweighted)
  quota:       proportional to surface share (formula-based, reweighted)

OVERRIDE SEMANTICS (applied exactly once):
  Excluded:   owes 0 under every method, removed from every denominator.
  Fixed:      owes its fixed value; its value is subtracted from the
              expected amount before reweighting (the "introduced total"
              still includes it).
  Percentage: scales the apartment's WEIGHT for formula methods and its
              COMPUTED BASE AMOUNT for entry-based methods. Never both.

ZERO-WEIGHT EDGE:
  If the weighted subset sums to zero weight while a positive amount
  remains to redistribute, the weighted apartments all owe 0 and the
  result carries WarnZeroWeight so the caller can flag the expense as
  misconfigured instead of silently billing nothing.
*/
package engine

import "github.com/shopspring/decimal"

// ApportionResult is the outcome of one apportionment pass.
type ApportionResult struct {
	// Shares maps each in-scope apartment to its pre-reconciliation owed
	// amount. Every apartment passed in has an entry, possibly zero.
	Shares map[ApartmentID]Amount

	// FixedTotal is the sum of fixed-override amounts within scope.
	FixedTotal Amount
	// Redistributable is expected - FixedTotal, the amount split across
	// weighted apartments (formula methods only).
	Redistributable Amount

	Warnings []Warning
}

// Total sums all shares.
func (r ApportionResult) Total() Amount {
	t := ZeroAmount
	for _, a := range r.Shares {
		t = t.Add(a)
	}
	return t
}

// Apportion computes each apartment's owed amount for the expense within the
// given scope. expected is the scope's expected total and only drives the
// formula methods; entry-based methods derive amounts from the entries alone.
// Pure: identical inputs yield identical outputs.
func Apportion(e ExpenseRecord, cfg ExpenseTypeConfig, apartments []Apartment, expected Amount) ApportionResult {
	switch e.DistributionType {
	case DistributeByConsumption, DistributeIndividual:
		return apportionEntries(e, cfg, apartments)
	default:
		return apportionFormula(e, cfg, apartments, expected)
	}
}

// =============================================================================
// ENTRY-BASED METHODS (consumption, individual)
// =============================================================================

func apportionEntries(e ExpenseRecord, cfg ExpenseTypeConfig, apartments []Apartment) ApportionResult {
	res := ApportionResult{Shares: make(map[ApartmentID]Amount, len(apartments))}

	for _, apt := range apartments {
		p := cfg.Participation.For(apt.ID)
		switch p.Kind {
		case ParticipationExcluded:
			res.Shares[apt.ID] = ZeroAmount
		case ParticipationFixed:
			fa := p.FixedAmount(cfg.FixedAmountMode, apt.Persons)
			res.Shares[apt.ID] = fa
			res.FixedTotal = res.FixedTotal.Add(fa)
		default:
			base := entryBase(e, cfg, apt)
			// Percentage scales the computed base amount here, not a weight.
			res.Shares[apt.ID] = base.Mul(p.Multiplier())
		}
	}
	return res
}

func entryBase(e ExpenseRecord, cfg ExpenseTypeConfig, apt Apartment) Amount {
	if e.DistributionType == DistributeIndividual {
		return e.IndividualAmount(apt.ID)
	}
	q := MeteredConsumption(e, cfg, apt.ID)
	return Amount{Value: q.Mul(e.UnitPrice)}
}

// =============================================================================
// FORMULA METHODS (apartment, person, quota)
// =============================================================================

func apportionFormula(e ExpenseRecord, cfg ExpenseTypeConfig, apartments []Apartment, expected Amount) ApportionResult {
	res := ApportionResult{Shares: make(map[ApartmentID]Amount, len(apartments))}

	weights, fixedTotal := scopeWeights(e.DistributionType, cfg, apartments)
	res.FixedTotal = fixedTotal
	res.Redistributable = expected.Sub(fixedTotal)

	totalWeight := decimal.Zero
	for _, w := range weights {
		totalWeight = totalWeight.Add(w)
	}

	for _, apt := range apartments {
		p := cfg.Participation.For(apt.ID)
		switch p.Kind {
		case ParticipationExcluded:
			res.Shares[apt.ID] = ZeroAmount
		case ParticipationFixed:
			res.Shares[apt.ID] = p.FixedAmount(cfg.FixedAmountMode, apt.Persons)
		default:
			if totalWeight.IsZero() {
				res.Shares[apt.ID] = ZeroAmount
				continue
			}
			res.Shares[apt.ID] = res.Redistributable.Mul(weights[apt.ID]).Div(totalWeight)
		}
	}

	if totalWeight.IsZero() && !res.Redistributable.IsZero() {
		res.Warnings = append(res.Warnings, zeroWeightWarning(res.Redistributable))
	}
	return res
}

// scopeWeights assigns every non-fixed, non-excluded apartment its effective
// weight and sums the fixed-override total. Shared with the scope resolver,
// which needs the same weights to derive stair/block expected amounts.
func scopeWeights(dt DistributionType, cfg ExpenseTypeConfig, apartments []Apartment) (map[ApartmentID]decimal.Decimal, Amount) {
	weights := make(map[ApartmentID]decimal.Decimal, len(apartments))
	fixedTotal := ZeroAmount

	var weighted []Apartment
	for _, apt := range apartments {
		switch p := cfg.Participation.For(apt.ID); p.Kind {
		case ParticipationExcluded:
		case ParticipationFixed:
			fixedTotal = fixedTotal.Add(p.FixedAmount(cfg.FixedAmountMode, apt.Persons))
		default:
			weighted = append(weighted, apt)
		}
	}

	// Quota shares are recomputed over the weighted subset only: excluded
	// and fixed apartments' surface leaves the denominator. Matches the
	// billing history of existing associations; do not change.
	surfaceTotal := decimal.Zero
	if dt == DistributeByQuota {
		for _, apt := range weighted {
			if !apt.Surface.IsNegative() {
				surfaceTotal = surfaceTotal.Add(apt.Surface)
			}
		}
	}

	for _, apt := range weighted {
		w := baseWeight(dt, apt, surfaceTotal)
		weights[apt.ID] = w.Mul(cfg.Participation.For(apt.ID).Multiplier())
	}
	return weights, fixedTotal
}

func baseWeight(dt DistributionType, apt Apartment, surfaceTotal decimal.Decimal) decimal.Decimal {
	switch dt {
	case DistributeByPerson:
		if apt.Persons <= 0 {
			return decimal.Zero
		}
		return decimal.NewFromInt(int64(apt.Persons))
	case DistributeByQuota:
		if surfaceTotal.IsZero() || apt.Surface.IsNegative() {
			return decimal.Zero
		}
		// Surface share expressed as a percentage, rounded to 4 decimals.
		return apt.Surface.Div(surfaceTotal).Mul(hundred).Round(4)
	default: // apartment
		return one
	}
}
