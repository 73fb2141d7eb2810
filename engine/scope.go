/*
scope.go - Billing-scope resolution

PURPOSE:
  A bill can be entered for the whole association, per block, or per stair,
  and it can be VIEWED at any of the three levels. This file determines,
  for a requested scope: which apartments are in it, what the expected
  total for it is, and whether that expected total is actually knowable.

WHY "KNOWABLE" MATTERS:
  A bill entered per block, viewed while filtering one stair of a
  multi-stair block, has no independently determinable per-stair total:
  the provider billed the block, not the stair. The resolver reports
  ExpectedKnown=false and the caller renders an entered-total-only view
  with difference badges suppressed. This is a signal, never an error.

DERIVED EXPECTED AMOUNTS:
  An association-wide bill viewed at stair/block level IS derivable for
  the formula methods: the sub-scope's expected amount is its fixed-
  override total plus its weight share of the association-wide
  redistributable. Entry-based methods have no independent expected at
  sub-scope level; the sum of entries within the scope stands in for it.
*/
package engine

import "github.com/shopspring/decimal"

// ScopeResolution is the outcome of resolving a requested scope.
type ScopeResolution struct {
	Scope      Scope
	Apartments []Apartment

	ExpectedAmount Amount
	ExpectedKnown  bool

	// EnteredFallback is set when the resolved expected amount is exactly 0
	// while entries exist; callers should display EnteredTotal instead.
	// Display convenience only, never a billing correction.
	EnteredFallback bool
	EnteredTotal    Amount
}

// ResolveScope determines the apartment subset, expected amount, and
// knowability for the requested scope. Pure.
func ResolveScope(e ExpenseRecord, cfg ExpenseTypeConfig, scope Scope, topo Topology) ScopeResolution {
	res := ScopeResolution{Scope: scope}

	switch scope.Level {
	case ScopeStair:
		res.Apartments = topo.StairApartments(StairID(scope.ID))
		res.ExpectedAmount, res.ExpectedKnown = stairExpected(e, cfg, StairID(scope.ID), topo)
	case ScopeBlock:
		res.Apartments = topo.BlockApartments(BlockID(scope.ID))
		res.ExpectedAmount, res.ExpectedKnown = blockExpected(e, cfg, BlockID(scope.ID), topo)
	default:
		res.Apartments = topo.Apartments
		res.ExpectedAmount = associationExpected(e)
		res.ExpectedKnown = true
	}

	res.EnteredTotal = e.EnteredTotal(cfg, res.Apartments)
	if res.ExpectedKnown && res.ExpectedAmount.IsZero() && e.HasEntries(cfg, res.Apartments) {
		res.EnteredFallback = true
	}
	return res
}

// associationExpected is always knowable: the entered bill total, or the sum
// of the finer-grained totals.
func associationExpected(e ExpenseRecord) Amount {
	switch e.ReceptionMode {
	case ReceptionPerBlock:
		total := ZeroAmount
		for _, a := range e.AmountsByBlock {
			total = total.Add(a)
		}
		return total
	case ReceptionPerStair:
		total := ZeroAmount
		for _, a := range e.AmountsByStair {
			total = total.Add(a)
		}
		return total
	default:
		if e.IsUnitBased {
			return e.BillAmount
		}
		return e.Amount
	}
}

func stairExpected(e ExpenseRecord, cfg ExpenseTypeConfig, id StairID, topo Topology) (Amount, bool) {
	switch e.ReceptionMode {
	case ReceptionPerStair:
		return e.AmountsByStair[id], true
	case ReceptionPerBlock:
		block := topo.StairBlock(id)
		// The per-stair share of a block bill is only determinable when the
		// block has exactly one stair.
		if len(topo.BlockStairs(block)) != 1 {
			return ZeroAmount, false
		}
		return e.AmountsByBlock[block], true
	default:
		return derivedExpected(e, cfg, topo.StairApartments(id), topo)
	}
}

func blockExpected(e ExpenseRecord, cfg ExpenseTypeConfig, id BlockID, topo Topology) (Amount, bool) {
	switch e.ReceptionMode {
	case ReceptionPerBlock:
		return e.AmountsByBlock[id], true
	case ReceptionPerStair:
		total := ZeroAmount
		for _, s := range topo.BlockStairs(id) {
			total = total.Add(e.AmountsByStair[s.ID])
		}
		return total, true
	default:
		return derivedExpected(e, cfg, topo.BlockApartments(id), topo)
	}
}

// derivedExpected reweights an association-wide bill down to a sub-scope.
// Formula methods: fixed total within scope + the scope's weight share of
// the association redistributable. Entry methods: sum of entries in scope
// (treated as known; there is no independent expected at this level).
func derivedExpected(e ExpenseRecord, cfg ExpenseTypeConfig, scopeApts []Apartment, topo Topology) (Amount, bool) {
	switch e.DistributionType {
	case DistributeByConsumption, DistributeIndividual:
		return e.EnteredTotal(cfg, scopeApts), true
	}

	assocExpected := associationExpected(e)
	weights, fixedAll := scopeWeights(e.DistributionType, cfg, topo.Apartments)
	redistributable := assocExpected.Sub(fixedAll)

	totalWeight := decimal.Zero
	for _, w := range weights {
		totalWeight = totalWeight.Add(w)
	}

	inScope := make(map[ApartmentID]bool, len(scopeApts))
	for _, apt := range scopeApts {
		inScope[apt.ID] = true
	}

	_, fixedScope := scopeWeights(e.DistributionType, cfg, scopeApts)
	expected := fixedScope
	if !totalWeight.IsZero() {
		scopeWeight := decimal.Zero
		for id, w := range weights {
			if inScope[id] {
				scopeWeight = scopeWeight.Add(w)
			}
		}
		expected = expected.Add(redistributable.Mul(scopeWeight).Div(totalWeight))
	}
	return expected, true
}
