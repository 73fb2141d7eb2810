/*
statement.go - The statement facade

PURPOSE:
  One call that composes scope resolution, apportionment, reconciliation,
  and rollups into display-ready statement rows for a requested scope.
  Header total, row amounts, and footer total all derive from this single
  computation, so they cannot drift apart.

PURITY:
  BuildStatement is a pure function over its inputs. The UI may call it
  on every keystroke with whatever provisional values it currently holds;
  missing entries read as zero and the result is recomputed from scratch
  each time.

DIFFERENCE SLICING:
  The reconciliation difference is computed once, association-wide, and
  each row carries its apartment's global share. A stair view's
  difference column therefore sums to exactly that stair's slice of the
  global difference - it is never recomputed per scope.
*/
package billing

import (
	"github.com/shopspring/decimal"
	"github.com/warp/billing-engine/engine"
)

// StatementRow is one apartment's line in a scope view.
type StatementRow struct {
	Apartment engine.Apartment
	// Quantity is the metered consumption, zero for non-metered methods.
	Quantity    decimal.Decimal
	Apportioned engine.Amount
	Difference  engine.Amount
	Total       engine.Amount
}

// Statement is the full computed view of one expense at one scope.
type Statement struct {
	Expense engine.ExpenseRecord
	Config  engine.ExpenseTypeConfig
	Scope   engine.Scope

	Rows []StatementRow

	ExpectedAmount engine.Amount
	ExpectedKnown  bool
	// EnteredFallback mirrors the resolver's display-convenience signal.
	EnteredFallback bool
	EnteredTotal    engine.Amount

	ApportionedTotal engine.Amount
	DifferenceTotal  engine.Amount
	Total            engine.Amount

	Warnings []engine.Warning
}

// BuildStatement computes the statement for an expense at the requested
// scope. Pure; safe to call on every keystroke.
func BuildStatement(e engine.ExpenseRecord, cfg engine.ExpenseTypeConfig, scope engine.Scope, topo engine.Topology) Statement {
	resolution := engine.ResolveScope(e, cfg, scope, topo)

	expected := resolution.ExpectedAmount
	if !resolution.ExpectedKnown {
		// Entered-total-only view: formula methods have nothing to split.
		expected = engine.ZeroAmount
	}
	apportioned := engine.Apportion(e, cfg, resolution.Apartments, expected)

	// Always computed over the association-wide set, then sliced per row.
	difference := engine.Reconcile(e, cfg, topo.Apartments)

	st := Statement{
		Expense:         e,
		Config:          cfg,
		Scope:           scope,
		ExpectedAmount:  resolution.ExpectedAmount,
		ExpectedKnown:   resolution.ExpectedKnown,
		EnteredFallback: resolution.EnteredFallback,
		EnteredTotal:    resolution.EnteredTotal,
		Warnings:        append(apportioned.Warnings, difference.Warnings...),
	}

	st.Rows = make([]StatementRow, 0, len(resolution.Apartments))
	for _, apt := range resolution.Apartments {
		row := StatementRow{
			Apartment:   apt,
			Apportioned: apportioned.Shares[apt.ID],
			Difference:  difference.PerApartment[apt.ID],
		}
		if e.DistributionType == engine.DistributeByConsumption {
			row.Quantity = engine.MeteredConsumption(e, cfg, apt.ID)
		}
		row.Total = row.Apportioned.Add(row.Difference)

		st.ApportionedTotal = st.ApportionedTotal.Add(row.Apportioned)
		st.DifferenceTotal = st.DifferenceTotal.Add(row.Difference)
		st.Total = st.Total.Add(row.Total)
		st.Rows = append(st.Rows, row)
	}
	return st
}

// RollupReport aggregates a statement-level computation to audit totals at
// the requested level, association-wide.
func RollupReport(e engine.ExpenseRecord, cfg engine.ExpenseTypeConfig, topo engine.Topology, level engine.ScopeLevel) []engine.GroupTotal {
	resolution := engine.ResolveScope(e, cfg, engine.AssociationScope(), topo)
	apportioned := engine.Apportion(e, cfg, resolution.Apartments, resolution.ExpectedAmount)
	difference := engine.Reconcile(e, cfg, topo.Apartments)

	totals := make(map[engine.ApartmentID]engine.Amount, len(topo.Apartments))
	for _, apt := range topo.Apartments {
		totals[apt.ID] = apportioned.Shares[apt.ID].Add(difference.PerApartment[apt.ID])
	}
	return engine.Aggregate(totals, topo, level)
}
