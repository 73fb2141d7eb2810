/*
Package billing is the association-billing domain layer on top of engine.

PURPOSE:
  The engine package is deliberately ignorant of where expense-type
  configuration, building topology, or period locks come from. This
  package supplies that context: the built-in default expense-type table,
  the resolver that merges stored custom configuration over it, pending
  data entry captured before an expense is distributed, and the statement
  facade that composes the engine components into display-ready rows.

KEY CONCEPTS IN THIS FILE (defaults.go):
  - defaultExpenseTypes: The built-in table every Romanian association
    starts from (cold water, hot water, elevator, sanitation, funds, ...)
  - ConfigResolver: stored custom config (if any) merged over the table;
    unknown names fall back to a safe equal-split default

SEE ALSO:
  - statement.go: The facade callers actually invoke
  - factory/expensetype.go: JSON -> ExpenseTypeConfig for stored configs
*/
package billing

import (
	"context"

	"github.com/warp/billing-engine/engine"
)

// defaultExpenseTypes is the built-in expense-type table. Names match what
// administrators see on paper bills; stored custom configs override these.
var defaultExpenseTypes = map[string]engine.ExpenseTypeConfig{
	"Apă rece": {
		Name:             "Apă rece",
		DistributionType: engine.DistributeByConsumption,
		ReceptionMode:    engine.ReceptionAssociation,
		FixedAmountMode:  engine.FixedPerApartment,
		ConsumptionUnit:  "mc",
		Difference: engine.DifferenceDistribution{
			Method:         engine.DifferenceByConsumption,
			AdjustmentMode: engine.AdjustNone,
		},
	},
	"Apă caldă": {
		Name:             "Apă caldă",
		DistributionType: engine.DistributeByConsumption,
		ReceptionMode:    engine.ReceptionAssociation,
		FixedAmountMode:  engine.FixedPerApartment,
		ConsumptionUnit:  "mc",
		Difference: engine.DifferenceDistribution{
			Method:         engine.DifferenceByConsumption,
			AdjustmentMode: engine.AdjustNone,
		},
	},
	"Energie electrică": {
		Name:             "Energie electrică",
		DistributionType: engine.DistributeByConsumption,
		ReceptionMode:    engine.ReceptionAssociation,
		FixedAmountMode:  engine.FixedPerApartment,
		ConsumptionUnit:  "kWh",
		Difference: engine.DifferenceDistribution{
			Method:         engine.DifferenceByApartment,
			AdjustmentMode: engine.AdjustNone,
		},
	},
	"Salubritate": {
		Name:             "Salubritate",
		DistributionType: engine.DistributeByPerson,
		ReceptionMode:    engine.ReceptionAssociation,
		FixedAmountMode:  engine.FixedPerPerson,
		Difference: engine.DifferenceDistribution{
			Method:         engine.DifferenceByPerson,
			AdjustmentMode: engine.AdjustNone,
		},
	},
	"Ascensor": {
		Name:             "Ascensor",
		DistributionType: engine.DistributeByPerson,
		ReceptionMode:    engine.ReceptionPerStair,
		FixedAmountMode:  engine.FixedPerPerson,
		Difference: engine.DifferenceDistribution{
			Method:         engine.DifferenceByPerson,
			AdjustmentMode: engine.AdjustNone,
		},
	},
	"Curățenie": {
		Name:             "Curățenie",
		DistributionType: engine.DistributeByApartment,
		ReceptionMode:    engine.ReceptionPerStair,
		FixedAmountMode:  engine.FixedPerApartment,
		Difference: engine.DifferenceDistribution{
			Method:         engine.DifferenceByApartment,
			AdjustmentMode: engine.AdjustNone,
		},
	},
	"Administrare": {
		Name:             "Administrare",
		DistributionType: engine.DistributeByApartment,
		ReceptionMode:    engine.ReceptionAssociation,
		FixedAmountMode:  engine.FixedPerApartment,
		Difference: engine.DifferenceDistribution{
			Method:         engine.DifferenceByApartment,
			AdjustmentMode: engine.AdjustNone,
		},
	},
	"Fond rulment": {
		Name:             "Fond rulment",
		DistributionType: engine.DistributeByQuota,
		ReceptionMode:    engine.ReceptionAssociation,
		FixedAmountMode:  engine.FixedPerApartment,
		Difference: engine.DifferenceDistribution{
			Method:         engine.DifferenceByApartment,
			AdjustmentMode: engine.AdjustNone,
		},
	},
	"Fond reparații": {
		Name:             "Fond reparații",
		DistributionType: engine.DistributeByQuota,
		ReceptionMode:    engine.ReceptionAssociation,
		FixedAmountMode:  engine.FixedPerApartment,
		Difference: engine.DifferenceDistribution{
			Method:         engine.DifferenceByApartment,
			AdjustmentMode: engine.AdjustNone,
		},
	},
}

// DefaultExpenseTypeNames lists the built-in table, for seeding and UI menus.
func DefaultExpenseTypeNames() []string {
	names := make([]string, 0, len(defaultExpenseTypes))
	for name := range defaultExpenseTypes {
		names = append(names, name)
	}
	return names
}

// ConfigResolver produces the effective ExpenseTypeConfig for an expense
// name: stored custom configuration merged over the built-in default table,
// with a safe equal-split default for unknown names. Never errors on absent
// configuration.
type ConfigResolver struct {
	Provider ConfigProvider
}

// Resolve returns the effective config for an expense-type name.
func (r ConfigResolver) Resolve(ctx context.Context, name string) (engine.ExpenseTypeConfig, error) {
	base, ok := defaultExpenseTypes[name]
	if !ok {
		base = engine.DefaultConfig(name)
	}

	if r.Provider == nil {
		return base, nil
	}
	custom, found, err := r.Provider.ExpenseConfig(ctx, name)
	if err != nil {
		return engine.ExpenseTypeConfig{}, err
	}
	if !found {
		return base, nil
	}
	return mergeConfig(base, custom), nil
}

// ResolveForExpense resolves the config for a full expense record.
func (r ConfigResolver) ResolveForExpense(ctx context.Context, e engine.ExpenseRecord) (engine.ExpenseTypeConfig, error) {
	cfg, err := r.Resolve(ctx, e.Name)
	if err != nil {
		return engine.ExpenseTypeConfig{}, err
	}
	// The record's own distribution type wins once distributed; the config
	// only supplies the default for new distributions.
	if e.DistributionType != "" {
		cfg.DistributionType = e.DistributionType
	}
	return cfg, nil
}

// mergeConfig lays a stored custom config over a base: set fields win,
// absent (zero) fields keep the base value.
func mergeConfig(base, custom engine.ExpenseTypeConfig) engine.ExpenseTypeConfig {
	out := base
	if custom.DistributionType != "" {
		out.DistributionType = custom.DistributionType
	}
	if custom.ReceptionMode != "" {
		out.ReceptionMode = custom.ReceptionMode
	}
	if custom.FixedAmountMode != "" {
		out.FixedAmountMode = custom.FixedAmountMode
	}
	if custom.Participation != nil {
		out.Participation = custom.Participation
	}
	if custom.Difference.Method != "" {
		out.Difference.Method = custom.Difference.Method
	}
	if custom.Difference.AdjustmentMode != "" {
		out.Difference.AdjustmentMode = custom.Difference.AdjustmentMode
	}
	out.Difference.IncludeExcluded = custom.Difference.IncludeExcluded || base.Difference.IncludeExcluded
	out.Difference.IncludeFixedAmount = custom.Difference.IncludeFixedAmount || base.Difference.IncludeFixedAmount
	if custom.ConsumptionUnit != "" {
		out.ConsumptionUnit = custom.ConsumptionUnit
	}
	if custom.CustomConsumptionUnit != "" {
		out.CustomConsumptionUnit = custom.CustomConsumptionUnit
	}
	if custom.Indexes.InputMode != "" {
		out.Indexes.InputMode = custom.Indexes.InputMode
	}
	if custom.Indexes.IndexTypes != nil {
		out.Indexes.IndexTypes = custom.Indexes.IndexTypes
	}
	if out.Difference.Method == "" {
		out.Difference.Method = engine.DifferenceByApartment
	}
	if out.Difference.AdjustmentMode == "" {
		out.Difference.AdjustmentMode = engine.AdjustNone
	}
	if out.Indexes.InputMode == "" {
		out.Indexes.InputMode = engine.InputManual
	}
	return out
}
