/*
config.go - Effective expense-type configuration

PURPOSE:
  ExpenseTypeConfig is the full ruleset governing one expense type: which
  distribution algorithm applies, how individual apartments participate,
  how a metered bill's rounding gap is redistributed, and whether metered
  input arrives as manual quantities or as counter-index pairs.

  The engine consumes an already-resolved config; merging stored custom
  configuration over the built-in default table happens in the billing
  package (ConfigResolver). Absent fields always resolve to documented
  defaults, never to an error.

SEE ALSO:
  - billing/defaults.go: Built-in expense-type table and merge rules
  - factory/expensetype.go: JSON definitions -> this struct
*/
package engine

// FixedAmountMode says whether a Fixed override is a flat amount per
// apartment or a per-occupant amount.
type FixedAmountMode string

const (
	FixedPerApartment FixedAmountMode = "apartment"
	FixedPerPerson    FixedAmountMode = "person"
)

// DifferenceMethod selects how a reconciliation difference is split.
type DifferenceMethod string

const (
	// DifferenceByApartment splits the gap equally across eligible apartments.
	DifferenceByApartment DifferenceMethod = "apartment"
	// DifferenceByConsumption splits proportional to consumption quantity.
	DifferenceByConsumption DifferenceMethod = "consumption"
	// DifferenceByPerson splits proportional to occupant counts.
	DifferenceByPerson DifferenceMethod = "person"
)

// DifferenceAdjustment optionally reshapes each eligible apartment's share.
type DifferenceAdjustment string

const (
	AdjustNone DifferenceAdjustment = "none"
	// AdjustByParticipation scales each share by the apartment's percentage
	// override multiplier (same semantics as apportionment, applied once).
	AdjustByParticipation DifferenceAdjustment = "participation"
	// AdjustByApartmentType is accepted for legacy configs but currently
	// behaves as AdjustNone. See DESIGN.md.
	AdjustByApartmentType DifferenceAdjustment = "apartmentType"
)

// DifferenceDistribution configures the reconciliation step.
type DifferenceDistribution struct {
	Method         DifferenceMethod
	AdjustmentMode DifferenceAdjustment

	// Excluded apartments normally take no share of the difference; this
	// opts them back in.
	IncludeExcluded bool
	// Fixed-amount apartments normally take no share of the difference;
	// this opts them back in.
	IncludeFixedAmount bool
}

// IndexInputMode says how metered quantities are captured.
type IndexInputMode string

const (
	// InputManual: quantities typed directly per apartment.
	InputManual IndexInputMode = "manual"
	// InputIndexes: old/new counter readings per meter; the engine derives
	// the quantity. The two modes are mutually exclusive per expense.
	InputIndexes IndexInputMode = "indexes"
)

// IndexType describes one meter an apartment may carry (e.g. bathroom cold
// water, kitchen cold water).
type IndexType struct {
	ID   string
	Name string
}

// IndexConfiguration bundles the input mode with the configured meters.
type IndexConfiguration struct {
	InputMode  IndexInputMode
	IndexTypes []IndexType
}

// ExpenseTypeConfig is the effective configuration for one expense type.
type ExpenseTypeConfig struct {
	Name             string
	DistributionType DistributionType
	// Default granularity when distributing new bills of this type.
	ReceptionMode ReceptionMode

	Participation   ParticipationMap
	FixedAmountMode FixedAmountMode

	Difference DifferenceDistribution

	// Unit label for metered quantities ("mc", "kWh", or a custom label).
	ConsumptionUnit       string
	CustomConsumptionUnit string

	Indexes IndexConfiguration
}

// DefaultConfig is the safe fallback for unknown expense names: equal split
// per apartment, no overrides, flat fixed amounts, no reconciliation shaping.
func DefaultConfig(name string) ExpenseTypeConfig {
	return ExpenseTypeConfig{
		Name:             name,
		DistributionType: DistributeByApartment,
		ReceptionMode:    ReceptionAssociation,
		FixedAmountMode:  FixedPerApartment,
		Difference: DifferenceDistribution{
			Method:         DifferenceByApartment,
			AdjustmentMode: AdjustNone,
		},
		Indexes: IndexConfiguration{InputMode: InputManual},
	}
}

// Unit returns the display unit for quantities, preferring the custom label.
func (c ExpenseTypeConfig) Unit() string {
	if c.CustomConsumptionUnit != "" {
		return c.CustomConsumptionUnit
	}
	if c.ConsumptionUnit != "" {
		return c.ConsumptionUnit
	}
	return "mc"
}
