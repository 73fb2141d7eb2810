/*
Package factory provides JSON to Go expense-type conversion.

PURPOSE:
  Converts JSON expense-type definitions into engine.ExpenseTypeConfig
  objects. This enables configuration without code changes - an
  administrator can adjust participation overrides or the difference
  policy in JSON, and the factory creates the proper Go structs.

WHY JSON?
  - Non-developers can modify expense types
  - Easy integration with the admin UI
  - Database storage of per-association configuration

JSON SCHEMA:
  {
    "name": "Apă rece",
    "distribution_type": "consumption",
    "reception_mode": "association",
    "fixed_amount_mode": "apartment",
    "participation": {
      "apt-12": 0,
      "apt-13": {"type": "percentage", "value": 50},
      "apt-14": {"type": "fixed", "value": 30}
    },
    "difference": {
      "method": "consumption",
      "adjustment_mode": "participation",
      "include_excluded": false,
      "include_fixed_amount": false
    },
    "consumption_unit": "mc",
    "index_configuration": {
      "input_mode": "indexes",
      "index_types": [{"id": "bath", "name": "Baie"}]
    }
  }

KEY FEATURES:
  - Single normalization point for legacy participation encodings: bare
    numbers (0 / 1 / percentage) and {type, value} objects both become
    the tagged ParticipationOverride variant here, never downstream.
  - Absent fields resolve to documented defaults, never errors.

USAGE:
  factory := NewExpenseTypeFactory()
  cfg, err := factory.ParseExpenseType(jsonString)

SEE ALSO:
  - engine/config.go: ExpenseTypeConfig definition
  - billing/defaults.go: Built-in table this merges over
*/
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/warp/billing-engine/engine"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// ExpenseTypeJSON is the JSON representation of an expense-type config.
type ExpenseTypeJSON struct {
	Name             string `json:"name"`
	DistributionType string `json:"distribution_type,omitempty"`
	ReceptionMode    string `json:"reception_mode,omitempty"`
	FixedAmountMode  string `json:"fixed_amount_mode,omitempty"`

	// Participation accepts both legacy encodings; see NormalizeParticipation.
	Participation map[string]any `json:"participation,omitempty"`

	Difference *DifferenceJSON `json:"difference,omitempty"`

	ConsumptionUnit       string `json:"consumption_unit,omitempty"`
	CustomConsumptionUnit string `json:"custom_consumption_unit,omitempty"`

	IndexConfiguration *IndexConfigurationJSON `json:"index_configuration,omitempty"`
}

// DifferenceJSON represents the difference-distribution policy.
type DifferenceJSON struct {
	Method             string `json:"method,omitempty"`
	AdjustmentMode     string `json:"adjustment_mode,omitempty"`
	IncludeExcluded    bool   `json:"include_excluded,omitempty"`
	IncludeFixedAmount bool   `json:"include_fixed_amount,omitempty"`
}

// IndexConfigurationJSON represents meter configuration.
type IndexConfigurationJSON struct {
	InputMode  string          `json:"input_mode,omitempty"`
	IndexTypes []IndexTypeJSON `json:"index_types,omitempty"`
}

// IndexTypeJSON is one meter definition.
type IndexTypeJSON struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// =============================================================================
// EXPENSE TYPE FACTORY
// =============================================================================

// ExpenseTypeFactory converts JSON expense types to Go structs.
type ExpenseTypeFactory struct{}

// NewExpenseTypeFactory creates a new expense-type factory.
func NewExpenseTypeFactory() *ExpenseTypeFactory {
	return &ExpenseTypeFactory{}
}

// ParseExpenseType parses a JSON string into an ExpenseTypeConfig.
func (f *ExpenseTypeFactory) ParseExpenseType(jsonStr string) (engine.ExpenseTypeConfig, error) {
	var ej ExpenseTypeJSON
	if err := json.Unmarshal([]byte(jsonStr), &ej); err != nil {
		return engine.ExpenseTypeConfig{}, fmt.Errorf("failed to parse expense type JSON: %w", err)
	}
	return f.FromJSON(ej), nil
}

// FromJSON converts ExpenseTypeJSON to engine.ExpenseTypeConfig.
func (f *ExpenseTypeFactory) FromJSON(ej ExpenseTypeJSON) engine.ExpenseTypeConfig {
	cfg := engine.ExpenseTypeConfig{
		Name:                  ej.Name,
		DistributionType:      parseDistributionType(ej.DistributionType),
		ReceptionMode:         parseReceptionMode(ej.ReceptionMode),
		FixedAmountMode:       parseFixedAmountMode(ej.FixedAmountMode),
		ConsumptionUnit:       ej.ConsumptionUnit,
		CustomConsumptionUnit: ej.CustomConsumptionUnit,
	}

	if len(ej.Participation) > 0 {
		cfg.Participation = make(engine.ParticipationMap, len(ej.Participation))
		for aptID, raw := range ej.Participation {
			cfg.Participation[engine.ApartmentID(aptID)] = engine.NormalizeParticipation(raw)
		}
	}

	if ej.Difference != nil {
		cfg.Difference = engine.DifferenceDistribution{
			Method:             parseDifferenceMethod(ej.Difference.Method),
			AdjustmentMode:     parseAdjustmentMode(ej.Difference.AdjustmentMode),
			IncludeExcluded:    ej.Difference.IncludeExcluded,
			IncludeFixedAmount: ej.Difference.IncludeFixedAmount,
		}
	}

	if ej.IndexConfiguration != nil {
		cfg.Indexes.InputMode = parseInputMode(ej.IndexConfiguration.InputMode)
		for _, it := range ej.IndexConfiguration.IndexTypes {
			cfg.Indexes.IndexTypes = append(cfg.Indexes.IndexTypes, engine.IndexType{
				ID:   it.ID,
				Name: it.Name,
			})
		}
	}
	return cfg
}

// ToJSON converts an ExpenseTypeConfig to its JSON representation. The
// participation map is written in the tagged-object encoding only; the
// legacy bare-number form is read-compatible but never produced.
func (f *ExpenseTypeFactory) ToJSON(cfg engine.ExpenseTypeConfig) ExpenseTypeJSON {
	ej := ExpenseTypeJSON{
		Name:                  cfg.Name,
		DistributionType:      string(cfg.DistributionType),
		ReceptionMode:         string(cfg.ReceptionMode),
		FixedAmountMode:       string(cfg.FixedAmountMode),
		ConsumptionUnit:       cfg.ConsumptionUnit,
		CustomConsumptionUnit: cfg.CustomConsumptionUnit,
	}

	if len(cfg.Participation) > 0 {
		ej.Participation = make(map[string]any, len(cfg.Participation))
		for aptID, p := range cfg.Participation {
			entry := map[string]any{"type": string(p.Kind)}
			if p.Kind == engine.ParticipationPercentage || p.Kind == engine.ParticipationFixed {
				v, _ := p.Value.Float64()
				entry["value"] = v
			}
			ej.Participation[string(aptID)] = entry
		}
	}

	ej.Difference = &DifferenceJSON{
		Method:             string(cfg.Difference.Method),
		AdjustmentMode:     string(cfg.Difference.AdjustmentMode),
		IncludeExcluded:    cfg.Difference.IncludeExcluded,
		IncludeFixedAmount: cfg.Difference.IncludeFixedAmount,
	}

	if cfg.Indexes.InputMode != "" || len(cfg.Indexes.IndexTypes) > 0 {
		icj := &IndexConfigurationJSON{InputMode: string(cfg.Indexes.InputMode)}
		for _, it := range cfg.Indexes.IndexTypes {
			icj.IndexTypes = append(icj.IndexTypes, IndexTypeJSON{ID: it.ID, Name: it.Name})
		}
		ej.IndexConfiguration = icj
	}
	return ej
}

// =============================================================================
// ENUM PARSING - Unknown values degrade to the zero value, letting the
// billing-layer merge fall back to defaults instead of erroring.
// =============================================================================

func parseDistributionType(s string) engine.DistributionType {
	switch engine.DistributionType(s) {
	case engine.DistributeByApartment, engine.DistributeByPerson,
		engine.DistributeByConsumption, engine.DistributeIndividual,
		engine.DistributeByQuota:
		return engine.DistributionType(s)
	default:
		return ""
	}
}

func parseReceptionMode(s string) engine.ReceptionMode {
	switch engine.ReceptionMode(s) {
	case engine.ReceptionAssociation, engine.ReceptionPerBlock, engine.ReceptionPerStair:
		return engine.ReceptionMode(s)
	default:
		return ""
	}
}

func parseFixedAmountMode(s string) engine.FixedAmountMode {
	switch engine.FixedAmountMode(s) {
	case engine.FixedPerApartment, engine.FixedPerPerson:
		return engine.FixedAmountMode(s)
	default:
		return ""
	}
}

func parseDifferenceMethod(s string) engine.DifferenceMethod {
	switch engine.DifferenceMethod(s) {
	case engine.DifferenceByApartment, engine.DifferenceByConsumption, engine.DifferenceByPerson:
		return engine.DifferenceMethod(s)
	default:
		return ""
	}
}

func parseAdjustmentMode(s string) engine.DifferenceAdjustment {
	switch engine.DifferenceAdjustment(s) {
	case engine.AdjustNone, engine.AdjustByParticipation, engine.AdjustByApartmentType:
		return engine.DifferenceAdjustment(s)
	default:
		return ""
	}
}

func parseInputMode(s string) engine.IndexInputMode {
	switch engine.IndexInputMode(s) {
	case engine.InputManual, engine.InputIndexes:
		return engine.IndexInputMode(s)
	default:
		return ""
	}
}
