/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

MONEY FORMAT:
  Every monetary value crosses the wire as a float rounded to 2 decimals.
  Internal computation keeps full decimal precision; rounding here is
  presentation only.

TYPES:
  Topology:
    BlockDTO, StairDTO, ApartmentDTO, TopologyDTO

  Expense types:
    ExpenseTypeDTO (wraps factory.ExpenseTypeJSON)

  Expenses:
    ExpenseDTO, DistributeExpenseRequest, EntryUpdateRequest

  Statements:
    StatementDTO, StatementRowDTO, WarningDTO, RollupRowDTO

  Scenarios:
    ScenarioDTO, LoadScenarioRequest

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/expensetype.go: ExpenseTypeJSON type
*/
package api

import (
	"github.com/shopspring/decimal"
	"github.com/warp/billing-engine/billing"
	"github.com/warp/billing-engine/engine"
	"github.com/warp/billing-engine/factory"
)

// =============================================================================
// TOPOLOGY TYPES
// =============================================================================

// BlockDTO represents a block in API responses.
type BlockDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// StairDTO represents a stair in API responses.
type StairDTO struct {
	ID      string `json:"id"`
	BlockID string `json:"block_id"`
	Name    string `json:"name"`
}

// ApartmentDTO represents an apartment in API responses.
type ApartmentDTO struct {
	ID      string  `json:"id"`
	Number  string  `json:"number"`
	Owner   string  `json:"owner,omitempty"`
	Persons int     `json:"persons"`
	Surface float64 `json:"surface"`
	StairID string  `json:"stair_id"`
}

// TopologyDTO is the full building tree.
type TopologyDTO struct {
	Blocks     []BlockDTO     `json:"blocks"`
	Stairs     []StairDTO     `json:"stairs"`
	Apartments []ApartmentDTO `json:"apartments"`
}

// =============================================================================
// EXPENSE TYPE TYPES
// =============================================================================

// ExpenseTypeDTO represents an expense-type configuration. BuiltIn marks
// the defaults table entries; Custom marks a stored override.
type ExpenseTypeDTO struct {
	Config  factory.ExpenseTypeJSON `json:"config"`
	Unit    string                  `json:"unit,omitempty"`
	BuiltIn bool                    `json:"built_in"`
	Custom  bool                    `json:"custom"`
}

// SaveExpenseTypeRequest is the request to store a custom config.
type SaveExpenseTypeRequest struct {
	Config factory.ExpenseTypeJSON `json:"config"`
}

// =============================================================================
// EXPENSE TYPES
// =============================================================================

// ExpenseDTO represents a distributed expense record.
type ExpenseDTO struct {
	ID               string             `json:"id"`
	Name             string             `json:"name"`
	Period           string             `json:"period"`
	DistributionType string             `json:"distribution_type"`
	ReceptionMode    string             `json:"reception_mode"`
	Amount           float64            `json:"amount"`
	AmountsByBlock   map[string]float64 `json:"amounts_by_block,omitempty"`
	AmountsByStair   map[string]float64 `json:"amounts_by_stair,omitempty"`
	UnitPrice        float64            `json:"unit_price,omitempty"`
	BillAmount       float64            `json:"bill_amount,omitempty"`
	IsUnitBased      bool               `json:"is_unit_based"`
}

// DistributeExpenseRequest is the request to distribute an expense into a
// billing period. Pending entries for the same name+period are promoted.
type DistributeExpenseRequest struct {
	ID               string             `json:"id"`
	Name             string             `json:"name"`
	Period           string             `json:"period"`
	DistributionType string             `json:"distribution_type,omitempty"`
	ReceptionMode    string             `json:"reception_mode,omitempty"`
	Amount           float64            `json:"amount,omitempty"`
	AmountsByBlock   map[string]float64 `json:"amounts_by_block,omitempty"`
	AmountsByStair   map[string]float64 `json:"amounts_by_stair,omitempty"`
	UnitPrice        float64            `json:"unit_price,omitempty"`
	BillAmount       float64            `json:"bill_amount,omitempty"`
	IsUnitBased      bool               `json:"is_unit_based,omitempty"`
}

// IndexReadingDTO is one meter's old/new counter pair. Nil means not entered.
type IndexReadingDTO struct {
	Old *float64 `json:"old,omitempty"`
	New *float64 `json:"new,omitempty"`
}

// EntryUpdateRequest replaces one apartment's entry values on an expense.
// Each update is a value replacement, never an append; the statement is
// recomputed from the latest snapshot.
type EntryUpdateRequest struct {
	ApartmentID      string                     `json:"apartment_id"`
	Consumption      *float64                   `json:"consumption,omitempty"`
	IndividualAmount *float64                   `json:"individual_amount,omitempty"`
	Indexes          map[string]IndexReadingDTO `json:"indexes,omitempty"`
}

// PendingEntryRequest captures values before distribution.
type PendingEntryRequest struct {
	ExpenseName      string                     `json:"expense_name"`
	Period           string                     `json:"period"`
	ApartmentID      string                     `json:"apartment_id"`
	Consumption      *float64                   `json:"consumption,omitempty"`
	IndividualAmount *float64                   `json:"individual_amount,omitempty"`
	Indexes          map[string]IndexReadingDTO `json:"indexes,omitempty"`
}

// =============================================================================
// STATEMENT TYPES
// =============================================================================

// StatementRowDTO is one apartment's line in a scope view.
type StatementRowDTO struct {
	ApartmentID string  `json:"apartment_id"`
	Number      string  `json:"number"`
	Persons     int     `json:"persons"`
	Quantity    float64 `json:"quantity,omitempty"`
	Apportioned float64 `json:"apportioned"`
	Difference  float64 `json:"difference"`
	Total       float64 `json:"total"`
}

// StatementDTO is the computed view of one expense at one scope.
type StatementDTO struct {
	ExpenseID string `json:"expense_id"`
	Name      string `json:"name"`
	Period    string `json:"period"`
	Unit      string `json:"unit,omitempty"`

	ScopeLevel string `json:"scope_level"`
	ScopeID    string `json:"scope_id,omitempty"`

	ExpectedAmount  float64 `json:"expected_amount"`
	ExpectedKnown   bool    `json:"expected_known"`
	EnteredFallback bool    `json:"entered_fallback"`
	EnteredTotal    float64 `json:"entered_total"`

	Rows []StatementRowDTO `json:"rows"`

	ApportionedTotal float64 `json:"apportioned_total"`
	DifferenceTotal  float64 `json:"difference_total"`
	Total            float64 `json:"total"`

	Warnings []WarningDTO `json:"warnings,omitempty"`
}

// WarningDTO surfaces a non-fatal computation condition.
type WarningDTO struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RollupRowDTO is one group's audit total.
type RollupRowDTO struct {
	ScopeLevel string  `json:"scope_level"`
	ScopeID    string  `json:"scope_id"`
	Label      string  `json:"label"`
	Apartments int     `json:"apartments"`
	Total      float64 `json:"total"`
}

// =============================================================================
// PERIOD TYPES
// =============================================================================

// PeriodLockRequest sets a billing period's read-only flag.
type PeriodLockRequest struct {
	Locked bool `json:"locked"`
}

// =============================================================================
// SCENARIO + ERROR TYPES
// =============================================================================

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func ron(a engine.Amount) float64 {
	f, _ := a.Round2().Float64()
	return f
}

func qty(d decimal.Decimal) float64 {
	f, _ := d.Round(4).Float64()
	return f
}

func toExpenseDTO(e engine.ExpenseRecord) ExpenseDTO {
	dto := ExpenseDTO{
		ID:               string(e.ID),
		Name:             e.Name,
		Period:           e.Period,
		DistributionType: string(e.DistributionType),
		ReceptionMode:    string(e.ReceptionMode),
		Amount:           ron(e.Amount),
		BillAmount:       ron(e.BillAmount),
		IsUnitBased:      e.IsUnitBased,
	}
	if !e.UnitPrice.IsZero() {
		dto.UnitPrice = qty(e.UnitPrice)
	}
	if len(e.AmountsByBlock) > 0 {
		dto.AmountsByBlock = make(map[string]float64, len(e.AmountsByBlock))
		for id, a := range e.AmountsByBlock {
			dto.AmountsByBlock[string(id)] = ron(a)
		}
	}
	if len(e.AmountsByStair) > 0 {
		dto.AmountsByStair = make(map[string]float64, len(e.AmountsByStair))
		for id, a := range e.AmountsByStair {
			dto.AmountsByStair[string(id)] = ron(a)
		}
	}
	return dto
}

func toStatementDTO(st billing.Statement) StatementDTO {
	dto := StatementDTO{
		ExpenseID:        string(st.Expense.ID),
		Name:             st.Expense.Name,
		Period:           st.Expense.Period,
		Unit:             st.Config.Unit(),
		ScopeLevel:       string(st.Scope.Level),
		ScopeID:          st.Scope.ID,
		ExpectedAmount:   ron(st.ExpectedAmount),
		ExpectedKnown:    st.ExpectedKnown,
		EnteredFallback:  st.EnteredFallback,
		EnteredTotal:     ron(st.EnteredTotal),
		ApportionedTotal: ron(st.ApportionedTotal),
		DifferenceTotal:  ron(st.DifferenceTotal),
		Total:            ron(st.Total),
	}
	dto.Rows = make([]StatementRowDTO, len(st.Rows))
	for i, row := range st.Rows {
		dto.Rows[i] = StatementRowDTO{
			ApartmentID: string(row.Apartment.ID),
			Number:      row.Apartment.Number,
			Persons:     row.Apartment.Persons,
			Quantity:    qty(row.Quantity),
			Apportioned: ron(row.Apportioned),
			Difference:  ron(row.Difference),
			Total:       ron(row.Total),
		}
	}
	for _, warning := range st.Warnings {
		dto.Warnings = append(dto.Warnings, WarningDTO{
			Code:    string(warning.Code),
			Message: warning.Message,
		})
	}
	return dto
}

func toIndexReadings(in map[string]IndexReadingDTO) map[string]engine.IndexReading {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]engine.IndexReading, len(in))
	for meterID, r := range in {
		var reading engine.IndexReading
		if r.Old != nil {
			d := decimal.NewFromFloat(*r.Old)
			reading.OldIndex = &d
		}
		if r.New != nil {
			d := decimal.NewFromFloat(*r.New)
			reading.NewIndex = &d
		}
		out[meterID] = reading
	}
	return out
}
