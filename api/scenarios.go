/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	data for testing and demos. Each scenario creates a building topology,
	expense-type configuration, and distributed expenses that demonstrate
	specific features.

AVAILABLE SCENARIOS:

	small-association:  One block, two stairs, equal-split and per-person
	                    expenses, no metering
	metered-water:      Cold water with per-apartment consumption and a
	                    provider surplus reconciled as a difference
	override-showcase:  Participation overrides (excluded, percentage,
	                    fixed) across several expense methods

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Create blocks, stairs, apartments
 3. Store custom expense-type configs where the defaults don't suffice
 4. Distribute expenses with entry values

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "metered-water"}

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description
 2. Create loader function: loadXxxScenario(ctx)
 3. Add case to LoadScenario handler

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: LoadScenario, ListScenarios handlers
  - billing/defaults.go: Built-in expense-type table the loaders lean on
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/warp/billing-engine/billing"
	"github.com/warp/billing-engine/engine"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "small-association",
		Name:        "Small Association",
		Description: "One block, two stairs, equal-split and per-person expenses",
	},
	{
		ID:          "metered-water",
		Name:        "Metered Water",
		Description: "Cold water by consumption with a provider surplus to reconcile",
	},
	{
		ID:          "override-showcase",
		Name:        "Participation Overrides",
		Description: "Excluded, percentage and fixed overrides with reweighting",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	if h.currentScenario == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}

	for _, s := range scenarios {
		if s.ID == h.currentScenario {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}

	// Scenario ID exists but not in list (shouldn't happen)
	writeJSON(w, http.StatusOK, ScenarioDTO{
		ID:          h.currentScenario,
		Name:        h.currentScenario,
		Description: "Currently loaded scenario",
	})
}

// LoadScenario loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ScenarioID string `json:"scenario_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()

	// Reset first
	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""

	var err error
	switch req.ScenarioID {
	case "small-association":
		err = h.loadSmallAssociationScenario(ctx)
	case "metered-water":
		err = h.loadMeteredWaterScenario(ctx)
	case "override-showcase":
		err = h.loadOverrideShowcaseScenario(ctx)
	default:
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}

	h.currentScenario = req.ScenarioID

	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// ResetDatabase clears all data.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// =============================================================================
// SHARED TOPOLOGY
// =============================================================================

// seedTopology creates the demo building: one block, two stairs, five
// apartments with varied occupancy and surface.
func (h *Handler) seedTopology(ctx context.Context) error {
	if err := h.Store.SaveBlock(ctx, engine.Block{ID: "B1", Name: "Bloc A2"}); err != nil {
		return err
	}
	for _, stair := range []engine.Stair{
		{ID: "S1", BlockID: "B1", Name: "Scara 1"},
		{ID: "S2", BlockID: "B1", Name: "Scara 2"},
	} {
		if err := h.Store.SaveStair(ctx, stair); err != nil {
			return err
		}
	}
	for _, apt := range []engine.Apartment{
		{ID: "ap-1", Number: "1", Owner: "Popescu Ion", Persons: 2, Surface: decimal.NewFromInt(52), StairID: "S1"},
		{ID: "ap-2", Number: "2", Owner: "Ionescu Maria", Persons: 3, Surface: decimal.NewFromInt(64), StairID: "S1"},
		{ID: "ap-3", Number: "3", Owner: "Georgescu Dan", Persons: 1, Surface: decimal.NewFromInt(38), StairID: "S1"},
		{ID: "ap-4", Number: "4", Owner: "Dumitrescu Ana", Persons: 4, Surface: decimal.NewFromInt(78), StairID: "S2"},
		{ID: "ap-5", Number: "5", Owner: "Stancu Mihai", Persons: 2, Surface: decimal.NewFromInt(52), StairID: "S2"},
	} {
		if err := h.Store.SaveApartment(ctx, apt); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// SCENARIO: SMALL ASSOCIATION
// =============================================================================

func (h *Handler) loadSmallAssociationScenario(ctx context.Context) error {
	if err := h.seedTopology(ctx); err != nil {
		return err
	}

	// Administration fee: equal split across the association.
	admin := engine.ExpenseRecord{
		ID:               "exp-admin-2026-08",
		Name:             "Administrare",
		Period:           "2026-08",
		DistributionType: engine.DistributeByApartment,
		ReceptionMode:    engine.ReceptionAssociation,
		Amount:           engine.NewAmount(500),
	}
	if _, err := billing.DistributeExpense(ctx, h.Store, h.Store, admin); err != nil {
		return err
	}

	// Sanitation: proportional to occupants.
	sanitation := engine.ExpenseRecord{
		ID:               "exp-salubritate-2026-08",
		Name:             "Salubritate",
		Period:           "2026-08",
		DistributionType: engine.DistributeByPerson,
		ReceptionMode:    engine.ReceptionAssociation,
		Amount:           engine.NewAmount(360),
	}
	if _, err := billing.DistributeExpense(ctx, h.Store, h.Store, sanitation); err != nil {
		return err
	}

	// Cleaning: billed per stair.
	cleaning := engine.ExpenseRecord{
		ID:               "exp-curatenie-2026-08",
		Name:             "Curățenie",
		Period:           "2026-08",
		DistributionType: engine.DistributeByApartment,
		ReceptionMode:    engine.ReceptionPerStair,
		AmountsByStair: map[engine.StairID]engine.Amount{
			"S1": engine.NewAmount(150),
			"S2": engine.NewAmount(100),
		},
	}
	if _, err := billing.DistributeExpense(ctx, h.Store, h.Store, cleaning); err != nil {
		return err
	}

	// Repair fund: proportional to surface quota.
	fund := engine.ExpenseRecord{
		ID:               "exp-fond-2026-08",
		Name:             "Fond reparații",
		Period:           "2026-08",
		DistributionType: engine.DistributeByQuota,
		ReceptionMode:    engine.ReceptionAssociation,
		Amount:           engine.NewAmount(1000),
	}
	_, err := billing.DistributeExpense(ctx, h.Store, h.Store, fund)
	return err
}

// =============================================================================
// SCENARIO: METERED WATER
// =============================================================================

func (h *Handler) loadMeteredWaterScenario(ctx context.Context) error {
	if err := h.seedTopology(ctx); err != nil {
		return err
	}

	// Some readings arrive before distribution and wait as pending entries.
	for aptID, mc := range map[engine.ApartmentID]int64{
		"ap-1": 8, "ap-2": 12,
	} {
		qty := decimal.NewFromInt(mc)
		err := h.Store.SavePending(ctx, billing.PendingEntry{
			ExpenseName: "Apă rece",
			Period:      "2026-08",
			ApartmentID: aptID,
			Consumption: &qty,
		})
		if err != nil {
			return err
		}
	}

	// Provider bill exceeds the metered total (36 mc x 9.50 = 342); the
	// 18.50 RON surplus is redistributed by consumption per the default
	// config.
	water := engine.ExpenseRecord{
		ID:               "exp-apa-2026-08",
		Name:             "Apă rece",
		Period:           "2026-08",
		DistributionType: engine.DistributeByConsumption,
		ReceptionMode:    engine.ReceptionAssociation,
		UnitPrice:        decimal.RequireFromString("9.50"),
		BillAmount:       engine.NewAmount(360.50),
		IsUnitBased:      true,
		Consumption: map[engine.ApartmentID]decimal.Decimal{
			"ap-3": decimal.NewFromInt(4),
			"ap-4": decimal.NewFromInt(9),
			"ap-5": decimal.NewFromInt(3),
		},
	}
	_, err := billing.DistributeExpense(ctx, h.Store, h.Store, water)
	return err
}

// =============================================================================
// SCENARIO: PARTICIPATION OVERRIDES
// =============================================================================

func (h *Handler) loadOverrideShowcaseScenario(ctx context.Context) error {
	if err := h.seedTopology(ctx); err != nil {
		return err
	}

	// Elevator: ground-floor apartment excluded, one owner pays a flat
	// monthly amount, one household counts at half rate.
	elevator := engine.DefaultConfig("Ascensor")
	elevator.DistributionType = engine.DistributeByPerson
	elevator.FixedAmountMode = engine.FixedPerPerson
	elevator.Difference.Method = engine.DifferenceByPerson
	elevator.Participation = engine.ParticipationMap{
		"ap-1": engine.Excluded(),
		"ap-2": engine.Fixed(10),
		"ap-4": engine.Percentage(50),
	}
	if err := h.Store.SaveExpenseConfig(ctx, elevator); err != nil {
		return err
	}

	lift := engine.ExpenseRecord{
		ID:               "exp-lift-2026-08",
		Name:             "Ascensor",
		Period:           "2026-08",
		DistributionType: engine.DistributeByPerson,
		ReceptionMode:    engine.ReceptionAssociation,
		Amount:           engine.NewAmount(240),
	}
	if _, err := billing.DistributeExpense(ctx, h.Store, h.Store, lift); err != nil {
		return err
	}

	// Repair fund with an excluded apartment: the quota shares recompute
	// over the remaining surfaces.
	fund := engine.DefaultConfig("Fond reparații")
	fund.DistributionType = engine.DistributeByQuota
	fund.Participation = engine.ParticipationMap{
		"ap-3": engine.Excluded(),
	}
	if err := h.Store.SaveExpenseConfig(ctx, fund); err != nil {
		return err
	}

	repairs := engine.ExpenseRecord{
		ID:               "exp-fond-2026-08",
		Name:             "Fond reparații",
		Period:           "2026-08",
		DistributionType: engine.DistributeByQuota,
		ReceptionMode:    engine.ReceptionAssociation,
		Amount:           engine.NewAmount(1200),
	}
	_, err := billing.DistributeExpense(ctx, h.Store, h.Store, repairs)
	return err
}
