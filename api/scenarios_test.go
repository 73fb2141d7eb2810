/*
scenarios_test.go - Tests for demo scenario loaders

Each loader must produce a database state whose statements compute
cleanly: conservation at association scope, overrides applied, pending
entries promoted.
*/
package api

import (
	"context"
	"math"
	"net/http"
	"testing"
)

func TestScenario_SmallAssociation(t *testing.T) {
	// GIVEN: The small-association scenario
	h := newTestHandler(t)
	router := NewRouter(h)
	if err := h.loadSmallAssociationScenario(context.Background()); err != nil {
		t.Fatalf("Failed to load scenario: %v", err)
	}

	// THEN: Four expenses exist for the period
	rec := doJSON(t, router, http.MethodGet, "/api/expenses?period=2026-08", nil)
	expenses := decode[[]ExpenseDTO](t, rec)
	if len(expenses) != 4 {
		t.Fatalf("Expected 4 expenses, got %d", len(expenses))
	}

	// The per-stair cleaning expense splits equally inside each stair:
	// S1 has 3 apartments sharing 150, S2 has 2 sharing 100.
	st := decode[StatementDTO](t, doJSON(t, router, http.MethodGet,
		"/api/expenses/exp-curatenie-2026-08/statement?level=stair&scope_id=S1", nil))
	if len(st.Rows) != 3 {
		t.Fatalf("Expected 3 rows on stair S1, got %d", len(st.Rows))
	}
	for _, row := range st.Rows {
		if math.Abs(row.Apportioned-50) >= 0.01 {
			t.Errorf("Apartment %s should owe 50, got %.2f", row.ApartmentID, row.Apportioned)
		}
	}

	// The quota fund conserves its 1000 RON at association scope.
	fund := decode[StatementDTO](t, doJSON(t, router, http.MethodGet,
		"/api/expenses/exp-fond-2026-08/statement", nil))
	if math.Abs(fund.Total-1000) >= 0.01 {
		t.Errorf("Fund statement total %.2f should conserve the 1000 RON amount", fund.Total)
	}
}

func TestScenario_OverrideShowcase(t *testing.T) {
	// GIVEN: The override-showcase scenario
	h := newTestHandler(t)
	router := NewRouter(h)
	if err := h.loadOverrideShowcaseScenario(context.Background()); err != nil {
		t.Fatalf("Failed to load scenario: %v", err)
	}

	// THEN: The elevator statement applies all three override kinds
	st := decode[StatementDTO](t, doJSON(t, router, http.MethodGet,
		"/api/expenses/exp-lift-2026-08/statement", nil))

	rows := make(map[string]StatementRowDTO, len(st.Rows))
	for _, row := range st.Rows {
		rows[row.ApartmentID] = row
	}
	if rows["ap-1"].Apportioned != 0 {
		t.Errorf("Excluded ap-1 should owe 0, got %.2f", rows["ap-1"].Apportioned)
	}
	// Fixed 10 RON per person, 3 occupants.
	if math.Abs(rows["ap-2"].Apportioned-30) >= 0.01 {
		t.Errorf("Fixed ap-2 should owe 30, got %.2f", rows["ap-2"].Apportioned)
	}
	// Redistributable 240 - 30 = 210 over weights: ap-3 1, ap-4 4x50%=2,
	// ap-5 2 -> 42 per person-weight.
	if math.Abs(rows["ap-4"].Apportioned-84) >= 0.01 {
		t.Errorf("Half-rate ap-4 should owe 84, got %.2f", rows["ap-4"].Apportioned)
	}
	if math.Abs(st.Total-240) >= 0.01 {
		t.Errorf("Statement total %.2f should conserve the 240 RON amount", st.Total)
	}

	// The repair fund excludes ap-3; its quota share goes to the others.
	fund := decode[StatementDTO](t, doJSON(t, router, http.MethodGet,
		"/api/expenses/exp-fond-2026-08/statement", nil))
	frows := make(map[string]StatementRowDTO, len(fund.Rows))
	for _, row := range fund.Rows {
		frows[row.ApartmentID] = row
	}
	if frows["ap-3"].Apportioned != 0 {
		t.Errorf("Excluded ap-3 should owe 0, got %.2f", frows["ap-3"].Apportioned)
	}
	if math.Abs(fund.Total-1200) >= 0.01 {
		t.Errorf("Fund total %.2f should conserve the 1200 RON amount", fund.Total)
	}
}

func TestScenario_LoadViaAPI(t *testing.T) {
	h := newTestHandler(t)
	router := NewRouter(h)

	rec := doJSON(t, router, http.MethodPost, "/api/scenarios/load",
		map[string]string{"scenario_id": "metered-water"})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodGet, "/api/scenarios/current", nil)
	current := decode[ScenarioDTO](t, rec)
	if current.ID != "metered-water" {
		t.Errorf("Expected current scenario metered-water, got %s", current.ID)
	}

	// Reset clears the tracked scenario and the data.
	rec = doJSON(t, router, http.MethodPost, "/api/scenarios/reset", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Reset failed: %d", rec.Code)
	}
	rec = doJSON(t, router, http.MethodGet, "/api/expenses", nil)
	expenses := decode[[]ExpenseDTO](t, rec)
	if len(expenses) != 0 {
		t.Errorf("Expected no expenses after reset, got %d", len(expenses))
	}
}
