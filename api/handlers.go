/*
handlers.go - HTTP API handlers for the association billing engine

PURPOSE:
  Exposes the apportionment engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Topology:
    GET    /api/topology                    Full building tree
    POST   /api/topology/blocks             Create/update block
    POST   /api/topology/stairs             Create/update stair
    POST   /api/topology/apartments         Create/update apartment

  Expense types:
    GET    /api/expense-types               Built-in table + stored overrides
    GET    /api/expense-types/{name}        Effective (merged) config
    PUT    /api/expense-types/{name}        Store custom config JSON

  Expenses:
    GET    /api/expenses?period=YYYY-MM     List expenses for a period
    POST   /api/expenses                    Distribute (promotes pending)
    GET    /api/expenses/{id}               Get expense record
    DELETE /api/expenses/{id}               Remove expense
    PUT    /api/expenses/{id}/entries       Replace one apartment's entry
    GET    /api/expenses/{id}/statement     Computed scope view
    GET    /api/expenses/{id}/rollup        Audit totals per stair/block

  Pending entry:
    POST   /api/pending                     Capture value pre-distribution

  Periods:
    PUT    /api/periods/{period}/lock       Toggle read-only flag

  Scenarios:
    GET    /api/scenarios                   List demo scenarios
    POST   /api/scenarios/load              Load a demo scenario

COMPUTATION MODEL:
  Statements are computed on read, never stored. Every GET on the
  statement endpoint recomputes from the current record snapshot, so
  rapid edit-view cycles during data entry always see fresh totals.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 409: Billing period locked (read-only)
  - 500: Internal errors
  The computation itself never errors: malformed values degrade to zero
  and misconfiguration surfaces as warnings in the statement payload.

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/warp/billing-engine/billing"
	"github.com/warp/billing-engine/engine"
	"github.com/warp/billing-engine/factory"
	"github.com/warp/billing-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store    *sqlite.Store
	Factory  *factory.ExpenseTypeFactory
	Resolver billing.ConfigResolver

	// Track currently loaded scenario
	currentScenario string
}

// NewHandler creates a new handler with the given store.
func NewHandler(store *sqlite.Store) *Handler {
	return &Handler{
		Store:    store,
		Factory:  factory.NewExpenseTypeFactory(),
		Resolver: billing.ConfigResolver{Provider: store},
	}
}

// =============================================================================
// TOPOLOGY HANDLERS
// =============================================================================

// GetTopology returns the full building tree.
func (h *Handler) GetTopology(w http.ResponseWriter, r *http.Request) {
	topo, err := billing.LoadTopology(r.Context(), h.Store)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load topology", err)
		return
	}

	dto := TopologyDTO{
		Blocks:     make([]BlockDTO, len(topo.Blocks)),
		Stairs:     make([]StairDTO, len(topo.Stairs)),
		Apartments: make([]ApartmentDTO, len(topo.Apartments)),
	}
	for i, b := range topo.Blocks {
		dto.Blocks[i] = BlockDTO{ID: string(b.ID), Name: b.Name}
	}
	for i, s := range topo.Stairs {
		dto.Stairs[i] = StairDTO{ID: string(s.ID), BlockID: string(s.BlockID), Name: s.Name}
	}
	for i, a := range topo.Apartments {
		surface, _ := a.Surface.Float64()
		dto.Apartments[i] = ApartmentDTO{
			ID:      string(a.ID),
			Number:  a.Number,
			Owner:   a.Owner,
			Persons: a.Persons,
			Surface: surface,
			StairID: string(a.StairID),
		}
	}
	writeJSON(w, http.StatusOK, dto)
}

// CreateBlock creates or updates a block.
func (h *Handler) CreateBlock(w http.ResponseWriter, r *http.Request) {
	var req BlockDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "id and name are required", nil)
		return
	}
	if err := h.Store.SaveBlock(r.Context(), engine.Block{ID: engine.BlockID(req.ID), Name: req.Name}); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save block", err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

// CreateStair creates or updates a stair.
func (h *Handler) CreateStair(w http.ResponseWriter, r *http.Request) {
	var req StairDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.BlockID == "" {
		writeError(w, http.StatusBadRequest, "id and block_id are required", nil)
		return
	}
	stair := engine.Stair{ID: engine.StairID(req.ID), BlockID: engine.BlockID(req.BlockID), Name: req.Name}
	if err := h.Store.SaveStair(r.Context(), stair); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save stair", err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

// CreateApartment creates or updates an apartment.
func (h *Handler) CreateApartment(w http.ResponseWriter, r *http.Request) {
	var req ApartmentDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.StairID == "" {
		writeError(w, http.StatusBadRequest, "id and stair_id are required", nil)
		return
	}
	apt := engine.Apartment{
		ID:      engine.ApartmentID(req.ID),
		Number:  req.Number,
		Owner:   req.Owner,
		Persons: req.Persons,
		Surface: decimal.NewFromFloat(req.Surface),
		StairID: engine.StairID(req.StairID),
	}
	if err := h.Store.SaveApartment(r.Context(), apt); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save apartment", err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

// =============================================================================
// EXPENSE TYPE HANDLERS
// =============================================================================

// ListExpenseTypes returns the built-in table plus stored custom types,
// each resolved to its effective configuration.
func (h *Handler) ListExpenseTypes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stored, err := h.Store.ListExpenseConfigs(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list expense types", err)
		return
	}
	customNames := make(map[string]bool, len(stored))
	for _, cfg := range stored {
		customNames[cfg.Name] = true
	}

	builtIn := make(map[string]bool)
	names := billing.DefaultExpenseTypeNames()
	for _, name := range names {
		builtIn[name] = true
	}
	for name := range customNames {
		if !builtIn[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	dtos := make([]ExpenseTypeDTO, 0, len(names))
	for _, name := range names {
		cfg, err := h.Resolver.Resolve(ctx, name)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to resolve expense type", err)
			return
		}
		dtos = append(dtos, ExpenseTypeDTO{
			Config:  h.Factory.ToJSON(cfg),
			Unit:    cfg.Unit(),
			BuiltIn: builtIn[name],
			Custom:  customNames[name],
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetExpenseType returns the effective config for one expense-type name.
// Unknown names resolve to the safe equal-split default, never 404.
func (h *Handler) GetExpenseType(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	cfg, err := h.Resolver.Resolve(r.Context(), name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to resolve expense type", err)
		return
	}

	_, custom, err := h.Store.ExpenseConfig(r.Context(), name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to check stored config", err)
		return
	}
	writeJSON(w, http.StatusOK, ExpenseTypeDTO{
		Config: h.Factory.ToJSON(cfg),
		Unit:   cfg.Unit(),
		Custom: custom,
	})
}

// SaveExpenseType stores a custom expense-type config. The stored config is
// merged over the built-in defaults at resolution time; absent fields keep
// their defaults.
func (h *Handler) SaveExpenseType(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req SaveExpenseTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	req.Config.Name = name

	cfg := h.Factory.FromJSON(req.Config)
	if err := h.Store.SaveExpenseConfig(r.Context(), cfg); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save expense type", err)
		return
	}

	effective, err := h.Resolver.Resolve(r.Context(), name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to resolve expense type", err)
		return
	}
	writeJSON(w, http.StatusOK, ExpenseTypeDTO{
		Config: h.Factory.ToJSON(effective),
		Unit:   effective.Unit(),
		Custom: true,
	})
}

// =============================================================================
// EXPENSE HANDLERS
// =============================================================================

// ListExpenses returns expenses, optionally filtered by ?period=YYYY-MM.
func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	period := r.URL.Query().Get("period")

	expenses, err := h.Store.ListExpenses(r.Context(), period)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list expenses", err)
		return
	}
	dtos := make([]ExpenseDTO, len(expenses))
	for i, e := range expenses {
		dtos[i] = toExpenseDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// DistributeExpense distributes an expense into a billing period. Pending
// entries for the same name+period are promoted into the record, then
// discarded.
func (h *Handler) DistributeExpense(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req DistributeExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.Name == "" || req.Period == "" {
		writeError(w, http.StatusBadRequest, "id, name and period are required", nil)
		return
	}
	if locked := h.checkPeriodLock(w, r, req.Period); locked {
		return
	}

	cfg, err := h.Resolver.Resolve(ctx, req.Name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to resolve expense type", err)
		return
	}

	e := engine.ExpenseRecord{
		ID:               engine.ExpenseID(req.ID),
		Name:             req.Name,
		Period:           req.Period,
		DistributionType: cfg.DistributionType,
		ReceptionMode:    cfg.ReceptionMode,
		Amount:           engine.NewAmount(req.Amount),
		UnitPrice:        decimal.NewFromFloat(req.UnitPrice),
		BillAmount:       engine.NewAmount(req.BillAmount),
		IsUnitBased:      req.IsUnitBased,
	}
	// Explicit request values override the config defaults.
	if req.DistributionType != "" {
		e.DistributionType = engine.DistributionType(req.DistributionType)
	}
	if req.ReceptionMode != "" {
		e.ReceptionMode = engine.ReceptionMode(req.ReceptionMode)
	}
	if len(req.AmountsByBlock) > 0 {
		e.AmountsByBlock = make(map[engine.BlockID]engine.Amount, len(req.AmountsByBlock))
		for id, v := range req.AmountsByBlock {
			e.AmountsByBlock[engine.BlockID(id)] = engine.NewAmount(v)
		}
	}
	if len(req.AmountsByStair) > 0 {
		e.AmountsByStair = make(map[engine.StairID]engine.Amount, len(req.AmountsByStair))
		for id, v := range req.AmountsByStair {
			e.AmountsByStair[engine.StairID(id)] = engine.NewAmount(v)
		}
	}

	distributed, err := billing.DistributeExpense(ctx, h.Store, h.Store, e)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to distribute expense", err)
		return
	}
	writeJSON(w, http.StatusCreated, toExpenseDTO(distributed))
}

// GetExpense returns a single expense record.
func (h *Handler) GetExpense(w http.ResponseWriter, r *http.Request) {
	id := engine.ExpenseID(chi.URLParam(r, "id"))

	e, err := h.Store.GetExpense(r.Context(), id)
	if err != nil {
		writeExpenseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseDTO(e))
}

// DeleteExpense removes an expense from its period.
func (h *Handler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := engine.ExpenseID(chi.URLParam(r, "id"))

	e, err := h.Store.GetExpense(ctx, id)
	if err != nil {
		writeExpenseError(w, err)
		return
	}
	if locked := h.checkPeriodLock(w, r, e.Period); locked {
		return
	}
	if err := h.Store.DeleteExpense(ctx, id); err != nil {
		writeExpenseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// UpdateEntry replaces one apartment's entry values on a distributed
// expense. The update is a value replacement; the next statement read
// recomputes everything from the new snapshot.
func (h *Handler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := engine.ExpenseID(chi.URLParam(r, "id"))

	var req EntryUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ApartmentID == "" {
		writeError(w, http.StatusBadRequest, "apartment_id is required", nil)
		return
	}

	e, err := h.Store.GetExpense(ctx, id)
	if err != nil {
		writeExpenseError(w, err)
		return
	}
	if locked := h.checkPeriodLock(w, r, e.Period); locked {
		return
	}

	aptID := engine.ApartmentID(req.ApartmentID)
	if req.Consumption != nil {
		if e.Consumption == nil {
			e.Consumption = make(map[engine.ApartmentID]decimal.Decimal)
		}
		e.Consumption[aptID] = decimal.NewFromFloat(*req.Consumption)
	}
	if req.IndividualAmount != nil {
		if e.IndividualAmounts == nil {
			e.IndividualAmounts = make(map[engine.ApartmentID]engine.Amount)
		}
		e.IndividualAmounts[aptID] = engine.NewAmount(*req.IndividualAmount)
	}
	if readings := toIndexReadings(req.Indexes); readings != nil {
		if e.Indexes == nil {
			e.Indexes = make(map[engine.ApartmentID]map[string]engine.IndexReading)
		}
		if e.Indexes[aptID] == nil {
			e.Indexes[aptID] = make(map[string]engine.IndexReading)
		}
		for meterID, reading := range readings {
			e.Indexes[aptID][meterID] = reading
		}
	}

	if err := h.Store.SaveExpense(ctx, e); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save entry", err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseDTO(e))
}

// =============================================================================
// STATEMENT HANDLERS
// =============================================================================

// GetStatement returns the computed statement for an expense at the
// requested scope (?level=association|block|stair&scope_id=...).
func (h *Handler) GetStatement(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := engine.ExpenseID(chi.URLParam(r, "id"))

	scope, ok := parseScope(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "scope_id is required for block and stair levels", nil)
		return
	}

	e, err := h.Store.GetExpense(ctx, id)
	if err != nil {
		writeExpenseError(w, err)
		return
	}
	cfg, err := h.Resolver.ResolveForExpense(ctx, e)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to resolve expense type", err)
		return
	}
	topo, err := billing.LoadTopology(ctx, h.Store)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load topology", err)
		return
	}

	st := billing.BuildStatement(e, cfg, scope, topo)
	writeJSON(w, http.StatusOK, toStatementDTO(st))
}

// GetRollup returns audit totals for an expense at the requested level
// (?level=stair|block|association).
func (h *Handler) GetRollup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := engine.ExpenseID(chi.URLParam(r, "id"))

	level := engine.ScopeLevel(r.URL.Query().Get("level"))
	if level == "" {
		level = engine.ScopeStair
	}

	e, err := h.Store.GetExpense(ctx, id)
	if err != nil {
		writeExpenseError(w, err)
		return
	}
	cfg, err := h.Resolver.ResolveForExpense(ctx, e)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to resolve expense type", err)
		return
	}
	topo, err := billing.LoadTopology(ctx, h.Store)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load topology", err)
		return
	}

	rows := billing.RollupReport(e, cfg, topo, level)
	dtos := make([]RollupRowDTO, len(rows))
	for i, row := range rows {
		dtos[i] = RollupRowDTO{
			ScopeLevel: string(row.Scope.Level),
			ScopeID:    row.Scope.ID,
			Label:      row.Label,
			Apartments: row.Apartments,
			Total:      ron(row.Total),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// PENDING ENTRY HANDLERS
// =============================================================================

// SavePending captures a consumption/index value before distribution.
func (h *Handler) SavePending(w http.ResponseWriter, r *http.Request) {
	var req PendingEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ExpenseName == "" || req.Period == "" || req.ApartmentID == "" {
		writeError(w, http.StatusBadRequest, "expense_name, period and apartment_id are required", nil)
		return
	}
	if locked := h.checkPeriodLock(w, r, req.Period); locked {
		return
	}

	entry := billing.PendingEntry{
		ExpenseName: req.ExpenseName,
		Period:      req.Period,
		ApartmentID: engine.ApartmentID(req.ApartmentID),
		Indexes:     toIndexReadings(req.Indexes),
	}
	if req.Consumption != nil {
		d := decimal.NewFromFloat(*req.Consumption)
		entry.Consumption = &d
	}
	if req.IndividualAmount != nil {
		a := engine.NewAmount(*req.IndividualAmount)
		entry.IndividualAmount = &a
	}

	if err := h.Store.SavePending(r.Context(), entry); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save pending entry", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "saved"})
}

// =============================================================================
// PERIOD HANDLERS
// =============================================================================

// SetPeriodLock toggles a billing period's read-only flag.
func (h *Handler) SetPeriodLock(w http.ResponseWriter, r *http.Request) {
	period := chi.URLParam(r, "period")

	var req PeriodLockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.Store.SetPeriodLocked(r.Context(), period, req.Locked); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to set period lock", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"period": period, "locked": req.Locked})
}

// =============================================================================
// HELPERS
// =============================================================================

// checkPeriodLock writes a 409 and returns true when the period is locked.
func (h *Handler) checkPeriodLock(w http.ResponseWriter, r *http.Request, period string) bool {
	locked, err := h.Store.IsPeriodLocked(r.Context(), period)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to check period lock", err)
		return true
	}
	if locked {
		writeError(w, http.StatusConflict, "Billing period is read-only", billing.ErrPeriodLocked)
		return true
	}
	return false
}

func parseScope(r *http.Request) (engine.Scope, bool) {
	level := r.URL.Query().Get("level")
	scopeID := r.URL.Query().Get("scope_id")
	switch engine.ScopeLevel(level) {
	case engine.ScopeBlock:
		if scopeID == "" {
			return engine.Scope{}, false
		}
		return engine.BlockScope(engine.BlockID(scopeID)), true
	case engine.ScopeStair:
		if scopeID == "" {
			return engine.Scope{}, false
		}
		return engine.StairScope(engine.StairID(scopeID)), true
	default:
		return engine.AssociationScope(), true
	}
}

func writeExpenseError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, billing.ErrExpenseNotFound):
		writeError(w, http.StatusNotFound, "Expense not found", err)
	case billing.IsClientError(err):
		writeError(w, http.StatusBadRequest, "Invalid request", err)
	default:
		writeError(w, http.StatusInternalServerError, "Failed to access expense", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
