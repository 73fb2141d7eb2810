/*
Package sqlite provides a SQLite-backed implementation of the billing
provider interfaces.

PURPOSE:
  Implements TopologyProvider, ConfigProvider, ExpenseStore, PendingStore,
  and PeriodLock using SQLite. In production the same patterns apply to
  PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  blocks / stairs / apartments:  The building topology
  expense_types:                 Custom expense-type configs (JSON)
  expenses:                      Distributed expense records; entry maps
                                 are JSON columns replaced whole on write
  pending_entries:               Pre-distribution data entry
  billing_periods:               Read-only lock flags per period

ENTRY MAP MUTATION:
  Each consumption / individual-amount / index update is a value
  replacement on the record's JSON column, not an append. The engine
  always recomputes from the latest snapshot, so a read-recompute-write
  retry loop is safe.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  multiple readers don't block, single writer at a time.

USAGE:
  store, err := sqlite.New("./data/billing.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - billing/providers.go: Interface definitions
  - billing/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/billing-engine/billing"
	"github.com/warp/billing-engine/engine"
	"github.com/warp/billing-engine/factory"
)

// Store implements all billing provider interfaces using SQLite.
type Store struct {
	db      *sql.DB
	mu      sync.RWMutex
	factory *factory.ExpenseTypeFactory
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db, factory: factory.NewExpenseTypeFactory()}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS blocks (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS stairs (
		id TEXT PRIMARY KEY,
		block_id TEXT NOT NULL REFERENCES blocks(id),
		name TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS apartments (
		id TEXT PRIMARY KEY,
		number TEXT NOT NULL,
		owner TEXT,
		persons INTEGER NOT NULL DEFAULT 0,
		surface TEXT NOT NULL DEFAULT '0',
		stair_id TEXT NOT NULL REFERENCES stairs(id)
	);
	CREATE INDEX IF NOT EXISTS idx_apartments_stair ON apartments(stair_id);

	CREATE TABLE IF NOT EXISTS expense_types (
		name TEXT PRIMARY KEY,
		config_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS expenses (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		period TEXT NOT NULL,
		distribution_type TEXT NOT NULL,
		reception_mode TEXT NOT NULL,
		amount TEXT NOT NULL DEFAULT '0',
		unit_price TEXT NOT NULL DEFAULT '0',
		bill_amount TEXT NOT NULL DEFAULT '0',
		is_unit_based INTEGER NOT NULL DEFAULT 0,
		amounts_by_block TEXT,
		amounts_by_stair TEXT,
		consumption TEXT,
		individual_amounts TEXT,
		indexes TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_expenses_period ON expenses(period);

	CREATE TABLE IF NOT EXISTS pending_entries (
		expense_name TEXT NOT NULL,
		period TEXT NOT NULL,
		apartment_id TEXT NOT NULL,
		consumption TEXT,
		individual_amount TEXT,
		indexes TEXT,
		PRIMARY KEY (expense_name, period, apartment_id)
	);

	CREATE TABLE IF NOT EXISTS billing_periods (
		period TEXT PRIMARY KEY,
		read_only INTEGER NOT NULL DEFAULT 0
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// TOPOLOGY
// =============================================================================

func (s *Store) SaveBlock(ctx context.Context, b engine.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO blocks (id, name) VALUES (?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name`,
		string(b.ID), b.Name)
	return err
}

func (s *Store) SaveStair(ctx context.Context, st engine.Stair) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO stairs (id, block_id, name) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET block_id = excluded.block_id, name = excluded.name`,
		string(st.ID), string(st.BlockID), st.Name)
	return err
}

func (s *Store) SaveApartment(ctx context.Context, a engine.Apartment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO apartments (id, number, owner, persons, surface, stair_id)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			number = excluded.number, owner = excluded.owner,
			persons = excluded.persons, surface = excluded.surface,
			stair_id = excluded.stair_id`,
		string(a.ID), a.Number, a.Owner, a.Persons, a.Surface.String(), string(a.StairID))
	return err
}

func (s *Store) Blocks(ctx context.Context) ([]engine.Block, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM blocks ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []engine.Block
	for rows.Next() {
		var b engine.Block
		var id string
		if err := rows.Scan(&id, &b.Name); err != nil {
			return nil, err
		}
		b.ID = engine.BlockID(id)
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *Store) Stairs(ctx context.Context) ([]engine.Stair, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.QueryContext(ctx, `SELECT id, block_id, name FROM stairs ORDER BY block_id, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []engine.Stair
	for rows.Next() {
		var st engine.Stair
		var id, blockID string
		if err := rows.Scan(&id, &blockID, &st.Name); err != nil {
			return nil, err
		}
		st.ID = engine.StairID(id)
		st.BlockID = engine.BlockID(blockID)
		out = append(out, st)
	}
	return out, rows.Err()
}

func (s *Store) Apartments(ctx context.Context) ([]engine.Apartment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, number, owner, persons, surface, stair_id FROM apartments ORDER BY number`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []engine.Apartment
	for rows.Next() {
		var a engine.Apartment
		var id, stairID, surface string
		var owner sql.NullString
		if err := rows.Scan(&id, &a.Number, &owner, &a.Persons, &surface, &stairID); err != nil {
			return nil, err
		}
		a.ID = engine.ApartmentID(id)
		a.Owner = owner.String
		a.StairID = engine.StairID(stairID)
		if d, err := decimal.NewFromString(surface); err == nil {
			a.Surface = d
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// =============================================================================
// EXPENSE TYPE CONFIGS
// =============================================================================

func (s *Store) SaveExpenseConfig(ctx context.Context, cfg engine.ExpenseTypeConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, err := json.Marshal(s.factory.ToJSON(cfg))
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO expense_types (name, config_json) VALUES (?, ?)
		 ON CONFLICT(name) DO UPDATE SET config_json = excluded.config_json`,
		cfg.Name, string(raw))
	return err
}

func (s *Store) ExpenseConfig(ctx context.Context, name string) (engine.ExpenseTypeConfig, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT config_json FROM expense_types WHERE name = ?`, name).Scan(&raw)
	if err == sql.ErrNoRows {
		return engine.ExpenseTypeConfig{}, false, nil
	}
	if err != nil {
		return engine.ExpenseTypeConfig{}, false, err
	}
	cfg, err := s.factory.ParseExpenseType(raw)
	if err != nil {
		// A corrupt stored config behaves like no config: defaults apply.
		return engine.ExpenseTypeConfig{}, false, nil
	}
	return cfg, true, nil
}

func (s *Store) ListExpenseConfigs(ctx context.Context) ([]engine.ExpenseTypeConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.QueryContext(ctx, `SELECT config_json FROM expense_types ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []engine.ExpenseTypeConfig
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		cfg, err := s.factory.ParseExpenseType(raw)
		if err != nil {
			continue // Skip corrupt configs
		}
		out = append(out, cfg)
	}
	return out, rows.Err()
}

// =============================================================================
// EXPENSES
// =============================================================================

func (s *Store) SaveExpense(ctx context.Context, e engine.ExpenseRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byBlock, err := marshalAmountMap(blockKeys(e.AmountsByBlock))
	if err != nil {
		return err
	}
	byStair, err := marshalAmountMap(stairKeys(e.AmountsByStair))
	if err != nil {
		return err
	}
	consumption, err := marshalDecimalMap(e.Consumption)
	if err != nil {
		return err
	}
	individual, err := marshalAmountMap(apartmentKeys(e.IndividualAmounts))
	if err != nil {
		return err
	}
	indexes, err := marshalIndexes(e.Indexes)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO expenses (
			id, name, period, distribution_type, reception_mode,
			amount, unit_price, bill_amount, is_unit_based,
			amounts_by_block, amounts_by_stair, consumption, individual_amounts, indexes
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name, period = excluded.period,
			distribution_type = excluded.distribution_type,
			reception_mode = excluded.reception_mode,
			amount = excluded.amount, unit_price = excluded.unit_price,
			bill_amount = excluded.bill_amount, is_unit_based = excluded.is_unit_based,
			amounts_by_block = excluded.amounts_by_block,
			amounts_by_stair = excluded.amounts_by_stair,
			consumption = excluded.consumption,
			individual_amounts = excluded.individual_amounts,
			indexes = excluded.indexes`,
		string(e.ID), e.Name, e.Period, string(e.DistributionType), string(e.ReceptionMode),
		e.Amount.Value.String(), e.UnitPrice.String(), e.BillAmount.Value.String(), boolToInt(e.IsUnitBased),
		byBlock, byStair, consumption, individual, indexes)
	return err
}

func (s *Store) GetExpense(ctx context.Context, id engine.ExpenseID) (engine.ExpenseRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, period, distribution_type, reception_mode,
			amount, unit_price, bill_amount, is_unit_based,
			amounts_by_block, amounts_by_stair, consumption, individual_amounts, indexes
		 FROM expenses WHERE id = ?`, string(id))
	e, err := scanExpense(row)
	if err == sql.ErrNoRows {
		return engine.ExpenseRecord{}, billing.ErrExpenseNotFound
	}
	return e, err
}

func (s *Store) ListExpenses(ctx context.Context, period string) ([]engine.ExpenseRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, period, distribution_type, reception_mode,
			amount, unit_price, bill_amount, is_unit_based,
			amounts_by_block, amounts_by_stair, consumption, individual_amounts, indexes
		 FROM expenses WHERE (? = '' OR period = ?) ORDER BY name`, period, period)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []engine.ExpenseRecord
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) DeleteExpense(ctx context.Context, id engine.ExpenseID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, string(id))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return billing.ErrExpenseNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (engine.ExpenseRecord, error) {
	var e engine.ExpenseRecord
	var id, dt, rm, amount, unitPrice, billAmount string
	var isUnitBased int
	var byBlock, byStair, consumption, individual, indexes sql.NullString

	err := row.Scan(&id, &e.Name, &e.Period, &dt, &rm,
		&amount, &unitPrice, &billAmount, &isUnitBased,
		&byBlock, &byStair, &consumption, &individual, &indexes)
	if err != nil {
		return engine.ExpenseRecord{}, err
	}

	e.ID = engine.ExpenseID(id)
	e.DistributionType = engine.DistributionType(dt)
	e.ReceptionMode = engine.ReceptionMode(rm)
	e.Amount = engine.ParseAmount(amount)
	e.BillAmount = engine.ParseAmount(billAmount)
	e.IsUnitBased = isUnitBased != 0
	if d, err := decimal.NewFromString(unitPrice); err == nil {
		e.UnitPrice = d
	}

	if byBlock.Valid {
		m, err := unmarshalAmountMap(byBlock.String)
		if err != nil {
			return engine.ExpenseRecord{}, err
		}
		if len(m) > 0 {
			e.AmountsByBlock = make(map[engine.BlockID]engine.Amount, len(m))
			for k, v := range m {
				e.AmountsByBlock[engine.BlockID(k)] = v
			}
		}
	}
	if byStair.Valid {
		m, err := unmarshalAmountMap(byStair.String)
		if err != nil {
			return engine.ExpenseRecord{}, err
		}
		if len(m) > 0 {
			e.AmountsByStair = make(map[engine.StairID]engine.Amount, len(m))
			for k, v := range m {
				e.AmountsByStair[engine.StairID(k)] = v
			}
		}
	}
	if consumption.Valid {
		m, err := unmarshalDecimalMap(consumption.String)
		if err != nil {
			return engine.ExpenseRecord{}, err
		}
		e.Consumption = m
	}
	if individual.Valid {
		m, err := unmarshalAmountMap(individual.String)
		if err != nil {
			return engine.ExpenseRecord{}, err
		}
		if len(m) > 0 {
			e.IndividualAmounts = make(map[engine.ApartmentID]engine.Amount, len(m))
			for k, v := range m {
				e.IndividualAmounts[engine.ApartmentID(k)] = v
			}
		}
	}
	if indexes.Valid {
		m, err := unmarshalIndexes(indexes.String)
		if err != nil {
			return engine.ExpenseRecord{}, err
		}
		e.Indexes = m
	}
	return e, nil
}

// =============================================================================
// PENDING ENTRIES
// =============================================================================

func (s *Store) SavePending(ctx context.Context, entry billing.PendingEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var consumption, individual, indexes any
	if entry.Consumption != nil {
		consumption = entry.Consumption.String()
	}
	if entry.IndividualAmount != nil {
		individual = entry.IndividualAmount.Value.String()
	}
	if len(entry.Indexes) > 0 {
		raw, err := json.Marshal(indexReadingsToJSON(entry.Indexes))
		if err != nil {
			return err
		}
		indexes = string(raw)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO pending_entries (expense_name, period, apartment_id, consumption, individual_amount, indexes)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(expense_name, period, apartment_id) DO UPDATE SET
			consumption = excluded.consumption,
			individual_amount = excluded.individual_amount,
			indexes = excluded.indexes`,
		entry.ExpenseName, entry.Period, string(entry.ApartmentID), consumption, individual, indexes)
	return err
}

func (s *Store) PendingFor(ctx context.Context, expenseName, period string) ([]billing.PendingEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.QueryContext(ctx,
		`SELECT apartment_id, consumption, individual_amount, indexes
		 FROM pending_entries WHERE expense_name = ? AND period = ?`, expenseName, period)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []billing.PendingEntry
	for rows.Next() {
		entry := billing.PendingEntry{ExpenseName: expenseName, Period: period}
		var aptID string
		var consumption, individual, indexes sql.NullString
		if err := rows.Scan(&aptID, &consumption, &individual, &indexes); err != nil {
			return nil, err
		}
		entry.ApartmentID = engine.ApartmentID(aptID)
		if consumption.Valid {
			if d, err := decimal.NewFromString(consumption.String); err == nil {
				entry.Consumption = &d
			}
		}
		if individual.Valid {
			a := engine.ParseAmount(individual.String)
			entry.IndividualAmount = &a
		}
		if indexes.Valid {
			var jm map[string]indexReadingJSON
			if err := json.Unmarshal([]byte(indexes.String), &jm); err == nil {
				entry.Indexes = indexReadingsFromJSON(jm)
			}
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

func (s *Store) DeletePending(ctx context.Context, expenseName, period string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM pending_entries WHERE expense_name = ? AND period = ?`, expenseName, period)
	return err
}

// =============================================================================
// PERIOD LOCK
// =============================================================================

func (s *Store) SetPeriodLocked(ctx context.Context, period string, locked bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO billing_periods (period, read_only) VALUES (?, ?)
		 ON CONFLICT(period) DO UPDATE SET read_only = excluded.read_only`,
		period, boolToInt(locked))
	return err
}

func (s *Store) IsPeriodLocked(ctx context.Context, period string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var readOnly int
	err := s.db.QueryRowContext(ctx,
		`SELECT read_only FROM billing_periods WHERE period = ?`, period).Scan(&readOnly)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return readOnly != 0, nil
}

// =============================================================================
// RESET (dev/demo only)
// =============================================================================

// Reset clears all data. Used by demo scenario loaders.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, table := range []string{
		"pending_entries", "expenses", "expense_types",
		"apartments", "stairs", "blocks", "billing_periods",
	} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// JSON COLUMN HELPERS
// =============================================================================

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func blockKeys(m map[engine.BlockID]engine.Amount) map[string]engine.Amount {
	if m == nil {
		return nil
	}
	out := make(map[string]engine.Amount, len(m))
	for k, v := range m {
		out[string(k)] = v
	}
	return out
}

func stairKeys(m map[engine.StairID]engine.Amount) map[string]engine.Amount {
	if m == nil {
		return nil
	}
	out := make(map[string]engine.Amount, len(m))
	for k, v := range m {
		out[string(k)] = v
	}
	return out
}

func apartmentKeys(m map[engine.ApartmentID]engine.Amount) map[string]engine.Amount {
	if m == nil {
		return nil
	}
	out := make(map[string]engine.Amount, len(m))
	for k, v := range m {
		out[string(k)] = v
	}
	return out
}

func marshalAmountMap(m map[string]engine.Amount) (any, error) {
	if len(m) == 0 {
		return nil, nil
	}
	strs := make(map[string]string, len(m))
	for k, v := range m {
		strs[k] = v.Value.String()
	}
	raw, err := json.Marshal(strs)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

func unmarshalAmountMap(raw string) (map[string]engine.Amount, error) {
	if raw == "" {
		return nil, nil
	}
	var strs map[string]string
	if err := json.Unmarshal([]byte(raw), &strs); err != nil {
		return nil, err
	}
	out := make(map[string]engine.Amount, len(strs))
	for k, v := range strs {
		out[k] = engine.ParseAmount(v)
	}
	return out, nil
}

func marshalDecimalMap(m map[engine.ApartmentID]decimal.Decimal) (any, error) {
	if len(m) == 0 {
		return nil, nil
	}
	strs := make(map[string]string, len(m))
	for k, v := range m {
		strs[string(k)] = v.String()
	}
	raw, err := json.Marshal(strs)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

func unmarshalDecimalMap(raw string) (map[engine.ApartmentID]decimal.Decimal, error) {
	if raw == "" {
		return nil, nil
	}
	var strs map[string]string
	if err := json.Unmarshal([]byte(raw), &strs); err != nil {
		return nil, err
	}
	if len(strs) == 0 {
		return nil, nil
	}
	out := make(map[engine.ApartmentID]decimal.Decimal, len(strs))
	for k, v := range strs {
		if d, err := decimal.NewFromString(v); err == nil {
			out[engine.ApartmentID(k)] = d
		}
	}
	return out, nil
}

type indexReadingJSON struct {
	Old *string `json:"old,omitempty"`
	New *string `json:"new,omitempty"`
}

func indexReadingsToJSON(m map[string]engine.IndexReading) map[string]indexReadingJSON {
	out := make(map[string]indexReadingJSON, len(m))
	for meterID, r := range m {
		var j indexReadingJSON
		if r.OldIndex != nil {
			s := r.OldIndex.String()
			j.Old = &s
		}
		if r.NewIndex != nil {
			s := r.NewIndex.String()
			j.New = &s
		}
		out[meterID] = j
	}
	return out
}

func indexReadingsFromJSON(m map[string]indexReadingJSON) map[string]engine.IndexReading {
	out := make(map[string]engine.IndexReading, len(m))
	for meterID, j := range m {
		var r engine.IndexReading
		if j.Old != nil {
			if d, err := decimal.NewFromString(*j.Old); err == nil {
				r.OldIndex = &d
			}
		}
		if j.New != nil {
			if d, err := decimal.NewFromString(*j.New); err == nil {
				r.NewIndex = &d
			}
		}
		out[meterID] = r
	}
	return out
}

func marshalIndexes(m map[engine.ApartmentID]map[string]engine.IndexReading) (any, error) {
	if len(m) == 0 {
		return nil, nil
	}
	out := make(map[string]map[string]indexReadingJSON, len(m))
	for aptID, readings := range m {
		out[string(aptID)] = indexReadingsToJSON(readings)
	}
	raw, err := json.Marshal(out)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

func unmarshalIndexes(raw string) (map[engine.ApartmentID]map[string]engine.IndexReading, error) {
	if raw == "" {
		return nil, nil
	}
	var jm map[string]map[string]indexReadingJSON
	if err := json.Unmarshal([]byte(raw), &jm); err != nil {
		return nil, err
	}
	if len(jm) == 0 {
		return nil, nil
	}
	out := make(map[engine.ApartmentID]map[string]engine.IndexReading, len(jm))
	for aptID, readings := range jm {
		out[engine.ApartmentID(aptID)] = indexReadingsFromJSON(readings)
	}
	return out, nil
}
