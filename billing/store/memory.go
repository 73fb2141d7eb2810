// Package store provides in-memory provider implementations (for testing/dev).
package store

import (
	"context"
	"sync"

	"github.com/warp/billing-engine/billing"
	"github.com/warp/billing-engine/engine"
)

// =============================================================================
// MEMORY STORE - Implements every billing provider interface
// =============================================================================

type Memory struct {
	mu sync.RWMutex

	blocks     []engine.Block
	stairs     []engine.Stair
	apartments []engine.Apartment

	configs  map[string]engine.ExpenseTypeConfig
	expenses map[engine.ExpenseID]engine.ExpenseRecord
	pending  map[pendingKey][]billing.PendingEntry
	locked   map[string]bool
}

type pendingKey struct {
	ExpenseName string
	Period      string
}

func NewMemory() *Memory {
	return &Memory{
		configs:  make(map[string]engine.ExpenseTypeConfig),
		expenses: make(map[engine.ExpenseID]engine.ExpenseRecord),
		pending:  make(map[pendingKey][]billing.PendingEntry),
		locked:   make(map[string]bool),
	}
}

// SetTopology replaces the building tree.
func (m *Memory) SetTopology(t engine.Topology) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blocks = t.Blocks
	m.stairs = t.Stairs
	m.apartments = t.Apartments
}

func (m *Memory) Blocks(_ context.Context) ([]engine.Block, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]engine.Block(nil), m.blocks...), nil
}

func (m *Memory) Stairs(_ context.Context) ([]engine.Stair, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]engine.Stair(nil), m.stairs...), nil
}

func (m *Memory) Apartments(_ context.Context) ([]engine.Apartment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]engine.Apartment(nil), m.apartments...), nil
}

// SetExpenseConfig stores a custom expense-type config.
func (m *Memory) SetExpenseConfig(cfg engine.ExpenseTypeConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.configs[cfg.Name] = cfg
}

func (m *Memory) ExpenseConfig(_ context.Context, name string) (engine.ExpenseTypeConfig, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cfg, ok := m.configs[name]
	return cfg, ok, nil
}

func (m *Memory) SaveExpense(_ context.Context, e engine.ExpenseRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expenses[e.ID] = e
	return nil
}

func (m *Memory) GetExpense(_ context.Context, id engine.ExpenseID) (engine.ExpenseRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.expenses[id]
	if !ok {
		return engine.ExpenseRecord{}, billing.ErrExpenseNotFound
	}
	return e, nil
}

func (m *Memory) ListExpenses(_ context.Context, period string) ([]engine.ExpenseRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []engine.ExpenseRecord
	for _, e := range m.expenses {
		if period == "" || e.Period == period {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *Memory) DeleteExpense(_ context.Context, id engine.ExpenseID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.expenses[id]; !ok {
		return billing.ErrExpenseNotFound
	}
	delete(m.expenses, id)
	return nil
}

func (m *Memory) SavePending(_ context.Context, entry billing.PendingEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := pendingKey{ExpenseName: entry.ExpenseName, Period: entry.Period}
	// Value replacement per apartment, not append.
	entries := m.pending[k]
	for i, existing := range entries {
		if existing.ApartmentID == entry.ApartmentID {
			entries[i] = entry
			return nil
		}
	}
	m.pending[k] = append(entries, entry)
	return nil
}

func (m *Memory) PendingFor(_ context.Context, expenseName, period string) ([]billing.PendingEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	k := pendingKey{ExpenseName: expenseName, Period: period}
	return append([]billing.PendingEntry(nil), m.pending[k]...), nil
}

func (m *Memory) DeletePending(_ context.Context, expenseName, period string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.pending, pendingKey{ExpenseName: expenseName, Period: period})
	return nil
}

// LockPeriod marks a billing period read-only.
func (m *Memory) LockPeriod(period string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locked[period] = true
}

func (m *Memory) IsPeriodLocked(_ context.Context, period string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.locked[period], nil
}
