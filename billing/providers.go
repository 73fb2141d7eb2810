/*
providers.go - Collaborator interfaces

PURPOSE:
  The engine consumes topology, configuration, and a read-only-period
  signal from external collaborators. These interfaces are what the
  persistence layer implements; the computation itself never touches
  storage directly. The period lock gates EDITS only - computation runs
  regardless, the caller enforces the lock.
*/
package billing

import (
	"context"

	"github.com/warp/billing-engine/engine"
)

// TopologyProvider supplies the building tree.
type TopologyProvider interface {
	Blocks(ctx context.Context) ([]engine.Block, error)
	Stairs(ctx context.Context) ([]engine.Stair, error)
	Apartments(ctx context.Context) ([]engine.Apartment, error)
}

// LoadTopology assembles a full Topology from a provider.
func LoadTopology(ctx context.Context, p TopologyProvider) (engine.Topology, error) {
	blocks, err := p.Blocks(ctx)
	if err != nil {
		return engine.Topology{}, err
	}
	stairs, err := p.Stairs(ctx)
	if err != nil {
		return engine.Topology{}, err
	}
	apartments, err := p.Apartments(ctx)
	if err != nil {
		return engine.Topology{}, err
	}
	return engine.Topology{Blocks: blocks, Stairs: stairs, Apartments: apartments}, nil
}

// ConfigProvider supplies stored custom expense-type configuration.
// found=false means "nothing stored"; the resolver falls back to defaults.
type ConfigProvider interface {
	ExpenseConfig(ctx context.Context, name string) (cfg engine.ExpenseTypeConfig, found bool, err error)
}

// PeriodLock is the read-only signal from the sheet-lifecycle subsystem.
type PeriodLock interface {
	IsPeriodLocked(ctx context.Context, period string) (bool, error)
}

// ExpenseStore persists expense records for a billing period. Entry-map
// mutations are value replacements, not appends.
type ExpenseStore interface {
	SaveExpense(ctx context.Context, e engine.ExpenseRecord) error
	GetExpense(ctx context.Context, id engine.ExpenseID) (engine.ExpenseRecord, error)
	ListExpenses(ctx context.Context, period string) ([]engine.ExpenseRecord, error)
	DeleteExpense(ctx context.Context, id engine.ExpenseID) error
}
