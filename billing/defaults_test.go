package billing_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/billing-engine/billing"
	"github.com/warp/billing-engine/billing/store"
	"github.com/warp/billing-engine/engine"
)

func TestConfigResolver_BuiltInDefaults(t *testing.T) {
	ctx := context.Background()
	r := billing.ConfigResolver{}

	cfg, err := r.Resolve(ctx, "Apă rece")
	require.NoError(t, err)
	assert.Equal(t, engine.DistributeByConsumption, cfg.DistributionType)
	assert.Equal(t, "mc", cfg.Unit())
	assert.Equal(t, engine.DifferenceByConsumption, cfg.Difference.Method)

	cfg, err = r.Resolve(ctx, "Salubritate")
	require.NoError(t, err)
	assert.Equal(t, engine.DistributeByPerson, cfg.DistributionType)
	assert.Equal(t, engine.FixedPerPerson, cfg.FixedAmountMode)
}

func TestConfigResolver_UnknownName_SafeDefault(t *testing.T) {
	cfg, err := billing.ConfigResolver{}.Resolve(context.Background(), "Deszăpezire")
	require.NoError(t, err)
	assert.Equal(t, engine.DistributeByApartment, cfg.DistributionType)
	assert.Equal(t, engine.FixedPerApartment, cfg.FixedAmountMode)
	assert.Empty(t, cfg.Participation)
}

func TestConfigResolver_StoredConfigMergesOverDefaults(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	mem.SetExpenseConfig(engine.ExpenseTypeConfig{
		Name:          "Apă rece",
		Participation: engine.ParticipationMap{"A7": engine.Excluded()},
		Indexes: engine.IndexConfiguration{
			InputMode:  engine.InputIndexes,
			IndexTypes: []engine.IndexType{{ID: "bath", Name: "Baie"}},
		},
	})

	cfg, err := billing.ConfigResolver{Provider: mem}.Resolve(ctx, "Apă rece")
	require.NoError(t, err)

	// Custom fields win.
	assert.Equal(t, engine.ParticipationExcluded, cfg.Participation.For("A7").Kind)
	assert.Equal(t, engine.InputIndexes, cfg.Indexes.InputMode)
	// Unset fields keep the built-in defaults.
	assert.Equal(t, engine.DistributeByConsumption, cfg.DistributionType)
	assert.Equal(t, engine.DifferenceByConsumption, cfg.Difference.Method)
}

func TestConfigResolver_RecordDistributionTypeWins(t *testing.T) {
	// Once distributed, the record pins its own distribution type; config
	// changes only affect future distributions.
	e := engine.ExpenseRecord{Name: "Apă rece", DistributionType: engine.DistributeIndividual}
	cfg, err := billing.ConfigResolver{}.ResolveForExpense(context.Background(), e)
	require.NoError(t, err)
	assert.Equal(t, engine.DistributeIndividual, cfg.DistributionType)
}
