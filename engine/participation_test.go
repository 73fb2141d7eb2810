package engine_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/warp/billing-engine/engine"
)

// =============================================================================
// LEGACY NORMALIZATION
// =============================================================================

func TestNormalizeParticipation_LegacyNumbers(t *testing.T) {
	// GIVEN: Legacy bare-number encodings
	// WHEN: Normalizing
	// THEN: 0 -> Excluded, 1 -> Integral (100%, the historical tie-break),
	//       anything else -> Percentage

	cases := []struct {
		raw  any
		want engine.ParticipationKind
	}{
		{nil, engine.ParticipationIntegral},
		{float64(0), engine.ParticipationExcluded},
		{float64(1), engine.ParticipationIntegral},
		{float64(50), engine.ParticipationPercentage},
		{float64(0.5), engine.ParticipationPercentage},
		{"garbage", engine.ParticipationIntegral},
	}
	for _, c := range cases {
		got := engine.NormalizeParticipation(c.raw)
		if got.Kind != c.want {
			t.Errorf("NormalizeParticipation(%v): got %s, want %s", c.raw, got.Kind, c.want)
		}
	}
}

func TestNormalizeParticipation_TaggedObjects(t *testing.T) {
	// GIVEN: The {type, value} object encoding
	// WHEN: Normalizing
	// THEN: The named variant is produced with its value

	got := engine.NormalizeParticipation(map[string]any{"type": "fixed", "value": 30.0})
	if got.Kind != engine.ParticipationFixed || !got.Value.Equal(decimal.NewFromInt(30)) {
		t.Errorf("expected Fixed(30), got %s(%v)", got.Kind, got.Value)
	}

	got = engine.NormalizeParticipation(map[string]any{"type": "excluded"})
	if got.Kind != engine.ParticipationExcluded {
		t.Errorf("expected Excluded, got %s", got.Kind)
	}

	got = engine.NormalizeParticipation(map[string]any{"type": "bogus", "value": 9.0})
	if got.Kind != engine.ParticipationIntegral {
		t.Errorf("unknown type should degrade to Integral, got %s", got.Kind)
	}
}

func TestMultiplier_ValueOfExactlyOne_IsFullParticipation(t *testing.T) {
	// GIVEN: Percentage(1) - ambiguous between 100%-as-fraction and 1%-as-percent
	// WHEN: Computing the multiplier
	// THEN: Resolves to full participation. Changing this would silently
	//       reclassify real configured apartments.

	m := engine.Percentage(1).Multiplier()
	if !m.Equal(decimal.NewFromInt(1)) {
		t.Errorf("Percentage(1) multiplier: got %v, want 1", m)
	}

	// The tagged encoding keeps the Percentage kind (it never passes through
	// the bare-number normalization), so the multiplier itself must apply
	// the tie-break.
	tagged := engine.NormalizeParticipation(map[string]any{"type": "percentage", "value": 1.0})
	if tagged.Kind != engine.ParticipationPercentage {
		t.Fatalf("tagged percentage should stay Percentage, got %s", tagged.Kind)
	}
	if !tagged.Multiplier().Equal(decimal.NewFromInt(1)) {
		t.Errorf("tagged percentage value 1: got %v, want 1", tagged.Multiplier())
	}
}

func TestMultiplier_FractionAndPercent(t *testing.T) {
	half := decimal.NewFromFloat(0.5)
	if !engine.Percentage(0.5).Multiplier().Equal(half) {
		t.Errorf("Percentage(0.5): got %v, want 0.5", engine.Percentage(0.5).Multiplier())
	}
	if !engine.Percentage(50).Multiplier().Equal(half) {
		t.Errorf("Percentage(50): got %v, want 0.5", engine.Percentage(50).Multiplier())
	}
}

func TestMultiplier_NegativeValue_DegradesToFullParticipation(t *testing.T) {
	// GIVEN: A malformed negative percentage value (tagged encoding, so it
	//        bypasses the bare-number normalization)
	// WHEN: Computing the multiplier
	// THEN: Degrades to full participation, same as a negative bare number

	got := engine.NormalizeParticipation(map[string]any{"type": "percentage", "value": -25.0})
	if !got.Multiplier().Equal(decimal.NewFromInt(1)) {
		t.Errorf("negative tagged percentage: got %v, want 1", got.Multiplier())
	}
	if !engine.Percentage(-25).Multiplier().Equal(decimal.NewFromInt(1)) {
		t.Errorf("Percentage(-25): got %v, want 1", engine.Percentage(-25).Multiplier())
	}
}

func TestParticipationMap_DefaultsToIntegral(t *testing.T) {
	var m engine.ParticipationMap
	if m.For("A1").Kind != engine.ParticipationIntegral {
		t.Error("nil map lookup should default to Integral")
	}
	m = engine.ParticipationMap{"A1": engine.Excluded()}
	if m.For("A2").Kind != engine.ParticipationIntegral {
		t.Error("missing entry should default to Integral")
	}
}
