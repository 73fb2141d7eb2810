/*
participation.go - Per-apartment participation overrides

PURPOSE:
  An expense type may override how individual apartments participate in a
  distribution. The override is a tagged variant; legacy data encodes it
  either as a bare number (0, 1, or a percentage) or as a {type, value}
  object, and BOTH encodings are normalized exactly once, here, at the
  data-model boundary. The calculator never re-interprets raw numbers.

VARIANTS:
  Integral:      Default. Full weight, nothing special.
  Excluded:      Weight 0. Contributes nothing and is removed from every
                 denominator.
  Percentage(v): Weight (or computed base amount, for entry-based methods)
                 scaled by a multiplier derived from v.
  Fixed(v):      The apartment owes exactly v (or v x persons when the
                 expense type uses per-person fixed amounts). Removed from
                 reweighting but still part of the introduced total.

PERCENTAGE VALUE RULE:
  v < 1  -> v is a fraction (0.5 means 50%)
  v > 1  -> v is a percent (50 means 50%)
  v == 1 resolves to FULL participation (100%), not 1%. Historical billing
  data depends on this tie-break; do not change it.
*/
package engine

import "github.com/shopspring/decimal"

// ParticipationKind tags a ParticipationOverride variant.
type ParticipationKind string

const (
	ParticipationIntegral   ParticipationKind = "integral"
	ParticipationExcluded   ParticipationKind = "excluded"
	ParticipationPercentage ParticipationKind = "percentage"
	ParticipationFixed      ParticipationKind = "fixed"
)

// ParticipationOverride is the normalized per-apartment override.
// Value is meaningful only for Percentage and Fixed.
type ParticipationOverride struct {
	Kind  ParticipationKind
	Value decimal.Decimal
}

func Integral() ParticipationOverride { return ParticipationOverride{Kind: ParticipationIntegral} }
func Excluded() ParticipationOverride { return ParticipationOverride{Kind: ParticipationExcluded} }

func Percentage(v float64) ParticipationOverride {
	return ParticipationOverride{Kind: ParticipationPercentage, Value: decimal.NewFromFloat(v)}
}

func Fixed(v float64) ParticipationOverride {
	return ParticipationOverride{Kind: ParticipationFixed, Value: decimal.NewFromFloat(v)}
}

var one = decimal.NewFromInt(1)
var hundred = decimal.NewFromInt(100)

// Multiplier returns the weight multiplier for a Percentage override.
// Values below 1 are fractions; values above 1 are percents. Exactly 1
// means full participation (1, not 1/100 - the tie-break documented in the
// file header). Non-percentage overrides multiply by 1; a negative value is
// malformed and degrades to full participation, matching the bare-number
// normalization.
func (p ParticipationOverride) Multiplier() decimal.Decimal {
	if p.Kind != ParticipationPercentage {
		return one
	}
	v := p.Value
	if v.IsNegative() {
		return one
	}
	if v.LessThanOrEqual(one) {
		return v
	}
	return v.Div(hundred)
}

// FixedAmount returns what a Fixed apartment owes: the raw value, or
// value x persons when the expense type fixes a per-occupant amount.
func (p ParticipationOverride) FixedAmount(mode FixedAmountMode, persons int) Amount {
	if p.Kind != ParticipationFixed {
		return ZeroAmount
	}
	v := p.Value
	if v.IsNegative() {
		v = decimal.Zero
	}
	if mode == FixedPerPerson {
		if persons < 0 {
			persons = 0
		}
		v = v.Mul(decimal.NewFromInt(int64(persons)))
	}
	return Amount{Value: v}
}

// =============================================================================
// LEGACY NORMALIZATION
// =============================================================================

// NormalizeParticipation converts a raw stored participation value into the
// tagged variant. Accepted shapes:
//
//	nil                          -> Integral
//	float64 0                    -> Excluded
//	float64 1                    -> Integral (100%, see tie-break above)
//	float64 other                -> Percentage(v)
//	map {"type": ..., "value":v} -> the named variant
//
// Anything else degrades to Integral, the safest default.
func NormalizeParticipation(raw any) ParticipationOverride {
	switch v := raw.(type) {
	case nil:
		return Integral()
	case float64:
		return normalizeNumber(decimal.NewFromFloat(v))
	case int:
		return normalizeNumber(decimal.NewFromInt(int64(v)))
	case map[string]any:
		kind, _ := v["type"].(string)
		value := decimal.Zero
		switch n := v["value"].(type) {
		case float64:
			value = decimal.NewFromFloat(n)
		case int:
			value = decimal.NewFromInt(int64(n))
		case string:
			if d, err := decimal.NewFromString(n); err == nil {
				value = d
			}
		}
		switch ParticipationKind(kind) {
		case ParticipationExcluded:
			return Excluded()
		case ParticipationPercentage:
			return ParticipationOverride{Kind: ParticipationPercentage, Value: value}
		case ParticipationFixed:
			return ParticipationOverride{Kind: ParticipationFixed, Value: value}
		case ParticipationIntegral:
			return Integral()
		default:
			return Integral()
		}
	default:
		return Integral()
	}
}

func normalizeNumber(d decimal.Decimal) ParticipationOverride {
	if d.IsZero() {
		return Excluded()
	}
	if d.Equal(one) {
		return Integral()
	}
	if d.IsNegative() {
		return Integral()
	}
	return ParticipationOverride{Kind: ParticipationPercentage, Value: d}
}

// ParticipationMap holds normalized overrides keyed by apartment. Lookups on
// apartments without an entry return Integral.
type ParticipationMap map[ApartmentID]ParticipationOverride

// For returns the override for an apartment, defaulting to Integral.
func (m ParticipationMap) For(id ApartmentID) ParticipationOverride {
	if m == nil {
		return Integral()
	}
	if p, ok := m[id]; ok {
		return p
	}
	return Integral()
}
