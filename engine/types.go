/*
Package engine provides the expense apportionment and reconciliation core.

PURPOSE:
  This package contains the pure computation logic for splitting a shared
  association expense (water bill, elevator maintenance, repair fund, ...)
  across apartments. Given an expense record, its configuration, and the
  building topology, it answers: "how much does each apartment owe?"

KEY CONCEPTS IN THIS FILE (types.go):
  - Amount: A monetary quantity in RON (decimal, never float64)
  - Apartment/Stair/Block: The two-level building topology
  - ExpenseRecord: One distributed expense for a billing period
  - DistributionType: Which of the five apportionment algorithms applies
  - ReceptionMode: At which topology level the bill total was entered

DESIGN PRINCIPLES:
  1. Purity: Every computation is a function of its explicit inputs.
     No component holds state between calls; recomputation is total,
     never incremental, so rapid re-invocation during data entry is safe.
  2. Precision: Uses decimal.Decimal to avoid floating-point drift across
     the reconciliation step. Display rounding happens at the API boundary.
  3. Leniency: Malformed or missing values degrade to zero, never to an
     error. Partial data entry is a normal, continuous state.

SEE ALSO:
  - participation.go: Per-apartment override tagged union
  - config.go: Effective expense-type configuration
  - apportion.go: The five distribution algorithms
  - difference.go: Bill-vs-entered reconciliation
*/
package engine

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// AMOUNT - Monetary value in RON
// =============================================================================

// Amount is a flat decimal RON value. All internal math keeps full decimal
// precision; callers round to 2 decimals only when presenting.
type Amount struct {
	Value decimal.Decimal
}

func NewAmount(value float64) Amount {
	return Amount{Value: decimal.NewFromFloat(value)}
}

func NewAmountFromDecimal(d decimal.Decimal) Amount {
	return Amount{Value: d}
}

// ParseAmount converts a stored string value to an Amount. Non-numeric or
// negative stored values are treated as zero: malformed input recovers
// locally, it is never surfaced as an error.
func ParseAmount(s string) Amount {
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return Amount{Value: decimal.Zero}
	}
	return Amount{Value: d}
}

var ZeroAmount = Amount{Value: decimal.Zero}

func (a Amount) Add(b Amount) Amount          { return Amount{Value: a.Value.Add(b.Value)} }
func (a Amount) Sub(b Amount) Amount          { return Amount{Value: a.Value.Sub(b.Value)} }
func (a Amount) Mul(s decimal.Decimal) Amount { return Amount{Value: a.Value.Mul(s)} }
func (a Amount) Div(s decimal.Decimal) Amount { return Amount{Value: a.Value.Div(s)} }
func (a Amount) Neg() Amount                  { return Amount{Value: a.Value.Neg()} }
func (a Amount) IsZero() bool                 { return a.Value.IsZero() }
func (a Amount) IsNegative() bool             { return a.Value.IsNegative() }
func (a Amount) IsPositive() bool             { return a.Value.IsPositive() }
func (a Amount) Equal(b Amount) bool          { return a.Value.Equal(b.Value) }

// Round2 returns the display value rounded to 2 decimals. Presentation only.
func (a Amount) Round2() decimal.Decimal { return a.Value.Round(2) }

// Tolerance is the reconciliation tolerance: totals that differ by less than
// 0.01 RON are considered equal.
var Tolerance = decimal.NewFromFloat(0.01)

// WithinTolerance reports whether a and b differ by less than 0.01 RON.
func (a Amount) WithinTolerance(b Amount) bool {
	return a.Value.Sub(b.Value).Abs().LessThan(Tolerance)
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type ApartmentID string
type StairID string
type BlockID string
type ExpenseID string

// =============================================================================
// TOPOLOGY - association -> blocks -> stairs -> apartments
// =============================================================================

type Block struct {
	ID   BlockID
	Name string
}

type Stair struct {
	ID      StairID
	BlockID BlockID
	Name    string
}

type Apartment struct {
	ID      ApartmentID
	Number  string
	Owner   string
	Persons int
	// Surface area in square meters, used by the quota distribution.
	Surface decimal.Decimal
	StairID StairID
}

// Topology is the full building tree for one association. An apartment
// belongs to exactly one stair; a stair belongs to exactly one block.
type Topology struct {
	Blocks     []Block
	Stairs     []Stair
	Apartments []Apartment
}

// StairBlock returns the block a stair belongs to, or "" if unknown.
func (t Topology) StairBlock(id StairID) BlockID {
	for _, s := range t.Stairs {
		if s.ID == id {
			return s.BlockID
		}
	}
	return ""
}

// BlockStairs returns the stairs belonging to a block.
func (t Topology) BlockStairs(id BlockID) []Stair {
	var out []Stair
	for _, s := range t.Stairs {
		if s.BlockID == id {
			out = append(out, s)
		}
	}
	return out
}

// StairApartments returns the apartments on a stair.
func (t Topology) StairApartments(id StairID) []Apartment {
	var out []Apartment
	for _, a := range t.Apartments {
		if a.StairID == id {
			out = append(out, a)
		}
	}
	return out
}

// BlockApartments returns the apartments in all stairs of a block.
func (t Topology) BlockApartments(id BlockID) []Apartment {
	stairs := make(map[StairID]bool)
	for _, s := range t.Stairs {
		if s.BlockID == id {
			stairs[s.ID] = true
		}
	}
	var out []Apartment
	for _, a := range t.Apartments {
		if stairs[a.StairID] {
			out = append(out, a)
		}
	}
	return out
}

// ApartmentByID returns the apartment with the given id, if present.
func (t Topology) ApartmentByID(id ApartmentID) (Apartment, bool) {
	for _, a := range t.Apartments {
		if a.ID == id {
			return a, true
		}
	}
	return Apartment{}, false
}

// =============================================================================
// DISTRIBUTION & RECEPTION
// =============================================================================

// DistributionType selects the apportionment algorithm for an expense.
type DistributionType string

const (
	// DistributeByApartment splits equally, one share per apartment.
	DistributeByApartment DistributionType = "apartment"
	// DistributeByPerson splits proportional to occupant counts.
	DistributeByPerson DistributionType = "person"
	// DistributeByConsumption bills consumption quantity times unit price.
	DistributeByConsumption DistributionType = "consumption"
	// DistributeIndividual bills a directly entered amount per apartment.
	DistributeIndividual DistributionType = "individual"
	// DistributeByQuota splits proportional to surface-area shares.
	DistributeByQuota DistributionType = "quota"
)

// ReceptionMode records the granularity at which the bill total was entered.
type ReceptionMode string

const (
	ReceptionAssociation ReceptionMode = "association"
	ReceptionPerBlock    ReceptionMode = "per_block"
	ReceptionPerStair    ReceptionMode = "per_stair"
)

// ScopeLevel is the topology level a caller is viewing.
type ScopeLevel string

const (
	ScopeAssociation ScopeLevel = "association"
	ScopeBlock       ScopeLevel = "block"
	ScopeStair       ScopeLevel = "stair"
)

// Scope identifies a billing scope: the whole association, one block, or one
// stair. ID is empty for the association level.
type Scope struct {
	Level ScopeLevel
	ID    string
}

func AssociationScope() Scope      { return Scope{Level: ScopeAssociation} }
func BlockScope(id BlockID) Scope  { return Scope{Level: ScopeBlock, ID: string(id)} }
func StairScope(id StairID) Scope  { return Scope{Level: ScopeStair, ID: string(id)} }
