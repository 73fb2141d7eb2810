/*
aggregate.go - Audit rollups

PURPOSE:
  Rolls apartment-level figures up into per-stair, per-block, or
  association totals for display and auditing. No new computation: sums
  only, over values produced by apportionment and reconciliation.
*/
package engine

// GroupTotal is one rollup row.
type GroupTotal struct {
	Scope      Scope
	Label      string
	Apartments int
	Total      Amount
}

// Aggregate sums per-apartment amounts at the requested level. Groups appear
// in topology order; apartments missing from the amounts map count as zero.
func Aggregate(amounts map[ApartmentID]Amount, topo Topology, level ScopeLevel) []GroupTotal {
	switch level {
	case ScopeStair:
		out := make([]GroupTotal, 0, len(topo.Stairs))
		for _, s := range topo.Stairs {
			apts := topo.StairApartments(s.ID)
			out = append(out, GroupTotal{
				Scope:      StairScope(s.ID),
				Label:      s.Name,
				Apartments: len(apts),
				Total:      sumAmounts(amounts, apts),
			})
		}
		return out
	case ScopeBlock:
		out := make([]GroupTotal, 0, len(topo.Blocks))
		for _, b := range topo.Blocks {
			apts := topo.BlockApartments(b.ID)
			out = append(out, GroupTotal{
				Scope:      BlockScope(b.ID),
				Label:      b.Name,
				Apartments: len(apts),
				Total:      sumAmounts(amounts, apts),
			})
		}
		return out
	default:
		return []GroupTotal{{
			Scope:      AssociationScope(),
			Label:      "association",
			Apartments: len(topo.Apartments),
			Total:      sumAmounts(amounts, topo.Apartments),
		}}
	}
}

func sumAmounts(amounts map[ApartmentID]Amount, apts []Apartment) Amount {
	total := ZeroAmount
	for _, apt := range apts {
		total = total.Add(amounts[apt.ID])
	}
	return total
}
