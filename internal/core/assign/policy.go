// Package assign implements the lead-to-employee assignment engine: the
// matching policy that tiers candidates by location/language fit, the
// round-robin distributor that spreads a batch across a pool, and the
// orchestration for the four triggers that hand leads out.
package assign

import (
	"salescrm.service/internal/core/model"
)

// Rank orders the candidate pool for a lead by matching quality. The tiers
// are evaluated in order and the first non-empty one wins:
//
//  1. locations AND languages both intersect
//  2. either dimension intersects
//  3. the full pool (last-resort fallback so no lead is left unassignable)
//
// There is no ranking within a tier; the distributor imposes order.
func Rank(lead model.Lead, pool []model.Employee) []model.Employee {
	var both, either []model.Employee
	for _, emp := range pool {
		locs := intersects(lead.Locations, emp.Locations)
		langs := intersects(lead.Languages, emp.Languages)
		switch {
		case locs && langs:
			both = append(both, emp)
		case locs || langs:
			either = append(either, emp)
		}
	}

	if len(both) > 0 {
		return both
	}
	if len(either) > 0 {
		return either
	}
	return pool
}

func intersects(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}
