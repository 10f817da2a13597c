package decision

import "github.com/aretw0/forager/pkg/domain"

// paretoFilter removes every offer strictly dominated by another offer
// on the active criteria. Ties survive: an offer equal to another on
// every criterion is not dominated.
func paretoFilter(offers []domain.Offer, criteria []domain.Criterion) []domain.Offer {
	if len(offers) < 2 {
		return offers
	}
	survivors := make([]domain.Offer, 0, len(offers))
	for i, o := range offers {
		dominated := false
		for j, other := range offers {
			if i == j {
				continue
			}
			if dominates(other, o, criteria) {
				dominated = true
				break
			}
		}
		if !dominated {
			survivors = append(survivors, o)
		}
	}
	return survivors
}

// dominates reports whether a is at least as good as b on every
// criterion both offers carry, and strictly better on at least one.
// Criteria either offer is missing are skipped: dominance is only
// judged on comparable data, so an offer can never be eliminated over
// a field it does not have.
func dominates(a, b domain.Offer, criteria []domain.Criterion) bool {
	strictlyBetter := false
	shared := 0
	for _, c := range criteria {
		av, aok := a.CriterionValue(c.Name)
		bv, bok := b.CriterionValue(c.Name)
		if !aok || !bok {
			continue
		}
		shared++
		if !c.Maximize {
			av, bv = -av, -bv
		}
		if av < bv {
			return false
		}
		if av > bv {
			strictlyBetter = true
		}
	}
	return shared > 0 && strictlyBetter
}
