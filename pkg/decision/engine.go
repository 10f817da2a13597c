package decision

import (
	"math"
	"sort"

	"github.com/aretw0/forager/pkg/domain"
)

// NoResultsSummary is the fixed summary used when there is nothing to
// score.
const NoResultsSummary = "no results"

// Engine evaluates offers against weighted criteria. Construct via
// NewEngine; the zero value is not usable.
type Engine struct {
	pareto     bool
	explainTop int
}

// Option configures the engine.
type Option func(*Engine)

// WithoutPareto disables the dominance pre-filter so every offer is
// scored.
func WithoutPareto() Option {
	return func(e *Engine) { e.pareto = false }
}

// WithExplainTop sets how many ranked offers get pros/cons views.
func WithExplainTop(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.explainTop = n
		}
	}
}

// NewEngine creates an engine with the Pareto pre-filter enabled and
// explanations for the top 3 offers.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{pareto: true, explainTop: 3}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// row is the per-offer working sheet built during evaluation.
type row struct {
	offer   domain.Offer
	norm    map[string]float64 // criterion -> directional normalized value [0,1]
	weights map[string]float64 // criterion -> per-offer renormalized weight
	total   float64
}

// Evaluate scores offers against criteria and synthesizes the
// structured explanation. The only error it can return is a
// *domain.InvariantError, which signals a correctness bug (bad weight,
// NaN score) rather than an environmental condition.
func (e *Engine) Evaluate(offers []domain.Offer, criteria []domain.Criterion) (domain.Scoring, domain.Explanation, error) {
	if err := validateCriteria(criteria); err != nil {
		return domain.EmptyScoring(), domain.EmptyExplanation(""), err
	}

	if len(offers) == 0 {
		return domain.EmptyScoring(), domain.EmptyExplanation(NoResultsSummary), nil
	}

	if len(criteria) == 0 {
		return e.fallbackRanking(offers)
	}

	survivors := offers
	if e.pareto {
		survivors = paretoFilter(offers, criteria)
	}

	rows := buildRows(survivors, criteria)
	for i := range rows {
		if err := checkScore(rows[i]); err != nil {
			return domain.EmptyScoring(), domain.EmptyExplanation(""), err
		}
	}
	sortRows(rows)

	scoring := domain.Scoring{
		Confidence: confidence(rows),
		Ranked:     make([]domain.RankedOffer, 0, len(rows)),
	}
	for i, r := range rows {
		scoring.Ranked = append(scoring.Ranked, domain.RankedOffer{
			ID:         r.offer.ID,
			TotalScore: r.total,
			Rank:       i + 1,
		})
	}
	if len(rows) > 0 {
		scoring.Best = rows[0].offer.ID
	}

	expl := e.explain(rows, criteria, scoring.Confidence)
	return scoring, expl, nil
}

// fallbackRanking handles an empty criterion set: rank purely by
// review count, then price, and flag zero confidence.
func (e *Engine) fallbackRanking(offers []domain.Offer) (domain.Scoring, domain.Explanation, error) {
	sorted := make([]domain.Offer, len(offers))
	copy(sorted, offers)
	sort.SliceStable(sorted, func(a, b int) bool {
		if sorted[a].Reviews() != sorted[b].Reviews() {
			return sorted[a].Reviews() > sorted[b].Reviews()
		}
		if sorted[a].Price != sorted[b].Price {
			return sorted[a].Price < sorted[b].Price
		}
		return sorted[a].ID < sorted[b].ID
	})

	scoring := domain.EmptyScoring()
	for i, o := range sorted {
		scoring.Ranked = append(scoring.Ranked, domain.RankedOffer{ID: o.ID, Rank: i + 1})
	}
	scoring.Best = sorted[0].ID

	expl := domain.EmptyExplanation("no criteria provided; ranked by review count and price")
	expl.Winner = sorted[0].ID
	return scoring, expl, nil
}

func validateCriteria(criteria []domain.Criterion) error {
	for _, c := range criteria {
		if math.IsNaN(c.Weight) || c.Weight < 0 || c.Weight > 1 {
			return domain.Invariantf("criterion_weight", "criterion %q has weight %v, want [0,1]", c.Name, c.Weight)
		}
	}
	return nil
}

// buildRows normalizes values and computes weighted totals for the
// surviving offers.
func buildRows(offers []domain.Offer, criteria []domain.Criterion) []row {
	rows := make([]row, len(offers))
	for i, o := range offers {
		rows[i] = row{
			offer:   o,
			norm:    make(map[string]float64, len(criteria)),
			weights: make(map[string]float64, len(criteria)),
		}
	}

	// Min-max scale each criterion over the offers that carry it; a
	// zero range scores 0.5 everywhere to stay score-neutral.
	for _, c := range criteria {
		lo, hi := math.Inf(1), math.Inf(-1)
		present := 0
		for _, o := range offers {
			if v, ok := o.CriterionValue(c.Name); ok {
				lo, hi = math.Min(lo, v), math.Max(hi, v)
				present++
			}
		}
		if present == 0 {
			continue
		}
		for i, o := range offers {
			v, ok := o.CriterionValue(c.Name)
			if !ok {
				continue
			}
			scaled := 0.5
			if hi > lo {
				scaled = (v - lo) / (hi - lo)
			}
			if !c.Maximize {
				scaled = 1 - scaled
			}
			rows[i].norm[c.Name] = scaled
		}
	}

	// Redistribute weight: a criterion an offer is missing is excluded
	// for that offer and its weight spread proportionally over the
	// offer's remaining criteria, so sparse offers are neither zeroed
	// out nor rewarded.
	for i := range rows {
		var sum float64
		for _, c := range criteria {
			if _, ok := rows[i].norm[c.Name]; ok {
				sum += c.Weight
			}
		}
		for _, c := range criteria {
			nv, ok := rows[i].norm[c.Name]
			if !ok {
				continue
			}
			w := c.Weight / sum
			if sum == 0 {
				// All usable weights are zero: split evenly.
				w = 1 / float64(len(rows[i].norm))
			}
			rows[i].weights[c.Name] = w
			rows[i].total += w * nv
		}
	}
	return rows
}

func checkScore(r row) error {
	if math.IsNaN(r.total) {
		return domain.Invariantf("score_nan", "offer %q scored NaN", r.offer.ID)
	}
	// Weights sum to 1 per offer, so the weighted sum stays inside the
	// normalized bounds; allow a little float slack.
	if r.total < -1e-9 || r.total > 1+1e-9 {
		return domain.Invariantf("score_bounds", "offer %q scored %v, want [0,1]", r.offer.ID, r.total)
	}
	return nil
}

// sortRows orders by total descending, review count descending, then
// ID ascending for determinism.
func sortRows(rows []row) {
	sort.SliceStable(rows, func(a, b int) bool {
		if rows[a].total != rows[b].total {
			return rows[a].total > rows[b].total
		}
		if rows[a].offer.Reviews() != rows[b].offer.Reviews() {
			return rows[a].offer.Reviews() > rows[b].offer.Reviews()
		}
		return rows[a].offer.ID < rows[b].offer.ID
	})
}

// confidence is the relative score gap between the top two offers.
func confidence(rows []row) float64 {
	switch {
	case len(rows) == 0:
		return 0
	case len(rows) == 1:
		return 1
	}
	s0, s1 := rows[0].total, rows[1].total
	if s0 <= 0 {
		return 0
	}
	c := (s0 - s1) / s0
	return math.Min(math.Max(c, 0), 1)
}
