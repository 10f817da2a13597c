package decision

import (
	"fmt"
	"math"
	"sort"

	"github.com/aretw0/forager/pkg/domain"
)

// prosConsMargin is how far from the set mean a normalized value must
// sit before it counts as a strength or weakness.
const prosConsMargin = 0.05

// tradeoffThreshold is the normalized gap beyond which a secondary
// criterion difference between rank 1 and rank 2 is worth surfacing.
const tradeoffThreshold = 0.2

// explain synthesizes the structured explanation from scored rows.
// Rows must already be sorted by rank.
func (e *Engine) explain(rows []row, criteria []domain.Criterion, conf float64) domain.Explanation {
	expl := domain.EmptyExplanation("")
	if len(rows) == 0 {
		expl.Summary = NoResultsSummary
		return expl
	}
	expl.Winner = rows[0].offer.ID

	means := criterionMeans(rows, criteria)

	top := len(rows)
	if top > e.explainTop {
		top = e.explainTop
	}
	for _, r := range rows[:top] {
		expl.PerOption = append(expl.PerOption, optionView(r, criteria, means))
	}

	expl.BestByCriterion = bestByCriterion(rows, criteria)
	if len(rows) >= 2 {
		expl.Tradeoffs = tradeoffs(rows[0], rows[1], criteria)
	}
	expl.Summary = summary(expl.Winner, len(rows), conf)
	return expl
}

// criterionMeans averages the normalized values per criterion over the
// offers that carry them.
func criterionMeans(rows []row, criteria []domain.Criterion) map[string]float64 {
	means := make(map[string]float64, len(criteria))
	for _, c := range criteria {
		var sum float64
		var n int
		for _, r := range rows {
			if v, ok := r.norm[c.Name]; ok {
				sum += v
				n++
			}
		}
		if n > 0 {
			means[c.Name] = sum / float64(n)
		}
	}
	return means
}

// optionView derives pros and cons by comparing the offer's normalized
// values against the set mean. Normalized values are directional, so
// above the mean is always good, even for minimized criteria.
func optionView(r row, criteria []domain.Criterion, means map[string]float64) domain.OptionView {
	view := domain.OptionView{
		ID:    r.offer.ID,
		Title: r.offer.Title,
		Pros:  []string{},
		Cons:  []string{},
	}
	for _, c := range criteria {
		nv, ok := r.norm[c.Name]
		if !ok {
			continue
		}
		mean := means[c.Name]
		raw, _ := r.offer.CriterionValue(c.Name)
		switch {
		case nv > mean+prosConsMargin:
			view.Pros = append(view.Pros, fmt.Sprintf("%s better than average (%.2f)", c.Name, raw))
		case nv < mean-prosConsMargin:
			view.Cons = append(view.Cons, fmt.Sprintf("%s worse than average (%.2f)", c.Name, raw))
		}
	}
	return view
}

// bestByCriterion picks the single highest-normalized offer per
// criterion; rank order breaks ties deterministically.
func bestByCriterion(rows []row, criteria []domain.Criterion) map[string]string {
	best := make(map[string]string, len(criteria))
	for _, c := range criteria {
		top := math.Inf(-1)
		id := ""
		for _, r := range rows {
			if v, ok := r.norm[c.Name]; ok && v > top {
				top = v
				id = r.offer.ID
			}
		}
		if id != "" {
			best[c.Name] = id
		}
	}
	return best
}

// tradeoffs compares rank 1 against rank 2. The criterion with the
// largest weighted contribution to their score gap leads; other
// criteria follow when the normalized gap is significant.
func tradeoffs(first, second row, criteria []domain.Criterion) []domain.Tradeoff {
	type gap struct {
		criterion string
		weighted  float64
		delta     float64
	}
	gaps := make([]gap, 0, len(criteria))
	for _, c := range criteria {
		n1, ok1 := first.norm[c.Name]
		n2, ok2 := second.norm[c.Name]
		if !ok1 || !ok2 {
			continue
		}
		gaps = append(gaps, gap{
			criterion: c.Name,
			weighted:  first.weights[c.Name]*n1 - second.weights[c.Name]*n2,
			delta:     n1 - n2,
		})
	}
	if len(gaps) == 0 {
		return []domain.Tradeoff{}
	}

	sort.SliceStable(gaps, func(a, b int) bool {
		return math.Abs(gaps[a].weighted) > math.Abs(gaps[b].weighted)
	})

	out := make([]domain.Tradeoff, 0, len(gaps))
	for i, g := range gaps {
		if i > 0 && math.Abs(g.delta) <= tradeoffThreshold {
			continue
		}
		leader, runner := first.offer.ID, second.offer.ID
		if g.delta < 0 {
			leader, runner = runner, leader
		}
		note := fmt.Sprintf("%s leads %s on %s", leader, runner, g.criterion)
		if i == 0 {
			note = fmt.Sprintf("%s explains most of the gap between %s and %s", g.criterion, first.offer.ID, second.offer.ID)
		}
		out = append(out, domain.Tradeoff{
			Criterion: g.criterion,
			Leader:    leader,
			RunnerUp:  runner,
			Delta:     math.Abs(g.delta),
			Note:      note,
		})
	}
	return out
}

func summary(winner string, count int, conf float64) string {
	if winner == "" {
		return fmt.Sprintf("No clear winner. Considered %d offers. Confidence ~%.2f.", count, conf)
	}
	return fmt.Sprintf("Recommended option: %s. Considered %d offers. Confidence ~%.2f.", winner, count, conf)
}
