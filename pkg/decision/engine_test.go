package decision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/forager/pkg/domain"
)

func fp(v float64) *float64 { return &v }
func ip(v int) *int         { return &v }

func priceRating() []domain.Criterion {
	return []domain.Criterion{
		{Name: domain.CriterionPrice, Weight: 0.5, Maximize: false},
		{Name: domain.CriterionRating, Weight: 0.5, Maximize: true},
	}
}

func TestEvaluate_TieBrokenByReviews(t *testing.T) {
	offers := []domain.Offer{
		{ID: "A", Price: 100, Rating: fp(4.8), ReviewCount: ip(1000), InStock: true},
		{ID: "B", Price: 90, Rating: fp(4.2), ReviewCount: ip(50), InStock: true},
	}

	scoring, expl, err := NewEngine().Evaluate(offers, priceRating())
	require.NoError(t, err)

	// A: rating 1.0, price 0.0; B: rating 0.0, price 1.0 -> both 0.5.
	require.Len(t, scoring.Ranked, 2)
	assert.InDelta(t, 0.5, scoring.Ranked[0].TotalScore, 1e-9)
	assert.InDelta(t, 0.5, scoring.Ranked[1].TotalScore, 1e-9)
	assert.Equal(t, "A", scoring.Ranked[0].ID, "tie broken by review count")
	assert.Equal(t, "A", scoring.Best)
	assert.Equal(t, 0.0, scoring.Confidence)
	assert.Equal(t, "A", expl.Winner)
}

func TestEvaluate_Deterministic(t *testing.T) {
	offers := []domain.Offer{
		{ID: "c", Price: 120, Rating: fp(4.1), ReviewCount: ip(12)},
		{ID: "a", Price: 99, Rating: fp(4.6), ReviewCount: ip(340)},
		{ID: "b", Price: 110, Rating: fp(4.6), ReviewCount: ip(340)},
	}
	criteria := priceRating()

	s1, e1, err := NewEngine().Evaluate(offers, criteria)
	require.NoError(t, err)
	s2, e2, err := NewEngine().Evaluate(offers, criteria)
	require.NoError(t, err)

	assert.Equal(t, s1, s2)
	assert.Equal(t, e1, e2)
}

func TestEvaluate_NormalizationBounds(t *testing.T) {
	offers := []domain.Offer{
		{ID: "a", Price: 10, Rating: fp(3.0), ReviewCount: ip(5)},
		{ID: "b", Price: 200, Rating: fp(4.9), ReviewCount: ip(9000)},
		{ID: "c", Price: 55, Rating: fp(4.1), ReviewCount: ip(120)},
	}
	scoring, _, err := NewEngine(WithoutPareto()).Evaluate(offers, domain.DefaultCriteria())
	require.NoError(t, err)

	for _, r := range scoring.Ranked {
		assert.GreaterOrEqual(t, r.TotalScore, 0.0)
		assert.LessOrEqual(t, r.TotalScore, 1.0)
	}
	assert.GreaterOrEqual(t, scoring.Confidence, 0.0)
	assert.LessOrEqual(t, scoring.Confidence, 1.0)
}

func TestEvaluate_DegenerateCriterionScoresHalf(t *testing.T) {
	// Same price everywhere: the price criterion must contribute
	// exactly 0.5 for every offer instead of dividing by zero.
	offers := []domain.Offer{
		{ID: "a", Price: 50},
		{ID: "b", Price: 50},
	}
	criteria := []domain.Criterion{{Name: domain.CriterionPrice, Weight: 1, Maximize: false}}

	scoring, _, err := NewEngine().Evaluate(offers, criteria)
	require.NoError(t, err)
	require.Len(t, scoring.Ranked, 2)
	for _, r := range scoring.Ranked {
		assert.InDelta(t, 0.5, r.TotalScore, 1e-9)
	}
}

func TestEvaluate_MissingFieldRedistributesWeight(t *testing.T) {
	offers := []domain.Offer{
		{ID: "rated", Price: 100, Rating: fp(4.0)},
		{ID: "bare", Price: 50}, // no rating at all
	}

	scoring, _, err := NewEngine(WithoutPareto()).Evaluate(offers, priceRating())
	require.NoError(t, err)

	// "bare" is scored on price alone with full weight: price norm 1.0.
	// "rated" gets 0 on price and the degenerate 0.5 on rating.
	require.Equal(t, "bare", scoring.Ranked[0].ID)
	assert.InDelta(t, 1.0, scoring.Ranked[0].TotalScore, 1e-9)
	assert.InDelta(t, 0.25, scoring.Ranked[1].TotalScore, 1e-9)
}

func TestEvaluate_EmptyOffers(t *testing.T) {
	scoring, expl, err := NewEngine().Evaluate(nil, priceRating())
	require.NoError(t, err)

	assert.Empty(t, scoring.Best)
	assert.Equal(t, 0.0, scoring.Confidence)
	assert.NotNil(t, scoring.Ranked)
	assert.Empty(t, scoring.Ranked)
	assert.Equal(t, NoResultsSummary, expl.Summary)
}

func TestEvaluate_EmptyCriteriaFallsBackToPopularity(t *testing.T) {
	offers := []domain.Offer{
		{ID: "pricey", Price: 900, ReviewCount: ip(10)},
		{ID: "loved", Price: 500, ReviewCount: ip(800)},
		{ID: "cheap", Price: 100, ReviewCount: ip(10)},
	}

	scoring, expl, err := NewEngine().Evaluate(offers, nil)
	require.NoError(t, err)

	assert.Equal(t, "loved", scoring.Best)
	assert.Equal(t, 0.0, scoring.Confidence)
	require.Len(t, scoring.Ranked, 3)
	assert.Equal(t, "cheap", scoring.Ranked[1].ID, "review tie broken by price")
	assert.Equal(t, "loved", expl.Winner)
}

func TestEvaluate_SingleOfferConfidence(t *testing.T) {
	scoring, _, err := NewEngine().Evaluate([]domain.Offer{{ID: "only", Price: 10}}, priceRating())
	require.NoError(t, err)
	assert.Equal(t, 1.0, scoring.Confidence)
	assert.Equal(t, "only", scoring.Best)
}

func TestEvaluate_NegativeWeightIsInvariantViolation(t *testing.T) {
	_, _, err := NewEngine().Evaluate(
		[]domain.Offer{{ID: "a", Price: 10}},
		[]domain.Criterion{{Name: domain.CriterionPrice, Weight: -0.5}},
	)
	require.Error(t, err)
	assert.True(t, domain.IsInvariant(err))
}

func TestExplain_ProsConsAndBestByCriterion(t *testing.T) {
	offers := []domain.Offer{
		{ID: "A", Title: "Flagship", Price: 300, Rating: fp(4.9), ReviewCount: ip(2000)},
		{ID: "B", Title: "Budget", Price: 90, Rating: fp(3.8), ReviewCount: ip(150)},
		{ID: "C", Title: "Middle", Price: 180, Rating: fp(4.3), ReviewCount: ip(600)},
	}
	criteria := domain.DefaultCriteria()

	_, expl, err := NewEngine(WithoutPareto()).Evaluate(offers, criteria)
	require.NoError(t, err)

	assert.Equal(t, "A", expl.BestByCriterion[domain.CriterionRating])
	assert.Equal(t, "B", expl.BestByCriterion[domain.CriterionPrice])
	require.NotEmpty(t, expl.PerOption)
	assert.LessOrEqual(t, len(expl.PerOption), 3)

	require.NotEmpty(t, expl.Tradeoffs)
	first := expl.Tradeoffs[0]
	assert.NotEmpty(t, first.Criterion)
	assert.NotEqual(t, first.Leader, first.RunnerUp)
	assert.Contains(t, expl.Summary, "Recommended option:")
}
