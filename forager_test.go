package forager_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	forager "github.com/aretw0/forager"
	"github.com/aretw0/forager/internal/adapters/memory"
	"github.com/aretw0/forager/pkg/domain"
	"github.com/aretw0/forager/pkg/ports"
)

func fp(v float64) *float64 { return &v }
func ip(v int) *int         { return &v }

func stubProvider() ports.SearchProvider {
	return ports.SearchFunc(func(_ context.Context, _ string, _ int, _ map[string]any) ([]domain.Offer, error) {
		return []domain.Offer{
			{ID: "a", Title: "Laptop A", Price: 100, Rating: fp(4.8), ReviewCount: ip(1000), InStock: true},
			{ID: "b", Title: "Laptop B", Price: 90, Rating: fp(4.2), ReviewCount: ip(50), InStock: true},
		}, nil
	})
}

func TestNew_RequiresOfferSource(t *testing.T) {
	_, err := forager.New(nil)
	require.Error(t, err)
}

func TestRecommend_FullRun(t *testing.T) {
	eng, err := forager.New(stubProvider())
	require.NoError(t, err)

	record, err := eng.Recommend(context.Background(), "best laptop", domain.RunContext{})
	require.NoError(t, err)

	assert.NotEmpty(t, record.SessionID)
	assert.Equal(t, "best laptop", record.Query)
	assert.Equal(t, domain.TerminationOK, record.Envelope.Metadata.TerminationReason)
	assert.Equal(t, "a", record.Envelope.Scoring.Best)
	assert.Len(t, record.Log, 4)
}

func TestRecommend_PersistsAndReplays(t *testing.T) {
	store := memory.New()
	eng, err := forager.New(stubProvider(), forager.WithStore(store))
	require.NoError(t, err)

	record, err := eng.Recommend(context.Background(), "best laptop", domain.RunContext{RequestID: "sess-42"})
	require.NoError(t, err)
	require.Equal(t, "sess-42", record.SessionID)

	replayed, err := eng.Session(context.Background(), "sess-42")
	require.NoError(t, err)
	assert.Equal(t, record.Envelope.Scoring.Best, replayed.Envelope.Scoring.Best)

	ids, err := eng.Sessions(context.Background())
	require.NoError(t, err)
	assert.Contains(t, ids, "sess-42")
}

func TestRecommend_ProviderFailureDegrades(t *testing.T) {
	failing := ports.SearchFunc(func(_ context.Context, _ string, _ int, _ map[string]any) ([]domain.Offer, error) {
		return nil, errors.New("marketplace down")
	})
	eng, err := forager.New(failing)
	require.NoError(t, err)

	record, err := eng.Recommend(context.Background(), "anything", domain.RunContext{})
	require.NoError(t, err)
	assert.Equal(t, domain.TerminationNoOffers, record.Envelope.Metadata.TerminationReason)
	assert.Empty(t, record.Envelope.Offers)
	assert.NotNil(t, record.Envelope.Scoring.Ranked)
}

func TestRecommend_SearchToolBypassesProvider(t *testing.T) {
	eng, err := forager.New(nil, forager.WithSearchTool(func(_ context.Context, _ map[string]any) (any, error) {
		return []domain.Offer{{ID: "x", Title: "X", Price: 5, InStock: true}}, nil
	}))
	require.NoError(t, err)

	record, err := eng.Recommend(context.Background(), "x", domain.RunContext{})
	require.NoError(t, err)
	require.Len(t, record.Envelope.Offers, 1)
	assert.Equal(t, "x", record.Envelope.Scoring.Best)
	assert.Equal(t, 1.0, record.Envelope.Scoring.Confidence)
}

type canned struct{ text string }

func (c canned) Summarize(_ context.Context, _ string, _ domain.Explanation) (string, error) {
	return c.text, nil
}

func TestRecommend_SummarizerRewritesSummary(t *testing.T) {
	eng, err := forager.New(stubProvider(), forager.WithSummarizer(canned{text: "Take option a."}))
	require.NoError(t, err)

	record, err := eng.Recommend(context.Background(), "best laptop", domain.RunContext{})
	require.NoError(t, err)
	assert.Equal(t, "Take option a.", record.Envelope.Explanation.Summary)
	assert.Equal(t, "a", record.Envelope.Explanation.Winner)
}

func TestRecommend_BudgetReported(t *testing.T) {
	eng, err := forager.New(stubProvider(), forager.WithBudget(4))
	require.NoError(t, err)

	record, err := eng.Recommend(context.Background(), "best laptop", domain.RunContext{})
	require.NoError(t, err)
	assert.Equal(t, domain.TerminationBudgetExceeded, record.Envelope.Metadata.TerminationReason)
}
