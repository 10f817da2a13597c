package httpapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/forager/internal/adapters/httpapi"
	"github.com/aretw0/forager/internal/logging"
	"github.com/aretw0/forager/pkg/domain"
)

type fakeEngine struct {
	records map[string]*domain.SessionRecord
}

func (f *fakeEngine) Recommend(_ context.Context, query string, rc domain.RunContext) (*domain.SessionRecord, error) {
	record := &domain.SessionRecord{
		SessionID: "sess-1",
		Query:     query,
		Envelope: domain.Envelope{
			Offers:      []domain.Offer{{ID: "a", Title: "A", Price: 10}},
			Scoring:     domain.Scoring{Best: "a", Confidence: 1, Ranked: []domain.RankedOffer{{ID: "a", TotalScore: 0.9, Rank: 1}}},
			Explanation: domain.EmptyExplanation("Recommended option: a."),
			Metadata:    domain.Metadata{StepCount: 4, TerminationReason: domain.TerminationOK},
		},
	}
	return record, nil
}

func (f *fakeEngine) Session(_ context.Context, id string) (*domain.SessionRecord, error) {
	record, ok := f.records[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return record, nil
}

func (f *fakeEngine) Sessions(_ context.Context) ([]string, error) {
	ids := make([]string, 0, len(f.records))
	for id := range f.records {
		ids = append(ids, id)
	}
	return ids, nil
}

func newServer(t *testing.T) (*httptest.Server, *fakeEngine) {
	t.Helper()
	engine := &fakeEngine{records: map[string]*domain.SessionRecord{}}
	srv := httptest.NewServer(httpapi.NewHandler(engine, logging.NewNop()))
	t.Cleanup(srv.Close)
	return srv, engine
}

func TestRecommend_OK(t *testing.T) {
	srv, _ := newServer(t)

	resp, err := http.Post(srv.URL+"/recommend", "application/json",
		strings.NewReader(`{"query":"best laptop","top_k":3}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		SessionID string          `json:"session_id"`
		Envelope  domain.Envelope `json:"envelope"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "sess-1", body.SessionID)
	assert.Equal(t, "a", body.Envelope.Scoring.Best)
}

func TestRecommend_RejectsEmptyQuery(t *testing.T) {
	srv, _ := newServer(t)

	resp, err := http.Post(srv.URL+"/recommend", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRecommend_RejectsBadJSON(t *testing.T) {
	srv, _ := newServer(t)

	resp, err := http.Post(srv.URL+"/recommend", "application/json", strings.NewReader(`{"query":`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetSession_NotFound(t *testing.T) {
	srv, _ := newServer(t)

	resp, err := http.Get(srv.URL + "/sessions/nope")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetSession_Found(t *testing.T) {
	srv, engine := newServer(t)
	engine.records["sess-9"] = &domain.SessionRecord{SessionID: "sess-9", Query: "q"}

	resp, err := http.Get(srv.URL + "/sessions/sess-9")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var record domain.SessionRecord
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&record))
	assert.Equal(t, "sess-9", record.SessionID)
}

func TestHealthz(t *testing.T) {
	srv, _ := newServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMetricsExposed(t *testing.T) {
	srv, _ := newServer(t)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
