package observability

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/forager/pkg/domain"
)

func TestMetrics_CountsStageErrors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	hooks := m.Hooks()

	hooks.OnStageLeave(context.Background(), &domain.StageEvent{Stage: "search", LatencyMS: 120})
	hooks.OnStageLeave(context.Background(), &domain.StageEvent{Stage: "search", LatencyMS: 80, Error: "backend down"})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.stageErrors.WithLabelValues("search")))
}

func TestMetrics_CountsToolAttemptsAndBreaker(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	hooks := m.Hooks()

	hooks.OnToolReturn(context.Background(), &domain.ToolEvent{Tool: "fetch_offers", Attempts: 3, IsError: true, ErrorKind: domain.ErrKindTimeout})
	hooks.OnToolReturn(context.Background(), &domain.ToolEvent{Tool: "fetch_offers", CircuitOpen: true, IsError: true, ErrorKind: domain.ErrKindCircuitOpen})

	require.Equal(t, 3.0, testutil.ToFloat64(m.toolAttempts.WithLabelValues("fetch_offers", "timeout")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.breakerOpens.WithLabelValues("fetch_offers")))
}
