package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/forager/pkg/domain"
)

// RunStateStoreContract verifies that a StateStore implementation
// adheres to the interface contract. Adapter test suites call it
// against their concrete store.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	sessionID := "contract-" + time.Now().Format("20060102150405.000")

	record := func(id string) *domain.SessionRecord {
		return &domain.SessionRecord{
			SessionID: id,
			Query:     "usb hub under $30",
			Envelope: domain.Envelope{
				Offers:      []domain.Offer{{ID: "a", Title: "Hub", Price: 25, Currency: "USD", InStock: true, Site: "shopee"}},
				Scoring:     domain.Scoring{Best: "a", Confidence: 1, Ranked: []domain.RankedOffer{{ID: "a", TotalScore: 0.8, Rank: 1}}},
				Explanation: domain.EmptyExplanation("Recommended option: a."),
				Metadata:    domain.Metadata{StepCount: 4, TerminationReason: domain.TerminationOK},
			},
			Log:       []domain.StepLog{{Stage: "search", LatencyMS: 12}},
			CreatedAt: time.Now().UTC().Truncate(time.Second),
		}
	}

	t.Run("Save and Load", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, record(sessionID)))

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, sessionID, loaded.SessionID)
		assert.Equal(t, "a", loaded.Envelope.Scoring.Best)
		assert.Equal(t, domain.TerminationOK, loaded.Envelope.Metadata.TerminationReason)
		require.Len(t, loaded.Log, 1)
		assert.Equal(t, "search", loaded.Log[0].Stage)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "missing-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, record(sessionID)))
		require.NoError(t, store.Delete(ctx, sessionID))

		_, err := store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		require.NoError(t, store.Save(ctx, record(id1)))
		require.NoError(t, store.Save(ctx, record(id2)))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})
}
