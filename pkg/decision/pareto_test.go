package decision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/forager/pkg/domain"
)

func TestPareto_RemovesDominatedOffer(t *testing.T) {
	offers := []domain.Offer{
		{ID: "good", Price: 90, Rating: fp(4.8)},
		{ID: "worse", Price: 100, Rating: fp(4.2)}, // worse on both
		{ID: "cheapest", Price: 50, Rating: fp(3.0)},
	}
	criteria := priceRating()

	survivors := paretoFilter(offers, criteria)
	ids := make([]string, 0, len(survivors))
	for _, o := range survivors {
		ids = append(ids, o.ID)
	}
	assert.ElementsMatch(t, []string{"good", "cheapest"}, ids)

	// Invariant: every removed offer has a survivor at least as good on
	// all criteria and strictly better on one.
	for _, removed := range offers {
		if containsID(survivors, removed.ID) {
			continue
		}
		found := false
		for _, s := range survivors {
			if dominates(s, removed, criteria) {
				found = true
				break
			}
		}
		assert.True(t, found, "offer %s removed without a dominator", removed.ID)
	}
}

func TestPareto_TiesSurvive(t *testing.T) {
	offers := []domain.Offer{
		{ID: "x", Price: 100, Rating: fp(4.5)},
		{ID: "y", Price: 100, Rating: fp(4.5)},
	}
	survivors := paretoFilter(offers, priceRating())
	require.Len(t, survivors, 2, "exact ties are not dominated")
}

func TestPareto_MissingFieldBlocksDominance(t *testing.T) {
	offers := []domain.Offer{
		{ID: "rated", Price: 100, Rating: fp(4.9)},
		{ID: "unrated", Price: 100},
	}
	// Equal price, no shared rating: neither dominates.
	survivors := paretoFilter(offers, priceRating())
	assert.Len(t, survivors, 2)
}

func containsID(offers []domain.Offer, id string) bool {
	for _, o := range offers {
		if o.ID == id {
			return true
		}
	}
	return false
}
