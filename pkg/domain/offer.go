package domain

// Criterion field names understood by Offer.CriterionValue.
const (
	CriterionPrice   = "price"
	CriterionRating  = "rating"
	CriterionReviews = "review_count"
	CriterionSold    = "sold_count"
)

// Offer is a normalized product listing produced by a data-source
// adapter. Offers are immutable once handed to the engine; the engine
// only reads them.
type Offer struct {
	ID          string   `json:"id" yaml:"id"`
	Title       string   `json:"title" yaml:"title"`
	Price       float64  `json:"price" yaml:"price"`
	Currency    string   `json:"currency" yaml:"currency"`
	Rating      *float64 `json:"rating,omitempty" yaml:"rating,omitempty"`
	ReviewCount *int     `json:"review_count,omitempty" yaml:"review_count,omitempty"`
	SoldCount   *int     `json:"sold_count,omitempty" yaml:"sold_count,omitempty"`
	InStock     bool     `json:"in_stock" yaml:"in_stock"`
	Site        string   `json:"site" yaml:"site"`
}

// CriterionValue returns the raw value backing a named criterion, and
// whether the offer carries that field at all. Optional fields (rating,
// review count, sold count) report false when absent so the scorer can
// redistribute their weight instead of scoring them as zero.
func (o Offer) CriterionValue(name string) (float64, bool) {
	switch name {
	case CriterionPrice:
		return o.Price, true
	case CriterionRating:
		if o.Rating == nil {
			return 0, false
		}
		return *o.Rating, true
	case CriterionReviews:
		if o.ReviewCount == nil {
			return 0, false
		}
		return float64(*o.ReviewCount), true
	case CriterionSold:
		if o.SoldCount == nil {
			return 0, false
		}
		return float64(*o.SoldCount), true
	default:
		return 0, false
	}
}

// Reviews returns the review count, or zero when unknown. Used as the
// deterministic tie-breaker during ranking.
func (o Offer) Reviews() int {
	if o.ReviewCount == nil {
		return 0
	}
	return *o.ReviewCount
}
