package domain

// Criterion is a weighted, directional dimension used for scoring.
// Weights across the active set need not sum to 1: the engine
// renormalizes by the sum of the weights actually used per offer.
type Criterion struct {
	Name     string  `json:"name" yaml:"name" mapstructure:"name"`
	Weight   float64 `json:"weight" yaml:"weight" mapstructure:"weight"`
	Maximize bool    `json:"maximize" yaml:"maximize" mapstructure:"maximize"`
}

// DefaultCriteria is the smart-buyer profile: cheap, well rated, well
// reviewed, frequently bought.
func DefaultCriteria() []Criterion {
	return []Criterion{
		{Name: CriterionPrice, Weight: 0.25, Maximize: false},
		{Name: CriterionRating, Weight: 0.30, Maximize: true},
		{Name: CriterionReviews, Weight: 0.25, Maximize: true},
		{Name: CriterionSold, Weight: 0.20, Maximize: true},
	}
}
