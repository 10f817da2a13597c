// Package query extracts shopping intent from a raw natural-language
// query: price caps, preferred sites and comparison phrasing. It is a
// deliberately small heuristic layer; anything smarter belongs in an
// external planner.
package query

import (
	"regexp"
	"strconv"
	"strings"
)

// Intent is the structured reading of a query.
type Intent struct {
	// Terms are the remaining search words after price/site phrases are
	// stripped.
	Terms []string `json:"terms"`
	// MaxPrice is a budget cap such as "under $500", nil when absent.
	MaxPrice *float64 `json:"max_price,omitempty"`
	// Sites are explicitly requested marketplaces ("on shopee").
	Sites []string `json:"sites,omitempty"`
	// Compare is set for comparison phrasing ("iphone vs pixel").
	Compare bool `json:"compare"`
}

var (
	pricePattern = regexp.MustCompile(`(?i)\b(?:under|below|less than|within|max)\s*\$?\s*(\d+(?:\.\d+)?)(k?)\b`)
	sitePattern  = regexp.MustCompile(`(?i)\b(?:on|from|at)\s+([a-z][a-z0-9_-]+)\b`)
	comparePat   = regexp.MustCompile(`(?i)\bvs\.?\b|\bversus\b|\bcompare\b`)
)

// Parse reads intent out of a raw query. It never fails: a query with
// no recognizable phrasing yields terms only.
func Parse(raw string) Intent {
	intent := Intent{Compare: comparePat.MatchString(raw)}
	rest := raw

	if m := pricePattern.FindStringSubmatch(rest); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			if strings.EqualFold(m[2], "k") {
				v *= 1000
			}
			intent.MaxPrice = &v
		}
		rest = pricePattern.ReplaceAllString(rest, " ")
	}

	for _, m := range sitePattern.FindAllStringSubmatch(rest, -1) {
		intent.Sites = append(intent.Sites, strings.ToLower(m[1]))
	}
	rest = sitePattern.ReplaceAllString(rest, " ")

	for _, w := range strings.Fields(rest) {
		w = strings.ToLower(strings.Trim(w, `.,!?"'`))
		if w == "" || stopword(w) {
			continue
		}
		intent.Terms = append(intent.Terms, w)
	}
	return intent
}

// stopword filters filler that never helps matching.
func stopword(w string) bool {
	switch w {
	case "a", "an", "the", "best", "cheap", "cheapest", "buy", "find",
		"me", "for", "vs", "versus", "compare", "and", "or", "with":
		return true
	}
	return false
}
