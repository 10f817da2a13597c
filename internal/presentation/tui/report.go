package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/forager/pkg/domain"
)

// RenderReport turns a result envelope into markdown for terminal
// display.
func RenderReport(query string, env *domain.Envelope) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Results for %q\n\n", query)

	if len(env.Offers) == 0 {
		sb.WriteString("No matching offers found.\n")
		fmt.Fprintf(&sb, "\n_%d steps, %d ms, ended: %s_\n",
			env.Metadata.StepCount, env.Metadata.LatencyMS, env.Metadata.TerminationReason)
		return sb.String()
	}

	fmt.Fprintf(&sb, "%s\n\n", env.Explanation.Summary)

	titles := make(map[string]string, len(env.Offers))
	prices := make(map[string]float64, len(env.Offers))
	for _, o := range env.Offers {
		titles[o.ID] = o.Title
		prices[o.ID] = o.Price
	}

	sb.WriteString("## Ranking\n\n")
	sb.WriteString("| # | Option | Price | Score |\n")
	sb.WriteString("|---|--------|-------|-------|\n")
	for _, r := range env.Scoring.Ranked {
		marker := ""
		if r.ID == env.Scoring.Best {
			marker = " ⭐"
		}
		fmt.Fprintf(&sb, "| %d | %s%s | %.2f | %.3f |\n",
			r.Rank, titles[r.ID], marker, prices[r.ID], r.TotalScore)
	}

	if len(env.Explanation.Tradeoffs) > 0 {
		sb.WriteString("\n## Trade-offs\n\n")
		for _, tr := range env.Explanation.Tradeoffs {
			fmt.Fprintf(&sb, "- %s\n", tr.Note)
		}
	}

	for _, opt := range env.Explanation.PerOption {
		fmt.Fprintf(&sb, "\n### %s\n", opt.Title)
		for _, p := range opt.Pros {
			fmt.Fprintf(&sb, "- 👍 %s\n", p)
		}
		for _, c := range opt.Cons {
			fmt.Fprintf(&sb, "- 👎 %s\n", c)
		}
	}

	fmt.Fprintf(&sb, "\n_Confidence %.2f, %d steps, %d ms, ended: %s_\n",
		env.Scoring.Confidence, env.Metadata.StepCount,
		env.Metadata.LatencyMS, env.Metadata.TerminationReason)
	return sb.String()
}
