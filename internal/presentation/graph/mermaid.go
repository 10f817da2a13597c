// Package graph renders an execution plan as a Mermaid flowchart, used
// by the CLI to preview what a run will do.
package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/forager/pkg/plan"
)

// GenerateMermaid produces Mermaid flowchart syntax for a plan.
// Semantic shapes:
// - tool-backed steps (search): [[Subroutine]]
// - finalize: ((Circle))
// - everything else: [Rectangle]
func GenerateMermaid(p plan.Plan) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	ids := make([]string, len(p.Steps))
	for i, step := range p.Steps {
		id := fmt.Sprintf("s%d", i)
		ids[i] = id

		label := string(step.Kind)
		if step.Tool != "" {
			label = fmt.Sprintf("%s: %s", step.Kind, step.Tool)
		}

		opener, closer := "[", "]"
		switch step.Kind {
		case plan.StepSearch:
			opener, closer = "[[", "]]"
		case plan.StepFinalize:
			opener, closer = "((", "))"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", id, opener, sanitizeLabel(label), closer)
	}

	for i := 1; i < len(ids); i++ {
		fmt.Fprintf(&sb, "    %s --> %s\n", ids[i-1], ids[i])
	}

	if p.Rationale != "" {
		fmt.Fprintf(&sb, "    %%%% %s\n", sanitizeLabel(p.Rationale))
	}
	return sb.String()
}

func sanitizeLabel(s string) string {
	s = strings.ReplaceAll(s, `"`, "'")
	return strings.ReplaceAll(s, "\n", " ")
}
