package decision

import (
	"fmt"
	"strings"
)

// RenderMarkdown renders DecisionResult as a Markdown section: one
// checklist with GO criteria first, then NO-GO triggers.
func RenderMarkdown(result *DecisionResult) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "### Decision: %s\n\n", result.Decision)

	sb.WriteString("| Check | Type | Threshold | Actual | Result |\n")
	sb.WriteString("|-------|------|-----------|--------|--------|\n")
	for _, c := range result.GOCriteria {
		fmt.Fprintf(&sb, "| %s | criterion | %s | %s | %s |\n",
			c.Name, c.Threshold, c.Actual, label(c.Pass, "pass", "fail"))
	}
	for _, c := range result.NOGOChecks {
		fmt.Fprintf(&sb, "| %s | trigger | %s | %s | %s |\n",
			c.Name, c.Threshold, c.Actual, label(c.Pass, "clear", "triggered"))
	}
	sb.WriteString("\n")

	var blockers []CriterionResult
	for _, group := range [][]CriterionResult{result.GOCriteria, result.NOGOChecks} {
		for _, c := range group {
			if !c.Pass {
				blockers = append(blockers, c)
			}
		}
	}
	if len(blockers) == 0 {
		sb.WriteString("Meets every investment threshold.\n")
		return sb.String()
	}

	sb.WriteString("Blocked by:\n")
	for _, b := range blockers {
		fmt.Fprintf(&sb, "- %s (actual: %s)\n", b.Name, b.Actual)
	}
	return sb.String()
}

func label(pass bool, yes, no string) string {
	if pass {
		return yes
	}
	return no
}
