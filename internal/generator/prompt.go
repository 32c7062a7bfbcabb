package generator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/GoSim-25-26J-441/research-doc-backend/internal/documents"
	"github.com/GoSim-25-26J-441/research-doc-backend/internal/templates"
)

const systemPrompt = `You are a senior UX and market researcher writing a structured research document.
Write in clear, specific, professional prose. Respond with one JSON object only.`

func buildPrompt(in Input, plan templates.Plan) string {
	var b strings.Builder

	b.WriteString("Create a research document for the following project.\n\n")
	b.WriteString("## Project context\n")
	fmt.Fprintf(&b, "Problem statement: %s\n", strings.TrimSpace(in.ProblemStatement))
	fmt.Fprintf(&b, "Industry: %s\n", strings.TrimSpace(in.Industry))
	if v := strings.TrimSpace(in.Timeline); v != "" {
		fmt.Fprintf(&b, "Timeline: %s\n", v)
	}
	if v := strings.TrimSpace(in.TargetUsers); v != "" {
		fmt.Fprintf(&b, "Target users: %s\n", v)
	}
	if v := strings.TrimSpace(in.AdditionalContext); v != "" {
		fmt.Fprintf(&b, "Additional context: %s\n", v)
	}

	if in.Analysis != nil {
		writeImport(&b, in.Analysis)
	}

	b.WriteString("\n## Sections\nWrite every section below, in this order. Guidance for each follows the dash.\n")
	for i, title := range plan.Titles() {
		fmt.Fprintf(&b, "%d. %s - %s\n", i+1, title, plan.Guidance(title))
	}

	b.WriteString(`
## Rules
- Every section must be distinct. Do not repeat sentences or boilerplate across sections.
- Include concrete quantitative detail appropriate to the industry: percentages, sample sizes, costs, timeframes.
- End every section with at least one actionable recommendation.
- Later sections such as Key Findings, Implications and Recommendations must reference by name the specific personas, metric values and findings introduced in earlier sections.
- Aim for 150 to 250 words per section.

## Format
Return a JSON object whose keys are the exact section titles above and whose values are HTML strings.
Use only <h3>, <p>, <strong>, <em>, <ul>, <ol> and <li>.
Do not use markdown: no #, no **, no leading dashes or asterisks for lists.
`)
	return b.String()
}

func writeImport(b *strings.Builder, a *documents.Analysis) {
	b.WriteString("\n## Imported document\n")
	b.WriteString("The user uploaded an existing document. Build on its content rather than starting over.\n")
	if a.Summary != "" {
		fmt.Fprintf(b, "Summary: %s\n", a.Summary)
	}
	if len(a.ExistingSections) > 0 {
		b.WriteString("Existing sections:\n")
		for _, s := range a.ExistingSections {
			if s.Summary != "" {
				fmt.Fprintf(b, "- %s: %s\n", s.Title, s.Summary)
			} else {
				fmt.Fprintf(b, "- %s\n", s.Title)
			}
		}
	}
	if len(a.ExtractedContent) > 0 {
		b.WriteString("Content already extracted (extend it, keep its facts):\n")
		keys := make([]string, 0, len(a.ExtractedContent))
		for k := range a.ExtractedContent {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(b, "### %s\n%s\n", k, a.ExtractedContent[k])
		}
	}
}
