package documents

import (
	"fmt"
	"strings"
)

const analysisSystemPrompt = `You are a research analyst. You read documents and describe their structure.
Reply with a single JSON object and nothing else.`

func analysisPrompt(filename, text string, industries []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze the document %q and return JSON with exactly this shape:\n", filename)
	b.WriteString(`{
  "summary": "2-3 sentence summary of the document",
  "detectedIndustry": "one of the allowed industries",
  "extractedProblemStatement": "the core problem the document addresses",
  "existingSections": [{"title": "section title", "summary": "what it covers"}],
  "suggestedAdditionalSections": [{"title": "section title", "reason": "why it would strengthen the research"}],
  "extractedContent": {"section title": "<p>HTML content already present in the document</p>"}
}
`)
	b.WriteString("\nAllowed values for detectedIndustry: ")
	b.WriteString(strings.Join(industries, ", "))
	b.WriteString(".\nUse only <p>, <ul>, <ol>, <li>, <strong> and <em> in extractedContent.\n\n")
	b.WriteString("Document text:\n")
	b.WriteString(text)
	return b.String()
}
