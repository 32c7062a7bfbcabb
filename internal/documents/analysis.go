package documents

import (
	"encoding/json"
	"strings"

	"github.com/GoSim-25-26J-441/research-doc-backend/internal/llm"
	"github.com/GoSim-25-26J-441/research-doc-backend/internal/templates"
)

// Analysis is the structured summary of an uploaded document.
type Analysis struct {
	Summary                   string             `json:"summary"`
	DetectedIndustry          string             `json:"detectedIndustry"`
	ExtractedProblemStatement string             `json:"extractedProblemStatement"`
	ExistingSections          []ExistingSection  `json:"existingSections"`
	SuggestedSections         []SuggestedSection `json:"suggestedAdditionalSections"`
	ExtractedContent          map[string]string  `json:"extractedContent"`
}

type ExistingSection struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

type SuggestedSection struct {
	Title  string `json:"title"`
	Reason string `json:"reason"`
}

// DefaultAnalysis is returned when the model reply cannot be parsed.
func DefaultAnalysis() *Analysis {
	return &Analysis{
		DetectedIndustry:  templates.Fallback,
		ExistingSections:  []ExistingSection{},
		SuggestedSections: []SuggestedSection{},
		ExtractedContent:  map[string]string{},
	}
}

// ParseAnalysis decodes a model reply. It never fails: an unusable reply
// yields DefaultAnalysis. The bool reports whether the reply parsed.
func ParseAnalysis(reply string, reg *templates.Registry) (*Analysis, bool) {
	for _, candidate := range llm.Candidates(reply) {
		var a Analysis
		if err := json.Unmarshal([]byte(candidate), &a); err != nil {
			continue
		}
		a.normalize(reg)
		return &a, true
	}
	return DefaultAnalysis(), false
}

func (a *Analysis) normalize(reg *templates.Registry) {
	a.Summary = strings.TrimSpace(a.Summary)
	a.ExtractedProblemStatement = strings.TrimSpace(a.ExtractedProblemStatement)

	a.DetectedIndustry = strings.TrimSpace(a.DetectedIndustry)
	if reg == nil || !reg.IsIndustry(a.DetectedIndustry) {
		a.DetectedIndustry = templates.Fallback
	}

	existing := make([]ExistingSection, 0, len(a.ExistingSections))
	for _, s := range a.ExistingSections {
		if t := strings.TrimSpace(s.Title); t != "" {
			existing = append(existing, ExistingSection{Title: t, Summary: strings.TrimSpace(s.Summary)})
		}
	}
	a.ExistingSections = existing

	var base []string
	if reg != nil {
		base = reg.SectionsFor(a.DetectedIndustry)
	}
	suggested := make([]SuggestedSection, 0, len(a.SuggestedSections))
	for _, s := range a.SuggestedSections {
		t := strings.TrimSpace(s.Title)
		if t == "" || containsFold(base, t) || suggestedContains(suggested, t) {
			continue
		}
		suggested = append(suggested, SuggestedSection{Title: t, Reason: strings.TrimSpace(s.Reason)})
	}
	a.SuggestedSections = suggested

	content := make(map[string]string, len(a.ExtractedContent))
	for k, v := range a.ExtractedContent {
		if k = strings.TrimSpace(k); k != "" && strings.TrimSpace(v) != "" {
			content[k] = v
		}
	}
	a.ExtractedContent = content
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

func suggestedContains(list []SuggestedSection, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v.Title, s) {
			return true
		}
	}
	return false
}
