package generator

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/GoSim-25-26J-441/research-doc-backend/internal/llm"
	"github.com/GoSim-25-26J-441/research-doc-backend/internal/templates"
)

const problemExcerptLen = 100

// Draft is one generated section ready to persist.
type Draft struct {
	Title      string `json:"title"`
	Content    string `json:"content"`
	OrderIndex int    `json:"order_index"`
}

// entry is one title/content pair in the order the model emitted it.
type entry struct {
	key   string
	value string
}

// parseSections extracts the {title: html} object from a model reply,
// trying the fenced block first and then the first balanced object.
func parseSections(reply string) ([]entry, bool) {
	for _, candidate := range llm.Candidates(reply) {
		if entries, ok := decodeOrdered(candidate); ok {
			return entries, true
		}
	}
	return nil, false
}

// decodeOrdered reads a JSON object keeping key order. Non-string values
// are skipped.
func decodeOrdered(text string) ([]entry, bool) {
	dec := json.NewDecoder(strings.NewReader(text))
	tok, err := dec.Token()
	if err != nil {
		return nil, false
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, false
	}

	var out []entry
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, false
		}
		key, ok := tok.(string)
		if !ok {
			return nil, false
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, false
		}
		var value string
		if err := json.Unmarshal(raw, &value); err != nil {
			continue
		}
		out = append(out, entry{key: key, value: value})
	}
	if _, err := dec.Token(); err != nil {
		return nil, false
	}
	return out, true
}

// Reconcile maps a model reply onto the plan's titles. The plan, not the
// reply, decides which sections exist and in what order. It returns the
// drafts and how many of them hold placeholder content.
func Reconcile(plan templates.Plan, reply, problemStatement string) ([]Draft, int) {
	titles := plan.Titles()
	entries, ok := parseSections(reply)
	if !ok {
		entries = stubEntries(plan, titles)
	}

	drafts := make([]Draft, len(titles))
	placeholders := 0
	for i, title := range titles {
		content, found := match(title, entries)
		if !found {
			content = placeholder(plan.Guidance(title), problemStatement)
			placeholders++
		} else if !ok {
			placeholders++
		}
		drafts[i] = Draft{Title: title, Content: content, OrderIndex: i}
	}
	return drafts, placeholders
}

// match resolves content for title: exact key, then case-insensitive key,
// then case-insensitive containment either way. Earlier entries win.
func match(title string, entries []entry) (string, bool) {
	for _, e := range entries {
		if e.key == title && usable(e.value) {
			return e.value, true
		}
	}
	for _, e := range entries {
		if strings.EqualFold(e.key, title) && usable(e.value) {
			return e.value, true
		}
	}
	lt := strings.ToLower(strings.TrimSpace(title))
	for _, e := range entries {
		lk := strings.ToLower(strings.TrimSpace(e.key))
		if lk == "" || lt == "" || !usable(e.value) {
			continue
		}
		if strings.Contains(lk, lt) || strings.Contains(lt, lk) {
			return e.value, true
		}
	}
	return "", false
}

func usable(v string) bool {
	return strings.TrimSpace(v) != ""
}

func stubEntries(plan templates.Plan, titles []string) []entry {
	out := make([]entry, len(titles))
	for i, t := range titles {
		out[i] = entry{
			key:   t,
			value: fmt.Sprintf("<p><em>%s</em></p><p>Add your content here.</p>", html.EscapeString(plan.Guidance(t))),
		}
	}
	return out
}

func placeholder(guidance, problemStatement string) string {
	return fmt.Sprintf("<p><em>%s</em></p><p>Context: %s</p>",
		html.EscapeString(guidance),
		html.EscapeString(excerpt(strings.TrimSpace(problemStatement), problemExcerptLen)))
}

func excerpt(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "..."
}
