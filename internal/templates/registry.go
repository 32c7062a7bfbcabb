package templates

import (
	"fmt"
	"strings"
)

// Config is the raw table a Registry is built from.
type Config struct {
	Industries []string
	Sections   map[string][]string
	Guidance   map[string]string
}

// Registry maps industries to ordered section titles and titles to guidance.
// It is never mutated after New returns, so one value can serve every request.
type Registry struct {
	industries []string
	sections   map[string][]string
	guidance   map[string]string
}

// Default returns the built-in registry.
func Default() *Registry {
	r, err := New(Config{
		Industries: industryOrder,
		Sections:   defaultSections(),
		Guidance:   defaultGuidance(),
	})
	if err != nil {
		panic(fmt.Sprintf("templates: built-in catalog invalid: %v", err))
	}
	return r
}

// New validates cfg and copies it into a Registry.
func New(cfg Config) (*Registry, error) {
	if _, ok := cfg.Sections[Fallback]; !ok {
		return nil, fmt.Errorf("fallback industry %q missing", Fallback)
	}

	r := &Registry{
		industries: append([]string(nil), cfg.Industries...),
		sections:   make(map[string][]string, len(cfg.Sections)),
		guidance:   make(map[string]string, len(cfg.Guidance)),
	}

	for _, ind := range cfg.Industries {
		if _, ok := cfg.Sections[ind]; !ok {
			return nil, fmt.Errorf("industry %q has no section list", ind)
		}
	}

	for ind, titles := range cfg.Sections {
		if len(titles) == 0 {
			return nil, fmt.Errorf("industry %q has an empty section list", ind)
		}
		seen := make(map[string]struct{}, len(titles))
		for _, t := range titles {
			k := strings.ToLower(strings.TrimSpace(t))
			if k == "" {
				return nil, fmt.Errorf("industry %q has a blank title", ind)
			}
			if _, dup := seen[k]; dup {
				return nil, fmt.Errorf("industry %q lists %q twice", ind, t)
			}
			seen[k] = struct{}{}
		}
		r.sections[ind] = append([]string(nil), titles...)
	}

	for k, v := range cfg.Guidance {
		r.guidance[k] = v
	}
	return r, nil
}

// Industries lists the known industry labels in display order.
func (r *Registry) Industries() []string {
	return append([]string(nil), r.industries...)
}

func (r *Registry) IsIndustry(s string) bool {
	_, ok := r.sections[s]
	return ok
}

// SectionsFor returns a copy of the ordered titles for industry, or the
// fallback list when the industry is unknown.
func (r *Registry) SectionsFor(industry string) []string {
	titles, ok := r.sections[industry]
	if !ok {
		titles = r.sections[Fallback]
	}
	return append([]string(nil), titles...)
}

// GuidanceFor returns the static guidance for title or a generic sentence.
func (r *Registry) GuidanceFor(title string) string {
	if g, ok := r.guidance[title]; ok {
		return g
	}
	return genericGuidance(title)
}

func (r *Registry) staticGuidance(title string) (string, bool) {
	g, ok := r.guidance[title]
	return g, ok
}

func genericGuidance(title string) string {
	return fmt.Sprintf("Document relevant information for %s.", title)
}

// Plan derives the per-call section plan for industry.
func (r *Registry) Plan(industry string) Plan {
	return Plan{reg: r, titles: r.SectionsFor(industry)}
}

// Plan is an ordered title list plus per-call guidance overrides.
// Its methods return new values and leave the receiver untouched.
type Plan struct {
	reg       *Registry
	titles    []string
	overrides map[string]string
}

// Titles returns the ordered section titles.
func (p Plan) Titles() []string {
	return append([]string(nil), p.titles...)
}

func (p Plan) Len() int { return len(p.titles) }

// Contains reports whether title is already planned, ignoring case.
func (p Plan) Contains(title string) bool {
	for _, t := range p.titles {
		if strings.EqualFold(t, title) {
			return true
		}
	}
	return false
}

// With appends title when it is not already planned. guidance is used
// only when the registry has no static text for the title.
func (p Plan) With(title, guidance string) Plan {
	title = strings.TrimSpace(title)
	if title == "" || p.Contains(title) {
		return p
	}

	next := Plan{
		reg:       p.reg,
		titles:    append(append([]string(nil), p.titles...), title),
		overrides: make(map[string]string, len(p.overrides)+1),
	}
	for k, v := range p.overrides {
		next.overrides[k] = v
	}
	if g := strings.TrimSpace(guidance); g != "" {
		next.overrides[title] = g
	}
	return next
}

// Guidance resolves the text for title: static table, then plan override,
// then the generic sentence.
func (p Plan) Guidance(title string) string {
	if p.reg != nil {
		if g, ok := p.reg.staticGuidance(title); ok {
			return g
		}
	}
	if g, ok := p.overrides[title]; ok {
		return g
	}
	return genericGuidance(title)
}
