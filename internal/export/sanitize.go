package export

import (
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

// AllowedElements is the markup the editor produces and the renderer
// understands. Every other element is stripped; no attributes survive.
var AllowedElements = []string{
	"h1", "h2", "h3", "h4", "h5", "h6",
	"p", "br", "strong", "b", "em", "i", "u", "ul", "ol", "li",
}

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

func contentPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.NewPolicy()
		policy.AllowElements(AllowedElements...)
	})
	return policy
}

// Sanitize reduces html to the allowed subset. script and style elements
// are removed together with their contents.
func Sanitize(html string) string {
	return contentPolicy().Sanitize(html)
}
