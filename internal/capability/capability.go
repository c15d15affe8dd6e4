// Package capability holds the closed set of external providers a task can
// be routed to. Providers are interchangeable and selected by name.
package capability

import "context"

// Provider categories, used by the decision engine's rule table.
const (
	NameWebSearch = "web_search"
	NameKnowledge = "knowledge"
	NameSummarize = "summarize"
)

// PriorityOrder is the fixed tie-break order for provider selection.
var PriorityOrder = []string{NameWebSearch, NameKnowledge, NameSummarize}

// Options tunes a single provider invocation.
type Options struct {
	Model           string
	Temperature     float64
	MaxOutputTokens int
}

// Provider resolves one task query into a text payload.
type Provider interface {
	Name() string
	Invoke(ctx context.Context, query string, opts Options) (string, error)
}
