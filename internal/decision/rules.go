package decision

import (
	"strings"

	"missiond/internal/capability"
	"missiond/internal/mission"
)

// DefaultProvider is the canonical fallback when no rule matches.
const DefaultProvider = capability.NameWebSearch

// Keyword rules per provider. The most specific (longest) matched keyword
// wins; ties resolve to the fixed priority order.
var keywordRules = map[string][]string{
	capability.NameWebSearch: {
		"search", "find", "research", "latest", "news",
		"current", "recent", "look up", "web", "browse",
	},
	capability.NameKnowledge: {
		"explain", "what is", "define", "describe",
		"why", "how does", "answer", "compare",
	},
	capability.NameSummarize: {
		"summarize", "summary", "condense", "tl;dr",
		"key points", "shorten", "digest",
	},
}

func decideByRules(description string) Decision {
	lower := strings.ToLower(description)

	best := ""
	bestLen := 0
	// Walk providers in priority order so equal-length matches resolve
	// deterministically.
	for _, provider := range capability.PriorityOrder {
		for _, kw := range keywordRules[provider] {
			if strings.Contains(lower, kw) && len(kw) > bestLen {
				best = provider
				bestLen = len(kw)
			}
		}
	}

	if best == "" {
		best = DefaultProvider
	}
	return Decision{Provider: best}
}

// redecideByRules never escalates: the executor's retry ceiling is the
// terminal authority, and the engine still owes it a usable decision for
// the remaining attempt. Escalation is reserved for the advanced strategy.
func redecideByRules(task *mission.Task, failure Failure) Remediation {
	// The validator already classified the failure; honor an explicit
	// alternative-source suggestion.
	if failure.Validation != nil && failure.Validation.SuggestedAction == mission.ActionAlternativeSource {
		return Remediation{Action: ActionAlternativeSource, NextProvider: nextProvider(failure.Provider)}
	}

	// First retry stays on the same provider (transient errors usually
	// clear); later retries move on.
	if task.Retries <= 1 {
		return Remediation{Action: ActionRetry, NextProvider: failure.Provider}
	}
	return Remediation{Action: ActionAlternativeSource, NextProvider: nextProvider(failure.Provider)}
}

// nextProvider returns the provider after the given one in priority order,
// wrapping around. An unknown provider resolves to the default.
func nextProvider(current string) string {
	for i, name := range capability.PriorityOrder {
		if name == current {
			return capability.PriorityOrder[(i+1)%len(capability.PriorityOrder)]
		}
	}
	return DefaultProvider
}

// KnownProvider reports whether name is part of the closed provider set.
func KnownProvider(name string) bool {
	for _, n := range capability.PriorityOrder {
		if n == name {
			return true
		}
	}
	return false
}
