package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// Default recall parameters. ReplayDepth and TopK follow the conventional
// short-term window of five turns and per-namespace top three items.
const (
	DefaultReplayDepth = 5
	DefaultTopK        = 3
	DefaultBudgetChars = 4000
	DefaultTimeout     = 2 * time.Second
)

// RecallPolicy controls how much prior context is recalled and injected per
// turn. It is loaded once at startup and treated as immutable.
type RecallPolicy struct {
	// ReplayDepth is the number of recent turns replayed at session start.
	ReplayDepth int `toml:"replay_depth"`

	// TopK is the per-namespace retrieval size.
	TopK int `toml:"top_k"`

	// BudgetChars bounds the total injected retrieval text per turn.
	// Exceeding items are dropped whole, lowest relevance first.
	BudgetChars int `toml:"budget_chars"`

	// Timeout bounds each store read. On timeout the read degrades to an
	// empty result instead of stalling the turn.
	Timeout time.Duration `toml:"-"`

	// Namespaces is the ordered list of namespaces queried per user turn.
	Namespaces []Namespace `toml:"namespace"`
}

// DefaultRecallPolicy returns the policy used when no config file is given.
// The namespace set mirrors a customer-support deployment: preferences
// first, then product issues.
func DefaultRecallPolicy() RecallPolicy {
	return RecallPolicy{
		ReplayDepth: DefaultReplayDepth,
		TopK:        DefaultTopK,
		BudgetChars: DefaultBudgetChars,
		Timeout:     DefaultTimeout,
		Namespaces: []Namespace{
			{
				Kind:     "preferences",
				Template: "preferences/{actor}",
				Header:   "These are known user preferences:",
			},
			{
				Kind:     "issues",
				Template: "issues/{actor}/products",
				Header:   "These are known user issues:",
			},
		},
	}
}

// Validate checks if the RecallPolicy is valid
func (x RecallPolicy) Validate() error {
	if x.ReplayDepth < 0 {
		return goerr.New("replay depth must not be negative", goerr.V("replay_depth", x.ReplayDepth))
	}
	if x.TopK < 1 {
		return goerr.New("top_k must be positive", goerr.V("top_k", x.TopK))
	}
	if x.BudgetChars < 1 {
		return goerr.New("budget_chars must be positive", goerr.V("budget_chars", x.BudgetChars))
	}
	if x.Timeout <= 0 {
		return goerr.New("timeout must be positive", goerr.V("timeout", x.Timeout))
	}

	kinds := make(map[string]bool, len(x.Namespaces))
	for _, ns := range x.Namespaces {
		if err := ns.Validate(); err != nil {
			return goerr.Wrap(err, "invalid namespace")
		}
		if kinds[ns.Kind] {
			return goerr.New("duplicate namespace kind", goerr.V("kind", ns.Kind))
		}
		kinds[ns.Kind] = true
	}
	return nil
}
