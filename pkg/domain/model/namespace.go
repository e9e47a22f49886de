package model

import (
	"regexp"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// Namespace is a caller-supplied path template partitioning long-term memory
// by kind of derived knowledge, e.g. "preferences/{actor}" or
// "issues/{actor}/products". Namespaces never hold raw turns, only
// consolidated items.
type Namespace struct {
	// Kind is a short identifier used in config and logs.
	Kind string `toml:"kind"`

	// Template is the path template. Placeholders {actor} and {session}
	// are expanded per scope.
	Template string `toml:"template"`

	// Header introduces retrieved items of this namespace in the injected
	// context block, e.g. "These are known user preferences:".
	Header string `toml:"header"`
}

var kindPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Validate checks if the Namespace is valid
func (x Namespace) Validate() error {
	if !kindPattern.MatchString(x.Kind) {
		return goerr.New("namespace kind must be lowercase alphanumeric with hyphens", goerr.V("kind", x.Kind))
	}
	if !strings.Contains(x.Template, "{actor}") {
		return goerr.New("namespace template must contain {actor}", goerr.V("template", x.Template))
	}
	if x.Header == "" {
		return goerr.New("namespace header is required", goerr.V("kind", x.Kind))
	}
	return nil
}

// Render expands the template placeholders for the given scope.
func (x Namespace) Render(scope Scope) string {
	path := strings.ReplaceAll(x.Template, "{actor}", scope.Actor.String())
	return strings.ReplaceAll(path, "{session}", scope.Session.String())
}
