package types

import (
	"regexp"

	"github.com/m-mizutani/goerr/v2"
)

// ActorID identifies an end user across sessions. It is derived from a
// stable identifying token by the identity resolver, never from raw input.
type ActorID string

// SessionID identifies one continuous conversation of an actor.
type SessionID string

// TurnID identifies a single persisted turn.
type TurnID string

var actorIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// Validate checks if the ActorID is valid
func (x ActorID) Validate() error {
	if x == "" {
		return goerr.New("actor ID cannot be empty")
	}
	if !actorIDPattern.MatchString(string(x)) {
		return goerr.New("actor ID must be lowercase alphanumeric with hyphens or underscores", goerr.V("id", x))
	}
	return nil
}

// String returns the string representation of ActorID
func (x ActorID) String() string {
	return string(x)
}

// Validate checks if the SessionID is valid
func (x SessionID) Validate() error {
	if x == "" {
		return goerr.New("session ID cannot be empty")
	}
	return nil
}

// String returns the string representation of SessionID
func (x SessionID) String() string {
	return string(x)
}

// String returns the string representation of TurnID
func (x TurnID) String() string {
	return string(x)
}
