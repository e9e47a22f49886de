package model

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/memoria-lab/memoria/pkg/domain/types"
)

// Scope identifies whose memory and which conversation a turn belongs to.
// A zero Scope means the conversation proceeds without memory augmentation.
type Scope struct {
	Actor   types.ActorID
	Session types.SessionID
}

// IsZero reports whether no identity could be resolved for the conversation.
func (x Scope) IsZero() bool {
	return x.Actor == "" && x.Session == ""
}

// Validate checks if the Scope is valid
func (x Scope) Validate() error {
	if err := x.Actor.Validate(); err != nil {
		return goerr.Wrap(err, "invalid scope actor")
	}
	if err := x.Session.Validate(); err != nil {
		return goerr.Wrap(err, "invalid scope session")
	}
	return nil
}
