package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/memoria-lab/memoria/pkg/domain/types"
)

// Turn is one user or assistant utterance. Turns are immutable once
// created; the store appends them to the session log and never mutates them.
type Turn struct {
	ID        types.TurnID
	Role      types.Role
	Text      string
	CreatedAt time.Time
}

// NewTurn creates a Turn with a fresh ID and timestamp.
func NewTurn(role types.Role, text string) Turn {
	return Turn{
		ID:        types.TurnID(uuid.New().String()),
		Role:      role,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
}

// Validate checks if the Turn is valid
func (x Turn) Validate() error {
	if err := x.Role.Validate(); err != nil {
		return goerr.Wrap(err, "invalid turn role")
	}
	if x.Text == "" {
		return goerr.New("turn text cannot be empty", goerr.V("id", x.ID))
	}
	return nil
}
