package usecase

import "github.com/m-mizutani/goerr/v2"

// TagWriteBack marks write-path failures. The turn already completed for
// the user when these occur; only durability of memory is at risk, so the
// caller records the error instead of failing the turn.
var TagWriteBack = goerr.NewTag("writeback")

// Context keys for error values
const (
	ActorKey   = "actor"
	SessionKey = "session"
	TurnKey    = "turn_id"
	RoleKey    = "role"
)
