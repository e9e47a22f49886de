package usecase

import (
	"context"
	"errors"

	"github.com/memoria-lab/memoria/pkg/domain/model"
	"github.com/memoria-lab/memoria/pkg/utils/logging"
)

// SessionStartEvent is dispatched once per scope before the reasoning
// engine sees the first user turn. Hooks may fill Context with replayed
// history.
type SessionStartEvent struct {
	Scope   model.Scope
	Context *model.WorkingContext
}

// TurnAppendedEvent is dispatched once per completed turn, for both roles.
// Hooks may fill Augmented with a retrieval-enriched variant of a user
// turn's text; the original Turn is never mutated.
type TurnAppendedEvent struct {
	Scope     model.Scope
	Turn      model.Turn
	Augmented string
}

// Hook is the capability interface for lifecycle extensions attaching
// memory concerns to the conversation without coupling the reasoning engine
// to them.
type Hook interface {
	OnSessionStart(ctx context.Context, ev *SessionStartEvent) error
	OnTurnAppended(ctx context.Context, ev *TurnAppendedEvent) error
}

// HookRegistry dispatches lifecycle events to registered hooks in
// registration order. A failing or panicking hook never prevents the
// remaining hooks from running: panics are logged and swallowed, returned
// errors are joined and handed to the dispatcher's caller as one non-fatal
// error.
type HookRegistry struct {
	hooks []Hook
}

func NewHookRegistry(hooks ...Hook) *HookRegistry {
	return &HookRegistry{hooks: hooks}
}

func (x *HookRegistry) Register(h Hook) {
	x.hooks = append(x.hooks, h)
}

func (x *HookRegistry) FireSessionStart(ctx context.Context, ev *SessionStartEvent) error {
	var errs []error
	for _, h := range x.hooks {
		if err := dispatch(ctx, func() error { return h.OnSessionStart(ctx, ev) }); err != nil {
			errs = append(errs, err)
		}
	}
	return joinErrors(errs)
}

func (x *HookRegistry) FireTurnAppended(ctx context.Context, ev *TurnAppendedEvent) error {
	var errs []error
	for _, h := range x.hooks {
		if err := dispatch(ctx, func() error { return h.OnTurnAppended(ctx, ev) }); err != nil {
			errs = append(errs, err)
		}
	}
	return joinErrors(errs)
}

func joinErrors(errs []error) error {
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	default:
		return errors.Join(errs...)
	}
}

// dispatch isolates one hook invocation: a panic is converted to a log
// record, not an error, so it cannot crash the turn.
func dispatch(ctx context.Context, fn func() error) (hookErr error) {
	defer func() {
		if r := recover(); r != nil {
			logging.From(ctx).Error("panic in lifecycle hook", "panic", r)
			hookErr = nil
		}
	}()
	return fn()
}
