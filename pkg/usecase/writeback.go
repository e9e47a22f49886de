package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/memoria-lab/memoria/pkg/domain/interfaces"
)

// WriteBack persists each completed turn to the store. Exactly one
// attempt is made per turn: a failure is tagged and surfaced so the
// caller can report it, but never retried, since the conversation has
// already moved on.
type WriteBack struct {
	store   interfaces.Store
	metrics *Metrics
}

func NewWriteBack(store interfaces.Store, metrics *Metrics) *WriteBack {
	return &WriteBack{store: store, metrics: metrics}
}

func (x *WriteBack) OnSessionStart(ctx context.Context, ev *SessionStartEvent) error {
	return nil
}

func (x *WriteBack) OnTurnAppended(ctx context.Context, ev *TurnAppendedEvent) error {
	if err := x.store.AppendTurn(ctx, ev.Scope, ev.Turn); err != nil {
		x.metrics.WriteBackFailed(string(ev.Turn.Role))
		return goerr.Wrap(err, "failed to persist turn",
			goerr.T(TagWriteBack),
			goerr.V(ActorKey, ev.Scope.Actor),
			goerr.V(SessionKey, ev.Scope.Session),
			goerr.V(TurnKey, ev.Turn.ID),
			goerr.V(RoleKey, ev.Turn.Role),
		)
	}
	x.metrics.TurnPersisted(string(ev.Turn.Role))
	return nil
}
