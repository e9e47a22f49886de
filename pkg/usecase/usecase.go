package usecase

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/memoria-lab/memoria/pkg/domain/interfaces"
	"github.com/memoria-lab/memoria/pkg/domain/model"
	"github.com/memoria-lab/memoria/pkg/domain/types"
)

type UseCases struct {
	store    interfaces.Store
	policy   model.RecallPolicy
	metrics  *Metrics
	registry *HookRegistry
	extras   []Hook

	scopeMu sync.Mutex
	scopes  map[model.Scope]*sync.Mutex
}

type Option func(*UseCases)

func WithPolicy(policy model.RecallPolicy) Option {
	return func(x *UseCases) {
		x.policy = policy
	}
}

func WithMetrics(m *Metrics) Option {
	return func(x *UseCases) {
		x.metrics = m
	}
}

// WithHook appends an extra lifecycle hook after the built-in recall and
// write-back hooks.
func WithHook(h Hook) Option {
	return func(x *UseCases) {
		x.extras = append(x.extras, h)
	}
}

func New(store interfaces.Store, options ...Option) *UseCases {
	uc := &UseCases{
		store:  store,
		policy: model.DefaultRecallPolicy(),
		scopes: map[model.Scope]*sync.Mutex{},
	}
	for _, opt := range options {
		opt(uc)
	}
	uc.registry = NewHookRegistry(
		NewRecall(store, uc.policy, uc.metrics),
		NewWriteBack(store, uc.metrics),
	)
	for _, h := range uc.extras {
		uc.registry.Register(h)
	}
	return uc
}

// lockScope serializes memory operations per scope. A second request for
// the same scope blocks until the first finishes, so replay and write-back
// never interleave within one conversation.
func (x *UseCases) lockScope(scope model.Scope) func() {
	x.scopeMu.Lock()
	mu, ok := x.scopes[scope]
	if !ok {
		mu = &sync.Mutex{}
		x.scopes[scope] = mu
	}
	x.scopeMu.Unlock()

	mu.Lock()
	return mu.Unlock
}

// OnSessionStart assembles the working context for a new or resumed scope.
// The returned context is never nil; a degraded store yields an empty one.
func (x *UseCases) OnSessionStart(ctx context.Context, scope model.Scope) (*model.WorkingContext, error) {
	if scope.IsZero() {
		return &model.WorkingContext{}, nil
	}
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	unlock := x.lockScope(scope)
	defer unlock()

	ev := &SessionStartEvent{Scope: scope}
	if err := x.registry.FireSessionStart(ctx, ev); err != nil {
		return nil, err
	}
	if ev.Context == nil {
		ev.Context = &model.WorkingContext{}
	}
	return ev.Context, nil
}

// OnUserTurn records a user turn and returns the text the reasoning engine
// should see, possibly augmented with retrieved memory. The original text
// is persisted verbatim. A zero scope passes the text through untouched.
// The returned error, when non-nil, reports a write-back failure that the
// caller may surface but must not treat as fatal: the augmented text is
// still valid.
func (x *UseCases) OnUserTurn(ctx context.Context, scope model.Scope, text string) (string, error) {
	if scope.IsZero() {
		return text, nil
	}
	if err := scope.Validate(); err != nil {
		return text, err
	}
	turn := model.NewTurn(types.RoleUser, text)
	if err := turn.Validate(); err != nil {
		return text, goerr.Wrap(err, "invalid user turn")
	}

	unlock := x.lockScope(scope)
	defer unlock()

	ev := &TurnAppendedEvent{Scope: scope, Turn: turn}
	err := x.registry.FireTurnAppended(ctx, ev)
	if ev.Augmented != "" {
		return ev.Augmented, err
	}
	return text, err
}

// OnTurnCompleted records an assistant turn. Assistant turns are persisted
// the same way user turns are so replay restores both sides of the
// conversation.
func (x *UseCases) OnTurnCompleted(ctx context.Context, scope model.Scope, text string) error {
	if scope.IsZero() {
		return nil
	}
	if err := scope.Validate(); err != nil {
		return err
	}
	turn := model.NewTurn(types.RoleAssistant, text)
	if err := turn.Validate(); err != nil {
		return goerr.Wrap(err, "invalid assistant turn")
	}

	unlock := x.lockScope(scope)
	defer unlock()

	ev := &TurnAppendedEvent{Scope: scope, Turn: turn}
	return x.registry.FireTurnAppended(ctx, ev)
}

func (x *UseCases) Policy() model.RecallPolicy {
	return x.policy
}
