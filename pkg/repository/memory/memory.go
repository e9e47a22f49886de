package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/memoria-lab/memoria/pkg/domain/interfaces"
	"github.com/memoria-lab/memoria/pkg/domain/model"
	"github.com/memoria-lab/memoria/pkg/domain/types"
)

// scopeKey is a composite key for session turn logs (actor + session)
type scopeKey struct {
	actor   types.ActorID
	session types.SessionID
}

// Store is an in-process memory store for development and tests. Turns are
// kept per scope in append order; consolidated items are seeded explicitly
// and ranked by naive token overlap with the query.
type Store struct {
	mu    sync.RWMutex
	turns map[scopeKey][]model.Turn
	items map[types.ActorID][]model.MemoryItem
}

var _ interfaces.Store = &Store{}

func New() *Store {
	return &Store{
		turns: make(map[scopeKey][]model.Turn),
		items: make(map[types.ActorID][]model.MemoryItem),
	}
}

// Seed registers consolidated items for an actor. It stands in for the
// external consolidation process, which this layer never drives.
func (s *Store) Seed(actor types.ActorID, items ...model.MemoryItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range items {
		if item.CreatedAt.IsZero() {
			item.CreatedAt = time.Now().UTC()
		}
		s.items[actor] = append(s.items[actor], item)
	}
}

func (s *Store) ListRecentTurns(ctx context.Context, actor types.ActorID, session types.SessionID, k int) ([]model.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	log := s.turns[scopeKey{actor: actor, session: session}]
	if len(log) == 0 || k == 0 {
		return nil, nil
	}
	if k < 0 || k > len(log) {
		k = len(log)
	}

	out := make([]model.Turn, k)
	copy(out, log[len(log)-k:])
	return out, nil
}

func (s *Store) Retrieve(ctx context.Context, actor types.ActorID, namespace string, query string, topK int) ([]model.MemoryItem, error) {
	if topK < 1 {
		return nil, goerr.New("topK must be positive", goerr.V("topK", topK))
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var candidates []model.MemoryItem
	for _, item := range s.items[actor] {
		if item.Namespace != namespace {
			continue
		}
		item.Score = overlapScore(query, item.Text)
		if item.Score <= 0 {
			continue
		}
		candidates = append(candidates, item)
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].CreatedAt.After(candidates[j].CreatedAt)
	})

	if topK > len(candidates) {
		topK = len(candidates)
	}
	return candidates[:topK], nil
}

func (s *Store) AppendTurn(ctx context.Context, scope model.Scope, turn model.Turn) error {
	if err := scope.Validate(); err != nil {
		return goerr.Wrap(err, "cannot append turn to invalid scope")
	}
	if err := turn.Validate(); err != nil {
		return goerr.Wrap(err, "cannot append invalid turn")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := scopeKey{actor: scope.Actor, session: scope.Session}
	s.turns[key] = append(s.turns[key], turn)
	return nil
}

func (s *Store) Close() error { return nil }

// overlapScore is the fraction of query tokens found in the item text.
// Crude, but deterministic and good enough for a development backend.
func overlapScore(query, text string) float64 {
	queryTokens := strings.Fields(strings.ToLower(query))
	if len(queryTokens) == 0 {
		return 0
	}

	textTokens := make(map[string]bool)
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		textTokens[strings.Trim(tok, ".,!?:;\"'")] = true
	}

	matched := 0
	for _, tok := range queryTokens {
		if textTokens[strings.Trim(tok, ".,!?:;\"'")] {
			matched++
		}
	}
	return float64(matched) / float64(len(queryTokens))
}
