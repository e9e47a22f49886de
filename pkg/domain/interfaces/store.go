package interfaces

import (
	"context"

	"github.com/memoria-lab/memoria/pkg/domain/model"
	"github.com/memoria-lab/memoria/pkg/domain/types"
)

// Store is the durable memory collaborator: a conversation log plus
// namespaced semantic retrieval. Consolidation of raw turns into namespaced
// items happens inside the store, asynchronously; callers must tolerate
// items appearing minutes after the originating turns.
type Store interface {
	// ListRecentTurns returns up to k most recent turns of the session in
	// chronological order. A negative k returns the whole log. An empty
	// result is a normal cold start.
	ListRecentTurns(ctx context.Context, actor types.ActorID, session types.SessionID, k int) ([]model.Turn, error)

	// Retrieve returns up to topK items of the namespace ordered by
	// descending relevance to the query.
	Retrieve(ctx context.Context, actor types.ActorID, namespace string, query string, topK int) ([]model.MemoryItem, error)

	// AppendTurn appends one turn to the session log. Single attempt, no
	// hidden retries.
	AppendTurn(ctx context.Context, scope model.Scope, turn model.Turn) error

	// Close releases store resources.
	Close() error
}

// Embedder converts a retrieval query into a vector for similarity search.
// Backends that rank server-side do not need one.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
