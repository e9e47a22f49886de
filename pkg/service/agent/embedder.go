package agent

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/memoria-lab/memoria/pkg/domain/interfaces"
)

// Embedder adapts a gollem LLM client to the store's query embedding
// interface.
type Embedder struct {
	client    gollem.LLMClient
	dimension int
}

var _ interfaces.Embedder = &Embedder{}

func NewEmbedder(client gollem.LLMClient, dimension int) *Embedder {
	return &Embedder{client: client, dimension: dimension}
}

func (x *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := x.client.GenerateEmbedding(ctx, x.dimension, []string{text})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate embedding")
	}
	if len(embeddings) == 0 {
		return nil, goerr.New("no embedding returned", goerr.V("text_length", len(text)))
	}

	vector := make([]float32, len(embeddings[0]))
	for i, v := range embeddings[0] {
		vector[i] = float32(v)
	}
	return vector, nil
}
