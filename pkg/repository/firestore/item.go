package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/memoria-lab/memoria/pkg/domain/model"
	"github.com/memoria-lab/memoria/pkg/domain/types"
	"google.golang.org/api/iterator"
)

// distanceField receives the cosine distance of each vector search result.
const distanceField = "vector_distance"

// itemDoc is the Firestore document representation of model.MemoryItem.
// Embedding is stored as firestore.Vector32 for FindNearest vector search.
// Documents are written by the store-side consolidation pipeline; this
// client only reads them.
type itemDoc struct {
	Namespace string             `firestore:"Namespace"`
	Text      string             `firestore:"Text"`
	Embedding firestore.Vector32 `firestore:"Embedding,omitempty"`
	CreatedAt time.Time          `firestore:"CreatedAt"`
}

func fromItemDoc(d *itemDoc, score float64) model.MemoryItem {
	return model.MemoryItem{
		Namespace: d.Namespace,
		Text:      d.Text,
		Score:     score,
		CreatedAt: d.CreatedAt,
	}
}

func (c *Client) Retrieve(ctx context.Context, actor types.ActorID, namespace string, query string, topK int) ([]model.MemoryItem, error) {
	if topK < 1 {
		return nil, goerr.New("topK must be positive", goerr.V("topK", topK))
	}

	if c.embedder == nil {
		return c.retrieveByRecency(ctx, actor, namespace, topK)
	}
	return c.retrieveByVector(ctx, actor, namespace, query, topK)
}

func (c *Client) retrieveByVector(ctx context.Context, actor types.ActorID, namespace string, query string, topK int) ([]model.MemoryItem, error) {
	embedding, err := c.embedder.Embed(ctx, query)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to embed retrieval query", goerr.V("namespace", namespace))
	}

	vq := c.memoriesCollection(actor).
		Where("Namespace", "==", namespace).
		FindNearest("Embedding", firestore.Vector32(embedding), topK, firestore.DistanceMeasureCosine,
			&firestore.FindNearestOptions{DistanceResultField: distanceField})

	iter := vq.Documents(ctx)
	defer iter.Stop()

	items := make([]model.MemoryItem, 0, topK)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate item vector search results",
				goerr.V("actor", actor),
				goerr.V("namespace", namespace),
			)
		}

		var d itemDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal item from vector search")
		}

		// Cosine distance is in [0, 2]; convert to a descending relevance score.
		score := 0.0
		if dist, ok := doc.Data()[distanceField].(float64); ok {
			score = 1 - dist
		}
		items = append(items, fromItemDoc(&d, score))
	}
	return items, nil
}

// retrieveByRecency is the degraded path without an embedder: most recent
// items of the namespace, scored by recency rank.
func (c *Client) retrieveByRecency(ctx context.Context, actor types.ActorID, namespace string, topK int) ([]model.MemoryItem, error) {
	iter := c.memoriesCollection(actor).
		Where("Namespace", "==", namespace).
		OrderBy("CreatedAt", firestore.Desc).
		Limit(topK).
		Documents(ctx)
	defer iter.Stop()

	items := make([]model.MemoryItem, 0, topK)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate items",
				goerr.V("actor", actor),
				goerr.V("namespace", namespace),
			)
		}

		var d itemDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal item")
		}

		score := float64(topK-len(items)) / float64(topK)
		items = append(items, fromItemDoc(&d, score))
	}
	return items, nil
}
