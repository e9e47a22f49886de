package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/memoria-lab/memoria/pkg/domain/interfaces"
	"github.com/memoria-lab/memoria/pkg/domain/types"
)

// EmbeddingDimension is the vector size of consolidated item embeddings.
const EmbeddingDimension = 768

// Client is the Firestore-backed memory store. Raw turns live under
// actors/{actor}/sessions/{session}/turns; consolidated items under
// actors/{actor}/memories with a Namespace field and an optional embedding
// for vector retrieval.
type Client struct {
	client           *firestore.Client
	embedder         interfaces.Embedder
	collectionPrefix string
}

var _ interfaces.Store = &Client{}

type Option func(*Client)

// WithCollectionPrefix prefixes the root collection, used for test isolation.
func WithCollectionPrefix(prefix string) Option {
	return func(c *Client) {
		c.collectionPrefix = prefix
	}
}

// WithEmbedder enables vector retrieval. Without an embedder, Retrieve
// falls back to recency ordering within the namespace.
func WithEmbedder(embedder interfaces.Embedder) Option {
	return func(c *Client) {
		c.embedder = embedder
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Client, error) {
	var client *firestore.Client
	var err error
	if databaseID == "" {
		client, err = firestore.NewClient(ctx, projectID)
	} else {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client", goerr.V("projectID", projectID), goerr.V("databaseID", databaseID))
	}

	c := &Client{client: client}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) Close() error {
	if err := c.client.Close(); err != nil {
		return goerr.Wrap(err, "failed to close firestore client")
	}
	return nil
}

func (c *Client) actorsCollection() *firestore.CollectionRef {
	return c.client.Collection(c.collectionPrefix + "actors")
}

// turnsCollection returns the subcollection path:
// actors/{actor}/sessions/{session}/turns
func (c *Client) turnsCollection(actor types.ActorID, session types.SessionID) *firestore.CollectionRef {
	return c.actorsCollection().Doc(actor.String()).
		Collection("sessions").Doc(session.String()).
		Collection("turns")
}

// memoriesCollection returns the subcollection path:
// actors/{actor}/memories
func (c *Client) memoriesCollection(actor types.ActorID) *firestore.CollectionRef {
	return c.actorsCollection().Doc(actor.String()).Collection("memories")
}
