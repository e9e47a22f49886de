package config

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/memoria-lab/memoria/pkg/domain/interfaces"
	"github.com/memoria-lab/memoria/pkg/repository/firestore"
	"github.com/memoria-lab/memoria/pkg/repository/memory"
	"github.com/memoria-lab/memoria/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Repository holds CLI flags for memory store backend configuration
type Repository struct {
	backend    string
	projectID  string
	databaseID string
	prefix     string
}

// Flags returns CLI flags for store configuration
func (r *Repository) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "store-backend",
			Usage:       "Memory store backend type (firestore or memory)",
			Value:       "firestore",
			Sources:     cli.EnvVars("MEMORIA_STORE_BACKEND"),
			Destination: &r.backend,
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Firestore Project ID (required when using firestore backend)",
			Sources:     cli.EnvVars("MEMORIA_FIRESTORE_PROJECT_ID"),
			Destination: &r.projectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore Database ID",
			Sources:     cli.EnvVars("MEMORIA_FIRESTORE_DATABASE_ID"),
			Destination: &r.databaseID,
		},
		&cli.StringFlag{
			Name:        "firestore-collection-prefix",
			Usage:       "Prefix for the root Firestore collection",
			Sources:     cli.EnvVars("MEMORIA_FIRESTORE_COLLECTION_PREFIX"),
			Destination: &r.prefix,
		},
	}
}

// ProjectID returns the Firestore project ID
func (r *Repository) ProjectID() string {
	return r.projectID
}

// DatabaseID returns the Firestore database ID
func (r *Repository) DatabaseID() string {
	return r.databaseID
}

// Configure initializes and returns a memory store based on the configured
// backend. The embedder may be nil; the firestore backend then degrades to
// recency-ordered retrieval. The caller is responsible for calling Close()
// on the returned store.
func (r *Repository) Configure(ctx context.Context, embedder interfaces.Embedder) (interfaces.Store, error) {
	switch r.backend {
	case "firestore":
		if r.projectID == "" {
			return nil, goerr.New("firestore-project-id is required when using firestore backend")
		}

		opts := []firestore.Option{}
		if r.prefix != "" {
			opts = append(opts, firestore.WithCollectionPrefix(r.prefix))
		}
		if embedder != nil {
			opts = append(opts, firestore.WithEmbedder(embedder))
		}

		store, err := firestore.New(ctx, r.projectID, r.databaseID, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize firestore store")
		}
		logging.Default().Info("Using Firestore memory store",
			"project_id", r.projectID,
			"database_id", r.databaseID,
			"vector_search", embedder != nil,
		)
		return store, nil

	case "memory":
		logging.Default().Info("Using in-memory store (development mode)")
		return memory.New(), nil

	default:
		return nil, goerr.New("invalid store backend", goerr.V("backend", r.backend))
	}
}
