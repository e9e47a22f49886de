package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/memoria-lab/memoria/pkg/cli/config"
	"github.com/memoria-lab/memoria/pkg/domain/interfaces"
	"github.com/memoria-lab/memoria/pkg/domain/model"
	"github.com/memoria-lab/memoria/pkg/domain/types"
	"github.com/memoria-lab/memoria/pkg/repository/firestore"
	"github.com/memoria-lab/memoria/pkg/service/agent"
	"github.com/memoria-lab/memoria/pkg/service/archive"
	"github.com/memoria-lab/memoria/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdExport() *cli.Command {
	var repoCfg config.Repository
	var bucket string
	var actor string
	var session string

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "bucket",
			Usage:       "GCS bucket for transcript objects",
			Required:    true,
			Sources:     cli.EnvVars("MEMORIA_EXPORT_BUCKET"),
			Destination: &bucket,
		},
		&cli.StringFlag{
			Name:        "actor",
			Usage:       "Actor ID",
			Required:    true,
			Destination: &actor,
		},
		&cli.StringFlag{
			Name:        "session",
			Usage:       "Session ID",
			Required:    true,
			Destination: &session,
		},
	}
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:    "export",
		Aliases: []string{"e"},
		Usage:   "Export a session transcript to GCS",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			store, err := repoCfg.Configure(ctx, nil)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize store")
			}
			defer closeStore(store)

			turns, err := store.ListRecentTurns(ctx, types.ActorID(actor), types.SessionID(session), -1)
			if err != nil {
				return goerr.Wrap(err, "failed to list turns")
			}
			if len(turns) == 0 {
				return goerr.New("no turns found for session",
					goerr.V("actor", actor),
					goerr.V("session", session),
				)
			}

			archiver, err := archive.New(ctx, bucket)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize archiver")
			}
			defer func() {
				if err := archiver.Close(); err != nil {
					logging.Default().Error("failed to close archiver", "error", err.Error())
				}
			}()

			scope := model.Scope{
				Actor:   types.ActorID(actor),
				Session: types.SessionID(session),
			}
			path, err := archiver.Export(ctx, scope, turns)
			if err != nil {
				return goerr.Wrap(err, "failed to export transcript")
			}

			logging.Default().Info("Transcript exported",
				"bucket", bucket,
				"path", path,
				"turns", len(turns),
			)
			return nil
		},
	}
}

func configureEmbedder(ctx context.Context, geminiCfg *config.Gemini) (interfaces.Embedder, error) {
	client, err := geminiCfg.Configure(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to configure Gemini client")
	}
	if client == nil {
		return nil, nil
	}
	return agent.NewEmbedder(client, firestore.EmbeddingDimension), nil
}
