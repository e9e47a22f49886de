package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/memoria-lab/memoria/pkg/cli/config"
	"github.com/memoria-lab/memoria/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

var (
	inspectLabel = color.New(color.FgCyan, color.Bold)
	inspectMeta  = color.New(color.Faint)
	inspectUser  = color.New(color.FgGreen)
	inspectBot   = color.New(color.FgMagenta)
)

func cmdInspect() *cli.Command {
	return &cli.Command{
		Name:    "inspect",
		Aliases: []string{"i"},
		Usage:   "Inspect stored turns and memory items",
		Commands: []*cli.Command{
			cmdInspectTurns(),
			cmdInspectSearch(),
		},
	}
}

func cmdInspectTurns() *cli.Command {
	var repoCfg config.Repository
	var actor string
	var session string
	var limit int

	flags := []cli.Flag{
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
		&cli.IntFlag{
			Name:        "limit",
			Usage:       "Maximum number of turns to show",
			Value:       20,
			Destination: &limit,
		},
	}
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:  "turns",
		Usage: "Show the recent turns of a session",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			store, err := repoCfg.Configure(ctx, nil)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize store")
			}
			defer closeStore(store)

			turns, err := store.ListRecentTurns(ctx, types.ActorID(actor), types.SessionID(session), limit)
			if err != nil {
				return goerr.Wrap(err, "failed to list turns")
			}

			inspectLabel.Printf("Session %s (%d turns)\n", session, len(turns))
			for _, turn := range turns {
				speaker := inspectUser
				if turn.Role == types.RoleAssistant {
					speaker = inspectBot
				}
				inspectMeta.Printf("[%s] ", turn.CreatedAt.Format("2006-01-02 15:04:05"))
				speaker.Printf("%s: ", turn.Role)
				fmt.Println(turn.Text)
			}
			return nil
		},
	}
}

func cmdInspectSearch() *cli.Command {
	var repoCfg config.Repository
	var geminiCfg config.Gemini
	var actor string
	var namespace string
	var query string
	var topK int

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "actor",
			Usage:       "Actor ID",
			Required:    true,
			Destination: &actor,
		},
		&cli.StringFlag{
			Name:        "namespace",
			Usage:       "Memory namespace, e.g. preferences/actor_abc123def456",
			Required:    true,
			Destination: &namespace,
		},
		&cli.StringFlag{
			Name:        "query",
			Usage:       "Retrieval query",
			Required:    true,
			Destination: &query,
		},
		&cli.IntFlag{
			Name:        "top-k",
			Usage:       "Number of items to retrieve",
			Value:       5,
			Destination: &topK,
		},
	}
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)

	return &cli.Command{
		Name:  "search",
		Usage: "Run a retrieval query against a memory namespace",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			embedder, err := configureEmbedder(ctx, &geminiCfg)
			if err != nil {
				return err
			}

			store, err := repoCfg.Configure(ctx, embedder)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize store")
			}
			defer closeStore(store)

			items, err := store.Retrieve(ctx, types.ActorID(actor), namespace, query, topK)
			if err != nil {
				return goerr.Wrap(err, "failed to retrieve items")
			}

			inspectLabel.Printf("%d items in %s\n", len(items), namespace)
			for _, item := range items {
				inspectMeta.Printf("[score %.3f] ", item.Score)
				fmt.Println(item.Text)
			}
			return nil
		},
	}
}
