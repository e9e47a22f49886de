package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/memoria-lab/memoria/pkg/cli/config"
	httpctrl "github.com/memoria-lab/memoria/pkg/controller/http"
	"github.com/memoria-lab/memoria/pkg/domain/interfaces"
	"github.com/memoria-lab/memoria/pkg/repository/firestore"
	"github.com/memoria-lab/memoria/pkg/service/agent"
	"github.com/memoria-lab/memoria/pkg/usecase"
	"github.com/memoria-lab/memoria/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var addr string
	var systemPrompt string
	var repoCfg config.Repository
	var geminiCfg config.Gemini
	var recallCfg config.Recall

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("MEMORIA_ADDR"),
			Destination: &addr,
		},
		&cli.StringFlag{
			Name:        "system-prompt",
			Usage:       "Base system prompt for the reasoning engine",
			Sources:     cli.EnvVars("MEMORIA_SYSTEM_PROMPT"),
			Destination: &systemPrompt,
		},
	}
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)
	flags = append(flags, recallCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			llmClient, err := geminiCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure Gemini client")
			}
			if llmClient == nil {
				return goerr.New("gemini-project is required for serve")
			}

			// The same client powers replies and retrieval query embedding.
			embedder := agent.NewEmbedder(llmClient, firestore.EmbeddingDimension)

			store, err := repoCfg.Configure(ctx, embedder)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize store")
			}
			defer closeStore(store)

			policy, err := recallCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to configure recall policy")
			}

			registry := prometheus.NewRegistry()

			uc := usecase.New(store,
				usecase.WithPolicy(policy),
				usecase.WithMetrics(usecase.NewMetrics(registry)),
			)

			engineOpts := []agent.Option{}
			if systemPrompt != "" {
				engineOpts = append(engineOpts, agent.WithSystemPrompt(systemPrompt))
			}
			engine := agent.New(llmClient, engineOpts...)

			handler := httpctrl.New(uc, engine,
				httpctrl.WithMetricsHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})),
			)
			server := &http.Server{
				Addr:              addr,
				Handler:           handler,
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}

func closeStore(store interfaces.Store) {
	if err := store.Close(); err != nil {
		logging.Default().Error("failed to close store", "error", err.Error())
	}
}
