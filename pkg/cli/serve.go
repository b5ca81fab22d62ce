package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/mnemo-ai/mnemo/pkg/cli/config"
	httpctrl "github.com/mnemo-ai/mnemo/pkg/controller/http"
	"github.com/mnemo-ai/mnemo/pkg/domain/interfaces"
	"github.com/mnemo-ai/mnemo/pkg/service/archival"
	"github.com/mnemo-ai/mnemo/pkg/service/assembler"
	"github.com/mnemo-ai/mnemo/pkg/service/classifier"
	"github.com/mnemo-ai/mnemo/pkg/service/embedding"
	"github.com/mnemo-ai/mnemo/pkg/usecase"
	"github.com/mnemo-ai/mnemo/pkg/utils/logging"
	"github.com/mnemo-ai/mnemo/pkg/utils/safe"
)

func cmdServe() *cli.Command {
	var addr string
	var repoCfg config.Repository
	var indexCfg config.Index
	var geminiCfg config.Gemini
	var memoryCfg config.Memory

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("MNEMO_ADDR"),
			Destination: &addr,
		},
	}
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, indexCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)
	flags = append(flags, memoryCfg.Flags()...)

	return &cli.Command{
		Name:  "serve",
		Usage: "Start the memory API server",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logging.Default().Info("Server configuration",
				"addr", addr,
				"repository", repoCfg.Backend(),
				"index", indexCfg.Backend(),
				"gemini", geminiCfg.LogValue(),
				"memory", memoryCfg.LogValue(),
			)

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return err
			}
			defer safe.Close(ctx, repo)

			index, err := indexCfg.Configure()
			if err != nil {
				return err
			}

			llm, err := geminiCfg.Configure(ctx)
			if err != nil {
				return err
			}
			var embedder interfaces.Embedder
			if llm != nil {
				embedder = embedding.New(llm)
			} else {
				logging.Default().Warn("Gemini is not configured; using deterministic mock embeddings")
				embedder = embedding.NewMock()
			}

			session := memoryCfg.SessionStore()
			worker := archival.New(repo, index, memoryCfg.ArchivalOptions()...)

			uc, err := usecase.New(repo, session, index, embedder,
				usecase.WithClassifier(classifier.New(llm)),
				usecase.WithAssembler(assembler.New(session, repo, index, embedder, memoryCfg.AssemblerOptions()...)),
				usecase.WithArchivalWorker(worker),
			)
			if err != nil {
				return err
			}

			worker.Start(ctx)
			defer worker.Stop()

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("HTTP server listening", "addr", addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return goerr.Wrap(err, "HTTP server failed")
			case sig := <-sigCh:
				logging.Default().Info("Shutting down", "signal", sig.String())
			case <-ctx.Done():
				logging.Default().Info("Shutting down", "reason", "context cancelled")
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shut down HTTP server")
			}

			return nil
		},
	}
}
