package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Sternrassler/dexview/internal/server"
	"github.com/Sternrassler/dexview/internal/session"
	"github.com/Sternrassler/dexview/pkg/rangefetch"
)

const vocabularyLoadTimeout = 30 * time.Second

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the browser viewer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, opts)
		},
	}
}

func runServe(ctx context.Context, opts *rootOptions) error {
	cfg := opts.cfg

	client, err := opts.catalogClient()
	if err != nil {
		return err
	}

	vocab := &session.Vocabulary{}
	go loadVocabulary(ctx, vocab, client, cfg.Catalog.Timeout)

	srv, err := server.New(cfg.Server, cfg.Viewer, server.Deps{
		Fetcher:    rangefetch.New(client),
		Vocabulary: vocab,
		Sessions:   session.NewStore(session.DefaultIdleTimeout),
	})
	if err != nil {
		return err
	}

	log.Info().
		Str("addr", cfg.Server.Addr()).
		Str("catalog_url", client.BaseURL()).
		Msg("Starting dexview")

	return srv.ListenAndServe(ctx)
}

// loadVocabulary makes the single vocabulary fetch of the process. The
// viewer serves ranges while it runs; /ready reports when it is over.
func loadVocabulary(ctx context.Context, vocab *session.Vocabulary, fetcher session.TypeFetcher, timeout time.Duration) {
	if timeout <= 0 {
		timeout = vocabularyLoadTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	_ = vocab.Load(ctx, fetcher)
}
