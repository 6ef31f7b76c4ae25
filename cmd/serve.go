package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/okian/taskprio/internal/adapters/http/api"
	"github.com/okian/taskprio/internal/adapters/http/swagger"
	"github.com/okian/taskprio/pkg/logger"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func (c *cli) serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve scoring, summaries and metrics over HTTP",
		Long: `Starts an HTTP server with POST /score, GET /summary?limit=N, GET /levels,
GET /stats and GET /metrics, with the OpenAPI document at /openapi.yaml. All records written by one server process go to
a single audit file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				addr = c.cfg.Addr
			}
			return c.serve(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")
	return cmd
}

func (c *cli) serve(ctx context.Context, addr string) error {
	svc, err := c.service(ctx, true)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc,
		api.WithDefaultLimit(c.cfg.DefaultSummaryLimit),
		api.WithMaxLimit(c.cfg.MaxSummaryLimit),
	).Register(ctx, mux)

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c.log.Info(gctx, "starting HTTP server", logger.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		c.log.Info(ctx, "shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		return err
	}

	c.log.Info(ctx, "server stopped", logger.Any("stats", svc.GetStats()))
	return nil
}
