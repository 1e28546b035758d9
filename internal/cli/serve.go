package cmd

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rohmanhakim/ssr-renderer/internal/config"
	"github.com/rohmanhakim/ssr-renderer/internal/server"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP rendering service",
	Long: `serve starts the browser and exposes GET /render, cache administration
under /cache, /health and Prometheus metrics on /metrics.

On SIGINT or SIGTERM it stops accepting requests, waits for in-flight renders
and closes the browser.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := InitConfigWithError()
		if err != nil {
			return err
		}
		logger := setupLogger(cfg, cmd.ErrOrStderr())

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		ln, err := net.Listen("tcp", cfg.ServerAddr())
		if err != nil {
			return err
		}
		return Serve(ctx, cfg, logger, ln)
	},
}

func init() {
	serveCmd.Flags().StringVar(&addr, "addr", "", "listen address (default :8080)")
	serveCmd.Flags().Float64Var(&rps, "rps", 0, "sustained /render requests per second (default 10)")
	serveCmd.Flags().IntVar(&burst, "burst", 0, "extra /render requests allowed in a burst (default 20)")
}

// Serve runs the service on ln until ctx is done, then shuts down gracefully.
func Serve(ctx context.Context, cfg config.Config, logger zerolog.Logger, ln net.Listener) error {
	r := newRenderer(cfg, logger)
	if err := r.Start(ctx, cfg.Engine()); err != nil {
		_ = ln.Close()
		return err
	}

	s := server.NewServer(
		r,
		cfg.Render(),
		server.NewLimiter(cfg.ServerRPS(), cfg.ServerBurst()),
		logger.With().Str("component", "server").Logger(),
	)
	srv := server.New(ln.Addr().String(), s)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	logger.Info().Str("addr", ln.Addr().String()).Msg("listening")

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("http shutdown incomplete")
	}
	stopErr := r.Stop(shutdownCtx)
	logger.Info().Msg("shut down")

	if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
		return serveErr
	}
	return stopErr
}
