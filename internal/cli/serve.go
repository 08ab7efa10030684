package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rcliao/mindvault/internal/logger"
	"github.com/rcliao/mindvault/internal/server"
)

func init() {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web companion",
		Long:  "Serve the chat page and JSON API. Stops gracefully on SIGINT or SIGTERM.",
		RunE:  runServe,
	}

	cmd.Flags().StringP("addr", "a", "", "Listen address (default from config, :8501)")

	RootCmd.AddCommand(cmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx)
	if err != nil {
		return fmt.Errorf("start: %w", err)
	}
	defer a.Close()

	log := logger.With("server")
	srv, err := server.New(server.Config{
		Chat:      a.chat,
		Store:     a.store,
		Journal:   a.journal,
		Sessions:  a.sessions,
		Metrics:   a.metrics,
		Log:       log,
		RateLimit: cfg.Server.RateLimit,
	})
	if err != nil {
		return fmt.Errorf("server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(cfg.Server.Addr) }()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
	case <-ctx.Done():
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown")
		}
	}
	return nil
}
