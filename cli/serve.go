package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreybb/itemgate/api"
	rh "github.com/coreybb/itemgate/route-handlers"
	"github.com/spf13/cobra"
)

func newServeCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   CmdServe,
		Short: "Start the HTTP gateway",
		Long:  `Start the HTTP gateway and serve until SIGINT or SIGTERM, then shut down gracefully.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}
}

func runServe(cmd *cobra.Command, opts *options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	agg, err := buildAggregator(cfg)
	if err != nil {
		return err
	}

	router := api.SetupRoutes(cfg.BasePath, rh.NewItemHandler(agg))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("Sources: A=%s B=%s", cfg.SourceA.Name, cfg.SourceB.Name)
	log.Printf("Endpoint: POST %s/getAllItems", cfg.BasePath)
	return startServer(ctx, cfg.Port, router, cfg.ShutdownTimeout)
}

// startServer serves router until ctx is done, then drains in-flight
// requests for at most shutdownTimeout.
func startServer(ctx context.Context, port string, router http.Handler, shutdownTimeout time.Duration) error {
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("Server starting on port %s", port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	log.Println("Shutdown signal received, initiating graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	log.Println("Server gracefully stopped")
	return nil
}
