package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/orbitcare/console/internal/config"
	"github.com/orbitcare/console/internal/platform/blobstore"
	"github.com/orbitcare/console/internal/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "console",
		Short: "Orbit Care hospital network admin console",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(routesCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the console server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func routesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "Print the registered routes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			srv := server.New(cfg, zerolog.Nop(), blobstore.NewInMemoryObjectStore())
			for _, r := range srv.Echo().Routes() {
				fmt.Printf("%-7s %s\n", r.Method, r.Path)
			}
			return nil
		},
	}
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	// Logo storage. Without blob credentials uploads stay in memory,
	// which only makes sense for development runs.
	var logos blobstore.ObjectStore
	if cfg.BlobSASURL != "" {
		logos = blobstore.NewBlockBlobStore(cfg.BlobSASURL, cfg.StorageAccount, cfg.BlobContainer)
		logger.Info().
			Str("account", cfg.StorageAccount).
			Str("container", cfg.BlobContainer).
			Msg("using block blob storage for logos")
	} else {
		logos = blobstore.NewInMemoryObjectStore()
		logger.Warn().Msg("BLOB_SAS_URL not set, logo uploads will not persist")
	}

	srv := server.New(cfg, logger, logos)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("upstream", cfg.APIBaseURL).Msg("starting console")
		if err := srv.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down console")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("console stopped")
	return nil
}
