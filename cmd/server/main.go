package main

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
	"go.uber.org/zap"

	"escrutinio/internal/config"
	"escrutinio/internal/feed"
	"escrutinio/internal/formatter"
	"escrutinio/internal/handlers"
	"escrutinio/internal/party"
	"escrutinio/internal/poller"
	"escrutinio/internal/storage"
)

var (
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "escrutinio",
	Short:         "Election results ingestion and aggregation service",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		logger, err = cfg.NewLogger(verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Poll every contest and serve the results API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.GetConfigPath(), "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(serveCmd, onceCmd, partiesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func serve(ctx context.Context) error {
	var metadata party.Store
	if !cfg.DisablePartyStore {
		pb, err := openPocketBase()
		if err != nil {
			return err
		}
		defer pb.Close()
		metadata = pb.Parties()
	}

	manager, err := buildManager(metadata)
	if err != nil {
		return err
	}
	manager.StartAll()
	defer manager.StopAll()

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handlers.NewRouter(manager, cfg.CORSOrigins, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openPocketBase() (*storage.PocketBaseStore, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	store, err := storage.OpenPocketBase(cfg.DataDir, cfg.PocketBaseAddr, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	return store, nil
}

// buildManager wires one poller per configured contest around a shared resolver
func buildManager(metadata party.Store) (*poller.Manager, error) {
	enc, err := feed.LookupEncoding(cfg.Encoding)
	if err != nil {
		return nil, err
	}

	resolver := party.NewResolver(metadata,
		party.WithCacheTTL(cfg.PartyCacheTTL),
		party.WithLogger(logger))
	builder := formatter.New(resolver, cfg.ResolveConcurrency, logger)

	manager := poller.NewManager()
	for _, contest := range cfg.Contests {
		client := feed.NewClient(contest,
			feed.WithTimeout(cfg.RequestTimeout),
			feed.WithEncoding(enc),
			feed.WithLogger(logger))

		p, err := poller.New(poller.Config{
			Contest:  contest,
			Interval: cfg.PollInterval,
			Source:   client,
			Builder:  builder,
			Logger:   logger,
		})
		if err != nil {
			return nil, err
		}
		if err := manager.Register(p); err != nil {
			return nil, err
		}
	}
	return manager, nil
}
