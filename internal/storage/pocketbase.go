package storage

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"go.uber.org/zap"
)

const (
	startTimeout = 30 * time.Second
	stopTimeout  = 10 * time.Second
)

// PocketBaseStore runs the embedded PocketBase app that holds party metadata.
// Its admin UI is where editors maintain colors and ideology scores.
type PocketBaseStore struct {
	app     *pocketbase.PocketBase
	parties *PartyStore
	server  *http.Server
	done    chan struct{}
}

// OpenPocketBase starts PocketBase on httpAddr with data in dataDir and
// waits until migrations have run.
func OpenPocketBase(dataDir, httpAddr string, logger *zap.Logger) (*PocketBaseStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("pocketbase")

	app := pocketbase.NewWithConfig(pocketbase.Config{
		DefaultDataDir:  dataDir,
		HideStartBanner: true,
	})
	app.RootCmd.SetArgs([]string{"serve", "--dir", dataDir, "--http", httpAddr})

	var server *http.Server
	ready := make(chan struct{})
	app.OnBeforeServe().Add(func(e *core.ServeEvent) error {
		server = e.Server
		close(ready)
		return nil
	})

	failed := make(chan error, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := app.Start(); err != nil {
			logger.Error("pocketbase stopped", zap.Error(err))
			failed <- err
		}
	}()

	select {
	case <-ready:
	case err := <-failed:
		return nil, fmt.Errorf("failed to start PocketBase: %w", err)
	case <-time.After(startTimeout):
		return nil, fmt.Errorf("PocketBase did not start within %s", startTimeout)
	}

	parties := NewPartyStore(app.Dao())
	if err := parties.EnsureCollection(); err != nil {
		return nil, fmt.Errorf("failed to ensure collection exists: %w", err)
	}

	logger.Info("pocketbase ready", zap.String("addr", httpAddr), zap.String("dir", dataDir))
	return &PocketBaseStore{app: app, parties: parties, server: server, done: done}, nil
}

// Parties returns the party metadata store
func (s *PocketBaseStore) Parties() *PartyStore {
	return s.parties
}

// GetPocketBase exposes the underlying app
func (s *PocketBaseStore) GetPocketBase() *pocketbase.PocketBase {
	return s.app
}

// Close stops the PocketBase HTTP server and waits for the app to terminate,
// which releases its database handles.
func (s *PocketBaseStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	if s.server != nil {
		if err := s.server.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to stop PocketBase: %w", err)
		}
	}

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("PocketBase did not stop within %s", stopTimeout)
	}
}
