// Package app wires the device client together: local mirror, scan
// protocols, capture workflows, sync reconciler, and the operator REPL.
package app

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/rbustosc/fieldsync/internal/device/config"
	"github.com/rbustosc/fieldsync/internal/device/scan"
	"github.com/rbustosc/fieldsync/internal/device/store"
	devsync "github.com/rbustosc/fieldsync/internal/device/sync"
	"github.com/rbustosc/fieldsync/internal/logging"

	_ "modernc.org/sqlite"
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	store      *store.Store
	resolver   *scan.Resolver
	suppressor *scan.Suppressor
	client     *devsync.Client
	reconciler *devsync.Reconciler
	reader     *bufio.Reader
	loggedIn   bool
}

func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	s, err := store.Open(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing local mirror: %w", err)
	}

	resolver := scan.NewResolver(s)
	suppressor := scan.NewSuppressor(s.Collections, c.SuppressionWindow)
	client := devsync.NewClient(c.ServerBaseURL)
	reconciler := devsync.NewReconciler(s, client, logger)

	return &App{
		config:     c,
		logger:     logger,
		store:      s,
		resolver:   resolver,
		suppressor: suppressor,
		client:     client,
		reconciler: reconciler,
		reader:     bufio.NewReader(os.Stdin),
	}, nil
}

func (a *App) Run(ctx context.Context) {
	defer a.store.DB.Close()
	a.runREPL(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.loggedIn
}
