// Package api exposes the sync backend over HTTP: device login, catalog
// pull and the operation push endpoint, all JSON over fiber.
package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rbustosc/fieldsync/internal/logging"
	"github.com/rbustosc/fieldsync/internal/syncapi"

	"github.com/go-playground/validator/v10"
)

// DeviceAuthenticator issues session tokens for device credentials.
type DeviceAuthenticator interface {
	Login(ctx context.Context, code, secret string) (string, error)
}

// CatalogSource assembles the reference snapshot for one company.
type CatalogSource interface {
	Catalog(ctx context.Context, companyID int64) (*syncapi.Catalog, error)
}

// OperationApplier applies a pushed batch and reports per-operation results.
type OperationApplier interface {
	Apply(ctx context.Context, deviceID, companyID int64, ops []syncapi.Operation) []syncapi.OperationResult
}

type Server struct {
	app       *fiber.App
	addr      string
	logger    logging.Logger
	jwtSecret []byte
	validate  *validator.Validate

	devices DeviceAuthenticator
	catalog CatalogSource
	sync    OperationApplier
}

func NewServer(addr string, jwtSecret []byte, log logging.Logger,
	devices DeviceAuthenticator, catalog CatalogSource, sync OperationApplier) *Server {

	s := &Server{
		addr:      addr,
		logger:    log,
		jwtSecret: jwtSecret,
		validate:  validator.New(),
		devices:   devices,
		catalog:   catalog,
		sync:      sync,
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ReadTimeout:           15 * time.Second,
		WriteTimeout:          30 * time.Second,
	})

	app.Use(recover.New())
	app.Use(logger.New())

	v1 := app.Group("/api/v1")
	v1.Get("/ping", s.handlePing)
	v1.Post("/devices/login", s.handleLogin)

	authed := v1.Group("", s.authMiddleware)
	authed.Get("/catalog", s.handleCatalog)
	authed.Post("/sync", s.handleSync)

	s.app = app
	return s
}

// App exposes the fiber instance for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.app.Listen(s.addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return s.app.ShutdownWithTimeout(5 * time.Second)
	}
}
