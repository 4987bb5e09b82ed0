// Package server initializes and runs the time capsule server: it opens the
// database, applies migrations, wires the services, starts the expiration
// sweeper and serves the HTTP and gRPC APIs until a shutdown signal.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/timecapsule/internal/clock"
	"github.com/dmitrijs2005/timecapsule/internal/logging"
	"github.com/dmitrijs2005/timecapsule/internal/server/config"
	"github.com/dmitrijs2005/timecapsule/internal/server/httpapi"
	"github.com/dmitrijs2005/timecapsule/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/timecapsule/internal/server/services"
	"github.com/dmitrijs2005/timecapsule/internal/server/storage"
	"github.com/dmitrijs2005/timecapsule/internal/server/sweeper"

	gs "github.com/dmitrijs2005/timecapsule/internal/server/grpc"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config         *config.Config
	logger         logging.Logger
	db             *sql.DB
	userService    *services.UserService
	capsuleService *services.CapsuleService
	sweeper        *sweeper.Sweeper
}

// NewApp connects to the database, runs migrations and wires all components.
func NewApp(c *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(os.Stdout, slog.LevelInfo)
	ctx := context.Background()

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	rm, err := repomanager.NewPostgresRepositoryManager(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	var store storage.ObjectStore
	if c.AttachmentsEnabled() {
		s3, err := storage.NewS3Store(ctx, c)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("object storage init error: %w", err)
		}
		store = s3
	}

	app, err := newApp(c, db, rm, clock.Real(), store, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	return app, nil
}

func newApp(c *config.Config, db *sql.DB, rm repomanager.RepositoryManager, clk clock.Clock,
	store storage.ObjectStore, logger logging.Logger) (*App, error) {

	cs := services.NewCapsuleService(db, rm, clk, store, logger)
	us := services.NewUserService(db, rm, c)

	sw, err := sweeper.New(cs, clk, c.SweepInterval, logger)
	if err != nil {
		return nil, fmt.Errorf("sweeper init error: %w", err)
	}

	return &App{
		config:         c,
		logger:         logger,
		db:             db,
		userService:    us,
		capsuleService: cs,
		sweeper:        sw,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s, err := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.userService, app.capsuleService, app.config.SecretKey)

	if err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	} else {

		if err := s.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	api := httpapi.NewServer(app.capsuleService, app.userService, []byte(app.config.SecretKey), app.logger)
	srv := &http.Server{
		Addr:              app.config.EndpointAddrHTTP,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		app.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(ctx, "HTTP shutdown error", "error", err)
		}
	}()

	app.logger.Info(ctx, "Starting HTTP server", "address", app.config.EndpointAddrHTTP)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled, a termination signal arrives or one of
// the servers fails, then waits for everything to stop and closes the database.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	app.sweeper.Start(ctx)

	var wg sync.WaitGroup

	if app.config.EndpointAddrGRPC != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startGRPCServer(ctx, cancelFunc)
		}()
	} else {
		app.logger.Info(ctx, "gRPC endpoint disabled")
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()
	app.sweeper.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}

	app.logger.Info(ctx, "App stopped")
}
