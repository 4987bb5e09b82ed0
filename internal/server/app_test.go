package server

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/timecapsule/internal/clock"
	"github.com/dmitrijs2005/timecapsule/internal/logging"
	"github.com/dmitrijs2005/timecapsule/internal/server/config"
	"github.com/dmitrijs2005/timecapsule/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/timecapsule/internal/server/sweeper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_SweepsAtStartAndStopsOnCancel(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	mock.ExpectExec(`UPDATE\s+capsules\s+SET\s+retired`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectClose()

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.EndpointAddrHTTP = "127.0.0.1:0"
	cfg.EndpointAddrGRPC = "127.0.0.1:0"

	rm, err := repomanager.NewPostgresRepositoryManager(db)
	require.NoError(t, err)

	app, err := newApp(cfg, db, rm, clock.Fake(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)), nil, logging.Nop{})
	require.NoError(t, err)

	runUntilCancel(t, app)

	require.NoError(t, mock.ExpectationsWereMet())
}

func runUntilCancel(t *testing.T, app *App) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		app.Run(ctx)
	}()

	time.Sleep(200 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop after cancel")
	}
}

func TestRun_EmptyGRPCAddressDisablesGRPC(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	mock.ExpectExec(`UPDATE\s+capsules\s+SET\s+retired`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectClose()

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.EndpointAddrHTTP = "127.0.0.1:0"
	cfg.EndpointAddrGRPC = ""

	rm, err := repomanager.NewPostgresRepositoryManager(db)
	require.NoError(t, err)

	var started []string
	app, err := newApp(cfg, db, rm, clock.Fake(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)), nil,
		&recordingLogger{msgs: &started})
	require.NoError(t, err)

	runUntilCancel(t, app)

	assert.Contains(t, started, "gRPC endpoint disabled")
	assert.NotContains(t, started, "Starting gRPC server")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewApp_RejectsNonPositiveSweepInterval(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SweepInterval = 0

	rm, err := repomanager.NewPostgresRepositoryManager(db)
	require.NoError(t, err)

	app, err := newApp(cfg, db, rm, clock.Real(), nil, logging.Nop{})
	require.ErrorIs(t, err, sweeper.ErrInvalidInterval)
	assert.Nil(t, app)
}

// recordingLogger keeps the messages logged at info level.
type recordingLogger struct {
	logging.Nop
	mu   sync.Mutex
	msgs *[]string
}

func (l *recordingLogger) Info(_ context.Context, msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.msgs = append(*l.msgs, msg)
}

func (l *recordingLogger) With(...any) logging.Logger { return l }
