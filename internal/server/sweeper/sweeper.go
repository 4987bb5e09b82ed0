// Package sweeper runs the periodic retirement of capsules whose retention
// window has elapsed.
package sweeper

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/timecapsule/internal/clock"
	"github.com/dmitrijs2005/timecapsule/internal/logging"
)

// Retirer performs one bulk retirement pass.
type Retirer interface {
	RetireOverdue(ctx context.Context) (int64, error)
}

// Sweeper calls a Retirer once at start and then on every tick of its
// interval. Overlapping passes are skipped.
type Sweeper struct {
	retirer  Retirer
	clock    clock.Clock
	interval time.Duration
	logger   logging.Logger

	running atomic.Bool
	wg      sync.WaitGroup
}

// ErrInvalidInterval is returned by New for a zero or negative interval.
var ErrInvalidInterval = errors.New("sweep interval must be positive")

func New(retirer Retirer, clk clock.Clock, interval time.Duration, logger logging.Logger) (*Sweeper, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInterval, interval)
	}
	return &Sweeper{
		retirer:  retirer,
		clock:    clk,
		interval: interval,
		logger:   logger.With("module", "sweeper"),
	}, nil
}

// Start registers the ticker and launches the loop, which sweeps immediately
// and then once per interval until ctx is done.
func (s *Sweeper) Start(ctx context.Context) {
	ticker := s.clock.NewTicker(s.interval)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer ticker.Stop()

		s.Tick(ctx)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Tick(ctx)
			}
		}
	}()
}

// Stop waits for the loop started by Start to exit. Cancel its context first.
func (s *Sweeper) Stop() {
	s.wg.Wait()
}

// Tick runs one pass unless one is already in flight. It reports whether
// the pass ran. Failures are logged and otherwise ignored.
func (s *Sweeper) Tick(ctx context.Context) bool {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Warn(ctx, "previous sweep still running, skipping")
		return false
	}
	defer s.running.Store(false)

	n, err := s.retirer.RetireOverdue(ctx)
	if err != nil {
		s.logger.Error(ctx, "sweep failed", "error", err)
		return true
	}
	s.logger.Info(ctx, "sweep finished", "retired", n)
	return true
}
