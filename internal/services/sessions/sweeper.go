// Package sessions keeps the session table small by deleting expired rows
// in the background.
package sessions

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Pruner deletes expired sessions. *database.DB satisfies it.
type Pruner interface {
	DeleteExpiredSessions(ctx context.Context) (int64, error)
}

// Sweeper periodically calls Pruner.DeleteExpiredSessions.
type Sweeper struct {
	store    Pruner
	interval time.Duration
	log      *zap.Logger

	once   sync.Once
	cancel context.CancelFunc
	done   chan struct{}
}

// NewSweeper creates a sweeper that runs every interval.
func NewSweeper(store Pruner, interval time.Duration, log *zap.Logger) *Sweeper {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sweeper{store: store, interval: interval, log: log}
}

// Start launches the background loop. One sweep runs immediately.
func (s *Sweeper) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.run(ctx)
	s.log.Info("session sweeper started", zap.Duration("interval", s.interval))
}

// Stop ends the loop and waits for an in-flight sweep. Safe to call more
// than once, and before Start.
func (s *Sweeper) Stop() {
	s.once.Do(func() {
		if s.cancel == nil {
			return
		}
		s.cancel()
		<-s.done
		s.log.Info("session sweeper stopped")
	})
}

func (s *Sweeper) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		s.Sweep(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Sweep deletes expired sessions once and returns how many went away.
func (s *Sweeper) Sweep(ctx context.Context) int64 {
	n, err := s.store.DeleteExpiredSessions(ctx)
	if err != nil {
		if ctx.Err() == nil {
			s.log.Warn("session sweep failed", zap.Error(err))
		}
		return 0
	}
	if n > 0 {
		s.log.Info("expired sessions removed", zap.Int64("count", n))
	}
	return n
}
