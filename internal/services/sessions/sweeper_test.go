package sessions

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type countingPruner struct {
	calls atomic.Int32
	n     int64
	err   error
}

func (p *countingPruner) DeleteExpiredSessions(context.Context) (int64, error) {
	p.calls.Add(1)
	return p.n, p.err
}

func TestSweeperRunsPeriodically(t *testing.T) {
	p := &countingPruner{n: 2}
	s := NewSweeper(p, 10*time.Millisecond, nil)
	s.Start()

	require.Eventually(t, func() bool { return p.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)

	s.Stop()
	s.Stop()

	calls := p.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, calls, p.calls.Load(), "no sweeps after Stop")
}

func TestSweepLogsFailures(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	s := NewSweeper(&countingPruner{err: errors.New("db down")}, time.Hour, zap.New(core))

	assert.Zero(t, s.Sweep(context.Background()))
	assert.Equal(t, 1, logs.FilterMessage("session sweep failed").Len())
}

func TestSweepReportsCount(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	s := NewSweeper(&countingPruner{n: 5}, time.Hour, zap.New(core))

	assert.EqualValues(t, 5, s.Sweep(context.Background()))
	entries := logs.FilterMessage("expired sessions removed").All()
	require.Len(t, entries, 1)
	assert.EqualValues(t, 5, entries[0].ContextMap()["count"])
}

func TestStopBeforeStart(t *testing.T) {
	NewSweeper(&countingPruner{}, time.Second, nil).Stop()
}
