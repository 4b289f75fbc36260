package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/Shimizu-Technology/listing-analyzer-api/internal/services/analyzer"
	"github.com/Shimizu-Technology/listing-analyzer-api/internal/services/listing"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// funcAnalyzer adapts a function to the Analyzer interface.
type funcAnalyzer func(ctx context.Context, data []byte) (*analyzer.Result, error)

func (f funcAnalyzer) Analyze(ctx context.Context, data []byte) (*analyzer.Result, error) {
	return f(ctx, data)
}

func echoAnalyzer() funcAnalyzer {
	return func(_ context.Context, data []byte) (*analyzer.Result, error) {
		return &analyzer.Result{Text: string(data), Fields: listing.Extract(string(data))}, nil
	}
}

func TestPoolAnalyze(t *testing.T) {
	p := NewPool(2, 4, echoAnalyzer(), nil)
	p.Start()
	defer p.Stop()

	res, err := p.Analyze(context.Background(), []byte("MLS# 42"))
	require.NoError(t, err)
	assert.Equal(t, "42", res.Fields[listing.FieldMLS])
	assert.Equal(t, 2, p.WorkerCount())
}

func TestPoolPropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	p := NewPool(1, 1, funcAnalyzer(func(context.Context, []byte) (*analyzer.Result, error) {
		return nil, boom
	}), nil)
	p.Start()
	defer p.Stop()

	_, err := p.Analyze(context.Background(), nil)
	assert.ErrorIs(t, err, boom)
}

func TestPoolBoundsConcurrency(t *testing.T) {
	var running, peak atomic.Int32
	release := make(chan struct{})

	p := NewPool(2, 10, funcAnalyzer(func(context.Context, []byte) (*analyzer.Result, error) {
		n := running.Add(1)
		for {
			old := peak.Load()
			if n <= old || peak.CompareAndSwap(old, n) {
				break
			}
		}
		<-release
		running.Add(-1)
		return &analyzer.Result{}, nil
	}), nil)
	p.Start()
	defer p.Stop()

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := p.Analyze(context.Background(), nil)
			assert.NoError(t, err)
		}()
	}

	require.Eventually(t, func() bool { return running.Load() == 2 }, time.Second, 5*time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(2), peak.Load())
}

func TestPoolQueueFull(t *testing.T) {
	block := make(chan struct{})
	started := make(chan struct{}, 1)

	p := NewPool(1, 1, funcAnalyzer(func(context.Context, []byte) (*analyzer.Result, error) {
		started <- struct{}{}
		<-block
		return &analyzer.Result{}, nil
	}), nil)
	p.Start()
	defer p.Stop()

	// First job occupies the only worker.
	first := make(chan error, 1)
	go func() {
		_, err := p.Analyze(context.Background(), nil)
		first <- err
	}()
	<-started

	// Second job sits in the queue.
	second := make(chan error, 1)
	go func() {
		_, err := p.Analyze(context.Background(), nil)
		second <- err
	}()
	require.Eventually(t, func() bool { return p.QueueSize() == 1 }, time.Second, 5*time.Millisecond)

	_, err := p.Analyze(context.Background(), nil)
	assert.ErrorIs(t, err, ErrQueueFull)

	close(block)
	assert.NoError(t, <-first)
	<-started
	assert.NoError(t, <-second)
}

func TestPoolCallerCancels(t *testing.T) {
	p := NewPool(1, 1, funcAnalyzer(func(ctx context.Context, _ []byte) (*analyzer.Result, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}), nil)
	p.Start()
	defer p.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := p.Analyze(ctx, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPoolStop(t *testing.T) {
	started := make(chan struct{}, 1)
	p := NewPool(1, 1, funcAnalyzer(func(ctx context.Context, _ []byte) (*analyzer.Result, error) {
		started <- struct{}{}
		<-ctx.Done()
		return nil, ctx.Err()
	}), nil)
	p.Start()

	running := make(chan error, 1)
	go func() {
		_, err := p.Analyze(context.Background(), nil)
		running <- err
	}()
	<-started

	queued := make(chan error, 1)
	go func() {
		_, err := p.Analyze(context.Background(), nil)
		queued <- err
	}()
	require.Eventually(t, func() bool { return p.QueueSize() == 1 }, time.Second, 5*time.Millisecond)

	p.Stop()
	p.Stop() // idempotent

	assert.ErrorIs(t, <-running, context.Canceled)
	err := <-queued
	assert.ErrorIs(t, err, ErrStopped)
	assert.NotErrorIs(t, err, context.Canceled)

	_, err = p.Analyze(context.Background(), nil)
	assert.ErrorIs(t, err, ErrStopped)
}
