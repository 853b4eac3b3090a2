package watcher

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/FilipeCampos25/SiteClienteLucas/internal/repository"
)

type stubStore struct {
	mu    sync.Mutex
	stats repository.CartStats
	err   error
	calls int
}

func (s *stubStore) Stats(context.Context) (repository.CartStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.stats, s.err
}

// The watcher only touches Stats; the remaining CartStore methods are stubbed
// through an embedded interface so this test double stays small.
type statsOnlyStore struct {
	repository.CartStore
	stub *stubStore
}

func (s statsOnlyStore) Stats(ctx context.Context) (repository.CartStats, error) {
	return s.stub.Stats(ctx)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWatcher_SampleUpdatesGauges(t *testing.T) {
	stub := &stubStore{stats: repository.CartStats{Carts: 3, Items: 11}}
	w := New(statsOnlyStore{stub: stub}, time.Second, newTestLogger())

	w.sample(context.Background())

	assert.Equal(t, float64(3), testutil.ToFloat64(activeCarts))
	assert.Equal(t, float64(11), testutil.ToFloat64(cartItems))
}

func TestWatcher_FailedSampleKeepsPreviousValues(t *testing.T) {
	stub := &stubStore{stats: repository.CartStats{Carts: 2, Items: 5}}
	w := New(statsOnlyStore{stub: stub}, time.Second, newTestLogger())

	w.sample(context.Background())

	stub.mu.Lock()
	stub.err = errors.New("redis down")
	stub.mu.Unlock()

	w.sample(context.Background())

	assert.Equal(t, float64(2), testutil.ToFloat64(activeCarts))
	assert.Equal(t, float64(5), testutil.ToFloat64(cartItems))
}

func TestWatcher_RunStopsOnCancel(t *testing.T) {
	stub := &stubStore{stats: repository.CartStats{Carts: 1, Items: 1}}
	w := New(statsOnlyStore{stub: stub}, 5*time.Millisecond, newTestLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	// Let at least one tick fire, then cancel.
	time.Sleep(25 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop after context cancellation")
	}

	stub.mu.Lock()
	calls := stub.calls
	stub.mu.Unlock()
	assert.GreaterOrEqual(t, calls, 1)
}

func TestNew_DefaultsInterval(t *testing.T) {
	w := New(statsOnlyStore{stub: &stubStore{}}, 0, newTestLogger())
	assert.Equal(t, DefaultInterval, w.interval)
}
