package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeService struct {
	refreshes atomic.Int32
	ticks     atomic.Int32
	onTick    func()
}

func (f *fakeService) RefreshAll(context.Context) {
	f.refreshes.Add(1)
}

func (f *fakeService) AlertTick(context.Context) bool {
	f.ticks.Add(1)
	if f.onTick != nil {
		f.onTick()
	}
	return false
}

func TestRefreshTick(t *testing.T) {
	t.Parallel()

	svc := &fakeService{}
	clock := clockwork.NewFakeClock()
	s := New(zaptest.NewLogger(t), svc, clock, Options{
		RefreshInterval: 180 * time.Second,
		RefreshPoll:     30 * time.Second,
		AlertPoll:       180 * time.Second,
	})
	ctx := context.Background()

	require.True(t, s.refreshTick(ctx), "first poll always refreshes")
	for i := 0; i < 5; i++ {
		clock.Advance(30 * time.Second)
		require.False(t, s.refreshTick(ctx))
	}
	clock.Advance(30 * time.Second)
	require.True(t, s.refreshTick(ctx))
	require.EqualValues(t, 2, svc.refreshes.Load())

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	clock.Advance(time.Hour)
	require.False(t, s.refreshTick(cancelled))
}

func TestRun(t *testing.T) {
	t.Parallel()

	t.Run("refreshes at start and stops with context", func(t *testing.T) {
		t.Parallel()

		svc := &fakeService{}
		s := New(zaptest.NewLogger(t), svc, clockwork.NewRealClock(), Options{
			RefreshInterval: time.Hour,
			RefreshPoll:     time.Hour,
			AlertPoll:       time.Hour,
		})

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() {
			done <- s.Run(ctx)
		}()

		require.Eventually(t, func() bool { return svc.refreshes.Load() == 1 }, time.Second, 10*time.Millisecond)
		cancel()

		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(time.Second):
			t.Fatal("scheduler did not stop")
		}
	})

	t.Run("polls survive a panicking job", func(t *testing.T) {
		t.Parallel()

		svc := &fakeService{onTick: func() { panic("boom") }}
		s := New(zaptest.NewLogger(t), svc, clockwork.NewRealClock(), Options{
			RefreshInterval: time.Hour,
			RefreshPoll:     time.Hour,
			AlertPoll:       time.Second,
		})

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() {
			done <- s.Run(ctx)
		}()

		require.Eventually(t, func() bool { return svc.ticks.Load() >= 2 }, 5*time.Second, 50*time.Millisecond)
		cancel()
		require.NoError(t, <-done)
		require.EqualValues(t, 1, svc.refreshes.Load())
	})
}

func TestEvery(t *testing.T) {
	t.Parallel()

	require.Equal(t, "@every 30s", every(30*time.Second))
	require.Equal(t, "@every 3m0s", every(180*time.Second))
	require.Equal(t, "@every 1s", every(0))
}
