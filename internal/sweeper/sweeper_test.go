// AngelaMos | 2026
// sweeper_test.go

package sweeper

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/commerce-backend/internal/config"
)

type countingStore struct {
	mu      sync.Mutex
	calls   int
	cutoffs []time.Time
}

func (s *countingStore) record(olderThan time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.cutoffs = append(s.cutoffs, olderThan)
}

func (s *countingStore) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *countingStore) lastCutoff() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cutoffs[len(s.cutoffs)-1]
}

type countingCarts struct{ countingStore }

func (s *countingCarts) DeleteStale(
	_ context.Context,
	olderThan time.Time,
) (int64, error) {
	s.record(olderThan)
	return 1, nil
}

type countingOrders struct{ countingStore }

func (s *countingOrders) CancelStale(
	_ context.Context,
	olderThan time.Time,
) (int64, error) {
	s.record(olderThan)
	return 2, nil
}

func TestSweeperRunsImmediatelyAndStopsOnCancel(t *testing.T) {
	carts := &countingCarts{}
	orders := &countingOrders{}

	s := New(carts, orders, config.SweepConfig{
		Interval:       time.Hour,
		CartRetention:  24 * time.Hour,
		OrderRetention: 24 * time.Hour,
	}, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return carts.callCount() == 1 && orders.callCount() == 1
	}, time.Second, 10*time.Millisecond)

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}
}

func TestSweeperTicks(t *testing.T) {
	carts := &countingCarts{}
	orders := &countingOrders{}

	s := New(carts, orders, config.SweepConfig{
		Interval:       10 * time.Millisecond,
		CartRetention:  time.Hour,
		OrderRetention: time.Hour,
	}, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go s.Run(ctx)

	require.Eventually(t, func() bool {
		return carts.callCount() >= 3 && orders.callCount() >= 3
	}, time.Second, 5*time.Millisecond)
}

func TestSweeperCutoffsFollowRetention(t *testing.T) {
	carts := &countingCarts{}
	orders := &countingOrders{}

	s := New(carts, orders, config.SweepConfig{
		Interval:       time.Hour,
		CartRetention:  24 * time.Hour,
		OrderRetention: 6 * time.Hour,
	}, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s.sweep(ctx)

	now := time.Now().UTC()
	assert.WithinDuration(t, now.Add(-24*time.Hour), carts.lastCutoff(), time.Minute)
	assert.WithinDuration(t, now.Add(-6*time.Hour), orders.lastCutoff(), time.Minute)
}
