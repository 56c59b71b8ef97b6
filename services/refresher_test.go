package services

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/judo-pools/brackets"
	"github.com/Dosada05/judo-pools/metrics"
)

func TestRefreshPublishesBoard(t *testing.T) {
	f := newPoolFixture(t)
	m := metrics.New()
	r := NewRefresher(f.store.loader(2), f.notifier, m, time.Minute, discardLogger())

	require.NoError(t, r.Refresh(context.Background()))

	assert.Equal(t, []string{brackets.MessageBoardUpdated}, f.notifier.types(brackets.RoomBoard))
	assert.Equal(t, []string{brackets.MessageBoardUpdated}, f.notifier.types(brackets.TableRoom(1)))
	assert.Equal(t, []string{brackets.MessageBoardUpdated}, f.notifier.types(brackets.TableRoom(2)))

	assert.Equal(t, 3.0, testutil.ToFloat64(m.TableLoad.WithLabelValues("1")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TableLoad.WithLabelValues("2")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.PoolsByStatus.WithLabelValues("not_started")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.RefreshFailures))
}

func TestRefresherStopsOnCancel(t *testing.T) {
	f := newPoolFixture(t)
	r := NewRefresher(f.store.loader(2), f.notifier, metrics.New(), 10*time.Millisecond, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return len(f.notifier.types(brackets.RoomBoard)) >= 2
	}, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("refresher did not stop after cancellation")
	}
}
