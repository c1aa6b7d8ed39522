package connectivity

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fekuna/omnipos-pos-agent/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbeMonitorTracksProbeResult(t *testing.T) {
	var reachable atomic.Bool
	m := NewProbeMonitor(func(context.Context) error {
		if reachable.Load() {
			return nil
		}
		return errors.New("dial tcp: connection refused")
	}, time.Second, logger.NewNop())

	var rec recorder
	m.OnChange(rec.record)
	ctx := context.Background()

	assert.False(t, m.Check(ctx))
	assert.False(t, m.IsOnline())

	reachable.Store(true)
	assert.True(t, m.Check(ctx))
	assert.True(t, m.Check(ctx))

	reachable.Store(false)
	assert.False(t, m.Check(ctx))
	m.Wait()

	assert.Equal(t, []bool{true, false}, rec.get())
}

func TestProbeMonitorRun(t *testing.T) {
	var calls atomic.Int32
	m := NewProbeMonitor(func(context.Context) error {
		calls.Add(1)
		return nil
	}, 10*time.Millisecond, logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	assert.True(t, m.IsOnline())
	cancel()
	<-done
}

func TestWaitOnline(t *testing.T) {
	m := NewManualMonitor(false)

	go func() {
		time.Sleep(20 * time.Millisecond)
		m.SetOnline(true)
	}()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.True(t, WaitOnline(ctx, m))

	offline := NewManualMonitor(false)
	short, cancelShort := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancelShort()
	assert.False(t, WaitOnline(short, offline))
}
