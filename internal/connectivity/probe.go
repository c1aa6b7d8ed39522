package connectivity

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/fekuna/omnipos-pos-agent/internal/logger"
	"go.uber.org/zap"
)

// ProbeFunc returns nil when the remote is reachable.
type ProbeFunc func(ctx context.Context) error

// ProbeMonitor polls a probe on a fixed interval. It starts offline until
// the first probe succeeds.
type ProbeMonitor struct {
	probe    ProbeFunc
	interval time.Duration
	online   atomic.Bool
	notifier *Notifier
	logger   logger.ZapLogger
}

var _ Monitor = (*ProbeMonitor)(nil)

func NewProbeMonitor(probe ProbeFunc, interval time.Duration, log logger.ZapLogger) *ProbeMonitor {
	return &ProbeMonitor{
		probe:    probe,
		interval: interval,
		notifier: NewNotifier(),
		logger:   log,
	}
}

func (m *ProbeMonitor) IsOnline() bool {
	return m.online.Load()
}

func (m *ProbeMonitor) OnChange(fn func(online bool)) func() {
	return m.notifier.Subscribe(fn)
}

// Run probes immediately and then on every interval until ctx is done.
func (m *ProbeMonitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Check(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Check(ctx)
		}
	}
}

// Check runs the probe once, bounded by the interval, and records the result.
func (m *ProbeMonitor) Check(ctx context.Context) bool {
	pctx, cancel := context.WithTimeout(ctx, m.interval)
	defer cancel()

	err := m.probe(pctx)
	online := err == nil
	if m.online.Swap(online) != online {
		m.logger.Info("connectivity changed", zap.Bool("online", online), zap.NamedError("probe_error", err))
		m.notifier.Publish(online)
	}
	return online
}

func (m *ProbeMonitor) Wait() {
	m.notifier.Wait()
}

// WaitOnline blocks until m reports online or ctx is done.
func WaitOnline(ctx context.Context, m Monitor) bool {
	changed := make(chan struct{}, 1)
	unsubscribe := m.OnChange(func(online bool) {
		if online {
			select {
			case changed <- struct{}{}:
			default:
			}
		}
	})
	defer unsubscribe()

	if m.IsOnline() {
		return true
	}
	select {
	case <-changed:
		return true
	case <-ctx.Done():
		return m.IsOnline()
	}
}
