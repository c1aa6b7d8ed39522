package connectivity

import (
	"context"
	"sync/atomic"

	"github.com/fekuna/omnipos-pos-agent/internal/logger"
	"go.uber.org/zap"
	grpcstate "google.golang.org/grpc/connectivity"
)

// StateSource is the part of *grpc.ClientConn the monitor watches.
type StateSource interface {
	GetState() grpcstate.State
	WaitForStateChange(ctx context.Context, sourceState grpcstate.State) bool
	Connect()
}

// GRPCMonitor derives online/offline from the state of the client
// connection to the remote. Ready is online; TransientFailure and Shutdown
// are offline; Idle and Connecting keep the previous state.
type GRPCMonitor struct {
	conn     StateSource
	online   atomic.Bool
	notifier *Notifier
	logger   logger.ZapLogger
}

var _ Monitor = (*GRPCMonitor)(nil)

func NewGRPCMonitor(conn StateSource, log logger.ZapLogger) *GRPCMonitor {
	m := &GRPCMonitor{
		conn:     conn,
		notifier: NewNotifier(),
		logger:   log,
	}
	m.online.Store(conn.GetState() == grpcstate.Ready)
	return m
}

func (m *GRPCMonitor) IsOnline() bool {
	return m.online.Load()
}

func (m *GRPCMonitor) OnChange(fn func(online bool)) func() {
	return m.notifier.Subscribe(fn)
}

// Run follows connection state changes until ctx is done or the connection
// shuts down. An idle connection is asked to reconnect.
func (m *GRPCMonitor) Run(ctx context.Context) {
	for {
		state := m.conn.GetState()
		m.observe(state)
		if state == grpcstate.Shutdown {
			return
		}
		if state == grpcstate.Idle {
			m.conn.Connect()
		}
		if !m.conn.WaitForStateChange(ctx, state) {
			return
		}
	}
}

func (m *GRPCMonitor) observe(state grpcstate.State) {
	var online bool
	switch state {
	case grpcstate.Ready:
		online = true
	case grpcstate.TransientFailure, grpcstate.Shutdown:
		online = false
	default:
		return
	}
	if m.online.Swap(online) != online {
		m.logger.Info("connectivity changed", zap.Bool("online", online), zap.String("state", state.String()))
		m.notifier.Publish(online)
	}
}

func (m *GRPCMonitor) Wait() {
	m.notifier.Wait()
}
