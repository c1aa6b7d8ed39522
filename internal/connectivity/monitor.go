// Package connectivity tracks whether the terminal can reach the remote
// system and tells subscribers about every online/offline transition.
package connectivity

import (
	"sync/atomic"
)

// Monitor reports the current connectivity state. OnChange callbacks run on
// their own goroutine, in transition order, and must not block for long.
type Monitor interface {
	IsOnline() bool
	OnChange(fn func(online bool)) (unsubscribe func())
}

// ManualMonitor is driven explicitly through SetOnline. Tests and the CLI's
// --offline mode use it.
type ManualMonitor struct {
	online   atomic.Bool
	notifier *Notifier
}

var _ Monitor = (*ManualMonitor)(nil)

func NewManualMonitor(online bool) *ManualMonitor {
	m := &ManualMonitor{notifier: NewNotifier()}
	m.online.Store(online)
	return m
}

func (m *ManualMonitor) IsOnline() bool {
	return m.online.Load()
}

func (m *ManualMonitor) OnChange(fn func(online bool)) func() {
	return m.notifier.Subscribe(fn)
}

// SetOnline records the new state and notifies subscribers if it changed.
func (m *ManualMonitor) SetOnline(online bool) {
	if m.online.Swap(online) != online {
		m.notifier.Publish(online)
	}
}

// Wait blocks until every queued notification has been delivered.
func (m *ManualMonitor) Wait() {
	m.notifier.Wait()
}
