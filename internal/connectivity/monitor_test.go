package connectivity

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []bool
}

func (r *recorder) record(online bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, online)
}

func (r *recorder) get() []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]bool(nil), r.events...)
}

func TestManualMonitorTransitions(t *testing.T) {
	m := NewManualMonitor(false)
	assert.False(t, m.IsOnline())

	var rec recorder
	unsubscribe := m.OnChange(rec.record)

	m.SetOnline(true)
	m.SetOnline(true) // no transition
	m.SetOnline(false)
	m.SetOnline(true)
	m.Wait()

	assert.True(t, m.IsOnline())
	assert.Equal(t, []bool{true, false, true}, rec.get())

	unsubscribe()
	unsubscribe()
	m.SetOnline(false)
	m.Wait()
	assert.Len(t, rec.get(), 3)
}

func TestNotifierSubscribersAreIndependent(t *testing.T) {
	m := NewManualMonitor(true)

	var first, second recorder
	stopFirst := m.OnChange(first.record)
	m.OnChange(second.record)

	m.SetOnline(false)
	m.Wait()
	stopFirst()

	m.SetOnline(true)
	m.Wait()

	require.Equal(t, []bool{false}, first.get())
	assert.Equal(t, []bool{false, true}, second.get())
}

func TestRapidFlappingDeliversEveryTransition(t *testing.T) {
	m := NewManualMonitor(false)

	var rec recorder
	m.OnChange(rec.record)
	for i := 0; i < 50; i++ {
		m.SetOnline(i%2 == 0)
	}
	m.Wait()

	events := rec.get()
	require.Len(t, events, 50)
	for i, online := range events {
		assert.Equal(t, i%2 == 0, online)
	}
}
