package connectivity

import (
	"fmt"
	"sync"

	"github.com/asaskevich/EventBus"
)

const topicPrefix = "connectivity.changed"

// Notifier fans transitions out to subscribers. Each subscriber gets its own
// transactional topic, so its callbacks never overlap and keep publish order.
type Notifier struct {
	bus EventBus.Bus

	mu     sync.Mutex
	next   uint64
	topics map[uint64]string
}

func NewNotifier() *Notifier {
	return &Notifier{
		bus:    EventBus.New(),
		topics: make(map[uint64]string),
	}
}

func (n *Notifier) Subscribe(fn func(online bool)) func() {
	n.mu.Lock()
	n.next++
	id := n.next
	topic := fmt.Sprintf("%s.%d", topicPrefix, id)
	n.topics[id] = topic
	n.mu.Unlock()

	// only fails when fn is not a func
	_ = n.bus.SubscribeAsync(topic, fn, true)

	var once sync.Once
	return func() {
		once.Do(func() {
			n.mu.Lock()
			delete(n.topics, id)
			n.mu.Unlock()
			_ = n.bus.Unsubscribe(topic, fn)
		})
	}
}

func (n *Notifier) Publish(online bool) {
	n.mu.Lock()
	topics := make([]string, 0, len(n.topics))
	for _, topic := range n.topics {
		topics = append(topics, topic)
	}
	n.mu.Unlock()

	for _, topic := range topics {
		n.bus.Publish(topic, online)
	}
}

func (n *Notifier) Wait() {
	n.bus.WaitAsync()
}
