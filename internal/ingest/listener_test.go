package ingest

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/fekuna/omnipos-pos-agent/internal/logger"
	"github.com/fekuna/omnipos-pos-agent/internal/remote"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chanReader struct {
	msgs chan kafka.Message
}

func (r *chanReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case m := <-r.msgs:
		return m, nil
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	}
}

func (r *chanReader) Close() error { return nil }

func TestOrderListenerClaimsEvents(t *testing.T) {
	ledger := NewMemoryLedger()
	reader := &chanReader{msgs: make(chan kafka.Message)}
	l := NewOrderListener(reader, "orders.events", ledger, logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		l.Start(ctx)
		close(done)
	}()

	event, err := json.Marshal(remote.NewOrderCreatedEvent(sale("txn_1"), "m-1", "s-1"))
	require.NoError(t, err)
	reader.msgs <- kafka.Message{Value: []byte("not json")}
	reader.msgs <- kafka.Message{Value: []byte(`{"event_type":"OrderCancelled","payload":{"id":"txn_9"}}`)}
	reader.msgs <- kafka.Message{Value: event}
	reader.msgs <- kafka.Message{Value: event}
	// one more message so the previous one has been processed
	reader.msgs <- kafka.Message{Value: []byte("{}")}

	assert.Equal(t, 1, ledger.Len())
	id, existed, err := ledger.Claim(context.Background(), "txn_1", "other")
	require.NoError(t, err)
	assert.True(t, existed)
	assert.Equal(t, "kafka:orders.events:txn_1", id)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("listener did not stop")
	}
}
