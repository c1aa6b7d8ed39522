package kafkasink

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/fekuna/omnipos-pos-agent/internal/apperr"
	"github.com/fekuna/omnipos-pos-agent/internal/auth"
	"github.com/fekuna/omnipos-pos-agent/internal/logger"
	"github.com/fekuna/omnipos-pos-agent/internal/model"
	"github.com/fekuna/omnipos-pos-agent/internal/remote"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	err      error
	messages []kafka.Message
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func sale() *model.Transaction {
	tx := &model.Transaction{
		ID: "txn_42_abc",
		Items: []model.LineItem{
			{ProductID: "prod_1", Name: "Latte", UnitPrice: decimal.RequireFromString("8.50"), Quantity: 2},
		},
		CreatedAt:  time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC),
		SyncStatus: model.SyncStatusUnsynced,
	}
	tx.ComputeTotals(decimal.Zero)
	return tx
}

func TestPushPublishesKeyedEvent(t *testing.T) {
	w := &fakeWriter{}
	sink := New(w, "orders.events", auth.Terminal{MerchantID: "m-1", StoreID: "s-1"}, logger.NewNop())

	id, err := sink.Push(context.Background(), sale())
	require.NoError(t, err)
	assert.Equal(t, "kafka:orders.events:txn_42_abc", id)

	require.Len(t, w.messages, 1)
	msg := w.messages[0]
	assert.Equal(t, "txn_42_abc", string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, remote.IdempotencyKeyHeader, msg.Headers[0].Key)

	var event remote.OrderCreatedEvent
	require.NoError(t, json.Unmarshal(msg.Value, &event))
	assert.Equal(t, remote.EventTypeOrderCreated, event.EventType)
	assert.Equal(t, "txn_42_abc", event.EventID)
	assert.Equal(t, "m-1", event.Payload.MerchantID)
	assert.Equal(t, "17", event.Payload.Total)
	require.Len(t, event.Payload.Items, 1)
	assert.Equal(t, 2, event.Payload.Items[0].Quantity)

	again, err := sink.Push(context.Background(), sale())
	require.NoError(t, err)
	assert.Equal(t, id, again)
}

func TestPushClassifiesErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"leader not available", kafka.LeaderNotAvailable, apperr.ErrRemoteTransient},
		{"message too large", kafka.MessageSizeTooLarge, apperr.ErrRemoteRejected},
		{"topic authorization", kafka.TopicAuthorizationFailed, apperr.ErrRemoteRejected},
		{"write errors", kafka.WriteErrors{nil, kafka.MessageSizeTooLarge}, apperr.ErrRemoteRejected},
		{"retriable write errors", kafka.WriteErrors{kafka.NotEnoughReplicas}, apperr.ErrRemoteTransient},
		{"dial failure", errors.New("dial tcp: connection refused"), apperr.ErrRemoteTransient},
		{"deadline", context.DeadlineExceeded, apperr.ErrRemoteTransient},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := New(&fakeWriter{err: tt.err}, "orders.events", auth.Terminal{}, logger.NewNop())
			_, err := sink.Push(context.Background(), sale())
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestProbe(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	assert.Error(t, Probe(nil)(ctx))
	assert.Error(t, Probe([]string{"127.0.0.1:1"})(ctx))
}
