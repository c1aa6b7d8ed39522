package ingest

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fekuna/omnipos-pos-agent/internal/logger"
	"github.com/fekuna/omnipos-pos-agent/internal/remote"
	"github.com/fekuna/omnipos-pos-agent/internal/remote/kafkasink"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Reader is the subset of *kafka.Reader the listener consumes from.
type Reader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

type ReaderConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

func NewReader(cfg *ReaderConfig) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers: cfg.Brokers,
		Topic:   cfg.Topic,
		GroupID: cfg.GroupID,
	})
}

// OrderListener claims OrderCreated events in the ledger, so a sale that
// arrives both as an event and as a gRPC push keeps one remote id.
type OrderListener struct {
	reader Reader
	topic  string
	ledger Ledger
	logger logger.ZapLogger
}

func NewOrderListener(reader Reader, topic string, ledger Ledger, log logger.ZapLogger) *OrderListener {
	return &OrderListener{
		reader: reader,
		topic:  topic,
		ledger: ledger,
		logger: log,
	}
}

func (l *OrderListener) Start(ctx context.Context) {
	l.logger.Info("Starting order event listener", zap.String("topic", l.topic))
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping order event listener")
			return
		default:
			msg, err := l.reader.ReadMessage(ctx)
			if err != nil {
				// Don't log context canceled error as error
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("Failed to read kafka message", zap.Error(err))
				time.Sleep(1 * time.Second)
				continue
			}
			l.processMessage(ctx, msg.Value)
		}
	}
}

func (l *OrderListener) processMessage(ctx context.Context, value []byte) {
	var event remote.OrderCreatedEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("Failed to unmarshal event", zap.Error(err))
		return
	}
	if event.EventType != remote.EventTypeOrderCreated || event.Payload.ID == "" {
		return
	}

	remoteID, duplicate, err := l.ledger.Claim(ctx, event.Payload.ID, kafkasink.RemoteID(l.topic, event.Payload.ID))
	if err != nil {
		l.logger.Error("Failed to claim order event", zap.String("transaction_id", event.Payload.ID), zap.Error(err))
		return
	}
	l.logger.Info("order event claimed",
		zap.String("transaction_id", event.Payload.ID),
		zap.String("remote_id", remoteID),
		zap.Bool("duplicate", duplicate),
	)
}
