// Package kafkasink publishes synced sales as OrderCreated events. The
// message key is the transaction id, so redeliveries of one sale land on the
// same partition and consumers can drop duplicates by event id.
package kafkasink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fekuna/omnipos-pos-agent/internal/auth"
	"github.com/fekuna/omnipos-pos-agent/internal/logger"
	"github.com/fekuna/omnipos-pos-agent/internal/model"
	"github.com/fekuna/omnipos-pos-agent/internal/remote"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Writer is the subset of *kafka.Writer used by the sink.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Config struct {
	Brokers []string
	Topic   string
}

func NewWriter(cfg *Config) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
	}
}

type Sink struct {
	writer   Writer
	topic    string
	terminal auth.Terminal
	logger   logger.ZapLogger
}

var _ remote.Sink = (*Sink)(nil)

func New(writer Writer, topic string, terminal auth.Terminal, log logger.ZapLogger) *Sink {
	return &Sink{
		writer:   writer,
		topic:    topic,
		terminal: terminal,
		logger:   log,
	}
}

// RemoteID is the identifier a transaction gets once its event is accepted
// by the brokers. It is derived, so republishing yields the same id.
func RemoteID(topic, transactionID string) string {
	return fmt.Sprintf("kafka:%s:%s", topic, transactionID)
}

func (s *Sink) Push(ctx context.Context, tx *model.Transaction) (string, error) {
	event := remote.NewOrderCreatedEvent(tx, s.terminal.MerchantID, s.terminal.StoreID)
	value, err := json.Marshal(event)
	if err != nil {
		return "", remote.Rejected(err)
	}

	msg := kafka.Message{
		Key:   []byte(tx.ID),
		Value: value,
		Headers: []kafka.Header{
			{Key: remote.IdempotencyKeyHeader, Value: []byte(tx.ID)},
		},
	}
	if err := s.writer.WriteMessages(ctx, msg); err != nil {
		return "", classify(err)
	}

	remoteID := RemoteID(s.topic, tx.ID)
	s.logger.Debug("order event published", zap.String("transaction_id", tx.ID), zap.String("topic", s.topic))
	return remoteID, nil
}

func (s *Sink) Close() error {
	return s.writer.Close()
}

// classify treats broker errors Kafka marks as non retriable as rejections.
// Anything else, including dial failures and deadlines, is transient.
func classify(err error) error {
	var writeErrs kafka.WriteErrors
	if errors.As(err, &writeErrs) {
		for _, e := range writeErrs {
			if e != nil {
				return classify(e)
			}
		}
	}

	var kerr kafka.Error
	if errors.As(err, &kerr) && !kerr.Temporary() {
		return remote.Rejected(err)
	}
	return remote.Transient(err)
}

// Probe reports whether any of the brokers accepts a connection.
func Probe(brokers []string) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		var dialer kafka.Dialer
		err := errors.New("no kafka brokers configured")
		for _, broker := range brokers {
			conn, dialErr := dialer.DialContext(ctx, "tcp", broker)
			if dialErr == nil {
				return conn.Close()
			}
			err = dialErr
		}
		return err
	}
}
