package ingest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Ledger remembers which remote id each transaction id was given. Claim
// stores remoteID for a new transaction, or returns the id stored first.
type Ledger interface {
	Claim(ctx context.Context, transactionID, remoteID string) (stored string, existed bool, err error)
}

type MemoryLedger struct {
	mu  sync.Mutex
	ids map[string]string
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{ids: make(map[string]string)}
}

func (l *MemoryLedger) Claim(_ context.Context, transactionID, remoteID string) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if existing, ok := l.ids[transactionID]; ok {
		return existing, true, nil
	}
	l.ids[transactionID] = remoteID
	return remoteID, false, nil
}

func (l *MemoryLedger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.ids)
}

type redisClient interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// RedisLedger keeps claims in Redis so every ingest replica agrees on them.
type RedisLedger struct {
	client redisClient
	prefix string
}

func NewRedisLedger(client redisClient) *RedisLedger {
	return &RedisLedger{client: client, prefix: "ingest:txn:"}
}

func (l *RedisLedger) Claim(ctx context.Context, transactionID, remoteID string) (string, bool, error) {
	key := l.prefix + transactionID
	ok, err := l.client.SetNX(ctx, key, remoteID, 0).Result()
	if err != nil {
		return "", false, fmt.Errorf("failed to claim %s: %w", transactionID, err)
	}
	if ok {
		return remoteID, false, nil
	}

	existing, err := l.client.Get(ctx, key).Result()
	if err != nil {
		return "", false, fmt.Errorf("failed to read claim %s: %w", transactionID, err)
	}
	return existing, true, nil
}
