// Package store defines the local, durable, partitioned record store the POS
// agent keeps its products, categories and transactions in.
package store

import (
	"context"
	"errors"
)

const (
	PartitionProducts     = "products"
	PartitionCategories   = "categories"
	PartitionTransactions = "transactions"
)

// Partitions lists every partition created by Open.
var Partitions = []string{PartitionProducts, PartitionCategories, PartitionTransactions}

var ErrUnknownPartition = errors.New("unknown partition")

// Tx is a read-write view over all partitions. Writes made through a Tx
// become visible together when the enclosing Update returns nil, and not at
// all otherwise.
type Tx interface {
	Get(partition, key string) ([]byte, error)
	GetAll(partition string) ([][]byte, error)
	Put(partition, key string, value []byte) error
	Delete(partition, key string) error
}

// Store is the Local Store. Get returns (nil, nil) when the key is absent.
// Every write is durable once the call returns.
type Store interface {
	Put(ctx context.Context, partition, key string, value []byte) error
	Get(ctx context.Context, partition, key string) ([]byte, error)
	GetAll(ctx context.Context, partition string) ([][]byte, error)
	Delete(ctx context.Context, partition, key string) error
	Clear(ctx context.Context, partition string) error
	Update(ctx context.Context, fn func(tx Tx) error) error
	Close() error
}

func IsPartition(name string) bool {
	for _, p := range Partitions {
		if p == name {
			return true
		}
	}
	return false
}
