// Package bolt is the default Local Store backend: a single bbolt file with
// one bucket per partition.
package bolt

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-pos-agent/internal/apperr"
	"github.com/fekuna/omnipos-pos-agent/internal/store"
	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

type Store struct {
	db *bolt.DB
}

var _ store.Store = (*Store)(nil)

// Open opens (creating if needed) the database file and its partitions.
// Failure to open the file is reported as apperr.ErrStorageUnavailable.
func Open(path string, timeout time.Duration) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, errors.Wrapf(apperr.ErrStorageUnavailable, "open %s: %v", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, p := range store.Partitions {
			if _, err := tx.CreateBucketIfNotExists([]byte(p)); err != nil {
				return errors.Wrapf(err, "create partition %s", p)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(apperr.ErrStorageUnavailable, "init partitions: %v", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Put(ctx context.Context, partition, key string, value []byte) error {
	return s.Update(ctx, func(tx store.Tx) error {
		return tx.Put(partition, key, value)
	})
}

func (s *Store) Get(ctx context.Context, partition, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []byte
	err := s.db.View(func(btx *bolt.Tx) error {
		v, err := (&boltTx{tx: btx}).Get(partition, key)
		out = v
		return err
	})
	return out, err
}

func (s *Store) GetAll(ctx context.Context, partition string) ([][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out [][]byte
	err := s.db.View(func(btx *bolt.Tx) error {
		v, err := (&boltTx{tx: btx}).GetAll(partition)
		out = v
		return err
	})
	return out, err
}

func (s *Store) Delete(ctx context.Context, partition, key string) error {
	return s.Update(ctx, func(tx store.Tx) error {
		return tx.Delete(partition, key)
	})
}

func (s *Store) Clear(ctx context.Context, partition string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !store.IsPartition(partition) {
		return errors.Wrap(store.ErrUnknownPartition, partition)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket([]byte(partition)); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
			return errors.Wrapf(err, "clear %s", partition)
		}
		_, err := tx.CreateBucket([]byte(partition))
		return errors.Wrapf(err, "recreate %s", partition)
	})
}

func (s *Store) Update(ctx context.Context, fn func(tx store.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(btx *bolt.Tx) error {
		return fn(&boltTx{tx: btx})
	})
}

func (s *Store) Close() error {
	return s.db.Close()
}

type boltTx struct {
	tx *bolt.Tx
}

func (t *boltTx) bucket(partition string) (*bolt.Bucket, error) {
	b := t.tx.Bucket([]byte(partition))
	if b == nil {
		return nil, errors.Wrap(store.ErrUnknownPartition, partition)
	}
	return b, nil
}

func (t *boltTx) Get(partition, key string) ([]byte, error) {
	b, err := t.bucket(partition)
	if err != nil {
		return nil, err
	}
	v := b.Get([]byte(key))
	if v == nil {
		return nil, nil
	}
	// bbolt memory is only valid for the life of the transaction
	return append([]byte(nil), v...), nil
}

func (t *boltTx) GetAll(partition string) ([][]byte, error) {
	b, err := t.bucket(partition)
	if err != nil {
		return nil, err
	}
	var out [][]byte
	err = b.ForEach(func(_, v []byte) error {
		out = append(out, append([]byte(nil), v...))
		return nil
	})
	return out, err
}

func (t *boltTx) Put(partition, key string, value []byte) error {
	b, err := t.bucket(partition)
	if err != nil {
		return err
	}
	return errors.Wrapf(b.Put([]byte(key), value), "put %s/%s", partition, key)
}

func (t *boltTx) Delete(partition, key string) error {
	b, err := t.bucket(partition)
	if err != nil {
		return err
	}
	return errors.Wrapf(b.Delete([]byte(key)), "delete %s/%s", partition, key)
}
