// Package sqlite is a Local Store backend on a SQLite file, for terminals
// where operators want to inspect the data with ordinary SQL tools.
package sqlite

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/fekuna/omnipos-pos-agent/internal/apperr"
	"github.com/fekuna/omnipos-pos-agent/internal/store"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS partitions (
    name TEXT PRIMARY KEY
);
CREATE TABLE IF NOT EXISTS records (
    partition  TEXT NOT NULL REFERENCES partitions(name),
    key        TEXT NOT NULL,
    value      BLOB NOT NULL,
    updated_at TIMESTAMP NOT NULL,
    PRIMARY KEY (partition, key)
);
`

type Store struct {
	DB *sqlx.DB
}

var _ store.Store = (*Store)(nil)

type record struct {
	Partition string    `db:"partition"`
	Key       string    `db:"key"`
	Value     []byte    `db:"value"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Open opens the database at path and creates any missing partitions.
func Open(ctx context.Context, path string, timeout time.Duration) (*Store, error) {
	dsn := path + "?_journal_mode=WAL&_synchronous=FULL&_busy_timeout=" + timeoutMillis(timeout)
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.Wrapf(apperr.ErrStorageUnavailable, "open %s: %v", path, err)
	}
	// a single connection serializes writers and avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(apperr.ErrStorageUnavailable, "ping %s: %v", path, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(apperr.ErrStorageUnavailable, "init schema: %v", err)
	}
	for _, p := range store.Partitions {
		if _, err := db.ExecContext(ctx, `INSERT OR IGNORE INTO partitions (name) VALUES (?)`, p); err != nil {
			_ = db.Close()
			return nil, errors.Wrapf(apperr.ErrStorageUnavailable, "create partition %s: %v", p, err)
		}
	}

	return &Store{DB: db}, nil
}

func timeoutMillis(d time.Duration) string {
	ms := d.Milliseconds()
	if ms <= 0 {
		ms = 5000
	}
	return strconv.FormatInt(ms, 10)
}

func (s *Store) Put(ctx context.Context, partition, key string, value []byte) error {
	return s.Update(ctx, func(tx store.Tx) error {
		return tx.Put(partition, key, value)
	})
}

func (s *Store) Get(ctx context.Context, partition, key string) ([]byte, error) {
	return (&sqlTx{ctx: ctx, q: s.DB}).Get(partition, key)
}

func (s *Store) GetAll(ctx context.Context, partition string) ([][]byte, error) {
	return (&sqlTx{ctx: ctx, q: s.DB}).GetAll(partition)
}

func (s *Store) Delete(ctx context.Context, partition, key string) error {
	return s.Update(ctx, func(tx store.Tx) error {
		return tx.Delete(partition, key)
	})
}

func (s *Store) Clear(ctx context.Context, partition string) error {
	if !store.IsPartition(partition) {
		return errors.Wrap(store.ErrUnknownPartition, partition)
	}
	_, err := s.DB.ExecContext(ctx, `DELETE FROM records WHERE partition = ?`, partition)
	return errors.Wrapf(err, "clear %s", partition)
}

func (s *Store) Update(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin")
	}
	defer tx.Rollback()

	if err := fn(&sqlTx{ctx: ctx, q: tx}); err != nil {
		return err
	}
	return errors.Wrap(tx.Commit(), "commit")
}

func (s *Store) Close() error {
	return s.DB.Close()
}

type queryer interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error)
}

type sqlTx struct {
	ctx context.Context
	q   queryer
}

func (t *sqlTx) Get(partition, key string) ([]byte, error) {
	if !store.IsPartition(partition) {
		return nil, errors.Wrap(store.ErrUnknownPartition, partition)
	}
	var value []byte
	err := t.q.GetContext(t.ctx, &value, `SELECT value FROM records WHERE partition = ? AND key = ?`, partition, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "get %s/%s", partition, key)
	}
	return value, nil
}

func (t *sqlTx) GetAll(partition string) ([][]byte, error) {
	if !store.IsPartition(partition) {
		return nil, errors.Wrap(store.ErrUnknownPartition, partition)
	}
	var values [][]byte
	err := t.q.SelectContext(t.ctx, &values, `SELECT value FROM records WHERE partition = ? ORDER BY key ASC`, partition)
	if err != nil {
		return nil, errors.Wrapf(err, "scan %s", partition)
	}
	return values, nil
}

func (t *sqlTx) Put(partition, key string, value []byte) error {
	if !store.IsPartition(partition) {
		return errors.Wrap(store.ErrUnknownPartition, partition)
	}
	query := `
        INSERT INTO records (partition, key, value, updated_at)
        VALUES (:partition, :key, :value, :updated_at)
        ON CONFLICT (partition, key)
        DO UPDATE SET
            value = excluded.value,
            updated_at = excluded.updated_at
    `
	_, err := t.q.NamedExecContext(t.ctx, query, &record{
		Partition: partition,
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	})
	return errors.Wrapf(err, "put %s/%s", partition, key)
}

func (t *sqlTx) Delete(partition, key string) error {
	if !store.IsPartition(partition) {
		return errors.Wrap(store.ErrUnknownPartition, partition)
	}
	_, err := t.q.ExecContext(t.ctx, `DELETE FROM records WHERE partition = ? AND key = ?`, partition, key)
	return errors.Wrapf(err, "delete %s/%s", partition, key)
}
