package bolt

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fekuna/omnipos-pos-agent/internal/apperr"
	"github.com/fekuna/omnipos-pos-agent/internal/store"
	"github.com/fekuna/omnipos-pos-agent/internal/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T, path string) store.Store {
		s, err := Open(path, time.Second)
		require.NoError(t, err)
		return s
	})
}

func TestOpenUnavailable(t *testing.T) {
	dir := t.TempDir()
	// a directory cannot be opened as a database file
	_, err := Open(dir, 100*time.Millisecond)
	assert.ErrorIs(t, err, apperr.ErrStorageUnavailable)

	_, err = Open(filepath.Join(dir, "missing", "pos.db"), 100*time.Millisecond)
	assert.ErrorIs(t, err, apperr.ErrStorageUnavailable)
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pos.db")
	for i := 0; i < 3; i++ {
		s, err := Open(path, time.Second)
		require.NoError(t, err)
		require.NoError(t, s.Close())
	}
	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestConcurrentOpenSharesPartitions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pos.db")
	const openers = 8

	var wg sync.WaitGroup
	errs := make(chan error, openers)
	for i := 0; i < openers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// the file lock serializes openers; each waits its turn
			s, err := Open(path, 10*time.Second)
			if err != nil {
				errs <- err
				return
			}
			key := fmt.Sprintf("prod_%d", i)
			if err := s.Put(context.Background(), store.PartitionProducts, key, []byte(`{}`)); err != nil {
				errs <- err
			}
			errs <- s.Close()
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	s, err := Open(path, time.Second)
	require.NoError(t, err)
	defer s.Close()
	rows, err := s.GetAll(context.Background(), store.PartitionProducts)
	require.NoError(t, err)
	assert.Len(t, rows, openers, "no opener recreated a partition over another's writes")
}
