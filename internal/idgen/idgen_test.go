package idgen

import (
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextFormat(t *testing.T) {
	gen, err := New(1)
	require.NoError(t, err)

	id := gen.Next(PrefixTransaction)
	parts := strings.Split(id, "_")
	require.Len(t, parts, 3)
	assert.Equal(t, "txn", parts[0])
	assert.NotEmpty(t, parts[1])
	assert.Len(t, parts[2], suffixLen)
}

func TestNextIsUniqueAndOrdered(t *testing.T) {
	gen, err := New(7)
	require.NoError(t, err)

	const n = 2000
	seen := make(map[string]struct{}, n)
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		id := gen.Next(PrefixProduct)
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	middle := func(id string) string { return strings.Split(id, "_")[1] }
	assert.True(t, sort.SliceIsSorted(ids, func(i, j int) bool {
		return middle(ids[i]) < middle(ids[j])
	}), "ids should sort by creation order")
}

func TestNewRejectsOutOfRangeNode(t *testing.T) {
	_, err := New(5000)
	assert.Error(t, err)
}
