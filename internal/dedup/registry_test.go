package dedup

import (
	"testing"

	"github.com/inkstream/isf/internal/hash"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	require.Equal(t, 0, r.Count())
	require.False(t, r.HasCollision())
}

func TestInternReturnsSameIndexForIdenticalContent(t *testing.T) {
	r := NewRegistry()

	a := r.Intern([]byte("attrset-a"))
	b := r.Intern([]byte("attrset-a"))
	require.Equal(t, a, b)
	require.Equal(t, 1, r.Count())
}

func TestInternAppendsDistinctContent(t *testing.T) {
	r := NewRegistry()

	a := r.Intern([]byte("attrset-a"))
	b := r.Intern([]byte("attrset-b"))
	require.NotEqual(t, a, b)
	require.Equal(t, 2, r.Count())
	require.False(t, r.HasCollision())
}

func TestInternDetectsHashCollisionWithoutMerging(t *testing.T) {
	r := NewRegistry()
	r.values = append(r.values, []byte("first"))
	// Force a fabricated bucket collision: "second" reports as already
	// occupying the bucket belonging to "first", even though their real
	// content differs and their real hashes (almost certainly) don't match.
	r.byHash[hash.Bytes([]byte("second"))] = 0

	idx := r.Intern([]byte("second"))
	require.NotEqual(t, 0, idx)
	require.True(t, r.HasCollision())
	require.Equal(t, 2, r.Count())
}

func TestReset(t *testing.T) {
	r := NewRegistry()
	r.Intern([]byte("a"))
	r.Intern([]byte("b"))
	require.Equal(t, 2, r.Count())

	r.Reset()
	require.Equal(t, 0, r.Count())
	require.False(t, r.HasCollision())

	idx := r.Intern([]byte("c"))
	require.Equal(t, 0, idx)
}
