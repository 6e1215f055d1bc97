package hashtable

import (
	"fmt"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamNilotpal/shmgds/internal/arena"
)

func newTestArena(t *testing.T, size int) *arena.Arena {
	t.Helper()
	buf := make([]byte, size)
	base := uintptr(unsafe.Pointer(&buf[0]))
	cursor := base
	return arena.New(base, uintptr(size), &cursor, false, "test/JOB")
}

func TestInitRoundsCapacityToPowerOfTwo(t *testing.T) {
	a := newTestArena(t, 1<<20)
	tbl := New(a)

	require.NoError(t, tbl.Init(1024))
	assert.Equal(t, uint64(1024), tbl.ActualCapacity())
}

func TestModexHeuristicCapacityForFourPeers(t *testing.T) {
	const perPeer = 256
	const nPeers = 4

	a := newTestArena(t, 1<<20)
	tbl := New(a)

	require.NoError(t, tbl.Init(perPeer*nPeers))
	assert.Equal(t, uint64(1024), tbl.ActualCapacity())
}

func TestInsertAndLookupRoundTrip(t *testing.T) {
	a := newTestArena(t, 1<<20)
	tbl := New(a)
	require.NoError(t, tbl.Init(16))

	valAddr, err := a.Strdup("v1")
	require.NoError(t, err)
	require.NoError(t, tbl.Insert("k1", valAddr, 3))

	gotAddr, gotLen, ok := tbl.Lookup("k1")
	require.True(t, ok)
	assert.Equal(t, "v1\x00", string(a.Bytes(gotAddr, uintptr(gotLen))))

	_, _, ok = tbl.Lookup("missing")
	assert.False(t, ok)
}

func TestInsertFailsWhenFull(t *testing.T) {
	a := newTestArena(t, 1<<20)
	tbl := New(a)
	require.NoError(t, tbl.Init(2))

	for i := 0; i < 2; i++ {
		valAddr, err := a.Strdup(fmt.Sprintf("v%d", i))
		require.NoError(t, err)
		require.NoError(t, tbl.Insert(fmt.Sprintf("k%d", i), valAddr, 3))
	}

	valAddr, err := a.Strdup("overflow")
	require.NoError(t, err)
	err = tbl.Insert("one-too-many", valAddr, 9)
	assert.Error(t, err)
}

func TestHashKeyIsDeterministicAcrossCalls(t *testing.T) {
	// hashKey must not depend on any per-process seed: a client attaching a
	// table built by a different process has to land on the exact same
	// bucket for the same key, or linear probing will never find what the
	// creator stored.
	assert.Equal(t, hashKey("peer-42"), hashKey("peer-42"))
	assert.NotEqual(t, hashKey("peer-42"), hashKey("peer-43"))
}

func TestAttachSharesUnderlyingStorage(t *testing.T) {
	a := newTestArena(t, 1<<20)
	tbl := New(a)
	require.NoError(t, tbl.Init(8))

	valAddr, err := a.Strdup("value")
	require.NoError(t, err)
	require.NoError(t, tbl.Insert("key", valAddr, 6))

	clientView := Attach(a, tbl.BucketsAddr(), tbl.ActualCapacity(), tbl.Count())
	gotAddr, gotLen, ok := clientView.Lookup("key")
	require.True(t, ok)
	assert.Equal(t, "value\x00", string(a.Bytes(gotAddr, uintptr(gotLen))))
}
