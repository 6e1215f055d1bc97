package arena

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	shmerrors "github.com/iamNilotpal/shmgds/pkg/errors"
)

func newTestArena(t *testing.T, size int) (*Arena, *uintptr) {
	t.Helper()
	buf := make([]byte, size)
	base := uintptr(unsafe.Pointer(&buf[0]))
	cursor := base
	return New(base, uintptr(size), &cursor, false, "test/JOB"), &cursor
}

func TestAllocReturnsAligned(t *testing.T) {
	a, _ := newTestArena(t, 4096)

	addr1, err := a.Alloc(3)
	require.NoError(t, err)
	assert.Zero(t, uintptr(addr1)%8)

	addr2, err := a.Alloc(1)
	require.NoError(t, err)
	assert.Zero(t, uintptr(addr2)%8)
}

func TestSecondAllocFollowsAlign8OfFirst(t *testing.T) {
	a, _ := newTestArena(t, 4096)

	addr1, err := a.Alloc(10)
	require.NoError(t, err)

	addr2, err := a.Alloc(1)
	require.NoError(t, err)

	assert.Equal(t, align8(uintptr(addr1)+10), uintptr(addr2))
}

func TestCallocZeroFills(t *testing.T) {
	a, _ := newTestArena(t, 4096)

	addr, err := a.Calloc(4, 4)
	require.NoError(t, err)
	for _, b := range a.Bytes(addr, 16) {
		assert.Equal(t, byte(0), b)
	}
}

func TestStrdupRoundTrips(t *testing.T) {
	a, _ := newTestArena(t, 4096)

	addr, err := a.Strdup("hello")
	require.NoError(t, err)

	raw := a.Bytes(addr, 6)
	assert.Equal(t, "hello\x00", string(raw))
}

func TestAllocOverflowIsArenaOverflowError(t *testing.T) {
	a, _ := newTestArena(t, 16)

	_, err := a.Alloc(17)
	require.Error(t, err)
	assert.True(t, shmerrors.IsArenaOverflow(err))
}

func TestReallocIsUnsupported(t *testing.T) {
	a, _ := newTestArena(t, 4096)

	_, err := a.Realloc(AddrNull, 8)
	require.Error(t, err)
	assert.True(t, shmerrors.IsUnsupported(err))
}

func TestFreeIsNoop(t *testing.T) {
	a, _ := newTestArena(t, 4096)

	addr, err := a.Alloc(8)
	require.NoError(t, err)
	before := a.Cursor()

	a.Free(addr)
	assert.Equal(t, before, a.Cursor())
}

func TestMonotonicCursor(t *testing.T) {
	a, _ := newTestArena(t, 4096)

	last := a.Cursor()
	for i := 0; i < 32; i++ {
		addr, err := a.Alloc(uintptr(i%7 + 1))
		require.NoError(t, err)
		assert.GreaterOrEqual(t, uintptr(addr), last)
		last = a.Cursor()
	}
}
