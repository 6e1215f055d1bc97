package modex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamNilotpal/shmgds/internal/job"
	"github.com/iamNilotpal/shmgds/internal/segment"
	"github.com/iamNilotpal/shmgds/pkg/logger"
	"github.com/iamNilotpal/shmgds/pkg/options"
)

func newTestStore(t *testing.T) (*Store, *job.Registry) {
	t.Helper()
	opts := options.NewDefaultOptions()
	opts.NamespaceTmpDir = t.TempDir()
	opts.StaleCleanupOnStartup = false

	registry := job.New(&job.Config{Options: &opts, Logger: logger.Noop()})
	t.Cleanup(func() { registry.Shutdown() })

	return New(registry, &opts, logger.Noop()), registry
}

func TestLazyCreationWithFourPeersYieldsCapacity1024(t *testing.T) {
	store, registry := newTestStore(t)

	for i, peer := range []string{"p0", "p1", "p2", "p3"} {
		payload := []byte{byte(i)}
		require.NoError(t, store.HandleFence("nsA", peer, payload, 4))
	}

	tr := registry.Tracker("nsA")
	require.NotNil(t, tr)

	h := tr.Header(segment.RoleModex)
	require.NotNil(t, h)
	_, capacity, count := h.ModexHashtab()
	assert.Equal(t, uint64(1024), capacity)
	assert.Equal(t, uint64(4), count)
}

func TestSubsequentFenceReusesSameSegment(t *testing.T) {
	store, registry := newTestStore(t)

	require.NoError(t, store.HandleFence("nsB", "p0", []byte("a"), 2))
	tr := registry.Tracker("nsB")
	firstSeg := tr.Segment(segment.RoleModex)

	require.NoError(t, store.HandleFence("nsB", "p1", []byte("b"), 2))
	secondSeg := tr.Segment(segment.RoleModex)

	assert.Same(t, firstSeg, secondSeg)
}

func TestLookupReturnsStoredPayload(t *testing.T) {
	store, _ := newTestStore(t)

	require.NoError(t, store.HandleFence("nsC", "p0", []byte("hello"), 1))

	got, ok := store.Lookup("nsC", "p0")
	require.True(t, ok)
	assert.Equal(t, []byte("hello"), got)

	_, ok = store.Lookup("nsC", "missing")
	assert.False(t, ok)
}
