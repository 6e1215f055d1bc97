package publisher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamNilotpal/shmgds/internal/hashtable"
	"github.com/iamNilotpal/shmgds/internal/job"
	"github.com/iamNilotpal/shmgds/internal/joblist"
	"github.com/iamNilotpal/shmgds/internal/jobsource"
	"github.com/iamNilotpal/shmgds/internal/segment"
	"github.com/iamNilotpal/shmgds/internal/wire"
	"github.com/iamNilotpal/shmgds/pkg/logger"
	"github.com/iamNilotpal/shmgds/pkg/options"
)

func newTestPublisher(t *testing.T) (*Publisher, *job.Registry, *jobsource.MapFetcher) {
	t.Helper()
	opts := options.NewDefaultOptions()
	opts.NamespaceTmpDir = t.TempDir()
	opts.StaleCleanupOnStartup = false

	registry := job.New(&job.Config{Options: &opts, Logger: logger.Noop()})
	t.Cleanup(func() { registry.Shutdown() })

	fetcher := jobsource.NewMapFetcher()
	return New(registry, fetcher, &opts, logger.Noop()), registry, fetcher
}

func TestRegisterSinglePeerRoundTrip(t *testing.T) {
	pub, registry, fetcher := newTestPublisher(t)

	fetcher.Put("ns1",
		jobsource.Entry{Key: "k1", Value: jobsource.Value{Bytes: []byte("v1")}},
		jobsource.Entry{Key: "k2", Value: jobsource.Value{Bytes: []byte("42")}},
	)

	blob, err := pub.Register("ns1", 1)
	require.NoError(t, err)

	decoded, err := wire.UnpackSegmentBlob(blob)
	require.NoError(t, err)
	assert.Equal(t, "ns1", decoded.NamespaceID)
	assert.NotZero(t, decoded.Addr)

	tr := registry.Tracker("ns1")
	require.NotNil(t, tr)
	require.NoError(t, registry.DeleteNamespace("ns1"))
	_ = tr
}

func TestRegisterTwoLocalPeersReusesCachedBlobThenReleases(t *testing.T) {
	pub, registry, fetcher := newTestPublisher(t)
	fetcher.Put("ns2", jobsource.Entry{Key: "k1", Value: jobsource.Value{Bytes: []byte("v1")}})

	first, err := pub.Register("ns2", 2)
	require.NoError(t, err)

	second, err := pub.Register("ns2", 2)
	require.NoError(t, err)
	assert.Equal(t, first, second, "second local peer must receive the byte-identical cached blob")

	_, ok := registry.TakeCachedBlob("ns2")
	assert.False(t, ok, "cache must be released after the second of two local peers is served")
}

func TestRegisterDispatchesEntriesToTheirHeaderContainers(t *testing.T) {
	pub, registry, fetcher := newTestPublisher(t)

	fetcher.Put("ns3",
		jobsource.Entry{Key: "plain.key", Value: jobsource.Value{Bytes: []byte("plain-value")}},
		jobsource.Entry{Key: "session.key", Value: jobsource.Value{Bytes: []byte("session-value"), Category: jobsource.CategorySessionInfo}},
		jobsource.Entry{Key: "job.key", Value: jobsource.Value{Bytes: []byte("job-value"), Category: jobsource.CategoryJobInfo}},
		jobsource.Entry{Key: "node.key", Value: jobsource.Value{Bytes: []byte("node-value"), Category: jobsource.CategoryNodeInfo}},
		jobsource.Entry{Key: "app.key", Value: jobsource.Value{Bytes: []byte("app-value"), Category: jobsource.CategoryAppInfo}},
		jobsource.Entry{Key: "proc.0", Value: jobsource.Value{Bytes: []byte("proc-value-0"), Category: jobsource.CategoryProcessData}},
		jobsource.Entry{Key: "proc.1", Value: jobsource.Value{Bytes: []byte("proc-value-1"), Category: jobsource.CategoryProcessData}},
	)

	_, err := pub.Register("ns3", 1)
	require.NoError(t, err)
	t.Cleanup(func() { registry.DeleteNamespace("ns3") })

	tr := registry.Tracker("ns3")
	require.NotNil(t, tr)
	h := tr.Header(segment.RoleJob)
	a := tr.Arena(segment.RoleJob)
	require.NotNil(t, h)
	require.NotNil(t, a)

	sessionEntries := joblist.Walk(a, h.SessionRef())
	require.Len(t, sessionEntries, 1)
	assert.Equal(t, "session.key", sessionEntries[0].Key)
	assert.Equal(t, []byte("session-value"), sessionEntries[0].Value)

	jobEntries := joblist.Walk(a, h.JobInfoList())
	require.Len(t, jobEntries, 1)
	assert.Equal(t, "job.key", jobEntries[0].Key)

	nodeEntries := joblist.Walk(a, h.NodeInfoList())
	require.Len(t, nodeEntries, 1)
	assert.Equal(t, "node.key", nodeEntries[0].Key)

	appEntries := joblist.Walk(a, h.AppInfoList())
	require.Len(t, appEntries, 1)
	assert.Equal(t, "app.key", appEntries[0].Key)

	procAddr, procN := h.ProcessData()
	procEntries := joblist.ReadArray(a, procAddr, procN)
	require.Len(t, procEntries, 2)
	assert.ElementsMatch(t,
		[]string{"proc.0", "proc.1"},
		[]string{procEntries[0].Key, procEntries[1].Key},
	)

	bucketsAddr, capacity, count := h.LocalHashtab()
	tbl := hashtable.Attach(a, bucketsAddr, capacity, count)
	valAddr, valLen, ok := tbl.Lookup("plain.key")
	require.True(t, ok, "plain key must land in local_hashtab")
	assert.Equal(t, []byte("plain-value"), a.Bytes(valAddr, uintptr(valLen)))

	_, _, ok = tbl.Lookup("session.key")
	assert.False(t, ok, "session-info key must not also land in local_hashtab")
}
