package gds

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamNilotpal/shmgds/internal/jobsource"
	"github.com/iamNilotpal/shmgds/internal/segment"
	"github.com/iamNilotpal/shmgds/internal/wire"
	"github.com/iamNilotpal/shmgds/pkg/options"
)

func TestServerClientSinglePeerRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	server, err := NewServer(ctx, "gds-test", options.WithNamespaceTmpDir(dir), options.WithStaleCleanupOnStartup(false))
	require.NoError(t, err)
	defer server.Close()

	client, err := NewClient(ctx, "gds-test", options.WithNamespaceTmpDir(dir), options.WithStaleCleanupOnStartup(false))
	require.NoError(t, err)
	defer client.Close()

	server.PutJobData("nsA",
		jobsource.Entry{Key: "k1", Value: jobsource.Value{Bytes: []byte("v1")}},
		jobsource.Entry{Key: "k2", Value: jobsource.Value{Bytes: []byte("42")}},
	)

	blob, err := server.Register("nsA", 1)
	require.NoError(t, err)

	// Server and client share one process here; drop the server's mapping
	// (its backing file stays) so the client's fixed-address attach finds
	// the range free, as it would in a separate process.
	require.NoError(t, server.mod.Registry.Tracker("nsA").Segment(segment.RoleJob).Detach())

	require.NoError(t, client.HandleReplyEntry(wire.KeySegBlob, blob))

	v1, ok := client.LookupJobKey("nsA", "k1")
	require.True(t, ok, "k1 must be retrievable through the client's attached segment")
	assert.Equal(t, []byte("v1"), v1)

	v2, ok := client.LookupJobKey("nsA", "k2")
	require.True(t, ok, "k2 must be retrievable through the client's attached segment")
	assert.Equal(t, []byte("42"), v2)
}

func TestDisabledModuleAlwaysPriorityZero(t *testing.T) {
	ctx := context.Background()
	server, err := NewServer(ctx, "gds-test", options.WithDisabled(), options.WithStaleCleanupOnStartup(false))
	require.NoError(t, err)
	defer server.Close()

	assert.Equal(t, 0, server.Priority([]string{"shmem"}))
}

func TestModexFenceFourPeers(t *testing.T) {
	ctx := context.Background()
	server, err := NewServer(ctx, "gds-test", options.WithStaleCleanupOnStartup(false))
	require.NoError(t, err)
	defer server.Close()

	for i, peer := range []string{"p0", "p1", "p2", "p3"} {
		require.NoError(t, server.HandleFence("nsM", peer, []byte{byte(i)}, 4))
	}

	got, ok := server.LookupModex("nsM", "p2")
	require.True(t, ok)
	assert.Equal(t, []byte{2}, got)
}
