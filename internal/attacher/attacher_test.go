package attacher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamNilotpal/shmgds/internal/job"
	"github.com/iamNilotpal/shmgds/internal/jobsource"
	"github.com/iamNilotpal/shmgds/internal/publisher"
	"github.com/iamNilotpal/shmgds/internal/segment"
	"github.com/iamNilotpal/shmgds/internal/wire"
	shmerrors "github.com/iamNilotpal/shmgds/pkg/errors"
	"github.com/iamNilotpal/shmgds/pkg/logger"
	"github.com/iamNilotpal/shmgds/pkg/options"
)

func newServerAndClient(t *testing.T) (*publisher.Publisher, *job.Registry, *Attacher, *job.Registry) {
	t.Helper()
	opts := options.NewDefaultOptions()
	opts.NamespaceTmpDir = t.TempDir()
	opts.StaleCleanupOnStartup = false

	serverRegistry := job.New(&job.Config{Options: &opts, Logger: logger.Noop()})
	t.Cleanup(func() { serverRegistry.Shutdown() })

	clientRegistry := job.New(&job.Config{Options: &opts, Logger: logger.Noop()})
	t.Cleanup(func() { clientRegistry.Shutdown() })

	fetcher := jobsource.NewMapFetcher()
	pub := publisher.New(serverRegistry, fetcher, &opts, logger.Noop())
	client := New(clientRegistry, &opts, logger.Noop())

	return pub, serverRegistry, client, clientRegistry
}

func TestSinglePeerJobAttachSeesServerBytes(t *testing.T) {
	pub, serverRegistry, client, clientRegistry := newServerAndClient(t)

	blob, err := pub.Register("nsA", 1)
	require.NoError(t, err)

	// Server and client share one process here, so the server's mapping is
	// dropped (its backing file stays) before the client attaches at the
	// same address; a live range would be refused as occupied.
	serverSeg := serverRegistry.Tracker("nsA").Segment(segment.RoleJob)
	serverBytes := append([]byte(nil), serverSeg.Data()...)
	require.NoError(t, serverSeg.Detach())

	require.NoError(t, client.HandleReplyEntry(wire.KeySegBlob, blob))

	tr := clientRegistry.Tracker("nsA")
	require.NotNil(t, tr)
	assert.True(t, tr.IsReady(segment.RoleJob))

	clientSeg := tr.Segment(segment.RoleJob)
	assert.Equal(t, serverSeg.BaseAddress, clientSeg.BaseAddress)
	assert.Equal(t, serverBytes, clientSeg.Data())
}

func TestInfoArrayKeysAreSilentlySkipped(t *testing.T) {
	_, _, client, _ := newServerAndClient(t)

	assert.NoError(t, client.HandleReplyEntry(wire.KeySessionInfoArray, []byte("anything")))
	assert.NoError(t, client.HandleReplyEntry(wire.KeyNodeInfoArray, nil))
	assert.NoError(t, client.HandleReplyEntry(wire.KeyAppInfoArray, nil))
}

func TestUnknownTopLevelKeyIsProtocolViolation(t *testing.T) {
	_, _, client, _ := newServerAndClient(t)

	err := client.HandleReplyEntry("FOO", []byte("bar"))
	require.Error(t, err)
	assert.True(t, shmerrors.IsProtocolViolation(err))
}

func TestReattachForAlreadyReadyRoleIsNoop(t *testing.T) {
	pub, serverRegistry, client, clientRegistry := newServerAndClient(t)

	blob, err := pub.Register("nsB", 1)
	require.NoError(t, err)
	require.NoError(t, serverRegistry.Tracker("nsB").Segment(segment.RoleJob).Detach())

	require.NoError(t, client.HandleReplyEntry(wire.KeySegBlob, blob))
	require.NoError(t, client.HandleReplyEntry(wire.KeySegBlob, blob))

	tr := clientRegistry.Tracker("nsB")
	assert.True(t, tr.IsReady(segment.RoleJob))
}
