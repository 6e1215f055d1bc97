// Package attacher implements the client-side half of segment provisioning:
// given entries from a server's reply buffer, recognize a segment blob,
// attach the segment it describes at the exact address the server used,
// and install the local header/arena handles needed to read from it.
package attacher

import (
	"unsafe"

	"go.uber.org/zap"

	"github.com/iamNilotpal/shmgds/internal/arena"
	"github.com/iamNilotpal/shmgds/internal/header"
	"github.com/iamNilotpal/shmgds/internal/job"
	"github.com/iamNilotpal/shmgds/internal/segment"
	"github.com/iamNilotpal/shmgds/internal/wire"
	shmerrors "github.com/iamNilotpal/shmgds/pkg/errors"
	"github.com/iamNilotpal/shmgds/pkg/options"
)

// Attacher processes a server's reply-buffer entries on the client side.
type Attacher struct {
	registry *job.Registry
	options  *options.Options
	log      *zap.SugaredLogger
}

// New constructs an Attacher over the given registry.
func New(registry *job.Registry, opts *options.Options, log *zap.SugaredLogger) *Attacher {
	return &Attacher{registry: registry, options: opts, log: log}
}

// HandleReplyEntry processes one top-level reply-buffer entry. SEG_BLOB
// entries are attached; the info-array entries are silently skipped
// because the server already stored that data directly into the segment;
// any other key is a hard ProtocolViolation.
func (a *Attacher) HandleReplyEntry(key string, value []byte) error {
	switch key {
	case wire.KeySegBlob:
		return a.attachSegmentBlob(value)
	case wire.KeySessionInfoArray, wire.KeyNodeInfoArray, wire.KeyAppInfoArray:
		return nil
	default:
		return shmerrors.NewProtocolViolationError(nil, "unrecognized top-level reply-buffer key").
			WithKey(key)
	}
}

func (a *Attacher) attachSegmentBlob(value []byte) error {
	blob, err := wire.UnpackSegmentBlob(value)
	if err != nil {
		return err
	}

	role := segment.Role(blob.Role)

	tr, err := a.registry.GetOrCreateTracker(blob.NamespaceID)
	if err != nil {
		return err
	}

	if tr.IsReady(role) {
		return nil
	}

	seg, err := segment.Attach(
		blob.NamespaceID, role, blob.Path, blob.Addr, blob.Size, a.options.ClientReadOnlyProtect,
	)
	if err != nil {
		return err
	}

	h, err := header.Attach(seg.Data(), role)
	if err != nil {
		seg.Detach()
		return err
	}

	arenaView := arena.New(
		uintptr(unsafe.Pointer(&seg.Data()[0])), uintptr(len(seg.Data())),
		h.CursorPtr(), false, blob.NamespaceID+"/"+role.String(),
	)

	tr.Attach(role, seg, h, arenaView)
	tr.MarkReady(role)

	if a.log != nil {
		a.log.Infow("attached shared memory segment",
			"namespace", blob.NamespaceID, "role", role.String(), "addr", blob.Addr)
	}
	return nil
}
