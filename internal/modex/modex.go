// Package modex implements the server-side fence handler: lazy creation of
// the MODEX segment on first inbound post-fence payload for a namespace,
// and storage of every subsequent peer's payload into the same segment's
// arena-backed hash table.
package modex

import (
	"os"
	"unsafe"

	"go.uber.org/zap"

	"github.com/iamNilotpal/shmgds/internal/arena"
	"github.com/iamNilotpal/shmgds/internal/hashtable"
	"github.com/iamNilotpal/shmgds/internal/header"
	"github.com/iamNilotpal/shmgds/internal/job"
	"github.com/iamNilotpal/shmgds/internal/segment"
	"github.com/iamNilotpal/shmgds/internal/sizing"
	"github.com/iamNilotpal/shmgds/pkg/options"
)

// Store is the server-side collaborator that lazily creates and populates
// each namespace's MODEX segment.
type Store struct {
	registry *job.Registry
	options  *options.Options
	log      *zap.SugaredLogger
	host     string
}

// New constructs a Store over the given registry.
func New(registry *job.Registry, opts *options.Options, log *zap.SugaredLogger) *Store {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "localhost"
	}
	return &Store{registry: registry, options: opts, log: log, host: host}
}

// HandleFence stores payload, the post-fence data from peerID, into
// namespace's MODEX segment, creating that segment on the first call for
// this namespace using the `256 * nPeers` capacity heuristic. Subsequent
// calls for the same namespace reuse the existing segment.
func (s *Store) HandleFence(namespace, peerID string, payload []byte, nPeers int) error {
	tr, err := s.registry.GetOrCreateTracker(namespace)
	if err != nil {
		return err
	}

	if tr.Segment(segment.RoleModex) == nil {
		if err := s.createModexSegment(tr, namespace, payload, nPeers); err != nil {
			return err
		}
	}

	h := tr.Header(segment.RoleModex)
	a := tr.Arena(segment.RoleModex)
	bucketsAddr, capacity, count := h.ModexHashtab()
	tbl := hashtable.Attach(a, bucketsAddr, capacity, count)

	valAddr, err := a.Memdup(payload)
	if err != nil {
		return err
	}
	if err := tbl.Insert(peerID, valAddr, uint32(len(payload))); err != nil {
		return err
	}

	h.SetModexHashtab(tbl.BucketsAddr(), tbl.ActualCapacity(), tbl.Count())
	return nil
}

func (s *Store) createModexSegment(tr *job.Tracker, namespace string, payload []byte, nPeers int) error {
	estimator := sizing.New(s.options.SizeMultiplier)
	size, htCapacity := estimator.EstimateModex(uintptr(len(payload)), nPeers, s.options.ModexHashCapacityPerPeer)

	path, err := segment.BuildPath(
		segment.ChooseBaseDir(s.options.NamespaceTmpDir, s.options.GeneralTmpDir),
		s.options.PackagePrefix, s.host, namespace, segment.RoleModex, os.Getpid(), s.options.PathMaxLen,
	)
	if err != nil {
		return err
	}

	seg, err := segment.Create(namespace, segment.RoleModex, path, size)
	if err != nil {
		return err
	}

	h, err := header.Init(seg.Data(), segment.RoleModex)
	if err != nil {
		seg.Destroy()
		return err
	}

	a := arena.New(
		uintptr(unsafe.Pointer(&seg.Data()[0])), uintptr(len(seg.Data())),
		h.CursorPtr(), s.options.DebugZeroFill, namespace+"/"+segment.RoleModex.String(),
	)

	tbl := hashtable.New(a)
	if err := tbl.Init(htCapacity); err != nil {
		seg.Destroy()
		return err
	}
	h.SetModexHashtab(tbl.BucketsAddr(), tbl.ActualCapacity(), tbl.Count())

	tr.Attach(segment.RoleModex, seg, h, a)
	tr.MarkReady(segment.RoleModex)

	if s.log != nil {
		s.log.Infow("created modex segment",
			"namespace", namespace, "path", path, "size", seg.Size, "htCapacity", htCapacity)
	}
	return nil
}

// Lookup reads back peerID's stored fence payload for namespace, if its
// MODEX segment exists and holds an entry for that peer.
func (s *Store) Lookup(namespace, peerID string) ([]byte, bool) {
	tr := s.registry.Tracker(namespace)
	if tr == nil {
		return nil, false
	}

	h := tr.Header(segment.RoleModex)
	a := tr.Arena(segment.RoleModex)
	if h == nil || a == nil {
		return nil, false
	}

	bucketsAddr, capacity, count := h.ModexHashtab()
	tbl := hashtable.Attach(a, bucketsAddr, capacity, count)

	addr, length, ok := tbl.Lookup(peerID)
	if !ok {
		return nil, false
	}
	return a.Bytes(addr, uintptr(length)), true
}
