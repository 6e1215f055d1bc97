// Package job implements the per-namespace JobTracker and the process-wide
// JobRegistry that owns every tracker plus the cached-blob bookkeeping the
// Publisher consults before doing any real work.
package job

import (
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/iamNilotpal/shmgds/internal/arena"
	"github.com/iamNilotpal/shmgds/internal/header"
	"github.com/iamNilotpal/shmgds/internal/segment"
)

// roleSlot converts a Role into its index into Tracker's fixed two-element
// arrays. RoleInvalid has no slot.
func roleSlot(role segment.Role) int {
	switch role {
	case segment.RoleJob:
		return 0
	case segment.RoleModex:
		return 1
	default:
		return -1
	}
}

// Tracker owns both Segments for one namespace along with the Header and
// Arena views built over each. It is non-copyable by convention (callers
// hold it behind a pointer, as the registry does) and is destroyed via
// Close, never by dropping the last reference silently.
type Tracker struct {
	Namespace string

	segments [2]*segment.Segment
	headers  [2]*header.Header
	arenas   [2]*arena.Arena
	ready    [2]bool

	closed atomic.Bool
}

// NewTracker constructs an empty Tracker holding neither segment yet.
func NewTracker(namespace string) *Tracker {
	return &Tracker{Namespace: namespace}
}

// Attach installs a Segment/Header/Arena triple for role, as the Publisher
// does right after creating the segment and laying out its header, or as
// the Attacher does right after a successful client-side attach.
func (t *Tracker) Attach(role segment.Role, seg *segment.Segment, h *header.Header, a *arena.Arena) {
	slot := roleSlot(role)
	t.segments[slot] = seg
	t.headers[slot] = h
	t.arenas[slot] = a
}

// Segment returns the Segment for role, or nil if it has never been created
// or attached.
func (t *Tracker) Segment(role segment.Role) *segment.Segment {
	slot := roleSlot(role)
	if slot < 0 {
		return nil
	}
	return t.segments[slot]
}

// Header returns the Header view for role, or nil.
func (t *Tracker) Header(role segment.Role) *header.Header {
	slot := roleSlot(role)
	if slot < 0 {
		return nil
	}
	return t.headers[slot]
}

// Arena returns the Arena view for role, or nil.
func (t *Tracker) Arena(role segment.Role) *arena.Arena {
	slot := roleSlot(role)
	if slot < 0 {
		return nil
	}
	return t.arenas[slot]
}

// IsReady reports whether role's segment has reached READY_FOR_USE.
func (t *Tracker) IsReady(role segment.Role) bool {
	slot := roleSlot(role)
	return slot >= 0 && t.ready[slot]
}

// MarkReady sets role's segment to READY_FOR_USE. Publishing a connection
// blob for a role is permitted only once this has been called; until then
// the role is silently skipped in the outbound reply.
func (t *Tracker) MarkReady(role segment.Role) {
	slot := roleSlot(role)
	if slot < 0 {
		return
	}
	t.ready[slot] = true
	if seg := t.segments[slot]; seg != nil {
		seg.Flags.ReadyForUse = true
	}
}

// Close tears down both segments, emitting a usage-stats line for any
// RELEASE-flagged (creator-owned) segment before releasing it. It is safe
// to call more than once; only the first call does any work.
func (t *Tracker) Close(log *zap.SugaredLogger) error {
	if !t.closed.CompareAndSwap(false, true) {
		return nil
	}

	var firstErr error
	for _, role := range segment.Roles() {
		slot := roleSlot(role)
		seg := t.segments[slot]
		if seg == nil {
			continue
		}

		if seg.Flags.Release && log != nil {
			log.Infow(
				"releasing shared memory segment",
				"namespace", t.Namespace,
				"role", role.String(),
				"size", seg.Size,
				"path", seg.Path,
			)
		}

		var err error
		if seg.Flags.Release {
			err = seg.Destroy()
		} else {
			err = seg.Detach()
		}
		if err != nil && firstErr == nil {
			firstErr = err
		}

		t.segments[slot] = nil
		t.headers[slot] = nil
		t.arenas[slot] = nil
		t.ready[slot] = false
	}

	return firstErr
}
