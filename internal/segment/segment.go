// Package segment implements the shared-memory segment lifecycle: backing
// file creation, same-address attach across processes, detach, and
// creator-only destroy. A Segment is the unit this module maps into every
// process's address space; its contents (laid out by the header and arena
// packages) are only meaningful once every attached process has mapped it
// at the same base address.
package segment

import (
	"os"

	"github.com/iamNilotpal/shmgds/internal/memmap"
	"github.com/iamNilotpal/shmgds/internal/vmem"
	shmerrors "github.com/iamNilotpal/shmgds/pkg/errors"
)

// Flags tracks the three independent status bits the spec assigns to every
// (tracker, role) pair. They are modeled as plain booleans rather than a
// bitfield because they are orthogonal: a segment can be ATTACHED without
// being READY_FOR_USE, and RELEASE is latched once at creation regardless
// of either.
type Flags struct {
	Attached    bool
	ReadyForUse bool
	Release     bool
}

// Segment is a file-backed contiguous shared-memory region. The creating
// process holds Flags.Release and is responsible for unlinking the backing
// file on Destroy; attaching processes only ever see Attached/ReadyForUse.
type Segment struct {
	Namespace   string
	Role        Role
	Path        string
	Size        uintptr
	BaseAddress uintptr
	Flags       Flags

	file *os.File
	data []byte
}

// Create creates (or truncates) the backing file at path, sized to
// ceil(requestedSize, page_size), finds a free virtual-memory hole of that
// size, and maps it there. The creator always holds Flags.Release on
// success.
func Create(namespace string, role Role, path string, requestedSize uintptr) (*Segment, error) {
	realSize := memmap.PadToPage(requestedSize)

	base, err := vmem.FindHole(realSize)
	if err != nil {
		return nil, err
	}

	f, err := memmap.CreateFile(path, int64(realSize), 0600)
	if err != nil {
		return nil, shmerrors.ClassifySegmentCreateError(err, path)
	}

	actual, data, err := memmap.MapFixed(int(f.Fd()), base, realSize, true)
	if err != nil {
		f.Close()
		os.Remove(path)
		if memmap.IsAddressOccupied(err) {
			return nil, shmerrors.NewAddressMismatchError(err, "virtual memory hole was occupied before mapping could complete").
				WithRequested(base).
				WithNamespace(namespace).
				WithRole(role.String())
		}
		return nil, shmerrors.ClassifyAttachError(err, path)
	}

	if actual != base {
		memmap.Munmap(actual, realSize)
		f.Close()
		os.Remove(path)
		return nil, shmerrors.NewAddressMismatchError(nil, "kernel did not honor requested mapping address").
			WithRequested(base).
			WithActual(actual).
			WithNamespace(namespace).
			WithRole(role.String())
	}

	return &Segment{
		Namespace:   namespace,
		Role:        role,
		Path:        path,
		Size:        realSize,
		BaseAddress: actual,
		Flags:       Flags{Attached: true, Release: true},
		file:        f,
		data:        data,
	}, nil
}

// Attach maps an existing backing file at exactly requestedAddr. If the
// kernel cannot honor that address (already occupied, or any other mapping
// failure), the operation fails with AddressMismatch/IOFailure, the segment
// is left fully detached, and the backing file is untouched — there is no
// relocation fallback, per spec.
func Attach(namespace string, role Role, path string, requestedAddr uintptr, size uintptr, readOnly bool) (*Segment, error) {
	f, err := memmap.OpenFile(path, 0600)
	if err != nil {
		return nil, shmerrors.ClassifyAttachError(err, path)
	}

	// Always map writable first, then drop to PROT_READ via ProtectReadOnly
	// once the fixed-address mapping has succeeded. A read-only mmap would
	// fail exactly the same way a writable one does on an occupied address,
	// but doing the downgrade as a separate mprotect step means read-only
	// attach and read-write attach share one MapFixed call path.
	actual, data, err := memmap.MapFixed(int(f.Fd()), requestedAddr, size, true)
	if err != nil {
		f.Close()
		if memmap.IsAddressOccupied(err) {
			return nil, shmerrors.NewAddressMismatchError(err, "requested attach address is already occupied").
				WithRequested(requestedAddr).
				WithNamespace(namespace).
				WithRole(role.String())
		}
		return nil, shmerrors.ClassifyAttachError(err, path)
	}

	if actual != requestedAddr {
		memmap.Munmap(actual, size)
		f.Close()
		return nil, shmerrors.NewAddressMismatchError(nil, "kernel did not honor requested attach address").
			WithRequested(requestedAddr).
			WithActual(actual).
			WithNamespace(namespace).
			WithRole(role.String())
	}

	if readOnly {
		if err := memmap.ProtectReadOnly(actual, size); err != nil {
			memmap.Munmap(actual, size)
			f.Close()
			return nil, shmerrors.NewIOFailureError(err, "failed to mprotect attached segment read-only").
				WithPath(path).
				WithSegment(namespace + "/" + role.String()).
				WithDetail("operation", "segment_attach_protect")
		}
	}

	return &Segment{
		Namespace:   namespace,
		Role:        role,
		Path:        path,
		Size:        size,
		BaseAddress: actual,
		Flags:       Flags{Attached: true},
		file:        f,
		data:        data,
	}, nil
}

// Data returns the raw mapped bytes of the segment. Only valid while the
// segment remains attached.
func (s *Segment) Data() []byte {
	return s.data
}

// Detach unmaps the segment. It does not unlink the backing file; only
// Destroy, which only the creator may call, does that.
func (s *Segment) Detach() error {
	if !s.Flags.Attached {
		return nil
	}
	if err := memmap.Munmap(s.BaseAddress, s.Size); err != nil {
		return shmerrors.NewIOFailureError(err, "failed to unmap segment").
			WithPath(s.Path).
			WithSegment(s.Namespace + "/" + s.Role.String()).
			WithDetail("operation", "segment_detach")
	}
	if s.file != nil {
		s.file.Close()
		s.file = nil
	}
	s.data = nil
	s.Flags.Attached = false
	s.Flags.ReadyForUse = false
	return nil
}

// Destroy unmaps the segment and unlinks its backing file. Only the
// creator — the Segment whose Flags.Release is set — may call this.
func (s *Segment) Destroy() error {
	if !s.Flags.Release {
		return shmerrors.NewUnsupportedError("only the creating process may destroy a segment").
			WithOperation("segment_destroy").
			WithDetail("namespace", s.Namespace).
			WithDetail("role", s.Role.String())
	}

	if err := s.Detach(); err != nil {
		return err
	}

	if err := os.Remove(s.Path); err != nil && !os.IsNotExist(err) {
		return shmerrors.ClassifyUnlinkError(err, s.Path)
	}

	s.Flags.Release = false
	return nil
}
