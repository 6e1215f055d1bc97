// Package header defines the fixed-offset prefix every segment carries at
// its base address: the arena cursor the creator advances as it populates
// the segment, and the role-dependent container addresses every attached
// process reads to find job metadata without any further negotiation.
//
// The layout is a literal byte-for-byte contract observed by every process
// that maps the segment, so field order here must never change once a
// segment has been published.
package header

import (
	"unsafe"

	"github.com/iamNilotpal/shmgds/internal/arena"
	"github.com/iamNilotpal/shmgds/internal/segment"
	shmerrors "github.com/iamNilotpal/shmgds/pkg/errors"
)

// magic identifies a properly initialized header, distinguishing a real
// segment from a zeroed-but-uninitialized mapping during Attach.
const magic uint32 = 0x53484d47 // "SHMG"

// rawLayout is the literal on-wire struct written at offset 0 of every
// segment. arenaCursor is the field the arena package bumps directly; every
// other field is a role-dependent container address, populated by the
// Publisher and read verbatim by the Attacher.
type rawLayout struct {
	magic uint32
	role  uint32

	arenaCursor uintptr

	sessionRef   arena.Addr
	jobInfoList  arena.Addr
	nodeInfoList arena.Addr
	appInfoList  arena.Addr
	processData  arena.Addr
	processDataN uint64

	localHashtabBuckets  arena.Addr
	localHashtabCapacity uint64
	localHashtabCount    uint64

	modexHashtabBuckets  arena.Addr
	modexHashtabCapacity uint64
	modexHashtabCount    uint64
}

// Size is the fixed byte length of the header prefix.
const Size = unsafe.Sizeof(rawLayout{})

func align8(p uintptr) uintptr {
	return (p + 7) &^ 7
}

// Header is a typed view over the fixed prefix of a mapped segment's bytes.
type Header struct {
	raw *rawLayout
}

// Init zeroes the header region at the start of data and positions the
// arena cursor immediately past it, 8-byte aligned. Only the segment's
// creator calls Init; every other attached process calls Attach instead.
func Init(data []byte, role segment.Role) (*Header, error) {
	if uintptr(len(data)) < Size {
		return nil, shmerrors.NewArenaOverflowError("segment is too small to hold its own header").
			WithSize(Size).
			WithBound(uintptr(len(data))).
			WithSegment(role.String())
	}

	raw := (*rawLayout)(unsafe.Pointer(&data[0]))
	*raw = rawLayout{}
	raw.magic = magic
	raw.role = uint32(role)
	raw.arenaCursor = align8(uintptr(unsafe.Pointer(&data[0])) + Size)

	return &Header{raw: raw}, nil
}

// Attach casts an already-initialized header region without modifying it,
// failing with ProtocolViolation if the region was never initialized or the
// role stamped into it does not match the expected role.
func Attach(data []byte, expectedRole segment.Role) (*Header, error) {
	if uintptr(len(data)) < Size {
		return nil, shmerrors.NewProtocolViolationError(nil, "mapped segment is smaller than the header it claims to hold").
			WithKey("header_size")
	}

	raw := (*rawLayout)(unsafe.Pointer(&data[0]))
	if raw.magic != magic {
		return nil, shmerrors.NewProtocolViolationError(nil, "segment header is missing its magic marker").
			WithKey("magic")
	}
	if segment.Role(raw.role) != expectedRole {
		return nil, shmerrors.NewProtocolViolationError(nil, "segment header role does not match the role requested at attach").
			WithKey("role")
	}

	return &Header{raw: raw}, nil
}

// CursorPtr returns a pointer to the in-segment arena cursor field, suitable
// for passing directly to arena.New so every process sees allocations made
// by the creator.
func (h *Header) CursorPtr() *uintptr {
	return &h.raw.arenaCursor
}

// Role returns the role stamped into the header at Init.
func (h *Header) Role() segment.Role {
	return segment.Role(h.raw.role)
}

// SessionRef returns the header's session-info record address, or
// arena.AddrNull if none was ever stored.
func (h *Header) SessionRef() arena.Addr { return h.raw.sessionRef }

// SetSessionRef records the session-info record address. Creator-only.
func (h *Header) SetSessionRef(addr arena.Addr) { h.raw.sessionRef = addr }

// JobInfoList returns the head address of the job-info linked list.
func (h *Header) JobInfoList() arena.Addr { return h.raw.jobInfoList }

// SetJobInfoList records the head address of the job-info linked list.
func (h *Header) SetJobInfoList(addr arena.Addr) { h.raw.jobInfoList = addr }

// NodeInfoList returns the head address of the node-info linked list.
func (h *Header) NodeInfoList() arena.Addr { return h.raw.nodeInfoList }

// SetNodeInfoList records the head address of the node-info linked list.
func (h *Header) SetNodeInfoList(addr arena.Addr) { h.raw.nodeInfoList = addr }

// AppInfoList returns the head address of the app-info linked list.
func (h *Header) AppInfoList() arena.Addr { return h.raw.appInfoList }

// SetAppInfoList records the head address of the app-info linked list.
func (h *Header) SetAppInfoList(addr arena.Addr) { h.raw.appInfoList = addr }

// ProcessData returns the base address and element count of the process
// data array, the one container whose length contributes directly to the
// sizing estimator's entry count instead of a flat 1.
func (h *Header) ProcessData() (arena.Addr, uint64) {
	return h.raw.processData, h.raw.processDataN
}

// SetProcessData records the process data array's base address and length.
func (h *Header) SetProcessData(addr arena.Addr, n uint64) {
	h.raw.processData = addr
	h.raw.processDataN = n
}

// LocalHashtab returns the JOB segment's flat key/value hash table location
// and its capacity/count, as last published by the creator.
func (h *Header) LocalHashtab() (buckets arena.Addr, capacity, count uint64) {
	return h.raw.localHashtabBuckets, h.raw.localHashtabCapacity, h.raw.localHashtabCount
}

// SetLocalHashtab records the JOB segment's hash table location, capacity
// and current count. Creator-only.
func (h *Header) SetLocalHashtab(buckets arena.Addr, capacity, count uint64) {
	h.raw.localHashtabBuckets = buckets
	h.raw.localHashtabCapacity = capacity
	h.raw.localHashtabCount = count
}

// ModexHashtab returns the MODEX segment's hash table location and its
// capacity/count, as last published by the creator.
func (h *Header) ModexHashtab() (buckets arena.Addr, capacity, count uint64) {
	return h.raw.modexHashtabBuckets, h.raw.modexHashtabCapacity, h.raw.modexHashtabCount
}

// SetModexHashtab records the MODEX segment's hash table location, capacity
// and current count. Creator-only.
func (h *Header) SetModexHashtab(buckets arena.Addr, capacity, count uint64) {
	h.raw.modexHashtabBuckets = buckets
	h.raw.modexHashtabCapacity = capacity
	h.raw.modexHashtabCount = count
}
