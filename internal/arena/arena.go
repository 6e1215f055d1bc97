// Package arena implements the typed memory arena (TMA): a bump allocator
// that packs arbitrary nested data structures into a single mapped shared-
// memory region. Every address it returns is valid in every process that
// has mapped the owning segment at the segment's recorded base address,
// which is why addresses are represented as the distinct Addr type rather
// than unsafe.Pointer — a Go unsafe.Pointer is only meaningful to this
// process's garbage collector, while an Addr is a plain integer holding an
// absolute address inside shared memory, which may only be dereferenced
// (through Arena.At) while the owning segment is mapped at its base address.
package arena

import (
	"unsafe"

	shmerrors "github.com/iamNilotpal/shmgds/pkg/errors"
)

// Addr is a virtual address inside a mapped shared-memory segment. It is
// only meaningful while the owning segment is mapped at the base address
// that produced it; the zero value (AddrNull) never denotes a valid
// allocation.
type Addr uintptr

// AddrNull is the sentinel "no address" value, analogous to a nil pointer.
const AddrNull Addr = 0

// align8 rounds p up to the next multiple of 8. This is the exact formula
// the original implementation uses, applied to cursor+n after advancing by
// the allocation size — not to the allocation size alone — because segment
// layout is observed byte-for-byte by every attached process.
func align8(p uintptr) uintptr {
	return (p + 7) &^ 7
}

// Arena is the logical view of a segment's free space: an externally owned
// cursor (living inside the segment's header so every attached process sees
// the same value) and the hard upper bound past which the cursor may never
// advance.
type Arena struct {
	base          uintptr
	bound         uintptr
	cursor        *uintptr
	debugZeroFill bool
	segment       string
}

// New constructs an Arena over the byte range [base, base+size). cursor must
// point at the arena_cursor field living inside the segment's mapped header
// — callers obtain this pointer from the header package, which knows the
// fixed offset of that field. segment is a "namespace/role" label used only
// for error context.
func New(base uintptr, size uintptr, cursor *uintptr, debugZeroFill bool, segment string) *Arena {
	return &Arena{
		base:          base,
		bound:         base + size,
		cursor:        cursor,
		debugZeroFill: debugZeroFill,
		segment:       segment,
	}
}

// Cursor returns the arena's current cursor value, i.e. the next free byte.
func (a *Arena) Cursor() uintptr {
	return *a.cursor
}

// Alloc reserves n bytes starting at the current cursor, advances the
// cursor to align8(cursor+n), and returns the address of the reservation's
// first byte. Returns ArenaOverflowError if the reservation would advance
// the cursor past the arena's bound — per spec this always indicates an
// estimator bug, never a condition to retry.
func (a *Arena) Alloc(n uintptr) (Addr, error) {
	start := *a.cursor
	next := align8(start + n)

	if next > a.bound || next < start {
		return AddrNull, shmerrors.NewArenaOverflowError("arena allocation would advance cursor past segment bound").
			WithCursor(start).
			WithSize(n).
			WithBound(a.bound).
			WithSegment(a.segment)
	}

	*a.cursor = next
	if a.debugZeroFill {
		a.zero(Addr(start), n)
	}
	return Addr(start), nil
}

// Calloc reserves m*n bytes and zero-fills them before returning the
// reservation's address.
func (a *Arena) Calloc(m, n uintptr) (Addr, error) {
	total := m * n
	addr, err := a.Alloc(total)
	if err != nil {
		return AddrNull, err
	}
	a.zero(addr, total)
	return addr, nil
}

// Strdup copies s, including a terminating NUL byte, into a fresh
// reservation and returns its address.
func (a *Arena) Strdup(s string) (Addr, error) {
	n := uintptr(len(s) + 1)
	addr, err := a.Alloc(n)
	if err != nil {
		return AddrNull, err
	}
	dst := a.Bytes(addr, n)
	copy(dst, s)
	dst[n-1] = 0
	return addr, nil
}

// Memdup copies n bytes from src into a fresh reservation and returns its address.
func (a *Arena) Memdup(src []byte) (Addr, error) {
	n := uintptr(len(src))
	addr, err := a.Alloc(n)
	if err != nil {
		return AddrNull, err
	}
	copy(a.Bytes(addr, n), src)
	return addr, nil
}

// Free is a no-op. The arena reclaims storage only when its owning segment
// is destroyed; individual reservations are never released early, so every
// container type built on top of an Arena must be append-only or pre-sized
// against the estimator's capacity.
func (a *Arena) Free(Addr) {}

// Realloc is a contract violation: containers using the arena must be
// append-only or pre-sized. Calling it always returns an UnsupportedError.
func (a *Arena) Realloc(Addr, uintptr) (Addr, error) {
	return AddrNull, shmerrors.NewUnsupportedError("realloc is not supported by the typed memory arena").
		WithOperation("realloc").
		WithDetail("segment", a.segment)
}

// At converts an in-segment Addr into a process-local unsafe.Pointer. Only
// valid while the owning segment remains mapped at the base address that
// produced addr; callers must not retain the returned pointer past a
// Detach/Destroy.
func (a *Arena) At(addr Addr) unsafe.Pointer {
	return unsafe.Pointer(uintptr(addr)) //nolint:govet // address is absolute inside shared memory, not heap-relative.
}

// Bytes returns a []byte view of n bytes starting at addr, backed directly
// by the mapped segment. The slice is only valid while the segment remains
// mapped.
func (a *Arena) Bytes(addr Addr, n uintptr) []byte {
	if n == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(a.At(addr)), int(n))
}

func (a *Arena) zero(addr Addr, n uintptr) {
	b := a.Bytes(addr, n)
	for i := range b {
		b[i] = 0
	}
}
