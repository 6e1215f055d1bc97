//go:build linux

// Package memmap wraps the shared-memory primitives this module needs:
// create a backing file of a given size, map it at a caller-chosen fixed
// virtual address, and unmap it. golang.org/x/sys/unix's high-level Mmap
// has no parameter for a caller-supplied address — it always lets the
// kernel choose — so a true MAP_FIXED-at-address mapping has to go through
// a raw mmap(2) syscall instead, the same approach the Go runtime itself
// uses internally for fixed-address reservations.
package memmap

import (
	"os"

	"golang.org/x/sys/unix"
)

// PageSize returns the process's page size, used to round segment sizes up
// to a whole number of pages before mapping.
func PageSize() int {
	return os.Getpagesize()
}

// PadToPage rounds size up to the next multiple of PageSize(). A size that
// is already an exact multiple of the page size is returned unchanged.
func PadToPage(size uintptr) uintptr {
	page := uintptr(PageSize())
	rem := size % page
	if rem == 0 {
		return size
	}
	return size + (page - rem)
}

// CreateFile creates (or truncates) the backing file at path and extends it
// to size bytes via ftruncate, returning the open file descriptor. The
// caller owns the returned *os.File and must close it once mapping is done
// (the mapping keeps its own reference to the underlying file via the fd
// passed to mmap, independent of the Go file handle remaining open).
func CreateFile(path string, size int64, perm os.FileMode) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_TRUNC, perm)
	if err != nil {
		return nil, err
	}
	if err := f.Truncate(size); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// OpenFile opens an existing backing file for attaching, without truncating it.
func OpenFile(path string, perm os.FileMode) (*os.File, error) {
	return os.OpenFile(path, os.O_RDWR, perm)
}

// MapFixed maps length bytes of fd at exactly addr, failing rather than
// letting the kernel pick a different address. Returns the address the
// kernel actually used (which, on success, always equals addr) and a []byte
// view of the mapping. Unlike unix.Mmap, this goes through a raw mmap(2)
// syscall because the high-level wrapper has no addr parameter.
// MapFixed never silently relocates: it uses MAP_FIXED_NOREPLACE so that a
// requested address already occupied by another mapping in this process
// fails with EEXIST rather than clobbering the existing mapping the way
// plain MAP_FIXED would.
func MapFixed(fd int, addr uintptr, length uintptr, writable bool) (uintptr, []byte, error) {
	prot := unix.PROT_READ
	if writable {
		prot |= unix.PROT_WRITE
	}
	flags := unix.MAP_SHARED | unix.MAP_FIXED_NOREPLACE

	ret, _, errno := unix.Syscall6(
		unix.SYS_MMAP,
		addr,
		length,
		uintptr(prot),
		uintptr(flags),
		uintptr(fd),
		0,
	)
	if errno != 0 {
		return 0, nil, errno
	}

	data := rawSlice(ret, length)
	return ret, data, nil
}

// IsAddressOccupied reports whether err, returned from MapFixed, indicates
// the requested address was already mapped (MAP_FIXED_NOREPLACE's EEXIST)
// rather than some other mapping failure.
func IsAddressOccupied(err error) bool {
	errno, ok := err.(unix.Errno)
	return ok && errno == unix.EEXIST
}

// Munmap unmaps the region starting at addr spanning length bytes.
func Munmap(addr uintptr, length uintptr) error {
	_, _, errno := unix.Syscall(unix.SYS_MUNMAP, addr, length, 0)
	if errno != 0 {
		return errno
	}
	return nil
}

// ProtectReadOnly mprotects the mapping starting at addr spanning length
// bytes down to PROT_READ. Used for the client-side read-only protection
// this module enables by default on attached job/modex mappings.
func ProtectReadOnly(addr uintptr, length uintptr) error {
	return unix.Mprotect(rawSlice(addr, length), unix.PROT_READ)
}
