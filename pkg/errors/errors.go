// Package errors provides the structured error hierarchy used throughout
// this module. Every error this module raises embeds baseError, which
// supplies a cause, a message, a code, and a lazily-allocated details map,
// and extends it with fields specific to the failure kind: a path and
// offset for I/O failures, a requested/actual address pair for address
// mismatches, an offending key for protocol violations, and so on.
//
// This mirrors the taxonomy a shared-memory-backed store actually needs:
// resource exhaustion (no virtual-memory hole big enough), I/O failure
// (backing-file syscalls), address mismatch (fixed mapping rejected by the
// kernel), protocol violation (malformed connection-info blob), unsupported
// operation (realloc, or a server-only call from a client), and arena
// overflow (an estimator bug manifesting as an out-of-bounds cursor). Each
// type overrides WithMessage/WithCode/WithDetail so fluent chains never
// narrow back to the base type partway through construction.
package errors

import (
	stdErrors "errors"
	"os"
	"syscall"
)

// IsIOFailure reports whether err is, or wraps, an *IOFailureError.
func IsIOFailure(err error) bool {
	var ie *IOFailureError
	return stdErrors.As(err, &ie)
}

// IsResourceExhaustion reports whether err is, or wraps, a *ResourceExhaustionError.
func IsResourceExhaustion(err error) bool {
	var re *ResourceExhaustionError
	return stdErrors.As(err, &re)
}

// IsAddressMismatch reports whether err is, or wraps, an *AddressMismatchError.
func IsAddressMismatch(err error) bool {
	var ae *AddressMismatchError
	return stdErrors.As(err, &ae)
}

// IsProtocolViolation reports whether err is, or wraps, a *ProtocolViolationError.
func IsProtocolViolation(err error) bool {
	var pe *ProtocolViolationError
	return stdErrors.As(err, &pe)
}

// IsUnsupported reports whether err is, or wraps, an *UnsupportedError.
func IsUnsupported(err error) bool {
	var ue *UnsupportedError
	return stdErrors.As(err, &ue)
}

// IsArenaOverflow reports whether err is, or wraps, an *ArenaOverflowError.
func IsArenaOverflow(err error) bool {
	var oe *ArenaOverflowError
	return stdErrors.As(err, &oe)
}

// AsIOFailure extracts an *IOFailureError from err's chain, if present.
func AsIOFailure(err error) (*IOFailureError, bool) {
	var ie *IOFailureError
	if stdErrors.As(err, &ie) {
		return ie, true
	}
	return nil, false
}

// AsAddressMismatch extracts an *AddressMismatchError from err's chain, if present.
func AsAddressMismatch(err error) (*AddressMismatchError, bool) {
	var ae *AddressMismatchError
	if stdErrors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// GetErrorCode extracts the error code from any error raised by this
// module, or ErrorCodeInternal for anything else. Useful for metrics and
// dispatch without parsing error strings.
func GetErrorCode(err error) ErrorCode {
	var ie *IOFailureError
	if stdErrors.As(err, &ie) {
		return ie.Code()
	}
	var re *ResourceExhaustionError
	if stdErrors.As(err, &re) {
		return re.Code()
	}
	var ae *AddressMismatchError
	if stdErrors.As(err, &ae) {
		return ae.Code()
	}
	var pe *ProtocolViolationError
	if stdErrors.As(err, &pe) {
		return pe.Code()
	}
	var ue *UnsupportedError
	if stdErrors.As(err, &ue) {
		return ue.Code()
	}
	var oe *ArenaOverflowError
	if stdErrors.As(err, &oe) {
		return oe.Code()
	}
	return ErrorCodeInternal
}

// ClassifySegmentCreateError analyzes a backing-file create failure
// (open/truncate) and returns the appropriate typed error.
func ClassifySegmentCreateError(err error, path string) error {
	if os.IsPermission(err) {
		return NewIOFailureError(err, "insufficient permissions to create segment backing file").
			WithCode(ErrorCodePermissionDenied).
			WithPath(path).
			WithDetail("operation", "segment_create")
	}

	if pathErr, ok := err.(*os.PathError); ok {
		if errno, ok := pathErr.Err.(syscall.Errno); ok {
			switch errno {
			case syscall.ENOSPC:
				return NewResourceExhaustionError(err, "insufficient disk space to create segment backing file").
					WithResource("disk_space").
					WithDetail("path", path)
			case syscall.EROFS:
				return NewIOFailureError(err, "cannot create segment backing file on read-only filesystem").
					WithCode(ErrorCodeFilesystemReadonly).
					WithPath(path).
					WithDetail("operation", "segment_create")
			}
		}
	}

	return NewIOFailureError(err, "failed to create segment backing file").
		WithPath(path).
		WithDetail("operation", "segment_create")
}

// ClassifyAttachError analyzes a mapping failure during Segment.Attach and
// returns the appropriate typed error. Address mismatches are handled by
// the caller directly (an occupied address surfaces as EEXIST from
// MAP_FIXED_NOREPLACE, and a mapping at a different address is caught by
// comparing addresses), so this classifier only covers the other syscall
// failures from opening or mapping the file.
func ClassifyAttachError(err error, path string) error {
	if os.IsPermission(err) {
		return NewIOFailureError(err, "insufficient permissions to attach segment").
			WithCode(ErrorCodePermissionDenied).
			WithPath(path).
			WithDetail("operation", "segment_attach")
	}

	if errno, ok := err.(syscall.Errno); ok {
		switch errno {
		case syscall.ENOMEM:
			return NewResourceExhaustionError(err, "kernel refused mapping, insufficient address space or memory").
				WithResource("virtual_memory").
				WithDetail("path", path)
		case syscall.ENOSPC:
			return NewResourceExhaustionError(err, "insufficient disk space backing segment attach").
				WithResource("disk_space").
				WithDetail("path", path)
		}
	}

	return NewIOFailureError(err, "failed to attach segment").
		WithPath(path).
		WithDetail("operation", "segment_attach")
}

// ClassifyUnlinkError analyzes a backing-file unlink failure during
// Segment.Destroy and returns the appropriate typed error.
func ClassifyUnlinkError(err error, path string) error {
	if os.IsPermission(err) {
		return NewIOFailureError(err, "insufficient permissions to unlink segment backing file").
			WithCode(ErrorCodePermissionDenied).
			WithPath(path).
			WithDetail("operation", "segment_unlink")
	}

	return NewIOFailureError(err, "failed to unlink segment backing file").
		WithPath(path).
		WithDetail("operation", "segment_unlink")
}
