package errors

// ArenaOverflowError reports that a store operation would advance an arena
// cursor past its segment's bound. The estimator is responsible for making
// this impossible; if it happens, it is always a fatal estimator bug and is
// never retried.
type ArenaOverflowError struct {
	*baseError
	cursor   uintptr // Cursor value immediately before the overflowing allocation.
	size     uintptr // Size in bytes of the allocation that would overflow.
	bound    uintptr // base + segment size, the hard limit the cursor may not pass.
	segment  string  // Namespace/role identifying the overflowing segment.
}

// NewArenaOverflowError creates a new ArenaOverflowError.
func NewArenaOverflowError(msg string) *ArenaOverflowError {
	return &ArenaOverflowError{baseError: NewBaseError(nil, ErrorCodeArenaOverflow, msg)}
}

// WithMessage updates the error message while preserving the type.
func (oe *ArenaOverflowError) WithMessage(msg string) *ArenaOverflowError {
	oe.baseError.WithMessage(msg)
	return oe
}

// WithCode sets the error code while preserving the type.
func (oe *ArenaOverflowError) WithCode(code ErrorCode) *ArenaOverflowError {
	oe.baseError.WithCode(code)
	return oe
}

// WithDetail adds contextual information while preserving the type.
func (oe *ArenaOverflowError) WithDetail(key string, value any) *ArenaOverflowError {
	oe.baseError.WithDetail(key, value)
	return oe
}

// WithCursor records the cursor value immediately before the overflowing allocation.
func (oe *ArenaOverflowError) WithCursor(cursor uintptr) *ArenaOverflowError {
	oe.cursor = cursor
	return oe
}

// WithSize records the size of the allocation that would have overflowed.
func (oe *ArenaOverflowError) WithSize(size uintptr) *ArenaOverflowError {
	oe.size = size
	return oe
}

// WithBound records the hard limit (base + segment size) the cursor may not pass.
func (oe *ArenaOverflowError) WithBound(bound uintptr) *ArenaOverflowError {
	oe.bound = bound
	return oe
}

// WithSegment records which namespace/role segment overflowed.
func (oe *ArenaOverflowError) WithSegment(segment string) *ArenaOverflowError {
	oe.segment = segment
	return oe
}

// Cursor returns the cursor value immediately before the overflowing allocation.
func (oe *ArenaOverflowError) Cursor() uintptr {
	return oe.cursor
}

// Size returns the size of the allocation that would have overflowed.
func (oe *ArenaOverflowError) Size() uintptr {
	return oe.size
}

// Bound returns the hard limit the cursor may not pass.
func (oe *ArenaOverflowError) Bound() uintptr {
	return oe.bound
}

// Segment returns the namespace/role of the overflowing segment.
func (oe *ArenaOverflowError) Segment() string {
	return oe.segment
}
