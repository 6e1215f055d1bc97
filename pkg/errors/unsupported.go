package errors

// UnsupportedError reports an operation this module deliberately refuses:
// realloc on an arena, or a server-only entrypoint invoked by a client-role
// tracker.
type UnsupportedError struct {
	*baseError
	operation string // Name of the refused operation.
}

// NewUnsupportedError creates a new UnsupportedError.
func NewUnsupportedError(msg string) *UnsupportedError {
	return &UnsupportedError{baseError: NewBaseError(nil, ErrorCodeUnsupported, msg)}
}

// WithMessage updates the error message while preserving the type.
func (ue *UnsupportedError) WithMessage(msg string) *UnsupportedError {
	ue.baseError.WithMessage(msg)
	return ue
}

// WithCode sets the error code while preserving the type.
func (ue *UnsupportedError) WithCode(code ErrorCode) *UnsupportedError {
	ue.baseError.WithCode(code)
	return ue
}

// WithDetail adds contextual information while preserving the type.
func (ue *UnsupportedError) WithDetail(key string, value any) *UnsupportedError {
	ue.baseError.WithDetail(key, value)
	return ue
}

// WithOperation records the name of the refused operation.
func (ue *UnsupportedError) WithOperation(operation string) *UnsupportedError {
	ue.operation = operation
	return ue
}

// Operation returns the name of the refused operation.
func (ue *UnsupportedError) Operation() string {
	return ue.operation
}
