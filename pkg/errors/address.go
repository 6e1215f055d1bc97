package errors

// AddressMismatchError reports that the kernel did not honor a requested
// fixed mapping address. Per spec this is always fatal for the segment
// attach that raised it; there is no relocation fallback.
type AddressMismatchError struct {
	*baseError
	requested uintptr // The address the caller asked the kernel to use.
	actual    uintptr // The address the kernel actually returned, if any.
	namespace string  // Namespace the segment belongs to, for logging.
	role      string  // Role (JOB/MODEX) of the segment, for logging.
}

// NewAddressMismatchError creates a new AddressMismatchError.
func NewAddressMismatchError(err error, msg string) *AddressMismatchError {
	return &AddressMismatchError{baseError: NewBaseError(err, ErrorCodeAddressMismatch, msg)}
}

// WithMessage updates the error message while preserving the type.
func (ae *AddressMismatchError) WithMessage(msg string) *AddressMismatchError {
	ae.baseError.WithMessage(msg)
	return ae
}

// WithCode sets the error code while preserving the type.
func (ae *AddressMismatchError) WithCode(code ErrorCode) *AddressMismatchError {
	ae.baseError.WithCode(code)
	return ae
}

// WithDetail adds contextual information while preserving the type.
func (ae *AddressMismatchError) WithDetail(key string, value any) *AddressMismatchError {
	ae.baseError.WithDetail(key, value)
	return ae
}

// WithRequested records the address the caller asked the kernel to honor.
func (ae *AddressMismatchError) WithRequested(addr uintptr) *AddressMismatchError {
	ae.requested = addr
	return ae
}

// WithActual records the address the kernel actually returned.
func (ae *AddressMismatchError) WithActual(addr uintptr) *AddressMismatchError {
	ae.actual = addr
	return ae
}

// WithNamespace records which namespace the mismatched segment belongs to.
func (ae *AddressMismatchError) WithNamespace(namespace string) *AddressMismatchError {
	ae.namespace = namespace
	return ae
}

// WithRole records which role (JOB/MODEX) the mismatched segment is.
func (ae *AddressMismatchError) WithRole(role string) *AddressMismatchError {
	ae.role = role
	return ae
}

// Requested returns the address the caller asked the kernel to honor.
func (ae *AddressMismatchError) Requested() uintptr {
	return ae.requested
}

// Actual returns the address the kernel actually returned.
func (ae *AddressMismatchError) Actual() uintptr {
	return ae.actual
}

// Namespace returns the namespace of the mismatched segment.
func (ae *AddressMismatchError) Namespace() string {
	return ae.namespace
}

// Role returns the role of the mismatched segment.
func (ae *AddressMismatchError) Role() string {
	return ae.role
}
