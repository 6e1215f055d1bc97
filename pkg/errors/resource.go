package errors

// ResourceExhaustionError reports that no virtual-memory hole was large
// enough for a segment, or that a sizing estimate could not be satisfied.
type ResourceExhaustionError struct {
	*baseError
	requestedSize uint64 // Size in bytes that could not be satisfied.
	resource      string // Which resource was exhausted, e.g. "virtual_memory_hole".
}

// NewResourceExhaustionError creates a new ResourceExhaustionError.
func NewResourceExhaustionError(err error, msg string) *ResourceExhaustionError {
	return &ResourceExhaustionError{baseError: NewBaseError(err, ErrorCodeResourceExhaustion, msg)}
}

// WithMessage updates the error message while preserving the type.
func (re *ResourceExhaustionError) WithMessage(msg string) *ResourceExhaustionError {
	re.baseError.WithMessage(msg)
	return re
}

// WithCode sets the error code while preserving the type.
func (re *ResourceExhaustionError) WithCode(code ErrorCode) *ResourceExhaustionError {
	re.baseError.WithCode(code)
	return re
}

// WithDetail adds contextual information while preserving the type.
func (re *ResourceExhaustionError) WithDetail(key string, value any) *ResourceExhaustionError {
	re.baseError.WithDetail(key, value)
	return re
}

// WithRequestedSize records the size in bytes that could not be satisfied.
func (re *ResourceExhaustionError) WithRequestedSize(size uint64) *ResourceExhaustionError {
	re.requestedSize = size
	return re
}

// WithResource records which resource was exhausted.
func (re *ResourceExhaustionError) WithResource(resource string) *ResourceExhaustionError {
	re.resource = resource
	return re
}

// RequestedSize returns the size in bytes that could not be satisfied.
func (re *ResourceExhaustionError) RequestedSize() uint64 {
	return re.requestedSize
}

// Resource returns the name of the resource that was exhausted.
func (re *ResourceExhaustionError) Resource() string {
	return re.resource
}
