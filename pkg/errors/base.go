package errors

// baseError is a custom error type that can hold extra information. This
// struct follows the error wrapping pattern, allowing us to chain errors
// while preserving context and adding structured information for debugging.
type baseError struct {
	cause   error          // The original error that caused this one.
	message string         // The error message that will be displayed to users.
	code    ErrorCode      // Error code for categorizing the error type programmatically.
	details map[string]any // Additional context information like paths, addresses, offsets.
}

// NewBaseError creates a new baseError with the given underlying error and message.
func NewBaseError(err error, code ErrorCode, msg string) *baseError {
	return &baseError{cause: err, code: code, message: msg}
}

// WithMessage updates the error message. This allows the message to be
// customized after creation, useful when building errors in multiple steps.
func (be *baseError) WithMessage(msg string) *baseError {
	be.message = msg
	return be
}

// WithCode sets the error code for this error.
func (be *baseError) WithCode(code ErrorCode) *baseError {
	be.code = code
	return be
}

// WithDetail adds contextual information to help with debugging and logging.
// The details map is lazily initialized to avoid allocating memory when not needed.
func (be *baseError) WithDetail(key string, value any) *baseError {
	if be.details == nil {
		be.details = make(map[string]any)
	}
	be.details[key] = value
	return be
}

// Error returns the error message, implementing Go's built-in error interface.
func (be *baseError) Error() string {
	return be.message
}

// Unwrap returns the underlying error, enabling errors.Is/errors.As to walk
// the chain that produced this error.
func (be *baseError) Unwrap() error {
	return be.cause
}

// Code returns the error code, which allows callers to handle different
// failure kinds programmatically rather than parsing error strings.
func (be *baseError) Code() ErrorCode {
	return be.code
}

// Details returns the additional context stored with this error. The
// returned map is a reference to the internal map; callers must not mutate it.
func (be *baseError) Details() map[string]any {
	return be.details
}
