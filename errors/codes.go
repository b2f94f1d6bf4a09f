// Package errors provides the error taxonomy shared by every releasy package.
// It extends Go's standard error handling with structured error codes,
// context preservation, and classification of wrapped errors.
package errors

// ErrorCode represents the kind of failure a releasy operation reports.
// Error codes are string-based for debuggability and natural JSON serialization.
type ErrorCode string

const (
	// Input errors.

	// CodeFormat indicates malformed text such as a version string or commit header.
	CodeFormat ErrorCode = "FORMAT_ERROR"

	// CodeInvalidConfig indicates a malformed target, hook or top-level configuration.
	CodeInvalidConfig ErrorCode = "INVALID_CONFIGURATION"

	// Resource errors.

	// CodeNotFound indicates a missing repository, tag, target or file.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeAlreadyExists indicates a resource already exists and cannot be created again.
	CodeAlreadyExists ErrorCode = "ALREADY_EXISTS"

	// State errors.

	// CodeState indicates the operation is not allowed in the current state
	// (dirty working tree, nothing to roll back to, no target selected).
	CodeState ErrorCode = "STATE_ERROR"

	// Execution errors.

	// CodeExecutionFailed indicates a subprocess exited non-zero or was terminated.
	CodeExecutionFailed ErrorCode = "EXECUTION_FAILED"

	// CodeTimeout indicates an operation exceeded its time limit.
	CodeTimeout ErrorCode = "TIMEOUT"

	// Infrastructure errors.

	// CodeIO indicates a file could not be opened, read or written.
	CodeIO ErrorCode = "IO_ERROR"

	// CodeInternal indicates an internal error in releasy itself.
	CodeInternal ErrorCode = "INTERNAL_ERROR"

	// Generic errors.

	// CodeUnknown indicates an unknown or unclassified error occurred.
	CodeUnknown ErrorCode = "UNKNOWN"
)

// Retryable reports whether failures with this code may succeed when attempted again.
func (c ErrorCode) Retryable() bool {
	switch c {
	case CodeExecutionFailed, CodeTimeout, CodeIO:
		return true
	default:
		return false
	}
}
