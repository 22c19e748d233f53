package errors

import (
	"fmt"
)

// ErrorCode represents a specific error type for matching operations.
type ErrorCode string

const (
	// ErrCodeDimensionMismatch indicates two feature vectors of different lengths.
	// This is a contract violation by the extractor, not a runtime condition.
	ErrCodeDimensionMismatch ErrorCode = "DIMENSION_MISMATCH"
	// ErrCodePersistenceFailed indicates a match record could not be written.
	ErrCodePersistenceFailed ErrorCode = "PERSISTENCE_FAILED"
	// ErrCodeExtractionFailed indicates the feature extraction collaborator failed.
	ErrCodeExtractionFailed ErrorCode = "EXTRACTION_FAILED"
	// ErrCodeInvalidTransition indicates a match state change from a terminal state.
	ErrCodeInvalidTransition ErrorCode = "INVALID_TRANSITION"
	// ErrCodeNotFound indicates the requested entity does not exist.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeInvalidArgument indicates invalid input parameters.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// ErrCodeUploadFailed indicates the image blob could not be stored.
	ErrCodeUploadFailed ErrorCode = "UPLOAD_FAILED"
)

// MatchError represents a structured error for matching operations.
type MatchError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *MatchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *MatchError) Unwrap() error {
	return e.Cause
}

// GetCode returns the error code.
func (e *MatchError) GetCode() ErrorCode {
	return e.Code
}

// Convenience constructors for common error types.

// DimensionMismatch creates a dimension mismatch error.
func DimensionMismatch(lenA, lenB int) *MatchError {
	return &MatchError{
		Code:    ErrCodeDimensionMismatch,
		Message: fmt.Sprintf("feature vectors must have the same length: %d != %d", lenA, lenB),
	}
}

// PersistenceFailed creates a persistence failed error.
func PersistenceFailed(msg string, cause error) *MatchError {
	return &MatchError{Code: ErrCodePersistenceFailed, Message: msg, Cause: cause}
}

// ExtractionFailed creates an extraction failed error.
func ExtractionFailed(imageURL string, cause error) *MatchError {
	return &MatchError{
		Code:    ErrCodeExtractionFailed,
		Message: fmt.Sprintf("feature extraction failed for %s", imageURL),
		Cause:   cause,
	}
}

// InvalidTransition creates an invalid transition error.
func InvalidTransition(from, to string) *MatchError {
	return &MatchError{
		Code:    ErrCodeInvalidTransition,
		Message: fmt.Sprintf("cannot transition match from %s to %s", from, to),
	}
}

// NotFound creates a not found error.
func NotFound(kind string, id any) *MatchError {
	return &MatchError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found: %v", kind, id),
	}
}

// InvalidArgument creates an invalid argument error.
func InvalidArgument(msg string) *MatchError {
	return &MatchError{Code: ErrCodeInvalidArgument, Message: msg}
}

// UploadFailed creates an upload failed error.
func UploadFailed(msg string, cause error) *MatchError {
	return &MatchError{Code: ErrCodeUploadFailed, Message: msg, Cause: cause}
}

// Wrap wraps an existing error with additional context.
func Wrap(cause error, code ErrorCode, msg string) *MatchError {
	return &MatchError{Code: code, Message: msg, Cause: cause}
}

// IsCode checks if an error is of a specific code.
func IsCode(err error, code ErrorCode) bool {
	if mErr, ok := err.(*MatchError); ok {
		return mErr.Code == code
	}
	return false
}

// GetCodeFromError extracts the error code from any error.
// Returns the provided default code if the error is not a MatchError.
func GetCodeFromError(err error, defaultCode ErrorCode) ErrorCode {
	if mErr, ok := err.(*MatchError); ok {
		return mErr.Code
	}
	return defaultCode
}
