package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches on code and message so wrapped copies of a sentinel still compare equal.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Wrap returns a copy of the sentinel carrying err as its cause.
func Wrap(sentinel *DomainError, err error) *DomainError {
	return NewDomainErrorWithCause(sentinel.Code, sentinel.Message, err)
}

// Common domain error codes
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeAlreadyExists    = "ALREADY_EXISTS"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeForbidden        = "FORBIDDEN"
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeInvalidOperation = "INVALID_OPERATION"
	ErrCodeUpstream         = "UPSTREAM_ERROR"
	ErrCodeUnavailable      = "UNAVAILABLE"
)

// Validation errors
var (
	ErrMissingRequiredField  = NewDomainError(ErrCodeValidation, "missing required field")
	ErrInvalidLink           = NewDomainError(ErrCodeValidation, "invalid link")
	ErrEmptyKeyword          = NewDomainError(ErrCodeValidation, "keyword cannot be empty")
	ErrEmptyQuery            = NewDomainError(ErrCodeValidation, "query cannot be empty")
	ErrInvalidIndexJobStatus = NewDomainError(ErrCodeValidation, "invalid index job status")
)

// Not found errors
var (
	ErrHistoryNotFound  = NewDomainError(ErrCodeNotFound, "article not found in history")
	ErrKeywordNotFound  = NewDomainError(ErrCodeNotFound, "keyword not found")
	ErrDraftNotFound    = NewDomainError(ErrCodeNotFound, "share draft not found or expired")
	ErrIndexJobNotFound = NewDomainError(ErrCodeNotFound, "index job not found")
	ErrBackupNotFound   = NewDomainError(ErrCodeNotFound, "backup not found")
)

// Already exists errors
var (
	ErrKeywordAlreadyExists = NewDomainError(ErrCodeAlreadyExists, "keyword already exists")
)

// Authorization errors
var (
	ErrNotAdmin        = NewDomainError(ErrCodeForbidden, "admin privileges required")
	ErrInvalidAPIToken = NewDomainError(ErrCodeUnauthorized, "invalid api token")
)

// Upstream errors. These never halt the ingest loop; callers recover with fallbacks.
var (
	ErrProviderFailure = NewDomainError(ErrCodeUpstream, "generative provider failed")
	ErrAnswerFailed    = NewDomainError(ErrCodeUpstream, "answer generation failed")
	ErrPublishFailed   = NewDomainError(ErrCodeUpstream, "publish to channel failed")
	ErrEmbeddingFailed = NewDomainError(ErrCodeUpstream, "embedding generation failed")
	ErrExtractFailed   = NewDomainError(ErrCodeUpstream, "article extraction failed")
)

// ErrAnswersDisabled is returned when no embedding provider is configured.
var ErrAnswersDisabled = NewDomainError(ErrCodeUnavailable, "answers not configured: LITBOT_OPENAI_API_KEY required")
