package common

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for retry and reporting decisions.
type Kind string

const (
	// KindExtraction means content was unreadable or oversized. Non-fatal to
	// the batch: the pipeline still gets sentinel text to reason about.
	KindExtraction Kind = "EXTRACTION"
	// KindSecurity means an injection attempt or path traversal was detected.
	// Always fatal to that file, never retried.
	KindSecurity Kind = "SECURITY"
	// KindTransientProvider covers rate limits, timeouts and temporary server
	// errors. Retried per retry policy.
	KindTransientProvider Kind = "TRANSIENT_PROVIDER"
	// KindPermanentProvider covers bad credentials, unsupported models and
	// content-policy rejections. Fails immediately.
	KindPermanentProvider Kind = "PERMANENT_PROVIDER"
	// KindFilesystem covers move/lock failures. Retried with fallback
	// strategies before going fatal.
	KindFilesystem Kind = "FILESYSTEM"
)

// Common application errors
var (
	ErrExtraction        = errors.New("extraction failed")
	ErrSecurity          = errors.New("security violation")
	ErrTransientProvider = errors.New("transient provider error")
	ErrPermanentProvider = errors.New("permanent provider error")
	ErrFilesystem        = errors.New("filesystem error")
	ErrInvalidInput      = errors.New("invalid input")
)

// AppError represents application-specific errors
type AppError struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	if e.Cause != nil {
		return e.Cause
	}
	return sentinelFor(e.Kind)
}

// Is lets errors.Is match both the wrapped cause and the kind sentinel.
func (e *AppError) Is(target error) bool {
	return target == sentinelFor(e.Kind)
}

func sentinelFor(k Kind) error {
	switch k {
	case KindExtraction:
		return ErrExtraction
	case KindSecurity:
		return ErrSecurity
	case KindTransientProvider:
		return ErrTransientProvider
	case KindPermanentProvider:
		return ErrPermanentProvider
	case KindFilesystem:
		return ErrFilesystem
	default:
		return ErrInvalidInput
	}
}

// Error constructors
func NewAppError(kind Kind, message string, cause error) *AppError {
	return &AppError{
		Kind:    kind,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// KindOf extracts the classification from an error chain. Unclassified
// errors report as filesystem errors: everything that reaches this helper
// without a kind came from an OS-level operation.
func KindOf(err error) Kind {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	switch {
	case errors.Is(err, ErrExtraction):
		return KindExtraction
	case errors.Is(err, ErrSecurity):
		return KindSecurity
	case errors.Is(err, ErrTransientProvider):
		return KindTransientProvider
	case errors.Is(err, ErrPermanentProvider):
		return KindPermanentProvider
	default:
		return KindFilesystem
	}
}
