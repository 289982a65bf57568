package registry

import (
	"errors"
	"fmt"
)

// ErrorCategory defines the normalized lookup failure taxonomy.
type ErrorCategory string

const (
	// ErrorNotFound indicates the requested company doesn't exist.
	ErrorNotFound ErrorCategory = "not_found"

	// ErrorTimeout indicates the registry took too long to respond.
	ErrorTimeout ErrorCategory = "timeout"

	// ErrorBadData indicates the registry returned invalid/malformed data.
	ErrorBadData ErrorCategory = "bad_data"

	// ErrorAuthentication indicates credential or permission issues.
	ErrorAuthentication ErrorCategory = "authentication"

	// ErrorProviderOutage indicates the registry is unavailable.
	ErrorProviderOutage ErrorCategory = "provider_outage"

	// ErrorRateLimited indicates too many requests.
	ErrorRateLimited ErrorCategory = "rate_limited"

	// ErrorInternal indicates an unexpected internal error.
	ErrorInternal ErrorCategory = "internal"
)

// ErrFatalConfig marks a client that cannot make any lookup at all (missing
// credentials, unusable base URL). Unlike per-company failures, this aborts a
// whole screening run.
var ErrFatalConfig = errors.New("registry client configuration invalid")

// LookupError wraps registry failures with normalized categorization.
type LookupError struct {
	Category       ErrorCategory
	RegistrationID string
	Message        string
	Underlying     error
	Retryable      bool
}

func (e *LookupError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("registry lookup %s [%s]: %s: %v", e.RegistrationID, e.Category, e.Message, e.Underlying)
	}
	return fmt.Sprintf("registry lookup %s [%s]: %s", e.RegistrationID, e.Category, e.Message)
}

func (e *LookupError) Unwrap() error {
	return e.Underlying
}

// NewLookupError creates a normalized lookup error. The retryable flag is
// derived from the category.
func NewLookupError(category ErrorCategory, registrationID, message string, underlying error) *LookupError {
	retryable := category == ErrorTimeout ||
		category == ErrorProviderOutage ||
		category == ErrorRateLimited

	return &LookupError{
		Category:       category,
		RegistrationID: registrationID,
		Message:        message,
		Underlying:     underlying,
		Retryable:      retryable,
	}
}

// IsRetryable checks if an error is worth retrying.
func IsRetryable(err error) bool {
	var le *LookupError
	if errors.As(err, &le) {
		return le.Retryable
	}
	return false
}

// CategoryOf extracts the error category from an error.
func CategoryOf(err error) ErrorCategory {
	var le *LookupError
	if errors.As(err, &le) {
		return le.Category
	}
	return ErrorInternal
}

// IsFatal reports whether the error must abort the whole run rather than
// just the affected subtree.
func IsFatal(err error) bool {
	return errors.Is(err, ErrFatalConfig) || CategoryOf(err) == ErrorAuthentication
}
