package forge

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v66/github"
)

// ErrorType categorizes hosting platform API failures.
type ErrorType string

const (
	ErrorTypeAuth       ErrorType = "authentication"
	ErrorTypePermission ErrorType = "permission"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeConflict   ErrorType = "conflict"
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeRateLimit  ErrorType = "rate_limit"
	ErrorTypeNetwork    ErrorType = "network"
	ErrorTypeUnknown    ErrorType = "unknown"
)

// APIError is a structured error from a hosting platform operation.
type APIError struct {
	Type      ErrorType `json:"type"`
	Message   string    `json:"message"`
	Cause     error     `json:"-"`
	Resource  string    `json:"resource,omitempty"`
	Retryable bool      `json:"retryable"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Resource != "" {
		return fmt.Sprintf("%s error for %s: %s", e.Type, e.Resource, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error.
func (e *APIError) Unwrap() error {
	return e.Cause
}

// IsRetryable returns whether the error is worth retrying.
func (e *APIError) IsRetryable() bool {
	return e.Retryable
}

// NewAPIError creates an APIError with the given type and message.
func NewAPIError(errorType ErrorType, message string, cause error) *APIError {
	return &APIError{
		Type:      errorType,
		Message:   message,
		Cause:     cause,
		Retryable: errorType == ErrorTypeRateLimit || errorType == ErrorTypeNetwork,
	}
}

// IsNotFound reports whether err represents a missing remote resource.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Type == ErrorTypeNotFound
}

// IsConflict reports whether err represents a platform conflict response,
// such as creating an entity that already exists or listing commits of an
// empty repository.
func IsConflict(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Type == ErrorTypeConflict
}

// WrapAPIError converts a GitHub API error into an APIError, attaching the
// resource description for context.
func WrapAPIError(err error, resource string) *APIError {
	if err == nil {
		return nil
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Resource == "" {
			apiErr.Resource = resource
		}
		return apiErr
	}

	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) {
		return parseErrorResponse(ghErr, resource)
	}

	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return &APIError{
			Type:      ErrorTypeRateLimit,
			Message:   fmt.Sprintf("rate limit exceeded, resets at %v", rateErr.Rate.Reset.Time),
			Cause:     err,
			Resource:  resource,
			Retryable: true,
		}
	}

	if isNetworkError(err) {
		return &APIError{
			Type:      ErrorTypeNetwork,
			Message:   "network error while reaching the hosting platform",
			Cause:     err,
			Resource:  resource,
			Retryable: true,
		}
	}

	return &APIError{
		Type:     ErrorTypeUnknown,
		Message:  err.Error(),
		Cause:    err,
		Resource: resource,
	}
}

// parseErrorResponse maps a GitHub error response onto the taxonomy.
func parseErrorResponse(ghErr *github.ErrorResponse, resource string) *APIError {
	apiErr := &APIError{
		Resource: resource,
		Cause:    ghErr,
		Message:  ghErr.Message,
	}

	switch ghErr.Response.StatusCode {
	case http.StatusUnauthorized:
		apiErr.Type = ErrorTypeAuth
		apiErr.Message = "authentication failed, check the access token"

	case http.StatusForbidden:
		if strings.Contains(strings.ToLower(ghErr.Message), "rate limit") {
			apiErr.Type = ErrorTypeRateLimit
			apiErr.Message = "API rate limit exceeded"
			apiErr.Retryable = true
		} else {
			apiErr.Type = ErrorTypePermission
			apiErr.Message = "insufficient permissions, the token may lack required scopes"
		}

	case http.StatusNotFound:
		apiErr.Type = ErrorTypeNotFound
		apiErr.Message = "resource not found"

	case http.StatusConflict:
		apiErr.Type = ErrorTypeConflict
		apiErr.Message = "resource conflict"
		if ghErr.Message != "" {
			apiErr.Message = ghErr.Message
		}

	case http.StatusUnprocessableEntity:
		apiErr.Type = ErrorTypeValidation
		apiErr.Message = "validation failed"
		if len(ghErr.Errors) > 0 {
			var details []string
			for _, e := range ghErr.Errors {
				if e.Field != "" {
					details = append(details, fmt.Sprintf("%s: %s", e.Field, e.Message))
				} else {
					details = append(details, e.Message)
				}
			}
			apiErr.Message = fmt.Sprintf("validation failed: %s", strings.Join(details, "; "))
		}
		// Creating an entity whose name is taken surfaces as a 422 with an
		// "already exists" validation error; fold it into the conflict class
		// so callers can treat it as an idempotent no-op.
		if strings.Contains(apiErr.Message, "already exists") {
			apiErr.Type = ErrorTypeConflict
		}

	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		apiErr.Type = ErrorTypeNetwork
		apiErr.Message = "hosting platform temporarily unavailable"
		apiErr.Retryable = true

	default:
		apiErr.Type = ErrorTypeUnknown
		apiErr.Retryable = ghErr.Response.StatusCode >= 500
	}

	return apiErr
}

// isNetworkError checks if an error looks like a transport-level failure.
func isNetworkError(err error) bool {
	errStr := strings.ToLower(err.Error())
	keywords := []string{
		"connection refused",
		"connection reset",
		"network is unreachable",
		"no such host",
		"timeout",
		"dial tcp",
	}
	for _, keyword := range keywords {
		if strings.Contains(errStr, keyword) {
			return true
		}
	}
	return false
}

// RetryConfig defines backoff behaviour for retryable operations.
type RetryConfig struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// DefaultRetryConfig returns the retry configuration used by the client.
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries:    3,
		InitialDelay:  time.Second,
		MaxDelay:      30 * time.Second,
		BackoffFactor: 2.0,
	}
}

// RetryableOperation is an operation that can be retried.
type RetryableOperation func() error

// WithRetry executes an operation, retrying rate-limit and network failures
// with exponential backoff. Non-retryable errors are returned immediately.
func WithRetry(operation RetryableOperation, config *RetryConfig) error {
	if config == nil {
		config = DefaultRetryConfig()
	}

	var lastErr error
	delay := config.InitialDelay

	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(delay)
			delay = time.Duration(float64(delay) * config.BackoffFactor)
			if delay > config.MaxDelay {
				delay = config.MaxDelay
			}
		}

		err := operation()
		if err == nil {
			return nil
		}
		lastErr = err

		var apiErr *APIError
		if !errors.As(err, &apiErr) || !apiErr.IsRetryable() {
			return err
		}
	}

	return fmt.Errorf("operation failed after %d retries: %w", config.MaxRetries, lastErr)
}
