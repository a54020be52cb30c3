package helpers

import (
	"fmt"
	"time"

	"pos-sync/src/logger"
	"pos-sync/src/models"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type PosError struct {
	Message string
	Cause   error
}

func (e *PosError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *PosError) Unwrap() error {
	return e.Cause
}

// -----------------------------------------------------------------------------

// ConnectivityError means the backend health check failed. Fatal to the
// load attempt; surfaced to the user together with the retry action.
type ConnectivityError struct{ PosError }

func NewConnectivityError(cause error) *ConnectivityError {
	return &ConnectivityError{PosError{Message: "backend unreachable", Cause: cause}}
}

// -----------------------------------------------------------------------------

// ResourceFetchError means one bulk or topic fetch failed. Recovered
// locally by substituting an empty snapshot; logged, never surfaced.
type ResourceFetchError struct {
	PosError
	Resource models.Resource
}

func NewResourceFetchError(r models.Resource, cause error) *ResourceFetchError {
	return &ResourceFetchError{
		PosError: PosError{Message: fmt.Sprintf("fetch %s failed", r), Cause: cause},
		Resource: r,
	}
}

// -----------------------------------------------------------------------------

// ActionError means a debounced refetch action failed. Caught at the
// scheduler boundary; the topic keeps its last-known-good snapshot.
type ActionError struct {
	PosError
	Topic models.Resource
}

func NewActionError(topic models.Resource, cause error) *ActionError {
	return &ActionError{
		PosError: PosError{Message: fmt.Sprintf("refetch %s failed", topic), Cause: cause},
		Topic:    topic,
	}
}

// -----------------------------------------------------------------------------

// ConfigurationError for invalid startup configuration.
type ConfigurationError struct{ PosError }

func NewConfigurationError(message string) *ConfigurationError {
	return &ConfigurationError{PosError{Message: message}}
}

// -----------------------------------------------------------------------------
// Retry Logic
// -----------------------------------------------------------------------------

// RetryWithBackoff attempts to execute the operation up to maxRetries times with exponential backoff.
func RetryWithBackoff(log *logger.Logger, operation string, maxRetries int, baseDelay time.Duration, fn func() (interface{}, error)) (interface{}, error) {
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		res, err := fn()
		if err == nil {
			return res, nil
		}

		lastErr = err
		if attempt == maxRetries-1 {
			break
		}

		delay := baseDelay * (1 << attempt)
		log.Warning("Attempt %d/%d failed for %s: %v. Retrying in %v", attempt+1, maxRetries, operation, err, delay)
		time.Sleep(delay)
	}

	return nil, lastErr
}
