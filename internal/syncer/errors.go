package syncer

import (
	"errors"
	"fmt"
)

// ErrRemoteRejected is wrapped by every SyncError so callers can test for a
// failed push without inspecting codes.
var ErrRemoteRejected = errors.New("remote rejected sync batch")

// SyncError represents a failed push to the remote authority.
//
// The batch that failed is left in the outbox untouched; the error only
// carries diagnostics.
type SyncError struct {
	// Code identifies the failure category.
	Code SyncErrorCode

	// Message is a human-readable description.
	Message string

	// TenantID is the tenant the batch was sent for.
	TenantID string

	// Status is the HTTP status returned by the authority, zero when the
	// request never got a response.
	Status int

	// BatchSize is the number of operations in the failed batch.
	BatchSize int

	// Err is the underlying transport error, if any.
	Err error
}

// SyncErrorCode categorizes sync failures.
type SyncErrorCode string

const (
	// ErrCodeTransport indicates the request could not be delivered.
	ErrCodeTransport SyncErrorCode = "TRANSPORT"

	// ErrCodeRejected indicates the authority answered with a non-success status.
	ErrCodeRejected SyncErrorCode = "REJECTED"

	// ErrCodeUnauthorized indicates the authority refused the credentials.
	ErrCodeUnauthorized SyncErrorCode = "UNAUTHORIZED"

	// ErrCodeStorage indicates the local outbox could not be read or acknowledged.
	ErrCodeStorage SyncErrorCode = "STORAGE"
)

// Error implements the error interface.
func (e *SyncError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status=%d)", msg, e.Status)
	}
	if e.TenantID != "" {
		msg = fmt.Sprintf("%s (tenant=%s, batch=%d)", msg, e.TenantID, e.BatchSize)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap exposes both the cause and ErrRemoteRejected to errors.Is.
func (e *SyncError) Unwrap() []error {
	if e.Code == ErrCodeStorage {
		if e.Err != nil {
			return []error{e.Err}
		}
		return nil
	}
	if e.Err != nil {
		return []error{ErrRemoteRejected, e.Err}
	}
	return []error{ErrRemoteRejected}
}

// IsTransportError returns true if the request never reached the authority.
// Uses errors.As to handle wrapped errors.
func IsTransportError(err error) bool {
	var se *SyncError
	if errors.As(err, &se) {
		return se.Code == ErrCodeTransport
	}
	return false
}

// IsUnauthorized returns true if the authority refused the credentials.
// Uses errors.As to handle wrapped errors.
func IsUnauthorized(err error) bool {
	var se *SyncError
	if errors.As(err, &se) {
		return se.Code == ErrCodeUnauthorized
	}
	return false
}

// IsStorageError returns true if the failure was local.
func IsStorageError(err error) bool {
	var se *SyncError
	if errors.As(err, &se) {
		return se.Code == ErrCodeStorage
	}
	return false
}

func newStorageError(msg string, err error) *SyncError {
	return &SyncError{Code: ErrCodeStorage, Message: msg, Err: err}
}
