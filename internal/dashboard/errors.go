package dashboard

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ignite/phishing-dashboard/internal/entitystore"
)

var (
	// ErrUnknownDepartment is returned when drilling into a department that
	// is not in the latest snapshot.
	ErrUnknownDepartment = errors.New("dashboard: unknown department")
	// ErrWipeInProgress is returned when another caller holds the wipe lock.
	ErrWipeInProgress = errors.New("dashboard: wipe already in progress")
	// ErrClosed is returned by operations on a closed service.
	ErrClosed = errors.New("dashboard: closed")
)

// FetchError means a refresh cycle could not read one of its collections.
// The cycle is abandoned and the previous view-model stays in place.
type FetchError struct {
	Generation uint64
	Err        error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("refresh %d: %v", e.Generation, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// MutationError wraps a failed click/response/training mutation.
type MutationError struct {
	Op     string
	Status int
	Detail any
	Err    error
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *MutationError) Unwrap() error { return e.Err }

// DetailString is the server-provided detail, or a generic message when the
// server gave none.
func (e *MutationError) DetailString() string {
	if d := entitystore.RenderDetail(e.Detail); d != "" {
		return d
	}
	return "Failed to " + e.Op
}

// WipeError wraps a failed wipe. Detail is either a string or a nested
// object as returned by the store.
type WipeError struct {
	Status int
	Detail any
	Err    error
}

func (e *WipeError) Error() string {
	return fmt.Sprintf("wipe all data: %v", e.Err)
}

func (e *WipeError) Unwrap() error { return e.Err }

func (e *WipeError) DetailString() string {
	if d := entitystore.RenderDetail(e.Detail); d != "" {
		return d
	}
	return "Failed to wipe data"
}

// apiDetail pulls status and detail out of a store error when present.
// Stores that report a missing row without an HTTP status map to 404.
func apiDetail(err error) (int, any) {
	var apiErr *entitystore.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status, apiErr.Detail
	}
	if errors.Is(err, entitystore.ErrNotFound) {
		return http.StatusNotFound, nil
	}
	return 0, nil
}
