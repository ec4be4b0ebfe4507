package api

import (
	"context"
	"errors"
	"strings"

	"github.com/ignite/phishing-dashboard/internal/entitystore"
	"github.com/ignite/phishing-dashboard/internal/pkg/httpretry"
)

// safeErrorMessage turns a refresh failure into text fit for API consumers.
// Details the backend chose to send are passed through; transport and
// database errors are reduced to a category so hosts, DSNs and SQL never
// leave the process. The full error is logged by the dashboard service.
func safeErrorMessage(err error) string {
	if err == nil {
		return "An internal error occurred"
	}

	var apiErr *entitystore.APIError
	if errors.As(err, &apiErr) {
		if d := apiErr.DetailString(); d != "" {
			return d
		}
	}

	switch {
	case errors.Is(err, httpretry.ErrCircuitOpen):
		return "Service temporarily unavailable"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "Request timed out"
	}

	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "dial tcp"):
		return "Service temporarily unavailable"

	case strings.Contains(errStr, "timeout"):
		return "Request timed out"

	case strings.Contains(errStr, "pq:") ||
		strings.Contains(errStr, "sql") ||
		strings.Contains(errStr, "scan"):
		return "A database error occurred"

	case strings.Contains(errStr, "decoding response") ||
		strings.Contains(errStr, "unrecognized timestamp"):
		return "Unexpected response from the data source"

	default:
		return "An internal error occurred"
	}
}
