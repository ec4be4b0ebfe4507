package entitystore

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNotFound is returned by stores for a missing user, department or log.
var ErrNotFound = errors.New("entitystore: not found")

// APIError is a non-2xx answer from the backend. Detail holds the decoded
// "detail" field, which is either a string or a JSON object/array.
type APIError struct {
	Status int
	Detail any
}

func (e *APIError) Error() string {
	if d := e.DetailString(); d != "" {
		return fmt.Sprintf("entity store returned %d: %s", e.Status, d)
	}
	return fmt.Sprintf("entity store returned %d", e.Status)
}

// Is lets errors.Is(err, ErrNotFound) match a 404.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// DetailString renders Detail for display. Strings are returned as-is;
// objects with a "message" or "msg" field use that field, anything else is
// rendered as compact JSON.
func (e *APIError) DetailString() string {
	return RenderDetail(e.Detail)
}

// RenderDetail flattens the backend's "detail" value into a single line.
func RenderDetail(detail any) string {
	switch d := detail.(type) {
	case nil:
		return ""
	case string:
		return d
	case map[string]any:
		for _, k := range []string{"message", "msg", "error"} {
			if s, ok := d[k].(string); ok && s != "" {
				return s
			}
		}
	case []any:
		// Validation errors arrive as a list of {loc, msg, type}.
		msgs := make([]string, 0, len(d))
		for _, item := range d {
			if s := RenderDetail(item); s != "" {
				msgs = append(msgs, s)
			}
		}
		return strings.Join(msgs, "; ")
	}
	data, err := json.Marshal(detail)
	if err != nil {
		return fmt.Sprintf("%v", detail)
	}
	return string(data)
}

func decodeAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status}
	var envelope struct {
		Detail any `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Detail != nil {
		apiErr.Detail = envelope.Detail
		return apiErr
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		apiErr.Detail = text
	}
	return apiErr
}
