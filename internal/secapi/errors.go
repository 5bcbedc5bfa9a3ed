package secapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// APIError is an error reported by the service, either as a non-2xx status or
// as an {"error": "..."} body.
type APIError struct {
	Endpoint string
	Status   int
	Message  string
}

func (e *APIError) Error() string {
	if msg := strings.TrimSpace(e.Message); msg != "" {
		return msg
	}
	return fmt.Sprintf("Server error %d", e.Status)
}

// TransportError wraps a failure to reach the service at all.
type TransportError struct {
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request to %s failed: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

type errorBody struct {
	Error string `json:"error"`
}

// serverMessage extracts the "error" field from a JSON object body. Anything
// that is not such an object yields "".
func serverMessage(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return ""
	}
	var parsed errorBody
	if err := json.Unmarshal(trimmed, &parsed); err != nil {
		return ""
	}
	return strings.TrimSpace(parsed.Error)
}
