package searchapi

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"
)

// Error is a decoded OpenSearch error response.
type Error struct {
	Status int
	Type   string
	Reason string
}

func (e *Error) Error() string {
	switch {
	case e.Type != "" && e.Reason != "":
		return fmt.Sprintf("opensearch %d: %s: %s", e.Status, e.Type, e.Reason)
	case e.Reason != "":
		return fmt.Sprintf("opensearch %d: %s", e.Status, e.Reason)
	default:
		return fmt.Sprintf("opensearch %d", e.Status)
	}
}

// Is matches another *Error with the same Type, so callers can test for
// a specific exception with errors.Is(err, &searchapi.Error{Type: "..."}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Type != "" && t.Type == e.Type
}

// Common exception types.
const (
	TypeIndexNotFound         = "index_not_found_exception"
	TypeResourceAlreadyExists = "resource_already_exists_exception"
)

// Decode reads and closes res.Body. It returns nil for 2xx responses and an
// *Error otherwise. The "error" field may be an object or a plain string.
func Decode(res *opensearchapi.Response, into any) error {
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if res.IsError() {
		return parseError(res.StatusCode, body)
	}
	if into != nil && len(body) > 0 {
		if err := json.Unmarshal(body, into); err != nil {
			return fmt.Errorf("decode response body: %w", err)
		}
	}
	return nil
}

// Drain discards and closes res.Body and returns its status code.
func Drain(res *opensearchapi.Response) int {
	_, _ = io.Copy(io.Discard, res.Body)
	_ = res.Body.Close()
	return res.StatusCode
}

func parseError(status int, body []byte) *Error {
	e := &Error{Status: status}

	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if json.Unmarshal(body, &envelope) != nil || len(envelope.Error) == 0 {
		return e
	}

	var detail struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	}
	if json.Unmarshal(envelope.Error, &detail) == nil {
		e.Type, e.Reason = detail.Type, detail.Reason
		return e
	}

	var msg string
	if json.Unmarshal(envelope.Error, &msg) == nil {
		e.Reason = msg
	}
	return e
}
