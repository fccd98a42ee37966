package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
)

const (
	unknownErrorMessage    = "Unknown error"
	validationErrorMessage = "Validation error"
)

// translateTransport maps an error from http.Client.Do.
func translateTransport(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return newUnavailable(fmt.Sprintf("Request timed out: %v", err), err)
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return newUnavailable(fmt.Sprintf("Failed to connect to API: %v", err), err)
	}
	return newUnavailable(fmt.Sprintf("Request failed: %v", err), err)
}

// translateStatus returns the typed failure for status, or nil for 1xx-3xx.
// Every 4xx and 5xx maps to exactly one failure. It never fails on a bad body.
func translateStatus(status int, body []byte) error {
	switch {
	case status < http.StatusBadRequest:
		return nil
	case status == http.StatusNotFound:
		return newNotFound(extractDetail(body))
	case status == http.StatusUnprocessableEntity:
		return validationFailure(body)
	case status == http.StatusTooManyRequests:
		return newThrottled(extractDetail(body))
	case status >= http.StatusInternalServerError:
		return newUnavailable(fmt.Sprintf("Server error: %d", status), nil)
	default:
		return newBadRequest(status, extractDetail(body))
	}
}

// extractDetail reads {"detail": "..."}; anything else yields a generic message.
func extractDetail(body []byte) string {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return unknownErrorMessage
	}
	raw, ok := payload["detail"]
	if !ok || string(raw) == "null" {
		return unknownErrorMessage
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func validationFailure(body []byte) error {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return newValidationFailed(validationErrorMessage, nil)
	}
	raw, ok := payload["detail"]
	if !ok || string(raw) == "null" {
		return newValidationFailed(validationErrorMessage, nil)
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err == nil {
		details := make([]string, 0, len(items))
		for _, item := range items {
			details = append(details, formatFieldError(item))
		}
		return newValidationFailed(validationErrorMessage, details)
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return newValidationFailed(s, nil)
	}
	return newValidationFailed(string(raw), nil)
}

// formatFieldError renders one entry as "<last loc element>: <msg>".
func formatFieldError(item json.RawMessage) string {
	var entry struct {
		Loc []any  `json:"loc"`
		Msg string `json:"msg"`
	}
	field, msg := "?", "error"
	if err := json.Unmarshal(item, &entry); err != nil {
		return field + ": " + msg
	}
	if n := len(entry.Loc); n > 0 {
		field = locString(entry.Loc[n-1])
	}
	if entry.Msg != "" {
		msg = entry.Msg
	}
	return field + ": " + msg
}

func locString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case nil:
		return "?"
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}
