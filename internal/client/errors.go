package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sort"
	"strings"
)

// Kind classifies a failed backend call so callers can branch without
// string matching.
type Kind string

const (
	KindNetworkUnavailable Kind = "network_unavailable" // no response at all
	KindTimeout            Kind = "timeout"
	KindAuthExpired        Kind = "auth_expired" // 401 after a failed refresh
	KindValidation         Kind = "validation"   // 4xx with field detail
	KindNotFound           Kind = "not_found"
	KindConflict           Kind = "conflict" // domain rejection (already used, already decided)
	KindServer             Kind = "server"   // 5xx
)

// APIError is the single error shape the gateway returns. Message is
// already user-facing: server-supplied detail wins over the generic
// status text.
type APIError struct {
	Kind    Kind
	Status  int // 0 when no response was received
	Message string
	Fields  map[string]string // first message per field, when the backend sent field errors
}

func (e *APIError) Error() string {
	return e.Message
}

// AsAPIError unwraps err into an *APIError if there is one in the chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsKind reports whether err is an APIError of the given kind.
func IsKind(err error, kind Kind) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Kind == kind
}

const (
	sessionExpiredMessage     = "Your session has expired. Please log in again."
	invalidCredentialsMessage = "Invalid credentials. Please check your email and password."
)

// transportError classifies a request that never produced a response.
func transportError(err error) *APIError {
	msg := "Unable to connect to the server. Please try again."
	kind := KindNetworkUnavailable

	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = KindTimeout
		msg = "Request timed out. Please check your connection and try again."
	case errors.As(err, &netErr) && netErr.Timeout():
		kind = KindTimeout
		msg = "Request timed out. Please check your connection and try again."
	case strings.Contains(err.Error(), "no such host"):
		msg = "Unable to connect to server. Please check your internet connection."
	case strings.Contains(err.Error(), "connection refused"):
		msg = "Server is currently unavailable. Please try again later."
	}

	return &APIError{Kind: kind, Message: msg}
}

// statusMessage is the fallback text when the backend sent no usable
// detail for a given status code.
func statusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "Invalid request. Please check your information and try again."
	case http.StatusUnauthorized:
		return sessionExpiredMessage
	case http.StatusForbidden:
		return "You don't have permission to perform this action."
	case http.StatusNotFound:
		return "The requested resource was not found."
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return "Request timed out. Please try again."
	case http.StatusConflict:
		return "There was a conflict with your request. Please try again."
	case http.StatusUnprocessableEntity:
		return "Please check your input and try again."
	case http.StatusTooManyRequests:
		return "Too many requests. Please wait a moment and try again."
	case http.StatusInternalServerError:
		return "Server error occurred. Please try again later."
	case http.StatusBadGateway:
		return "Service temporarily unavailable. Please try again."
	case http.StatusServiceUnavailable:
		return "Service is currently under maintenance. Please try again later."
	}
	if status >= 500 {
		return "Server error occurred. Please try again later."
	}
	if status >= 400 {
		return "Something went wrong with your request. Please try again."
	}
	return "An unexpected error occurred. Please try again."
}

func kindForStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized:
		return KindAuthExpired
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusConflict:
		return KindConflict
	case status >= 500:
		return KindServer
	default:
		return KindValidation
	}
}

// responseError normalizes an error response body. Server-supplied
// detail/error/message fields win, then non_field_errors, then the
// first field error, then the generic status text.
func responseError(status int, body []byte) *APIError {
	apiErr := &APIError{
		Kind:    kindForStatus(status),
		Status:  status,
		Message: statusMessage(status),
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil || len(payload) == 0 {
		return apiErr
	}

	for _, key := range []string{"detail", "error", "message"} {
		if msg, ok := stringField(payload[key]); ok {
			apiErr.Message = msg
			return apiErr
		}
	}

	if msgs, ok := stringListField(payload["non_field_errors"]); ok {
		apiErr.Message = msgs[0]
		return apiErr
	}

	// Field-specific validation errors, e.g. {"quantity": ["..."]}.
	fields := map[string]string{}
	keys := make([]string, 0, len(payload))
	for key := range payload {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if msg, ok := stringField(payload[key]); ok {
			fields[key] = msg
		} else if msgs, ok := stringListField(payload[key]); ok {
			fields[key] = msgs[0]
		}
	}
	if len(fields) > 0 {
		apiErr.Fields = fields
		first := keys[0]
		for _, key := range keys {
			if _, ok := fields[key]; ok {
				first = key
				break
			}
		}
		apiErr.Message = fmt.Sprintf("%s: %s", first, fields[first])
	}

	return apiErr
}

func stringField(raw json.RawMessage) (string, bool) {
	if raw == nil {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil || s == "" {
		return "", false
	}
	return s, true
}

func stringListField(raw json.RawMessage) ([]string, bool) {
	if raw == nil {
		return nil, false
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil || len(list) == 0 {
		return nil, false
	}
	return list, true
}
