package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
)

const (
	CodeNotFound     = "NOT_FOUND"
	CodeValidation   = "VALIDATION_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeConflict     = "CONFLICT"
	CodeInternal     = "INTERNAL_ERROR"
	CodeBadRequest   = "BAD_REQUEST"
	CodeTimeout      = "TIMEOUT"
	CodeUnavailable  = "SERVICE_UNAVAILABLE"
	CodeNetwork      = "NETWORK_ERROR"
	CodeDecode       = "DECODE_ERROR"
)

// APIError is the failure surfaced by the API client layer for any request
// that did not complete with a 2xx status.
type APIError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Status  int            `json:"status,omitempty"`
	Details map[string]any `json:"details,omitempty"`
	Err     error          `json:"-"`
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s (%d): %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

func (e *APIError) StatusCode() int {
	return e.Status
}

func (e *APIError) WithDetails(details map[string]any) *APIError {
	e.Details = details
	return e
}

func New(code, message string, status int) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
		Status:  status,
	}
}

func Wrap(err error, code, message string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// FromStatus maps an HTTP status to an APIError. An empty message falls back
// to the standard status text.
func FromStatus(status int, message string) *APIError {
	if message == "" {
		message = http.StatusText(status)
	}
	return &APIError{
		Code:    codeForStatus(status),
		Message: message,
		Status:  status,
	}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return CodeBadRequest
	case http.StatusUnauthorized:
		return CodeUnauthorized
	case http.StatusForbidden:
		return CodeForbidden
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusConflict:
		return CodeConflict
	case http.StatusUnprocessableEntity:
		return CodeValidation
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return CodeTimeout
	case http.StatusServiceUnavailable, http.StatusBadGateway:
		return CodeUnavailable
	default:
		return CodeInternal
	}
}

// FromResponse builds an APIError from a non-2xx response body. The server
// message is read from "message" (string or list of strings), then "error",
// then "code".
func FromResponse(status int, body []byte) *APIError {
	var payload struct {
		Message json.RawMessage `json:"message"`
		Error   string          `json:"error"`
		Code    string          `json:"code"`
	}

	if len(body) == 0 || json.Unmarshal(body, &payload) != nil {
		return FromStatus(status, "")
	}

	message := decodeMessage(payload.Message)
	if message == "" {
		message = payload.Error
	}
	if message == "" {
		message = payload.Code
	}
	return FromStatus(status, message)
}

func decodeMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return single
	}

	var many []string
	if err := json.Unmarshal(raw, &many); err == nil {
		return strings.Join(many, "; ")
	}
	return ""
}

func NotFound(resource, id string) *APIError {
	return &APIError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Status:  http.StatusNotFound,
		Details: map[string]any{
			"resource": resource,
			"id":       id,
		},
	}
}

func Network(err error) *APIError {
	return Wrap(err, CodeNetwork, "request failed")
}

func Timeout(err error) *APIError {
	return &APIError{
		Code:    CodeTimeout,
		Message: "request timed out",
		Status:  http.StatusGatewayTimeout,
		Err:     err,
	}
}

func Decode(resource string, err error) *APIError {
	return Wrap(err, CodeDecode, fmt.Sprintf("could not decode %s", resource))
}

func As(err error) (*APIError, bool) {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

func IsNotFound(err error) bool {
	apiErr, ok := As(err)
	return ok && apiErr.Code == CodeNotFound
}

// UserMessage returns the message a view shows for err: the server-provided
// message when there is one, otherwise fallback.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	apiErr, ok := As(err)
	if !ok || apiErr.Status == 0 || apiErr.Message == "" {
		return fallback
	}
	if apiErr.Message == http.StatusText(apiErr.Status) {
		return fallback
	}
	return apiErr.Message
}
