package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrTransport         = errors.New("transport error")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrAlreadyExists     = errors.New("already exists")
	ErrIllegalTransition = errors.New("illegal transition")
	ErrLocked            = errors.New("locked")
	ErrInvalid           = errors.New("invalid request")
	ErrTooLarge          = errors.New("payload too large")
	ErrUpstream          = errors.New("upstream service failed")
)

// TransportError means the request never produced an HTTP response.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() []error { return []error{ErrTransport, e.Err} }

// APIError is a non-2xx answer from the server.
type APIError struct {
	Op     string
	Status int
	Detail string
	// Code and Errors are set for structured 409 details.
	Code   string
	Errors []string
}

func (e *APIError) Error() string { return e.Detail }

func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrConflict:
		return e.Status == http.StatusConflict
	case ErrAlreadyExists:
		if e.Code != "" {
			return e.Code == "already_exists"
		}
		return e.clientError() && e.mentions("already exists")
	case ErrIllegalTransition:
		if e.Code != "" {
			return e.Code == "illegal_transition" || e.Code == "lock_checks"
		}
		// Uncoded 409s are rule rejections unless they name a duplicate or a lock.
		return e.Status == http.StatusConflict && !e.mentions("already exists") && !e.mentions("locked")
	case ErrLocked:
		if e.Code != "" {
			return e.Code == "locked"
		}
		return e.Status == http.StatusConflict && e.mentions("locked")
	case ErrInvalid:
		return e.Status == http.StatusBadRequest || e.Status == http.StatusUnprocessableEntity
	case ErrTooLarge:
		return e.Status == http.StatusRequestEntityTooLarge
	case ErrUpstream:
		return e.Status == http.StatusBadGateway
	}
	return false
}

func (e *APIError) clientError() bool {
	return e.Status >= http.StatusBadRequest && e.Status < http.StatusInternalServerError
}

func (e *APIError) mentions(phrase string) bool {
	return strings.Contains(strings.ToLower(e.Detail), phrase)
}

type errorEnvelope struct {
	Detail json.RawMessage `json:"detail"`
}

type structuredDetail struct {
	Message string   `json:"message"`
	Code    string   `json:"code"`
	Errors  []string `json:"errors"`
}

// decodeError reads {"detail": "..."} or {"detail": {"message": ...}} and
// falls back to "<op> failed" for anything else.
func decodeError(op string, status int, body []byte) *APIError {
	apiErr := &APIError{Op: op, Status: status, Detail: op + " failed"}

	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err != nil || len(env.Detail) == 0 {
		return apiErr
	}

	var text string
	if err := json.Unmarshal(env.Detail, &text); err == nil {
		if text != "" {
			apiErr.Detail = text
		}
		return apiErr
	}

	var sd structuredDetail
	if err := json.Unmarshal(env.Detail, &sd); err == nil {
		if sd.Message != "" {
			apiErr.Detail = sd.Message
		}
		apiErr.Code = sd.Code
		apiErr.Errors = sd.Errors
	}
	return apiErr
}
