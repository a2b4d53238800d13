package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
)

// Kind classifies an upstream failure into the buckets the UI cares about.
type Kind int

const (
	// KindConnectivity is a transport-level failure (status 0): DNS, refused
	// connection, timeout.
	KindConnectivity Kind = iota
	// KindUnauthorized is a 401: the upstream token is gone or revoked.
	KindUnauthorized
	// KindSessionExpired is a 419 that survived the single CSRF refresh.
	KindSessionExpired
	// KindValidation is a 422 with a field-level error payload.
	KindValidation
	// KindConflict is a 409, e.g. a duplicate CPF on intake.
	KindConflict
	// KindNotFound is a 404.
	KindNotFound
	// KindServer is everything else.
	KindServer
)

// Error is a classified upstream failure.
type Error struct {
	Kind    Kind
	Status  int
	Field   string
	Message string
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("backend unreachable: %s", e.Message)
	}
	if e.Field != "" {
		return fmt.Sprintf("backend returned %d: %s: %s", e.Status, e.Field, e.Message)
	}
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
}

// KindOf returns the classification of err, or KindServer for errors that did
// not originate from the backend client.
func KindOf(err error) Kind {
	var be *Error
	if errors.As(err, &be) {
		return be.Kind
	}
	return KindServer
}

func IsConnectivity(err error) bool   { return is(err, KindConnectivity) }
func IsUnauthorized(err error) bool   { return is(err, KindUnauthorized) }
func IsSessionExpired(err error) bool { return is(err, KindSessionExpired) }
func IsValidation(err error) bool     { return is(err, KindValidation) }
func IsConflict(err error) bool       { return is(err, KindConflict) }
func IsNotFound(err error) bool       { return is(err, KindNotFound) }

func is(err error, k Kind) bool {
	var be *Error
	return errors.As(err, &be) && be.Kind == k
}

// ValidationError builds a local validation failure in the same shape as an
// upstream 422, so handlers map both identically.
func ValidationError(field, message string) *Error {
	return &Error{Kind: KindValidation, Status: http.StatusUnprocessableEntity, Field: field, Message: message}
}

// errorBody is the Laravel-style error payload:
// {"message": "...", "errors": {"field": ["first msg", ...]}}.
type errorBody struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

// classify converts a non-2xx upstream response into an *Error. secondCSRF
// marks a 419 seen after the single token refresh already happened.
func classify(status int, body []byte, secondCSRF bool) *Error {
	e := &Error{Status: status}

	var payload errorBody
	_ = json.Unmarshal(body, &payload)
	e.Message = payload.Message

	switch status {
	case http.StatusUnauthorized:
		e.Kind = KindUnauthorized
		if e.Message == "" {
			e.Message = "authentication required"
		}
	case statusCSRFExpired:
		if secondCSRF {
			e.Kind = KindSessionExpired
			e.Message = "session expired"
		} else {
			e.Kind = KindServer
			e.Message = "csrf token mismatch"
		}
	case http.StatusUnprocessableEntity:
		e.Kind = KindValidation
		e.Field, e.Message = firstFieldError(payload)
	case http.StatusConflict:
		e.Kind = KindConflict
		if e.Message == "" {
			e.Message = "conflict"
		}
	case http.StatusNotFound:
		e.Kind = KindNotFound
		if e.Message == "" {
			e.Message = "not found"
		}
	default:
		e.Kind = KindServer
		if e.Message == "" {
			e.Message = http.StatusText(status)
		}
	}
	return e
}

// firstFieldError extracts the first field-level message from a 422 payload.
// Field names are visited in sorted order so the surfaced error is stable.
func firstFieldError(payload errorBody) (string, string) {
	fields := make([]string, 0, len(payload.Errors))
	for f := range payload.Errors {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		if msgs := payload.Errors[f]; len(msgs) > 0 {
			return f, msgs[0]
		}
	}
	if payload.Message != "" {
		return "", payload.Message
	}
	return "", "validation failed"
}
