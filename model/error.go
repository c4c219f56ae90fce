package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/naiba/gymkit/pkg/utils"
)

type ErrorKind uint8

const (
	_ ErrorKind = iota
	ErrorKindMalformed
	ErrorKindServer
	ErrorKindNetwork
	ErrorKindClient
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorKindMalformed:
		return "malformed"
	case ErrorKindServer:
		return "server"
	case ErrorKindNetwork:
		return "network"
	case ErrorKindClient:
		return "client"
	}
	return "unknown"
}

var (
	ErrMalformedResponse = errors.New("malformed response")
	ErrServer            = errors.New("server error")
	ErrNetwork           = errors.New("network error")
	ErrClient            = errors.New("client error")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrNoTenant          = errors.New("no gym selected")
)

// APIError is the single error shape produced by the client layer.
// Status is the HTTP status code, or 0 when no response was received.
type APIError struct {
	Kind    ErrorKind           `json:"-"`
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors,omitempty"`
	Status  int                 `json:"-"`

	cause error
}

func NewAPIError(kind ErrorKind, status int, message string, cause error) *APIError {
	return &APIError{Kind: kind, Status: status, Message: message, cause: cause}
}

func (e *APIError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Status > 0 {
		b.WriteString(" ")
		b.WriteString(strconv.Itoa(e.Status))
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.cause != nil {
		fmt.Fprintf(&b, " (%v)", e.cause)
	}
	return b.String()
}

func (e *APIError) Unwrap() error {
	return e.cause
}

// Is lets callers match on kind sentinels and on 401.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrMalformedResponse:
		return e.Kind == ErrorKindMalformed
	case ErrServer:
		return e.Kind == ErrorKindServer
	case ErrNetwork:
		return e.Kind == ErrorKindNetwork
	case ErrClient:
		return e.Kind == ErrorKindClient
	case ErrUnauthorized:
		return e.Status == 401
	}
	return false
}

// Responded reports whether the server answered at all.
func (e *APIError) Responded() bool {
	return e.Status > 0
}

// FieldErrors returns the messages for one field.
func (e *APIError) FieldErrors(field string) []string {
	if e.Errors == nil {
		return nil
	}
	return e.Errors[field]
}

type apiErrorJSON struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors,omitempty"`
	Status  any                 `json:"status"`
}

// MarshalJSON renders status as false when nothing came back from the server.
func (e *APIError) MarshalJSON() ([]byte, error) {
	out := apiErrorJSON{Message: e.Message, Errors: e.Errors, Status: false}
	if e.Status > 0 {
		out.Status = e.Status
	}
	return utils.Json.Marshal(out)
}

// AsAPIError ..
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
