package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
)

// Sentinels for errors.Is. Every *Error matches exactly one of them.
var (
	ErrTransport    = errors.New("backend unreachable")
	ErrUnauthorized = errors.New("not authenticated")
	ErrForbidden    = errors.New("not allowed")
	ErrValidation   = errors.New("rejected as invalid")
	ErrConflict     = errors.New("conflicts with current state")
	ErrNotFound     = errors.New("not found")
	ErrServer       = errors.New("backend failure")
)

// Kind classifies a failure.
type Kind int

const (
	KindTransport Kind = iota + 1
	KindUnauthorized
	KindForbidden
	KindValidation
	KindConflict
	KindNotFound
	KindServer
)

func (k Kind) sentinel() error {
	switch k {
	case KindTransport:
		return ErrTransport
	case KindUnauthorized:
		return ErrUnauthorized
	case KindForbidden:
		return ErrForbidden
	case KindValidation:
		return ErrValidation
	case KindConflict:
		return ErrConflict
	case KindNotFound:
		return ErrNotFound
	default:
		return ErrServer
	}
}

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	default:
		return "server"
	}
}

// KindForStatus maps an HTTP status to a failure kind.
func KindForStatus(status int) Kind {
	switch status {
	case http.StatusUnauthorized:
		return KindUnauthorized
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return KindValidation
	case http.StatusConflict:
		return KindConflict
	case http.StatusNotFound:
		return KindNotFound
	default:
		return KindServer
	}
}

// Error is a failed backend call.
type Error struct {
	Kind      Kind
	Status    int
	Method    string
	Path      string
	Message   string
	Fields    map[string][]string
	RequestID string
	Err       error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		msg = e.Kind.sentinel().Error()
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, msg)
	}
	return fmt.Sprintf("%s %s: %s", e.Method, e.Path, msg)
}

// Is matches the sentinel of the error's kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind.sentinel()
}

func (e *Error) Unwrap() error { return e.Err }

// UserMessage is the text to show to a person: the backend's own message when it sent one.
func (e *Error) UserMessage() string {
	if e.Message != "" {
		return e.Message
	}
	switch e.Kind {
	case KindTransport:
		return "Could not reach the server."
	case KindUnauthorized:
		return "Your session has expired. Please log in again."
	case KindForbidden:
		return "You don't have permission to do that."
	case KindValidation:
		return "Some fields are invalid."
	case KindConflict:
		return "Someone else changed this first. Reload and try again."
	case KindNotFound:
		return "Not found."
	default:
		return "Something went wrong."
	}
}

// FieldErrors flattens validation messages as "field: message" lines, sorted by field.
func (e *Error) FieldErrors() []string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []string
	for _, k := range keys {
		for _, msg := range e.Fields[k] {
			out = append(out, k+": "+msg)
		}
	}
	return out
}

// Message extracts the user-facing text of any error.
func Message(err error) string {
	var gwErr *Error
	if errors.As(err, &gwErr) {
		return gwErr.UserMessage()
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

const maxErrorBody = 64 << 10

// errorBody accepts both {"message", "errors"} bodies and {"error": {"code", "message"}} envelopes.
type errorBody struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
	Error   json.RawMessage     `json:"error"`
}

func decodeError(resp *http.Response, method, path, requestID string) *Error {
	gwErr := &Error{
		Kind:      KindForStatus(resp.StatusCode),
		Status:    resp.StatusCode,
		Method:    method,
		Path:      path,
		RequestID: requestID,
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return gwErr
	}

	var body errorBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return gwErr
	}
	gwErr.Message = strings.TrimSpace(body.Message)
	gwErr.Fields = body.Errors

	if gwErr.Message == "" && len(body.Error) > 0 {
		var nested struct {
			Message string `json:"message"`
		}
		var plain string
		switch {
		case json.Unmarshal(body.Error, &nested) == nil && nested.Message != "":
			gwErr.Message = nested.Message
		case json.Unmarshal(body.Error, &plain) == nil:
			gwErr.Message = plain
		}
	}
	return gwErr
}
