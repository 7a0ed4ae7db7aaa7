package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
)

// Error is the uniform failure shape for every backend call. Status is zero
// for transport failures (backend unreachable), otherwise the HTTP status.
// Fields holds the backend's per-field validation messages when it returned
// them, for display next to the offending input.
type Error struct {
	Status  int
	Message string
	Fields  map[string][]string

	cause error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.cause }

// Network reports whether the backend was never reached.
func (e *Error) Network() bool { return e.Status == 0 }

func (e *Error) NotFound() bool { return e.Status == http.StatusNotFound }

// AsError extracts the normalized form from any error returned by this
// package. It always succeeds for those; the bool guards foreign errors.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

func genericMessage(status int) string {
	return fmt.Sprintf("request failed (status %d)", status)
}

// decodeError maps the backend's three failure shapes onto Error:
//
//	{"error": "..."}            ad-hoc messages
//	{"detail": "..."}           framework messages
//	{"field": ["...", ...]}     per-field validation maps
//
// Anything else keeps the generic status-code message.
func decodeError(status int, raw []byte) *Error {
	e := &Error{Status: status, Message: genericMessage(status)}

	var shape map[string]json.RawMessage
	if err := json.Unmarshal(raw, &shape); err != nil || len(shape) == 0 {
		return e
	}

	for _, key := range []string{"error", "detail"} {
		if v, ok := shape[key]; ok {
			var msg string
			if json.Unmarshal(v, &msg) == nil && msg != "" {
				e.Message = msg
				return e
			}
		}
	}

	fields := make(map[string][]string)
	for name, v := range shape {
		var msgs []string
		if json.Unmarshal(v, &msgs) == nil && len(msgs) > 0 {
			fields[name] = msgs
		}
	}
	if len(fields) > 0 {
		e.Fields = fields
		// The first field in name order headlines the message, so the same
		// response always renders the same way.
		names := make([]string, 0, len(fields))
		for name := range fields {
			names = append(names, name)
		}
		sort.Strings(names)
		e.Message = names[0] + ": " + fields[names[0]][0]
	}
	return e
}
