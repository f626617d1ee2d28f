package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies user-visible failures.
type ErrorKind string

const (
	// KindNotFound marks a missing or expired token, or a missing model.
	KindNotFound ErrorKind = "not_found"
	// KindInvalidInput marks malformed client input: non-numeric schedule
	// values, wrong file extensions, empty uploads, path escapes.
	KindInvalidInput ErrorKind = "invalid_input"
	// KindEngineFailure marks an error raised by the simulation engine.
	KindEngineFailure ErrorKind = "engine_failure"
	// KindPlatformUnsupported marks a model whose declared platforms do
	// not include the host's.
	KindPlatformUnsupported ErrorKind = "platform_unsupported"
)

// Error is a classified failure carrying the diagnostic log accumulated
// up to the failure point.
type Error struct {
	Kind    ErrorKind
	Message string
	Logs    []string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the wrapped cause for errors.Is/As.
func (e *Error) Unwrap() error { return e.Err }

// NotFoundf builds a KindNotFound error.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// InvalidInputf builds a KindInvalidInput error.
func InvalidInputf(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidInput, Message: fmt.Sprintf(format, args...)}
}

// EngineFailure wraps an engine error verbatim, attaching the diagnostic
// log lines accumulated before the failure.
func EngineFailure(err error, logs []string) *Error {
	return &Error{Kind: KindEngineFailure, Message: err.Error(), Logs: logs, Err: err}
}

// PlatformUnsupportedf builds a KindPlatformUnsupported error with the
// platform diagnostics attached.
func PlatformUnsupportedf(logs []string, format string, args ...any) *Error {
	return &Error{Kind: KindPlatformUnsupported, Message: fmt.Sprintf(format, args...), Logs: logs}
}

// KindOf extracts the ErrorKind from err, or "" if err is not a
// classified Error.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// LogsOf extracts the diagnostic log attached to err, if any.
func LogsOf(err error) []string {
	var de *Error
	if errors.As(err, &de) {
		return de.Logs
	}
	return nil
}
