package common

import (
	"errors"
	"fmt"
)

// AppError represents an exporter failure of a known kind.
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil && !isKind(e.Cause) {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Error kinds. Match with errors.Is.
var (
	ErrNetwork           = errors.New("network error")
	ErrAuth              = errors.New("auth error")
	ErrMalformedResponse = errors.New("malformed response")
	ErrIO                = errors.New("io error")
	ErrConfig            = errors.New("config error")
)

// kindError ties a concrete cause to one of the error kinds.
type kindError struct {
	kind  error
	cause error
}

func (k kindError) Error() string {
	if k.cause == nil {
		return k.kind.Error()
	}
	return k.cause.Error()
}

func (k kindError) Unwrap() []error {
	if k.cause == nil {
		return []error{k.kind}
	}
	return []error{k.kind, k.cause}
}

func isKind(err error) bool {
	_, ok := err.(kindError)
	return ok
}

func withKind(kind error, code, message string, cause error) *AppError {
	e := &AppError{Code: code, Message: message, Cause: kindError{kind: kind, cause: cause}}
	if cause != nil {
		e.Message = message + ": " + cause.Error()
	}
	return e
}

func NetworkError(message string, cause error) error {
	return withKind(ErrNetwork, "NETWORK_ERROR", message, cause)
}

func AuthError(message string, cause error) error {
	return withKind(ErrAuth, "AUTH_ERROR", message, cause)
}

func MalformedResponseError(message string, cause error) error {
	return withKind(ErrMalformedResponse, "MALFORMED_RESPONSE", message, cause)
}

func IOError(message string, cause error) error {
	return withKind(ErrIO, "IO_ERROR", message, cause)
}

func ConfigError(message string, cause error) error {
	return withKind(ErrConfig, "CONFIG_ERROR", message, cause)
}

// ExitCode maps an error kind to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrConfig):
		return 1
	case errors.Is(err, ErrNetwork):
		return 2
	case errors.Is(err, ErrAuth):
		return 3
	case errors.Is(err, ErrMalformedResponse):
		return 4
	case errors.Is(err, ErrIO):
		return 5
	default:
		return 1
	}
}
