package apperrors

import (
	"errors"
	"fmt"
)

type ErrorType string

const (
	ErrConfiguration     ErrorType = "CONFIGURATION_ERROR"
	ErrInvalidCredential ErrorType = "INVALID_CREDENTIAL"
	ErrNoProxy           ErrorType = "NO_PROXY"
	ErrProtocol          ErrorType = "PROTOCOL_ERROR"
	ErrUnexpectedFault   ErrorType = "UNEXPECTED_FAULT"
)

// maxBodyLen bounds how much of a remote response body is kept on an error.
const maxBodyLen = 512

// AppError is the standard error struct for the application
type AppError struct {
	Type    ErrorType `json:"code"`
	Message string    `json:"message"`
	Stage   string    `json:"stage,omitempty"`
	Status  int       `json:"status,omitempty"`
	Body    string    `json:"body,omitempty"`
	Hint    string    `json:"hint,omitempty"`
	Cause   error     `json:"-"`
}

func (e *AppError) Error() string {
	msg := e.Message
	if e.Stage != "" {
		msg = e.Stage + ": " + msg
	}
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(errType ErrorType, msg string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: msg,
		Cause:   cause,
		Hint:    mapTypeToHint(errType),
	}
}

func NewConfiguration(msg string, cause error) *AppError {
	return New(ErrConfiguration, msg, cause)
}

func NewInvalidCredential(msg string) *AppError {
	return New(ErrInvalidCredential, msg, nil)
}

func NewNoProxy() *AppError {
	return New(ErrNoProxy, "no proxy available", nil)
}

// NewProtocol describes a failed remote call. status and body are optional.
func NewProtocol(stage string, msg string, status int, body []byte, cause error) *AppError {
	e := New(ErrProtocol, msg, cause)
	e.Stage = stage
	e.Status = status
	e.Body = truncate(string(body))
	return e
}

func NewUnexpectedFault(v any) *AppError {
	if err, ok := v.(error); ok {
		return New(ErrUnexpectedFault, "unexpected fault", err)
	}
	return New(ErrUnexpectedFault, fmt.Sprintf("unexpected fault: %v", v), nil)
}

func Wrap(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return New(ErrUnexpectedFault, err.Error(), err)
}

// KindOf returns the ErrorType carried by err, or "" for nil.
func KindOf(err error) ErrorType {
	if err == nil {
		return ""
	}
	return Wrap(err).Type
}

// IsFatal reports whether err must abort the whole run.
func IsFatal(err error) bool {
	return KindOf(err) == ErrConfiguration
}

func truncate(s string) string {
	if len(s) <= maxBodyLen {
		return s
	}
	return s[:maxBodyLen] + "...(truncated)"
}

func mapTypeToHint(t ErrorType) string {
	switch t {
	case ErrConfiguration:
		return "Check the wallet and proxy files and config.yaml."
	case ErrInvalidCredential:
		return "Private keys must be 64 hex characters, optionally 0x-prefixed."
	case ErrNoProxy:
		return "Add at least one proxy to the proxy list."
	case ErrProtocol:
		return "Check the proxy health and the remote response body."
	default:
		return ""
	}
}
