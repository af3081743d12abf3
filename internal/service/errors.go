package service

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrInvalid    = errors.New("invalid")
	ErrEmptyInput = errors.New("empty input")
	ErrClosed     = errors.New("session closed")
	// ErrService matches every *ServiceError.
	ErrService = errors.New("translation service error")
)

// failureMessage is shown to users for every translation failure.
const failureMessage = "Failed to get translation. Please check your API key and try again."

// ErrorKind distinguishes translation failures in logs and diagnostics.
type ErrorKind int

const (
	// CommunicationFailure covers transport errors, timeouts, auth failures
	// and payloads that are not JSON.
	CommunicationFailure ErrorKind = iota + 1
	// InvalidResponseShape covers JSON that lacks a field, has a non-string
	// field, or names a source language outside the catalog.
	InvalidResponseShape
)

func (k ErrorKind) String() string {
	switch k {
	case CommunicationFailure:
		return "communication_failure"
	case InvalidResponseShape:
		return "invalid_response_shape"
	default:
		return "unknown"
	}
}

// ServiceError is returned by TranslationService.Translate.
type ServiceError struct {
	Kind ErrorKind
	Err  error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("translation service: %s: %v", e.Kind, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return target == ErrService
}

// Message returns the user-facing description. Both kinds read the same.
func (e *ServiceError) Message() string {
	return failureMessage
}

func communicationFailure(err error) *ServiceError {
	return &ServiceError{Kind: CommunicationFailure, Err: err}
}

func invalidShape(format string, args ...any) *ServiceError {
	return &ServiceError{Kind: InvalidResponseShape, Err: fmt.Errorf(format, args...)}
}
