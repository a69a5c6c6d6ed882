package models

import (
	"errors"
	"fmt"
)

// FailureKind classifies why a pipeline run produced no data.
type FailureKind string

const (
	FailureNone           FailureKind = ""
	FailureConfiguration  FailureKind = "configuration"
	FailureAuthentication FailureKind = "authentication"
	FailureNetwork        FailureKind = "network"
	FailureDataShape      FailureKind = "data_shape"
	FailureStorage        FailureKind = "storage"
	FailureUnknown        FailureKind = "unknown"
)

var (
	ErrConfiguration  = errors.New("configuration error")
	ErrAuthentication = errors.New("authentication error")
	ErrNetwork        = errors.New("network error")
	ErrDataShape      = errors.New("data shape error")
	ErrStorage        = errors.New("storage error")
)

func (k FailureKind) sentinel() error {
	switch k {
	case FailureConfiguration:
		return ErrConfiguration
	case FailureAuthentication:
		return ErrAuthentication
	case FailureNetwork:
		return ErrNetwork
	case FailureDataShape:
		return ErrDataShape
	case FailureStorage:
		return ErrStorage
	default:
		return nil
	}
}

// PipelineError is a classified failure raised by one pipeline stage.
type PipelineError struct {
	Kind FailureKind
	Op   string
	Err  error
}

// NewPipelineError wraps err with a failure kind and the operation that failed.
func NewPipelineError(kind FailureKind, op string, err error) *PipelineError {
	return &PipelineError{Kind: kind, Op: op, Err: err}
}

func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

// Unwrap returns underlying error.
func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match the kind sentinels (ErrNetwork, ...).
func (e *PipelineError) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// KindOf extracts the failure kind of err.
func KindOf(err error) FailureKind {
	if err == nil {
		return FailureNone
	}
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return FailureUnknown
}
