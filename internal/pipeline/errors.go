// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrCancelled is returned when the caller cancels a run between stages.
	ErrCancelled = errors.New("run cancelled")

	// ErrBusy is returned when another run holds the output directory lock.
	ErrBusy = errors.New("another brief run is in progress")
)

// ClientInputError reports missing required input. It is returned before any
// stage runs.
type ClientInputError struct {
	Fields []string
}

func (e *ClientInputError) Error() string {
	return fmt.Sprintf("missing required input: %s", strings.Join(e.Fields, ", "))
}

// StageError reports a failed stage. Err is a *generate.GenerationError for
// generation failures or wraps ErrMalformedBrief for a rejected compile.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// PersistError reports a failure writing the artifact.
type PersistError struct {
	Path string
	Err  error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("writing brief %s: %v", e.Path, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

// outcome labels err for the runs metric.
func outcome(err error) string {
	var (
		ie *ClientInputError
		se *StageError
		pe *PersistError
	)
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &ie):
		return "client_error"
	case errors.Is(err, ErrCancelled):
		return "cancelled"
	case errors.Is(err, ErrBusy):
		return "busy"
	case errors.As(err, &pe):
		return "persist_error"
	case errors.As(err, &se):
		return "stage_error"
	default:
		return "error"
	}
}
