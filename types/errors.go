package types

import (
	"fmt"

	"github.com/pkg/errors"
)

// ValidationError rejects a whole batch before any file is touched
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ErrNoInput is returned when a batch is started without any image paths
var ErrNoInput = &ValidationError{Field: "paths", Reason: "no images to process"}

// ProcessingError is a per-file failure. It never aborts a batch.
type ProcessingError struct {
	Kind Outcome
	Path string
	Err  error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Path, e.Err)
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}

// NewDecodeError reports a file that could not be opened or parsed
func NewDecodeError(path string, err error) error {
	return &ProcessingError{Kind: OutcomeDecodeError, Path: path, Err: err}
}

// NewDegenerateSizeError reports a scale that collapses a dimension to zero
func NewDegenerateSizeError(path string, width, height int, scale float64) error {
	return &ProcessingError{
		Kind: OutcomeDegenerateSize,
		Path: path,
		Err:  errors.Errorf("scale %g reduces %dx%d to zero", scale, width, height),
	}
}

// NewEncodeOrWriteError reports a failure to persist a transformed image
func NewEncodeOrWriteError(path string, err error) error {
	return &ProcessingError{Kind: OutcomeEncodeOrWrite, Path: path, Err: err}
}

// OutcomeOf maps an error returned by a transform to its outcome.
// Errors that are not a ProcessingError count as encode/write failures.
func OutcomeOf(err error) Outcome {
	if err == nil {
		return OutcomeSuccess
	}
	var pe *ProcessingError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return OutcomeEncodeOrWrite
}

// IsValidationError reports whether err rejects a whole batch
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
