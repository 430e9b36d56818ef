// Package errdefs defines the failure taxonomy shared by every stage of the
// pairwise error-metric pipeline.
package errdefs

import (
	"errors"
	"fmt"
)

var (
	// ErrDataNotFound reports a missing or unreadable input file.
	ErrDataNotFound = errors.New("data not found")

	// ErrFormat reports missing keys, malformed matrices or a shape mismatch.
	ErrFormat = errors.New("format error")

	// ErrInvalidParameter reports an unusable scale, shape or block size.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrInsufficientData reports too few valid cells for a statistic.
	ErrInsufficientData = errors.New("insufficient data")
)

// Stage names a step of the pipeline
type Stage string

const (
	StageLoad      Stage = "load"
	StageCalibrate Stage = "calibrate"
	StageAggregate Stage = "aggregate"
	StageCompare   Stage = "compare"
	StagePersist   Stage = "persist"
)

// StageError attaches the failing stage to an error
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// AtStage wraps err with the stage it came from. A nil err stays nil.
func AtStage(stage Stage, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Stage: stage, Err: err}
}

// StageOf returns the stage recorded on err, if any
func StageOf(err error) (Stage, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return "", false
}

func NotFound(format string, args ...any) error {
	return wrap(ErrDataNotFound, format, args...)
}

func Format(format string, args ...any) error {
	return wrap(ErrFormat, format, args...)
}

func InvalidParameter(format string, args ...any) error {
	return wrap(ErrInvalidParameter, format, args...)
}

func InsufficientData(format string, args ...any) error {
	return wrap(ErrInsufficientData, format, args...)
}

func wrap(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))
}
