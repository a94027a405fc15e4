package entity

import (
	"errors"
	"fmt"
)

// Базовые ошибки для классификации через errors.Is.
var (
	ErrInvalidImage     = errors.New("invalid image")
	ErrImageUnavailable = errors.New("image unavailable")
	ErrMalformedJob     = errors.New("malformed job")
	ErrBusy             = errors.New("controller busy")
	ErrHalted           = errors.New("controller halted")
	ErrDeviceFailure    = errors.New("device failure")
	ErrCancelled        = errors.New("job cancelled")
)

// ErrorKind — грубая категория ошибки.
type ErrorKind string

const (
	KindInvalidImage     ErrorKind = "invalid_image"
	KindImageUnavailable ErrorKind = "image_unavailable"
	KindMalformedJob     ErrorKind = "malformed_job"
	KindBusy             ErrorKind = "busy"
	KindDevice           ErrorKind = "device"
	KindCancelled        ErrorKind = "cancelled"
)

var kindSentinels = map[ErrorKind]error{
	KindInvalidImage:     ErrInvalidImage,
	KindImageUnavailable: ErrImageUnavailable,
	KindMalformedJob:     ErrMalformedJob,
	KindBusy:             ErrBusy,
	KindDevice:           ErrDeviceFailure,
	KindCancelled:        ErrCancelled,
}

// PipelineError оборачивает ошибку операцией и категорией.
type PipelineError struct {
	Op   string
	Kind ErrorKind
	Err  error
}

func (e *PipelineError) Error() string {
	if e == nil {
		return "<nil>"
	}
	base := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.Err != nil {
		base += fmt.Sprintf(": %v", e.Err)
	}
	return base
}

func (e *PipelineError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is позволяет errors.Is(err, ErrDeviceFailure) для ошибок соответствующей категории.
func (e *PipelineError) Is(target error) bool {
	if e == nil {
		return false
	}
	s, ok := kindSentinels[e.Kind]
	return ok && s == target
}

// IsKind классифицирует ошибку, не завися от инфраструктуры.
func IsKind(err error, kind ErrorKind) bool {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind == kind
	}
	return false
}

// IsFatal сообщает, что ошибка означает потерю связи с устройством.
func IsFatal(err error) bool {
	return errors.Is(err, ErrDeviceFailure)
}

func errMissing(field string) error {
	return fmt.Errorf("missing field %q", field)
}
