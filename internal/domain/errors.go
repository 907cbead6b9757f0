package domain

import "errors"

// Sentinel values matched with errors.Is
var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInfeasible        = errors.New("optimization infeasible")
	ErrNumerical         = errors.New("numerical failure")
)

// ValidationError reports bad input, including records that do not exist
type ValidationError struct {
	Operation string
	Message   string
	Cause     error
}

func (e *ValidationError) Error() string { return format(e.Operation, e.Message, e.Cause) }

func (e *ValidationError) Unwrap() error { return e.Cause }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NotFound builds a ValidationError for a missing record
func NotFound(operation, message string) error {
	return &ValidationError{Operation: operation, Message: message, Cause: ErrNotFound}
}

// InfeasibleError reports that no selection satisfies the constraints
type InfeasibleError struct {
	Operation string
	Message   string
	Cause     error
}

func (e *InfeasibleError) Error() string { return format(e.Operation, e.Message, e.Cause) }

func (e *InfeasibleError) Unwrap() error { return e.Cause }

func (e *InfeasibleError) Is(target error) bool { return target == ErrInfeasible }

// NumericalError reports an iterative computation that failed to converge
type NumericalError struct {
	Operation string
	Message   string
	Cause     error
}

func (e *NumericalError) Error() string { return format(e.Operation, e.Message, e.Cause) }

func (e *NumericalError) Unwrap() error { return e.Cause }

func (e *NumericalError) Is(target error) bool { return target == ErrNumerical }

func format(op, msg string, cause error) string {
	if cause != nil {
		return op + ": " + msg + ": " + cause.Error()
	}
	return op + ": " + msg
}
