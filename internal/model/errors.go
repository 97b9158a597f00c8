package model

import "fmt"

// TaskError represents a domain error for tasks.
type TaskError struct {
	Message string
}

func (e TaskError) Error() string {
	return e.Message
}

var (
	ErrValidation    = TaskError{Message: "invalid task"}
	ErrInvalidIndex  = TaskError{Message: "invalid task index"}
	ErrCorruptRecord = TaskError{Message: "corrupt task record"}

	ErrDescriptionRequired = &ValidationError{Message: "description required"}
	ErrReservedCharacter   = &ValidationError{Message: `task fields must not contain "|" or line breaks`}
)

// ValidationError reports a missing or malformed task field.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is matches ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// CorruptRecordError reports a persisted line that could not be decoded.
type CorruptRecordError struct {
	Line   string
	Reason string
}

func (e *CorruptRecordError) Error() string {
	return fmt.Sprintf("corrupt task record %q: %s", e.Line, e.Reason)
}

// Is matches ErrCorruptRecord.
func (e *CorruptRecordError) Is(target error) bool {
	return target == ErrCorruptRecord
}

