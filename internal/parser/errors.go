package parser

import (
	"fmt"

	"github.com/hiroki-koketsu/quokka/internal/model"
)

// ErrorKind classifies a parse failure.
type ErrorKind int

const (
	KindValidation ErrorKind = iota
	KindIndex
)

// ParseError reports why a command line was rejected.
type ParseError struct {
	Command CommandKind
	Kind    ErrorKind
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Command, e.Message)
}

// Unwrap maps the failure onto the model sentinels so callers can use errors.Is.
func (e *ParseError) Unwrap() error {
	if e.Kind == KindIndex {
		return model.ErrInvalidIndex
	}
	return model.ErrValidation
}

func validationError(cmd CommandKind, msg string) *ParseError {
	return &ParseError{Command: cmd, Kind: KindValidation, Message: msg}
}

func indexError(cmd CommandKind, msg string) *ParseError {
	return &ParseError{Command: cmd, Kind: KindIndex, Message: msg}
}
