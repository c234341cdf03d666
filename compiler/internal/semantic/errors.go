package semantic

import (
	"errors"
	"fmt"

	"github.com/xiaobogaga/minijava/compiler/internal/symtab"
)

type ErrorKind int

const (
	DuplicateClass ErrorKind = iota
	UnknownMother
	DuplicateField
	DuplicateMethod
	DuplicateVariable
	InvalidOverride
	UnknownType
	CyclicInheritance
)

var (
	ErrInvalidOverride = errors.New("invalid override")
	ErrUnknownType     = errors.New("unknown type")
)

func (kind ErrorKind) String() string {
	switch kind {
	case DuplicateClass:
		return "duplicate class"
	case UnknownMother:
		return "unknown mother class"
	case DuplicateField:
		return "duplicate field"
	case DuplicateMethod:
		return "duplicate method"
	case DuplicateVariable:
		return "duplicate variable"
	case InvalidOverride:
		return "invalid override"
	case UnknownType:
		return "unknown type"
	case CyclicInheritance:
		return "cyclic inheritance"
	}
	return "semantic error"
}

// Error is the first semantic error found in a program. Only one is ever
// reported.
type Error struct {
	Kind    ErrorKind
	Message string
	Line    int // 0 when the tree carries no position.
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Unwrap maps the kind to its sentinel, so errors.Is(err,
// symtab.ErrDuplicateClass) holds for a DuplicateClass error.
func (e *Error) Unwrap() error {
	switch e.Kind {
	case DuplicateClass:
		return symtab.ErrDuplicateClass
	case UnknownMother:
		return symtab.ErrUnknownMother
	case DuplicateField:
		return symtab.ErrDuplicateField
	case DuplicateMethod:
		return symtab.ErrDuplicateMethod
	case DuplicateVariable:
		return symtab.ErrDuplicateVariable
	case InvalidOverride:
		return ErrInvalidOverride
	case UnknownType:
		return ErrUnknownType
	case CyclicInheritance:
		return symtab.ErrCyclicInheritance
	}
	return nil
}

func makeSemanticError(kind ErrorKind, line int, format string, msg ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, msg...), Line: line}
}
