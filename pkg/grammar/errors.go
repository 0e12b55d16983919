/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: errors.go
Description: Error taxonomy for grammar expansion. Structural errors are typed so callers
can tell a malformed grammar apart from a context-sensitive dead end.
*/

package grammar

import (
	"errors"
	"fmt"
)

var (
	// ErrNoRootProduction is returned when the root has no context-free production
	ErrNoRootProduction = errors.New("no root non-terminal/production found")
	// ErrUnknownNonTerminal is returned when a rule references a non-terminal with no production
	ErrUnknownNonTerminal = errors.New("non-terminal not found in productions")
	// ErrNoValidExpansion is returned when no left-hand side matches the frontier
	ErrNoValidExpansion = errors.New("no valid expansion for frontier")
	// ErrInvalidUTF8 is returned when a complete program does not serialize to UTF-8 text
	ErrInvalidUTF8 = errors.New("program output is not valid utf-8")
)

// GenerationError carries the failing symbol or frontier alongside the sentinel kind
type GenerationError struct {
	Kind   error
	Detail string
}

func (e *GenerationError) Error() string {
	if e.Detail == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *GenerationError) Unwrap() error { return e.Kind }

func newGenerationError(kind error, format string, args ...interface{}) error {
	return &GenerationError{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// IsStructural reports whether err means the grammar itself is malformed
func IsStructural(err error) bool {
	return errors.Is(err, ErrNoRootProduction) || errors.Is(err, ErrUnknownNonTerminal)
}
