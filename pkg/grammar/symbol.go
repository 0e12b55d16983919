/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: symbol.go
Description: Grammar alphabet for the Lang Explorer engine. A Symbol is a terminal, a
non-terminal or epsilon, generic over the terminal and non-terminal payload types so that
grammars are not tied to a string alphabet.
*/

package grammar

// Terminal is the payload type of terminal symbols. Terminals must be comparable so that
// symbols can be compared with == and used as map keys, and must serialize to the bytes
// that end up in generated program output.
type Terminal interface {
	comparable
	Serialize() []byte
	String() string
}

// NonTerminal is the payload type of non-terminal symbols. It is an opaque identifier.
type NonTerminal interface {
	comparable
	String() string
}

// SymbolKind tags the variant held by a Symbol
type SymbolKind uint8

const (
	KindTerminal SymbolKind = iota
	KindNonTerminal
	KindEpsilon
)

// String returns the name of the symbol kind
func (k SymbolKind) String() string {
	switch k {
	case KindTerminal:
		return "terminal"
	case KindNonTerminal:
		return "non-terminal"
	case KindEpsilon:
		return "epsilon"
	default:
		return "unknown"
	}
}

// Symbol is an immutable element of a grammar alphabet.
// Only the payload matching Kind is meaningful; the other is the zero value, which keeps
// equality by tag+payload correct when comparing with ==.
type Symbol[T Terminal, I NonTerminal] struct {
	kind        SymbolKind
	terminal    T
	nonTerminal I
}

// NewTerminal wraps a terminal payload
func NewTerminal[T Terminal, I NonTerminal](t T) Symbol[T, I] {
	return Symbol[T, I]{kind: KindTerminal, terminal: t}
}

// NewNonTerminal wraps a non-terminal identifier
func NewNonTerminal[T Terminal, I NonTerminal](nt I) Symbol[T, I] {
	return Symbol[T, I]{kind: KindNonTerminal, nonTerminal: nt}
}

// Epsilon returns the empty symbol
func Epsilon[T Terminal, I NonTerminal]() Symbol[T, I] {
	return Symbol[T, I]{kind: KindEpsilon}
}

// Kind returns which variant the symbol holds
func (s Symbol[T, I]) Kind() SymbolKind { return s.kind }

func (s Symbol[T, I]) IsTerminal() bool    { return s.kind == KindTerminal }
func (s Symbol[T, I]) IsNonTerminal() bool { return s.kind == KindNonTerminal }
func (s Symbol[T, I]) IsEpsilon() bool     { return s.kind == KindEpsilon }

// Terminal returns the terminal payload and whether the symbol is a terminal
func (s Symbol[T, I]) Terminal() (T, bool) {
	return s.terminal, s.kind == KindTerminal
}

// NonTerminal returns the non-terminal payload and whether the symbol is a non-terminal
func (s Symbol[T, I]) NonTerminal() (I, bool) {
	return s.nonTerminal, s.kind == KindNonTerminal
}

// Bytes returns the output bytes of a symbol. Terminals serialize themselves, epsilon is
// empty and non-terminals have no output of their own.
func (s Symbol[T, I]) Bytes() []byte {
	if s.kind == KindTerminal {
		return s.terminal.Serialize()
	}
	return nil
}

// labelBytes is the content hashed as a node's own label during feature extraction.
func (s Symbol[T, I]) labelBytes() []byte {
	switch s.kind {
	case KindTerminal:
		return s.terminal.Serialize()
	case KindNonTerminal:
		return []byte(s.nonTerminal.String())
	default:
		return []byte("epsilon")
	}
}

// String returns the debug form of the symbol: the bare payload, or ε.
func (s Symbol[T, I]) String() string {
	switch s.kind {
	case KindTerminal:
		return s.terminal.String()
	case KindNonTerminal:
		return s.nonTerminal.String()
	default:
		return "ε"
	}
}

// BNF returns the symbol as it appears in BNF output
func (s Symbol[T, I]) BNF() string {
	switch s.kind {
	case KindTerminal:
		return "'" + s.terminal.String() + "'"
	case KindNonTerminal:
		return "<" + s.nonTerminal.String() + ">"
	default:
		return "'ε'"
	}
}
