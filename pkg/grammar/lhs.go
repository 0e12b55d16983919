/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: lhs.go
Description: Left-hand sides of productions. A left-hand side is a non-terminal with
optional prefix and suffix context windows, and knows how to locate itself inside a
frontier of symbols during context-sensitive expansion.
*/

package grammar

import (
	"cmp"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// LeftHandSide is a non-terminal plus optional ordered prefix/suffix context.
// Empty prefix and suffix is the context-free case.
type LeftHandSide[T Terminal, I NonTerminal] struct {
	Prefix      []Symbol[T, I]
	NonTerminal I
	Suffix      []Symbol[T, I]
}

// ContextFree builds a left-hand side with no context
func ContextFree[T Terminal, I NonTerminal](nt I) LeftHandSide[T, I] {
	return LeftHandSide[T, I]{NonTerminal: nt}
}

// WithPrefix builds a left-hand side that requires prefix immediately before nt
func WithPrefix[T Terminal, I NonTerminal](prefix []Symbol[T, I], nt I) LeftHandSide[T, I] {
	return LeftHandSide[T, I]{Prefix: prefix, NonTerminal: nt}
}

// WithSuffix builds a left-hand side that requires suffix immediately after nt
func WithSuffix[T Terminal, I NonTerminal](nt I, suffix []Symbol[T, I]) LeftHandSide[T, I] {
	return LeftHandSide[T, I]{NonTerminal: nt, Suffix: suffix}
}

// WithContext builds a left-hand side with both prefix and suffix context
func WithContext[T Terminal, I NonTerminal](prefix []Symbol[T, I], nt I, suffix []Symbol[T, I]) LeftHandSide[T, I] {
	return LeftHandSide[T, I]{Prefix: prefix, NonTerminal: nt, Suffix: suffix}
}

// IsContextSensitive reports whether any context is required
func (l LeftHandSide[T, I]) IsContextSensitive() bool {
	return len(l.Prefix) > 0 || len(l.Suffix) > 0
}

// Target returns the non-terminal as a symbol
func (l LeftHandSide[T, I]) Target() Symbol[T, I] {
	return NewNonTerminal[T, I](l.NonTerminal)
}

// Symbols returns prefix, non-terminal and suffix as one sequence
func (l LeftHandSide[T, I]) Symbols() []Symbol[T, I] {
	out := make([]Symbol[T, I], 0, len(l.Prefix)+1+len(l.Suffix))
	out = append(out, l.Prefix...)
	out = append(out, l.Target())
	return append(out, l.Suffix...)
}

// Equal compares prefix, non-terminal and suffix
func (l LeftHandSide[T, I]) Equal(other LeftHandSide[T, I]) bool {
	if l.NonTerminal != other.NonTerminal || len(l.Prefix) != len(other.Prefix) || len(l.Suffix) != len(other.Suffix) {
		return false
	}
	for i := range l.Prefix {
		if l.Prefix[i] != other.Prefix[i] {
			return false
		}
	}
	for i := range l.Suffix {
		if l.Suffix[i] != other.Suffix[i] {
			return false
		}
	}
	return true
}

// String returns the debug form, e.g. [a]B[c] for prefix a and suffix c.
func (l LeftHandSide[T, I]) String() string {
	var b strings.Builder
	if len(l.Prefix) > 0 {
		writeSymbolList(&b, l.Prefix)
	}
	b.WriteString(l.NonTerminal.String())
	if len(l.Suffix) > 0 {
		writeSymbolList(&b, l.Suffix)
	}
	return b.String()
}

// Key is the production table key. Symbol kinds are tagged so that a terminal and a
// non-terminal with the same text never collide.
func (l LeftHandSide[T, I]) Key() string {
	var b strings.Builder
	for _, s := range l.Prefix {
		writeKeySymbol(&b, s)
	}
	b.WriteString("|")
	b.WriteString(l.NonTerminal.String())
	b.WriteString("|")
	for _, s := range l.Suffix {
		writeKeySymbol(&b, s)
	}
	return b.String()
}

// Hash is a stable 64-bit hash of the key
func (l LeftHandSide[T, I]) Hash() uint64 {
	return xxhash.Sum64String(l.Key())
}

// Compare orders left-hand sides by hash. The order is stable but carries no meaning.
func (l LeftHandSide[T, I]) Compare(other LeftHandSide[T, I]) int {
	return cmp.Compare(l.Hash(), other.Hash())
}

func writeSymbolList[T Terminal, I NonTerminal](b *strings.Builder, syms []Symbol[T, I]) {
	b.WriteString("[")
	for i, s := range syms {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(s.String())
	}
	b.WriteString("]")
}

func writeKeySymbol[T Terminal, I NonTerminal](b *strings.Builder, s Symbol[T, I]) {
	switch s.Kind() {
	case KindTerminal:
		b.WriteString("t:")
	case KindNonTerminal:
		b.WriteString("n:")
	default:
		b.WriteString("e:")
	}
	b.WriteString(s.String())
	b.WriteString(";")
}

type matchState int

const (
	stateStart matchState = iota
	stateInPrefix
	stateMiddle
	stateInSuffix
)

// CheckForContext scans seq left to right and returns the index of the first occurrence of
// the non-terminal that is immediately preceded by the whole prefix and immediately followed
// by the whole suffix.
//
// The scan is naive: on a mismatch it resets to the start state and re-examines the current
// symbol, but it never retries from the middle of a failed prefix attempt.
func (l LeftHandSide[T, I]) CheckForContext(seq []Symbol[T, I]) (int, bool) {
	target := l.Target()
	state := stateStart
	count := 0
	middle := -1

	for i := 0; i < len(seq); i++ {
		sym := seq[i]

		switch state {
		case stateStart:
			if len(l.Prefix) > 0 {
				if sym == l.Prefix[0] {
					state, count = stateInPrefix, 1
				}
				continue
			}
			if sym == target {
				if len(l.Suffix) == 0 {
					return i, true
				}
				state, middle = stateMiddle, i
			}

		case stateInPrefix:
			if count < len(l.Prefix) {
				if sym == l.Prefix[count] {
					count++
					continue
				}
				state = stateStart
				i--
				continue
			}
			if sym == target {
				if len(l.Suffix) == 0 {
					return i, true
				}
				state, middle = stateMiddle, i
				continue
			}
			state = stateStart
			i--

		case stateMiddle:
			if sym == l.Suffix[0] {
				if len(l.Suffix) == 1 {
					return middle, true
				}
				state, count = stateInSuffix, 1
				continue
			}
			state = stateStart
			i--

		case stateInSuffix:
			if sym == l.Suffix[count] {
				count++
				if count == len(l.Suffix) {
					return middle, true
				}
				continue
			}
			state = stateStart
			i--
		}
	}

	return -1, false
}

// AllContextInstances returns the index of every match of this left-hand side in seq.
// Each rescan starts one position after the start of the previous match window, so
// matches whose context overlaps are still found.
func (l LeftHandSide[T, I]) AllContextInstances(seq []Symbol[T, I]) []int {
	var instances []int
	start := 0
	for start < len(seq) {
		idx, ok := l.CheckForContext(seq[start:])
		if !ok {
			break
		}
		abs := start + idx
		instances = append(instances, abs)
		start = abs - len(l.Prefix) + 1
	}
	return instances
}
