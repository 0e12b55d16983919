/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: alphabet.go
Description: String alphabet used by the built-in and file-defined grammars. Terminals
serialize to their UTF-8 text; non-terminals are identified by name.
*/

package languages

import "github.com/kleascm/lang-explorer/pkg/grammar"

// StringValue is both the terminal and the non-terminal payload of string grammars
type StringValue string

// Serialize returns the UTF-8 bytes of the value
func (s StringValue) Serialize() []byte { return []byte(s) }

func (s StringValue) String() string { return string(s) }

type (
	Symbol       = grammar.Symbol[StringValue, StringValue]
	LeftHandSide = grammar.LeftHandSide[StringValue, StringValue]
	Rule         = grammar.ProductionRule[StringValue, StringValue]
	Production   = grammar.Production[StringValue, StringValue]
	Grammar      = grammar.Grammar[StringValue, StringValue]
	Program      = grammar.ProgramInstance[StringValue, StringValue]
	Expander     = grammar.Expander[StringValue, StringValue]
)

// T builds a terminal
func T(s string) Symbol { return grammar.NewTerminal[StringValue, StringValue](StringValue(s)) }

// NT builds a non-terminal
func NT(s string) Symbol { return grammar.NewNonTerminal[StringValue, StringValue](StringValue(s)) }

// Eps builds epsilon
func Eps() Symbol { return grammar.Epsilon[StringValue, StringValue]() }

// LHS builds a context-free left-hand side
func LHS(name string) LeftHandSide {
	return grammar.ContextFree[StringValue, StringValue](StringValue(name))
}

// ContextLHS builds a left-hand side with prefix and suffix context
func ContextLHS(prefix []Symbol, name string, suffix []Symbol) LeftHandSide {
	return grammar.WithContext(prefix, StringValue(name), suffix)
}
