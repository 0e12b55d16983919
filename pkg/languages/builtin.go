/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: builtin.go
Description: Built-in example grammars: a context-free toy language, balanced a/b pairs and
the context-sensitive a^n b^n c^n language.
*/

package languages

import (
	"fmt"
	"sort"

	"github.com/kleascm/lang-explorer/pkg/grammar"
)

var builtins = map[string]func() *Grammar{
	"toy":      Toy,
	"balanced": Balanced,
	"anbncn":   AnBnCn,
}

// Builtin returns the named built-in grammar
func Builtin(name string) (*Grammar, error) {
	build, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("unknown grammar %q (available: %v)", name, BuiltinNames())
	}
	return build(), nil
}

// BuiltinNames lists the built-in grammars in alphabetical order
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Toy is S -> S S | 'a' 'a' S 'b' 'b' | ε
func Toy() *Grammar {
	return grammar.New("toy", StringValue("S"),
		grammar.NewProduction(LHS("S"),
			grammar.Rule(NT("S"), NT("S")),
			grammar.Rule(T("a"), T("a"), NT("S"), T("b"), T("b")),
			grammar.Rule(Eps()),
		),
	)
}

// Balanced is S -> 'a' S 'b' | ε
func Balanced() *Grammar {
	return grammar.New("balanced", StringValue("S"),
		grammar.NewProduction(LHS("S"),
			grammar.Rule(T("a"), NT("S"), T("b")),
			grammar.Rule(Eps()),
		),
	)
}

// AnBnCn generates a^n b^n c^n. B and C are swapped into order through the helper
// non-terminals Z and W before being rewritten into terminals left to right.
func AnBnCn() *Grammar {
	a, b, c := T("a"), T("b"), T("c")
	B, C, Z, W := NT("B"), NT("C"), NT("Z"), NT("W")
	none := []Symbol(nil)

	return grammar.New("anbncn", StringValue("S"),
		grammar.NewProduction(LHS("S"),
			grammar.Rule(a, B, C),
			grammar.Rule(a, NT("S"), B, C),
		),
		// C B -> C Z -> W Z -> W C -> B C
		grammar.NewProduction(ContextLHS([]Symbol{C}, "B", none), grammar.Rule(Z)),
		grammar.NewProduction(ContextLHS(none, "C", []Symbol{Z}), grammar.Rule(W)),
		grammar.NewProduction(ContextLHS([]Symbol{W}, "Z", none), grammar.Rule(C)),
		grammar.NewProduction(ContextLHS(none, "W", []Symbol{C}), grammar.Rule(B)),
		grammar.NewProduction(ContextLHS([]Symbol{a}, "B", none), grammar.Rule(b)),
		grammar.NewProduction(ContextLHS([]Symbol{b}, "B", none), grammar.Rule(b)),
		grammar.NewProduction(ContextLHS([]Symbol{b}, "C", none), grammar.Rule(c)),
		grammar.NewProduction(ContextLHS([]Symbol{c}, "C", none), grammar.Rule(c)),
	)
}
