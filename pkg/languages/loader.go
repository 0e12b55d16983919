/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: loader.go
Description: YAML grammar definitions. Lets users describe context-free and
context-sensitive grammars in a file instead of Go code.

Symbol notation inside rules, prefixes and suffixes:
  <Name>   non-terminal
  ε        epsilon
  'text'   terminal, quotes stripped
  text     terminal
*/

package languages

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kleascm/lang-explorer/pkg/grammar"
)

// GrammarFile is the on-disk layout of a grammar definition
type GrammarFile struct {
	Name        string           `yaml:"name"`
	Root        string           `yaml:"root"`
	Productions []ProductionSpec `yaml:"productions"`
}

// ProductionSpec is one production of a GrammarFile
type ProductionSpec struct {
	LHS    string     `yaml:"lhs"`
	Prefix []string   `yaml:"prefix,omitempty"`
	Suffix []string   `yaml:"suffix,omitempty"`
	Rules  []RuleSpec `yaml:"rules"`
}

// RuleSpec is one alternative of a ProductionSpec
type RuleSpec struct {
	Symbols []string `yaml:"symbols"`
	Weight  *uint64  `yaml:"weight,omitempty"`
}

// LoadGrammarFile reads and parses a YAML grammar definition
func LoadGrammarFile(path string) (*Grammar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read grammar file: %w", err)
	}
	g, err := ParseGrammar(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// ParseGrammar parses a YAML grammar definition
func ParseGrammar(data []byte) (*Grammar, error) {
	var file GrammarFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse grammar: %w", err)
	}
	return file.Build()
}

// Build validates the definition and constructs the grammar
func (f *GrammarFile) Build() (*Grammar, error) {
	if f.Root == "" {
		return nil, fmt.Errorf("grammar has no root")
	}
	if len(f.Productions) == 0 {
		return nil, fmt.Errorf("grammar has no productions")
	}

	name := f.Name
	if name == "" {
		name = "custom"
	}

	productions := make([]Production, 0, len(f.Productions))
	for i, spec := range f.Productions {
		p, err := spec.build()
		if err != nil {
			return nil, fmt.Errorf("production %d: %w", i, err)
		}
		productions = append(productions, p)
	}

	return grammar.New(name, StringValue(trimNonTerminal(f.Root)), productions...), nil
}

func (s ProductionSpec) build() (Production, error) {
	if s.LHS == "" {
		return Production{}, fmt.Errorf("missing lhs")
	}
	if len(s.Rules) == 0 {
		return Production{}, fmt.Errorf("%s has no rules", s.LHS)
	}

	lhs := ContextLHS(parseSymbols(s.Prefix), trimNonTerminal(s.LHS), parseSymbols(s.Suffix))

	rules := make([]Rule, 0, len(s.Rules))
	for j, r := range s.Rules {
		if len(r.Symbols) == 0 {
			return Production{}, fmt.Errorf("%s rule %d is empty, use ε for the empty string", s.LHS, j)
		}
		rules = append(rules, Rule{Symbols: parseSymbols(r.Symbols), Weight: r.Weight})
	}

	return grammar.NewProduction(lhs, rules...), nil
}

func parseSymbols(raw []string) []Symbol {
	if len(raw) == 0 {
		return nil
	}
	out := make([]Symbol, len(raw))
	for i, s := range raw {
		out[i] = ParseSymbol(s)
	}
	return out
}

// ParseSymbol converts one token of the notation into a symbol
func ParseSymbol(s string) Symbol {
	switch {
	case s == "ε":
		return Eps()
	case len(s) > 2 && strings.HasPrefix(s, "<") && strings.HasSuffix(s, ">"):
		return NT(s[1 : len(s)-1])
	case len(s) >= 2 && strings.HasPrefix(s, "'") && strings.HasSuffix(s, "'"):
		return T(s[1 : len(s)-1])
	default:
		return T(s)
	}
}

func trimNonTerminal(s string) string {
	return strings.TrimSuffix(strings.TrimPrefix(s, "<"), ">")
}

// Describe converts a grammar back into its file layout
func Describe(g *Grammar) *GrammarFile {
	file := &GrammarFile{Name: g.CanonicalName(), Root: g.Root().String()}
	for _, p := range g.Productions() {
		spec := ProductionSpec{
			LHS:    p.LHS.NonTerminal.String(),
			Prefix: formatSymbols(p.LHS.Prefix),
			Suffix: formatSymbols(p.LHS.Suffix),
		}
		for _, r := range p.Rules {
			spec.Rules = append(spec.Rules, RuleSpec{Symbols: formatSymbols(r.Symbols), Weight: r.Weight})
		}
		file.Productions = append(file.Productions, spec)
	}
	return file
}

// MarshalGrammar renders a grammar as YAML
func MarshalGrammar(g *Grammar) ([]byte, error) {
	data, err := yaml.Marshal(Describe(g))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal grammar: %w", err)
	}
	return data, nil
}

func formatSymbols(syms []Symbol) []string {
	if len(syms) == 0 {
		return nil
	}
	out := make([]string, len(syms))
	for i, s := range syms {
		switch s.Kind() {
		case grammar.KindNonTerminal:
			out[i] = "<" + s.String() + ">"
		case grammar.KindEpsilon:
			out[i] = "ε"
		default:
			out[i] = "'" + s.String() + "'"
		}
	}
	return out
}
