/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: helpers_test.go
Description: Shared alphabet and scripted expanders for the grammar package tests.
*/

package grammar_test

import (
	"github.com/kleascm/lang-explorer/pkg/grammar"
)

type tok string

func (t tok) Serialize() []byte { return []byte(t) }
func (t tok) String() string    { return string(t) }

type (
	sym     = grammar.Symbol[tok, tok]
	lhs     = grammar.LeftHandSide[tok, tok]
	rule    = grammar.ProductionRule[tok, tok]
	prod    = grammar.Production[tok, tok]
	program = grammar.ProgramInstance[tok, tok]
)

func term(s string) sym { return grammar.NewTerminal[tok, tok](tok(s)) }
func nt(s string) sym   { return grammar.NewNonTerminal[tok, tok](tok(s)) }
func eps() sym          { return grammar.Epsilon[tok, tok]() }

func syms(names ...string) []sym {
	out := make([]sym, len(names))
	for i, n := range names {
		out[i] = nt(n)
	}
	return out
}

// scripted replays a fixed list of rule indices, then falls back to the first rule.
// Slots are picked by chooseLHS when set, otherwise the first candidate wins.
type scripted struct {
	rules     []int
	chooseLHS func(candidates []grammar.SlotCandidate[tok, tok]) (*lhs, int)
	cleanups  int
}

func (s *scripted) ExpandRule(_ *grammar.Grammar[tok, tok], _ *program, p *prod) *rule {
	idx := 0
	if len(s.rules) > 0 {
		idx, s.rules = s.rules[0], s.rules[1:]
	}
	return p.Rule(idx)
}

func (s *scripted) ChooseLHSAndSlot(_ *grammar.Grammar[tok, tok], _ *program, candidates []grammar.SlotCandidate[tok, tok]) (*lhs, int) {
	if s.chooseLHS != nil {
		return s.chooseLHS(candidates)
	}
	return candidates[0].LHS, candidates[0].Indices[0]
}

func (s *scripted) Cleanup() { s.cleanups++ }

// balanced is S -> 'a' S 'b' | ε
func balanced() *grammar.Grammar[tok, tok] {
	return grammar.New("balanced", tok("S"),
		grammar.NewProduction(grammar.ContextFree[tok, tok](tok("S")),
			grammar.Rule(term("a"), nt("S"), term("b")),
			grammar.Rule(eps()),
		),
	)
}
