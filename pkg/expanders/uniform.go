/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: uniform.go
Description: Monte Carlo expander. Every rule and every matched slot is equally likely.
*/

package expanders

import (
	"math/rand/v2"

	"github.com/kleascm/lang-explorer/pkg/grammar"
)

// UniformExpander picks rules uniformly at random
type UniformExpander[T grammar.Terminal, I grammar.NonTerminal] struct {
	rng *rand.Rand
}

// NewUniformExpander creates a Monte Carlo expander with its own seeded generator
func NewUniformExpander[T grammar.Terminal, I grammar.NonTerminal](seed uint64) *UniformExpander[T, I] {
	return &UniformExpander[T, I]{rng: newRand(seed)}
}

// ExpandRule picks one rule uniformly. Panics on a production without rules.
func (e *UniformExpander[T, I]) ExpandRule(_ *grammar.Grammar[T, I], _ *grammar.ProgramInstance[T, I], production *grammar.Production[T, I]) *grammar.ProductionRule[T, I] {
	if production.Len() == 0 {
		panic("production " + production.LHS.String() + " has no rules")
	}
	return production.Rule(e.rng.IntN(production.Len()))
}

func (e *UniformExpander[T, I]) ChooseLHSAndSlot(_ *grammar.Grammar[T, I], _ *grammar.ProgramInstance[T, I], candidates []grammar.SlotCandidate[T, I]) (*grammar.LeftHandSide[T, I], int) {
	return uniformSlot(e.rng, candidates)
}

func (e *UniformExpander[T, I]) Cleanup() {}
