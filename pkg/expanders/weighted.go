/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: weighted.go
Description: Weighted random expander. Rules are drawn in proportion to their weights; rules
without an explicit positive weight take the average of the explicit weights of the same
production, or 1 when the production has none.
*/

package expanders

import (
	"math/rand/v2"

	"github.com/kleascm/lang-explorer/pkg/grammar"
)

// WeightedExpander picks rules in proportion to their effective weights
type WeightedExpander[T grammar.Terminal, I grammar.NonTerminal] struct {
	rng *rand.Rand
}

// NewWeightedExpander creates a weighted expander with its own seeded generator
func NewWeightedExpander[T grammar.Terminal, I grammar.NonTerminal](seed uint64) *WeightedExpander[T, I] {
	return &WeightedExpander[T, I]{rng: newRand(seed)}
}

// EffectiveWeights returns the weight used for every rule of production after the
// unweighted fallback has been applied. The fallback is computed per production.
func EffectiveWeights[T grammar.Terminal, I grammar.NonTerminal](production *grammar.Production[T, I]) []float64 {
	var (
		sum      float64
		explicit int
	)
	for _, r := range production.Rules {
		if w, ok := r.ExplicitWeight(); ok {
			sum += float64(w)
			explicit++
		}
	}

	fallback := 1.0
	if explicit > 0 {
		fallback = sum / float64(explicit)
	}

	weights := make([]float64, len(production.Rules))
	for i, r := range production.Rules {
		if w, ok := r.ExplicitWeight(); ok {
			weights[i] = float64(w)
		} else {
			weights[i] = fallback
		}
	}
	return weights
}

// ExpandRule normalizes the effective weights, draws a sample in [0,1) and returns the first
// rule whose cumulative probability reaches it. Rounding that leaves the sample above every
// cumulative sum selects the last rule.
func (e *WeightedExpander[T, I]) ExpandRule(_ *grammar.Grammar[T, I], _ *grammar.ProgramInstance[T, I], production *grammar.Production[T, I]) *grammar.ProductionRule[T, I] {
	if production.Len() == 0 {
		panic("production " + production.LHS.String() + " has no rules")
	}
	return production.Rule(sampleCumulative(EffectiveWeights(production), e.rng.Float64()))
}

func (e *WeightedExpander[T, I]) ChooseLHSAndSlot(_ *grammar.Grammar[T, I], _ *grammar.ProgramInstance[T, I], candidates []grammar.SlotCandidate[T, I]) (*grammar.LeftHandSide[T, I], int) {
	return uniformSlot(e.rng, candidates)
}

func (e *WeightedExpander[T, I]) Cleanup() {}

// sampleCumulative walks the normalized cumulative distribution of weights
func sampleCumulative(weights []float64, sample float64) int {
	var total float64
	for _, w := range weights {
		total += w
	}

	var cumulative float64
	for i, w := range weights {
		cumulative += w / total
		if cumulative >= sample {
			return i
		}
	}
	return len(weights) - 1
}
