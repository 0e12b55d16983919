/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: expander.go
Description: Expander factory for the Lang Explorer engine. Maps the configured expander kind
onto a concrete policy and owns the seeding convention shared by every policy.
*/

package expanders

import (
	"fmt"
	"math/rand/v2"

	"github.com/sirupsen/logrus"

	"github.com/kleascm/lang-explorer/pkg/grammar"
)

// Kind names an expander policy
type Kind string

const (
	KindMonteCarlo Kind = "montecarlo"
	KindWeighted   Kind = "weighted"
	KindLearned    Kind = "learned"
)

// ParseKind converts a configuration string into a Kind
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindMonteCarlo, KindWeighted, KindLearned:
		return Kind(s), nil
	case "", "uniform":
		return KindMonteCarlo, nil
	default:
		return "", fmt.Errorf("unknown expander kind: %s", s)
	}
}

// New creates an expander of the given kind. policy is required for KindLearned and ignored
// otherwise. A nil logger falls back to the logrus standard logger.
func New[T grammar.Terminal, I grammar.NonTerminal](kind Kind, seed uint64, policy Policy[T, I], logger *logrus.Logger) (grammar.Expander[T, I], error) {
	switch kind {
	case KindMonteCarlo:
		return NewUniformExpander[T, I](seed), nil
	case KindWeighted:
		return NewWeightedExpander[T, I](seed), nil
	case KindLearned:
		if policy == nil {
			return nil, fmt.Errorf("expander %s requires a policy", kind)
		}
		return NewLearnedExpander(seed, policy, logger), nil
	default:
		return nil, fmt.Errorf("unknown expander kind: %s", kind)
	}
}

// newRand returns a PCG generator fully determined by seed
func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// uniformSlot picks a left-hand side uniformly, then one of its matched indices uniformly
func uniformSlot[T grammar.Terminal, I grammar.NonTerminal](rng *rand.Rand, candidates []grammar.SlotCandidate[T, I]) (*grammar.LeftHandSide[T, I], int) {
	if len(candidates) == 0 {
		panic("expander asked to choose from no candidates")
	}
	c := candidates[rng.IntN(len(candidates))]
	return c.LHS, c.Indices[rng.IntN(len(c.Indices))]
}
