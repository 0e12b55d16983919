/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: novelty.go
Description: NoveltyPolicy, an in-process Policy that steers derivations away from rules
that have already been used often. It is the default policy of the learned expander when no
external model is attached, and is safe to share between workers.
*/

package expanders

import (
	"math"
	"sync"

	"github.com/kleascm/lang-explorer/pkg/grammar"
)

// NoveltyPolicy scores each rule by -Strength * ln(1 + uses)
type NoveltyPolicy[T grammar.Terminal, I grammar.NonTerminal] struct {
	Strength float64

	mu   sync.RWMutex
	uses map[string][]uint64
	seen uint64
}

// NewNoveltyPolicy creates a policy with the given penalty strength
func NewNoveltyPolicy[T grammar.Terminal, I grammar.NonTerminal](strength float64) *NoveltyPolicy[T, I] {
	return &NoveltyPolicy[T, I]{
		Strength: strength,
		uses:     make(map[string][]uint64),
	}
}

func (p *NoveltyPolicy[T, I]) ScoreRules(_ *grammar.Grammar[T, I], _ *grammar.ProgramInstance[T, I], production *grammar.Production[T, I]) ([]float64, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	counts := p.uses[production.LHS.Key()]
	scores := make([]float64, production.Len())
	for i := range scores {
		if i < len(counts) {
			scores[i] = -p.Strength * math.Log1p(float64(counts[i]))
		}
	}
	return scores, nil
}

// ScoreSlots has no preference between slots
func (p *NoveltyPolicy[T, I]) ScoreSlots(_ *grammar.Grammar[T, I], _ *grammar.ProgramInstance[T, I], candidates []grammar.SlotCandidate[T, I]) ([]float64, error) {
	total := 0
	for _, c := range candidates {
		total += len(c.Indices)
	}
	return make([]float64, total), nil
}

// Observe counts every rule decision of the finished program
func (p *NoveltyPolicy[T, I]) Observe(_ *grammar.ProgramInstance[T, I], trajectory []Decision) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, d := range trajectory {
		if d.Kind != DecisionRule {
			continue
		}
		counts := p.uses[d.LHS]
		if len(counts) < d.Options {
			grown := make([]uint64, d.Options)
			copy(grown, counts)
			counts = grown
		}
		counts[d.Choice]++
		p.uses[d.LHS] = counts
	}
	p.seen++
	return nil
}

// Uses returns how often each rule of the left-hand side was chosen
func (p *NoveltyPolicy[T, I]) Uses(lhs grammar.LeftHandSide[T, I]) []uint64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]uint64(nil), p.uses[lhs.Key()]...)
}

// Observed returns the number of completed programs reported to the policy
func (p *NoveltyPolicy[T, I]) Observed() uint64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.seen
}
