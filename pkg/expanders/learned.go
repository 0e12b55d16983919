/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: learned.go
Description: Learned expander. Scoring is delegated to an external Policy through a narrow
score/observe contract; the expander samples from the softmax of the returned scores and
reports every finished derivation back to the policy.
*/

package expanders

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/sirupsen/logrus"

	"github.com/kleascm/lang-explorer/pkg/grammar"
)

// DecisionKind tells rule choices and slot choices apart in a trajectory
type DecisionKind uint8

const (
	DecisionRule DecisionKind = iota
	DecisionSlot
)

// Decision records one choice made while deriving a program
type Decision struct {
	Kind DecisionKind
	// LHS is the production key the choice was made for
	LHS string
	// Choice is the rule index, or the flattened candidate slot index
	Choice  int
	Options int
}

// Policy scores the options offered to a LearnedExpander.
// ScoreRules returns one score per rule of production. ScoreSlots returns one score per
// (candidate, index) pair, flattened in candidate order. Observe receives every completed
// program together with the decisions that built it; the trajectory slice is reused
// afterwards and must not be retained.
type Policy[T grammar.Terminal, I grammar.NonTerminal] interface {
	ScoreRules(g *grammar.Grammar[T, I], context *grammar.ProgramInstance[T, I], production *grammar.Production[T, I]) ([]float64, error)
	ScoreSlots(g *grammar.Grammar[T, I], context *grammar.ProgramInstance[T, I], candidates []grammar.SlotCandidate[T, I]) ([]float64, error)
	Observe(program *grammar.ProgramInstance[T, I], trajectory []Decision) error
}

// LearnedExpander samples rules and slots from policy scores
type LearnedExpander[T grammar.Terminal, I grammar.NonTerminal] struct {
	policy     Policy[T, I]
	rng        *rand.Rand
	logger     *logrus.Logger
	root       *grammar.ProgramInstance[T, I]
	trajectory []Decision
}

// NewLearnedExpander creates a learned expander around policy
func NewLearnedExpander[T grammar.Terminal, I grammar.NonTerminal](seed uint64, policy Policy[T, I], logger *logrus.Logger) *LearnedExpander[T, I] {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &LearnedExpander[T, I]{
		policy: policy,
		rng:    newRand(seed),
		logger: logger,
	}
}

// ExpandRule samples a rule from the softmax of the policy's scores. A policy error falls
// back to a uniform choice; a score vector of the wrong length panics.
func (e *LearnedExpander[T, I]) ExpandRule(g *grammar.Grammar[T, I], context *grammar.ProgramInstance[T, I], production *grammar.Production[T, I]) *grammar.ProductionRule[T, I] {
	if production.Len() == 0 {
		panic("production " + production.LHS.String() + " has no rules")
	}
	if !context.HasParent() && context != e.root {
		e.begin(context)
	}

	var choice int
	scores, err := e.policy.ScoreRules(g, context, production)
	if err != nil {
		e.logger.Warnf("Policy failed to score rules for %s, choosing uniformly: %v", production.LHS, err)
		choice = e.rng.IntN(production.Len())
	} else {
		mustMatchLength(scores, production.Len(), "rule")
		choice = sampleCumulative(softmax(scores), e.rng.Float64())
	}

	e.trajectory = append(e.trajectory, Decision{
		Kind:    DecisionRule,
		LHS:     production.LHS.Key(),
		Choice:  choice,
		Options: production.Len(),
	})
	return production.Rule(choice)
}

// ChooseLHSAndSlot samples one flattened (candidate, index) pair from the policy's scores
func (e *LearnedExpander[T, I]) ChooseLHSAndSlot(g *grammar.Grammar[T, I], context *grammar.ProgramInstance[T, I], candidates []grammar.SlotCandidate[T, I]) (*grammar.LeftHandSide[T, I], int) {
	if context != e.root {
		e.begin(context)
	}

	total := 0
	for _, c := range candidates {
		total += len(c.Indices)
	}

	scores, err := e.policy.ScoreSlots(g, context, candidates)
	if err != nil {
		e.logger.Warnf("Policy failed to score slots, choosing uniformly: %v", err)
		return uniformSlot(e.rng, candidates)
	}
	mustMatchLength(scores, total, "slot")

	flat := sampleCumulative(softmax(scores), e.rng.Float64())
	e.trajectory = append(e.trajectory, Decision{Kind: DecisionSlot, Choice: flat, Options: total})

	for _, c := range candidates {
		if flat < len(c.Indices) {
			e.trajectory[len(e.trajectory)-1].LHS = c.LHS.Key()
			return c.LHS, c.Indices[flat]
		}
		flat -= len(c.Indices)
	}
	panic("unreachable slot index")
}

// begin starts a new trajectory. Derivations that failed never reach Cleanup, so a new root
// discards whatever was recorded for them.
func (e *LearnedExpander[T, I]) begin(root *grammar.ProgramInstance[T, I]) {
	e.root = root
	e.trajectory = e.trajectory[:0]
}

// Cleanup hands the finished program and its trajectory to the policy and resets state
func (e *LearnedExpander[T, I]) Cleanup() {
	if e.root != nil {
		if err := e.policy.Observe(e.root, e.trajectory); err != nil {
			e.logger.Warnf("Policy failed to observe program: %v", err)
		}
	}
	e.root = nil
	e.trajectory = e.trajectory[:0]
}

func mustMatchLength(scores []float64, want int, what string) {
	if len(scores) != want {
		panic(fmt.Sprintf("policy returned %d %s scores, expected %d", len(scores), what, want))
	}
}

// softmax converts scores into probabilities, shifted by the maximum for stability
func softmax(scores []float64) []float64 {
	maxScore := math.Inf(-1)
	for _, s := range scores {
		maxScore = max(maxScore, s)
	}

	probs := make([]float64, len(scores))
	var sum float64
	for i, s := range scores {
		probs[i] = math.Exp(s - maxScore)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}
