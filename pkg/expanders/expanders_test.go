/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: expanders_test.go
Description: Tests for the uniform, weighted and learned expanders and the factory.
*/

package expanders_test

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kleascm/lang-explorer/pkg/expanders"
	"github.com/kleascm/lang-explorer/pkg/grammar"
	"github.com/kleascm/lang-explorer/pkg/languages"
)

type sv = languages.StringValue

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func weights(ws ...uint64) *languages.Production {
	rules := make([]languages.Rule, len(ws))
	for i, w := range ws {
		rules[i] = grammar.WeightedRule(w, languages.T(string(rune('a'+i))))
	}
	p := grammar.NewProduction(languages.LHS("S"), rules...)
	return &p
}

func TestEffectiveWeights(t *testing.T) {
	assert.Equal(t, []float64{10, 10, 10}, expanders.EffectiveWeights(weights(0, 10, 0)))
	assert.Equal(t, []float64{2, 3, 4}, expanders.EffectiveWeights(weights(2, 0, 4)))
	assert.Equal(t, []float64{1, 1}, expanders.EffectiveWeights(weights(0, 0)))

	unweighted := grammar.NewProduction(languages.LHS("S"), grammar.Rule(languages.T("a")), grammar.Rule(languages.Eps()))
	assert.Equal(t, []float64{1, 1}, expanders.EffectiveWeights(&unweighted))
}

// TestWeightedFallbackSamplesEvenly draws from weights [0, 10, 0], which behave as [10, 10, 10]
func TestWeightedFallbackSamplesEvenly(t *testing.T) {
	p := weights(0, 10, 0)
	exp := expanders.NewWeightedExpander[sv, sv](42)

	const trials = 30000
	counts := make(map[*languages.Rule]int)
	for i := 0; i < trials; i++ {
		counts[exp.ExpandRule(nil, nil, p)]++
	}

	require.Len(t, counts, 3)
	for i := range p.Rules {
		assert.InDelta(t, trials/3, counts[&p.Rules[i]], 600, "rule %d", i)
	}
}

func TestWeightedFollowsWeights(t *testing.T) {
	p := weights(1, 9)
	exp := expanders.NewWeightedExpander[sv, sv](7)

	const trials = 20000
	heavy := 0
	for i := 0; i < trials; i++ {
		if exp.ExpandRule(nil, nil, p) == &p.Rules[1] {
			heavy++
		}
	}
	assert.InDelta(t, 0.9, float64(heavy)/trials, 0.02)
}

// TestUniformBalancedPairs derives S -> 'a' S 'b' | ε from a fixed seed
func TestUniformBalancedPairs(t *testing.T) {
	g := languages.Balanced()
	exp := expanders.NewUniformExpander[sv, sv](1234)

	for i := 0; i < 200; i++ {
		p, err := g.Generate(exp)
		require.NoError(t, err)

		out := string(p.Serialize())
		n := len(out) / 2
		assert.Equal(t, strings.Repeat("a", n)+strings.Repeat("b", n), out)
		assert.LessOrEqual(t, p.Depth(), 128)
		assert.Len(t, p.EdgeList(), p.NodeCount()-1)
	}
}

func TestUniformDeterministic(t *testing.T) {
	g := languages.Balanced()
	run := func(seed uint64) []string {
		exp := expanders.NewUniformExpander[sv, sv](seed)
		var out []string
		for i := 0; i < 50; i++ {
			p, err := g.Generate(exp)
			require.NoError(t, err)
			out = append(out, p.String())
		}
		return out
	}

	assert.Equal(t, run(99), run(99))
	assert.NotEqual(t, run(99), run(100))
}

func TestUniformPanicsOnEmptyProduction(t *testing.T) {
	empty := grammar.NewProduction[sv, sv](languages.LHS("S"))
	exp := expanders.NewUniformExpander[sv, sv](1)
	assert.Panics(t, func() { exp.ExpandRule(nil, nil, &empty) })
}

func TestUniformSlotChoiceCoversCandidates(t *testing.T) {
	a, b := languages.LHS("A"), languages.LHS("B")
	candidates := []grammar.SlotCandidate[sv, sv]{
		{LHS: &a, Indices: []int{0, 2}},
		{LHS: &b, Indices: []int{1}},
	}
	exp := expanders.NewUniformExpander[sv, sv](5)

	seen := map[int]bool{}
	for i := 0; i < 200; i++ {
		lhs, slot := exp.ChooseLHSAndSlot(nil, nil, candidates)
		if lhs == &a {
			assert.Contains(t, []int{0, 2}, slot)
		} else {
			assert.Equal(t, 1, slot)
		}
		seen[slot] = true
	}
	assert.Len(t, seen, 3)
}

// fixedPolicy returns canned scores and records observations
type fixedPolicy struct {
	rules       []float64
	slots       func(n int) []float64
	err         error
	observed    int
	lastDecided int
}

func (p *fixedPolicy) ScoreRules(_ *languages.Grammar, _ *languages.Program, _ *languages.Production) ([]float64, error) {
	return p.rules, p.err
}

func (p *fixedPolicy) ScoreSlots(_ *languages.Grammar, _ *languages.Program, candidates []grammar.SlotCandidate[sv, sv]) ([]float64, error) {
	if p.err != nil {
		return nil, p.err
	}
	n := 0
	for _, c := range candidates {
		n += len(c.Indices)
	}
	return p.slots(n), nil
}

func (p *fixedPolicy) Observe(_ *languages.Program, trajectory []expanders.Decision) error {
	p.observed++
	p.lastDecided = len(trajectory)
	return nil
}

func TestLearnedFollowsPolicy(t *testing.T) {
	// Strongly prefer ε so every derivation stops immediately
	policy := &fixedPolicy{rules: []float64{-50, 50}}
	exp := expanders.NewLearnedExpander[sv, sv](3, policy, quietLogger())

	for i := 0; i < 20; i++ {
		p, err := languages.Balanced().Generate(exp)
		require.NoError(t, err)
		assert.Empty(t, p.Serialize())
	}
	assert.Equal(t, 20, policy.observed)
	assert.Equal(t, 1, policy.lastDecided)
}

func TestLearnedFallsBackOnPolicyError(t *testing.T) {
	policy := &fixedPolicy{err: errors.New("model offline")}
	exp := expanders.NewLearnedExpander[sv, sv](3, policy, quietLogger())

	p, err := languages.Balanced().Generate(exp)
	require.NoError(t, err)
	assert.NotNil(t, p)
	assert.Equal(t, 1, policy.observed)
}

func TestLearnedPanicsOnWrongScoreLength(t *testing.T) {
	policy := &fixedPolicy{rules: []float64{1, 2, 3}}
	exp := expanders.NewLearnedExpander[sv, sv](3, policy, quietLogger())
	assert.Panics(t, func() { _, _ = languages.Balanced().Generate(exp) })
}

func TestLearnedContextSensitive(t *testing.T) {
	policy := &fixedPolicy{
		// S -> a B C is the first rule, later productions have a single rule
		rules: nil,
		slots: func(n int) []float64 { return make([]float64, n) },
	}
	g := languages.AnBnCn()

	exp := expanders.NewLearnedExpander[sv, sv](11, &scoreByProduction{fixedPolicy: policy}, quietLogger())
	p, err := g.Generate(exp)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(p.Serialize()))
	assert.Equal(t, 1, policy.observed)
	// One slot and one rule decision per rewrite: S, B, C
	assert.Equal(t, 6, policy.lastDecided)
}

// scoreByProduction always prefers the first rule, whatever the production size
type scoreByProduction struct {
	*fixedPolicy
}

func (p *scoreByProduction) ScoreRules(_ *languages.Grammar, _ *languages.Program, production *languages.Production) ([]float64, error) {
	scores := make([]float64, production.Len())
	scores[0] = 100
	return scores, nil
}

func TestNoveltyPolicy(t *testing.T) {
	policy := expanders.NewNoveltyPolicy[sv, sv](2)
	exp := expanders.NewLearnedExpander[sv, sv](8, policy, quietLogger())
	g := languages.Balanced()

	for i := 0; i < 100; i++ {
		_, err := g.Generate(exp)
		require.NoError(t, err)
	}

	assert.Equal(t, uint64(100), policy.Observed())
	uses := policy.Uses(languages.LHS("S"))
	require.Len(t, uses, 2)
	// Every derivation ends with exactly one ε
	assert.Equal(t, uint64(100), uses[1])
	assert.Greater(t, uses[0], uint64(0))
}

func TestFactory(t *testing.T) {
	for _, kind := range []expanders.Kind{expanders.KindMonteCarlo, expanders.KindWeighted} {
		exp, err := expanders.New[sv, sv](kind, 1, nil, nil)
		require.NoError(t, err)
		assert.NotNil(t, exp)
	}

	_, err := expanders.New[sv, sv](expanders.KindLearned, 1, nil, nil)
	assert.Error(t, err)

	exp, err := expanders.New[sv, sv](expanders.KindLearned, 1, expanders.NewNoveltyPolicy[sv, sv](1), quietLogger())
	require.NoError(t, err)
	assert.IsType(t, &expanders.LearnedExpander[sv, sv]{}, exp)

	_, err = expanders.New[sv, sv]("genetic", 1, nil, nil)
	assert.Error(t, err)

	kind, err := expanders.ParseKind("")
	require.NoError(t, err)
	assert.Equal(t, expanders.KindMonteCarlo, kind)
	_, err = expanders.ParseKind("genetic")
	assert.Error(t, err)
}
