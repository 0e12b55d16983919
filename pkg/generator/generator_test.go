/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: generator_test.go
Description: Tests for parallel batch generation: exact counts, deduplication, error
propagation, dead-end handling, partial subtrees, reporters and goroutine hygiene.
*/

package generator_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/kleascm/lang-explorer/pkg/expanders"
	"github.com/kleascm/lang-explorer/pkg/generator"
	"github.com/kleascm/lang-explorer/pkg/grammar"
	"github.com/kleascm/lang-explorer/pkg/languages"
	"github.com/kleascm/lang-explorer/pkg/logging"
)

type sv = languages.StringValue

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func programs(b *generator.Batch) []string {
	var out []string
	for _, p := range b.Complete() {
		out = append(out, *p.Program)
	}
	return out
}

// TestExactCountNoDuplicates requests more programs than one worker would find by chance
func TestExactCountNoDuplicates(t *testing.T) {
	defer goleak.VerifyNone(t)

	gen := generator.New(languages.Balanced(), quietLogger())
	batch, err := gen.Run(context.Background(), generator.Request[sv, sv]{
		Count:   20,
		Seed:    1,
		Workers: 1,
	})
	require.NoError(t, err)

	out := programs(batch)
	assert.Len(t, out, 20)

	seen := map[string]bool{}
	for _, p := range out {
		assert.False(t, seen[p], "duplicate program %q", p)
		seen[p] = true

		n := len(p) / 2
		assert.Equal(t, strings.Repeat("a", n)+strings.Repeat("b", n), p)
	}

	assert.Equal(t, int64(20), batch.Stats.Accepted)
	assert.Equal(t, batch.Stats.Attempts, batch.Stats.Accepted+batch.Stats.Duplicates+batch.Stats.Failures)
	assert.Equal(t, languages.Balanced().Name(), batch.Grammar)
	assert.Equal(t, languages.Balanced().BNF(), batch.GrammarBNF)
	assert.NotEmpty(t, batch.RunID.String())
}

func TestRemainderIsDistributed(t *testing.T) {
	defer goleak.VerifyNone(t)

	gen := generator.New(languages.Balanced(), quietLogger())
	batch, err := gen.Run(context.Background(), generator.Request[sv, sv]{
		Count:   10,
		Seed:    3,
		Workers: 3,
	})
	require.NoError(t, err)
	assert.Len(t, batch.Complete(), 10)
}

func TestWorkerSeeds(t *testing.T) {
	defer goleak.VerifyNone(t)

	var (
		mu    sync.Mutex
		seeds = map[int]uint64{}
	)
	factory := func(worker int, seed uint64) (grammar.Expander[sv, sv], error) {
		mu.Lock()
		seeds[worker] = seed
		mu.Unlock()
		return expanders.NewUniformExpander[sv, sv](seed), nil
	}

	gen := generator.New(languages.Balanced(), quietLogger())
	_, err := gen.Run(context.Background(), generator.Request[sv, sv]{
		Count:       8,
		Seed:        100,
		Workers:     4,
		NewExpander: factory,
	})
	require.NoError(t, err)
	assert.Equal(t, map[int]uint64{0: 100, 1: 105, 2: 110, 3: 115}, seeds)
}

func TestSingleWorkerDeterministic(t *testing.T) {
	defer goleak.VerifyNone(t)

	run := func() []string {
		gen := generator.New(languages.Balanced(), quietLogger())
		batch, err := gen.Run(context.Background(), generator.Request[sv, sv]{Count: 15, Seed: 77, Workers: 1})
		require.NoError(t, err)
		return programs(batch)
	}
	assert.Equal(t, run(), run())
}

func TestStructuralErrorIsFatal(t *testing.T) {
	defer goleak.VerifyNone(t)

	broken := grammar.New("broken", sv("S"),
		grammar.NewProduction(languages.LHS("S"), grammar.Rule(languages.T("a"), languages.NT("Missing"))),
	)

	gen := generator.New(broken, quietLogger())
	_, err := gen.Run(context.Background(), generator.Request[sv, sv]{Count: 50, Workers: 4})
	require.Error(t, err)
	assert.True(t, errors.Is(err, grammar.ErrUnknownNonTerminal))
}

func TestContextSensitiveDeadEndsAreSkipped(t *testing.T) {
	defer goleak.VerifyNone(t)

	gen := generator.New(languages.AnBnCn(), quietLogger())
	batch, err := gen.Run(context.Background(), generator.Request[sv, sv]{
		Count:   4,
		Seed:    9,
		Workers: 2,
	})
	require.NoError(t, err)

	for _, p := range programs(batch) {
		n := strings.Count(p, "a")
		assert.Equal(t, strings.Repeat("a", n)+strings.Repeat("b", n)+strings.Repeat("c", n), p)
	}
	assert.Equal(t, int64(4), batch.Stats.Accepted)
}

func TestAttemptBudget(t *testing.T) {
	defer goleak.VerifyNone(t)

	single := grammar.New("single", sv("S"),
		grammar.NewProduction(languages.LHS("S"), grammar.Rule(languages.T("x"))),
	)

	gen := generator.New(single, quietLogger())
	batch, err := gen.Run(context.Background(), generator.Request[sv, sv]{
		Count:                3,
		Workers:              1,
		MaxAttemptsPerWorker: 25,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, programs(batch))
	assert.Equal(t, int64(25), batch.Stats.Attempts)
	assert.Equal(t, int64(24), batch.Stats.Duplicates)
}

func TestCancelledContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gen := generator.New(languages.Balanced(), quietLogger())
	_, err := gen.Run(ctx, generator.Request[sv, sv]{Count: 10, Workers: 2})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestInvalidRequests(t *testing.T) {
	gen := generator.New(languages.Balanced(), quietLogger())

	_, err := gen.Run(context.Background(), generator.Request[sv, sv]{Count: 0})
	assert.Error(t, err)

	_, err = gen.Run(context.Background(), generator.Request[sv, sv]{Count: 1, Expander: expanders.KindLearned})
	assert.Error(t, err)
}

func TestPartialSubtrees(t *testing.T) {
	defer goleak.VerifyNone(t)

	gen := generator.New(languages.Balanced(), quietLogger())
	batch, err := gen.Run(context.Background(), generator.Request[sv, sv]{
		Count:               5,
		Seed:                2,
		Workers:             1,
		ReturnPartialGraphs: true,
		Results: grammar.ResultOptions{
			ReturnFeatures:  true,
			ReturnEdgeLists: true,
			Features:        grammar.DefaultFeatureOptions(),
		},
	})
	require.NoError(t, err)

	complete := batch.Complete()
	assert.Len(t, complete, 5)
	assert.Equal(t, int64(len(batch.Programs)-5), batch.Stats.Partials)
	assert.Positive(t, batch.Stats.Partials)

	partials := map[string]bool{}
	for _, p := range batch.Programs {
		assert.NotEmpty(t, p.Features)
		if p.IsPartial {
			require.NotNil(t, p.Program)
			assert.False(t, partials[*p.Program], "partial %q sent twice", *p.Program)
			partials[*p.Program] = true
		}
	}
}

// TestConcurrentWorkersNeverShareAProgram exhausts a small language with many workers and
// slow result extraction
func TestConcurrentWorkersNeverShareAProgram(t *testing.T) {
	defer goleak.VerifyNone(t)

	var rules []languages.Rule
	for _, s := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		rules = append(rules, grammar.Rule(languages.T(s)))
	}
	small := grammar.New("small", sv("S"), grammar.NewProduction(languages.LHS("S"), rules...))

	for seed := uint64(0); seed < 20; seed++ {
		gen := generator.New(small, quietLogger())
		batch, err := gen.Run(context.Background(), generator.Request[sv, sv]{
			Count:   8,
			Seed:    seed,
			Workers: 8,
			Results: grammar.ResultOptions{
				ReturnFeatures: true,
				Features:       grammar.FeatureOptions{Iterations: 50},
			},
		})
		require.NoError(t, err)

		out := programs(batch)
		assert.ElementsMatch(t, []string{"a", "b", "c", "d", "e", "f", "g", "h"}, out, "seed %d", seed)
		assert.Equal(t, int64(8), batch.Stats.Accepted)
		assert.Equal(t, batch.Stats.Attempts, batch.Stats.Accepted+batch.Stats.Duplicates+batch.Stats.Failures)
	}
}

func TestLearnedExpanderBatch(t *testing.T) {
	defer goleak.VerifyNone(t)

	policy := expanders.NewNoveltyPolicy[sv, sv](1)
	gen := generator.New(languages.Balanced(), quietLogger())
	batch, err := gen.Run(context.Background(), generator.Request[sv, sv]{
		Count:    10,
		Seed:     4,
		Workers:  2,
		Expander: expanders.KindLearned,
		Policy:   policy,
	})
	require.NoError(t, err)
	assert.Len(t, batch.Complete(), 10)
	assert.GreaterOrEqual(t, policy.Observed(), uint64(10))
}

type countingReporter struct {
	mu                          sync.Mutex
	accepted, duplicates, fails int
	ids                         []int64
}

func (r *countingReporter) OnProgramAccepted(event generator.ProgramEvent) {
	r.mu.Lock()
	r.accepted++
	r.ids = append(r.ids, event.ProgramID)
	r.mu.Unlock()
}

func (r *countingReporter) OnDuplicate(generator.ProgramEvent) {
	r.mu.Lock()
	r.duplicates++
	r.mu.Unlock()
}

func (r *countingReporter) OnGenerationFailed(generator.FailureEvent) {
	r.mu.Lock()
	r.fails++
	r.mu.Unlock()
}

func TestReporters(t *testing.T) {
	defer goleak.VerifyNone(t)

	reg := prometheus.NewRegistry()
	prom := generator.NewPrometheusReporter(reg)
	counting := &countingReporter{}

	g := languages.Balanced()
	gen := generator.New(g, quietLogger())
	gen.AddReporter(counting)
	gen.AddReporter(prom)
	gen.AddReporter(generator.NewLoggerReporter(quietLogger()))

	batch, err := gen.Run(context.Background(), generator.Request[sv, sv]{Count: 12, Seed: 5, Workers: 3})
	require.NoError(t, err)

	assert.Equal(t, 12, counting.accepted)
	assert.ElementsMatch(t, []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}, counting.ids)
	assert.Equal(t, int(batch.Stats.Duplicates), counting.duplicates)
	assert.Equal(t, 12.0, testutil.ToFloat64(prom.Generated.WithLabelValues(g.Name())))
	assert.Equal(t, float64(batch.Stats.Duplicates), testutil.ToFloat64(prom.Duplicates.WithLabelValues(g.Name())))
	assert.Equal(t, 1, testutil.CollectAndCount(prom.Duration))
}

func TestLoggerReporterProgramID(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetLevel(logrus.DebugLevel)
	logger.SetFormatter(&logging.CustomFormatter{})

	generator.NewLoggerReporter(logger).OnProgramAccepted(generator.ProgramEvent{
		RunID:     "123e4567-e89b-12d3-a456-426614174000",
		Worker:    1,
		Nodes:     5,
		ProgramID: 3,
	})
	assert.Equal(t, "DEBUG [run_id=123e4567 worker=1 program_id=3] Program accepted nodes=5\n", buf.String())
}

func TestDedupSet(t *testing.T) {
	d := generator.NewDedupSet()
	assert.False(t, d.Contains("a"))
	assert.True(t, d.Insert("a"))
	assert.False(t, d.Insert("a"))
	assert.True(t, d.Contains("a"))
	assert.Equal(t, 1, d.Len())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				d.Insert(strings.Repeat("x", j))
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 101, d.Len())
}
