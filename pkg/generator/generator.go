/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: generator.go
Description: Parallel batch generation. Fans a request out over a pool of workers, each with
its own deterministically seeded expander, shares one deduplication set between them and
collects their results over a bounded channel until every worker has returned.
*/

package generator

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/kleascm/lang-explorer/pkg/expanders"
	"github.com/kleascm/lang-explorer/pkg/grammar"
)

// SeedStride separates the seeds of neighbouring workers
const SeedStride = 5

// ExpanderFactory builds the expander owned by one worker
type ExpanderFactory[T grammar.Terminal, I grammar.NonTerminal] func(worker int, seed uint64) (grammar.Expander[T, I], error)

// Request describes one batch
type Request[T grammar.Terminal, I grammar.NonTerminal] struct {
	Count   int    // Programs to generate
	Seed    uint64 // Base seed; worker i uses Seed + i*SeedStride
	Workers int    // Zero means one per CPU

	Expander expanders.Kind
	Policy   expanders.Policy[T, I]
	// NewExpander overrides Expander and Policy when set
	NewExpander ExpanderFactory[T, I]

	Results             grammar.ResultOptions
	ReturnPartialGraphs bool

	// MaxAttemptsPerWorker bounds derivations per worker. Zero means 1000 per requested program.
	MaxAttemptsPerWorker int
}

// Batch is the result of one Run
type Batch struct {
	RunID      uuid.UUID               `json:"run_id"`
	Grammar    string                  `json:"grammar"`
	GrammarBNF string                  `json:"grammar_bnf"`
	Programs   []grammar.ProgramResult `json:"programs"`
	Stats      Stats                   `json:"stats"`
	Elapsed    time.Duration           `json:"elapsed"`
}

// Complete returns only the complete programs of the batch
func (b *Batch) Complete() []grammar.ProgramResult {
	out := make([]grammar.ProgramResult, 0, len(b.Programs))
	for _, p := range b.Programs {
		if !p.IsPartial {
			out = append(out, p)
		}
	}
	return out
}

// Generator runs generation batches against one grammar
type Generator[T grammar.Terminal, I grammar.NonTerminal] struct {
	grammar   *grammar.Grammar[T, I]
	logger    *logrus.Logger
	reporters []Reporter
}

// New creates a generator. A nil logger falls back to the logrus standard logger.
func New[T grammar.Terminal, I grammar.NonTerminal](g *grammar.Grammar[T, I], logger *logrus.Logger) *Generator[T, I] {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Generator[T, I]{grammar: g, logger: logger}
}

// AddReporter registers a telemetry reporter
func (g *Generator[T, I]) AddReporter(r Reporter) {
	g.reporters = append(g.reporters, r)
}

// Grammar returns the grammar the generator derives from
func (g *Generator[T, I]) Grammar() *grammar.Grammar[T, I] { return g.grammar }

// Run generates req.Count programs in parallel.
//
// Context-sensitive dead ends are logged and retried. A structural grammar error in any worker
// cancels the others and is returned. The order of programs across workers is not
// deterministic, even for a fixed seed.
func (g *Generator[T, I]) Run(ctx context.Context, req Request[T, I]) (*Batch, error) {
	if req.Count <= 0 {
		return nil, fmt.Errorf("count must be positive, got %d", req.Count)
	}

	workers := req.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	workers = min(workers, req.Count)

	factory := req.NewExpander
	if factory == nil {
		kind := req.Expander
		if kind == "" {
			kind = expanders.KindMonteCarlo
		}
		factory = func(_ int, seed uint64) (grammar.Expander[T, I], error) {
			return expanders.New(kind, seed, req.Policy, g.logger)
		}
	}

	runID := uuid.New()
	name := g.grammar.Name()
	stats := &Stats{StartTime: time.Now()}
	dedup := NewDedupSet()
	logger := g.logger.WithFields(logrus.Fields{"run_id": runID.String(), "grammar": name})

	pool := make([]*worker[T, I], workers)
	for i := range pool {
		exp, err := factory(i, req.Seed+uint64(i)*SeedStride)
		if err != nil {
			return nil, fmt.Errorf("failed to create expander for worker %d: %w", i, err)
		}

		share := req.Count / workers
		if i < req.Count%workers {
			share++
		}
		maxAttempts := req.MaxAttemptsPerWorker
		if maxAttempts <= 0 {
			maxAttempts = 1000 * share
		}

		pool[i] = &worker[T, I]{
			id:          i,
			share:       share,
			maxAttempts: maxAttempts,
			partials:    req.ReturnPartialGraphs,
			grammar:     g.grammar,
			expander:    exp,
			options:     req.Results,
			dedup:       dedup,
			stats:       stats,
			reporters:   g.reporters,
			runID:       runID.String(),
			grammarName: name,
			logger:      logger.WithField("worker", i),
		}
	}

	logger.Infof("Generating %d programs with %d workers (context sensitive: %v)", req.Count, workers, g.grammar.IsContextSensitive())

	results := make(chan grammar.ProgramResult, max(1, req.Count/workers))
	eg, egCtx := errgroup.WithContext(ctx)
	for _, w := range pool {
		eg.Go(func() error { return w.run(egCtx, results) })
	}

	done := make(chan error, 1)
	go func() {
		done <- eg.Wait()
		close(results)
	}()

	programs := make([]grammar.ProgramResult, 0, req.Count)
	for result := range results {
		programs = append(programs, result)
	}
	if err := <-done; err != nil {
		logger.Errorf("Generation failed: %v", err)
		return nil, err
	}

	snap := stats.Snapshot()
	if snap.Accepted < int64(req.Count) {
		logger.Warnf("Only %d of %d requested programs were generated", snap.Accepted, req.Count)
	}
	logger.Infof("Generated %d programs (%d duplicates, %d failed derivations) in %.3fs",
		snap.Accepted, snap.Duplicates, snap.Failures, snap.Elapsed)

	return &Batch{
		RunID:      runID,
		Grammar:    name,
		GrammarBNF: g.grammar.BNF(),
		Programs:   programs,
		Stats:      snap,
		Elapsed:    time.Since(stats.StartTime),
	}, nil
}
