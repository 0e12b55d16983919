/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: worker.go
Description: Generation worker. Each worker owns its expander and derives programs until it
has delivered its share of the batch, skipping duplicates and context-sensitive dead ends.
*/

package generator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kleascm/lang-explorer/pkg/grammar"
)

// worker derives programs for one slice of a batch
type worker[T grammar.Terminal, I grammar.NonTerminal] struct {
	id          int
	share       int
	maxAttempts int
	partials    bool

	grammar  *grammar.Grammar[T, I]
	expander grammar.Expander[T, I]
	options  grammar.ResultOptions

	dedup       *DedupSet
	stats       *Stats
	reporters   []Reporter
	runID       string
	grammarName string
	logger      *logrus.Entry
}

// run loops until the share is delivered or the attempts run out. ctx cancellation stops it early.
// Only structural grammar errors and cancellation are returned.
func (w *worker[T, I]) run(ctx context.Context, out chan<- grammar.ProgramResult) error {
	accepted, attempts := 0, 0

	for accepted < w.share {
		if err := ctx.Err(); err != nil {
			return err
		}
		if attempts >= w.maxAttempts {
			w.logger.Warnf("Worker %d gave up after %d attempts with %d/%d programs", w.id, attempts, accepted, w.share)
			return nil
		}
		attempts++
		w.stats.IncrementAttempts()

		start := time.Now()
		program, err := w.grammar.Generate(w.expander)
		if err != nil {
			w.stats.IncrementFailures()
			w.reportFailure(err)
			if grammar.IsStructural(err) {
				return fmt.Errorf("worker %d: %w", w.id, err)
			}
			w.logger.Debugf("Derivation abandoned: %v", err)
			continue
		}
		event := ProgramEvent{
			RunID:    w.runID,
			Grammar:  w.grammarName,
			Worker:   w.id,
			Nodes:    program.NodeCount(),
			Duration: time.Since(start).Seconds(),
		}

		// Insert reports false when another worker claimed the key after Contains
		key := program.String()
		if w.dedup.Contains(key) || !w.dedup.Insert(key) {
			w.stats.IncrementDuplicates()
			for _, r := range w.reporters {
				r.OnDuplicate(event)
			}
			continue
		}

		result, err := program.ToResult(w.options, true)
		if err != nil {
			if !errors.Is(err, grammar.ErrInvalidUTF8) {
				return fmt.Errorf("worker %d: %w", w.id, err)
			}
			w.stats.IncrementFailures()
			w.reportFailure(err)
			continue
		}

		if err := send(ctx, out, *result); err != nil {
			return err
		}
		accepted++
		event.ProgramID = w.stats.IncrementAccepted()
		for _, r := range w.reporters {
			r.OnProgramAccepted(event)
		}

		if w.partials {
			if err := w.sendPartials(ctx, out, program); err != nil {
				return err
			}
		}
	}

	w.logger.Debugf("Worker %d finished: %d programs in %d attempts", w.id, accepted, attempts)
	return nil
}

// sendPartials emits every non-root subtree not seen before, breadth first.
// Partials share the dedup set with complete programs.
func (w *worker[T, I]) sendPartials(ctx context.Context, out chan<- grammar.ProgramResult, program *grammar.ProgramInstance[T, I]) error {
	for _, node := range program.Nodes()[1:] {
		key := node.String()
		if w.dedup.Contains(key) || !w.dedup.Insert(key) {
			continue
		}
		result, err := node.ToResult(w.options, false)
		if err != nil {
			return fmt.Errorf("worker %d: partial %d: %w", w.id, node.ID, err)
		}
		if err := send(ctx, out, *result); err != nil {
			return err
		}
		w.stats.IncrementPartials()
	}
	return nil
}

func (w *worker[T, I]) reportFailure(err error) {
	event := FailureEvent{RunID: w.runID, Grammar: w.grammarName, Worker: w.id, Err: err}
	for _, r := range w.reporters {
		r.OnGenerationFailed(event)
	}
}

// send blocks until the collector takes the result or ctx is done
func send(ctx context.Context, out chan<- grammar.ProgramResult, result grammar.ProgramResult) error {
	select {
	case out <- result:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
