// Package reconcile merges the live viewer-question sheet with archive
// transcript judgments into one consistent record per question.
package reconcile

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/streamqa/reconcile/internal/model"
	"github.com/streamqa/reconcile/internal/oracle"
)

// ProgressFunc receives (completed, total) after each finished match batch.
// Implementations must not block; the engine calls it synchronously.
type ProgressFunc func(completed, total int)

// Options tunes the engine passes.
type Options struct {
	BatchSize           int     // concurrent oracle calls per batch; default 5
	PropagationMinutes  float64 // backward propagation window; default 3
	SimilarityThreshold float64 // propagation text similarity floor; default 0.85
}

func (o Options) withDefaults() Options {
	if o.BatchSize <= 0 {
		o.BatchSize = 5
	}
	if o.PropagationMinutes <= 0 {
		o.PropagationMinutes = 3
	}
	if o.SimilarityThreshold <= 0 {
		o.SimilarityThreshold = 0.85
	}
	return o
}

// Result is the reconciled output sequence plus the oracle-match
// explanations collected during the archive pass.
type Result struct {
	Questions []model.OutputQuestion
	Judgments []model.JudgmentEntry
}

// Engine runs the reconciliation passes. One Engine may serve concurrent
// runs; all per-run state lives in Run.
type Engine struct {
	matcher oracle.Matcher
	opts    Options
}

// NewEngine builds an engine over the given matcher.
func NewEngine(matcher oracle.Matcher, opts Options) *Engine {
	return &Engine{matcher: matcher, opts: opts.withDefaults()}
}

// Run executes the passes in order over a fresh record sequence:
//
//  1. archive matching via the oracle, batched
//  2. live/archive exclusivity
//  3. proximity propagation across near-duplicate operator comments
//  4. archive answer-method rewrite
//  5. unjudged answer-method cleanup
//  6. final status recomputation
//
// The ordering is load-bearing: pass 3 reads the exclusivity established by
// pass 2, and passes 4-6 read the union of passes 1-3. The input sequence
// must be in non-decreasing time order for pass 3's backward scan to
// terminate correctly. The only error returned is context cancellation.
func (e *Engine) Run(ctx context.Context, inputs []model.InputQuestion, items []model.QAItem, onProgress ProgressFunc) (*Result, error) {
	questions := Normalize(inputs)

	judgments, err := e.matchArchive(ctx, questions, items, onProgress)
	if err != nil {
		return nil, err
	}

	applyExclusivity(questions)
	e.propagateProximity(questions)
	rewriteArchiveMethod(questions)
	clearUnjudgedMethod(questions)
	recomputeFinalStatus(questions)

	return &Result{Questions: questions, Judgments: judgments}, nil
}

// matchArchive is pass 1: ask the oracle about every record, BatchSize calls
// in flight at a time. A single failed call is a no-match; an auth failure
// latches and stops all future batches while the run itself continues.
func (e *Engine) matchArchive(ctx context.Context, questions []model.OutputQuestion, items []model.QAItem, onProgress ProgressFunc) ([]model.JudgmentEntry, error) {
	if len(items) == 0 {
		return nil, nil
	}

	total := len(questions)
	var judgments []model.JudgmentEntry
	authFailed := false

	for start := 0; start < total && !authFailed; start += e.opts.BatchSize {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "reconcile: run cancelled")
		}

		end := start + e.opts.BatchSize
		if end > total {
			end = total
		}

		matches := make([]*model.QAItem, end-start)
		errs := make([]error, end-start)

		var g errgroup.Group
		for i := start; i < end; i++ {
			g.Go(func() error {
				item, err := e.matcher.Match(ctx, questions[i].Question, questions[i].Time, items)
				matches[i-start] = item
				errs[i-start] = err
				// Member failures never abort the batch; they are
				// resolved per-slot below.
				return nil
			})
		}
		_ = g.Wait()

		for i := start; i < end; i++ {
			q := &questions[i]

			if err := errs[i-start]; err != nil {
				if eris.Is(err, oracle.ErrAuthInvalid) {
					if !authFailed {
						authFailed = true
						zap.L().Warn("reconcile: oracle auth invalid, skipping remaining matches")
					}
					continue
				}
				zap.L().Warn("reconcile: match failed",
					zap.String("question", q.Question),
					zap.Error(err),
				)
				continue
			}

			match := matches[i-start]
			if match == nil {
				continue
			}

			q.ArchiveJudgment = model.JudgmentTrue
			judgments = append(judgments, model.JudgmentEntry{
				Question:          q.Question,
				Time:              q.Time,
				User:              q.User,
				FinalAnswerStatus: q.FinalAnswerStatus,
				LiveJudgment:      q.LiveJudgment,
				ArchiveJudgment:   q.ArchiveJudgment,
				Reason: model.JudgmentReason{
					ArchiveReason: fmt.Sprintf("QA抽出テキストのQ%dとマッチしました: %s", match.Number, match.Question),
				},
			})
		}

		if onProgress != nil {
			onProgress(end, total)
		}
	}

	// The latch cuts the loop short; the reporter still needs a terminal
	// progress value.
	if authFailed && onProgress != nil {
		onProgress(total, total)
	}

	return judgments, nil
}

// applyExclusivity is pass 2: a live judgment always wins over an archive
// judgment on the same record.
func applyExclusivity(questions []model.OutputQuestion) {
	for i := range questions {
		if questions[i].LiveJudgment == model.JudgmentTrue {
			questions[i].ArchiveJudgment = ""
		}
	}
}

// propagateProximity is pass 3: an operator's on-air acknowledgment marks
// earlier near-duplicate unanswered comments as archive-answered. The
// backward scan stops at the first record outside the window, which is
// correct only because the sequence is time-ordered.
func (e *Engine) propagateProximity(questions []model.OutputQuestion) {
	for i := range questions {
		current := &questions[i]
		if current.AnswerMethod != model.AnswerMethodOperator || current.LiveJudgment != model.JudgmentTrue {
			continue
		}
		currentSecs := model.ClockSeconds(current.Time)

		for j := i - 1; j >= 0; j-- {
			prev := &questions[j]
			if prev.LiveJudgment == model.JudgmentTrue {
				continue
			}

			elapsedMinutes := float64(currentSecs-model.ClockSeconds(prev.Time)) / 60
			if elapsedMinutes < 0 || elapsedMinutes > e.opts.PropagationMinutes {
				break
			}

			if Similarity(prev.Question, current.Question) >= e.opts.SimilarityThreshold {
				prev.ArchiveJudgment = model.JudgmentTrue
			}
		}
	}
}

// rewriteArchiveMethod is pass 4: archive-answered questions were answered
// by the performer regardless of what the sheet said.
func rewriteArchiveMethod(questions []model.OutputQuestion) {
	for i := range questions {
		if questions[i].ArchiveJudgment == model.JudgmentTrue {
			questions[i].AnswerMethod = model.AnswerMethodPerformer
		}
	}
}

// clearUnjudgedMethod is pass 5: a judgment-implying answer method on a
// record with no judgment is stale and is cleared.
func clearUnjudgedMethod(questions []model.OutputQuestion) {
	for i := range questions {
		q := &questions[i]
		judged := q.LiveJudgment == model.JudgmentTrue || q.ArchiveJudgment == model.JudgmentTrue
		if !judged && (q.AnswerMethod == model.AnswerMethodPerformer || q.AnswerMethod == model.AnswerMethodOperator) {
			q.AnswerMethod = ""
		}
	}
}

// recomputeFinalStatus is pass 6 and must run last: the final status is
// always derived from the two judgments, never cached.
func recomputeFinalStatus(questions []model.OutputQuestion) {
	for i := range questions {
		q := &questions[i]
		q.FinalAnswerStatus = q.LiveJudgment == model.JudgmentTrue || q.ArchiveJudgment == model.JudgmentTrue
	}
}
