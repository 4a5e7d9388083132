// Package runner drives one reconciliation end to end: parse both inputs,
// run the engine, render the workbook, and report progress events along the
// way.
package runner

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/streamqa/reconcile/internal/export"
	"github.com/streamqa/reconcile/internal/model"
	"github.com/streamqa/reconcile/internal/parser"
	"github.com/streamqa/reconcile/internal/reconcile"
	"github.com/streamqa/reconcile/internal/store"
)

// Stage identifies the phase a progress event belongs to.
type Stage string

const (
	StageParsing     Stage = "parsing"
	StageIntegrating Stage = "integrating"
	StageGenerating  Stage = "generating"
	StageComplete    Stage = "complete"
	StageError       Stage = "error"
)

// Event is one progress notification. The JSON shape is the wire contract of
// the progress stream; the final complete event additionally carries the
// artifact and summary.
type Event struct {
	Progress  int      `json:"progress"` // 0-100
	Message   string   `json:"message"`
	Elapsed   float64  `json:"elapsed"` // seconds since run start
	Estimated *float64 `json:"estimated,omitempty"`
	Stage     Stage    `json:"stage"`
	Timestamp int64    `json:"timestamp"`
	Error     string   `json:"error,omitempty"`

	// Set on the final complete event only.
	ExcelData       string                `json:"excelData,omitempty"` // base64 xlsx
	OutputFilename  string                `json:"outputFilename,omitempty"`
	JudgmentReasons []model.JudgmentEntry `json:"judgmentReasons,omitempty"`
	SummaryStats    *model.SummaryStats   `json:"summaryStats,omitempty"`
	Warnings        []string              `json:"warnings,omitempty"`
}

// Notifier receives progress events. Treated as fire-and-forget; it must not
// block.
type Notifier func(Event)

// Request carries the two uploaded files for one run.
type Request struct {
	RunID          uuid.UUID
	InputName      string
	InputData      []byte
	TranscriptName string
	TranscriptData []byte
}

// Outcome is the result of a successful run.
type Outcome struct {
	Artifact       []byte
	OutputFilename string
	Questions      []model.OutputQuestion
	Judgments      []model.JudgmentEntry
	Stats          model.SummaryStats
	Warnings       []string
}

// Runner executes reconciliation runs. The store is optional; a nil store
// disables run persistence.
type Runner struct {
	engine *reconcile.Engine
	store  store.Store
}

// New builds a Runner.
func New(engine *reconcile.Engine, st store.Store) *Runner {
	return &Runner{engine: engine, store: st}
}

// Run executes one reconciliation. Every terminal path emits exactly one
// terminal event: complete with the artifact, or error with a reason
// (cancellation included). The returned error is nil only on the complete
// path.
func (r *Runner) Run(ctx context.Context, req Request, notify Notifier) (*Outcome, error) {
	if req.RunID == uuid.Nil {
		req.RunID = uuid.New()
	}
	log := zap.L().With(zap.String("run_id", req.RunID.String()))
	start := time.Now()

	send := func(progress int, message string, stage Stage) {
		if notify == nil {
			return
		}
		elapsed := time.Since(start).Seconds()
		ev := Event{
			Progress:  progress,
			Message:   message,
			Elapsed:   elapsed,
			Stage:     stage,
			Timestamp: time.Now().UnixMilli(),
		}
		if progress > 0 && progress < 100 {
			estimated := elapsed / float64(progress) * float64(100-progress)
			ev.Estimated = &estimated
		}
		if stage == StageError {
			ev.Error = message
		}
		notify(ev)
	}

	fail := func(message string, err error) (*Outcome, error) {
		send(0, message, StageError)
		r.saveRun(req, store.RunStatusError, "", model.SummaryStats{})
		return nil, err
	}

	cancelled := func() (*Outcome, error) {
		log.Info("run cancelled", zap.Duration("after", time.Since(start)))
		send(0, "processing cancelled", StageError)
		r.saveRun(req, store.RunStatusCancelled, "", model.SummaryStats{})
		return nil, eris.Wrap(ctx.Err(), "runner: run cancelled")
	}

	if len(req.InputData) == 0 || len(req.TranscriptData) == 0 {
		return fail("input and transcript files are required", eris.New("runner: missing input files"))
	}

	send(5, "reading question sheet", StageParsing)

	questions, inputWarnings, err := parser.ParseInput(req.InputName, req.InputData)
	if err != nil {
		if eris.Is(err, parser.ErrUnsupportedFormat) {
			return fail("unsupported input file format", err)
		}
		return fail(fmt.Sprintf("failed to parse question sheet: %v", err), err)
	}
	warnings := inputWarnings

	send(10, "parsing archive transcript", StageParsing)

	items, transcriptWarnings, err := parser.ParseTranscript(bytes.NewReader(req.TranscriptData))
	if err != nil {
		return fail(fmt.Sprintf("failed to parse transcript: %v", err), err)
	}
	warnings = append(warnings, transcriptWarnings...)
	for _, w := range warnings {
		log.Warn("parse warning", zap.String("warning", w))
	}

	if ctx.Err() != nil {
		return cancelled()
	}

	send(30, "matching questions against archive", StageIntegrating)

	// The match pass owns the 30-80% band of the progress bar.
	result, err := r.engine.Run(ctx, questions, items, func(done, total int) {
		progress := 30 + done*50/total
		send(progress, fmt.Sprintf("matching questions against archive (%d/%d)", done, total), StageIntegrating)
	})
	if err != nil {
		if ctx.Err() != nil {
			return cancelled()
		}
		return fail(fmt.Sprintf("reconciliation failed: %v", err), err)
	}

	send(80, "merging judgments", StageIntegrating)

	if ctx.Err() != nil {
		return cancelled()
	}

	send(90, "generating workbook", StageGenerating)

	stats := model.Summarize(result.Questions)
	workbook, err := export.BuildWorkbook(result.Questions, stats)
	if err != nil {
		return fail(fmt.Sprintf("failed to build workbook: %v", err), err)
	}
	var artifact bytes.Buffer
	if err := export.WriteWorkbook(workbook, &artifact); err != nil {
		return fail(fmt.Sprintf("failed to write workbook: %v", err), err)
	}

	outcome := &Outcome{
		Artifact:       artifact.Bytes(),
		OutputFilename: export.OutputFileName(req.TranscriptName),
		Questions:      result.Questions,
		Judgments:      result.Judgments,
		Stats:          stats,
		Warnings:       warnings,
	}

	r.saveRun(req, store.RunStatusComplete, outcome.OutputFilename, stats)

	if notify != nil {
		elapsed := time.Since(start).Seconds()
		notify(Event{
			Progress:        100,
			Message:         "processing complete",
			Elapsed:         elapsed,
			Stage:           StageComplete,
			Timestamp:       time.Now().UnixMilli(),
			ExcelData:       base64.StdEncoding.EncodeToString(outcome.Artifact),
			OutputFilename:  outcome.OutputFilename,
			JudgmentReasons: outcome.Judgments,
			SummaryStats:    &stats,
			Warnings:        warnings,
		})
	}

	log.Info("run complete",
		zap.Int("questions", stats.TotalQuestions),
		zap.Int("archive_matches", stats.ArchiveJudgmentCount),
		zap.Float64("answer_rate", stats.AnswerRate),
		zap.Duration("duration", time.Since(start)),
	)

	return outcome, nil
}

// saveRun persists the run summary when a store is configured. Persistence
// failures are logged, never fatal; the run result has already been decided.
func (r *Runner) saveRun(req Request, status store.RunStatus, outputFile string, stats model.SummaryStats) {
	if r.store == nil {
		return
	}
	// A cancelled request context must not block recording the run.
	saveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := r.store.SaveRun(saveCtx, store.Run{
		ID:             req.RunID,
		CreatedAt:      time.Now().UTC(),
		InputFile:      req.InputName,
		TranscriptFile: req.TranscriptName,
		OutputFile:     outputFile,
		Status:         status,
		Stats:          stats,
	})
	if err != nil {
		zap.L().Warn("failed to persist run", zap.String("run_id", req.RunID.String()), zap.Error(err))
	}
}
