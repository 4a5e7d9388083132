package runner

import (
	"context"
	"encoding/base64"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/streamqa/reconcile/internal/model"
	"github.com/streamqa/reconcile/internal/reconcile"
	"github.com/streamqa/reconcile/internal/store"
)

// matcherFunc adapts a function to oracle.Matcher.
type matcherFunc func(ctx context.Context, question, clock string, candidates []model.QAItem) (*model.QAItem, error)

func (f matcherFunc) Match(ctx context.Context, question, clock string, candidates []model.QAItem) (*model.QAItem, error) {
	return f(ctx, question, clock, candidates)
}

func noMatch(ctx context.Context, question, clock string, candidates []model.QAItem) (*model.QAItem, error) {
	return nil, nil
}

const testCSV = `質問リスト,,,,,,,
回答済み,Time,User,質問,回答方法,コメント補足,回答,メモ
TRUE,00:05:10,viewer1,何色に変わりますか？,運用者コメ,,,
,00:06:00,viewer2,いつ発送されますか？,,,,
`

const testTranscript = `Q1: {00:05:40} いつ発送されますか？
A1: 来週を予定しています。
`

func newTestRunner(t *testing.T, matcher matcherFunc) (*Runner, *store.SQLiteStore) {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return New(reconcile.NewEngine(matcher, reconcile.Options{}), st), st
}

func TestRun_Complete(t *testing.T) {
	matched := matcherFunc(func(ctx context.Context, question, clock string, candidates []model.QAItem) (*model.QAItem, error) {
		if question == "いつ発送されますか？" {
			return &candidates[0], nil
		}
		return nil, nil
	})
	r, st := newTestRunner(t, matched)

	var events []Event
	outcome, err := r.Run(context.Background(), Request{
		InputName:      "input.csv",
		InputData:      []byte(testCSV),
		TranscriptName: "QA抽出_250614.txt",
		TranscriptData: []byte(testTranscript),
	}, func(ev Event) { events = append(events, ev) })

	require.NoError(t, err)
	require.NotNil(t, outcome)

	assert.Equal(t, "250614質問回答まとめ.xlsx", outcome.OutputFilename)
	assert.Equal(t, 2, outcome.Stats.TotalQuestions)
	assert.Equal(t, 1, outcome.Stats.ArchiveJudgmentCount)
	assert.Len(t, outcome.Judgments, 1)

	// The artifact is a readable workbook.
	f, err := xlsx.OpenBinary(outcome.Artifact)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 1)

	// Event sequence: monotonically increasing progress, terminal complete.
	require.NotEmpty(t, events)
	last := events[len(events)-1]
	assert.Equal(t, StageComplete, last.Stage)
	assert.Equal(t, 100, last.Progress)
	assert.Equal(t, outcome.OutputFilename, last.OutputFilename)
	require.NotNil(t, last.SummaryStats)
	assert.Equal(t, 2, last.SummaryStats.TotalQuestions)

	decoded, err := base64.StdEncoding.DecodeString(last.ExcelData)
	require.NoError(t, err)
	assert.Equal(t, outcome.Artifact, decoded)

	prev := -1
	stages := map[Stage]bool{}
	for _, ev := range events {
		assert.GreaterOrEqual(t, ev.Progress, prev)
		prev = ev.Progress
		stages[ev.Stage] = true
	}
	assert.True(t, stages[StageParsing])
	assert.True(t, stages[StageIntegrating])
	assert.True(t, stages[StageGenerating])

	// The run summary is persisted.
	runs, err := st.ListRuns(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, store.RunStatusComplete, runs[0].Status)
	assert.Equal(t, 2, runs[0].Stats.TotalQuestions)
}

func TestRun_MissingFiles(t *testing.T) {
	r, _ := newTestRunner(t, noMatch)

	var events []Event
	outcome, err := r.Run(context.Background(), Request{InputName: "input.csv"},
		func(ev Event) { events = append(events, ev) })

	require.Error(t, err)
	assert.Nil(t, outcome)
	require.Len(t, events, 1)
	assert.Equal(t, StageError, events[0].Stage)
	assert.NotEmpty(t, events[0].Error)
}

func TestRun_UnsupportedFormat(t *testing.T) {
	r, st := newTestRunner(t, noMatch)

	var events []Event
	_, err := r.Run(context.Background(), Request{
		InputName:      "input.pdf",
		InputData:      []byte("junk"),
		TranscriptName: "qa.txt",
		TranscriptData: []byte(testTranscript),
	}, func(ev Event) { events = append(events, ev) })

	require.Error(t, err)
	last := events[len(events)-1]
	assert.Equal(t, StageError, last.Stage)
	assert.Contains(t, last.Message, "unsupported")

	runs, err := st.ListRuns(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, store.RunStatusError, runs[0].Status)
}

func TestRun_Cancelled(t *testing.T) {
	r, st := newTestRunner(t, noMatch)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var events []Event
	outcome, err := r.Run(ctx, Request{
		InputName:      "input.csv",
		InputData:      []byte(testCSV),
		TranscriptName: "qa.txt",
		TranscriptData: []byte(testTranscript),
	}, func(ev Event) { events = append(events, ev) })

	require.Error(t, err)
	assert.Nil(t, outcome)

	last := events[len(events)-1]
	assert.Equal(t, StageError, last.Stage)
	assert.Contains(t, last.Message, "cancelled")
	// No artifact on the cancelled path.
	assert.Empty(t, last.ExcelData)

	runs, err := st.ListRuns(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, store.RunStatusCancelled, runs[0].Status)
}

func TestRun_NilStoreAndNotifier(t *testing.T) {
	r := New(reconcile.NewEngine(matcherFunc(noMatch), reconcile.Options{}), nil)

	outcome, err := r.Run(context.Background(), Request{
		InputName:      "input.csv",
		InputData:      []byte(testCSV),
		TranscriptName: "notes.txt",
		TranscriptData: []byte(testTranscript),
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, "質問回答まとめ.xlsx", outcome.OutputFilename)
}

func TestRun_TranscriptWarningsSurface(t *testing.T) {
	r, _ := newTestRunner(t, noMatch)

	outcome, err := r.Run(context.Background(), Request{
		InputName:      "input.csv",
		InputData:      []byte(testCSV),
		TranscriptName: "qa.txt",
		TranscriptData: []byte("A9: 対応する質問のない回答\n" + testTranscript),
	}, nil)

	require.NoError(t, err)
	require.Len(t, outcome.Warnings, 1)
	assert.Contains(t, outcome.Warnings[0], "A9")
}
