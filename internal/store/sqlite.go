package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path, configures WAL mode,
// and applies migrations.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id              TEXT PRIMARY KEY,
	created_at      DATETIME NOT NULL DEFAULT (datetime('now')),
	input_file      TEXT NOT NULL,
	transcript_file TEXT NOT NULL,
	output_file     TEXT NOT NULL,
	status          TEXT NOT NULL,
	total_questions INTEGER NOT NULL,
	live_count      INTEGER NOT NULL,
	archive_count   INTEGER NOT NULL,
	answered_count  INTEGER NOT NULL,
	skip_count      INTEGER NOT NULL,
	answer_rate     REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
`

func (s *SQLiteStore) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveRun inserts one run summary row.
func (s *SQLiteStore) SaveRun(ctx context.Context, run Run) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (
			id, created_at, input_file, transcript_file, output_file, status,
			total_questions, live_count, archive_count, answered_count, skip_count, answer_rate
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID.String(), run.CreatedAt, run.InputFile, run.TranscriptFile, run.OutputFile, string(run.Status),
		run.Stats.TotalQuestions, run.Stats.LiveJudgmentCount, run.Stats.ArchiveJudgmentCount,
		run.Stats.FinalAnswerStatusCount, run.Stats.SkipCount, run.Stats.AnswerRate,
	)
	return eris.Wrap(err, "sqlite: insert run")
}

// ListRuns returns the most recent runs, newest first.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, input_file, transcript_file, output_file, status,
			total_questions, live_count, archive_count, answered_count, skip_count, answer_rate
		FROM runs ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var id, status string
		if err := rows.Scan(
			&id, &run.CreatedAt, &run.InputFile, &run.TranscriptFile, &run.OutputFile, &status,
			&run.Stats.TotalQuestions, &run.Stats.LiveJudgmentCount, &run.Stats.ArchiveJudgmentCount,
			&run.Stats.FinalAnswerStatusCount, &run.Stats.SkipCount, &run.Stats.AnswerRate,
		); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		run.ID, err = uuid.Parse(id)
		if err != nil {
			return nil, eris.Wrapf(err, "sqlite: parse run id %s", id)
		}
		run.Status = RunStatus(status)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate runs")
	}

	return runs, nil
}
