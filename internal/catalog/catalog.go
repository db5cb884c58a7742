// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog keeps a SQLite ledger of accession runs and the outcome of
// every file fetched during them.
package catalog

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/m-mizutani/goerr/v2"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/fastq-fetch/pkg/types"
)

// Store records RunReports in a SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the catalog database at path and ensures its schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, goerr.Wrap(err, "creating catalog directory", goerr.V("dir", dir))
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, goerr.Wrap(err, "opening catalog", goerr.V("path", path))
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, goerr.Wrap(err, "creating catalog schema", goerr.V("path", path))
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			accession TEXT NOT NULL,
			output_dir TEXT NOT NULL,
			resolve TEXT NOT NULL,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_accession ON runs(accession)`,
		`CREATE TABLE IF NOT EXISTS fetches (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id INTEGER NOT NULL REFERENCES runs(id),
			source_url TEXT NOT NULL,
			url TEXT NOT NULL,
			path TEXT NOT NULL,
			status TEXT NOT NULL,
			status_code INTEGER,
			bytes INTEGER NOT NULL,
			content_type TEXT,
			error TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_fetches_run_id ON fetches(run_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return goerr.Wrap(err, "executing schema statement")
		}
	}
	return nil
}

// Record stores report and its file outcomes in one transaction and returns
// the new run ID.
func (s *Store) Record(ctx context.Context, report types.RunReport) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, goerr.Wrap(err, "beginning transaction")
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (accession, output_dir, resolve, started_at, finished_at) VALUES (?, ?, ?, ?, ?)`,
		string(report.Accession), report.OutputDir, string(report.Resolve),
		formatTime(report.StartedAt), formatTime(report.FinishedAt),
	)
	if err != nil {
		return 0, goerr.Wrap(err, "inserting run", goerr.V("accession", report.Accession))
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, goerr.Wrap(err, "reading run id")
	}

	for _, f := range report.Files {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO fetches (run_id, source_url, url, path, status, status_code, bytes, content_type, error)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, f.SourceURL, f.URL, f.Path, string(f.Status), f.StatusCode, f.Bytes, f.ContentType, f.Error,
		); err != nil {
			return 0, goerr.Wrap(err, "inserting fetch", goerr.V("url", f.URL))
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, goerr.Wrap(err, "committing run", goerr.V("accession", report.Accession))
	}
	return runID, nil
}

// ListByAccession returns every recorded run of accession, oldest first.
func (s *Store) ListByAccession(ctx context.Context, accession types.Accession) ([]types.RunReport, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, output_dir, resolve, started_at, finished_at FROM runs WHERE accession = ? ORDER BY id`,
		string(accession),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "querying runs", goerr.V("accession", accession))
	}

	var (
		ids     []int64
		reports []types.RunReport
	)
	for rows.Next() {
		var (
			id                int64
			resolve           string
			started, finished string
		)
		r := types.RunReport{Accession: accession}
		if err := rows.Scan(&id, &r.OutputDir, &resolve, &started, &finished); err != nil {
			rows.Close()
			return nil, goerr.Wrap(err, "scanning run")
		}
		r.Resolve = types.ResolveStatus(resolve)
		r.StartedAt = parseTime(started)
		r.FinishedAt = parseTime(finished)
		ids = append(ids, id)
		reports = append(reports, r)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, goerr.Wrap(err, "iterating runs")
	}
	rows.Close()

	for i, id := range ids {
		files, err := s.files(ctx, id)
		if err != nil {
			return nil, err
		}
		reports[i].Files = files
	}
	return reports, nil
}

func (s *Store) files(ctx context.Context, runID int64) ([]types.FileRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT source_url, url, path, status, status_code, bytes, content_type, error
		 FROM fetches WHERE run_id = ? ORDER BY id`,
		runID,
	)
	if err != nil {
		return nil, goerr.Wrap(err, "querying fetches", goerr.V("run_id", runID))
	}
	defer rows.Close()

	var files []types.FileRecord
	for rows.Next() {
		var (
			f           types.FileRecord
			status      string
			contentType sql.NullString
			errText     sql.NullString
			statusCode  sql.NullInt64
		)
		if err := rows.Scan(&f.SourceURL, &f.URL, &f.Path, &status, &statusCode, &f.Bytes, &contentType, &errText); err != nil {
			return nil, goerr.Wrap(err, "scanning fetch")
		}
		f.Status = types.FetchStatus(status)
		f.StatusCode = int(statusCode.Int64)
		f.ContentType = contentType.String
		f.Error = errText.String
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "iterating fetches")
	}
	return files, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
