// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history records finished batch runs in a local SQLite database.
// It is an audit log written after a batch completes, not live progress
// state: nothing here is read back during execution.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/savagelysubtle/transmute/pkg/types"
)

const dbFile = "transmute.db"

// Store manages the batch history database.
type Store struct {
	db *sql.DB
}

// Open creates or opens the history database under dir.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS batches (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			conversion_type TEXT NOT NULL,
			total_files INTEGER NOT NULL,
			successful INTEGER NOT NULL,
			failed INTEGER NOT NULL,
			total_time REAL NOT NULL,
			started_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS results (
			batch_id INTEGER NOT NULL REFERENCES batches(id),
			input_path TEXT NOT NULL,
			output_path TEXT,
			success INTEGER NOT NULL,
			duration REAL NOT NULL,
			error TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_results_batch_id ON results(batch_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// BatchRecord is one stored batch run.
type BatchRecord struct {
	ID             int64                    `yaml:"id"`
	ConversionType string                   `yaml:"conversion_type"`
	TotalFiles     int                      `yaml:"total_files"`
	Successful     int                      `yaml:"successful"`
	Failed         int                      `yaml:"failed"`
	TotalTime      float64                  `yaml:"total_time"`
	StartedAt      time.Time                `yaml:"started_at"`
	Results        []types.ConversionResult `yaml:"results,omitempty"`
}

// Record writes one batch summary with its per-file results.
func (s *Store) Record(ctx context.Context, conversionType string, startedAt time.Time, summary types.BatchSummary) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO batches (conversion_type, total_files, successful, failed, total_time, started_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		conversionType, summary.TotalFiles, summary.Successful, summary.Failed,
		summary.TotalTime, startedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("inserting batch: %w", err)
	}
	batchID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading batch id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO results (batch_id, input_path, output_path, success, duration, error)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing result insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range summary.Results {
		if _, err := stmt.ExecContext(ctx, batchID, r.InputPath, r.OutputPath, r.Success, r.Duration, r.Error); err != nil {
			return fmt.Errorf("inserting result for %s: %w", r.InputPath, err)
		}
	}
	return tx.Commit()
}

// Recent returns the latest batch records, newest first, without per-file
// results. limit <= 0 returns 20.
func (s *Store) Recent(ctx context.Context, limit int) ([]BatchRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, conversion_type, total_files, successful, failed, total_time, started_at
		 FROM batches ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying batches: %w", err)
	}
	defer rows.Close()

	var records []BatchRecord
	for rows.Next() {
		var rec BatchRecord
		var started string
		if err := rows.Scan(&rec.ID, &rec.ConversionType, &rec.TotalFiles,
			&rec.Successful, &rec.Failed, &rec.TotalTime, &started); err != nil {
			return nil, fmt.Errorf("scanning batch row: %w", err)
		}
		rec.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Results returns the per-file results of one batch, sorted by input path.
func (s *Store) Results(ctx context.Context, batchID int64) ([]types.ConversionResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT input_path, output_path, success, duration, error
		 FROM results WHERE batch_id = ? ORDER BY input_path`, batchID)
	if err != nil {
		return nil, fmt.Errorf("querying results for batch %d: %w", batchID, err)
	}
	defer rows.Close()

	var results []types.ConversionResult
	for rows.Next() {
		var r types.ConversionResult
		if err := rows.Scan(&r.InputPath, &r.OutputPath, &r.Success, &r.Duration, &r.Error); err != nil {
			return nil, fmt.Errorf("scanning result row: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// ExportYAML writes the most recent records, with per-file results, to w.
func (s *Store) ExportYAML(ctx context.Context, limit int, w io.Writer) error {
	records, err := s.Recent(ctx, limit)
	if err != nil {
		return err
	}
	for i := range records {
		results, err := s.Results(ctx, records[i].ID)
		if err != nil {
			return err
		}
		records[i].Results = results
	}

	data, err := yaml.Marshal(records)
	if err != nil {
		return fmt.Errorf("encoding history: %w", err)
	}
	_, err = w.Write(data)
	return err
}
