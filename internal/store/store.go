// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists finished pipeline runs in a SQLite report history.
// Failed runs are stored too; their partial fields and stage error survive
// for later inspection.
//
// See docs/ARCHITECTURE § Report History.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/report-engine/pkg/types"
)

const dbFile = "reports.db"

// Store manages the report history SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the report database at dataDir/reports.db,
// creating the schema if it does not exist.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
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
		`CREATE TABLE IF NOT EXISTS reports (
			id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			query TEXT NOT NULL,
			interpreted TEXT,
			analysis TEXT,
			search_requests TEXT,
			search_results TEXT,
			draft TEXT,
			error_stage TEXT,
			error_message TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_reports_created_at ON reports(created_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Summary is one row of the report history listing.
type Summary struct {
	ID        string
	CreatedAt time.Time
	Query     string
	Title     string
	Failed    bool
}

// Save inserts a finished run. Structured fields are stored as JSON columns;
// absent fields stay NULL so Get can distinguish "never ran" from "empty".
func (s *Store) Save(ctx context.Context, report *types.Report) error {
	if report.ID == "" {
		return fmt.Errorf("report has no ID")
	}

	analysis, err := marshalNullable(report.Analysis)
	if err != nil {
		return fmt.Errorf("encoding analysis: %w", err)
	}
	requests, err := marshalNullable(report.SearchRequests)
	if err != nil {
		return fmt.Errorf("encoding search requests: %w", err)
	}
	results, err := marshalNullable(report.SearchResults)
	if err != nil {
		return fmt.Errorf("encoding search results: %w", err)
	}
	draft, err := marshalNullable(report.Draft)
	if err != nil {
		return fmt.Errorf("encoding draft: %w", err)
	}

	var errStage, errMessage sql.NullString
	if report.Err != nil {
		errStage = sql.NullString{String: report.Err.Stage, Valid: true}
		errMessage = sql.NullString{String: report.Err.Message, Valid: true}
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO reports (id, created_at, query, interpreted, analysis,
			search_requests, search_results, draft, error_stage, error_message)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.ID,
		report.CreatedAt.UTC().Format(time.RFC3339Nano),
		report.Query,
		nullString(report.Interpreted),
		analysis, requests, results, draft,
		errStage, errMessage,
	)
	if err != nil {
		return fmt.Errorf("inserting report %s: %w", report.ID, err)
	}
	return nil
}

// Get loads one report by ID.
func (s *Store) Get(ctx context.Context, id string) (*types.Report, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, query, interpreted, analysis,
			search_requests, search_results, draft, error_stage, error_message
		 FROM reports WHERE id = ?`, id)

	var report types.Report
	var createdAt string
	var interpreted, analysis, requests, results, draft, errStage, errMessage sql.NullString

	err := row.Scan(&report.ID, &createdAt, &report.Query, &interpreted,
		&analysis, &requests, &results, &draft, &errStage, &errMessage)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("report %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("loading report %s: %w", id, err)
	}

	if t, parseErr := time.Parse(time.RFC3339Nano, createdAt); parseErr == nil {
		report.CreatedAt = t
	}
	report.Interpreted = interpreted.String

	if err := unmarshalNullable(analysis, &report.Analysis); err != nil {
		return nil, fmt.Errorf("decoding analysis: %w", err)
	}
	if err := unmarshalNullable(requests, &report.SearchRequests); err != nil {
		return nil, fmt.Errorf("decoding search requests: %w", err)
	}
	if err := unmarshalNullable(results, &report.SearchResults); err != nil {
		return nil, fmt.Errorf("decoding search results: %w", err)
	}
	if err := unmarshalNullable(draft, &report.Draft); err != nil {
		return nil, fmt.Errorf("decoding draft: %w", err)
	}

	if errStage.Valid {
		report.Err = &types.StageError{Stage: errStage.String, Message: errMessage.String}
	}
	return &report, nil
}

// List returns the most recent runs, newest first. A limit of 0 means 20.
func (s *Store) List(ctx context.Context, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, query, draft, error_stage
		 FROM reports ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing reports: %w", err)
	}
	defer rows.Close()

	var summaries []Summary
	for rows.Next() {
		var sm Summary
		var createdAt string
		var draft, errStage sql.NullString
		if err := rows.Scan(&sm.ID, &createdAt, &sm.Query, &draft, &errStage); err != nil {
			return nil, fmt.Errorf("scanning report row: %w", err)
		}
		if t, parseErr := time.Parse(time.RFC3339Nano, createdAt); parseErr == nil {
			sm.CreatedAt = t
		}
		if draft.Valid {
			var d types.Draft
			if json.Unmarshal([]byte(draft.String), &d) == nil {
				sm.Title = d.Title
			}
		}
		sm.Failed = errStage.Valid
		summaries = append(summaries, sm)
	}
	return summaries, rows.Err()
}

// Delete removes one report by ID.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM reports WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting report %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("report %s not found", id)
	}
	return nil
}

// marshalNullable encodes v as JSON, or NULL when v is a nil pointer/slice.
func marshalNullable(v any) (sql.NullString, error) {
	switch t := v.(type) {
	case *types.Analysis:
		if t == nil {
			return sql.NullString{}, nil
		}
	case *types.Draft:
		if t == nil {
			return sql.NullString{}, nil
		}
	case []types.SearchRequest:
		if t == nil {
			return sql.NullString{}, nil
		}
	case []types.SearchResult:
		if t == nil {
			return sql.NullString{}, nil
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

// unmarshalNullable decodes a JSON column into dst, leaving dst untouched
// for NULL columns.
func unmarshalNullable(col sql.NullString, dst any) error {
	if !col.Valid {
		return nil
	}
	return json.Unmarshal([]byte(col.String), dst)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
