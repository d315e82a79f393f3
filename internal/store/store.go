// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists extracted run records in a local SQLite database so
// earlier reports can be rendered again without their source text.
package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/pdiddy/summary-table/pkg/types"
)

// Store manages the run history database.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the diagnostic logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// Open opens or creates the database at cfg.Path and creates the schema if
// it does not exist.
func Open(cfg types.StoreConfig, opts ...Option) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("no store path configured")
	}
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:     db,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

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
		`CREATE TABLE IF NOT EXISTS ingests (
			id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			runs INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			ingest_id TEXT NOT NULL REFERENCES ingests(id),
			seq INTEGER NOT NULL,
			flowcell_id TEXT,
			report_run_id TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS fields (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			name TEXT NOT NULL,
			kind TEXT NOT NULL,
			value TEXT NOT NULL,
			PRIMARY KEY (run_id, position)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_flowcell ON runs(flowcell_id)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ingest ON runs(ingest_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// IngestSummary holds counts from one Ingest call.
type IngestSummary struct {
	// IngestID identifies the batch the stored runs belong to.
	IngestID string
	Stored   int
	Skipped  int
}

// Total returns the number of records processed.
func (s IngestSummary) Total() int {
	return s.Stored + s.Skipped
}

// Ingest stores every record as one batch inside a single transaction.
// A record identical to one already stored is skipped.
func (s *Store) Ingest(ctx context.Context, records types.RecordSet) (IngestSummary, error) {
	summary := IngestSummary{IngestID: uuid.New().String()}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO ingests (id, created_at, runs) VALUES (?, ?, 0)`,
		summary.IngestID, s.now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("inserting ingest: %w", err)
	}

	fieldStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO fields (run_id, position, name, kind, value) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("preparing insert: %w", err)
	}
	defer fieldStmt.Close()

	for seq, rec := range records {
		id := RunID(rec)

		var exists int
		err := tx.QueryRowContext(ctx, `SELECT count(*) FROM runs WHERE id = ?`, id).Scan(&exists)
		if err != nil {
			return IngestSummary{}, fmt.Errorf("checking run %s: %w", id, err)
		}
		if exists > 0 {
			s.logger.Debug("run already stored", zap.String("run", id))
			summary.Skipped++
			continue
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO runs (id, ingest_id, seq, flowcell_id, report_run_id) VALUES (?, ?, ?, ?, ?)`,
			id, summary.IngestID, seq, nullableField(rec, types.FieldFlowcellID), nullableField(rec, types.FieldRunID),
		)
		if err != nil {
			return IngestSummary{}, fmt.Errorf("inserting run %s: %w", id, err)
		}

		for pos, f := range rec.Fields() {
			if _, err := fieldStmt.ExecContext(ctx, id, pos, f.Name, string(f.Value.Kind), f.Value.String()); err != nil {
				return IngestSummary{}, fmt.Errorf("inserting field %q of run %s: %w", f.Name, id, err)
			}
		}
		summary.Stored++
	}

	_, err = tx.ExecContext(ctx, `UPDATE ingests SET runs = ? WHERE id = ?`, summary.Stored, summary.IngestID)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("updating ingest: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return IngestSummary{}, fmt.Errorf("committing ingest: %w", err)
	}

	s.logger.Info("stored runs",
		zap.String("ingest", summary.IngestID),
		zap.Int("stored", summary.Stored),
		zap.Int("skipped", summary.Skipped))
	return summary, nil
}

// HistoryOptions filters stored runs.
type HistoryOptions struct {
	// FlowcellID restricts results to one flowcell.
	FlowcellID string

	// Limit caps the number of runs returned (0 = all).
	Limit int
}

// History returns stored runs in the order they were ingested, each rebuilt
// with its original field order and value types.
func (s *Store) History(ctx context.Context, opts HistoryOptions) (types.RecordSet, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id FROM runs r
		 JOIN ingests i ON i.id = r.ingest_id
		 WHERE ? = '' OR r.flowcell_id = ?
		 ORDER BY i.rowid, r.seq
		 LIMIT ?`,
		opts.FlowcellID, opts.FlowcellID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	rows.Close()

	records := make(types.RecordSet, 0, len(ids))
	for _, id := range ids {
		rec, err := s.loadRun(ctx, id)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *Store) loadRun(ctx context.Context, id string) (types.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, kind, value FROM fields WHERE run_id = ? ORDER BY position`, id)
	if err != nil {
		return types.Record{}, fmt.Errorf("querying fields of run %s: %w", id, err)
	}
	defer rows.Close()

	var rec types.Record
	for rows.Next() {
		var name, kind, raw string
		if err := rows.Scan(&name, &kind, &raw); err != nil {
			return types.Record{}, fmt.Errorf("scanning field of run %s: %w", id, err)
		}
		v, err := types.ParseValue(types.ValueKind(kind), raw)
		if err != nil {
			return types.Record{}, fmt.Errorf("run %s field %q: %w", id, name, err)
		}
		rec.Set(name, v)
	}
	return rec, rows.Err()
}

// RunID generates a deterministic ID from a record's ordered fields.
// The ID is the first 12 hex characters of the SHA-256 digest.
func RunID(rec types.Record) string {
	h := sha256.New()
	for _, f := range rec.Fields() {
		h.Write([]byte(f.Name))
		h.Write([]byte{0})
		h.Write([]byte(f.Value.Kind))
		h.Write([]byte{0})
		h.Write([]byte(f.Value.String()))
		h.Write([]byte{0})
	}
	return fmt.Sprintf("%x", h.Sum(nil))[:12]
}

func nullableField(rec types.Record, name string) sql.NullString {
	v, ok := rec.Get(name)
	if !ok {
		return sql.NullString{}
	}
	return sql.NullString{String: v.String(), Valid: true}
}
