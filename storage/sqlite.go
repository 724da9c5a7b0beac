package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps the records in a sqlite database file
type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

var _ Store = &SQLiteStore{}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}
	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

func (s *SQLiteStore) SaveRun(ctx context.Context, record *RunRecord) error {
	if err := validateRun(record); err != nil {
		return err
	}
	db, err := s.getDB()
	if err != nil {
		return err
	}

	payload, err := json.Marshal(record.Stats)
	if err != nil {
		return fmt.Errorf("encode stats of run %s: %w", record.ID, err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO runs (id, experiment, run, created_at, stats)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			experiment = excluded.experiment,
			run = excluded.run,
			created_at = excluded.created_at,
			stats = excluded.stats
	`, record.ID, record.Experiment, record.Run, record.CreatedAt.UnixNano(), payload)
	return err
}

func (s *SQLiteStore) SaveGeneration(ctx context.Context, record *GenerationRecord) error {
	if record.RunID == "" {
		return ErrMissingRunID
	}
	db, err := s.getDB()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO generations (run_id, generation, genome_key, fitness)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(run_id, generation) DO UPDATE SET
			genome_key = excluded.genome_key,
			fitness = excluded.fitness
	`, record.RunID, record.Generation, record.GenomeKey, record.Fitness)
	return err
}

func (s *SQLiteStore) Runs(ctx context.Context, experiment string) ([]*RunRecord, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	query := `SELECT id, experiment, run, created_at, stats FROM runs`
	args := []interface{}{}
	if experiment != "" {
		query += ` WHERE experiment = ?`
		args = append(args, experiment)
	}
	query += ` ORDER BY created_at, run`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*RunRecord, 0)
	for rows.Next() {
		record := &RunRecord{}
		var createdAt int64
		var payload []byte
		if err := rows.Scan(&record.ID, &record.Experiment, &record.Run, &createdAt, &payload); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(payload, &record.Stats); err != nil {
			return nil, fmt.Errorf("decode stats of run %s: %w", record.ID, err)
		}
		record.CreatedAt = time.Unix(0, createdAt).UTC()
		out = append(out, record)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Generations(ctx context.Context, runID string) ([]*GenerationRecord, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT run_id, generation, genome_key, fitness FROM generations
		WHERE run_id = ? ORDER BY generation
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*GenerationRecord, 0)
	for rows.Next() {
		record := &GenerationRecord{}
		if err := rows.Scan(&record.RunID, &record.Generation, &record.GenomeKey, &record.Fitness); err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, ErrNotInitialized
	}
	return s.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			experiment TEXT NOT NULL,
			run INTEGER NOT NULL,
			created_at INTEGER NOT NULL,
			stats BLOB NOT NULL
		);
		CREATE TABLE IF NOT EXISTS generations (
			run_id TEXT NOT NULL,
			generation INTEGER NOT NULL,
			genome_key INTEGER NOT NULL,
			fitness REAL NOT NULL,
			PRIMARY KEY (run_id, generation)
		);
	`)
	return err
}
