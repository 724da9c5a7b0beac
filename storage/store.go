package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/zeu5/rl-gyms/core"
)

var (
	ErrNotInitialized = errors.New("store is not initialized")
	ErrMissingRunID   = errors.New("record has no run id")
)

// RunRecord is the outcome of one experiment in one run
type RunRecord struct {
	ID         string                 `json:"id"`
	Experiment string                 `json:"experiment"`
	Run        int                    `json:"run"`
	Stats      []core.AggregatedStats `json:"stats"`
	CreatedAt  time.Time              `json:"created_at"`
}

// GenerationRecord is the best genome of one arena generation
type GenerationRecord struct {
	RunID      string  `json:"run_id"`
	Generation int     `json:"generation"`
	GenomeKey  int     `json:"genome_key"`
	Fitness    float64 `json:"fitness"`
}

// Store persists experiment results
type Store interface {
	Init(context.Context) error
	SaveRun(context.Context, *RunRecord) error
	SaveGeneration(context.Context, *GenerationRecord) error
	// Runs returns the records of the experiment, or all records when experiment is empty
	Runs(ctx context.Context, experiment string) ([]*RunRecord, error)
	Generations(ctx context.Context, runID string) ([]*GenerationRecord, error)
	Close() error
}

// NewRunID returns a fresh random run id
func NewRunID() string {
	return uuid.NewString()
}

// NewRunRecord creates a record with a new id for the stats of an experiment run
func NewRunRecord(experiment string, run int, stats []core.AggregatedStats) *RunRecord {
	return &RunRecord{
		ID:         NewRunID(),
		Experiment: experiment,
		Run:        run,
		Stats:      stats,
		CreatedAt:  time.Now().UTC(),
	}
}

// NewStore returns the store of the given kind rooted at path
func NewStore(kind, path string) (Store, error) {
	switch kind {
	case "", "json":
		return NewJSONStore(path), nil
	case "sqlite":
		return NewSQLiteStore(path), nil
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", kind)
	}
}

func validateRun(record *RunRecord) error {
	if record.ID == "" {
		return ErrMissingRunID
	}
	if _, err := uuid.Parse(record.ID); err != nil {
		return fmt.Errorf("invalid run id %q: %w", record.ID, err)
	}
	return nil
}
