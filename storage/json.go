package storage

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"sync"

	"github.com/zeu5/rl-gyms/util"
)

const (
	runsFile        = "runs.json"
	generationsFile = "generations.json"
)

// JSONStore keeps the records in memory and rewrites json files in a directory on every save
type JSONStore struct {
	dir string

	mu          sync.Mutex
	initialized bool
	runs        []*RunRecord
	generations []*GenerationRecord
}

var _ Store = &JSONStore{}

func NewJSONStore(dir string) *JSONStore {
	return &JSONStore{dir: dir}
}

func (s *JSONStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dir == "" {
		return errors.New("json store directory is required")
	}
	if s.initialized {
		return nil
	}

	s.runs = make([]*RunRecord, 0)
	s.generations = make([]*GenerationRecord, 0)
	if err := loadIfExists(filepath.Join(s.dir, runsFile), &s.runs); err != nil {
		return err
	}
	if err := loadIfExists(filepath.Join(s.dir, generationsFile), &s.generations); err != nil {
		return err
	}
	s.initialized = true
	return nil
}

func loadIfExists(path string, v interface{}) error {
	err := util.LoadJson(path, v)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (s *JSONStore) SaveRun(_ context.Context, record *RunRecord) error {
	if err := validateRun(record); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return ErrNotInitialized
	}

	replaced := false
	for i, r := range s.runs {
		if r.ID == record.ID {
			s.runs[i] = record
			replaced = true
			break
		}
	}
	if !replaced {
		s.runs = append(s.runs, record)
	}
	return util.SaveJson(filepath.Join(s.dir, runsFile), s.runs)
}

func (s *JSONStore) SaveGeneration(_ context.Context, record *GenerationRecord) error {
	if record.RunID == "" {
		return ErrMissingRunID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return ErrNotInitialized
	}

	s.generations = append(s.generations, record)
	return util.SaveJson(filepath.Join(s.dir, generationsFile), s.generations)
}

func (s *JSONStore) Runs(_ context.Context, experiment string) ([]*RunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return nil, ErrNotInitialized
	}

	out := make([]*RunRecord, 0)
	for _, r := range s.runs {
		if experiment == "" || r.Experiment == experiment {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *JSONStore) Generations(_ context.Context, runID string) ([]*GenerationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return nil, ErrNotInitialized
	}

	out := make([]*GenerationRecord, 0)
	for _, g := range s.generations {
		if g.RunID == runID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (s *JSONStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initialized = false
	return nil
}
