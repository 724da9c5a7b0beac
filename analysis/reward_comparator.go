package analysis

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/zeu5/rl-gyms/core"
	"github.com/zeu5/rl-gyms/storage"
)

// RewardComparator saves the aggregated reward stats of every experiment of a
// run to a store. Successive calls to Compare are numbered as successive runs.
type RewardComparator struct {
	store storage.Store
	// run is the number of the next compared run
	run int

	mu   sync.Mutex
	ids  map[string]string
	errs []error
}

var _ core.Comparator = &RewardComparator{}

func NewRewardComparator(store storage.Store, run int) *RewardComparator {
	return &RewardComparator{
		store: store,
		run:   run,
		ids:   make(map[string]string),
	}
}

func (r *RewardComparator) Compare(experimentNames []string, datasets []core.DataSet) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, name := range experimentNames {
		stats, ok := datasets[i].([]core.AggregatedStats)
		if !ok {
			continue
		}
		record := storage.NewRunRecord(name, r.run, stats)
		if err := r.store.SaveRun(context.Background(), record); err != nil {
			r.errs = append(r.errs, fmt.Errorf("saving %s: %w", name, err))
			continue
		}
		r.ids[name] = record.ID
	}
	r.run++
}

// RunIDs returns the ids of the last saved records keyed by experiment name
func (r *RewardComparator) RunIDs() map[string]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]string, len(r.ids))
	for k, v := range r.ids {
		out[k] = v
	}
	return out
}

// Err joins the errors of the failed saves
func (r *RewardComparator) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return errors.Join(r.errs...)
}

type RewardComparatorConstructor struct {
	Store storage.Store

	mu          sync.Mutex
	comparators []*RewardComparator
}

var _ core.ComparatorConstructor = &RewardComparatorConstructor{}

func NewRewardComparatorConstructor(store storage.Store) *RewardComparatorConstructor {
	return &RewardComparatorConstructor{
		Store:       store,
		comparators: make([]*RewardComparator, 0),
	}
}

func (r *RewardComparatorConstructor) NewComparator(run int) core.Comparator {
	c := NewRewardComparator(r.Store, run)
	r.mu.Lock()
	r.comparators = append(r.comparators, c)
	r.mu.Unlock()
	return c
}

// Err joins the errors of all the comparators created so far
func (r *RewardComparatorConstructor) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	errs := make([]error, 0)
	for _, c := range r.comparators {
		if err := c.Err(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
