package datasets

import (
	"fmt"

	"github.com/zeu5/rl-gyms/core"
)

const DefaultReplaySize = 50_000

// ReplayDataset is a bounded FIFO of transitions that persists across
// episodes unless ClearAfterEpisode is set.
type ReplayDataset struct {
	ClearAfterEpisode bool

	buf   []*core.Transition
	start int
	size  int
}

var _ core.Dataset = &ReplayDataset{}

func NewReplayDataset(capacity int, clearAfterEpisode bool) *ReplayDataset {
	if capacity <= 0 {
		capacity = DefaultReplaySize
	}
	return &ReplayDataset{
		ClearAfterEpisode: clearAfterEpisode,
		buf:               make([]*core.Transition, capacity),
	}
}

func (r *ReplayDataset) Capacity() int {
	return len(r.buf)
}

func (r *ReplayDataset) Len() int {
	return r.size
}

// Record appends the transition, overwriting the oldest one when full
func (r *ReplayDataset) Record(t *core.Transition) {
	if r.size < len(r.buf) {
		r.buf[(r.start+r.size)%len(r.buf)] = t
		r.size++
		return
	}
	r.buf[r.start] = t
	r.start = (r.start + 1) % len(r.buf)
}

func (r *ReplayDataset) Update(_ core.Agent, _ *core.StepContext, t *core.Transition) error {
	r.Record(t)
	return nil
}

// Transitions returns the stored transitions, oldest first
func (r *ReplayDataset) Transitions() []*core.Transition {
	out := make([]*core.Transition, r.size)
	for i := 0; i < r.size; i++ {
		out[i] = r.buf[(r.start+i)%len(r.buf)]
	}
	return out
}

// Deploy hands the whole buffer to the agent without draining it
func (r *ReplayDataset) Deploy(agent core.Agent) error {
	replayAgent, ok := agent.(core.ReplayAgent)
	if !ok {
		return fmt.Errorf("replay: %w", ErrUnsupportedAgent)
	}
	return replayAgent.LearnTransitions(r.Transitions())
}

func (r *ReplayDataset) Clear() {
	r.ClearForce(false)
}

// ClearForce empties the buffer only when ClearAfterEpisode is set. The force
// flag does not override that policy.
func (r *ReplayDataset) ClearForce(_ bool) {
	if !r.ClearAfterEpisode {
		return
	}
	for i := range r.buf {
		r.buf[i] = nil
	}
	r.start = 0
	r.size = 0
}

type ReplayDatasetConstructor struct {
	Capacity          int
	ClearAfterEpisode bool
}

var _ core.DatasetConstructor = &ReplayDatasetConstructor{}

func NewReplayDatasetConstructor(capacity int, clearAfterEpisode bool) *ReplayDatasetConstructor {
	return &ReplayDatasetConstructor{
		Capacity:          capacity,
		ClearAfterEpisode: clearAfterEpisode,
	}
}

func (c *ReplayDatasetConstructor) NewDataset() core.Dataset {
	return NewReplayDataset(c.Capacity, c.ClearAfterEpisode)
}
