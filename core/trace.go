package core

import "sync"

// Transition is produced once per turn
type Transition struct {
	State     State
	Action    Action
	Reward    float64
	NextState State
	Done      bool
	Turn      int
}

type Trace struct {
	mtx   *sync.Mutex
	steps []*Transition
}

func NewTrace() *Trace {
	return &Trace{
		steps: make([]*Transition, 0),
		mtx:   &sync.Mutex{},
	}
}

func (t *Trace) AddStep(s *Transition) {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	t.steps = append(t.steps, s)
}

func (t *Trace) Step(i int) *Transition {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	return t.steps[i]
}

func (t *Trace) Len() int {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	return len(t.steps)
}

func (t *Trace) Last() *Transition {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	if len(t.steps) == 0 {
		return nil
	}
	return t.steps[len(t.steps)-1]
}

// TotalReward sums the rewards of all the steps in the trace
func (t *Trace) TotalReward() float64 {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	total := float64(0)
	for _, s := range t.steps {
		total += s.Reward
	}
	return total
}
