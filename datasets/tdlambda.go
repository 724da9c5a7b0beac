package datasets

import (
	"errors"
	"fmt"
	"math"

	"github.com/zeu5/rl-gyms/core"
)

var (
	ErrUnsupportedAgent = errors.New("agent does not support this dataset")
	ErrAlreadyDeployed  = errors.New("dataset already deployed this episode")
)

// DefaultLambda covers the longest episode of the reference games, making the
// default behave as TD(inf)
const DefaultLambda = 27

type LabeledExample struct {
	Q      core.QVector
	Target float64
}

type bufferState int

const (
	bufferEmpty bufferState = iota
	bufferAccumulating
	bufferDeployed
)

// TDLambdaDataset redistributes rewards backwards over the turns of an
// episode. Each recorded reward is added, discounted by decay^(turns elapsed),
// to the targets of all the entries recorded more than lambda+1 turns before.
type TDLambdaDataset struct {
	lambda  int
	entries []LabeledExample
	state   bufferState
}

var _ core.Dataset = &TDLambdaDataset{}

func NewTDLambdaDataset(lambda int) *TDLambdaDataset {
	return &TDLambdaDataset{
		lambda:  lambda,
		entries: make([]LabeledExample, 0),
		state:   bufferEmpty,
	}
}

func (d *TDLambdaDataset) Lambda() int {
	return d.lambda
}

// BeginTurn resets the buffer on the first turn of an episode
func (d *TDLambdaDataset) BeginTurn(turn int) {
	if turn == 1 {
		d.Clear()
		d.state = bufferAccumulating
	}
}

// Record appends the (q vector, reward) example of the current turn after
// crediting the reward to the sufficiently old entries.
func (d *TDLambdaDataset) Record(agent core.TDAgent, state core.State, action core.Action, reward, decay float64, turn int) {
	q := agent.CreateQVector(state, action)
	for n := range d.entries {
		turnAdded := n + 1
		turnDiff := turn - turnAdded
		if turnDiff > d.lambda+1 {
			d.entries[n].Target += math.Pow(decay, float64(turnDiff)) * reward
		}
	}
	d.entries = append(d.entries, LabeledExample{Q: q, Target: reward})
	d.state = bufferAccumulating
}

func (d *TDLambdaDataset) Update(agent core.Agent, step *core.StepContext, t *core.Transition) error {
	tdAgent, ok := agent.(core.TDAgent)
	if !ok {
		return fmt.Errorf("td(lambda): %w", ErrUnsupportedAgent)
	}
	d.BeginTurn(step.Turn)
	d.Record(tdAgent, t.State, t.Action, t.Reward, tdAgent.DecayRate(), step.Turn)
	return nil
}

// Deploy splits the examples into inputs and targets and hands them to the
// agent. It can be called once per episode.
func (d *TDLambdaDataset) Deploy(agent core.Agent) error {
	tdAgent, ok := agent.(core.TDAgent)
	if !ok {
		return fmt.Errorf("td(lambda): %w", ErrUnsupportedAgent)
	}
	if d.state == bufferDeployed {
		return ErrAlreadyDeployed
	}
	x := make([]core.QVector, len(d.entries))
	y := make([]float64, len(d.entries))
	for i, e := range d.entries {
		x[i] = e.Q
		y[i] = e.Target
	}
	d.state = bufferDeployed
	return tdAgent.Learn(x, y)
}

func (d *TDLambdaDataset) Clear() {
	d.entries = make([]LabeledExample, 0)
	d.state = bufferEmpty
}

func (d *TDLambdaDataset) Len() int {
	return len(d.entries)
}

// Examples returns a copy of the examples recorded in the current episode
func (d *TDLambdaDataset) Examples() []LabeledExample {
	out := make([]LabeledExample, len(d.entries))
	copy(out, d.entries)
	return out
}

type TDLambdaDatasetConstructor struct {
	Lambda int
}

var _ core.DatasetConstructor = &TDLambdaDatasetConstructor{}

func NewTDLambdaDatasetConstructor(lambda int) *TDLambdaDatasetConstructor {
	return &TDLambdaDatasetConstructor{Lambda: lambda}
}

func (c *TDLambdaDatasetConstructor) NewDataset() core.Dataset {
	return NewTDLambdaDataset(c.Lambda)
}
