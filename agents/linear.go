package agents

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/zeu5/rl-gyms/core"
	"gonum.org/v1/gonum/floats"
)

// FeatureFunc derives the q vector of a (state, action) pair
type FeatureFunc func(core.State, core.Action) core.QVector

// LinearAgent estimates action values as a dot product of weights and q
// vectors. It learns the labelled examples of forward TD(lambda) with plain SGD.
type LinearAgent struct {
	Weights      []float64
	LearningRate float64
	Decay        float64

	features FeatureFunc
	rand     *rand.Rand
}

var _ core.TDAgent = &LinearAgent{}

func NewLinearAgent(features FeatureFunc, size int, learningRate, decay float64, seed int64) *LinearAgent {
	return &LinearAgent{
		Weights:      make([]float64, size),
		LearningRate: learningRate,
		Decay:        decay,
		features:     features,
		rand:         rand.New(rand.NewSource(seed)),
	}
}

func (l *LinearAgent) Value(state core.State, action core.Action) float64 {
	return floats.Dot(l.Weights, l.features(state, action))
}

func (l *LinearAgent) Play(state core.State, epsilon float64, avoidIllegal bool) core.Action {
	actions := core.CandidateActions(state, avoidIllegal)
	if len(actions) == 0 {
		return nil
	}
	if l.rand.Float64() < epsilon {
		return actions[l.rand.Intn(len(actions))]
	}
	var best core.Action
	bestVal := math.Inf(-1)
	for _, a := range actions {
		if v := l.Value(state, a); v > bestVal {
			best = a
			bestVal = v
		}
	}
	return best
}

func (l *LinearAgent) CreateQVector(state core.State, action core.Action) core.QVector {
	return l.features(state, action)
}

func (l *LinearAgent) DecayRate() float64 {
	return l.Decay
}

func (l *LinearAgent) Learn(x []core.QVector, y []float64) error {
	if len(x) != len(y) {
		return fmt.Errorf("learn: %d inputs for %d targets", len(x), len(y))
	}
	for i, q := range x {
		if len(q) != len(l.Weights) {
			return fmt.Errorf("learn: q vector of size %d, expected %d", len(q), len(l.Weights))
		}
		pred := floats.Dot(l.Weights, q)
		floats.AddScaled(l.Weights, l.LearningRate*(y[i]-pred), q)
	}
	return nil
}

type LinearAgentConstructor struct {
	Features     FeatureFunc
	Size         int
	LearningRate float64
	Decay        float64
}

var _ core.AgentConstructor = &LinearAgentConstructor{}

func (c *LinearAgentConstructor) NewAgent() core.Agent {
	return NewLinearAgent(c.Features, c.Size, c.LearningRate, c.Decay, time.Now().UnixNano())
}
