package agents

import (
	"math"
	"math/rand/v2"

	"github.com/zeu5/rl-gyms/core"
	"gonum.org/v1/gonum/stat/sampleuv"
)

// ScoreFunc rates an action at a state, higher is better
type ScoreFunc func(core.State, core.Action) float64

// SoftmaxOpponent samples its moves according to the softmax of a fixed score
// with a temperature. Low temperatures play close to greedy.
type SoftmaxOpponent struct {
	Score       ScoreFunc
	Temperature float64

	rand rand.Source
}

var _ core.Opponent = &SoftmaxOpponent{}

func NewSoftmaxOpponent(score ScoreFunc, temperature float64, seed uint64) *SoftmaxOpponent {
	return &SoftmaxOpponent{
		Score:       score,
		Temperature: temperature,
		rand:        rand.NewPCG(seed, seed^0x9e3779b97f4a7c15),
	}
}

func (s *SoftmaxOpponent) Move(state core.State) core.Action {
	actions := state.Actions()
	if len(actions) == 0 {
		return nil
	}
	temperature := s.Temperature
	if temperature <= 0 {
		temperature = 1
	}

	vals := make([]float64, len(actions))
	largestValue := math.Inf(-1)
	for i, a := range actions {
		vals[i] = s.Score(state, a) / temperature
		if vals[i] > largestValue {
			largestValue = vals[i]
		}
	}

	// Normalizing
	sum := float64(0)
	for i := range vals {
		vals[i] = math.Exp(vals[i] - largestValue)
		sum += vals[i]
	}
	weights := make([]float64, len(actions))
	for i, v := range vals {
		weights[i] = v / sum
	}

	i, ok := sampleuv.NewWeighted(weights, s.rand).Take()
	if !ok {
		return nil
	}
	return actions[i]
}
