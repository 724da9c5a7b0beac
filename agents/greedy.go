package agents

import (
	"math"

	"github.com/zeu5/rl-gyms/core"
)

// GreedyOpponent always plays the best scored legal action, the first one on ties
type GreedyOpponent struct {
	Score ScoreFunc
}

var _ core.Opponent = &GreedyOpponent{}

func NewGreedyOpponent(score ScoreFunc) *GreedyOpponent {
	return &GreedyOpponent{Score: score}
}

func (g *GreedyOpponent) Move(state core.State) core.Action {
	var best core.Action
	bestScore := math.Inf(-1)
	for _, a := range state.Actions() {
		if score := g.Score(state, a); score > bestScore {
			best = a
			bestScore = score
		}
	}
	return best
}
