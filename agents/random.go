package agents

import (
	"math/rand"
	"time"

	"github.com/zeu5/rl-gyms/core"
)

// RandomAgent picks uniformly among the candidate actions. It can play as the
// learning side (without learning anything) or as an opponent.
type RandomAgent struct {
	rand *rand.Rand
}

var (
	_ core.Agent    = &RandomAgent{}
	_ core.Opponent = &RandomAgent{}
)

func NewRandomAgent() *RandomAgent {
	return NewSeededRandomAgent(time.Now().UnixNano())
}

func NewSeededRandomAgent(seed int64) *RandomAgent {
	return &RandomAgent{
		rand: rand.New(rand.NewSource(seed)),
	}
}

func (r *RandomAgent) Play(state core.State, _ float64, avoidIllegal bool) core.Action {
	return r.pick(core.CandidateActions(state, avoidIllegal))
}

func (r *RandomAgent) Move(state core.State) core.Action {
	return r.pick(state.Actions())
}

func (r *RandomAgent) pick(actions []core.Action) core.Action {
	if len(actions) == 0 {
		return nil
	}
	return actions[r.rand.Intn(len(actions))]
}

type RandomAgentConstructor struct{}

var _ core.AgentConstructor = &RandomAgentConstructor{}

func (r *RandomAgentConstructor) NewAgent() core.Agent {
	return NewRandomAgent()
}
