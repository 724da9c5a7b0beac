package agents

import (
	"math/rand"
	"time"

	"github.com/zeu5/rl-gyms/core"
)

// TabularAgent is a Q-learning agent that learns from replayed batches of transitions
type TabularAgent struct {
	Alpha    float64
	Discount float64

	qTable *QTable
	rand   *rand.Rand
}

var _ core.ReplayAgent = &TabularAgent{}

func NewTabularAgent(alpha, discount float64, seed int64) *TabularAgent {
	return &TabularAgent{
		Alpha:    alpha,
		Discount: discount,
		qTable:   NewQTable(seed),
		rand:     rand.New(rand.NewSource(seed)),
	}
}

func (t *TabularAgent) QTable() *QTable {
	return t.qTable
}

func (t *TabularAgent) Play(state core.State, epsilon float64, avoidIllegal bool) core.Action {
	actions := core.CandidateActions(state, avoidIllegal)
	if len(actions) == 0 {
		return nil
	}
	if t.rand.Float64() < epsilon {
		return actions[t.rand.Intn(len(actions))]
	}

	actionsMap := make(map[string]core.Action)
	availableActions := make([]string, len(actions))
	for i, a := range actions {
		aHash := a.Hash()
		actionsMap[aHash] = a
		availableActions[i] = aHash
	}
	maxAction, _ := t.qTable.MaxAmong(state.Hash(), availableActions, 0)
	if maxAction == "" {
		return nil
	}
	return actionsMap[maxAction]
}

func (t *TabularAgent) LearnTransitions(transitions []*core.Transition) error {
	for _, tr := range transitions {
		stateHash := tr.State.Hash()
		actionHash := tr.Action.Hash()

		target := tr.Reward
		if !tr.Done {
			_, nextVal := t.qTable.Max(tr.NextState.Hash(), 0)
			target += t.Discount * nextVal
		}
		curVal := t.qTable.Get(stateHash, actionHash, 0)
		t.qTable.Set(stateHash, actionHash, (1-t.Alpha)*curVal+t.Alpha*target)
	}
	return nil
}

type TabularAgentConstructor struct {
	Alpha    float64
	Discount float64
	// Initial, when set, seeds every new agent with a copy of the table
	Initial *QTable
}

var _ core.AgentConstructor = &TabularAgentConstructor{}

func (c *TabularAgentConstructor) NewAgent() core.Agent {
	agent := NewTabularAgent(c.Alpha, c.Discount, time.Now().UnixNano())
	if c.Initial != nil {
		c.Initial.CopyInto(agent.qTable)
	}
	return agent
}
