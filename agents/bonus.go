package agents

import (
	"math/rand"
	"time"

	"github.com/zeu5/rl-gyms/core"
)

// BonusAgent is a Q-learning agent that adds a count based exploration bonus
// to the replayed rewards. The bonus of a (state, action) pair decays as
// Bonus/visits.
type BonusAgent struct {
	Alpha    float64
	Discount float64
	Bonus    float64

	qTable *QTable
	visits *QTable
	rand   *rand.Rand
}

var _ core.ReplayAgent = &BonusAgent{}

func NewBonusAgent(alpha, discount, bonus float64, seed int64) *BonusAgent {
	return &BonusAgent{
		Alpha:    alpha,
		Discount: discount,
		Bonus:    bonus,
		qTable:   NewQTable(seed),
		visits:   NewQTable(seed),
		rand:     rand.New(rand.NewSource(seed)),
	}
}

func (b *BonusAgent) QTable() *QTable {
	return b.qTable
}

// Visits returns how many times the pair was learnt from
func (b *BonusAgent) Visits(state, action string) int {
	return int(b.visits.Get(state, action, 0))
}

func (b *BonusAgent) Play(state core.State, epsilon float64, avoidIllegal bool) core.Action {
	actions := core.CandidateActions(state, avoidIllegal)
	if len(actions) == 0 {
		return nil
	}
	if b.rand.Float64() < epsilon {
		return actions[b.rand.Intn(len(actions))]
	}

	actionsMap := make(map[string]core.Action)
	availableActions := make([]string, len(actions))
	for i, a := range actions {
		aHash := a.Hash()
		actionsMap[aHash] = a
		availableActions[i] = aHash
	}
	// unseen pairs are optimistic
	maxAction, _ := b.qTable.MaxAmong(state.Hash(), availableActions, b.Bonus)
	if maxAction == "" {
		return nil
	}
	return actionsMap[maxAction]
}

func (b *BonusAgent) LearnTransitions(transitions []*core.Transition) error {
	for _, tr := range transitions {
		stateHash := tr.State.Hash()
		actionHash := tr.Action.Hash()
		t := b.visits.Get(stateHash, actionHash, 0) + 1
		b.visits.Set(stateHash, actionHash, t)

		target := tr.Reward + b.Bonus/t
		if !tr.Done {
			_, nextVal := b.qTable.Max(tr.NextState.Hash(), b.Bonus)
			target += b.Discount * nextVal
		}
		curVal := b.qTable.Get(stateHash, actionHash, b.Bonus)
		b.qTable.Set(stateHash, actionHash, (1-b.Alpha)*curVal+b.Alpha*target)
	}
	return nil
}

type BonusAgentConstructor struct {
	Alpha    float64
	Discount float64
	Bonus    float64
}

var _ core.AgentConstructor = &BonusAgentConstructor{}

func (c *BonusAgentConstructor) NewAgent() core.Agent {
	return NewBonusAgent(c.Alpha, c.Discount, c.Bonus, time.Now().UnixNano())
}
