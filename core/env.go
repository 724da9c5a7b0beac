package core

import (
	"context"
	"errors"
)

var ErrNoActions = errors.New("no actions available")

// Environment is a turn based game played by one learning agent against two
// fixed opponents. The opponents move inside Step.
type Environment interface {
	Reset(Opponent, Opponent) (State, error)
	Step(Action) (State, float64, bool, error)
	State() State
}

type State interface {
	Hash() string
	// Actions returns the legal actions at this state
	Actions() []Action
}

// ActionSpace is implemented by states that can also enumerate illegal
// actions. Agents that do not avoid illegal moves pick among these.
type ActionSpace interface {
	AllActions() []Action
}

type Action interface {
	Hash() string
}

// CandidateActions returns the actions an agent may choose from at the given state.
func CandidateActions(state State, avoidIllegal bool) []Action {
	if !avoidIllegal {
		if space, ok := state.(ActionSpace); ok {
			return space.AllActions()
		}
	}
	return state.Actions()
}

type EnvironmentConstructor interface {
	// NewEnvironment creates a new environment with the given instance number.
	NewEnvironment(int) Environment
}

type EpisodeContext struct {
	Context context.Context
	Episode int
	Run     int
	Epsilon float64

	Trace *Trace

	turns  int
	reward float64
}

func NewEpisodeContext(ctx context.Context) *EpisodeContext {
	return &EpisodeContext{
		Context: ctx,
		Trace:   NewTrace(),
	}
}

// Turns returns the number of turns played so far in the episode
func (e *EpisodeContext) Turns() int {
	return e.turns
}

// Reward returns the total reward accumulated so far in the episode
func (e *EpisodeContext) Reward() float64 {
	return e.reward
}

type StepContext struct {
	// Turn is 1-indexed
	Turn int
	*EpisodeContext
}
