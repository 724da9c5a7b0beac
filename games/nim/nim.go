// Package nim is a three player take-away game. Players take turns removing
// between 1 and MaxTake tokens from a pile and whoever takes the last token
// wins. The learning agent always moves first, followed by the two opponents.
package nim

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/zeu5/rl-gyms/core"
)

var (
	ErrEpisodeDone         = errors.New("episode is already over")
	ErrIllegalOpponentMove = errors.New("opponent played an illegal move")
	ErrNotReset            = errors.New("environment was not reset")
)

type Config struct {
	Pile       int
	MaxTake    int
	WinReward  float64
	LossReward float64
}

func DefaultConfig() Config {
	return Config{
		Pile:       21,
		MaxTake:    3,
		WinReward:  5,
		LossReward: -5,
	}
}

type Take int

var _ core.Action = Take(0)

func (t Take) Hash() string {
	return strconv.Itoa(int(t))
}

type State struct {
	Pile    int
	MaxTake int
	// Turn counts the agent's moves in the episode
	Turn int
}

var (
	_ core.State       = &State{}
	_ core.ActionSpace = &State{}
)

func (s *State) Hash() string {
	return strconv.Itoa(s.Pile)
}

func (s *State) Actions() []core.Action {
	n := min(s.MaxTake, s.Pile)
	actions := make([]core.Action, n)
	for i := 0; i < n; i++ {
		actions[i] = Take(i + 1)
	}
	return actions
}

func (s *State) AllActions() []core.Action {
	actions := make([]core.Action, s.MaxTake)
	for i := 0; i < s.MaxTake; i++ {
		actions[i] = Take(i + 1)
	}
	return actions
}

func (s *State) legal(t Take) bool {
	return t >= 1 && int(t) <= s.MaxTake && int(t) <= s.Pile
}

func (s *State) copy() *State {
	return &State{Pile: s.Pile, MaxTake: s.MaxTake, Turn: s.Turn}
}

type Env struct {
	config    Config
	state     *State
	opponents [2]core.Opponent
	done      bool
}

var _ core.Environment = &Env{}

func NewEnv(config Config) *Env {
	return &Env{config: config}
}

func (e *Env) Reset(opponent1, opponent2 core.Opponent) (core.State, error) {
	if e.config.Pile <= 0 || e.config.MaxTake <= 0 {
		return nil, fmt.Errorf("invalid nim config: pile %d, max take %d", e.config.Pile, e.config.MaxTake)
	}
	e.state = &State{Pile: e.config.Pile, MaxTake: e.config.MaxTake}
	e.opponents = [2]core.Opponent{opponent1, opponent2}
	e.done = false
	return e.state.copy(), nil
}

func (e *Env) State() core.State {
	if e.state == nil {
		return nil
	}
	return e.state.copy()
}

// Step plays the agent's move and then both opponents' moves. An illegal move
// by the agent loses the game.
func (e *Env) Step(action core.Action) (core.State, float64, bool, error) {
	if e.state == nil {
		return nil, 0, false, ErrNotReset
	}
	if e.done {
		return nil, 0, false, ErrEpisodeDone
	}
	take, ok := action.(Take)
	if !ok {
		return nil, 0, false, fmt.Errorf("unknown action %v", action)
	}
	e.state.Turn++
	if !e.state.legal(take) {
		e.done = true
		return e.state.copy(), e.config.LossReward, true, nil
	}
	e.state.Pile -= int(take)
	if e.state.Pile == 0 {
		e.done = true
		return e.state.copy(), e.config.WinReward, true, nil
	}

	for i, o := range e.opponents {
		if o == nil {
			continue
		}
		move, ok := o.Move(e.state.copy()).(Take)
		if !ok || !e.state.legal(move) {
			return nil, 0, false, fmt.Errorf("opponent %d: %w", i+1, ErrIllegalOpponentMove)
		}
		e.state.Pile -= int(move)
		if e.state.Pile == 0 {
			e.done = true
			return e.state.copy(), e.config.LossReward, true, nil
		}
	}
	return e.state.copy(), 0, false, nil
}

type EnvConstructor struct {
	Config Config
}

var _ core.EnvironmentConstructor = &EnvConstructor{}

func NewEnvConstructor(config Config) *EnvConstructor {
	return &EnvConstructor{Config: config}
}

func (c *EnvConstructor) NewEnvironment(_ int) core.Environment {
	return NewEnv(c.Config)
}
