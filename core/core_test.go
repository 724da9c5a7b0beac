package core

import (
	"strconv"
)

type stubState int

func (s stubState) Hash() string { return strconv.Itoa(int(s)) }

func (s stubState) Actions() []Action { return []Action{stubAction(0)} }

type stubAction int

func (a stubAction) Hash() string { return strconv.Itoa(int(a)) }

// stubEnv ends every episode after `length` steps, paying `reward` on each step
type stubEnv struct {
	length int
	reward float64

	steps  int
	resets int
}

func (e *stubEnv) Reset(Opponent, Opponent) (State, error) {
	e.steps = 0
	e.resets++
	return stubState(0), nil
}

func (e *stubEnv) Step(Action) (State, float64, bool, error) {
	e.steps++
	return stubState(e.steps), e.reward, e.steps >= e.length, nil
}

func (e *stubEnv) State() State { return stubState(e.steps) }

type stubEnvConstructor struct {
	length int
	reward float64
	envs   []*stubEnv
}

func (c *stubEnvConstructor) NewEnvironment(int) Environment {
	env := &stubEnv{length: c.length, reward: c.reward}
	c.envs = append(c.envs, env)
	return env
}

type stubAgent struct {
	epsilons []float64
}

func (a *stubAgent) Play(_ State, epsilon float64, _ bool) Action {
	a.epsilons = append(a.epsilons, epsilon)
	return stubAction(0)
}

// stubDataset records the calls made by the gym
type stubDataset struct {
	turns    []int
	deploys  int
	clears   int
	failWith error
}

func (d *stubDataset) Update(_ Agent, step *StepContext, _ *Transition) error {
	d.turns = append(d.turns, step.Turn)
	return d.failWith
}

func (d *stubDataset) Deploy(Agent) error {
	d.deploys++
	return nil
}

func (d *stubDataset) Clear() {
	d.clears++
}
