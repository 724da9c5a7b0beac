package core

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type GymConfig struct {
	// Epsilon is the base exploration rate fed to the scheduler
	Epsilon      float64
	AvoidIllegal bool
	Episodes     int
	// ShowEvery is the size of the rolling window for aggregated stats
	ShowEvery int
	Training  bool
}

func DefaultGymConfig() *GymConfig {
	return &GymConfig{
		Epsilon:      0.5,
		AvoidIllegal: true,
		Episodes:     10000,
		ShowEvery:    1000,
		Training:     true,
	}
}

func (c *GymConfig) validate() error {
	if c.ShowEvery <= 0 {
		return fmt.Errorf("%w: show every should be positive, got %d", ErrInvalidConfig, c.ShowEvery)
	}
	if c.Episodes < 0 {
		return fmt.Errorf("%w: negative episodes %d", ErrInvalidConfig, c.Episodes)
	}
	return nil
}

// Gym drives one agent through repeated episodes against two fixed opponents.
// When training, every transition is routed to the dataset which is deployed
// to the agent at the end of the episode.
type Gym struct {
	Name string

	config    *GymConfig
	dataset   Dataset
	analyzers map[string]Analyzer
	writer    io.Writer
	run       int
}

// NewGym creates a gym. A nil dataset runs the episodes without learning.
func NewGym(config *GymConfig, dataset Dataset) *Gym {
	return &Gym{
		config:    config,
		dataset:   dataset,
		analyzers: make(map[string]Analyzer),
	}
}

// WithWriter sets the writer that receives a progress line after every episode
func (g *Gym) WithWriter(w io.Writer) *Gym {
	g.writer = w
	return g
}

func (g *Gym) AddAnalyzer(name string, a Analyzer) {
	g.analyzers[name] = a
}

func (g *Gym) Epsilon(episode int) float64 {
	return Epsilon(g.config.Epsilon, episode, g.config.Training)
}

type GymResult struct {
	Episodes   int
	TotalTurns int
	Stats      []AggregatedStats

	Datasets map[string]DataSet
}

// AverageReward is the average reward of the last closed reporting window
// only, it is not an average over the whole run. Episodes after the last
// window boundary are not counted.
func (r *GymResult) AverageReward() float64 {
	if len(r.Stats) == 0 {
		return 0
	}
	return r.Stats[len(r.Stats)-1].Avg
}

// WinRate maps AverageReward to a win ratio, so it also covers the last
// closed window only
func (r *GymResult) WinRate() float64 {
	return WinRate(r.AverageReward())
}

// Simulate plays the configured number of episodes. Any error returned by the
// environment, the agent or the dataset stops the simulation.
func (g *Gym) Simulate(ctx context.Context, agent Agent, env Environment, opponent1, opponent2 Opponent) (*GymResult, error) {
	if err := g.config.validate(); err != nil {
		return nil, err
	}
	result := &GymResult{
		Stats:    make([]AggregatedStats, 0),
		Datasets: make(map[string]DataSet),
	}
	learning := g.config.Training && g.dataset != nil
	rewards := make([]float64, 0, g.config.ShowEvery)

	for episode := 0; episode < g.config.Episodes; episode++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		eCtx := NewEpisodeContext(ctx)
		eCtx.Run = g.run
		eCtx.Episode = episode
		eCtx.Epsilon = g.Epsilon(episode)

		if err := g.runEpisode(eCtx, agent, env, opponent1, opponent2, learning); err != nil {
			return result, fmt.Errorf("episode %d: %w", episode, err)
		}
		result.Episodes++
		result.TotalTurns += eCtx.turns

		rewards = append(rewards, eCtx.reward)
		if episode%g.config.ShowEvery == 0 {
			result.Stats = append(result.Stats, newAggregatedStats(episode, rewards))
			rewards = rewards[:0]
		}

		for _, a := range g.analyzers {
			a.Analyze(eCtx, eCtx.Trace)
		}

		if g.writer != nil {
			fmt.Fprintf(
				g.writer,
				"Experiment: %s, Run %d, Episode %s/%s, Epsilon: %.4f, Turns: %s, Window avg: %.3f\n",
				g.Name, g.run, humanize.Comma(int64(episode+1)), humanize.Comma(int64(g.config.Episodes)),
				eCtx.Epsilon, humanize.Comma(int64(result.TotalTurns)), result.AverageReward(),
			)
		}
	}

	for name, a := range g.analyzers {
		result.Datasets[name] = a.DataSet()
	}
	return result, nil
}

func (g *Gym) runEpisode(eCtx *EpisodeContext, agent Agent, env Environment, opponent1, opponent2 Opponent, learning bool) error {
	state, err := env.Reset(opponent1, opponent2)
	if err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	for done := false; !done; {
		eCtx.turns++
		sCtx := &StepContext{Turn: eCtx.turns, EpisodeContext: eCtx}

		action := agent.Play(state, eCtx.Epsilon, g.config.AvoidIllegal)
		if action == nil {
			return fmt.Errorf("turn %d: %w", sCtx.Turn, ErrNoActions)
		}
		nextState, reward, stepDone, err := env.Step(action)
		if err != nil {
			return fmt.Errorf("turn %d: %w", sCtx.Turn, err)
		}
		eCtx.reward += reward

		transition := &Transition{
			State:     state,
			Action:    action,
			Reward:    reward,
			NextState: nextState,
			Done:      stepDone,
			Turn:      sCtx.Turn,
		}
		eCtx.Trace.AddStep(transition)
		if learning {
			if err := g.dataset.Update(agent, sCtx, transition); err != nil {
				return fmt.Errorf("turn %d: %w", sCtx.Turn, err)
			}
		}
		state = nextState
		done = stepDone
	}

	if learning {
		if err := g.dataset.Deploy(agent); err != nil {
			return fmt.Errorf("deploy: %w", err)
		}
		g.dataset.Clear()
	}
	return nil
}
