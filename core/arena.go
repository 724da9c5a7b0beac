package core

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// DefaultMaxRoundMoves bounds the length of a tournament round so that an
// environment that never terminates cannot stall a generation.
const DefaultMaxRoundMoves = 50

// Genome is an evolvable agent parameterization. The fitness is owned by the
// genome and is only mutated by the arena, through the agent wrapping it.
type Genome interface {
	Key() int
	Fitness() float64
	SetFitness(float64)
}

type GenomeEntry struct {
	ID     int
	Genome Genome
}

// GenomeAgent plays on behalf of a genome and credits its rewards to it
type GenomeAgent interface {
	Play(state State, avoidIllegal bool) Action
	UpdateFitness(float64)
}

type GenomeAgentConstructor interface {
	NewAgent(genome Genome, config interface{}) GenomeAgent
}

// FitnessFunc evaluates a generation and assigns a fitness to every genome
type FitnessFunc func(genomes []GenomeEntry, config interface{}) error

// Population is the evolutionary driver that owns selection, reproduction and
// termination. RunGeneration returns a non nil genome once a winner is found.
type Population interface {
	RunGeneration(FitnessFunc) (Genome, error)
	Best() Genome
}

type ArenaConfig struct {
	GamesPerGen   int
	AvoidIllegal  bool
	MaxRoundMoves int
}

func DefaultArenaConfig() *ArenaConfig {
	return &ArenaConfig{
		GamesPerGen:   5,
		AvoidIllegal:  true,
		MaxRoundMoves: DefaultMaxRoundMoves,
	}
}

// Arena scores a population by simultaneous play: every genome gets its own
// agent and environment and all of them play the same rounds side by side.
type Arena struct {
	config       *ArenaConfig
	environments EnvironmentConstructor
	agents       GenomeAgentConstructor
	opponent1    Opponent
	opponent2    Opponent
	writer       io.Writer
	listeners    []GenerationListener
}

// GenerationListener is notified with the best genome after every generation
type GenerationListener func(generation int, best Genome) error

func NewArena(config *ArenaConfig, environments EnvironmentConstructor, agents GenomeAgentConstructor, opponent1, opponent2 Opponent) *Arena {
	return &Arena{
		config:       config,
		environments: environments,
		agents:       agents,
		opponent1:    opponent1,
		opponent2:    opponent2,
	}
}

func (a *Arena) WithWriter(w io.Writer) *Arena {
	a.writer = w
	return a
}

func (a *Arena) OnGeneration(l GenerationListener) {
	a.listeners = append(a.listeners, l)
}

type arenaPlayer struct {
	agent GenomeAgent
	env   Environment
}

// EvalGenomes is a FitnessFunc. Fitness accumulates over all the rounds of the
// generation and is never reset between rounds.
func (a *Arena) EvalGenomes(genomes []GenomeEntry, config interface{}) error {
	maxMoves := a.config.MaxRoundMoves
	if maxMoves <= 0 {
		maxMoves = DefaultMaxRoundMoves
	}

	players := make([]*arenaPlayer, len(genomes))
	for i, entry := range genomes {
		entry.Genome.SetFitness(0)
		players[i] = &arenaPlayer{
			agent: a.agents.NewAgent(entry.Genome, config),
			env:   a.environments.NewEnvironment(i),
		}
	}

	for round := 0; round < a.config.GamesPerGen; round++ {
		for i, p := range players {
			if _, err := p.env.Reset(a.opponent1, a.opponent2); err != nil {
				return fmt.Errorf("round %d, genome %d: reset: %w", round, genomes[i].ID, err)
			}
		}

		active := make([]int, len(players))
		for i := range players {
			active[i] = i
		}
		for moves := 0; len(active) > 0 && moves < maxMoves; moves++ {
			stillActive := active[:0]
			for _, i := range active {
				p := players[i]
				action := p.agent.Play(p.env.State(), a.config.AvoidIllegal)
				if action == nil {
					return fmt.Errorf("round %d, genome %d: %w", round, genomes[i].ID, ErrNoActions)
				}
				_, reward, done, err := p.env.Step(action)
				if err != nil {
					return fmt.Errorf("round %d, genome %d: step: %w", round, genomes[i].ID, err)
				}
				p.agent.UpdateFitness(reward)
				if !done {
					stillActive = append(stillActive, i)
				}
			}
			active = stillActive
		}
	}
	return nil
}

// Simulate runs the population for at most the given number of generations
// and returns the winner, or the best genome seen when no winner was found.
func (a *Arena) Simulate(ctx context.Context, population Population, generations int) (Genome, error) {
	for gen := 0; gen < generations; gen++ {
		select {
		case <-ctx.Done():
			return population.Best(), ctx.Err()
		default:
		}
		winner, err := population.RunGeneration(a.EvalGenomes)
		if err != nil {
			return population.Best(), fmt.Errorf("generation %d: %w", gen, err)
		}
		if best := population.Best(); best != nil {
			if a.writer != nil {
				fmt.Fprintf(a.writer, "Generation %d/%d, Best genome: %d, Fitness: %.3f\n", gen+1, generations, best.Key(), best.Fitness())
			}
			for _, l := range a.listeners {
				if err := l(gen, best); err != nil {
					return best, fmt.Errorf("generation %d: %w", gen, err)
				}
			}
		}
		if winner != nil {
			return winner, nil
		}
	}
	best := population.Best()
	if best == nil {
		return nil, errors.New("no genome evaluated")
	}
	return best, nil
}
