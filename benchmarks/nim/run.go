package nim

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"sort"
	"time"

	"github.com/zeu5/rl-gyms/agents"
	"github.com/zeu5/rl-gyms/analysis"
	"github.com/zeu5/rl-gyms/benchmarks/common"
	"github.com/zeu5/rl-gyms/core"
	"github.com/zeu5/rl-gyms/datasets"
	"github.com/zeu5/rl-gyms/evolve"
	"github.com/zeu5/rl-gyms/games/nim"
	"github.com/zeu5/rl-gyms/storage"
)

const (
	TDLambdaExperiment = "TDLambda"
	ReplayExperiment   = "Replay"
	BonusExperiment    = "ReplayBonus"
	RandomExperiment   = "Random"

	OutcomesAnalysis = "Outcomes"
	TracesAnalysis   = "Traces"
)

func gameConfig(flags *common.Flags) nim.Config {
	config := nim.DefaultConfig()
	config.Pile = flags.Pile
	config.MaxTake = flags.MaxTake
	return config
}

// Opponents returns a constructor of the two fixed opponents: a softmax
// player scoring moves with the game heuristic and either a uniform random
// or a greedy player.
func Opponents(flags *common.Flags) (core.OpponentsConstructor, error) {
	switch flags.SecondOpponent {
	case "", "random", "greedy":
	default:
		return nil, fmt.Errorf("unknown opponent: %s", flags.SecondOpponent)
	}
	return func() (core.Opponent, core.Opponent) {
		seed := uint64(time.Now().UnixNano())
		first := agents.NewSoftmaxOpponent(nim.Score, flags.Temperature, seed)
		if flags.SecondOpponent == "greedy" {
			return first, agents.NewGreedyOpponent(nim.Score)
		}
		return first, agents.NewRandomAgent()
	}, nil
}

func tdLambdaAgent(flags *common.Flags) *agents.LinearAgentConstructor {
	return &agents.LinearAgentConstructor{
		Features:     nim.Features,
		Size:         nim.FeatureSize,
		LearningRate: flags.LearningRate,
		Decay:        flags.Decay,
	}
}

func replayAgent(flags *common.Flags) (*agents.TabularAgentConstructor, error) {
	c := &agents.TabularAgentConstructor{
		Alpha:    flags.Alpha,
		Discount: flags.Discount,
	}
	if flags.LoadQTable != "" {
		initial := agents.NewQTable(0)
		if err := initial.Read(flags.LoadQTable); err != nil {
			return nil, fmt.Errorf("loading q table: %w", err)
		}
		c.Initial = initial
	}
	return c, nil
}

// PrepareTDLambdaExperiment sets up a linear agent learning from the TD(lambda) buffer
func PrepareTDLambdaExperiment(flags *common.Flags) (*core.Experiment, error) {
	opponents, err := Opponents(flags)
	if err != nil {
		return nil, err
	}
	o1, o2 := opponents()
	return &core.Experiment{
		Name:        TDLambdaExperiment,
		Agent:       tdLambdaAgent(flags),
		Environment: nim.NewEnv(gameConfig(flags)),
		Dataset:     datasets.NewTDLambdaDatasetConstructor(flags.Lambda),
		Opponent1:   o1,
		Opponent2:   o2,
	}, nil
}

// PrepareReplayExperiment sets up a tabular agent learning from the replay buffer
func PrepareReplayExperiment(flags *common.Flags) (*core.Experiment, error) {
	opponents, err := Opponents(flags)
	if err != nil {
		return nil, err
	}
	agent, err := replayAgent(flags)
	if err != nil {
		return nil, err
	}
	o1, o2 := opponents()
	return &core.Experiment{
		Name:        ReplayExperiment,
		Agent:       agent,
		Environment: nim.NewEnv(gameConfig(flags)),
		Dataset:     datasets.NewReplayDatasetConstructor(flags.ReplaySize, flags.ClearReplay),
		Opponent1:   o1,
		Opponent2:   o2,
	}, nil
}

// PrepareGymComparison wraps a single experiment so that its rewards and
// outcomes are saved like those of a comparison
func PrepareGymComparison(flags *common.Flags, exp *core.Experiment, store storage.Store) (*core.Comparison, *Analyses) {
	cmp := core.NewComparison()
	cmp.AddExperiment(exp)

	rewards := analysis.NewRewardComparator(store, 0)
	outcomes := analysis.NewOutcomeComparator(flags.SavePath)
	traces := analysis.NewTraceRecorder(flags.SavePath, flags.Episodes-flags.ShowEvery, analysis.IllegalMove)
	cmp.AddAnalysis(core.RewardsDataSet, nil, rewards)
	cmp.AddAnalysis(OutcomesAnalysis, analysis.NewOutcomeAnalyzer(), outcomes)
	cmp.AddAnalysis(TracesAnalysis, traces, analysis.NewNoOpComparator())
	return cmp, &Analyses{savers: []saver{rewards, outcomes, traces}}
}

// PrepareComparison runs both learning strategies, the replay agent with an
// exploration bonus and a random baseline side by side
func PrepareComparison(flags *common.Flags, store storage.Store) (*core.ParallelComparison, *Analyses, error) {
	opponents, err := Opponents(flags)
	if err != nil {
		return nil, nil, err
	}
	replay, err := replayAgent(flags)
	if err != nil {
		return nil, nil, err
	}
	cmp := core.NewParallelComparison()
	env := nim.NewEnvConstructor(gameConfig(flags))

	cmp.AddExperiment(&core.ParallelExperiment{
		Name:        TDLambdaExperiment,
		Environment: env,
		Agent:       tdLambdaAgent(flags),
		Dataset:     datasets.NewTDLambdaDatasetConstructor(flags.Lambda),
		Opponents:   opponents,
	})
	cmp.AddExperiment(&core.ParallelExperiment{
		Name:        ReplayExperiment,
		Environment: env,
		Agent:       replay,
		Dataset:     datasets.NewReplayDatasetConstructor(flags.ReplaySize, flags.ClearReplay),
		Opponents:   opponents,
	})
	cmp.AddExperiment(&core.ParallelExperiment{
		Name:        BonusExperiment,
		Environment: env,
		Agent: &agents.BonusAgentConstructor{
			Alpha:    flags.Alpha,
			Discount: flags.Discount,
			Bonus:    flags.Bonus,
		},
		Dataset:   datasets.NewReplayDatasetConstructor(flags.ReplaySize, flags.ClearReplay),
		Opponents: opponents,
	})
	cmp.AddExperiment(&core.ParallelExperiment{
		Name:        RandomExperiment,
		Environment: env,
		Agent:       &agents.RandomAgentConstructor{},
		Opponents:   opponents,
	})

	rewards := analysis.NewRewardComparatorConstructor(store)
	outcomes := analysis.NewOutcomeComparatorConstructor(flags.SavePath)
	traces := analysis.NewTraceRecorderConstructor(flags.SavePath, flags.Episodes-flags.ShowEvery, analysis.IllegalMove)
	cmp.AddAnalysis(core.RewardsDataSet, nil, rewards)
	cmp.AddAnalysis(OutcomesAnalysis, &analysis.OutcomeAnalyzerConstructor{}, outcomes)
	cmp.AddAnalysis(TracesAnalysis, traces, analysis.NewNoOpComparator())
	return cmp, &Analyses{savers: []saver{rewards, outcomes, traces}}, nil
}

type saver interface {
	Err() error
}

// Analyses are the analyses of a comparison that save their results to the
// store or under the save path
type Analyses struct {
	savers []saver
}

// Err joins the errors of the failed saves
func (a *Analyses) Err() error {
	errs := make([]error, 0, len(a.savers))
	for _, s := range a.savers {
		errs = append(errs, s.Err())
	}
	return errors.Join(errs...)
}

// SaveQTables writes the q table of every tabular agent in results to
// <SavePath>/<experiment>_qtable.jsonl and returns the written paths
func SaveQTables(flags *common.Flags, results map[string]*core.ExperimentResult) ([]string, error) {
	if err := os.MkdirAll(flags.SavePath, 0755); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)

	paths := make([]string, 0)
	for _, name := range names {
		r := results[name]
		if r == nil || r.IsError() {
			continue
		}
		agent, ok := r.Agent.(*agents.TabularAgent)
		if !ok {
			continue
		}
		p := path.Join(flags.SavePath, name+"_qtable.jsonl")
		if err := agent.QTable().Save(p); err != nil {
			return paths, fmt.Errorf("saving q table of %s: %w", name, err)
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// PrepareArena sets up the evolutionary tournament. Every generation's best
// genome is saved to the store under runID.
func PrepareArena(flags *common.Flags, store storage.Store, runID string) (*core.Arena, *evolve.Population, error) {
	opponents, err := Opponents(flags)
	if err != nil {
		return nil, nil, err
	}
	config, err := evolve.LoadConfig(flags.EvolveConfig, nim.FeatureSize)
	if err != nil {
		return nil, nil, err
	}
	population, err := evolve.NewPopulation(config)
	if err != nil {
		return nil, nil, fmt.Errorf("creating population: %w", err)
	}

	o1, o2 := opponents()
	arena := core.NewArena(
		flags.ArenaConfig(),
		nim.NewEnvConstructor(gameConfig(flags)),
		evolve.NewGenomeAgentConstructor(nim.Features),
		o1, o2,
	)
	arena.OnGeneration(func(gen int, best core.Genome) error {
		return store.SaveGeneration(context.Background(), &storage.GenerationRecord{
			RunID:      runID,
			Generation: gen,
			GenomeKey:  best.Key(),
			Fitness:    best.Fitness(),
		})
	})
	return arena, population, nil
}
