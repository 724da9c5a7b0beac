package cmd

import (
	"github.com/spf13/cobra"
	"github.com/zeu5/rl-gyms/benchmarks/common"
)

var (
	flags       *common.Flags = common.DefaultFlags()
	savePath    string
	pile        int
	maxTake     int
	temperature float64
	opponent    string

	numRuns      int
	episodes     int
	showEvery    int
	epsilon      float64
	training     bool
	avoidIllegal bool

	storeKind   string
	parallelism int
	pause       bool
)

func AddFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&savePath, "save-path", flags.SavePath, "Path to save results")
	cmd.PersistentFlags().IntVar(&pile, "pile", flags.Pile, "Number of tokens in the pile")
	cmd.PersistentFlags().IntVar(&maxTake, "max-take", flags.MaxTake, "Maximum number of tokens taken per move")
	cmd.PersistentFlags().Float64Var(&temperature, "temperature", flags.Temperature, "Temperature of the softmax opponent")
	cmd.PersistentFlags().StringVar(&opponent, "second-opponent", flags.SecondOpponent, "Second opponent (random or greedy)")

	cmd.PersistentFlags().IntVar(&numRuns, "num-runs", flags.NumRuns, "Number of runs")
	cmd.PersistentFlags().IntVar(&episodes, "episodes", flags.Episodes, "Number of episodes")
	cmd.PersistentFlags().IntVar(&showEvery, "show-every", flags.ShowEvery, "Episodes per reporting window")
	cmd.PersistentFlags().Float64Var(&epsilon, "epsilon", flags.Epsilon, "Base exploration rate")
	cmd.PersistentFlags().BoolVar(&training, "training", flags.Training, "Whether the agent learns")
	cmd.PersistentFlags().BoolVar(&avoidIllegal, "avoid-illegal", flags.AvoidIllegal, "Whether agents only pick legal actions")

	cmd.PersistentFlags().StringVar(&storeKind, "store", flags.Store, "Result store backend (json or sqlite)")
	cmd.PersistentFlags().IntVar(&parallelism, "parallelism", flags.Parallelism, "Number of parallel experiments")
	cmd.PersistentFlags().BoolVar(&pause, "pause", flags.Pause, "Wait for enter before printing the summary")
}

func UpdateFlags() {
	flags.SavePath = savePath
	flags.Pile = pile
	flags.MaxTake = maxTake
	flags.Temperature = temperature
	flags.SecondOpponent = opponent

	flags.NumRuns = numRuns
	flags.Episodes = episodes
	flags.ShowEvery = showEvery
	flags.Epsilon = epsilon
	flags.Training = training
	flags.AvoidIllegal = avoidIllegal

	flags.Store = storeKind
	flags.Parallelism = parallelism
	flags.Pause = pause
}
