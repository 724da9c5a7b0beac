package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/zeu5/rl-gyms/benchmarks/nim"
	"github.com/zeu5/rl-gyms/core"
)

const printFrequency = 200 * time.Millisecond

func GymCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gym",
		Short: "Train a single agent against two fixed opponents",
	}

	cmd.AddCommand(
		gymTDLambdaCommand(),
		gymReplayCommand(),
	)

	return cmd
}

func gymTDLambdaCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tdlambda",
		Short: "Train a linear agent with the TD(lambda) credit assignment buffer",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGym(nim.PrepareTDLambdaExperiment(flags))
		},
	}
	addLearnFlags(cmd)
	cmd.Flags().IntVar(&flags.Lambda, "lambda", flags.Lambda, "Number of turns a reward is not credited back")
	return cmd
}

func gymReplayCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Train a tabular agent with the replay buffer",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGym(nim.PrepareReplayExperiment(flags))
		},
	}
	addLearnFlags(cmd)
	cmd.Flags().IntVar(&flags.ReplaySize, "replay-size", flags.ReplaySize, "Capacity of the replay buffer")
	cmd.Flags().BoolVar(&flags.ClearReplay, "clear-replay", flags.ClearReplay, "Clear the replay buffer after every episode")
	addQTableFlags(cmd)
	return cmd
}

func addQTableFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&flags.SaveQTable, "save-qtable", flags.SaveQTable, "Save the trained q table under the save path")
	cmd.Flags().StringVar(&flags.LoadQTable, "load-qtable", flags.LoadQTable, "Q table file the tabular agents start from")
}

func addLearnFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&flags.LearningRate, "learning-rate", flags.LearningRate, "Learning rate of the linear agent")
	cmd.Flags().Float64Var(&flags.Decay, "decay", flags.Decay, "Reward decay rate")
	cmd.Flags().Float64Var(&flags.Alpha, "alpha", flags.Alpha, "Learning rate of the tabular agent")
	cmd.Flags().Float64Var(&flags.Discount, "discount", flags.Discount, "Discount of the tabular agent")
}

func runGym(exp *core.Experiment, err error) error {
	if err != nil {
		return err
	}
	ctx, done := signalContext()
	defer done()

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	cmp, analyses := nim.PrepareGymComparison(flags, exp, store)
	writer, stop := progressWriter(ctx)
	results := cmp.Run(ctx, flags.NumRuns, flags.GymConfig(), writer)
	stop()

	waitIfPaused(os.Stdin, os.Stdout)
	printSummary(os.Stdout, results)
	return finish(analyses, results)
}

// finish saves the q tables when asked to and reports the first failure
func finish(analyses *nim.Analyses, results map[string]*core.ExperimentResult) error {
	if err := analyses.Err(); err != nil {
		return fmt.Errorf("saving results: %w", err)
	}
	if flags.SaveQTable {
		paths, err := nim.SaveQTables(flags, results)
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Fprintf(os.Stdout, "Saved q table to %s\n", p)
		}
	}
	return firstError(results)
}

func firstError(results map[string]*core.ExperimentResult) error {
	for name, r := range results {
		if r.IsError() {
			return fmt.Errorf("experiment %s: %w", name, r.Error)
		}
	}
	return nil
}
