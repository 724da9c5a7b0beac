package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/zeu5/rl-gyms/benchmarks/nim"
)

func CompareCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare the TD(lambda), replay, bonus and random agents in parallel",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, done := signalContext()
			defer done()

			store, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			cmp, analyses, err := nim.PrepareComparison(flags, store)
			if err != nil {
				return err
			}
			results := cmp.Run(ctx, flags.NumRuns, flags.GymConfig(), flags.Parallelism)

			waitIfPaused(os.Stdin, os.Stdout)
			printSummary(os.Stdout, results)
			return finish(analyses, results)
		},
	}
	addLearnFlags(cmd)
	cmd.Flags().IntVar(&flags.Lambda, "lambda", flags.Lambda, "Number of turns a reward is not credited back")
	cmd.Flags().IntVar(&flags.ReplaySize, "replay-size", flags.ReplaySize, "Capacity of the replay buffer")
	cmd.Flags().Float64Var(&flags.Bonus, "bonus", flags.Bonus, "Exploration bonus of the bonus agent")
	cmd.Flags().BoolVar(&flags.ClearReplay, "clear-replay", flags.ClearReplay, "Clear the replay buffer after every episode")
	addQTableFlags(cmd)
	return cmd
}
