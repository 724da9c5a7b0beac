package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/zeu5/rl-gyms/benchmarks/nim"
	"github.com/zeu5/rl-gyms/storage"
)

func ArenaCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "arena",
		Short: "Evolve a population of agents in a tournament",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, done := signalContext()
			defer done()

			store, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			runID := storage.NewRunID()
			arena, population, err := nim.PrepareArena(flags, store, runID)
			if err != nil {
				return err
			}
			writer, stop := progressWriter(ctx)
			winner, err := arena.WithWriter(writer).Simulate(ctx, population, flags.Generations)
			stop()
			if err != nil {
				return err
			}

			waitIfPaused(os.Stdin, os.Stdout)
			fmt.Fprintf(os.Stdout, "Run %s\nBest genome: %d, Fitness: %.3f\n", runID, winner.Key(), winner.Fitness())
			return nil
		},
	}
	cmd.Flags().IntVar(&flags.Generations, "generations", flags.Generations, "Maximum number of generations")
	cmd.Flags().IntVar(&flags.GamesPerGen, "games-per-gen", flags.GamesPerGen, "Rounds played by every genome per generation")
	cmd.Flags().IntVar(&flags.MaxRoundMoves, "max-round-moves", flags.MaxRoundMoves, "Moves after which a round is stopped")
	cmd.Flags().StringVar(&flags.EvolveConfig, "config", flags.EvolveConfig, "INI file configuring the population")
	return cmd
}
