package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func RootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rl-gyms",
		Short: "Train and evaluate agents on turn based games",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			UpdateFlags()
			if err := flags.Record(); err != nil {
				return fmt.Errorf("recording flags: %w", err)
			}
			return nil
		},
	}
	AddFlags(cmd)

	cmd.AddCommand(
		GymCommand(),
		ArenaCommand(),
		CompareCommand(),
	)

	return cmd
}
