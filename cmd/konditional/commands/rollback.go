package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var rollbackSteps int

var rollbackCmd = &cobra.Command{
	Use:   "rollback",
	Short: "Roll a namespace back to a prior configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := client().Rollback(context.Background(), rollbackSteps)
		if err != nil {
			return err
		}
		fmt.Printf("rolled back: generation=%d configVersion=%s\n", result.Generation, result.ConfigVersion)
		return nil
	},
}

func init() {
	rollbackCmd.Flags().IntVar(&rollbackSteps, "steps", 1, "number of load generations to roll back")
	rootCmd.AddCommand(rollbackCmd)
}
