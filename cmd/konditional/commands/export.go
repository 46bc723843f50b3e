package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Print the current snapshot held by a running konditiond instance",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := client().Export(context.Background())
		if err != nil {
			return err
		}
		fmt.Println(result.Raw)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
