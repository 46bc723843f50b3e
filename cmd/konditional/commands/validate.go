package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/konditional/konditional/internal/cliutil"
	"github.com/konditional/konditional/internal/codec"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate a snapshot file without contacting a server",
	Long: `Decode a snapshot document exactly as konditiond would, surfacing the
same typed parse errors the load endpoint returns, entirely offline.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read %s: %w", args[0], err)
		}

		resolver, err := cliutil.DiscoverResolver(data)
		if err != nil {
			return err
		}

		config, err := codec.Decode(data, resolver, codec.Options{})
		if err != nil {
			return fmt.Errorf("invalid snapshot: %w", err)
		}

		fmt.Printf("OK: %d feature(s) validated\n", config.Len())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
