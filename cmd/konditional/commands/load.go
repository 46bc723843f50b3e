package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/konditional/konditional/internal/cliutil"
	"github.com/konditional/konditional/internal/codec"
)

var (
	loadProbe bool
	loadPatch bool
)

var loadCmd = &cobra.Command{
	Use:   "load <file>",
	Short: "Load a snapshot into a running konditiond namespace",
	Long: `Publish a snapshot document to a running server. With --probe, the
file is validated locally and nothing is sent; --patch sends it as a patch
document (a "flags" list upserted into, and a "removeKeys" list removed
from, the server's current configuration) instead of a full replacement.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read %s: %w", args[0], err)
		}

		if loadProbe {
			resolver, err := cliutil.DiscoverResolver(data)
			if err != nil {
				return err
			}
			if _, err := codec.Decode(data, resolver, codec.Options{}); err != nil {
				return fmt.Errorf("invalid snapshot: %w", err)
			}
			fmt.Println("probe OK, nothing sent")
			return nil
		}

		ctx := context.Background()
		c := client()
		var result struct {
			OK            bool
			FeatureCount  int
			Generation    uint64
			ConfigVersion string
		}
		if loadPatch {
			r, err := c.LoadPatch(ctx, data)
			if err != nil {
				return err
			}
			result.OK, result.FeatureCount, result.Generation, result.ConfigVersion = r.OK, r.FeatureCount, r.Generation, r.ConfigVersion
		} else {
			r, err := c.Load(ctx, data)
			if err != nil {
				return err
			}
			result.OK, result.FeatureCount, result.Generation, result.ConfigVersion = r.OK, r.FeatureCount, r.Generation, r.ConfigVersion
		}

		fmt.Printf("loaded: features=%d generation=%d configVersion=%s\n", result.FeatureCount, result.Generation, result.ConfigVersion)
		return nil
	},
}

func init() {
	loadCmd.Flags().BoolVar(&loadProbe, "probe", false, "validate locally without sending")
	loadCmd.Flags().BoolVar(&loadPatch, "patch", false, "send as a patch document (flags upserted, removeKeys removed)")
	rootCmd.AddCommand(loadCmd)
}
