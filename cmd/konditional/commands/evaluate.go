package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/konditional/konditional/internal/apiclient"
	"github.com/konditional/konditional/internal/cliutil"
)

var evaluateContextJSON string

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <feature>",
	Short: "Evaluate a feature against a running konditiond instance",
	Long: `Evaluate a feature by its identifier (e.g. feature::core::dark-mode)
against the context given as a JSON object via --context, e.g.:

  konditional evaluate feature::core::dark-mode --context '{"stableId":"ab12","locale":"en-US"}'

Recognized context keys: stableId, locale, platform, appVersion, and any
other key is passed through as a targeting axis.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ec, err := parseEvaluateContext(evaluateContextJSON)
		if err != nil {
			return err
		}

		result, err := client().Evaluate(context.Background(), args[0], ec)
		if err != nil {
			return err
		}

		switch outputFormat() {
		case cliutil.FormatYAML:
			return cliutil.Print(result, cliutil.FormatYAML)
		case cliutil.FormatJSON, cliutil.FormatTable, "":
			return cliutil.Print(result, cliutil.FormatJSON)
		default:
			return cliutil.Print(result, outputFormat())
		}
	},
}

func parseEvaluateContext(raw string) (apiclient.EvaluateContext, error) {
	ec := apiclient.EvaluateContext{Axes: map[string]string{}}
	if raw == "" {
		return ec, nil
	}

	var fields map[string]string
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return ec, fmt.Errorf("--context must be a JSON object of string values: %w", err)
	}

	for key, val := range fields {
		switch key {
		case "stableId":
			ec.StableID = val
		case "locale":
			ec.Locale = val
		case "platform":
			ec.Platform = val
		case "appVersion":
			ec.AppVersion = val
		default:
			ec.Axes[key] = val
		}
	}
	return ec, nil
}

func init() {
	evaluateCmd.Flags().StringVar(&evaluateContextJSON, "context", "", "JSON object describing the targeting context")
	rootCmd.AddCommand(evaluateCmd)
}
