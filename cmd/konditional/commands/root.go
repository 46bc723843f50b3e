package commands

import (
	"github.com/spf13/cobra"

	"github.com/konditional/konditional/internal/apiclient"
	"github.com/konditional/konditional/internal/cliutil"
)

var (
	baseURL  string
	adminKey string
	format   string
)

var rootCmd = &cobra.Command{
	Use:   "konditional",
	Short: "Operate a konditiond feature-flag service",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", envOr("KONDITIONAL_BASE_URL", "http://localhost:8080"), "konditiond base URL")
	rootCmd.PersistentFlags().StringVar(&adminKey, "admin-key", envOr("KONDITIONAL_ADMIN_KEY", ""), "admin key for mutating operations")
	rootCmd.PersistentFlags().StringVar(&format, "format", "table", "output format: table, json, yaml")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func client() *apiclient.Client {
	return apiclient.New(baseURL, adminKey)
}

func outputFormat() cliutil.Format {
	return cliutil.Format(format)
}
