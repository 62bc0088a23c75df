// Package main provides the zotpdf CLI entry point.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool
	configPath  string
	envFile     string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "zotpdf",
	Short: "Publish Zotero group bibliographies as PDF",
	Long: `zotpdf fetches the records of a Zotero group library, matches them to the
configured authors, renders citation-annotated bibliographies and publishes
them as PDF files into a WordPress uploads tree.

Settings are read from config.yml; paths and the API key come from the
environment (or a .env file). All commands output JSON by default.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.yml (default $ZOTPDF_CONFIG, ./config.yml, then ~/.config/zotpdf/config.yml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Load environment variables from this file instead of ./.env")
	rootCmd.Version = Version
}
