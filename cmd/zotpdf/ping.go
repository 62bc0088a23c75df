package main

import (
	"context"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(pingCmd)
}

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that the Zotero API accepts the configured key",
	Args:  cobra.NoArgs,
	RunE:  runPing,
}

func runPing(cmd *cobra.Command, args []string) error {
	a := mustSetup()
	defer a.close()

	ref := a.cfg.Collection()
	if !a.client.TestConnection(context.Background(), ref) {
		exitWithError(ExitNetworkError, "cannot reach %s", ref)
	}

	if humanOutput {
		outputHuman("Connected to %s\n", ref)
	} else {
		outputJSON(StatusResponse{Status: "ok", Detail: ref.String()})
	}
	return nil
}
