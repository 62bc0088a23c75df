package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/herkuenfte/zotpdf/internal/zotero"
)

func init() {
	rootCmd.AddCommand(fetchCmd)
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch all records of the configured collection",
	Long: `Fetch every record of the configured group or collection and print it.

Examples:
  zotpdf fetch > records.json
  zotpdf fetch --human`,
	Args: cobra.NoArgs,
	RunE: runFetch,
}

// FetchResult is the response for the fetch command.
type FetchResult struct {
	Collection string          `json:"collection"`
	Count      int             `json:"count"`
	Records    []zotero.Record `json:"records"`
}

func runFetch(cmd *cobra.Command, args []string) error {
	a := mustSetup()
	defer a.close()

	ref := a.cfg.Collection()
	records, err := a.client.FetchAll(context.Background(), ref, a.cfg.Zotero.PageSize)
	if err != nil {
		exitWithErr(err)
	}
	if records == nil {
		records = []zotero.Record{}
	}

	if humanOutput {
		outputHuman("%s records in %s\n\n", formatCount(len(records)), ref)
		for _, r := range records {
			outputHuman("%-10s v%-6d %-18s %s\n", r.Key, r.Version, r.ItemType(), truncateString(r.Title(), FetchTitleMaxLen))
		}
		return nil
	}

	outputJSON(FetchResult{Collection: ref.String(), Count: len(records), Records: records})
	return nil
}
