package main

import (
	"github.com/spf13/cobra"

	"github.com/herkuenfte/zotpdf/internal/pdf"
)

var inspectTextPages int

func init() {
	inspectCmd.Flags().IntVar(&inspectTextPages, "text", 0, "Also extract the text of the first N pages")
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <pdf>",
	Short: "Show page count and text of a generated PDF",
	Long: `Show page count, size and first-page text of a generated PDF.

Examples:
  zotpdf inspect permalink/complete.pdf
  zotpdf inspect permalink/complete.pdf --text 2`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

// InspectResult is the response for the inspect command.
type InspectResult struct {
	*pdf.Info
	Text string `json:"text,omitempty"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	info, err := pdf.Inspect(args[0])
	if err != nil {
		exitWithErr(err)
	}

	result := InspectResult{Info: info}
	if inspectTextPages > 0 {
		text, err := pdf.ExtractText(args[0], inspectTextPages)
		if err != nil {
			exitWithError(ExitPDFError, "extracting text: %v", err)
		}
		result.Text = text
	}

	if humanOutput {
		outputHuman("%s\n  pages: %d\n  size:  %s\n", info.Path, info.Pages, formatBytes(info.Size))
		if info.FirstPageText != "" {
			outputHuman("  first page: %s\n", truncateString(info.FirstPageText, FetchTitleMaxLen))
		}
		if result.Text != "" {
			outputHuman("\n%s\n", result.Text)
		}
		return nil
	}

	outputJSON(result)
	return nil
}
