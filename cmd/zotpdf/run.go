package main

import (
	"context"
	"os"
	"os/signal"
	"slices"

	"github.com/spf13/cobra"

	"github.com/herkuenfte/zotpdf/internal/author"
	"github.com/herkuenfte/zotpdf/internal/config"
	"github.com/herkuenfte/zotpdf/internal/pdf"
	"github.com/herkuenfte/zotpdf/internal/pipeline"
	"github.com/herkuenfte/zotpdf/internal/publish"
	"github.com/herkuenfte/zotpdf/internal/render"
)

var (
	runOutput  string
	runWorkDir string
)

func init() {
	runCmd.Flags().StringVar(&runOutput, "output", "", "Override general.output (complete, per-author, both)")
	runCmd.Flags().StringVar(&runWorkDir, "work-dir", "", "Keep intermediate PDFs in this directory")
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fetch, render and publish the bibliographies",
	Long: `Run the whole pipeline: fetch every record of the configured collection,
match records to authors, render the bibliographies, convert them to PDF and
publish them under $WP_UPLOADS_PATH/sites/$SITE_ID/$BIB_ROOT.

Nothing is published unless every document converted successfully.

Examples:
  zotpdf run
  zotpdf run --output both --human`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	a := mustSetup()
	defer a.close()

	if runOutput != "" {
		if !slices.Contains(config.ValidOutputs, runOutput) {
			exitWithError(ExitConfigError, "invalid --output: %s (valid: %v)", runOutput, config.ValidOutputs)
		}
		a.cfg.General.Output = runOutput
		if err := a.cfg.Validate(); err != nil {
			exitWithError(ExitConfigError, "%v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	svc := newService(a)
	a.logger.Info("starting bibliography generation", "collection", a.cfg.Collection().String(), "output", a.cfg.General.Output)

	report, err := svc.Run(ctx)
	if err != nil {
		exitWithErr(err)
	}

	if humanOutput {
		printRunReport(report)
	} else {
		outputJSON(report)
	}
	return nil
}

// newService wires the pipeline from the loaded configuration.
func newService(a *app) *pipeline.Service {
	g := a.cfg.General
	stylesheet := config.ExpandPath(g.Stylesheet)
	ref := a.cfg.Collection()

	matcher := author.NewMatcher(a.cfg.Authors, g.IncludeCreatorTypes, author.WithLogger(a.logger))
	assembler := render.NewAssembler(a.client.CitationLookup(ref, g.CitationStyle, g.Locale), render.Options{
		Style:      g.CitationStyle,
		Locale:     g.Locale,
		Heading:    g.Heading,
		SiteTitle:  g.SiteTitle,
		Stylesheet: stylesheet,
		Logger:     a.logger,
	})
	converter := pdf.NewWeasyPrint(stylesheet)
	publisher := publish.New(a.env.PermalinkPath(), a.env.HistoryPath(), publish.WithLogger(a.logger))

	return pipeline.NewService(a.client, matcher, assembler, converter, publisher, pipeline.Config{
		Collection:  ref,
		PageSize:    a.cfg.Zotero.PageSize,
		Complete:    a.cfg.WantsComplete(),
		PerAuthor:   a.cfg.WantsPerAuthor(),
		HistoryKeep: g.HistoryKeep,
		WorkDir:     runWorkDir,
	}, pipeline.WithLogger(a.logger))
}

func printRunReport(r *pipeline.Report) {
	outputHuman("Run %s in %s\n\n", r.Status, formatDuration(r.FinishedAt.Sub(r.StartedAt)))
	outputHuman("Items fetched:   %s\n", formatCount(r.Items))
	outputHuman("Authors matched: %d of %d (%s items)\n\n",
		r.Stats.AuthorsWithItems, r.Stats.TotalAuthors, formatCount(r.Stats.TotalMatchedItems))

	for _, d := range r.Documents {
		state := "published"
		if d.Publish != nil && d.Publish.Unchanged {
			state = "unchanged"
		}
		outputHuman("  %-24s %4d items %3d pages  %s\n", d.Name, d.Items, d.Pages, state)
		if d.Publish != nil {
			outputHuman("  %-24s %s (%s)\n", "", d.Publish.Permalink, formatBytes(d.Publish.Size))
		}
	}
}
