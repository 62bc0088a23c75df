package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/herkuenfte/zotpdf/internal/author"
	"github.com/herkuenfte/zotpdf/internal/pipeline"
)

var matchShowMatches bool

func init() {
	matchCmd.Flags().BoolVar(&matchShowMatches, "matches", false, "Include every match with the rule that produced it")
	rootCmd.AddCommand(matchCmd)
}

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Match fetched records to the configured authors",
	Long: `Fetch the collection, match it against the configured authors and print
per-author statistics. Nothing is rendered or published.

Examples:
  zotpdf match
  zotpdf match --matches --human`,
	Args: cobra.NoArgs,
	RunE: runMatch,
}

// MatchResult is the response for the match command.
type MatchResult struct {
	Items   int                      `json:"items"`
	Stats   author.Stats             `json:"stats"`
	Matches map[string][]MatchDetail `json:"matches,omitempty"`
}

// MatchDetail describes why a record was credited to an author.
type MatchDetail struct {
	Key        string      `json:"key"`
	Title      string      `json:"title"`
	Creator    string      `json:"creator"`
	Identifier string      `json:"identifier"`
	Rule       author.Rule `json:"rule"`
}

func runMatch(cmd *cobra.Command, args []string) error {
	a := mustSetup()
	defer a.close()

	matcher := author.NewMatcher(a.cfg.Authors, a.cfg.General.IncludeCreatorTypes, author.WithLogger(a.logger))
	svc := pipeline.NewService(a.client, matcher, nil, nil, nil, pipeline.Config{
		Collection: a.cfg.Collection(),
		PageSize:   a.cfg.Zotero.PageSize,
	}, pipeline.WithLogger(a.logger))

	records, result, err := svc.Match(context.Background())
	if err != nil {
		exitWithErr(err)
	}

	out := MatchResult{Items: len(records), Stats: author.Summarize(result)}
	if matchShowMatches {
		out.Matches = matchDetails(result)
	}

	if humanOutput {
		outputHuman("%s records, %d of %d authors matched (%s items)\n\n",
			formatCount(out.Items), out.Stats.AuthorsWithItems, out.Stats.TotalAuthors, formatCount(out.Stats.TotalMatchedItems))
		for _, slug := range matcher.Slugs() {
			outputHuman("%-30s %4d\n", slug, out.Stats.Breakdown[slug].ItemCount)
			for _, m := range out.Matches[slug] {
				outputHuman("    %-10s %-10s %s\n", m.Key, m.Rule, truncateString(m.Title, MatchTitleMaxLen))
			}
		}
		return nil
	}

	outputJSON(out)
	return nil
}

func matchDetails(result author.Result) map[string][]MatchDetail {
	details := make(map[string][]MatchDetail, len(result))
	for slug, matches := range result {
		list := make([]MatchDetail, 0, len(matches))
		for _, m := range matches {
			list = append(list, MatchDetail{
				Key:        m.Record.Key,
				Title:      m.Record.Title(),
				Creator:    m.Creator.FullName(),
				Identifier: m.Identifier,
				Rule:       m.Rule,
			})
		}
		details[slug] = list
	}
	return details
}
