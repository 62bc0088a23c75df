package author

// Stats summarizes a Result.
type Stats struct {
	TotalAuthors      int                    `json:"total_authors"`
	AuthorsWithItems  int                    `json:"authors_with_items"`
	TotalMatchedItems int                    `json:"total_matched_items"`
	Breakdown         map[string]AuthorStats `json:"author_breakdown"`
}

// AuthorStats is the per-author part of Stats.
type AuthorStats struct {
	ItemCount int            `json:"item_count"`
	ItemTypes map[string]int `json:"item_types"`
}

// Summarize computes statistics over a match result.
func Summarize(result Result) Stats {
	stats := Stats{
		TotalAuthors: len(result),
		Breakdown:    make(map[string]AuthorStats, len(result)),
	}

	for slug, matches := range result {
		if len(matches) > 0 {
			stats.AuthorsWithItems++
		}
		stats.TotalMatchedItems += len(matches)

		types := make(map[string]int)
		for _, m := range matches {
			types[m.Record.ItemType()]++
		}
		stats.Breakdown[slug] = AuthorStats{
			ItemCount: len(matches),
			ItemTypes: types,
		}
	}

	return stats
}
