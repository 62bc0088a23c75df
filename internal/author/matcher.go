package author

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/herkuenfte/zotpdf/internal/zotero"
)

// Config is a configured person of interest.
type Config struct {
	Slug        string   `yaml:"slug" json:"slug"`
	Identifiers []string `yaml:"identifiers" json:"identifiers"`
}

// Match records why one record was credited to one author.
type Match struct {
	Record     zotero.Record  `json:"record"`
	Creator    zotero.Creator `json:"creator"`
	Identifier string         `json:"identifier"`
	Rule       Rule           `json:"rule"`
}

// Result maps every configured author slug to its matches, in record order.
// Authors without matches are present with an empty slice.
type Result map[string][]Match

// Records returns the matched records for slug.
func (r Result) Records(slug string) []zotero.Record {
	matches := r[slug]
	records := make([]zotero.Record, len(matches))
	for i, m := range matches {
		records[i] = m.Record
	}
	return records
}

// Matcher partitions records by configured author.
type Matcher struct {
	authors      []Config
	creatorTypes []string
	logger       *slog.Logger
}

// MatcherOption configures a Matcher.
type MatcherOption func(*Matcher)

// WithLogger sets the logger used for match events.
func WithLogger(l *slog.Logger) MatcherOption {
	return func(m *Matcher) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewMatcher creates a matcher for authors that only considers creators whose
// type is in creatorTypes.
func NewMatcher(authors []Config, creatorTypes []string, opts ...MatcherOption) *Matcher {
	m := &Matcher{
		authors:      authors,
		creatorTypes: creatorTypes,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Slugs returns the configured author slugs in configuration order.
func (m *Matcher) Slugs() []string {
	slugs := make([]string, len(m.authors))
	for i, a := range m.authors {
		slugs[i] = a.Slug
	}
	return slugs
}

// MatchAll credits each record to every author one of its relevant creators
// matches. A record is credited to an author at most once. Records without a
// data payload are skipped.
func (m *Matcher) MatchAll(records []zotero.Record) Result {
	result := make(Result, len(m.authors))
	for _, a := range m.authors {
		result[a.Slug] = []Match{}
	}

	m.logger.Info("starting author matching", "items", len(records), "authors", len(m.authors))

	for _, record := range records {
		if !record.HasData() {
			continue
		}

		relevant := m.filterCreators(record.Creators())
		if len(relevant) == 0 {
			continue
		}

		for _, a := range m.authors {
			for _, creator := range relevant {
				identifier, rule, ok := matchCreator(creator, a.Identifiers)
				if !ok {
					continue
				}

				result[a.Slug] = append(result[a.Slug], Match{
					Record:     record,
					Creator:    creator,
					Identifier: identifier,
					Rule:       rule,
				})
				m.logger.Debug("matched item",
					"title", record.Title(),
					"author", a.Slug,
					"identifier", identifier,
					"rule", rule)
				break
			}
		}
	}

	for _, a := range m.authors {
		m.logger.Info("author matched items", "author", a.Slug, "items", len(result[a.Slug]))
	}

	return result
}

// filterCreators keeps creators whose type is in the allow-list.
func (m *Matcher) filterCreators(creators []zotero.Creator) []zotero.Creator {
	var out []zotero.Creator
	for _, c := range creators {
		if slices.Contains(m.creatorTypes, c.CreatorType) {
			out = append(out, c)
		}
	}
	return out
}

// ValidateConfigs rejects author configurations that would match
// unpredictably: missing or duplicate slugs, and empty or blank identifiers.
func ValidateConfigs(authors []Config) error {
	seen := make(map[string]bool, len(authors))
	for i, a := range authors {
		if a.Slug == "" {
			return fmt.Errorf("author entry %d has no slug", i+1)
		}
		if seen[a.Slug] {
			return fmt.Errorf("duplicate author slug %q", a.Slug)
		}
		seen[a.Slug] = true

		if len(a.Identifiers) == 0 {
			return fmt.Errorf("author %q has no identifiers", a.Slug)
		}
		for j, id := range a.Identifiers {
			if normalize(id) == "" {
				return fmt.Errorf("author %q: identifier %d is blank", a.Slug, j+1)
			}
		}
	}
	return nil
}
