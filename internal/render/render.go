// Package render assembles citation-annotated HTML bibliographies from Zotero records.
package render

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"html/template"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/herkuenfte/zotpdf/internal/zotero"
)

const (
	// CompleteName is the document name of the whole-collection bibliography.
	CompleteName = "complete"

	// MaxFallbackAuthors is how many authors a fallback citation lists before "et al.".
	MaxFallbackAuthors = 3

	noCitation    = "No citation available"
	unknownAuthor = "Unknown author"
	noTitleSort   = "zzz_no_title"
	timeLayout    = "2006-01-02 15:04:05"
)

// CitationSource supplies server-rendered citations by item key. Keys without
// a citation are absent from the returned map.
type CitationSource interface {
	Citations(ctx context.Context, keys []string) map[string]string
}

// Options configures an Assembler.
type Options struct {
	Style      string           // Citation style named in the footer
	Locale     string           // BCP 47 tag for the html lang attribute
	Heading    string           // Page heading; words are set on separate lines
	SiteTitle  string           // Title of the whole-collection document
	Stylesheet string           // Stylesheet linked from the document head
	Now        func() time.Time // Clock for the footer timestamp
	Logger     *slog.Logger
}

// Document is a rendered bibliography ready for conversion.
type Document struct {
	Name     string `json:"name"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Items    int    `json:"items"`
	HTML     []byte `json:"-"`
}

// Assembler turns record sets into HTML documents.
type Assembler struct {
	source CitationSource
	opts   Options
	logger *slog.Logger
}

// NewAssembler creates an assembler that asks source for citations.
func NewAssembler(source CitationSource, opts Options) *Assembler {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Assembler{source: source, opts: opts, logger: logger}
}

// Complete renders every record of the collection.
func (a *Assembler) Complete(ctx context.Context, records []zotero.Record) (*Document, error) {
	subtitle := fmt.Sprintf("Complete Bibliography - All %d items from the collection", len(records))
	return a.Render(ctx, CompleteName, a.opts.SiteTitle, subtitle, records)
}

// PerAuthor renders the records matched to one author.
func (a *Assembler) PerAuthor(ctx context.Context, slug string, records []zotero.Record) (*Document, error) {
	title := SlugTitle(slug)
	return a.Render(ctx, slug, title, "Bibliography of "+title, records)
}

// Render builds a document named name from records, sorted by title.
// Records without a data payload are left out.
func (a *Assembler) Render(ctx context.Context, name, title, subtitle string, records []zotero.Record) (*Document, error) {
	a.logger.Info("rendering items to HTML", "document", name, "items", len(records))

	items := a.prepareItems(ctx, SortByTitle(records))

	data := templateData{
		Locale:        a.opts.Locale,
		Title:         title,
		Subtitle:      subtitle,
		HeadingLines:  strings.Fields(a.opts.Heading),
		Stylesheet:    stylesheetHref(a.opts.Stylesheet),
		Items:         items,
		TotalItems:    len(items),
		CitationStyle: a.opts.Style,
		GeneratedAt:   a.opts.Now().Format(timeLayout),
	}

	var buf bytes.Buffer
	if err := compiledTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("rendering %s: %w", name, err)
	}

	a.logger.Info("HTML rendering complete", "document", name, "bytes", buf.Len())
	return &Document{
		Name:     name,
		Title:    title,
		Subtitle: subtitle,
		Items:    len(items),
		HTML:     buf.Bytes(),
	}, nil
}

// stylesheetHref links the stylesheet by file name; the converter resolves
// it relative to the stylesheet's directory.
func stylesheetHref(path string) string {
	if path == "" {
		return ""
	}
	return filepath.Base(path)
}

// prepareItems attaches a citation to every record with data.
func (a *Assembler) prepareItems(ctx context.Context, records []zotero.Record) []item {
	var keys []string
	for _, r := range records {
		if r.HasData() && r.Key != "" {
			keys = append(keys, r.Key)
		}
	}

	citations := map[string]string{}
	if a.source != nil && len(keys) > 0 {
		citations = a.source.Citations(ctx, keys)
	}

	items := make([]item, 0, len(records))
	for _, r := range records {
		if !r.HasData() {
			continue
		}

		it := item{Key: r.Key, Title: r.Title()}
		if c, ok := citations[r.Key]; ok && r.Key != "" {
			it.Citation = template.HTML(c)
		} else {
			fallback := FallbackCitation(r)
			a.logger.Debug("using fallback citation", "key", r.Key, "citation", fallback)
			it.Citation = template.HTML(html.EscapeString(fallback))
			it.Fallback = true
		}
		items = append(items, it)
	}
	return items
}

// FallbackCitation builds a plain "Authors. Title." citation for records the
// server could not format.
func FallbackCitation(r zotero.Record) string {
	if r.Key == "" || !r.HasData() {
		return noCitation
	}

	var names []string
	for _, c := range r.Creators() {
		if c.CreatorType != "author" || c.LastName == "" {
			continue
		}
		names = append(names, strings.Trim(c.LastName+", "+c.FirstName, ", "))
	}

	authors := unknownAuthor
	if len(names) > 0 {
		authors = strings.Join(names[:min(len(names), MaxFallbackAuthors)], ", ")
		if len(names) > MaxFallbackAuthors {
			authors += " et al."
		}
	}

	return fmt.Sprintf("%s. %s.", authors, r.Title())
}

// SortByTitle returns a copy of records ordered case-insensitively by title.
// Records without data sort last; an empty title sorts first. Ties keep
// their input order.
func SortByTitle(records []zotero.Record) []zotero.Record {
	sorted := make([]zotero.Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sortKey(sorted[i]) < sortKey(sorted[j])
	})
	return sorted
}

func sortKey(r zotero.Record) string {
	if !r.HasData() {
		return noTitleSort
	}
	return strings.ToLower(r.Data.Title)
}

// SlugTitle turns "jane-doe" into "Jane Doe".
func SlugTitle(slug string) string {
	return cases.Title(language.Und).String(strings.ReplaceAll(slug, "-", " "))
}
