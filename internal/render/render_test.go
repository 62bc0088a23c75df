package render

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/herkuenfte/zotpdf/internal/zotero"
)

type fakeSource struct {
	citations map[string]string
	asked     []string
}

func (f *fakeSource) Citations(_ context.Context, keys []string) map[string]string {
	f.asked = append(f.asked, keys...)
	out := map[string]string{}
	for _, k := range keys {
		if c, ok := f.citations[k]; ok {
			out[k] = c
		}
	}
	return out
}

func rec(key, title string, creators ...zotero.Creator) zotero.Record {
	return zotero.Record{Key: key, Data: &zotero.RecordData{ItemType: "book", Title: title, Creators: creators}}
}

func au(first, last string) zotero.Creator {
	return zotero.Creator{CreatorType: "author", FirstName: first, LastName: last}
}

func fixedNow() time.Time {
	return time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
}

func TestFallbackCitation(t *testing.T) {
	tests := []struct {
		name   string
		record zotero.Record
		want   string
	}{
		{
			name:   "one author",
			record: rec("K", "Herkunft", au("Jane", "Doe")),
			want:   "Doe, Jane. Herkunft.",
		},
		{
			name:   "missing first name",
			record: rec("K", "Herkunft", au("", "Doe")),
			want:   "Doe. Herkunft.",
		},
		{
			name:   "more than three authors",
			record: rec("K", "T", au("A", "One"), au("B", "Two"), au("C", "Three"), au("D", "Four")),
			want:   "One, A, Two, B, Three, C et al.. T.",
		},
		{
			name: "editors and nameless authors ignored",
			record: rec("K", "T",
				zotero.Creator{CreatorType: "editor", FirstName: "Ed", LastName: "Itor"},
				au("Only", "")),
			want: "Unknown author. T.",
		},
		{
			name:   "missing title",
			record: rec("K", "", au("Jane", "Doe")),
			want:   "Doe, Jane. No title.",
		},
		{
			name:   "no key",
			record: rec("", "T", au("Jane", "Doe")),
			want:   "No citation available",
		},
		{
			name:   "no data",
			record: zotero.Record{Key: "K"},
			want:   "No citation available",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FallbackCitation(tt.record))
		})
	}
}

func TestSortByTitle(t *testing.T) {
	records := []zotero.Record{
		rec("1", "beta"),
		{Key: "2"},
		rec("3", "Alpha"),
		rec("4", ""),
		rec("5", "Gamma"),
	}

	sorted := SortByTitle(records)

	var keys []string
	for _, r := range sorted {
		keys = append(keys, r.Key)
	}
	assert.Equal(t, []string{"4", "3", "1", "5", "2"}, keys)
	assert.Equal(t, "1", records[0].Key, "input is not reordered")
}

func TestSlugTitle(t *testing.T) {
	assert.Equal(t, "Jane Doe", SlugTitle("jane-doe"))
	assert.Equal(t, "Anna Lena Mann", SlugTitle("ANNA-LENA-MANN"))
	assert.Equal(t, "Müller", SlugTitle("müller"))
}

func TestRender_CitationsAndFallbacks(t *testing.T) {
	src := &fakeSource{citations: map[string]string{
		"A": `<div class="csl-entry">Doe, J. 2020. <i>Alpha</i>.</div>`,
	}}
	a := NewAssembler(src, Options{
		Style:      "chicago-author-date",
		Locale:     "de-DE",
		Heading:    "NETZWERK HERKÜNFTE",
		SiteTitle:  "Netzwerk Herkünfte",
		Stylesheet: "/etc/zotpdf/layout.css",
		Now:        fixedNow,
	})

	doc, err := a.Complete(context.Background(), []zotero.Record{
		rec("B", "Beta <script>", au("Richard", "Roe")),
		rec("A", "Alpha", au("Jane", "Doe")),
		{Key: "C"},
	})
	require.NoError(t, err)

	out := string(doc.HTML)
	assert.Equal(t, CompleteName, doc.Name)
	assert.Equal(t, 2, doc.Items)
	assert.Equal(t, "Complete Bibliography - All 3 items from the collection", doc.Subtitle)
	assert.ElementsMatch(t, []string{"A", "B"}, src.asked)

	assert.Contains(t, out, `<html lang="de-DE">`)
	assert.Contains(t, out, `<link rel="stylesheet" href="layout.css">`)
	assert.Contains(t, out, `<h1>NETZWERK<br>HERKÜNFTE</h1>`)
	assert.Contains(t, out, `<i>Alpha</i>`, "server citations are not escaped")
	assert.Contains(t, out, `Roe, Richard. Beta &lt;script&gt;.`, "fallback citations are escaped")
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "Generated on 2026-03-14 09:26:53 | 2 items | chicago-author-date style")
	assert.Less(t, strings.Index(out, `data-key="A"`), strings.Index(out, `data-key="B"`))
}

func TestPerAuthor(t *testing.T) {
	a := NewAssembler(nil, Options{Heading: "NETZWERK HERKÜNFTE", Now: fixedNow})

	doc, err := a.PerAuthor(context.Background(), "jane-doe", []zotero.Record{rec("A", "Alpha", au("Jane", "Doe"))})
	require.NoError(t, err)

	assert.Equal(t, "jane-doe", doc.Name)
	assert.Equal(t, "Jane Doe", doc.Title)
	assert.Equal(t, "Bibliography of Jane Doe", doc.Subtitle)
	assert.Contains(t, string(doc.HTML), "<title>Jane Doe</title>")
	assert.NotContains(t, string(doc.HTML), "<link", "no stylesheet configured")
	assert.Contains(t, string(doc.HTML), "Doe, Jane. Alpha.")
}

func TestRender_Empty(t *testing.T) {
	a := NewAssembler(&fakeSource{}, Options{Now: fixedNow})

	doc, err := a.Complete(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, doc.Items)
	assert.Contains(t, string(doc.HTML), "| 0 items |")
}
