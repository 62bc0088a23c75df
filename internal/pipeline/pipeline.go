// Package pipeline wires fetch, match, render, convert and publish into one run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/herkuenfte/zotpdf/internal/author"
	"github.com/herkuenfte/zotpdf/internal/pdf"
	"github.com/herkuenfte/zotpdf/internal/publish"
	"github.com/herkuenfte/zotpdf/internal/render"
	"github.com/herkuenfte/zotpdf/internal/zotero"
)

// ErrConnectionFailed indicates the Zotero connectivity probe failed.
var ErrConnectionFailed = errors.New("failed to connect to Zotero API")

// Run statuses.
const (
	StatusCompleted = "COMPLETED"
	StatusFailed    = "FAILED"
)

// Fetcher retrieves the record set.
type Fetcher interface {
	TestConnection(ctx context.Context, ref zotero.CollectionRef) bool
	FetchAll(ctx context.Context, ref zotero.CollectionRef, pageSize int) ([]zotero.Record, error)
}

// Renderer assembles HTML documents.
type Renderer interface {
	Complete(ctx context.Context, records []zotero.Record) (*render.Document, error)
	PerAuthor(ctx context.Context, slug string, records []zotero.Record) (*render.Document, error)
}

// Publisher installs converted PDFs.
type Publisher interface {
	Publish(src, name string) (*publish.Result, error)
	Prune(name string, keep int) ([]string, error)
}

// Config selects what a run produces.
type Config struct {
	Collection  zotero.CollectionRef
	PageSize    int
	Complete    bool   // Render the whole collection
	PerAuthor   bool   // Render one document per author with matches
	HistoryKeep int    // History copies kept per document; <= 0 keeps all
	WorkDir     string // Scratch directory for PDFs; a temp dir when empty
}

// Report summarizes a run.
type Report struct {
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	Status     string           `json:"status"`
	Items      int              `json:"items"`
	Stats      author.Stats     `json:"stats"`
	Documents  []DocumentReport `json:"documents"`
	Error      string           `json:"error,omitempty"`
}

// DocumentReport describes one produced document.
type DocumentReport struct {
	Name    string          `json:"name"`
	Title   string          `json:"title"`
	Items   int             `json:"items"`
	Pages   int             `json:"pages"`
	Publish *publish.Result `json:"publish,omitempty"`
}

// Service runs the pipeline.
type Service struct {
	fetcher   Fetcher
	matcher   *author.Matcher
	renderer  Renderer
	converter pdf.Converter
	publisher Publisher
	inspect   func(path string) (*pdf.Info, error)
	cfg       Config
	logger    *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithInspector replaces the PDF check run before publishing (for testing).
func WithInspector(fn func(path string) (*pdf.Info, error)) Option {
	return func(s *Service) {
		s.inspect = fn
	}
}

// NewService creates a pipeline from its collaborators.
func NewService(fetcher Fetcher, matcher *author.Matcher, renderer Renderer, converter pdf.Converter, publisher Publisher, cfg Config, opts ...Option) *Service {
	s := &Service{
		fetcher:   fetcher,
		matcher:   matcher,
		renderer:  renderer,
		converter: converter,
		publisher: publisher,
		inspect:   pdf.Inspect,
		cfg:       cfg,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Match fetches the collection and partitions it by author.
func (s *Service) Match(ctx context.Context) ([]zotero.Record, author.Result, error) {
	if !s.fetcher.TestConnection(ctx, s.cfg.Collection) {
		return nil, nil, ErrConnectionFailed
	}

	s.logger.Info("fetching data from Zotero", "collection", s.cfg.Collection.String())
	records, err := s.fetcher.FetchAll(ctx, s.cfg.Collection, s.cfg.PageSize)
	if err != nil {
		return nil, nil, fmt.Errorf("fetching records: %w", err)
	}
	if len(records) == 0 {
		s.logger.Warn("no items retrieved from Zotero")
	}

	return records, s.matcher.MatchAll(records), nil
}

// Run executes the whole pipeline. Documents are published only after every
// one of them converted successfully; a failed run publishes nothing.
func (s *Service) Run(ctx context.Context) (report *Report, err error) {
	report = &Report{StartedAt: time.Now()}
	defer func() {
		report.FinishedAt = time.Now()
		if err != nil {
			report.Status = StatusFailed
			report.Error = err.Error()
			s.logger.Error("run failed", "error", err)
			return
		}
		report.Status = StatusCompleted
		s.logger.Info("run completed", "documents", len(report.Documents), "duration", report.FinishedAt.Sub(report.StartedAt))
	}()

	records, result, err := s.Match(ctx)
	if err != nil {
		return report, err
	}
	report.Items = len(records)
	report.Stats = author.Summarize(result)
	s.logger.Info("author statistics",
		"authors", report.Stats.TotalAuthors,
		"authors_with_items", report.Stats.AuthorsWithItems,
		"matched_items", report.Stats.TotalMatchedItems)

	docs, err := s.renderAll(ctx, records, result)
	if err != nil {
		return report, err
	}

	workDir := s.cfg.WorkDir
	if workDir == "" {
		workDir, err = os.MkdirTemp("", "zotpdf-")
		if err != nil {
			return report, fmt.Errorf("creating work directory: %w", err)
		}
		defer os.RemoveAll(workDir)
	}

	converted := make([]string, len(docs))
	for i, doc := range docs {
		out := filepath.Join(workDir, doc.Name+".pdf")
		s.logger.Info("creating PDF", "document", doc.Name, "output", out)
		if err := s.converter.Convert(ctx, doc.HTML, out); err != nil {
			return report, fmt.Errorf("converting %s: %w", doc.Name, err)
		}

		info, err := s.inspect(out)
		if err != nil {
			return report, fmt.Errorf("checking %s: %w", doc.Name, err)
		}
		s.logger.Info("PDF created", "document", doc.Name, "pages", info.Pages, "size", info.Size)

		converted[i] = out
		report.Documents = append(report.Documents, DocumentReport{
			Name:  doc.Name,
			Title: doc.Title,
			Items: doc.Items,
			Pages: info.Pages,
		})
	}

	for i, doc := range docs {
		res, err := s.publisher.Publish(converted[i], doc.Name)
		if err != nil {
			return report, fmt.Errorf("publishing %s: %w", doc.Name, err)
		}
		report.Documents[i].Publish = res

		if _, err := s.publisher.Prune(doc.Name, s.cfg.HistoryKeep); err != nil {
			s.logger.Warn("pruning history failed", "document", doc.Name, "error", err)
		}
	}

	return report, nil
}

// renderAll assembles the documents selected by the config.
func (s *Service) renderAll(ctx context.Context, records []zotero.Record, result author.Result) ([]*render.Document, error) {
	var docs []*render.Document

	if s.cfg.Complete {
		doc, err := s.renderer.Complete(ctx, records)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	if s.cfg.PerAuthor {
		for _, slug := range s.matcher.Slugs() {
			matched := result.Records(slug)
			if len(matched) == 0 {
				s.logger.Info("skipping author without items", "author", slug)
				continue
			}
			doc, err := s.renderer.PerAuthor(ctx, slug, matched)
			if err != nil {
				return nil, err
			}
			docs = append(docs, doc)
		}
	}

	return docs, nil
}
