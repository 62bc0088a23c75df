// Package publish places generated PDFs into the WordPress uploads tree: a
// stable permalink copy plus timestamped history copies.
package publish

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// HistoryTimeLayout stamps archived copies.
const HistoryTimeLayout = "20060102-150405"

// Publisher copies documents into a permalink and a history directory.
type Publisher struct {
	permalinkDir string
	historyDir   string
	now          func() time.Time
	logger       *slog.Logger
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithClock sets the clock used for history timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Publisher) {
		p.now = now
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Publisher) {
		if l != nil {
			p.logger = l
		}
	}
}

// New creates a publisher writing to permalinkDir and historyDir.
func New(permalinkDir, historyDir string, opts ...Option) *Publisher {
	p := &Publisher{
		permalinkDir: permalinkDir,
		historyDir:   historyDir,
		now:          time.Now,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Result describes one published document.
type Result struct {
	Name      string `json:"name"`
	Permalink string `json:"permalink"`
	History   string `json:"history,omitempty"`
	Hash      string `json:"sha256"`
	Size      int64  `json:"size"`
	Unchanged bool   `json:"unchanged"`
}

// PermalinkPath returns where the current version of name lives.
func (p *Publisher) PermalinkPath(name string) string {
	return filepath.Join(p.permalinkDir, name+".pdf")
}

// Publish installs the PDF at src as the current version of name. When the
// permalink already holds identical content nothing is written.
func (p *Publisher) Publish(src, name string) (*Result, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return nil, fmt.Errorf("invalid document name %q", name)
	}

	newHash, size, err := fileHash(src)
	if err != nil {
		return nil, fmt.Errorf("hashing %s: %w", src, err)
	}

	res := &Result{Name: name, Permalink: p.PermalinkPath(name), Hash: newHash, Size: size}

	oldHash, _, err := fileHash(res.Permalink)
	if err == nil && oldHash == newHash {
		res.Unchanged = true
		p.logger.Info("document unchanged", "name", name, "permalink", res.Permalink)
		return res, nil
	}
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("hashing %s: %w", res.Permalink, err)
	}

	// Archive first: a permalink is only replaced once its history copy exists.
	res.History = filepath.Join(p.historyDir, fmt.Sprintf("%s-%s.pdf", name, p.now().Format(HistoryTimeLayout)))
	if err := copyAtomic(src, res.History); err != nil {
		return nil, err
	}

	if err := copyAtomic(src, res.Permalink); err != nil {
		os.Remove(res.History)
		return nil, err
	}

	p.logger.Info("document published", "name", name, "permalink", res.Permalink, "history", res.History, "size", size)
	return res, nil
}

// History lists archived copies of name, oldest first.
func (p *Publisher) History(name string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(p.historyDir, name+"-*.pdf"))
	if err != nil {
		return nil, err
	}

	// The timestamp layout sorts lexically; exclude names that merely share
	// the prefix, such as "jane-doe-2" for "jane".
	var out []string
	for _, m := range matches {
		stamp := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(m), name+"-"), ".pdf")
		if _, err := time.Parse(HistoryTimeLayout, stamp); err == nil {
			out = append(out, m)
		}
	}
	sort.Strings(out)
	return out, nil
}

// Prune removes all but the newest keep history copies of name and returns
// the removed paths. keep <= 0 disables pruning.
func (p *Publisher) Prune(name string, keep int) ([]string, error) {
	if keep <= 0 {
		return nil, nil
	}

	history, err := p.History(name)
	if err != nil {
		return nil, err
	}
	if len(history) <= keep {
		return nil, nil
	}

	stale := history[:len(history)-keep]
	for _, path := range stale {
		if err := os.Remove(path); err != nil {
			return nil, fmt.Errorf("removing %s: %w", path, err)
		}
	}
	p.logger.Info("pruned history", "name", name, "removed", len(stale))
	return stale, nil
}

// fileHash computes the SHA256 of a file and returns it with the file size.
func fileHash(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return "", 0, fmt.Errorf("reading file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}

// copyAtomic copies src to dst through a temporary file in dst's directory,
// so readers never see a partial PDF.
func copyAtomic(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".zotpdf-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", dst, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", dst, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmpName, dst); err != nil {
		return fmt.Errorf("installing %s: %w", dst, err)
	}
	return nil
}
