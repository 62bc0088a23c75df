// Package pdf converts rendered HTML into PDF documents and inspects the result.
package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// DefaultBinary is the WeasyPrint executable looked up on PATH.
const DefaultBinary = "weasyprint"

var (
	// ErrConverterNotFound indicates the layout engine is not installed.
	ErrConverterNotFound = errors.New("PDF converter not found")

	// ErrConversionFailed indicates the layout engine ran but produced no PDF.
	ErrConversionFailed = errors.New("PDF conversion failed")
)

// Converter turns an HTML document into a PDF file at out.
type Converter interface {
	Convert(ctx context.Context, html []byte, out string) error
}

// WeasyPrint converts HTML with the WeasyPrint command line tool. The HTML is
// passed on stdin; relative links, including the document's stylesheet link,
// resolve against BaseURL.
type WeasyPrint struct {
	Binary     string // Executable name or path (default "weasyprint")
	Stylesheet string // Stylesheet the documents link to; must exist when set
	BaseURL    string // Base for relative URLs; defaults to the stylesheet directory
}

// NewWeasyPrint creates a converter for documents linking stylesheet.
func NewWeasyPrint(stylesheet string) *WeasyPrint {
	return &WeasyPrint{Binary: DefaultBinary, Stylesheet: stylesheet}
}

// Check verifies the binary and stylesheet are available.
func (w *WeasyPrint) Check() error {
	if _, err := exec.LookPath(w.binary()); err != nil {
		return fmt.Errorf("%w: %s", ErrConverterNotFound, w.binary())
	}
	if w.Stylesheet != "" {
		info, err := os.Stat(w.Stylesheet)
		if err != nil {
			return fmt.Errorf("stylesheet not found: %s", w.Stylesheet)
		}
		if info.IsDir() {
			return fmt.Errorf("stylesheet is a directory: %s", w.Stylesheet)
		}
	}
	return nil
}

// Convert writes the PDF for html to out, creating out's directory.
func (w *WeasyPrint) Convert(ctx context.Context, html []byte, out string) error {
	if err := w.Check(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	cmd := exec.CommandContext(ctx, w.binary(), w.args(out)...)
	cmd.Stdin = bytes.NewReader(html)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return fmt.Errorf("%w: running %s: %w", ErrConversionFailed, w.binary(), err)
		}
		return fmt.Errorf("%w: running %s: %w: %s", ErrConversionFailed, w.binary(), err, msg)
	}

	if _, err := os.Stat(out); err != nil {
		return fmt.Errorf("%w: PDF file was not created: %s", ErrConversionFailed, out)
	}
	return nil
}

func (w *WeasyPrint) binary() string {
	if w.Binary == "" {
		return DefaultBinary
	}
	return w.Binary
}

// args builds: [-u base] - out
func (w *WeasyPrint) args(out string) []string {
	var args []string
	base := w.BaseURL
	if base == "" && w.Stylesheet != "" {
		base = filepath.Dir(w.Stylesheet) + string(filepath.Separator)
	}
	if base != "" {
		args = append(args, "-u", base)
	}
	return append(args, "-", out)
}
