package pdf

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrEmptyDocument indicates a PDF without pages.
var ErrEmptyDocument = errors.New("PDF has no pages")

// Info describes a produced PDF.
type Info struct {
	Path          string `json:"path"`
	Size          int64  `json:"size"`
	Pages         int    `json:"pages"`
	FirstPageText string `json:"first_page_text,omitempty"`
}

// Inspect opens the PDF at path and reports its size and page count.
// A document with zero pages is ErrEmptyDocument.
func Inspect(path string) (*Info, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("checking PDF: %w", err)
	}

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("parsing PDF %s: %w", path, err)
	}
	defer f.Close()

	info := &Info{Path: path, Size: stat.Size(), Pages: r.NumPage()}
	if info.Pages == 0 {
		return info, fmt.Errorf("%w: %s", ErrEmptyDocument, path)
	}

	// Text is informational; fonts without a usable encoding yield nothing.
	page := r.Page(1)
	if !page.V.IsNull() {
		if text, err := page.GetPlainText(nil); err == nil {
			info.FirstPageText = strings.TrimSpace(text)
		}
	}

	return info, nil
}

// ExtractText extracts all text from the first N pages of a PDF.
func ExtractText(filePath string, maxPages int) (string, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if maxPages <= 0 || maxPages > r.NumPage() {
		maxPages = r.NumPage()
	}

	var builder strings.Builder
	for i := 1; i <= maxPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		builder.WriteString(text)
		builder.WriteString("\n")
	}

	return builder.String(), nil
}
