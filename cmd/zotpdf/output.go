package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/herkuenfte/zotpdf/internal/config"
	"github.com/herkuenfte/zotpdf/internal/pdf"
	"github.com/herkuenfte/zotpdf/internal/pipeline"
	"github.com/herkuenfte/zotpdf/internal/zotero"
)

// Title truncation lengths by context
const (
	FetchTitleMaxLen = 70 // Used in fetch command output
	MatchTitleMaxLen = 60 // Used in match --matches output
)

// printer formats counts for human output.
var printer = message.NewPrinter(language.English)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputHuman writes a human-readable string to stdout.
func outputHuman(format string, args ...any) {
	fmt.Printf(format, args...)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// exitWithErr exits with the code matching err.
func exitWithErr(err error) {
	exitWithError(exitCodeFor(err), "%v", err)
}

// exitCodeFor maps an error to the process exit code.
func exitCodeFor(err error) int {
	var missing *config.MissingEnvError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &missing):
		return ExitConfigError
	case errors.Is(err, pipeline.ErrConnectionFailed),
		errors.Is(err, zotero.ErrNetworkError),
		errors.Is(err, zotero.ErrInvalidResponse),
		zotero.IsAuthError(err),
		zotero.IsNotFound(err):
		return ExitNetworkError
	case errors.Is(err, pdf.ErrConverterNotFound),
		errors.Is(err, pdf.ErrConversionFailed),
		errors.Is(err, pdf.ErrEmptyDocument):
		return ExitPDFError
	default:
		return ExitError
	}
}

// StatusResponse is a generic response for commands that return status.
type StatusResponse struct {
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// truncateString truncates a string to maxLen runes, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

// formatCount formats an integer with thousands separators.
func formatCount(n int) string {
	return printer.Sprintf("%d", n)
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}

// formatBytes formats bytes in a human-readable way.
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
