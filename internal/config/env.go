package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvUploadsPath  = "WP_UPLOADS_PATH"
	EnvSiteID       = "SITE_ID"
	EnvBibRoot      = "BIB_ROOT"
	EnvPermalinkDir = "PERMALINK_DIR"
	EnvHistoryDir   = "HISTORY_DIR"
	EnvAPIKey       = "ZOTERO_API_KEY"
)

// RequiredEnv lists every variable LoadEnv insists on, in reporting order.
var RequiredEnv = []string{
	EnvUploadsPath,
	EnvSiteID,
	EnvBibRoot,
	EnvPermalinkDir,
	EnvHistoryDir,
	EnvAPIKey,
}

// Env holds the secrets and deployment paths taken from the environment.
type Env struct {
	UploadsPath  string
	SiteID       string
	BibRoot      string
	PermalinkDir string
	HistoryDir   string
	APIKey       string
}

// MissingEnvError lists required variables that are unset or empty.
type MissingEnvError struct {
	Keys []string
}

func (e *MissingEnvError) Error() string {
	return fmt.Sprintf("missing required environment variables: %s", strings.Join(e.Keys, ", "))
}

// LoadEnv loads an optional .env file and reads the required variables.
// Variables already set in the process environment take precedence.
func LoadEnv(files ...string) (*Env, error) {
	_ = godotenv.Load(files...)
	return EnvFrom(os.LookupEnv)
}

// EnvFrom builds an Env from a lookup function, reporting every missing key at once.
func EnvFrom(lookup func(string) (string, bool)) (*Env, error) {
	values := make(map[string]string, len(RequiredEnv))
	var missing []string
	for _, key := range RequiredEnv {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			missing = append(missing, key)
			continue
		}
		values[key] = strings.TrimSpace(v)
	}
	if len(missing) > 0 {
		return nil, &MissingEnvError{Keys: missing}
	}

	return &Env{
		UploadsPath:  ExpandPath(values[EnvUploadsPath]),
		SiteID:       values[EnvSiteID],
		BibRoot:      values[EnvBibRoot],
		PermalinkDir: values[EnvPermalinkDir],
		HistoryDir:   values[EnvHistoryDir],
		APIKey:       values[EnvAPIKey],
	}, nil
}

// OutputRoot returns the bibliography directory of the site inside the
// WordPress uploads tree: {uploads}/sites/{site}/{bib_root}.
func (e *Env) OutputRoot() string {
	return filepath.Join(e.UploadsPath, "sites", e.SiteID, e.BibRoot)
}

// PermalinkPath returns the directory holding the current documents.
func (e *Env) PermalinkPath() string {
	return filepath.Join(e.OutputRoot(), e.PermalinkDir)
}

// HistoryPath returns the directory holding archived documents.
func (e *Env) HistoryPath() string {
	return filepath.Join(e.OutputRoot(), e.HistoryDir)
}
