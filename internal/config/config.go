// Package config loads the run configuration from config.yml and the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/herkuenfte/zotpdf/internal/author"
	"github.com/herkuenfte/zotpdf/internal/zotero"
)

// Output modes select which documents a run produces.
const (
	OutputComplete  = "complete"
	OutputPerAuthor = "per-author"
	OutputBoth      = "both"
)

// ValidOutputs lists the supported output values.
var ValidOutputs = []string{OutputComplete, OutputPerAuthor, OutputBoth}

const (
	// ConfigDir is the directory name under XDG_CONFIG_HOME.
	ConfigDir = "zotpdf"
	// ConfigFile is the config file name.
	ConfigFile = "config.yml"
	// ConfigEnv overrides the config file location.
	ConfigEnv = "ZOTPDF_CONFIG"
)

// Defaults applied to omitted settings.
const (
	DefaultCitationStyle = "chicago-author-date"
	DefaultLocale        = "de-DE"
	DefaultLogFile       = "./generate.log"
	DefaultLogLevel      = "info"
	DefaultHeading       = "NETZWERK HERKÜNFTE"
	DefaultSiteTitle     = "Netzwerk Herkünfte"
	DefaultHistoryKeep   = 10
)

// DefaultCreatorTypes are the creator roles considered when none are configured.
var DefaultCreatorTypes = []string{"author"}

// Config is the static configuration stored in config.yml.
type Config struct {
	Zotero  ZoteroConfig    `yaml:"zotero"`
	General GeneralConfig   `yaml:"general"`
	Authors []author.Config `yaml:"authors"`
}

// ZoteroConfig addresses the library to fetch.
type ZoteroConfig struct {
	GroupID       string `yaml:"group_id"`
	CollectionKey string `yaml:"collection_key,omitempty"`
	PageSize      int    `yaml:"page_size,omitempty"`
}

// GeneralConfig holds rendering and logging settings.
type GeneralConfig struct {
	CitationStyle       string   `yaml:"citation_style,omitempty"`
	Locale              string   `yaml:"locale,omitempty"`
	IncludeCreatorTypes []string `yaml:"include_creator_types,omitempty"`
	LogFile             string   `yaml:"log_file,omitempty"`
	LogLevel            string   `yaml:"log_level,omitempty"`
	Output              string   `yaml:"output,omitempty"`
	Heading             string   `yaml:"heading,omitempty"`
	SiteTitle           string   `yaml:"site_title,omitempty"`
	Stylesheet          string   `yaml:"stylesheet,omitempty"`
	HistoryKeep         int      `yaml:"history_keep,omitempty"`
}

// Collection returns the reference used to scope fetches.
func (c *Config) Collection() zotero.CollectionRef {
	return zotero.CollectionRef{Group: c.Zotero.GroupID, Collection: c.Zotero.CollectionKey}
}

// Path returns the config file to use: explicit, then $ZOTPDF_CONFIG, then
// ./config.yml if present, then $XDG_CONFIG_HOME/zotpdf/config.yml.
func Path(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if p := os.Getenv(ConfigEnv); p != "" {
		return p
	}
	if _, err := os.Stat(ConfigFile); err == nil {
		return ConfigFile
	}

	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ConfigFile
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, ConfigDir, ConfigFile)
}

// Load reads, defaults and validates the configuration at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(ExpandPath(path))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	g := &c.General
	if g.CitationStyle == "" {
		g.CitationStyle = DefaultCitationStyle
	}
	if g.Locale == "" {
		g.Locale = DefaultLocale
	}
	if len(g.IncludeCreatorTypes) == 0 {
		g.IncludeCreatorTypes = slices.Clone(DefaultCreatorTypes)
	}
	if g.LogFile == "" {
		g.LogFile = DefaultLogFile
	}
	if g.LogLevel == "" {
		g.LogLevel = DefaultLogLevel
	}
	if g.Output == "" {
		g.Output = OutputComplete
	}
	if g.Heading == "" {
		g.Heading = DefaultHeading
	}
	if g.SiteTitle == "" {
		g.SiteTitle = DefaultSiteTitle
	}
	if g.HistoryKeep == 0 {
		g.HistoryKeep = DefaultHistoryKeep
	}
	if c.Zotero.PageSize <= 0 || c.Zotero.PageSize > zotero.MaxPageSize {
		c.Zotero.PageSize = zotero.MaxPageSize
	}
}

// Validate checks the settings a run cannot do without.
func (c *Config) Validate() error {
	if c.Zotero.GroupID == "" {
		return fmt.Errorf("zotero.group_id is required")
	}
	if !slices.Contains(ValidOutputs, c.General.Output) {
		return fmt.Errorf("invalid general.output: %s (valid: %v)", c.General.Output, ValidOutputs)
	}
	if c.General.Output != OutputComplete && len(c.Authors) == 0 {
		return fmt.Errorf("general.output %q needs at least one author", c.General.Output)
	}
	if err := author.ValidateConfigs(c.Authors); err != nil {
		return fmt.Errorf("authors: %w", err)
	}
	return nil
}

// WantsComplete reports whether the whole-collection document is produced.
func (c *Config) WantsComplete() bool {
	return c.General.Output == OutputComplete || c.General.Output == OutputBoth
}

// WantsPerAuthor reports whether per-author documents are produced.
func (c *Config) WantsPerAuthor() bool {
	return c.General.Output == OutputPerAuthor || c.General.Output == OutputBoth
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, path[1:])
}
