package main

import (
	"log/slog"
	"os"

	"github.com/herkuenfte/zotpdf/internal/config"
	"github.com/herkuenfte/zotpdf/internal/logging"
	"github.com/herkuenfte/zotpdf/internal/zotero"
)

// app bundles what every networked command needs.
type app struct {
	cfg      *config.Config
	env      *config.Env
	logger   *slog.Logger
	closeLog func() error
	client   *zotero.Client
}

// mustLoadConfig loads config.yml or exits with ExitConfigError.
func mustLoadConfig() *config.Config {
	cfg, err := config.Load(config.Path(configPath))
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return cfg
}

// mustLoadEnv reads the required environment or exits with ExitConfigError.
func mustLoadEnv() *config.Env {
	var files []string
	if envFile != "" {
		files = append(files, envFile)
	}
	env, err := config.LoadEnv(files...)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	return env
}

// mustSetup loads configuration and environment, opens the log and creates
// the Zotero client. Configuration problems exit before any network access.
func mustSetup() *app {
	cfg := mustLoadConfig()
	env := mustLoadEnv()

	logger, closeLog, err := logging.Open(config.ExpandPath(cfg.General.LogFile), cfg.General.LogLevel, os.Stderr)
	if err != nil {
		exitWithError(ExitConfigError, "opening log: %v", err)
	}

	client := zotero.NewClient(env.APIKey,
		zotero.WithUserAgent("zotpdf/"+Version),
		zotero.WithLogger(logger))

	return &app{cfg: cfg, env: env, logger: logger, closeLog: closeLog, client: client}
}

func (a *app) close() {
	if err := a.closeLog(); err != nil {
		a.logger.Warn("closing log file", "error", err)
	}
}
