package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/herkuenfte/zotpdf/internal/config"
	"github.com/herkuenfte/zotpdf/internal/pdf"
)

func init() {
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate configuration, environment and the PDF converter",
	Long: `Validate config.yml, the required environment variables and the WeasyPrint
installation without contacting Zotero. Exits with a configuration error
when any issue is found.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

// CheckResult is the response for the check command.
type CheckResult struct {
	Status     string       `json:"status"`
	ConfigPath string       `json:"config_path"`
	Output     string       `json:"output,omitempty"`
	Authors    int          `json:"authors"`
	OutputRoot string       `json:"output_root,omitempty"`
	Issues     []CheckIssue `json:"issues"`
}

// CheckIssue represents a single issue found during check.
type CheckIssue struct {
	Type    string   `json:"type"`
	Message string   `json:"message"`
	Keys    []string `json:"keys,omitempty"`
}

func runCheck(cmd *cobra.Command, args []string) error {
	result := CheckResult{ConfigPath: config.Path(configPath), Issues: []CheckIssue{}}

	cfg, err := config.Load(result.ConfigPath)
	if err != nil {
		result.Issues = append(result.Issues, CheckIssue{Type: "config", Message: err.Error()})
	} else {
		result.Output = cfg.General.Output
		result.Authors = len(cfg.Authors)
	}

	var files []string
	if envFile != "" {
		files = append(files, envFile)
	}
	env, err := config.LoadEnv(files...)
	var missing *config.MissingEnvError
	switch {
	case errors.As(err, &missing):
		result.Issues = append(result.Issues, CheckIssue{Type: "env", Message: err.Error(), Keys: missing.Keys})
	case err != nil:
		result.Issues = append(result.Issues, CheckIssue{Type: "env", Message: err.Error()})
	default:
		result.OutputRoot = env.OutputRoot()
		if info, statErr := os.Stat(env.UploadsPath); statErr != nil || !info.IsDir() {
			result.Issues = append(result.Issues, CheckIssue{Type: "uploads", Message: "uploads directory not found: " + env.UploadsPath})
		}
	}

	stylesheet := ""
	if cfg != nil {
		stylesheet = config.ExpandPath(cfg.General.Stylesheet)
	}
	if err := pdf.NewWeasyPrint(stylesheet).Check(); err != nil {
		result.Issues = append(result.Issues, CheckIssue{Type: "converter", Message: err.Error()})
	}

	result.Status = "ok"
	if len(result.Issues) > 0 {
		result.Status = "issues"
	}

	if humanOutput {
		if len(result.Issues) == 0 {
			outputHuman("Check: OK\n\nconfig:  %s\noutput:  %s (%d authors)\ntarget:  %s\n",
				result.ConfigPath, result.Output, result.Authors, result.OutputRoot)
		} else {
			outputHuman("Check: %d issues found\n\n", len(result.Issues))
			for _, issue := range result.Issues {
				outputHuman("  [%s] %s\n", issue.Type, issue.Message)
			}
		}
	} else {
		outputJSON(result)
	}

	if len(result.Issues) > 0 {
		os.Exit(ExitConfigError)
	}
	return nil
}
