// Package cli implements the llmdump command line with cobra.
// Commands talk to the core through the driving ports set by SetServices.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alexpineda/llmdump/internal/core/domain"
	"github.com/alexpineda/llmdump/internal/core/ports/driving"
	"github.com/alexpineda/llmdump/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// PromptWatcher reloads prompt templates when they change on disk.
type PromptWatcher interface {
	Watch(ctx context.Context) error
}

// Services holds the driving ports the commands use.
type Services struct {
	Curation driving.CurationService
	Export   driving.ExportService
	Session  driving.SessionService
	Settings driving.SettingsService

	// Prompts is watched while the MCP server runs. Optional.
	Prompts PromptWatcher
}

var (
	curationService driving.CurationService
	exportService   driving.ExportService
	sessionService  driving.SessionService
	settingsService driving.SettingsService
	promptWatcher   PromptWatcher
)

// Persistent flags.
var (
	verbose    bool
	sessionKey string
)

var rootCmd = &cobra.Command{
	Use:   "llmdump",
	Short: "Crawl documentation and dump it as LLM-sized markdown",
	Long: `llmdump crawls a documentation site, groups the pages into categories
with a language model, lets you refine the grouping and exports the result
as markdown files sized for an LLM context window.

Typical flow:
  llmdump crawl https://example.com/docs
  llmdump summary
  llmdump prune "Changelog" https://example.com/docs/changelog
  llmdump export --mode multiple`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log progress to stderr")
	rootCmd.PersistentFlags().StringVarP(&sessionKey, "session", "s", "",
		"stored session key to operate on (default: the current session)")
}

// SetServices sets the services used by the commands.
func SetServices(s Services) {
	curationService = s.Curation
	exportService = s.Export
	sessionService = s.Session
	settingsService = s.Settings
	promptWatcher = s.Prompts
}

// SetVersion sets the version reported by 'llmdump version'.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command and returns its error.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// Run executes the root command, prints any error with a hint and returns
// the process exit code.
func Run(ctx context.Context) int {
	rootCmd.SetOut(os.Stdout)
	if err := Execute(ctx); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle(os.Stderr).Render("Error: "+err.Error()))
		if hint := errorHint(err); hint != "" {
			fmt.Fprintln(os.Stderr, hint)
		}
		return 1
	}
	return 0
}

// errorHint suggests the next command for well-known failures.
func errorHint(err error) string {
	switch {
	case errors.Is(err, domain.ErrNoSession):
		return "Run 'llmdump crawl <url>' to start a session."
	case errors.Is(err, domain.ErrLLMUnavailable):
		return "Run 'llmdump settings llm' to configure a model provider."
	case errors.Is(err, domain.ErrCrawlerUnavailable):
		return "Set crawl.api_key, or use 'llmdump settings set crawl.provider local'."
	case errors.Is(err, domain.ErrUnsupportedMode):
		return "Valid modes are 'single' and 'multiple'."
	default:
		return ""
	}
}

// openSession loads the session selected by --session.
func openSession(cmd *cobra.Command) (*domain.Session, error) {
	return openSessionKey(cmd, sessionKey)
}

func openSessionKey(cmd *cobra.Command, key string) (*domain.Session, error) {
	if curationService == nil {
		return nil, errors.New("curation service not configured")
	}
	return curationService.Open(cmd.Context(), key)
}
