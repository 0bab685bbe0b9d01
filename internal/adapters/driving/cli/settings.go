package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/alexpineda/llmdump/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change the model provider, crawl provider, storage and export settings.

Every key can also be overridden with an environment variable named after
it, e.g. LLMDUMP_LLM_API_KEY for llm.api_key.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a single setting",
	Long: `Set a single setting by its dot-notation key.

Keys:
  llm.provider, llm.model, llm.base_url, llm.api_key, llm.requests_per_minute
  crawl.provider, crawl.base_url, crawl.api_key, crawl.page_limit, crawl.poll_interval
  storage.backend, storage.data_dir
  export.mode, export.output_dir, export.clean, export.max_tokens_per_file`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure LLM provider",
	Long:  `Interactively choose the LLM provider used to categorise, name and clean documents.`,
	RunE:  runSettingsLLM,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	w := cmd.OutOrStdout()
	cmd.Println(heading(w, "Current Settings"))
	cmd.Println()

	// LLM settings
	cmd.Println(titleStyle(w).Render("[LLM]"))
	cmd.Printf("  Provider: %s\n", settings.LLM.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.LLM.Model)
	if settings.LLM.BaseURL != "" || settings.LLM.Provider.IsLocal() {
		cmd.Printf("  Base URL: %s\n", valueOrDefault(settings.LLM.BaseURL))
	}
	if settings.LLM.Provider.RequiresAPIKey() {
		cmd.Printf("  API Key: %s\n", keyStatus(settings.LLM.APIKey))
	}
	if settings.LLM.RequestsPerMinute > 0 {
		cmd.Printf("  Requests/min: %d\n", settings.LLM.RequestsPerMinute)
	}
	cmd.Printf("  Status: %s\n", configuredStatus(w, settings.LLM.IsConfigured()))
	cmd.Println()

	// Crawl settings
	cmd.Println(titleStyle(w).Render("[Crawl]"))
	cmd.Printf("  Provider: %s\n", settings.Crawl.Provider)
	if settings.Crawl.Provider == domain.CrawlProviderFirecrawl {
		cmd.Printf("  Base URL: %s\n", settings.Crawl.BaseURL)
		cmd.Printf("  API Key: %s\n", keyStatus(settings.Crawl.APIKey))
		cmd.Printf("  Poll interval: %ds\n", settings.Crawl.PollIntervalSeconds)
	}
	cmd.Printf("  Page limit: %d\n", settings.Crawl.PageLimit)
	cmd.Printf("  Status: %s\n", configuredStatus(w, settings.Crawl.IsConfigured()))
	cmd.Println()

	// Storage settings
	cmd.Println(titleStyle(w).Render("[Storage]"))
	cmd.Printf("  Backend: %s\n", settings.Storage.Backend)
	cmd.Printf("  Data dir: %s\n", valueOrDefault(settings.Storage.DataDir))
	cmd.Println()

	// Export settings
	cmd.Println(titleStyle(w).Render("[Export]"))
	cmd.Printf("  Mode: %s\n", settings.Export.Mode.Description())
	cmd.Printf("  Output dir: %s\n", settings.Export.OutputDir)
	cmd.Printf("  Clean: %t\n", settings.Export.Clean)
	cmd.Printf("  Max tokens per file: %d\n", settings.Export.MaxTokensPerFile)
	cmd.Println()

	// Validation
	if err := settingsService.Validate(); err != nil {
		cmd.Println(warningStyle(w).Render(fmt.Sprintf("Warning: %v", err)))
		cmd.Println("Run 'llmdump settings llm' or 'llmdump settings set <key> <value>' to fix configuration issues.")
	} else {
		cmd.Println(successStyle(w).Render("Configuration is valid."))
	}

	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key, value := args[0], args[1]
	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	shown := value
	if strings.HasSuffix(key, ".api_key") {
		shown = maskAPIKey(value)
	}
	cmd.Printf("%s = %s\n", key, shown)
	return nil
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	return configureLLMProvider(cmd, reader)
}

func configureLLMProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select LLM Provider")
	providers := domain.AllLLMProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	input := readLine(reader)
	idx := parseChoice(input, len(providers), 1)
	selectedProvider := providers[idx-1]

	// Get model
	defaults := domain.DefaultLLMModels()
	defaultModel := defaults[selectedProvider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	// Get API key if needed
	var apiKey string
	if selectedProvider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword(reader)
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := settingsService.SetLLMProvider(selectedProvider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure LLM provider: %w", err)
	}

	// Validate the configuration by pinging the service
	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateLLMConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("LLM configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("LLM provider configured: %s (%s)\n\n", selectedProvider.Description(), model)
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads a secret without echo when stdin is a terminal and
// falls back to a plain line read otherwise.
func readPassword(reader *bufio.Reader) string {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func keyStatus(key string) string {
	if key == "" {
		return "(not set)"
	}
	return maskAPIKey(key)
}

func valueOrDefault(v string) string {
	if v == "" {
		return "(default)"
	}
	return v
}

func configuredStatus(w io.Writer, ok bool) string {
	if ok {
		return successStyle(w).Render("configured")
	}
	return warningStyle(w).Render("not configured")
}
