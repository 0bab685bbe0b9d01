package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexpineda/llmdump/internal/core/domain"
	"github.com/alexpineda/llmdump/internal/core/ports/driving"
)

var (
	exportMode     string
	exportOut      string
	exportClean    bool
	exportManifest bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the session as markdown files",
	Long: `Writes the categorised documents of the session as markdown.

Modes:
  single   - one file with every category ({identifier}.md)
  multiple - one file per category ({identifier}_{category}.md)

Without --mode the configured export.mode is used. --clean sends each
document through the language model to strip navigation and boilerplate
before it is written.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportMode, "mode", "m", "", "assembly mode: single or multiple (default: export.mode)")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output directory (default: export.output_dir)")
	exportCmd.Flags().BoolVar(&exportClean, "clean", false, "clean each document with the language model")
	exportCmd.Flags().BoolVar(&exportManifest, "manifest", false, "also write a YAML manifest")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	if exportService == nil {
		return errors.New("export service not configured")
	}

	session, err := openSession(cmd)
	if err != nil {
		return err
	}

	defaults := domain.DefaultAppSettings().Export
	if settingsService != nil {
		if settings, err := settingsService.Get(); err == nil {
			defaults = settings.Export
		}
	}

	opts := driving.ExportOptions{
		Mode:     defaults.Mode,
		Clean:    defaults.Clean || exportClean,
		Manifest: exportManifest,
	}
	if exportMode != "" {
		opts.Mode = domain.AssemblyMode(exportMode)
	}
	outputDir := defaults.OutputDir
	if exportOut != "" {
		outputDir = exportOut
	}

	summary := curationService.Summary(session)
	if opts.Mode != summary.SuggestedMode && opts.Mode.IsValid() {
		cmd.Println(warningStyle(cmd.OutOrStdout()).Render(fmt.Sprintf(
			"Note: %s suggested for %s tokens.", summary.SuggestedMode.Description(), formatTokens(summary.Tokens.Total))))
	}

	paths, err := exportService.WriteDocumentsToFile(cmd.Context(), session, outputDir, opts)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	if len(paths) == 0 {
		cmd.Println("Nothing to export: every category is empty.")
		return nil
	}

	cmd.Printf("Wrote %d file(s):\n", len(paths))
	for _, p := range paths {
		cmd.Printf("  %s\n", p)
	}
	return nil
}
