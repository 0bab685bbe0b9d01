package cli

import (
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/alexpineda/llmdump/internal/core/domain"
)

var (
	summaryJSON    bool
	categoriesURLs bool
	categoriesJSON bool
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show categories and token estimates",
	Long: `Shows each category with its document count and estimated tokens, the
session total, and the assembly mode that fits export.max_tokens_per_file.`,
	Args: cobra.NoArgs,
	RunE: runSummary,
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List categories and their documents",
	Args:  cobra.NoArgs,
	RunE:  runCategories,
}

var pruneCmd = &cobra.Command{
	Use:   "prune [category] [url...]",
	Short: "Remove documents from a category",
	Long: `Removes the listed URLs from the named category. A category left empty
is dropped. Unknown categories and URLs are ignored.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runPrune,
}

var splitCmd = &cobra.Command{
	Use:   "split [category]",
	Short: "Re-classify one category into smaller ones",
	Long: `Sends the documents of one category back to the classifier and merges
the resulting categories into the session. Categories whose names match an
existing one (ignoring case) are merged with it.`,
	Args: cobra.ExactArgs(1),
	RunE: runSplit,
}

var recategorizeCmd = &cobra.Command{
	Use:   "recategorize",
	Short: "Re-classify every crawled document",
	Args:  cobra.NoArgs,
	RunE:  runRecategorize,
}

var renameCmd = &cobra.Command{
	Use:   "rename [from] [to]",
	Short: "Rename a category",
	Long:  `Renames a category. If a category named [to] already exists, the two are merged.`,
	Args:  cobra.ExactArgs(2),
	RunE:  runRename,
}

func init() {
	summaryCmd.Flags().BoolVar(&summaryJSON, "json", false, "output the summary as JSON")
	categoriesCmd.Flags().BoolVarP(&categoriesURLs, "urls", "u", false, "list document URLs under each category")
	categoriesCmd.Flags().BoolVar(&categoriesJSON, "json", false, "output categories as JSON")

	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(categoriesCmd)
	rootCmd.AddCommand(pruneCmd)
	rootCmd.AddCommand(splitCmd)
	rootCmd.AddCommand(recategorizeCmd)
	rootCmd.AddCommand(renameCmd)
}

func runSummary(cmd *cobra.Command, _ []string) error {
	session, err := openSession(cmd)
	if err != nil {
		return err
	}

	if summaryJSON {
		data, err := json.MarshalIndent(curationService.Summary(session), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal summary: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	printSummary(cmd, session)
	return nil
}

func runCategories(cmd *cobra.Command, _ []string) error {
	session, err := openSession(cmd)
	if err != nil {
		return err
	}

	if categoriesJSON {
		type category struct {
			Name    string   `json:"category"`
			RefURLs []string `json:"refUrls"`
		}
		out := make([]category, len(session.Categories))
		for i, c := range session.Categories {
			out[i] = category{Name: c.Name, RefURLs: c.RefURLs}
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal categories: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(session.Categories) == 0 {
		cmd.Println("No categories.")
		return nil
	}

	w := cmd.OutOrStdout()
	index := session.Crawl.Index()
	for _, c := range session.Categories {
		cmd.Printf("%s %s\n", titleStyle(w).Render(c.Name), mutedStyle(w).Render(fmt.Sprintf("(%d)", len(c.RefURLs))))
		if !categoriesURLs {
			continue
		}
		for _, url := range c.RefURLs {
			title := ""
			if doc, ok := index[url]; ok {
				title = doc.Title
			}
			if title != "" {
				cmd.Printf("  - %s %s\n", url, mutedStyle(w).Render(title))
			} else {
				cmd.Printf("  - %s\n", url)
			}
		}
	}
	return nil
}

func runPrune(cmd *cobra.Command, args []string) error {
	session, err := openSession(cmd)
	if err != nil {
		return err
	}

	category, urls := args[0], args[1:]
	before := countRefs(session.Categories)

	session, err = curationService.Prune(cmd.Context(), session, category, urls)
	if err != nil {
		return fmt.Errorf("prune failed: %w", err)
	}

	cmd.Printf("Removed %d document(s) from %q.\n", before-countRefs(session.Categories), category)
	if domain.FindCategory(session.Categories, category) < 0 {
		cmd.Printf("Category %q is now empty and was dropped.\n", category)
	}
	return nil
}

func runSplit(cmd *cobra.Command, args []string) error {
	session, err := openSession(cmd)
	if err != nil {
		return err
	}

	before := len(session.Categories)
	cmd.Printf("Splitting %q...\n", args[0])

	session, err = curationService.Split(cmd.Context(), session, args[0])
	if err != nil {
		return fmt.Errorf("split failed: %w", err)
	}

	cmd.Printf("Session now has %d categories (was %d).\n", len(session.Categories), before)
	cmd.Println()
	printSummary(cmd, session)
	return nil
}

func runRecategorize(cmd *cobra.Command, _ []string) error {
	session, err := openSession(cmd)
	if err != nil {
		return err
	}

	cmd.Printf("Re-classifying %d documents...\n", len(session.Crawl.Documents))
	session, err = curationService.Recategorize(cmd.Context(), session)
	if err != nil {
		return fmt.Errorf("recategorize failed: %w", err)
	}

	cmd.Println()
	printSummary(cmd, session)
	return nil
}

func runRename(cmd *cobra.Command, args []string) error {
	session, err := openSession(cmd)
	if err != nil {
		return err
	}

	if _, err := curationService.RenameCategory(cmd.Context(), session, args[0], args[1]); err != nil {
		return fmt.Errorf("rename failed: %w", err)
	}

	cmd.Printf("Renamed %q to %q.\n", args[0], args[1])
	return nil
}

// printSummary renders the session summary as a table.
func printSummary(cmd *cobra.Command, session *domain.Session) {
	w := cmd.OutOrStdout()
	summary := curationService.Summary(session)

	cmd.Println(heading(w, summary.Identifier))
	cmd.Printf("Source:    %s\n", summary.SourceURL)
	cmd.Printf("Documents: %d\n", summary.DocumentCount)
	cmd.Println()

	if len(summary.Tokens.Categories) == 0 {
		cmd.Println("No categories.")
		return
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle(w)).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().Padding(0, 1)
			if col > 0 {
				s = s.Align(lipgloss.Right)
			}
			if row == table.HeaderRow {
				return style(w, s.Bold(true))
			}
			return s
		}).
		Headers("Category", "Docs", "Tokens")

	for _, c := range summary.Tokens.Categories {
		docs := fmt.Sprintf("%d", c.DocumentCount)
		if c.ResolvedCount != c.DocumentCount {
			docs = fmt.Sprintf("%d/%d", c.ResolvedCount, c.DocumentCount)
		}
		t.Row(c.Name, docs, formatTokens(c.Tokens))
	}
	t.Row("Total", "", formatTokens(summary.Tokens.Total))

	cmd.Println(t.String())
	cmd.Printf("Suggested mode: %s\n", summary.SuggestedMode.Description())
}

func formatTokens(tokens float64) string {
	switch {
	case tokens >= 1_000_000:
		return fmt.Sprintf("%.1fM", tokens/1_000_000)
	case tokens >= 10_000:
		return fmt.Sprintf("%.1fk", tokens/1_000)
	default:
		return fmt.Sprintf("%.0f", tokens)
	}
}

func countRefs(set domain.CategorySet) int {
	n := 0
	for _, c := range set {
		n += len(c.RefURLs)
	}
	return n
}
