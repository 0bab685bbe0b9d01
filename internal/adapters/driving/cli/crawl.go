package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexpineda/llmdump/internal/core/domain"
)

var (
	crawlLimit   int
	crawlArchive bool
)

var crawlCmd = &cobra.Command{
	Use:   "crawl [url]",
	Short: "Crawl a site and start a new session",
	Long: `Crawls the given URL with the configured crawl provider, groups the pages
into categories and names the session. The result becomes the current
session. The previous current session is archived first unless
--archive=false is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runCrawl,
}

func init() {
	crawlCmd.Flags().IntVarP(&crawlLimit, "limit", "n", 0, "maximum number of pages (default: crawl.page_limit)")
	crawlCmd.Flags().BoolVar(&crawlArchive, "archive", true, "archive the current session before replacing it")
	rootCmd.AddCommand(crawlCmd)
}

func runCrawl(cmd *cobra.Command, args []string) error {
	if curationService == nil {
		return errors.New("curation service not configured")
	}

	ctx := cmd.Context()
	url := args[0]

	limit := crawlLimit
	if limit <= 0 {
		limit = domain.DefaultAppSettings().Crawl.PageLimit
		if settingsService != nil {
			if settings, err := settingsService.Get(); err == nil && settings.Crawl.PageLimit > 0 {
				limit = settings.Crawl.PageLimit
			}
		}
	}

	if crawlArchive && sessionService != nil {
		key, err := sessionService.Archive(ctx)
		switch {
		case err == nil:
			cmd.Printf("Archived previous session as %s\n", key)
		case !errors.Is(err, domain.ErrNoSession):
			return fmt.Errorf("archive previous session: %w", err)
		}
	}

	cmd.Printf("Crawling %s (up to %d pages)...\n", url, limit)
	session, err := curationService.NewSession(ctx, url, limit)
	if err != nil {
		return fmt.Errorf("crawl failed: %w", err)
	}

	out := cmd.OutOrStdout()
	cmd.Println(successStyle(out).Render(fmt.Sprintf("Crawled %d pages into %d categories.",
		len(session.Crawl.Documents), len(session.Categories))))
	cmd.Println()
	printSummary(cmd, session)
	return nil
}
