package cli

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage stored sessions",
	Long:  `List, inspect, archive, restore or delete stored sessions.`,
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived sessions",
	Args:  cobra.NoArgs,
	RunE:  runSessionList,
}

var sessionShowCmd = &cobra.Command{
	Use:   "show [key]",
	Short: "Show a session summary",
	Long:  `Shows the summary of a stored session, or of the current session when no key is given.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSessionShow,
}

var sessionArchiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Archive the current session",
	Args:  cobra.NoArgs,
	RunE:  runSessionArchive,
}

var sessionRestoreCmd = &cobra.Command{
	Use:   "restore [key]",
	Short: "Make an archived session current",
	Long:  `Replaces the current session with an archived one. The current session is archived first.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionRestore,
}

var sessionDeleteCmd = &cobra.Command{
	Use:   "delete [key]",
	Short: "Delete a stored session",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionDelete,
}

func init() {
	sessionCmd.AddCommand(sessionListCmd)
	sessionCmd.AddCommand(sessionShowCmd)
	sessionCmd.AddCommand(sessionArchiveCmd)
	sessionCmd.AddCommand(sessionRestoreCmd)
	sessionCmd.AddCommand(sessionDeleteCmd)
	rootCmd.AddCommand(sessionCmd)
}

func runSessionList(cmd *cobra.Command, _ []string) error {
	if sessionService == nil {
		return errors.New("session service not configured")
	}

	sessions, err := sessionService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	if len(sessions) == 0 {
		cmd.Println("No archived sessions.")
		return nil
	}

	w := cmd.OutOrStdout()
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle(w)).
		StyleFunc(func(row, _ int) lipgloss.Style {
			s := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return style(w, s.Bold(true))
			}
			return s
		}).
		Headers("Key", "Identifier", "Source", "Docs", "Categories", "Created")

	for _, s := range sessions {
		created := ""
		if !s.CreatedAt.IsZero() {
			created = s.CreatedAt.Local().Format("2006-01-02 15:04")
		}
		t.Row(s.Key, s.Identifier, s.SourceURL,
			fmt.Sprintf("%d", s.DocumentCount), fmt.Sprintf("%d", s.CategoryCount), created)
	}

	cmd.Println(t.String())
	cmd.Printf("Total: %d sessions\n", len(sessions))
	return nil
}

func runSessionShow(cmd *cobra.Command, args []string) error {
	key := sessionKey
	if len(args) == 1 {
		key = args[0]
	}

	session, err := openSessionKey(cmd, key)
	if err != nil {
		return err
	}

	printSummary(cmd, session)
	return nil
}

func runSessionArchive(cmd *cobra.Command, _ []string) error {
	if sessionService == nil {
		return errors.New("session service not configured")
	}

	key, err := sessionService.Archive(cmd.Context())
	if err != nil {
		return fmt.Errorf("archive failed: %w", err)
	}

	cmd.Printf("Archived current session as %s\n", key)
	return nil
}

func runSessionRestore(cmd *cobra.Command, args []string) error {
	if sessionService == nil {
		return errors.New("session service not configured")
	}

	if err := sessionService.Restore(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("restore failed: %w", err)
	}

	cmd.Printf("Session %s is now current.\n", args[0])
	return nil
}

func runSessionDelete(cmd *cobra.Command, args []string) error {
	if sessionService == nil {
		return errors.New("session service not configured")
	}

	if err := sessionService.Delete(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}

	cmd.Printf("Deleted session %s\n", args[0])
	return nil
}
