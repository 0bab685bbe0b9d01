package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Palette shared by the commands.
var (
	colorPrimary = lipgloss.Color("#7C3AED")
	colorMuted   = lipgloss.Color("#6C7086")
	colorSuccess = lipgloss.Color("#A6E3A1")
	colorWarning = lipgloss.Color("#F9E2AF")
	colorError   = lipgloss.Color("#F38BA8")
)

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// style returns s when w is a terminal and a plain style otherwise, so
// piped and captured output carries no escape codes.
func style(w io.Writer, s lipgloss.Style) lipgloss.Style {
	if !isTerminal(w) {
		return lipgloss.NewStyle()
	}
	return s
}

func titleStyle(w io.Writer) lipgloss.Style {
	return style(w, lipgloss.NewStyle().Bold(true).Foreground(colorPrimary))
}

func mutedStyle(w io.Writer) lipgloss.Style {
	return style(w, lipgloss.NewStyle().Foreground(colorMuted))
}

func successStyle(w io.Writer) lipgloss.Style {
	return style(w, lipgloss.NewStyle().Foreground(colorSuccess))
}

func warningStyle(w io.Writer) lipgloss.Style {
	return style(w, lipgloss.NewStyle().Foreground(colorWarning))
}

func errorStyle(w io.Writer) lipgloss.Style {
	return style(w, lipgloss.NewStyle().Bold(true).Foreground(colorError))
}

// heading renders a title underlined with '=' like the plain-text output.
func heading(w io.Writer, title string) string {
	underline := make([]byte, lipgloss.Width(title))
	for i := range underline {
		underline[i] = '='
	}
	return titleStyle(w).Render(title) + "\n" + mutedStyle(w).Render(string(underline))
}
