// ABOUTME: Console styling for the interactive shell.
// ABOUTME: Menu panel rendering, status colours, score colouring, and column truncation.

package main

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"golang.org/x/term"
)

var (
	styleMenu = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("6")).
			Padding(0, 2)
	styleTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))

	colorBanner  = color.New(color.FgCyan, color.Bold)
	colorInfo    = color.New(color.FgYellow)
	colorDim     = color.New(color.Faint)
	colorSuccess = color.New(color.FgGreen)
	colorError   = color.New(color.FgRed)
)

func renderMenu(items []menuItem) string {
	var b strings.Builder
	b.WriteString(styleTitle.Render("Sophos Partner Reports"))
	b.WriteString("\n")
	for _, item := range items {
		b.WriteString("\n[" + item.key + "] " + item.label)
	}
	return styleMenu.Render(b.String())
}

func colorScore(s Score) string {
	if !s.Valid() {
		return colorDim.Sprint(s.String())
	}
	switch v := s.Value(); {
	case v >= 90:
		return color.New(color.FgGreen).Sprint(s.String())
	case v >= 70:
		return color.New(color.FgYellow).Sprint(s.String())
	default:
		return color.New(color.FgRed).Sprint(s.String())
	}
}

// nameWidth is how many columns a tenant or host name may take: a third of
// the terminal, never below 24.
func nameWidth() int {
	const minWidth = 24

	termWidth := 120
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		termWidth = w
	}
	if termWidth/3 < minWidth {
		return minWidth
	}
	return termWidth / 3
}

func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-1]) + "…"
}
