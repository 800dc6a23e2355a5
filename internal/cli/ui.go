package cli

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	colorSuccess = lipgloss.AdaptiveColor{Light: "2", Dark: "2"}
	colorError   = lipgloss.AdaptiveColor{Light: "1", Dark: "1"}
	colorPrimary = lipgloss.AdaptiveColor{Light: "5", Dark: "5"}
	colorInfo    = lipgloss.AdaptiveColor{Light: "6", Dark: "6"}
	colorMuted   = lipgloss.AdaptiveColor{Light: "8", Dark: "8"}

	styleSuccess = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	styleError   = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	styleInfo    = lipgloss.NewStyle().Foreground(colorInfo)
	styleMuted   = lipgloss.NewStyle().Foreground(colorMuted)
	styleTitle   = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true).Underline(true)
	styleHeader  = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true).Padding(0, 1)
	styleCell    = lipgloss.NewStyle().Padding(0, 1)
)

func formatSuccess(msg string) string {
	return styleSuccess.Render("✔ " + msg)
}

func formatError(msg string) string {
	return styleError.Render("✘ " + msg)
}

func formatInfo(msg string) string {
	return styleInfo.Render("ℹ " + msg)
}

func formatMuted(msg string) string {
	return styleMuted.Render(msg)
}

func formatTitle(title string) string {
	return styleTitle.Render(title)
}

func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(styleMuted).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			return styleCell
		}).
		Headers(headers...).
		Rows(rows...).
		String()
}
