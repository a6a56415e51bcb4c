package runner

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/richhaase/hands/internal/domain"
	"github.com/richhaase/hands/internal/terminal"
)

var (
	reportTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	reportLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Width(16)
	reportValueStyle = lipgloss.NewStyle()
	reportWarnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

// RenderReport renders the end-of-session summary.
func RenderReport(stats domain.SessionStats) string {
	width := terminal.ReportWidth()

	if stats.Processed == 0 && stats.Failed == 0 {
		return reportLabelStyle.UnsetWidth().Render("No comments processed.")
	}

	var lines []string
	lines = append(lines, "")
	lines = append(lines, reportTitleStyle.Render("Session summary"))
	lines = append(lines, terminal.Ruler(width, "─"))

	row := func(label, value string) {
		lines = append(lines, "  "+lipgloss.JoinHorizontal(lipgloss.Top,
			reportLabelStyle.Render(label), reportValueStyle.Render(value)))
	}

	row("Comments", fmt.Sprintf("%d processed", stats.Processed))
	if stats.Failed > 0 {
		lines = append(lines, "  "+lipgloss.JoinHorizontal(lipgloss.Top,
			reportLabelStyle.Render("Failed"), reportWarnStyle.Render(fmt.Sprintf("%d", stats.Failed))))
	}
	row("Agent runs", fmt.Sprintf("%d", stats.Attempts))
	row("Check failures", fmt.Sprintf("%d", stats.CheckFailures))
	row("Cost", terminal.FormatCost(stats.CostUSD))
	row("Time", terminal.FormatDuration(stats.Duration))

	return strings.Join(lines, "\n")
}
