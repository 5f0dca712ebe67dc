package report

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary = lipgloss.Color("#00BFFF")
	colorAccent  = lipgloss.Color("#FFD700")
	colorSuccess = lipgloss.Color("#00E676")
	colorDanger  = lipgloss.Color("#FF5252")
	colorMuted   = lipgloss.Color("#8C8C8C")
)

var (
	styleTitle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	styleLabel = lipgloss.NewStyle().
			Foreground(colorMuted)

	styleHeader = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true).
			Padding(0, 1)

	styleCell = lipgloss.NewStyle().
			Padding(0, 1)

	styleScoreHigh = lipgloss.NewStyle().
			Foreground(colorDanger).
			Bold(true)

	styleScoreMid = lipgloss.NewStyle().
			Foreground(colorAccent)

	styleScoreLow = lipgloss.NewStyle().
			Foreground(colorSuccess)

	styleWarning = lipgloss.NewStyle().
			Foreground(colorDanger)

	styleCard = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Padding(0, 1)
)

// Score bands used for coloring.
const (
	highScore = 7.0
	midScore  = 4.0
)

func scoreStyle(score float64) lipgloss.Style {
	switch {
	case score >= highScore:
		return styleScoreHigh
	case score >= midScore:
		return styleScoreMid
	default:
		return styleScoreLow
	}
}
