package report

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/mattjoyce/s3-maven-cleaner/internal/cleaner"
)

// Theme keeps all report colors in one place.
type Theme struct {
	Pruned     lipgloss.Style
	Incomplete lipgloss.Style
	Failed     lipgloss.Style

	Border lipgloss.Style
	Title  lipgloss.Style
	Header lipgloss.Style
	Dim    lipgloss.Style
	Delete lipgloss.Style
}

func NewDefaultTheme() Theme {
	purple := lipgloss.Color("#874BFD")

	return Theme{
		Pruned:     lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00")),
		Incomplete: lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFF00")),
		Failed:     lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")),

		Border: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(purple).
			Padding(0, 1),
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")),
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#61AFEF")),
		Dim:    lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")),
		Delete: lipgloss.NewStyle().Foreground(lipgloss.Color("#E06C75")),
	}
}

func (t Theme) outcome(outcome string) lipgloss.Style {
	switch outcome {
	case cleaner.OutcomePruned:
		return t.Pruned
	case cleaner.OutcomeIncomplete:
		return t.Incomplete
	default:
		return t.Failed
	}
}
