// Package ui holds the Lip Gloss styles shared by the bucket CLI and TUI.
package ui

import (
	"fmt"

	"github.com/Dias221467/bucket-list/internal/bucket"
	"github.com/Dias221467/bucket-list/internal/models"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

var (
	TitleStyle   = lipgloss.NewStyle().Bold(true)
	SuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	PendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	AccentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	MutedStyle   = lipgloss.NewStyle().Faint(true)
	ErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)

	SelectedStyle = lipgloss.NewStyle().Bold(true).Reverse(true)
	DoneStyle     = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	BannerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")).
			Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("42")).Padding(0, 1)
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1)

	BoxChecked   = "☑"
	BoxUnchecked = "☐"
)

// DefaultBarWidth is the progress bar width when the terminal size is unknown.
const DefaultBarWidth = 28

// Header renders the title line with live counts.
func Header(v bucket.Views) string {
	return fmt.Sprintf("%s   %s %d  %s %d  %s %d",
		TitleStyle.Render("Bucket List"),
		SuccessStyle.Render("✔"), len(v.Completed),
		PendingStyle.Render("•"), len(v.Active),
		AccentStyle.Render("Total"), v.Total(),
	)
}

// NewProgressBar returns the bar used for the completion percentage.
func NewProgressBar(width int) progress.Model {
	if width <= 0 {
		width = DefaultBarWidth
	}
	return progress.New(
		progress.WithDefaultGradient(),
		progress.WithoutPercentage(),
		progress.WithWidth(width),
	)
}

// ProgressLine renders bar followed by the rounded percentage and counts.
func ProgressLine(bar progress.Model, v bucket.Views) string {
	return fmt.Sprintf("%s %3d%%  %s",
		bar.ViewAs(float64(v.Progress)/100),
		v.Progress,
		MutedStyle.Render(fmt.Sprintf("%d/%d done", len(v.Completed), v.Total())),
	)
}

// ItemLine renders a checkbox and the item text.
func ItemLine(item models.GoalItem) string {
	if item.Completed() {
		return SuccessStyle.Render(BoxChecked) + " " + DoneStyle.Render(item.Text)
	}
	return MutedStyle.Render(BoxUnchecked) + " " + item.Text
}
