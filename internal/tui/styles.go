package tui

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title    lipgloss.Style
	text     lipgloss.Style
	selected lipgloss.Style
	muted    lipgloss.Style
	help     lipgloss.Style
	status   lipgloss.Style
	panel    lipgloss.Style
	canvas   lipgloss.Style
	badge    lipgloss.Style
	warning  lipgloss.Style
}

func newStyles(highContrast bool) styles {
	if highContrast {
		return styles{
			title:    lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFF00")).Bold(true).Underline(true),
			text:     lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")),
			selected: lipgloss.NewStyle().Foreground(lipgloss.Color("#000000")).Background(lipgloss.Color("#FFFF00")).Bold(true),
			muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")),
			help:     lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Bold(true),
			status: lipgloss.NewStyle().
				Foreground(lipgloss.Color("#000000")).
				Background(lipgloss.Color("#FFFFFF")).
				Bold(true).
				PaddingLeft(1),
			panel: lipgloss.NewStyle().
				Border(lipgloss.ThickBorder(), false, false, false, true).
				BorderForeground(lipgloss.Color("#FFFF00")).
				PaddingLeft(2).
				Foreground(lipgloss.Color("#FFFFFF")),
			canvas: lipgloss.NewStyle().
				Border(lipgloss.ThickBorder()).
				BorderForeground(lipgloss.Color("#FFFFFF")).
				Foreground(lipgloss.Color("#FFFFFF")),
			badge:   lipgloss.NewStyle().Foreground(lipgloss.Color("#000000")).Background(lipgloss.Color("#00FFFF")).Bold(true).Padding(0, 1),
			warning: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")).Background(lipgloss.Color("#FFFFFF")).Bold(true),
		}
	}

	return styles{
		title:    lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500")).Bold(true).Underline(true),
		text:     lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")),
		selected: lipgloss.NewStyle().Foreground(lipgloss.Color("#EEEEEE")).Background(lipgloss.Color("#5F5F87")).Bold(true),
		muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")),
		help:     lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Italic(true),
		status: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EEEEEE")).
			Background(lipgloss.Color("#3C3C3C")).
			PaddingLeft(1),
		panel: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("#3C3C3C")).
			PaddingLeft(2).
			Foreground(lipgloss.Color("#AAAAAA")),
		canvas: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#5F5F87")).
			Foreground(lipgloss.Color("#DDDDDD")),
		badge:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#5F5F87")).Padding(0, 1),
		warning: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F5F")).Bold(true),
	}
}

// panelWidth is the width of the side panel for a font size setting.
func panelWidth(fontSize string) int {
	switch fontSize {
	case "small":
		return 28
	case "large":
		return 44
	default:
		return 36
	}
}
