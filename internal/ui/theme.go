package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme bundles the styles every renderer pulls from.
type Theme struct {
	Title, Muted, Header lipgloss.Style
	Success, Error       lipgloss.Style

	// Row treatments: Danger for high priority, Active for everything else.
	Danger, Active lipgloss.Style

	Border      lipgloss.Border
	BorderColor lipgloss.TerminalColor
}

var current = classic()

// SetTheme switches the palette. Unknown names fall back to classic.
func SetTheme(name string) {
	switch strings.ToLower(name) {
	case "neon":
		current = Theme{
			Title:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("201")),
			Muted:       lipgloss.NewStyle().Faint(true),
			Header:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("51")),
			Success:     lipgloss.NewStyle().Foreground(lipgloss.Color("46")),
			Error:       lipgloss.NewStyle().Foreground(lipgloss.Color("197")).Bold(true),
			Danger:      lipgloss.NewStyle().Foreground(lipgloss.Color("231")).Background(lipgloss.Color("197")),
			Active:      lipgloss.NewStyle().Foreground(lipgloss.Color("159")),
			Border:      lipgloss.RoundedBorder(),
			BorderColor: lipgloss.Color("201"),
		}
	case "mono":
		plain := lipgloss.NewStyle()
		current = Theme{
			Title:       plain.Bold(true),
			Muted:       plain,
			Header:      plain.Underline(true),
			Success:     plain,
			Error:       plain,
			Danger:      plain.Reverse(true),
			Active:      plain,
			Border:      lipgloss.NormalBorder(),
			BorderColor: lipgloss.NoColor{},
		}
	default:
		current = classic()
	}
}

func classic() Theme {
	return Theme{
		Title:       lipgloss.NewStyle().Bold(true),
		Muted:       lipgloss.NewStyle().Faint(true),
		Header:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Success:     lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Error:       lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Danger:      lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("124")),
		Active:      lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		Border:      lipgloss.RoundedBorder(),
		BorderColor: lipgloss.Color("8"),
	}
}

// Current returns the active theme.
func Current() Theme { return current }
