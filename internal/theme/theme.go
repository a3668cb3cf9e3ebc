package theme

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type Theme struct {
	Name       string
	Accent     string
	AccentDark string
	Ink        string
	Muted      string
	Background string
}

var Themes = []Theme{
	{
		Name:       "Ocean",
		Accent:     "#34B3A0",
		AccentDark: "#0F2E2B",
		Ink:        "#E6EDF3",
		Muted:      "#8AA1A8",
		Background: "#0B1115",
	},
	{
		Name:       "Sand",
		Accent:     "#D7A86E",
		AccentDark: "#332819",
		Ink:        "#F2E8D5",
		Muted:      "#B8A387",
		Background: "#1A140D",
	},
	{
		Name:       "Day",
		Accent:     "#3B82F6",
		AccentDark: "#E6EEF9",
		Ink:        "#0B1220",
		Muted:      "#506072",
		Background: "#F7FAFF",
	},
}

// Semantic colors, identical across themes.
const (
	SuccessColor = "#4ade80"
	WarningColor = "#facc15"
	DangerColor  = "#f87171"
)

// Index returns the position of the named theme, ignoring case, or 0 when
// there is no such theme.
func Index(name string) int {
	for i, t := range Themes {
		if strings.EqualFold(t.Name, name) {
			return i
		}
	}
	return 0
}

type Styles struct {
	Name string

	Header    lipgloss.Style
	Footer    lipgloss.Style
	Card      lipgloss.Style
	AlertCard lipgloss.Style
	CardTitle lipgloss.Style
	Value     lipgloss.Style
	Label     lipgloss.Style
	Faint     lipgloss.Style
	Banner    lipgloss.Style
	Refresh   lipgloss.Style
	// Refresh badge while the update pulse is running.
	RefreshDim lipgloss.Style

	// Badge and bar colors by level
	Success lipgloss.Style
	Warning lipgloss.Style
	Danger  lipgloss.Style

	Accent     lipgloss.Color
	AccentDark lipgloss.Color
	Ink        lipgloss.Color
	Muted      lipgloss.Color
	Background lipgloss.Color
}

func BuildStyles(index int) Styles {
	if index < 0 || index >= len(Themes) {
		index = 0
	}
	t := Themes[index]

	s := Styles{Name: t.Name}
	s.Accent = lipgloss.Color(t.Accent)
	s.AccentDark = lipgloss.Color(t.AccentDark)
	s.Ink = lipgloss.Color(t.Ink)
	s.Muted = lipgloss.Color(t.Muted)
	s.Background = lipgloss.Color(t.Background)

	s.Header = lipgloss.NewStyle().Foreground(s.Background).Background(s.Accent).Bold(true).Padding(0, 1)
	s.Footer = lipgloss.NewStyle().Foreground(s.Muted).Padding(0, 1)
	s.Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(s.Muted).
		Padding(0, 1)
	s.AlertCard = s.Card.BorderForeground(lipgloss.Color(DangerColor))
	s.CardTitle = lipgloss.NewStyle().Foreground(s.Accent).Bold(true)
	s.Value = lipgloss.NewStyle().Foreground(s.Ink).Bold(true)
	s.Label = lipgloss.NewStyle().Foreground(s.Ink)
	s.Faint = lipgloss.NewStyle().Foreground(s.Muted)
	s.Banner = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#1A0B0B")).
		Background(lipgloss.Color(DangerColor)).
		Bold(true).
		Padding(0, 1)
	s.Refresh = lipgloss.NewStyle().Foreground(s.Ink).Background(s.AccentDark).Padding(0, 1)
	s.RefreshDim = s.Refresh.Foreground(s.Muted).Faint(true)

	s.Success = lipgloss.NewStyle().Foreground(lipgloss.Color(SuccessColor)).Bold(true)
	s.Warning = lipgloss.NewStyle().Foreground(lipgloss.Color(WarningColor)).Bold(true)
	s.Danger = lipgloss.NewStyle().Foreground(lipgloss.Color(DangerColor)).Bold(true)

	return s
}
