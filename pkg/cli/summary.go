// Package cli provides terminal output helpers shared by the snrgen
// commands: a summary card for run results and human-readable
// formatting of durations and sizes.
package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the color scheme for terminal output.
type Theme struct {
	Primary lipgloss.Color // accent color
	Dim     lipgloss.Color // secondary text
}

// DefaultTheme is the default bright green theme.
var DefaultTheme = Theme{
	Primary: lipgloss.Color("#00ff9f"),
	Dim:     lipgloss.Color("#6e7681"),
}

// Styles holds all styles derived from a theme.
type Styles struct {
	Title  lipgloss.Style
	Label  lipgloss.Style
	Border lipgloss.Style
	Value  lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(t Theme) Styles {
	return Styles{
		Title:  lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Label:  lipgloss.NewStyle().Foreground(t.Dim),
		Border: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.Primary).Padding(0, 1),
		Value:  lipgloss.NewStyle(),
	}
}

// KV is one labeled row of a summary card.
type KV struct {
	Key   string
	Value string
}

// Summary is a bordered key-value card printed at the end of a command.
type Summary struct {
	Title string
	Rows  []KV
}

// Render renders the card with the default theme.
func (s Summary) Render() string {
	return s.RenderStyled(NewStyles(DefaultTheme))
}

// RenderStyled renders the card with explicit styles.
func (s Summary) RenderStyled(st Styles) string {
	keyWidth := 0
	for _, r := range s.Rows {
		if len(r.Key) > keyWidth {
			keyWidth = len(r.Key)
		}
	}

	lines := make([]string, 0, len(s.Rows)+1)
	lines = append(lines, st.Title.Render(s.Title))
	for _, r := range s.Rows {
		pad := strings.Repeat(" ", keyWidth-len(r.Key))
		lines = append(lines, st.Label.Render(r.Key+pad)+"  "+st.Value.Render(r.Value))
	}
	return st.Border.Render(strings.Join(lines, "\n"))
}
