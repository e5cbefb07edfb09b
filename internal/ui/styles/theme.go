package styles

import "github.com/charmbracelet/lipgloss"

// Theme is the application palette plus the styles derived from it.
type Theme struct {
	Primary   lipgloss.Color // accent: focus, now-playing
	Secondary lipgloss.Color

	FgBase   lipgloss.Color
	FgMuted  lipgloss.Color
	FgSubtle lipgloss.Color

	BgBase   lipgloss.Color
	BgCursor lipgloss.Color

	Border      lipgloss.Color
	BorderFocus lipgloss.Color

	Success lipgloss.Color
	Error   lipgloss.Color
	Warning lipgloss.Color

	styles *Styles
}

// Styles are the pre-built lipgloss styles shared by all panels.
type Styles struct {
	Base    lipgloss.Style
	Muted   lipgloss.Style
	Subtle  lipgloss.Style
	Title   lipgloss.Style
	Playing lipgloss.Style // track the engine currently has armed
	Cursor  lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
}

// Teal accent over warm grays.
var defaultTheme = Theme{
	Primary:   lipgloss.Color("#2dd4bf"),
	Secondary: lipgloss.Color("#fb923c"),

	FgBase:   lipgloss.Color("#d6d3d1"),
	FgMuted:  lipgloss.Color("#8a8681"),
	FgSubtle: lipgloss.Color("#57534e"),

	BgBase:   lipgloss.Color("#191817"),
	BgCursor: lipgloss.Color("#33312e"),

	Border:      lipgloss.Color("#57534e"),
	BorderFocus: lipgloss.Color("#2dd4bf"),

	Success: lipgloss.Color("#4ade80"),
	Error:   lipgloss.Color("#f87171"),
	Warning: lipgloss.Color("#fbbf24"),
}

// T returns the default theme.
func T() *Theme {
	return &defaultTheme
}

// S returns the theme's pre-built styles.
func (t *Theme) S() *Styles {
	if t.styles == nil {
		base := lipgloss.NewStyle().Foreground(t.FgBase)
		t.styles = &Styles{
			Base:    base,
			Muted:   lipgloss.NewStyle().Foreground(t.FgMuted),
			Subtle:  lipgloss.NewStyle().Foreground(t.FgSubtle),
			Title:   base.Bold(true),
			Playing: lipgloss.NewStyle().Foreground(t.Primary).Bold(true),
			Cursor:  lipgloss.NewStyle().Background(t.BgCursor).Foreground(t.FgBase),
			Success: lipgloss.NewStyle().Foreground(t.Success),
			Error:   lipgloss.NewStyle().Foreground(t.Error),
			Warning: lipgloss.NewStyle().Foreground(t.Warning),
		}
	}
	return t.styles
}
