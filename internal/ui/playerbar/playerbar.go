// Package playerbar renders the bottom status bar with track info and progress.
package playerbar

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mlouvel/playdeck/internal/playback"
	"github.com/mlouvel/playdeck/internal/ui/render"
)

const (
	playSymbol    = "▶"
	pauseSymbol   = "⏸"
	loadingSymbol = "…"
)

// State holds everything needed to render the player bar.
type State struct {
	PlaybackState playback.State
	Title         string
	Channel       string
	Remote        bool // streamed from an external service
	Position      float64
	Duration      float64
	Volume        float64
	Muted         bool
	Shuffle       bool
	Repeat        playback.RepeatMode
}

// Height returns the total height of the player bar.
func Height() int {
	return 3 // top border + content + bottom border
}

// NewState snapshots the engine into a renderable State.
func NewState(e *playback.Engine) State {
	s := State{
		PlaybackState: e.State(),
		Position:      e.Position(),
		Duration:      e.Duration(),
		Volume:        e.Volume(),
		Muted:         e.Muted(),
		Shuffle:       e.Shuffle(),
		Repeat:        e.RepeatMode(),
	}
	if track := e.CurrentTrack(); track != nil {
		s.Title = track.Title
		s.Channel = track.Channel
		s.Remote = track.IsRemote()
		if s.Duration <= 0 {
			s.Duration = float64(track.Duration)
		}
	}
	return s
}

// Render returns the player bar string for the given width.
// Returns empty string when nothing is loaded.
func Render(s State, width int) string {
	if !s.PlaybackState.IsActive() {
		return ""
	}

	innerWidth := max(width-6, 0)

	status := playSymbol
	switch s.PlaybackState {
	case playback.StatePaused:
		status = pauseSymbol
	case playback.StateLoading:
		status = loadingSymbol
	}

	title := s.Title
	if title == "" {
		title = "Unknown Track"
	}

	var infoParts []string
	if s.Channel != "" {
		infoParts = append(infoParts, s.Channel)
	}
	if s.Remote {
		infoParts = append(infoParts, "stream")
	}
	info := strings.Join(infoParts, " · ")

	timeStr := fmt.Sprintf("%s / %s", formatSeconds(s.Position), formatSeconds(s.Duration))
	modeStr := renderModes(s)
	volStr := renderVolume(s.Volume, s.Muted)

	separator := "   "
	sepWidth := lipgloss.Width(separator)
	statusWidth := lipgloss.Width(status + "  ")
	rightWidth := lipgloss.Width(timeStr) + sepWidth + lipgloss.Width(volStr)
	if modeStr != "" {
		rightWidth += sepWidth + lipgloss.Width(modeStr)
	}

	minBarWidth := 10
	availableForContent := innerWidth - statusWidth - rightWidth - sepWidth*2 - minBarWidth

	titleWidth := lipgloss.Width(title)
	infoWidth := lipgloss.Width(info)

	var styledTitle, styledInfo string
	var usedContentWidth int

	switch {
	case titleWidth+sepWidth+infoWidth <= availableForContent:
		styledTitle = titleStyle.Render(title)
		styledInfo = channelStyle.Render(info)
		usedContentWidth = titleWidth + sepWidth + infoWidth
	case titleWidth+sepWidth <= availableForContent && info != "":
		maxInfo := availableForContent - titleWidth - sepWidth
		styledTitle = titleStyle.Render(title)
		styledInfo = channelStyle.Render(render.TruncateEllipsis(info, maxInfo))
		usedContentWidth = titleWidth + sepWidth + maxInfo
	default:
		maxTitle := max(availableForContent, 10)
		styledTitle = titleStyle.Render(render.TruncateEllipsis(title, maxTitle))
		styledInfo = ""
		usedContentWidth = min(titleWidth, maxTitle)
	}

	barWidth := max(innerWidth-usedContentWidth-statusWidth-rightWidth-sepWidth*2, 5)

	var ratio float64
	if s.Duration > 0 {
		ratio = s.Position / s.Duration
	}
	filled := min(int(float64(barWidth)*ratio), barWidth)
	filledBar := progressFilledStyle.Render(strings.Repeat("━", filled))
	emptyBar := progressEmptyStyle.Render(strings.Repeat("─", barWidth-filled))

	// Title   Channel · stream   ▶ ━━━───   1:23 / 3:58   🔊  80%   ⇄ ↻
	var content strings.Builder
	content.WriteString(styledTitle)
	if styledInfo != "" {
		content.WriteString(separator)
		content.WriteString(styledInfo)
	}
	content.WriteString(separator)
	content.WriteString(status)
	content.WriteString("  ")
	content.WriteString(filledBar)
	content.WriteString(emptyBar)
	content.WriteString(separator)
	content.WriteString(timeStyle.Render(timeStr))
	content.WriteString(separator)
	content.WriteString(volStr)
	if modeStr != "" {
		content.WriteString(separator)
		content.WriteString(modeStyle.Render(modeStr))
	}

	return barStyle.Padding(0, 2).Width(width - 2).Render(content.String())
}

func renderModes(s State) string {
	var parts []string
	if s.Shuffle {
		parts = append(parts, "⇄")
	}
	switch s.Repeat {
	case playback.RepeatAll:
		parts = append(parts, "↻")
	case playback.RepeatOne:
		parts = append(parts, "↻1")
	case playback.RepeatOff:
	}
	return strings.Join(parts, " ")
}

func renderVolume(volume float64, muted bool) string {
	if muted {
		return timeStyle.Render("🔇  --%")
	}
	return timeStyle.Render(fmt.Sprintf("🔊 %3d%%", int(volume*100+0.5)))
}

func formatSeconds(secs float64) string {
	if secs < 0 {
		secs = 0
	}
	total := int(secs)
	m := total / 60
	s := total % 60
	return fmt.Sprintf("%d:%02d", m, s)
}
