package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mlouvel/playdeck/internal/playlists"
	"github.com/mlouvel/playdeck/internal/ui"
	"github.com/mlouvel/playdeck/internal/ui/overlay"
	"github.com/mlouvel/playdeck/internal/ui/playerbar"
	"github.com/mlouvel/playdeck/internal/ui/popup"
	"github.com/mlouvel/playdeck/internal/ui/render"
	"github.com/mlouvel/playdeck/internal/ui/styles"
)

// statusHeight is the single transient message line above the player bar.
const statusHeight = 1

// barHeight returns the vertical space the player bar occupies, which is
// zero while nothing is loaded.
func barHeight(bar barState) int {
	if !bar.state.IsActive() {
		return 0
	}
	return playerbar.Height()
}

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	panels := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.renderPlaylistPanel(),
		m.renderTrackPanel(),
	)

	rows := []string{panels, m.renderStatusLine()}
	if bar := playerbar.Render(m.barRenderState(), m.width); bar != "" {
		rows = append(rows, bar)
	}
	view := lipgloss.JoinVertical(lipgloss.Left, rows...)

	switch {
	case m.helpOpen:
		view = overlay.Compose(view, popup.RenderBordered(m.help.View(), m.width, m.height, popup.SizeAuto), m.width, m.height)
	case m.confirm.Active():
		view = overlay.Compose(view, popup.RenderBordered(m.confirm.View(), m.width, m.height, popup.SizeAuto), m.width, m.height)
	case m.inputMode != inputNone:
		view = overlay.Compose(view, popup.RenderBordered(m.input.View(), m.width, m.height, popup.SizeAuto), m.width, m.height)
	}

	return view
}

func (m Model) barRenderState() playerbar.State {
	s := playerbar.State{
		PlaybackState: m.bar.state,
		Position:      m.bar.position,
		Duration:      m.bar.duration,
		Volume:        m.bar.volume,
		Muted:         m.bar.muted,
		Shuffle:       m.bar.shuffle,
		Repeat:        m.bar.repeat,
	}
	if m.bar.track != nil {
		s.Title = m.bar.track.Title
		s.Channel = m.bar.track.Channel
		s.Remote = m.bar.track.IsRemote()
		if s.Duration <= 0 {
			s.Duration = float64(m.bar.track.Duration)
		}
	}
	return s
}

func (m Model) renderPlaylistPanel() string {
	width, height := m.playlistList.Size()
	innerWidth := width - 2 // panel border

	var b strings.Builder
	b.WriteString(styles.T().S().Title.Render(render.TruncateAndPad("Playlists", innerWidth)))
	b.WriteString("\n")
	b.WriteString(render.Separator(innerWidth))
	b.WriteString("\n")

	items := m.playlistList.Items()
	start, end := m.playlistList.VisibleRange(ui.PanelOverhead)
	for i := start; i < end; i++ {
		b.WriteString(m.renderPlaylistRow(items[i], i, innerWidth))
		b.WriteString("\n")
	}
	if len(items) == 0 {
		b.WriteString(styles.T().S().Subtle.Render("  n: new playlist"))
		b.WriteString("\n")
	}

	content := strings.TrimSuffix(b.String(), "\n")
	return styles.PanelStyle(m.focus == focusPlaylists).
		Width(innerWidth).
		Height(height - ui.BorderHeight).
		Render(content)
}

func (m Model) renderPlaylistRow(pl playlists.Playlist, index, width int) string {
	label := fmt.Sprintf("%s (%d)", pl.Name, pl.TrackCount)
	row := render.TruncateAndPadEllipsis(" "+label, width)

	switch {
	case index == m.playlistList.SelectedIndex() && m.focus == focusPlaylists:
		return styles.T().S().Cursor.Render(row)
	case pl.ID == m.queuedPlaylist && m.bar.state.IsActive():
		return styles.T().S().Playing.Render(row)
	default:
		return styles.T().S().Base.Render(row)
	}
}

func (m Model) renderTrackPanel() string {
	width, height := m.trackList.Size()
	innerWidth := width - 2

	title := "Tracks"
	if pl := m.openPlaylistInfo(); pl != nil {
		title = pl.Name
	}

	var b strings.Builder
	b.WriteString(styles.T().S().Title.Render(render.TruncateAndPad(title, innerWidth)))
	b.WriteString("\n")
	b.WriteString(render.Separator(innerWidth))
	b.WriteString("\n")

	items := m.trackList.Items()
	start, end := m.trackList.VisibleRange(ui.PanelOverhead)
	for i := start; i < end; i++ {
		b.WriteString(m.renderTrackRow(items[i], i, innerWidth))
		b.WriteString("\n")
	}
	if len(items) == 0 {
		hint := "  enter a playlist to see its tracks"
		if m.openPlaylist != 0 {
			hint = "  a: add URL · i: import file"
		}
		b.WriteString(styles.T().S().Subtle.Render(hint))
		b.WriteString("\n")
	}

	content := strings.TrimSuffix(b.String(), "\n")
	return styles.PanelStyle(m.focus == focusTracks).
		Width(innerWidth).
		Height(height - ui.BorderHeight).
		Render(content)
}

func (m Model) renderTrackRow(track playlists.Track, index, width int) string {
	marker := "  "
	if m.isPlayingRow(track, index) {
		marker = "▶ "
	}

	durStr := "    --:--"
	if track.Duration > 0 {
		durStr = fmt.Sprintf("%6d:%02d", track.Duration/60, track.Duration%60)
	}
	kind := "yt"
	if track.Kind == playlists.KindLocal {
		kind = "local"
	}

	left := marker + track.Title
	if track.Channel != "" {
		left += "  " + track.Channel
	}
	leftWidth := max(width-len(durStr)-len(kind)-4, 8)
	row := render.TruncateAndPadEllipsis(left, leftWidth) + "  " +
		render.Pad(kind, 5) + " " + durStr

	switch {
	case index == m.trackList.SelectedIndex() && m.focus == focusTracks:
		return styles.T().S().Cursor.Render(row)
	case m.isPlayingRow(track, index):
		return styles.T().S().Playing.Render(row)
	default:
		return styles.T().S().Base.Render(row)
	}
}

// isPlayingRow reports whether the shown row is the engine's current
// track. Index alone is not enough: the open panel may show a different
// playlist than the queued one.
func (m Model) isPlayingRow(track playlists.Track, index int) bool {
	if !m.bar.state.IsActive() || m.bar.track == nil {
		return false
	}
	if m.openPlaylist != m.queuedPlaylist {
		return false
	}
	if id, ok := playlists.TrackIDFromPlayable(m.bar.track.ID); ok {
		return id == track.ID
	}
	return index == m.bar.index
}

func (m Model) renderStatusLine() string {
	if m.status == "" {
		return styles.T().S().Subtle.Render(render.TruncateAndPad(" ?: help", m.width))
	}
	return styles.T().S().Warning.Render(render.TruncateAndPadEllipsis(" "+m.status, m.width))
}

func (m Model) openPlaylistInfo() *playlists.Playlist {
	if m.openPlaylist == 0 {
		return nil
	}
	for _, pl := range m.playlistList.Items() {
		if pl.ID == m.openPlaylist {
			return &pl
		}
	}
	return nil
}
