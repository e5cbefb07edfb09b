package keymap

// Binding associates an action with its keys, for dispatch and help text.
type Binding struct {
	Action      Action
	Keys        []string
	Description string
	Context     string // "global", "playback", "playlists", "tracks"
}

// All contains all key bindings for dispatch and help generation.
var All = []Binding{
	// Global
	{ActionQuit, []string{"q", "ctrl+c"}, "Quit application", "global"},
	{ActionSwitchFocus, []string{"tab"}, "Switch focus", "global"},
	{ActionHelp, []string{"?"}, "Show help", "global"},

	// Playback
	{ActionPlayPause, []string{" "}, "Play/pause", "playback"},
	{ActionStop, []string{"s"}, "Stop", "playback"},
	{ActionNextTrack, []string{"pgdown", ">"}, "Next track", "playback"},
	{ActionPrevTrack, []string{"pgup", "<"}, "Previous track", "playback"},
	{ActionSeekForward, []string{"shift+right"}, "Seek forward", "playback"},
	{ActionSeekBack, []string{"shift+left"}, "Seek back", "playback"},
	{ActionCycleRepeat, []string{"R"}, "Cycle repeat mode", "playback"},
	{ActionToggleShuffle, []string{"S"}, "Toggle shuffle", "playback"},
	{ActionVolumeUp, []string{"+", "="}, "Volume up", "playback"},
	{ActionVolumeDown, []string{"-"}, "Volume down", "playback"},
	{ActionToggleMute, []string{"m"}, "Toggle mute", "playback"},

	// Navigation
	{ActionMoveUp, []string{"k", "up"}, "Move up", "global"},
	{ActionMoveDown, []string{"j", "down"}, "Move down", "global"},
	{ActionJumpStart, []string{"g", "home"}, "First item", "global"},
	{ActionJumpEnd, []string{"G", "end"}, "Last item", "global"},
	{ActionEnter, []string{"enter"}, "Open/play", "global"},

	// Playlist management
	{ActionNewPlaylist, []string{"n"}, "New playlist", "playlists"},
	{ActionRename, []string{"ctrl+r"}, "Rename playlist", "playlists"},
	{ActionDelete, []string{"d", "delete"}, "Delete", "playlists"},

	// Track editing
	{ActionAddMedia, []string{"a"}, "Add video or playlist URL", "tracks"},
	{ActionImportFile, []string{"i"}, "Import media file", "tracks"},
	{ActionMoveTrackUp, []string{"K"}, "Move track up", "tracks"},
	{ActionMoveTrackDown, []string{"J"}, "Move track down", "tracks"},
}

// ByContext returns key bindings filtered by context.
func ByContext(context string) []Binding {
	var result []Binding
	for _, kb := range All {
		if kb.Context == context {
			result = append(result, kb)
		}
	}
	return result
}
