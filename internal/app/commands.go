package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mlouvel/playdeck/internal/errmsg"
	"github.com/mlouvel/playdeck/internal/metadata"
	"github.com/mlouvel/playdeck/internal/playback"
	"github.com/mlouvel/playdeck/internal/playlists"
	"github.com/mlouvel/playdeck/internal/stderr"
)

const mediaFetchTimeout = 2 * time.Minute

// Engine subscription listeners. Each blocks on one channel and is
// re-issued by Update after its message is handled.

func listenState(sub *playback.Subscription) tea.Cmd {
	return func() tea.Msg {
		select {
		case ev := <-sub.StateChanged:
			return stateChangedMsg(ev)
		case <-sub.Done:
			return engineDoneMsg{}
		}
	}
}

func listenTrack(sub *playback.Subscription) tea.Cmd {
	return func() tea.Msg {
		select {
		case ev := <-sub.TrackChanged:
			return trackChangedMsg(ev)
		case <-sub.Done:
			return engineDoneMsg{}
		}
	}
}

func listenProgress(sub *playback.Subscription) tea.Cmd {
	return func() tea.Msg {
		select {
		case ev := <-sub.ProgressChanged:
			return progressMsg(ev)
		case <-sub.Done:
			return engineDoneMsg{}
		}
	}
}

func listenDuration(sub *playback.Subscription) tea.Cmd {
	return func() tea.Msg {
		select {
		case ev := <-sub.DurationChanged:
			return durationMsg(ev)
		case <-sub.Done:
			return engineDoneMsg{}
		}
	}
}

func listenMode(sub *playback.Subscription) tea.Cmd {
	return func() tea.Msg {
		select {
		case ev := <-sub.ModeChanged:
			return modeMsg(ev)
		case <-sub.Done:
			return engineDoneMsg{}
		}
	}
}

func listenVolume(sub *playback.Subscription) tea.Cmd {
	return func() tea.Msg {
		select {
		case ev := <-sub.VolumeChanged:
			return volumeMsg(ev)
		case <-sub.Done:
			return engineDoneMsg{}
		}
	}
}

func listenError(sub *playback.Subscription) tea.Cmd {
	return func() tea.Msg {
		select {
		case ev := <-sub.Error:
			return playbackErrMsg(ev)
		case <-sub.Done:
			return engineDoneMsg{}
		}
	}
}

// listenStderr surfaces lines the audio libraries wrote to fd 2 while
// the terminal is in TUI mode.
func listenStderr() tea.Cmd {
	return func() tea.Msg {
		line, ok := <-stderr.Messages
		if !ok {
			return nil
		}
		return stderrMsg(line)
	}
}

// Store commands.

func loadPlaylists(store *playlists.Store) tea.Cmd {
	return func() tea.Msg {
		lists, err := store.List()
		return playlistsLoadedMsg{playlists: lists, err: err}
	}
}

func loadTracks(store *playlists.Store, playlistID int64) tea.Cmd {
	return func() tea.Msg {
		tracks, err := store.Tracks(playlistID)
		return tracksLoadedMsg{playlistID: playlistID, tracks: tracks, err: err}
	}
}

// addMedia resolves user input (a video URL, bare video id, or playlist
// URL) and adds the resulting tracks to the playlist.
func addMedia(store *playlists.Store, meta *metadata.Client, playlistID int64, input string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mediaFetchTimeout)
		defer cancel()

		input = strings.TrimSpace(input)

		if listID, ok := metadata.ExtractPlaylistID(input); ok {
			items, err := metadata.FetchPlaylistItems(ctx, listID)
			if err != nil {
				return mediaAddedMsg{playlistID: playlistID, err: err}
			}
			added := 0
			for _, item := range items {
				if _, err := store.AddRemote(playlistID, item.VideoID, item.Title, item.Channel, item.Duration, item.Thumbnail); err != nil {
					return mediaAddedMsg{playlistID: playlistID, added: added, err: err}
				}
				added++
			}
			return mediaAddedMsg{playlistID: playlistID, added: added}
		}

		videoID, ok := metadata.ExtractVideoID(input)
		if !ok {
			return mediaAddedMsg{playlistID: playlistID, err: fmt.Errorf("not a recognizable video or playlist: %q", input)}
		}
		info := meta.Fetch(ctx, videoID)
		if _, err := store.AddRemote(playlistID, info.VideoID, info.Title, info.Channel, info.Duration, info.Thumbnail); err != nil {
			return mediaAddedMsg{playlistID: playlistID, err: err}
		}
		return mediaAddedMsg{playlistID: playlistID, added: 1}
	}
}

// importFile copies a media file from disk into the blob store and appends
// it to the playlist.
func importFile(store *playlists.Store, playlistID int64, path string) tea.Cmd {
	return func() tea.Msg {
		path = expandHome(strings.TrimSpace(path))
		f, err := os.Open(path)
		if err != nil {
			return importedMsg{playlistID: playlistID, err: err}
		}
		defer f.Close()

		var size int64
		if fi, err := f.Stat(); err == nil {
			size = fi.Size()
		}

		track, err := store.ImportLocal(playlistID, filepath.Base(path), f)
		if err != nil {
			return importedMsg{playlistID: playlistID, err: err}
		}
		return importedMsg{playlistID: playlistID, title: track.Title, size: size}
	}
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

func errStatus(op errmsg.Op, err error) tea.Cmd {
	return func() tea.Msg {
		return statusMsg(errmsg.Format(op, err))
	}
}
