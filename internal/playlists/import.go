package playlists

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"

	"github.com/mlouvel/playdeck/internal/blobstore"
	"github.com/mlouvel/playdeck/internal/playback"
)

// videoExts classifies an imported file as video by its name. Everything
// else imports as audio.
var videoExts = map[string]bool{
	".mp4":  true,
	".webm": true,
	".mkv":  true,
	".mov":  true,
	".avi":  true,
}

// ImportLocal stores a media file in the blob store and appends it to a
// playlist. The title comes from embedded tags when present, else from
// the file name. The blob store enforces the size cap; nothing is kept
// on failure.
func (s *Store) ImportLocal(playlistID int64, filename string, f io.ReadSeeker) (*Track, error) {
	subtype := playback.SubtypeAudio
	if videoExts[strings.ToLower(filepath.Ext(filename))] {
		subtype = playback.SubtypeVideo
	}

	title, channel := titleFromTags(f, filename)
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	ref := blobstore.NewID()
	if _, err := s.blobs.Put(ref, f); err != nil {
		return nil, err
	}

	t, err := s.AddLocal(playlistID, ref, subtype, title)
	if err != nil {
		_ = s.blobs.Delete(ref)
		return nil, err
	}
	if channel != "" {
		_, err = s.db.Exec(`UPDATE playlist_tracks SET channel = ? WHERE id = ?`, channel, t.ID)
		if err != nil {
			return nil, err
		}
		t.Channel = channel
	}
	return t, nil
}

// titleFromTags reads embedded metadata, falling back to the bare file
// name. Tag reading is best-effort; video containers usually fail it.
func titleFromTags(f io.ReadSeeker, filename string) (title, channel string) {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	m, err := tag.ReadFrom(f)
	if err != nil {
		return base, ""
	}
	title = strings.TrimSpace(m.Title())
	if title == "" {
		title = base
	}
	return title, strings.TrimSpace(m.Artist())
}
