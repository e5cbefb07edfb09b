package playlists

import (
	"strconv"

	"github.com/mlouvel/playdeck/internal/playback"
)

// Playable converts a stored track into its engine form. The engine track
// id is the store row id in decimal, so duration discoveries can be
// written back.
func (t Track) Playable() playback.Track {
	p := playback.Track{
		ID:        strconv.FormatInt(t.ID, 10),
		Title:     t.Title,
		Channel:   t.Channel,
		Duration:  t.Duration,
		Thumbnail: t.Thumbnail,
	}
	switch t.Kind {
	case KindLocal:
		p.Source = playback.LocalSource{ContentRef: t.ContentRef, Subtype: t.Subtype}
	default:
		p.Source = playback.RemoteSource{VideoID: t.VideoID}
	}
	return p
}

// TrackIDFromPlayable parses the store row id out of an engine track id.
func TrackIDFromPlayable(id string) (int64, bool) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// Queue adapts one playlist to the engine's queue contract. It reads
// through to the database on every call, so edits made while playing are
// picked up on the next navigation.
type Queue struct {
	store      *Store
	playlistID int64
}

// Queue returns the engine-facing queue over one playlist.
func (s *Store) Queue(playlistID int64) *Queue {
	return &Queue{store: s, playlistID: playlistID}
}

// PlaylistID returns the playlist this queue reads from.
func (q *Queue) PlaylistID() int64 { return q.playlistID }

func (q *Queue) Len() int {
	var n int
	err := q.store.db.QueryRow(`
		SELECT COUNT(*) FROM playlist_tracks WHERE playlist_id = ?
	`, q.playlistID).Scan(&n)
	if err != nil {
		return 0
	}
	return n
}

func (q *Queue) Track(i int) (playback.Track, bool) {
	if i < 0 {
		return playback.Track{}, false
	}
	row := q.store.db.QueryRow(selectTracks+`
		WHERE playlist_id = ?
		ORDER BY position
		LIMIT 1 OFFSET ?
	`, q.playlistID, i)
	t, err := scanTrack(row)
	if err != nil {
		return playback.Track{}, false
	}
	return t.Playable(), true
}

// Verify Queue implements the engine contract at compile time.
var _ playback.QueueSource = (*Queue)(nil)
