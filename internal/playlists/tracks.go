package playlists

import (
	"database/sql"
	"errors"
	"time"

	"github.com/mlouvel/playdeck/internal/db"
	"github.com/mlouvel/playdeck/internal/playback"
)

// TrackKind discriminates the two media sources a stored track can have.
type TrackKind string

const (
	KindRemote TrackKind = "remote"
	KindLocal  TrackKind = "local"
)

// Track is one stored playlist entry.
type Track struct {
	ID         int64
	PlaylistID int64
	Position   int
	Kind       TrackKind
	VideoID    string // remote only
	ContentRef string // local only
	Subtype    playback.Subtype
	Title      string
	Channel    string
	Duration   int // seconds; 0 until discovered
	Thumbnail  string
	AddedAt    time.Time
}

// AddRemote appends a streamed track to a playlist.
func (s *Store) AddRemote(playlistID int64, videoID, title, channel string, duration int, thumbnail string) (*Track, error) {
	t := Track{
		PlaylistID: playlistID,
		Kind:       KindRemote,
		VideoID:    videoID,
		Title:      title,
		Channel:    channel,
		Duration:   duration,
		Thumbnail:  thumbnail,
	}
	return s.appendTrack(t)
}

// AddLocal appends a locally stored track to a playlist.
func (s *Store) AddLocal(playlistID int64, contentRef string, subtype playback.Subtype, title string) (*Track, error) {
	t := Track{
		PlaylistID: playlistID,
		Kind:       KindLocal,
		ContentRef: contentRef,
		Subtype:    subtype,
		Title:      title,
	}
	return s.appendTrack(t)
}

func (s *Store) appendTrack(t Track) (*Track, error) {
	now := time.Now().Unix()
	err := db.WithTx(s.db, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRow(`SELECT 1 FROM playlists WHERE id = ?`, t.PlaylistID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		var pos int
		err = tx.QueryRow(`
			SELECT COALESCE(MAX(position) + 1, 0) FROM playlist_tracks WHERE playlist_id = ?
		`, t.PlaylistID).Scan(&pos)
		if err != nil {
			return err
		}

		res, err := tx.Exec(`
			INSERT INTO playlist_tracks
				(playlist_id, position, kind, video_id, content_ref, subtype,
				 title, channel, duration, thumbnail, added_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, t.PlaylistID, pos, t.Kind, nullable(t.VideoID), nullable(t.ContentRef),
			nullable(string(t.Subtype)), t.Title, nullable(t.Channel), t.Duration,
			nullable(t.Thumbnail), now)
		if err != nil {
			return err
		}
		t.ID, err = res.LastInsertId()
		if err != nil {
			return err
		}
		t.Position = pos
		return nil
	})
	if err != nil {
		return nil, err
	}
	t.AddedAt = time.Unix(now, 0)
	return &t, nil
}

// Tracks returns a playlist's tracks in order.
func (s *Store) Tracks(playlistID int64) ([]Track, error) {
	rows, err := s.db.Query(selectTracks+`
		WHERE playlist_id = ?
		ORDER BY position
	`, playlistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Track
	for rows.Next() {
		t, err := scanTrack(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// GetTrack returns one track by row id.
func (s *Store) GetTrack(id int64) (*Track, error) {
	row := s.db.QueryRow(selectTracks+` WHERE id = ?`, id)
	return scanTrack(row)
}

// RemoveTrack deletes one track, compacts the remaining positions and
// removes the stored media of a local track.
func (s *Store) RemoveTrack(id int64) error {
	var ref string
	err := db.WithTx(s.db, func(tx *sql.Tx) error {
		var playlistID int64
		var contentRef sql.NullString
		err := tx.QueryRow(`
			SELECT playlist_id, content_ref FROM playlist_tracks WHERE id = ?
		`, id).Scan(&playlistID, &contentRef)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		ref = contentRef.String

		if _, err := tx.Exec(`DELETE FROM playlist_tracks WHERE id = ?`, id); err != nil {
			return err
		}
		ids, err := trackIDsInOrder(tx, playlistID)
		if err != nil {
			return err
		}
		return renumber(tx, playlistID, ids)
	})
	if err != nil {
		return err
	}
	if ref != "" && s.blobs != nil {
		_ = s.blobs.Delete(ref)
	}
	return nil
}

// MoveTrack moves the track at position from to position to within a
// playlist.
func (s *Store) MoveTrack(playlistID int64, from, to int) error {
	return db.WithTx(s.db, func(tx *sql.Tx) error {
		ids, err := trackIDsInOrder(tx, playlistID)
		if err != nil {
			return err
		}
		if from < 0 || from >= len(ids) || to < 0 || to >= len(ids) {
			return ErrNotFound
		}
		if from == to {
			return nil
		}
		id := ids[from]
		ids = append(ids[:from], ids[from+1:]...)
		ids = append(ids[:to], append([]int64{id}, ids[to:]...)...)
		return renumber(tx, playlistID, ids)
	})
}

// SetTrackDuration records a discovered duration. Only an unknown stored
// duration is refined; a known one is never overwritten.
func (s *Store) SetTrackDuration(id int64, seconds int) error {
	if seconds <= 0 {
		return nil
	}
	_, err := s.db.Exec(`
		UPDATE playlist_tracks SET duration = ? WHERE id = ? AND duration = 0
	`, seconds, id)
	return err
}

const selectTracks = `
	SELECT id, playlist_id, position, kind, video_id, content_ref, subtype,
		title, channel, duration, thumbnail, added_at
	FROM playlist_tracks
`

func scanTrack(row rowScanner) (*Track, error) {
	var t Track
	var videoID, contentRef, subtype, channel, thumbnail sql.NullString
	var added int64
	err := row.Scan(&t.ID, &t.PlaylistID, &t.Position, &t.Kind, &videoID,
		&contentRef, &subtype, &t.Title, &channel, &t.Duration, &thumbnail, &added)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	t.VideoID = db.NullStringValue(videoID)
	t.ContentRef = db.NullStringValue(contentRef)
	t.Subtype = playback.Subtype(db.NullStringValue(subtype))
	t.Channel = db.NullStringValue(channel)
	t.Thumbnail = db.NullStringValue(thumbnail)
	t.AddedAt = time.Unix(added, 0)
	return &t, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
