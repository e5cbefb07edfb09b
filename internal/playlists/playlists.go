package playlists

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/mlouvel/playdeck/internal/db"
)

// Playlist is a named, ordered collection of tracks.
type Playlist struct {
	ID         int64
	Name       string
	CreatedAt  time.Time
	LastUsedAt time.Time
	TrackCount int
}

// Create creates a new playlist.
func (s *Store) Create(name string) (*Playlist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	now := time.Now().Unix()
	res, err := s.db.Exec(`
		INSERT INTO playlists (name, created_at, last_used_at)
		VALUES (?, ?, ?)
	`, name, now, now)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &Playlist{
		ID:         id,
		Name:       name,
		CreatedAt:  time.Unix(now, 0),
		LastUsedAt: time.Unix(now, 0),
	}, nil
}

// Get returns one playlist.
func (s *Store) Get(id int64) (*Playlist, error) {
	row := s.db.QueryRow(`
		SELECT p.id, p.name, p.created_at, p.last_used_at,
			(SELECT COUNT(*) FROM playlist_tracks t WHERE t.playlist_id = p.id)
		FROM playlists p
		WHERE p.id = ?
	`, id)
	return scanPlaylist(row)
}

// List returns all playlists, most recently used first.
func (s *Store) List() ([]Playlist, error) {
	rows, err := s.db.Query(`
		SELECT p.id, p.name, p.created_at, p.last_used_at,
			(SELECT COUNT(*) FROM playlist_tracks t WHERE t.playlist_id = p.id)
		FROM playlists p
		ORDER BY p.last_used_at DESC, p.id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Playlist
	for rows.Next() {
		p, err := scanPlaylist(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// Rename renames a playlist.
func (s *Store) Rename(id int64, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	res, err := s.db.Exec(`UPDATE playlists SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Touch marks a playlist as just used.
func (s *Store) Touch(id int64) error {
	_, err := s.db.Exec(
		`UPDATE playlists SET last_used_at = ? WHERE id = ?`,
		time.Now().Unix(), id,
	)
	return err
}

// Delete removes a playlist, its tracks, and the stored media of its
// local tracks.
func (s *Store) Delete(id int64) error {
	var refs []string
	err := db.WithTx(s.db, func(tx *sql.Tx) error {
		rows, err := tx.Query(`
			SELECT content_ref FROM playlist_tracks
			WHERE playlist_id = ? AND kind = ? AND content_ref IS NOT NULL
		`, id, KindLocal)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var ref string
			if err := rows.Scan(&ref); err != nil {
				return err
			}
			refs = append(refs, ref)
		}
		if err := rows.Err(); err != nil {
			return err
		}

		res, err := tx.Exec(`DELETE FROM playlists WHERE id = ?`, id)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}

	// Blob deletion is idempotent; the rows are already gone.
	if s.blobs != nil {
		for _, ref := range refs {
			_ = s.blobs.Delete(ref)
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlaylist(row rowScanner) (*Playlist, error) {
	var p Playlist
	var created, used int64
	err := row.Scan(&p.ID, &p.Name, &created, &used, &p.TrackCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	p.CreatedAt = time.Unix(created, 0)
	p.LastUsedAt = time.Unix(used, 0)
	return &p, nil
}
