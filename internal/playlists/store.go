// Package playlists persists playlists and their tracks, and adapts a
// playlist into the queue the playback engine navigates.
package playlists

import (
	"database/sql"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	_ "modernc.org/sqlite" // SQLite driver
)

const (
	appName    = "playdeck"
	dbFileName = "playdeck.db"
)

var (
	ErrNotFound  = errors.New("playlists: not found")
	ErrEmptyName = errors.New("playlists: empty name")
)

// Blobs is the part of the blob store the playlist store needs: imports
// write media in, deletions clean it up.
type Blobs interface {
	Put(id string, r io.Reader) (int64, error)
	Delete(id string) error
}

// Store is the playlist database.
type Store struct {
	db    *sql.DB
	blobs Blobs
}

// Open opens the playlist database at its default location.
func Open(blobs Blobs) (*Store, error) {
	path, err := xdg.DataFile(filepath.Join(appName, dbFileName))
	if err != nil {
		return nil, err
	}
	return OpenAt(path, blobs)
}

// OpenAt opens the playlist database at an explicit path.
func OpenAt(path string, blobs Blobs) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := sqlDB.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		sqlDB.Close()
		return nil, err
	}
	if err := initSchema(sqlDB); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return &Store{db: sqlDB, blobs: blobs}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// renumber rewrites the positions of a playlist's tracks to 0..n-1 in the
// given row id order. Positions go through a negative range first to dodge
// the unique constraint.
func renumber(tx *sql.Tx, playlistID int64, ids []int64) error {
	if _, err := tx.Exec(
		`UPDATE playlist_tracks SET position = -(position + 1) WHERE playlist_id = ?`,
		playlistID,
	); err != nil {
		return err
	}
	stmt, err := tx.Prepare(`UPDATE playlist_tracks SET position = ? WHERE id = ?`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, id := range ids {
		if _, err := stmt.Exec(i, id); err != nil {
			return err
		}
	}
	return nil
}

func trackIDsInOrder(tx *sql.Tx, playlistID int64) ([]int64, error) {
	rows, err := tx.Query(
		`SELECT id FROM playlist_tracks WHERE playlist_id = ? ORDER BY position`,
		playlistID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
