package state

import (
	"database/sql"
	"errors"
	"time"
)

// Session is the state carried across runs.
type Session struct {
	Volume         float64
	PreviousVolume float64 // restored on unmute
	Shuffle        bool
	RepeatMode     int
	PlaylistID     int64 // 0 when no playlist was active
	TrackIndex     int   // -1 when nothing was playing
}

// DefaultSession is what a fresh install starts from.
func DefaultSession() Session {
	return Session{Volume: 0.7, PreviousVolume: 0.7, TrackIndex: -1}
}

// Get returns the stored session, or the default for a fresh database.
func (m *Manager) Get() (Session, error) {
	var s Session
	row := m.db.QueryRow(`
		SELECT volume, previous_volume, shuffle, repeat_mode, playlist_id, track_index
		FROM session WHERE id = 1
	`)
	err := row.Scan(&s.Volume, &s.PreviousVolume, &s.Shuffle, &s.RepeatMode,
		&s.PlaylistID, &s.TrackIndex)
	if errors.Is(err, sql.ErrNoRows) {
		return DefaultSession(), nil
	}
	if err != nil {
		return Session{}, err
	}
	return s, nil
}

// Save schedules a debounced write of the session. The last session
// passed before the debounce fires wins.
func (m *Manager) Save(s Session) {
	m.saveMu.Lock()
	defer m.saveMu.Unlock()

	m.pending = &s

	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}
	m.saveTimer = time.AfterFunc(saveDebounce, func() {
		m.saveMu.Lock()
		pending := m.pending
		m.pending = nil
		m.saveMu.Unlock()

		if pending != nil {
			_ = saveSession(m.db, *pending)
		}
	})
}

// SaveNow writes the session immediately, bypassing the debounce.
func (m *Manager) SaveNow(s Session) error {
	m.saveMu.Lock()
	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}
	m.pending = nil
	m.saveMu.Unlock()
	return saveSession(m.db, s)
}

func saveSession(db *sql.DB, s Session) error {
	_, err := db.Exec(`
		INSERT INTO session (id, volume, previous_volume, shuffle, repeat_mode, playlist_id, track_index)
		VALUES (1, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			volume = excluded.volume,
			previous_volume = excluded.previous_volume,
			shuffle = excluded.shuffle,
			repeat_mode = excluded.repeat_mode,
			playlist_id = excluded.playlist_id,
			track_index = excluded.track_index
	`, s.Volume, s.PreviousVolume, s.Shuffle, s.RepeatMode, s.PlaylistID, s.TrackIndex)
	return err
}
