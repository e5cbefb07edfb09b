package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mlouvel/playdeck/internal/app"
	"github.com/mlouvel/playdeck/internal/backend/local"
	"github.com/mlouvel/playdeck/internal/backend/remote"
	"github.com/mlouvel/playdeck/internal/blobstore"
	"github.com/mlouvel/playdeck/internal/config"
	"github.com/mlouvel/playdeck/internal/errmsg"
	"github.com/mlouvel/playdeck/internal/metadata"
	"github.com/mlouvel/playdeck/internal/mpris"
	"github.com/mlouvel/playdeck/internal/notify"
	"github.com/mlouvel/playdeck/internal/playback"
	"github.com/mlouvel/playdeck/internal/playlists"
	"github.com/mlouvel/playdeck/internal/state"
	"github.com/mlouvel/playdeck/internal/stderr"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, errmsg.Format(errmsg.OpInitialize, err))
		os.Exit(1)
	}
}

func run() error {
	// Audio libraries write straight to fd 2; keep that noise out of the TUI.
	_ = stderr.Start()
	defer stderr.Stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	blobs, err := openBlobs(cfg)
	if err != nil {
		return err
	}

	store, err := openPlaylists(cfg, blobs)
	if err != nil {
		return err
	}
	defer store.Close()

	stateMgr, err := openState(cfg)
	if err != nil {
		return err
	}
	defer stateMgr.Close()

	localBackend := local.New(blobs)
	remoteBackend := remote.New(remote.Config{
		Binary: cfg.Player.Binary,
		Socket: cfg.Player.Socket,
		Grace:  time.Duration(cfg.Player.GraceSeconds) * time.Second,
	})
	defer localBackend.Close()
	defer remoteBackend.Close()

	engine := playback.New(localBackend, remoteBackend)
	defer engine.Close()

	sess, err := stateMgr.Get()
	if err != nil {
		sess = state.DefaultSession()
	}
	restoreSession(engine, store, sess)

	notifier, err := notify.New()
	if err != nil {
		notifier = nil
	}

	mprisAdapter, err := mpris.New(engine)
	if err == nil {
		defer mprisAdapter.Close()
	}

	m := app.New(app.Deps{
		Config:   cfg,
		Store:    store,
		State:    stateMgr,
		Engine:   engine,
		Meta:     newMetaClient(cfg),
		Notifier: notifier,
		Session:  sess,
	})

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func openBlobs(cfg *config.Config) (*blobstore.Store, error) {
	if cfg.DataDir != "" {
		return blobstore.OpenAt(filepath.Join(cfg.DataDir, "media"))
	}
	return blobstore.Open()
}

func openPlaylists(cfg *config.Config, blobs *blobstore.Store) (*playlists.Store, error) {
	if cfg.DataDir != "" {
		return playlists.OpenAt(filepath.Join(cfg.DataDir, "playdeck.db"), blobs)
	}
	return playlists.Open(blobs)
}

func openState(cfg *config.Config) (*state.Manager, error) {
	if cfg.DataDir != "" {
		return state.OpenAt(filepath.Join(cfg.DataDir, "state.db"))
	}
	return state.Open()
}

// restoreSession replays the stored session onto a fresh engine. The
// previous volume is applied first so the mute bookkeeping ends up right
// when the session was saved muted.
func restoreSession(engine *playback.Engine, store *playlists.Store, sess state.Session) {
	engine.SetShuffle(sess.Shuffle)
	engine.SetRepeatMode(playback.RepeatMode(sess.RepeatMode))
	if sess.PreviousVolume > 0 {
		engine.SetVolume(sess.PreviousVolume)
	}
	engine.SetVolume(sess.Volume)
	if sess.PlaylistID != 0 {
		engine.SetQueue(store.Queue(sess.PlaylistID))
	}
}

func newMetaClient(cfg *config.Config) *metadata.Client {
	if cfg.Metadata.OEmbedURL != "" {
		return metadata.NewClientWith(&http.Client{Timeout: 10 * time.Second}, cfg.Metadata.OEmbedURL)
	}
	return metadata.NewClient()
}
