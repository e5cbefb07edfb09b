package remote

import (
	"bufio"
	"encoding/json"
	"net"
	"os/exec"
	"time"

	"github.com/mlouvel/playdeck/internal/backend"
)

const connectPollInterval = 200 * time.Millisecond

// launch spawns the player process and begins connecting to its socket.
func (a *Adapter) launch() error {
	cmd := exec.Command(a.cfg.Binary,
		"--idle=yes",
		"--video=no",
		"--no-terminal",
		"--keep-open=always",
		"--input-ipc-server="+a.cfg.Socket,
	)
	if err := cmd.Start(); err != nil {
		return err
	}
	a.cmd = cmd
	go a.connect()
	return nil
}

// connect polls the IPC socket until the player accepts the connection.
// Giving up is left to the grace timer; a successful connection flips the
// adapter to ready and replays the pending arm.
func (a *Adapter) connect() {
	deadline := time.Now().Add(a.cfg.Grace)
	for {
		conn, err := net.Dial("unix", a.cfg.Socket)
		if err == nil {
			a.mu.Lock()
			if a.closed {
				a.mu.Unlock()
				conn.Close()
				return
			}
			a.conn = conn
			a.sendLocked("observe_property", 1, "time-pos")
			a.sendLocked("observe_property", 2, "duration")
			a.sendLocked("observe_property", 3, "pause")
			a.sendLocked("observe_property", 4, "eof-reached")
			a.mu.Unlock()

			go a.readLoop(conn)
			a.markReady()
			return
		}
		if time.Now().After(deadline) {
			return
		}
		time.Sleep(connectPollInterval)
	}
}

// mpvMsg is the subset of IPC messages the adapter cares about.
type mpvMsg struct {
	Event  string `json:"event"`
	Name   string `json:"name"`
	Data   any    `json:"data"`
	Reason string `json:"reason"`
}

// readLoop dispatches newline-delimited IPC messages until the connection
// drops.
func (a *Adapter) readLoop(conn net.Conn) {
	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		a.handleMessage(scanner.Bytes())
	}

	a.mu.Lock()
	lost := !a.closed && a.ready
	a.ready = false
	a.conn = nil
	gen := a.gen
	a.mu.Unlock()
	if lost {
		a.emitter.Emit(backend.Event{
			Kind: backend.EventError,
			Gen:  gen,
			Err:  backend.ErrUnavailable,
		})
	}
}

// handleMessage translates one IPC message into a backend event.
func (a *Adapter) handleMessage(line []byte) {
	var msg mpvMsg
	if err := json.Unmarshal(line, &msg); err != nil {
		return
	}

	a.mu.Lock()
	gen := a.gen
	a.mu.Unlock()

	switch msg.Event {
	case "file-loaded":
		a.emitter.Emit(backend.Event{Kind: backend.EventReady, Gen: gen})

	case "property-change":
		a.handleProperty(msg, gen)

	case "end-file":
		switch msg.Reason {
		case "eof":
			a.emitter.Emit(backend.Event{Kind: backend.EventEnded, Gen: gen})
		case "error":
			a.emitter.Emit(backend.Event{
				Kind: backend.EventError,
				Gen:  gen,
				Err:  backend.ErrUnsupportedMedia,
			})
		}
		// "stop" and "quit" are our own doing; nothing to report.
	}
}

func (a *Adapter) handleProperty(msg mpvMsg, gen uint64) {
	switch msg.Name {
	case "time-pos":
		pos, ok := msg.Data.(float64)
		if !ok {
			return
		}
		a.mu.Lock()
		a.position = pos
		dur := a.duration
		a.mu.Unlock()
		a.emitter.Emit(backend.Event{
			Kind:     backend.EventTimeUpdate,
			Gen:      gen,
			Position: pos,
			Duration: dur,
		})

	case "duration":
		dur, ok := msg.Data.(float64)
		if !ok || dur <= 0 {
			return
		}
		a.mu.Lock()
		a.duration = dur
		sent := a.metadataSent
		a.metadataSent = true
		a.mu.Unlock()
		if !sent {
			a.emitter.Emit(backend.Event{Kind: backend.EventMetadata, Gen: gen, Duration: dur})
		}

	case "pause":
		paused, ok := msg.Data.(bool)
		if !ok {
			return
		}
		a.emitter.Emit(backend.Event{Kind: backend.EventStateChange, Gen: gen, Playing: !paused})

	case "eof-reached":
		// With keep-open the file stays loaded at its end instead of
		// unloading, so this property is how natural completion shows up.
		reached, ok := msg.Data.(bool)
		if !ok || !reached {
			return
		}
		a.emitter.Emit(backend.Event{Kind: backend.EventEnded, Gen: gen})
	}
}

// sendLocked writes one IPC command. No-op without a connection; command
// delivery is best-effort, the event stream is the source of truth.
func (a *Adapter) sendLocked(args ...any) {
	if a.conn == nil {
		return
	}
	payload, err := json.Marshal(map[string]any{"command": args})
	if err != nil {
		return
	}
	a.conn.Write(append(payload, '\n'))
}
