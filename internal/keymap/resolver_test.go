package keymap

import (
	"slices"
	"testing"
)

func TestResolverResolve(t *testing.T) {
	bindings := []Binding{
		{ActionQuit, []string{"q", "ctrl+c"}, "Quit", "global"},
		{ActionPlayPause, []string{" "}, "Play/pause", "playback"},
		{ActionMoveUp, []string{"k", "up"}, "Move up", "global"},
		{ActionMoveDown, []string{"j", "down"}, "Move down", "global"},
	}

	r := NewResolver(bindings)

	tests := []struct {
		key      string
		expected Action
	}{
		{"q", ActionQuit},
		{"ctrl+c", ActionQuit},
		{" ", ActionPlayPause},
		{"k", ActionMoveUp},
		{"up", ActionMoveUp},
		{"j", ActionMoveDown},
		{"x", ""}, // unbound
	}

	for _, tt := range tests {
		if got := r.Resolve(tt.key); got != tt.expected {
			t.Errorf("Resolve(%q) = %q, want %q", tt.key, got, tt.expected)
		}
	}
}

func TestResolverKeysFor(t *testing.T) {
	bindings := []Binding{
		{ActionQuit, []string{"q", "ctrl+c"}, "Quit", "global"},
		{ActionDelete, []string{"d"}, "Delete", "playlists"},
		{ActionDelete, []string{"d", "delete"}, "Delete", "tracks"},
	}

	r := NewResolver(bindings)

	keys := r.KeysFor(ActionQuit)
	if !slices.Equal(keys, []string{"q", "ctrl+c"}) {
		t.Errorf("KeysFor(ActionQuit) = %v", keys)
	}

	// Keys collected across contexts are deduplicated
	keys = r.KeysFor(ActionDelete)
	if !slices.Equal(keys, []string{"d", "delete"}) {
		t.Errorf("KeysFor(ActionDelete) = %v", keys)
	}

	if got := r.KeysFor(ActionHelp); len(got) != 0 {
		t.Errorf("KeysFor(unbound action) = %v, want empty", got)
	}
}

func TestAllBindingsResolvable(t *testing.T) {
	r := NewResolver(All)
	for _, b := range All {
		for _, key := range b.Keys {
			if got := r.Resolve(key); got == "" {
				t.Errorf("key %q from binding %q resolves to nothing", key, b.Action)
			}
		}
	}
}

func TestByContext(t *testing.T) {
	for _, b := range ByContext("playback") {
		if b.Context != "playback" {
			t.Errorf("ByContext returned binding with context %q", b.Context)
		}
	}
	if len(ByContext("playback")) == 0 {
		t.Error("ByContext(playback) returned no bindings")
	}
}
