package cursor

import "testing"

func TestMove(t *testing.T) {
	cases := []struct {
		name    string
		start   int
		delta   int
		listLen int
		wantPos int
	}{
		{"down one", 0, 1, 20, 1},
		{"up from top clamps", 0, -1, 20, 0},
		{"past end clamps", 18, 5, 20, 19},
		{"half page", 0, 5, 20, 5},
		{"empty list ignored", 0, 3, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := New(2)
			c.SetPos(tc.start)
			c.Move(tc.delta, tc.listLen, 10)
			if c.Pos() != tc.wantPos {
				t.Errorf("Pos() = %d, want %d", c.Pos(), tc.wantPos)
			}
		})
	}
}

func TestMoveScrollsWithMargin(t *testing.T) {
	c := New(2)

	// Walk down a 30-row list through a 10-row window: the view follows
	// once the cursor comes within the margin of the bottom edge.
	for range 9 {
		c.Move(1, 30, 10)
	}
	if c.Pos() != 9 {
		t.Fatalf("Pos() = %d, want 9", c.Pos())
	}
	if c.Offset() != 2 {
		t.Errorf("Offset() = %d, want 2", c.Offset())
	}

	// Walk back up: the view follows at the top margin.
	for range 9 {
		c.Move(-1, 30, 10)
	}
	if c.Offset() != 0 {
		t.Errorf("Offset() = %d, want 0 back at the top", c.Offset())
	}
}

func TestMoveOffsetClampedAtListEnd(t *testing.T) {
	c := New(2)
	c.Move(29, 30, 10)

	if c.Pos() != 29 {
		t.Fatalf("Pos() = %d, want 29", c.Pos())
	}
	if c.Offset() != 20 {
		t.Errorf("Offset() = %d, want 20 (last full window)", c.Offset())
	}
}

func TestJumpStartAndEnd(t *testing.T) {
	c := New(2)
	c.JumpEnd(30, 10)
	if c.Pos() != 29 || c.Offset() != 20 {
		t.Errorf("after JumpEnd pos=%d offset=%d, want 29/20", c.Pos(), c.Offset())
	}

	c.JumpStart()
	if c.Pos() != 0 || c.Offset() != 0 {
		t.Errorf("after JumpStart pos=%d offset=%d, want 0/0", c.Pos(), c.Offset())
	}

	c.JumpEnd(0, 10) // empty list is a no-op
	if c.Pos() != 0 {
		t.Errorf("JumpEnd on empty list moved to %d", c.Pos())
	}
}

func TestClampToBounds(t *testing.T) {
	c := New(2)
	c.Move(15, 20, 10)

	if c.ClampToBounds(20) {
		t.Error("cursor inside bounds must not move")
	}
	if !c.ClampToBounds(10) {
		t.Error("cursor past a shrunk list must move")
	}
	if c.Pos() != 9 {
		t.Errorf("Pos() = %d, want 9", c.Pos())
	}

	if !c.ClampToBounds(0) {
		t.Error("emptying the list must reset a moved cursor")
	}
	if c.Pos() != 0 || c.Offset() != 0 {
		t.Errorf("pos=%d offset=%d after empty clamp, want 0/0", c.Pos(), c.Offset())
	}
	if c.ClampToBounds(0) {
		t.Error("already-reset cursor must report unchanged")
	}
}

func TestVisibleRange(t *testing.T) {
	c := New(2)
	start, end := c.VisibleRange(30, 10)
	if start != 0 || end != 10 {
		t.Errorf("range = [%d,%d), want [0,10)", start, end)
	}

	c.Move(29, 30, 10)
	start, end = c.VisibleRange(30, 10)
	if start != 20 || end != 30 {
		t.Errorf("range = [%d,%d), want [20,30)", start, end)
	}

	start, end = c.VisibleRange(4, 10) // list shorter than the window
	if start != 0 || end != 4 {
		t.Errorf("range = [%d,%d), want [0,4)", start, end)
	}

	start, end = c.VisibleRange(0, 10)
	if start != 0 || end != 0 {
		t.Errorf("range = [%d,%d), want [0,0)", start, end)
	}
}

func TestHandleKey(t *testing.T) {
	cases := []struct {
		key     string
		wantPos int
	}{
		{"j", 1},
		{"down", 1},
		{"G", 29},
		{"end", 29},
		{"ctrl+d", 5},
	}
	for _, tc := range cases {
		c := New(2)
		if !c.HandleKey(tc.key, 30, 10) {
			t.Errorf("HandleKey(%q) = false, want handled", tc.key)
			continue
		}
		if c.Pos() != tc.wantPos {
			t.Errorf("key %q: Pos() = %d, want %d", tc.key, c.Pos(), tc.wantPos)
		}
	}

	c := New(2)
	c.HandleKey("G", 30, 10)
	c.HandleKey("k", 30, 10)
	if c.Pos() != 28 {
		t.Errorf("k after G: Pos() = %d, want 28", c.Pos())
	}
	c.HandleKey("g", 30, 10)
	if c.Pos() != 0 || c.Offset() != 0 {
		t.Errorf("g: pos=%d offset=%d, want 0/0", c.Pos(), c.Offset())
	}
	c.HandleKey("ctrl+d", 30, 10)
	c.HandleKey("ctrl+u", 30, 10)
	if c.Pos() != 0 {
		t.Errorf("ctrl+u after ctrl+d: Pos() = %d, want 0", c.Pos())
	}

	if c.HandleKey("x", 30, 10) {
		t.Error("HandleKey must report unhandled keys")
	}
}
