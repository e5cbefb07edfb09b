// Package cursor tracks the selected row and scroll window of a list panel.
package cursor

// Cursor is a position plus the scroll offset that keeps it on screen.
// List length and viewport height are method arguments, not state: both
// panels resize and reload while the cursor persists.
type Cursor struct {
	pos    int
	offset int
	margin int // rows kept visible between the cursor and the viewport edge
}

func New(margin int) Cursor {
	return Cursor{margin: margin}
}

// Pos returns the selected row index.
func (c Cursor) Pos() int { return c.pos }

// Offset returns the index of the first visible row.
func (c Cursor) Offset() int { return c.offset }

// SetPos places the cursor without scrolling. Callers use it to follow a
// row they just relocated; the next Move rescrolls as needed.
func (c *Cursor) SetPos(pos int) { c.pos = pos }

// Move shifts the cursor by delta rows, clamped to the list, and scrolls
// the window to keep it inside the margin.
func (c *Cursor) Move(delta, listLen, height int) {
	if listLen == 0 {
		return
	}
	c.pos = clampInt(c.pos+delta, listLen-1)
	c.scroll(listLen, height)
}

// JumpStart selects the first row.
func (c *Cursor) JumpStart() {
	c.pos = 0
	c.offset = 0
}

// JumpEnd selects the last row.
func (c *Cursor) JumpEnd(listLen, height int) {
	if listLen == 0 {
		return
	}
	c.pos = listLen - 1
	c.scroll(listLen, height)
}

// ClampToBounds pulls the cursor back inside a list that shrank. Reports
// whether anything moved.
func (c *Cursor) ClampToBounds(listLen int) bool {
	if listLen == 0 {
		moved := c.pos != 0 || c.offset != 0
		c.pos, c.offset = 0, 0
		return moved
	}
	was := c.pos
	c.pos = clampInt(c.pos, listLen-1)
	return c.pos != was
}

// VisibleRange returns the half-open index range the viewport shows.
func (c Cursor) VisibleRange(listLen, height int) (start, end int) {
	if listLen == 0 || height <= 0 {
		return 0, 0
	}
	return c.offset, min(c.offset+height, listLen)
}

// HandleKey applies vi-style list navigation. Reports whether the key
// was a navigation key.
func (c *Cursor) HandleKey(key string, listLen, height int) bool {
	switch key {
	case "j", "down":
		c.Move(1, listLen, height)
	case "k", "up":
		c.Move(-1, listLen, height)
	case "g", "home":
		c.JumpStart()
	case "G", "end":
		c.JumpEnd(listLen, height)
	case "ctrl+d":
		c.Move(height/2, listLen, height)
	case "ctrl+u":
		c.Move(-height/2, listLen, height)
	default:
		return false
	}
	return true
}

func (c *Cursor) scroll(listLen, height int) {
	if height <= 0 || listLen == 0 {
		return
	}
	if c.pos < c.offset+c.margin {
		c.offset = max(c.pos-c.margin, 0)
	}
	if c.pos >= c.offset+height-c.margin {
		c.offset = c.pos - height + c.margin + 1
	}
	c.offset = clampInt(c.offset, max(listLen-height, 0))
}

func clampInt(v, maxVal int) int {
	if v < 0 {
		return 0
	}
	if v > maxVal {
		return maxVal
	}
	return v
}
