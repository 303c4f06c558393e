package canvas

import "unicode/utf8"

// Rect is a screen rectangle in cell units.
type Rect struct {
	X, Y          int
	Width, Height int
}

// Contains reports whether the absolute cell (x, y) lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Style is a foreground/background color pair.
type Style struct {
	Fg, Bg Color
}

// WithFg returns a copy of s with the foreground replaced.
func (s Style) WithFg(c Color) Style {
	s.Fg = c
	return s
}

// WithBg returns a copy of s with the background replaced.
func (s Style) WithBg(c Color) Style {
	s.Bg = c
	return s
}

// Cell is one character cell.
type Cell struct {
	Symbol string
	Fg, Bg Color
}

// Blank reports whether the cell shows no visible glyph.
func (c Cell) Blank() bool {
	for _, r := range c.Symbol {
		if r != ' ' && r != 0 {
			return false
		}
	}
	return true
}

func blankCell() Cell { return Cell{Symbol: " "} }

// Buffer is a row-major grid of cells covering Area. It is owned by the
// caller and passed explicitly to renderers; it is not safe for
// concurrent writers on the same row.
type Buffer struct {
	Area  Rect
	cells []Cell
}

// NewBuffer returns a buffer of blank cells covering area.
func NewBuffer(area Rect) *Buffer {
	b := &Buffer{Area: area, cells: make([]Cell, area.Width*area.Height)}
	b.Reset()
	return b
}

// Reset blanks every cell.
func (b *Buffer) Reset() {
	for i := range b.cells {
		b.cells[i] = blankCell()
	}
}

func (b *Buffer) index(x, y int) (int, bool) {
	if !b.Area.Contains(x, y) {
		return 0, false
	}
	return (y-b.Area.Y)*b.Area.Width + (x - b.Area.X), true
}

// Cell returns the cell at absolute coordinates (x, y).
func (b *Buffer) Cell(x, y int) (Cell, bool) {
	i, ok := b.index(x, y)
	if !ok {
		return Cell{}, false
	}
	return b.cells[i], true
}

// SetCell overwrites the cell at (x, y); out-of-area writes are ignored.
func (b *Buffer) SetCell(x, y int, c Cell) {
	if i, ok := b.index(x, y); ok {
		b.cells[i] = c
	}
}

// SetString writes s one rune per cell starting at (x, y), clipped to the
// buffer area.
func (b *Buffer) SetString(x, y int, s string, style Style) {
	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		b.SetCell(x, y, Cell{Symbol: string(r), Fg: style.Fg, Bg: style.Bg})
		s = s[size:]
		x++
		if x >= b.Area.X+b.Area.Width {
			return
		}
	}
}

// Row returns the cells of absolute row y, or nil if y is outside the area.
func (b *Buffer) Row(y int) []Cell {
	if y < b.Area.Y || y >= b.Area.Y+b.Area.Height {
		return nil
	}
	start := (y - b.Area.Y) * b.Area.Width
	return b.cells[start : start+b.Area.Width]
}
