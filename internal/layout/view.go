// Package layout maps genomic coordinates and alignment rows onto screen
// cells of a rendering area.
package layout

import (
	"fmt"

	"github.com/inodb/vibe-tgv/internal/canvas"
)

// Placement says where a coordinate falls relative to the area.
type Placement int

const (
	OnScreen Placement = iota
	LeftOf            // before the first column (or above the first row)
	RightOf           // past the last column (or below the last row)
)

// Coordinate is a screen coordinate relative to the area origin. Offset is
// only meaningful when Placement is OnScreen.
type Coordinate struct {
	Placement Placement
	Offset    int
}

// IsOnScreen reports whether c is visible.
func (c Coordinate) IsOnScreen() bool { return c.Placement == OnScreen }

func (c Coordinate) String() string {
	switch c.Placement {
	case LeftOf:
		return "left"
	case RightOf:
		return "right"
	}
	return fmt.Sprintf("onscreen(%d)", c.Offset)
}

// AlignmentView is the genomic window shown in an alignment area.
type AlignmentView struct {
	Left uint64 // 1-based reference position drawn at column 0
	Top  int    // first alignment row drawn at line 0
	Zoom uint64 // bases per cell, at least 1
}

// NewAlignmentView returns a view at zoom 1.
func NewAlignmentView(left uint64, top int) AlignmentView {
	return AlignmentView{Left: left, Top: top, Zoom: 1}
}

func (v AlignmentView) zoom() uint64 {
	if v.Zoom == 0 {
		return 1
	}
	return v.Zoom
}

// Right returns the last reference position visible in area.
func (v AlignmentView) Right(area canvas.Rect) uint64 {
	if area.Width <= 0 {
		return v.Left
	}
	return v.Left + uint64(area.Width)*v.zoom() - 1
}

// X maps a 1-based reference position to a column of area.
func (v AlignmentView) X(pos uint64, area canvas.Rect) Coordinate {
	if pos < v.Left {
		return Coordinate{Placement: LeftOf}
	}
	x := (pos - v.Left) / v.zoom()
	if x >= uint64(area.Width) {
		return Coordinate{Placement: RightOf}
	}
	return Coordinate{Placement: OnScreen, Offset: int(x)}
}

// Y maps an alignment row to a line of area.
func (v AlignmentView) Y(row int, area canvas.Rect) Coordinate {
	if row < v.Top {
		return Coordinate{Placement: LeftOf}
	}
	if row-v.Top >= area.Height {
		return Coordinate{Placement: RightOf}
	}
	return Coordinate{Placement: OnScreen, Offset: row - v.Top}
}

// Span converts the screen coordinates of an inclusive interval into a
// starting column and width, clamping partially visible ends. ok is false
// when nothing of the interval is visible.
func Span(start, end Coordinate, area canvas.Rect) (x, width int, ok bool) {
	switch {
	case start.Placement == RightOf, end.Placement == LeftOf:
		return 0, 0, false
	case start.Placement == LeftOf && end.Placement == LeftOf:
		return 0, 0, false
	}

	x = start.Offset
	if start.Placement == LeftOf {
		x = 0
	}
	last := end.Offset
	if end.Placement == RightOf {
		last = area.Width - 1
	}
	width = last - x + 1
	if width <= 0 {
		return 0, 0, false
	}
	return x, width, true
}
