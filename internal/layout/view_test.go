package layout

import (
	"testing"

	"github.com/inodb/vibe-tgv/internal/canvas"
	"github.com/stretchr/testify/assert"
)

var area = canvas.Rect{Width: 10, Height: 5}

func TestX(t *testing.T) {
	v := NewAlignmentView(100, 0)

	assert.Equal(t, Coordinate{Placement: LeftOf}, v.X(99, area))
	assert.Equal(t, Coordinate{Placement: OnScreen, Offset: 0}, v.X(100, area))
	assert.Equal(t, Coordinate{Placement: OnScreen, Offset: 9}, v.X(109, area))
	assert.Equal(t, Coordinate{Placement: RightOf}, v.X(110, area))
	assert.Equal(t, uint64(109), v.Right(area))
}

func TestXZoomed(t *testing.T) {
	v := AlignmentView{Left: 1, Zoom: 3}

	assert.Equal(t, 0, v.X(3, area).Offset)
	assert.Equal(t, 1, v.X(4, area).Offset)
	assert.Equal(t, RightOf, v.X(31, area).Placement)
}

func TestY(t *testing.T) {
	v := NewAlignmentView(1, 2)

	assert.Equal(t, LeftOf, v.Y(1, area).Placement)
	assert.Equal(t, Coordinate{Placement: OnScreen, Offset: 0}, v.Y(2, area))
	assert.Equal(t, Coordinate{Placement: OnScreen, Offset: 4}, v.Y(6, area))
	assert.Equal(t, RightOf, v.Y(7, area).Placement)
}

func TestSpan(t *testing.T) {
	on := func(x int) Coordinate { return Coordinate{Placement: OnScreen, Offset: x} }
	left := Coordinate{Placement: LeftOf}
	right := Coordinate{Placement: RightOf}

	tests := []struct {
		name       string
		start, end Coordinate
		x, width   int
		ok         bool
	}{
		{"inside", on(2), on(4), 2, 3, true},
		{"single", on(3), on(3), 3, 1, true},
		{"clipped left", left, on(1), 0, 2, true},
		{"clipped right", on(8), right, 8, 2, true},
		{"covers area", left, right, 0, 10, true},
		{"entirely left", left, left, 0, 0, false},
		{"entirely right", right, right, 0, 0, false},
		{"inverted", on(5), on(4), 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, w, ok := Span(tt.start, tt.end, area)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.x, x)
			assert.Equal(t, tt.width, w)
		})
	}
}
