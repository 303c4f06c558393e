// Package render composites alignment rendering contexts onto a cell
// buffer.
package render

import (
	"github.com/inodb/vibe-tgv/internal/canvas"
	"github.com/inodb/vibe-tgv/internal/modification"
)

// Palette holds the colors used for alignment glyphs.
type Palette struct {
	Background canvas.Color

	MatchBg canvas.Color
	MatchFg canvas.Color

	DeletionFg    canvas.Color
	PairGapFg     canvas.Color
	PairOverlapFg canvas.Color
	PairOverlapBg canvas.Color
	InsertionFg   canvas.Color

	// Indexed by uppercase base; other bytes use BaseOther.
	BaseA, BaseC, BaseG, BaseT, BaseOther canvas.Color

	// Modification gradients run from ModLow (probability 0) to the
	// type's high color (probability 255).
	ModLow     canvas.Color
	ModHigh5mC canvas.Color
	ModHigh5hm canvas.Color
	ModHigh6mA canvas.Color
}

// DefaultPalette returns the dark-terminal palette.
func DefaultPalette() Palette {
	return Palette{
		Background:    canvas.Reset,
		MatchBg:       canvas.Indexed(238),
		MatchFg:       canvas.Indexed(250),
		DeletionFg:    canvas.Indexed(244),
		PairGapFg:     canvas.Indexed(240),
		PairOverlapFg: canvas.Indexed(252),
		PairOverlapBg: canvas.Indexed(60),
		InsertionFg:   canvas.Indexed(135),
		BaseA:         canvas.RGB(0, 200, 0),
		BaseC:         canvas.RGB(60, 120, 255),
		BaseG:         canvas.RGB(230, 160, 0),
		BaseT:         canvas.RGB(230, 40, 40),
		BaseOther:     canvas.Indexed(245),
		ModLow:        canvas.RGB(40, 60, 160),
		ModHigh5mC:    canvas.RGB(220, 30, 30),
		ModHigh5hm:    canvas.RGB(200, 40, 200),
		ModHigh6mA:    canvas.RGB(30, 180, 60),
	}
}

func (p Palette) baseColor(base byte) canvas.Color {
	switch base {
	case 'A', 'a':
		return p.BaseA
	case 'C', 'c':
		return p.BaseC
	case 'G', 'g':
		return p.BaseG
	case 'T', 't':
		return p.BaseT
	}
	return p.BaseOther
}

// MismatchColor is the foreground for a mismatched base.
func (p Palette) MismatchColor(base byte) canvas.Color { return p.baseColor(base) }

// SoftClipColor is the background for a soft-clipped base.
func (p Palette) SoftClipColor(base byte) canvas.Color { return p.baseColor(base) }

// ModificationColor is the background for a call of type t at the given
// probability, interpolated between ModLow and the type's high color.
func (p Palette) ModificationColor(t modification.Type, probability uint8) canvas.Color {
	high := p.ModHigh5mC
	switch t {
	case modification.FiveHMC:
		high = p.ModHigh5hm
	case modification.SixMA:
		high = p.ModHigh6mA
	}
	return lerp(p.ModLow, high, probability)
}

func lerp(from, to canvas.Color, t uint8) canvas.Color {
	r0, g0, b0, ok0 := from.RGB()
	r1, g1, b1, ok1 := to.RGB()
	if !ok0 || !ok1 {
		if t >= modification.HighThreshold {
			return to
		}
		return from
	}
	mix := func(a, b uint8) uint8 {
		return uint8((int(a)*(255-int(t)) + int(b)*int(t)) / 255)
	}
	return canvas.RGB(mix(r0, r1), mix(g0, g1), mix(b0, b1))
}
