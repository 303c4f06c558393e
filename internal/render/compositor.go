package render

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/inodb/vibe-tgv/internal/alignment"
	"github.com/inodb/vibe-tgv/internal/canvas"
	"github.com/inodb/vibe-tgv/internal/layout"
	"github.com/inodb/vibe-tgv/internal/modification"
)

// ErrInvalidGlyph is returned when a base byte cannot be shown as a glyph.
var ErrInvalidGlyph = errors.New("invalid glyph")

// Glyphs drawn by the compositor.
const (
	GlyphAligned   = "-"
	GlyphDash      = "-"
	GlyphForward   = "►"
	GlyphReverse   = "◄"
	GlyphInsertion = "▌"
	GlyphConflict  = "?"
)

// cell is one styled write, relative to the area origin.
type cell struct {
	x, y  int
	glyph string
	style canvas.Style
}

// RenderContext draws one rendering context on row. mods may be nil; when
// set, match segments are drawn cell by cell with modification
// backgrounds. Off-screen geometry draws nothing and is not an error.
// On error nothing is written.
func RenderContext(
	ctx alignment.RenderingContext,
	row int,
	buf *canvas.Buffer,
	view layout.AlignmentView,
	area canvas.Rect,
	palette Palette,
	mods modification.Map,
) error {
	cells, err := contextCells(ctx, row, view, area, palette, mods)
	if err != nil {
		return err
	}
	for _, c := range cells {
		buf.SetString(area.X+c.x, area.Y+c.y, c.glyph, c.style)
	}
	return nil
}

func contextCells(
	ctx alignment.RenderingContext,
	row int,
	view layout.AlignmentView,
	area canvas.Rect,
	palette Palette,
	mods modification.Map,
) ([]cell, error) {
	yc := view.Y(row, area)
	if !yc.IsOnScreen() {
		return nil, nil
	}
	y := yc.Offset

	startX := view.X(ctx.Start, area)
	endX := view.X(ctx.End, area)
	x, width, ok := layout.Span(startX, endX, area)
	if !ok {
		return nil, nil
	}

	matchStyle := canvas.Style{Fg: palette.MatchFg, Bg: palette.MatchBg}
	var out []cell

	switch ctx.Kind {
	case alignment.KindMatch:
		if mods != nil {
			lo, hi := max(ctx.Start, view.Left), min(ctx.End, view.Right(area))
			for pos := lo; pos <= hi; pos++ {
				px := view.X(pos, area)
				if !px.IsOnScreen() {
					continue
				}
				out = append(out, cell{
					x:     px.Offset,
					y:     y,
					glyph: GlyphAligned,
					style: matchStyle.WithBg(modificationBg(pos, mods, palette)),
				})
			}
		} else {
			out = append(out, cell{x: x, y: y, glyph: strings.Repeat(GlyphAligned, width), style: matchStyle})
		}

	case alignment.KindDeletion:
		out = append(out, cell{x: x, y: y, glyph: strings.Repeat(GlyphDash, width),
			style: canvas.Style{Fg: palette.DeletionFg, Bg: palette.Background}})

	case alignment.KindPairGap:
		out = append(out, cell{x: x, y: y, glyph: strings.Repeat(GlyphDash, width),
			style: canvas.Style{Fg: palette.PairGapFg, Bg: palette.Background}})

	case alignment.KindPairOverlap:
		out = append(out, cell{x: x, y: y, glyph: strings.Repeat(GlyphDash, width),
			style: canvas.Style{Fg: palette.PairOverlapFg, Bg: palette.PairOverlapBg}})

	case alignment.KindSoftClip:
		g, err := glyph(ctx.Base)
		if err != nil {
			return nil, err
		}
		out = append(out, cell{x: x, y: y, glyph: g, style: canvas.Style{Bg: palette.SoftClipColor(ctx.Base)}})

	default:
		return nil, fmt.Errorf("unknown context kind %d", ctx.Kind)
	}

	firstStyle := matchStyle
	if len(out) > 0 {
		firstStyle = out[0].style
	}

	for _, m := range ctx.Modifiers {
		switch m := m.(type) {
		case alignment.Forward:
			if endX.IsOnScreen() {
				out = append(out, cell{x: endX.Offset, y: y, glyph: GlyphForward, style: firstStyle})
			}

		case alignment.Reverse:
			if startX.IsOnScreen() {
				out = append(out, cell{x: startX.Offset, y: y, glyph: GlyphReverse, style: firstStyle})
			}

		case alignment.Insertion:
			if startX.IsOnScreen() {
				out = append(out, cell{x: startX.Offset, y: y, glyph: GlyphInsertion,
					style: canvas.Style{Fg: palette.InsertionFg}})
			}

		case alignment.Mismatch:
			px := view.X(m.Pos, area)
			if !px.IsOnScreen() {
				continue
			}
			g, err := glyph(m.Base)
			if err != nil {
				return nil, err
			}
			style := firstStyle
			if mods != nil {
				// Keep the modification background under the base.
				style = matchStyle.WithBg(modificationBg(m.Pos, mods, palette))
			}
			out = append(out, cell{x: px.Offset, y: y, glyph: g, style: style.WithFg(palette.MismatchColor(m.Base))})

		case alignment.PairConflict:
			px := view.X(m.Pos, area)
			if px.IsOnScreen() {
				out = append(out, cell{x: px.Offset, y: y, glyph: GlyphConflict, style: firstStyle})
			}
		}
	}

	return out, nil
}

// modificationBg returns the background for pos: the preferred call's
// color, or the aligned background when no call was made there.
func modificationBg(pos uint64, mods modification.Map, palette Palette) canvas.Color {
	if m, ok := mods.Preferred(pos); ok {
		return palette.ModificationColor(m.Type, m.Probability)
	}
	return palette.MatchBg
}

// glyph turns a base byte into a single-cell glyph.
func glyph(b byte) (string, error) {
	if b >= utf8.RuneSelf || b < ' ' || b == 0x7f {
		return "", fmt.Errorf("base byte 0x%02x: %w", b, ErrInvalidGlyph)
	}
	return string(rune(b)), nil
}
