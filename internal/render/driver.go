package render

import (
	"errors"
	"fmt"

	"github.com/inodb/vibe-tgv/internal/alignment"
	"github.com/inodb/vibe-tgv/internal/canvas"
	"github.com/inodb/vibe-tgv/internal/layout"
	"github.com/inodb/vibe-tgv/internal/modification"
)

// ErrState is returned when the alignment is not ready for the requested
// display mode.
var ErrState = errors.New("state error")

// Options are the display options that affect rendering.
type Options struct {
	// Paired draws precomputed read pairs instead of individual reads.
	Paired bool
	// ShowModifications colors match cells by decoded base modifications.
	// Only honored for individual reads.
	ShowModifications bool
}

// RenderAlignment draws every visible row of a into area of buf.
//
// In paired mode a.ReadPairs and a.ShowPairs must already be computed;
// otherwise ErrState is returned and nothing is drawn. Paired mode never
// applies modification coloring.
func RenderAlignment(
	area canvas.Rect,
	buf *canvas.Buffer,
	a *alignment.Alignment,
	view layout.AlignmentView,
	palette Palette,
	opts Options,
) error {
	if area.Height < 1 {
		return nil
	}

	if opts.Paired {
		if a.ReadPairs == nil || a.ShowPairs == nil {
			return fmt.Errorf("%w: read pairs are not calculated before rendering", ErrState)
		}
		if len(a.ShowPairs) != len(a.ReadPairs) {
			return fmt.Errorf("%w: %d pair visibility flags for %d read pairs",
				ErrState, len(a.ShowPairs), len(a.ReadPairs))
		}
		return renderPairs(area, buf, a, view, palette)
	}

	for y, readIndexes := range a.YsIndex {
		for _, i := range readIndexes {
			read := &a.Reads[i]
			var mods modification.Map
			if opts.ShowModifications && len(read.BaseModifications) > 0 {
				mods = read.BaseModifications
			}
			for _, ctx := range read.RenderingContexts {
				if err := RenderContext(ctx, y, buf, view, area, palette, mods); err != nil {
					return fmt.Errorf("render read %s: %w", read.Name, err)
				}
			}
		}
	}
	return nil
}

func renderPairs(
	area canvas.Rect,
	buf *canvas.Buffer,
	a *alignment.Alignment,
	view layout.AlignmentView,
	palette Palette,
) error {
	for i, pair := range a.ReadPairs {
		if !a.ShowPairs[i] {
			continue
		}
		if pair.Read1Index < 0 || pair.Read1Index >= len(a.Ys) {
			return fmt.Errorf("%w: read pair %d has no row", ErrState, i)
		}
		y := a.Ys[pair.Read1Index]
		for _, ctx := range pair.RenderingContexts {
			if err := RenderContext(ctx, y, buf, view, area, palette, nil); err != nil {
				return fmt.Errorf("render pair %d: %w", i, err)
			}
		}
	}
	return nil
}
