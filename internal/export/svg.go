package export

import (
	"fmt"
	"strings"

	"github.com/inodb/vibe-tgv/internal/canvas"
)

// Cell size in SVG user units.
const (
	CellWidth  = 8
	CellHeight = 16
)

var svgEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// SVG renders the buffer as a self-contained SVG document. Every cell with
// a non-default background gets a <rect>; every non-blank cell gets a
// <text> whose baseline sits 3 units above the cell bottom.
func SVG(buf *canvas.Buffer) string {
	width := buf.Area.Width * CellWidth
	height := buf.Area.Height * CellHeight

	var rects, texts strings.Builder
	for row := 0; row < buf.Area.Height; row++ {
		for col, c := range buf.Row(buf.Area.Y + row) {
			px, py := col*CellWidth, row*CellHeight
			if !c.Bg.IsReset() {
				fmt.Fprintf(&rects, "<rect x=\"%d\" y=\"%d\" width=\"%d\" height=\"%d\" fill=\"%s\"/>\n",
					px, py, CellWidth, CellHeight, css(c.Bg))
			}
			if c.Blank() {
				continue
			}
			fmt.Fprintf(&texts, "<text x=\"%d\" y=\"%d\" fill=\"%s\">%s</text>\n",
				px, py+CellHeight-3, css(c.Fg), svgEscaper.Replace(c.Symbol))
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
  <defs>
    <style>
      text {
        font-family: "JetBrains Mono", "Fira Code", "DejaVu Sans Mono", "Courier New", monospace;
        font-size: %dpx;
      }
    </style>
  </defs>
  <rect width="%d" height="%d" fill="#1e1e1e"/>
`, width, height, width, height, CellHeight, width, height)
	sb.WriteString(rects.String())
	sb.WriteString(texts.String())
	sb.WriteString("</svg>\n")
	return sb.String()
}
