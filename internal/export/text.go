package export

import (
	"strings"

	"github.com/inodb/vibe-tgv/internal/canvas"
)

// Text renders the buffer's symbols row by row, one line per row.
func Text(buf *canvas.Buffer) string {
	var sb strings.Builder
	sb.Grow((buf.Area.Width + 1) * buf.Area.Height)
	for y := buf.Area.Y; y < buf.Area.Y+buf.Area.Height; y++ {
		for _, c := range buf.Row(y) {
			sb.WriteString(symbol(c))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
