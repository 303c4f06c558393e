package export

import (
	"strings"

	"github.com/inodb/vibe-tgv/internal/canvas"
)

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	" ", "&nbsp;",
)

const htmlHead = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>vibe-tgv snapshot</title>
  <style>
    body {
      background: #1e1e1e;
      margin: 0;
      padding: 1em;
    }
    pre {
      font-family: "JetBrains Mono", "Fira Code", "DejaVu Sans Mono", "Courier New", monospace;
      font-size: 13px;
      line-height: 1.4;
      white-space: pre;
      margin: 0;
    }
  </style>
</head>
<body>
<pre>`

const htmlTail = `</pre>
</body>
</html>
`

// HTML renders the buffer as a standalone page: a <pre> block with one
// inline-styled <span> per cell.
func HTML(buf *canvas.Buffer) string {
	var sb strings.Builder
	sb.WriteString(htmlHead)
	for y := buf.Area.Y; y < buf.Area.Y+buf.Area.Height; y++ {
		for _, c := range buf.Row(y) {
			sb.WriteString(`<span style="color:`)
			sb.WriteString(css(c.Fg))
			sb.WriteString(`;background-color:`)
			sb.WriteString(css(c.Bg))
			sb.WriteString(`">`)
			sb.WriteString(htmlEscaper.Replace(symbol(c)))
			sb.WriteString("</span>")
		}
		sb.WriteByte('\n')
	}
	sb.WriteString(htmlTail)
	return sb.String()
}
