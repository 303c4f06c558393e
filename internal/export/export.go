// Package export writes a rendered cell buffer to plain text, HTML or SVG.
package export

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/inodb/vibe-tgv/internal/canvas"
)

// Format selects an export encoding.
type Format int

const (
	FormatText Format = iota
	FormatHTML
	FormatSVG
)

func (f Format) String() string {
	switch f {
	case FormatHTML:
		return "html"
	case FormatSVG:
		return "svg"
	}
	return "text"
}

// ParseFormat accepts "text", "txt", "html" and "svg", case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "txt":
		return FormatText, nil
	case "html":
		return FormatHTML, nil
	case "svg":
		return FormatSVG, nil
	}
	return 0, fmt.Errorf("unknown export format %q", s)
}

// Write encodes buf in the given format to w.
func Write(w io.Writer, buf *canvas.Buffer, format Format) error {
	var out string
	switch format {
	case FormatText:
		out = Text(buf)
	case FormatHTML:
		out = HTML(buf)
	case FormatSVG:
		out = SVG(buf)
	default:
		return fmt.Errorf("unknown export format %d", format)
	}
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(out); err != nil {
		return err
	}
	return bw.Flush()
}

// WriteFile creates path and writes buf to it.
func WriteFile(path string, buf *canvas.Buffer, format Format) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	if err := Write(f, buf, format); err != nil {
		f.Close()
		return fmt.Errorf("write %s export: %w", format, err)
	}
	return f.Close()
}

// css returns the CSS color for c, or "inherit" for the default color.
func css(c canvas.Color) string {
	r, g, b, ok := c.RGB()
	if !ok {
		return "inherit"
	}
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

func symbol(c canvas.Cell) string {
	if c.Symbol == "" {
		return " "
	}
	return c.Symbol
}
