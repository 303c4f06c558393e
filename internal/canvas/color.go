// Package canvas provides the character-cell grid that renderers draw into
// and exporters read from.
package canvas

import "fmt"

type colorKind uint8

const (
	kindReset colorKind = iota
	kindIndexed
	kindRGB
)

// Color is a terminal color: the default (Reset), a 256-color palette index,
// or a 24-bit RGB value. The zero value is Reset.
type Color struct {
	kind    colorKind
	r, g, b uint8
}

// Reset is the terminal's default color.
var Reset = Color{}

// The 16 standard ANSI colors.
var (
	Black        = Indexed(0)
	Red          = Indexed(1)
	Green        = Indexed(2)
	Yellow       = Indexed(3)
	Blue         = Indexed(4)
	Magenta      = Indexed(5)
	Cyan         = Indexed(6)
	Gray         = Indexed(7)
	DarkGray     = Indexed(8)
	LightRed     = Indexed(9)
	LightGreen   = Indexed(10)
	LightYellow  = Indexed(11)
	LightBlue    = Indexed(12)
	LightMagenta = Indexed(13)
	LightCyan    = Indexed(14)
	White        = Indexed(15)
)

// Indexed returns a 256-color palette entry.
func Indexed(i uint8) Color {
	return Color{kind: kindIndexed, r: i}
}

// RGB returns a 24-bit color.
func RGB(r, g, b uint8) Color {
	return Color{kind: kindRGB, r: r, g: g, b: b}
}

// IsReset reports whether c is the default color.
func (c Color) IsReset() bool { return c.kind == kindReset }

// Index returns the palette index and true for indexed colors.
func (c Color) Index() (uint8, bool) {
	return c.r, c.kind == kindIndexed
}

// RGB resolves c to 24-bit components. ok is false for Reset.
func (c Color) RGB() (r, g, b uint8, ok bool) {
	switch c.kind {
	case kindRGB:
		return c.r, c.g, c.b, true
	case kindIndexed:
		r, g, b = indexedToRGB(c.r)
		return r, g, b, true
	}
	return 0, 0, 0, false
}

func (c Color) String() string {
	switch c.kind {
	case kindIndexed:
		return fmt.Sprintf("indexed(%d)", c.r)
	case kindRGB:
		return fmt.Sprintf("#%02x%02x%02x", c.r, c.g, c.b)
	}
	return "reset"
}

var ansi16 = [16][3]uint8{
	{0, 0, 0},
	{128, 0, 0},
	{0, 128, 0},
	{128, 128, 0},
	{0, 0, 128},
	{128, 0, 128},
	{0, 128, 128},
	{192, 192, 192},
	{128, 128, 128},
	{255, 0, 0},
	{0, 255, 0},
	{255, 255, 0},
	{0, 0, 255},
	{255, 0, 255},
	{0, 255, 255},
	{255, 255, 255},
}

// indexedToRGB approximates a 256-color index: the 16 ANSI colors, the
// 6x6x6 cube at 16-231 and the greyscale ramp at 232-255.
func indexedToRGB(idx uint8) (r, g, b uint8) {
	switch {
	case idx < 16:
		c := ansi16[idx]
		return c[0], c[1], c[2]
	case idx <= 231:
		n := idx - 16
		scale := func(v uint8) uint8 {
			if v == 0 {
				return 0
			}
			return 55 + v*40
		}
		return scale(n / 36), scale((n / 6) % 6), scale(n % 6)
	default:
		v := 8 + (idx-232)*10
		return v, v, v
	}
}
