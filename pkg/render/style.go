package render

import (
	"fmt"
	"image/color"

	"github.com/matzehuels/pidforge/pkg/catalog"
)

// Style is how connections and ports of one kind are drawn.
type Style struct {
	Color color.RGBA
	Width float64 // connection stroke width
}

// Hex returns the color as #rrggbb.
func (s Style) Hex() string {
	return hex(s.Color)
}

var kindStyles = [...]Style{
	catalog.KindPipe:       {Color: color.RGBA{0x1e, 0x3a, 0x8a, 0xff}, Width: 4},
	catalog.KindSignal:     {Color: color.RGBA{0xf9, 0x73, 0x16, 0xff}, Width: 2},
	catalog.KindElectrical: {Color: color.RGBA{0xdc, 0x26, 0x26, 0xff}, Width: 2},
}

var unknownStyle = Style{Color: color.RGBA{0x64, 0x74, 0x8b, 0xff}, Width: 1}

// StyleFor returns the style for a kind.
func StyleFor(k catalog.Kind) Style {
	if !k.Valid() {
		return unknownStyle
	}
	return kindStyles[k]
}

// Palette for everything that is not keyed by kind.
var (
	canvasColor   = color.RGBA{0xf8, 0xfa, 0xfc, 0xff}
	gridColor     = color.RGBA{0xcb, 0xd5, 0xe1, 0xff}
	bodyColor     = color.RGBA{0xff, 0xff, 0xff, 0xff}
	borderColor   = color.RGBA{0x33, 0x41, 0x55, 0xff}
	selectColor   = color.RGBA{0x25, 0x63, 0xeb, 0xff}
	eligibleColor = color.RGBA{0x16, 0xa3, 0x4a, 0xff}
	groupColor    = color.RGBA{0x7c, 0x3a, 0xed, 0xff}
	groupFill     = color.RGBA{0x7c, 0x3a, 0xed, 0x0d}
	textColor     = color.RGBA{0x0f, 0x17, 0x2a, 0xff}
)

func hex(c color.RGBA) string { return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B) }

// translucent returns c at roughly 60% opacity, premultiplied.
func translucent(c color.RGBA) color.RGBA {
	const a = 0x99
	return color.RGBA{
		R: uint8(uint16(c.R) * a / 0xff),
		G: uint8(uint16(c.G) * a / 0xff),
		B: uint8(uint16(c.B) * a / 0xff),
		A: a,
	}
}
