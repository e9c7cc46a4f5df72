// Package fonts provides the embedded typefaces used for raster rendering.
//
// The Go fonts ship inside golang.org/x/image, so no font files have to be
// present on the host. Parsed fonts are cached after first use.
package fonts

import (
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// FontFamily is the CSS font-family used in SVG output.
const FontFamily = `'Go', 'Helvetica Neue', Arial, sans-serif`

var (
	regular, bold *truetype.Font
	parseOnce     sync.Once
	parseErr      error
)

func load() error {
	parseOnce.Do(func() {
		if regular, parseErr = truetype.Parse(goregular.TTF); parseErr != nil {
			return
		}
		bold, parseErr = truetype.Parse(gobold.TTF)
	})
	return parseErr
}

// Regular returns a Go Regular face at size points. A face is not safe for
// concurrent use; request one per renderer.
func Regular(size float64) (font.Face, error) {
	if err := load(); err != nil {
		return nil, err
	}
	return newFace(regular, size), nil
}

// Bold returns a Go Bold face at size points.
func Bold(size float64) (font.Face, error) {
	if err := load(); err != nil {
		return nil, err
	}
	return newFace(bold, size), nil
}

func newFace(f *truetype.Font, size float64) font.Face {
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}
