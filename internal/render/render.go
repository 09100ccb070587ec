// Package render rasterizes decoded tile maps into preview images using the
// palette's color metadata.
package render

import (
	"fmt"
	"hash/fnv"
	"image"
	"image/color"

	"github.com/pspoerri/mapcodec"
)

// TileColor resolves the display color of a tile type. ColorBase is parsed as
// a #RGB or #RRGGBB hex triplet; anything else falls back to a color derived
// from the string so previews stay deterministic. ColorVariant shades the
// base from dark (0) to light (15).
func TileColor(t mapcodec.TileType) color.RGBA {
	base, ok := parseHex(t.ColorBase)
	if !ok {
		base = derivedColor(t.ColorBase)
	}
	return shade(base, t.ColorVariant)
}

// Image renders the map with cellSize pixels per grid cell. Cells referencing
// a palette index the map does not define render as transparent black.
func Image(m *mapcodec.RawMap, cellSize int) *image.RGBA {
	if cellSize < 1 {
		cellSize = 1
	}
	width := int(m.Width)
	height := int(m.Height)
	img := image.NewRGBA(image.Rect(0, 0, width*cellSize, height*cellSize))

	colors := make([]color.RGBA, len(m.Types))
	for i, t := range m.Types {
		colors[i] = TileColor(t)
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			ti := m.Tiles[y*width+x]
			if int(ti) >= len(colors) {
				continue
			}
			c := colors[ti]
			for py := 0; py < cellSize; py++ {
				row := (y*cellSize + py) * img.Stride
				for px := 0; px < cellSize; px++ {
					o := row + (x*cellSize+px)*4
					img.Pix[o] = c.R
					img.Pix[o+1] = c.G
					img.Pix[o+2] = c.B
					img.Pix[o+3] = c.A
				}
			}
		}
	}
	return img
}

// Preview renders the map and encodes it in the named format ("png" or "webp").
func Preview(m *mapcodec.RawMap, cellSize int, format string) ([]byte, error) {
	enc, err := NewEncoder(format)
	if err != nil {
		return nil, err
	}
	return enc.Encode(Image(m, cellSize))
}

func parseHex(s string) (color.RGBA, bool) {
	if len(s) == 0 || s[0] != '#' {
		return color.RGBA{}, false
	}
	digits := s[1:]
	switch len(digits) {
	case 3:
		r, okR := hexNibble(digits[0])
		g, okG := hexNibble(digits[1])
		b, okB := hexNibble(digits[2])
		if !okR || !okG || !okB {
			return color.RGBA{}, false
		}
		return color.RGBA{R: r * 17, G: g * 17, B: b * 17, A: 255}, true
	case 6:
		var v [6]uint8
		for i := 0; i < 6; i++ {
			n, ok := hexNibble(digits[i])
			if !ok {
				return color.RGBA{}, false
			}
			v[i] = n
		}
		return color.RGBA{
			R: v[0]<<4 | v[1],
			G: v[2]<<4 | v[3],
			B: v[4]<<4 | v[5],
			A: 255,
		}, true
	}
	return color.RGBA{}, false
}

func hexNibble(c byte) (uint8, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// derivedColor maps an arbitrary color name to a stable mid-range RGB value.
func derivedColor(name string) color.RGBA {
	h := fnv.New32a()
	h.Write([]byte(name))
	v := h.Sum32()
	return color.RGBA{
		R: 64 + uint8(v)%128,
		G: 64 + uint8(v>>8)%128,
		B: 64 + uint8(v>>16)%128,
		A: 255,
	}
}

// shade scales a base color by the 4-bit variant: 0 is darkest, 15 lightest.
func shade(c color.RGBA, variant uint8) color.RGBA {
	scale := func(v uint8) uint8 {
		// 75% at variant 0 up to 125% at variant 15.
		s := int(v) * (75 + int(variant)*50/15) / 100
		if s > 255 {
			s = 255
		}
		return uint8(s)
	}
	return color.RGBA{R: scale(c.R), G: scale(c.G), B: scale(c.B), A: c.A}
}

// Encoder encodes a rendered preview into an image format.
type Encoder interface {
	// Encode encodes an image to bytes.
	Encode(img image.Image) ([]byte, error)

	// Format returns the format name (e.g. "png", "webp").
	Format() string

	// FileExtension returns the appropriate file extension.
	FileExtension() string
}

// NewEncoder creates an encoder for the given format.
func NewEncoder(format string) (Encoder, error) {
	switch format {
	case "png":
		return &PNGEncoder{}, nil
	case "webp":
		return &WebPEncoder{}, nil
	default:
		return nil, fmt.Errorf("unsupported preview format: %q (supported: png, webp)", format)
	}
}
