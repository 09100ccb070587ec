// Package mapcodec implements a lossless binary codec for 2D tile maps.
//
// A map is a rectangular grid whose cells reference tile types from a small
// palette. Encode partitions the grid into 4-connected zones of equal type,
// reduces each zone to the border points a directional fill needs, stitches
// those points into short chains, and bit-packs the result. Decode parses the
// chains back into anchor cells and sweeps the chosen fill direction to
// reconstruct the grid exactly.
package mapcodec

import (
	"fmt"
	"math/bits"
)

// Codec version range accepted by Decode. The writer always emits CurrentVersion.
const (
	MinimumVersion = 0
	CurrentVersion = 0
)

// Field limits of the encoded form.
const (
	MaxNameChars    = 32 // tile type name, bytes
	MaxColorChars   = 16 // tile type color base, bytes
	MaxColorVariant = 15
)

// TileType describes one palette entry: visual and gameplay properties shared
// by every cell referencing it.
type TileType struct {
	Name          string
	ColorBase     string
	ColorVariant  uint8 // [0, 15]
	Conquerable   bool
	Navigable     bool
	ExpansionTime uint8
	ExpansionCost uint8
}

// RawMap is a decoded tile map: a row-major grid (row 0 on top) of indices
// into the Types palette.
type RawMap struct {
	Width  uint16
	Height uint16
	Tiles  []uint16
	Types  []TileType
}

// Cells returns the number of grid cells.
func (m *RawMap) Cells() int {
	return int(m.Width) * int(m.Height)
}

func (m *RawMap) validate() error {
	if len(m.Tiles) != m.Cells() {
		return fmt.Errorf("%d tiles for a %dx%d grid: %w", len(m.Tiles), m.Width, m.Height, ErrInvalidInput)
	}
	if len(m.Types) > 65535 {
		return fmt.Errorf("palette of %d entries exceeds 65535: %w", len(m.Types), ErrInvalidInput)
	}
	for i, t := range m.Types {
		if t.ColorVariant > MaxColorVariant {
			return fmt.Errorf("tile type %d color variant %d out of range [0,%d]: %w",
				i, t.ColorVariant, MaxColorVariant, ErrInvalidInput)
		}
	}
	return nil
}

// paletteBits returns the width of the per-line type field for a palette of n
// entries: ceil(log2(n)), and 0 when a single entry (or none) leaves nothing
// to distinguish.
func paletteBits(n int) int {
	if n <= 1 {
		return 0
	}
	return bits.Len(uint(n - 1))
}
