package mapcodec

import (
	"fmt"

	"github.com/pspoerri/mapcodec/internal/bitio"
	"github.com/pspoerri/mapcodec/internal/line"
)

// Decode reconstructs a map from its bit-packed byte form.
//
// Fails with ErrUnsupportedVersion, ErrTruncated or ErrInvalidString. Cells a
// line record addresses outside the grid are ignored, matching the tolerant
// store semantics of the format's reference behavior.
func Decode(data []byte) (*RawMap, error) {
	r := bitio.NewReader(data)

	v, err := r.ReadBits(4)
	if err != nil {
		return nil, err
	}
	if version := int(v); version < MinimumVersion || version > CurrentVersion {
		return nil, fmt.Errorf("version %d not in [%d, %d]: %w",
			version, MinimumVersion, CurrentVersion, ErrUnsupportedVersion)
	}

	width, err := r.ReadBits(16)
	if err != nil {
		return nil, err
	}
	height, err := r.ReadBits(16)
	if err != nil {
		return nil, err
	}
	if _, err := r.ReadBits(8); err != nil { // reserved
		return nil, err
	}
	t2b, err := r.ReadBool()
	if err != nil {
		return nil, err
	}
	if _, err := r.ReadBool(); err != nil { // reserved
		return nil, err
	}

	types, err := readPalette(r)
	if err != nil {
		return nil, err
	}

	m := &RawMap{
		Width:  uint16(width),
		Height: uint16(height),
		Tiles:  make([]uint16, int(width)*int(height)),
		Types:  types,
	}

	anchor := make([]bool, len(m.Tiles))
	if err := readLines(r, m, anchor, paletteBits(len(types))); err != nil {
		return nil, err
	}

	// The trailing reserved bits are padding; they are not consumed.

	if t2b {
		fillTopToBottom(m.Tiles, anchor, int(width))
	} else {
		fillLeftToRight(m.Tiles, anchor)
	}
	return m, nil
}

func readPalette(r *bitio.Reader) ([]TileType, error) {
	n, err := r.ReadBits(16)
	if err != nil {
		return nil, err
	}
	types := make([]TileType, n)
	for i := range types {
		if _, err := r.ReadBits(3); err != nil { // reserved
			return nil, err
		}
		t := &types[i]
		if t.Name, err = r.ReadString(MaxNameChars); err != nil {
			return nil, fmt.Errorf("tile type %d name: %w", i, err)
		}
		if t.ColorBase, err = r.ReadString(MaxColorChars); err != nil {
			return nil, fmt.Errorf("tile type %d color: %w", i, err)
		}
		v, err := r.ReadBits(4)
		if err != nil {
			return nil, err
		}
		t.ColorVariant = uint8(v)
		if t.Conquerable, err = r.ReadBool(); err != nil {
			return nil, err
		}
		if t.Navigable, err = r.ReadBool(); err != nil {
			return nil, err
		}
		if v, err = r.ReadBits(8); err != nil {
			return nil, err
		}
		t.ExpansionTime = uint8(v)
		if v, err = r.ReadBits(8); err != nil {
			return nil, err
		}
		t.ExpansionCost = uint8(v)
	}
	return types, nil
}

// readLines parses every line record, placing tile values and anchor marks at
// the cells each line visits.
func readLines(r *bitio.Reader, m *RawMap, anchor []bool, typeBits int) error {
	count, err := r.ReadBits(32)
	if err != nil {
		return err
	}

	width := int(m.Width)
	chunkWidth := (width + line.ChunkSize - 1) / line.ChunkSize
	if chunkWidth < 1 {
		chunkWidth = 1
	}
	current := 0

	for l := uint32(0); l < count; l++ {
		for {
			more, err := r.ReadBool()
			if err != nil {
				return fmt.Errorf("line %d chunk advance: %w", l, err)
			}
			if !more {
				break
			}
			current++
		}

		lengthMinus1, err := r.ReadBits(8)
		if err != nil {
			return fmt.Errorf("line %d length: %w", l, err)
		}

		var typeID uint32
		if typeBits > 0 {
			if typeID, err = r.ReadBits(typeBits); err != nil {
				return fmt.Errorf("line %d type: %w", l, err)
			}
		}

		pos, err := r.ReadBits(10)
		if err != nil {
			return fmt.Errorf("line %d position: %w", l, err)
		}

		chunkX := current % chunkWidth
		chunkY := current / chunkWidth
		localX := int(pos) % line.ChunkSize
		localY := int(pos) / line.ChunkSize
		cell := localX + chunkX*line.ChunkSize + localY*width + chunkY*line.ChunkSize*width

		place(m.Tiles, anchor, cell, uint16(typeID))
		for s := uint32(0); s < lengthMinus1; s++ {
			code, err := r.ReadBits(2)
			if err != nil {
				return fmt.Errorf("line %d step %d: %w", l, s, err)
			}
			switch code {
			case stepRight:
				cell++
			case stepLeft:
				cell--
			case stepDown:
				cell += width
			case stepUp:
				cell -= width
			}
			place(m.Tiles, anchor, cell, uint16(typeID))
		}
	}
	return nil
}

func place(tiles []uint16, anchor []bool, cell int, t uint16) {
	if cell < 0 || cell >= len(tiles) {
		return
	}
	tiles[cell] = t
	anchor[cell] = true
}

// fillLeftToRight sweeps the grid in row-major order, propagating each
// anchor's tile value to the following cells.
func fillLeftToRight(tiles []uint16, anchor []bool) {
	var current uint16
	for i := range tiles {
		if anchor[i] {
			current = tiles[i]
		}
		tiles[i] = current
	}
}

// fillTopToBottom sweeps column-major: down each column, wrapping to the top
// of the next column. The sweep stops when it reaches the final grid cell,
// which is therefore never written by the fill and must carry an anchor.
func fillTopToBottom(tiles []uint16, anchor []bool, width int) {
	n := len(tiles)
	var current uint16
	i := 0
	for i < n-1 {
		if anchor[i] {
			current = tiles[i]
		}
		tiles[i] = current
		i += width
		if i >= n {
			i = (i + 1) % width
		}
	}
}
