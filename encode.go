package mapcodec

import (
	"fmt"

	"github.com/pspoerri/mapcodec/internal/bitio"
	"github.com/pspoerri/mapcodec/internal/line"
	"github.com/pspoerri/mapcodec/internal/zone"
)

// Fill directions, as stored in the stream's direction bit.
const (
	directionL2R = 0 // left-to-right row sweep
	directionT2B = 1 // top-to-bottom column sweep
)

// Encode compresses a map into its bit-packed byte form.
//
// The grid is partitioned into zones, both line candidates (left-entry and
// top-entry borders) are built, and the cheaper one is emitted together with
// the palette and the header. Fails with ErrInvalidInput, ErrUnknownTileType
// or ErrStringTooLong.
func Encode(m *RawMap) ([]byte, error) {
	if err := m.validate(); err != nil {
		return nil, err
	}
	width := int(m.Width)

	zones, cellMap := zone.Build(m.Tiles, width, int(m.Height))

	// Every zone must reference a palette entry the caller supplied.
	for _, z := range zones {
		if int(z.Type) >= len(m.Types) {
			return nil, fmt.Errorf("tile type %d not in %d-entry palette: %w",
				z.Type, len(m.Types), ErrUnknownTileType)
		}
	}

	typeBits := paletteBits(len(m.Types))

	l2r, t2b := line.BuildCandidates(zones, cellMap, width)
	line.SortByChunk(l2r, width)
	line.SortByChunk(t2b, width)

	direction := directionL2R
	lines := l2r
	if line.Cost(l2r, width, typeBits) > line.Cost(t2b, width, typeBits) {
		direction = directionT2B
		lines = t2b
	}

	w := &bitio.Writer{}
	w.WriteBits(4, CurrentVersion)
	w.WriteBits(16, uint32(m.Width))
	w.WriteBits(16, uint32(m.Height))
	w.WriteBits(8, 0) // reserved
	w.WriteBool(direction == directionT2B)
	w.WriteBool(false) // reserved

	if err := writePalette(w, m.Types); err != nil {
		return nil, err
	}

	w.WriteBits(32, uint32(len(lines)))
	writeLines(w, lines, width, typeBits)

	w.WriteBool(false) // reserved
	w.WriteBits(8, 0)  // reserved
	return w.Finish(), nil
}

func writePalette(w *bitio.Writer, types []TileType) error {
	w.WriteBits(16, uint32(len(types)))
	for i, t := range types {
		w.WriteBits(3, 0) // reserved
		if err := w.WriteString(MaxNameChars, t.Name); err != nil {
			return fmt.Errorf("tile type %d name: %w", i, err)
		}
		if err := w.WriteString(MaxColorChars, t.ColorBase); err != nil {
			return fmt.Errorf("tile type %d color: %w", i, err)
		}
		w.WriteBits(4, uint32(t.ColorVariant))
		w.WriteBool(t.Conquerable)
		w.WriteBool(t.Navigable)
		w.WriteBits(8, uint32(t.ExpansionTime))
		w.WriteBits(8, uint32(t.ExpansionCost))
	}
	return nil
}

// Per-step direction codes. Two bits each.
const (
	stepRight = 0 // +1
	stepLeft  = 1 // -1
	stepDown  = 2 // +width
	stepUp    = 3 // -width
)

// writeLines emits the chunk-ordered line records. The chunk cursor starts at
// 0 and advances via a unary run of 1 bits terminated by a 0; the first cell
// is addressed by its 10-bit position within the chunk; each further cell by
// a 2-bit step code.
func writeLines(w *bitio.Writer, lines []line.Segment, width, typeBits int) {
	current := 0
	for _, s := range lines {
		chunk := line.ChunkID(s.Cells[0], width)
		for ; current < chunk; current++ {
			w.WriteBool(true)
		}
		w.WriteBool(false)

		w.WriteBits(8, uint32(len(s.Cells)-1))
		if typeBits > 0 {
			w.WriteBits(typeBits, uint32(s.Type))
		}

		first := s.Cells[0]
		x := first % width
		y := first / width
		w.WriteBits(10, uint32(x%line.ChunkSize+(y%line.ChunkSize)*line.ChunkSize))

		for i := 1; i < len(s.Cells); i++ {
			switch s.Cells[i] - s.Cells[i-1] {
			case 1:
				w.WriteBits(2, stepRight)
			case -1:
				w.WriteBits(2, stepLeft)
			case width:
				w.WriteBits(2, stepDown)
			case -width:
				w.WriteBits(2, stepUp)
			default:
				panic(fmt.Sprintf("mapcodec: segment cells %d and %d are not 4-adjacent",
					s.Cells[i-1], s.Cells[i]))
			}
		}
	}
}
