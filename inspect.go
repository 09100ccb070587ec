package mapcodec

import (
	"fmt"

	"github.com/pspoerri/mapcodec/internal/bitio"
	"github.com/pspoerri/mapcodec/internal/line"
)

// Info summarizes an encoded map without reconstructing the grid.
type Info struct {
	Version     int
	Width       uint16
	Height      uint16
	TopToBottom bool
	Types       []TileType
	LineCount   int
	LineCells   int // total cells addressed by line records
	LongestLine int
	ChunksUsed  int // distinct chunks holding at least one line start
}

// Inspect parses the header, palette and line records of an encoded map and
// returns their summary. It shares Decode's error behavior but skips grid
// reconstruction.
func Inspect(data []byte) (*Info, error) {
	r := bitio.NewReader(data)

	v, err := r.ReadBits(4)
	if err != nil {
		return nil, err
	}
	if version := int(v); version < MinimumVersion || version > CurrentVersion {
		return nil, fmt.Errorf("version %d not in [%d, %d]: %w",
			version, MinimumVersion, CurrentVersion, ErrUnsupportedVersion)
	}

	info := &Info{Version: int(v)}

	width, err := r.ReadBits(16)
	if err != nil {
		return nil, err
	}
	height, err := r.ReadBits(16)
	if err != nil {
		return nil, err
	}
	info.Width = uint16(width)
	info.Height = uint16(height)
	if _, err := r.ReadBits(8); err != nil {
		return nil, err
	}
	if info.TopToBottom, err = r.ReadBool(); err != nil {
		return nil, err
	}
	if _, err := r.ReadBool(); err != nil {
		return nil, err
	}

	if info.Types, err = readPalette(r); err != nil {
		return nil, err
	}

	count, err := r.ReadBits(32)
	if err != nil {
		return nil, err
	}
	info.LineCount = int(count)

	typeBits := paletteBits(len(info.Types))
	chunks := make(map[int]bool)
	current := 0
	for l := uint32(0); l < count; l++ {
		for {
			more, err := r.ReadBool()
			if err != nil {
				return nil, fmt.Errorf("line %d chunk advance: %w", l, err)
			}
			if !more {
				break
			}
			current++
		}
		chunks[current] = true

		lengthMinus1, err := r.ReadBits(8)
		if err != nil {
			return nil, fmt.Errorf("line %d length: %w", l, err)
		}
		cells := int(lengthMinus1) + 1
		info.LineCells += cells
		if cells > info.LongestLine {
			info.LongestLine = cells
		}

		if typeBits > 0 {
			if _, err := r.ReadBits(typeBits); err != nil {
				return nil, fmt.Errorf("line %d type: %w", l, err)
			}
		}
		if _, err := r.ReadBits(10); err != nil {
			return nil, fmt.Errorf("line %d position: %w", l, err)
		}
		for s := uint32(0); s < lengthMinus1; s++ {
			if _, err := r.ReadBits(2); err != nil {
				return nil, fmt.Errorf("line %d step %d: %w", l, s, err)
			}
		}
	}
	info.ChunksUsed = len(chunks)

	return info, nil
}

// ChunkCount returns how many 32x32 chunks tile a grid of the given size.
func ChunkCount(width, height uint16) int {
	cw := (int(width) + line.ChunkSize - 1) / line.ChunkSize
	ch := (int(height) + line.ChunkSize - 1) / line.ChunkSize
	return cw * ch
}
