package mapcodec

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"
)

var testTypes = []TileType{
	{Name: "water", ColorBase: "#1f4f8f", ColorVariant: 2, Navigable: true, ExpansionTime: 10, ExpansionCost: 50},
	{Name: "grass", ColorBase: "#3fa34d", ColorVariant: 5, Conquerable: true, ExpansionTime: 4, ExpansionCost: 10},
	{Name: "mountain", ColorBase: "#6e6e6e", ColorVariant: 0, ExpansionTime: 20, ExpansionCost: 200},
}

func roundTrip(t *testing.T, m *RawMap) *RawMap {
	t.Helper()
	data, err := Encode(m)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Width != m.Width || got.Height != m.Height {
		t.Fatalf("size = %dx%d, want %dx%d", got.Width, got.Height, m.Width, m.Height)
	}
	if !reflect.DeepEqual(got.Tiles, m.Tiles) {
		t.Fatalf("tiles = %v, want %v", got.Tiles, m.Tiles)
	}
	if !reflect.DeepEqual(got.Types, m.Types) {
		t.Fatalf("types = %+v, want %+v", got.Types, m.Types)
	}
	return got
}

func TestEncode_SingleCell(t *testing.T) {
	m := &RawMap{Width: 1, Height: 1, Tiles: []uint16{0}, Types: testTypes[:1]}

	data, err := Encode(m)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	// Header: version 0000, then width 1 and height 1 as 16-bit fields.
	if data[0] != 0x00 || data[1] != 0x00 || data[2] != 0x10 {
		t.Errorf("header bytes = %x, want 000010...", data[:3])
	}

	info, err := Inspect(data)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if info.LineCount != 1 || info.LongestLine != 1 || info.ChunksUsed != 1 {
		t.Errorf("info = %+v, want one single-cell line in chunk 0", info)
	}
	if info.TopToBottom {
		t.Error("direction = T2B, want L2R on equal cost")
	}

	roundTrip(t, m)
}

func TestEncode_Checkerboard(t *testing.T) {
	m := &RawMap{
		Width: 2, Height: 2,
		Tiles: []uint16{0, 1, 1, 0},
		Types: testTypes[:2],
	}

	data, err := Encode(m)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	info, err := Inspect(data)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	// Four single-cell zones, each contributing one border point.
	if info.LineCount != 4 || info.LongestLine != 1 {
		t.Errorf("lines = %d (longest %d), want 4 singletons", info.LineCount, info.LongestLine)
	}

	roundTrip(t, m)
}

func TestEncode_UnusedPaletteEntry(t *testing.T) {
	// The emitted palette carries the full caller palette even when entries
	// go unused, and the round trip preserves it element-wise.
	m := &RawMap{
		Width: 3, Height: 3,
		Tiles: make([]uint16, 9),
		Types: testTypes[:2],
	}
	got := roundTrip(t, m)
	if got.Types[1].Name != "grass" {
		t.Errorf("unused palette entry = %+v, want grass", got.Types[1])
	}
}

func TestEncode_NonPrefixPalette(t *testing.T) {
	// Only the second palette entry is used; tiles must still decode to the
	// original indices.
	m := &RawMap{Width: 1, Height: 1, Tiles: []uint16{1}, Types: testTypes[:2]}
	got := roundTrip(t, m)
	if got.Tiles[0] != 1 {
		t.Errorf("tiles[0] = %d, want 1", got.Tiles[0])
	}
}

func TestEncode_Stripes(t *testing.T) {
	m := &RawMap{
		Width: 8, Height: 1,
		Tiles: []uint16{0, 0, 0, 0, 1, 1, 1, 1},
		Types: testTypes[:2],
	}

	data, err := Encode(m)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	info, err := Inspect(data)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	// Two left-entry singletons beat two 4-cell top chains.
	if info.TopToBottom {
		t.Error("direction = T2B, want L2R")
	}
	if info.LineCount != 2 || info.LongestLine != 1 {
		t.Errorf("lines = %d (longest %d), want 2 singletons", info.LineCount, info.LongestLine)
	}

	roundTrip(t, m)
}

func TestEncode_LargeUniform(t *testing.T) {
	m := &RawMap{
		Width: 64, Height: 64,
		Tiles: make([]uint16, 64*64),
		Types: testTypes[:1],
	}

	data, err := Encode(m)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	info, err := Inspect(data)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	// A single zone reduces to one border chain along one edge.
	if info.LineCount != 1 || info.LongestLine != 64 {
		t.Errorf("lines = %d (longest %d), want one 64-cell chain", info.LineCount, info.LongestLine)
	}

	roundTrip(t, m)
}

func TestEncode_Coastline(t *testing.T) {
	// Water background with two landmasses and a mountain ridge.
	width, height := 16, 8
	tiles := make([]uint16, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			switch {
			case x > 1 && x < 6 && y > 1 && y < 5:
				tiles[y*width+x] = 1
			case x > 8 && x < 14 && y > 2 && y < 7:
				tiles[y*width+x] = 1
			case x == 10 && y > 3 && y < 6:
				tiles[y*width+x] = 2
			}
		}
	}
	m := &RawMap{Width: uint16(width), Height: uint16(height), Tiles: tiles, Types: testTypes}
	roundTrip(t, m)
}

func TestEncode_Empty(t *testing.T) {
	m := &RawMap{Width: 0, Height: 0, Tiles: []uint16{}, Types: []TileType{}}
	roundTrip(t, m)
}

func TestReencode_Idempotent(t *testing.T) {
	maps := []*RawMap{
		{Width: 1, Height: 1, Tiles: []uint16{0}, Types: testTypes[:1]},
		{Width: 2, Height: 2, Tiles: []uint16{0, 1, 1, 0}, Types: testTypes[:2]},
		{Width: 8, Height: 1, Tiles: []uint16{0, 0, 0, 0, 1, 1, 1, 1}, Types: testTypes[:2]},
	}
	for _, m := range maps {
		first, err := Encode(m)
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}
		decoded, err := Decode(first)
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		second, err := Encode(decoded)
		if err != nil {
			t.Fatalf("re-Encode: %v", err)
		}
		if !bytes.Equal(first, second) {
			t.Errorf("re-encode differs: %x vs %x", first, second)
		}
	}
}

func TestEncode_UnknownTileType(t *testing.T) {
	m := &RawMap{Width: 1, Height: 1, Tiles: []uint16{5}, Types: testTypes[:1]}
	if _, err := Encode(m); !errors.Is(err, ErrUnknownTileType) {
		t.Errorf("err = %v, want ErrUnknownTileType", err)
	}
}

func TestEncode_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		m    *RawMap
	}{
		{"tile count mismatch", &RawMap{Width: 2, Height: 2, Tiles: []uint16{0}, Types: testTypes[:1]}},
		{"color variant out of range", &RawMap{
			Width: 1, Height: 1, Tiles: []uint16{0},
			Types: []TileType{{Name: "bad", ColorVariant: 16}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Encode(tt.m); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("err = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestEncode_StringTooLong(t *testing.T) {
	m := &RawMap{
		Width: 1, Height: 1, Tiles: []uint16{0},
		Types: []TileType{{Name: strings.Repeat("n", 33)}},
	}
	if _, err := Encode(m); !errors.Is(err, ErrStringTooLong) {
		t.Errorf("err = %v, want ErrStringTooLong", err)
	}
}

func TestDecode_VersionGate(t *testing.T) {
	m := &RawMap{Width: 1, Height: 1, Tiles: []uint16{0}, Types: testTypes[:1]}
	data, err := Encode(m)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	for _, v := range []byte{1, 7, 15} {
		bad := append([]byte(nil), data...)
		bad[0] = bad[0]&0x0F | v<<4
		if _, err := Decode(bad); !errors.Is(err, ErrUnsupportedVersion) {
			t.Errorf("version %d: err = %v, want ErrUnsupportedVersion", v, err)
		}
	}
}

func TestDecode_Truncated(t *testing.T) {
	m := &RawMap{Width: 4, Height: 4, Tiles: make([]uint16, 16), Types: testTypes[:1]}
	data, err := Encode(m)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	for _, n := range []int{0, 1, 3, 6} {
		if _, err := Decode(data[:n]); !errors.Is(err, ErrTruncated) {
			t.Errorf("Decode(data[:%d]): err = %v, want ErrTruncated", n, err)
		}
	}
}

func TestDecode_DirectionBit(t *testing.T) {
	// A tall single-column map: one top-entry singleton beats the left-entry
	// chain, so the encoder picks the top-to-bottom fill.
	m := &RawMap{Width: 1, Height: 8, Tiles: make([]uint16, 8), Types: testTypes[:1]}
	data, err := Encode(m)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	info, err := Inspect(data)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if !info.TopToBottom {
		t.Error("direction = L2R, want T2B")
	}
	roundTrip(t, m)
}

func TestChunkCount(t *testing.T) {
	tests := []struct {
		w, h uint16
		want int
	}{
		{1, 1, 1},
		{32, 32, 1},
		{33, 32, 2},
		{64, 64, 4},
		{100, 40, 8},
	}
	for _, tt := range tests {
		if got := ChunkCount(tt.w, tt.h); got != tt.want {
			t.Errorf("ChunkCount(%d, %d) = %d, want %d", tt.w, tt.h, got, tt.want)
		}
	}
}
