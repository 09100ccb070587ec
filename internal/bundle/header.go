// Package bundle implements a multi-map archive: a fixed header, a compressed
// directory keyed by name hash, a JSON name list, and snappy-compressed map
// payloads.
package bundle

import (
	"encoding/binary"
	"fmt"
)

const (
	magic      = "MAPBNDL"
	Version    = 1
	HeaderSize = 64
)

// Header is the fixed-size bundle header. All offsets are absolute file
// positions, lengths in bytes.
type Header struct {
	DirOffset  uint64
	DirLength  uint64
	MetaOffset uint64
	MetaLength uint64
	DataOffset uint64
	DataLength uint64
	NumMaps    uint64
}

// Serialize writes the 64-byte header.
func (h *Header) Serialize() []byte {
	buf := make([]byte, HeaderSize)
	copy(buf[0:7], magic)
	buf[7] = Version
	binary.LittleEndian.PutUint64(buf[8:16], h.DirOffset)
	binary.LittleEndian.PutUint64(buf[16:24], h.DirLength)
	binary.LittleEndian.PutUint64(buf[24:32], h.MetaOffset)
	binary.LittleEndian.PutUint64(buf[32:40], h.MetaLength)
	binary.LittleEndian.PutUint64(buf[40:48], h.DataOffset)
	binary.LittleEndian.PutUint64(buf[48:56], h.DataLength)
	binary.LittleEndian.PutUint64(buf[56:64], h.NumMaps)
	return buf
}

// DeserializeHeader parses a 64-byte bundle header.
func DeserializeHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, fmt.Errorf("header too short: %d bytes (need %d)", len(buf), HeaderSize)
	}
	if string(buf[0:7]) != magic {
		return Header{}, fmt.Errorf("invalid magic bytes: %q", buf[0:7])
	}
	if buf[7] != Version {
		return Header{}, fmt.Errorf("unsupported bundle version: %d (expected %d)", buf[7], Version)
	}
	return Header{
		DirOffset:  binary.LittleEndian.Uint64(buf[8:16]),
		DirLength:  binary.LittleEndian.Uint64(buf[16:24]),
		MetaOffset: binary.LittleEndian.Uint64(buf[24:32]),
		MetaLength: binary.LittleEndian.Uint64(buf[32:40]),
		DataOffset: binary.LittleEndian.Uint64(buf[40:48]),
		DataLength: binary.LittleEndian.Uint64(buf[48:56]),
		NumMaps:    binary.LittleEndian.Uint64(buf[56:64]),
	}, nil
}
