package bundle

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"io"
)

// Entry locates one map's payload inside the data section.
type Entry struct {
	NameHash uint64 // FNV-64a of the map name
	Offset   uint64 // relative to the data section
	Length   uint32 // compressed payload bytes
	RawSize  uint32 // encoded map bytes before compression
}

// NameHash returns the directory key for a map name.
func NameHash(name string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(name))
	return h.Sum64()
}

// serializeDirectory writes entries (sorted by name hash) as delta-encoded
// varint columns and gzip-compresses the result.
func serializeDirectory(entries []Entry) ([]byte, error) {
	var raw bytes.Buffer
	buf := make([]byte, binary.MaxVarintLen64)

	n := binary.PutUvarint(buf, uint64(len(entries)))
	raw.Write(buf[:n])

	var lastHash uint64
	for _, e := range entries {
		n = binary.PutUvarint(buf, e.NameHash-lastHash)
		raw.Write(buf[:n])
		lastHash = e.NameHash
	}
	for _, e := range entries {
		n = binary.PutUvarint(buf, uint64(e.Length))
		raw.Write(buf[:n])
	}
	for _, e := range entries {
		n = binary.PutUvarint(buf, uint64(e.RawSize))
		raw.Write(buf[:n])
	}

	// Offsets: 0 means contiguous with the previous entry, else offset+1.
	var lastOffset uint64
	for i, e := range entries {
		var val uint64
		if i > 0 && e.Offset == lastOffset+uint64(entries[i-1].Length) {
			val = 0
		} else {
			val = e.Offset + 1
		}
		n = binary.PutUvarint(buf, val)
		raw.Write(buf[:n])
		lastOffset = e.Offset
	}

	var compressed bytes.Buffer
	gw, err := gzip.NewWriterLevel(&compressed, gzip.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := gw.Write(raw.Bytes()); err != nil {
		return nil, err
	}
	if err := gw.Close(); err != nil {
		return nil, err
	}
	return compressed.Bytes(), nil
}

// deserializeDirectory decompresses and parses a bundle directory.
func deserializeDirectory(data []byte) ([]Entry, error) {
	gr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("gzip reader: %w", err)
	}
	defer gr.Close()

	raw, err := io.ReadAll(gr)
	if err != nil {
		return nil, fmt.Errorf("decompressing directory: %w", err)
	}
	r := bytes.NewReader(raw)

	numEntries, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, fmt.Errorf("reading entry count: %w", err)
	}
	entries := make([]Entry, numEntries)

	var lastHash uint64
	for i := range entries {
		delta, err := binary.ReadUvarint(r)
		if err != nil {
			return nil, fmt.Errorf("reading name hash %d: %w", i, err)
		}
		lastHash += delta
		entries[i].NameHash = lastHash
	}
	for i := range entries {
		v, err := binary.ReadUvarint(r)
		if err != nil {
			return nil, fmt.Errorf("reading length %d: %w", i, err)
		}
		entries[i].Length = uint32(v)
	}
	for i := range entries {
		v, err := binary.ReadUvarint(r)
		if err != nil {
			return nil, fmt.Errorf("reading raw size %d: %w", i, err)
		}
		entries[i].RawSize = uint32(v)
	}

	var lastOffset uint64
	for i := range entries {
		val, err := binary.ReadUvarint(r)
		if err != nil {
			return nil, fmt.Errorf("reading offset %d: %w", i, err)
		}
		if val == 0 && i > 0 {
			entries[i].Offset = lastOffset + uint64(entries[i-1].Length)
		} else {
			entries[i].Offset = val - 1
		}
		lastOffset = entries[i].Offset
	}

	return entries, nil
}
