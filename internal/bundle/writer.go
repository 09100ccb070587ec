package bundle

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/golang/snappy"
)

// dedupEntry records the location of previously written payload bytes.
type dedupEntry struct {
	offset  uint64
	length  uint32
	rawSize uint32
}

// Writer assembles a bundle in two passes: payloads are appended to a
// temporary file as maps are added, then Finalize builds the directory and
// writes the final archive.
//
// Identical encoded maps are deduplicated: when two names carry the same
// bytes, the payload is stored once and both directory entries share its
// offset.
type Writer struct {
	outputPath string

	tmpFile   *os.File
	tmpOffset uint64
	entries   []Entry
	names     []string
	byName    map[string]bool
	dedup     map[uint64]dedupEntry // FNV-64a of raw payload → first occurrence
	finalized bool

	dedupHits int
	rawTotal  uint64
}

// NewWriter creates a bundle writer targeting outputPath. Temporary payload
// data lives next to the output file until Finalize or Abort.
func NewWriter(outputPath string) (*Writer, error) {
	tmpFile, err := os.CreateTemp(filepath.Dir(outputPath), "bundle-maps-*.tmp")
	if err != nil {
		return nil, fmt.Errorf("creating temp file: %w", err)
	}
	return &Writer{
		outputPath: outputPath,
		tmpFile:    tmpFile,
		byName:     make(map[string]bool),
		dedup:      make(map[uint64]dedupEntry),
	}, nil
}

// Add stores one encoded map under a unique name.
func (w *Writer) Add(name string, encoded []byte) error {
	if w.finalized {
		return fmt.Errorf("bundle already finalized")
	}
	if name == "" {
		return fmt.Errorf("empty map name")
	}
	if w.byName[name] {
		return fmt.Errorf("duplicate map name %q", name)
	}

	h := fnv.New64a()
	h.Write(encoded)
	contentHash := h.Sum64()

	w.byName[name] = true
	w.names = append(w.names, name)
	w.rawTotal += uint64(len(encoded))

	if de, ok := w.dedup[contentHash]; ok && de.rawSize == uint32(len(encoded)) {
		w.entries = append(w.entries, Entry{
			NameHash: NameHash(name),
			Offset:   de.offset,
			Length:   de.length,
			RawSize:  de.rawSize,
		})
		w.dedupHits++
		return nil
	}

	payload := snappy.Encode(nil, encoded)
	offset := w.tmpOffset
	n, err := w.tmpFile.Write(payload)
	if err != nil {
		return fmt.Errorf("writing payload for %q: %w", name, err)
	}
	w.tmpOffset += uint64(n)

	de := dedupEntry{offset: offset, length: uint32(len(payload)), rawSize: uint32(len(encoded))}
	w.dedup[contentHash] = de
	w.entries = append(w.entries, Entry{
		NameHash: NameHash(name),
		Offset:   de.offset,
		Length:   de.length,
		RawSize:  de.rawSize,
	})
	return nil
}

// DedupHits reports how many added maps reused an existing payload.
func (w *Writer) DedupHits() int {
	return w.dedupHits
}

// RawTotal reports the total encoded bytes added, before compression and dedup.
func (w *Writer) RawTotal() uint64 {
	return w.rawTotal
}

// Finalize builds the directory and metadata and writes the final bundle.
func (w *Writer) Finalize() error {
	if w.finalized {
		return fmt.Errorf("already finalized")
	}
	w.finalized = true

	entries := append([]Entry(nil), w.entries...)
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].NameHash < entries[j].NameHash
	})
	for i := 1; i < len(entries); i++ {
		if entries[i].NameHash == entries[i-1].NameHash {
			return fmt.Errorf("map name hash collision at %#x", entries[i].NameHash)
		}
	}

	dir, err := serializeDirectory(entries)
	if err != nil {
		return fmt.Errorf("building directory: %w", err)
	}

	meta, err := w.buildMetadata()
	if err != nil {
		return fmt.Errorf("building metadata: %w", err)
	}

	// Layout: [Header] [Directory] [Metadata] [Payloads]
	h := Header{
		DirOffset:  HeaderSize,
		DirLength:  uint64(len(dir)),
		MetaOffset: HeaderSize + uint64(len(dir)),
		MetaLength: uint64(len(meta)),
		DataOffset: HeaderSize + uint64(len(dir)) + uint64(len(meta)),
		DataLength: w.tmpOffset,
		NumMaps:    uint64(len(entries)),
	}

	outFile, err := os.Create(w.outputPath)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer outFile.Close()

	if _, err := outFile.Write(h.Serialize()); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if _, err := outFile.Write(dir); err != nil {
		return fmt.Errorf("writing directory: %w", err)
	}
	if _, err := outFile.Write(meta); err != nil {
		return fmt.Errorf("writing metadata: %w", err)
	}

	if _, err := w.tmpFile.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("seeking temp file: %w", err)
	}
	if _, err := io.Copy(outFile, w.tmpFile); err != nil {
		return fmt.Errorf("copying payloads: %w", err)
	}

	tmpPath := w.tmpFile.Name()
	w.tmpFile.Close()
	os.Remove(tmpPath)
	return nil
}

// Abort cleans up resources without writing the output file.
func (w *Writer) Abort() {
	if w.tmpFile != nil {
		tmpPath := w.tmpFile.Name()
		w.tmpFile.Close()
		os.Remove(tmpPath)
	}
}

// buildMetadata stores the map names as gzip-compressed JSON; readers recover
// the name → entry mapping by hashing.
func (w *Writer) buildMetadata() ([]byte, error) {
	data, err := json.Marshal(map[string]interface{}{"names": w.names})
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	gw, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := gw.Write(data); err != nil {
		return nil, err
	}
	if err := gw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
