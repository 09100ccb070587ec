package bundle

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/golang/snappy"
)

// ErrNotFound is returned when a bundle does not contain the requested map.
var ErrNotFound = errors.New("bundle: map not found")

// MapInfo describes one map stored in a bundle.
type MapInfo struct {
	Name           string
	CompressedSize uint32
	RawSize        uint32
}

// Reader provides access to an existing bundle.
type Reader struct {
	file   *os.File
	header Header
	byName map[string]Entry
	names  []string
}

// Open opens a bundle for reading.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	headerBuf := make([]byte, HeaderSize)
	if _, err := io.ReadFull(f, headerBuf); err != nil {
		f.Close()
		return nil, fmt.Errorf("reading header: %w", err)
	}
	header, err := DeserializeHeader(headerBuf)
	if err != nil {
		f.Close()
		return nil, err
	}

	dirData := make([]byte, header.DirLength)
	if _, err := f.ReadAt(dirData, int64(header.DirOffset)); err != nil {
		f.Close()
		return nil, fmt.Errorf("reading directory: %w", err)
	}
	entries, err := deserializeDirectory(dirData)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("parsing directory: %w", err)
	}

	metaData := make([]byte, header.MetaLength)
	if _, err := f.ReadAt(metaData, int64(header.MetaOffset)); err != nil {
		f.Close()
		return nil, fmt.Errorf("reading metadata: %w", err)
	}
	names, err := parseMetadata(metaData)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("parsing metadata: %w", err)
	}

	byHash := make(map[uint64]Entry, len(entries))
	for _, e := range entries {
		byHash[e.NameHash] = e
	}
	byName := make(map[string]Entry, len(names))
	for _, n := range names {
		e, ok := byHash[NameHash(n)]
		if !ok {
			f.Close()
			return nil, fmt.Errorf("metadata names %q but directory has no entry", n)
		}
		byName[n] = e
	}

	return &Reader{file: f, header: header, byName: byName, names: names}, nil
}

// List returns the stored maps in name order.
func (r *Reader) List() []MapInfo {
	infos := make([]MapInfo, 0, len(r.names))
	for _, n := range r.names {
		e := r.byName[n]
		infos = append(infos, MapInfo{Name: n, CompressedSize: e.Length, RawSize: e.RawSize})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// NumMaps returns the number of stored maps.
func (r *Reader) NumMaps() int {
	return len(r.names)
}

// Get returns the encoded map stored under name.
func (r *Reader) Get(name string) ([]byte, error) {
	e, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrNotFound)
	}

	payload := make([]byte, e.Length)
	if _, err := r.file.ReadAt(payload, int64(r.header.DataOffset+e.Offset)); err != nil {
		return nil, fmt.Errorf("reading payload for %q: %w", name, err)
	}
	raw, err := snappy.Decode(nil, payload)
	if err != nil {
		return nil, fmt.Errorf("decompressing %q: %w", name, err)
	}
	if len(raw) != int(e.RawSize) {
		return nil, fmt.Errorf("payload for %q is %d bytes, directory says %d", name, len(raw), e.RawSize)
	}
	return raw, nil
}

// Close releases the underlying file.
func (r *Reader) Close() error {
	return r.file.Close()
}

func parseMetadata(data []byte) ([]string, error) {
	gr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer gr.Close()
	raw, err := io.ReadAll(gr)
	if err != nil {
		return nil, err
	}
	var meta struct {
		Names []string `json:"names"`
	}
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, err
	}
	return meta.Names, nil
}
