package bundle

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeBundle(t *testing.T, path string, maps map[string][]byte, order []string) *Writer {
	t.Helper()
	w, err := NewWriter(path)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	for _, name := range order {
		if err := w.Add(name, maps[name]); err != nil {
			t.Fatalf("Add(%q): %v", name, err)
		}
	}
	if err := w.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	return w
}

func TestBundle_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "maps.bundle")

	maps := map[string][]byte{
		"alpine":  bytes.Repeat([]byte{0x17, 0x2a, 0x00}, 400),
		"islands": {0x01},
		"plains":  bytes.Repeat([]byte{0xee}, 9000),
	}
	writeBundle(t, path, maps, []string{"alpine", "islands", "plains"})

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	if r.NumMaps() != 3 {
		t.Errorf("NumMaps = %d, want 3", r.NumMaps())
	}
	for name, want := range maps {
		got, err := r.Get(name)
		if err != nil {
			t.Fatalf("Get(%q): %v", name, err)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("Get(%q) = %d bytes, want %d and equal content", name, len(got), len(want))
		}
	}

	infos := r.List()
	var names []string
	for _, info := range infos {
		names = append(names, info.Name)
		if info.RawSize != uint32(len(maps[info.Name])) {
			t.Errorf("%s raw size = %d, want %d", info.Name, info.RawSize, len(maps[info.Name]))
		}
	}
	want := []string{"alpine", "islands", "plains"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("List names = %v, want %v", names, want)
	}
}

func TestBundle_Dedup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dedup.bundle")

	payload := bytes.Repeat([]byte{0x42, 0x43}, 5000)
	maps := map[string][]byte{"a": payload, "b": payload, "c": {0x99}}
	w := writeBundle(t, path, maps, []string{"a", "b", "c"})

	if w.DedupHits() != 1 {
		t.Errorf("DedupHits = %d, want 1", w.DedupHits())
	}

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	for _, name := range []string{"a", "b"} {
		got, err := r.Get(name)
		if err != nil {
			t.Fatalf("Get(%q): %v", name, err)
		}
		if !bytes.Equal(got, payload) {
			t.Errorf("Get(%q) differs from original payload", name)
		}
	}
}

func TestBundle_GetMissing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "one.bundle")
	writeBundle(t, path, map[string][]byte{"only": {1, 2, 3}}, []string{"only"})

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	if _, err := r.Get("absent"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestBundle_DuplicateName(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(filepath.Join(dir, "dup.bundle"))
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	defer w.Abort()

	if err := w.Add("m", []byte{1}); err != nil {
		t.Fatalf("first Add: %v", err)
	}
	if err := w.Add("m", []byte{2}); err == nil {
		t.Error("second Add with same name succeeded, want error")
	}
}

func TestBundle_BadMagic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.bundle")
	if err := os.WriteFile(path, bytes.Repeat([]byte{0x5a}, 128), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path); err == nil {
		t.Error("Open succeeded on garbage, want error")
	}
}

func TestHeader_RoundTrip(t *testing.T) {
	h := Header{
		DirOffset:  64,
		DirLength:  123,
		MetaOffset: 187,
		MetaLength: 44,
		DataOffset: 231,
		DataLength: 99999,
		NumMaps:    7,
	}
	got, err := DeserializeHeader(h.Serialize())
	if err != nil {
		t.Fatalf("DeserializeHeader: %v", err)
	}
	if got != h {
		t.Errorf("header = %+v, want %+v", got, h)
	}
}

func TestDirectory_RoundTrip(t *testing.T) {
	entries := []Entry{
		{NameHash: 10, Offset: 0, Length: 100, RawSize: 250},
		{NameHash: 20, Offset: 100, Length: 50, RawSize: 80},   // contiguous
		{NameHash: 30, Offset: 400, Length: 10, RawSize: 10},   // gap
		{NameHash: 31, Offset: 100, Length: 50, RawSize: 80},   // dedup backreference
	}
	data, err := serializeDirectory(entries)
	if err != nil {
		t.Fatalf("serializeDirectory: %v", err)
	}
	got, err := deserializeDirectory(data)
	if err != nil {
		t.Fatalf("deserializeDirectory: %v", err)
	}
	if !reflect.DeepEqual(got, entries) {
		t.Errorf("entries = %+v, want %+v", got, entries)
	}
}
