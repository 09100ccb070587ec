// Command mapconvert converts tile maps between their JSON text form and the
// compact binary encoding, and optionally renders a preview image.
//
// Usage:
//
//	mapconvert -in map.json -out map.bin
//	mapconvert -in map.bin -out map.json
//	mapconvert -in map.bin -preview map.webp
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/pspoerri/mapcodec"
	"github.com/pspoerri/mapcodec/internal/render"
)

// jsonTileType is the JSON form of a palette entry.
type jsonTileType struct {
	Name          string `json:"name"`
	ColorBase     string `json:"colorBase"`
	ColorVariant  uint8  `json:"colorVariant"`
	Conquerable   bool   `json:"conquerable"`
	Navigable     bool   `json:"navigable"`
	ExpansionTime uint8  `json:"expansionTime"`
	ExpansionCost uint8  `json:"expansionCost"`
}

// jsonMap is the JSON form of a map.
type jsonMap struct {
	Width  uint16         `json:"width"`
	Height uint16         `json:"height"`
	Tiles  []uint16       `json:"tiles"`
	Types  []jsonTileType `json:"types"`
}

func main() {
	var (
		in       string
		out      string
		preview  string
		cellSize int
		verbose  bool
	)
	flag.StringVar(&in, "in", "", "input map (.json or binary)")
	flag.StringVar(&out, "out", "", "output map (.json for text, anything else for binary)")
	flag.StringVar(&preview, "preview", "", "write a preview image (.png or .webp)")
	flag.IntVar(&cellSize, "cell", 4, "preview pixels per map cell")
	flag.BoolVar(&verbose, "v", false, "verbose output")
	flag.Parse()

	if in == "" || (out == "" && preview == "") {
		fmt.Fprintln(os.Stderr, "Usage: mapconvert -in <map> [-out <map>] [-preview <image>]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	m, rawSize, err := readMap(in)
	if err != nil {
		log.Fatalf("reading %s: %v", in, err)
	}
	if verbose {
		log.Printf("read %s: %dx%d, %d tile types", in, m.Width, m.Height, len(m.Types))
	}

	if out != "" {
		n, err := writeMap(out, m)
		if err != nil {
			log.Fatalf("writing %s: %v", out, err)
		}
		if verbose && !isJSON(in) && isJSON(out) {
			log.Printf("expanded %s to %s", humanize.Bytes(uint64(rawSize)), humanize.Bytes(uint64(n)))
		}
		if verbose && isJSON(in) && !isJSON(out) {
			log.Printf("compressed %s to %s", humanize.Bytes(uint64(rawSize)), humanize.Bytes(uint64(n)))
		}
	}

	if preview != "" {
		if err := writePreview(preview, m, cellSize); err != nil {
			log.Fatalf("writing preview %s: %v", preview, err)
		}
		if verbose {
			log.Printf("wrote preview %s", preview)
		}
	}
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// readMap loads a map from either form, detected by file extension.
func readMap(path string) (*mapcodec.RawMap, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, err
	}
	if isJSON(path) {
		var jm jsonMap
		if err := json.Unmarshal(data, &jm); err != nil {
			return nil, 0, fmt.Errorf("parsing JSON: %w", err)
		}
		return fromJSON(&jm), len(data), nil
	}
	m, err := mapcodec.Decode(data)
	if err != nil {
		return nil, 0, err
	}
	return m, len(data), nil
}

// writeMap stores a map in either form, detected by file extension, and
// returns the number of bytes written.
func writeMap(path string, m *mapcodec.RawMap) (int, error) {
	var data []byte
	var err error
	if isJSON(path) {
		data, err = json.MarshalIndent(toJSON(m), "", "  ")
	} else {
		data, err = mapcodec.Encode(m)
	}
	if err != nil {
		return 0, err
	}
	return len(data), os.WriteFile(path, data, 0o644)
}

func writePreview(path string, m *mapcodec.RawMap, cellSize int) error {
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	data, err := render.Preview(m, cellSize, format)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func fromJSON(jm *jsonMap) *mapcodec.RawMap {
	m := &mapcodec.RawMap{
		Width:  jm.Width,
		Height: jm.Height,
		Tiles:  jm.Tiles,
		Types:  make([]mapcodec.TileType, len(jm.Types)),
	}
	if m.Tiles == nil {
		m.Tiles = []uint16{}
	}
	for i, t := range jm.Types {
		m.Types[i] = mapcodec.TileType(t)
	}
	return m
}

func toJSON(m *mapcodec.RawMap) *jsonMap {
	jm := &jsonMap{
		Width:  m.Width,
		Height: m.Height,
		Tiles:  m.Tiles,
		Types:  make([]jsonTileType, len(m.Types)),
	}
	for i, t := range m.Types {
		jm.Types[i] = jsonTileType(t)
	}
	return jm
}
