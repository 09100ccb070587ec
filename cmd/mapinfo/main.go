// Command mapinfo prints the structure of an encoded map file or a map
// bundle: header fields, palette, line statistics, and sizes.
package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/pspoerri/mapcodec"
	"github.com/pspoerri/mapcodec/internal/bundle"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: mapinfo <file.map | file.bundle>\n")
		os.Exit(1)
	}
	path := os.Args[1]

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// A bundle starts with its magic; anything else is treated as a single
	// encoded map.
	if _, err := bundle.DeserializeHeader(data); err == nil {
		if err := printBundle(path); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := printMap(path, data); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printMap(path string, data []byte) error {
	info, err := mapcodec.Inspect(data)
	if err != nil {
		return err
	}

	fmt.Printf("File: %s\n", path)
	fmt.Printf("Encoded size: %s\n", humanize.Bytes(uint64(len(data))))
	fmt.Printf("Codec version: %d\n", info.Version)
	fmt.Printf("Size: %d x %d (%s cells)\n", info.Width, info.Height,
		humanize.Comma(int64(info.Width)*int64(info.Height)))

	direction := "left-to-right"
	if info.TopToBottom {
		direction = "top-to-bottom"
	}
	fmt.Printf("Fill direction: %s\n", direction)

	fmt.Printf("Lines: %d (%s cells, longest %d)\n",
		info.LineCount, humanize.Comma(int64(info.LineCells)), info.LongestLine)
	fmt.Printf("Chunks: %d of %d used\n", info.ChunksUsed, mapcodec.ChunkCount(info.Width, info.Height))

	cells := int(info.Width) * int(info.Height)
	if cells > 0 {
		fmt.Printf("Bits per cell: %.3f\n", float64(len(data)*8)/float64(cells))
	}

	fmt.Printf("Palette (%d entries):\n", len(info.Types))
	for i, t := range info.Types {
		flags := ""
		if t.Conquerable {
			flags += " conquerable"
		}
		if t.Navigable {
			flags += " navigable"
		}
		fmt.Printf("  %3d: %-20s %s/%d expansion %d/%d%s\n",
			i, t.Name, t.ColorBase, t.ColorVariant, t.ExpansionTime, t.ExpansionCost, flags)
	}
	return nil
}

func printBundle(path string) error {
	r, err := bundle.Open(path)
	if err != nil {
		return err
	}
	defer r.Close()

	fmt.Printf("Bundle: %s\n", path)
	fmt.Printf("Maps: %d\n", r.NumMaps())

	var rawTotal, compressedTotal uint64
	for _, info := range r.List() {
		rawTotal += uint64(info.RawSize)
		compressedTotal += uint64(info.CompressedSize)
		fmt.Printf("  %-32s %10s (%s stored)\n",
			info.Name, humanize.Bytes(uint64(info.RawSize)), humanize.Bytes(uint64(info.CompressedSize)))
	}
	if rawTotal > 0 {
		fmt.Printf("Total: %s stored as %s (%.1f%%)\n",
			humanize.Bytes(rawTotal), humanize.Bytes(compressedTotal),
			float64(compressedTotal)*100/float64(rawTotal))
	}
	return nil
}
