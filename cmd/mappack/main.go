// Command mappack packs encoded maps into a bundle, lists a bundle's
// contents, and extracts maps from it.
//
// Usage:
//
//	mappack -out maps.bundle a.map b.map ...
//	mappack -list maps.bundle
//	mappack -extract alpine -bundle maps.bundle -out alpine.map
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/pspoerri/mapcodec"
	"github.com/pspoerri/mapcodec/internal/bundle"
)

func main() {
	var (
		out        string
		list       string
		extract    string
		bundlePath string
		verify     bool
	)
	flag.StringVar(&out, "out", "", "output bundle (pack mode) or output map file (extract mode)")
	flag.StringVar(&list, "list", "", "list the contents of a bundle")
	flag.StringVar(&extract, "extract", "", "name of the map to extract")
	flag.StringVar(&bundlePath, "bundle", "", "bundle to extract from")
	flag.BoolVar(&verify, "verify", false, "decode each map before packing to catch corrupt inputs")
	flag.Parse()

	switch {
	case list != "":
		if err := listBundle(list); err != nil {
			log.Fatalf("listing %s: %v", list, err)
		}
	case extract != "":
		if bundlePath == "" || out == "" {
			log.Fatal("extract mode needs -bundle and -out")
		}
		if err := extractMap(bundlePath, extract, out); err != nil {
			log.Fatalf("extracting %q: %v", extract, err)
		}
	case out != "":
		if flag.NArg() == 0 {
			log.Fatal("pack mode needs at least one map file")
		}
		if err := pack(out, flag.Args(), verify); err != nil {
			log.Fatalf("packing %s: %v", out, err)
		}
	default:
		fmt.Fprintln(os.Stderr, "Usage: mappack -out <bundle> <map files...> | -list <bundle> | -extract <name> -bundle <bundle> -out <file>")
		flag.PrintDefaults()
		os.Exit(1)
	}
}

func pack(out string, files []string, verify bool) error {
	w, err := bundle.NewWriter(out)
	if err != nil {
		return err
	}

	pb := newProgressBar("packing", int64(len(files)))
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			w.Abort()
			return err
		}
		if verify {
			if _, err := mapcodec.Decode(data); err != nil {
				w.Abort()
				return fmt.Errorf("%s does not decode: %w", f, err)
			}
		}
		name := strings.TrimSuffix(filepath.Base(f), filepath.Ext(f))
		if err := w.Add(name, data); err != nil {
			w.Abort()
			return err
		}
		pb.Increment()
	}
	pb.Finish()

	if err := w.Finalize(); err != nil {
		return err
	}

	st, err := os.Stat(out)
	if err != nil {
		return err
	}
	log.Printf("packed %d maps, %s raw, %s bundled (%d deduplicated)",
		len(files), humanize.Bytes(w.RawTotal()), humanize.Bytes(uint64(st.Size())), w.DedupHits())
	return nil
}

func listBundle(path string) error {
	r, err := bundle.Open(path)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, info := range r.List() {
		fmt.Printf("%-32s %10s\n", info.Name, humanize.Bytes(uint64(info.RawSize)))
	}
	return nil
}

func extractMap(bundlePath, name, out string) error {
	r, err := bundle.Open(bundlePath)
	if err != nil {
		return err
	}
	defer r.Close()

	data, err := r.Get(name)
	if err != nil {
		return err
	}
	return os.WriteFile(out, data, 0o644)
}
