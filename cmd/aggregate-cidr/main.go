// SPDX-License-Identifier: MIT

// Command aggregate-cidr reads a list of CIDR prefixes and prints their
// minimal covering set: fewest prefixes, no overlaps, no two prefixes that
// could be replaced by their aligned parent.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"netcore/internal/store"
	"netcore/pkg/aggregator"
	"netcore/pkg/ipmath"
)

const version = "0.1.0"

type config struct {
	inputPath   string
	cachePath   string
	showVersion bool
}

func parseFlags(args []string) *config {
	fs := flag.NewFlagSet("aggregate-cidr", flag.ExitOnError)

	cfg := &config{}
	fs.StringVar(&cfg.inputPath, "in", "-", "Input file of CIDR prefixes, one per line (- for stdin)")
	fs.StringVar(&cfg.cachePath, "cache", "", "Optional on-disk cache path (skips recomputation for identical input)")
	fs.BoolVar(&cfg.showVersion, "version", false, "Show version")
	fs.Parse(args)

	if cfg.showVersion {
		fmt.Printf("aggregate-cidr version %s\n", version)
		os.Exit(0)
	}
	return cfg
}

func readPrefixes(path string) ([]ipmath.Prefix, error) {
	var r *bufio.Scanner
	if path == "-" {
		r = bufio.NewScanner(os.Stdin)
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()
		r = bufio.NewScanner(f)
	}

	var prefixes []ipmath.Prefix
	for r.Scan() {
		line := strings.TrimSpace(r.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		p, err := ipmath.ParsePrefix(line)
		if err != nil {
			return nil, fmt.Errorf("line %q: %w", line, err)
		}
		prefixes = append(prefixes, p)
	}
	return prefixes, r.Err()
}

func cacheKey(lines []string) string {
	var b strings.Builder
	b.WriteString("aggregate-cidr:v1:")
	for _, l := range lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	return b.String()
}

func main() {
	cfg := parseFlags(os.Args[1:])

	prefixes, err := readPrefixes(cfg.inputPath)
	if err != nil {
		log.Fatalf("reading input: %v", err)
	}

	var cached []string
	var cacheHit bool
	var cacheStore *store.Store
	var key string

	if cfg.cachePath != "" {
		cacheStore, err = store.Open(cfg.cachePath)
		if err != nil {
			log.Fatalf("opening cache: %v", err)
		}
		defer cacheStore.Close()

		lines := make([]string, len(prefixes))
		for i, p := range prefixes {
			lines[i] = p.String()
		}
		key = cacheKey(lines)

		cacheHit, err = cacheStore.Get(key, &cached)
		if err != nil {
			log.Fatalf("reading cache: %v", err)
		}
	}

	var out []string
	if cacheHit {
		out = cached
		log.Printf("cache hit: %d input prefixes", len(prefixes))
	} else {
		result := aggregator.Aggregate(prefixes)
		out = make([]string, len(result))
		for i, p := range result {
			out[i] = p.String()
		}
		if cacheStore != nil {
			if err := cacheStore.Put(key, out); err != nil {
				log.Printf("warning: failed to populate cache: %v", err)
			}
		}
	}

	for _, line := range out {
		fmt.Println(line)
	}
	log.Printf("aggregated %d prefixes into %d", len(prefixes), len(out))
}
