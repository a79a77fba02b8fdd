// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// geooverlap finds GEO series and datasets that share samples and
// classifies them by containment and publication date.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/kortschak/troilkatt/internal/geo"
)

func main() {
	var (
		gse2gsm = flag.String("gse2gsm", "gse2gsm.txt", "specify the series to sample map")
		gds2gsm = flag.String("gds2gsm", "gds2gsm.txt", "specify the dataset to sample map")
		gsePath = flag.String("gse", "gseTable.txt", "specify the series table")
		gdsPath = flag.String("gds", "gdsTable.txt", "specify the dataset table")
		out     = flag.String("out", ".", "specify the output directory")
		html    = flag.Bool("html", false, "write HTML reports")
		dbPath  = flag.String("db", "", "specify an SQLite database to store overlaps in")
		help    = flag.Bool("help", false, "print help text")
	)
	flag.Parse()

	if *help {
		flag.Usage()
		fmt.Fprintf(os.Stderr, `
%s reads the series and dataset to sample maps and finds every pair of
series or datasets that share at least one sample. The pairs are written
to overlap.txt with the number of shared samples and the sample counts
of each member.

The overlaps are classified using the dates in the series and dataset
tables into:

 duplicates.txt      pairs with identical samples, newer first
 olderSubsets.txt    pairs where all samples of the first are in the
 newerSubsets.txt    second, by the relative age of the first
 olderPartial.txt    pairs sharing some but not all samples, by the
 newerPartial.txt    relative age of the first
 merges.txt          series or datasets holding exactly the samples of
 splits.txt          others, by whether they are the newest, the oldest
 neither.txt         or neither

With -html, an HTML report linking to the GEO accession pages is written
for each classification.

`, filepath.Base(os.Args[0]))
		os.Exit(0)
	}
	err := os.MkdirAll(*out, 0o755)
	if err != nil {
		log.Fatal(err)
	}

	log.Println("[loading maps]")
	gid2gsm := make(geo.Map)
	for _, path := range []string{*gse2gsm, *gds2gsm} {
		read(path, func(r io.Reader) error {
			m, err := geo.ReadMap(r)
			for k, v := range m {
				gid2gsm[k] = v
			}
			return err
		})
	}

	log.Println("[finding overlaps]")
	overlaps := geo.Overlaps(gid2gsm)
	create(filepath.Join(*out, "overlap.txt"), func(w io.Writer) error {
		return geo.WriteTable(w, overlaps)
	})
	log.Infof("%d overlapping pairs", len(overlaps))

	log.Println("[loading dates]")
	dates := make(map[string]time.Time)
	for _, path := range []string{*gsePath, *gdsPath} {
		read(path, func(r io.Reader) error {
			d, err := geo.ReadDates(r)
			for k, v := range d {
				dates[k] = v
			}
			return err
		})
	}

	log.Println("[classifying overlaps]")
	c := geo.Classify(overlaps, dates)
	pairs := []struct {
		name   string
		header string
		title  string
		pairs  []geo.Pair
		shared bool
	}{
		{"duplicates", geo.DuplicatesHeader, "Duplicates", c.Duplicates, false},
		{"olderSubsets", geo.OlderSubsetsHeader, "Older complete subsets", c.OlderSubsets, true},
		{"newerSubsets", geo.NewerSubsetsHeader, "Newer complete subsets", c.NewerSubsets, true},
		{"olderPartial", geo.OlderPartialHeader, "Older partial overlaps", c.OlderPartial, true},
		{"newerPartial", geo.NewerPartialHeader, "Newer partial overlaps", c.NewerPartial, true},
	}
	for _, p := range pairs {
		create(filepath.Join(*out, p.name+".txt"), func(w io.Writer) error {
			return geo.WritePairs(w, p.header, p.pairs, p.shared)
		})
		if !*html {
			continue
		}
		create(filepath.Join(*out, p.name+".html"), func(w io.Writer) error {
			if p.name == "duplicates" {
				return geo.WriteDuplicatesHTML(w, p.title, p.pairs)
			}
			return geo.WriteSubsetsHTML(w, p.title, "Shared samples", p.pairs)
		})
	}
	supersets := []struct {
		name   string
		header string
		title  string
		sets   []geo.Superset
	}{
		{"merges", geo.MergesHeader, "Merges", c.Merges},
		{"splits", geo.SplitsHeader, "Splits", c.Splits},
		{"neither", geo.NeitherHeader, "Supersets", c.Neither},
	}
	for _, s := range supersets {
		create(filepath.Join(*out, s.name+".txt"), func(w io.Writer) error {
			return geo.WriteSupersets(w, s.header, s.sets)
		})
		if *html {
			create(filepath.Join(*out, s.name+".html"), func(w io.Writer) error {
				return geo.WriteSupersetsHTML(w, s.title, "Subsets", s.sets)
			})
		}
	}

	if *dbPath != "" {
		log.Println("[storing overlaps]")
		ctx := context.Background()
		db, err := geo.OpenDB(ctx, *dbPath)
		if err != nil {
			log.Fatal(err)
		}
		err = db.Store(ctx, nil, nil, nil, overlaps)
		if err != nil {
			log.Fatalf("failed to store overlaps: %v", err)
		}
		err = db.Close()
		if err != nil {
			log.Fatal(err)
		}
	}
}

func read(path string, fn func(io.Reader) error) {
	f, err := os.Open(path)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()
	err = fn(f)
	if err != nil {
		log.Fatalf("failed to read %s: %v", path, err)
	}
}

func create(path string, fn func(io.Writer) error) {
	f, err := os.Create(path)
	if err != nil {
		log.Fatal(err)
	}
	err = fn(f)
	if err != nil {
		log.Fatalf("failed to write %s: %v", path, err)
	}
	err = f.Close()
	if err != nil {
		log.Fatal(err)
	}
}
