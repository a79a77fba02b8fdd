// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// geomaps creates the GEO accession maps from the series, dataset and
// platform tables.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	log "github.com/sirupsen/logrus"

	"github.com/kortschak/troilkatt/internal/geo"
)

func main() {
	var (
		gsePath = flag.String("gse", "gseTable.txt", "specify the series table")
		gdsPath = flag.String("gds", "gdsTable.txt", "specify the dataset table")
		gplPath = flag.String("gpl", "gplTable.txt", "specify the platform table")
		out     = flag.String("out", ".", "specify the map output directory")
		dot     = flag.String("dot", "", "specify a DOT output file for the accession graph")
		html    = flag.Bool("html", false, "write HTML versions of the maps")
		help    = flag.Bool("help", false, "print help text")
	)
	flag.Parse()

	if *help {
		flag.Usage()
		fmt.Fprintf(os.Stderr, `
%s reads the GEO series, dataset and platform tables and writes the
accession maps derived from them to the output directory, one file per
map named <map>.txt. Each line of a map holds a key followed by its tab
separated values.

The maps are gds2gse, gse2gds, gds2gsm, gsm2gds, org2gds, gpl2gds,
gse2gsm, gsm2gse, org2gse, gpl2gse, gds2gplTitle and gse2gplTitle.
Accession identifiers are upper cased.

If a DOT file is given, the accession graph linking series and datasets
to their samples, platforms and organisms is written to it.

`, filepath.Base(os.Args[0]))
		os.Exit(0)
	}
	err := os.MkdirAll(*out, 0o755)
	if err != nil {
		log.Fatal(err)
	}

	log.Println("[loading tables]")
	var (
		series    []*geo.Series
		datasets  []*geo.Dataset
		platforms []*geo.Platform
	)
	read(*gsePath, func(r io.Reader) (err error) { series, err = geo.ReadSeries(r); return err })
	read(*gdsPath, func(r io.Reader) (err error) { datasets, err = geo.ReadDatasets(r); return err })
	read(*gplPath, func(r io.Reader) (err error) { platforms, err = geo.ReadPlatforms(r); return err })

	log.Println("[creating maps]")
	maps, err := geo.BuildMaps(datasets, series, platforms)
	if err != nil {
		log.Fatalf("failed to build maps: %v", err)
	}
	named := maps.Named()
	names := make([]string, 0, len(named))
	for n := range named {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		create(filepath.Join(*out, n+".txt"), func(w io.Writer) error {
			return geo.WriteMap(w, named[n])
		})
		if *html {
			create(filepath.Join(*out, n+".html"), func(w io.Writer) error {
				return geo.WriteMappingHTML(w, n, n, named[n])
			})
		}
	}

	if *dot != "" {
		log.Println("[writing accession graph]")
		g := geo.NewGraph(datasets, series, platforms)
		b, err := g.MarshalDOT("geo")
		if err != nil {
			log.Fatalf("failed to marshal graph: %v", err)
		}
		err = os.WriteFile(*dot, b, 0o644)
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
