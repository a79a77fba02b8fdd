// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// geotables creates the GEO series, dataset and platform tables from
// directories of SOFT meta files.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/kortschak/troilkatt/internal/geo"
	"github.com/kortschak/troilkatt/internal/soft"
)

// Table file names.
const (
	seriesTable   = "gseTable.txt"
	datasetTable  = "gdsTable.txt"
	platformTable = "gplTable.txt"
)

func main() {
	var (
		gseDir = flag.String("gse", "", "specify the directory of series family meta files")
		gdsDir = flag.String("gds", "", "specify the directory of dataset meta files")
		gplDir = flag.String("gpl", "", "specify the directory of platform meta files")
		out    = flag.String("out", ".", "specify the table output directory")
		dbPath = flag.String("db", "", "specify an SQLite database to store the tables in")
		help   = flag.Bool("help", false, "print help text")
	)
	flag.Parse()

	if *help {
		flag.Usage()
		fmt.Fprintf(os.Stderr, `
%s reads directories of GEO SOFT meta files and writes tab-delimited
tables describing the series (%s), datasets (%s) and
platforms (%s) to the output directory. At least one of the
meta file directories must be given.

Series tables hold the series accession, submission date, organisms,
platforms, samples and platform titles. Dataset tables hold the dataset
accession, date, organism, platform, sample and gene counts, referenced
series and samples. Platform tables hold the platform accession, date,
organism and title.

If a database is given, the tables are also stored in it.

`, filepath.Base(os.Args[0]), seriesTable, datasetTable, platformTable)
		os.Exit(0)
	}
	if *gseDir == "" && *gdsDir == "" && *gplDir == "" {
		flag.Usage()
		os.Exit(2)
	}
	err := os.MkdirAll(*out, 0o755)
	if err != nil {
		log.Fatal(err)
	}

	var (
		series    []*geo.Series
		datasets  []*geo.Dataset
		platforms []*geo.Platform
	)
	if *gseDir != "" {
		log.Println("[creating series table]")
		series, err = soft.SeriesTable(*gseDir)
		if err != nil {
			log.Fatalf("failed to create series table: %v", err)
		}
		write(filepath.Join(*out, seriesTable), series)
	}
	if *gdsDir != "" {
		log.Println("[creating dataset table]")
		datasets, err = soft.DatasetTable(*gdsDir)
		if err != nil {
			log.Fatalf("failed to create dataset table: %v", err)
		}
		write(filepath.Join(*out, datasetTable), datasets)
	}
	if *gplDir != "" {
		log.Println("[creating platform table]")
		platforms, err = soft.PlatformTable(*gplDir)
		if err != nil {
			log.Fatalf("failed to create platform table: %v", err)
		}
		write(filepath.Join(*out, platformTable), platforms)
	}

	if *dbPath != "" {
		log.Println("[storing tables]")
		ctx := context.Background()
		db, err := geo.OpenDB(ctx, *dbPath)
		if err != nil {
			log.Fatal(err)
		}
		err = db.Store(ctx, datasets, series, platforms, nil)
		if err != nil {
			log.Fatalf("failed to store tables: %v", err)
		}
		err = db.Close()
		if err != nil {
			log.Fatal(err)
		}
	}
}

func write(path string, table interface{}) {
	f, err := os.Create(path)
	if err != nil {
		log.Fatal(err)
	}
	err = geo.WriteTable(f, table)
	if err != nil {
		log.Fatalf("failed to write %s: %v", path, err)
	}
	err = f.Close()
	if err != nil {
		log.Fatal(err)
	}
}
