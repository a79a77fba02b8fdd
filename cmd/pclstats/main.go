// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// pclstats prints the dimensions of the PCL files in a directory.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/kortschak/troilkatt/internal/pcl"
	"github.com/kortschak/troilkatt/internal/troilkatt"
)

func main() {
	help := flag.Bool("help", false, "print help text")
	flag.Parse()

	if *help {
		flag.Usage()
		fmt.Fprintf(os.Stderr, `
%s prints the number of sample columns and gene rows of each PCL file
in the directory given as its argument, followed by the totals over all
files. The first three columns of a PCL file are taken to be the gene
identifier, name and weight and the first two lines to be the header and
sample weights.

`, filepath.Base(os.Args[0]))
		os.Exit(0)
	}
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	files, err := troilkatt.AllFiles(flag.Arg(0), true)
	if err != nil {
		log.Fatal(err)
	}
	var totalRows, totalCols int
	for _, path := range files {
		if filepath.Ext(path) != ".pcl" {
			continue
		}
		cols, rows, err := pcl.Dims(path)
		if err != nil {
			log.Fatal(err)
		}
		if cols == 0 && rows == 0 {
			continue
		}
		totalRows += rows
		totalCols += cols
		fmt.Printf("%s: %d cols and %d rows\n", filepath.Base(path), cols, rows)
	}
	fmt.Printf("Total rows: %d\n", totalRows)
	fmt.Printf("Total columns: %d\n", totalCols)
}
