// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// info2pubmed extracts file to PubMed ID and file name lists from a SPELL
// dataset info table.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/kortschak/troilkatt/internal/pcl"
)

func main() {
	var (
		in      = flag.String("info", "", "specify the info table (required)")
		pubmed  = flag.String("pubmed", "", "specify the PubMed list output (required)")
		listOut = flag.String("files", "", "specify the file list output (required)")
		help    = flag.Bool("help", false, "print help text")
	)
	flag.Parse()

	if *help {
		flag.Usage()
		fmt.Fprintf(os.Stderr, `
%s reads a SPELL dataset info table and writes a list of file name and
PubMed ID pairs, one tab separated pair per line, and a list of the file
names in the table, one per line.

Lines starting with # are ignored and rows that do not have 24 columns
are reported and skipped.

`, filepath.Base(os.Args[0]))
		os.Exit(0)
	}
	if *in == "" || *pubmed == "" || *listOut == "" {
		flag.Usage()
		os.Exit(2)
	}

	f, err := os.Open(*in)
	if err != nil {
		log.Fatal(err)
	}
	records, bad, err := pcl.ReadInfo(f)
	f.Close()
	if err != nil {
		log.Fatalf("failed to read info table: %v", err)
	}
	for _, err := range bad {
		log.Warn(err)
	}

	for _, o := range []struct {
		path  string
		write func(io.Writer, []*pcl.InfoRecord) error
	}{
		{*pubmed, pcl.WritePubMedList},
		{*listOut, pcl.WriteFileList},
	} {
		f, err := os.Create(o.path)
		if err != nil {
			log.Fatal(err)
		}
		err = o.write(f, records)
		if err != nil {
			log.Fatal(err)
		}
		err = f.Close()
		if err != nil {
			log.Fatal(err)
		}
	}
	log.Infof("%d records written", len(records))
}
