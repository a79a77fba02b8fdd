// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// soft2pcl converts GEO series family SOFT files to PCL files.
//
// It is run as a Troilkatt stage:
//
//  soft2pcl [options] inputDir outputDir metaDir logDir tmpDir [genes]
//
// where genes is an optional file of known gene names, one per line, used
// to predict the gene name column of platforms that do not label it. The
// columns found for each file are written to <logDir>/<file>.args and
// conversion statistics to the log directory.
package main

import (
	"context"
	"fmt"
	"os"
	"runtime"

	log "github.com/sirupsen/logrus"

	"github.com/kortschak/troilkatt/internal/soft"
	"github.com/kortschak/troilkatt/internal/troilkatt"
)

func main() {
	s, lf, err := troilkatt.Start(os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer lf.Close()

	var genes map[string]bool
	if s.Args != "" {
		log.Println("[loading gene names]")
		f, err := os.Open(s.Args)
		if err != nil {
			log.Fatalf("failed to open gene name file: %v", err)
		}
		genes, err = soft.ReadGeneSet(f)
		f.Close()
		if err != nil {
			log.Fatalf("failed to read gene names: %v", err)
		}
		log.Infof("%d gene names read", len(genes))
	}

	files, err := s.InputFiles()
	if err != nil {
		log.Fatalf("failed to list input files: %v", err)
	}

	err = os.MkdirAll(s.OutputDir, 0o755)
	if err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}
	log.Println("[converting soft files]")
	b := soft.Batch{
		Genes:   genes,
		OutDir:  s.OutputDir,
		LogDir:  s.LogDir,
		Workers: runtime.GOMAXPROCS(0),
	}
	sum, err := b.Run(context.Background(), files)
	if err != nil {
		log.Fatalf("conversion failed: %v", err)
	}
	log.Infof("%d of %d files converted: %d failed", sum.Converted, sum.Files, sum.Failed)
}
