// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// pclfilter removes genes that are present in few conditions from PCL
// files.
//
// It is run as a Troilkatt stage:
//
//  pclfilter [options] inputDir outputDir metaDir logDir tmpDir "[-zeros] [fraction]"
//
// Genes with fewer than ceil(n*fraction) present values of the n samples
// are removed. The default fraction is 0.5. With -zeros, zero values are
// written as missing in datasets where zeros appear to represent missing
// values; otherwise values are kept as they are.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/kortschak/troilkatt/internal/pcl"
	"github.com/kortschak/troilkatt/internal/troilkatt"
)

func main() {
	s, lf, err := troilkatt.Start(os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer lf.Close()

	fs := flag.NewFlagSet(s.Name, flag.ContinueOnError)
	zeros := fs.Bool("zeros", false, "treat zeros as missing values when the value statistics indicate so")
	err = fs.Parse(strings.Fields(s.Args))
	if err != nil {
		log.Fatalf("invalid stage arguments: %v", err)
	}
	frac := 0.5
	if fs.NArg() != 0 {
		frac, err = strconv.ParseFloat(fs.Arg(0), 64)
		if err != nil || frac < 0 || frac > 1 {
			log.Fatalf("invalid fraction: %q", fs.Arg(0))
		}
	}

	files, err := s.InputFiles()
	if err != nil {
		log.Fatalf("failed to list input files: %v", err)
	}
	err = os.MkdirAll(s.OutputDir, 0o755)
	if err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	log.Println("[filtering genes]")
	for _, path := range files {
		m, err := pcl.ReadFile(path)
		if err != nil {
			log.Errorf("%s: %v", path, err)
			continue
		}
		n := filter(m, frac, *zeros)
		log.Infof("%s: %d genes removed", filepath.Base(path), n)
		err = m.WriteFile(filepath.Join(s.OutputDir, filepath.Base(path)), -1)
		if err != nil {
			log.Errorf("%s: %v", path, err)
		}
	}
}

// filter removes the genes of m with too few present values and returns
// the number removed. When zeros is true and the statistics of m indicate
// that zeros are missing values, zeros are converted to missing first.
func filter(m *pcl.Matrix, frac float64, zeros bool) int {
	if zeros && m.Stats().Infer().ZerosAreMissing {
		m.ZerosToMissing()
	}
	return m.FilterPresent(frac)
}
