// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// illumina2pcl converts Illumina series matrix tables to PCL files,
// labelling each sample column with its best matching GSM.
//
// It is run as a Troilkatt stage:
//
//  illumina2pcl [options] inputDir outputDir metaDir logDir tmpDir gsmDir platform
//
// The GSM list of each series is read from <metaDir>/<platform>/<gse>,
// and the GSM tables from <gsmDir>/<platform>/<gsm>-tbl-1.txt. Samples
// are matched to GSMs by the Spearman correlation of the most variable
// probes. Output files are named <gse>_<platform>.pcl with a numeric
// suffix when the name is already taken.
package main

import (
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/kortschak/troilkatt/internal/illumina"
	"github.com/kortschak/troilkatt/internal/troilkatt"
)

func main() {
	s, lf, err := troilkatt.Start(os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer lf.Close()

	args := strings.Fields(s.Args)
	if len(args) != 2 {
		log.Fatalf("invalid arguments: %q: want gsmDir platform", s.Args)
	}
	c := illumina.Converter{
		MetaDir:  s.MetaDir,
		GSMDir:   args[0],
		OutDir:   s.OutputDir,
		Platform: args[1],
	}

	files, err := s.InputFiles()
	if err != nil {
		log.Fatalf("failed to list input files: %v", err)
	}
	log.Println("[converting illumina tables]")
	var failed []string
	for _, path := range files {
		out, err := c.Convert(path)
		if err != nil {
			log.Errorf("%s: %v", path, err)
			failed = append(failed, path)
			continue
		}
		log.Infof("wrote %s", out)
	}
	err = troilkatt.SaveList(s.LogDir, "errors", failed)
	if err != nil {
		log.Fatal(err)
	}
}
