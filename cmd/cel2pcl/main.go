// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// cel2pcl converts archives of Affymetrix CEL files to PCL files with an
// R script.
//
// It is run as a Troilkatt stage:
//
//  cel2pcl [options] inputDir outputDir metaDir logDir tmpDir rBinary rScript organism
//
// Each archive in inputDir is unpacked into tmpDir and the R script is
// run with the arguments
//
//  --no-save --args tmpDir tmpDir/<name>.tmp tmpDir/<name>.map organism
//
// where name is the archive name up to its first dot. The tables written
// by the script for each platform are converted to <name>.<platform>.pcl
// in outputDir. Tables for single sample or all zero platforms are
// skipped. The script's output and error streams are kept in logDir.
package main

import (
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/kortschak/troilkatt/internal/crawl"
	"github.com/kortschak/troilkatt/internal/sleipnir"
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
	if len(args) != 3 {
		log.Fatalf("invalid arguments: %q: want rBinary rScript organism", s.Args)
	}
	c := sleipnir.CEL{
		R: sleipnir.R{
			Bin:    args[0],
			Script: args[1],
			Args:   args[2:],
		},
		TmpDir: s.TmpDir,
		OutDir: s.OutputDir,
		LogDir: s.LogDir,
	}

	files, err := s.InputFiles()
	if err != nil {
		log.Fatalf("failed to list input files: %v", err)
	}
	log.Println("[converting cel archives]")
	var failed []string
	for _, path := range files {
		if !crawl.IsCompressed(path) {
			log.Debugf("%s ignored: not an archive", path)
			continue
		}
		written, err := c.Convert(path)
		for _, p := range written {
			log.Infof("wrote %s", p)
		}
		if err != nil {
			log.Errorf("%s: %v", path, err)
			failed = append(failed, path)
			continue
		}
		if len(written) == 0 {
			log.Warnf("%s: no PCL files written", path)
		}
	}
	err = crawl.DeleteAll(s.TmpDir)
	if err != nil {
		log.Error(err)
	}
	err = troilkatt.SaveList(s.LogDir, "errors", failed)
	if err != nil {
		log.Fatal(err)
	}
}
