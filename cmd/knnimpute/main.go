// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// knnimpute imputes missing values in PCL files with the Sleipnir
// KNNImputer.
//
// It is run as a Troilkatt stage:
//
//  knnimpute [options] inputDir outputDir metaDir logDir tmpDir -sleipnir DIR [-k N] [-m FRAC] [-tasks N]
//
// Genes with more than the fraction m of their values missing are not
// imputed. The header and sample weight lines of each output file are
// restored from the input file if the imputer has altered them.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

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

	fs := flag.NewFlagSet(s.Name, flag.ContinueOnError)
	var (
		dir     = fs.String("sleipnir", "", "specify the Sleipnir binary directory")
		k       = fs.Int("k", 10, "specify the number of neighbours")
		missing = fs.Float64("m", 0.7, "specify the maximum fraction of missing values")
		tasks   = fs.Int("tasks", 1, "specify the number of concurrent tasks")
	)
	err = fs.Parse(strings.Fields(s.Args))
	if err != nil {
		log.Fatalf("invalid stage arguments: %v", err)
	}
	if *dir == "" {
		log.Fatal("missing sleipnir argument")
	}

	files, err := s.InputFiles()
	if err != nil {
		log.Fatalf("failed to list input files: %v", err)
	}
	for _, d := range []string{s.OutputDir, s.LogDir} {
		err = os.MkdirAll(d, 0o755)
		if err != nil {
			log.Fatal(err)
		}
	}
	var jobs []sleipnir.Job
	for _, f := range files {
		if filepath.Ext(f) != ".pcl" {
			continue
		}
		jobs = append(jobs, sleipnir.Job{In: f, Out: filepath.Join(s.OutputDir, filepath.Base(f))})
	}

	log.Println("[imputing missing values]")
	tools := sleipnir.Tools{Dir: *dir, Tasks: *tasks, Log: filepath.Join(s.LogDir, s.Name+".scipipe.log")}
	b, err := tools.Impute(s.Name, jobs, *k, *missing)
	if err != nil {
		log.Fatal(err)
	}
	failed, err := b.Run()
	if err != nil {
		log.Fatal(err)
	}

	log.Println("[checking headers]")
	var errs []string
	for _, j := range jobs {
		if failed[j.In] != nil {
			errs = append(errs, j.In)
			continue
		}
		err = sleipnir.FixHeaders(j.In, j.Out)
		if err != nil {
			log.Errorf("%s: %v", j.Out, err)
			errs = append(errs, j.In)
		}
	}
	err = troilkatt.SaveList(s.LogDir, "errors", errs)
	if err != nil {
		log.Fatal(err)
	}
}
