// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// pcl2qdab converts PCL files to quantized Sleipnir DAB files.
//
// It is run as a Troilkatt stage:
//
//  pcl2qdab [options] inputDir outputDir metaDir logDir tmpDir -sleipnir DIR -quant FILE [-tasks N]
//
// Gene pair distances are computed for each PCL file with the Sleipnir
// Distancer into tmpDir and quantized with Dat2Dab using the bin edges in
// the quant file. The QDAB files are written to outputDir and the
// intermediate DAT files are removed.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
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
		dir   = fs.String("sleipnir", "", "specify the Sleipnir binary directory")
		quant = fs.String("quant", "", "specify the quant file")
		tasks = fs.Int("tasks", 1, "specify the number of concurrent tasks")
	)
	err = fs.Parse(strings.Fields(s.Args))
	if err != nil {
		log.Fatalf("invalid stage arguments: %v", err)
	}
	if *dir == "" || *quant == "" {
		log.Fatal("missing sleipnir or quant argument")
	}

	files, err := s.InputFiles()
	if err != nil {
		log.Fatalf("failed to list input files: %v", err)
	}
	var pcls []string
	for _, f := range files {
		if filepath.Ext(f) == ".pcl" {
			pcls = append(pcls, f)
		}
	}
	for _, d := range []string{s.TmpDir, s.OutputDir, s.LogDir} {
		err = os.MkdirAll(d, 0o755)
		if err != nil {
			log.Fatal(err)
		}
	}

	log.Println("[converting pcl files to qdab]")
	jobs := sleipnir.QDABJobs(pcls, s.TmpDir, s.OutputDir)
	tools := sleipnir.Tools{Dir: *dir, Tasks: *tasks, Log: filepath.Join(s.LogDir, s.Name+".scipipe.log")}
	b, err := tools.QDAB(s.Name, jobs, *quant)
	if err != nil {
		log.Fatal(err)
	}
	failed, err := b.Run()
	if err != nil {
		log.Fatal(err)
	}
	err = troilkatt.SaveList(s.LogDir, "errors", failedInputs(failed))
	if err != nil {
		log.Fatal(err)
	}
}

func failedInputs(failed map[string]error) []string {
	paths := make([]string, 0, len(failed))
	for p := range failed {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
