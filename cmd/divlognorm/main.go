// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// divlognorm normalizes PCL files for SPELL.
//
// It is run as a Troilkatt stage:
//
//  divlognorm [options] inputDir outputDir metaDir logDir tmpDir [mode]
//
// where mode is one of:
//
//  divlog  divide each gene by its median, log2 transform and z-score
//          normalize (the default)
//  log     log2 transform only datasets that do not appear to be logged,
//          then z-score normalize
//  norm    z-score normalize only
//
// Gene identifiers and names are upper cased, gene weights are written
// as 1 and values are written with three decimal places.
package main

import (
	"fmt"
	"os"
	"path/filepath"

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

	mode := s.Args
	if mode == "" {
		mode = "divlog"
	}
	var transform func(*pcl.Matrix)
	switch mode {
	case "divlog":
		transform = func(m *pcl.Matrix) {
			m.DivideByMedian()
			m.Log2()
			m.Normalize()
		}
	case "log":
		transform = func(m *pcl.Matrix) {
			if !m.Stats().Infer().Logged {
				m.Log2()
			}
			m.Normalize()
		}
	case "norm":
		transform = (*pcl.Matrix).Normalize
	default:
		log.Fatalf("unknown mode: %q", mode)
	}

	files, err := s.InputFiles()
	if err != nil {
		log.Fatalf("failed to list input files: %v", err)
	}
	err = os.MkdirAll(s.OutputDir, 0o755)
	if err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	log.Printf("[normalizing pcl files: %s]", mode)
	var failed int
	for _, path := range files {
		m, err := pcl.ReadFile(path)
		if err != nil {
			log.Errorf("%s: %v", path, err)
			failed++
			continue
		}
		transform(m)
		m.UpperCase()
		m.ResetWeights()
		err = m.WriteFile(filepath.Join(s.OutputDir, filepath.Base(path)), 3)
		if err != nil {
			log.Errorf("%s: %v", path, err)
			failed++
		}
	}
	log.Infof("%d files normalized: %d failed", len(files)-failed, failed)
}
