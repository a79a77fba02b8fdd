// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// pclinfo writes a SPELL dataset info table for a directory of PCL files.
//
// It is run as a Troilkatt stage:
//
//  pclinfo [options] inputDir outputDir metaDir logDir tmpDir softDir
//
// The header fields of each record are taken from the GDS SOFT file in
// softDir with the same accession as the PCL file, and the value
// statistics from the PCL file itself. The table is written to
// <outputDir>/datasets.info.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/kortschak/troilkatt/internal/pcl"
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
	if s.Args == "" {
		log.Fatal("missing SOFT directory argument")
	}

	headers, err := softFiles(s.Args)
	if err != nil {
		log.Fatalf("failed to list SOFT files: %v", err)
	}
	files, err := s.InputFiles()
	if err != nil {
		log.Fatalf("failed to list input files: %v", err)
	}

	log.Println("[collecting dataset information]")
	var records []*pcl.InfoRecord
	for _, path := range files {
		if filepath.Ext(path) != ".pcl" {
			continue
		}
		rec, err := info(path, headers)
		if err != nil {
			log.Errorf("%s: %v", path, err)
			continue
		}
		records = append(records, rec)
	}

	err = os.MkdirAll(s.OutputDir, 0o755)
	if err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}
	out := filepath.Join(s.OutputDir, "datasets.info")
	f, err := os.Create(out)
	if err != nil {
		log.Fatalf("failed to create info table: %v", err)
	}
	err = pcl.WriteInfo(f, records)
	if err != nil {
		log.Fatalf("failed to write info table: %v", err)
	}
	err = f.Close()
	if err != nil {
		log.Fatalf("failed to close info table: %v", err)
	}
	log.Infof("%d records written to %s", len(records), out)
}

// softFiles returns the SOFT files in dir keyed by accession.
func softFiles(dir string) (map[string]string, error) {
	names, err := troilkatt.AllFiles(dir, true)
	if err != nil {
		return nil, err
	}
	files := make(map[string]string)
	for _, n := range names {
		if soft.IsSOFT(n) {
			files[soft.AccessionID(n)] = n
		}
	}
	return files, nil
}

// info returns the info record for the PCL file at path.
func info(path string, headers map[string]string) (*pcl.InfoRecord, error) {
	id := soft.AccessionID(path)
	rec := &pcl.InfoRecord{DatasetID: id}
	if h, ok := headers[id]; ok {
		r, err := soft.Open(h)
		if err != nil {
			return nil, err
		}
		rec, err = soft.DatasetHeader(r)
		r.Close()
		if err != nil {
			return nil, err
		}
	} else {
		log.Warnf("no SOFT file for %s", id)
	}
	rec.File = filepath.Base(path)

	m, err := pcl.ReadFile(path)
	if err != nil {
		return nil, err
	}
	rec.SetStats(m.Stats())
	return rec, nil
}
