// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// metacrawl downloads and parses meta files such as gene name lists.
//
// It is run as a Troilkatt stage:
//
//  metacrawl [options] inputDir outputDir metaDir logDir tmpDir [manifest]
//
// where manifest is a YAML file listing the meta files to retrieve:
//
//  files:
//    - source: http://example.org/genes.tab
//      output: genes.tab
//      dir: TROILKATT.GLOBALMETA_DIR
//      parser: registry
//      description: gene registry
//
// Parsers are default (copy unchanged), registry (yeast gene registry)
// and features (SGD features). If no manifest is given the yeast gene
// name files are retrieved. Each parsed file is written to its directory
// and a copy is saved in outputDir.
package main

import (
	"context"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/kortschak/troilkatt/internal/crawl"
	"github.com/kortschak/troilkatt/internal/troilkatt"
)

func main() {
	s, lf, err := troilkatt.Start(os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer lf.Close()

	m := &crawl.DefaultManifest
	if s.Args != "" {
		f, err := os.Open(s.Args)
		if err != nil {
			log.Fatalf("failed to open manifest: %v", err)
		}
		m, err = crawl.ReadManifest(f)
		f.Close()
		if err != nil {
			log.Fatalf("failed to read manifest: %v", err)
		}
	}

	email, err := s.Properties().Get("troilkatt.admin.email")
	if err != nil {
		log.Warn(err)
		email = "anonymous@"
	}
	err = os.MkdirAll(s.OutputDir, 0o755)
	if err != nil {
		log.Fatal(err)
	}

	log.Println("[crawling meta files]")
	c := crawl.MetaCrawler{
		Fetcher: crawl.Opener{Email: email},
		Resolve: s.SetVariables,
		SaveDir: s.OutputDir,
	}
	written, err := c.Run(context.Background(), m)
	for _, p := range written {
		log.Infof("wrote %s", p)
	}
	if err != nil {
		log.Fatal(err)
	}
	err = troilkatt.SaveList(s.LogDir, "metafiles", written)
	if err != nil {
		log.Fatal(err)
	}
}
