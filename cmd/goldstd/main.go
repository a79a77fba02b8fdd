// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// goldstd builds Gene Ontology based functional gold standards.
//
// It is run as a Troilkatt stage:
//
//  goldstd [options] inputDir outputDir metaDir logDir tmpDir [-config FILE] [organism...]
//
// where the configuration is a YAML file giving the sources for each
// organism:
//
//  organisms:
//    human:
//      ontology: http://example.org/gene_ontology_ext.obo
//      annotations: http://example.org/gene_association.goa_human.gz
//      slim: TROILKATT.GLOBALMETA_DIR/GO_slim_sleipnir.txt
//      negative: TROILKATT.GLOBALMETA_DIR/go_terms_negative.txt
//      part_of: false
//
// If no configuration is given the human gold standard sources are used.
// If no organisms are named, all configured organisms are built. Remote
// sources are downloaded to tmpDir and the gene sets, pair answers and
// quant files are written to outputDir.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/kortschak/troilkatt/internal/crawl"
	"github.com/kortschak/troilkatt/internal/goldstd"
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
	path := fs.String("config", "", "specify the gold standard configuration `FILE`")
	err = fs.Parse(strings.Fields(s.Args))
	if err != nil {
		log.Fatalf("invalid stage arguments: %v", err)
	}

	cfg := &goldstd.DefaultConfig
	if *path != "" {
		f, err := os.Open(*path)
		if err != nil {
			log.Fatal(err)
		}
		cfg, err = goldstd.ReadConfig(f)
		f.Close()
		if err != nil {
			log.Fatal(err)
		}
	}
	names := fs.Args()
	if len(names) == 0 {
		names = cfg.Names()
	}

	email, err := s.Properties().Get("troilkatt.admin.email")
	if err != nil {
		log.Warn(err)
		email = "anonymous@"
	}
	for _, d := range []string{s.TmpDir, s.OutputDir} {
		err = os.MkdirAll(d, 0o755)
		if err != nil {
			log.Fatal(err)
		}
	}

	b := goldstd.Builder{
		Fetcher:     crawl.Opener{Email: email},
		DownloadDir: s.TmpDir,
		OutputDir:   s.OutputDir,
	}
	var failed []string
	for _, name := range names {
		org, ok := cfg.Organisms[name]
		if !ok {
			log.Errorf("no configuration for organism %q", name)
			failed = append(failed, name)
			continue
		}
		org, err = resolve(s, org)
		if err != nil {
			log.Errorf("%s: %v", name, err)
			failed = append(failed, name)
			continue
		}
		_, err = b.Build(context.Background(), name, org)
		if err != nil {
			log.Errorf("%s: %v", name, err)
			failed = append(failed, name)
		}
	}
	err = troilkatt.SaveList(s.LogDir, "errors", failed)
	if err != nil {
		log.Fatal(err)
	}
	if len(failed) != 0 {
		log.Fatalf("failed to build gold standards for: %s", strings.Join(failed, " "))
	}
}

// resolve substitutes TROILKATT.* variables in the sources of org.
func resolve(s *troilkatt.Stage, org goldstd.Organism) (goldstd.Organism, error) {
	for _, p := range []*string{&org.Ontology, &org.Annotations, &org.Slim, &org.Negative} {
		if *p == "" {
			continue
		}
		var err error
		*p, err = s.SetVariables(*p)
		if err != nil {
			return org, err
		}
	}
	return org, nil
}
