// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// gogenes maps GO terms to the genes annotated to them or their
// descendants.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/graph/formats/rdf"

	"github.com/kortschak/troilkatt/internal/goldstd"
	"github.com/kortschak/troilkatt/internal/obo"
	"github.com/kortschak/troilkatt/internal/soft"
)

func main() {
	var (
		ontoPath  = flag.String("ontology", "", "specify the GO file (.obo/.obo.gz - required)")
		annotPath = flag.String("annotations", "", "specify the GO annotation file (.gaf/.gaf.gz - required)")
		partOf    = flag.Bool("part_of", false, "follow part_of relationships")
		help      = flag.Bool("help", false, "print help text")
	)
	flag.Parse()

	if *help {
		flag.Usage()
		fmt.Fprintf(os.Stderr, `
%s maps GO terms to genes based on a GO annotation file. For each GO
term given as an argument, it prints the term followed by the tab
separated sorted gene symbols annotated to the term or any of its
descendants.

If no terms are given, it outputs the direct annotations as RDF triples
in the form:

 <obo:GO_0000000> <local:annotates> "GENE" .

for each GO term to gene annotation.

The Gene Ontology is required to be in OBO format. Annotations with a
NOT qualifier are ignored. Input files with a .gz extension are
decompressed.

`, filepath.Base(os.Args[0]))
		os.Exit(0)
	}

	if *ontoPath == "" || *annotPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	log.Println("[loading ontology]")
	f, err := soft.Open(*ontoPath)
	if err != nil {
		log.Fatal(err)
	}
	ont, err := goldstd.NewOntology(f)
	f.Close()
	if err != nil {
		log.Fatalf("failed to load ontology: %v", err)
	}
	ont.PartOf = *partOf

	log.Println("[loading annotations]")
	f, err = soft.Open(*annotPath)
	if err != nil {
		log.Fatal(err)
	}
	annots, err := goldstd.ReadGAF(f)
	f.Close()
	if err != nil {
		log.Fatalf("failed to load annotations: %v", err)
	}

	if flag.NArg() == 0 {
		for _, a := range annots {
			gene, err := rdf.NewLiteralTerm(a.Gene, "")
			if err != nil {
				log.Warnf("invalid gene name %q: %v", a.Gene, err)
				continue
			}
			fmt.Println(&rdf.Statement{
				Subject:   rdf.Term{Value: obo.IRI(a.Term)},
				Predicate: rdf.Term{Value: "<local:annotates>"},
				Object:    gene,
			})
		}
		return
	}

	missing := ont.Annotate(annots)
	if missing != 0 {
		log.Warnf("%d annotations to terms not in the ontology", missing)
	}
	for _, term := range flag.Args() {
		genes, err := ont.Genes(term)
		if err != nil {
			log.Error(err)
			continue
		}
		fmt.Print(term)
		for _, g := range genes {
			fmt.Print("\t" + g)
		}
		fmt.Println()
	}
}
