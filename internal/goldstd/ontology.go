// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package goldstd

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/formats/rdf"
	"gonum.org/v1/gonum/graph/traverse"

	log "github.com/sirupsen/logrus"

	"github.com/kortschak/gogo"
	"github.com/kortschak/troilkatt/internal/obo"
)

// annotates is the predicate linking an ontology term to a gene.
const annotates = "<local:annotates>"

// Ontology is an ontology graph with gene annotations.
type Ontology struct {
	*gogo.Graph

	// PartOf specifies whether part_of relationships
	// are followed when collecting descendants.
	PartOf bool
}

// NewOntology returns the ontology read from the OBO stream r.
func NewOntology(r io.Reader) (*Ontology, error) {
	g := gogo.NewGraph()
	dec := obo.NewDecoder(r)
	for {
		s, err := dec.Unmarshal()
		if err != nil {
			if err != io.EOF {
				return nil, err
			}
			break
		}
		g.AddStatement(s)
	}
	return &Ontology{Graph: g}, nil
}

// Annotation is a gene association.
type Annotation struct {
	Gene string
	Term string
}

// Minimum number of columns in a GAF row.
const gafColumns = 15

// ReadGAF returns the annotations held in the GO annotation file stream
// r. The gene symbol column is used as the gene name. Annotations with a
// NOT qualifier are omitted.
func ReadGAF(r io.Reader) ([]Annotation, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.Comment = '!'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	var annots []Annotation
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		if len(rec) < gafColumns {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("goldstd: line %d: too few columns in annotation: %d", line, len(rec))
		}
		if hasNot(rec[3]) {
			continue
		}
		annots = append(annots, Annotation{Gene: rec[2], Term: rec[4]})
	}
	return annots, nil
}

func hasNot(qualifiers string) bool {
	for _, q := range strings.Split(qualifiers, "|") {
		if q == "NOT" {
			return true
		}
	}
	return false
}

// Annotate adds the annotations to the ontology graph. Annotations to
// terms not in the ontology are ignored and counted in the returned
// value.
func (o *Ontology) Annotate(annots []Annotation) (missing int) {
	for _, a := range annots {
		t, ok := o.TermFor(obo.IRI(a.Term))
		if !ok {
			missing++
			continue
		}
		obj, err := rdf.NewLiteralTerm(a.Gene, "")
		if err != nil {
			log.Warnf("invalid gene name %q: %v", a.Gene, err)
			missing++
			continue
		}
		t.UID = 0
		o.AddStatement(&rdf.Statement{
			Subject:   t,
			Predicate: rdf.Term{Value: annotates},
			Object:    obj,
		})
	}
	return missing
}

// Genes returns the sorted genes annotated to the term id or any of its
// descendants.
func (o *Ontology) Genes(id string) ([]string, error) {
	root, ok := o.TermFor(obo.IRI(id))
	if !ok {
		return nil, fmt.Errorf("goldstd: term not in ontology: %s", id)
	}
	genes := make(map[string]bool)
	collect := func(t rdf.Term) {
		for _, g := range o.Query(t).Out(func(s *rdf.Statement) bool {
			return s.Predicate.Value == annotates
		}).Result() {
			text, _, kind, err := g.Parts()
			if err != nil || kind != rdf.Literal {
				continue
			}
			genes[text] = true
		}
	}
	bf := traverse.BreadthFirst{Traverse: o.isChildOf}
	bf.Walk(reverse{o.Graph}, root, func(n graph.Node, _ int) bool {
		collect(n.(rdf.Term))
		return false
	})
	set := make([]string, 0, len(genes))
	for g := range genes {
		set = append(set, g)
	}
	sort.Strings(set)
	return set, nil
}

// isChildOf is a traverse edge filter. It accepts statements where
//
//  <obo:*> <- <rdfs:subClassOf> -- <obo:*>
//
// for in queries from a term, and the equivalent part_of statements when
// the ontology follows part_of relationships.
func (o *Ontology) isChildOf(e graph.Edge) bool {
	return gogo.ConnectedByAny(e, func(s *rdf.Statement) bool {
		switch s.Predicate.Value {
		case obo.SubClassOf:
			return true
		case obo.PartOf:
			return o.PartOf
		default:
			return false
		}
	})
}

// reverse implements the traverse.Graph reversing the direction of edges.
type reverse struct {
	*gogo.Graph
}

func (g reverse) From(id int64) graph.Nodes      { return g.Graph.To(id) }
func (g reverse) Edge(uid, vid int64) graph.Edge { return g.Graph.Edge(vid, uid) }
