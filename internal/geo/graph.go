// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package geo

import (
	"sort"
	"strings"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/formats/rdf"
	"gonum.org/v1/gonum/graph/iterator"

	log "github.com/sirupsen/logrus"

	"github.com/kortschak/gogo"
)

// Predicates used in the accession graph.
const (
	hasSample     = "<geo:hasSample>"
	referencesGSE = "<geo:referencesSeries>"
	onPlatform    = "<geo:onPlatform>"
	ofOrganism    = "<geo:organism>"
	hasTitle      = "<geo:title>"
)

// Graph is an RDF graph of GEO accessions. Series and datasets are linked
// to their samples, platforms and organisms, and datasets are linked to
// the series they reference.
type Graph struct {
	*gogo.Graph
}

func iri(id string) rdf.Term {
	return rdf.Term{Value: "<geo:" + id + ">"}
}

// NewGraph returns the accession graph for the given tables.
func NewGraph(datasets []*Dataset, series []*Series, platforms []*Platform) *Graph {
	g := Graph{gogo.NewGraph()}
	for _, d := range datasets {
		gds := upper(d.GDS)
		for _, gse := range upperList(d.Series) {
			g.link(gds, referencesGSE, iri(gse))
		}
		for _, gsm := range upperList(d.Samples) {
			g.link(gds, hasSample, iri(gsm))
		}
		if gpl := upper(d.Platform); gpl != "" {
			g.link(gds, onPlatform, iri(gpl))
		}
		g.literal(gds, ofOrganism, d.Organism)
	}
	for _, s := range series {
		gse := upper(s.GSE)
		for _, gsm := range upperList(s.Samples) {
			g.link(gse, hasSample, iri(gsm))
		}
		for _, gpl := range upperList(s.Platforms) {
			g.link(gse, onPlatform, iri(gpl))
		}
		for _, org := range s.Organisms {
			g.literal(gse, ofOrganism, org)
		}
	}
	for _, p := range platforms {
		g.literal(upper(p.GPL), hasTitle, p.Title)
	}
	return &g
}

func (g Graph) link(sub, pred string, obj rdf.Term) {
	g.AddStatement(&rdf.Statement{
		Subject:   iri(sub),
		Predicate: rdf.Term{Value: pred},
		Object:    obj,
	})
}

func (g Graph) literal(sub, pred, text string) {
	text = strings.TrimSpace(text)
	if sub == "" || text == "" {
		return
	}
	obj, err := rdf.NewLiteralTerm(text, "")
	if err != nil {
		log.Warnf("invalid literal for %s: %v", sub, err)
		return
	}
	g.link(sub, pred, obj)
}

// Samples returns the samples held by the series or dataset id.
func (g *Graph) Samples(id string) []string {
	return g.related(id, hasSample, true)
}

// Containers returns the series and datasets holding the sample gsm.
func (g *Graph) Containers(gsm string) []string {
	return g.related(gsm, hasSample, false)
}

// Series returns the series referenced by the dataset gds.
func (g *Graph) Series(gds string) []string {
	return g.related(gds, referencesGSE, true)
}

// Datasets returns the datasets referencing the series gse.
func (g *Graph) Datasets(gse string) []string {
	return g.related(gse, referencesGSE, false)
}

// Accessions returns the series or datasets using the platform gpl.
func (g *Graph) Accessions(gpl string) []string {
	return g.related(gpl, onPlatform, false)
}

// related returns the sorted accessions linked to id by pred, following
// links out from id if out is true and into id otherwise.
func (g *Graph) related(id, pred string, out bool) []string {
	t, ok := g.TermFor(iri(upper(id)).Value)
	if !ok {
		return nil
	}
	isPred := func(s *rdf.Statement) bool { return s.Predicate.Value == pred }
	q := g.Query(t)
	if out {
		q = q.Out(isPred)
	} else {
		q = q.In(isPred)
	}
	terms := q.Unique().Result()
	ids := make([]string, 0, len(terms))
	for _, t := range terms {
		ids = append(ids, accessionOf(t))
	}
	sort.Strings(ids)
	return ids
}

// accessionOf returns the accession or literal text of t.
func accessionOf(t rdf.Term) string {
	text, _, kind, err := t.Parts()
	if err != nil || kind != rdf.Literal {
		return strings.TrimSuffix(strings.TrimPrefix(t.Value, "<geo:"), ">")
	}
	return text
}

// MarshalDOT returns the DOT encoding of the accession graph.
func (g *Graph) MarshalDOT(name string) ([]byte, error) {
	return dot.MarshalMulti(dotGraph{g.Graph}, name, "", "\t")
}

// dotGraph shims the accession graph nodes and lines to provide
// DOT identifiers and labels.
type dotGraph struct {
	*gogo.Graph
}

func (g dotGraph) DOTAttributers() (graph, node, edge encoding.Attributer) {
	return attrs{{Key: "rankdir", Value: "LR"}}, attrs{}, attrs{}
}

func (g dotGraph) Nodes() graph.Nodes {
	return dotNodes(g.Graph.Nodes())
}

func (g dotGraph) From(uid int64) graph.Nodes {
	return dotNodes(g.Graph.From(uid))
}

func dotNodes(it graph.Nodes) graph.Nodes {
	var nodes []graph.Node
	for it.Next() {
		nodes = append(nodes, dotNode{it.Node().(rdf.Term)})
	}
	if len(nodes) == 0 {
		return graph.Empty
	}
	return iterator.NewOrderedNodes(nodes)
}

func (g dotGraph) Lines(uid, vid int64) graph.Lines {
	it := g.Graph.Lines(uid, vid)
	lines := make([]graph.Line, 0, it.Len())
	for it.Next() {
		l := it.Line().(*rdf.Statement)
		label := strings.TrimSuffix(strings.TrimPrefix(l.Predicate.Value, "<geo:"), ">")
		lines = append(lines, dotLine{
			Statement: l,
			attrs:     attrs{{Key: "label", Value: label}},
		})
	}
	return iterator.NewOrderedLines(lines)
}

type attrs []encoding.Attribute

func (a attrs) Attributes() []encoding.Attribute { return a }

// dotNode implements graph.Node and dot.Node to allow the
// accession to be given to the DOT encoder.
type dotNode struct {
	rdf.Term
}

func (n dotNode) DOTID() string { return accessionOf(n.Term) }

// dotLine implements graph.Line and encoding.Attributer to
// allow the predicate to be given to the DOT encoder as a
// label.
type dotLine struct {
	*rdf.Statement
	attrs attrs
}

func (l dotLine) From() graph.Node                 { return dotNode{l.Subject} }
func (l dotLine) To() graph.Node                   { return dotNode{l.Object} }
func (l dotLine) Attributes() []encoding.Attribute { return l.attrs }
