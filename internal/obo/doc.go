// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package obo implements decoding the OBO flat file encoding of an
// ontology into RDF statements. Only the [Term] stanza tags used for
// building gene sets are decoded. It is not a complete OBO parser.
//
// Term identifiers are written with the local obo namespace prefix, so
// GO:0008150 becomes <obo:GO_0008150>. The is_a relationship is written
// as <rdfs:subClassOf>, namespace as <oboInOwl:hasOBONamespace>, name as
// <rdfs:label> and the part_of relationship as <obo:BFO_0000050>,
// matching the OBO in OWL mapping of the Gene Ontology.
package obo
