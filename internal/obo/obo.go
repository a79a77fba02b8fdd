// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package obo

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"gonum.org/v1/gonum/graph/formats/rdf"
)

// Predicates written by the Decoder.
const (
	SubClassOf   = "<rdfs:subClassOf>"
	HasNamespace = "<oboInOwl:hasOBONamespace>"
	Label        = "<rdfs:label>"
	PartOf       = "<obo:BFO_0000050>"
)

// IRI returns the local IRI term value for the OBO identifier id.
func IRI(id string) string {
	return "<obo:" + strings.Replace(id, ":", "_", 1) + ">"
}

// ID returns the OBO identifier for the local IRI term value iri. It is
// the inverse of IRI.
func ID(iri string) string {
	id := strings.TrimSuffix(strings.TrimPrefix(iri, "<obo:"), ">")
	return strings.Replace(id, "_", ":", 1)
}

// Decoder is an OBO decoder. rdf.Statements returned by calls to the
// Unmarshal method have their Terms' UID fields set so that unique terms
// will have unique IDs and so can be used directly in a graph.Multi.
// Term UIDs are based from 1. Statements for obsolete terms are not
// returned.
type Decoder struct {
	sc   *bufio.Scanner
	line int
	done bool

	term   term
	inTerm bool

	strings store
	ids     map[string]int64

	curr int
	buf  []*rdf.Statement
	seen map[[3]int64]bool
}

// NewDecoder returns a new Decoder that takes input from r.
func NewDecoder(r io.Reader) *Decoder {
	dec := &Decoder{
		strings: make(store),
		ids:     make(map[string]int64),
		seen:    make(map[[3]int64]bool),
	}
	dec.reset(r)
	return dec
}

// Reset resets the decoder to use the provided io.Reader, retaining
// the existing Term ID mapping.
func (dec *Decoder) Reset(r io.Reader) {
	for i := range dec.buf[dec.curr:] {
		dec.buf[dec.curr+i] = nil
	}
	dec.curr = 0
	dec.buf = dec.buf[:0]
	dec.strings = make(store)
	dec.reset(r)
}

func (dec *Decoder) reset(r io.Reader) {
	dec.sc = bufio.NewScanner(r)
	dec.sc.Buffer(nil, 1<<20)
	dec.line = 0
	dec.done = false
	dec.term = term{}
	dec.inTerm = false
}

// Unmarshal returns the next unique statement from the input stream.
func (dec *Decoder) Unmarshal() (*rdf.Statement, error) {
	for {
		for len(dec.buf[dec.curr:]) == 0 {
			err := dec.fillBuffer()
			if err != nil {
				return nil, err
			}
		}
		s := dec.buf[dec.curr]
		dec.buf[dec.curr] = nil
		dec.curr++
		if len(dec.buf[dec.curr:]) == 0 {
			dec.curr = 0
			dec.buf = dec.buf[:0]
		}
		s.Subject.Value = dec.strings.intern(s.Subject.Value)
		s.Predicate.Value = dec.strings.intern(s.Predicate.Value)
		s.Object.Value = dec.strings.intern(s.Object.Value)
		s.Subject.UID = dec.idFor(s.Subject.Value)
		s.Object.UID = dec.idFor(s.Object.Value)
		s.Predicate.UID = dec.idFor(s.Predicate.Value)
		triple := [3]int64{s.Subject.UID, s.Predicate.UID, s.Object.UID}
		if !dec.seen[triple] {
			dec.seen[triple] = true
			return s, nil
		}
	}
}

func (dec *Decoder) idFor(s string) int64 {
	id, ok := dec.ids[s]
	if ok {
		return id
	}
	id = int64(len(dec.ids)) + 1
	dec.ids[s] = id
	return id
}

// fillBuffer reads up to the end of the next stanza and adds the
// statements of a completed [Term] stanza to the buffer.
func (dec *Decoder) fillBuffer() error {
	if dec.done {
		return io.EOF
	}
	for dec.sc.Scan() {
		dec.line++
		line := strings.TrimSpace(dec.sc.Text())
		if strings.HasPrefix(line, "[") {
			ended := dec.inTerm
			err := dec.endStanza()
			if err != nil {
				return err
			}
			dec.inTerm = line == "[Term]"
			if ended {
				return nil
			}
			continue
		}
		if !dec.inTerm || line == "" || line[0] == '!' {
			continue
		}
		tag, value, ok := tagValue(line)
		if !ok {
			return fmt.Errorf("obo: line %d: invalid tag-value pair: %q", dec.line, line)
		}
		dec.term.add(tag, value)
	}
	if err := dec.sc.Err(); err != nil {
		return err
	}
	dec.done = true
	err := dec.endStanza()
	if err != nil {
		return err
	}
	if len(dec.buf) == 0 {
		return io.EOF
	}
	return nil
}

func (dec *Decoder) endStanza() error {
	if !dec.inTerm {
		return nil
	}
	t := dec.term
	dec.term = term{}
	dec.inTerm = false
	if t.id == "" {
		return fmt.Errorf("obo: line %d: term without id", dec.line)
	}
	if t.obsolete {
		return nil
	}
	var err error
	dec.buf, err = t.collect(dec.buf)
	return err
}

// term holds the decoded tags of a [Term] stanza.
type term struct {
	id        string
	name      string
	namespace string
	isA       []string
	partOf    []string
	obsolete  bool
}

func (t *term) add(tag, value string) {
	switch tag {
	case "id":
		t.id = value
	case "name":
		t.name = value
	case "namespace":
		t.namespace = value
	case "is_a":
		t.isA = append(t.isA, firstField(value))
	case "relationship":
		f := strings.Fields(value)
		if len(f) >= 2 && f[0] == "part_of" {
			t.partOf = append(t.partOf, f[1])
		}
	case "is_obsolete":
		t.obsolete = value == "true"
	}
}

func (t *term) collect(dst []*rdf.Statement) ([]*rdf.Statement, error) {
	subj := rdf.Term{Value: IRI(t.id)}
	for _, p := range t.isA {
		dst = append(dst, &rdf.Statement{Subject: subj, Predicate: rdf.Term{Value: SubClassOf}, Object: rdf.Term{Value: IRI(p)}})
	}
	for _, p := range t.partOf {
		dst = append(dst, &rdf.Statement{Subject: subj, Predicate: rdf.Term{Value: PartOf}, Object: rdf.Term{Value: IRI(p)}})
	}
	for _, l := range []struct {
		pred, text string
	}{
		{pred: HasNamespace, text: t.namespace},
		{pred: Label, text: t.name},
	} {
		if l.text == "" {
			continue
		}
		obj, err := rdf.NewLiteralTerm(l.text, "")
		if err != nil {
			return dst, fmt.Errorf("obo: invalid literal for %s: %w", t.id, err)
		}
		dst = append(dst, &rdf.Statement{Subject: subj, Predicate: rdf.Term{Value: l.pred}, Object: obj})
	}
	return dst, nil
}

// tagValue splits an OBO tag-value line, removing trailing modifiers and
// comments from the value.
func tagValue(line string) (tag, value string, ok bool) {
	i := strings.Index(line, ":")
	if i <= 0 {
		return "", "", false
	}
	tag = line[:i]
	value = strings.TrimSpace(line[i+1:])
	if tag != "name" && tag != "def" && tag != "comment" {
		if j := strings.Index(value, " !"); j >= 0 {
			value = strings.TrimSpace(value[:j])
		}
	}
	if j := strings.Index(value, " {"); j >= 0 && strings.HasSuffix(value, "}") {
		value = strings.TrimSpace(value[:j])
	}
	return tag, value, true
}

func firstField(s string) string {
	f := strings.Fields(s)
	if len(f) == 0 {
		return ""
	}
	return f[0]
}

// store is a string internment implementation.
type store map[string]string

// intern returns an interned version of the parameter.
func (is store) intern(s string) string {
	if s == "" {
		return ""
	}
	t, ok := is[s]
	if ok {
		return t
	}
	is[s] = s
	return s
}
