// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package obo

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"
	"testing"

	"github.com/pkg/diff"
	"github.com/pkg/diff/write"
)

const ontology = `format-version: 1.2
data-version: releases/2021-05-01
default-namespace: gene_ontology

[Term]
id: GO:0008150
name: biological_process
namespace: biological_process

[Term]
id: GO:0009987
name: cellular process
namespace: biological_process
is_a: GO:0008150 ! biological_process

[Term]
id: GO:0006412
name: translation
namespace: biological_process
is_a: GO:0009987 {is_inferred="true"} ! cellular process
is_a: GO:0009987 ! cellular process
relationship: part_of GO:0008150 ! biological_process

[Term]
id: GO:0000005
name: obsolete ribosomal chaperone activity
namespace: molecular_function
is_obsolete: true

[Typedef]
id: part_of
name: part of
is_transitive: true
`

const statements = `<obo:GO_0006412> <obo:BFO_0000050> <obo:GO_0008150> .
<obo:GO_0006412> <oboInOwl:hasOBONamespace> "biological_process" .
<obo:GO_0006412> <rdfs:label> "translation" .
<obo:GO_0006412> <rdfs:subClassOf> <obo:GO_0009987> .
<obo:GO_0008150> <oboInOwl:hasOBONamespace> "biological_process" .
<obo:GO_0008150> <rdfs:label> "biological_process" .
<obo:GO_0009987> <oboInOwl:hasOBONamespace> "biological_process" .
<obo:GO_0009987> <rdfs:label> "cellular process" .
<obo:GO_0009987> <rdfs:subClassOf> <obo:GO_0008150> .
`

func decodeAll(t *testing.T, dec *Decoder) []string {
	t.Helper()
	var got []string
	uids := make(map[string]int64)
	for {
		s, err := dec.Unmarshal()
		if err != nil {
			if err != io.EOF {
				t.Fatalf("error during decoding: %v", err)
			}
			break
		}
		for _, term := range []struct {
			value string
			uid   int64
		}{
			{s.Subject.Value, s.Subject.UID},
			{s.Predicate.Value, s.Predicate.UID},
			{s.Object.Value, s.Object.UID},
		} {
			if term.uid == 0 {
				t.Errorf("term %s has no UID", term.value)
			}
			if uid, ok := uids[term.value]; ok && uid != term.uid {
				t.Errorf("inconsistent UID for %s: %d != %d", term.value, uid, term.uid)
			}
			uids[term.value] = term.uid
		}
		got = append(got, s.String())
	}
	sort.Strings(got)
	return got
}

func TestDecoder(t *testing.T) {
	dec := NewDecoder(strings.NewReader(ontology))
	got := strings.Join(decodeAll(t, dec), "\n") + "\n"
	if got != statements {
		var buf bytes.Buffer
		diff.Text("got", "want", got, statements, &buf, write.TerminalColor())
		t.Errorf("unexpected statements:\n%s", &buf)
	}

	// Reset retains term UIDs and returns statements
	// not seen before.
	dec.Reset(strings.NewReader(`[Term]
id: GO:0009987
name: cellular process
is_a: GO:0008150

[Term]
id: GO:0003674
name: molecular_function
`))
	got = strings.Join(decodeAll(t, dec), "\n")
	want := `<obo:GO_0003674> <rdfs:label> "molecular_function" .`
	if got != want {
		t.Errorf("unexpected statements after reset:\ngot: %s\nwant:%s", got, want)
	}
}

func TestDecoderErrors(t *testing.T) {
	for _, bad := range []string{
		"[Term]\nname: no identifier\n",
		"[Term]\nid: GO:1\nnot a tag value pair\n",
	} {
		dec := NewDecoder(strings.NewReader(bad))
		_, err := dec.Unmarshal()
		if err == nil || err == io.EOF {
			t.Errorf("expected error for:\n%s", bad)
		}
	}

	dec := NewDecoder(strings.NewReader("format-version: 1.2\n"))
	_, err := dec.Unmarshal()
	if err != io.EOF {
		t.Errorf("expected io.EOF for empty ontology, got: %v", err)
	}
}

func TestIRI(t *testing.T) {
	for _, id := range []string{"GO:0008150", "PO:0009005"} {
		iri := IRI(id)
		if want := fmt.Sprintf("<obo:%s>", strings.Replace(id, ":", "_", 1)); iri != want {
			t.Errorf("unexpected IRI for %s: got:%s want:%s", id, iri, want)
		}
		if got := ID(iri); got != id {
			t.Errorf("ID does not invert IRI: got:%s want:%s", got, id)
		}
	}
}
