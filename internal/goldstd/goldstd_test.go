// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package goldstd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/klauspost/pgzip"
	"github.com/pkg/diff"
	"github.com/pkg/diff/write"
)

const ontology = `format-version: 1.2

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
is_a: GO:0009987 ! cellular process

[Term]
id: GO:0000001
name: mitochondrion inheritance
namespace: biological_process
relationship: part_of GO:0009987 ! cellular process

[Term]
id: GO:0003674
name: molecular_function
namespace: molecular_function

[Term]
id: GO:0005215
name: transporter activity
namespace: molecular_function
is_a: GO:0003674 ! molecular_function
`

func gafRow(gene, qualifier, term string) string {
	return strings.Join([]string{
		"UniProtKB", "P" + gene, gene, qualifier, term, "PMID:1", "IDA", "", "P",
		gene + " protein", "", "protein", "taxon:9606", "20210501", "UniProt",
	}, "\t")
}

var annotations = strings.Join([]string{
	"!gaf-version: 2.2",
	gafRow("A", "", "GO:0006412"),
	gafRow("B", "", "GO:0009987"),
	gafRow("C", "NOT", "GO:0006412"),
	gafRow("C", "", "GO:0005215"),
	gafRow("D", "contributes_to", "GO:0005215"),
	gafRow("E", "", "GO:9999999"),
	gafRow("F", "", "GO:0000001"),
}, "\n") + "\n"

func newOntology(t *testing.T) *Ontology {
	t.Helper()
	o, err := NewOntology(strings.NewReader(ontology))
	if err != nil {
		t.Fatalf("unexpected error reading ontology: %v", err)
	}
	annots, err := ReadGAF(strings.NewReader(annotations))
	if err != nil {
		t.Fatalf("unexpected error reading annotations: %v", err)
	}
	if len(annots) != 6 {
		t.Errorf("unexpected number of annotations: got:%d want:6", len(annots))
	}
	missing := o.Annotate(annots)
	if missing != 1 {
		t.Errorf("unexpected number of missing terms: got:%d want:1", missing)
	}
	return o
}

func TestGenes(t *testing.T) {
	o := newOntology(t)
	tests := []struct {
		term   string
		partOf bool
		want   []string
	}{
		{term: "GO:0006412", want: []string{"A"}},
		{term: "GO:0009987", want: []string{"A", "B"}},
		{term: "GO:0009987", partOf: true, want: []string{"A", "B", "F"}},
		{term: "GO:0008150", want: []string{"A", "B"}},
		{term: "GO:0003674", want: []string{"C", "D"}},
	}
	for _, test := range tests {
		o.PartOf = test.partOf
		got, err := o.Genes(test.term)
		if err != nil {
			t.Errorf("unexpected error for %s: %v", test.term, err)
			continue
		}
		if !cmp.Equal(got, test.want) {
			t.Errorf("unexpected genes for %s (part_of=%t): got:%v want:%v", test.term, test.partOf, got, test.want)
		}
	}
	_, err := o.Genes("GO:1234567")
	if err == nil {
		t.Error("expected error for missing term")
	}
}

func TestReadGAF(t *testing.T) {
	_, err := ReadGAF(strings.NewReader("UniProtKB\tP1\tA\n"))
	if err == nil {
		t.Error("expected error for short row")
	}
}

func TestAnswers(t *testing.T) {
	o := newOntology(t)
	slim, err := ReadSlim(strings.NewReader("# positives\nGO:0009987\tcellular process\n\nGO:1234567\n"))
	if err != nil {
		t.Fatalf("unexpected error reading slim: %v", err)
	}
	pos := o.GeneSets(slim)
	wantPos := []GeneSet{{Name: "cellular_process", Genes: []string{"A", "B"}}}
	if !cmp.Equal(pos, wantPos) {
		t.Errorf("unexpected positive sets:\n%s", cmp.Diff(wantPos, pos))
	}
	neg := o.GeneSets([]Slim{{ID: "GO:0003674"}})
	wantNeg := []GeneSet{{Name: "GO_0003674", Genes: []string{"C", "D"}}}
	if !cmp.Equal(neg, wantNeg) {
		t.Errorf("unexpected negative sets:\n%s", cmp.Diff(wantNeg, neg))
	}

	var buf bytes.Buffer
	err = WriteDAT(&buf, Answers(pos, neg))
	if err != nil {
		t.Fatalf("unexpected error writing pairs: %v", err)
	}
	checkText(t, buf.String(), "A\tB\t1\nA\tC\t0\nA\tD\t0\nB\tC\t0\nB\tD\t0\n")
}

type fakeFetcher map[string][]byte

func (f fakeFetcher) FetchURL(_ context.Context, rawurl string, w io.Writer) error {
	b, ok := f[rawurl]
	if !ok {
		return fmt.Errorf("not found: %s", rawurl)
	}
	_, err := w.Write(b)
	return err
}

func TestBuild(t *testing.T) {
	dir := t.TempDir()
	put := func(name, content string) string {
		path := filepath.Join(dir, name)
		err := os.WriteFile(path, []byte(content), 0o644)
		if err != nil {
			t.Fatal(err)
		}
		return path
	}
	var gz bytes.Buffer
	zw := pgzip.NewWriter(&gz)
	io.WriteString(zw, annotations)
	err := zw.Close()
	if err != nil {
		t.Fatal(err)
	}

	b := Builder{
		Fetcher: fakeFetcher{
			"http://example.org/go/gene_association.test.gz": gz.Bytes(),
		},
		DownloadDir: filepath.Join(dir, "download"),
		OutputDir:   filepath.Join(dir, "output"),
	}
	org := Organism{
		Ontology:    put("gene_ontology.obo", ontology),
		Annotations: "http://example.org/go/gene_association.test.gz",
		Slim:        put("slim.txt", "GO:0009987\tcellular process\n"),
		Negative:    put("negative.txt", "GO:0003674\tmolecular function\n"),
	}
	res, err := b.Build(context.Background(), "test", org)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := &Result{
		Organism:  "test",
		Positives: 1,
		Negatives: 1,
		Related:   1,
		Unrelated: 4,
		DAT:       filepath.Join(b.OutputDir, "test_positives.dat"),
	}
	if !cmp.Equal(res, want) {
		t.Errorf("unexpected result:\n%s", cmp.Diff(want, res))
	}

	for path, want := range map[string]string{
		filepath.Join(b.OutputDir, "test", "positives", "cellular_process"):   "A\nB\n",
		filepath.Join(b.OutputDir, "test", "negatives", "molecular_function"): "C\nD\n",
		filepath.Join(b.OutputDir, "test_positives.quant"):                    Quant,
	} {
		got, err := os.ReadFile(path)
		if err != nil {
			t.Errorf("missing output: %v", err)
			continue
		}
		checkText(t, string(got), want)
	}
	if _, err := os.Stat(filepath.Join(b.DownloadDir, "gene_association.test.gz")); err != nil {
		t.Errorf("annotations not retained in download directory: %v", err)
	}
}

func TestReadConfig(t *testing.T) {
	got, err := ReadConfig(strings.NewReader(`organisms:
  yeast:
    ontology: http://example.org/go.obo
    annotations: http://example.org/gene_association.sgd.gz
    slim: TROILKATT.GLOBALMETA_DIR/slim.txt
    part_of: true
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := &Config{Organisms: map[string]Organism{
		"yeast": {
			Ontology:    "http://example.org/go.obo",
			Annotations: "http://example.org/gene_association.sgd.gz",
			Slim:        "TROILKATT.GLOBALMETA_DIR/slim.txt",
			PartOf:      true,
		},
	}}
	if !cmp.Equal(got, want) {
		t.Errorf("unexpected configuration:\n%s", cmp.Diff(want, got))
	}
	_, err = ReadConfig(strings.NewReader("organisms:\n  yeast:\n    ontology: go.obo\n"))
	if err == nil {
		t.Error("expected error for incomplete organism")
	}
}

func checkText(t *testing.T, got, want string) {
	t.Helper()
	if got != want {
		var buf bytes.Buffer
		diff.Text("got", "want", got, want, &buf, write.TerminalColor())
		t.Errorf("unexpected output:\n%s", &buf)
	}
}
