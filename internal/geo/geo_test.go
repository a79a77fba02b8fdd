// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package geo

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/diff"
	"github.com/pkg/diff/write"
)

var (
	testDatasets = []*Dataset{
		{GDS: "GDS1", Date: "Mar 01 2006", Organism: "Homo sapiens", Platform: "gpl1", NSamples: "2", Series: List{"gse1"}, Samples: List{"gsm1", "gsm2"}},
	}
	testSeries = []*Series{
		{GSE: "GSE1", Date: "Jan 02 2006", Organisms: List{"Homo sapiens"}, Platforms: List{"GPL1"}, Samples: List{"GSM1", "GSM2", "GSM3"}, PlatformTitles: List{"Array"}},
		{GSE: "GSE2", Date: "Feb 01 2006", Samples: List{"GSM1", "GSM2"}},
	}
	testPlatforms = []*Platform{
		{GPL: "GPL1", Date: "Jan 01 2005", Organism: "Homo sapiens", Title: "Array"},
	}
)

func TestBuildMaps(t *testing.T) {
	m, err := BuildMaps(testDatasets, testSeries, testPlatforms)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := &Maps{
		GDS2GSE:      Map{"GDS1": {"GSE1"}},
		GSE2GDS:      Map{"GSE1": {"GDS1"}},
		GDS2GSM:      Map{"GDS1": {"GSM1", "GSM2"}},
		GSM2GDS:      Map{"GSM1": {"GDS1"}, "GSM2": {"GDS1"}},
		Org2GDS:      Map{"Homo sapiens": {"GDS1"}},
		GPL2GDS:      Map{"GPL1": {"GDS1"}},
		GSE2GSM:      Map{"GSE1": {"GSM1", "GSM2", "GSM3"}, "GSE2": {"GSM1", "GSM2"}},
		GSM2GSE:      Map{"GSM1": {"GSE1", "GSE2"}, "GSM2": {"GSE1", "GSE2"}, "GSM3": {"GSE1"}},
		Org2GSE:      Map{"Homo sapiens": {"GSE1"}},
		GPL2GSE:      Map{"GPL1": {"GSE1"}},
		GDS2GPLTitle: Map{"GDS1": {"Array"}},
		GSE2GPLTitle: Map{"GSE1": {"Array"}, "GSE2": {"Unknown"}},
	}
	if !cmp.Equal(m, want) {
		t.Errorf("unexpected maps:\n%s", cmp.Diff(want, m))
	}

	var buf bytes.Buffer
	err = WriteMap(&buf, m.GSM2GSE)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := buf.String(), "GSM1\tGSE1\tGSE2\nGSM2\tGSE1\tGSE2\nGSM3\tGSE1\n"; got != want {
		t.Errorf("unexpected map file: got:%q want:%q", got, want)
	}
	got, err := ReadMap(&buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cmp.Equal(got, m.GSM2GSE) {
		t.Errorf("unexpected map:\n%s", cmp.Diff(m.GSM2GSE, got))
	}

	_, err = BuildMaps([]*Dataset{{GDS: " "}}, nil, nil)
	if err == nil {
		t.Error("expected error for dataset without GDS")
	}
}

func TestOverlaps(t *testing.T) {
	gid2gsm := Map{
		"GSE2": {"GSM1", "GSM2"},
		"GDS1": {"GSM1", "GSM2"},
		"GSE1": {"GSM1", "GSM2", "GSM3"},
		"GSE3": {"GSM4"},
	}
	got := Overlaps(gid2gsm)
	want := []*Overlap{
		{ID1: "GDS1", ID2: "GSE1", Shared: 2, Len1: 2, Len2: 3},
		{ID1: "GDS1", ID2: "GSE2", Shared: 2, Len1: 2, Len2: 2},
		{ID1: "GSE1", ID2: "GSE2", Shared: 2, Len1: 3, Len2: 2},
	}
	if !cmp.Equal(got, want) {
		t.Errorf("unexpected overlaps:\n%s", cmp.Diff(want, got))
	}

	var buf bytes.Buffer
	err := WriteTable(&buf, got)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	const wantTable = `ID1	ID2	Overlapping	len(GSM1)	len(GSM2)
GDS1	GSE1	2	2	3
GDS1	GSE2	2	2	2
GSE1	GSE2	2	3	2
`
	if buf.String() != wantTable {
		var d bytes.Buffer
		diff.Text("got", "want", buf.String(), wantTable, &d, write.TerminalColor())
		t.Errorf("unexpected overlap table:\n%s", &d)
	}
	again, err := ReadOverlaps(&buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cmp.Equal(again, want) {
		t.Errorf("unexpected overlaps after round trip:\n%s", cmp.Diff(want, again))
	}
}

func date(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestClassify(t *testing.T) {
	overlaps := []*Overlap{
		{ID1: "A", ID2: "B", Shared: 2, Len1: 4, Len2: 2},
		{ID1: "A", ID2: "C", Shared: 2, Len1: 4, Len2: 2},
		{ID1: "B", ID2: "D", Shared: 1, Len1: 2, Len2: 3},
		{ID1: "D", ID2: "E", Shared: 3, Len1: 3, Len2: 3},
		{ID1: "F", ID2: "G", Shared: 2, Len1: 2, Len2: 2},
	}
	dates := map[string]time.Time{
		"A": date("Jan 01 2008"),
		"B": date("Jan 01 2006"),
		"C": date("Jan 01 2007"),
		"D": date("Jan 01 2005"),
		"F": date("Jan 01 2001"),
		"G": date("Jan 01 2002"),
	}
	got := Classify(overlaps, dates)
	want := &Classification{
		Duplicates:   []Pair{{A: "G", B: "F", Shared: 2}},
		OlderSubsets: []Pair{{A: "B", B: "A", Shared: 2}, {A: "C", B: "A", Shared: 2}},
		NewerPartial: []Pair{{A: "B", B: "D", Shared: 1}},
		Merges:       []Superset{{ID: "A", Samples: 4, Subsets: []string{"B", "C"}}},
	}
	if !cmp.Equal(got, want) {
		t.Errorf("unexpected classification:\n%s", cmp.Diff(want, got))
	}

	var buf bytes.Buffer
	err := WriteSupersets(&buf, MergesHeader, got.Merges)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	supersets, err := ReadSupersets(&buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cmp.Equal(supersets, got.Merges) {
		t.Errorf("unexpected supersets:\n%s", cmp.Diff(got.Merges, supersets))
	}

	buf.Reset()
	err = WritePairs(&buf, OlderSubsetsHeader, got.OlderSubsets, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pairs, err := ReadPairs(&buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cmp.Equal(pairs, got.OlderSubsets) {
		t.Errorf("unexpected pairs:\n%s", cmp.Diff(got.OlderSubsets, pairs))
	}
}

func TestReadDates(t *testing.T) {
	const table = "GSE\tDate\tOrganisms\nGSE1\tJan 02 2006\tHomo sapiens\nGSE2\t\t\n"
	got, err := ReadDates(strings.NewReader(table))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]time.Time{"GSE1": date("Jan 02 2006")}
	if !cmp.Equal(got, want) {
		t.Errorf("unexpected dates:\n%s", cmp.Diff(want, got))
	}
}

func TestTables(t *testing.T) {
	var buf bytes.Buffer
	err := WriteTable(&buf, testSeries)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	header := strings.SplitN(buf.String(), "\n", 2)[0]
	if want := "GSE\tDate\tOrganisms\tPlatforms\tGSMs\tPlatformTitles"; header != want {
		t.Errorf("unexpected header: got:%q want:%q", header, want)
	}
	got, err := ReadSeries(&buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cmp.Equal(got, testSeries) {
		t.Errorf("unexpected series:\n%s", cmp.Diff(testSeries, got))
	}
}

func TestGraph(t *testing.T) {
	g := NewGraph(testDatasets, testSeries, testPlatforms)
	for _, test := range []struct {
		name string
		got  []string
		want []string
	}{
		{name: "samples", got: g.Samples("gse1"), want: []string{"GSM1", "GSM2", "GSM3"}},
		{name: "containers", got: g.Containers("GSM1"), want: []string{"GDS1", "GSE1", "GSE2"}},
		{name: "series", got: g.Series("GDS1"), want: []string{"GSE1"}},
		{name: "datasets", got: g.Datasets("GSE1"), want: []string{"GDS1"}},
		{name: "accessions", got: g.Accessions("GPL1"), want: []string{"GDS1", "GSE1"}},
		{name: "unknown", got: g.Samples("GSE99"), want: nil},
	} {
		if !cmp.Equal(test.got, test.want) {
			t.Errorf("unexpected %s:\n%s", test.name, cmp.Diff(test.want, test.got))
		}
	}

	b, err := g.MarshalDOT("geo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Contains(b, []byte("hasSample")) {
		t.Errorf("missing edge label in DOT output:\n%s", b)
	}
}

func TestReports(t *testing.T) {
	var buf bytes.Buffer
	err := WriteDuplicatesHTML(&buf, "Duplicates", []Pair{{A: "GSE2", B: "GSE1"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	const want = `<html>
<title>Duplicates</title>
<body>
<p>Duplicates</p>
<table border='1'>
<tr><td>Series/Datasets</td></tr>
<tr><td><a href="http://www.ncbi.nlm.nih.gov/geo/query/acc.cgi?acc=GSE2">GSE2</a> and <a href="http://www.ncbi.nlm.nih.gov/geo/query/acc.cgi?acc=GSE1">GSE1</a></td></tr>
</table>
</body>
</html>
`
	if buf.String() != want {
		var d bytes.Buffer
		diff.Text("got", "want", buf.String(), want, &d, write.TerminalColor())
		t.Errorf("unexpected report:\n%s", &d)
	}

	buf.Reset()
	err = WriteSupersetsHTML(&buf, "Merges", "Merged series", []Superset{{ID: "A", Samples: 4, Subsets: []string{"B", "C"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), `acc=B">B</a>, <a href=`) {
		t.Errorf("unexpected superset report:\n%s", &buf)
	}
}

func TestDB(t *testing.T) {
	ctx := context.Background()
	db, err := OpenDB(ctx, filepath.Join(t.TempDir(), "geo.db"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer db.Close()

	err = db.Store(ctx, testDatasets, testSeries, testPlatforms, Overlaps(Map{"A": {"X"}, "B": {"X"}}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := db.Containers(ctx, "gsm1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []string{"GDS1", "GSE1", "GSE2"}; !cmp.Equal(got, want) {
		t.Errorf("unexpected containers:\n%s", cmp.Diff(want, got))
	}
}
