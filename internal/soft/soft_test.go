// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package soft

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/diff"
	"github.com/pkg/diff/write"

	"github.com/kortschak/troilkatt/internal/geo"
	"github.com/kortschak/troilkatt/internal/pcl"
)

const family = `^PLATFORM = GPL1
!Platform_title = test platform
!platform_table_begin
ID	ORF	SEQ
p1	YAL001C	ACGT
p2	YAL002W	ACGT
p3		ACGT
!platform_table_end
^SAMPLE = GSM2
!Sample_title = second
!Sample_platform_id = GPL1
!sample_table_begin
ID_REF	VALUE
p1	0
p2	1.25
p3	4
!sample_table_end
^SAMPLE = GSM1
!Sample_title = first
!Sample_platform_id = GPL1
!sample_table_begin
ID_REF	VALUE
p1	2.5
p2	0
p4	7
!sample_table_end
`

const familyPCL = `YORF	NAME	GWEIGHT	first	second
EWEIGHT			1	1
YAL001C	YAL001C	1	2.5	
YAL002W	YAL002W	1		1.25
`

func TestSniff(t *testing.T) {
	rep, err := Sniff(strings.NewReader(family), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := &Report{
		Columns: Columns{Probe: 0, Gene: 1, SampleProbe: 0, Value: 1, ZerosMissing: true},
		Matches: map[Query]int{PlatformProbe: 1, GeneName: 1, SampleProbe: 1, ExpressionValue: 1},
		Messages: map[Query][]string{
			PlatformProbe:   {"Matching column: 0: ID"},
			GeneName:        {"Matching column: 1: ORF"},
			SampleProbe:     {"Matching column: 0: ID_REF"},
			ExpressionValue: {"Matching column: 1: VALUE"},
			ZerosMissing:    {"'0' (no decimals) expression values found"},
		},
	}
	if !cmp.Equal(rep, want) {
		t.Errorf("unexpected report:\n%s", cmp.Diff(want, rep))
	}
	if !rep.Exact() {
		t.Error("expected exact match")
	}
}

var repeatedTableTests = []struct {
	name      string
	platform  string
	wantMatch int
	wantExact bool
}{
	{
		name:      "same_layout",
		platform:  "ID\tORF\tSEQ\np5\tYAL003W\tACGT\n",
		wantMatch: 1,
		wantExact: true,
	},
	{
		name:      "moved_columns",
		platform:  "SEQ\tID\tORF\nACGT\tp5\tYAL003W\n",
		wantMatch: 2,
		wantExact: false,
	},
}

func TestSniffRepeatedTables(t *testing.T) {
	for _, test := range repeatedTableTests {
		t.Run(test.name, func(t *testing.T) {
			in := family + "^PLATFORM = GPL2\n!platform_table_begin\n" + test.platform + "!platform_table_end\n"
			rep, err := Sniff(strings.NewReader(in), nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for _, q := range []Query{PlatformProbe, GeneName} {
				if rep.Matches[q] != test.wantMatch {
					t.Errorf("unexpected match count for %v: got:%d want:%d", q, rep.Matches[q], test.wantMatch)
				}
			}
			if rep.Exact() != test.wantExact {
				t.Errorf("unexpected exactness: got:%t want:%t", rep.Exact(), test.wantExact)
			}
		})
	}
}

func TestSniffPredictGene(t *testing.T) {
	in := strings.Replace(family, "ID\tORF\tSEQ", "ID\tNAME_X\tSEQ", 1)
	genes := map[string]bool{"YAL001C": true, "YAL002W": true}
	rep, err := Sniff(strings.NewReader(in), genes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.Columns.Gene != 1 {
		t.Errorf("unexpected gene column: got:%d want:1", rep.Columns.Gene)
	}
	want := []string{
		"No matching column found",
		"Predicting gene name column",
		"Top 3 gene counts: 2, 0, 0",
		"Column NAME_X has max gene count: 2 of 3 lines (66.67%)",
	}
	if got := rep.Messages[GeneName]; !cmp.Equal(got, want) {
		t.Errorf("unexpected gene messages:\n%s", cmp.Diff(want, got))
	}

	rep, err = Sniff(strings.NewReader(in), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.Complete() {
		t.Error("expected incomplete report without gene set")
	}
}

func TestZeroCounter(t *testing.T) {
	var z zeroCounter
	for _, v := range []string{"0.0000", "0.000", "1.5", "abc"} {
		z.count(v)
	}
	if z.asValue != 2 || z.asMissing != 0 || z.zerosMissing() {
		t.Errorf("unexpected counts for decimal zeros: %+v", z)
	}
	for _, v := range []string{"0", "0.0", "-0.00", "", "null"} {
		z.count(v)
	}
	if z.asValue != 2 || z.asMissing != 3 || !z.zerosMissing() {
		t.Errorf("unexpected counts for missing zeros: %+v", z)
	}
	if !z.empty || !z.null || !z.integer {
		t.Errorf("unexpected value kinds: %+v", z)
	}
}

func TestColumns(t *testing.T) {
	c := Columns{Probe: 0, Gene: 2, SampleProbe: 0, Value: 1, ZerosMissing: true}
	var buf bytes.Buffer
	_, err := c.WriteTo(&buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := buf.String(), "0\n2\n0\n1\n1\n"; got != want {
		t.Errorf("unexpected args file: got:%q want:%q", got, want)
	}
	got, err := ReadColumns(&buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != c {
		t.Errorf("unexpected columns: got:%+v want:%+v", got, c)
	}

	for _, in := range []string{"0\n1\n2\n3\n", "0\n1\n-2\n3\n0\n", "0\nx\n"} {
		_, err = ReadColumns(strings.NewReader(in))
		if err == nil {
			t.Errorf("expected error for %q", in)
		}
	}
}

func TestConvert(t *testing.T) {
	cols := Columns{Probe: 0, Gene: 1, SampleProbe: 0, Value: 1, ZerosMissing: true}
	m, err := Convert(strings.NewReader(family), cols)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var buf bytes.Buffer
	err = m.Write(&buf, -1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	checkText(t, buf.String(), familyPCL)

	cols.ZerosMissing = false
	m, err = Convert(strings.NewReader(family), cols)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := m.Values[0][1]; got != 0 {
		t.Errorf("unexpected zero value: got:%v want:0", got)
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

const datasetHeader = `^DATASET = GDS1234
!dataset_title = Heat shock time course
!dataset_description = Cells exposed to heat
!dataset_platform_organism = Saccharomyces cerevisiae
!dataset_platform = GPL90
!dataset_pubmed_id = 12345
!dataset_feature_count = 6400
!dataset_channel_count = 1
!dataset_sample_count = 2
!dataset_value_type = count
!dataset_update_date = Jan 02 2006
!dataset_table_begin
ID_REF	IDENTIFIER	GSM1	GSM2
!dataset_title = not a header
`

func TestDatasetHeader(t *testing.T) {
	got, err := DatasetHeader(strings.NewReader(datasetHeader))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := &pcl.InfoRecord{
		DatasetID:   "GDS1234",
		Organism:    "Saccharomyces cerevisiae",
		Platform:    "GPL90",
		ValueType:   "count",
		ChannelInfo: "1",
		Title:       "Heat shock time course",
		Description: "Cells exposed to heat",
		PubMedID:    "12345",
		Features:    "6400",
		Samples:     "2",
		Date:        "Jan 02 2006",
	}
	if !cmp.Equal(got, want) {
		t.Errorf("unexpected header:\n%s", cmp.Diff(want, got))
	}
}

func TestMeta(t *testing.T) {
	series := `!Series_submission_date = Jan 02 2006
!Series_platform_id = GPL1
!Series_platform_id = GPL2
!Platform_organism = Homo sapiens
!Platform_organism = Homo sapiens
!Platform_title = Array v2
!Sample_geo_accession = GSM1
!Sample_geo_accession = GSM2
`
	s, err := SeriesMeta(SeriesID("/meta/GSE10_family.soft"), strings.NewReader(series))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantSeries := &geo.Series{
		GSE:            "GSE10",
		Date:           "Jan 02 2006",
		Organisms:      geo.List{"Homo sapiens"},
		Platforms:      geo.List{"GPL1", "GPL2"},
		Samples:        geo.List{"GSM1", "GSM2"},
		PlatformTitles: geo.List{"Array v2"},
	}
	if !cmp.Equal(s, wantSeries) {
		t.Errorf("unexpected series:\n%s", cmp.Diff(wantSeries, s))
	}

	dataset := `!dataset_update_date = Feb 03 2007
!dataset_reference_series = GSE10
!dataset_sample_organism = Homo sapiens
!dataset_sample_count = 2
!dataset_feature_count = 100
!dataset_platform = GPL1
!dataset_platform_organism = Homo sapiens
!subset_sample_id = GSM1,GSM2
!subset_sample_id = GSM2
`
	d, err := DatasetMeta(AccessionID("GDS5.soft.gz"), strings.NewReader(dataset))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantDataset := &geo.Dataset{
		GDS:      "GDS5",
		Date:     "Feb 03 2007",
		Organism: "Homo sapiens",
		Platform: "GPL1",
		NSamples: "2",
		NGenes:   "100",
		Series:   geo.List{"GSE10"},
		Samples:  geo.List{"GSM1", "GSM2"},
	}
	if !cmp.Equal(d, wantDataset) {
		t.Errorf("unexpected dataset:\n%s", cmp.Diff(wantDataset, d))
	}
}

func TestBatch(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in")
	out := filepath.Join(dir, "out")
	logs := filepath.Join(dir, "log")
	for _, d := range []string{in, out, logs} {
		err := os.Mkdir(d, 0o755)
		if err != nil {
			t.Fatal(err)
		}
	}
	files := map[string]string{
		"GSE1_family.soft": family,
		"GSE2_family.soft": strings.Replace(family, "ID_REF", "PROBE", -1),
		"notes.txt":        "not soft",
	}
	var paths []string
	for name, text := range files {
		p := filepath.Join(in, name)
		err := os.WriteFile(p, []byte(text), 0o644)
		if err != nil {
			t.Fatal(err)
		}
		paths = append(paths, p)
	}
	sort.Strings(paths)

	b := Batch{OutDir: out, LogDir: logs, Workers: 2}
	sum, err := b.Run(context.Background(), paths)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.Files != 2 || sum.Exact != 1 || sum.Missing != 1 || sum.Converted != 1 {
		t.Errorf("unexpected summary: %+v", sum)
	}

	got, err := os.ReadFile(filepath.Join(out, "GSE1_family.pcl"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	checkText(t, string(got), familyPCL)

	for name, want := range map[string]string{
		"GSE1_family.soft.args":     "0\n1\n0\n1\n1\n",
		"missing_sp.txt":            filepath.Join(in, "GSE2_family.soft") + "\n",
		"failures.log":              filepath.Join(in, "GSE2_family.soft") + "\n",
		"zero_to_missing_value.txt": filepath.Join(in, "GSE1_family.soft") + "\n" + filepath.Join(in, "GSE2_family.soft") + "\n",
	} {
		got, err := os.ReadFile(filepath.Join(logs, name))
		if err != nil {
			t.Errorf("unexpected error reading %s: %v", name, err)
			continue
		}
		if string(got) != want {
			t.Errorf("unexpected contents of %s: got:%q want:%q", name, got, want)
		}
	}
	if _, err := os.Stat(filepath.Join(out, "GSE2_family.pcl")); !os.IsNotExist(err) {
		t.Errorf("unexpected output for incomplete file: %v", err)
	}
}
