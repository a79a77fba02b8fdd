// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pcl

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/pkg/diff"
	"github.com/pkg/diff/write"
)

var nan = math.NaN()

var readWriteTests = []struct {
	name string
	in   string
	prec int
	want string
}{
	{
		name: "gweight",
		in: `YORF	NAME	GWEIGHT	A	B	C
EWEIGHT			1	1	1
g1	G1	1	1.5		3

g2	G2	2	-2	null	0
`,
		prec: -1,
		want: `YORF	NAME	GWEIGHT	A	B	C
EWEIGHT			1	1	1
g1	G1	1	1.5		3
g2	G2	2	-2		0
`,
	},
	{
		name: "no_gweight",
		in: `ID	NAME	A	B
g1	G1	1	2
g2	G2	0.25
`,
		prec: 3,
		want: `YORF	NAME	GWEIGHT	A	B
EWEIGHT			1	1
g1	G1	1	1.000	2.000
g2	G2	1	0.250	
`,
	},
}

func TestReadWrite(t *testing.T) {
	for _, test := range readWriteTests {
		t.Run(test.name, func(t *testing.T) {
			m, err := Read(strings.NewReader(test.in))
			if err != nil {
				t.Fatalf("unexpected error reading matrix: %v", err)
			}
			var buf bytes.Buffer
			err = m.Write(&buf, test.prec)
			if err != nil {
				t.Fatalf("unexpected error writing matrix: %v", err)
			}
			got := buf.String()
			if got != test.want {
				var d bytes.Buffer
				diff.Text("got", "want", got, test.want, &d, write.TerminalColor())
				t.Errorf("unexpected output:\n%s", &d)
			}
		})
	}
}

func TestReadErrors(t *testing.T) {
	for _, in := range []string{
		"",
		"YORF\tNAME\n",
		"YORF\tNAME\tA\ng1\tG1\t1\t2\n",
	} {
		_, err := Read(strings.NewReader(in))
		if err == nil {
			t.Errorf("expected error for %q", in)
		}
	}
}

func newMatrix(values ...[]float64) *Matrix {
	m := &Matrix{}
	for i := range values[0] {
		m.Samples = append(m.Samples, string(rune('A'+i)))
	}
	for i, row := range values {
		id := string(rune('a' + i))
		m.Append(id, strings.ToUpper(id), 1, row)
	}
	return m
}

var approx = cmp.Options{cmpopts.EquateApprox(0, 1e-9), cmpopts.EquateNaNs()}

func TestTransforms(t *testing.T) {
	m := newMatrix(
		[]float64{1, 2, 4},
		[]float64{0, -4, nan},
		[]float64{0, 0, 0},
	)

	m.DivideByMedian()
	want := [][]float64{{0.5, 1, 2}, {0, -4, nan}, {0, 0, 0}}
	if !cmp.Equal(m.Values, want, approx) {
		t.Errorf("unexpected median division:\n%s", cmp.Diff(want, m.Values, approx))
	}

	m.Log2()
	z := math.Log2(0.001)
	want = [][]float64{{-1, 0, 1}, {z, -2, nan}, {z, z, z}}
	if !cmp.Equal(m.Values, want, approx) {
		t.Errorf("unexpected log transform:\n%s", cmp.Diff(want, m.Values, approx))
	}

	m.Normalize()
	s := math.Sqrt(1.5)
	want = [][]float64{{-s, 0, s}, {-1, 1, nan}, {0, 0, 0}}
	if !cmp.Equal(m.Values, want, approx) {
		t.Errorf("unexpected normalization:\n%s", cmp.Diff(want, m.Values, approx))
	}
}

func TestFilterPresent(t *testing.T) {
	m := newMatrix(
		[]float64{1, nan, nan},
		[]float64{1, 2, nan},
		[]float64{nan, nan, nan},
		[]float64{1, 2, 3},
	)
	removed := m.FilterPresent(0.5)
	if removed != 2 {
		t.Errorf("unexpected number of removed rows: got:%d want:2", removed)
	}
	if want := []string{"b", "d"}; !cmp.Equal(m.IDs, want) {
		t.Errorf("unexpected remaining rows: got:%v want:%v", m.IDs, want)
	}
}

func TestDivLogNormOutput(t *testing.T) {
	m, err := Read(strings.NewReader("YORF\tNAME\tGWEIGHT\tA\tB\nyal001c\tabc1\t2\t1\t4\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m.DivideByMedian()
	m.Log2()
	m.Normalize()
	m.UpperCase()
	m.ResetWeights()
	var buf bytes.Buffer
	err = m.Write(&buf, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := buf.String()
	want := "YORF\tNAME\tGWEIGHT\tA\tB\nEWEIGHT\t\t\t1\t1\nYAL001C\tABC1\t1\t-1.000\t1.000\n"
	if got != want {
		var d bytes.Buffer
		diff.Text("got", "want", got, want, &d, write.TerminalColor())
		t.Errorf("unexpected output:\n%s", &d)
	}
}

func TestFilterPresentCells(t *testing.T) {
	m := mustRead("YORF\tNAME\tGWEIGHT\tA\tB\ng1\tG1\t1\t1\t\ng2\tG2\t1\t1\t2\n")
	m.FilterPresent(1)
	if want := []int{2}; !cmp.Equal(m.Cells, want) {
		t.Errorf("unexpected cells: got:%v want:%v", m.Cells, want)
	}
}

func TestZerosToMissing(t *testing.T) {
	m := newMatrix([]float64{0, 1, nan})
	m.ZerosToMissing()
	want := [][]float64{{nan, 1, nan}}
	if !cmp.Equal(m.Values, want, approx) {
		t.Errorf("unexpected values:\n%s", cmp.Diff(want, m.Values, approx))
	}
}

var statsTests = []struct {
	name      string
	m         *Matrix
	wantStats Stats
	wantInf   Inference
}{
	{
		name: "two_channel",
		m: newMatrix(
			[]float64{1.5, nan, 3},
			[]float64{-2, nan, 0},
		),
		wantStats: Stats{Rows: 2, Min: -2, Max: 3, Mean: 0.625, Neg: 1, Pos: 2, Zero: 1, Missing: 2, Total: 4},
		wantInf:   Inference{Channels: 2, Logged: true, MVCutoff: "NA"},
	},
	{
		name: "single_channel_raw",
		m: newMatrix(
			[]float64{100, 200, 0},
			[]float64{300, 0, 0},
		),
		wantStats: Stats{Rows: 2, Min: 0, Max: 300, Mean: 100, Pos: 3, Zero: 3, Total: 6},
		wantInf:   Inference{Channels: 1, ZerosAreMissing: true, MVCutoff: "2"},
	},
	{
		name:      "single_channel_logged",
		m:         newMatrix([]float64{1, 2, nan}),
		wantStats: Stats{Rows: 1, Min: 1, Max: 2, Mean: 1.5, Pos: 2, Missing: 1, Total: 2},
		wantInf:   Inference{Channels: 1, Logged: true, MVCutoff: "0"},
	},
	{
		name: "trailing_blanks",
		m: mustRead("YORF\tNAME\tGWEIGHT\tA\tB\tC\tD\n" +
			"EWEIGHT\t\t\t1\t1\t1\t1\n" +
			"g1\tG1\t1\t0\t0\t\t\n" +
			"g2\tG2\t1\t0\t5\t \t\n"),
		wantStats: Stats{Rows: 2, Min: 0, Max: 5, Mean: 1.25, Pos: 1, Zero: 3, Total: 4},
		wantInf:   Inference{Channels: 1, Logged: true, ZerosAreMissing: true, MVCutoff: "0"},
	},
	{
		name: "interior_blank",
		m: mustRead("YORF\tNAME\tGWEIGHT\tA\tB\tC\n" +
			"g1\tG1\t1\t\t2\t\n"),
		wantStats: Stats{Rows: 1, Min: 2, Max: 2, Mean: 2, Pos: 1, Missing: 1, Total: 1},
		wantInf:   Inference{Channels: 1, Logged: true, MVCutoff: "0"},
	},
}

func mustRead(s string) *Matrix {
	m, err := Read(strings.NewReader(s))
	if err != nil {
		panic(err)
	}
	return m
}

func TestStats(t *testing.T) {
	for _, test := range statsTests {
		t.Run(test.name, func(t *testing.T) {
			got := test.m.Stats()
			if !cmp.Equal(got, test.wantStats, approx) {
				t.Errorf("unexpected stats:\n%s", cmp.Diff(test.wantStats, got, approx))
			}
			inf := got.Infer()
			if !cmp.Equal(inf, test.wantInf) {
				t.Errorf("unexpected inference:\n%s", cmp.Diff(test.wantInf, inf))
			}
		})
	}
}

func TestDims(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.pcl")
	err := os.WriteFile(path, []byte("YORF\tNAME\tGWEIGHT\tA\tB\nEWEIGHT\t\t\t1\t1\ng1\tG1\t1\t1\t2\ng2\tG2\t1\t3\t4\n"), 0o644)
	if err != nil {
		t.Fatal(err)
	}
	cols, rows, err := Dims(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cols != 2 || rows != 2 {
		t.Errorf("unexpected dimensions: got:%dx%d want:2x2", cols, rows)
	}
}

func infoRow(file, pubmed string) string {
	fields := []string{
		file, "GDS1", "Homo sapiens", "GPL96", "count", "1", "title", "description", pubmed, "22283", "12", "Jan 02 2006",
		"-1", "10", "2.5", "3", "100", "0", "4", "103", "1", "1", "0", "0",
	}
	return strings.Join(fields, "\t")
}

func TestInfo(t *testing.T) {
	header := strings.Join([]string{
		"File", "DatasetID", "Organism", "Platform", "ValueType", "#channels", "Title", "Description", "PubMedID", "#features", "#samples", "date",
		"Min", "Max", "Mean", "#Neg", "#Pos", "#Zero", "#MV", "#Total", "#Channels", "logged", "zerosAreMVs", "MVcutoff",
	}, "\t")
	in := strings.Join([]string{
		header,
		"# comment",
		infoRow("GDS1.pcl", "123"),
		"short\trow",
		infoRow("GDS2.pcl", "456"),
	}, "\n") + "\n"

	records, bad, err := ReadInfo(strings.NewReader(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bad) != 1 {
		t.Errorf("unexpected number of bad rows: got:%d want:1", len(bad))
	}
	if len(records) != 2 {
		t.Fatalf("unexpected number of records: got:%d want:2", len(records))
	}
	want := &InfoRecord{
		File: "GDS1.pcl", DatasetID: "GDS1", Organism: "Homo sapiens", Platform: "GPL96",
		ValueType: "count", ChannelInfo: "1", Title: "title", Description: "description",
		PubMedID: "123", Features: "22283", Samples: "12", Date: "Jan 02 2006",
		Min: "-1", Max: "10", Mean: "2.5", Neg: 3, Pos: 100, Missing: 4, Total: 103,
		Channels: 1, Logged: 1, MVCutoff: "0",
	}
	if !cmp.Equal(records[0], want) {
		t.Errorf("unexpected record:\n%s", cmp.Diff(want, records[0]))
	}

	var buf bytes.Buffer
	err = WritePubMedList(&buf, records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := buf.String(), "GDS1.pcl\t123\nGDS2.pcl\t456\n"; got != want {
		t.Errorf("unexpected pubmed list: got:%q want:%q", got, want)
	}

	buf.Reset()
	err = WriteInfo(&buf, records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	again, _, err := ReadInfo(&buf)
	if err != nil {
		t.Fatalf("unexpected error re-reading info: %v", err)
	}
	if !cmp.Equal(again, records) {
		t.Errorf("unexpected round trip:\n%s", cmp.Diff(records, again))
	}
}

func TestSetStats(t *testing.T) {
	var r InfoRecord
	r.SetStats(statsTests[1].wantStats)
	want := InfoRecord{
		Min: "0", Max: "300", Mean: "100", Pos: 3, Zero: 3, Total: 6,
		Channels: 1, ZerosMV: 1, MVCutoff: "2",
	}
	if !cmp.Equal(r, want) {
		t.Errorf("unexpected record:\n%s", cmp.Diff(want, r))
	}
}

func TestSummarize(t *testing.T) {
	m := newMatrix(
		[]float64{1, 2},
		[]float64{2, 4},
		[]float64{3, 6},
	)
	s, err := m.Summarize("rank_one", 1e-8, 0.9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Rows != 3 || s.Cols != 2 {
		t.Errorf("unexpected dimensions: got:%dx%d want:3x2", s.Rows, s.Cols)
	}
	if len(s.Sigma) != 2 {
		t.Fatalf("unexpected number of singular values: got:%d want:2", len(s.Sigma))
	}
	if want := math.Sqrt(70); math.Abs(s.Sigma[0]-want) > 1e-9 {
		t.Errorf("unexpected first singular value: got:%v want:%v", s.Sigma[0], want)
	}
	if s.Sigma[1] > 1e-8 {
		t.Errorf("unexpected second singular value: got:%v want:0", s.Sigma[1])
	}

	err = s.Plot(filepath.Join(t.TempDir(), "sigma.png"))
	if err != nil {
		t.Errorf("unexpected error plotting: %v", err)
	}

	_, err = (&Matrix{}).Summarize("empty", 0, 0.9)
	if err != ErrEmpty {
		t.Errorf("unexpected error for empty matrix: got:%v want:%v", err, ErrEmpty)
	}
}
