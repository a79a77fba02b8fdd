// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package illumina

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/diff"
	"github.com/pkg/diff/write"
)

func TestAnalyze(t *testing.T) {
	tests := []struct {
		heading string
		want    Columns
		wantErr bool
	}{
		{
			heading: "ID_REF\tSYMBOL\tA.AVG_Signal\tA.Detection Pval\tB.AVG_Signal\tB.Detection Pval",
			want: Columns{
				Labels: []string{
					"ID_REF.COL.0", "SYMBOL.COL.1", "A.AVG_Signal.COL.2",
					"A.Detection Pval.COL.3", "B.AVG_Signal.COL.4", "B.Detection Pval.COL.5",
				},
				ID:      0,
				PValues: []int{3, 5},
				Samples: []int{2, 4},
			},
		},
		{
			heading: "PROBE_ID\tSYMBOL\t S1 \tS1 Detection Pval\tS2\tBEAD_STDEV\t",
			want: Columns{
				Labels: []string{
					"PROBE_ID.COL.0", "SYMBOL.COL.1", "S1.COL.2",
					"S1 Detection Pval.COL.3", "S2.COL.4", "BEAD_STDEV.COL.5",
				},
				ID:       0,
				PValues:  []int{3},
				Excluded: []int{1, 5},
				Samples:  []int{2, 4},
			},
		},
		{
			heading: "Name\tValue",
			wantErr: true,
		},
		{
			heading: "ID_REF\tSYMBOL\tDetection Pval",
			wantErr: true,
		},
	}
	for _, test := range tests {
		got, err := Analyze(strings.Split(test.heading, "\t"))
		if (err != nil) != test.wantErr {
			t.Errorf("unexpected error for %q: %v", test.heading, err)
			continue
		}
		if test.wantErr {
			continue
		}
		if !cmp.Equal(got, test.want) {
			t.Errorf("unexpected columns for %q:\n%s", test.heading, cmp.Diff(test.want, got))
		}
	}
}

const table = `Illumina HumanHT-12 V3.0 expression beadchip
Non-normalized data
ID_REF	SYMBOL	A.AVG_Signal	A.Detection Pval	B.AVG_Signal	B.Detection Pval
	Symbol	AVG	Pval	AVG	Pval
P1	g1	1	0.01	5	0.01
P2	g2	2	0.01	4	0.01
P3	g3	3	0.01	3	0.01
P4	g4	4	0.01	2	0.01
P5	g5	5	0.01	1	0.01
`

func TestReadTable(t *testing.T) {
	got, err := ReadTable(strings.NewReader(table))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := &Table{
		Samples: []string{"A.AVG_Signal.COL.2", "B.AVG_Signal.COL.4"},
		Values: map[string][]float64{
			"P1": {1, 5}, "P2": {2, 4}, "P3": {3, 3}, "P4": {4, 2}, "P5": {5, 1},
		},
	}
	if !cmp.Equal(got, want) {
		t.Errorf("unexpected table:\n%s", cmp.Diff(want, got))
	}
	if top, want := got.TopProbes(3), []string{"P1", "P5", "P2"}; !cmp.Equal(top, want) {
		t.Errorf("unexpected top probes: got:%v want:%v", top, want)
	}

	_, err = ReadTable(strings.NewReader("no heading here\n"))
	if err != ErrNoHeading {
		t.Errorf("unexpected error for missing heading: %v", err)
	}
	_, err = ReadTable(strings.NewReader("ID_REF\tA.AVG_Signal\nP1\t1\nP2\tx\n"))
	if err == nil {
		t.Error("expected error for invalid value")
	}
}

func TestRanks(t *testing.T) {
	got := ranks([]float64{10, 20, 20, 5})
	want := []float64{2, 3.5, 3.5, 1}
	if !cmp.Equal(got, want) {
		t.Errorf("unexpected ranks: got:%v want:%v", got, want)
	}
	if rho := Spearman([]float64{1, 2, 3, 4}, []float64{1, 4, 9, 16}); math.Abs(rho-1) > 1e-12 {
		t.Errorf("unexpected correlation for monotonic data: %v", rho)
	}
	if rho := Spearman([]float64{1, 2, 3, 4}, []float64{4, 3, 2, 1}); math.Abs(rho+1) > 1e-12 {
		t.Errorf("unexpected correlation for reversed data: %v", rho)
	}
}

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		err := os.MkdirAll(filepath.Dir(path), 0o755)
		if err != nil {
			t.Fatal(err)
		}
		err = os.WriteFile(path, []byte(content), 0o644)
		if err != nil {
			t.Fatal(err)
		}
	}
}

func TestConvert(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"input/GSE100_non-normalized.txt": table,
		"meta/GPL6947/GSE100":             "GSM1|sample one\nGSM2|sample two\nGSM3\n",
		"gsm/GPL6947/GSM1-tbl-1.txt":      "P1\t10\t0.01\nP2\t20\t0.01\nP3\t30\t0.01\nP4\t40\t0.01\nP5\t50\t0.01\nP6\t60\t0.01\nP7\t\t0.5\n",
		"gsm/GPL6947/GSM2-tbl-1.txt":      "P1\t50\nP2\t40\nP3\t30\nP4\t20\nP5\t10\n",
	})
	c := Converter{
		MetaDir:  filepath.Join(root, "meta"),
		GSMDir:   filepath.Join(root, "gsm"),
		OutDir:   filepath.Join(root, "out"),
		Platform: "GPL6947",
	}
	in := filepath.Join(root, "input", "GSE100_non-normalized.txt")
	got, err := c.Convert(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := filepath.Join(c.OutDir, "GSE100-GPL6947.pcl"); got != want {
		t.Errorf("unexpected output path: got:%s want:%s", got, want)
	}
	b, err := os.ReadFile(got)
	if err != nil {
		t.Fatal(err)
	}
	const want = `PROBE	GSM1	GSM2
P1	1.00000	5.00000
P2	2.00000	4.00000
P3	3.00000	3.00000
P4	4.00000	2.00000
P5	5.00000	1.00000
`
	if string(b) != want {
		var buf bytes.Buffer
		diff.Text("got", "want", string(b), want, &buf, write.TerminalColor())
		t.Errorf("unexpected PCL:\n%s", &buf)
	}

	got, err = c.Convert(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := filepath.Join(c.OutDir, "GSE100-GPL6947_1.pcl"); got != want {
		t.Errorf("unexpected output path for repeated conversion: got:%s want:%s", got, want)
	}

	_, err = c.Convert(filepath.Join(root, "input", "series.txt"))
	if err == nil {
		t.Error("expected error for file without series identifier")
	}
}
