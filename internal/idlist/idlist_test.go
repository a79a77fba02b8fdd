// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package idlist

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/diff"
	"github.com/pkg/diff/write"
)

func TestCompare(t *testing.T) {
	a, err := Read(strings.NewReader("GSE3\nGSE1\n  GSE2 \n\nGSE1\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := Read(strings.NewReader("GSE2\nGSE4\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	onlyA, onlyB := Compare(a, b)
	if want := []string{"GSE1", "GSE3"}; !cmp.Equal(onlyA, want) {
		t.Errorf("unexpected ids only in a:\n%s", cmp.Diff(want, onlyA))
	}
	if want := []string{"GSE4"}; !cmp.Equal(onlyB, want) {
		t.Errorf("unexpected ids only in b:\n%s", cmp.Diff(want, onlyB))
	}
}

var extractTests = []struct {
	in      string
	delim   string
	col     int
	want    string
	wantErr bool
}{
	{
		in:    "drwxr-xr-x - troilkatt /geo/GSE1.soft.gz\n-rw-r--r-- 3 troilkatt /geo/GSE2.soft.gz\nFound 2 items\n",
		delim: " ",
		col:   3,
		want:  "/geo/GSE1.soft.gz\n/geo/GSE2.soft.gz\n",
	},
	{
		in:    "GSE1.1234.soft.gz\nGSE2.1234.soft.gz\n",
		delim: ".",
		col:   0,
		want:  "GSE1\nGSE2\n",
	},
	{
		in:      "GSE1\n",
		delim:   ".",
		col:     -1,
		wantErr: true,
	},
}

func TestExtract(t *testing.T) {
	for _, test := range extractTests {
		var buf strings.Builder
		err := Extract(&buf, strings.NewReader(test.in), test.delim, test.col)
		if (err != nil) != test.wantErr {
			t.Errorf("unexpected error for %q: %v", test.in, err)
		}
		if err != nil {
			continue
		}
		got := buf.String()
		if got != test.want {
			var d strings.Builder
			diff.Text("got", "want", got, test.want, &d, write.TerminalColor())
			t.Errorf("unexpected result:\n%s", &d)
		}
	}
}
