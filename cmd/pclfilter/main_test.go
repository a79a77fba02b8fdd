// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pkg/diff"
	"github.com/pkg/diff/write"

	"github.com/kortschak/troilkatt/internal/pcl"
)

const zeroMissing = `YORF	NAME	GWEIGHT	A	B	C
EWEIGHT			1	1	1
g1	G1	1	0	0	2
g2	G2	1	0	1.5	2
g3	G3	1	0	0	
`

var filterTests = []struct {
	name        string
	zeros       bool
	wantRemoved int
	want        string
}{
	{
		name:        "values_kept",
		zeros:       false,
		wantRemoved: 0,
		want: `YORF	NAME	GWEIGHT	A	B	C
EWEIGHT			1	1	1
g1	G1	1	0	0	2
g2	G2	1	0	1.5	2
g3	G3	1	0	0	
`,
	},
	{
		name:        "zeros_missing",
		zeros:       true,
		wantRemoved: 2,
		want: `YORF	NAME	GWEIGHT	A	B	C
EWEIGHT			1	1	1
g2	G2	1		1.5	2
`,
	},
}

func TestFilter(t *testing.T) {
	for _, test := range filterTests {
		t.Run(test.name, func(t *testing.T) {
			m, err := pcl.Read(strings.NewReader(zeroMissing))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			removed := filter(m, 0.5, test.zeros)
			if removed != test.wantRemoved {
				t.Errorf("unexpected number of removed genes: got:%d want:%d", removed, test.wantRemoved)
			}
			var buf bytes.Buffer
			err = m.Write(&buf, -1)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
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
