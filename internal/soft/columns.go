// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package soft

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Columns holds the zero-based table columns used to convert a SOFT
// series family file to a PCL matrix.
type Columns struct {
	// Probe and Gene are the platform table
	// columns holding probe IDs and gene names.
	Probe, Gene int

	// SampleProbe and Value are the sample
	// table columns holding probe IDs and
	// expression values.
	SampleProbe, Value int

	// ZerosMissing is whether zero expression
	// values are converted to missing values.
	ZerosMissing bool
}

func (c *Columns) get(q Query) *int {
	switch q {
	case PlatformProbe:
		return &c.Probe
	case GeneName:
		return &c.Gene
	case SampleProbe:
		return &c.SampleProbe
	case ExpressionValue:
		return &c.Value
	default:
		panic(fmt.Sprintf("soft: invalid column query: %q", q))
	}
}

// WriteTo writes the columns to w as an args file: the four column
// numbers followed by 1 or 0 for zero conversion, one per line.
func (c Columns) WriteTo(w io.Writer) (int64, error) {
	var zamv int
	if c.ZerosMissing {
		zamv = 1
	}
	n, err := fmt.Fprintf(w, "%d\n%d\n%d\n%d\n%d\n", c.Probe, c.Gene, c.SampleProbe, c.Value, zamv)
	return int64(n), err
}

// ReadColumns reads an args file written by Columns.WriteTo.
func ReadColumns(r io.Reader) (Columns, error) {
	var vals [5]int
	sc := bufio.NewScanner(r)
	var n int
	for n < len(vals) && sc.Scan() {
		v, err := strconv.Atoi(strings.TrimSpace(sc.Text()))
		if err != nil {
			return Columns{}, fmt.Errorf("line %d: %w", n+1, err)
		}
		if v < 0 {
			return Columns{}, fmt.Errorf("line %d: negative column: %d", n+1, v)
		}
		vals[n] = v
		n++
	}
	if err := sc.Err(); err != nil {
		return Columns{}, err
	}
	if n != len(vals) {
		return Columns{}, fmt.Errorf("too few values in args file: %d", n)
	}
	return Columns{
		Probe:        vals[0],
		Gene:         vals[1],
		SampleProbe:  vals[2],
		Value:        vals[3],
		ZerosMissing: vals[4] == 1,
	}, nil
}
