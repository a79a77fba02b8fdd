// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pcl

import (
	"bufio"
	"math"
	"os"
	"strings"
)

// Stats holds summary statistics of the values in a matrix.
type Stats struct {
	Rows int

	Min, Max, Mean float64

	Neg, Pos, Zero int
	Missing, Total int
}

// Stats returns summary statistics for the values in m. Mean is NaN if no
// value is present. When m holds Cells, blank cells trailing the last
// non-blank cell of a row are not counted as missing.
func (m *Matrix) Stats() Stats {
	s := Stats{Rows: m.Rows(), Min: 1e10, Max: -1e10}
	var sum float64
	for i, row := range m.Values {
		if i < len(m.Cells) {
			row = row[:m.Cells[i]]
		}
		for _, v := range row {
			if math.IsNaN(v) {
				s.Missing++
				continue
			}
			s.Total++
			sum += v
			s.Min = math.Min(s.Min, v)
			s.Max = math.Max(s.Max, v)
			switch {
			case v > 0:
				s.Pos++
			case v < 0:
				s.Neg++
			default:
				s.Zero++
			}
		}
	}
	s.Mean = sum / float64(s.Total)
	return s
}

// Inference holds the processing properties of a dataset inferred from its
// value statistics.
type Inference struct {
	// Channels is the inferred number of
	// array channels, 1 or 2.
	Channels int

	// Logged is whether the values appear
	// to be log transformed.
	Logged bool

	// ZerosAreMissing is whether zero values
	// appear to represent missing values.
	ZerosAreMissing bool

	// MVCutoff is the missing value cutoff,
	// "0", "2" or "NA".
	MVCutoff string
}

// Infer returns the dataset properties inferred from s. A dataset is single
// channel if it has no negative values or more than 7.5 positive values per
// negative value, and is considered logged if the mean is below 17. Zeros
// are taken to be missing values when there are more than five times as
// many zeros as missing values.
func (s Stats) Infer() Inference {
	inf := Inference{Channels: 2, MVCutoff: "NA"}
	if s.Neg == 0 || float64(s.Pos)/float64(s.Neg) > 7.5 {
		inf.Channels = 1
	}
	inf.Logged = s.Mean < 17
	inf.ZerosAreMissing = s.Zero > 5*s.Missing
	if inf.Channels == 1 {
		switch {
		case inf.Logged:
			inf.MVCutoff = "0"
		case s.Min > -500:
			inf.MVCutoff = "2"
		}
	}
	return inf
}

// Dims returns the number of sample columns and gene rows of the PCL file
// at path by counting header fields and lines. The first three columns and
// the first two lines are assumed to be labels and weights. An empty file
// has zero dimensions.
func Dims(path string) (cols, rows int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(nil, 16<<20)
	var lines int
	for sc.Scan() {
		if lines == 0 {
			cols = len(strings.Split(sc.Text(), "\t")) - 3
		}
		lines++
	}
	if err := sc.Err(); err != nil {
		return 0, 0, err
	}
	if lines == 0 {
		return 0, 0, nil
	}
	return cols, lines - 2, nil
}
