// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pcl

import (
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// DivideByMedian divides the present values of each row by the row's
// median present value. The median of an even number of values is the
// upper of the two central values. Rows without present values or with
// a zero median are left unaltered.
func (m *Matrix) DivideByMedian() {
	for _, row := range m.Values {
		present := presentValues(row)
		if len(present) == 0 {
			continue
		}
		sort.Float64s(present)
		median := present[len(present)/2]
		if median == 0 {
			continue
		}
		for j, v := range row {
			if !math.IsNaN(v) {
				row[j] = v / median
			}
		}
	}
}

// zeroLog2 is the value used for the log of exactly zero values.
var zeroLog2 = math.Log2(0.001)

// Log2 replaces each present value x with its sign preserving base 2
// logarithm. Zero values are replaced with log2(0.001).
func (m *Matrix) Log2() {
	for _, row := range m.Values {
		for j, v := range row {
			switch {
			case math.IsNaN(v):
			case v > 0:
				row[j] = math.Log2(v)
			case v < 0:
				row[j] = -math.Log2(-v)
			default:
				row[j] = zeroLog2
			}
		}
	}
}

// Normalize shifts the present values of each row to zero mean and scales
// them to unit population standard deviation. Rows with zero deviation are
// only shifted.
func (m *Matrix) Normalize() {
	for _, row := range m.Values {
		present := presentValues(row)
		if len(present) == 0 {
			continue
		}
		mean, variance := stat.PopMeanVariance(present, nil)
		sd := math.Sqrt(variance)
		for j, v := range row {
			if math.IsNaN(v) {
				continue
			}
			v -= mean
			if sd > 0 {
				v /= sd
			}
			row[j] = v
		}
	}
}

// ZerosToMissing replaces exactly zero values with missing values.
func (m *Matrix) ZerosToMissing() {
	for _, row := range m.Values {
		for j, v := range row {
			if v == 0 {
				row[j] = math.NaN()
			}
		}
	}
}

// FilterPresent removes rows that have fewer than ceil(frac*cols) present
// values and returns the number of rows removed.
func (m *Matrix) FilterPresent(frac float64) int {
	required := int(math.Ceil(float64(m.Cols()) * frac))
	var n int
	for i, row := range m.Values {
		if len(presentValues(row)) < required {
			continue
		}
		m.IDs[n] = m.IDs[i]
		m.Names[n] = m.Names[i]
		m.Weights[n] = m.Weights[i]
		m.Values[n] = row
		if m.Cells != nil {
			m.Cells[n] = m.Cells[i]
		}
		n++
	}
	removed := m.Rows() - n
	m.IDs = m.IDs[:n]
	m.Names = m.Names[:n]
	m.Weights = m.Weights[:n]
	m.Values = m.Values[:n]
	if m.Cells != nil {
		m.Cells = m.Cells[:n]
	}
	return removed
}

// UpperCase converts row identifiers and names to upper case.
func (m *Matrix) UpperCase() {
	for i := range m.IDs {
		m.IDs[i] = strings.ToUpper(m.IDs[i])
		m.Names[i] = strings.ToUpper(m.Names[i])
	}
}

// ResetWeights sets all gene weights to 1.
func (m *Matrix) ResetWeights() {
	for i := range m.Weights {
		m.Weights[i] = 1
	}
}
