// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pcl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Matrix is a gene expression matrix.
type Matrix struct {
	// Samples holds the sample column labels.
	Samples []string

	// IDs, Names and Weights hold the row
	// identifiers, names and gene weights.
	IDs     []string
	Names   []string
	Weights []float64

	// Values holds the expression values for
	// each row. The length of each []float64
	// is the length of Samples. Missing values
	// are NaN.
	Values [][]float64

	// Cells holds for each row read by Read the
	// number of value cells up to and including
	// the last non-blank cell of the line. It is
	// nil for matrices built by Append.
	Cells []int
}

// Rows returns the number of genes in the matrix.
func (m *Matrix) Rows() int { return len(m.IDs) }

// Cols returns the number of samples in the matrix.
func (m *Matrix) Cols() int { return len(m.Samples) }

// Append adds a row to the matrix. The length of values must match the
// number of samples.
func (m *Matrix) Append(id, name string, weight float64, values []float64) {
	if len(values) != len(m.Samples) {
		panic("pcl: row length mismatch")
	}
	m.IDs = append(m.IDs, id)
	m.Names = append(m.Names, name)
	m.Weights = append(m.Weights, weight)
	m.Values = append(m.Values, values)
}

// ReadFile returns the matrix held in the PCL file at path.
func ReadFile(path string) (*Matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	m, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Read returns the matrix read from r. Blank lines are ignored.
func Read(r io.Reader) (*Matrix, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(nil, 16<<20)

	var (
		m     Matrix
		line  int
		gcol  = -1
		first = 2
	)
	for sc.Scan() {
		line++
		text := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}
		fields := strings.Split(text, "\t")

		if m.Samples == nil {
			if len(fields) < 3 {
				return nil, fmt.Errorf("line %d: too few header columns: %d", line, len(fields))
			}
			for i, f := range fields[2:] {
				if gcol < 0 && strings.EqualFold(f, "GWEIGHT") {
					gcol = i + 2
					first = 3
					continue
				}
				m.Samples = append(m.Samples, f)
			}
			if len(m.Samples) == 0 {
				return nil, fmt.Errorf("line %d: no sample columns", line)
			}
			continue
		}
		if len(m.IDs) == 0 && strings.EqualFold(fields[0], "EWEIGHT") {
			continue
		}
		if len(fields) < 2 {
			return nil, fmt.Errorf("line %d: too few columns: %d", line, len(fields))
		}
		if len(fields)-first > len(m.Samples) {
			return nil, fmt.Errorf("line %d: too many values: %d > %d", line, len(fields)-first, len(m.Samples))
		}

		weight := 1.0
		if gcol >= 0 && gcol < len(fields) {
			w, err := strconv.ParseFloat(strings.TrimSpace(fields[gcol]), 64)
			if err == nil {
				weight = w
			}
		}
		values := make([]float64, len(m.Samples))
		var cells int
		for i := range values {
			values[i] = math.NaN()
			if first+i < len(fields) {
				values[i] = parseValue(fields[first+i])
				if strings.TrimSpace(fields[first+i]) != "" {
					cells = i + 1
				}
			}
		}
		m.Append(fields[0], fields[1], weight, values)
		m.Cells = append(m.Cells, cells)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if m.Samples == nil {
		return nil, io.ErrUnexpectedEOF
	}
	return &m, nil
}

// parseValue returns the value of an expression cell, or NaN if the cell
// is empty or not numeric.
func parseValue(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// Write writes m to w in PCL format with a GWEIGHT column and an EWEIGHT
// row. Values are written with prec decimal places, or with the smallest
// number of digits necessary to represent the value if prec is negative.
// Missing values are written as empty cells.
func (m *Matrix) Write(w io.Writer, prec int) error {
	bw := bufio.NewWriter(w)

	bw.WriteString("YORF\tNAME\tGWEIGHT")
	for _, s := range m.Samples {
		bw.WriteString("\t" + s)
	}
	bw.WriteString("\nEWEIGHT\t\t")
	for range m.Samples {
		bw.WriteString("\t1")
	}
	bw.WriteByte('\n')

	for i, id := range m.IDs {
		bw.WriteString(id)
		bw.WriteByte('\t')
		bw.WriteString(m.Names[i])
		bw.WriteByte('\t')
		bw.WriteString(strconv.FormatFloat(m.Weights[i], 'f', -1, 64))
		for _, v := range m.Values[i] {
			bw.WriteByte('\t')
			if math.IsNaN(v) {
				continue
			}
			bw.WriteString(strconv.FormatFloat(v, 'f', prec, 64))
		}
		_, err := bw.WriteString("\n")
		if err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteFile writes m to the file at path. See Write.
func (m *Matrix) WriteFile(path string, prec int) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		cerr := f.Close()
		if err == nil {
			err = cerr
		}
	}()
	return m.Write(f, prec)
}

// ErrEmpty is returned when a dense representation of an empty matrix is
// requested.
var ErrEmpty = errors.New("pcl: empty matrix")

// Dense returns the expression values of m as a dense matrix with missing
// values replaced by the mean of the present values in their row. Rows
// with no present values are zero.
func (m *Matrix) Dense() (*mat.Dense, error) {
	if m.Rows() == 0 || m.Cols() == 0 {
		return nil, ErrEmpty
	}
	d := mat.NewDense(m.Rows(), m.Cols(), nil)
	for i, row := range m.Values {
		present := presentValues(row)
		var mean float64
		if len(present) != 0 {
			mean = floats.Sum(present) / float64(len(present))
		}
		for j, v := range row {
			if math.IsNaN(v) {
				v = mean
			}
			d.Set(i, j, v)
		}
	}
	return d, nil
}

// presentValues returns the non-missing values in row.
func presentValues(row []float64) []float64 {
	present := make([]float64, 0, len(row))
	for _, v := range row {
		if !math.IsNaN(v) {
			present = append(present, v)
		}
	}
	return present
}
