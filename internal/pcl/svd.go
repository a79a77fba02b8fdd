// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pcl

import (
	"errors"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Summary is the singular value summary of an expression matrix.
type Summary struct {
	// Name is the name of the dataset.
	Name string

	// Rows and Cols are the dimensions of the
	// expression matrix.
	Rows, Cols int

	// OptimalRank and FractionalRank are the calculated
	// ranks of the expression matrix. OptimalRank is
	// calculated according to the method of Matan Gavish
	// and David L. Donoho https://arxiv.org/abs/1305.5870.
	// FractionalRank is the number of singular values needed
	// to reach the requested fraction of the cumulative sum.
	OptimalRank, FractionalRank int

	// Tau and FracValue are the singular values at the
	// optimal and fractional thresholds.
	Tau, FracValue float64

	// Sigma is the complete set of singular values.
	Sigma []float64
}

// Summarize returns the singular value summary of m. Missing values are
// replaced by their row mean before factorisation. Singular values below
// cut are excluded from the optimal rank estimate and frac is the fraction
// of the cumulative singular value sum used for the fractional rank.
func (m *Matrix) Summarize(name string, cut, frac float64) (*Summary, error) {
	d, err := m.Dense()
	if err != nil {
		return nil, err
	}
	var svd mat.SVD
	ok := svd.Factorize(d, mat.SVDNone)
	if !ok {
		return nil, errors.New("pcl: could not factorise matrix")
	}
	sigma := svd.Values(nil)

	sum := make([]float64, len(sigma))
	floats.CumSum(sum, sigma)
	var (
		rFrac int
		f     float64
	)
	if total := sum[len(sum)-1]; total != 0 {
		floats.Scale(1/total, sum)
		rFrac = idxAbove(frac, sum)
		switch {
		case rFrac < len(sigma):
			f = sigma[rFrac]
		case len(sigma) != 0:
			f = sigma[0]
		}
	}

	sigmaCut := sigma[:idxBelow(cut, sigma)]
	rows, cols := d.Dims()
	t := tau(rows, cols, sigmaCut)

	return &Summary{
		Name:           name,
		Rows:           rows,
		Cols:           cols,
		OptimalRank:    idxBelow(t, sigmaCut),
		FractionalRank: rFrac,
		Tau:            t,
		FracValue:      f,
		Sigma:          sigma,
	}, nil
}

func idxAbove(thresh float64, s []float64) int {
	for i, v := range s {
		if v > thresh {
			return i
		}
	}
	return len(s)
}

func idxBelow(thresh float64, s []float64) int {
	for i, v := range s {
		if v < thresh {
			return i
		}
	}
	return len(s)
}

// https://arxiv.org/abs/1305.5870 Eq. 4.
func tau(rows, cols int, values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	// Quantile needs ascending order.
	asc := make([]float64, len(values))
	for i, v := range values {
		asc[len(values)-1-i] = v
	}
	return omega(rows, cols) * stat.Quantile(0.5, stat.Empirical, asc, nil)
}

// https://arxiv.org/abs/1305.5870 Eq. 5. The aspect ratio
// must be at most one.
func omega(rows, cols int) float64 {
	beta := float64(rows) / float64(cols)
	if beta > 1 {
		beta = 1 / beta
	}
	beta2 := beta * beta
	return 0.56*beta2*beta - 0.95*beta2 + 1.82*beta + 1.43
}
