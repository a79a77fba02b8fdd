// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pcl

import (
	"fmt"
	"image/color"
	"math"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Plot writes a log scale plot of the singular values of s to path along
// with the optimal (blue) and fractional (red) thresholds. The image
// format is determined by the path extension.
func (s *Summary) Plot(path string) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Singular Values\n%s", s.Name)
	p.X.Label.Text = "index"
	p.Y.Scale = logScale{}
	p.Y.Tick.Marker = logTicks{}
	xys := nonZeroXYs(s.Sigma)
	if len(xys) != 0 {
		values, err := plotter.NewLine(xys)
		if err != nil {
			return err
		}
		last := xys[len(xys)-1].X
		opt, err := hline(s.Tau, last, color.RGBA{B: 255, A: 255})
		if err != nil {
			return err
		}
		frac, err := hline(s.FracValue, last, color.RGBA{R: 255, A: 255})
		if err != nil {
			return err
		}
		p.Add(values, opt, frac)
	}
	return p.Save(18*vg.Centimeter, 15*vg.Centimeter, path)
}

func hline(y, maxX float64, c color.Color) (*plotter.Line, error) {
	l, err := plotter.NewLine(plotter.XYs{{X: 0, Y: y}, {X: maxX, Y: y}})
	if err != nil {
		return nil, err
	}
	l.Color = c
	return l, nil
}

// nonZeroXYs returns the leading non-zero values of s indexed by position.
func nonZeroXYs(s []float64) plotter.XYs {
	xy := make(plotter.XYs, len(s))
	for i, v := range s {
		if v == 0 {
			return xy[:i]
		}
		xy[i] = plotter.XY{X: float64(i), Y: v}
	}
	return xy
}

const logFloor = 1e-16

type logScale struct{}

func (logScale) Normalize(min, max, x float64) float64 {
	min = math.Max(min, logFloor)
	max = math.Max(max, logFloor)
	x = math.Max(x, logFloor)
	logMin := math.Log(min)
	return (math.Log(x) - logMin) / (math.Log(max) - logMin)
}

// logTicks marks each power of ten with a label and the
// intermediate integer multiples without.
type logTicks struct{}

func (logTicks) Ticks(min, max float64) []plot.Tick {
	min = math.Max(min, logFloor)
	max = math.Max(max, logFloor)

	val := math.Pow10(int(math.Floor(math.Log10(min))))
	max = math.Pow10(int(math.Ceil(math.Log10(max))))
	var ticks []plot.Tick
	for val < max {
		ticks = append(ticks, plot.Tick{Value: val, Label: strconv.FormatFloat(val, 'e', 0, 64)})
		for i := 2; i < 10; i++ {
			ticks = append(ticks, plot.Tick{Value: val * float64(i)})
		}
		val *= 10
	}
	return append(ticks, plot.Tick{Value: val, Label: strconv.FormatFloat(val, 'e', 0, 64)})
}
