// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// pclsvd summarises the singular values of PCL expression matrices.
//
// Each input PCL file is factorised after missing values are replaced
// by their gene's mean value. The singular values are plotted to the plot
// directory and a summary document is written to the specified out file
// in JSON format corresponding to the following Go structs.
//
//  type SummaryDoc struct {
//  	// Summaries contains the summaries of
//  	// each PCL file in input order.
//  	Summaries []*Summary
//  }
//
//  type Summary struct {
//  	// Name is the base name of the PCL file.
//  	Name string
//
//  	// Rows and Cols are the dimensions of the
//  	// expression matrix.
//  	Rows, Cols int
//
//  	// OptimalRank and FractionalRank are the calculated
//  	// ranks of the expression matrix. OptimalRank is
//  	// calculated according to the method of Matan Gavish
//  	// and David L. Donoho https://arxiv.org/abs/1305.5870.
//  	// FractionalRank is the rank calculated using the
//  	// user-provided fraction parameter.
//  	OptimalRank, FractionalRank int
//
//  	// Tau and FracValue are the singular values at
//  	// the optimal and fractional thresholds.
//  	Tau, FracValue float64
//
//  	// Sigma is the complete set of singular values.
//  	Sigma []float64
//  }
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/kortschak/troilkatt/internal/pcl"
)

// SummaryDoc is the JSON summary output.
type SummaryDoc struct {
	Summaries []*pcl.Summary
}

func main() {
	var (
		out   = flag.String("out", "", "specify the summary output file")
		plots = flag.String("plots", "plots", "specify the plot output directory")
		cut   = flag.Float64("cut", 1, "minimum valid singular value")
		frac  = flag.Float64("frac", 0.75, "include singular values up to this cumulative fraction")
		help  = flag.Bool("help", false, "print help text")
	)
	flag.Parse()

	if *help {
		flag.Usage()
		fmt.Fprintf(os.Stderr, `
%s summarises the singular values of the PCL expression matrices given
as arguments. Missing values are replaced by the mean of their gene's
present values before factorisation.

For each file a plot of the singular values is written to the plot
directory with the optimal truncation threshold of Gavish and Donoho
(https://arxiv.org/abs/1305.5870) in blue and the threshold for the
requested cumulative fraction in red. Singular values below the cut are
excluded from the optimal threshold estimate.

A summary document is written to the specified out file in JSON format.

`, filepath.Base(os.Args[0]))
		os.Exit(0)
	}
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	log.Println(os.Args)
	err := os.MkdirAll(*plots, 0o755)
	if err != nil {
		log.Fatal(err)
	}

	log.Println("[summarising expression matrices]")
	summaries := make([]*pcl.Summary, flag.NArg())
	var wg sync.WaitGroup
	for i, path := range flag.Args() {
		i, path := i, path
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := summarize(path, *plots, *cut, *frac)
			if err != nil {
				log.Errorf("%s: %v", path, err)
				return
			}
			summaries[i] = s
		}()
	}
	wg.Wait()

	var doc SummaryDoc
	for _, s := range summaries {
		if s != nil {
			doc.Summaries = append(doc.Summaries, s)
		}
	}
	if *out != "" {
		b, err := json.MarshalIndent(doc, "", "\t")
		if err != nil {
			log.Fatal(err)
		}
		err = os.WriteFile(*out, b, 0o644)
		if err != nil {
			log.Fatal(err)
		}
	}
}

func summarize(path, plots string, cut, frac float64) (*pcl.Summary, error) {
	m, err := pcl.ReadFile(path)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	s, err := m.Summarize(name, cut, frac)
	if err != nil {
		return nil, err
	}
	log.Infof("%s: %dx%d optimal rank %d fractional rank %d", name, s.Rows, s.Cols, s.OptimalRank, s.FractionalRank)
	return s, s.Plot(filepath.Join(plots, name+".png"))
}
