// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package soft

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Batch converts a set of SOFT series family files to PCL files and
// records conversion statistics.
type Batch struct {
	// Genes is the set of known gene names used to
	// predict gene name columns. It may be nil.
	Genes map[string]bool

	// OutDir is the directory PCL files are written to.
	OutDir string

	// LogDir is the directory that statistics and
	// args files are written to.
	LogDir string

	// Workers is the maximum number of files processed
	// concurrently. If zero, GOMAXPROCS is used.
	Workers int
}

// Summary holds the statistics of a batch conversion.
type Summary struct {
	Files        int
	Exact        int
	Missing      int
	Inconsistent int
	ZerosMissing int
	Converted    int
	Failed       int

	MissingBy      map[Query]int
	InconsistentBy map[Query]int
}

// result is the outcome of processing a single file.
type result struct {
	path   string
	report *Report
	err    error
}

// Run converts the SOFT files in paths. Files without a SOFT extension are
// ignored. A failure to convert a single file is logged and counted but
// does not stop the batch. Statistics files are written to the log
// directory in the order of paths.
func (b *Batch) Run(ctx context.Context, paths []string) (*Summary, error) {
	var soft []string
	for _, p := range paths {
		if !IsSOFT(p) {
			log.Debugf("%s ignored: not a SOFT file", p)
			continue
		}
		soft = append(soft, p)
	}
	log.Infof("process %d files", len(soft))

	results := make([]result, len(soft))
	g, ctx := errgroup.WithContext(ctx)
	workers := b.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	g.SetLimit(workers)
	for i, p := range soft {
		i, p := i, p
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rep, err := b.process(p)
			results[i] = result{path: p, report: rep, err: err}
			if err != nil {
				log.Errorf("%s: %v", p, err)
			}
			return nil
		})
	}
	err := g.Wait()
	if err != nil {
		return nil, err
	}
	return b.writeStats(results)
}

// process sniffs and, if all columns are found, converts a single file.
func (b *Batch) process(path string) (*Report, error) {
	log.Infof("parse SOFT file: %s", path)
	f, err := Open(path)
	if err != nil {
		return nil, err
	}
	rep, err := Sniff(f, b.Genes)
	f.Close()
	if err != nil {
		return nil, err
	}
	if !rep.Complete() {
		return rep, nil
	}

	base := filepath.Base(path)
	err = writeFile(filepath.Join(b.LogDir, base+".args"), rep.Columns.WriteTo)
	if err != nil {
		return rep, err
	}

	f, err = Open(path)
	if err != nil {
		return rep, err
	}
	m, err := Convert(f, rep.Columns)
	f.Close()
	if err != nil {
		return rep, err
	}
	out := filepath.Join(b.OutDir, AccessionID(base)+".pcl")
	log.Debugf("write %s", out)
	return rep, m.WriteFile(out, -1)
}

// statsFiles holds the open statistics files of a batch.
type statsFiles struct {
	missing      map[Query]*bufio.Writer
	inconsistent map[Query]*bufio.Writer
	zeros        *bufio.Writer
	details      *bufio.Writer
	failures     *bufio.Writer

	files []*os.File
}

func (b *Batch) createStats() (*statsFiles, error) {
	s := &statsFiles{
		missing:      make(map[Query]*bufio.Writer),
		inconsistent: make(map[Query]*bufio.Writer),
	}
	create := func(name string) (*bufio.Writer, error) {
		f, err := os.Create(filepath.Join(b.LogDir, name))
		if err != nil {
			return nil, err
		}
		s.files = append(s.files, f)
		return bufio.NewWriter(f), nil
	}
	var err error
	for _, q := range Queries {
		s.missing[q], err = create(fmt.Sprintf("missing_%s.txt", q))
		if err != nil {
			return s, err
		}
		s.inconsistent[q], err = create(fmt.Sprintf("inconsistent_%s.txt", q))
		if err != nil {
			return s, err
		}
	}
	s.zeros, err = create("zero_to_missing_value.txt")
	if err != nil {
		return s, err
	}
	s.details, err = create("details.log")
	if err != nil {
		return s, err
	}
	s.failures, err = create("failures.log")
	return s, err
}

func (s *statsFiles) close() error {
	var first error
	flush := func(w *bufio.Writer) {
		if w == nil {
			return
		}
		if err := w.Flush(); err != nil && first == nil {
			first = err
		}
	}
	for _, q := range Queries {
		flush(s.missing[q])
		flush(s.inconsistent[q])
	}
	flush(s.zeros)
	flush(s.details)
	flush(s.failures)
	for _, f := range s.files {
		if err := f.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (b *Batch) writeStats(results []result) (sum *Summary, err error) {
	stats, err := b.createStats()
	defer func() {
		cerr := stats.close()
		if err == nil {
			err = cerr
		}
	}()
	if err != nil {
		return nil, err
	}

	sum = &Summary{
		MissingBy:      make(map[Query]int),
		InconsistentBy: make(map[Query]int),
	}
	for _, r := range results {
		if r.report == nil {
			sum.Failed++
			fmt.Fprintln(stats.failures, r.path)
			continue
		}
		sum.Files++
		rep := r.report
		switch {
		case rep.Exact():
			sum.Exact++
		case !rep.Complete():
			sum.Missing++
		default:
			sum.Inconsistent++
		}
		for _, q := range Queries {
			switch n := rep.Matches[q]; {
			case n > 1:
				sum.InconsistentBy[q]++
				fmt.Fprintln(stats.inconsistent[q], r.path)
			case n == 0:
				sum.MissingBy[q]++
				fmt.Fprintln(stats.missing[q], r.path)
			}
		}
		if rep.Columns.ZerosMissing {
			sum.ZerosMissing++
			fmt.Fprintln(stats.zeros, r.path)
		}

		fmt.Fprintf(stats.details, "Parsing file: %s\n", r.path)
		for _, q := range append(Queries[:len(Queries):len(Queries)], ZerosMissing) {
			fmt.Fprintf(stats.details, "%s:\n", q.Label())
			for _, m := range rep.Messages[q] {
				fmt.Fprintf(stats.details, "\t%s\n", m)
			}
		}
		fmt.Fprint(stats.details, "\n\n")

		if !rep.Complete() || r.err != nil {
			fmt.Fprintln(stats.failures, r.path)
			if r.err != nil {
				sum.Failed++
			}
			continue
		}
		sum.Converted++
	}

	err = writeFile(filepath.Join(b.LogDir, "summary.log"), sum.WriteTo)
	return sum, err
}

// WriteTo writes a human readable summary of the batch to w.
func (s *Summary) WriteTo(w io.Writer) (int64, error) {
	var buf strings.Builder
	if s.Files == 0 {
		buf.WriteString("No new nor updated files.\n")
	} else {
		pct := func(n int) float64 { return 100 * float64(n) / float64(s.Files) }
		fmt.Fprintf(&buf, "Exact match:          %d (%2.2f%%)\n", s.Exact, pct(s.Exact))
		fmt.Fprintf(&buf, "Missing columns:      %d (%2.2f%%)\n", s.Missing, pct(s.Missing))
		fmt.Fprintf(&buf, "Inconsistent columns: %d (%2.2f%%)\n", s.Inconsistent, pct(s.Inconsistent))
		fmt.Fprintf(&buf, "Total files:      %d\n\n", s.Files)
		fmt.Fprintf(&buf, "Convert zero to missing value: %d\n\n", s.ZerosMissing)
		for _, q := range Queries {
			fmt.Fprintf(&buf, "%s\n", q.Label())
			fmt.Fprintf(&buf, "\tMissing:      %d (%2.2f%%)\n", s.MissingBy[q], pct(s.MissingBy[q]))
			fmt.Fprintf(&buf, "\tInconsistent: %d (%2.2f%%)\n", s.InconsistentBy[q], pct(s.InconsistentBy[q]))
		}
	}
	if s.Failed != 0 {
		fmt.Fprintf(&buf, "Failed files: %d\n", s.Failed)
	}
	n, err := io.WriteString(w, buf.String())
	return int64(n), err
}

// writeFile creates the file at path and writes to it using fn.
func writeFile(path string, fn func(io.Writer) (int64, error)) (err error) {
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
	_, err = fn(f)
	return err
}
