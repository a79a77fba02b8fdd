// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package illumina

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"

	log "github.com/sirupsen/logrus"
)

// Table is a probe table of sample signal values.
type Table struct {
	// Samples holds the labels of the
	// sample columns.
	Samples []string
	// Values holds the sample values for
	// each probe.
	Values map[string][]float64
}

// ErrNoHeading is returned by ReadTable when no column heading is found.
var ErrNoHeading = errors.New("illumina: no probe table heading")

// ReadTable reads a probe table from r. Lines before the column heading
// are ignored. If more than half of the sample fields of the line after
// the heading are not numbers, the line is treated as a second heading
// line and skipped.
func ReadTable(r io.Reader) (*Table, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(nil, 16<<20)
	var (
		line int
		cols Columns
		err  error
	)
	for sc.Scan() {
		line++
		text := strings.TrimRight(sc.Text(), "\r")
		if !IsHeading(text) {
			continue
		}
		cols, err = Analyze(strings.Split(text, "\t"))
		if err != nil {
			return nil, fmt.Errorf("illumina: line %d: %w", line, err)
		}
		break
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if cols.Labels == nil {
		return nil, ErrNoHeading
	}
	log.Debugf("probe id column: %s", cols.Labels[cols.ID])

	t := Table{Values: make(map[string][]float64)}
	for _, i := range cols.Samples {
		t.Samples = append(t.Samples, cols.Labels[i])
	}
	first := true
	for sc.Scan() {
		line++
		fields := strings.Split(strings.TrimRight(sc.Text(), "\r\t"), "\t")
		if first {
			first = false
			if 2*nonNumeric(fields, cols.Samples) > len(cols.Samples) {
				log.Debugf("skip second heading line %d", line)
				continue
			}
		}
		if len(fields) == 1 && fields[0] == "" {
			continue
		}
		if len(fields) <= cols.ID {
			return nil, fmt.Errorf("illumina: line %d: missing probe id", line)
		}
		v := make([]float64, len(cols.Samples))
		for j, i := range cols.Samples {
			if i >= len(fields) {
				return nil, fmt.Errorf("illumina: line %d: missing value for %s", line, cols.Labels[i])
			}
			v[j], err = strconv.ParseFloat(strings.TrimSpace(fields[i]), 64)
			if err != nil {
				return nil, fmt.Errorf("illumina: line %d: invalid value for %s: %w", line, cols.Labels[i], err)
			}
		}
		t.Values[fields[cols.ID]] = v
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return &t, nil
}

// nonNumeric returns the number of fields at the given indexes that are
// absent or not numbers.
func nonNumeric(fields []string, idx []int) int {
	var n int
	for _, i := range idx {
		if i >= len(fields) {
			n++
			continue
		}
		if _, err := strconv.ParseFloat(strings.TrimSpace(fields[i]), 64); err != nil {
			n++
		}
	}
	return n
}

// Probes returns the sorted probe identifiers of the table.
func (t *Table) Probes() []string {
	probes := make([]string, 0, len(t.Values))
	for p := range t.Values {
		probes = append(probes, p)
	}
	sort.Strings(probes)
	return probes
}

// TopProbes returns the n probes with the highest standard deviation
// across samples. Ties are broken by probe identifier.
func (t *Table) TopProbes(n int) []string {
	type probeSD struct {
		probe string
		sd    float64
	}
	all := make([]probeSD, 0, len(t.Values))
	for p, v := range t.Values {
		_, sd := stat.PopMeanStdDev(v, nil)
		all = append(all, probeSD{probe: p, sd: sd})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].sd != all[j].sd {
			return all[i].sd > all[j].sd
		}
		return all[i].probe < all[j].probe
	})
	if n < len(all) {
		all = all[:n]
	}
	top := make([]string, len(all))
	for i, p := range all {
		top[i] = p.probe
	}
	return top
}

// Reference holds GSM sample table values by probe.
type Reference struct {
	GSMs   []string
	Values map[string]map[string]float64
}

// ReadGSMList returns the GSM identifiers listed in the file at path. Each
// line holds an identifier optionally followed by '|' separated fields.
func ReadGSMList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var gsms []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		id := strings.TrimSpace(strings.SplitN(sc.Text(), "|", 2)[0])
		if id == "" {
			continue
		}
		gsms = append(gsms, id)
	}
	return gsms, sc.Err()
}

// ReadReference reads the GSM sample tables for gsms from
// <dir>/<platform>/<gsm>-tbl-1.txt. Tables that do not exist are logged
// and skipped. It is an error for none of the tables to exist.
func ReadReference(dir, platform string, gsms []string) (*Reference, error) {
	ref := Reference{Values: make(map[string]map[string]float64)}
	for _, g := range gsms {
		path := filepath.Join(dir, platform, g+"-tbl-1.txt")
		f, err := os.Open(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				log.Warnf("%s does not exist", path)
				continue
			}
			return nil, err
		}
		err = ref.read(f, g)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("illumina: %s: %w", path, err)
		}
		ref.GSMs = append(ref.GSMs, g)
	}
	if len(ref.GSMs) == 0 {
		return nil, fmt.Errorf("illumina: no GSM tables found in %s", filepath.Join(dir, platform))
	}
	return &ref, nil
}

func (ref *Reference) read(r io.Reader, gsm string) error {
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Split(strings.TrimRight(sc.Text(), "\r"), "\t")
		if line == 1 && len(fields) != 2 && len(fields) != 3 {
			return fmt.Errorf("expected 2 or 3 columns, found %d", len(fields))
		}
		if len(fields) < 2 || fields[1] == "" {
			continue
		}
		v, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		m, ok := ref.Values[fields[0]]
		if !ok {
			m = make(map[string]float64)
			ref.Values[fields[0]] = m
		}
		m[gsm] = v
	}
	return sc.Err()
}
