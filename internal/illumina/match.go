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
	"regexp"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"

	log "github.com/sirupsen/logrus"

	"github.com/kortschak/troilkatt/internal/soft"
)

// TopN is the number of most variable probes used for matching.
const TopN = 4000

// Assignment is the GSM matched to a table sample.
type Assignment struct {
	Sample      string
	GSM         string
	Correlation float64
}

// Match assigns each sample of t to the reference GSM with the highest
// Spearman rank correlation over the given probes. Probes missing from
// the reference for any GSM are not used. When correlations are equal the
// first GSM is chosen.
func Match(t *Table, ref *Reference, probes []string) ([]Assignment, error) {
	var used []string
	for _, p := range probes {
		if _, ok := t.Values[p]; !ok {
			continue
		}
		r, ok := ref.Values[p]
		if !ok {
			continue
		}
		complete := true
		for _, g := range ref.GSMs {
			if _, ok := r[g]; !ok {
				complete = false
				break
			}
		}
		if complete {
			used = append(used, p)
		}
	}
	if len(used) < 2 {
		return nil, fmt.Errorf("illumina: too few shared probes for matching: %d", len(used))
	}
	log.Debugf("matching on %d probes", len(used))

	gsmRanks := make([][]float64, len(ref.GSMs))
	for j, g := range ref.GSMs {
		v := make([]float64, len(used))
		for i, p := range used {
			v[i] = ref.Values[p][g]
		}
		gsmRanks[j] = ranks(v)
	}

	assign := make([]Assignment, len(t.Samples))
	v := make([]float64, len(used))
	for k, s := range t.Samples {
		for i, p := range used {
			v[i] = t.Values[p][k]
		}
		sampleRanks := ranks(v)
		assign[k] = Assignment{Sample: s, GSM: ref.GSMs[0], Correlation: stat.Correlation(sampleRanks, gsmRanks[0], nil)}
		for j := 1; j < len(ref.GSMs); j++ {
			c := stat.Correlation(sampleRanks, gsmRanks[j], nil)
			if c > assign[k].Correlation {
				assign[k].GSM = ref.GSMs[j]
				assign[k].Correlation = c
			}
		}
		log.Infof("%s matched to %s (rho=%.4f)", s, assign[k].GSM, assign[k].Correlation)
	}
	return assign, nil
}

// ranks returns the fractional ranks of x, with tied values given the
// mean of their ranks.
func ranks(x []float64) []float64 {
	idx := make([]int, len(x))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool { return x[idx[i]] < x[idx[j]] })
	r := make([]float64, len(x))
	for i := 0; i < len(idx); {
		j := i + 1
		for j < len(idx) && x[idx[j]] == x[idx[i]] {
			j++
		}
		rank := float64(i+j+1) / 2
		for _, k := range idx[i:j] {
			r[k] = rank
		}
		i = j
	}
	return r
}

// Spearman returns the Spearman rank correlation of x and y.
func Spearman(x, y []float64) float64 {
	return stat.Correlation(ranks(x), ranks(y), nil)
}

// WritePCL writes the table to w with a PROBE heading and the sample
// columns labelled by their assigned GSM. Probes are written in sorted
// order with five decimal places.
func WritePCL(w io.Writer, t *Table, assign []Assignment) error {
	bw := bufio.NewWriter(w)
	bw.WriteString("PROBE")
	for _, a := range assign {
		bw.WriteString("\t" + a.GSM)
	}
	bw.WriteString("\n")
	for _, p := range t.Probes() {
		bw.WriteString(p)
		for _, v := range t.Values[p] {
			fmt.Fprintf(bw, "\t%.5f", v)
		}
		bw.WriteString("\n")
	}
	return bw.Flush()
}

// OutputPath returns the path <dir>/<gse>-<platform>.pcl, or if that
// exists, the first <dir>/<gse>-<platform>_<n>.pcl that does not exist.
func OutputPath(dir, gse, platform string) (string, error) {
	base := filepath.Join(dir, gse+"-"+platform)
	path := base + ".pcl"
	for n := 1; ; n++ {
		_, err := os.Stat(path)
		if errors.Is(err, os.ErrNotExist) {
			return path, nil
		}
		if err != nil {
			return "", err
		}
		path = fmt.Sprintf("%s_%d.pcl", base, n)
	}
}

var gseName = regexp.MustCompile(`^(GSE\d+)\D`)

// SeriesOf returns the GSE identifier at the start of the base name of
// path.
func SeriesOf(path string) (string, error) {
	m := gseName.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return "", fmt.Errorf("illumina: no series identifier in %s", filepath.Base(path))
	}
	return m[1], nil
}

// Converter converts Illumina tables for a platform.
type Converter struct {
	// MetaDir holds GSM lists at
	// <MetaDir>/<Platform>/<gse>.
	MetaDir string
	// GSMDir holds GSM tables at
	// <GSMDir>/<Platform>/<gsm>-tbl-1.txt.
	GSMDir string
	// OutDir is where PCL files are written.
	OutDir string

	Platform string
}

// Convert converts the table at path, returning the path of the written
// PCL file.
func (c *Converter) Convert(path string) (string, error) {
	gse, err := SeriesOf(path)
	if err != nil {
		return "", err
	}
	gsms, err := ReadGSMList(filepath.Join(c.MetaDir, c.Platform, gse))
	if err != nil {
		return "", err
	}
	ref, err := ReadReference(c.GSMDir, c.Platform, gsms)
	if err != nil {
		return "", err
	}
	log.Infof("found GSMs %s", strings.Join(ref.GSMs, " "))

	r, err := soft.Open(path)
	if err != nil {
		return "", err
	}
	t, err := ReadTable(r)
	r.Close()
	if err != nil {
		return "", err
	}
	assign, err := Match(t, ref, t.TopProbes(TopN))
	if err != nil {
		return "", err
	}

	err = os.MkdirAll(c.OutDir, 0o755)
	if err != nil {
		return "", err
	}
	out, err := OutputPath(c.OutDir, gse, c.Platform)
	if err != nil {
		return "", err
	}
	f, err := os.Create(out)
	if err != nil {
		return "", err
	}
	err = WritePCL(f, t, assign)
	cerr := f.Close()
	if err == nil {
		err = cerr
	}
	return out, err
}
