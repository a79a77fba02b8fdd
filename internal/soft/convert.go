// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package soft

import (
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/kortschak/troilkatt/internal/pcl"
)

// Line prefixes and value offsets of the series family entity lines used
// in conversion.
const (
	platformEntity = "^PLATFORM"
	platformOffset = len("^PLATFORM = ")

	sampleEntity = "^SAMPLE"
	sampleOffset = len("^SAMPLE = ")

	sampleTitle       = "!Sample_title"
	sampleTitleOffset = len("!Sample_title = ")

	samplePlatform       = "!Sample_platform_id"
	samplePlatformOffset = len("!Sample_platform_id = ")
)

// Convert returns the PCL matrix held in the SOFT series family file read
// from r using the columns in cols. Each platform table maps probe IDs to
// gene names and each sample's values are keyed by gene name through the
// sample's platform. Probes that are not in the platform table or that
// have an empty gene name are dropped. Samples are ordered by sample ID
// and labelled with their titles, and genes are ordered by name.
func Convert(r io.Reader, cols Columns) (*pcl.Matrix, error) {
	var (
		platforms = make(map[string]map[string]string)
		titles    = make(map[string]string)
		samples   = make(map[string]map[string]string)
		genes     = make(map[string]bool)

		platID, sampID string
		sampPlat       string
		probes         map[string]string
		values         map[string]string

		inPlatform, inSample bool
		header               bool
	)
	sc := lineScanner(r)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		switch {
		case strings.HasPrefix(line, platformEntity):
			platID = valueAt(line, platformOffset)
			probes = make(map[string]string)
			platforms[platID] = probes
		case strings.HasPrefix(line, sampleEntity):
			sampID = valueAt(line, sampleOffset)
			values = make(map[string]string)
			samples[sampID] = values
			sampPlat = ""
		case strings.HasPrefix(line, sampleTitle):
			titles[sampID] = valueAt(line, sampleTitleOffset)
		case strings.HasPrefix(line, samplePlatform):
			sampPlat = valueAt(line, samplePlatformOffset)

		case strings.HasPrefix(line, "!platform_table_begin"):
			inPlatform = probes != nil
			header = true
		case strings.HasPrefix(line, "!platform_table_end"):
			inPlatform = false
		case strings.HasPrefix(line, "!sample_table_begin"):
			inSample = values != nil
			header = true
			probes = platforms[sampPlat]
		case strings.HasPrefix(line, "!sample_table_end"):
			inSample = false

		case header:
			header = false
		case inPlatform:
			fields := strings.Split(line, "\t")
			if cols.Probe < len(fields) && cols.Gene < len(fields) {
				probes[fields[cols.Probe]] = fields[cols.Gene]
			}
		case inSample:
			fields := strings.Split(line, "\t")
			if cols.SampleProbe >= len(fields) || cols.Value >= len(fields) {
				continue
			}
			gene := probes[fields[cols.SampleProbe]]
			if gene == "" {
				continue
			}
			values[gene] = fields[cols.Value]
			genes[gene] = true
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	ids := sortedKeys(samples)
	var m pcl.Matrix
	for _, id := range ids {
		title, ok := titles[id]
		if !ok {
			title = id
		}
		m.Samples = append(m.Samples, title)
	}
	for _, g := range sortedKeys(genes) {
		row := make([]float64, len(ids))
		for i, id := range ids {
			row[i] = parseValue(samples[id][g], cols.ZerosMissing)
		}
		m.Append(g, g, 1, row)
	}
	return &m, nil
}

// parseValue returns the numeric value of an expression value, or NaN if
// it is not numeric, or if it is zero and zeros are missing.
func parseValue(s string, zerosMissing bool) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || (zerosMissing && v == 0) {
		return math.NaN()
	}
	return v
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
