// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package soft

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Query is a column search performed when sniffing a SOFT file.
type Query string

const (
	PlatformProbe   Query = "pp"
	GeneName        Query = "gn"
	SampleProbe     Query = "sp"
	ExpressionValue Query = "ev"
	ZerosMissing    Query = "zamv"
)

// Queries is the set of column queries in reporting order.
var Queries = []Query{PlatformProbe, GeneName, SampleProbe, ExpressionValue}

// Label returns a human readable description of the query.
func (q Query) Label() string {
	switch q {
	case PlatformProbe:
		return "Platform probe ID:"
	case GeneName:
		return "Gene names:"
	case SampleProbe:
		return "Sample probe ID:"
	case ExpressionValue:
		return "Expression values:"
	case ZerosMissing:
		return "Zero to missing value conversion"
	default:
		return string(q)
	}
}

// keywords holds the column headers that identify each query's column.
// Gene name headers are conservative; more permissive headers such as
// Gene_ID or CLONE_ID match too many non-gene columns.
var keywords = map[Query][]string{
	PlatformProbe:   {"ID"},
	GeneName:        {"ORF", "GB_ACC", "GENOME_ACC", "RANGE_GB", "GB_LIST", "Gene Symbol", "GENE_SYMBOL"},
	SampleProbe:     {"ID_REF"},
	ExpressionValue: {"VALUE"},
}

// valueDecimals is the number of characters a zero value must have to be
// considered a measured value rather than a missing value.
const valueDecimals = 5

// Report is the result of sniffing a SOFT file.
type Report struct {
	// Columns holds the identified columns.
	// Columns that were not found are -1.
	Columns Columns

	// Matches holds the number of distinct
	// matching columns for each query. Zero
	// indicates a missing column and more
	// than one inconsistent columns.
	Matches map[Query]int

	// Messages holds the diagnostic messages
	// for each query, including ZerosMissing.
	Messages map[Query][]string
}

// Complete returns whether every column was found.
func (r *Report) Complete() bool {
	for _, q := range Queries {
		if r.Matches[q] == 0 {
			return false
		}
	}
	return true
}

// Exact returns whether every column was found exactly once.
func (r *Report) Exact() bool {
	for _, q := range Queries {
		if r.Matches[q] != 1 {
			return false
		}
	}
	return true
}

func (r *Report) note(q Query, format string, args ...interface{}) {
	r.Messages[q] = append(r.Messages[q], fmt.Sprintf(format, args...))
}

// column records a header match for q at column i. A match at a column
// other than a previously matched column is counted as inconsistent.
func (r *Report) column(q Query, i int, header string) {
	col := r.Columns.get(q)
	switch {
	case *col < 0:
		*col = i
		r.Matches[q]++
		r.note(q, "Matching column: %d: %s", i, header)
	case *col != i:
		r.Matches[q]++
		r.note(q, "Inconsistent column %s: %d was %d", header, i, *col)
	}
}

// Sniff identifies the platform probe, gene name, sample probe and
// expression value columns of the SOFT series family file read from r, and
// whether zero expression values should be treated as missing. If no gene
// name column is identified by header, the column of the first platform
// table holding the most names in genes is used.
func Sniff(r io.Reader, genes map[string]bool) (*Report, error) {
	rep := &Report{
		Columns:  Columns{Probe: -1, Gene: -1, SampleProbe: -1, Value: -1},
		Matches:  make(map[Query]int),
		Messages: make(map[Query][]string),
	}

	var (
		z zeroCounter

		// valueCol is the expression value column of
		// the current sample table, or -1 if there is
		// no current sample table with a value column.
		valueCol = -1

		platforms  int
		geneHeader []string
		geneCounts []int
		geneRows   int

		inPlatform, inSample bool
		header               bool
	)
	sc := lineScanner(r)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		switch {
		case strings.HasPrefix(line, "!platform_table_begin"):
			inPlatform = true
			header = true
			platforms++
		case strings.HasPrefix(line, "!platform_table_end"):
			inPlatform = false
		case strings.HasPrefix(line, "!sample_table_begin"):
			inSample = true
			header = true
		case strings.HasPrefix(line, "!sample_table_end"):
			inSample = false
			valueCol = -1

		case inPlatform && header:
			header = false
			fields := strings.Split(line, "\t")
			for i, f := range fields {
				f = strings.TrimSpace(f)
				for _, q := range []Query{PlatformProbe, GeneName} {
					if contains(keywords[q], f) {
						rep.column(q, i, f)
					}
				}
			}
			if platforms == 1 {
				geneHeader = fields
				geneCounts = make([]int, len(fields))
			}
		case inPlatform:
			if platforms != 1 || genes == nil {
				continue
			}
			geneRows++
			for i, f := range strings.Split(strings.TrimSpace(line), "\t") {
				if i < len(geneCounts) && genes[f] {
					geneCounts[i]++
				}
			}

		case inSample && header:
			header = false
			for i, f := range strings.Split(line, "\t") {
				f = strings.TrimSpace(f)
				if contains(keywords[SampleProbe], f) {
					rep.column(SampleProbe, i, f)
				}
				if contains(keywords[ExpressionValue], f) {
					rep.column(ExpressionValue, i, f)
					if valueCol < 0 {
						valueCol = i
					}
				}
			}
			if valueCol < 0 {
				z.noValueColumn = true
			}
		case inSample && valueCol >= 0:
			fields := strings.Split(line, "\t")
			if valueCol < len(fields) {
				z.count(strings.TrimSpace(fields[valueCol]))
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	for _, q := range Queries {
		if rep.Matches[q] != 0 {
			continue
		}
		rep.note(q, "No matching column found")
		if q == GeneName {
			rep.predictGeneColumn(platforms != 0, geneHeader, geneCounts, geneRows)
		}
	}

	z.report(rep)
	rep.Columns.ZerosMissing = z.zerosMissing()

	return rep, nil
}

// predictGeneColumn sets the gene name column to the platform column
// with the greatest number of known gene names.
func (r *Report) predictGeneColumn(havePlatform bool, header []string, counts []int, rows int) {
	r.note(GeneName, "Predicting gene name column")
	if !havePlatform {
		r.note(GeneName, "Warning: no platform table in file")
		return
	}
	if len(counts) == 0 {
		r.note(GeneName, "Warning: no gene names found in platform table")
		return
	}

	sorted := append([]int(nil), counts...)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
	top := sorted[:min(len(sorted), 5)]
	parts := make([]string, len(top))
	for i, c := range top {
		parts[i] = strconv.Itoa(c)
	}
	r.note(GeneName, "Top %d gene counts: %s", len(top), strings.Join(parts, ", "))

	best := 0
	for i, c := range counts {
		if c > counts[best] {
			best = i
		}
	}
	if counts[best] == 0 {
		r.note(GeneName, "Warning: no gene names found in platform table")
		return
	}
	r.Columns.Gene = best
	r.Matches[GeneName]++
	r.note(GeneName, "Column %s has max gene count: %d of %d lines (%2.2f%%)",
		strings.TrimSpace(header[best]), counts[best], rows, 100*float64(counts[best])/float64(rows))
	log.Debugf("predicted gene column %d (%s)", best, header[best])
}

// zeroCounter classifies zero expression values as measured or missing.
type zeroCounter struct {
	asValue, asMissing int

	noValueColumn bool
	null, integer bool
	empty         bool
}

// count classifies the expression value v. An integer zero is considered
// missing. A float zero is considered measured if it is written with a
// leading digit and enough decimal places.
func (z *zeroCounter) count(v string) {
	switch v {
	case "":
		z.empty = true
	case "null":
		z.null = true
	case "0":
		z.asMissing++
		z.integer = true
	default:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f != 0 {
			return
		}
		if len(v) > 1 && v[1] == '.' && len(v) >= valueDecimals-1 {
			z.asValue++
		} else {
			z.asMissing++
		}
	}
}

func (z *zeroCounter) zerosMissing() bool {
	return z.asMissing > z.asValue
}

func (z *zeroCounter) report(r *Report) {
	if z.noValueColumn {
		r.note(ZerosMissing, "Missing expression value column")
	}
	if z.null {
		r.note(ZerosMissing, "'null' expression values found")
	}
	if z.integer {
		r.note(ZerosMissing, "'0' (no decimals) expression values found")
	}
	if z.empty {
		r.note(ZerosMissing, "Empty expression values found")
	}
	if z.asValue == 0 && z.asMissing == 0 && !z.empty && !z.null {
		r.note(ZerosMissing, "No zero expression values found")
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
