// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package geo

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// DateLayout is the layout of dates in GEO tables.
const DateLayout = "Jan 02 2006"

// ReadDates returns the dates of the accessions in a GEO table read from
// r. The first column of the table holds the accession and the second the
// date. The header row is skipped. Rows without an accession or date are
// logged and skipped.
func ReadDates(r io.Reader) (map[string]time.Time, error) {
	c := csv.NewReader(r)
	c.Comma = '\t'
	c.LazyQuotes = true
	c.FieldsPerRecord = -1
	rows, err := c.ReadAll()
	if err != nil {
		return nil, err
	}
	dates := make(map[string]time.Time)
	for i, row := range rows {
		if i == 0 {
			continue
		}
		if len(row) < 2 {
			return nil, fmt.Errorf("invalid row %d in table: %q", i+1, row)
		}
		id := strings.TrimSpace(row[0])
		date := strings.TrimSpace(row[1])
		if id == "" || date == "" {
			log.Warnf("row %d without ID or date in table", i+1)
			continue
		}
		t, err := time.Parse(DateLayout, date)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		dates[id] = t
	}
	return dates, nil
}

// Pair is a directed relationship between two series or datasets.
type Pair struct {
	A, B   string
	Shared int
}

// Superset is a series or dataset that holds all the samples of a set
// of others.
type Superset struct {
	ID      string
	Samples int
	Subsets []string
}

// Classification holds overlaps classified by sample containment and
// publication date.
type Classification struct {
	// Duplicates holds pairs with identical
	// samples, the newer or same aged first.
	Duplicates []Pair

	// OlderSubsets and NewerSubsets hold pairs
	// where all samples in A are in B and A is
	// respectively not newer or newer than B.
	OlderSubsets, NewerSubsets []Pair

	// OlderPartial and NewerPartial hold pairs
	// sharing some but not all samples where A
	// is respectively not newer or newer than B.
	OlderPartial, NewerPartial []Pair

	// Merges, Splits and Neither hold supersets
	// that are exactly the union of their subsets.
	// Merges are newer than all their subsets,
	// splits are older than all their subsets and
	// the remainder are in Neither.
	Merges, Splits, Neither []Superset
}

// Classify classifies the overlaps using the accession dates. Overlaps
// involving an accession without a date are logged and ignored.
func Classify(overlaps []*Overlap, dates map[string]time.Time) *Classification {
	var c Classification
	type sub struct {
		id string
		n  int
	}
	supersets := make(map[string][]sub)
	supersetSamples := make(map[string]int)

	for _, o := range overlaps {
		d1, ok1 := dates[o.ID1]
		d2, ok2 := dates[o.ID2]
		if !ok1 || !ok2 {
			log.Errorf("date not known for both %s and %s", o.ID1, o.ID2)
			continue
		}
		switch {
		case o.Duplicate():
			if !d1.Before(d2) {
				c.Duplicates = append(c.Duplicates, Pair{A: o.ID1, B: o.ID2, Shared: o.Shared})
			} else {
				c.Duplicates = append(c.Duplicates, Pair{A: o.ID2, B: o.ID1, Shared: o.Shared})
			}
		case o.Shared == o.Len1:
			c.addSubset(Pair{A: o.ID1, B: o.ID2, Shared: o.Shared}, !d1.After(d2))
			supersets[o.ID2] = append(supersets[o.ID2], sub{o.ID1, o.Len1})
			supersetSamples[o.ID2] = o.Len2
		case o.Shared == o.Len2:
			c.addSubset(Pair{A: o.ID2, B: o.ID1, Shared: o.Shared}, !d2.After(d1))
			supersets[o.ID1] = append(supersets[o.ID1], sub{o.ID2, o.Len2})
			supersetSamples[o.ID1] = o.Len1
		default:
			p := Pair{A: o.ID1, B: o.ID2, Shared: o.Shared}
			if !d1.After(d2) {
				c.OlderPartial = append(c.OlderPartial, p)
			} else {
				c.NewerPartial = append(c.NewerPartial, p)
			}
		}
	}

	ids := make([]string, 0, len(supersets))
	for id := range supersets {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		date := dates[id]
		oldest, newest := true, true
		var n int
		s := Superset{ID: id, Samples: supersetSamples[id]}
		for _, sub := range supersets[id] {
			n += sub.n
			s.Subsets = append(s.Subsets, sub.id)
			switch d := dates[sub.id]; {
			case d.After(date):
				newest = false
			case d.Before(date):
				oldest = false
			}
		}
		if n != s.Samples {
			continue
		}
		switch {
		case newest:
			c.Merges = append(c.Merges, s)
		case oldest:
			c.Splits = append(c.Splits, s)
		default:
			c.Neither = append(c.Neither, s)
		}
	}
	return &c
}

func (c *Classification) addSubset(p Pair, older bool) {
	if older {
		c.OlderSubsets = append(c.OlderSubsets, p)
	} else {
		c.NewerSubsets = append(c.NewerSubsets, p)
	}
}

// Comment headers for classification files.
const (
	DuplicatesHeader = `#This file contains a list of datasets or series that have identical, and only identical, samples.
#The first dataset or series has a publication date later or equal to the second dataset or series.
#GSE1	GSE2
`
	OlderSubsetsHeader = `#Datasets or series where all samples in series/dataset A are in series/dataset B, and the publication
#date of A is older than B.
#GSID 1	GSID 2	Samples in GSID
`
	NewerSubsetsHeader = `#Datasets or series where all samples in series/dataset A are in series/dataset B, and the publication
#date of A is newer than B.
#GSID 1	GSID 2	Samples in GSID
`
	OlderPartialHeader = `#Datasets or series where some, BUT NOT ALL, samples in series/dataset A are in series/dataset B, and the publication
#date of A is older than B.
#GSID 1	GSID 2	Overlapping samples
`
	NewerPartialHeader = `#Datasets or series where some, BUT NOT ALL, samples in series/dataset A are in series/dataset B, and the publication
#date of A is newer than B.
#GSID 1	GSID 2	Overlapping samples
`
	MergesHeader = `#This file contains a list of datasets or series where dataset/series A has all samples in B, C...N, and A
#has the newest publication date
#
#Superset ID	Superset samples	Subsets...
`
	SplitsHeader = `#This file contains a list of datasets or series where dataset/series A has all samples in B, C...N, and A
#has the oldest publication date
#
#Superset ID	Superset samples	Subsets...
`
	NeitherHeader = `#This file contains a list of datasets or series where dataset/series A has all samples in B, C...N, and A
#has a publication date that is neither the newest nor oldest of all publications dates.
#
#Superset ID	Superset samples	Subsets...
`
)

// WritePairs writes the pairs to w after the given comment header. If
// shared is true the number of shared samples is written as a third
// column.
func WritePairs(w io.Writer, header string, pairs []Pair, shared bool) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(header)
	for _, p := range pairs {
		if shared {
			fmt.Fprintf(bw, "%s\t%s\t%d\n", p.A, p.B, p.Shared)
		} else {
			fmt.Fprintf(bw, "%s\t%s\n", p.A, p.B)
		}
	}
	return bw.Flush()
}

// WriteSupersets writes the supersets to w after the given comment header.
func WriteSupersets(w io.Writer, header string, supersets []Superset) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(header)
	for _, s := range supersets {
		fmt.Fprintf(bw, "%s\t%d", s.ID, s.Samples)
		for _, id := range s.Subsets {
			bw.WriteString("\t" + id)
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// ReadPairs returns the pairs written to r by WritePairs.
func ReadPairs(r io.Reader) ([]Pair, error) {
	var pairs []Pair
	err := eachRow(r, func(line int, fields []string) error {
		if len(fields) < 2 {
			return fmt.Errorf("line %d: too few columns: %d", line, len(fields))
		}
		p := Pair{A: fields[0], B: fields[1]}
		if len(fields) > 2 {
			var err error
			p.Shared, err = strconv.Atoi(fields[2])
			if err != nil {
				return fmt.Errorf("line %d: %w", line, err)
			}
		}
		pairs = append(pairs, p)
		return nil
	})
	return pairs, err
}

// ReadSupersets returns the supersets written to r by WriteSupersets.
func ReadSupersets(r io.Reader) ([]Superset, error) {
	var supersets []Superset
	err := eachRow(r, func(line int, fields []string) error {
		if len(fields) < 3 {
			return fmt.Errorf("line %d: too few columns: %d", line, len(fields))
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		supersets = append(supersets, Superset{ID: fields[0], Samples: n, Subsets: fields[2:]})
		return nil
	})
	return supersets, err
}

// eachRow calls fn for each non-comment, non-empty line of r split on
// tabs.
func eachRow(r io.Reader, fn func(line int, fields []string) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(nil, 16<<20)
	var line int
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		err := fn(line, strings.Split(text, "\t"))
		if err != nil {
			return err
		}
	}
	return sc.Err()
}
