// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package geo

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/gocarina/gocsv"
)

// List is a comma separated list of values in a table cell.
type List []string

// MarshalCSV implements the gocsv.TypeMarshaller interface.
func (l List) MarshalCSV() (string, error) {
	return strings.Join(l, ","), nil
}

// UnmarshalCSV implements the gocsv.TypeUnmarshaller interface. Empty
// items are dropped and white space is trimmed.
func (l *List) UnmarshalCSV(s string) error {
	*l = (*l)[:0]
	for _, v := range strings.Split(s, ",") {
		v = strings.TrimSpace(v)
		if v != "" {
			*l = append(*l, v)
		}
	}
	return nil
}

// Add appends the comma separated values in s that are not already in l.
func (l *List) Add(s string) {
	for _, v := range strings.Split(s, ",") {
		v = strings.TrimSpace(v)
		if v != "" && !l.Has(v) {
			*l = append(*l, v)
		}
	}
}

// Has returns whether v is in l.
func (l List) Has(v string) bool {
	for _, e := range l {
		if e == v {
			return true
		}
	}
	return false
}

// Series is a row of the series table.
type Series struct {
	GSE            string `csv:"GSE"`
	Date           string `csv:"Date"`
	Organisms      List   `csv:"Organisms"`
	Platforms      List   `csv:"Platforms"`
	Samples        List   `csv:"GSMs"`
	PlatformTitles List   `csv:"PlatformTitles"`
}

// Dataset is a row of the dataset table.
type Dataset struct {
	GDS      string `csv:"GDS"`
	Date     string `csv:"Date"`
	Organism string `csv:"Organism"`
	Platform string `csv:"Platform"`
	NSamples string `csv:"Samples"`
	NGenes   string `csv:"Genes"`
	Series   List   `csv:"GSEs"`
	Samples  List   `csv:"GSMs"`
}

// Platform is a row of the platform table.
type Platform struct {
	GPL      string `csv:"GPL"`
	Date     string `csv:"Date"`
	Organism string `csv:"Organism"`
	Title    string `csv:"Platform title"`
}

// ReadSeries returns the series table read from r.
func ReadSeries(r io.Reader) ([]*Series, error) {
	var t []*Series
	err := readTable(r, &t)
	return t, err
}

// ReadDatasets returns the dataset table read from r.
func ReadDatasets(r io.Reader) ([]*Dataset, error) {
	var t []*Dataset
	err := readTable(r, &t)
	return t, err
}

// ReadPlatforms returns the platform table read from r.
func ReadPlatforms(r io.Reader) ([]*Platform, error) {
	var t []*Platform
	err := readTable(r, &t)
	return t, err
}

// WriteTable writes a slice of *Series, *Dataset or *Platform to w as a
// tab-delimited table with a header row.
func WriteTable(w io.Writer, table interface{}) error {
	c := csv.NewWriter(w)
	c.Comma = '\t'
	return gocsv.MarshalCSV(table, gocsv.NewSafeCSVWriter(c))
}

func readTable(r io.Reader, dst interface{}) error {
	c := csv.NewReader(r)
	c.Comma = '\t'
	c.Comment = '#'
	c.LazyQuotes = true
	c.FieldsPerRecord = -1
	return gocsv.UnmarshalCSV(c, dst)
}
