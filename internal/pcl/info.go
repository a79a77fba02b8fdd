// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pcl

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/gocarina/gocsv"
)

// InfoRecord is a row of a SPELL dataset info table. The first twelve
// fields are taken from the GEO dataset SOFT header and the remainder are
// derived from the dataset's PCL values.
type InfoRecord struct {
	File        string `csv:"File"`
	DatasetID   string `csv:"DatasetID"`
	Organism    string `csv:"Organism"`
	Platform    string `csv:"Platform"`
	ValueType   string `csv:"ValueType"`
	ChannelInfo string `csv:"#channels"`
	Title       string `csv:"Title"`
	Description string `csv:"Description"`
	PubMedID    string `csv:"PubMedID"`
	Features    string `csv:"#features"`
	Samples     string `csv:"#samples"`
	Date        string `csv:"date"`

	Min      string `csv:"Min"`
	Max      string `csv:"Max"`
	Mean     string `csv:"Mean"`
	Neg      int    `csv:"#Neg"`
	Pos      int    `csv:"#Pos"`
	Zero     int    `csv:"#Zero"`
	Missing  int    `csv:"#MV"`
	Total    int    `csv:"#Total"`
	Channels int    `csv:"#Channels"`
	Logged   int    `csv:"logged"`
	ZerosMV  int    `csv:"zerosAreMVs"`
	MVCutoff string `csv:"MVcutoff"`
}

// infoColumns is the number of columns in a SPELL info table.
const infoColumns = 24

// SetStats fills the value derived fields of r from s.
func (r *InfoRecord) SetStats(s Stats) {
	inf := s.Infer()
	r.Min = formatStat(s.Min)
	r.Max = formatStat(s.Max)
	r.Mean = formatStat(s.Mean)
	r.Neg = s.Neg
	r.Pos = s.Pos
	r.Zero = s.Zero
	r.Missing = s.Missing
	r.Total = s.Total
	r.Channels = inf.Channels
	r.Logged = boolInt(inf.Logged)
	r.ZerosMV = boolInt(inf.ZerosAreMissing)
	r.MVCutoff = inf.MVCutoff
}

func formatStat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// newInfoReader returns a tab-delimited reader that skips lines starting
// with '#'.
func newInfoReader(r io.Reader) *csv.Reader {
	c := csv.NewReader(r)
	c.Comma = '\t'
	c.Comment = '#'
	c.LazyQuotes = true
	c.FieldsPerRecord = -1
	return c
}

// ReadInfo returns the records of the SPELL info table in r. The table must
// start with a header row. Rows that do not have 24 columns are returned
// as errors in bad, one per row, and are otherwise ignored.
func ReadInfo(r io.Reader) (records []*InfoRecord, bad []error, err error) {
	c := newInfoReader(r)
	var rows [][]string
	header := true
	for {
		rec, err := c.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, nil, err
		}
		if !header && len(rec) != infoColumns {
			line, _ := c.FieldPos(0)
			bad = append(bad, fmt.Errorf("line %d: invalid column count: %d", line, len(rec)))
			continue
		}
		header = false
		rows = append(rows, rec)
	}
	if len(rows) == 0 {
		return nil, bad, nil
	}
	err = gocsv.UnmarshalCSV(&rowReader{rows: rows}, &records)
	return records, bad, err
}

// rowReader is a gocsv.CSVReader over pre-validated rows.
type rowReader struct {
	rows [][]string
}

func (r *rowReader) Read() ([]string, error) {
	if len(r.rows) == 0 {
		return nil, io.EOF
	}
	rec := r.rows[0]
	r.rows = r.rows[1:]
	return rec, nil
}

func (r *rowReader) ReadAll() ([][]string, error) {
	rows := r.rows
	r.rows = nil
	return rows, nil
}

// WriteInfo writes records to w as a tab-delimited SPELL info table with a
// header row.
func WriteInfo(w io.Writer, records []*InfoRecord) error {
	c := csv.NewWriter(w)
	c.Comma = '\t'
	return gocsv.MarshalCSV(records, gocsv.NewSafeCSVWriter(c))
}

// WritePubMedList writes one "file<tab>PubMed ID" line per record to w.
func WritePubMedList(w io.Writer, records []*InfoRecord) error {
	for _, r := range records {
		_, err := fmt.Fprintf(w, "%s\t%s\n", r.File, r.PubMedID)
		if err != nil {
			return err
		}
	}
	return nil
}

// WriteFileList writes one file name per record to w.
func WriteFileList(w io.Writer, records []*InfoRecord) error {
	for _, r := range records {
		_, err := fmt.Fprintln(w, r.File)
		if err != nil {
			return err
		}
	}
	return nil
}
