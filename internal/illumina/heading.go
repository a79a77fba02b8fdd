// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package illumina

import (
	"fmt"
	"strings"
)

var (
	idHeadings = []string{
		"ProbeID", "Probe ID", "PROBE_ID", "ID_REF", "Scan REF", "Array_Address_Id", "TargetID", "ID",
	}
	pValueHeadings = []string{
		"Pval", "p value", "p_value", "P Value", "P value", "pval", "P-VALUE", "P VALUE", "P-Value", "P-value",
	}
	signalHeadings = []string{
		"AVG_Signal", "Avg_Signal",
	}
	excludedHeadings = []string{
		"Symbol", "SYMBOL", "Avg_NBEADS", "BEAD_STDERR", "BEAD_STDEV", "ARRAY_STDEV", "NARRAYS", "Detection-",
		"MIN_Signal", "MAX_Signal", "SEARCH_KEY", "ILMN_GENE", "CHROMOSOME", "DEFINITION", "SYNONYMS",
		"SPECIES", "SOURCE", "TRANSCRIPT", "SOURCE_REFERENCE_ID", "REFSEQ_ID", "UNIGENE_ID", "ENTREZ_GENE_ID",
		"GI", "ACCESSION", "PROTEIN_PRODUCT", "ARRAY_ADDRESS_ID", "PROBE_TYPE", "PROBE_START", "PROBE_SEQUENCE",
		"PROBE_CHR_ORIENTATION", "PROBE_COORDINATES", "CYTOBAND", "ONTOLOGY_COMPONENT", "ONTOLOGY_PROCESS",
		"ONTOLOGY_FUNCTION",
	}
)

// IsHeading returns whether line is the column heading line of a
// probe table.
func IsHeading(line string) bool {
	for _, h := range idHeadings {
		if strings.HasPrefix(line, h) {
			return true
		}
	}
	return false
}

// Columns is the classification of the columns of a probe table.
type Columns struct {
	// Labels holds the trimmed headings with a
	// .COL.n suffix marking the column index, so
	// that repeated headings remain distinct.
	Labels []string

	// ID is the probe identifier column.
	ID int

	PValues  []int
	Excluded []int
	Samples  []int
}

// Analyze classifies the columns of a probe table heading. Columns whose
// headings hold an average signal label are samples. If there are none,
// all columns that are not identifiers, p-values or known annotation
// columns are taken to be samples.
func Analyze(heading []string) (Columns, error) {
	if n := len(heading); n != 0 && heading[n-1] == "" {
		heading = heading[:n-1]
	}
	labels := make([]string, len(heading))
	for i, h := range heading {
		labels[i] = fmt.Sprintf("%s.COL.%d", strings.TrimSpace(h), i)
	}

	c := analyze(heading, true)
	if c.ID < 0 || len(c.Samples) == 0 {
		c = analyze(heading, false)
	}
	if c.ID < 0 {
		return c, fmt.Errorf("no probe identifier column in heading: %q", heading)
	}
	if len(c.Samples) == 0 {
		return c, fmt.Errorf("no sample columns in heading: %q", heading)
	}
	c.Labels = labels
	return c, nil
}

func analyze(heading []string, signalOnly bool) Columns {
	c := Columns{ID: -1}
	for i, h := range heading {
		h = strings.TrimSpace(h)
		switch {
		case isOneOf(h, idHeadings):
			if c.ID < 0 {
				c.ID = i
			}
		case holdsOneOf(h, pValueHeadings):
			c.PValues = append(c.PValues, i)
		case signalOnly:
			if holdsOneOf(h, signalHeadings) {
				c.Samples = append(c.Samples, i)
			}
		case holdsOneOf(h, excludedHeadings):
			c.Excluded = append(c.Excluded, i)
		case h != "":
			c.Samples = append(c.Samples, i)
		}
	}
	return c
}

func isOneOf(s string, list []string) bool {
	for _, e := range list {
		if s == e {
			return true
		}
	}
	return false
}

func holdsOneOf(s string, list []string) bool {
	for _, e := range list {
		if strings.Contains(s, e) {
			return true
		}
	}
	return false
}
