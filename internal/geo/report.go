// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package geo

import (
	"html/template"
	"io"
	"sort"
)

// AccessionURL is the prefix of GEO accession display pages.
const AccessionURL = "http://www.ncbi.nlm.nih.gov/geo/query/acc.cgi?acc="

var reports = template.Must(template.New("reports").Funcs(template.FuncMap{
	"url": func(id string) string { return AccessionURL + id },
}).Parse(`
{{- define "acc"}}<a href="{{url .}}">{{.}}</a>{{end}}

{{- define "head"}}<html>
<title>{{.Title}}</title>
<body>
<p>{{.Label}}</p>
<table border='1'>
{{end}}

{{- define "tail"}}</table>
</body>
</html>
{{end}}

{{- define "duplicates"}}{{template "head" .}}<tr><td>Series/Datasets</td></tr>
{{range .Pairs}}<tr><td>{{template "acc" .A}} and {{template "acc" .B}}</td></tr>
{{end}}{{template "tail"}}{{end}}

{{- define "subsets"}}{{template "head" .}}<tr><td>Subset</td><td>have N samples</td><td>in superset</td></tr>
{{range .Pairs}}<tr><td>{{template "acc" .A}}</td><td>{{.Shared}}</td><td>{{template "acc" .B}}</td></tr>
{{end}}{{template "tail"}}{{end}}

{{- define "supersets"}}{{template "head" .}}<tr><td>Superset</td><td>Superset samples</td><td>Subsets...</td></tr>
{{range .Supersets}}<tr><td>{{template "acc" .ID}}</td><td>{{.Samples}}</td><td>{{range $i, $id := .Subsets}}{{if $i}}, {{end}}{{template "acc" $id}}{{end}}</td></tr>
{{end}}{{template "tail"}}{{end}}

{{- define "mapping"}}{{template "head" .}}{{range .Rows}}<tr><td>{{template "acc" .Key}}</td><td>{{range $i, $id := .Values}}{{if $i}}, {{end}}{{template "acc" $id}}{{end}}</td></tr>
{{end}}{{template "tail"}}{{end}}
`))

type report struct {
	Title, Label string

	Pairs     []Pair
	Supersets []Superset
	Rows      []mapRow
}

type mapRow struct {
	Key    string
	Values []string
}

// WriteDuplicatesHTML writes an HTML table of duplicate pairs to w.
func WriteDuplicatesHTML(w io.Writer, title string, pairs []Pair) error {
	return reports.ExecuteTemplate(w, "duplicates", report{Title: title, Label: title, Pairs: sortedPairs(pairs)})
}

// WriteSubsetsHTML writes an HTML table of subset or partial overlap
// pairs to w.
func WriteSubsetsHTML(w io.Writer, title, label string, pairs []Pair) error {
	return reports.ExecuteTemplate(w, "subsets", report{Title: title, Label: label, Pairs: sortedPairs(pairs)})
}

// WriteSupersetsHTML writes an HTML table of supersets to w.
func WriteSupersetsHTML(w io.Writer, title, label string, supersets []Superset) error {
	s := append([]Superset(nil), supersets...)
	sort.Slice(s, func(i, j int) bool { return s[i].ID < s[j].ID })
	return reports.ExecuteTemplate(w, "supersets", report{Title: title, Label: label, Supersets: s})
}

// WriteMappingHTML writes an HTML table of the map m to w in key order.
func WriteMappingHTML(w io.Writer, title, label string, m Map) error {
	var rows []mapRow
	for _, k := range m.Keys() {
		rows = append(rows, mapRow{Key: k, Values: m[k]})
	}
	return reports.ExecuteTemplate(w, "mapping", report{Title: title, Label: label, Rows: rows})
}

func sortedPairs(pairs []Pair) []Pair {
	p := append([]Pair(nil), pairs...)
	sort.Slice(p, func(i, j int) bool {
		if p[i].A != p[j].A {
			return p[i].A < p[j].A
		}
		return p[i].B < p[j].B
	})
	return p
}
