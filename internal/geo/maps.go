// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package geo

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Map is a one to many mapping between accessions. Values are held in
// insertion order without duplicates.
type Map map[string][]string

// add appends the values in vals that are not already held for k.
func (m Map) add(k string, vals ...string) {
	for _, v := range vals {
		if !List(m[k]).Has(v) {
			m[k] = append(m[k], v)
		}
	}
}

// Keys returns the sorted keys of m.
func (m Map) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Maps holds the accession maps derived from the GEO tables. Accession
// identifiers are upper cased. Organism names and platform titles are
// kept as given.
type Maps struct {
	GDS2GSE, GSE2GDS Map
	GDS2GSM, GSM2GDS Map
	Org2GDS, GPL2GDS Map

	GSE2GSM, GSM2GSE Map
	Org2GSE, GPL2GSE Map

	GDS2GPLTitle, GSE2GPLTitle Map
}

// Named returns the maps keyed by their conventional file stem.
func (m *Maps) Named() map[string]Map {
	return map[string]Map{
		"gds2gse":      m.GDS2GSE,
		"gse2gds":      m.GSE2GDS,
		"gds2gsm":      m.GDS2GSM,
		"gsm2gds":      m.GSM2GDS,
		"org2gds":      m.Org2GDS,
		"gpl2gds":      m.GPL2GDS,
		"gse2gsm":      m.GSE2GSM,
		"gsm2gse":      m.GSM2GSE,
		"org2gse":      m.Org2GSE,
		"gpl2gse":      m.GPL2GSE,
		"gds2gplTitle": m.GDS2GPLTitle,
		"gse2gplTitle": m.GSE2GPLTitle,
	}
}

// unknownTitle is the platform title used when a platform is not in the
// platform table.
const unknownTitle = "Unknown"

// BuildMaps returns the accession maps for the given dataset, series and
// platform tables. Rows lacking an identifier are an error. Rows lacking
// mapped values are logged and contribute only the values they have.
func BuildMaps(datasets []*Dataset, series []*Series, platforms []*Platform) (*Maps, error) {
	m := &Maps{
		GDS2GSE: make(Map), GSE2GDS: make(Map),
		GDS2GSM: make(Map), GSM2GDS: make(Map),
		Org2GDS: make(Map), GPL2GDS: make(Map),
		GSE2GSM: make(Map), GSM2GSE: make(Map),
		Org2GSE: make(Map), GPL2GSE: make(Map),
		GDS2GPLTitle: make(Map), GSE2GPLTitle: make(Map),
	}

	gds2gpl := make(Map)
	for i, d := range datasets {
		gds := upper(d.GDS)
		if gds == "" {
			return nil, fmt.Errorf("no GDS in dataset row %d", i+1)
		}
		if gses := upperList(d.Series); len(gses) == 0 {
			log.Warnf("no GSE mapping for: %s", gds)
		} else {
			m.GDS2GSE.add(gds, gses...)
			for _, gse := range gses {
				m.GSE2GDS.add(gse, gds)
			}
		}
		if gsms := upperList(d.Samples); len(gsms) == 0 {
			log.Warnf("no GSMs for: %s", gds)
		} else {
			m.GDS2GSM.add(gds, gsms...)
			for _, gsm := range gsms {
				m.GSM2GDS.add(gsm, gds)
			}
		}
		if org := strings.TrimSpace(d.Organism); org == "" {
			log.Warnf("no organism for: %s", gds)
		} else {
			m.Org2GDS.add(org, gds)
		}
		if gpl := upper(d.Platform); gpl == "" {
			log.Warnf("no GPL for: %s", gds)
		} else {
			m.GPL2GDS.add(gpl, gds)
			gds2gpl.add(gds, gpl)
		}
	}

	for i, s := range series {
		gse := upper(s.GSE)
		if gse == "" {
			return nil, fmt.Errorf("no GSE in series row %d", i+1)
		}
		if gsms := upperList(s.Samples); len(gsms) == 0 {
			log.Warnf("no GSMs for: %s", gse)
		} else {
			m.GSE2GSM.add(gse, gsms...)
			for _, gsm := range gsms {
				m.GSM2GSE.add(gsm, gse)
			}
		}
		if len(s.Organisms) == 0 {
			log.Warnf("no organisms for: %s", gse)
		}
		for _, org := range s.Organisms {
			m.Org2GSE.add(org, gse)
		}
		if gpls := upperList(s.Platforms); len(gpls) == 0 {
			log.Warnf("no GPLs for: %s", gse)
		} else {
			for _, gpl := range gpls {
				m.GPL2GSE.add(gpl, gse)
			}
		}
		if len(s.PlatformTitles) == 0 {
			log.Warnf("no GPL title for: %s", gse)
			m.GSE2GPLTitle.add(gse, unknownTitle)
		} else {
			m.GSE2GPLTitle.add(gse, s.PlatformTitles...)
		}
	}

	titles := make(map[string]string)
	for _, p := range platforms {
		gpl := upper(p.GPL)
		if gpl == "" {
			log.Warn("platform row without GPL")
			continue
		}
		titles[gpl] = strings.TrimSpace(p.Title)
	}
	for gds, gpls := range gds2gpl {
		for _, gpl := range gpls {
			title, ok := titles[gpl]
			if !ok {
				title = unknownTitle
			}
			m.GDS2GPLTitle.add(gds, title)
		}
	}

	return m, nil
}

func upper(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func upperList(l List) []string {
	u := make([]string, 0, len(l))
	for _, v := range l {
		if v = upper(v); v != "" {
			u = append(u, v)
		}
	}
	return u
}

// WriteMap writes m to w, one key per line in key order followed by its
// tab separated values.
func WriteMap(w io.Writer, m Map) error {
	bw := bufio.NewWriter(w)
	for _, k := range m.Keys() {
		bw.WriteString(k)
		for _, v := range m[k] {
			bw.WriteString("\t" + v)
		}
		_, err := bw.WriteString("\n")
		if err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadMap returns the map written to r by WriteMap.
func ReadMap(r io.Reader) (Map, error) {
	m := make(Map)
	sc := bufio.NewScanner(r)
	sc.Buffer(nil, 16<<20)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r\n")
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		k := strings.TrimSpace(fields[0])
		vals := make([]string, 0, len(fields)-1)
		for _, v := range fields[1:] {
			if v = strings.TrimSpace(v); v != "" {
				vals = append(vals, v)
			}
		}
		m[k] = append(m[k], vals...)
	}
	return m, sc.Err()
}
