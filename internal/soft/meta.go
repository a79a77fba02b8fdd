// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package soft

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/kortschak/troilkatt/internal/geo"
	"github.com/kortschak/troilkatt/internal/troilkatt"
)

// attribute returns the value of a "!name = value" line. The returned
// bool is false if the line does not have exactly one '='.
func attribute(line string) (string, bool) {
	parts := strings.Split(line, "=")
	if len(parts) != 2 {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

// SeriesID returns the GSE accession of a series meta file name, the text
// before the first underscore.
func SeriesID(name string) string {
	name = filepath.Base(name)
	if i := strings.Index(name, "_"); i >= 0 {
		return name[:i]
	}
	return name
}

// AccessionID returns the accession of a dataset or platform meta file
// name, the text before the first dot.
func AccessionID(name string) string {
	name = filepath.Base(name)
	if i := strings.Index(name, "."); i >= 0 {
		return name[:i]
	}
	return name
}

// SeriesMeta returns the series table row for the series family meta
// file read from r.
func SeriesMeta(gse string, r io.Reader) (*geo.Series, error) {
	s := &geo.Series{GSE: gse}
	sc := lineScanner(r)
	for sc.Scan() {
		line := sc.Text()
		var dst *geo.List
		switch {
		case strings.HasPrefix(line, "!Series_submission_date"):
			if v, ok := attribute(line); ok {
				s.Date = v
			}
			continue
		case strings.HasPrefix(line, "!Platform_organism"):
			dst = &s.Organisms
		case strings.HasPrefix(line, "!Series_platform_id"):
			dst = &s.Platforms
		case strings.HasPrefix(line, "!Platform_title"):
			dst = &s.PlatformTitles
		case strings.HasPrefix(line, "!Sample_geo_accession"):
			dst = &s.Samples
		default:
			continue
		}
		if v, ok := attribute(line); ok {
			dst.Add(v)
		}
	}
	return s, sc.Err()
}

// DatasetMeta returns the dataset table row for the dataset meta file read
// from r.
func DatasetMeta(gds string, r io.Reader) (*geo.Dataset, error) {
	d := &geo.Dataset{GDS: gds}
	sc := lineScanner(r)
	for sc.Scan() {
		line := sc.Text()
		v, ok := attribute(line)
		if !ok {
			continue
		}
		switch {
		case strings.HasPrefix(line, "!dataset_update_date"):
			d.Date = v
		case strings.HasPrefix(line, "!dataset_reference_series"):
			d.Series.Add(v)
		case strings.HasPrefix(line, "!dataset_sample_organism"):
			d.Organism = v
		case strings.HasPrefix(line, "!dataset_sample_count"):
			d.NSamples = v
		case strings.HasPrefix(line, "!dataset_feature_count"):
			d.NGenes = v
		case strings.HasPrefix(line, "!dataset_platform "):
			d.Platform = v
		case strings.HasPrefix(line, "!subset_sample_id"):
			d.Samples.Add(v)
		}
	}
	return d, sc.Err()
}

// PlatformMeta returns the platform table row for the platform annotation
// meta file read from r.
func PlatformMeta(gpl string, r io.Reader) (*geo.Platform, error) {
	p := &geo.Platform{GPL: gpl}
	sc := lineScanner(r)
	for sc.Scan() {
		line := sc.Text()
		v, ok := attribute(line)
		if !ok {
			continue
		}
		switch {
		case strings.HasPrefix(line, "!Annotation_date"):
			p.Date = v
		case strings.HasPrefix(line, "!Annotation_platform_organism"):
			p.Organism = v
		case strings.HasPrefix(line, "!Annotation_platform_title"):
			p.Title = v
		}
	}
	return p, sc.Err()
}

// SeriesTable returns the series table for the series meta files in dir.
func SeriesTable(dir string) ([]*geo.Series, error) {
	var table []*geo.Series
	err := eachFile(dir, func(path string, r io.Reader) error {
		s, err := SeriesMeta(SeriesID(path), r)
		table = append(table, s)
		return err
	})
	return table, err
}

// DatasetTable returns the dataset table for the dataset meta files in
// dir. Datasets whose sample count does not match the number of subset
// samples are logged.
func DatasetTable(dir string) ([]*geo.Dataset, error) {
	var table []*geo.Dataset
	err := eachFile(dir, func(path string, r io.Reader) error {
		d, err := DatasetMeta(AccessionID(path), r)
		if err != nil {
			return err
		}
		if n, err := strconv.Atoi(d.NSamples); err == nil && n != len(d.Samples) {
			log.Warnf("%s: sample count mismatch: %d != %d", d.GDS, n, len(d.Samples))
		}
		table = append(table, d)
		return nil
	})
	return table, err
}

// PlatformTable returns the platform table for the platform meta files in
// dir.
func PlatformTable(dir string) ([]*geo.Platform, error) {
	var table []*geo.Platform
	err := eachFile(dir, func(path string, r io.Reader) error {
		p, err := PlatformMeta(AccessionID(path), r)
		table = append(table, p)
		return err
	})
	return table, err
}

// eachFile calls fn for each file in dir in name order.
func eachFile(dir string, fn func(path string, r io.Reader) error) error {
	files, err := troilkatt.AllFiles(dir, true)
	if err != nil {
		return err
	}
	for _, path := range files {
		f, err := Open(path)
		if err != nil {
			return err
		}
		err = fn(path, f)
		f.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}
