// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package soft

import (
	"io"
	"strings"

	"github.com/kortschak/troilkatt/internal/pcl"
)

// DatasetHeader returns an info record holding the header fields of the
// GEO dataset (GDS) SOFT file read from r. The File field and the value
// statistics are not set.
func DatasetHeader(r io.Reader) (*pcl.InfoRecord, error) {
	var rec pcl.InfoRecord
	tags := []struct {
		prefix string
		dst    *string
	}{
		{"!dataset_platform_organism = ", &rec.Organism},
		{"!dataset_platform = ", &rec.Platform},
		{"^DATASET = ", &rec.DatasetID},
		{"!dataset_title = ", &rec.Title},
		{"!dataset_description = ", &rec.Description},
		{"!dataset_pubmed_id = ", &rec.PubMedID},
		{"!dataset_feature_count = ", &rec.Features},
		{"!dataset_channel_count = ", &rec.ChannelInfo},
		{"!dataset_sample_count = ", &rec.Samples},
		{"!dataset_value_type = ", &rec.ValueType},
		{"!dataset_update_date = ", &rec.Date},
	}
	sc := lineScanner(r)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.HasPrefix(line, "!dataset_table_begin") {
			break
		}
		for _, t := range tags {
			if strings.HasPrefix(line, t.prefix) {
				*t.dst = line[len(t.prefix):]
				break
			}
		}
	}
	return &rec, sc.Err()
}
