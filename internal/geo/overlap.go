// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package geo

import (
	"io"
)

// Overlap describes two series or datasets that share samples.
type Overlap struct {
	ID1    string `csv:"ID1"`
	ID2    string `csv:"ID2"`
	Shared int    `csv:"Overlapping"`
	Len1   int    `csv:"len(GSM1)"`
	Len2   int    `csv:"len(GSM2)"`
}

// Overlaps returns every pair of keys in gid2gsm that share at least one
// sample. Pairs are ordered by key with ID1 < ID2.
func Overlaps(gid2gsm Map) []*Overlap {
	keys := gid2gsm.Keys()
	sets := make([]map[string]bool, len(keys))
	for i, k := range keys {
		sets[i] = make(map[string]bool, len(gid2gsm[k]))
		for _, gsm := range gid2gsm[k] {
			sets[i][gsm] = true
		}
	}

	var overlaps []*Overlap
	for i, k1 := range keys {
		gsm1 := gid2gsm[k1]
		for j := i + 1; j < len(keys); j++ {
			var n int
			for _, gsm := range gsm1 {
				if sets[j][gsm] {
					n++
				}
			}
			if n == 0 {
				continue
			}
			k2 := keys[j]
			overlaps = append(overlaps, &Overlap{
				ID1:    k1,
				ID2:    k2,
				Shared: n,
				Len1:   len(gsm1),
				Len2:   len(gid2gsm[k2]),
			})
		}
	}
	return overlaps
}

// ReadOverlaps returns the overlap table read from r.
func ReadOverlaps(r io.Reader) ([]*Overlap, error) {
	var t []*Overlap
	err := readTable(r, &t)
	return t, err
}

// Duplicate returns whether both members of the pair hold exactly the
// same samples.
func (o *Overlap) Duplicate() bool {
	return o.Shared == o.Len1 && o.Len1 == o.Len2
}
