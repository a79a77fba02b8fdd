// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package idlist provides comparison and extraction of identifier lists.
package idlist

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"
)

// Read returns the set of trimmed lines in r. Empty lines are ignored.
func Read(r io.Reader) (map[string]bool, error) {
	ids := make(map[string]bool)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		id := strings.TrimSpace(sc.Text())
		if id == "" {
			continue
		}
		ids[id] = true
	}
	return ids, sc.Err()
}

// Compare returns the sorted identifiers only in a and only in b.
func Compare(a, b map[string]bool) (onlyA, onlyB []string) {
	return difference(a, b), difference(b, a)
}

func difference(a, b map[string]bool) []string {
	var d []string
	for id := range a {
		if !b[id] {
			d = append(d, id)
		}
	}
	sort.Strings(d)
	return d
}

// Extract writes the field at col of each line of r, split by delim, to
// w. Lines with too few fields are skipped. A negative col is an error.
func Extract(w io.Writer, r io.Reader, delim string, col int) error {
	if col < 0 {
		return fmt.Errorf("invalid column: %d", col)
	}
	if delim == "" {
		return fmt.Errorf("empty delimiter")
	}
	sc := bufio.NewScanner(r)
	bw := bufio.NewWriter(w)
	for sc.Scan() {
		fields := strings.Split(strings.TrimSpace(sc.Text()), delim)
		if col >= len(fields) {
			continue
		}
		bw.WriteString(fields[col])
		bw.WriteByte('\n')
	}
	if err := sc.Err(); err != nil {
		return err
	}
	return bw.Flush()
}
