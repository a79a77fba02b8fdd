// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package soft

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/klauspost/pgzip"
)

// Open opens the SOFT, or other text, file at path. Files with a .gz
// extension are decompressed.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, nil
	}
	r, err := pgzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return gzipFile{Reader: r, f: f}, nil
}

type gzipFile struct {
	*pgzip.Reader
	f *os.File
}

func (g gzipFile) Close() error {
	err := g.Reader.Close()
	ferr := g.f.Close()
	if err != nil {
		return err
	}
	return ferr
}

// IsSOFT returns whether the file name has a SOFT file extension.
func IsSOFT(name string) bool {
	return strings.HasSuffix(name, ".soft") || strings.HasSuffix(name, ".soft.gz")
}

// ReadGeneSet returns the set of white space separated gene names in r.
func ReadGeneSet(r io.Reader) (map[string]bool, error) {
	genes := make(map[string]bool)
	sc := bufio.NewScanner(r)
	sc.Buffer(nil, 1<<20)
	for sc.Scan() {
		for _, g := range strings.Fields(sc.Text()) {
			genes[g] = true
		}
	}
	return genes, sc.Err()
}

// lineScanner returns a line scanner over r with a buffer large enough
// for long SOFT description lines.
func lineScanner(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(nil, 16<<20)
	return sc
}

// valueAt returns the text of line from offset n, or the empty string
// if line is shorter than n.
func valueAt(line string, n int) string {
	if len(line) <= n {
		return ""
	}
	return line[n:]
}
