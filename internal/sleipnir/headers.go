// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sleipnir

import (
	"bufio"
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
)

// FixHeaders restores the header and EWEIGHT lines of the PCL file out
// from the PCL file in when they differ. Some KNNImputer versions corrupt
// these lines. If the second line of out is not an EWEIGHT line, it is a
// data row and is kept.
func FixHeaders(in, out string) error {
	inHead, err := headLines(in)
	if err != nil {
		return err
	}
	outHead, err := headLines(out)
	if err != nil {
		return err
	}
	if inHead[0] == outHead[0] && inHead[1] == outHead[1] {
		return nil
	}
	log.Warnf("KNNImputer has corrupted headers in %s: replacing with headers from %s", out, in)

	src, err := os.Open(out)
	if err != nil {
		return err
	}
	defer src.Close()
	tmp := out + ".tmp"
	dst, err := os.Create(tmp)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(dst)
	r := bufio.NewReader(src)
	w.WriteString(inHead[0])
	w.WriteString(inHead[1])
	_, err = r.ReadString('\n')
	if err == nil {
		var second string
		second, err = r.ReadString('\n')
		if err == nil || err == io.EOF {
			if !strings.Contains(strings.ToLower(second), "eweight") {
				w.WriteString(second)
			}
			if err == nil {
				_, err = io.Copy(w, r)
			}
		}
	}
	if err == io.EOF {
		err = nil
	}
	if err == nil {
		err = w.Flush()
	}
	cerr := dst.Close()
	if err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, out)
}

// headLines returns the first two lines of the file at path including
// their line endings.
func headLines(path string) ([2]string, error) {
	var lines [2]string
	f, err := os.Open(path)
	if err != nil {
		return lines, err
	}
	defer f.Close()
	r := bufio.NewReader(f)
	for i := range lines {
		lines[i], err = r.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				return lines, nil
			}
			return lines, err
		}
	}
	return lines, nil
}
