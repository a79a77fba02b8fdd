// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package troilkatt

import (
	"bufio"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// AllFiles returns the sorted names of the files in dir, excluding
// dot files. If absolute is true the returned names are joined to dir.
func AllFiles(dir string, absolute bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		name := e.Name()
		if absolute {
			name = filepath.Join(dir, name)
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// SaveList writes items to the file name in dir, one item per line.
func SaveList(dir, name string, items []string) (err error) {
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return err
	}
	defer func() {
		cerr := f.Close()
		if err == nil {
			err = cerr
		}
	}()
	w := bufio.NewWriter(f)
	for _, s := range items {
		_, err = w.WriteString(s + "\n")
		if err != nil {
			return err
		}
	}
	return w.Flush()
}

// ReadList returns the non-empty lines of the file at path with leading
// and trailing white space removed.
func ReadList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var items []string
	sc := bufio.NewScanner(f)
	sc.Buffer(nil, 1<<20)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" {
			continue
		}
		items = append(items, s)
	}
	return items, sc.Err()
}
