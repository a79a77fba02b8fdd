// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package crawl

import (
	"archive/tar"
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/pgzip"
	log "github.com/sirupsen/logrus"
)

// archive kinds recognised by Unpack, in order of matching.
var archives = []struct {
	suffix string
	expand func(path, dir string) error
}{
	{".tar.gz", untarGzip},
	{".tgz", untarGzip},
	{".tar", untar},
	{".gz", gunzip},
	{".Z", gunzip},
	{".zip", unzip},
}

func archiveKind(path string) int {
	for i, a := range archives {
		if strings.HasSuffix(path, a.suffix) {
			return i
		}
	}
	return -1
}

// IsCompressed returns whether path names an archive or compressed file
// that Unpack expands.
func IsCompressed(path string) bool {
	return archiveKind(path) >= 0
}

// Unpack expands all archives in the tree rooted at dir into the directory
// holding each archive. Expansion is repeated until no archive remains that
// has not been expanded, so nested archives are also unpacked. The archives
// themselves are left in place. Files compressed with the Unix compress
// format are not supported and result in an error.
func Unpack(dir string) error {
	done := make(map[string]bool)
	for {
		var pending []string
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || done[path] || !IsCompressed(path) {
				return nil
			}
			pending = append(pending, path)
			return nil
		})
		if err != nil {
			return err
		}
		if len(pending) == 0 {
			return nil
		}
		for _, path := range pending {
			log.Debugf("unpack %s", path)
			done[path] = true
			err = archives[archiveKind(path)].expand(path, filepath.Dir(path))
			if err != nil {
				return fmt.Errorf("could not unpack %s: %w", path, err)
			}
		}
	}
}

// Expand expands the archive or compressed file at path into dir.
func Expand(path, dir string) error {
	k := archiveKind(path)
	if k < 0 {
		return fmt.Errorf("not an archive: %s", path)
	}
	err := archives[k].expand(path, dir)
	if err != nil {
		return fmt.Errorf("could not unpack %s: %w", path, err)
	}
	return nil
}

func untarGzip(path, dir string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	r, err := pgzip.NewReader(f)
	if err != nil {
		return err
	}
	defer r.Close()
	return extractTar(r, dir)
}

func untar(path, dir string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return extractTar(f, dir)
}

func extractTar(r io.Reader, dir string) error {
	tr := tar.NewReader(r)
	for {
		h, err := tr.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		dst, err := within(dir, h.Name)
		if err != nil {
			return err
		}
		switch h.Typeflag {
		case tar.TypeDir:
			err = os.MkdirAll(dst, 0o755)
		case tar.TypeReg:
			err = writeTo(dst, tr)
		default:
			log.Warnf("skip tar entry %s of type %c", h.Name, h.Typeflag)
		}
		if err != nil {
			return err
		}
	}
}

func gunzip(path, dir string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	r, err := pgzip.NewReader(f)
	if err != nil {
		return err
	}
	defer r.Close()
	dst := filepath.Join(dir, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	return writeTo(dst, r)
}

func unzip(path, dir string) error {
	z, err := zip.OpenReader(path)
	if err != nil {
		return err
	}
	defer z.Close()
	for _, f := range z.File {
		dst, err := within(dir, f.Name)
		if err != nil {
			return err
		}
		if f.FileInfo().IsDir() {
			err = os.MkdirAll(dst, 0o755)
			if err != nil {
				return err
			}
			continue
		}
		r, err := f.Open()
		if err != nil {
			return err
		}
		err = writeTo(dst, r)
		r.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

// within returns name joined to dir, failing if the result is outside dir.
func within(dir, name string) (string, error) {
	dst := filepath.Join(dir, name)
	rel, err := filepath.Rel(dir, dst)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("archive entry outside destination: %s", name)
	}
	return dst, nil
}

func writeTo(path string, r io.Reader) (err error) {
	err = os.MkdirAll(filepath.Dir(path), 0o755)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		cerr := f.Close()
		if err == nil {
			err = cerr
		}
	}()
	_, err = io.Copy(f, r)
	return err
}

// DeleteCompressed removes all archive and compressed files in the tree
// rooted at dir.
func DeleteCompressed(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !IsCompressed(path) {
			return nil
		}
		log.Debugf("delete %s", path)
		return os.Remove(path)
	})
}

// MoveMatching moves the files in the tree rooted at src for which match
// returns true into dst, and returns their new paths in sorted order. The
// tree structure below src is not kept.
func MoveMatching(src, dst string, match func(path string) bool) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !match(path) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, nil
	}
	err = os.MkdirAll(dst, 0o755)
	if err != nil {
		return nil, err
	}
	moved := make([]string, 0, len(paths))
	for _, p := range paths {
		to := filepath.Join(dst, filepath.Base(p))
		err = move(p, to)
		if err != nil {
			return moved, err
		}
		moved = append(moved, to)
	}
	sort.Strings(moved)
	return moved, nil
}

// MoveAll moves all files in the tree rooted at src into dst and removes
// the subdirectories of src.
func MoveAll(src, dst string) ([]string, error) {
	moved, err := MoveMatching(src, dst, func(string) bool { return true })
	if err != nil {
		return moved, err
	}
	return moved, DeleteAll(src)
}

// DeleteAll removes the contents of dir, leaving dir in place.
func DeleteAll(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	for _, e := range entries {
		err = os.RemoveAll(filepath.Join(dir, e.Name()))
		if err != nil {
			return err
		}
	}
	return nil
}

// move renames src to dst, copying when a rename is not possible.
func move(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	var lerr *os.LinkError
	if !errors.As(err, &lerr) {
		return err
	}
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	err = writeTo(dst, f)
	f.Close()
	if err != nil {
		return err
	}
	return os.Remove(src)
}
