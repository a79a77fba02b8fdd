// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sleipnir

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	sp "github.com/scipipe/scipipe"
	log "github.com/sirupsen/logrus"

	"github.com/kortschak/troilkatt/internal/crawl"
	"github.com/kortschak/troilkatt/internal/pcl"
	"github.com/kortschak/troilkatt/internal/troilkatt"
)

// R runs an R script converting a directory of CEL files.
type R struct {
	// Bin is the path to the R binary.
	Bin string
	// Script is the path to the R script.
	Script string
	// Args holds additional script arguments
	// such as an organism code.
	Args []string
}

// CEL is a CEL archive conversion.
type CEL struct {
	R R

	// TmpDir is the directory CEL files are
	// unpacked into. It is emptied before use.
	TmpDir string
	// OutDir receives the PCL files.
	OutDir string
	// LogDir receives the R output and error
	// streams.
	LogDir string
}

// Prepare empties the temporary directory, unpacks the CEL archive at
// path into it and decompresses the unpacked files.
func (c *CEL) Prepare(path string) error {
	err := crawl.DeleteAll(c.TmpDir)
	if err != nil {
		return err
	}
	err = os.MkdirAll(c.TmpDir, 0o755)
	if err != nil {
		return err
	}
	err = crawl.Expand(path, c.TmpDir)
	if err != nil {
		return err
	}
	err = crawl.Unpack(c.TmpDir)
	if err != nil {
		return err
	}
	return crawl.DeleteCompressed(c.TmpDir)
}

// Workflow returns the batch running the R script over the unpacked
// archive named name. The script writes its tables with the prefix
// <TmpDir>/<name>.tmp and its probe map to <TmpDir>/<name>.map. The
// batch has a single job keyed by name.
func (c *CEL) Workflow(name string) (*Batch, error) {
	var abs [3]string
	for i, p := range []string{c.TmpDir, c.LogDir, c.R.Script} {
		var err error
		abs[i], err = filepath.Abs(p)
		if err != nil {
			return nil, err
		}
	}
	tmp, logDir, script := abs[0], abs[1], abs[2]
	args := append([]string{
		tmp,
		filepath.Join(tmp, name+".tmp"),
		filepath.Join(tmp, name+".map"),
	}, c.R.Args...)
	cmd := fmt.Sprintf("%s --no-save --args %s < %s > %s 2> %s && echo done > {o:done}",
		c.R.Bin, strings.Join(args, " "), script,
		filepath.Join(logDir, name+".R.output"), filepath.Join(logDir, name+".R.error"),
	)
	done := filepath.Join(logDir, name+".R.done")
	wf := sp.NewWorkflowCustomLogFile("cel2pcl_"+name, 1, filepath.Join(logDir, name+".scipipe.log"))
	b := newBatch(wf, []Job{{In: name}}, []Job{{In: name, Out: done}})
	r := wf.NewProc("r_"+name, cmd)
	r.SetOut("done", done)
	r.CustomExecute = b.execute(0)
	return b, nil
}

// Convert converts the CEL archive at path, returning the written PCL
// files. Tables written by a failing R script are still converted, and
// the script's error is returned with them.
func (c *CEL) Convert(path string) ([]string, error) {
	name := stem(path)
	log.Infof("[convert %s]", filepath.Base(path))
	err := c.Prepare(path)
	if err != nil {
		return nil, err
	}
	err = os.MkdirAll(c.LogDir, 0o755)
	if err != nil {
		return nil, err
	}
	// Tasks with existing outputs are skipped.
	err = os.Remove(filepath.Join(c.LogDir, name+".R.done"))
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	b, err := c.Workflow(name)
	if err != nil {
		return nil, err
	}
	failed, err := b.Run()
	if err != nil {
		return nil, err
	}
	written, err := Merge(c.TmpDir, name+".tmp", c.OutDir)
	if rerr := failed[name]; rerr != nil {
		return written, errors.Join(fmt.Errorf("R script failed: %w", rerr), err)
	}
	return written, err
}

// Merge converts the partial tables written by the R script with the
// given prefix in dir into PCL files in outDir. Tables for single sample
// and all zero platforms are skipped.
func Merge(dir, prefix, outDir string) ([]string, error) {
	names, err := troilkatt.AllFiles(dir, false)
	if err != nil {
		return nil, err
	}
	err = os.MkdirAll(outDir, 0o755)
	if err != nil {
		return nil, err
	}
	var written []string
	for _, n := range names {
		if !strings.Contains(n, prefix) || strings.Contains(n, ".single") || strings.Contains(n, ".zero") {
			continue
		}
		out := strings.Replace(n, ".tmp.platform.", ".", 1)
		if out == n {
			out = strings.Replace(n, ".tmp", "", 1)
		}
		out = strings.TrimSuffix(out, ".") + ".pcl"

		f, err := os.Open(filepath.Join(dir, n))
		if err != nil {
			return written, err
		}
		m, err := ReadRTable(f)
		f.Close()
		if err != nil {
			return written, fmt.Errorf("could not read %s: %w", n, err)
		}
		path := filepath.Join(outDir, out)
		err = m.WriteFile(path, -1)
		if err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

// ReadRTable reads a table written by R's write.table: a heading with an
// empty first cell followed by sample names, and rows of an identifier
// followed by values. Rows with fewer than two cells are skipped.
func ReadRTable(r io.Reader) (*pcl.Matrix, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(nil, 16<<20)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, err
		}
		return nil, pcl.ErrEmpty
	}
	heading := strings.Split(strings.TrimRight(sc.Text(), "\r\n"), "\t")
	m := pcl.Matrix{Samples: unquote(heading[1:])}
	for sc.Scan() {
		cols := strings.Split(strings.TrimRight(sc.Text(), "\r\n"), "\t")
		if len(cols) < 2 {
			continue
		}
		values := make([]float64, len(m.Samples))
		for i := range values {
			values[i] = math.NaN()
			if i+1 >= len(cols) {
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(cols[i+1]), 64)
			if err == nil {
				values[i] = v
			}
		}
		id := unquote(cols[:1])[0]
		m.Append(id, id, 1, values)
	}
	return &m, sc.Err()
}

func unquote(s []string) []string {
	u := make([]string, len(s))
	for i, v := range s {
		u[i] = strings.Trim(strings.TrimSpace(v), `"`)
	}
	return u
}
