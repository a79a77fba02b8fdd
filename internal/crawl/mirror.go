// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package crawl

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/kortschak/troilkatt/internal/soft"
	"github.com/kortschak/troilkatt/internal/troilkatt"
)

// Entry is a remote directory to mirror.
type Entry struct {
	// ID is the accession identifier of the entry.
	ID string
	// Path is the remote path of the directory.
	Path string
}

// Dirs holds the local directories used by a mirror.
type Dirs struct {
	// Download is the staging directory for
	// retrieved files. It is emptied after each
	// entry.
	Download string
	// Output receives the files of interest.
	Output string
	// Unknown receives files that are retrieved
	// but are not of interest. If empty, these
	// files are deleted.
	Unknown string
}

// Source is a remote tree layout.
type Source interface {
	// Entries returns the entries available from r.
	Entries(ctx context.Context, r Remote) ([]Entry, error)
	// Retrieve downloads the entry e from r and places
	// the results according to dirs, returning the paths
	// of the output files.
	Retrieve(ctx context.Context, r Remote, e Entry, dirs Dirs) ([]string, error)
}

// Mirror mirrors new entries of a Source.
type Mirror struct {
	Remote Remote
	Source Source
	Dirs   Dirs

	// ListDir is the directory that the all, new,
	// previous, downloaded and errors lists are
	// written to.
	ListDir string

	// Limit is the maximum number of new entries
	// to retrieve in one run. No limit is applied
	// if Limit is zero or negative.
	Limit int

	// State is the record of previously
	// mirrored entries. It is updated by Run.
	State *State
}

// Result is the outcome of a mirror run.
type Result struct {
	All        []string
	New        []string
	Downloaded []string
	Errors     []string
}

// Run lists the source's entries and retrieves those that are not yet
// recorded in the mirror's state. An entry that fails to be retrieved is
// recorded as an error and any partially retrieved files are removed; it
// will be retried in a later run. Run returns an error only when the
// remote cannot be listed or the local directories cannot be written.
func (m *Mirror) Run(ctx context.Context) (*Result, error) {
	if m.State == nil {
		m.State = &State{}
	}
	for _, d := range []string{m.Dirs.Download, m.Dirs.Output, m.Dirs.Unknown, m.ListDir} {
		if d == "" {
			continue
		}
		err := os.MkdirAll(d, 0o755)
		if err != nil {
			return nil, err
		}
	}

	log.Info("[list remote entries]")
	entries, err := m.Source.Entries(ctx, m.Remote)
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })

	var res Result
	var fresh []Entry
	for _, e := range entries {
		res.All = append(res.All, e.ID)
		if !m.State.Has(e.ID) {
			fresh = append(fresh, e)
		}
	}
	log.Infof("%d entries listed: %d new", len(entries), len(fresh))
	if m.Limit > 0 && len(fresh) > m.Limit {
		log.Infof("retrieving only the first %d new entries", m.Limit)
		fresh = fresh[:m.Limit]
	}
	for _, e := range fresh {
		res.New = append(res.New, e.ID)
	}
	err = m.saveList("all", res.All)
	if err != nil {
		return nil, err
	}
	err = m.saveList("previous", m.State.IDs)
	if err != nil {
		return nil, err
	}
	err = m.saveList("new", res.New)
	if err != nil {
		return nil, err
	}

	log.Info("[retrieve new entries]")
	for _, e := range fresh {
		if err := ctx.Err(); err != nil {
			return &res, err
		}
		log.Infof("retrieve %s from %s", e.ID, e.Path)
		files, err := m.Source.Retrieve(ctx, m.Remote, e, m.Dirs)
		if err != nil {
			log.Errorf("could not retrieve %s: %v", e.ID, err)
			res.Errors = append(res.Errors, e.ID)
			for _, f := range files {
				os.Remove(f)
			}
			err = DeleteAll(m.Dirs.Download)
			if err != nil {
				return &res, err
			}
			continue
		}
		res.Downloaded = append(res.Downloaded, e.ID)
		m.State.Add(e.ID, files)
	}
	m.State.Crawled = time.Now().UTC()

	err = m.saveList("downloaded", res.Downloaded)
	if err != nil {
		return &res, err
	}
	err = m.saveList("errors", res.Errors)
	if err != nil {
		return &res, err
	}
	log.Infof("%d entries downloaded: %d errors", len(res.Downloaded), len(res.Errors))
	return &res, nil
}

// Sync runs the mirror with the state stored at statePath and saves the
// updated state there. A missing state file is treated as an empty state.
// The state is saved even if the run fails part way.
func (m *Mirror) Sync(ctx context.Context, statePath string) (*Result, error) {
	state, err := LoadState(statePath)
	if err != nil {
		return nil, err
	}
	m.State = state
	res, err := m.Run(ctx)
	if res == nil {
		return nil, err
	}
	serr := m.State.Save(statePath)
	if err == nil {
		err = serr
	}
	return res, err
}

func (m *Mirror) saveList(name string, items []string) error {
	if m.ListDir == "" {
		return nil
	}
	return troilkatt.SaveList(m.ListDir, name, items)
}

// GEOSeries is the GEO series family SOFT tree. Each entry is a GSE
// directory holding compressed SOFT files. Retrieved files are unpacked,
// SOFT files are moved to the output directory and all other files are
// moved to the unknown directory.
type GEOSeries struct {
	// Root is the remote directory listing
	// the series directories.
	Root string
}

// DefaultGEOSeriesRoot is the GEO by series SOFT directory on GEOHost.
const DefaultGEOSeriesRoot = "/pub/geo/DATA/SOFT/by_series"

// Entries returns the series directories below the root.
func (s GEOSeries) Entries(ctx context.Context, r Remote) ([]Entry, error) {
	return listEntries(ctx, r, s.Root)
}

// Retrieve downloads and unpacks the files of the series e.
func (s GEOSeries) Retrieve(ctx context.Context, r Remote, e Entry, dirs Dirs) ([]string, error) {
	_, err := fetchDir(ctx, r, e.Path, dirs.Download)
	if err != nil {
		return nil, err
	}
	err = Unpack(dirs.Download)
	if err != nil {
		return nil, err
	}
	err = DeleteCompressed(dirs.Download)
	if err != nil {
		return nil, err
	}
	files, err := MoveMatching(dirs.Download, dirs.Output, soft.IsSOFT)
	if err != nil {
		return files, err
	}
	if dirs.Unknown == "" {
		return files, DeleteAll(dirs.Download)
	}
	_, err = MoveAll(dirs.Download, dirs.Unknown)
	return files, err
}

// GEOSupplementary is the GEO supplementary series tree. Only the
// filelist.txt of each series is retrieved, into a directory named for the
// series below the output directory.
type GEOSupplementary struct {
	// Root is the remote directory listing
	// the series directories.
	Root string
}

// DefaultGEOSupplementaryRoot is the GEO supplementary series directory
// on GEOHost.
const DefaultGEOSupplementaryRoot = "/pub/geo/DATA/supplementary/series"

// Entries returns the series directories below the root.
func (s GEOSupplementary) Entries(ctx context.Context, r Remote) ([]Entry, error) {
	return listEntries(ctx, r, s.Root)
}

// Retrieve downloads the file list of the series e.
func (s GEOSupplementary) Retrieve(ctx context.Context, r Remote, e Entry, dirs Dirs) ([]string, error) {
	dst := filepath.Join(dirs.Output, e.ID, "filelist.txt")
	err := fetchFile(ctx, r, path.Join(e.Path, "filelist.txt"), dst)
	if err != nil {
		return nil, err
	}
	return []string{dst}, nil
}

// ArrayExpress is the ArrayExpress experiment tree. Experiments are held
// in directories below one directory per platform. Entries whose names
// contain a dot are not experiments and are ignored. Retrieved files are
// moved to the output directory as they are.
type ArrayExpress struct {
	// Root is the remote directory listing
	// the platform directories.
	Root string
}

// DefaultArrayExpressRoot is the experiment directory on ArrayExpressHost.
const DefaultArrayExpressRoot = "/pub/databases/microarray/data/experiment"

// Entries returns the experiment directories below the platform
// directories of the root.
func (s ArrayExpress) Entries(ctx context.Context, r Remote) ([]Entry, error) {
	platforms, err := r.List(ctx, s.Root)
	if err != nil {
		return nil, err
	}
	var entries []Entry
	for _, p := range platforms {
		if strings.Contains(path.Base(p), ".") {
			continue
		}
		experiments, err := r.List(ctx, p)
		if err != nil {
			return nil, err
		}
		for _, e := range experiments {
			id := path.Base(e)
			if strings.Contains(id, ".") {
				log.Debugf("skip invalid experiment id: %s", id)
				continue
			}
			entries = append(entries, Entry{ID: id, Path: e})
		}
	}
	return entries, nil
}

// Retrieve downloads the files of the experiment e.
func (s ArrayExpress) Retrieve(ctx context.Context, r Remote, e Entry, dirs Dirs) ([]string, error) {
	files, err := fetchDir(ctx, r, e.Path, dirs.Download)
	if err != nil {
		return files, err
	}
	return MoveAll(dirs.Download, dirs.Output)
}

func listEntries(ctx context.Context, r Remote, root string) ([]Entry, error) {
	paths, err := r.List(ctx, root)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, len(paths))
	for i, p := range paths {
		entries[i] = Entry{ID: path.Base(p), Path: p}
	}
	return entries, nil
}

// fetchDir downloads the files listed in the remote directory dir into the
// local directory dst, returning the local paths written.
func fetchDir(ctx context.Context, r Remote, dir, dst string) ([]string, error) {
	paths, err := r.List(ctx, dir)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no files in %s", dir)
	}
	var files []string
	for _, p := range paths {
		local := filepath.Join(dst, path.Base(p))
		err = fetchFile(ctx, r, p, local)
		if err != nil {
			return files, err
		}
		files = append(files, local)
	}
	return files, nil
}

// fetchFile downloads the remote file p to the local path dst, removing
// dst if the download fails.
func fetchFile(ctx context.Context, r Remote, p, dst string) error {
	err := os.MkdirAll(filepath.Dir(dst), 0o755)
	if err != nil {
		return err
	}
	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	err = r.Fetch(ctx, p, f)
	cerr := f.Close()
	if err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(dst)
		return err
	}
	log.Debugf("retrieved %s", dst)
	return nil
}
