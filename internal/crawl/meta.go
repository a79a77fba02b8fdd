// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package crawl

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// MetaFile describes a remote meta file to download.
type MetaFile struct {
	// Source is the URL of the remote file.
	Source string `yaml:"source"`
	// Output is the local file name.
	Output string `yaml:"output"`
	// Dir is the local directory the file is
	// written to. It may hold TROILKATT.*
	// variables.
	Dir string `yaml:"dir"`
	// Parser is the name of the parser applied
	// to the file, "default" if empty.
	Parser string `yaml:"parser,omitempty"`

	Description string `yaml:"description,omitempty"`
}

// Manifest is the list of meta files fetched by a meta crawl.
type Manifest struct {
	Files []MetaFile `yaml:"files"`
}

// DefaultManifest is the manifest used when none is provided.
var DefaultManifest = Manifest{Files: []MetaFile{
	{
		Source:      "http://downloads.yeastgenome.org/gene_registry/registry.genenames.tab",
		Output:      "named_yeast_genes.tab",
		Dir:         "TROILKATT.GLOBALMETA_DIR",
		Parser:      "registry",
		Description: "Systematic to alias mapping of yeast gene names",
	},
	{
		Source:      "ftp://genome-ftp.stanford.edu/yeast/data_download/chromosomal_feature/SGD_features.tab",
		Output:      "all_yeast_genes.tab",
		Dir:         "TROILKATT.GLOBALMETA_DIR",
		Parser:      "features",
		Description: "Systematic to alias mapping of yeast gene names",
	},
}}

// ReadManifest reads a YAML manifest from r. Each file must have a source
// and an output name, and name a known parser.
func ReadManifest(r io.Reader) (*Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	err := dec.Decode(&m)
	if err != nil {
		return nil, fmt.Errorf("could not decode manifest: %w", err)
	}
	for i, f := range m.Files {
		if f.Source == "" || f.Output == "" {
			return nil, fmt.Errorf("manifest entry %d: missing source or output", i)
		}
		if _, ok := Parsers[f.parser()]; !ok {
			return nil, fmt.Errorf("manifest entry %d: unknown parser %q", i, f.Parser)
		}
	}
	return &m, nil
}

func (f MetaFile) parser() string {
	if f.Parser == "" {
		return "default"
	}
	return f.Parser
}

// Parser rewrites a downloaded meta file read from r into w.
type Parser func(r io.Reader, w io.Writer) error

// Parsers holds the meta file parsers by name.
var Parsers = map[string]Parser{
	"default":  Copy,
	"registry": ParseRegistry,
	"features": ParseFeatures,
}

// Copy writes r to w unchanged.
func Copy(r io.Reader, w io.Writer) error {
	_, err := io.Copy(w, r)
	return err
}

// ParseRegistry converts a yeast gene registry of systematic names, '|'
// separated aliases and descriptions into an alias table. Each name is
// also an alias of itself.
func ParseRegistry(r io.Reader, w io.Writer) error {
	t := make(aliasTable)
	sc := bufio.NewScanner(r)
	sc.Buffer(nil, 1<<20)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			log.Debug("skip empty line")
			continue
		}
		cols := strings.Split(line, "\t")
		var aliases []string
		if len(cols) > 1 {
			aliases = strings.Split(cols[1], "|")
		}
		t.add(cols[0], aliases)
	}
	if err := sc.Err(); err != nil {
		return err
	}
	return t.write(w)
}

// featureColumns is the number of columns in an SGD features table.
const featureColumns = 16

// ParseFeatures converts an SGD chromosomal features table into an alias
// table mapping the standard gene name and aliases of each feature to its
// systematic feature name. Lines starting with '!' are comments. Lines
// without exactly 16 columns or without a feature name are skipped.
func ParseFeatures(r io.Reader, w io.Writer) error {
	t := make(aliasTable)
	sc := bufio.NewScanner(r)
	sc.Buffer(nil, 1<<20)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if line == "" || line[0] == '!' {
			continue
		}
		cols := strings.Split(line, "\t")
		if len(cols) != featureColumns {
			log.Warnf("invalid line (%d columns): %q", len(cols), line)
			continue
		}
		name := cols[3]
		if name == "" {
			continue
		}
		t.add(name, append([]string{cols[4]}, strings.Split(cols[5], "|")...))
	}
	if err := sc.Err(); err != nil {
		return err
	}
	return t.write(w)
}

// aliasTable maps aliases to systematic names in order of first
// appearance.
type aliasTable map[string][]string

func (t aliasTable) add(name string, aliases []string) {
	for _, a := range append([]string{name}, aliases...) {
		if a == "" {
			continue
		}
		if contains(t[a], name) {
			continue
		}
		t[a] = append(t[a], name)
	}
}

func (t aliasTable) write(w io.Writer) error {
	keys := make([]string, 0, len(t))
	for a := range t {
		keys = append(keys, a)
	}
	sort.Strings(keys)
	bw := bufio.NewWriter(w)
	for _, a := range keys {
		_, err := fmt.Fprintf(bw, "%s\t%s\n", a, strings.Join(t[a], "|"))
		if err != nil {
			return err
		}
	}
	return bw.Flush()
}

func contains(list []string, s string) bool {
	for _, e := range list {
		if e == s {
			return true
		}
	}
	return false
}

// Fetcher retrieves the content of a URL.
type Fetcher interface {
	FetchURL(ctx context.Context, rawurl string, w io.Writer) error
}

// Opener is a Fetcher that opens a new Remote for each URL.
type Opener struct {
	// Email is the password for anonymous
	// FTP logins.
	Email string
}

// FetchURL writes the content at rawurl to w.
func (o Opener) FetchURL(ctx context.Context, rawurl string, w io.Writer) error {
	r, p, err := Open(ctx, rawurl, o.Email)
	if err != nil {
		return err
	}
	defer r.Close()
	return r.Fetch(ctx, p, w)
}

// MetaCrawler downloads and parses the files of a manifest.
type MetaCrawler struct {
	Fetcher Fetcher

	// Resolve resolves TROILKATT.* variables in
	// the directories of manifest entries.
	Resolve func(string) (string, error)

	// SaveDir is the directory that copies of the
	// parsed files are written to. No copy is kept
	// if SaveDir is empty.
	SaveDir string
}

// Run downloads and parses each file in m, returning the paths written.
// The first failure stops the crawl.
func (c *MetaCrawler) Run(ctx context.Context, m *Manifest) ([]string, error) {
	var written []string
	for _, f := range m.Files {
		dir := f.Dir
		if c.Resolve != nil {
			var err error
			dir, err = c.Resolve(dir)
			if err != nil {
				return written, err
			}
		}
		parse, ok := Parsers[f.parser()]
		if !ok {
			return written, fmt.Errorf("unknown parser %q for %s", f.Parser, f.Source)
		}

		log.Infof("download %s", f.Source)
		var buf bytes.Buffer
		err := c.Fetcher.FetchURL(ctx, f.Source, &buf)
		if err != nil {
			return written, err
		}

		dst := filepath.Join(dir, f.Output)
		paths := []string{dst}
		if c.SaveDir != "" {
			save := filepath.Join(c.SaveDir, f.Output)
			if filepath.Clean(save) != filepath.Clean(dst) {
				paths = append(paths, save)
			}
		}
		log.Infof("parse %s with %s parser and write to %s", f.Source, f.parser(), dst)
		err = writeParsed(paths, &buf, parse)
		if err != nil {
			return written, fmt.Errorf("could not write %s: %w", dst, err)
		}
		written = append(written, paths...)
	}
	return written, nil
}

func writeParsed(paths []string, r io.Reader, parse Parser) error {
	var ws []io.Writer
	for _, p := range paths {
		err := os.MkdirAll(filepath.Dir(p), 0o755)
		if err != nil {
			return err
		}
		f, err := os.Create(p)
		if err != nil {
			return err
		}
		defer f.Close()
		ws = append(ws, f)
	}
	err := parse(r, io.MultiWriter(ws...))
	if err != nil {
		return err
	}
	for _, w := range ws {
		err = w.(*os.File).Close()
		if err != nil {
			return err
		}
	}
	return nil
}
