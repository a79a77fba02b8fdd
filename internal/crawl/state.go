// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package crawl

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// State is the persistent record of a mirror's previous runs.
type State struct {
	// Crawled is the time of the last completed crawl.
	Crawled time.Time `yaml:"crawled,omitempty"`
	// IDs is the sorted list of mirrored identifiers.
	IDs []string `yaml:"ids"`
	// Files holds the local files retrieved for
	// each identifier, when these are recorded.
	Files map[string][]string `yaml:"files,omitempty"`
}

// LoadState reads a State from the YAML file at path. A missing file
// yields an empty State.
func LoadState(path string) (*State, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &State{}, nil
		}
		return nil, err
	}
	defer f.Close()
	return DecodeState(f)
}

// DecodeState reads a YAML encoded State from r.
func DecodeState(r io.Reader) (*State, error) {
	var s State
	err := yaml.NewDecoder(r).Decode(&s)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("could not decode crawl state: %w", err)
	}
	sort.Strings(s.IDs)
	return &s, nil
}

// Save writes the State to path as YAML.
func (s *State) Save(path string) (err error) {
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
	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	err = enc.Encode(s)
	if err != nil {
		return err
	}
	return enc.Close()
}

// Has returns whether id has been mirrored.
func (s *State) Has(id string) bool {
	i := sort.SearchStrings(s.IDs, id)
	return i < len(s.IDs) && s.IDs[i] == id
}

// Add records id as mirrored with the given local files.
func (s *State) Add(id string, files []string) {
	i := sort.SearchStrings(s.IDs, id)
	if i == len(s.IDs) || s.IDs[i] != id {
		s.IDs = append(s.IDs, "")
		copy(s.IDs[i+1:], s.IDs[i:])
		s.IDs[i] = id
	}
	if len(files) == 0 {
		return
	}
	if s.Files == nil {
		s.Files = make(map[string][]string)
	}
	s.Files[id] = files
}
