// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// geomirror mirrors new GEO series.
//
// It is run as a Troilkatt stage:
//
//  geomirror [options] inputDir outputDir metaDir logDir tmpDir [mirror options] [unknownDir]
//
// with the mirror options:
//
//  -source NAME  the GEO tree to mirror: series (SOFT series family
//                files, the default) or supplementary (supplementary
//                file lists)
//  -url URL      the remote host (default ftp://ftp.ncbi.nih.gov)
//  -root PATH    the remote tree root (default depends on the source)
//  -limit N      retrieve at most N new series in one run
//
// Retrieved files are staged in tmpDir. SOFT files are moved to outputDir
// and other retrieved files to unknownDir, or are deleted if unknownDir is
// not given. The mirror state is kept in <metaDir>/geomirror.yaml and the
// all, previous, new, downloaded and errors lists are written to logDir.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/kortschak/troilkatt/internal/crawl"
	"github.com/kortschak/troilkatt/internal/troilkatt"
)

func main() {
	s, lf, err := troilkatt.Start(os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer lf.Close()

	fs := flag.NewFlagSet(s.Name, flag.ContinueOnError)
	var (
		source = fs.String("source", "series", "specify the GEO tree to mirror {series or supplementary}")
		rawurl = fs.String("url", "ftp://"+crawl.GEOHost, "specify the remote host")
		root   = fs.String("root", "", "specify the remote tree root")
		limit  = fs.Int("limit", 0, "specify the maximum number of new series to retrieve")
	)
	err = fs.Parse(strings.Fields(s.Args))
	if err != nil {
		log.Fatalf("invalid stage arguments: %v", err)
	}

	var src crawl.Source
	switch *source {
	case "series":
		if *root == "" {
			*root = crawl.DefaultGEOSeriesRoot
		}
		src = crawl.GEOSeries{Root: *root}
	case "supplementary":
		if *root == "" {
			*root = crawl.DefaultGEOSupplementaryRoot
		}
		src = crawl.GEOSupplementary{Root: *root}
	default:
		log.Fatalf("unknown source: %q", *source)
	}

	err = mirror(s, src, *rawurl, fs.Arg(0), *limit)
	if err != nil {
		log.Fatal(err)
	}
}

func mirror(s *troilkatt.Stage, src crawl.Source, rawurl, unknown string, limit int) error {
	email, err := s.Properties().Get("troilkatt.admin.email")
	if err != nil {
		log.Warn(err)
		email = "anonymous@"
	}

	ctx := context.Background()
	log.Printf("[connecting to %s]", rawurl)
	remote, _, err := crawl.Open(ctx, rawurl, email)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer remote.Close()

	m := crawl.Mirror{
		Remote: remote,
		Source: src,
		Dirs: crawl.Dirs{
			Download: s.TmpDir,
			Output:   s.OutputDir,
			Unknown:  unknown,
		},
		ListDir: s.LogDir,
		Limit:   limit,
	}
	err = os.MkdirAll(s.MetaDir, 0o755)
	if err != nil {
		return err
	}
	res, err := m.Sync(ctx, filepath.Join(s.MetaDir, "geomirror.yaml"))
	if err != nil {
		return err
	}
	if len(res.Errors) != 0 {
		log.Warnf("failed to retrieve: %s", strings.Join(res.Errors, " "))
	}
	return nil
}
