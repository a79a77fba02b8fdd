// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// aemirror mirrors new ArrayExpress experiments.
//
// It is run as a Troilkatt stage:
//
//  aemirror [options] inputDir outputDir metaDir logDir tmpDir [mirror options]
//
// with the mirror options:
//
//  -url URL      the remote host (default ftp://ftp.ebi.ac.uk)
//  -root PATH    the experiment tree root
//  -limit N      retrieve at most N new experiments in one run
//
// The experiment tree is organised by platform and then experiment. Each
// new experiment directory is staged in tmpDir and moved to outputDir.
// The mirror state is kept in <metaDir>/aemirror.yaml and the all,
// previous, new, downloaded and errors lists are written to logDir.
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
		rawurl = fs.String("url", "ftp://"+crawl.ArrayExpressHost, "specify the remote host")
		root   = fs.String("root", crawl.DefaultArrayExpressRoot, "specify the experiment tree root")
		limit  = fs.Int("limit", 0, "specify the maximum number of new experiments to retrieve")
	)
	err = fs.Parse(strings.Fields(s.Args))
	if err != nil {
		log.Fatalf("invalid stage arguments: %v", err)
	}

	email, err := s.Properties().Get("troilkatt.admin.email")
	if err != nil {
		log.Warn(err)
		email = "anonymous@"
	}

	ctx := context.Background()
	log.Printf("[connecting to %s]", *rawurl)
	remote, _, err := crawl.Open(ctx, *rawurl, email)
	if err != nil {
		log.Fatalf("failed to connect: %v", err)
	}
	defer remote.Close()

	m := crawl.Mirror{
		Remote: remote,
		Source: crawl.ArrayExpress{Root: *root},
		Dirs: crawl.Dirs{
			Download: s.TmpDir,
			Output:   s.OutputDir,
		},
		ListDir: s.LogDir,
		Limit:   *limit,
	}
	err = os.MkdirAll(s.MetaDir, 0o755)
	if err != nil {
		log.Fatal(err)
	}
	res, err := m.Sync(ctx, filepath.Join(s.MetaDir, "aemirror.yaml"))
	if err != nil {
		log.Fatal(err)
	}
	if len(res.Errors) != 0 {
		log.Warnf("failed to retrieve: %s", strings.Join(res.Errors, " "))
	}
}
