// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// ls2id converts a directory listing to a list of identifiers.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/kortschak/troilkatt/internal/idlist"
)

func main() {
	var (
		delim = flag.String("d", " ", "specify the field delimiter")
		col   = flag.Int("col", 0, "specify the zero-based identifier column")
		help  = flag.Bool("help", false, "print help text")
	)
	flag.Parse()

	if *help {
		flag.Usage()
		fmt.Fprintf(os.Stderr, `
%s splits each line of a directory listing on the delimiter and prints
the field in the identifier column. Lines with too few fields are
skipped. The listing is read from the file given as the argument, or
from standard input if no file is given.

`, filepath.Base(os.Args[0]))
		os.Exit(0)
	}
	if flag.NArg() > 1 {
		flag.Usage()
		os.Exit(2)
	}

	r := os.Stdin
	if flag.NArg() == 1 {
		f, err := os.Open(flag.Arg(0))
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		r = f
	}
	err := idlist.Extract(os.Stdout, r, *delim, *col)
	if err != nil {
		log.Fatal(err)
	}
}
