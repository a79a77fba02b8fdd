// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// idlistcmp compares two lists of identifiers.
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
	help := flag.Bool("help", false, "print help text")
	flag.Parse()

	if *help {
		flag.Usage()
		fmt.Fprintf(os.Stderr, `
%s reads two files of identifiers, one per line, and prints the
identifiers that are only in the first file followed by those that are
only in the second, each in sorted order.

usage: %[1]s file1 file2

`, filepath.Base(os.Args[0]))
		os.Exit(0)
	}
	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(2)
	}

	sets := make([]map[string]bool, 2)
	for i, path := range flag.Args() {
		f, err := os.Open(path)
		if err != nil {
			log.Fatal(err)
		}
		sets[i], err = idlist.Read(f)
		f.Close()
		if err != nil {
			log.Fatalf("failed to read %s: %v", path, err)
		}
	}

	onlyA, onlyB := idlist.Compare(sets[0], sets[1])
	for i, ids := range [][]string{onlyA, onlyB} {
		fmt.Printf("Ids only in %s:\n", flag.Arg(i))
		for _, id := range ids {
			fmt.Println(id)
		}
	}
}
