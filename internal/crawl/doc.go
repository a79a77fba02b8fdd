// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package crawl implements the Troilkatt crawler stages. It mirrors
// directory trees from the GEO and ArrayExpress FTP servers into a local
// download area, unpacks retrieved archives and sorts the unpacked files
// into output directories, and downloads meta files such as gene name
// registries, rewriting them into alias tables.
//
// Crawl state is held between runs as a YAML document listing the
// accessions that have already been mirrored.
package crawl
