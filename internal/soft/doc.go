// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package soft implements parsing of NCBI GEO SOFT files: identification
// of the columns needed to convert a series family file into a PCL matrix,
// the conversion itself and extraction of series, dataset and platform
// header information.
//
// A SOFT file is a line oriented format. Entity lines start with '^',
// attribute lines with '!' and tables are bracketed by
// !<entity>_table_begin and !<entity>_table_end lines. The first line of a
// table holds the tab-delimited column headers.
package soft
