// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pcl implements reading, writing and transformation of PCL gene
// expression matrices and the SPELL dataset info tables derived from them.
//
// A PCL file is a tab-delimited table. The first row holds the column
// labels: a gene identifier column, a gene name column, an optional
// GWEIGHT column and one column per sample. An optional second row
// starting with EWEIGHT holds per-sample weights. Each remaining row holds
// a gene identifier, a name, the gene weight and expression values. Empty
// or non-numeric cells are missing values and are held as NaN.
package pcl
