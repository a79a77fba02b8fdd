// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package geo implements bookkeeping of NCBI GEO accessions: the series
// (GSE), dataset (GDS) and platform (GPL) tables, maps between accession
// kinds, detection of series and datasets that share samples (GSM) and
// reports describing duplicated, subset and superset relationships.
package geo
