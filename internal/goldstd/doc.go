// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package goldstd builds functional gold standards from an ontology and
// a set of gene annotations. For each term of a slim list the genes
// annotated to the term or any of its descendants form a gene set.
// Positive and negative gene sets are combined into gene pair answers:
// genes sharing a positive set are related, and genes split across a
// positive and a negative set are unrelated.
package goldstd
