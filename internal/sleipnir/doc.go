// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sleipnir builds scipipe workflows around the Sleipnir library
// tools and the R scripts used to process expression data: conversion of
// PCL files to quantized DAB files, KNN imputation of missing values and
// conversion of CEL archives to PCL files.
package sleipnir
