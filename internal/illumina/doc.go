// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package illumina converts Illumina non-normalized series supplementary
// tables into PCL files. The sample columns of these tables are labelled
// by the submitter, so each sample is matched to the GEO sample (GSM)
// whose reference table has the highest Spearman rank correlation with
// it over the most variable probes.
package illumina
