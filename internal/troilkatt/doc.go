// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package troilkatt implements the conventions shared by Troilkatt pipeline
// stage tools: the stage command line, the XML properties file, logging
// setup and substitution of TROILKATT.* variables in stage arguments.
package troilkatt
