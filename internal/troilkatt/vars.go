// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package troilkatt

import (
	"path/filepath"
	"strings"
)

// configured holds the TROILKATT.* variables that are resolved from the
// configuration properties.
var configured = []struct {
	variable string
	property string
}{
	{"TROILKATT.DIR", "troilkatt.localfs.dir"},
	{"TROILKATT.BIN", "troilkatt.localfs.binary.dir"},
	{"TROILKATT.UTILS", "troilkatt.localfs.utils.dir"},
	{"TROILKATT.GLOBALMETA_DIR", "troilkatt.globalfs.global-meta.dir"},
	{"TROILKATT.SCRIPTS", "troilkatt.localfs.scripts.dir"},
}

var helpers = strings.NewReplacer(
	"TROILKATT.REDIRECT_OUTPUT", ">",
	"TROILKATT.REDIRECT_ERROR", "2>",
	"TROILKATT.REDIRECT_INPUT", "<",
	"TROILKATT.SEPERATE_COMMAND", ";",
)

// SetVariables returns args with TROILKATT.* substrings replaced by the
// stage's directories, configured directories and shell helper symbols.
// It is an error for args to refer to a configured directory that is not
// held in the configuration.
func (s *Stage) SetVariables(args string) (string, error) {
	args = strings.NewReplacer(
		"TROILKATT.INPUT_DIR", filepath.Clean(s.InputDir),
		"TROILKATT.OUTPUT_DIR", filepath.Clean(s.OutputDir),
		"TROILKATT.LOG_DIR", filepath.Clean(s.LogDir),
		"TROILKATT.META_DIR", filepath.Clean(s.MetaDir),
		"TROILKATT.TMP_DIR", filepath.Clean(s.TmpDir),
	).Replace(args)

	for _, c := range configured {
		if !strings.Contains(args, c.variable) {
			continue
		}
		dir, err := s.props.Get(c.property)
		if err != nil {
			return "", err
		}
		args = strings.ReplaceAll(args, c.variable, filepath.Clean(dir))
	}

	return helpers.Replace(args), nil
}

// SetFilename returns args with TROILKATT.FILE_NOEXT replaced by the base
// name of file up to its first dot and TROILKATT.FILE replaced by the base
// name of file.
func SetFilename(args, file string) string {
	base := filepath.Base(file)
	noext := base
	if i := strings.Index(base, "."); i >= 0 {
		noext = base[:i]
	}
	args = strings.ReplaceAll(args, "TROILKATT.FILE_NOEXT", noext)
	return strings.ReplaceAll(args, "TROILKATT.FILE", base)
}
