// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package troilkatt

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Stage holds the invocation context of a pipeline stage tool.
type Stage struct {
	// Name is the base name of the tool.
	Name string

	InputDir  string
	OutputDir string
	MetaDir   string
	LogDir    string
	TmpDir    string

	// ConfigFile is the path to the Troilkatt
	// XML configuration.
	ConfigFile string
	// Logging is the name of the logging level.
	Logging string
	// Timestamp is the iteration timestamp
	// passed by the pipeline, if any.
	Timestamp string
	// InputFile restricts processing to a single
	// file in the input directory when not empty.
	InputFile string

	// Args is the stage argument string with
	// TROILKATT.* variables substituted. It is
	// empty if no stage arguments were given.
	Args string

	props Properties
}

const usage = `usage: %s [options] inputDir outputDir metaDir logDir tmpDir [args...]

Required arguments:
   inputDir   directory containing files to process (or where to store downloaded files)
   outputDir  directory where output files are stored
   metaDir    directory for stage meta-data
   logDir     directory where log files are stored
   tmpDir     directory for temporary files

Optional arguments:
   args       stage specific arguments

Options:
`

// ErrUsage is returned by ParseArgs when the command line is not valid.
var ErrUsage = errors.New("incorrect number of arguments")

// ParseArgs parses the stage command line in args for the tool name. The
// configuration file named by the -c option is read unless stage arguments
// are absent and no property is required. Trailing arguments are joined by
// single spaces and have TROILKATT.* variables substituted.
func ParseArgs(name string, args []string) (*Stage, error) {
	s := Stage{Name: filepath.Base(name)}
	fs := flag.NewFlagSet(s.Name, flag.ContinueOnError)
	fs.StringVar(&s.ConfigFile, "c", "conf/troilkatt.xml", "specify configuration `FILE` to use")
	fs.StringVar(&s.Logging, "l", "debug", "specify logging `LEVEL` to use {debug, info, warning, error, or critical}")
	fs.StringVar(&s.Timestamp, "t", "", "timestamp given as `INT`eger")
	fs.StringVar(&s.InputFile, "f", "", "`FILE` in input directory for which script is executed")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), usage, s.Name)
		fs.PrintDefaults()
	}
	err := fs.Parse(args)
	if err != nil {
		return nil, err
	}
	pos := fs.Args()
	if len(pos) < 5 {
		fs.Usage()
		return nil, ErrUsage
	}
	s.InputDir = pos[0]
	s.OutputDir = pos[1]
	s.MetaDir = pos[2]
	s.LogDir = pos[3]
	s.TmpDir = pos[4]

	s.props, err = ReadProperties(s.ConfigFile)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		// Substitution of configured directories will
		// fail with a helpful message if it is needed.
		s.props = Properties{}
	}

	if len(pos) > 5 {
		s.Args, err = s.SetVariables(strings.Join(pos[5:], " "))
		if err != nil {
			return nil, err
		}
	}
	return &s, nil
}

// Properties returns the configuration properties for the stage.
func (s *Stage) Properties() Properties {
	return s.props
}

// SetupLogging directs the standard logger to a log file in the stage log
// directory, creating the directory if necessary. The log file is named for
// the tool, and for the input file if one was selected. The returned
// io.Closer closes the log file.
func (s *Stage) SetupLogging() (io.Closer, error) {
	level, err := ParseLevel(s.Logging)
	if err != nil {
		return nil, err
	}
	err = os.MkdirAll(s.LogDir, 0o755)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSuffix(s.Name, filepath.Ext(s.Name))
	if s.InputFile != "" {
		name += "-" + filepath.Base(s.InputFile)
	}
	path := filepath.Join(s.LogDir, name+".log")
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	log.SetOutput(f)
	log.SetLevel(level)
	fmt.Fprintf(os.Stderr, "logging initialized: log is stored in: %s\n", path)
	return f, nil
}

// ParseLevel returns the logrus level corresponding to the Troilkatt level
// name.
func ParseLevel(name string) (log.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return log.DebugLevel, nil
	case "info":
		return log.InfoLevel, nil
	case "warning":
		return log.WarnLevel, nil
	case "error":
		return log.ErrorLevel, nil
	case "critical":
		return log.FatalLevel, nil
	default:
		return 0, fmt.Errorf("unknown logging level: %q", name)
	}
}

// InputFiles returns the absolute paths of the files to process: either
// the single file selected with -f or all files in the input directory.
func (s *Stage) InputFiles() ([]string, error) {
	if s.InputFile != "" {
		return []string{filepath.Join(s.InputDir, filepath.Base(s.InputFile))}, nil
	}
	return AllFiles(s.InputDir, true)
}

// Start parses the stage command line in args, where args[0] is the
// program name, and directs logging to the stage log file.
func Start(args []string) (*Stage, io.Closer, error) {
	s, err := ParseArgs(args[0], args[1:])
	if err != nil {
		return nil, nil, err
	}
	c, err := s.SetupLogging()
	if err != nil {
		return nil, nil, err
	}
	log.Infof("%s started", s.Name)
	return s, c, nil
}
