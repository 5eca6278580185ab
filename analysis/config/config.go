// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"fmt"
	"os"
	"path"
	"regexp"
	"strings"

	"github.com/awslabs/ar-ir-tools/internal/funcutil"
	"gopkg.in/yaml.v3"
)

var (
	// The global config file
	configFile string
)

// SetGlobalConfig sets the global config filename
func SetGlobalConfig(filename string) {
	configFile = filename
}

// LoadGlobal loads the config file that has been set by SetGlobalConfig
func LoadGlobal() (*Config, error) {
	return Load(configFile)
}

// Config contains the options of the analyses and the list of analyses to run.
// If some field is not defined in the config file, it will be empty/zero in the struct.
// private fields are not populated from a yaml file, but computed after initialization
type Config struct {
	Options `yaml:"options"`

	sourceFile string

	// if the FunctionFilter is specified
	functionFilterRegex *regexp.Regexp

	// if the PkgFilter is specified
	pkgFilterRegex *regexp.Regexp

	// Analyses is the list of analyses to compute, among AllAnalyses. If empty, all the analyses are computed.
	Analyses []string `yaml:"analyses"`

	// Packages are the patterns of the packages to load when none is given on the command line
	Packages []string `yaml:"packages"`
}

// Options are the options of the analyses
type Options struct {
	// ReportsDir is the directory where all the reports will be stored. It is created if it does not exist.
	// If empty, the reports are written to the standard output.
	ReportsDir string `yaml:"reports-dir"`

	// FunctionFilter selects the functions whose analyses are reported. It is used as a regex if it compiles to
	// one, as a prefix otherwise.
	FunctionFilter string `yaml:"function-filter"`

	// PkgFilter selects the packages that are lowered into modules, in the same manner as FunctionFilter
	PkgFilter string `yaml:"package-filter"`

	// CrossModule can be set to true to build a single call graph spanning all the loaded modules
	CrossModule bool `yaml:"cross-module"`

	// NumRoutines is the number of goroutines used to precompute the per-function analyses.
	// If NumRoutines <= 0, DefaultNumRoutines is used.
	NumRoutines int `yaml:"num-routines"`

	// Loglevel controls the verbosity of the tool
	LogLevel int `yaml:"log-level"`

	// Suppress warnings
	SilenceWarn bool `yaml:"silence-warn"`
}

// NewDefault returns an empty default config.
func NewDefault() *Config {
	return &Config{
		sourceFile: "",
		Analyses:   nil,
		Packages:   nil,
		Options: Options{
			ReportsDir:     "",
			FunctionFilter: "",
			PkgFilter:      "",
			CrossModule:    false,
			NumRoutines:    DefaultNumRoutines,
			LogLevel:       int(InfoLevel),
			SilenceWarn:    false,
		},
	}
}

// Load reads a configuration from a file
func Load(filename string) (*Config, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}
	return LoadFromBytes(filename, b)
}

// LoadFromBytes parses the configuration in b. The filename is the name of the file the configuration has been
// read from; relative paths in the configuration are relative to its directory.
func LoadFromBytes(filename string, b []byte) (*Config, error) {
	cfg := NewDefault()
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("could not unmarshal config file %s: %w", filename, err)
	}

	cfg.sourceFile = filename

	if cfg.ReportsDir != "" {
		if err := mkReportsDir(cfg.ReportsDir); err != nil {
			return nil, err
		}
	}

	// If logLevel has not been specified (i.e. it is 0) set the default to Info
	if cfg.LogLevel == 0 {
		cfg.LogLevel = int(InfoLevel)
	}

	if cfg.NumRoutines <= 0 {
		cfg.NumRoutines = DefaultNumRoutines
	}

	for _, a := range cfg.Analyses {
		if !funcutil.Contains(AllAnalyses, a) {
			return nil, fmt.Errorf("unknown analysis %q in %s, expected one of %v", a, filename, AllAnalyses)
		}
	}

	cfg.functionFilterRegex = compileFilter(cfg.FunctionFilter)
	cfg.pkgFilterRegex = compileFilter(cfg.PkgFilter)
	return cfg, nil
}

func compileFilter(filter string) *regexp.Regexp {
	if filter == "" {
		return nil
	}
	r, err := regexp.Compile(filter)
	if err != nil {
		return nil
	}
	return r
}

func mkReportsDir(dir string) error {
	err := os.Mkdir(dir, 0750)
	if err != nil && !os.IsExist(err) {
		return fmt.Errorf("could not create directory %s", dir)
	}
	return nil
}

// RelPath returns filename path relative to the config source file
func (c Config) RelPath(filename string) string {
	return path.Join(path.Dir(c.sourceFile), filename)
}

// Verbose returns true if the log level is at least debug
func (c Config) Verbose() bool {
	return c.LogLevel >= int(DebugLevel)
}

// Wants returns true if the analysis named analysis should be computed. All analyses are wanted when the config
// does not list any.
func (c Config) Wants(analysis string) bool {
	return len(c.Analyses) == 0 || funcutil.Contains(c.Analyses, analysis)
}

// MatchFunctionFilter returns true if the function name matches the function filter set in the config file.
// If no function filter has been set, it returns true.
func (c Config) MatchFunctionFilter(name string) bool {
	return matchFilter(c.functionFilterRegex, c.FunctionFilter, name)
}

// MatchPkgFilter returns true if the package name pkgname matches the package filter set in the config file. If no
// package filter has been set in the config file, the regex will match anything and return true. This function safely
// considers the case where a filter has been specified by the user, but it could not be compiled to a regex. The safe
// case is to check whether the package filter string is a prefix of the pkgname
func (c Config) MatchPkgFilter(pkgname string) bool {
	return matchFilter(c.pkgFilterRegex, c.PkgFilter, pkgname)
}

func matchFilter(r *regexp.Regexp, filter string, s string) bool {
	if r != nil {
		return r.MatchString(s)
	} else if filter != "" {
		return strings.HasPrefix(s, filter)
	} else {
		return true
	}
}
