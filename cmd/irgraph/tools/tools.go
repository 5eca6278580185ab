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

// Package tools contains utility types and functions for the irgraph sub-commands.
package tools

import (
	"flag"
	"fmt"
	"go/build"
	"os"

	"github.com/awslabs/ar-ir-tools/analysis/config"
	"github.com/awslabs/ar-ir-tools/analysis/frontend"
	"github.com/awslabs/ar-ir-tools/analysis/ir"
	"github.com/awslabs/ar-ir-tools/internal/formatutil"
	"golang.org/x/tools/go/buildutil"
	"golang.org/x/tools/go/packages"
	"golang.org/x/tools/go/ssa"
)

// UnparsedCommonFlags represents an unparsed CLI sub-command flags.
type UnparsedCommonFlags struct {
	FlagSet    *flag.FlagSet
	ConfigPath *string
	Verbose    *bool
	WithTest   *bool
}

// NewUnparsedCommonFlags returns an unparsed flag set with a given name.
// This is useful for creating sub-commands that have the flags -config,
// -verbose, -with-test, and -build-tags but need other flags in addition.
func NewUnparsedCommonFlags(name string) UnparsedCommonFlags {
	cmd := flag.NewFlagSet(name, flag.ExitOnError)
	configPath := cmd.String("config", "", "config file path for analysis")
	verbose := cmd.Bool("verbose", false, "verbose printing on standard output")
	withTest := cmd.Bool("with-test", false, "load tests during analysis")
	cmd.Var((*buildutil.TagsFlag)(&build.Default.BuildTags), "build-tags", buildutil.TagsFlagDoc)
	return UnparsedCommonFlags{
		FlagSet:    cmd,
		ConfigPath: configPath,
		Verbose:    verbose,
		WithTest:   withTest,
	}
}

// Parse parses args and returns the common flags.
func (f UnparsedCommonFlags) Parse(args []string) (CommonFlags, error) {
	if err := f.FlagSet.Parse(args); err != nil {
		return CommonFlags{}, fmt.Errorf("failed to parse command %s with args %v: %v", f.FlagSet.Name(), args, err)
	}
	return CommonFlags{
		FlagSet:    f.FlagSet,
		ConfigPath: *f.ConfigPath,
		Verbose:    *f.Verbose,
		WithTest:   *f.WithTest,
	}, nil
}

// CommonFlags represents a parsed CLI sub-command flags.
// E.g., for the command `irgraph render ...`, "render" is the sub-command.
type CommonFlags struct {
	FlagSet    *flag.FlagSet
	ConfigPath string
	Verbose    bool
	WithTest   bool
}

// SetUsage sets cmd's usage (for --help flag) to output the string cmdUsage
// followed by each flag's documentation.
func SetUsage(cmd *flag.FlagSet, cmdUsage string) {
	cmd.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s\n", cmdUsage)
		fmt.Fprintf(os.Stderr, "Options:\n")
		cmd.VisitAll(func(f *flag.Flag) {
			fmt.Fprintf(os.Stderr, "  %s: %s (default: %q)\n", f.Name, f.Usage, f.DefValue)
		})
	}
}

// LoadConfig loads the config file from configPath, or returns the default config if configPath is empty.
// The log level is raised to debug when verbose is set.
func LoadConfig(configPath string, verbose bool) (*config.Config, error) {
	c := config.NewDefault()
	if configPath != "" {
		config.SetGlobalConfig(configPath)
		loaded, err := config.LoadGlobal()
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %v", configPath, err)
		}
		c = loaded
	}
	if verbose && !c.Verbose() {
		c.LogLevel = int(config.DebugLevel)
	}
	return c, nil
}

// packagePatterns returns the package patterns to load and the directory they are relative to. Command line
// arguments are relative to the working directory; the packages of the config file are relative to the directory
// of that file.
func packagePatterns(flags CommonFlags, c *config.Config) ([]string, string) {
	if args := flags.FlagSet.Args(); len(args) > 0 {
		return args, ""
	}
	if flags.ConfigPath == "" {
		return c.Packages, ""
	}
	return c.Packages, c.RelPath(".")
}

// LoadModules loads the Go packages named by the arguments of flags, or by the packages of c when there are no
// arguments, and lowers them into IR modules. When c has no package filter, only the packages matched by the
// patterns are lowered; their dependencies are not.
func LoadModules(flags CommonFlags, c *config.Config, logger *config.LogGroup) ([]*ir.Module, error) {
	patterns, dir := packagePatterns(flags, c)
	if len(patterns) == 0 {
		return nil, fmt.Errorf("no packages to analyze")
	}

	logger.Infof("%s", formatutil.Faint("Reading sources"))
	pc := &packages.Config{Mode: frontend.PkgLoadMode, Tests: flags.WithTest, Dir: dir}
	program, err := frontend.LoadProgram(pc, "", ssa.InstantiateGenerics, patterns)
	if err != nil {
		return nil, fmt.Errorf("could not load program: %v", err)
	}

	filter := c.MatchPkgFilter
	if c.PkgFilter == "" {
		initial := map[string]bool{}
		for _, p := range program.Packages {
			initial[p.Pkg.Path()] = true
		}
		filter = func(path string) bool { return initial[path] }
	}
	modules, err := frontend.Lower(program.Program, filter)
	if err != nil {
		return nil, fmt.Errorf("could not lower program: %w", err)
	}
	logger.Infof("Lowered %d modules", len(modules))
	return modules, nil
}
