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

// Package functions implements the irgraph functions sub-command, which prints the functions of a program grouped
// by type. These are the candidate callees of indirect calls.
package functions

import (
	"fmt"
	"io"
	"os"

	"github.com/awslabs/ar-ir-tools/analysis"
	"github.com/awslabs/ar-ir-tools/analysis/callgraph"
	"github.com/awslabs/ar-ir-tools/analysis/config"
	"github.com/awslabs/ar-ir-tools/cmd/irgraph/tools"
	"github.com/awslabs/ar-ir-tools/internal/formatutil"
)

// Usage is the help message of the functions sub-command
const Usage = `Print the functions of your packages grouped by type.
Usage:
  irgraph functions [options] <package path(s)>
Examples:
  % irgraph functions ./...
  % irgraph functions -type "int (int, int)" ./...
`

// Flags represents the parsed functions sub-command flags.
type Flags struct {
	tools.CommonFlags
	typ string
}

// NewFlags returns the parsed functions sub-command flags from args.
func NewFlags(args []string) (Flags, error) {
	flags := tools.NewUnparsedCommonFlags("functions")
	typ := flags.FlagSet.String("type", "", "only print the functions with this type (all types if not specified)")
	tools.SetUsage(flags.FlagSet, Usage)
	common, err := flags.Parse(args)
	if err != nil {
		return Flags{}, err
	}
	return Flags{CommonFlags: common, typ: *typ}, nil
}

// Run runs the functions tool with flags.
func Run(flags Flags) error {
	c, err := tools.LoadConfig(flags.ConfigPath, flags.Verbose)
	if err != nil {
		return err
	}
	logger := config.NewLogGroup(c)
	modules, err := tools.LoadModules(flags.CommonFlags, c, logger)
	if err != nil {
		return err
	}
	index, err := analysis.NewCrossModuleAnalysis(modules, logger).SignatureIndex()
	if err != nil {
		return err
	}
	if n := Print(os.Stdout, c, index, flags.typ); n == 0 && flags.typ != "" {
		logger.Warnf("no function has type %q", flags.typ)
	}
	return nil
}

// Print prints the functions of index matching the function filter of c, grouped by type, and returns the number
// of functions printed. Only the functions of type typ are printed when typ is not empty.
func Print(w io.Writer, c *config.Config, index *callgraph.SignatureIndex, typ string) int {
	n := 0
	for _, t := range index.Types() {
		if typ != "" && t.String() != typ {
			continue
		}
		var names []string
		for _, name := range index.FunctionsWithType(t) {
			if c.MatchFunctionFilter(name) {
				names = append(names, name)
			}
		}
		if len(names) == 0 {
			continue
		}
		fmt.Fprintf(w, "%s\n", formatutil.Cyan(t.String()))
		for _, name := range names {
			module, _ := index.ModuleOf(name)
			fmt.Fprintf(w, "  %s %s\n", name, formatutil.Faint("("+module+")"))
		}
		n += len(names)
	}
	return n
}
