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

// Package callgraph implements the irgraph callgraph sub-command, which prints the callers and callees of functions
// and the recursive functions of a program.
package callgraph

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/awslabs/ar-ir-tools/analysis"
	"github.com/awslabs/ar-ir-tools/analysis/callgraph"
	"github.com/awslabs/ar-ir-tools/analysis/config"
	"github.com/awslabs/ar-ir-tools/analysis/ir"
	"github.com/awslabs/ar-ir-tools/cmd/irgraph/tools"
	"github.com/awslabs/ar-ir-tools/internal/formatutil"
)

// Usage is the help message of the callgraph sub-command
const Usage = `Print the callers and callees of a function, or the recursive functions of your packages.
Indirect calls are resolved to every function with the type of the call.
Usage:
  irgraph callgraph [options] <package path(s)>
Examples:
  % irgraph callgraph -func main.main .
  % irgraph callgraph ./...
`

// Flags represents the parsed callgraph sub-command flags.
type Flags struct {
	tools.CommonFlags
	function string
}

// NewFlags returns the parsed callgraph sub-command flags from args.
func NewFlags(args []string) (Flags, error) {
	flags := tools.NewUnparsedCommonFlags("callgraph")
	function := flags.FlagSet.String("func", "", "function to print the callers and callees of (recursive functions if not specified)")
	tools.SetUsage(flags.FlagSet, Usage)
	common, err := flags.Parse(args)
	if err != nil {
		return Flags{}, err
	}
	return Flags{CommonFlags: common, function: *function}, nil
}

// Run runs the callgraph tool with flags.
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
	graphs, err := callGraphs(c, logger, modules)
	if err != nil {
		return err
	}
	if flags.function == "" {
		for _, cg := range graphs {
			PrintRecursive(os.Stdout, cg)
		}
		return nil
	}
	for _, cg := range graphs {
		if cg.HasFunction(flags.function) {
			return PrintFunction(os.Stdout, cg, flags.function)
		}
	}
	return ir.NotFound("function", flags.function, "the loaded modules")
}

// callGraphs returns a single call graph over all the modules when c asks for cross-module analysis, and one call
// graph per module otherwise
func callGraphs(c *config.Config, logger *config.LogGroup, modules []*ir.Module) ([]*callgraph.CallGraph, error) {
	if c.CrossModule {
		cross := analysis.NewCrossModuleAnalysis(modules, logger)
		cg, err := cross.CallGraph()
		if err != nil {
			return nil, fmt.Errorf("could not compute call graph: %w", err)
		}
		return []*callgraph.CallGraph{cg}, nil
	}
	var graphs []*callgraph.CallGraph
	for _, m := range modules {
		cg, err := analysis.NewModuleAnalysis(m, logger).CallGraph()
		if err != nil {
			return nil, fmt.Errorf("could not compute call graph of %s: %w", m.Name, err)
		}
		graphs = append(graphs, cg)
	}
	return graphs, nil
}

// PrintFunction prints the callers, callees and external callees of the function name of cg to w
func PrintFunction(w io.Writer, cg *callgraph.CallGraph, name string) error {
	callers, err := cg.Callers(name)
	if err != nil {
		return err
	}
	callees, err := cg.Callees(name)
	if err != nil {
		return err
	}
	external, err := cg.ExternalCallees(name)
	if err != nil {
		return err
	}
	recursive, err := cg.Recursive(name)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s\n", formatutil.Bold(name))
	printList(w, "callers", callers)
	printList(w, "callees", callees)
	printList(w, "external", external)
	if recursive {
		fmt.Fprintf(w, "  %s\n", formatutil.Yellow("recursive"))
	}
	return nil
}

// PrintRecursive prints the strongly connected components of cg that contain a cycle, bottom-up
func PrintRecursive(w io.Writer, cg *callgraph.CallGraph) {
	fmt.Fprintf(w, "%s %s (%d functions, %d edges)\n", formatutil.Bold("call graph of"),
		strings.Join(cg.Modules(), ", "), len(cg.Functions()), cg.NumEdges())
	for _, scc := range cg.StronglyConnectedComponents() {
		// a component is recursive when it has more than one function or a self call
		if len(scc) > 1 || cg.Calls(scc[0], scc[0]) {
			fmt.Fprintf(w, "  %s %s\n", formatutil.Yellow("recursive:"), strings.Join(scc, ", "))
		}
	}
}

func printList(w io.Writer, label string, names []string) {
	if len(names) == 0 {
		fmt.Fprintf(w, "  %s: %s\n", label, formatutil.Faint("none"))
		return
	}
	fmt.Fprintf(w, "  %s:\n", label)
	for _, n := range names {
		fmt.Fprintf(w, "    %s\n", n)
	}
}
