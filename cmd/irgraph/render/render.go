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

// Package render implements the irgraph render sub-command: it writes the graphs computed by the analyses of the
// functions of a Go program as DOT files.
package render

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/awslabs/ar-ir-tools/analysis"
	"github.com/awslabs/ar-ir-tools/analysis/callgraph"
	"github.com/awslabs/ar-ir-tools/analysis/config"
	"github.com/awslabs/ar-ir-tools/analysis/ir"
	dotrender "github.com/awslabs/ar-ir-tools/analysis/render"
	"github.com/awslabs/ar-ir-tools/cmd/irgraph/tools"
	"github.com/awslabs/ar-ir-tools/internal/formatutil"
)

// Usage is the help message of the render sub-command
const Usage = `Render the control flow graphs, dominator trees, control dependence graphs and call graphs of your packages.
Usage:
  irgraph render [options] <package path(s)>
Examples:
Render all the graphs of the functions of the main package in the out directory
  % irgraph render -out out .
Render only the graphs listed in the config file
  % irgraph render -config config.yaml ./...
`

// Flags represents the parsed render sub-command flags.
type Flags struct {
	tools.CommonFlags
	out string
}

// NewFlags returns the parsed render sub-command flags from args.
func NewFlags(args []string) (Flags, error) {
	flags := tools.NewUnparsedCommonFlags("render")
	out := flags.FlagSet.String("out", "", "output directory for the DOT files (reports-dir of the config, or the current directory if not specified)")
	tools.SetUsage(flags.FlagSet, Usage)
	common, err := flags.Parse(args)
	if err != nil {
		return Flags{}, err
	}
	return Flags{CommonFlags: common, out: *out}, nil
}

// Run runs the render tool with flags.
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
	out := flags.out
	if out == "" {
		out = c.ReportsDir
	}
	if out == "" {
		out = "."
	}

	var analyses []*analysis.ModuleAnalysis
	var cross *analysis.CrossModuleAnalysis
	if c.CrossModule {
		cross = analysis.NewCrossModuleAnalysis(modules, logger)
		analyses = cross.Modules()
	} else {
		for _, m := range modules {
			analyses = append(analyses, analysis.NewModuleAnalysis(m, logger))
		}
	}

	written := 0
	for _, res := range analysis.RunFunctionAnalyses(c, logger, analyses) {
		if res.Err != nil {
			continue
		}
		n, err := writeFunctionGraphs(c, out, res.Analysis)
		if err != nil {
			return err
		}
		written += n
	}

	if c.Wants(config.AnalysisCallGraph) {
		if cross != nil {
			cg, err := cross.CallGraph()
			if err != nil {
				return fmt.Errorf("could not compute call graph: %w", err)
			}
			if err := writeCallGraph(out, "program", cg); err != nil {
				return err
			}
			written++
		} else {
			for _, ma := range analyses {
				cg, err := ma.CallGraph()
				if err != nil {
					return fmt.Errorf("could not compute call graph of %s: %w", ma.Name(), err)
				}
				if err := writeCallGraph(out, ma.Name(), cg); err != nil {
					return err
				}
				written++
			}
		}
	}
	logger.Infof("Wrote %d files in %s", written, out)
	return nil
}

// writeFunctionGraphs writes the graphs of the analyses c wants for the function of fa, and returns the number of
// files written. The analyses must have been computed.
func writeFunctionGraphs(c *config.Config, out string, fa *analysis.FunctionAnalysis) (int, error) {
	f := fa.Function()
	dir := filepath.Join(out, "functions")
	written := 0
	write := func(kind string, content string, err error) error {
		if err != nil {
			return fmt.Errorf("could not render %s of %s: %w", kind, f.Name, err)
		}
		path, err := dotrender.GraphvizToFile(dir, f.Name, kind, content)
		if err != nil {
			return err
		}
		reportWritten(os.Stderr, path)
		written++
		return nil
	}

	g, err := fa.ControlFlowGraph()
	if err != nil {
		return 0, err
	}
	if c.Wants(config.AnalysisCFG) {
		if err = write(config.AnalysisCFG, dotrender.ControlFlowGraphDOT(f, g), nil); err != nil {
			return written, err
		}
	}
	if c.Wants(config.AnalysisDomTree) {
		dt, err := fa.DominatorTree()
		if err != nil {
			return written, err
		}
		s, err := dotrender.DominatorTreeDOT(dt, title(f, "dominators"))
		if err = write(config.AnalysisDomTree, s, err); err != nil {
			return written, err
		}
	}
	if c.Wants(config.AnalysisPostDomTree) {
		pdt, err := fa.PostDominatorTree()
		if err != nil {
			return written, err
		}
		s, err := dotrender.PostDominatorTreeDOT(pdt, title(f, "postdominators"))
		if err = write(config.AnalysisPostDomTree, s, err); err != nil {
			return written, err
		}
	}
	if c.Wants(config.AnalysisCDG) {
		cdg, err := fa.ControlDependenceGraph()
		if err != nil {
			return written, err
		}
		s, err := dotrender.ControlDependenceGraphDOT(cdg, g.Blocks(), title(f, "control_dependence"))
		if err = write(config.AnalysisCDG, s, err); err != nil {
			return written, err
		}
	}
	return written, nil
}

func title(f *ir.Function, kind string) string {
	return formatutil.FileName(f.Name) + "_" + kind
}

func writeCallGraph(out string, name string, cg *callgraph.CallGraph) error {
	path, err := dotrender.GraphvizToFile(out, name, config.AnalysisCallGraph,
		dotrender.CallGraphDOT(cg, name, true))
	if err != nil {
		return fmt.Errorf("could not print callgraph: %v", err)
	}
	reportWritten(os.Stderr, path)
	return nil
}

func reportWritten(w io.Writer, path string) {
	fmt.Fprintln(w, formatutil.Faint("Wrote "+path))
}
