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

// Package render prints the graphs computed by the analyses in GraphViz's DOT format.
package render

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/awslabs/ar-ir-tools/analysis/callgraph"
	"github.com/awslabs/ar-ir-tools/analysis/cfg"
	"github.com/awslabs/ar-ir-tools/analysis/controldep"
	"github.com/awslabs/ar-ir-tools/analysis/dominators"
	"github.com/awslabs/ar-ir-tools/analysis/ir"
	"github.com/awslabs/ar-ir-tools/internal/formatutil"
	"github.com/awslabs/ar-ir-tools/internal/graphutil"
	"github.com/zboralski/lattice"
	latticerender "github.com/zboralski/lattice/render"
	"gonum.org/v1/gonum/graph/encoding/dot"
)

// CallGraphDOT returns the call graph in DOT format. Functions called directly that are not defined in the analyzed
// modules are included as leaves when withExternal is true.
func CallGraphDOT(cg *callgraph.CallGraph, title string, withExternal bool) string {
	g := &lattice.Graph{Nodes: cg.Functions()}
	cg.Edges(func(caller string, callee string) {
		g.Edges = append(g.Edges, lattice.Edge{Caller: caller, Callee: callee})
	})
	if withExternal {
		for _, caller := range cg.Functions() {
			// caller is a node, the error is always nil
			externals, _ := cg.ExternalCallees(caller)
			for _, callee := range externals {
				g.Nodes = append(g.Nodes, callee)
				g.Edges = append(g.Edges, lattice.Edge{Caller: caller, Callee: callee})
			}
		}
	}
	g.Dedup()
	return latticerender.DOT(g, title)
}

// ControlFlowGraphDOT returns the control-flow graph of f in DOT format. Blocks are numbered in declaration order,
// and the Return node is numbered after the last block. Call sites are listed in the block they appear in.
func ControlFlowGraphDOT(f *ir.Function, g *cfg.ControlFlowGraph) string {
	ids := make(map[cfg.Node]int, len(f.Blocks)+1)
	for i, b := range f.Blocks {
		ids[cfg.Block(b.Name)] = i
	}
	ids[cfg.Return] = len(f.Blocks)

	fn := &lattice.FuncCFG{Name: f.Name}
	for i, b := range f.Blocks {
		lb := &lattice.BasicBlock{
			ID:    i,
			Start: 0,
			End:   len(b.Instrs) + 1,
			Term:  len(g.SuccNodes(cfg.Block(b.Name))) == 0,
		}
		for _, succ := range g.SuccNodes(cfg.Block(b.Name)) {
			lb.Succs = append(lb.Succs, lattice.Successor{BlockID: ids[succ], Cond: edgeLabel(b.Term, succ)})
		}
		for offset, instr := range b.Instrs {
			if call, ok := instr.(*ir.Call); ok {
				lb.Calls = append(lb.Calls, lattice.CallSite{Offset: offset, Callee: call.Callee.String()})
			}
		}
		if inv, ok := b.Term.(ir.Invoke); ok {
			lb.Calls = append(lb.Calls, lattice.CallSite{Offset: len(b.Instrs), Callee: inv.Callee.String()})
		}
		fn.Blocks = append(fn.Blocks, lb)
	}
	fn.Blocks = append(fn.Blocks, &lattice.BasicBlock{ID: len(f.Blocks), Term: true})

	return latticerender.DOTCFG(&lattice.CFGGraph{Funcs: []*lattice.FuncCFG{fn}}, f.Name)
}

// edgeLabel returns the condition under which the terminator term transfers control to succ
func edgeLabel(term ir.Terminator, succ cfg.Node) string {
	switch t := term.(type) {
	case ir.CondBr:
		switch {
		case t.True == t.False:
			return ""
		case succ.Name() == t.True:
			return "T"
		case succ.Name() == t.False:
			return "F"
		}
	case ir.Switch:
		for _, c := range t.Cases {
			if c.Dest == succ.Name() {
				return c.Value
			}
		}
		if succ.Name() == t.Default {
			return "default"
		}
	case ir.Invoke:
		if succ.Name() == t.Normal {
			return "normal"
		}
		return "unwind"
	}
	return ""
}

// DominatorTreeDOT returns the dominator tree in DOT format, with edges from each block to the blocks it
// immediately dominates
func DominatorTreeDOT(t *dominators.DominatorTree, title string) (string, error) {
	g := graphutil.NewDigraph[cfg.Node]()
	t.Edges(func(parent cfg.Node, child cfg.Node) {
		g.AddEdge(parent, child)
	})
	return marshal(g, title)
}

// PostDominatorTreeDOT returns the postdominator tree in DOT format, rooted at the Return node
func PostDominatorTreeDOT(t *dominators.PostDominatorTree, title string) (string, error) {
	g := graphutil.NewDigraph[cfg.Node]()
	g.AddNode(cfg.Return)
	t.Edges(func(parent cfg.Node, child cfg.Node) {
		g.AddEdge(parent, child)
	})
	return marshal(g, title)
}

// ControlDependenceGraphDOT returns the control dependence graph in DOT format. An edge X -> Y means that X is
// control dependent on Y. Every block is a node, including blocks without any dependency.
func ControlDependenceGraphDOT(c *controldep.ControlDependenceGraph, blocks []string, title string) (string, error) {
	g := graphutil.NewDigraph[string]()
	for _, b := range blocks {
		g.AddNode(b)
	}
	c.Edges(func(from string, to string) {
		g.AddEdge(from, to)
	})
	return marshal(g, title)
}

func marshal[N comparable](g *graphutil.Digraph[N], title string) (string, error) {
	b, err := dot.Marshal(graphutil.NewGonum(g), title, "", "  ")
	if err != nil {
		return "", fmt.Errorf("could not encode graph %s: %w", title, err)
	}
	return string(b), nil
}

// GraphvizToFile writes the DOT representation dot to a file in dir whose name is derived from name and
// kind, and returns the path of the file
func GraphvizToFile(dir string, name string, kind string, dotContent string) (string, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("could not create directory %s: %w", dir, err)
	}
	path := filepath.Join(dir, formatutil.FileName(name)+"."+kind+".dot")
	if err := os.WriteFile(path, []byte(dotContent), 0600); err != nil {
		return "", fmt.Errorf("could not write %s: %w", path, err)
	}
	return path, nil
}
