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

// Package controldep computes the control dependence graph of a function from its control-flow graph and its
// postdominator tree.
//
// A block X is control dependent on a block Y when Y has a successor from which every path to Return goes through
// X, but X does not strictly postdominate Y: the branch taken in Y decides whether X executes. The graph has an
// edge X -> Y for every such pair, so the outgoing neighbors of a block are the blocks it depends on.
//
// The immediate dependencies of X are its postdominance frontier, computed bottom-up over the postdominator tree
// following Cytron, Ferrante, Rosen, Wegman and Zadeck, "Efficiently computing static single assignment form and
// the control dependence graph" (1991), Figure 10.
package controldep

import (
	"iter"

	"github.com/awslabs/ar-ir-tools/analysis/cfg"
	"github.com/awslabs/ar-ir-tools/analysis/dominators"
	"github.com/awslabs/ar-ir-tools/analysis/ir"
	"github.com/awslabs/ar-ir-tools/internal/graphutil"
)

// ControlDependenceGraph is the control dependence graph of a function. It is immutable after construction.
type ControlDependenceGraph struct {
	cfg   *cfg.ControlFlowGraph
	graph *graphutil.Digraph[cfg.Node]
}

// New computes the control dependence graph of g from its postdominator tree pdt.
// Blocks that cannot reach Return are not in pdt and have no control dependence.
func New(g *cfg.ControlFlowGraph, pdt *dominators.PostDominatorTree) *ControlDependenceGraph {
	cdg := &ControlDependenceGraph{cfg: g, graph: graphutil.NewDigraph[cfg.Node]()}
	for _, b := range g.Blocks() {
		cdg.graph.AddNode(cfg.Block(b))
	}

	notIpostdomOf := func(x cfg.Node, y cfg.Node) bool {
		p, ok := pdt.IpostdomNode(y).Get()
		return !ok || p != x
	}

	// children are processed before their parents, so the outgoing edges of every child of x are final when x
	// is processed
	for _, x := range pdt.PostOrder() {
		if x.IsReturn() {
			continue
		}
		for _, y := range g.PredNodes(x) {
			if pdt.Reachable(y) && notIpostdomOf(x, y) {
				cdg.graph.AddEdge(x, y)
			}
		}
		for _, z := range pdt.ChildNodes(x) {
			for _, y := range cdg.graph.Succs(z) {
				if notIpostdomOf(x, y) {
					cdg.graph.AddEdge(x, y)
				}
			}
		}
	}
	return cdg
}

// FunctionName returns the name of the function the graph is computed for
func (c *ControlDependenceGraph) FunctionName() string {
	return c.cfg.FunctionName()
}

// Edges calls f on every edge from -> to of the graph, where from is control dependent on to
func (c *ControlDependenceGraph) Edges(f func(from string, to string)) {
	for _, x := range c.graph.Nodes() {
		for _, y := range c.graph.Succs(x) {
			f(x.Name(), y.Name())
		}
	}
}

// NumEdges returns the number of immediate control dependencies in the function
func (c *ControlDependenceGraph) NumEdges() int {
	return c.graph.NumEdges()
}

// ImmControlDependencies returns the blocks block is immediately control dependent on
func (c *ControlDependenceGraph) ImmControlDependencies(block string) ([]string, error) {
	if err := c.check(block); err != nil {
		return nil, err
	}
	return names(c.graph.Succs(cfg.Block(block))), nil
}

// ImmControlDependents returns the blocks that are immediately control dependent on block
func (c *ControlDependenceGraph) ImmControlDependents(block string) ([]string, error) {
	if err := c.check(block); err != nil {
		return nil, err
	}
	return names(c.graph.Preds(cfg.Block(block))), nil
}

// ControlDependencies returns the sequence of blocks block is transitively control dependent on, in unspecified
// order. The block itself is in the sequence only if it is on a cycle of control dependence.
func (c *ControlDependenceGraph) ControlDependencies(block string) (iter.Seq[string], error) {
	if err := c.check(block); err != nil {
		return nil, err
	}
	return c.closure(cfg.Block(block), c.graph.Succs), nil
}

// ControlDependents returns the sequence of blocks that are transitively control dependent on block, in
// unspecified order. The block itself is in the sequence only if it is on a cycle of control dependence.
func (c *ControlDependenceGraph) ControlDependents(block string) (iter.Seq[string], error) {
	if err := c.check(block); err != nil {
		return nil, err
	}
	return c.closure(cfg.Block(block), c.graph.Preds), nil
}

// IsControlDependent returns true if a is transitively control dependent on b.
// A block is control dependent on itself only through a cycle of at least one edge.
func (c *ControlDependenceGraph) IsControlDependent(a string, b string) (bool, error) {
	if err := c.check(a); err != nil {
		return false, err
	}
	if err := c.check(b); err != nil {
		return false, err
	}
	x, y := cfg.Block(a), cfg.Block(b)
	if x != y {
		return c.graph.Reaches(x, y), nil
	}
	for _, s := range c.graph.Succs(x) {
		if c.graph.Reaches(s, x) {
			return true, nil
		}
	}
	return false, nil
}

// closure returns the nodes reachable from start in one or more steps of next. The worklist is run every time the
// sequence is iterated, and stops as soon as the consumer does.
func (c *ControlDependenceGraph) closure(start cfg.Node, next func(cfg.Node) []cfg.Node) iter.Seq[string] {
	return func(yield func(string) bool) {
		visited := map[cfg.Node]bool{}
		worklist := append([]cfg.Node(nil), next(start)...)
		for len(worklist) > 0 {
			n := worklist[len(worklist)-1]
			worklist = worklist[:len(worklist)-1]
			if visited[n] {
				continue
			}
			visited[n] = true
			if !yield(n.Name()) {
				return
			}
			worklist = append(worklist, next(n)...)
		}
	}
}

func (c *ControlDependenceGraph) check(block string) error {
	if !c.cfg.HasBlock(block) {
		return ir.NotFound("block", block, "function "+c.cfg.FunctionName())
	}
	return nil
}

func names(nodes []cfg.Node) []string {
	s := make([]string, len(nodes))
	for i, n := range nodes {
		s[i] = n.Name()
	}
	return s
}

