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

package dominators

import (
	"github.com/awslabs/ar-ir-tools/analysis/cfg"
	"github.com/awslabs/ar-ir-tools/analysis/ir"
	"github.com/awslabs/ar-ir-tools/internal/funcutil"
)

// DominatorTree is the dominator tree of a function: an edge X -> Y means X is the immediate dominator of Y.
// It is immutable after construction.
type DominatorTree struct {
	cfg      *cfg.ControlFlowGraph
	tree     *tree
	frontier funcutil.Lazy[map[cfg.Node][]cfg.Node]
}

// NewDominatorTree computes the dominator tree of the control-flow graph g
func NewDominatorTree(g *cfg.ControlFlowGraph) *DominatorTree {
	return &DominatorTree{cfg: g, tree: computeTree(g)}
}

// Entry returns the root of the tree, which is the entry block of the function
func (d *DominatorTree) Entry() string {
	return d.tree.root.Name()
}

// Idom returns the name of the immediate dominator of block. The result is none for the entry block and for blocks
// that are not reachable from the entry.
func (d *DominatorTree) Idom(block string) (funcutil.Optional[string], error) {
	if !d.cfg.HasBlock(block) {
		return nil, ir.NotFound("block", block, "function "+d.cfg.FunctionName())
	}
	p, ok := d.tree.parent(cfg.Block(block))
	return funcutil.OptionOf(p.Name(), ok), nil
}

// IdomOfReturn returns the name of the immediate dominator of the Return node. The result is none if no path from
// the entry reaches Return.
func (d *DominatorTree) IdomOfReturn() funcutil.Optional[string] {
	p, ok := d.tree.parent(cfg.Return)
	return funcutil.OptionOf(p.Name(), ok)
}

// Children returns the nodes block immediately dominates. Return can be a child.
func (d *DominatorTree) Children(block string) ([]cfg.Node, error) {
	if !d.cfg.HasBlock(block) {
		return nil, ir.NotFound("block", block, "function "+d.cfg.FunctionName())
	}
	return d.tree.children(cfg.Block(block)), nil
}

// Dominates returns true if a dominates b, i.e. every path from the entry to b goes through a.
// Every node dominates itself.
func (d *DominatorTree) Dominates(a cfg.Node, b cfg.Node) (bool, error) {
	if err := checkNodes(d.cfg, a, b); err != nil {
		return false, err
	}
	return d.tree.dominates(a, b), nil
}

// StrictlyDominates returns true if a dominates b and a is not b
func (d *DominatorTree) StrictlyDominates(a cfg.Node, b cfg.Node) (bool, error) {
	if err := checkNodes(d.cfg, a, b); err != nil {
		return false, err
	}
	return a != b && d.tree.dominates(a, b), nil
}

// Frontier returns the dominance frontier of block: the nodes Y such that block dominates a predecessor of Y but
// does not strictly dominate Y. The frontier of an unreachable block is empty.
func (d *DominatorTree) Frontier(block string) ([]cfg.Node, error) {
	if !d.cfg.HasBlock(block) {
		return nil, ir.NotFound("block", block, "function "+d.cfg.FunctionName())
	}
	df, _ := d.frontier.Get(func() (map[cfg.Node][]cfg.Node, error) { return d.tree.frontier(d.cfg), nil })
	return append([]cfg.Node(nil), df[cfg.Block(block)]...), nil
}

// Reachable returns true if block is reachable from the entry, i.e. it is in the tree
func (d *DominatorTree) Reachable(block string) bool {
	return d.tree.graph.HasNode(cfg.Block(block))
}

// Edges calls f on every edge of the tree, from an immediate dominator to a node it immediately dominates
func (d *DominatorTree) Edges(f func(parent cfg.Node, child cfg.Node)) {
	d.tree.edges(f)
}

// PostDominatorTree is the postdominator tree of a function: an edge X -> Y means X is the immediate postdominator
// of Y. Its root is the Return node. It is immutable after construction.
type PostDominatorTree struct {
	cfg      *cfg.ControlFlowGraph
	reversed *cfg.ControlFlowGraph
	tree     *tree
	frontier funcutil.Lazy[map[cfg.Node][]cfg.Node]
}

// NewPostDominatorTree computes the postdominator tree of the control-flow graph g by running the dominance
// algorithm on the reversed graph.
func NewPostDominatorTree(g *cfg.ControlFlowGraph) *PostDominatorTree {
	r := g.Reversed()
	return &PostDominatorTree{cfg: g, reversed: r, tree: computeTree(r)}
}

// Ipostdom returns the immediate postdominator of block, which may be Return. The result is none for blocks from
// which Return is not reachable.
func (p *PostDominatorTree) Ipostdom(block string) (funcutil.Optional[cfg.Node], error) {
	if !p.cfg.HasBlock(block) {
		return nil, ir.NotFound("block", block, "function "+p.cfg.FunctionName())
	}
	n, ok := p.tree.parent(cfg.Block(block))
	return funcutil.OptionOf(n, ok), nil
}

// IpostdomNode is Ipostdom for a node known to be in the graph. The result is none for Return.
func (p *PostDominatorTree) IpostdomNode(n cfg.Node) funcutil.Optional[cfg.Node] {
	parent, ok := p.tree.parent(n)
	return funcutil.OptionOf(parent, ok)
}

// Children returns the blocks block immediately postdominates
func (p *PostDominatorTree) Children(block string) ([]cfg.Node, error) {
	if !p.cfg.HasBlock(block) {
		return nil, ir.NotFound("block", block, "function "+p.cfg.FunctionName())
	}
	return p.tree.children(cfg.Block(block)), nil
}

// ChildrenOfReturn returns the blocks Return immediately postdominates
func (p *PostDominatorTree) ChildrenOfReturn() []cfg.Node {
	return p.tree.children(cfg.Return)
}

// ChildNodes returns the children of the node n in the tree. The slice must not be modified.
func (p *PostDominatorTree) ChildNodes(n cfg.Node) []cfg.Node {
	return p.tree.graph.Succs(n)
}

// PostOrder returns the nodes of the tree in postorder from Return: every node appears after all its children.
func (p *PostDominatorTree) PostOrder() []cfg.Node {
	return p.tree.graph.PostOrder(cfg.Return)
}

// Postdominates returns true if a postdominates b, i.e. every path from b to Return goes through a.
// Every node postdominates itself.
func (p *PostDominatorTree) Postdominates(a cfg.Node, b cfg.Node) (bool, error) {
	if err := checkNodes(p.cfg, a, b); err != nil {
		return false, err
	}
	return p.tree.dominates(a, b), nil
}

// StrictlyPostdominates returns true if a postdominates b and a is not b
func (p *PostDominatorTree) StrictlyPostdominates(a cfg.Node, b cfg.Node) (bool, error) {
	if err := checkNodes(p.cfg, a, b); err != nil {
		return false, err
	}
	return a != b && p.tree.dominates(a, b), nil
}

// Frontier returns the postdominance frontier of the node n: the blocks Y such that n postdominates a successor of
// Y but does not strictly postdominate Y.
func (p *PostDominatorTree) Frontier(n cfg.Node) ([]cfg.Node, error) {
	if err := checkNodes(p.cfg, n); err != nil {
		return nil, err
	}
	df, _ := p.frontier.Get(func() (map[cfg.Node][]cfg.Node, error) { return p.tree.frontier(p.reversed), nil })
	return append([]cfg.Node(nil), df[n]...), nil
}

// Reachable returns true if Return is reachable from n, i.e. n is in the tree
func (p *PostDominatorTree) Reachable(n cfg.Node) bool {
	return p.tree.graph.HasNode(n)
}

// Edges calls f on every edge of the tree, from an immediate postdominator to a node it immediately
// postdominates
func (p *PostDominatorTree) Edges(f func(parent cfg.Node, child cfg.Node)) {
	p.tree.edges(f)
}

func checkNodes(g *cfg.ControlFlowGraph, nodes ...cfg.Node) error {
	for _, n := range nodes {
		if !g.HasNode(n) {
			return ir.NotFound("block", n.Name(), "function "+g.FunctionName())
		}
	}
	return nil
}
