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

package cfg

import (
	"github.com/awslabs/ar-ir-tools/analysis/ir"
	"github.com/awslabs/ar-ir-tools/internal/funcutil"
)

// FunctionName returns the name of the function of the graph
func (g *ControlFlowGraph) FunctionName() string {
	return g.function
}

// Entry returns the entry node of the graph: the first block of the function, or Return for a reversed graph.
func (g *ControlFlowGraph) Entry() Node {
	return g.entry
}

// IsReversed returns true if g has been obtained by Reversed
func (g *ControlFlowGraph) IsReversed() bool {
	return g.entry.IsReturn()
}

// HasBlock returns true if the function has a block named block
func (g *ControlFlowGraph) HasBlock(block string) bool {
	return g.known[block]
}

// HasNode returns true if n is Return or a block of the function
func (g *ControlFlowGraph) HasNode(n Node) bool {
	return n.IsReturn() || g.known[n.name]
}

// Blocks returns the names of the blocks of the function, in declaration order
func (g *ControlFlowGraph) Blocks() []string {
	return append([]string(nil), g.blocks...)
}

// Nodes returns all the nodes of the graph: the blocks in declaration order, followed by Return
func (g *ControlFlowGraph) Nodes() []Node {
	return append([]Node(nil), g.graph.Nodes()...)
}

// Preds returns the names of the blocks that can transfer control to block.
func (g *ControlFlowGraph) Preds(block string) ([]string, error) {
	if err := g.check(block); err != nil {
		return nil, err
	}
	return names(g.graph.Preds(Block(block))), nil
}

// PredsOfReturn returns the names of the blocks that can exit the function
func (g *ControlFlowGraph) PredsOfReturn() []string {
	return names(g.graph.Preds(Return))
}

// Succs returns the nodes block can transfer control to. Return is a successor of the blocks exiting the function.
func (g *ControlFlowGraph) Succs(block string) ([]Node, error) {
	if err := g.check(block); err != nil {
		return nil, err
	}
	return append([]Node(nil), g.graph.Succs(Block(block))...), nil
}

// SuccNodes returns the successors of n in the graph. It returns nil if n is not a node of the graph.
// The slice must not be modified.
func (g *ControlFlowGraph) SuccNodes(n Node) []Node {
	return g.graph.Succs(n)
}

// PredNodes returns the predecessors of n in the graph. It returns nil if n is not a node of the graph.
// The slice must not be modified.
func (g *ControlFlowGraph) PredNodes(n Node) []Node {
	return g.graph.Preds(n)
}

// PostOrder returns the nodes reachable from the entry, in the postorder of a depth-first search from the entry
func (g *ControlFlowGraph) PostOrder() []Node {
	return g.graph.PostOrder(g.entry)
}

// Reachable returns true if there is a path of length >= 0 from x to y
func (g *ControlFlowGraph) Reachable(x Node, y Node) bool {
	return g.graph.Reaches(x, y)
}

// NumEdges returns the number of edges of the graph
func (g *ControlFlowGraph) NumEdges() int {
	return g.graph.NumEdges()
}

// Reversed returns a new graph with every edge flipped, whose entry is Return. The reversed graph is used to
// compute postdominance with the dominance algorithm.
func (g *ControlFlowGraph) Reversed() *ControlFlowGraph {
	entry := Return
	if g.IsReversed() {
		entry = Block(g.blocks[0])
	}
	return &ControlFlowGraph{
		function: g.function,
		blocks:   g.blocks,
		known:    g.known,
		graph:    g.graph.Reversed(),
		entry:    entry,
	}
}

func (g *ControlFlowGraph) check(block string) error {
	if !g.known[block] {
		return ir.NotFound("block", block, "function "+g.function)
	}
	return nil
}

func names(nodes []Node) []string {
	return funcutil.Map(funcutil.Filter(nodes, func(n Node) bool { return !n.IsReturn() }),
		func(n Node) string { return n.name })
}
