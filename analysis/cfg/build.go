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

// Package cfg builds the control-flow graph of a function.
//
// The nodes of the graph are the basic blocks of the function plus one synthetic Return node shared by every block
// that can exit the function. Nodes are identified by block names; the graph only borrows names from the IR.
package cfg

import (
	"fmt"

	"github.com/awslabs/ar-ir-tools/analysis/ir"
	"github.com/awslabs/ar-ir-tools/internal/graphutil"
)

// Node is a node of a control-flow graph: either a basic block, identified by its name, or the Return node.
// Nodes are comparable values.
type Node struct {
	name string
	ret  bool
}

// Return is the synthetic sink every exiting block flows to
var Return = Node{ret: true}

// Block returns the node of the block named name
func Block(name string) Node {
	return Node{name: name}
}

// IsReturn returns true if n is the Return node
func (n Node) IsReturn() bool {
	return n.ret
}

// Name returns the name of the block of n, or the empty string for Return
func (n Node) Name() string {
	return n.name
}

func (n Node) String() string {
	if n.ret {
		return "Return"
	}
	return n.name
}

// ControlFlowGraph is the control-flow graph of a function. It is immutable after construction.
type ControlFlowGraph struct {
	function string

	// blocks are the block names in declaration order
	blocks []string
	known  map[string]bool

	graph *graphutil.Digraph[Node]

	// entry is the first block of the function, or Return for a reversed graph
	entry Node
}

// Build returns the control-flow graph of f.
//
// Returns an error wrapping ir.ErrUnsupported if f has no blocks, a block has no terminator or a terminator is not
// modeled (CallBr), and an error wrapping ir.ErrNotFound if a terminator targets a block that is not in f.
func Build(f *ir.Function) (*ControlFlowGraph, error) {
	if len(f.Blocks) == 0 {
		return nil, ir.Unsupported("function %s has no body", f.Name)
	}
	g := &ControlFlowGraph{
		function: f.Name,
		blocks:   make([]string, 0, len(f.Blocks)),
		known:    make(map[string]bool, len(f.Blocks)),
		graph:    graphutil.NewDigraph[Node](),
		entry:    Block(f.Blocks[0].Name),
	}
	for _, b := range f.Blocks {
		if g.known[b.Name] {
			return nil, ir.Unsupported("function %s has two blocks named %q", f.Name, b.Name)
		}
		g.known[b.Name] = true
		g.blocks = append(g.blocks, b.Name)
		g.graph.AddNode(Block(b.Name))
	}
	g.graph.AddNode(Return)

	for _, b := range f.Blocks {
		targets, err := successors(b)
		if err != nil {
			return nil, fmt.Errorf("in function %s: %w", f.Name, err)
		}
		for _, t := range targets {
			if !t.IsReturn() && !g.known[t.name] {
				return nil, ir.NotFound("branch target", t.name, "function "+f.Name)
			}
			g.graph.AddEdge(Block(b.Name), t)
		}
	}
	return g, nil
}

// successors returns the nodes the terminator of b can transfer control to
func successors(b *ir.BasicBlock) ([]Node, error) {
	switch term := b.Term.(type) {
	case ir.Br:
		return []Node{Block(term.Dest)}, nil
	case ir.CondBr:
		return []Node{Block(term.True), Block(term.False)}, nil
	case ir.IndirectBr:
		return blocks(term.Dests), nil
	case ir.Switch:
		succs := []Node{Block(term.Default)}
		for _, c := range term.Cases {
			succs = append(succs, Block(c.Dest))
		}
		return succs, nil
	case ir.Ret, ir.Resume:
		return []Node{Return}, nil
	case ir.Invoke:
		return []Node{Block(term.Normal), Block(term.Exception)}, nil
	case ir.CleanupRet:
		return []Node{unwindTarget(term.UnwindDest)}, nil
	case ir.CatchRet:
		return []Node{Block(term.Successor)}, nil
	case ir.CatchSwitch:
		return append(blocks(term.Handlers), unwindTarget(term.UnwindDest)), nil
	case ir.Unreachable:
		return nil, nil
	case ir.CallBr:
		return nil, ir.Unsupported("block %s: terminator %q is not modeled", b.Name, term)
	case nil:
		return nil, ir.Unsupported("block %s has no terminator", b.Name)
	default:
		return nil, ir.Unsupported("block %s: unknown terminator %T", b.Name, term)
	}
}

func blocks(names []string) []Node {
	nodes := make([]Node, len(names))
	for i, name := range names {
		nodes[i] = Block(name)
	}
	return nodes
}

// unwindTarget is the explicit unwind destination, or Return when the terminator unwinds to the caller
func unwindTarget(dest string) Node {
	if dest == "" {
		return Return
	}
	return Block(dest)
}
