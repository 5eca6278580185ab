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

// Package dominators computes the dominator and postdominator trees of control-flow graphs.
//
// Both trees are computed by the iterative algorithm of Cooper, Harvey and Kennedy, "A Simple, Fast Dominance
// Algorithm" (2001). The postdominator tree is the dominator tree of the reversed control-flow graph, rooted at the
// Return node.
//
// Nodes that are not reachable from the root (from the entry block for dominance, or that cannot reach Return for
// postdominance) are excluded from the computation: they have no immediate dominator (resp. postdominator) and no
// children, and are only related to themselves.
package dominators

import (
	"fmt"

	"github.com/awslabs/ar-ir-tools/analysis/cfg"
	"github.com/awslabs/ar-ir-tools/internal/graphutil"
)

// flowGraph is the view of a rooted control-flow graph the dominance computation runs over
type flowGraph interface {
	Entry() cfg.Node
	SuccNodes(cfg.Node) []cfg.Node
	PredNodes(cfg.Node) []cfg.Node
	PostOrder() []cfg.Node
}

// tree is an immediate-dominance relation stored as a graph with edges idom(n) -> n
type tree struct {
	root  cfg.Node
	graph *graphutil.Digraph[cfg.Node]
}

// computeTree runs the dominance algorithm on g, from g.Entry().
func computeTree(g flowGraph) *tree {
	root := g.Entry()
	postorder := g.PostOrder()

	// number[n] is the postorder number of n: the root has the largest number, and every node has a smaller
	// number than its immediate dominator. Nodes without a number are unreachable from the root.
	number := make(map[cfg.Node]int, len(postorder))
	for i, n := range postorder {
		number[n] = i
	}

	idom := make(map[cfg.Node]cfg.Node, len(postorder))
	idom[root] = root

	// commonDominator walks up the current idom chains of a and b until they meet. The finger with the smaller
	// postorder number is always the one to move up.
	commonDominator := func(a cfg.Node, b cfg.Node) cfg.Node {
		for number[a] != number[b] {
			for number[a] < number[b] {
				a = idom[a]
			}
			for number[b] < number[a] {
				b = idom[b]
			}
		}
		return a
	}

	for changed := true; changed; {
		changed = false
		// reverse postorder, skipping the root
		for i := len(postorder) - 2; i >= 0; i-- {
			n := postorder[i]
			var newIdom cfg.Node
			found := false
			for _, p := range g.PredNodes(n) {
				if _, reachable := number[p]; !reachable {
					continue
				}
				if _, processed := idom[p]; !processed {
					continue
				}
				if !found {
					newIdom = p
					found = true
				} else {
					newIdom = commonDominator(p, newIdom)
				}
			}
			if !found {
				// only possible for the root, every other reachable node has a reachable predecessor
				// that precedes it in reverse postorder
				panic(fmt.Sprintf("dominance: node %s has no processed predecessor", n))
			}
			if old, ok := idom[n]; !ok || old != newIdom {
				idom[n] = newIdom
				changed = true
			}
		}
	}

	t := &tree{root: root, graph: graphutil.NewDigraph[cfg.Node]()}
	for i := len(postorder) - 1; i >= 0; i-- {
		t.graph.AddNode(postorder[i])
	}
	for i := len(postorder) - 2; i >= 0; i-- {
		n := postorder[i]
		t.graph.AddEdge(idom[n], n)
	}
	return t
}

// parent returns the immediate dominator of n, and false if n is the root or is unreachable.
// Panics if n has more than one parent, which would mean the tree is not a tree.
func (t *tree) parent(n cfg.Node) (cfg.Node, bool) {
	preds := t.graph.Preds(n)
	switch len(preds) {
	case 0:
		return cfg.Node{}, false
	case 1:
		if n == t.root {
			panic(fmt.Sprintf("dominance: root %s has a parent", n))
		}
		return preds[0], true
	default:
		panic(fmt.Sprintf("dominance: node %s has %d immediate dominators", n, len(preds)))
	}
}

func (t *tree) children(n cfg.Node) []cfg.Node {
	return append([]cfg.Node(nil), t.graph.Succs(n)...)
}

// edges calls f on every edge of the tree, root first
func (t *tree) edges(f func(cfg.Node, cfg.Node)) {
	for _, n := range t.graph.Nodes() {
		for _, c := range t.graph.Succs(n) {
			f(n, c)
		}
	}
}

// dominates returns true if a dominates b. Every node dominates itself, including unreachable nodes.
func (t *tree) dominates(a cfg.Node, b cfg.Node) bool {
	if a == b {
		return true
	}
	if !t.graph.HasNode(a) || !t.graph.HasNode(b) {
		return false
	}
	for cur, ok := t.parent(b); ok; cur, ok = t.parent(cur) {
		if cur == a {
			return true
		}
	}
	return false
}

// frontier returns the dominance frontier of every reachable node in g, computed bottom-up over the tree
// (Cytron et al., Figure 10): DF(x) = {y in succ(x) | idom(y) != x} U {y in DF(z) | z child of x, idom(y) != x}.
func (t *tree) frontier(g flowGraph) map[cfg.Node][]cfg.Node {
	df := make(map[cfg.Node][]cfg.Node, t.graph.NumNodes())
	seen := make(map[cfg.Node]map[cfg.Node]bool, t.graph.NumNodes())
	add := func(x cfg.Node, y cfg.Node) {
		if seen[x] == nil {
			seen[x] = map[cfg.Node]bool{}
		}
		if !seen[x][y] {
			seen[x][y] = true
			df[x] = append(df[x], y)
		}
	}
	notIdomOf := func(x cfg.Node, y cfg.Node) bool {
		p, ok := t.parent(y)
		return !ok || p != x
	}
	for _, x := range t.graph.PostOrder(t.root) {
		for _, y := range g.SuccNodes(x) {
			if t.graph.HasNode(y) && notIdomOf(x, y) {
				add(x, y)
			}
		}
		for _, z := range t.graph.Succs(x) {
			for _, y := range df[z] {
				if notIdomOf(x, y) {
					add(x, y)
				}
			}
		}
	}
	return df
}
