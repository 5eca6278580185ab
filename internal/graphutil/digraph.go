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

package graphutil

// Digraph is a directed graph over comparable node identifiers, stored as ordered adjacency lists.
// Nodes and edges are kept in insertion order, which makes every traversal of the graph deterministic.
// Parallel edges are collapsed: adding an edge twice has no effect.
type Digraph[N comparable] struct {
	nodes []N
	index map[N]int
	out   map[N][]N
	in    map[N][]N
	edges map[edge[N]]bool
}

type edge[N comparable] struct {
	from N
	to   N
}

// NewDigraph returns an empty graph
func NewDigraph[N comparable]() *Digraph[N] {
	return &Digraph[N]{
		nodes: nil,
		index: map[N]int{},
		out:   map[N][]N{},
		in:    map[N][]N{},
		edges: map[edge[N]]bool{},
	}
}

// AddNode adds n to the graph and returns true if it was not already present.
func (g *Digraph[N]) AddNode(n N) bool {
	if _, ok := g.index[n]; ok {
		return false
	}
	g.index[n] = len(g.nodes)
	g.nodes = append(g.nodes, n)
	return true
}

// AddEdge adds the edge from -> to, adding the nodes if necessary.
func (g *Digraph[N]) AddEdge(from N, to N) {
	g.AddNode(from)
	g.AddNode(to)
	e := edge[N]{from, to}
	if g.edges[e] {
		return
	}
	g.edges[e] = true
	g.out[from] = append(g.out[from], to)
	g.in[to] = append(g.in[to], from)
}

// HasNode returns true if n is a node of the graph
func (g *Digraph[N]) HasNode(n N) bool {
	_, ok := g.index[n]
	return ok
}

// HasEdge returns true if the graph contains the edge from -> to
func (g *Digraph[N]) HasEdge(from N, to N) bool {
	return g.edges[edge[N]{from, to}]
}

// Nodes returns the nodes of the graph in insertion order. The slice must not be modified.
func (g *Digraph[N]) Nodes() []N {
	return g.nodes
}

// Index returns the insertion index of n, or -1 if n is not in the graph
func (g *Digraph[N]) Index(n N) int {
	if i, ok := g.index[n]; ok {
		return i
	}
	return -1
}

// Succs returns the targets of the edges out of n. The slice must not be modified.
func (g *Digraph[N]) Succs(n N) []N {
	return g.out[n]
}

// Preds returns the sources of the edges into n. The slice must not be modified.
func (g *Digraph[N]) Preds(n N) []N {
	return g.in[n]
}

// NumNodes returns the number of nodes in the graph
func (g *Digraph[N]) NumNodes() int {
	return len(g.nodes)
}

// NumEdges returns the number of edges in the graph
func (g *Digraph[N]) NumEdges() int {
	return len(g.edges)
}

// Reversed returns a new graph with the same nodes, in the same order, and every edge flipped.
func (g *Digraph[N]) Reversed() *Digraph[N] {
	r := NewDigraph[N]()
	for _, n := range g.nodes {
		r.AddNode(n)
	}
	for _, n := range g.nodes {
		for _, s := range g.out[n] {
			r.AddEdge(s, n)
		}
	}
	return r
}

// Reaches returns true if there is a path of length >= 0 from x to y. A node always reaches itself.
func (g *Digraph[N]) Reaches(x N, y N) bool {
	if x == y {
		return g.HasNode(x)
	}
	found := false
	g.DepthFirst(x, func(n N) bool {
		if n == y {
			found = true
			return true
		}
		return false
	})
	return found
}

// DepthFirst visits the nodes reachable from root in depth-first order, calling visit on each.
// The traversal stops as soon as visit returns true.
func (g *Digraph[N]) DepthFirst(root N, visit func(N) (stop bool)) {
	if !g.HasNode(root) {
		return
	}
	visited := map[N]bool{root: true}
	stack := []N{root}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visit(cur) {
			return
		}
		succs := g.out[cur]
		for i := len(succs) - 1; i >= 0; i-- {
			if !visited[succs[i]] {
				visited[succs[i]] = true
				stack = append(stack, succs[i])
			}
		}
	}
}

// PostOrder returns the nodes reachable from root, in the postorder of a depth-first search from root that
// explores successors in adjacency order. Nodes not reachable from root are not in the result.
func (g *Digraph[N]) PostOrder(root N) []N {
	if !g.HasNode(root) {
		return nil
	}
	type frame struct {
		node N
		next int
	}
	var order []N
	visited := map[N]bool{root: true}
	stack := []frame{{root, 0}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		succs := g.out[top.node]
		if top.next < len(succs) {
			s := succs[top.next]
			top.next++
			if !visited[s] {
				visited[s] = true
				stack = append(stack, frame{s, 0})
			}
			continue
		}
		order = append(order, top.node)
		stack = stack[:len(stack)-1]
	}
	return order
}
