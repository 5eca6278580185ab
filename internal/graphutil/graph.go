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

import (
	"fmt"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/iterator"
	"gonum.org/v1/gonum/graph/simple"
)

// Gonum is an abstraction over a Digraph to work with Gonum's graph library. It implements the methods to
// satisfy Gonum's graph.Directed. Node IDs are the insertion indices of the nodes in the Digraph.
type Gonum[N comparable] struct {
	g *Digraph[N]

	// ids[i] is the gonum node for the i-th node of g
	ids []GNode[N]
}

// NewGonum returns a view of g as a Gonum directed graph. The view must not outlive modifications of g.
func NewGonum[N comparable](g *Digraph[N]) *Gonum[N] {
	ids := make([]GNode[N], len(g.Nodes()))
	for i, n := range g.Nodes() {
		ids[i] = GNode[N]{id: int64(i), Label: n}
	}
	return &Gonum[N]{g: g, ids: ids}
}

// NodeOf returns the gonum node for the Digraph node n, or nil if n is not in the graph
func (c *Gonum[N]) NodeOf(n N) graph.Node {
	i := c.g.Index(n)
	if i < 0 {
		return nil
	}
	return c.ids[i]
}

// Label returns the Digraph node of the gonum node with the given id
func (c *Gonum[N]) Label(id int64) (N, bool) {
	if id < 0 || id >= int64(len(c.ids)) {
		var z N
		return z, false
	}
	return c.ids[id].Label, true
}

// *************** Graph interface implementation **********************

// Node implements the Graph interface
func (c *Gonum[N]) Node(id int64) graph.Node {
	if id < 0 || id >= int64(len(c.ids)) {
		return nil
	}
	return c.ids[id]
}

// Nodes returns the set of nodes in the graph
func (c *Gonum[N]) Nodes() graph.Nodes {
	nodes := make([]graph.Node, len(c.ids))
	for i, n := range c.ids {
		nodes[i] = n
	}
	return iterator.NewOrderedNodes(nodes)
}

// From returns the set of nodes that are targets of an edge from id
func (c *Gonum[N]) From(id int64) graph.Nodes {
	n, ok := c.Label(id)
	if !ok {
		return graph.Empty
	}
	return c.toNodes(c.g.Succs(n))
}

// To returns the set of nodes that are sources of an edge to id
func (c *Gonum[N]) To(id int64) graph.Nodes {
	n, ok := c.Label(id)
	if !ok {
		return graph.Empty
	}
	return c.toNodes(c.g.Preds(n))
}

func (c *Gonum[N]) toNodes(ns []N) graph.Nodes {
	if len(ns) == 0 {
		return graph.Empty
	}
	nodes := make([]graph.Node, len(ns))
	for i, n := range ns {
		nodes[i] = c.NodeOf(n)
	}
	return iterator.NewOrderedNodes(nodes)
}

// HasEdgeBetween returns a boolean indicating whether an edge exists between the two node identifiers
func (c *Gonum[N]) HasEdgeBetween(xid, yid int64) bool {
	return c.HasEdgeFromTo(xid, yid) || c.HasEdgeFromTo(yid, xid)
}

// HasEdgeFromTo returns whether a directed edge exists from uid to vid
func (c *Gonum[N]) HasEdgeFromTo(uid, vid int64) bool {
	u, oku := c.Label(uid)
	v, okv := c.Label(vid)
	return oku && okv && c.g.HasEdge(u, v)
}

// Edge returns the edge between the two identifiers (nil if none exists)
func (c *Gonum[N]) Edge(uid, vid int64) graph.Edge {
	if !c.HasEdgeFromTo(uid, vid) {
		return nil
	}
	return simple.Edge{F: c.ids[uid], T: c.ids[vid]}
}

// *************** Nodes implementation **********************

// GNode is a wrapper around a Digraph node that implements the graph.Node interface, and the dot.Node interface
// so that encoded graphs are labelled by the node and not its id.
type GNode[N comparable] struct {
	id    int64
	Label N
}

// ID returns the id of the node
func (n GNode[N]) ID() int64 {
	return n.id
}

// DOTID returns the string used to identify the node in DOT format
func (n GNode[N]) DOTID() string {
	return fmt.Sprint(n.Label)
}

func (n GNode[N]) String() string {
	return fmt.Sprint(n.Label)
}
