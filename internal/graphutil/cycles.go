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
	"github.com/yourbasic/graph"
)

// indexed is a view of a Digraph where the nodes are the integers [0, order), in insertion order.
// Only the nodes in [lo, order) that are included have edges; it implements yourbasic's graph.Iterator.
type indexed[N comparable] struct {
	g        *Digraph[N]
	lo       int
	included map[int]bool // nil means every node in [lo, order) is included
}

// Order implements the order of the graph.Iterator interface
func (x indexed[N]) Order() int {
	return x.g.NumNodes()
}

func (x indexed[N]) includes(v int) bool {
	if v < x.lo || v >= x.g.NumNodes() {
		return false
	}
	return x.included == nil || x.included[v]
}

// Visit implements the graph.Iterator interface
func (x indexed[N]) Visit(v int, do func(w int, c int64) (skip bool)) (aborted bool) {
	if !x.includes(v) {
		return false
	}
	for _, s := range x.g.Succs(x.g.Nodes()[v]) {
		w := x.g.Index(s)
		if x.includes(w) && do(w, 1) {
			return true
		}
	}
	return false
}

// FindAllElementaryCycles finds all elementary cycles in the graph g. Each cycle starts and ends with the same node,
// and self-loops are reported as cycles of length one, e.g. [a a].
// This uses Donald B. Johnson's algorithm presented in
// "Finding All The Elementary Circuits of a Directed Graph", 1975
func FindAllElementaryCycles[N comparable](g *Digraph[N]) [][]N {
	s := &state[N]{g: g}
	start := 0
	for start < g.NumNodes() {
		components := graph.StrongComponents(indexed[N]{g: g, lo: start})
		least := -1
		var leastComponent []int
		for _, component := range components {
			if !s.cyclic(component, start) {
				continue
			}
			m := component[0]
			for _, v := range component[1:] {
				if v < m {
					m = v
				}
			}
			if least < 0 || m < least {
				least = m
				leastComponent = component
			}
		}
		if least < 0 {
			break
		}
		sub := indexed[N]{g: g, lo: least, included: map[int]bool{}}
		for _, v := range leastComponent {
			sub.included[v] = true
		}
		s.stack = []int{}
		s.blocked = map[int]bool{}
		s.blist = map[int]map[int]bool{}
		s.circuit(least, least, sub)
		start = least + 1
	}
	return s.cycles
}

type state[N comparable] struct {
	g       *Digraph[N]
	blocked map[int]bool
	blist   map[int]map[int]bool
	stack   []int
	cycles  [][]N
}

// cyclic returns true if the strongly connected component contains at least one cycle in the subgraph of nodes
// with index at least lo
func (s *state[N]) cyclic(component []int, lo int) bool {
	if len(component) >= 2 {
		return true
	}
	if component[0] < lo {
		return false
	}
	n := s.g.Nodes()[component[0]]
	return s.g.HasEdge(n, n)
}

func (s *state[N]) unblock(u int) {
	s.blocked[u] = false
	for w := range s.blist[u] {
		delete(s.blist[u], w)
		if s.blocked[w] {
			s.unblock(w)
		}
	}
}

func (s *state[N]) circuit(v int, i int, g indexed[N]) bool {
	f := false
	s.stack = append(s.stack, v)
	s.blocked[v] = true
	g.Visit(v, func(w int, _ int64) bool {
		if w == i {
			cycle := make([]N, 0, len(s.stack)+1)
			for _, x := range s.stack {
				cycle = append(cycle, s.g.Nodes()[x])
			}
			cycle = append(cycle, s.g.Nodes()[w])
			s.cycles = append(s.cycles, cycle)
			f = true
		} else if !s.blocked[w] {
			if s.circuit(w, i, g) {
				f = true
			}
		}
		return false
	})

	if f {
		s.unblock(v)
	} else {
		g.Visit(v, func(w int, _ int64) bool {
			if s.blist[w] == nil {
				s.blist[w] = map[int]bool{}
			}
			s.blist[w][v] = true
			return false
		})
	}
	s.stack = s.stack[:len(s.stack)-1]
	return f
}
