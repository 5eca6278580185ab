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

import "golang.org/x/exp/slices"

// StronglyConnectedComponents returns the strongly connected components of g, successors first: if the graph is
// a tree, components are listed from the leaves towards the root, which is the order bottom-up summary
// computations want. The nodes of a component are in insertion order, and components are discovered from the
// roots in insertion order, so the result is deterministic.
//
// This is Tarjan's algorithm, run with an explicit stack over node indices so that deep graphs do not exhaust the
// goroutine stack.
func (g *Digraph[N]) StronglyConnectedComponents() [][]N {
	type frame struct {
		v    int // node index
		next int // next successor of v to explore
	}

	n := len(g.nodes)
	// order[v] is one plus the discovery number of v, zero while v is unvisited
	order := make([]int, n)
	lowlink := make([]int, n)
	onStack := make([]bool, n)
	var stack []int
	var sccs [][]N
	discovered := 0

	push := func(v int) {
		discovered++
		order[v] = discovered
		lowlink[v] = discovered
		stack = append(stack, v)
		onStack[v] = true
	}

	for root := 0; root < n; root++ {
		if order[root] != 0 {
			continue
		}
		push(root)
		calls := []frame{{root, 0}}
		for len(calls) > 0 {
			top := &calls[len(calls)-1]
			succs := g.out[g.nodes[top.v]]
			if top.next < len(succs) {
				w := g.index[succs[top.next]]
				top.next++
				if order[w] == 0 {
					push(w)
					calls = append(calls, frame{w, 0})
				} else if onStack[w] && order[w] < lowlink[top.v] {
					lowlink[top.v] = order[w]
				}
				continue
			}

			v := top.v
			calls = calls[:len(calls)-1]
			if len(calls) > 0 {
				if parent := calls[len(calls)-1].v; lowlink[v] < lowlink[parent] {
					lowlink[parent] = lowlink[v]
				}
			}
			if lowlink[v] != order[v] {
				continue
			}
			// v is the root of a component: it and everything above it on the stack
			i := len(stack) - 1
			for stack[i] != v {
				i--
			}
			members := stack[i:]
			slices.Sort(members)
			scc := make([]N, len(members))
			for j, m := range members {
				onStack[m] = false
				scc[j] = g.nodes[m]
			}
			stack = stack[:i]
			sccs = append(sccs, scc)
		}
	}
	return sccs
}
