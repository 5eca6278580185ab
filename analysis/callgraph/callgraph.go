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

// Package callgraph builds call graphs over one or more IR modules.
//
// Direct calls produce a single edge to the function referenced. Calls through any other value, a function pointer
// loaded at runtime or a constant that is not a plain function reference, are over-approximated: the call has an
// edge to every function of the analyzed modules whose type is exactly the type of the call, as recorded in a
// SignatureIndex. Calls to inline assembly have no edge.
//
// Every function defined in the analyzed modules is a node of the graph, even if it has no caller and no callee.
// Functions that are only declared are not nodes; direct calls to them are recorded as external callees.
// Functions ending a block with a callbr terminator are rejected: its callee and its indirect targets are not
// modeled, and a graph silently missing those edges would be unsound.
package callgraph

import (
	"fmt"

	"github.com/awslabs/ar-ir-tools/analysis/ir"
	"github.com/awslabs/ar-ir-tools/internal/graphutil"
)

// CallGraph is the call graph of a set of modules. It is immutable after construction.
type CallGraph struct {
	modules []string
	graph   *graphutil.Digraph[string]

	// external maps every caller to the functions it calls directly that are not defined in the analyzed modules
	external map[string][]string
}

// New builds the call graph of modules, resolving indirect calls with index.
// When more than one module is provided, a direct call from a function in one module to a function defined in
// another module is an edge of the graph.
// Returns an error wrapping ir.ErrAmbiguous if a function is defined in more than one module, and an error wrapping
// ir.ErrUnsupported if a function contains a callbr terminator.
func New(index *SignatureIndex, modules ...*ir.Module) (*CallGraph, error) {
	cg := &CallGraph{
		graph:    graphutil.NewDigraph[string](),
		external: map[string][]string{},
	}
	definedIn := map[string]string{}
	for _, m := range modules {
		cg.modules = append(cg.modules, m.Name)
		for _, f := range m.Functions {
			if other, ok := definedIn[f.Name]; ok {
				return nil, ir.Ambiguous(f.Name, []string{other, m.Name})
			}
			definedIn[f.Name] = m.Name
			cg.graph.AddNode(f.Name)
		}
	}

	for _, m := range modules {
		for _, f := range m.Functions {
			if err := checkModeled(f); err != nil {
				return nil, fmt.Errorf("in function %s of module %s: %w", f.Name, m.Name, err)
			}
			for _, site := range f.CallSites() {
				if err := cg.addCallSite(index, f.Name, site); err != nil {
					return nil, fmt.Errorf("in function %s of module %s: %w", f.Name, m.Name, err)
				}
			}
		}
	}
	return cg, nil
}

func checkModeled(f *ir.Function) error {
	for _, b := range f.Blocks {
		if term, ok := b.Term.(ir.CallBr); ok {
			return ir.Unsupported("block %s: call graph edges of terminator %q are not modeled", b.Name, term)
		}
	}
	return nil
}

func (cg *CallGraph) addCallSite(index *SignatureIndex, caller string, site ir.CallSite) error {
	switch callee := site.Callee.(type) {
	case ir.FunctionRef:
		if cg.graph.HasNode(callee.Name) {
			cg.graph.AddEdge(caller, callee.Name)
		} else {
			cg.addExternal(caller, callee.Name)
		}
	case ir.ConstantOperand, ir.ValueOperand:
		for _, target := range index.FunctionsWithType(site.FnType) {
			// the index may cover more modules than the graph
			if cg.graph.HasNode(target) {
				cg.graph.AddEdge(caller, target)
			}
		}
	case ir.InlineAsm:
	default:
		return ir.Unsupported("callee operand %v (%T) in block %s", site.Callee, site.Callee, site.Block)
	}
	return nil
}

func (cg *CallGraph) addExternal(caller string, callee string) {
	for _, x := range cg.external[caller] {
		if x == callee {
			return
		}
	}
	cg.external[caller] = append(cg.external[caller], callee)
}

// Modules returns the names of the modules the call graph spans
func (cg *CallGraph) Modules() []string {
	return append([]string(nil), cg.modules...)
}

// Functions returns the names of all the functions in the graph, in module and declaration order
func (cg *CallGraph) Functions() []string {
	return append([]string(nil), cg.graph.Nodes()...)
}

// HasFunction returns true if the function named name is a node of the graph
func (cg *CallGraph) HasFunction(name string) bool {
	return cg.graph.HasNode(name)
}

// Callers returns the functions that call the function named name
func (cg *CallGraph) Callers(name string) ([]string, error) {
	if err := cg.check(name); err != nil {
		return nil, err
	}
	return append([]string(nil), cg.graph.Preds(name)...), nil
}

// Callees returns the functions the function named name may call
func (cg *CallGraph) Callees(name string) ([]string, error) {
	if err := cg.check(name); err != nil {
		return nil, err
	}
	return append([]string(nil), cg.graph.Succs(name)...), nil
}

// ExternalCallees returns the functions the function named name calls directly and that are not defined in the
// analyzed modules
func (cg *CallGraph) ExternalCallees(name string) ([]string, error) {
	if err := cg.check(name); err != nil {
		return nil, err
	}
	return append([]string(nil), cg.external[name]...), nil
}

// Calls returns true if there is an edge from caller to callee
func (cg *CallGraph) Calls(caller string, callee string) bool {
	return cg.graph.HasEdge(caller, callee)
}

// Edges calls f on every edge of the graph
func (cg *CallGraph) Edges(f func(caller string, callee string)) {
	for _, caller := range cg.graph.Nodes() {
		for _, callee := range cg.graph.Succs(caller) {
			f(caller, callee)
		}
	}
}

// NumEdges returns the number of edges of the graph
func (cg *CallGraph) NumEdges() int {
	return cg.graph.NumEdges()
}

// StronglyConnectedComponents returns the strongly connected components of the graph in bottom-up order: a
// component appears before every component that calls into it.
func (cg *CallGraph) StronglyConnectedComponents() [][]string {
	return cg.graph.StronglyConnectedComponents()
}

// Recursive returns true if the function named name is on a cycle of the graph, i.e. it may call itself
// directly or through other functions
func (cg *CallGraph) Recursive(name string) (bool, error) {
	if err := cg.check(name); err != nil {
		return false, err
	}
	for _, callee := range cg.graph.Succs(name) {
		if cg.graph.Reaches(callee, name) {
			return true, nil
		}
	}
	return false, nil
}

// Cycles returns all the elementary cycles of the graph. Each cycle starts and ends with the same function.
func (cg *CallGraph) Cycles() [][]string {
	return graphutil.FindAllElementaryCycles(cg.graph)
}

func (cg *CallGraph) check(name string) error {
	if !cg.graph.HasNode(name) {
		return ir.NotFound("function", name, fmt.Sprintf("modules %v", cg.modules))
	}
	return nil
}
