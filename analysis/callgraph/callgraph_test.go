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

package callgraph_test

import (
	"errors"
	"sort"
	"strings"
	"testing"

	"github.com/awslabs/ar-ir-tools/analysis/callgraph"
	"github.com/awslabs/ar-ir-tools/analysis/ir"
	"github.com/awslabs/ar-ir-tools/internal/analysistest"
	"golang.org/x/exp/slices"
)

func build(t *testing.T, modules ...*ir.Module) *callgraph.CallGraph {
	t.Helper()
	index, err := callgraph.NewSignatureIndex(modules...)
	if err != nil {
		t.Fatalf("failed to index signatures: %v", err)
	}
	cg, err := callgraph.New(index, modules...)
	if err != nil {
		t.Fatalf("failed to build call graph: %v", err)
	}
	return cg
}

func sorted(s []string) []string {
	s = append([]string{}, s...)
	sort.Strings(s)
	return s
}

func checkCallees(t *testing.T, cg *callgraph.CallGraph, name string, expected ...string) {
	t.Helper()
	callees, err := cg.Callees(name)
	if err != nil {
		t.Fatalf("Callees(%s): %v", name, err)
	}
	if !slices.Equal(sorted(callees), sorted(expected)) {
		t.Errorf("Callees(%s) = %v, expected %v", name, callees, expected)
	}
}

func checkCallers(t *testing.T, cg *callgraph.CallGraph, name string, expected ...string) {
	t.Helper()
	callers, err := cg.Callers(name)
	if err != nil {
		t.Fatalf("Callers(%s): %v", name, err)
	}
	if !slices.Equal(sorted(callers), sorted(expected)) {
		t.Errorf("Callers(%s) = %v, expected %v", name, callers, expected)
	}
}

func TestSignatureIndex(t *testing.T) {
	index, err := callgraph.NewSignatureIndex(analysistest.FunctionPointers())
	if err != nil {
		t.Fatal(err)
	}
	if fs := index.FunctionsWithType(analysistest.I32Binary); !slices.Equal(sorted(fs), []string{"bar", "foo"}) {
		t.Errorf("functions of type %s: %v", analysistest.I32Binary, fs)
	}
	if fs := index.FunctionsWithType(ir.Fn("i32", "i32")); !slices.Equal(fs, []string{"baz"}) {
		t.Errorf("functions of type i32 (i32): %v", fs)
	}
	if fs := index.FunctionsWithType(ir.Fn("i8", "double")); len(fs) != 0 {
		t.Errorf("no function should have type i8 (double), got %v", fs)
	}
	// variadic types are distinct from fixed arity ones
	if fs := index.FunctionsWithType(ir.VarArgFn("i32", "i32", "i32")); len(fs) != 0 {
		t.Errorf("no function should have a variadic type, got %v", fs)
	}
	if m, ok := index.ModuleOf("foo"); !ok || m != "functionptr" {
		t.Errorf("foo should be in module functionptr, got %q", m)
	}
	if n := index.NumFunctions(); n != 7 {
		t.Errorf("expected 7 functions, got %d", n)
	}
	types := index.Types()
	for i := 1; i < len(types); i++ {
		if types[i-1].String() >= types[i].String() {
			t.Errorf("types should be sorted: %v", types)
		}
	}
}

func TestFunctionPointerOverApproximation(t *testing.T) {
	cg := build(t, analysistest.FunctionPointers())
	checkCallees(t, cg, "caller", "foo", "bar")
	checkCallees(t, cg, "const_caller", "baz")
	checkCallees(t, cg, "asm_caller")
	checkCallees(t, cg, "main", "caller", "const_caller", "asm_caller", "foo")
	checkCallers(t, cg, "foo", "caller", "main")
	checkCallers(t, cg, "bar", "caller")
	checkCallers(t, cg, "main")
	if !cg.Calls("main", "foo") {
		t.Errorf("the invoke in main should be a call to foo")
	}
	if n := len(cg.Functions()); n != 7 {
		t.Errorf("every function should be a node, got %v", cg.Functions())
	}
}

func TestMutualRecursion(t *testing.T) {
	cg := build(t, analysistest.Recursion())
	checkCallers(t, cg, "a", "b")
	checkCallees(t, cg, "a", "b")
	checkCallers(t, cg, "b", "a")
	checkCallees(t, cg, "b", "a")
	checkCallees(t, cg, "c", "c")
	checkCallees(t, cg, "d")
	if ext, _ := cg.ExternalCallees("d"); !slices.Equal(ext, []string{"puts"}) {
		t.Errorf("ExternalCallees(d) = %v, expected [puts]", ext)
	}
	if cg.HasFunction("puts") {
		t.Errorf("declarations should not be nodes of the call graph")
	}
	for name, expected := range map[string]bool{"a": true, "b": true, "c": true, "d": false} {
		if r, _ := cg.Recursive(name); r != expected {
			t.Errorf("Recursive(%s) = %v, expected %v", name, r, expected)
		}
	}

	var components []string
	for _, scc := range cg.StronglyConnectedComponents() {
		components = append(components, strings.Join(sorted(scc), ""))
	}
	if !slices.Equal(sorted(components), []string{"ab", "c", "d"}) {
		t.Errorf("strongly connected components: %v", components)
	}

	var cycles []string
	for _, c := range cg.Cycles() {
		cycles = append(cycles, strings.Join(c, ""))
	}
	if !slices.Equal(sorted(cycles), []string{"aba", "cc"}) {
		t.Errorf("cycles: %v", cycles)
	}
}

func TestStronglyConnectedComponentsBottomUp(t *testing.T) {
	cg := build(t, analysistest.FunctionPointers())
	position := map[string]int{}
	for i, scc := range cg.StronglyConnectedComponents() {
		for _, f := range scc {
			position[f] = i
		}
	}
	cg.Edges(func(caller string, callee string) {
		if position[callee] > position[caller] {
			t.Errorf("callee %s should appear before its caller %s", callee, caller)
		}
	})
}

func TestCrossModule(t *testing.T) {
	a, b := analysistest.CrossModule()
	cga := build(t, a)
	cgb := build(t, b)
	all := build(t, a, b)

	// a call across modules is only an edge in the combined graph
	checkCallees(t, cga, "a_main", "a_local")
	checkCallees(t, cgb, "b_helper", "b_leaf")
	checkCallees(t, all, "a_main", "a_local", "b_helper")
	checkCallees(t, all, "b_helper", "b_leaf", "a_local")
	checkCallers(t, all, "a_local", "a_main", "b_helper")
	checkCallers(t, cga, "a_local", "a_main")

	if ext, _ := cga.ExternalCallees("a_main"); !slices.Equal(ext, []string{"b_helper"}) {
		t.Errorf("ExternalCallees(a_main) in module a = %v", ext)
	}
	if ext, _ := all.ExternalCallees("a_main"); len(ext) != 0 {
		t.Errorf("ExternalCallees(a_main) across modules = %v, expected none", ext)
	}

	// indirect calls resolve to functions of every analyzed module
	checkCallees(t, cga, "a_dyn")
	checkCallees(t, all, "a_dyn", "b_dyn_target")

	// calls within a module are the same in both graphs
	for _, cg := range []*callgraph.CallGraph{cga, cgb} {
		cg.Edges(func(caller string, callee string) {
			if !all.Calls(caller, callee) {
				t.Errorf("edge %s -> %s is missing in the combined graph", caller, callee)
			}
		})
	}
	if n := all.NumEdges(); n != cga.NumEdges()+cgb.NumEdges()+3 {
		t.Errorf("expected 3 edges across modules, got %d edges in total", n)
	}
	if !slices.Equal(all.Modules(), []string{"a", "b"}) {
		t.Errorf("Modules() = %v", all.Modules())
	}
}

func TestAmbiguousDefinitions(t *testing.T) {
	m1 := ir.NewModule("m1", ir.NewFunction("f", ir.Fn(ir.Void)).AddBlock("entry", ir.Ret{}))
	m2 := ir.NewModule("m2", ir.NewFunction("f", ir.Fn(ir.Void)).AddBlock("entry", ir.Ret{}))
	if _, err := callgraph.NewSignatureIndex(m1, m2); !errors.Is(err, ir.ErrAmbiguous) {
		t.Errorf("expected ambiguous error, got %v", err)
	}
	index, err := callgraph.NewSignatureIndex(m1)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := callgraph.New(index, m1, m2); !errors.Is(err, ir.ErrAmbiguous) {
		t.Errorf("expected ambiguous error, got %v", err)
	}
}

func TestCallBrIsUnsupported(t *testing.T) {
	m := ir.NewModule("asm",
		ir.NewFunction("target", ir.Fn(ir.Void)).AddBlock("entry", ir.Ret{}),
		ir.NewFunction("asm_goto", ir.Fn(ir.Void)).
			AddBlock("entry", ir.CallBr{Callee: ir.FunctionRef{Name: "target"}, FnType: ir.Fn(ir.Void),
				Default: "exit", Indirect: []string{"exit"}}).
			AddBlock("exit", ir.Ret{}))
	index, err := callgraph.NewSignatureIndex(m)
	if err != nil {
		t.Fatal(err)
	}
	_, err = callgraph.New(index, m)
	if !errors.Is(err, ir.ErrUnsupported) {
		t.Fatalf("expected unsupported error, got %v", err)
	}
	if !strings.Contains(err.Error(), "asm_goto") {
		t.Errorf("the error should name the function, got %v", err)
	}
}

func TestNotFound(t *testing.T) {
	cg := build(t, analysistest.Recursion())
	if _, err := cg.Callers("puts"); !errors.Is(err, ir.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
	if _, err := cg.Callees("nope"); !errors.Is(err, ir.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
	if _, err := cg.ExternalCallees("nope"); !errors.Is(err, ir.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
	if _, err := cg.Recursive("nope"); !errors.Is(err, ir.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}
