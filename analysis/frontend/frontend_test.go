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

package frontend_test

import (
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"sort"
	"testing"

	"github.com/awslabs/ar-ir-tools/analysis/callgraph"
	"github.com/awslabs/ar-ir-tools/analysis/cfg"
	"github.com/awslabs/ar-ir-tools/analysis/dominators"
	"github.com/awslabs/ar-ir-tools/analysis/frontend"
	"github.com/awslabs/ar-ir-tools/analysis/ir"
	"golang.org/x/exp/slices"
	"golang.org/x/tools/go/packages"
	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"
)

const source = `
package p

type T struct{ x int }

func (t *T) Get() int { return t.x }

type Getter interface{ Get() int }

func add(a, b int) int { return a + b }

func sub(a, b int) int { return a - b }

func apply(f func(int, int) int, x int) int {
	if x > 0 {
		return f(x, x)
	}
	return 0
}

func useIface(g Getter) int { return g.Get() }

func loop(n int) int {
	s := 0
	for i := 0; i < n; i++ {
		s = add(s, i)
	}
	return s
}

func fail() { panic("boom") }

func count(xs ...int) int { return len(xs) }

func Main() int {
	defer fail()
	return apply(add, 1) + apply(sub, 2) + loop(3) + useIface(&T{}) + count(1, 2)
}
`

func buildPackage(t *testing.T) *ssa.Package {
	t.Helper()
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "p.go", source, 0)
	if err != nil {
		t.Fatal(err)
	}
	pkg, _, err := ssautil.BuildPackage(&types.Config{Importer: importer.Default()}, fset,
		types.NewPackage("example.com/p", ""), []*ast.File{f}, ssa.SanityCheckFunctions)
	if err != nil {
		t.Fatal(err)
	}
	return pkg
}

func lower(t *testing.T) *ir.Module {
	t.Helper()
	m, err := frontend.LowerPackage(buildPackage(t))
	if err != nil {
		t.Fatalf("failed to lower package: %v", err)
	}
	return m
}

func function(t *testing.T, m *ir.Module, name string) *ir.Function {
	t.Helper()
	f, ok := m.Function(name)
	if !ok {
		var names []string
		for _, f := range m.Functions {
			names = append(names, f.Name)
		}
		t.Fatalf("function %s not found in %v", name, names)
	}
	return f
}

func TestLowerPackage(t *testing.T) {
	m := lower(t)
	if m.Name != "example.com/p" {
		t.Errorf("module should be named by the package path, got %s", m.Name)
	}
	for _, name := range []string{"example.com/p.add", "example.com/p.apply", "(*example.com/p.T).Get",
		"example.com/p.Main", "example.com/p.init"} {
		function(t, m, name)
	}
	add := function(t, m, "example.com/p.add")
	if add.Type.String() != "int (int, int)" {
		t.Errorf("unexpected type of add: %s", add.Type)
	}
	get := function(t, m, "(*example.com/p.T).Get")
	if get.Type.String() != "int ()" {
		t.Errorf("the receiver should not be part of the type of a method, got %s", get.Type)
	}
	count := function(t, m, "example.com/p.count")
	if !count.Type.IsVarArg || count.Type.String() != "int ([]int, ...)" {
		t.Errorf("count should be variadic, got %s", count.Type)
	}
}

func TestLowerControlFlow(t *testing.T) {
	m := lower(t)
	g, err := cfg.Build(function(t, m, "example.com/p.apply"))
	if err != nil {
		t.Fatal(err)
	}
	if g.Entry().Name() != "0" {
		t.Errorf("the entry block should be 0, got %s", g.Entry())
	}
	preds := g.PredsOfReturn()
	sort.Strings(preds)
	if !slices.Equal(preds, []string{"1", "2"}) {
		t.Errorf("both branches of apply should return, got %v", preds)
	}

	fail, err := cfg.Build(function(t, m, "example.com/p.fail"))
	if err != nil {
		t.Fatal(err)
	}
	if len(fail.PredsOfReturn()) != 0 {
		t.Errorf("fail always panics, Return should have no predecessor")
	}

	loop, err := cfg.Build(function(t, m, "example.com/p.loop"))
	if err != nil {
		t.Fatal(err)
	}
	d := dominators.NewDominatorTree(loop)
	for _, b := range loop.Blocks() {
		if b == "0" {
			continue
		}
		if !d.Reachable(b) {
			continue
		}
		if ok, _ := d.Dominates(cfg.Block("0"), cfg.Block(b)); !ok {
			t.Errorf("entry should dominate %s", b)
		}
	}
}

func TestLowerCalls(t *testing.T) {
	m := lower(t)
	index, err := callgraph.NewSignatureIndex(m)
	if err != nil {
		t.Fatal(err)
	}
	cg, err := callgraph.New(index, m)
	if err != nil {
		t.Fatal(err)
	}
	check := func(name string, expected ...string) {
		t.Helper()
		callees, err := cg.Callees(name)
		if err != nil {
			t.Fatal(err)
		}
		for _, e := range expected {
			if !slices.Contains(callees, e) {
				t.Errorf("%s should call %s, callees are %v", name, e, callees)
			}
		}
	}
	// calls through function values reach every function of the same type
	check("example.com/p.apply", "example.com/p.add", "example.com/p.sub")
	// interface calls reach the methods of the same signature
	check("example.com/p.useIface", "(*example.com/p.T).Get")
	check("example.com/p.Main", "example.com/p.apply", "example.com/p.loop", "example.com/p.useIface",
		"example.com/p.fail", "example.com/p.count")
	check("example.com/p.loop", "example.com/p.add")
	// the call to the built-in len is dropped
	if callees, _ := cg.Callees("example.com/p.count"); len(callees) != 0 {
		t.Errorf("count should not call anything, got %v", callees)
	}
}

func TestLoadProgram(t *testing.T) {
	cfg := &packages.Config{Mode: frontend.PkgLoadMode, Dir: "testdata/src/calls", Fset: token.NewFileSet()}
	program, err := frontend.LoadProgram(cfg, "", ssa.BuilderMode(0), []string{"."})
	if err != nil {
		t.Fatalf("error loading packages: %s", err)
	}
	if len(program.Packages) != 1 {
		t.Fatalf("expected one package, got %d", len(program.Packages))
	}
	modules, err := frontend.Lower(program.Program, func(path string) bool { return path == "calls" })
	if err != nil {
		t.Fatal(err)
	}
	if len(modules) != 1 || modules[0].Name != "calls" {
		t.Fatalf("expected a single module calls, got %v", modules)
	}
	if _, ok := modules[0].Function("calls.main"); !ok {
		t.Errorf("calls.main should be lowered")
	}
}
