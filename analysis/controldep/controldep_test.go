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

package controldep_test

import (
	"errors"
	"slices"
	"sort"
	"testing"

	"github.com/awslabs/ar-ir-tools/analysis/cfg"
	"github.com/awslabs/ar-ir-tools/analysis/controldep"
	"github.com/awslabs/ar-ir-tools/analysis/dominators"
	"github.com/awslabs/ar-ir-tools/analysis/ir"
	"github.com/awslabs/ar-ir-tools/internal/analysistest"
)

func build(t *testing.T, f *ir.Function) *controldep.ControlDependenceGraph {
	t.Helper()
	g, err := cfg.Build(f)
	if err != nil {
		t.Fatalf("failed to build control flow graph of %s: %v", f.Name, err)
	}
	return controldep.New(g, dominators.NewPostDominatorTree(g))
}

func sorted(s []string) []string {
	s = append([]string{}, s...)
	sort.Strings(s)
	return s
}

func check(t *testing.T, name string, actual []string, err error, expected ...string) {
	t.Helper()
	if err != nil {
		t.Fatalf("%s: %v", name, err)
	}
	if !slices.Equal(sorted(actual), sorted(expected)) {
		t.Errorf("%s = %v, expected %v", name, actual, expected)
	}
}

func TestDiamond(t *testing.T) {
	cdg := build(t, analysistest.Diamond())
	deps, err := cdg.ImmControlDependencies("4")
	check(t, "ImmControlDependencies(4)", deps, err, "2")
	deps, err = cdg.ImmControlDependencies("8")
	check(t, "ImmControlDependencies(8)", deps, err, "2")
	deps, err = cdg.ImmControlDependencies("12")
	check(t, "ImmControlDependencies(12)", deps, err)
	deps, err = cdg.ImmControlDependencies("2")
	check(t, "ImmControlDependencies(2)", deps, err)
	dependents, err := cdg.ImmControlDependents("2")
	check(t, "ImmControlDependents(2)", dependents, err, "4", "8")
	if cdg.NumEdges() != 2 {
		t.Errorf("expected 2 edges, got %d", cdg.NumEdges())
	}
	for _, b := range []string{"2", "4", "8", "12"} {
		if ok, _ := cdg.IsControlDependent(b, b); ok {
			t.Errorf("%s should not be control dependent on itself", b)
		}
	}
	if ok, _ := cdg.IsControlDependent("4", "2"); !ok {
		t.Errorf("4 should be control dependent on 2")
	}
	if ok, _ := cdg.IsControlDependent("2", "4"); ok {
		t.Errorf("2 should not be control dependent on 4")
	}
}

func TestSelfLoop(t *testing.T) {
	cdg := build(t, analysistest.SelfLoop())
	if ok, err := cdg.IsControlDependent("6", "6"); err != nil || !ok {
		t.Errorf("6 should be control dependent on itself (err: %v)", err)
	}
	if ok, err := cdg.IsControlDependent("1", "1"); err != nil || ok {
		t.Errorf("1 should not be control dependent on itself (err: %v)", err)
	}
	deps, err := cdg.ImmControlDependencies("6")
	check(t, "ImmControlDependencies(6)", deps, err, "6")
	seq, err := cdg.ControlDependencies("6")
	check(t, "ControlDependencies(6)", slices.Collect(seq), err, "6")
	seq, err = cdg.ControlDependencies("1")
	check(t, "ControlDependencies(1)", slices.Collect(seq), err)
}

func TestWhileLoop(t *testing.T) {
	cdg := build(t, analysistest.WhileLoop())
	deps, err := cdg.ImmControlDependencies("then")
	check(t, "ImmControlDependencies(then)", deps, err, "body")
	deps, err = cdg.ImmControlDependencies("body")
	check(t, "ImmControlDependencies(body)", deps, err, "header")
	deps, err = cdg.ImmControlDependencies("latch")
	check(t, "ImmControlDependencies(latch)", deps, err, "header")
	deps, err = cdg.ImmControlDependencies("header")
	check(t, "ImmControlDependencies(header)", deps, err, "header")
	deps, err = cdg.ImmControlDependencies("entry")
	check(t, "ImmControlDependencies(entry)", deps, err)
	deps, err = cdg.ImmControlDependencies("exit")
	check(t, "ImmControlDependencies(exit)", deps, err)

	seq, err := cdg.ControlDependents("header")
	check(t, "ControlDependents(header)", slices.Collect(seq), err, "body", "latch", "header", "then")
	seq, err = cdg.ControlDependencies("then")
	check(t, "ControlDependencies(then)", slices.Collect(seq), err, "body", "header")
	seq, err = cdg.ControlDependents("then")
	check(t, "ControlDependents(then)", slices.Collect(seq), err)

	seq, _ = cdg.ControlDependents("header")
	visited := 0
	for range seq {
		visited++
		if visited == 2 {
			break
		}
	}
	if visited != 2 {
		t.Errorf("iteration over the dependents should stop when the loop breaks, visited %d", visited)
	}

	if ok, _ := cdg.IsControlDependent("then", "header"); !ok {
		t.Errorf("then should be transitively control dependent on header")
	}
	if ok, _ := cdg.IsControlDependent("header", "header"); !ok {
		t.Errorf("header should be control dependent on itself")
	}
	if ok, _ := cdg.IsControlDependent("body", "body"); ok {
		t.Errorf("body should not be control dependent on itself")
	}
	if ok, _ := cdg.IsControlDependent("exit", "header"); ok {
		t.Errorf("exit should not be control dependent on header")
	}
}

func TestEarlyStop(t *testing.T) {
	cdg := build(t, analysistest.WhileLoop())
	seq, _ := cdg.ControlDependents("header")
	n := 0
	seq(func(string) bool {
		n++
		return false
	})
	if n != 1 {
		t.Errorf("iteration should stop after the first block, got %d blocks", n)
	}
}

func TestUnreachableBlocksHaveNoDependence(t *testing.T) {
	cdg := build(t, analysistest.WithUnreachable())
	if cdg.NumEdges() != 0 {
		t.Errorf("expected no control dependence, got %d edges", cdg.NumEdges())
	}
	for _, b := range []string{"entry", "exit", "trap", "dead"} {
		deps, err := cdg.ImmControlDependencies(b)
		check(t, "ImmControlDependencies("+b+")", deps, err)
		dependents, err := cdg.ImmControlDependents(b)
		check(t, "ImmControlDependents("+b+")", dependents, err)
	}
}

func TestInfiniteLoop(t *testing.T) {
	cdg := build(t, analysistest.InfiniteLoop())
	if cdg.NumEdges() != 0 {
		t.Errorf("no block reaches Return, expected no control dependence, got %d edges", cdg.NumEdges())
	}
}

func TestNotFound(t *testing.T) {
	cdg := build(t, analysistest.Diamond())
	if _, err := cdg.ImmControlDependencies("nope"); !errors.Is(err, ir.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
	if _, err := cdg.ImmControlDependents("nope"); !errors.Is(err, ir.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
	if _, err := cdg.ControlDependencies("nope"); !errors.Is(err, ir.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
	if _, err := cdg.ControlDependents("nope"); !errors.Is(err, ir.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
	if _, err := cdg.IsControlDependent("2", "nope"); !errors.Is(err, ir.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

// The immediate control dependencies of a block are its postdominance frontier
func TestMatchesPostdominanceFrontier(t *testing.T) {
	for seed := int64(0); seed < 40; seed++ {
		f := analysistest.RandomFunction(15, seed)
		g, err := cfg.Build(f)
		if err != nil {
			t.Fatalf("failed to build control flow graph of %s: %v", f.Name, err)
		}
		pdt := dominators.NewPostDominatorTree(g)
		cdg := controldep.New(g, pdt)
		for _, b := range g.Blocks() {
			deps, err := cdg.ImmControlDependencies(b)
			if err != nil {
				t.Fatal(err)
			}
			frontier, err := pdt.Frontier(cfg.Block(b))
			if err != nil {
				t.Fatal(err)
			}
			var expected []string
			for _, n := range frontier {
				expected = append(expected, n.Name())
			}
			if !slices.Equal(sorted(deps), sorted(expected)) {
				t.Errorf("%s: dependencies of %s are %v, postdominance frontier is %v", f.Name, b, deps, expected)
			}
		}
	}
}
