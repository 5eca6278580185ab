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

package cfg_test

import (
	"errors"
	"sort"
	"testing"

	"github.com/awslabs/ar-ir-tools/analysis/cfg"
	"github.com/awslabs/ar-ir-tools/analysis/ir"
	"github.com/awslabs/ar-ir-tools/internal/analysistest"
	"golang.org/x/exp/slices"
)

func mustBuild(t *testing.T, f *ir.Function) *cfg.ControlFlowGraph {
	t.Helper()
	g, err := cfg.Build(f)
	if err != nil {
		t.Fatalf("failed to build control flow graph of %s: %v", f.Name, err)
	}
	return g
}

func sorted(s []string) []string {
	s = append([]string(nil), s...)
	sort.Strings(s)
	return s
}

func nodeStrings(nodes []cfg.Node) []string {
	var s []string
	for _, n := range nodes {
		s = append(s, n.String())
	}
	sort.Strings(s)
	return s
}

func checkPreds(t *testing.T, g *cfg.ControlFlowGraph, block string, expected ...string) {
	t.Helper()
	preds, err := g.Preds(block)
	if err != nil {
		t.Fatalf("Preds(%s): %v", block, err)
	}
	if !slices.Equal(sorted(preds), sorted(expected)) {
		t.Errorf("Preds(%s) = %v, expected %v", block, preds, expected)
	}
}

func checkSuccs(t *testing.T, g *cfg.ControlFlowGraph, block string, expected ...string) {
	t.Helper()
	succs, err := g.Succs(block)
	if err != nil {
		t.Fatalf("Succs(%s): %v", block, err)
	}
	if !slices.Equal(nodeStrings(succs), sorted(expected)) {
		t.Errorf("Succs(%s) = %v, expected %v", block, succs, expected)
	}
}

func TestDiamond(t *testing.T) {
	g := mustBuild(t, analysistest.Diamond())
	if g.Entry() != cfg.Block("2") {
		t.Errorf("entry should be 2, got %s", g.Entry())
	}
	checkPreds(t, g, "2")
	checkPreds(t, g, "4", "2")
	checkPreds(t, g, "8", "2")
	checkPreds(t, g, "12", "4", "8")
	checkSuccs(t, g, "2", "4", "8")
	checkSuccs(t, g, "4", "12")
	checkSuccs(t, g, "12", "Return")
	if !slices.Equal(g.PredsOfReturn(), []string{"12"}) {
		t.Errorf("unexpected predecessors of Return %v", g.PredsOfReturn())
	}
	if g.NumEdges() != 5 {
		t.Errorf("expected 5 edges, got %d", g.NumEdges())
	}
}

func TestSelfLoop(t *testing.T) {
	g := mustBuild(t, analysistest.SelfLoop())
	checkPreds(t, g, "6", "1", "6")
	checkSuccs(t, g, "6", "6", "12")
}

func TestSwitchAndIndirectBranch(t *testing.T) {
	g := mustBuild(t, analysistest.Switch())
	checkSuccs(t, g, "entry", "default", "one", "two")
	checkSuccs(t, g, "one", "default", "two")
	checkPreds(t, g, "two", "entry", "one")
	if !slices.Equal(sorted(g.PredsOfReturn()), []string{"default", "two"}) {
		t.Errorf("unexpected predecessors of Return %v", g.PredsOfReturn())
	}
}

func TestExceptionTerminators(t *testing.T) {
	g := mustBuild(t, analysistest.Exceptions())
	checkSuccs(t, g, "entry", "cont", "dispatch")
	checkSuccs(t, g, "dispatch", "handler", "Return")
	checkSuccs(t, g, "handler", "cont")
	checkSuccs(t, g, "cont", "cleanup", "done")
	checkSuccs(t, g, "cleanup", "Return")
	checkSuccs(t, g, "done", "Return")
	if !slices.Equal(sorted(g.PredsOfReturn()), []string{"cleanup", "dispatch", "done"}) {
		t.Errorf("unexpected predecessors of Return %v", g.PredsOfReturn())
	}

	u := mustBuild(t, analysistest.UnwindToBlocks())
	checkSuccs(t, u, "pad", "switch")
	checkSuccs(t, u, "switch", "exit", "h")
	checkSuccs(t, u, "h", "exit")
	if !slices.Equal(u.PredsOfReturn(), []string{"exit"}) {
		t.Errorf("explicit unwind destinations should not fall through to Return, got %v", u.PredsOfReturn())
	}
}

func TestUnreachableTerminator(t *testing.T) {
	g := mustBuild(t, analysistest.WithUnreachable())
	checkSuccs(t, g, "trap")
	checkPreds(t, g, "dead")
	checkPreds(t, g, "exit", "entry", "dead")
}

func TestEntryAndReturnInvariants(t *testing.T) {
	for i := 0; i < 50; i++ {
		f := analysistest.RandomFunction(12, int64(1000+i))
		g := mustBuild(t, f)
		if len(g.SuccNodes(cfg.Return)) != 0 {
			t.Fatalf("%s: Return has successors", f.Name)
		}
		for _, n := range g.Nodes() {
			for _, s := range g.SuccNodes(n) {
				if !slices.Contains(g.PredNodes(s), n) {
					t.Fatalf("%s: edge %s -> %s missing in predecessors", f.Name, n, s)
				}
			}
		}
	}
}

func TestReversed(t *testing.T) {
	g := mustBuild(t, analysistest.Diamond())
	r := g.Reversed()
	if r.Entry() != cfg.Return || !r.IsReversed() {
		t.Fatalf("reversed graph should be rooted at Return")
	}
	if !slices.Equal(nodeStrings(r.SuccNodes(cfg.Return)), []string{"12"}) {
		t.Errorf("unexpected successors of Return in reversed graph")
	}
	if !slices.Equal(nodeStrings(r.SuccNodes(cfg.Block("12"))), []string{"4", "8"}) {
		t.Errorf("unexpected successors of 12 in reversed graph")
	}
	if r.NumEdges() != g.NumEdges() {
		t.Errorf("reversal should keep the number of edges")
	}
	if r.Reversed().Entry() != cfg.Block("2") {
		t.Errorf("reversing twice should root the graph at the entry block")
	}
	// the original graph is unchanged
	checkSuccs(t, g, "2", "4", "8")
}

func TestReachable(t *testing.T) {
	g := mustBuild(t, analysistest.WhileLoop())
	if !g.Reachable(cfg.Block("latch"), cfg.Block("body")) {
		t.Errorf("body should be reachable from latch through the back edge")
	}
	if g.Reachable(cfg.Block("exit"), cfg.Block("header")) {
		t.Errorf("header should not be reachable from exit")
	}
	if !g.Reachable(cfg.Block("entry"), cfg.Return) {
		t.Errorf("Return should be reachable from entry")
	}
}

func TestNotFound(t *testing.T) {
	g := mustBuild(t, analysistest.Diamond())
	if _, err := g.Preds("nope"); !errors.Is(err, ir.ErrNotFound) {
		t.Errorf("expected not found error, got %v", err)
	}
	if _, err := g.Succs("nope"); !errors.Is(err, ir.ErrNotFound) {
		t.Errorf("expected not found error, got %v", err)
	}
	if g.HasBlock("nope") || !g.HasBlock("4") || !g.HasNode(cfg.Return) {
		t.Errorf("HasBlock / HasNode inconsistent")
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name string
		f    *ir.Function
		err  error
	}{
		{"declaration", ir.NewFunction("decl", ir.Fn(ir.Void)), ir.ErrUnsupported},
		{"callbr", ir.NewFunction("f", ir.Fn(ir.Void)).
			AddBlock("entry", ir.CallBr{Callee: ir.InlineAsm{Asm: "jmp"}, Default: "a", Indirect: []string{"a"}}).
			AddBlock("a", ir.Ret{}), ir.ErrUnsupported},
		{"no terminator", ir.NewFunction("f", ir.Fn(ir.Void)).AddBlock("entry", nil), ir.ErrUnsupported},
		{"duplicate block", ir.NewFunction("f", ir.Fn(ir.Void)).
			AddBlock("entry", ir.Ret{}).AddBlock("entry", ir.Ret{}), ir.ErrUnsupported},
		{"missing target", ir.NewFunction("f", ir.Fn(ir.Void)).AddBlock("entry", ir.Br{Dest: "x"}), ir.ErrNotFound},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := cfg.Build(test.f); !errors.Is(err, test.err) {
				t.Errorf("expected error %v, got %v", test.err, err)
			}
		})
	}
}

func TestNodeIdentity(t *testing.T) {
	if cfg.Block("Return") == cfg.Return {
		t.Errorf("a block named Return is not the Return node")
	}
	if cfg.Block("a") != cfg.Block("a") {
		t.Errorf("block nodes are identified by name")
	}
	if cfg.Return.Name() != "" || !cfg.Return.IsReturn() {
		t.Errorf("unexpected Return node")
	}
}
