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

// Package analysistest contains IR fixtures shared by the tests of the analyses.
// Every function returns a freshly built value, so tests can never interfere through shared IR.
package analysistest

import (
	"github.com/awslabs/ar-ir-tools/analysis/ir"
)

// I32Binary is the type of functions taking two i32 and returning an i32
var I32Binary = ir.Fn("i32", "i32", "i32")

// Diamond returns the function
//
//	2 -> {4, 8} -> 12 -> Return
func Diamond() *ir.Function {
	return ir.NewFunction("diamond", I32Binary).
		AddBlock("2", ir.CondBr{True: "4", False: "8"}, &ir.Op{Opcode: "icmp"}).
		AddBlock("4", ir.Br{Dest: "12"}, &ir.Op{Opcode: "add"}).
		AddBlock("8", ir.Br{Dest: "12"}, &ir.Op{Opcode: "sub"}).
		AddBlock("12", ir.Ret{}, &ir.Op{Opcode: "phi"})
}

// SelfLoop returns the function
//
//	1 -> 6 -> {6, 12}, 12 -> Return
func SelfLoop() *ir.Function {
	return ir.NewFunction("self_loop", I32Binary).
		AddBlock("1", ir.Br{Dest: "6"}).
		AddBlock("6", ir.CondBr{True: "6", False: "12"}, &ir.Op{Opcode: "phi"}, &ir.Op{Opcode: "icmp"}).
		AddBlock("12", ir.Ret{})
}

// InfiniteLoop returns a function in which no path reaches a return
//
//	1 -> 2 -> 3 -> 2
func InfiniteLoop() *ir.Function {
	return ir.NewFunction("infinite_loop", ir.Fn(ir.Void)).
		AddBlock("1", ir.Br{Dest: "2"}).
		AddBlock("2", ir.Br{Dest: "3"}).
		AddBlock("3", ir.Br{Dest: "2"})
}

// WhileLoop returns a loop with a conditional in its body
//
//	entry -> header -> {body, exit}, body -> {then, latch}, then -> latch, latch -> header, exit -> Return
func WhileLoop() *ir.Function {
	return ir.NewFunction("while_loop", ir.Fn("i32", "i32")).
		AddBlock("entry", ir.Br{Dest: "header"}).
		AddBlock("header", ir.CondBr{True: "body", False: "exit"}).
		AddBlock("body", ir.CondBr{True: "then", False: "latch"}).
		AddBlock("then", ir.Br{Dest: "latch"}).
		AddBlock("latch", ir.Br{Dest: "header"}).
		AddBlock("exit", ir.Ret{})
}

// WithUnreachable returns a function with a block that is not reachable from the entry (dead) and a block that
// cannot reach the exit (trap)
//
//	entry -> {exit, trap}, dead -> exit, exit -> Return, trap -> nothing
func WithUnreachable() *ir.Function {
	return ir.NewFunction("with_unreachable", ir.Fn(ir.Void)).
		AddBlock("entry", ir.CondBr{True: "exit", False: "trap"}).
		AddBlock("exit", ir.Ret{}).
		AddBlock("trap", ir.Unreachable{}).
		AddBlock("dead", ir.Br{Dest: "exit"})
}

// Switch returns a function using switch and indirectbr terminators
//
//	entry -> {default, one, two}, one -> {two, default}, two -> Return, default -> Return
func Switch() *ir.Function {
	return ir.NewFunction("switch", ir.Fn("i32", "i32")).
		AddBlock("entry", ir.Switch{
			Default: "default",
			Cases:   []ir.SwitchCase{{Value: "1", Dest: "one"}, {Value: "2", Dest: "two"}, {Value: "3", Dest: "two"}},
		}).
		AddBlock("one", ir.IndirectBr{Dests: []string{"two", "default"}}).
		AddBlock("two", ir.Ret{}).
		AddBlock("default", ir.Ret{})
}

// Exceptions returns a function with invoke, landing pads and exception-handling terminators
//
//	entry -invoke-> {cont, dispatch}
//	dispatch: catchswitch [handler] unwind to caller
//	handler: catchret to cont
//	cont -invoke-> {done, cleanup}
//	cleanup: cleanupret unwind to caller
//	done: resume
func Exceptions() *ir.Function {
	return ir.NewFunction("exceptions", ir.Fn(ir.Void)).
		AddBlock("entry", ir.Invoke{Callee: ir.FunctionRef{Name: "may_throw"}, FnType: ir.Fn(ir.Void),
			Normal: "cont", Exception: "dispatch"}).
		AddBlock("dispatch", ir.CatchSwitch{Handlers: []string{"handler"}}).
		AddBlock("handler", ir.CatchRet{Successor: "cont"}).
		AddBlock("cont", ir.Invoke{Callee: ir.FunctionRef{Name: "may_throw"}, FnType: ir.Fn(ir.Void),
			Normal: "done", Exception: "cleanup"}).
		AddBlock("cleanup", ir.CleanupRet{}).
		AddBlock("done", ir.Resume{})
}

// UnwindToBlocks returns a function whose cleanupret and catchswitch unwind to explicit blocks
//
//	entry -invoke-> {exit, pad}, pad: cleanupret unwind to switch, switch: catchswitch [h] unwind to exit,
//	h: catchret to exit, exit -> Return
func UnwindToBlocks() *ir.Function {
	return ir.NewFunction("unwind_to_blocks", ir.Fn(ir.Void)).
		AddBlock("entry", ir.Invoke{Callee: ir.FunctionRef{Name: "may_throw"}, FnType: ir.Fn(ir.Void),
			Normal: "exit", Exception: "pad"}).
		AddBlock("pad", ir.CleanupRet{UnwindDest: "switch"}).
		AddBlock("switch", ir.CatchSwitch{Handlers: []string{"h"}, UnwindDest: "exit"}).
		AddBlock("h", ir.CatchRet{Successor: "exit"}).
		AddBlock("exit", ir.Ret{})
}

// FunctionPointers returns a module where calls go through function pointers, constants and inline assembly.
//
//	foo, bar: i32 (i32, i32); baz: i32 (i32)
//	caller calls through a pointer of type i32 (i32, i32)
//	const_caller calls a constant of type i32 (i32)
//	asm_caller calls inline assembly
//	main calls caller, const_caller and asm_caller directly, and invokes foo
func FunctionPointers() *ir.Module {
	leaf := func(name string, typ ir.FuncType) *ir.Function {
		return ir.NewFunction(name, typ).AddBlock("entry", ir.Ret{}, &ir.Op{Opcode: "add"})
	}
	m := ir.NewModule("functionptr",
		leaf("foo", I32Binary),
		leaf("bar", I32Binary),
		leaf("baz", ir.Fn("i32", "i32")),
		ir.NewFunction("caller", ir.Fn("i32", "ptr", "i32", "i32")).
			AddBlock("entry", ir.Ret{},
				&ir.Op{Opcode: "load"},
				&ir.Call{Callee: ir.ValueOperand{Name: "3"}, FnType: I32Binary}),
		ir.NewFunction("const_caller", ir.Fn("i32")).
			AddBlock("entry", ir.Ret{},
				&ir.Call{Callee: ir.ConstantOperand{Repr: "bitcast (ptr @baz to ptr)"}, FnType: ir.Fn("i32", "i32")}),
		ir.NewFunction("asm_caller", ir.Fn(ir.Void)).
			AddBlock("entry", ir.Ret{},
				&ir.Call{Callee: ir.InlineAsm{Asm: "nop"}, FnType: ir.Fn(ir.Void)}),
		ir.NewFunction("main", ir.Fn("i32")).
			AddBlock("entry", ir.Invoke{Callee: ir.FunctionRef{Name: "foo"}, FnType: I32Binary,
				Normal: "ok", Exception: "lpad"},
				&ir.Call{Callee: ir.FunctionRef{Name: "caller"}, FnType: ir.Fn("i32", "ptr", "i32", "i32")},
				&ir.Call{Callee: ir.FunctionRef{Name: "const_caller"}, FnType: ir.Fn("i32")},
				&ir.Call{Callee: ir.FunctionRef{Name: "asm_caller"}, FnType: ir.Fn(ir.Void)}).
			AddBlock("ok", ir.Ret{}).
			AddBlock("lpad", ir.Resume{}),
	)
	return m
}

// Recursion returns a module with mutually recursive functions a and b, a self-recursive function c, and a
// function d calling the external function puts.
func Recursion() *ir.Module {
	call := func(name string) ir.Instruction {
		return &ir.Call{Callee: ir.FunctionRef{Name: name}, FnType: ir.Fn(ir.Void)}
	}
	m := ir.NewModule("recursion",
		ir.NewFunction("a", ir.Fn(ir.Void)).AddBlock("entry", ir.Ret{}, call("b")),
		ir.NewFunction("b", ir.Fn(ir.Void)).AddBlock("entry", ir.Ret{}, call("a")),
		ir.NewFunction("c", ir.Fn(ir.Void)).AddBlock("entry", ir.Ret{}, call("c")),
		ir.NewFunction("d", ir.Fn(ir.Void)).
			AddBlock("entry", ir.Ret{}, &ir.Call{Callee: ir.FunctionRef{Name: "puts"}, FnType: ir.Fn("i32", "ptr")}),
	)
	m.Declare("puts", ir.Fn("i32", "ptr"))
	return m
}

// CrossModule returns two modules calling each other.
//
// Module "a": a_main calls a_local and b_helper (declared), a_dyn calls through a pointer of type i64 (i64).
// Module "b": b_helper calls b_leaf and a_local (declared), b_leaf returns, b_dyn_target has type i64 (i64).
func CrossModule() (*ir.Module, *ir.Module) {
	void := ir.Fn(ir.Void)
	call := func(name string) ir.Instruction {
		return &ir.Call{Callee: ir.FunctionRef{Name: name}, FnType: void}
	}
	a := ir.NewModule("a",
		ir.NewFunction("a_main", void).AddBlock("entry", ir.Ret{}, call("a_local"), call("b_helper")),
		ir.NewFunction("a_local", void).AddBlock("entry", ir.Ret{}),
		ir.NewFunction("a_dyn", ir.Fn("i64", "ptr")).
			AddBlock("entry", ir.Ret{}, &ir.Call{Callee: ir.ValueOperand{Name: "fp"}, FnType: ir.Fn("i64", "i64")}),
	)
	a.Declare("b_helper", void)
	b := ir.NewModule("b",
		ir.NewFunction("b_helper", void).AddBlock("entry", ir.Ret{}, call("b_leaf"), call("a_local")),
		ir.NewFunction("b_leaf", void).AddBlock("entry", ir.Ret{}),
		ir.NewFunction("b_dyn_target", ir.Fn("i64", "i64")).AddBlock("entry", ir.Ret{}),
	)
	b.Declare("a_local", void)
	return a, b
}
