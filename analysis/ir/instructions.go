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

package ir

import "fmt"

// Instruction is a non-terminator instruction of a basic block: either a *Call or an *Op.
type Instruction interface {
	fmt.Stringer
	isInstruction()
}

// Call is a call instruction. FnType is the statically known function type of the callee.
type Call struct {
	Callee Operand
	FnType FuncType
}

// Op is any instruction the analyses do not need to inspect
type Op struct {
	Opcode string
}

func (*Call) isInstruction() {}
func (*Op) isInstruction()   {}

func (c *Call) String() string { return fmt.Sprintf("call %s %s", c.FnType, c.Callee) }
func (o *Op) String() string   { return o.Opcode }

// Operand is the callee operand of a call or invoke. The implementations are FunctionRef, ConstantOperand,
// ValueOperand and InlineAsm.
type Operand interface {
	fmt.Stringer
	isOperand()
}

// FunctionRef is a direct reference to a named function
type FunctionRef struct {
	Name string
}

// ConstantOperand is a constant that is not a direct function reference, e.g. a constant expression
// casting a function pointer
type ConstantOperand struct {
	Repr string
}

// ValueOperand is a value computed at runtime, e.g. a function pointer loaded from memory
type ValueOperand struct {
	Name string
}

// InlineAsm is an inline assembly callee
type InlineAsm struct {
	Asm string
}

func (FunctionRef) isOperand()     {}
func (ConstantOperand) isOperand() {}
func (ValueOperand) isOperand()    {}
func (InlineAsm) isOperand()       {}

func (o FunctionRef) String() string     { return "@" + o.Name }
func (o ConstantOperand) String() string { return o.Repr }
func (o ValueOperand) String() string    { return "%" + o.Name }
func (o InlineAsm) String() string       { return fmt.Sprintf("asm %q", o.Asm) }

// CallSite is a call or invoke in a function
type CallSite struct {
	// Block is the name of the block containing the call
	Block  string
	Callee Operand
	FnType FuncType
}

// CallSites returns all the call sites of f: every *Call instruction and every Invoke terminator, in block order.
// CallBr terminators are not call sites; the call graph rejects functions that contain one.
func (f *Function) CallSites() []CallSite {
	var sites []CallSite
	for _, b := range f.Blocks {
		for _, instr := range b.Instrs {
			if call, ok := instr.(*Call); ok {
				sites = append(sites, CallSite{Block: b.Name, Callee: call.Callee, FnType: call.FnType})
			}
		}
		if invoke, ok := b.Term.(Invoke); ok {
			sites = append(sites, CallSite{Block: b.Name, Callee: invoke.Callee, FnType: invoke.FnType})
		}
	}
	return sites
}
