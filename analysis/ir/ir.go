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

import (
	"fmt"
	"strings"
)

// Module is a unit of analysis, for example the result of compiling one package or one translation unit.
type Module struct {
	// Name identifies the module
	Name string

	// Functions are the functions defined in the module, in declaration order
	Functions []*Function

	// Declarations are the functions the module references but does not define
	Declarations []*Declaration
}

// NewModule returns a module with the given name and function definitions
func NewModule(name string, functions ...*Function) *Module {
	return &Module{Name: name, Functions: functions}
}

// Function returns the function definition named name and true, or nil and false if the module does not define it
func (m *Module) Function(name string) (*Function, bool) {
	for _, f := range m.Functions {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// Declare adds an external function declaration to the module
func (m *Module) Declare(name string, typ FuncType) *Declaration {
	d := &Declaration{Name: name, Type: typ}
	m.Declarations = append(m.Declarations, d)
	return d
}

// Declaration returns the declaration of the external function named name, and false if there is none
func (m *Module) Declaration(name string) (*Declaration, bool) {
	for _, d := range m.Declarations {
		if d.Name == name {
			return d, true
		}
	}
	return nil, false
}

func (m *Module) String() string {
	return m.Name
}

// Declaration is an external function: only its name and type are known
type Declaration struct {
	Name string
	Type FuncType
}

// Function is a function definition
type Function struct {
	// Name is the name of the function, unique in its module
	Name string

	// Type is the formal type of the function, independent of any call site
	Type FuncType

	// Blocks are the basic blocks of the function. Blocks[0] is the entry block.
	Blocks []*BasicBlock
}

// NewFunction returns a function without any block
func NewFunction(name string, typ FuncType) *Function {
	return &Function{Name: name, Type: typ}
}

// AddBlock appends a new block with the terminator and instructions provided, and returns the function so that
// calls can be chained.
func (f *Function) AddBlock(name string, term Terminator, instrs ...Instruction) *Function {
	f.Blocks = append(f.Blocks, &BasicBlock{Name: name, Instrs: instrs, Term: term})
	return f
}

// Block returns the block of f named name and true, or nil and false if there is no such block
func (f *Function) Block(name string) (*BasicBlock, bool) {
	for _, b := range f.Blocks {
		if b.Name == name {
			return b, true
		}
	}
	return nil, false
}

// Entry returns the entry block of the function, or nil if the function has no blocks
func (f *Function) Entry() *BasicBlock {
	if len(f.Blocks) == 0 {
		return nil
	}
	return f.Blocks[0]
}

func (f *Function) String() string {
	return f.Name
}

// BasicBlock is a straight-line sequence of instructions ending with a terminator
type BasicBlock struct {
	Name   string
	Instrs []Instruction
	Term   Terminator
}

// Type is the name of an IR type, e.g. "i32", "ptr" or "void".
type Type string

// Void is the type of functions that return no value
const Void Type = "void"

// FuncType is a function type. Two function types are the same exactly when their String representations are
// equal.
type FuncType struct {
	Result   Type
	Params   []Type
	IsVarArg bool
}

// Fn returns the (non-variadic) function type with the given result and parameter types
func Fn(result Type, params ...Type) FuncType {
	return FuncType{Result: result, Params: params}
}

// VarArgFn returns the variadic function type with the given result and fixed parameter types
func VarArgFn(result Type, params ...Type) FuncType {
	return FuncType{Result: result, Params: params, IsVarArg: true}
}

// String returns the canonical representation of the type, e.g. "i32 (i32, i32)" or "void (ptr, ...)"
func (t FuncType) String() string {
	params := make([]string, 0, len(t.Params)+1)
	for _, p := range t.Params {
		params = append(params, string(p))
	}
	if t.IsVarArg {
		params = append(params, "...")
	}
	result := t.Result
	if result == "" {
		result = Void
	}
	return fmt.Sprintf("%s (%s)", result, strings.Join(params, ", "))
}

// Equal returns true if t and u are the same function type
func (t FuncType) Equal(u FuncType) bool {
	return t.String() == u.String()
}
