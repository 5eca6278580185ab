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

// Package frontend loads Go programs and lowers their SSA form into IR modules, one module per package.
//
// Every SSA function with a body becomes an IR function whose blocks are named by their index. Jumps, conditional
// jumps, returns and panics become Br, CondBr, Ret and Unreachable terminators. Calls, go and defer statements
// become call instructions: calls to statically known functions reference the callee by name, calls of interface
// methods and of function values are dynamic calls typed with the signature of the callee, and calls to built-in
// functions are dropped.
package frontend

import (
	"fmt"
	"go/types"
	"sort"
	"strconv"
	"strings"

	"github.com/awslabs/ar-ir-tools/analysis/ir"
	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"
)

// Lower translates the functions of prog into IR modules, one per package whose path satisfies filter. A nil
// filter keeps every package. The modules are sorted by package path.
// Functions that do not belong to a package, such as synthetic wrappers, are not lowered; direct calls to them are
// declarations of the modules.
func Lower(prog *ssa.Program, filter func(pkgPath string) bool) ([]*ir.Module, error) {
	byPkg := map[*ssa.Package][]*ssa.Function{}
	for fn := range ssautil.AllFunctions(prog) {
		if fn.Pkg == nil || len(fn.Blocks) == 0 {
			continue
		}
		if filter != nil && !filter(fn.Pkg.Pkg.Path()) {
			continue
		}
		byPkg[fn.Pkg] = append(byPkg[fn.Pkg], fn)
	}
	pkgs := make([]*ssa.Package, 0, len(byPkg))
	for pkg := range byPkg {
		pkgs = append(pkgs, pkg)
	}
	sort.Slice(pkgs, func(i, j int) bool { return pkgs[i].Pkg.Path() < pkgs[j].Pkg.Path() })

	var modules []*ir.Module
	for _, pkg := range pkgs {
		m, err := lowerFunctions(pkg.Pkg.Path(), byPkg[pkg])
		if err != nil {
			return nil, err
		}
		modules = append(modules, m)
	}
	return modules, nil
}

// LowerPackage translates the functions of pkg into an IR module named by the path of the package
func LowerPackage(pkg *ssa.Package) (*ir.Module, error) {
	var fns []*ssa.Function
	for fn := range ssautil.AllFunctions(pkg.Prog) {
		if fn.Pkg == pkg && len(fn.Blocks) > 0 {
			fns = append(fns, fn)
		}
	}
	return lowerFunctions(pkg.Pkg.Path(), fns)
}

func lowerFunctions(name string, fns []*ssa.Function) (*ir.Module, error) {
	sort.Slice(fns, func(i, j int) bool { return fns[i].String() < fns[j].String() })
	m := ir.NewModule(name)
	defined := map[string]bool{}
	for _, fn := range fns {
		if defined[fn.String()] {
			continue
		}
		f, err := LowerFunction(fn)
		if err != nil {
			return nil, fmt.Errorf("package %s: %w", name, err)
		}
		defined[f.Name] = true
		m.Functions = append(m.Functions, f)
	}

	// every function referenced but not defined is declared
	for _, f := range m.Functions {
		for _, site := range f.CallSites() {
			if ref, ok := site.Callee.(ir.FunctionRef); ok && !defined[ref.Name] {
				if _, declared := m.Declaration(ref.Name); !declared {
					m.Declare(ref.Name, site.FnType)
				}
			}
		}
	}
	return m, nil
}

// LowerFunction translates fn, which must have a body, into an IR function named fn.String()
func LowerFunction(fn *ssa.Function) (*ir.Function, error) {
	if len(fn.Blocks) == 0 {
		return nil, ir.Unsupported("function %s has no body", fn)
	}
	f := ir.NewFunction(fn.String(), FuncType(fn.Signature))
	for _, b := range fn.Blocks {
		if len(b.Instrs) == 0 {
			return nil, ir.Unsupported("block %d of %s is empty", b.Index, fn)
		}
		term, err := lowerTerminator(b)
		if err != nil {
			return nil, fmt.Errorf("in function %s: %w", fn, err)
		}
		var instrs []ir.Instruction
		for _, instr := range b.Instrs[:len(b.Instrs)-1] {
			if lowered := lowerInstruction(instr); lowered != nil {
				instrs = append(instrs, lowered)
			}
		}
		f.AddBlock(blockName(b), term, instrs...)
	}
	return f, nil
}

func blockName(b *ssa.BasicBlock) string {
	return strconv.Itoa(b.Index)
}

func lowerTerminator(b *ssa.BasicBlock) (ir.Terminator, error) {
	switch last := b.Instrs[len(b.Instrs)-1].(type) {
	case *ssa.Jump:
		return ir.Br{Dest: blockName(b.Succs[0])}, nil
	case *ssa.If:
		return ir.CondBr{True: blockName(b.Succs[0]), False: blockName(b.Succs[1])}, nil
	case *ssa.Return:
		return ir.Ret{}, nil
	case *ssa.Panic:
		return ir.Unreachable{}, nil
	default:
		return nil, ir.Unsupported("block %d ends with %T", b.Index, last)
	}
}

// lowerInstruction returns the IR instruction of instr, or nil if instr is a call to a built-in function
func lowerInstruction(instr ssa.Instruction) ir.Instruction {
	call, ok := instr.(ssa.CallInstruction)
	if !ok {
		return &ir.Op{Opcode: opcode(instr)}
	}
	common := call.Common()
	if common.IsInvoke() {
		return &ir.Call{
			Callee: ir.ValueOperand{Name: common.Value.Name() + "." + common.Method.Name()},
			FnType: FuncType(common.Signature()),
		}
	}
	if callee := common.StaticCallee(); callee != nil {
		return &ir.Call{Callee: ir.FunctionRef{Name: callee.String()}, FnType: FuncType(callee.Signature)}
	}
	switch v := common.Value.(type) {
	case *ssa.Builtin:
		return nil
	case *ssa.Const:
		return &ir.Call{Callee: ir.ConstantOperand{Repr: v.String()}, FnType: FuncType(common.Signature())}
	default:
		return &ir.Call{Callee: ir.ValueOperand{Name: v.Name()}, FnType: FuncType(common.Signature())}
	}
}

func opcode(instr ssa.Instruction) string {
	return strings.ToLower(strings.TrimPrefix(fmt.Sprintf("%T", instr), "*ssa."))
}

// FuncType returns the IR type of a Go signature. The receiver of methods is not part of the type, so that methods
// can be the targets of interface calls. A variadic signature keeps its final slice parameter.
func FuncType(sig *types.Signature) ir.FuncType {
	params := make([]ir.Type, sig.Params().Len())
	for i := range params {
		params[i] = typeOf(sig.Params().At(i).Type())
	}
	var result ir.Type
	switch sig.Results().Len() {
	case 0:
		result = ir.Void
	case 1:
		result = typeOf(sig.Results().At(0).Type())
	default:
		results := make([]string, sig.Results().Len())
		for i := range results {
			results[i] = string(typeOf(sig.Results().At(i).Type()))
		}
		result = ir.Type("(" + strings.Join(results, ", ") + ")")
	}
	if sig.Variadic() {
		return ir.VarArgFn(result, params...)
	}
	return ir.Fn(result, params...)
}

func typeOf(t types.Type) ir.Type {
	return ir.Type(types.TypeString(t, nil))
}
