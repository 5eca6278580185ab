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

// Terminator is the control-transfer instruction ending a basic block. The implementations are:
// Br, CondBr, IndirectBr, Switch, Ret, Resume, Invoke, CleanupRet, CatchRet, CatchSwitch, Unreachable and CallBr.
type Terminator interface {
	fmt.Stringer
	isTerminator()
}

// Br is an unconditional branch
type Br struct {
	Dest string
}

// CondBr is a conditional branch with two targets
type CondBr struct {
	True  string
	False string
}

// IndirectBr branches to one of a set of possible destinations
type IndirectBr struct {
	Dests []string
}

// SwitchCase is one value -> destination entry of a Switch
type SwitchCase struct {
	Value string
	Dest  string
}

// Switch branches to the destination of the matching case, or to Default
type Switch struct {
	Default string
	Cases   []SwitchCase
}

// Ret returns from the function
type Ret struct{}

// Resume resumes propagation of an in-flight exception, leaving the function
type Resume struct{}

// Invoke calls a function and continues at Normal when it returns, or at Exception when it unwinds
type Invoke struct {
	Callee    Operand
	FnType    FuncType
	Normal    string
	Exception string
}

// CleanupRet ends a cleanup pad. UnwindDest is empty when the cleanup unwinds to the caller.
type CleanupRet struct {
	UnwindDest string
}

// CatchRet ends a catch handler, continuing at Successor
type CatchRet struct {
	Successor string
}

// CatchSwitch dispatches to one of its handlers. UnwindDest is empty when the catch switch unwinds to the caller.
type CatchSwitch struct {
	Handlers   []string
	UnwindDest string
}

// Unreachable marks a point that control never reaches
type Unreachable struct{}

// CallBr is a call with possible branches to other blocks (asm goto). The analyses do not model it.
type CallBr struct {
	Callee   Operand
	FnType   FuncType
	Default  string
	Indirect []string
}

func (Br) isTerminator()          {}
func (CondBr) isTerminator()      {}
func (IndirectBr) isTerminator()  {}
func (Switch) isTerminator()      {}
func (Ret) isTerminator()         {}
func (Resume) isTerminator()      {}
func (Invoke) isTerminator()      {}
func (CleanupRet) isTerminator()  {}
func (CatchRet) isTerminator()    {}
func (CatchSwitch) isTerminator() {}
func (Unreachable) isTerminator() {}
func (CallBr) isTerminator()      {}

func (t Br) String() string     { return "br " + t.Dest }
func (t CondBr) String() string { return fmt.Sprintf("br %s, %s", t.True, t.False) }
func (t IndirectBr) String() string {
	return fmt.Sprintf("indirectbr [%s]", strings.Join(t.Dests, ", "))
}
func (t Switch) String() string {
	cases := make([]string, len(t.Cases))
	for i, c := range t.Cases {
		cases[i] = c.Value + ": " + c.Dest
	}
	return fmt.Sprintf("switch %s [%s]", t.Default, strings.Join(cases, ", "))
}
func (Ret) String() string    { return "ret" }
func (Resume) String() string { return "resume" }
func (t Invoke) String() string {
	return fmt.Sprintf("invoke %s to %s unwind %s", t.Callee, t.Normal, t.Exception)
}
func (t CleanupRet) String() string { return "cleanupret unwind " + unwindString(t.UnwindDest) }
func (t CatchRet) String() string   { return "catchret to " + t.Successor }
func (t CatchSwitch) String() string {
	return fmt.Sprintf("catchswitch [%s] unwind %s", strings.Join(t.Handlers, ", "), unwindString(t.UnwindDest))
}
func (Unreachable) String() string { return "unreachable" }
func (t CallBr) String() string {
	return fmt.Sprintf("callbr %s to %s [%s]", t.Callee, t.Default, strings.Join(t.Indirect, ", "))
}

func unwindString(dest string) string {
	if dest == "" {
		return "to caller"
	}
	return dest
}
