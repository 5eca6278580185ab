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

// Package ir defines the in-memory intermediate representation the analyses run over.
//
// A Module owns an ordered list of function definitions and a list of external function declarations. A Function
// owns an ordered list of basic blocks, the first of which is the entry block. Each BasicBlock has a name that is
// unique within its function, a list of instructions and exactly one Terminator.
//
// The IR is produced by a frontend (see the frontend package for Go programs) and is never modified by the
// analyses: every analysis only reads the IR and identifies functions and blocks by their names.
//
// Terminators and callee operands are closed tagged unions: the set of implementations is fixed by unexported
// marker methods, and consumers switch exhaustively over them.
package ir
