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

package callgraph

import (
	"github.com/awslabs/ar-ir-tools/analysis/ir"
	"github.com/awslabs/ar-ir-tools/internal/funcutil"
)

// SignatureIndex maps every function type to the functions defined with that exact type. It is the basis of the
// resolution of indirect calls. It is immutable after construction.
type SignatureIndex struct {
	// byType maps the canonical string of a type to the names of the functions of that type, in declaration order
	byType map[string][]string

	// types maps the canonical string of a type to the type
	types map[string]ir.FuncType

	// module maps every indexed function to the name of the module defining it
	module map[string]string
}

// NewSignatureIndex indexes the functions defined in modules by their formal type. The types of the functions are
// read from their definitions, never from their call sites.
// Returns an error wrapping ir.ErrAmbiguous if a function name is defined more than once.
func NewSignatureIndex(modules ...*ir.Module) (*SignatureIndex, error) {
	index := &SignatureIndex{
		byType: map[string][]string{},
		types:  map[string]ir.FuncType{},
		module: map[string]string{},
	}
	for _, m := range modules {
		for _, f := range m.Functions {
			if other, ok := index.module[f.Name]; ok {
				return nil, ir.Ambiguous(f.Name, []string{other, m.Name})
			}
			index.module[f.Name] = m.Name
			key := f.Type.String()
			index.byType[key] = append(index.byType[key], f.Name)
			index.types[key] = f.Type
		}
	}
	return index, nil
}

// FunctionsWithType returns the names of the functions whose type is exactly typ. The result is empty if no
// function has that type.
func (s *SignatureIndex) FunctionsWithType(typ ir.FuncType) []string {
	return append([]string(nil), s.byType[typ.String()]...)
}

// Types returns all the types of indexed functions, ordered by their string representation
func (s *SignatureIndex) Types() []ir.FuncType {
	keys := funcutil.SortedKeys(s.types)
	types := make([]ir.FuncType, len(keys))
	for i, k := range keys {
		types[i] = s.types[k]
	}
	return types
}

// ModuleOf returns the name of the module defining the function named name, and false if the function is not
// indexed.
func (s *SignatureIndex) ModuleOf(name string) (string, bool) {
	m, ok := s.module[name]
	return m, ok
}

// NumFunctions returns the number of indexed functions
func (s *SignatureIndex) NumFunctions() int {
	return len(s.module)
}
