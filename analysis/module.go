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

package analysis

import (
	"fmt"

	"github.com/awslabs/ar-ir-tools/analysis/callgraph"
	"github.com/awslabs/ar-ir-tools/analysis/config"
	"github.com/awslabs/ar-ir-tools/analysis/ir"
	"github.com/awslabs/ar-ir-tools/internal/funcutil"
)

// ModuleAnalysis holds the analyses of every function of a module, and the call graph of the module.
// Calls to functions the module only declares are not edges of its call graph.
// A ModuleAnalysis is safe for concurrent use.
type ModuleAnalysis struct {
	module *ir.Module
	logger *config.LogGroup

	functions []*FunctionAnalysis
	byName    map[string]*FunctionAnalysis

	signatureIndex funcutil.Lazy[*callgraph.SignatureIndex]
	callGraph      funcutil.Lazy[*callgraph.CallGraph]
}

// NewModuleAnalysis returns the analyses of m. Nothing is computed until the first query.
func NewModuleAnalysis(m *ir.Module, logger *config.LogGroup) *ModuleAnalysis {
	logger = defaultLogger(logger)
	ma := &ModuleAnalysis{
		module: m,
		logger: logger,
		byName: make(map[string]*FunctionAnalysis, len(m.Functions)),
	}
	for _, f := range m.Functions {
		fa := NewFunctionAnalysis(f, logger)
		ma.functions = append(ma.functions, fa)
		if _, ok := ma.byName[f.Name]; !ok {
			ma.byName[f.Name] = fa
		}
	}
	return ma
}

// Module returns the module analyzed
func (ma *ModuleAnalysis) Module() *ir.Module {
	return ma.module
}

// Name returns the name of the module analyzed
func (ma *ModuleAnalysis) Name() string {
	return ma.module.Name
}

// FunctionAnalysis returns the analyses of the function named name
func (ma *ModuleAnalysis) FunctionAnalysis(name string) (*FunctionAnalysis, error) {
	fa, ok := ma.byName[name]
	if !ok {
		return nil, ir.NotFound("function", name, "module "+ma.module.Name)
	}
	return fa, nil
}

// FunctionAnalyses returns the analyses of all the functions of the module, in declaration order
func (ma *ModuleAnalysis) FunctionAnalyses() []*FunctionAnalysis {
	return append([]*FunctionAnalysis(nil), ma.functions...)
}

// SignatureIndex returns the index of the functions of the module by type
func (ma *ModuleAnalysis) SignatureIndex() (*callgraph.SignatureIndex, error) {
	return ma.signatureIndex.Get(func() (*callgraph.SignatureIndex, error) {
		ma.logger.Debugf("Indexing function signatures of module %s", ma.module.Name)
		return callgraph.NewSignatureIndex(ma.module)
	})
}

// CallGraph returns the call graph of the module
func (ma *ModuleAnalysis) CallGraph() (*callgraph.CallGraph, error) {
	return ma.callGraph.Get(func() (*callgraph.CallGraph, error) {
		index, err := ma.SignatureIndex()
		if err != nil {
			return nil, err
		}
		ma.logger.Debugf("Computing call graph of module %s", ma.module.Name)
		cg, err := callgraph.New(index, ma.module)
		if err != nil {
			return nil, err
		}
		ma.logger.Tracef("Call graph of module %s: %d functions, %d edges", ma.module.Name,
			len(cg.Functions()), cg.NumEdges())
		return cg, nil
	})
}

// Precompute computes the analyses of every function of the module using numRoutines goroutines, then the call
// graph. It returns the first error encountered, in declaration order.
func (ma *ModuleAnalysis) Precompute(numRoutines int) error {
	errs := funcutil.MapParallel(ma.functions, func(fa *FunctionAnalysis) error {
		if err := fa.Precompute(); err != nil {
			return fmt.Errorf("function %s: %w", fa.Name(), err)
		}
		return nil
	}, numRoutines)
	for _, err := range errs {
		if err != nil {
			return fmt.Errorf("module %s: %w", ma.module.Name, err)
		}
	}
	_, err := ma.CallGraph()
	return err
}
