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
	"sync"

	"github.com/awslabs/ar-ir-tools/analysis/callgraph"
	"github.com/awslabs/ar-ir-tools/analysis/config"
	"github.com/awslabs/ar-ir-tools/analysis/ir"
	"github.com/awslabs/ar-ir-tools/internal/funcutil"
)

// CrossModuleAnalysis holds the analyses of a set of modules, and a call graph spanning all of them in which a call
// from a function of one module to a function defined in another module is an edge.
// A CrossModuleAnalysis is safe for concurrent use.
type CrossModuleAnalysis struct {
	modules []*ModuleAnalysis
	logger  *config.LogGroup

	signatureIndex funcutil.Lazy[*callgraph.SignatureIndex]
	callGraph      funcutil.Lazy[*callgraph.CallGraph]
}

// NewCrossModuleAnalysis returns the analyses of modules. Nothing is computed until the first query.
func NewCrossModuleAnalysis(modules []*ir.Module, logger *config.LogGroup) *CrossModuleAnalysis {
	logger = defaultLogger(logger)
	c := &CrossModuleAnalysis{logger: logger}
	for _, m := range modules {
		c.modules = append(c.modules, NewModuleAnalysis(m, logger))
	}
	return c
}

// Modules returns the analyses of every module, in the order the modules were provided
func (c *CrossModuleAnalysis) Modules() []*ModuleAnalysis {
	return append([]*ModuleAnalysis(nil), c.modules...)
}

// ModuleAnalysis returns the analyses of the module named name
func (c *CrossModuleAnalysis) ModuleAnalysis(name string) (*ModuleAnalysis, error) {
	var found *ModuleAnalysis
	for _, ma := range c.modules {
		if ma.Name() == name {
			if found != nil {
				return nil, ir.Ambiguous(name, []string{found.Name(), ma.Name()})
			}
			found = ma
		}
	}
	if found == nil {
		return nil, ir.NotFound("module", name, "cross-module analysis")
	}
	return found, nil
}

// Functions returns all the functions defined in the modules, in module and declaration order
func (c *CrossModuleAnalysis) Functions() []*ir.Function {
	var fns []*ir.Function
	for _, ma := range c.modules {
		fns = append(fns, ma.module.Functions...)
	}
	return fns
}

// FunctionAnalysis returns the analyses of the function named name, wherever it is defined.
// The error wraps ir.ErrAmbiguous if more than one module defines a function with that name.
func (c *CrossModuleAnalysis) FunctionAnalysis(name string) (*FunctionAnalysis, error) {
	fa, _, err := c.lookup(name)
	return fa, err
}

// FunctionByName returns the function named name together with the module defining it.
// The error wraps ir.ErrNotFound if no module defines it, and ir.ErrAmbiguous if more than one does.
func (c *CrossModuleAnalysis) FunctionByName(name string) (*ir.Function, *ir.Module, error) {
	fa, ma, err := c.lookup(name)
	if err != nil {
		return nil, nil, err
	}
	return fa.function, ma.module, nil
}

func (c *CrossModuleAnalysis) lookup(name string) (*FunctionAnalysis, *ModuleAnalysis, error) {
	var found *FunctionAnalysis
	var foundIn *ModuleAnalysis
	var definedIn []string
	for _, ma := range c.modules {
		if fa, ok := ma.byName[name]; ok {
			found, foundIn = fa, ma
			definedIn = append(definedIn, ma.Name())
		}
	}
	switch len(definedIn) {
	case 0:
		return nil, nil, ir.NotFound("function", name, "cross-module analysis")
	case 1:
		return found, foundIn, nil
	default:
		return nil, nil, ir.Ambiguous(name, definedIn)
	}
}

// SignatureIndex returns the index by type of the functions of all the modules
func (c *CrossModuleAnalysis) SignatureIndex() (*callgraph.SignatureIndex, error) {
	return c.signatureIndex.Get(func() (*callgraph.SignatureIndex, error) {
		c.logger.Debugf("Indexing function signatures of %d modules", len(c.modules))
		return callgraph.NewSignatureIndex(c.irModules()...)
	})
}

// CallGraph returns the call graph spanning all the modules
func (c *CrossModuleAnalysis) CallGraph() (*callgraph.CallGraph, error) {
	return c.callGraph.Get(func() (*callgraph.CallGraph, error) {
		index, err := c.SignatureIndex()
		if err != nil {
			return nil, err
		}
		c.logger.Debugf("Computing call graph of %d modules", len(c.modules))
		cg, err := callgraph.New(index, c.irModules()...)
		if err != nil {
			return nil, err
		}
		c.logger.Tracef("Cross-module call graph: %d functions, %d edges", len(cg.Functions()), cg.NumEdges())
		return cg, nil
	})
}

// Precompute computes the analyses of every module in parallel, each with numRoutines goroutines, and then the
// call graph spanning all the modules. It returns the first error encountered, in module order.
func (c *CrossModuleAnalysis) Precompute(numRoutines int) error {
	errs := make([]error, len(c.modules))
	wg := &sync.WaitGroup{}
	wg.Add(len(c.modules))
	for i, ma := range c.modules {
		go func(i int, ma *ModuleAnalysis) {
			defer wg.Done()
			errs[i] = ma.Precompute(numRoutines)
		}(i, ma)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	_, err := c.CallGraph()
	return err
}

func (c *CrossModuleAnalysis) irModules() []*ir.Module {
	return funcutil.Map(c.modules, func(ma *ModuleAnalysis) *ir.Module { return ma.module })
}
