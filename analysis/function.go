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
	"github.com/awslabs/ar-ir-tools/analysis/cfg"
	"github.com/awslabs/ar-ir-tools/analysis/config"
	"github.com/awslabs/ar-ir-tools/analysis/controldep"
	"github.com/awslabs/ar-ir-tools/analysis/dominators"
	"github.com/awslabs/ar-ir-tools/analysis/ir"
	"github.com/awslabs/ar-ir-tools/internal/funcutil"
)

// FunctionAnalysis holds the intraprocedural analyses of a function. Each analysis is computed on first access,
// after the analyses it depends on, and the same value is returned on every later access.
// A FunctionAnalysis is safe for concurrent use.
type FunctionAnalysis struct {
	function *ir.Function
	logger   *config.LogGroup

	controlFlowGraph  funcutil.Lazy[*cfg.ControlFlowGraph]
	dominatorTree     funcutil.Lazy[*dominators.DominatorTree]
	postDominatorTree funcutil.Lazy[*dominators.PostDominatorTree]
	controlDependence funcutil.Lazy[*controldep.ControlDependenceGraph]
}

// NewFunctionAnalysis returns the analyses of f. Nothing is computed until the first query.
// If logger is nil, only errors are logged, to stderr.
func NewFunctionAnalysis(f *ir.Function, logger *config.LogGroup) *FunctionAnalysis {
	return &FunctionAnalysis{function: f, logger: defaultLogger(logger)}
}

// Function returns the function analyzed
func (a *FunctionAnalysis) Function() *ir.Function {
	return a.function
}

// Name returns the name of the function analyzed
func (a *FunctionAnalysis) Name() string {
	return a.function.Name
}

// ControlFlowGraph returns the control-flow graph of the function.
// The error wraps ir.ErrUnsupported or ir.ErrNotFound when the function cannot be analyzed.
func (a *FunctionAnalysis) ControlFlowGraph() (*cfg.ControlFlowGraph, error) {
	return a.controlFlowGraph.Get(func() (*cfg.ControlFlowGraph, error) {
		a.logger.Debugf("Computing control-flow graph of %s", a.function.Name)
		g, err := cfg.Build(a.function)
		if err != nil {
			return nil, err
		}
		a.logger.Tracef("Control-flow graph of %s: %d blocks, %d edges", a.function.Name, len(g.Blocks()),
			g.NumEdges())
		return g, nil
	})
}

// DominatorTree returns the dominator tree of the function
func (a *FunctionAnalysis) DominatorTree() (*dominators.DominatorTree, error) {
	return a.dominatorTree.Get(func() (*dominators.DominatorTree, error) {
		g, err := a.ControlFlowGraph()
		if err != nil {
			return nil, err
		}
		a.logger.Debugf("Computing dominator tree of %s", a.function.Name)
		return dominators.NewDominatorTree(g), nil
	})
}

// PostDominatorTree returns the postdominator tree of the function
func (a *FunctionAnalysis) PostDominatorTree() (*dominators.PostDominatorTree, error) {
	return a.postDominatorTree.Get(func() (*dominators.PostDominatorTree, error) {
		g, err := a.ControlFlowGraph()
		if err != nil {
			return nil, err
		}
		a.logger.Debugf("Computing postdominator tree of %s", a.function.Name)
		return dominators.NewPostDominatorTree(g), nil
	})
}

// ControlDependenceGraph returns the control dependence graph of the function
func (a *FunctionAnalysis) ControlDependenceGraph() (*controldep.ControlDependenceGraph, error) {
	return a.controlDependence.Get(func() (*controldep.ControlDependenceGraph, error) {
		g, err := a.ControlFlowGraph()
		if err != nil {
			return nil, err
		}
		pdt, err := a.PostDominatorTree()
		if err != nil {
			return nil, err
		}
		a.logger.Debugf("Computing control dependence graph of %s", a.function.Name)
		cdg := controldep.New(g, pdt)
		a.logger.Tracef("Control dependence graph of %s: %d edges", a.function.Name, cdg.NumEdges())
		return cdg, nil
	})
}

// Precompute forces the computation of all the analyses of the function and returns the first error
func (a *FunctionAnalysis) Precompute() error {
	if _, err := a.DominatorTree(); err != nil {
		return err
	}
	_, err := a.ControlDependenceGraph()
	return err
}

// Computed returns true if the control-flow graph of the function has been computed
func (a *FunctionAnalysis) Computed() bool {
	return a.controlFlowGraph.Computed()
}

func defaultLogger(logger *config.LogGroup) *config.LogGroup {
	if logger != nil {
		return logger
	}
	return config.NewLogGroup(&config.Config{Options: config.Options{LogLevel: int(config.ErrLevel)}})
}
