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

package config

const (
	// DefaultNumRoutines is the default number of goroutines computing per-function analyses in parallel
	DefaultNumRoutines = 4

	// AnalysisCFG names the control-flow graph
	AnalysisCFG = "cfg"
	// AnalysisDomTree names the dominator tree
	AnalysisDomTree = "domtree"
	// AnalysisPostDomTree names the postdominator tree
	AnalysisPostDomTree = "postdomtree"
	// AnalysisCDG names the control dependence graph
	AnalysisCDG = "cdg"
	// AnalysisCallGraph names the call graph
	AnalysisCallGraph = "callgraph"
)

// AllAnalyses lists the names of the analyses that can be requested in a config file
var AllAnalyses = []string{AnalysisCFG, AnalysisDomTree, AnalysisPostDomTree, AnalysisCDG, AnalysisCallGraph}
