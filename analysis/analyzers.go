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

// Package analysis contains the lazy caches of the analyses of IR modules, and helper functions for running the
// analyses on many functions at once.
//
// A [FunctionAnalysis] computes the control-flow graph, dominator tree, postdominator tree and control dependence
// graph of a function on demand. A [ModuleAnalysis] holds the function analyses of one module and its call graph.
// A [CrossModuleAnalysis] holds several module analyses and a call graph spanning all the modules.
package analysis

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/awslabs/ar-ir-tools/analysis/config"
	"github.com/awslabs/ar-ir-tools/internal/funcutil"
)

// FunctionResult is the outcome of running the analyses of a function
type FunctionResult struct {
	// Module is the name of the module defining the function
	Module string

	// Analysis holds the analyses computed
	Analysis *FunctionAnalysis

	// Time is the time spent computing the analyses
	Time time.Duration

	// Err is the first error encountered, or nil
	Err error
}

// singleFunctionJob contains all the information necessary to run the analyses of one function
type singleFunctionJob struct {
	module   string
	analysis *FunctionAnalysis
	config   *config.Config
	logger   *config.LogGroup
}

// RunFunctionAnalyses computes the intraprocedural analyses requested by c for every function of modules that
// matches the function filter of c, in parallel using c.NumRoutines goroutines. Errors are logged and returned in
// the results, and do not stop the other jobs.
// If c.ReportsDir is set, the time spent on every function is reported in a file analysis-times-*.csv of that
// directory.
func RunFunctionAnalyses(c *config.Config, logger *config.LogGroup, modules []*ModuleAnalysis) []FunctionResult {
	logger = defaultLogger(logger)
	logger.Infof("Starting intraprocedural analyses ...")
	start := time.Now()

	var jobs []singleFunctionJob
	for _, ma := range modules {
		for _, fa := range ma.FunctionAnalyses() {
			if c.MatchFunctionFilter(fa.Name()) {
				jobs = append(jobs, singleFunctionJob{module: ma.Name(), analysis: fa, config: c, logger: logger})
			}
		}
	}

	results := funcutil.MapParallel(jobs, runSingleFunctionJob, c.NumRoutines)
	if c.ReportsDir != "" {
		reportTimes(c, logger, results)
	}

	logger.Infof("Intraprocedural analyses of %d functions done (%.2f s).", len(jobs), time.Since(start).Seconds())
	return results
}

// runSingleFunctionJob runs the analyses of job and returns the result
func runSingleFunctionJob(job singleFunctionJob) FunctionResult {
	job.logger.Debugf("%-10sModule: %-30s | Func: %-30s ...", "Analyzing", job.module, job.analysis.Name())
	start := time.Now()
	err := computeWanted(job.config, job.analysis)
	result := FunctionResult{Module: job.module, Analysis: job.analysis, Time: time.Since(start), Err: err}
	if err != nil {
		job.logger.Errorf("error while analyzing %s:\n\t%v\n", job.analysis.Name(), err)
		return result
	}
	job.logger.Debugf("%-10sModule: %-30s | Func: %-30s | %.2f s\n", " ", job.module, job.analysis.Name(),
		result.Time.Seconds())
	return result
}

func computeWanted(c *config.Config, fa *FunctionAnalysis) error {
	if _, err := fa.ControlFlowGraph(); err != nil {
		return err
	}
	if c.Wants(config.AnalysisDomTree) {
		if _, err := fa.DominatorTree(); err != nil {
			return err
		}
	}
	if c.Wants(config.AnalysisPostDomTree) {
		if _, err := fa.PostDominatorTree(); err != nil {
			return err
		}
	}
	if c.Wants(config.AnalysisCDG) {
		if _, err := fa.ControlDependenceGraph(); err != nil {
			return err
		}
	}
	return nil
}

func reportTimes(c *config.Config, logger *config.LogGroup, results []FunctionResult) {
	f, err := os.CreateTemp(c.ReportsDir, "analysis-times-*.csv")
	if err != nil {
		logger.Errorf("Could not create analysis times report file.")
		return
	}
	defer f.Close()
	path, err := filepath.Abs(f.Name())
	if err != nil {
		logger.Errorf("Could not find absolute path of analysis times report file %s.", f.Name())
	}
	logger.Infof("Saving report of analysis times in %s\n", path)
	for _, result := range results {
		reportFunctionTime(f, result)
	}
}

func reportFunctionTime(w io.Writer, result FunctionResult) {
	status := "ok"
	if result.Err != nil {
		status = "error"
	}
	str := fmt.Sprintf("%s, %s, %.6f, %s\n", result.Module, result.Analysis.Name(), result.Time.Seconds(), status)
	w.Write([]byte(str))
}
