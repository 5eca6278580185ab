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

package tools

import "regexp"

// Captures errors happening before any analysis starts (program could not load)
var regexCouldNotLoad = regexp.MustCompile("could not load program")

// Captures the kind of error that happen when you put a flag at the end instead of go files
var namedFilesMustBeGoFiles = regexp.MustCompile("-: named files must be .go files: -(\\w)")

// Captures the error returned when neither the command line nor the config name packages
var noPackages = regexp.MustCompile("no packages to analyze")

// Captures lookups of functions that are not in the loaded modules
var functionNotFound = regexp.MustCompile("function .* not found")

// HintForErrorMessage looks for specific error message and returns some other message that might help the user
// resolve the problem.
func HintForErrorMessage(errMsg string) string {
	if regexCouldNotLoad.MatchString(errMsg) {
		if namedFilesMustBeGoFiles.MatchString(errMsg) {
			return "all command line flags should be before the package patterns to analyze"
		}
		return "make sure the package patterns can be loaded by the go command from the current directory"
	}
	if noPackages.MatchString(errMsg) {
		return "provide package patterns on the command line or in the packages field of the config file"
	}
	if functionNotFound.MatchString(errMsg) {
		return "functions are named as in the output of the functions command, e.g. (*pkg.T).Method"
	}
	return ""
}
