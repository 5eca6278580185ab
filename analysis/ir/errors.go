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
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a function, block or module name does not exist in the analyzed scope
	ErrNotFound = errors.New("not found")

	// ErrUnsupported is returned when an IR construct is outside the set of constructs the analyses model
	ErrUnsupported = errors.New("unsupported")

	// ErrAmbiguous is returned when a name designates more than one function across the analyzed modules
	ErrAmbiguous = errors.New("ambiguous")
)

// NotFound returns an error wrapping ErrNotFound for the element of the given kind (e.g. "block") named name in
// scope.
func NotFound(kind string, name string, scope string) error {
	return fmt.Errorf("%s %q in %s: %w", kind, name, scope, ErrNotFound)
}

// Unsupported returns an error wrapping ErrUnsupported, with a message formatted in the manner of Printf
func Unsupported(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrUnsupported)
}

// Ambiguous returns an error wrapping ErrAmbiguous for the function name defined in all the modules listed
func Ambiguous(name string, modules []string) error {
	return fmt.Errorf("function %q is defined in modules %v: %w", name, modules, ErrAmbiguous)
}
