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

package funcutil

import (
	"sync"
	"sync/atomic"
)

// Lazy is a value computed at most once, on first access, and then shared read-only.
// Errors are memoized like values: a computation that failed once reports the same error on every access.
// Concurrent first accesses are serialized; only one of them runs the computation.
type Lazy[T any] struct {
	once  sync.Once
	value T
	err   error
	done  atomic.Bool
}

// Get returns the value of l, running compute if this is the first access.
func (l *Lazy[T]) Get(compute func() (T, error)) (T, error) {
	l.once.Do(func() {
		l.value, l.err = compute()
		l.done.Store(true)
	})
	return l.value, l.err
}

// Computed returns true if the value of l has already been computed.
func (l *Lazy[T]) Computed() bool {
	return l.done.Load()
}
