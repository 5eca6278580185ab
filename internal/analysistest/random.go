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

package analysistest

import (
	"fmt"
	"math/rand"

	"github.com/awslabs/ar-ir-tools/analysis/ir"
)

// RandomFunction returns a random function with size blocks named "b0" ... "b<size-1>". Terminators are drawn
// among ret, unreachable, br, conditional branches and switches, so the result usually contains loops, blocks
// unreachable from the entry and blocks that cannot reach the exit.
func RandomFunction(size int, seed int64) *ir.Function {
	r := rand.New(rand.NewSource(seed))
	name := func(i int) string { return fmt.Sprintf("b%d", i) }
	pick := func() string { return name(r.Intn(size)) }
	f := ir.NewFunction(fmt.Sprintf("random_%d_%d", size, seed), ir.Fn(ir.Void))
	for i := 0; i < size; i++ {
		var term ir.Terminator
		switch x := r.Float32(); {
		case x < 0.1:
			term = ir.Ret{}
		case x < 0.15:
			term = ir.Unreachable{}
		case x < 0.45:
			term = ir.Br{Dest: pick()}
		case x < 0.85:
			term = ir.CondBr{True: pick(), False: pick()}
		default:
			term = ir.Switch{Default: pick(), Cases: []ir.SwitchCase{{Value: "0", Dest: pick()}, {Value: "1", Dest: pick()}}}
		}
		f.AddBlock(name(i), term)
	}
	return f
}
