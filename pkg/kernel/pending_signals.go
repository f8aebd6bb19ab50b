// Copyright 2025 The kern32 Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package kernel

import (
	"kern32.dev/kern32/pkg/abi/linux"
	"kern32.dev/kern32/pkg/ilist"
)

// pendingSignal is one undelivered signal in the kernel-wide queue.
//
// The queue is deliberately not partitioned per thread: entries for all
// threads share one FIFO and keep their arrival order across threads.
type pendingSignal struct {
	ilist.Entry

	// tid is the thread the signal is addressed to.
	tid ThreadID

	// sig is the signal number.
	sig linux.Signal
}
