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

// Package kernel provides the process-bootstrap core of the kernel: thread
// identity allocation, executable image loading and signal delivery.
//
// Address-space mapping, scheduling and the ring-3 transition are external
// collaborators. They interact with this package through three points:
// CreateProcess when building a new process, SignalManager.Send from
// anywhere a signal is raised, and ResumeThread on the return-to-user path.
package kernel

import (
	"fmt"

	"kern32.dev/kern32/pkg/loader"
	"kern32.dev/kern32/pkg/log"
)

// Kernel owns the bootstrap state shared across the kernel: the signal
// manager and the thread identity counter.
//
// A single Kernel is constructed at boot and passed explicitly to the call
// sites that need it; there is no global instance.
type Kernel struct {
	signals *SignalManager

	// lastTID is the most recently allocated thread identity.
	lastTID ThreadID
}

// New creates an initialized Kernel.
func New() *Kernel {
	return &Kernel{
		signals: NewSignalManager(),
	}
}

// Signals returns the kernel's signal manager.
func (k *Kernel) Signals() *SignalManager {
	return k.signals
}

// CreateProcess validates image as an ELF32 executable and allocates a
// thread identity for the new process. The caller maps the returned segments
// into the process address space (zero-filling each segment's Memsz-Filesz
// tail) before the thread first runs.
func (k *Kernel) CreateProcess(name string, image []byte) (ThreadID, loader.Image, error) {
	info, err := loader.Load(image)
	if err != nil {
		return 0, loader.Image{}, fmt.Errorf("loading %q: %w", name, err)
	}

	k.lastTID++
	tid := k.lastTID
	log.Infof("Created process %q: tid %v, entry %#x, %d loadable segments", name, tid, info.Entry, len(info.Segments))
	return tid, info, nil
}

// ResumeThread delivers tid's pending signals. The scheduler calls it
// immediately before transferring control back to user mode for tid.
func (k *Kernel) ResumeThread(tid ThreadID) {
	k.signals.DeliverPending(tid)
}

// ExitThread releases the signal state of a terminated thread.
func (k *Kernel) ExitThread(tid ThreadID) {
	k.signals.CleanupThread(tid)
}
