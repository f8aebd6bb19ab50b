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
	"kern32.dev/kern32/pkg/log"
)

// defaultIgnoredSignals are the signals whose default action is to be
// ignored, per POSIX.
var defaultIgnoredSignals = linux.MakeSignalSet(linux.SIGCHLD, linux.SIGCONT)

// SignalManager tracks per-thread signal dispositions and the kernel-wide
// queue of pending signals.
//
// The kernel has exactly one logical thread of execution, so the manager
// takes no locks: Send, SetHandler and DeliverPending run to completion on
// the calling context, and a custom handler invoked during delivery may call
// back into the manager freely.
type SignalManager struct {
	// handlers maps thread -> signal -> disposition. An absent entry
	// behaves as SignalActDefault.
	handlers map[ThreadID]map[linux.Signal]SignalHandler

	// pending is the kernel-wide FIFO of undelivered signals, in arrival
	// order across all threads.
	pending ilist.List
}

// NewSignalManager creates a SignalManager with no dispositions registered
// and nothing pending.
func NewSignalManager() *SignalManager {
	return &SignalManager{
		handlers: make(map[ThreadID]map[linux.Signal]SignalHandler),
	}
}

// Send posts sig to tid and delivers it immediately on the calling context.
//
// The entry is queued before delivery is attempted and stays queued
// afterwards, so a later DeliverPending for tid delivers the same signal a
// second time. This queue-then-deliver behavior is the manager's established
// contract; see DeliverPending.
func (m *SignalManager) Send(tid ThreadID, sig linux.Signal) {
	log.Debugf("Sending %v to thread %v", sig, tid)
	m.pending.PushBack(&pendingSignal{tid: tid, sig: sig})
	m.deliver(tid, sig)
}

// SetHandler installs handler as the disposition for sig on tid, replacing
// any previous disposition.
//
// Neither tid nor sig is validated: kernel callers are trusted, and a
// disposition may be installed before the thread exists.
func (m *SignalManager) SetHandler(tid ThreadID, sig linux.Signal, handler SignalHandler) {
	h, ok := m.handlers[tid]
	if !ok {
		h = make(map[linux.Signal]SignalHandler)
		m.handlers[tid] = h
	}
	h[sig] = handler
}

// DeliverPending delivers and dequeues every pending signal addressed to
// tid, preserving the relative order of the entries that remain. The
// scheduler calls it immediately before transferring control back to user
// mode for tid.
func (m *SignalManager) DeliverPending(tid ThreadID) {
	for e := m.pending.Front(); e != nil; {
		next := e.Next()
		if ps := e.(*pendingSignal); ps.tid == tid {
			m.pending.Remove(e)
			m.deliver(ps.tid, ps.sig)
		}
		e = next
	}
}

// CleanupThread drops the dispositions and pending signals of a terminated
// thread. The thread manager calls it when tid is torn down; nothing is
// delivered.
func (m *SignalManager) CleanupThread(tid ThreadID) {
	delete(m.handlers, tid)
	for e := m.pending.Front(); e != nil; {
		next := e.Next()
		if e.(*pendingSignal).tid == tid {
			m.pending.Remove(e)
		}
		e = next
	}
}

// deliver resolves the disposition for (tid, sig) and applies it.
func (m *SignalManager) deliver(tid ThreadID, sig linux.Signal) {
	handler, ok := m.handlers[tid][sig]
	if !ok {
		handler = DefaultHandler()
	}
	switch handler.Act {
	case SignalActIgnore:
		log.Debugf("Thread %v ignores %v", tid, sig)
	case SignalActHandler:
		log.Debugf("Thread %v handles %v", tid, sig)
		handler.Handler(sig)
	default:
		m.defaultAction(tid, sig)
	}
}

// defaultAction applies the kernel-defined default disposition for sig.
func (m *SignalManager) defaultAction(tid ThreadID, sig linux.Signal) {
	if sig.IsValid() && defaultIgnoredSignals.Has(sig) {
		// Ignored by default, per POSIX.
		return
	}
	// TODO: terminate the thread for the fatal default dispositions; that
	// needs a kill hook from the thread manager. Until then every other
	// signal falls through to a no-op.
	log.Debugf("No default action taken for %v to thread %v", sig, tid)
}
