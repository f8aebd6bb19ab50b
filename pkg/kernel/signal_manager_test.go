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
	"testing"

	"github.com/google/go-cmp/cmp"
	"kern32.dev/kern32/pkg/abi/linux"
)

// delivery records one handler invocation.
type delivery struct {
	TID ThreadID
	Sig linux.Signal
}

// recorder registers counting handlers and remembers every invocation in
// order.
type recorder struct {
	deliveries []delivery
}

func (r *recorder) handler(tid ThreadID) SignalHandlerFunc {
	return func(sig linux.Signal) {
		r.deliveries = append(r.deliveries, delivery{tid, sig})
	}
}

func TestIgnoreSuppressesDelivery(t *testing.T) {
	m := NewSignalManager()
	var r recorder

	m.SetHandler(1, linux.SIGTERM, IgnoreHandler())
	m.Send(1, linux.SIGTERM)
	m.DeliverPending(1)

	if len(r.deliveries) != 0 {
		t.Errorf("ignored signal produced deliveries: %v", r.deliveries)
	}
}

// Send delivers at send time and leaves the entry queued, so a following
// DeliverPending on the same thread delivers the same signal again. This
// double delivery is the manager's contract.
func TestSendDeliversTwice(t *testing.T) {
	m := NewSignalManager()
	var r recorder

	m.SetHandler(1, linux.SIGTERM, CustomHandler(r.handler(1)))
	m.Send(1, linux.SIGTERM)

	want := []delivery{{1, linux.SIGTERM}}
	if diff := cmp.Diff(want, r.deliveries); diff != "" {
		t.Fatalf("after Send (-want +got):\n%s", diff)
	}

	// Wrong thread: nothing further.
	m.DeliverPending(2)
	if diff := cmp.Diff(want, r.deliveries); diff != "" {
		t.Fatalf("after DeliverPending(2) (-want +got):\n%s", diff)
	}

	// Right thread: the queued entry is delivered a second time.
	m.DeliverPending(1)
	want = append(want, delivery{1, linux.SIGTERM})
	if diff := cmp.Diff(want, r.deliveries); diff != "" {
		t.Fatalf("after DeliverPending(1) (-want +got):\n%s", diff)
	}

	// The queue is now empty for thread 1.
	m.DeliverPending(1)
	if diff := cmp.Diff(want, r.deliveries); diff != "" {
		t.Fatalf("after second DeliverPending(1) (-want +got):\n%s", diff)
	}
}

func TestDeliverPendingFiltersByThread(t *testing.T) {
	m := NewSignalManager()
	var r recorder

	m.SetHandler(1, linux.SIGHUP, CustomHandler(r.handler(1)))
	m.SetHandler(2, linux.SIGUSR1, CustomHandler(r.handler(2)))
	m.Send(1, linux.SIGHUP)
	m.Send(2, linux.SIGUSR1)

	// Both were delivered once at send time.
	want := []delivery{{1, linux.SIGHUP}, {2, linux.SIGUSR1}}
	if diff := cmp.Diff(want, r.deliveries); diff != "" {
		t.Fatalf("after sends (-want +got):\n%s", diff)
	}

	// Draining thread 1 must not touch thread 2's entry.
	m.DeliverPending(1)
	want = append(want, delivery{1, linux.SIGHUP})
	if diff := cmp.Diff(want, r.deliveries); diff != "" {
		t.Fatalf("after DeliverPending(1) (-want +got):\n%s", diff)
	}

	// Thread 2's entry is still queued and still delivers.
	m.DeliverPending(2)
	want = append(want, delivery{2, linux.SIGUSR1})
	if diff := cmp.Diff(want, r.deliveries); diff != "" {
		t.Fatalf("after DeliverPending(2) (-want +got):\n%s", diff)
	}
}

func TestDeliverPendingPreservesFIFOOrder(t *testing.T) {
	m := NewSignalManager()
	var r recorder

	for _, sig := range []linux.Signal{linux.SIGHUP, linux.SIGINT, linux.SIGTERM} {
		m.SetHandler(1, sig, CustomHandler(r.handler(1)))
	}
	m.Send(1, linux.SIGTERM)
	m.Send(1, linux.SIGHUP)
	m.Send(1, linux.SIGINT)
	r.deliveries = nil // drop the send-time deliveries

	m.DeliverPending(1)
	want := []delivery{{1, linux.SIGTERM}, {1, linux.SIGHUP}, {1, linux.SIGINT}}
	if diff := cmp.Diff(want, r.deliveries); diff != "" {
		t.Errorf("drain order (-want +got):\n%s", diff)
	}
}

func TestSetHandlerOverwrites(t *testing.T) {
	m := NewSignalManager()
	var r recorder

	m.SetHandler(1, linux.SIGUSR2, CustomHandler(r.handler(1)))
	m.SetHandler(1, linux.SIGUSR2, IgnoreHandler())
	m.Send(1, linux.SIGUSR2)
	m.DeliverPending(1)

	if len(r.deliveries) != 0 {
		t.Errorf("overwritten handler still invoked: %v", r.deliveries)
	}
}

func TestDefaultActionIsNoOp(t *testing.T) {
	m := NewSignalManager()

	// SIGCHLD and SIGCONT are explicitly ignored by default; every other
	// signal, including arbitrary numbers, currently has no implemented
	// default action either. None of these may panic or affect later
	// delivery.
	for _, sig := range []linux.Signal{
		linux.SIGCHLD, linux.SIGCONT, linux.SIGKILL, linux.SIGTERM,
		linux.SIGSEGV, linux.Signal(0), linux.Signal(99), linux.Signal(-3),
	} {
		m.Send(7, sig)
	}
	m.DeliverPending(7)

	if !m.pending.Empty() {
		t.Error("pending queue not drained")
	}
}

// A custom handler may call back into the manager during delivery.
func TestHandlerReentrancy(t *testing.T) {
	m := NewSignalManager()
	var r recorder

	m.SetHandler(1, linux.SIGUSR1, CustomHandler(func(sig linux.Signal) {
		r.deliveries = append(r.deliveries, delivery{1, sig})
		// Re-arm to ignore and raise a different signal on another
		// thread.
		m.SetHandler(1, linux.SIGUSR1, IgnoreHandler())
		m.Send(2, linux.SIGUSR2)
	}))
	m.SetHandler(2, linux.SIGUSR2, CustomHandler(r.handler(2)))

	m.Send(1, linux.SIGUSR1)

	want := []delivery{{1, linux.SIGUSR1}, {2, linux.SIGUSR2}}
	if diff := cmp.Diff(want, r.deliveries); diff != "" {
		t.Fatalf("after reentrant Send (-want +got):\n%s", diff)
	}

	// The original SIGUSR1 entry is still queued but its disposition is
	// now ignore; thread 2's entry from the nested Send still delivers.
	m.DeliverPending(1)
	m.DeliverPending(2)
	want = append(want, delivery{2, linux.SIGUSR2})
	if diff := cmp.Diff(want, r.deliveries); diff != "" {
		t.Fatalf("after drains (-want +got):\n%s", diff)
	}
}

func TestCleanupThread(t *testing.T) {
	m := NewSignalManager()
	var r recorder

	m.SetHandler(1, linux.SIGHUP, CustomHandler(r.handler(1)))
	m.SetHandler(2, linux.SIGHUP, CustomHandler(r.handler(2)))
	m.Send(1, linux.SIGHUP)
	m.Send(2, linux.SIGHUP)
	r.deliveries = nil

	m.CleanupThread(1)

	// Thread 1's entry is gone without delivery; thread 2 is untouched.
	m.DeliverPending(1)
	m.DeliverPending(2)
	want := []delivery{{2, linux.SIGHUP}}
	if diff := cmp.Diff(want, r.deliveries); diff != "" {
		t.Errorf("after cleanup (-want +got):\n%s", diff)
	}
}
