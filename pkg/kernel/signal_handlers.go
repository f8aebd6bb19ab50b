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
)

// SignalAct selects among the ways a signal can be disposed of.
type SignalAct int

const (
	// SignalActDefault specifies that the kernel-defined default behavior
	// for the signal should be taken.
	SignalActDefault SignalAct = iota

	// SignalActIgnore specifies that the signal should be dropped
	// silently.
	SignalActIgnore

	// SignalActHandler specifies that a registered callback handles the
	// signal.
	SignalActHandler
)

// SignalHandlerFunc is a custom signal handler. It is invoked synchronously
// on the delivering context with the signal number, and may itself call back
// into the SignalManager.
type SignalHandlerFunc func(sig linux.Signal)

// SignalHandler is the disposition stored for one (thread, signal) pair.
// The zero value is the default disposition.
type SignalHandler struct {
	// Act is the disposition kind.
	Act SignalAct

	// Handler is the callback consulted when Act is SignalActHandler; it
	// is nil for the other kinds.
	Handler SignalHandlerFunc
}

// DefaultHandler returns the default disposition.
func DefaultHandler() SignalHandler {
	return SignalHandler{Act: SignalActDefault}
}

// IgnoreHandler returns the disposition that drops the signal silently.
func IgnoreHandler() SignalHandler {
	return SignalHandler{Act: SignalActIgnore}
}

// CustomHandler returns a disposition that invokes f on delivery.
func CustomHandler(f SignalHandlerFunc) SignalHandler {
	return SignalHandler{Act: SignalActHandler, Handler: f}
}
