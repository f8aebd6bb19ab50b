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

package log

import (
	"fmt"
	"strings"
	"testing"
	"time"
)

type testWriter struct {
	lines []string
	fail  bool
}

func (w *testWriter) Write(bytes []byte) (int, error) {
	if w.fail {
		return 0, fmt.Errorf("simulated failure")
	}
	w.lines = append(w.lines, string(bytes))
	return len(bytes), nil
}

func TestDropMessages(t *testing.T) {
	tw := &testWriter{}
	w := Writer{Next: tw}
	if _, err := w.Write([]byte("line 1\n")); err != nil {
		t.Fatalf("Write failed, err: %v", err)
	}

	tw.fail = true
	if _, err := w.Write([]byte("error\n")); err == nil {
		t.Fatalf("Write should have failed")
	}
	if _, err := w.Write([]byte("error\n")); err == nil {
		t.Fatalf("Write should have failed")
	}

	tw.fail = false
	if _, err := w.Write([]byte("line 2\n")); err != nil {
		t.Fatalf("Write failed, err: %v", err)
	}

	want := []string{
		"line 1\n",
		"\n*** Dropped 2 log messages ***\n",
		"line 2\n",
	}
	if len(tw.lines) != len(want) {
		t.Fatalf("got %d lines (%q), want %d (%q)", len(tw.lines), tw.lines, len(want), want)
	}
	for i, l := range tw.lines {
		if l != want[i] {
			t.Errorf("line %d doesn't match, got: %q, want: %q", i, l, want[i])
		}
	}
}

func TestLevels(t *testing.T) {
	tw := &testWriter{}
	l := BasicLogger{Level: Info, Emitter: &Writer{Next: tw}}

	l.Debugf("dropped")
	l.Infof("hello %s", "world")
	l.Warningf("careful")

	if len(tw.lines) != 2 {
		t.Fatalf("got %d lines (%q), want 2", len(tw.lines), tw.lines)
	}
	if tw.lines[0] != "hello world\n" {
		t.Errorf("info line = %q, want %q", tw.lines[0], "hello world\n")
	}

	if l.IsLogging(Debug) {
		t.Error("IsLogging(Debug) = true at Info level")
	}
	l.SetLevel(Debug)
	if !l.IsLogging(Debug) {
		t.Error("IsLogging(Debug) = false after SetLevel(Debug)")
	}
	l.Debugf("kept")
	if got := tw.lines[len(tw.lines)-1]; got != "kept\n" {
		t.Errorf("debug line = %q, want %q", got, "kept\n")
	}
}

func TestGoogleEmitterFormat(t *testing.T) {
	tw := &testWriter{}
	e := GoogleEmitter{&Writer{Next: tw}}
	e.Emit(0, Warning, time.Date(2025, 6, 1, 12, 30, 45, 123456000, time.UTC), "bad %s", "input")

	if len(tw.lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(tw.lines))
	}
	line := tw.lines[0]
	if !strings.HasPrefix(line, "W0601 12:30:45.123456") {
		t.Errorf("unexpected header: %q", line)
	}
	if !strings.HasSuffix(line, "bad input\n") {
		t.Errorf("unexpected message: %q", line)
	}
}

func TestRateLimitedLogger(t *testing.T) {
	tw := &testWriter{}
	base := &BasicLogger{Level: Info, Emitter: &Writer{Next: tw}}
	rl := RateLimitedLogger(base, time.Hour)

	rl.Infof("first")
	rl.Infof("suppressed")
	rl.Infof("suppressed")

	if len(tw.lines) != 1 {
		t.Fatalf("got %d lines (%q), want 1", len(tw.lines), tw.lines)
	}
}
