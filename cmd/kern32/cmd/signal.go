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

package cmd

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/subcommands"
	"kern32.dev/kern32/pkg/abi/linux"
	"kern32.dev/kern32/pkg/kernel"
)

// Signal implements subcommands.Command for the "signal" command. It replays
// a signal scenario against a fresh kernel: install one disposition, send the
// listed signals and drain the pending queue.
type Signal struct {
	tid         int
	disposition string
}

// Name implements subcommands.Command.Name.
func (*Signal) Name() string {
	return "signal"
}

// Synopsis implements subcommands.Command.Synopsis.
func (*Signal) Synopsis() string {
	return "sends signals to a thread and drains its pending queue"
}

// Usage implements subcommands.Command.Usage.
func (*Signal) Usage() string {
	return `signal [flags] <signal>... - send signals to a thread and drain its pending queue
`
}

// SetFlags implements subcommands.Command.SetFlags.
func (s *Signal) SetFlags(f *flag.FlagSet) {
	f.IntVar(&s.tid, "tid", int(kernel.InitTID), "thread to signal")
	f.StringVar(&s.disposition, "disposition", "handle", "disposition installed for the listed signals: handle, ignore or default")
}

// Execute implements subcommands.Command.Execute.
func (s *Signal) Execute(_ context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	if f.NArg() == 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}

	tid := kernel.ThreadID(s.tid)
	sigs := make([]linux.Signal, 0, f.NArg())
	for _, arg := range f.Args() {
		sig, err := parseSignal(arg)
		if err != nil {
			Fatalf("%v", err)
		}
		sigs = append(sigs, sig)
	}

	k := kernel.New()
	for _, sig := range sigs {
		switch s.disposition {
		case "handle":
			k.Signals().SetHandler(tid, sig, kernel.CustomHandler(func(sig linux.Signal) {
				fmt.Printf("thread %v handled %v\n", tid, sig)
			}))
		case "ignore":
			k.Signals().SetHandler(tid, sig, kernel.IgnoreHandler())
		case "default":
			// Leave the disposition unset.
		default:
			Fatalf("invalid disposition %q, must be 'handle', 'ignore' or 'default'", s.disposition)
		}
	}

	// Each signal is delivered once at send time and again when the
	// thread's queue is drained below.
	for _, sig := range sigs {
		fmt.Printf("sending %v to thread %v\n", sig, tid)
		k.Signals().Send(tid, sig)
	}
	fmt.Printf("resuming thread %v\n", tid)
	k.ResumeThread(tid)
	return subcommands.ExitSuccess
}

func parseSignal(s string) (linux.Signal, error) {
	if n, err := strconv.Atoi(s); err == nil {
		sig := linux.Signal(n)
		if !sig.IsValid() {
			return -1, fmt.Errorf("unknown signal %q", s)
		}
		return sig, nil
	}
	if sig, ok := signalMap[strings.TrimPrefix(strings.ToUpper(s), "SIG")]; ok {
		return sig, nil
	}
	return -1, fmt.Errorf("unknown signal %q", s)
}

var signalMap = map[string]linux.Signal{
	"ABRT":   linux.SIGABRT,
	"ALRM":   linux.SIGALRM,
	"BUS":    linux.SIGBUS,
	"CHLD":   linux.SIGCHLD,
	"CONT":   linux.SIGCONT,
	"FPE":    linux.SIGFPE,
	"HUP":    linux.SIGHUP,
	"ILL":    linux.SIGILL,
	"INT":    linux.SIGINT,
	"IO":     linux.SIGIO,
	"KILL":   linux.SIGKILL,
	"PIPE":   linux.SIGPIPE,
	"PROF":   linux.SIGPROF,
	"PWR":    linux.SIGPWR,
	"QUIT":   linux.SIGQUIT,
	"SEGV":   linux.SIGSEGV,
	"STKFLT": linux.SIGSTKFLT,
	"STOP":   linux.SIGSTOP,
	"SYS":    linux.SIGSYS,
	"TERM":   linux.SIGTERM,
	"TRAP":   linux.SIGTRAP,
	"TSTP":   linux.SIGTSTP,
	"TTIN":   linux.SIGTTIN,
	"TTOU":   linux.SIGTTOU,
	"URG":    linux.SIGURG,
	"USR1":   linux.SIGUSR1,
	"USR2":   linux.SIGUSR2,
	"VTALRM": linux.SIGVTALRM,
	"WINCH":  linux.SIGWINCH,
	"XCPU":   linux.SIGXCPU,
	"XFSZ":   linux.SIGXFSZ,
}
