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

// Binary kern32 is a host-side harness for the kernel's process-bootstrap
// core. It inspects ELF32 executables, runs the synthetic boot demo and
// replays signal scenarios against the in-process kernel.
package main

import (
	"context"
	"flag"
	"io"
	"os"

	"github.com/google/subcommands"
	"kern32.dev/kern32/cmd/kern32/cmd"
	"kern32.dev/kern32/pkg/log"
)

var (
	// Debugging flags.
	debug          = flag.Bool("debug", false, "enable debug logging.")
	debugLogFormat = flag.String("debug-log-format", "text", "log format: text (default) or json.")
)

func main() {
	// Help and flags commands are generated automatically.
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")

	subcommands.Register(new(cmd.Boot), "")
	subcommands.Register(new(cmd.ELF), "")
	subcommands.Register(new(cmd.Signal), "")

	// All subcommands must be registered before flag parsing.
	flag.Parse()

	// Set up logging.
	log.SetTarget(newEmitter(*debugLogFormat, os.Stderr))
	if *debug {
		log.SetLevel(log.Debug)
	}

	os.Exit(int(subcommands.Execute(context.Background())))
}

func newEmitter(format string, logFile io.Writer) log.Emitter {
	switch format {
	case "text":
		return log.GoogleEmitter{Writer: &log.Writer{Next: logFile}}
	case "json":
		return log.JSONEmitter{Writer: &log.Writer{Next: logFile}}
	}
	cmd.Fatalf("invalid log format %q, must be 'text' or 'json'", format)
	panic("unreachable")
}
