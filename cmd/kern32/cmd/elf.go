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
	"os"

	"github.com/google/subcommands"
	"kern32.dev/kern32/pkg/loader"
	"kern32.dev/kern32/pkg/loader/elfimage"
)

// ELF implements subcommands.Command for the "elf" command.
type ELF struct {
	strings bool
}

// Name implements subcommands.Command.Name.
func (*ELF) Name() string {
	return "elf"
}

// Synopsis implements subcommands.Command.Synopsis.
func (*ELF) Synopsis() string {
	return "validates an ELF32 executable and dumps its loadable segments"
}

// Usage implements subcommands.Command.Usage.
func (*ELF) Usage() string {
	return `elf [flags] <file> - validate an ELF32 executable and dump its loadable segments
`
}

// SetFlags implements subcommands.Command.SetFlags.
func (e *ELF) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&e.strings, "strings", false, "print the NUL-terminated string at the start of each segment")
}

// Execute implements subcommands.Command.Execute.
func (e *ELF) Execute(_ context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}

	path := f.Arg(0)
	b, err := os.ReadFile(path)
	if err != nil {
		Fatalf("error reading %q: %v", path, err)
	}
	image, err := loader.Load(b)
	if err != nil {
		Fatalf("error loading %q: %v", path, err)
	}

	fmt.Printf("%s: ELF32 executable, entry %#010x, %d loadable segments\n", path, image.Entry, len(image.Segments))
	for i, seg := range image.Segments {
		fmt.Printf("  [%d] vaddr %#010x filesz %#x memsz %#x flags %v data %d bytes\n", i, seg.Vaddr, seg.Filesz, seg.Memsz, seg.Flags, len(seg.Data))
		if e.strings {
			if s := elfimage.ExtractString(seg.Data); s != "" {
				fmt.Printf("      string %q\n", s)
			}
		}
	}
	return subcommands.ExitSuccess
}
