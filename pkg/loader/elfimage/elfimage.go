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

// Package elfimage constructs minimal well-formed ELF32 executable images in
// memory.
//
// There is no ring-3 transition in this kernel core, so "execution" of an
// image built here is simulated by extracting the zero-terminated payload
// from the first loadable segment. The package exists for tests and the boot
// demo; it is not a runtime component.
package elfimage

import (
	"bytes"
	"debug/elf"

	"kern32.dev/kern32/pkg/binary"
)

const (
	// DefaultEntry is the conventional x86-32 executable base address.
	DefaultEntry = 0x08048000

	// BSSSize is the fixed size of the read+write segment standing in for
	// uninitialized data.
	BSSSize = 0x1000

	headerSize     = 52
	progHeaderSize = 32
	phnum          = 2

	payloadOff = headerSize + phnum*progHeaderSize
)

// Build returns an ELF32 little-endian executable image with the given entry
// point and two loadable segments: a read+execute segment at the entry
// address holding payload plus a terminating NUL, and a read+write segment of
// BSSSize bytes with no file content.
func Build(entry uint32, payload []byte) []byte {
	textSize := uint32(len(payload)) + 1 // payload plus NUL

	// e_ident: magic, ELFCLASS32, ELFDATA2LSB, EV_CURRENT, no OS ABI.
	b := make([]byte, 0, payloadOff+int(textSize))
	b = append(b, elf.ELFMAG...)
	b = append(b, byte(elf.ELFCLASS32), byte(elf.ELFDATA2LSB), byte(elf.EV_CURRENT), 0)
	b = append(b, make([]byte, 8)...) // padding through e_ident[15]

	b = binary.AppendUint16(b, binary.LittleEndian, uint16(elf.ET_EXEC))    // e_type
	b = binary.AppendUint16(b, binary.LittleEndian, uint16(elf.EM_386))     // e_machine
	b = binary.AppendUint32(b, binary.LittleEndian, uint32(elf.EV_CURRENT)) // e_version
	b = binary.AppendUint32(b, binary.LittleEndian, entry)                  // e_entry
	b = binary.AppendUint32(b, binary.LittleEndian, headerSize)             // e_phoff
	b = binary.AppendUint32(b, binary.LittleEndian, 0)                      // e_shoff
	b = binary.AppendUint32(b, binary.LittleEndian, 0)                      // e_flags
	b = binary.AppendUint16(b, binary.LittleEndian, headerSize)             // e_ehsize
	b = binary.AppendUint16(b, binary.LittleEndian, progHeaderSize)         // e_phentsize
	b = binary.AppendUint16(b, binary.LittleEndian, phnum)                  // e_phnum
	b = binary.AppendUint16(b, binary.LittleEndian, 0)                      // e_shentsize
	b = binary.AppendUint16(b, binary.LittleEndian, 0)                      // e_shnum
	b = binary.AppendUint16(b, binary.LittleEndian, 0)                      // e_shstrndx

	// Program header 0: text, mapped read+execute at the entry point.
	b = appendProgHeader(b, progHeader{
		ptype:  elf.PT_LOAD,
		offset: payloadOff,
		vaddr:  entry,
		filesz: textSize,
		memsz:  textSize,
		flags:  elf.PF_R | elf.PF_X,
	})

	// Program header 1: data, read+write, nothing backing it in the file.
	b = appendProgHeader(b, progHeader{
		ptype:  elf.PT_LOAD,
		offset: 0,
		vaddr:  entry + BSSSize,
		filesz: 0,
		memsz:  BSSSize,
		flags:  elf.PF_R | elf.PF_W,
	})

	b = append(b, payload...)
	b = append(b, 0)
	return b
}

// HelloWorld returns the canonical demo image: entry at DefaultEntry,
// payload "Hello, World!".
func HelloWorld() []byte {
	return Build(DefaultEntry, []byte("Hello, World!"))
}

// ExtractString simulates executing a loaded segment by reading its content
// up to the first zero byte.
func ExtractString(data []byte) string {
	if i := bytes.IndexByte(data, 0); i >= 0 {
		return string(data[:i])
	}
	return string(data)
}

type progHeader struct {
	ptype  elf.ProgType
	offset uint32
	vaddr  uint32
	filesz uint32
	memsz  uint32
	flags  elf.ProgFlag
}

func appendProgHeader(b []byte, ph progHeader) []byte {
	b = binary.AppendUint32(b, binary.LittleEndian, uint32(ph.ptype))
	b = binary.AppendUint32(b, binary.LittleEndian, ph.offset)
	b = binary.AppendUint32(b, binary.LittleEndian, ph.vaddr)
	b = binary.AppendUint32(b, binary.LittleEndian, ph.vaddr) // p_paddr, unused
	b = binary.AppendUint32(b, binary.LittleEndian, ph.filesz)
	b = binary.AppendUint32(b, binary.LittleEndian, ph.memsz)
	b = binary.AppendUint32(b, binary.LittleEndian, uint32(ph.flags))
	b = binary.AppendUint32(b, binary.LittleEndian, 0x1000) // p_align
	return b
}
