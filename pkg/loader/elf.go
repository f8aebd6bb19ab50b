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

// Package loader validates ELF32 executable images and extracts the
// description of what must be mapped into a new process's address space.
//
// The loader is pure: it reads only the provided buffer, performs no I/O and
// keeps no state. Mapping the returned segments at their virtual addresses,
// zero-filling the Memsz-Filesz tail and applying the permission flags is the
// address-space mapper's job, not the loader's.
package loader

import (
	"debug/elf"
	"errors"

	"kern32.dev/kern32/pkg/binary"
	"kern32.dev/kern32/pkg/log"
)

// Load rejects malformed images with one of these errors. A rejection is
// always total: there is no partially-populated Image.
var (
	// ErrTooSmall indicates the buffer cannot hold an ELF32 header.
	ErrTooSmall = errors.New("image smaller than ELF32 header")

	// ErrNotELF indicates the ELF magic is missing.
	ErrNotELF = errors.New("image missing ELF magic")

	// ErrNot32Bit indicates an ELF class other than ELFCLASS32.
	ErrNot32Bit = errors.New("image not 32-bit ELF")

	// ErrNotLittleEndian indicates a data encoding other than ELFDATA2LSB.
	ErrNotLittleEndian = errors.New("image not little-endian ELF")

	// ErrNotExecutable indicates an ELF type other than ET_EXEC.
	ErrNotExecutable = errors.New("image not an executable ELF")
)

// ELF32 header layout. The ELF32 header is 52 bytes; each program header
// table entry spans at least 32 bytes, of which the first 28 are interpreted.
const (
	headerSize = 52

	// ELF32 header field offsets.
	typeOff      = 16
	entryOff     = 24
	phoffOff     = 28
	phentsizeOff = 42
	phnumOff     = 44

	// Program header entry field offsets, relative to the entry base.
	pTypeOff   = 0
	pOffsetOff = 4
	pVaddrOff  = 8
	pFileszOff = 16
	pMemszOff  = 20
	pFlagsOff  = 24

	progHeaderSize = 32
)

// Segment describes one loadable (PT_LOAD) program header entry.
//
// Filesz and Memsz are the values declared by the image. Memsz >= Filesz is
// expected of well-formed input but deliberately not enforced; the mapper
// zero-fills Memsz-Filesz bytes after the copied data.
type Segment struct {
	// Type is the program header type; only PT_LOAD entries are retained.
	Type elf.ProgType

	// Vaddr is the virtual address at which the segment content must be
	// placed.
	Vaddr uint32

	// Filesz is the number of content bytes the image declares for this
	// segment.
	Filesz uint32

	// Memsz is the number of bytes the segment occupies in memory.
	Memsz uint32

	// Flags holds the PF_R/PF_W/PF_X permission bits.
	Flags elf.ProgFlag

	// Data is the segment content copied out of the image. Its length is
	// min(Filesz, bytes available at the segment's file offset): a
	// truncated image yields short Data, not an error.
	Data []byte
}

// Image is the result of a successful Load: the entry point plus the PT_LOAD
// segments in program-header table order.
type Image struct {
	// Entry is the virtual address of the first instruction.
	Entry uint32

	// Segments holds the loadable segments, non-loadable entries dropped.
	Segments []Segment
}

// Load validates b as an ELF32 little-endian executable and extracts its
// loadable segments.
//
// All multi-byte fields are read as unsigned little-endian values; addresses
// such as the conventional 0x08048000 executable base have the high bit of
// their upper byte clear but segment addresses near the top of the address
// space do not, so no field may pass through a signed type.
func Load(b []byte) (Image, error) {
	if len(b) < headerSize {
		log.Warningf("Image rejected: %d bytes, ELF32 header needs %d", len(b), headerSize)
		return Image{}, ErrTooSmall
	}
	if string(b[:len(elf.ELFMAG)]) != elf.ELFMAG {
		log.Warningf("Image rejected: bad magic %#x", b[:4])
		return Image{}, ErrNotELF
	}
	if elf.Class(b[elf.EI_CLASS]) != elf.ELFCLASS32 {
		log.Warningf("Image rejected: class %v, want ELFCLASS32", elf.Class(b[elf.EI_CLASS]))
		return Image{}, ErrNot32Bit
	}
	if elf.Data(b[elf.EI_DATA]) != elf.ELFDATA2LSB {
		log.Warningf("Image rejected: data encoding %v, want ELFDATA2LSB", elf.Data(b[elf.EI_DATA]))
		return Image{}, ErrNotLittleEndian
	}
	if t := elf.Type(binary.Uint16(b, typeOff)); t != elf.ET_EXEC {
		log.Warningf("Image rejected: type %v, want ET_EXEC", t)
		return Image{}, ErrNotExecutable
	}

	info := Image{
		Entry: binary.Uint32(b, entryOff),
	}
	phoff := binary.Uint32(b, phoffOff)
	phentsize := binary.Uint16(b, phentsizeOff)
	phnum := binary.Uint16(b, phnumOff)

	for i := uint32(0); i < uint32(phnum); i++ {
		// 64-bit offsets here: the header fields are untrusted and the
		// bound checks must not wrap.
		off := uint64(phoff) + uint64(i)*uint64(phentsize)
		need := uint64(phentsize)
		if need < progHeaderSize {
			need = progHeaderSize
		}
		if off+need > uint64(len(b)) {
			// A partial trailing table terminates the walk; it is
			// not an error.
			log.Debugf("Program header %d/%d extends beyond image, stopping", i, phnum)
			break
		}
		base := uint32(off)

		ptype := elf.ProgType(binary.Uint32(b, base+pTypeOff))
		if ptype != elf.PT_LOAD {
			// Stack, note, dynamic and other segment kinds are not
			// mapped by this kernel.
			continue
		}

		offset := binary.Uint32(b, base+pOffsetOff)
		filesz := binary.Uint32(b, base+pFileszOff)

		// Copy up to Filesz content bytes, clamped to the image.
		// Short data is defined behavior for truncated images.
		start := uint64(offset)
		if start > uint64(len(b)) {
			start = uint64(len(b))
		}
		end := uint64(offset) + uint64(filesz)
		if end > uint64(len(b)) {
			end = uint64(len(b))
		}
		data := make([]byte, end-start)
		copy(data, b[start:end])

		info.Segments = append(info.Segments, Segment{
			Type:   ptype,
			Vaddr:  binary.Uint32(b, base+pVaddrOff),
			Filesz: filesz,
			Memsz:  binary.Uint32(b, base+pMemszOff),
			Flags:  elf.ProgFlag(binary.Uint32(b, base+pFlagsOff)),
			Data:   data,
		})
	}

	log.Debugf("Loaded ELF32 image: entry %#x, %d loadable segments", info.Entry, len(info.Segments))
	return info, nil
}
