// Package bytecode holds the binary body of a function: a growable byte
// buffer with little-endian fixed-width accessors, the opcode table, and the
// instruction codec and disassembler built on top of it.
package bytecode

import "encoding/binary"

// Bytecode is an append-only byte buffer. Reads are addressed by byte
// offset; reading past the end is a caller error and panics.
type Bytecode struct {
	buf []byte
}

// New returns an empty body.
func New() *Bytecode { return &Bytecode{} }

// FromBytes wraps a copy of b.
func FromBytes(b []byte) *Bytecode {
	buf := make([]byte, len(b))
	copy(buf, b)
	return &Bytecode{buf: buf}
}

func (b *Bytecode) WriteU8(v uint8) *Bytecode {
	b.buf = append(b.buf, v)
	return b
}

func (b *Bytecode) WriteU16(v uint16) *Bytecode {
	b.buf = binary.LittleEndian.AppendUint16(b.buf, v)
	return b
}

func (b *Bytecode) WriteU32(v uint32) *Bytecode {
	b.buf = binary.LittleEndian.AppendUint32(b.buf, v)
	return b
}

func (b *Bytecode) ReadU8(offset int) uint8 { return b.buf[offset] }

func (b *Bytecode) ReadU16(offset int) uint16 {
	return binary.LittleEndian.Uint16(b.buf[offset : offset+2])
}

func (b *Bytecode) ReadU32(offset int) uint32 {
	return binary.LittleEndian.Uint32(b.buf[offset : offset+4])
}

// Len returns the number of bytes written so far.
func (b *Bytecode) Len() int {
	if b == nil {
		return 0
	}
	return len(b.buf)
}

func (b *Bytecode) IsEmpty() bool { return b.Len() == 0 }

// Bytes exposes the underlying buffer. Callers must not modify it.
func (b *Bytecode) Bytes() []byte {
	if b == nil {
		return nil
	}
	return b.buf
}

// Equal reports whether both bodies hold the same bytes.
func (b *Bytecode) Equal(o *Bytecode) bool {
	x, y := b.Bytes(), o.Bytes()
	if len(x) != len(y) {
		return false
	}
	for i := range x {
		if x[i] != y[i] {
			return false
		}
	}
	return true
}
