// Package membuf implements the fixed-size, big-endian-addressable byte
// buffer shared by the minic virtual machine's program and memory segments.
package membuf

import (
	"encoding/binary"
	"fmt"

	"github.com/pschiffmann/minic/lang/numeric"
)

// RangeError reports an out-of-range access against a Buffer.
type RangeError struct {
	Address, Size, BufferLen int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("address %d (size %d) out of range for buffer of length %d", e.Address, e.Size, e.BufferLen)
}

// Buffer is a flat byte array of fixed length, never resized after
// construction. All multi-byte accessors use big-endian order.
type Buffer struct {
	data []byte
}

// New allocates a Buffer of the given size, all bytes zeroed.
func New(size int) *Buffer {
	return &Buffer{data: make([]byte, size)}
}

// Len returns the buffer's fixed size in bytes.
func (b *Buffer) Len() int { return len(b.data) }

// Bytes exposes the underlying storage directly, e.g. to load an encoded
// program image. Callers must not retain a reference beyond the Buffer's
// lifetime assumptions.
func (b *Buffer) Bytes() []byte { return b.data }

func (b *Buffer) bounds(addr, size int) error {
	if addr < 0 || size < 0 || addr+size > len(b.data) {
		return &RangeError{Address: addr, Size: size, BufferLen: len(b.data)}
	}
	return nil
}

// ReadByte reads a single raw byte, without number-type interpretation.
func (b *Buffer) ReadByte(addr int) (byte, error) {
	if err := b.bounds(addr, 1); err != nil {
		return 0, err
	}
	return b.data[addr], nil
}

// WriteByte writes a single raw byte.
func (b *Buffer) WriteByte(addr int, v byte) error {
	if err := b.bounds(addr, 1); err != nil {
		return err
	}
	b.data[addr] = v
	return nil
}

// ReadBytes copies n raw bytes starting at addr.
func (b *Buffer) ReadBytes(addr, n int) ([]byte, error) {
	if err := b.bounds(addr, n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b.data[addr:addr+n])
	return out, nil
}

// WriteBytes copies src into the buffer starting at addr.
func (b *Buffer) WriteBytes(addr int, src []byte) error {
	if err := b.bounds(addr, len(src)); err != nil {
		return err
	}
	copy(b.data[addr:addr+len(src)], src)
	return nil
}

// Read decodes a Number of the given type at addr, big-endian.
func (b *Buffer) Read(addr int, t numeric.Type) (numeric.Number, error) {
	size := t.SizeInBytes()
	if err := b.bounds(addr, size); err != nil {
		return numeric.Number{}, err
	}
	switch size {
	case 1:
		return numeric.Number{Type: t, Bits: uint64(b.data[addr])}, nil
	case 2:
		return numeric.Number{Type: t, Bits: uint64(binary.BigEndian.Uint16(b.data[addr:]))}, nil
	case 4:
		return numeric.Number{Type: t, Bits: uint64(binary.BigEndian.Uint32(b.data[addr:]))}, nil
	case 8:
		return numeric.Number{Type: t, Bits: binary.BigEndian.Uint64(b.data[addr:])}, nil
	default:
		return numeric.Number{}, fmt.Errorf("membuf: unsupported size %d", size)
	}
}

// Write encodes v as type t at addr, big-endian, truncating integers via
// the type's bitmask (floats are stored as their IEEE-754 bit pattern). v
// is first converted to t with numeric.Cast, so its own Type need not
// match t.
func (b *Buffer) Write(addr int, t numeric.Type, v numeric.Number) error {
	size := t.SizeInBytes()
	if err := b.bounds(addr, size); err != nil {
		return err
	}
	n := numeric.Cast(v, t)
	switch size {
	case 1:
		b.data[addr] = byte(n.Bits)
	case 2:
		binary.BigEndian.PutUint16(b.data[addr:], uint16(n.Bits))
	case 4:
		binary.BigEndian.PutUint32(b.data[addr:], uint32(n.Bits))
	case 8:
		binary.BigEndian.PutUint64(b.data[addr:], n.Bits)
	default:
		return fmt.Errorf("membuf: unsupported size %d", size)
	}
	return nil
}
