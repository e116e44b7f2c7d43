// Package vm implements the bytecode compiler and stack machine: a
// single-pass Pratt parser emits opcodes into a Chunk, which the VM's
// fetch-decode-execute loop then runs.
package vm

import (
	"fmt"

	"github.com/arfeld/wisp/internal/value"
)

const maxConstants = 256

// Chunk is a compiled unit: bytecode, a per-byte source line map, and a
// deduplicated constant pool.
type Chunk struct {
	Code      []byte
	Lines     []int
	Constants []value.Value
}

// Write appends a single byte tagged with its source line.
func (c *Chunk) Write(b byte, line int) {
	c.Code = append(c.Code, b)
	c.Lines = append(c.Lines, line)
}

// WriteOp appends an opcode.
func (c *Chunk) WriteOp(op OpCode, line int) {
	c.Write(byte(op), line)
}

// AddConstant interns v into the constant pool (by value equality) and
// returns its index, or an error if the pool has reached its 256-entry
// cap.
func (c *Chunk) AddConstant(v value.Value) (byte, error) {
	for i, existing := range c.Constants {
		if existing.Kind() == v.Kind() && existing.Equal(v) {
			return byte(i), nil
		}
	}
	if len(c.Constants) >= maxConstants {
		return 0, fmt.Errorf("too many constants in one chunk")
	}
	c.Constants = append(c.Constants, v)
	return byte(len(c.Constants) - 1), nil
}
