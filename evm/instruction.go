// Package evm holds the decoded EVM opcode stream consumed by the IR builder.
//
// The opcode type is go-ethereum's vm.OpCode, so mnemonics and the push
// classification follow the reference interpreter.
package evm

import (
	"fmt"

	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/holiman/uint256"
)

// Instruction is one decoded opcode together with its immediate data.
type Instruction struct {
	Op        vm.OpCode
	Immediate []byte // PUSHn payload, nil for every other opcode
}

// Op returns an instruction without immediate data.
func Op(op vm.OpCode) Instruction {
	return Instruction{Op: op}
}

// Push returns the smallest PUSHn instruction carrying value. An empty value
// yields PUSH0. Values longer than 32 bytes panic.
func Push(value []byte) Instruction {
	if len(value) > 32 {
		panic(fmt.Sprintf("push immediate too long: %d bytes", len(value)))
	}
	return Instruction{
		Op:        vm.PUSH0 + vm.OpCode(len(value)),
		Immediate: value,
	}
}

// Length returns the number of code bytes the instruction occupies.
func (i Instruction) Length() int {
	return 1 + len(i.Immediate)
}

// Value returns the immediate interpreted as a big-endian word.
func (i Instruction) Value() *uint256.Int {
	return new(uint256.Int).SetBytes(i.Immediate)
}

// IsPush reports whether the instruction is one of PUSH0..PUSH32.
func (i Instruction) IsPush() bool {
	return i.Op.IsPush()
}

// IsTerminator reports whether the instruction ends execution.
func (i Instruction) IsTerminator() bool {
	switch i.Op {
	case vm.STOP, vm.RETURN, vm.REVERT, vm.INVALID, vm.SELFDESTRUCT:
		return true
	}
	return false
}

// IsBlockEnd reports whether control does not simply continue with the next
// instruction, i.e. terminators and jumps.
func (i Instruction) IsBlockEnd() bool {
	return i.Op == vm.JUMP || i.Op == vm.JUMPI || i.IsTerminator()
}

func (i Instruction) String() string {
	if i.IsPush() && i.Op != vm.PUSH0 {
		return fmt.Sprintf("%v 0x%x", i.Op, i.Immediate)
	}
	return i.Op.String()
}
