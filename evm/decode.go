package evm

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/core/vm"
)

// pushSize returns the number of immediate bytes following op.
func pushSize(op vm.OpCode) int {
	if op.IsPush() {
		return int(op - vm.PUSH0)
	}
	return 0
}

// Decode splits raw bytecode into instructions. PUSHn consumes the next n
// bytes as its immediate; push data running past the end of the code is
// padded with zeros, matching how the interpreter reads it.
func Decode(code []byte) []Instruction {
	instructions := make([]Instruction, 0, len(code))
	for pc := 0; pc < len(code); {
		op := vm.OpCode(code[pc])
		size := pushSize(op)
		ins := Instruction{Op: op}
		if size > 0 {
			ins.Immediate = make([]byte, size)
			start := pc + 1
			if start < len(code) {
				end := start + size
				if end > len(code) {
					end = len(code)
				}
				copy(ins.Immediate, code[start:end])
			}
		}
		instructions = append(instructions, ins)
		pc += 1 + size
	}
	return instructions
}

// Encode is the inverse of Decode for well-formed instruction lists.
func Encode(instructions []Instruction) []byte {
	var code []byte
	for _, ins := range instructions {
		code = append(code, byte(ins.Op))
		code = append(code, ins.Immediate...)
	}
	return code
}

// Disassemble renders one instruction per line, prefixed with its offset.
func Disassemble(instructions []Instruction) string {
	var (
		sb     strings.Builder
		offset int
	)
	for _, ins := range instructions {
		fmt.Fprintf(&sb, "0x%04x: %v\n", offset, ins)
		offset += ins.Length()
	}
	return sb.String()
}
