package ir

import "fmt"

// Range is a half-open interval [Start, End) of opcode indices.
type Range struct {
	Start int
	End   int
}

func (r Range) Len() int            { return r.End - r.Start }
func (r Range) Empty() bool         { return r.End <= r.Start }
func (r Range) Contains(i int) bool { return i >= r.Start && i < r.End }
func (r Range) String() string      { return fmt.Sprintf("%d..%d", r.Start, r.End) }

// StackInfo summarizes how a lifted block uses the EVM stack: it consumes
// Arguments entries of the stack it is entered with, changes the height by
// Height and leaves Generates on top, bottom first. Arguments+Height always
// equals len(Generates).
type StackInfo struct {
	Arguments int
	Generates []SymbolRef
	Height    int32
}

// BasicBlock is a straight-line run of opcodes and the TAC lowered from them.
type BasicBlock struct {
	Opcodes      Range
	Instructions []Instruction
	StackInfo    StackInfo
	// Lifted is set once the lifter has rewritten the block.
	Lifted bool
}

func newBasicBlock(start int) *BasicBlock {
	return &BasicBlock{Opcodes: Range{Start: start, End: start}}
}

// Clone returns a copy of the block that shares no mutable state with b.
func (b *BasicBlock) Clone() *BasicBlock {
	c := *b
	c.Instructions = append([]Instruction(nil), b.Instructions...)
	c.StackInfo.Generates = append([]SymbolRef(nil), b.StackInfo.Generates...)
	return &c
}
