package ir

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paritytech/revive-sub001/evm"
)

func liftCode(code []byte) (*blockBuilder, []Instruction, StackInfo) {
	b := newBlockBuilder(0, NewSymbolTable())
	offset := 0
	for _, ins := range evm.Decode(code) {
		translate(b, EvmInstruction{BytecodeOffset: offset, Instruction: ins})
		offset += ins.Length()
	}
	out, info := b.done()
	return b, out, info
}

// stackSlot returns the entry stack symbol at slot as created by b.
func stackSlot(t *testing.T, b *blockBuilder, slot int32) SymbolRef {
	t.Helper()
	ref, ok := b.arguments[slot]
	require.True(t, ok, "slot %d never read", slot)
	sym := b.symbols.Symbol(ref)
	require.Equal(t, StackAddress(slot), sym.Address)
	return ref
}

func assertStackInfo(t *testing.T, info StackInfo, arguments int, height int32, generates int) {
	t.Helper()
	assert.Equal(t, arguments, info.Arguments, "arguments")
	assert.Equal(t, height, info.Height, "height")
	assert.Len(t, info.Generates, generates, "generates")
}

func TestStackSlots(t *testing.T) {
	b := newBlockBuilder(0, NewSymbolTable())
	slots := func() []int32 { return []int32{b.slot(0), b.slot(1), b.slot(2)} }

	b.push(b.symbols.ConstantBytes([]byte{1}))
	assert.Equal(t, []int32{-1, 0, 1}, slots())

	b.pop()
	b.pop()
	assert.Equal(t, []int32{1, 2, 3}, slots())

	b.push(b.symbols.ConstantBytes([]byte{2}))
	b.push(b.symbols.ConstantBytes([]byte{3}))
	assert.Equal(t, []int32{-1, 0, 1}, slots())
}

func TestLiftPush(t *testing.T) {
	b, out, info := liftCode([]byte{0x60, 0x01})
	assert.Empty(t, out)
	assertStackInfo(t, info, 0, 1, 1)
	assert.Equal(t, b.symbols.ConstantBytes([]byte{1}), info.Generates[0])
}

func TestLiftAddOnEntryStack(t *testing.T) {
	b, out, info := liftCode([]byte{0x01})
	assertStackInfo(t, info, 2, -1, 1)

	require.Len(t, out, 1)
	add := out[0].(BinaryAssign)
	assert.Equal(t, Add, add.Operator)
	assert.Equal(t, stackSlot(t, b, 0), add.Y)
	assert.Equal(t, stackSlot(t, b, 1), add.Z)
	assert.Equal(t, add.X, info.Generates[0])
	assert.True(t, b.symbols.Symbol(add.X).IsTemporary())
}

func TestLiftDup(t *testing.T) {
	b, out, info := liftCode([]byte{0x83})
	assertStackInfo(t, info, 0, 1, 1)
	require.Len(t, out, 1)
	assert.Equal(t, Copy{X: info.Generates[0], Y: stackSlot(t, b, 3)}, out[0])
}

func TestLiftDupConstant(t *testing.T) {
	b, out, info := liftCode([]byte{0x60, 0x07, 0x80})
	assert.Empty(t, out)
	c := b.symbols.ConstantBytes([]byte{7})
	assert.Equal(t, []SymbolRef{c, c}, info.Generates)
}

func TestLiftSwapOnEntryStack(t *testing.T) {
	b, out, info := liftCode([]byte{0x93})
	assertStackInfo(t, info, 0, 0, 0)

	require.Len(t, out, 3)
	first, other := stackSlot(t, b, 0), stackSlot(t, b, 4)
	tmp := out[0].(Copy).X
	assert.Equal(t, []Instruction{
		Copy{X: tmp, Y: first},
		Copy{X: first, Y: other},
		Copy{X: other, Y: tmp},
	}, out)
}

func TestLiftSwapLocal(t *testing.T) {
	b, out, info := liftCode([]byte{0x60, 0x01, 0x60, 0x02, 0x90})
	assert.Empty(t, out)
	assert.Equal(t, []SymbolRef{
		b.symbols.ConstantBytes([]byte{2}),
		b.symbols.ConstantBytes([]byte{1}),
	}, info.Generates)
}

func TestLiftJump(t *testing.T) {
	b, out, info := liftCode([]byte{0x56})
	assertStackInfo(t, info, 1, -1, 0)
	assert.Equal(t, []Instruction{UnconditionalBranch{Target: stackSlot(t, b, 0)}}, out)
}

func TestLiftPopsAndPushes(t *testing.T) {
	_, out, info := liftCode([]byte{0x50, 0x50, 0x50, 0x50, 0x50, 0x60, 0x01, 0x60, 0x02})
	assert.Empty(t, out)
	assertStackInfo(t, info, 5, -3, 2)
}

func TestLiftFibonacci(t *testing.T) {
	// PUSH1 1, ADD, SWAP2, DUP1, SWAP4, ADD, SWAP2, PUSH1 0x0a, JUMP
	b, out, info := liftCode([]byte{0x60, 0x01, 0x01, 0x91, 0x80, 0x93, 0x01, 0x91, 0x60, 0x0a, 0x56})
	assertStackInfo(t, info, 1, 0, 1)
	require.Len(t, out, 10)

	assert.Equal(t, UnconditionalBranch{Target: b.symbols.ConstantBytes([]byte{0x0a})}, out[9])
	assert.Equal(t, out[7].(Copy).X, info.Generates[0])
	assert.Equal(t, Copy{X: stackSlot(t, b, 2), Y: out[6].(BinaryAssign).X}, out[8])
	assert.Equal(t, Copy{X: stackSlot(t, b, 3), Y: out[3].(Copy).X}, out[5])
	assert.Len(t, b.arguments, 3)
}

func TestLiftFoldsConstants(t *testing.T) {
	b, out, info := liftCode([]byte{0x60, 0x01, 0x60, 0x02, 0x01})
	assert.Empty(t, out)
	require.Len(t, info.Generates, 1)

	sym := b.symbols.Symbol(info.Generates[0])
	assert.True(t, sym.Kind.IsConstant())
	assert.Equal(t, uint64(3), sym.Kind.Value.Uint64())
	assert.Equal(t, Word(), sym.Type)
}

func TestLiftDoesNotFoldVariables(t *testing.T) {
	_, out, info := liftCode([]byte{0x60, 0x01, 0x01})
	require.Len(t, out, 1)
	assert.Equal(t, Add, out[0].(BinaryAssign).Operator)
	assertStackInfo(t, info, 1, 0, 1)
}

func TestDoneRejectsInconsistentSummary(t *testing.T) {
	b := newBlockBuilder(0, NewSymbolTable())
	b.height = 2
	assert.Panics(t, func() { b.done() })
}

func TestEvaluate(t *testing.T) {
	allOnes := new(uint256.Int).SetAllOne()
	minusOne := new(uint256.Int).Neg(uint256.NewInt(1))
	n := uint256.NewInt

	tests := []struct {
		op       Operator
		operands []*uint256.Int
		want     *uint256.Int
	}{
		{Add, []*uint256.Int{n(2), n(1)}, n(3)},
		{Add, []*uint256.Int{allOnes, n(1)}, n(0)},
		{Sub, []*uint256.Int{n(5), n(3)}, n(2)},
		{Sub, []*uint256.Int{n(0), n(1)}, allOnes},
		{Mul, []*uint256.Int{n(6), n(7)}, n(42)},
		{Div, []*uint256.Int{n(6), n(0)}, n(0)},
		{Div, []*uint256.Int{n(7), n(2)}, n(3)},
		{SDiv, []*uint256.Int{minusOne, n(1)}, minusOne},
		{Mod, []*uint256.Int{n(7), n(3)}, n(1)},
		{Mod, []*uint256.Int{n(7), n(0)}, n(0)},
		{Exp, []*uint256.Int{n(2), n(10)}, n(1024)},
		{SignExtend, []*uint256.Int{n(0), n(0xff)}, allOnes},
		{SignExtend, []*uint256.Int{n(0), n(0x7f)}, n(0x7f)},
		{LessThan, []*uint256.Int{n(1), n(2)}, n(1)},
		{GreaterThan, []*uint256.Int{n(1), n(2)}, n(0)},
		{SignedLessThan, []*uint256.Int{minusOne, n(1)}, n(1)},
		{SignedGreaterThan, []*uint256.Int{minusOne, n(1)}, n(0)},
		{Equal, []*uint256.Int{n(3), n(3)}, n(1)},
		{IsZero, []*uint256.Int{n(0)}, n(1)},
		{IsZero, []*uint256.Int{n(9)}, n(0)},
		{And, []*uint256.Int{n(0b1100), n(0b1010)}, n(0b1000)},
		{Or, []*uint256.Int{n(0b1100), n(0b1010)}, n(0b1110)},
		{Xor, []*uint256.Int{n(0b1100), n(0b1010)}, n(0b0110)},
		{Not, []*uint256.Int{n(0)}, allOnes},
		{Byte, []*uint256.Int{n(31), n(0xab)}, n(0xab)},
		{Byte, []*uint256.Int{n(30), n(0xab)}, n(0)},
		{Byte, []*uint256.Int{n(32), n(0xab)}, n(0)},
		{ShiftLeft, []*uint256.Int{n(1), n(1)}, n(2)},
		{ShiftLeft, []*uint256.Int{n(256), n(1)}, n(0)},
		{ShiftRight, []*uint256.Int{n(4), n(0x10)}, n(1)},
		{ShiftRight, []*uint256.Int{n(300), n(0x10)}, n(0)},
		{ShiftArithmeticRight, []*uint256.Int{n(1), n(4)}, n(2)},
		{ShiftArithmeticRight, []*uint256.Int{n(256), minusOne}, allOnes},
		{ShiftArithmeticRight, []*uint256.Int{n(256), n(4)}, n(0)},
	}
	for _, tt := range tests {
		got, ok := evaluate(tt.op, tt.operands)
		require.True(t, ok, tt.op.String())
		assert.Equal(t, tt.want.Hex(), got.Hex(), "%v %v", tt.op, tt.operands)
	}
}
