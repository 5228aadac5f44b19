package ir

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGlobalIsMemoized(t *testing.T) {
	symbols := NewSymbolTable()
	a := symbols.Global(Memory)
	b := symbols.Global(Memory)
	c := symbols.Global(CallData)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, 2, symbols.Len())
	assert.Equal(t, GlobalScope, symbols.Scope(a))
}

func TestTemporaryIsFresh(t *testing.T) {
	symbols := NewSymbolTable()
	a := symbols.Temporary(4)
	b := symbols.Temporary(4)

	assert.NotEqual(t, a, b)
	assert.Equal(t, symbols.Symbol(a), symbols.Symbol(b))
	assert.Equal(t, Word(), symbols.Symbol(a).Type)
	assert.True(t, symbols.Symbol(a).IsTemporary())
	assert.Equal(t, []SymbolRef{a, b}, symbols.SymbolsIn(4))
	assert.Empty(t, symbols.SymbolsIn(5))
}

func TestConstantsKeyedByTypeAndValue(t *testing.T) {
	symbols := NewSymbolTable()
	one := uint256.NewInt(1)

	short := symbols.ConstantBytes([]byte{0x01})
	long := symbols.ConstantBytes(append(make([]byte, 31), 0x01))
	again := symbols.Constant(one, Bytes(1))

	assert.Equal(t, short, again)
	assert.NotEqual(t, short, long)
	assert.Equal(t, Bytes(1), symbols.Symbol(short).Type)
	assert.Equal(t, Bytes(32), symbols.Symbol(long).Type)
	assert.Equal(t, symbols.Symbol(short).Kind.Value, symbols.Symbol(long).Kind.Value)
	assert.NotEqual(t, short, symbols.Constant(uint256.NewInt(2), Bytes(1)))
}

func TestReplaceTypeIsShared(t *testing.T) {
	symbols := NewSymbolTable()
	ref := symbols.Temporary(0)
	alias := ref

	symbols.ReplaceType(ref, Bool())
	assert.Equal(t, Bool(), symbols.Symbol(alias).Type)
	assert.Equal(t, TemporaryAddress(), symbols.Symbol(alias).Address)
	assert.Equal(t, Variable(), symbols.Symbol(alias).Kind)
}

func TestReplaceTypeOfConstantKeepsIndexConsistent(t *testing.T) {
	symbols := NewSymbolTable()
	one := uint256.NewInt(1)
	ref := symbols.Constant(one, Word())

	symbols.ReplaceType(ref, Pointer())
	assert.Equal(t, ref, symbols.Constant(one, Pointer()))
	assert.NotEqual(t, ref, symbols.Constant(one, Word()))
}

func TestUnknownSymbolPanics(t *testing.T) {
	symbols := NewSymbolTable()
	symbols.Temporary(0)

	assert.Panics(t, func() { symbols.Symbol(1) })
	assert.Panics(t, func() { symbols.Symbol(-1) })
	assert.Panics(t, func() { symbols.ReplaceType(7, Bool()) })
}

func TestGlobalTypesAndKinds(t *testing.T) {
	for g := Global(0); g < globalCount; g++ {
		assert.NotEmpty(t, g.String())
		switch g {
		case Stack, CallData, Memory, ReturnData:
			assert.Equal(t, KindPointer, g.Kind().Class, g.String())
			assert.Equal(t, Pointer(), g.Type(), g.String())
		case StackHeight:
			assert.Equal(t, KindVariable, g.Kind().Class)
			assert.Equal(t, UInt(PointerSize), g.Type())
		default:
			assert.Equal(t, KindFunction, g.Kind().Class, g.String())
			assert.Equal(t, Word(), g.Type(), g.String())
		}
	}
	assert.False(t, Call.Pure())
	assert.False(t, SStore.Pure())
	assert.True(t, Sha3.Pure())
}

func TestFormatSymbols(t *testing.T) {
	symbols := NewSymbolTable()
	tmp := symbols.Temporary(0)
	mem := symbols.Global(Memory)
	c := symbols.ConstantBytes([]byte{0x05})
	slot := symbols.Insert(0, Symbol{Address: StackAddress(2), Type: Word(), Kind: Variable()})

	assert.Equal(t, "$0_tmp", symbols.Format(tmp))
	assert.Equal(t, "*$1_Memory", symbols.Format(mem))
	assert.Equal(t, "bytes1 $2_tmp := 0x5", symbols.Format(c))
	assert.Equal(t, "$3_stack[2]", symbols.Format(slot))

	ins := BinaryAssign{X: tmp, Y: c, Operator: Add, Z: slot}
	assert.Equal(t, "$0_tmp = bytes1 $2_tmp := 0x5 Add $3_stack[2]", symbols.FormatInstruction(ins))
	assert.Equal(t, "Return($0_tmp, $3_stack[2])",
		symbols.FormatInstruction(Procedure{Symbol: Return, Parameters: []SymbolRef{tmp, slot}}))
}

func TestCloneIsIndependent(t *testing.T) {
	symbols := NewSymbolTable()
	ref := symbols.Temporary(0)
	clone := symbols.clone()

	clone.ReplaceType(ref, Bool())
	clone.Temporary(0)
	require.Equal(t, 1, symbols.Len())
	assert.Equal(t, Word(), symbols.Symbol(ref).Type)
	assert.Len(t, symbols.SymbolsIn(0), 1)
	assert.Len(t, clone.SymbolsIn(0), 2)
}
