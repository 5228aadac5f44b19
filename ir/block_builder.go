package ir

import (
	"github.com/holiman/uint256"
)

// blockBuilder re-translates the opcodes of one block against a symbolic
// stack local to the block. Values pushed inside the block live on the local
// stack; reads below it refer to the stack the block was entered with, as
// Stack(slot) symbols where slot 0 is the entry top of stack.
type blockBuilder struct {
	node    NodeIndex
	symbols *SymbolTable
	out     []Instruction

	stack []SymbolRef
	// borrows counts the entry stack entries popped so far.
	borrows int
	// arguments caches the Stack(slot) symbol of each entry slot read.
	arguments map[int32]SymbolRef
	height    int32
}

func newBlockBuilder(node NodeIndex, symbols *SymbolTable) *blockBuilder {
	return &blockBuilder{
		node:      node,
		symbols:   symbols,
		arguments: make(map[int32]SymbolRef),
	}
}

func (b *blockBuilder) table() *SymbolTable     { return b.symbols }
func (b *blockBuilder) temporary() SymbolRef    { return b.symbols.Temporary(b.node) }
func (b *blockBuilder) emit(ins ...Instruction) { b.out = append(b.out, ins...) }

// slot maps depth n, 0 being the top, to a slot of the entry stack. Negative
// results address the local stack.
func (b *blockBuilder) slot(n int) int32 {
	return int32(n - (len(b.stack) - b.borrows))
}

// nth returns the symbol at depth n without popping it.
func (b *blockBuilder) nth(n int) SymbolRef {
	if n < len(b.stack) {
		return b.stack[len(b.stack)-1-n]
	}
	slot := b.slot(n)
	if ref, ok := b.arguments[slot]; ok {
		return ref
	}
	ref := b.symbols.Insert(b.node, Symbol{Address: StackAddress(slot), Type: Word(), Kind: Variable()})
	b.arguments[slot] = ref
	return ref
}

func (b *blockBuilder) pop() SymbolRef {
	b.height--
	if n := len(b.stack); n > 0 {
		ref := b.stack[n-1]
		b.stack = b.stack[:n-1]
		return ref
	}
	ref := b.nth(0)
	b.borrows++
	return ref
}

func (b *blockBuilder) push(ref SymbolRef) {
	b.height++
	b.stack = append(b.stack, ref)
}

func (b *blockBuilder) drop() { b.pop() }

func (b *blockBuilder) dup(n int) {
	src := b.nth(n - 1)
	if b.symbols.Symbol(src).Kind.IsConstant() {
		b.push(src)
		return
	}
	x := b.temporary()
	b.emit(Copy{X: x, Y: src})
	b.push(x)
}

func (b *blockBuilder) swap(n int) {
	top := len(b.stack) - 1
	if n <= top {
		b.stack[top], b.stack[top-n] = b.stack[top-n], b.stack[top]
		return
	}
	other := b.nth(n)
	if top >= 0 {
		tmp := b.temporary()
		b.emit(
			Copy{X: tmp, Y: other},
			Copy{X: other, Y: b.stack[top]},
		)
		b.stack[top] = tmp
		return
	}
	first := b.nth(0)
	tmp := b.temporary()
	b.emit(
		Copy{X: tmp, Y: first},
		Copy{X: first, Y: other},
		Copy{X: other, Y: tmp},
	)
}

func (b *blockBuilder) fold(op Operator, operands ...SymbolRef) (SymbolRef, bool) {
	values := make([]*uint256.Int, len(operands))
	for i, ref := range operands {
		sym := b.symbols.Symbol(ref)
		if !sym.Kind.IsConstant() {
			return 0, false
		}
		v := sym.Kind.Value
		values[i] = &v
	}
	result, ok := evaluate(op, values)
	if !ok {
		return 0, false
	}
	return b.symbols.Constant(result, Word()), true
}

// done returns the lifted instructions and the stack summary of the block.
func (b *blockBuilder) done() ([]Instruction, StackInfo) {
	info := StackInfo{
		Arguments: b.borrows,
		Generates: append([]SymbolRef(nil), b.stack...),
		Height:    b.height,
	}
	if int32(info.Arguments)+info.Height != int32(len(info.Generates)) {
		invariant("block %d: %d arguments and height %d do not add up to %d generated values",
			b.node, info.Arguments, info.Height, len(info.Generates))
	}
	return b.out, info
}

// evaluate computes op over constant operands with EVM semantics. Operands are
// in stack order, top first.
func evaluate(op Operator, v []*uint256.Int) (*uint256.Int, bool) {
	r := new(uint256.Int)
	switch op {
	case Add:
		return r.Add(v[0], v[1]), true
	case Mul:
		return r.Mul(v[0], v[1]), true
	case Sub:
		return r.Sub(v[0], v[1]), true
	case Div:
		return r.Div(v[0], v[1]), true
	case SDiv:
		return r.SDiv(v[0], v[1]), true
	case Mod:
		return r.Mod(v[0], v[1]), true
	case SMod:
		return r.SMod(v[0], v[1]), true
	case Exp:
		return r.Exp(v[0], v[1]), true
	case SignExtend:
		return r.ExtendSign(v[1], v[0]), true
	case LessThan:
		return boolWord(v[0].Lt(v[1])), true
	case GreaterThan:
		return boolWord(v[0].Gt(v[1])), true
	case SignedLessThan:
		return boolWord(v[0].Slt(v[1])), true
	case SignedGreaterThan:
		return boolWord(v[0].Sgt(v[1])), true
	case Equal:
		return boolWord(v[0].Eq(v[1])), true
	case IsZero:
		return boolWord(v[0].IsZero()), true
	case And:
		return r.And(v[0], v[1]), true
	case Or:
		return r.Or(v[0], v[1]), true
	case Xor:
		return r.Xor(v[0], v[1]), true
	case Not:
		return r.Not(v[0]), true
	case Byte:
		r.Set(v[1])
		return r.Byte(v[0]), true
	case ShiftLeft:
		if v[0].LtUint64(256) {
			return r.Lsh(v[1], uint(v[0].Uint64())), true
		}
		return r, true
	case ShiftRight:
		if v[0].LtUint64(256) {
			return r.Rsh(v[1], uint(v[0].Uint64())), true
		}
		return r, true
	case ShiftArithmeticRight:
		if v[0].GtUint64(255) {
			if v[1].Sign() >= 0 {
				return r, true
			}
			return r.SetAllOne(), true
		}
		return r.SRsh(v[1], uint(v[0].Uint64())), true
	}
	return nil, false
}

func boolWord(b bool) *uint256.Int {
	if b {
		return uint256.NewInt(1)
	}
	return new(uint256.Int)
}
