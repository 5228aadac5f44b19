package ir

import (
	mapset "github.com/deckarep/golang-set/v2"
)

// typePropagation narrows the type hints of symbols in freshly lifted blocks:
// branch conditions become booleans, branch targets and indices pointers,
// comparison results booleans. Operands of other binary operations take the
// type of the result and copies take the type of their source. Constants and
// globals keep their types.
type typePropagation struct {
	nodes mapset.Set[NodeIndex]
}

func (t *typePropagation) AnalyzeBlock(node NodeIndex, p *Program) {
	if !t.nodes.Contains(node) {
		return
	}
	symbols := p.SymbolTable
	retype := func(ref SymbolRef, typ Type) {
		sym := symbols.Symbol(ref)
		if sym.Kind.IsConstant() || sym.Address.Kind == AddressLabel {
			return
		}
		symbols.ReplaceType(ref, typ)
	}
	typeOf := func(ref SymbolRef) Type {
		return symbols.Symbol(ref).Type
	}

	for _, ins := range p.Block(node).Instructions {
		switch i := ins.(type) {
		case ConditionalBranch:
			retype(i.Condition, Bool())
			retype(i.Target, Pointer())
		case UnconditionalBranch:
			retype(i.Target, Pointer())
		case BinaryAssign:
			if i.Operator.IsComparison() {
				retype(i.X, Bool())
				continue
			}
			retype(i.Y, typeOf(i.X))
			retype(i.Z, typeOf(i.X))
		case UnaryAssign:
			if i.Operator.IsComparison() {
				retype(i.X, Bool())
				continue
			}
			retype(i.X, typeOf(i.Y))
		case Copy:
			retype(i.X, typeOf(i.Y))
		case IndexedCopy:
			retype(i.Index, Pointer())
		case IndexedAssign:
			retype(i.Index, Pointer())
		}
	}
}

func (t *typePropagation) ApplyResults(*Program) {}
