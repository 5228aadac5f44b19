package ir

import (
	"fmt"
	"strings"
)

// Operator of a BinaryAssign or UnaryAssign. Operands follow EVM stack order:
// the left operand (Y) is the value that was on top of the stack, so
// `x = y Sub z` computes top minus second and `x = y ShiftLeft z` shifts z by y.
type Operator uint8

const (
	Add Operator = iota
	Mul
	Sub
	Div
	SDiv
	Mod
	SMod
	Exp
	SignExtend

	LessThan
	GreaterThan
	SignedLessThan
	SignedGreaterThan
	Equal
	IsZero

	And
	Or
	Xor
	Not
	Byte
	ShiftLeft
	ShiftRight
	ShiftArithmeticRight
)

var operatorNames = [...]string{
	Add:                  "Add",
	Mul:                  "Mul",
	Sub:                  "Sub",
	Div:                  "Div",
	SDiv:                 "SDiv",
	Mod:                  "Mod",
	SMod:                 "SMod",
	Exp:                  "Exp",
	SignExtend:           "SignExtend",
	LessThan:             "LessThan",
	GreaterThan:          "GreaterThan",
	SignedLessThan:       "SignedLessThan",
	SignedGreaterThan:    "SignedGreaterThan",
	Equal:                "Equal",
	IsZero:               "IsZero",
	And:                  "And",
	Or:                   "Or",
	Xor:                  "Xor",
	Not:                  "Not",
	Byte:                 "Byte",
	ShiftLeft:            "ShiftLeft",
	ShiftRight:           "ShiftRight",
	ShiftArithmeticRight: "ShiftArithmeticRight",
}

func (o Operator) String() string {
	if int(o) < len(operatorNames) {
		return operatorNames[o]
	}
	return fmt.Sprintf("Operator(%d)", uint8(o))
}

// IsComparison reports whether the operator yields a boolean.
func (o Operator) IsComparison() bool {
	switch o {
	case LessThan, GreaterThan, SignedLessThan, SignedGreaterThan, Equal, IsZero:
		return true
	}
	return false
}

// Instruction is one three-address instruction. The concrete types below are
// the complete set; they are plain values and are never mutated once built.
type Instruction interface {
	// Def returns the symbol the instruction assigns, if any.
	Def() (SymbolRef, bool)
	// Uses returns the symbols the instruction reads.
	Uses() []SymbolRef
}

// Nop does nothing.
type Nop struct{}

// BinaryAssign is x = y op z.
type BinaryAssign struct {
	X        SymbolRef
	Y        SymbolRef
	Operator Operator
	Z        SymbolRef
}

// UnaryAssign is x = op y.
type UnaryAssign struct {
	X        SymbolRef
	Operator Operator
	Y        SymbolRef
}

// UnconditionalBranch jumps to Target.
type UnconditionalBranch struct {
	Target SymbolRef
}

// ConditionalBranch jumps to Target when Condition is non-zero.
type ConditionalBranch struct {
	Condition SymbolRef
	Target    SymbolRef
}

// Procedure calls a global without a result.
type Procedure struct {
	Symbol     Global
	Parameters []SymbolRef
}

// Function calls a global and assigns its result to X.
type Function struct {
	Symbol     Global
	X          SymbolRef
	Parameters []SymbolRef
}

// Copy is x = y.
type Copy struct {
	X SymbolRef
	Y SymbolRef
}

// IndexedAssign is x[index] = y.
type IndexedAssign struct {
	X     SymbolRef
	Index SymbolRef
	Y     SymbolRef
}

// IndexedCopy is x = y[index].
type IndexedCopy struct {
	X     SymbolRef
	Y     SymbolRef
	Index SymbolRef
}

func (Nop) Def() (SymbolRef, bool)                 { return 0, false }
func (i BinaryAssign) Def() (SymbolRef, bool)      { return i.X, true }
func (i UnaryAssign) Def() (SymbolRef, bool)       { return i.X, true }
func (UnconditionalBranch) Def() (SymbolRef, bool) { return 0, false }
func (ConditionalBranch) Def() (SymbolRef, bool)   { return 0, false }
func (Procedure) Def() (SymbolRef, bool)           { return 0, false }
func (i Function) Def() (SymbolRef, bool)          { return i.X, true }
func (i Copy) Def() (SymbolRef, bool)              { return i.X, true }
func (IndexedAssign) Def() (SymbolRef, bool)       { return 0, false }
func (i IndexedCopy) Def() (SymbolRef, bool)       { return i.X, true }

func (Nop) Uses() []SymbolRef                   { return nil }
func (i BinaryAssign) Uses() []SymbolRef        { return []SymbolRef{i.Y, i.Z} }
func (i UnaryAssign) Uses() []SymbolRef         { return []SymbolRef{i.Y} }
func (i UnconditionalBranch) Uses() []SymbolRef { return []SymbolRef{i.Target} }
func (i ConditionalBranch) Uses() []SymbolRef   { return []SymbolRef{i.Condition, i.Target} }
func (i Procedure) Uses() []SymbolRef           { return i.Parameters }
func (i Function) Uses() []SymbolRef            { return i.Parameters }
func (i Copy) Uses() []SymbolRef                { return []SymbolRef{i.Y} }
func (i IndexedAssign) Uses() []SymbolRef       { return []SymbolRef{i.X, i.Index, i.Y} }
func (i IndexedCopy) Uses() []SymbolRef         { return []SymbolRef{i.Y, i.Index} }

// IsBranch reports whether ins transfers control.
func IsBranch(ins Instruction) bool {
	switch ins.(type) {
	case UnconditionalBranch, ConditionalBranch:
		return true
	}
	return false
}

// BranchTarget returns the target operand of a branch instruction.
func BranchTarget(ins Instruction) (SymbolRef, bool) {
	switch b := ins.(type) {
	case UnconditionalBranch:
		return b.Target, true
	case ConditionalBranch:
		return b.Target, true
	}
	return 0, false
}

// FormatInstruction renders ins with the symbols of t.
func (t *SymbolTable) FormatInstruction(ins Instruction) string {
	switch i := ins.(type) {
	case Nop:
		return "nop"
	case BinaryAssign:
		return fmt.Sprintf("%s = %s %v %s", t.Format(i.X), t.Format(i.Y), i.Operator, t.Format(i.Z))
	case UnaryAssign:
		return fmt.Sprintf("%s = %v %s", t.Format(i.X), i.Operator, t.Format(i.Y))
	case UnconditionalBranch:
		return fmt.Sprintf("branch %s", t.Format(i.Target))
	case ConditionalBranch:
		return fmt.Sprintf("if %s branch %s", t.Format(i.Condition), t.Format(i.Target))
	case Procedure:
		return fmt.Sprintf("%v(%s)", i.Symbol, t.formatList(i.Parameters))
	case Function:
		return fmt.Sprintf("%s = %v(%s)", t.Format(i.X), i.Symbol, t.formatList(i.Parameters))
	case Copy:
		return fmt.Sprintf("%s = %s", t.Format(i.X), t.Format(i.Y))
	case IndexedAssign:
		return fmt.Sprintf("%s[%s] = %s", t.Format(i.X), t.Format(i.Index), t.Format(i.Y))
	case IndexedCopy:
		return fmt.Sprintf("%s = %s[%s]", t.Format(i.X), t.Format(i.Y), t.Format(i.Index))
	default:
		return fmt.Sprintf("%T", ins)
	}
}

func (t *SymbolTable) formatList(refs []SymbolRef) string {
	parts := make([]string, len(refs))
	for i, ref := range refs {
		parts[i] = t.Format(ref)
	}
	return strings.Join(parts, ", ")
}
