package ir

import (
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"
)

// stackMachine is the stack model an opcode is translated against. The flat
// model keeps the EVM stack in the Stack/StackHeight globals; the lifter keeps
// it symbolically, per block.
type stackMachine interface {
	table() *SymbolTable
	// temporary returns a fresh symbol for an operation result.
	temporary() SymbolRef
	emit(ins ...Instruction)

	pop() SymbolRef
	push(ref SymbolRef)
	// drop discards the top of the stack.
	drop()
	// dup pushes a copy of the n-th entry, 1 being the top.
	dup(n int)
	// swap exchanges the top with the entry n below it.
	swap(n int)
	// fold evaluates op when the model can, returning the result symbol.
	fold(op Operator, operands ...SymbolRef) (SymbolRef, bool)
}

type shape uint8

const (
	shapeBinary shape = iota
	shapeUnary
	shapeFunction
	shapeProcedure
)

// lowering describes how an opcode maps onto TAC: operands are popped
// top first and, for everything but procedures, one result is pushed.
type lowering struct {
	shape    shape
	operator Operator
	global   Global
	operands int
}

func binary(op Operator) lowering { return lowering{shape: shapeBinary, operator: op, operands: 2} }
func unary(op Operator) lowering  { return lowering{shape: shapeUnary, operator: op, operands: 1} }
func function(g Global, n int) lowering {
	return lowering{shape: shapeFunction, global: g, operands: n}
}
func procedure(g Global, n int) lowering {
	return lowering{shape: shapeProcedure, global: g, operands: n}
}

var loweringTable = map[vm.OpCode]lowering{
	vm.ADD:        binary(Add),
	vm.MUL:        binary(Mul),
	vm.SUB:        binary(Sub),
	vm.DIV:        binary(Div),
	vm.SDIV:       binary(SDiv),
	vm.MOD:        binary(Mod),
	vm.SMOD:       binary(SMod),
	vm.EXP:        binary(Exp),
	vm.SIGNEXTEND: binary(SignExtend),
	vm.ADDMOD:     function(AddMod, 3),
	vm.MULMOD:     function(MulMod, 3),

	vm.LT:     binary(LessThan),
	vm.GT:     binary(GreaterThan),
	vm.SLT:    binary(SignedLessThan),
	vm.SGT:    binary(SignedGreaterThan),
	vm.EQ:     binary(Equal),
	vm.ISZERO: unary(IsZero),

	vm.AND:  binary(And),
	vm.OR:   binary(Or),
	vm.XOR:  binary(Xor),
	vm.NOT:  unary(Not),
	vm.BYTE: binary(Byte),
	vm.SHL:  binary(ShiftLeft),
	vm.SHR:  binary(ShiftRight),
	vm.SAR:  binary(ShiftArithmeticRight),

	vm.KECCAK256: function(Sha3, 2),

	vm.ADDRESS:        function(ContractAddress, 0),
	vm.BALANCE:        function(Balance, 1),
	vm.ORIGIN:         function(Origin, 0),
	vm.CALLER:         function(Caller, 0),
	vm.CALLVALUE:      function(CallValue, 0),
	vm.CALLDATASIZE:   function(CallDataSize, 0),
	vm.CALLDATACOPY:   procedure(MemoryCopy, 3),
	vm.CODESIZE:       function(CodeSize, 0),
	vm.CODECOPY:       procedure(CodeCopy, 3),
	vm.GASPRICE:       function(GasPrice, 0),
	vm.EXTCODESIZE:    function(ExtCodeSize, 1),
	vm.EXTCODECOPY:    procedure(ExtCodeCopy, 4),
	vm.RETURNDATASIZE: function(ReturnDataSize, 0),
	vm.RETURNDATACOPY: procedure(ReturnDataCopy, 3),
	vm.EXTCODEHASH:    function(ExtCodeHash, 1),

	vm.BLOCKHASH:   function(BlockHash, 1),
	vm.COINBASE:    function(Coinbase, 0),
	vm.TIMESTAMP:   function(Timestamp, 0),
	vm.NUMBER:      function(BlockNumber, 0),
	vm.DIFFICULTY:  function(PrevRanDao, 0),
	vm.GASLIMIT:    function(GasLimit, 0),
	vm.CHAINID:     function(ChainId, 0),
	vm.SELFBALANCE: function(SelfBalance, 0),
	vm.BASEFEE:     function(BaseFee, 0),
	vm.BLOBHASH:    function(BlobHash, 1),
	vm.BLOBBASEFEE: function(BlobBaseFee, 0),

	vm.MSTORE8: procedure(MStore8, 2),
	vm.SLOAD:   function(SLoad, 1),
	vm.SSTORE:  procedure(SStore, 2),
	vm.TLOAD:   function(TLoad, 1),
	vm.TSTORE:  procedure(TStore, 2),
	vm.MCOPY:   procedure(MCopy, 3),
	vm.MSIZE:   function(MemorySize, 0),
	vm.GAS:     function(Gas, 0),

	vm.CREATE:       function(Create, 3),
	vm.CREATE2:      function(Create2, 4),
	vm.CALL:         function(Call, 7),
	vm.CALLCODE:     function(CallCode, 7),
	vm.DELEGATECALL: function(DelegateCall, 6),
	vm.STATICCALL:   function(StaticCall, 6),

	vm.STOP:         procedure(Stop, 0),
	vm.RETURN:       procedure(Return, 2),
	vm.REVERT:       procedure(Revert, 2),
	vm.INVALID:      procedure(Invalid, 0),
	vm.SELFDESTRUCT: procedure(SelfDestruct, 1),
}

func popN(m stackMachine, n int) []SymbolRef {
	if n == 0 {
		return nil
	}
	refs := make([]SymbolRef, n)
	for i := range refs {
		refs[i] = m.pop()
	}
	return refs
}

// translate lowers one opcode against m and reports whether the opcode has a
// lowering at all.
func translate(m stackMachine, ins EvmInstruction) bool {
	op := ins.Instruction.Op
	switch {
	case op.IsPush():
		m.push(m.table().ConstantBytes(ins.Instruction.Immediate))
		return true
	case op >= vm.DUP1 && op <= vm.DUP16:
		m.dup(int(op-vm.DUP1) + 1)
		return true
	case op >= vm.SWAP1 && op <= vm.SWAP16:
		m.swap(int(op-vm.SWAP1) + 1)
		return true
	case op >= vm.LOG0 && op <= vm.LOG4:
		m.emit(Procedure{Symbol: Log, Parameters: popN(m, 2+int(op-vm.LOG0))})
		return true
	}

	switch op {
	case vm.JUMPDEST:
		return true
	case vm.POP:
		m.drop()
		return true
	case vm.PC:
		m.push(m.table().Constant(uint256.NewInt(uint64(ins.BytecodeOffset)), Pointer()))
		return true
	case vm.JUMP:
		m.emit(UnconditionalBranch{Target: m.pop()})
		return true
	case vm.JUMPI:
		target := m.pop()
		condition := m.pop()
		m.emit(ConditionalBranch{Condition: condition, Target: target})
		return true
	case vm.MSTORE:
		offset := m.pop()
		value := m.pop()
		m.emit(IndexedAssign{X: m.table().Global(Memory), Index: offset, Y: value})
		return true
	case vm.MLOAD:
		loadIndexed(m, Memory)
		return true
	case vm.CALLDATALOAD:
		loadIndexed(m, CallData)
		return true
	}

	l, ok := loweringTable[op]
	if !ok {
		return false
	}
	operands := popN(m, l.operands)
	switch l.shape {
	case shapeBinary, shapeUnary:
		if x, ok := m.fold(l.operator, operands...); ok {
			m.push(x)
			return true
		}
		x := m.temporary()
		if l.shape == shapeBinary {
			m.emit(BinaryAssign{X: x, Y: operands[0], Operator: l.operator, Z: operands[1]})
		} else {
			m.emit(UnaryAssign{X: x, Operator: l.operator, Y: operands[0]})
		}
		m.push(x)
	case shapeFunction:
		x := m.temporary()
		m.emit(Function{Symbol: l.global, X: x, Parameters: operands})
		m.push(x)
	case shapeProcedure:
		m.emit(Procedure{Symbol: l.global, Parameters: operands})
	}
	return true
}

func loadIndexed(m stackMachine, region Global) {
	index := m.pop()
	x := m.temporary()
	m.emit(IndexedCopy{X: x, Y: m.table().Global(region), Index: index})
	m.push(x)
}

// flatStack lowers against the Stack and StackHeight globals: every pop is a
// height decrement followed by a load and every push a store followed by a
// height increment.
type flatStack struct {
	symbols *SymbolTable
	scope   NodeIndex
	out     []Instruction
}

func newFlatStack(symbols *SymbolTable, scope NodeIndex) *flatStack {
	return &flatStack{symbols: symbols, scope: scope}
}

func (s *flatStack) table() *SymbolTable                           { return s.symbols }
func (s *flatStack) temporary() SymbolRef                          { return s.symbols.Temporary(s.scope) }
func (s *flatStack) emit(ins ...Instruction)                       { s.out = append(s.out, ins...) }
func (s *flatStack) fold(Operator, ...SymbolRef) (SymbolRef, bool) { return 0, false }

func (s *flatStack) constant(v uint64) SymbolRef {
	return s.symbols.Constant(uint256.NewInt(v), Pointer())
}

// adjust emits StackHeight = StackHeight op n.
func (s *flatStack) adjust(op Operator, n uint64) {
	height := s.symbols.Global(StackHeight)
	s.emit(BinaryAssign{X: height, Y: height, Operator: op, Z: s.constant(n)})
}

// load emits tmp = Stack[index].
func (s *flatStack) load(index SymbolRef) SymbolRef {
	x := s.temporary()
	s.emit(IndexedCopy{X: x, Y: s.symbols.Global(Stack), Index: index})
	return x
}

// slot emits idx = StackHeight - n and returns idx.
func (s *flatStack) slot(n int) SymbolRef {
	index := s.temporary()
	s.emit(BinaryAssign{X: index, Y: s.symbols.Global(StackHeight), Operator: Sub, Z: s.constant(uint64(n))})
	return index
}

func (s *flatStack) pop() SymbolRef {
	s.adjust(Sub, 1)
	return s.load(s.symbols.Global(StackHeight))
}

func (s *flatStack) push(ref SymbolRef) {
	s.emit(IndexedAssign{X: s.symbols.Global(Stack), Index: s.symbols.Global(StackHeight), Y: ref})
	s.adjust(Add, 1)
}

func (s *flatStack) drop() {
	s.adjust(Sub, 1)
}

func (s *flatStack) dup(n int) {
	s.push(s.load(s.slot(n)))
}

func (s *flatStack) swap(n int) {
	stack := s.symbols.Global(Stack)
	top, other := s.slot(1), s.slot(n+1)
	a, b := s.load(top), s.load(other)
	s.emit(
		IndexedAssign{X: stack, Index: top, Y: b},
		IndexedAssign{X: stack, Index: other, Y: a},
	)
}

// lower fills every real block with the flat lowering of its opcodes.
// Opcodes without a lowering are recorded as gaps.
func (p *Program) lower() {
	for _, n := range p.Blocks() {
		s := newFlatStack(p.SymbolTable, n)
		for _, ins := range p.Opcodes(n) {
			if translate(s, ins) {
				continue
			}
			p.Gaps = append(p.Gaps, Gap{Offset: ins.BytecodeOffset, Op: ins.Instruction.Op})
			loweringGapCounter.Inc(1)
			log.Debug("No lowering for opcode", "op", ins.Instruction.Op, "offset", ins.BytecodeOffset)
		}
		p.Block(n).Instructions = s.out
		debugInfo("Lowered block", "node", n, "opcodes", p.Block(n).Opcodes, "instructions", len(s.out))
	}
}
