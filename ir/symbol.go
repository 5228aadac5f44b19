package ir

import (
	"fmt"

	"github.com/holiman/uint256"
)

// PointerSize is the width in bits of memory offsets, stack indices and jump
// targets.
const PointerSize = 32

// AddressKind tells where a symbol lives.
type AddressKind uint8

const (
	AddressTemporary AddressKind = iota
	AddressStack
	AddressLabel
)

// Address of a symbol: a temporary, a slot of the stack a basic block was
// entered with, or a well-known global location.
type Address struct {
	Kind  AddressKind
	Slot  int32  // AddressStack only
	Label Global // AddressLabel only
}

func TemporaryAddress() Address       { return Address{Kind: AddressTemporary} }
func StackAddress(slot int32) Address { return Address{Kind: AddressStack, Slot: slot} }
func LabelAddress(g Global) Address   { return Address{Kind: AddressLabel, Label: g} }

func (a Address) String() string {
	switch a.Kind {
	case AddressStack:
		return fmt.Sprintf("stack[%d]", a.Slot)
	case AddressLabel:
		return a.Label.String()
	default:
		return "tmp"
	}
}

// TypeClass enumerates the type hints a symbol may carry.
type TypeClass uint8

const (
	TypeWord TypeClass = iota // 256-bit EVM word
	TypeUInt
	TypeInt
	TypeBytes
	TypeBool
)

// Type is a symbol type hint. Size is in bits for integers and in bytes for
// byte strings; it is ignored for words and booleans.
type Type struct {
	Class TypeClass
	Size  int
}

func Word() Type            { return Type{Class: TypeWord} }
func UInt(bits int) Type    { return Type{Class: TypeUInt, Size: bits} }
func Int(bits int) Type     { return Type{Class: TypeInt, Size: bits} }
func Bytes(length int) Type { return Type{Class: TypeBytes, Size: length} }
func Bool() Type            { return Type{Class: TypeBool} }

// Pointer is the type of memory offsets, stack indices and jump targets.
func Pointer() Type { return UInt(PointerSize) }

func (t Type) String() string {
	switch t.Class {
	case TypeUInt:
		return fmt.Sprintf("u%d", t.Size)
	case TypeInt:
		return fmt.Sprintf("i%d", t.Size)
	case TypeBytes:
		return fmt.Sprintf("bytes%d", t.Size)
	case TypeBool:
		return "bool"
	default:
		return "word"
	}
}

// KindClass enumerates what a symbol denotes.
type KindClass uint8

const (
	KindVariable KindClass = iota
	KindPointer
	KindConstant
	KindFunction
)

// Kind of a symbol. Value is only meaningful for constants.
type Kind struct {
	Class KindClass
	Value uint256.Int
}

func Variable() Kind { return Kind{Class: KindVariable} }

func Constant(value *uint256.Int) Kind {
	return Kind{Class: KindConstant, Value: *value}
}

func (k Kind) IsConstant() bool { return k.Class == KindConstant }

// Symbol is the record behind a SymbolRef. Symbols are compared by id, never
// structurally: two temporaries with equal records are still distinct.
type Symbol struct {
	Address Address
	Type    Type
	Kind    Kind
}

// IsTemporary reports whether the symbol is a temporary variable, the only
// kind of symbol whose definition can be dropped when unused.
func (s Symbol) IsTemporary() bool {
	return s.Address.Kind == AddressTemporary && s.Kind.Class == KindVariable
}

// Global is a well-known location of the EVM execution environment or a
// runtime-provided operation.
type Global uint8

const (
	Stack Global = iota
	StackHeight

	CallData
	Memory
	ReturnData

	MemoryCopy

	// EVM runtime environment
	Sha3
	ContractAddress
	Balance
	Origin
	Caller
	CallValue
	CallDataLoad
	CallDataSize
	CallDataCopy
	CodeSize
	CodeCopy
	GasPrice
	ExtCodeSize
	ExtCodeCopy
	ReturnDataSize
	ReturnDataCopy
	ExtCodeHash
	BlockHash
	Coinbase
	Timestamp
	BlockNumber
	PrevRanDao
	GasLimit
	ChainId
	SelfBalance
	BaseFee
	BlobHash
	BlobBaseFee
	SLoad
	SStore
	TLoad
	TStore
	MStore8
	MCopy
	MemorySize
	Gas
	AddMod
	MulMod
	Create
	Create2
	Call
	StaticCall
	DelegateCall
	CallCode
	Return
	Stop
	Revert
	Invalid
	SelfDestruct
	Log

	globalCount
)

var globalNames = [globalCount]string{
	Stack:           "Stack",
	StackHeight:     "StackHeight",
	CallData:        "CallData",
	Memory:          "Memory",
	ReturnData:      "ReturnData",
	MemoryCopy:      "MemoryCopy",
	Sha3:            "Sha3",
	ContractAddress: "Address",
	Balance:         "Balance",
	Origin:          "Origin",
	Caller:          "Caller",
	CallValue:       "CallValue",
	CallDataLoad:    "CallDataLoad",
	CallDataSize:    "CallDataSize",
	CallDataCopy:    "CallDataCopy",
	CodeSize:        "CodeSize",
	CodeCopy:        "CodeCopy",
	GasPrice:        "GasPrice",
	ExtCodeSize:     "ExtCodeSize",
	ExtCodeCopy:     "ExtCodeCopy",
	ReturnDataSize:  "ReturnDataSize",
	ReturnDataCopy:  "ReturnDataCopy",
	ExtCodeHash:     "ExtCodeHash",
	BlockHash:       "BlockHash",
	Coinbase:        "Coinbase",
	Timestamp:       "Timestamp",
	BlockNumber:     "BlockNumber",
	PrevRanDao:      "PrevRanDao",
	GasLimit:        "GasLimit",
	ChainId:         "ChainId",
	SelfBalance:     "SelfBalance",
	BaseFee:         "BaseFee",
	BlobHash:        "BlobHash",
	BlobBaseFee:     "BlobBaseFee",
	SLoad:           "SLoad",
	SStore:          "SStore",
	TLoad:           "TLoad",
	TStore:          "TStore",
	MStore8:         "MStore8",
	MCopy:           "MCopy",
	MemorySize:      "MemorySize",
	Gas:             "Gas",
	AddMod:          "AddMod",
	MulMod:          "MulMod",
	Create:          "Create",
	Create2:         "Create2",
	Call:            "Call",
	StaticCall:      "StaticCall",
	DelegateCall:    "DelegateCall",
	CallCode:        "CallCode",
	Return:          "Return",
	Stop:            "Stop",
	Revert:          "Revert",
	Invalid:         "Invalid",
	SelfDestruct:    "SelfDestruct",
	Log:             "Log",
}

func (g Global) String() string {
	if g < globalCount {
		return globalNames[g]
	}
	return fmt.Sprintf("Global(%d)", uint8(g))
}

// Type returns the fixed type hint of the global.
func (g Global) Type() Type {
	switch g {
	case Stack, CallData, Memory, ReturnData:
		return Pointer()
	case StackHeight:
		return UInt(PointerSize)
	default:
		return Word()
	}
}

// Kind returns the fixed kind of the global.
func (g Global) Kind() Kind {
	switch g {
	case Stack, CallData, Memory, ReturnData:
		return Kind{Class: KindPointer}
	case StackHeight:
		return Variable()
	default:
		return Kind{Class: KindFunction}
	}
}

// Pure reports whether calling the global has no effect besides producing its
// result, so an unused call may be dropped.
func (g Global) Pure() bool {
	switch g {
	case Sha3, ContractAddress, Balance, Origin, Caller, CallValue, CallDataSize,
		CodeSize, GasPrice, ExtCodeSize, ReturnDataSize, ExtCodeHash, BlockHash,
		Coinbase, Timestamp, BlockNumber, PrevRanDao, GasLimit, ChainId,
		SelfBalance, BaseFee, BlobHash, BlobBaseFee, SLoad, TLoad, MemorySize,
		Gas, AddMod, MulMod:
		return true
	}
	return false
}
