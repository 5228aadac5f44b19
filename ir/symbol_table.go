package ir

import (
	"fmt"

	"github.com/holiman/uint256"
	"golang.org/x/exp/maps"
)

// SymbolRef is a stable handle to a symbol in a SymbolTable. It is a plain
// value; copying it never copies the symbol.
type SymbolRef int

// GlobalScope is the scope of globals and constants.
const GlobalScope NodeIndex = -1

type symbolEntry struct {
	symbol Symbol
	scope  NodeIndex
}

// SymbolTable is an arena owning every symbol of a program. References handed
// out stay valid for the lifetime of the table; nothing is ever removed.
type SymbolTable struct {
	entries   []symbolEntry
	globals   map[Global]SymbolRef
	constants map[Symbol]SymbolRef
	scopes    map[NodeIndex][]SymbolRef
}

// NewSymbolTable returns an empty table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		globals:   make(map[Global]SymbolRef),
		constants: make(map[Symbol]SymbolRef),
		scopes:    make(map[NodeIndex][]SymbolRef),
	}
}

// Insert stores a symbol in scope and returns a fresh reference to it.
func (t *SymbolTable) Insert(scope NodeIndex, sym Symbol) SymbolRef {
	ref := SymbolRef(len(t.entries))
	t.entries = append(t.entries, symbolEntry{symbol: sym, scope: scope})
	t.scopes[scope] = append(t.scopes[scope], ref)
	return ref
}

// Temporary creates a fresh word-typed temporary variable in scope. Every call
// yields a distinct symbol.
func (t *SymbolTable) Temporary(scope NodeIndex) SymbolRef {
	return t.Insert(scope, Symbol{Address: TemporaryAddress(), Type: Word(), Kind: Variable()})
}

// Global returns the symbol for g, creating it on first use.
func (t *SymbolTable) Global(g Global) SymbolRef {
	if ref, ok := t.globals[g]; ok {
		return ref
	}
	ref := t.Insert(GlobalScope, Symbol{Address: LabelAddress(g), Type: g.Type(), Kind: g.Kind()})
	t.globals[g] = ref
	return ref
}

// Constant returns the constant symbol for value with the given type hint.
// Requests for the same value and type share one symbol.
func (t *SymbolTable) Constant(value *uint256.Int, typ Type) SymbolRef {
	sym := Symbol{Address: TemporaryAddress(), Type: typ, Kind: Constant(value)}
	if ref, ok := t.constants[sym]; ok {
		return ref
	}
	ref := t.Insert(GlobalScope, sym)
	t.constants[sym] = ref
	return ref
}

// ConstantBytes returns the constant symbol for a big-endian immediate, typed
// by its length in bytes.
func (t *SymbolTable) ConstantBytes(data []byte) SymbolRef {
	return t.Constant(new(uint256.Int).SetBytes(data), Bytes(len(data)))
}

// Symbol returns the symbol behind ref. An unknown reference is a programming
// error and panics.
func (t *SymbolTable) Symbol(ref SymbolRef) Symbol {
	return t.entry(ref).symbol
}

// Scope returns the scope ref was inserted into.
func (t *SymbolTable) Scope(ref SymbolRef) NodeIndex {
	return t.entry(ref).scope
}

// ReplaceType changes the type hint of ref in place; every holder of ref
// observes the new type.
func (t *SymbolTable) ReplaceType(ref SymbolRef, typ Type) {
	e := t.entry(ref)
	if e.symbol.Kind.IsConstant() {
		if t.constants[e.symbol] == ref {
			delete(t.constants, e.symbol)
		}
		e.symbol.Type = typ
		if _, ok := t.constants[e.symbol]; !ok {
			t.constants[e.symbol] = ref
		}
		return
	}
	e.symbol.Type = typ
}

// SymbolsIn returns the references inserted into scope, in insertion order.
func (t *SymbolTable) SymbolsIn(scope NodeIndex) []SymbolRef {
	return append([]SymbolRef(nil), t.scopes[scope]...)
}

// Len returns the number of symbols in the table.
func (t *SymbolTable) Len() int {
	return len(t.entries)
}

func (t *SymbolTable) entry(ref SymbolRef) *symbolEntry {
	if ref < 0 || int(ref) >= len(t.entries) {
		invariant("unknown symbol reference %d", ref)
	}
	return &t.entries[ref]
}

// Format renders ref as $id_address. Pointers are prefixed with '*' and
// constants carry their type and value.
func (t *SymbolTable) Format(ref SymbolRef) string {
	sym := t.Symbol(ref)
	switch sym.Kind.Class {
	case KindPointer:
		return fmt.Sprintf("*$%d_%v", ref, sym.Address)
	case KindConstant:
		return fmt.Sprintf("%v $%d_%v := %s", sym.Type, ref, sym.Address, sym.Kind.Value.Hex())
	default:
		return fmt.Sprintf("$%d_%v", ref, sym.Address)
	}
}

func (t *SymbolTable) clone() *SymbolTable {
	c := &SymbolTable{
		entries:   append([]symbolEntry(nil), t.entries...),
		globals:   maps.Clone(t.globals),
		constants: maps.Clone(t.constants),
		scopes:    make(map[NodeIndex][]SymbolRef, len(t.scopes)),
	}
	for scope, refs := range t.scopes {
		c.scopes[scope] = append([]SymbolRef(nil), refs...)
	}
	return c
}
