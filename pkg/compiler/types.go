package compiler

import "fmt"

// SymbolType is the closed family of types in the source language:
// void, int, char, fixed-size arrays of a value type, and pointers to a
// value type (pointers occur only as function parameters).
type SymbolType interface {
	Name() string
	Width() int

	// CompatibleWith reports whether a value of the other type may be
	// supplied where this type is expected. Value types convert silently
	// among themselves; pointers accept arrays of matching element width;
	// everything else requires equality.
	CompatibleWith(other SymbolType) bool

	// Equal is structural equality. Array and pointer types compare their
	// element types structurally, not by identity.
	Equal(other SymbolType) bool
}

// ValueType is a type whose values fit in a register: int or char.
type ValueType interface {
	SymbolType

	// Allocation renders the data directive initializing one value.
	Allocation(value int32) string

	valueType()
}

// alignedWidth rounds a type's width up to the given stack alignment.
// A zero width stays zero.
func alignedWidth(t SymbolType, alignment int) int {
	w := t.Width()
	if w == 0 {
		return 0
	}
	return ((w-1)/alignment + 1) * alignment
}

//  void

type VoidType struct{}

func (VoidType) Name() string { return "void" }
func (VoidType) Width() int   { return 0 }

func (VoidType) CompatibleWith(other SymbolType) bool { return VoidType{}.Equal(other) }

func (VoidType) Equal(other SymbolType) bool {
	_, ok := other.(VoidType)
	return ok
}

//  int

type IntType struct{}

func (IntType) Name() string { return "int" }
func (IntType) Width() int   { return 4 }

func (IntType) Allocation(value int32) string { return fmt.Sprintf(".word %d", value) }

func (IntType) CompatibleWith(other SymbolType) bool { return isValueType(other) }

func (IntType) Equal(other SymbolType) bool {
	_, ok := other.(IntType)
	return ok
}

func (IntType) valueType() {}

//  char

type CharType struct{}

func (CharType) Name() string { return "char" }
func (CharType) Width() int   { return 1 }

func (CharType) Allocation(value int32) string { return fmt.Sprintf(".byte %d", value) }

func (CharType) CompatibleWith(other SymbolType) bool { return isValueType(other) }

func (CharType) Equal(other SymbolType) bool {
	_, ok := other.(CharType)
	return ok
}

func (CharType) valueType() {}

//  arrays

type ArrayType struct {
	Elem ValueType
	Size int // element count, always > 0
}

func NewArrayType(elem ValueType, size int) ArrayType {
	if size <= 0 {
		panic("array size must be positive")
	}
	return ArrayType{Elem: elem, Size: size}
}

func (t ArrayType) Name() string { return fmt.Sprintf("%s[%d]", t.Elem.Name(), t.Size) }
func (t ArrayType) Width() int   { return t.Elem.Width() * t.Size }

// Allocation reserves the array's storage uninitialized.
func (t ArrayType) Allocation() string { return fmt.Sprintf(".space %d", t.Width()) }

// AllocationString renders a NUL-terminated string initializer.
func (t ArrayType) AllocationString(literal string) string {
	return fmt.Sprintf(".asciiz %q", literal)
}

func (t ArrayType) CompatibleWith(other SymbolType) bool { return t.Equal(other) }

func (t ArrayType) Equal(other SymbolType) bool {
	array, ok := other.(ArrayType)
	return ok && t.Elem.Equal(array.Elem) && t.Size == array.Size
}

//  pointers (function parameters only)

type PointerType struct {
	Elem ValueType
}

func (t PointerType) Name() string { return t.Elem.Name() + "*" }
func (t PointerType) Width() int   { return 4 }

func (t PointerType) CompatibleWith(other SymbolType) bool {
	if t.Equal(other) {
		return true
	}
	if array, ok := other.(ArrayType); ok {
		return t.Elem.Width() == array.Elem.Width()
	}
	return false
}

func (t PointerType) Equal(other SymbolType) bool {
	pointer, ok := other.(PointerType)
	return ok && t.Elem.Equal(pointer.Elem)
}

//  common instances and classification helpers

var (
	voidType        = VoidType{}
	intType         = IntType{}
	charType        = CharType{}
	intPointerType  = PointerType{Elem: intType}
	charPointerType = PointerType{Elem: charType}
)

func isValueType(t SymbolType) bool {
	_, ok := t.(ValueType)
	return ok
}

func isArrayType(t SymbolType) bool {
	_, ok := t.(ArrayType)
	return ok
}

func isPointerType(t SymbolType) bool {
	_, ok := t.(PointerType)
	return ok
}

// elementType returns the element type of an array or pointer type and
// reports whether t was indexable at all.
func elementType(t SymbolType) (ValueType, bool) {
	switch u := t.(type) {
	case ArrayType:
		return u.Elem, true
	case PointerType:
		return u.Elem, true
	}
	return nil, false
}
