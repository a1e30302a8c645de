package compiler

import (
	"testing"

	"github.com/nalgeon/be"
)

func TestTypeWidths(t *testing.T) {
	be.Equal(t, voidType.Width(), 0)
	be.Equal(t, intType.Width(), 4)
	be.Equal(t, charType.Width(), 1)
	be.Equal(t, intPointerType.Width(), 4)
	be.Equal(t, charPointerType.Width(), 4)
	be.Equal(t, NewArrayType(intType, 10).Width(), 40)
	be.Equal(t, NewArrayType(charType, 6).Width(), 6)
}

func TestAlignedWidth(t *testing.T) {
	be.Equal(t, alignedWidth(voidType, 4), 0)
	be.Equal(t, alignedWidth(charType, 4), 4)
	be.Equal(t, alignedWidth(intType, 4), 4)
	be.Equal(t, alignedWidth(NewArrayType(charType, 6), 4), 8)
	be.Equal(t, alignedWidth(NewArrayType(charType, 8), 4), 8)
	be.Equal(t, alignedWidth(NewArrayType(intType, 3), 4), 12)
}

func TestTypeNames(t *testing.T) {
	be.Equal(t, intType.Name(), "int")
	be.Equal(t, charType.Name(), "char")
	be.Equal(t, voidType.Name(), "void")
	be.Equal(t, charPointerType.Name(), "char*")
	be.Equal(t, NewArrayType(intType, 4).Name(), "int[4]")
}

func TestValueTypeCompatibility(t *testing.T) {
	// any two value types convert silently
	be.True(t, intType.CompatibleWith(charType))
	be.True(t, charType.CompatibleWith(intType))
	be.True(t, intType.CompatibleWith(intType))

	be.True(t, !intType.CompatibleWith(voidType))
	be.True(t, !intType.CompatibleWith(intPointerType))
	be.True(t, !voidType.CompatibleWith(intType))
}

func TestPointerCompatibility(t *testing.T) {
	// a pointer accepts itself and arrays of matching element width
	be.True(t, charPointerType.CompatibleWith(charPointerType))
	be.True(t, charPointerType.CompatibleWith(NewArrayType(charType, 8)))
	be.True(t, intPointerType.CompatibleWith(NewArrayType(intType, 2)))

	be.True(t, !charPointerType.CompatibleWith(NewArrayType(intType, 2)))
	be.True(t, !charPointerType.CompatibleWith(charType))
	be.True(t, !intPointerType.CompatibleWith(intType))
}

func TestArrayCompatibilityIsEquality(t *testing.T) {
	be.True(t, NewArrayType(intType, 4).CompatibleWith(NewArrayType(intType, 4)))
	be.True(t, !NewArrayType(intType, 4).CompatibleWith(NewArrayType(intType, 5)))
	be.True(t, !NewArrayType(intType, 4).CompatibleWith(NewArrayType(charType, 4)))
	be.True(t, !NewArrayType(intType, 4).CompatibleWith(intType))
}

// Equality is structural: two separately built pointer or array types with
// the same shape compare equal.
func TestStructuralEquality(t *testing.T) {
	be.True(t, PointerType{Elem: charType}.Equal(PointerType{Elem: charType}))
	be.True(t, !PointerType{Elem: charType}.Equal(PointerType{Elem: intType}))

	be.True(t, NewArrayType(charType, 6).Equal(NewArrayType(charType, 6)))
	be.True(t, !NewArrayType(charType, 6).Equal(NewArrayType(charType, 7)))

	be.True(t, intType.Equal(IntType{}))
	be.True(t, !intType.Equal(charType))
	be.True(t, voidType.Equal(VoidType{}))
}

func TestAllocationDirectives(t *testing.T) {
	be.Equal(t, intType.Allocation(14), ".word 14")
	be.Equal(t, intType.Allocation(-3), ".word -3")
	be.Equal(t, charType.Allocation(65), ".byte 65")
	be.Equal(t, NewArrayType(charType, 6).Allocation(), ".space 6")
	be.Equal(t, NewArrayType(charType, 6).AllocationString("hi"), ".asciiz \"hi\"")
}
