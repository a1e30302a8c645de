package compiler

import (
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

func TestFieldEmission(t *testing.T) {
	f := NewField("x", intType, testLoc)

	load, err := f.LoadValue("$v0")
	be.Err(t, err, nil)
	be.Equal(t, load.Render(), "    lw $v0, x\n")

	save, err := f.SaveValue("$v0")
	be.Err(t, err, nil)
	be.Equal(t, save.Render(), "    sw $v0, x\n")

	addr, err := f.LoadAddress("$v1")
	be.Err(t, err, nil)
	be.Equal(t, addr.Render(), "    la $v1, x\n")
}

func TestFieldArrayLoadsItsAddress(t *testing.T) {
	f := NewField("a", NewArrayType(intType, 4), testLoc)

	load, err := f.LoadValue("$v0")
	be.Err(t, err, nil)
	be.Equal(t, load.Render(), "    la $v0, a\n")

	_, err = f.SaveValue("$v0")
	be.Err(t, err)
	be.True(t, strings.Contains(err.Error(), "not assignable"))
}

func TestFieldElementDispatchesOnWidth(t *testing.T) {
	chars := NewField("s", NewArrayType(charType, 8), testLoc)
	code, err := chars.LoadElementValue("$v0", "$v0")
	be.Err(t, err, nil)
	be.Equal(t, code.Render(), "    lb $v0, s($v0)\n")

	ints := NewField("a", NewArrayType(intType, 4), testLoc)
	code, err = ints.SaveElementValue("$v1", "$v0")
	be.Err(t, err, nil)
	be.Equal(t, code.Render(), "    mul $v1, $v1, 4\n    sw $v0, a($v1)\n")

	scalar := NewField("x", intType, testLoc)
	_, err = scalar.LoadElementValue("$v0", "$v0")
	be.Err(t, err)
	be.True(t, strings.Contains(err.Error(), "not indexable"))
}

func TestFunctionSymbolRejectsDataAccess(t *testing.T) {
	f := NewFunction("f", intType, nil, testLoc)

	_, err := f.LoadValue("$v0")
	be.Err(t, err)
	be.True(t, strings.Contains(err.Error(), "not a variable"))

	_, err = f.SaveValue("$v0")
	be.Err(t, err)

	_, err = f.LoadElementValue("$v0", "$v0")
	be.Err(t, err)
	be.True(t, strings.Contains(err.Error(), "not indexable"))
}

func TestVoidResultRejectsEverything(t *testing.T) {
	v := NewVoidResult(testLoc)
	for _, call := range []func() (*Code, error){
		func() (*Code, error) { return v.LoadValue("$v0") },
		func() (*Code, error) { return v.SaveValue("$v0") },
		func() (*Code, error) { return v.LoadAddress("$v0") },
		func() (*Code, error) { return v.LoadElementValue("$v0", "$v0") },
		func() (*Code, error) { return v.SaveElementValue("$v0", "$v0") },
	} {
		_, err := call()
		be.Err(t, err)
		be.True(t, strings.Contains(err.Error(), "void"))
	}
}

// The stack address of a variable is finalized only when the code is
// rendered: frame growth after emission must be reflected in lines that
// were already emitted.
func TestDeferredStackOffsets(t *testing.T) {
	_, fctx := newTestFunction(t, voidType)
	local := NewLocalContext(fctx)

	v, err := local.DeclareVariable("x", intType, testLoc)
	be.Err(t, err, nil)

	load, err := v.LoadValue("$v0")
	be.Err(t, err, nil)
	be.Equal(t, load.Render(), "    lw $v0, 4($sp)\n")

	// the frame grows after the line was emitted
	_, err = local.DeclareVariable("y", intType, testLoc)
	be.Err(t, err, nil)
	be.Equal(t, load.Render(), "    lw $v0, 8($sp)\n")

	addr, err := v.LoadAddress("$a0")
	be.Err(t, err, nil)
	be.Equal(t, addr.Render(), "    addu $a0, $sp, 8\n")
}

func TestLocalArrayElementShiftsBySP(t *testing.T) {
	_, fctx := newTestFunction(t, voidType)
	local := NewLocalContext(fctx)

	a, err := local.DeclareVariable("a", NewArrayType(intType, 4), testLoc)
	be.Err(t, err, nil)

	code, err := a.LoadElementValue("$v0", "$v0")
	be.Err(t, err, nil)
	text := code.Render()
	be.True(t, strings.Contains(text, "mul $v0, $v0, 4"))
	be.True(t, strings.Contains(text, "addu $v0, $sp, $v0"))
	be.True(t, strings.Contains(text, "($v0)"))
}

func TestLocalPointerElementLoadsPointerFirst(t *testing.T) {
	_, fctx := newTestFunction(t, voidType)

	p, err := fctx.DeclareParameter("p", charPointerType, testLoc)
	be.Err(t, err, nil)

	code, err := p.SaveElementValue("$v1", "$v0")
	be.Err(t, err, nil)
	text := code.Render()
	be.True(t, strings.Contains(text, "lw $t0,"))
	be.True(t, strings.Contains(text, "addu $v1, $t0, $v1"))
	be.True(t, strings.Contains(text, "sb $v0, ($v1)"))
}
