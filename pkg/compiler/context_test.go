package compiler

import (
	"errors"
	"testing"

	"github.com/nalgeon/be"
)

var testLoc = Location{File: "test", Line: 1, Column: 1, EndLine: 1, EndColumn: 2}

func newTestFunction(t *testing.T, returnType SymbolType) (*GlobalContext, *FunctionContext) {
	t.Helper()
	global := NewGlobalContext(nil)
	fn, err := global.DeclareFunction(NewFunction("f", returnType, nil, testLoc))
	be.Err(t, err, nil)
	return global, NewFunctionContext(global, fn)
}

func TestNewLabelIsUnique(t *testing.T) {
	global := NewGlobalContext(nil)
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		label := global.NewLabel()
		if seen[label] {
			t.Fatalf("label %q returned twice", label)
		}
		seen[label] = true
	}
}

func TestLabelCountersAreIndependent(t *testing.T) {
	// two compilations must not share counter state
	a := NewGlobalContext(nil)
	b := NewGlobalContext(nil)
	be.Equal(t, a.NewLabel(), "$L1")
	be.Equal(t, b.NewLabel(), "$L1")
	be.Equal(t, a.NewLabel(), "$L2")
}

func TestGlobalRedeclaration(t *testing.T) {
	global := NewGlobalContext(nil)
	_, err := global.DeclareField(NewField("x", intType, testLoc))
	be.Err(t, err, nil)

	second := Location{File: "test", Line: 3, Column: 5, EndLine: 3, EndColumn: 6}
	_, err = global.DeclareField(NewField("x", charType, second))
	be.Err(t, err)

	var compileErr *CompileError
	be.True(t, errors.As(err, &compileErr))
	be.Equal(t, compileErr.Location, second)
}

func TestLocalRedeclarationSameScope(t *testing.T) {
	_, fctx := newTestFunction(t, voidType)
	local := NewLocalContext(fctx)

	_, err := local.DeclareVariable("x", intType, testLoc)
	be.Err(t, err, nil)
	_, err = local.DeclareVariable("x", intType, testLoc)
	be.Err(t, err)
}

func TestShadowingInNestedScope(t *testing.T) {
	_, fctx := newTestFunction(t, voidType)
	outer := NewLocalContext(fctx)

	outerX, err := outer.DeclareVariable("x", intType, testLoc)
	be.Err(t, err, nil)

	inner := NewNestedContext(outer)
	innerX, err := inner.DeclareVariable("x", charType, testLoc)
	be.Err(t, err, nil)

	be.Equal(t, inner.Lookup("x"), Symbol(innerX))
	be.Equal(t, outer.Lookup("x"), Symbol(outerX))
}

func TestLookupFallsThroughToGlobals(t *testing.T) {
	global, fctx := newTestFunction(t, voidType)
	field, err := global.DeclareField(NewField("g", intType, testLoc))
	be.Err(t, err, nil)

	local := NewLocalContext(fctx)
	be.Equal(t, local.Lookup("g"), Symbol(field))
	be.True(t, local.Lookup("missing") == nil)
}

func TestParameterRedeclaration(t *testing.T) {
	_, fctx := newTestFunction(t, voidType)
	_, err := fctx.DeclareParameter("a", intType, testLoc)
	be.Err(t, err, nil)
	_, err = fctx.DeclareParameter("a", charType, testLoc)
	be.Err(t, err)
}

func TestStackDepthPropagation(t *testing.T) {
	_, fctx := newTestFunction(t, voidType)

	// two synthetic parameter slots, as every function frame carries
	_, err := fctx.DeclareParameter("$saved_ra", intType, testLoc)
	be.Err(t, err, nil)
	_, err = fctx.DeclareParameter("$saved_fp", intType, testLoc)
	be.Err(t, err, nil)
	be.Equal(t, fctx.StackDepth(), 8)

	outer := NewLocalContext(fctx)
	_, err = outer.DeclareVariable("x", intType, testLoc)
	be.Err(t, err, nil)
	be.Equal(t, fctx.StackDepth(), 12)

	// a char still consumes a full aligned slot
	inner := NewNestedContext(outer)
	_, err = inner.DeclareVariable("c", charType, testLoc)
	be.Err(t, err, nil)
	be.Equal(t, fctx.StackDepth(), 16)

	// sibling scopes overlap: a second nested scope reuses the same bytes
	sibling := NewNestedContext(outer)
	_, err = sibling.DeclareVariable("d", intType, testLoc)
	be.Err(t, err, nil)
	be.Equal(t, fctx.StackDepth(), 16)
}

func TestExpressionTempsOverlapAcrossSiblings(t *testing.T) {
	_, fctx := newTestFunction(t, voidType)
	local := NewLocalContext(fctx)

	ctx := NewExpressionContext(local)

	// two forked siblings allocate the same slot
	first := ctx.fork()
	a := first.NewIntTemp(testLoc)
	second := ctx.fork()
	b := second.NewIntTemp(testLoc)
	be.Equal(t, a.Offset, b.Offset)

	// sequential temps in one context do not overlap
	c := ctx.NewIntTemp(testLoc)
	d := ctx.NewIntTemp(testLoc)
	be.True(t, c.Offset != d.Offset)
}

func TestBreakContinueLabelsClimbTheChain(t *testing.T) {
	_, fctx := newTestFunction(t, voidType)
	outer := NewLocalContext(fctx)
	be.Equal(t, outer.LastBreakLabel(), "")
	be.Equal(t, outer.LastContinueLabel(), "")

	loop := NewNestedContext(outer)
	loop.breakLabel = "$L1_end"
	loop.continueLabel = "$L1_loop"

	body := NewNestedContext(loop)
	nested := NewNestedContext(body)
	be.Equal(t, nested.LastBreakLabel(), "$L1_end")
	be.Equal(t, nested.LastContinueLabel(), "$L1_loop")

	// a switch overrides break but leaves continue alone
	sw := NewNestedContext(nested)
	sw.breakLabel = "$L2_end"
	be.Equal(t, sw.LastBreakLabel(), "$L2_end")
	be.Equal(t, sw.LastContinueLabel(), "$L1_loop")
}
