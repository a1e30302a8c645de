package compiler

import (
	"fmt"
	"strconv"
	"strings"
)

//  Coercions

// Evaluate materializes the logical child as 1 or 0 in a fresh temporary:
// the child branches to a set or clear label, both of which fall into a
// single join label that stores the result.
func (c *IntegralCast) Evaluate(ctx *ExpressionContext) (*Code, Symbol, error) {
	global := ctx.local.global
	setLabel, clearLabel, joinLabel := global.NewLabel(), global.NewLabel(), global.NewLabel()

	code, err := c.exp.Evaluate(ctx, setLabel, clearLabel)
	if err != nil {
		return nil, nil, err
	}

	symbol := ctx.NewIntTemp(c.exp.Loc())
	code.add(setLabel + ":")
	code.add(tab + "li $v0, 1")
	code.add(tab + "b " + joinLabel)
	code.add(clearLabel + ":")
	code.add(tab + "move $v0, $zero")
	code.add(joinLabel + ":")
	save, err := symbol.SaveValue("$v0")
	if err != nil {
		return nil, nil, err
	}
	code.append(save)
	return code, symbol, nil
}

// Evaluate branches to falseLabel when the integral child is zero.
func (c *LogicalCast) Evaluate(ctx *ExpressionContext, trueLabel, falseLabel string) (*Code, error) {
	inner := ctx.fork()
	code, symbol, err := c.exp.Evaluate(inner)
	if err != nil {
		return nil, err
	}

	load, err := symbol.LoadValue("$v0")
	if err != nil {
		return nil, err
	}
	code.append(load)
	code.add(tab + "beq $v0, $zero, " + falseLabel)
	code.add(tab + "b " + trueLabel)
	return code, nil
}

//  Integral expressions

func (c *Constant) Evaluate(ctx *ExpressionContext) (*Code, Symbol, error) {
	symbol := ctx.NewIntTemp(c.loc)
	code := newCode()
	code.add(tab + "li $v0, " + strconv.Itoa(int(c.value)))
	save, err := symbol.SaveValue("$v0")
	if err != nil {
		return nil, nil, err
	}
	code.append(save)
	return code, symbol, nil
}

func (v *VariableExpr) Evaluate(ctx *ExpressionContext) (*Code, Symbol, error) {
	symbol := ctx.local.Lookup(v.name)
	if symbol == nil {
		return nil, nil, compileErrorf(v.loc, "undefined symbol %q", v.name)
	}
	return newCode(), symbol, nil
}

func (v *VariableExpr) Assign(ctx *ExpressionContext, value Symbol) (*Code, error) {
	symbol := ctx.local.Lookup(v.name)
	if symbol == nil {
		return nil, compileErrorf(v.loc, "undefined symbol %q", v.name)
	}

	code, err := value.LoadValue("$v0")
	if err != nil {
		return nil, err
	}
	save, err := symbol.SaveValue("$v0")
	if err != nil {
		return nil, err
	}
	return code.append(save), nil
}

func (u *UnaryIntegral) Evaluate(ctx *ExpressionContext) (*Code, Symbol, error) {
	inner := ctx.fork()
	code, operand, err := u.exp.Evaluate(inner)
	if err != nil {
		return nil, nil, err
	}

	symbol := ctx.NewIntTemp(u.loc)
	load, err := operand.LoadValue("$v0")
	if err != nil {
		return nil, nil, err
	}
	code.append(load)
	code.add(tab + unaryIntegralInstruction[u.op] + " $v0, $v0")
	save, err := symbol.SaveValue("$v0")
	if err != nil {
		return nil, nil, err
	}
	code.append(save)
	return code, symbol, nil
}

func (b *BinaryIntegral) Evaluate(ctx *ExpressionContext) (*Code, Symbol, error) {
	// warn about a right operand that folds to zero
	if den, ok := b.exp2.Precompute(); ok && den == 0 {
		ctx.local.global.printer(b.loc, "divide by zero", "warning")
	}

	inner := ctx.fork()
	code1, symbol1, err := b.exp1.Evaluate(inner)
	if err != nil {
		return nil, nil, err
	}
	code2, symbol2, err := b.exp2.Evaluate(inner)
	if err != nil {
		return nil, nil, err
	}

	symbol := ctx.NewIntTemp(b.loc)
	code := code1.append(code2)

	load1, err := symbol1.LoadValue("$v0")
	if err != nil {
		return nil, nil, err
	}
	load2, err := symbol2.LoadValue("$v1")
	if err != nil {
		return nil, nil, err
	}
	code.append(load1).append(load2)
	code.add(tab + binaryIntegralInstruction[b.op] + " $v0, $v0, $v1")
	save, err := symbol.SaveValue("$v0")
	if err != nil {
		return nil, nil, err
	}
	code.append(save)
	return code, symbol, nil
}

func (a *ArrayAccess) Evaluate(ctx *ExpressionContext) (*Code, Symbol, error) {
	symbol := ctx.local.Lookup(a.name)
	if symbol == nil {
		return nil, nil, compileErrorf(a.loc, "undefined symbol %q", a.name)
	}

	inner := ctx.fork()
	code, indexSymbol, err := a.index.Evaluate(inner)
	if err != nil {
		return nil, nil, err
	}

	if isArrayType(symbol.Type()) {
		check, err := a.ensureIndexInRange(ctx, symbol, indexSymbol)
		if err != nil {
			return nil, nil, err
		}
		code.append(check)
	}

	temp := ctx.NewIntTemp(a.loc)
	load, err := indexSymbol.LoadValue("$v0")
	if err != nil {
		return nil, nil, err
	}
	element, err := symbol.LoadElementValue("$v0", "$v0")
	if err != nil {
		return nil, nil, err
	}
	save, err := temp.SaveValue("$v0")
	if err != nil {
		return nil, nil, err
	}
	code.append(load).append(element).append(save)
	return code, temp, nil
}

func (a *ArrayAccess) Assign(ctx *ExpressionContext, value Symbol) (*Code, error) {
	symbol := ctx.local.Lookup(a.name)
	if symbol == nil {
		return nil, compileErrorf(a.loc, "undefined symbol %q", a.name)
	}

	code, indexSymbol, err := a.index.Evaluate(ctx)
	if err != nil {
		return nil, err
	}

	if isArrayType(symbol.Type()) {
		check, err := a.ensureIndexInRange(ctx, symbol, indexSymbol)
		if err != nil {
			return nil, err
		}
		code.append(check)
	}

	load, err := value.LoadValue("$v0")
	if err != nil {
		return nil, err
	}
	index, err := indexSymbol.LoadValue("$v1")
	if err != nil {
		return nil, err
	}
	element, err := symbol.SaveElementValue("$v1", "$v0")
	if err != nil {
		return nil, err
	}
	return code.append(load).append(index).append(element), nil
}

// ensureIndexInRange guards an array access. A precomputable index outside
// [0, size) is rejected at compile time; otherwise a runtime check traps
// into the out-of-bounds handler. Pointer accesses have no known size and
// never come through here.
func (a *ArrayAccess) ensureIndexInRange(ctx *ExpressionContext,
	arraySymbol, indexSymbol Symbol) (*Code, error) {
	arrayType := arraySymbol.Type().(ArrayType)

	// compile-time check
	if value, ok := a.index.Precompute(); ok && (value < 0 || value >= int32(arrayType.Size)) {
		return nil, compileErrorf(a.loc, "array index is out of bounds")
	}

	trap := ctx.local.Lookup("$out_of_bounds_error")
	if trap == nil {
		return nil, compileErrorf(a.loc, "undefined symbol %q", "$out_of_bounds_error")
	}

	// runtime check
	global := ctx.local.global
	errorLabel, endLabel := global.NewLabel(), global.NewLabel()
	code := newCode()
	code.add(tab + "# runtime array index bounds check")
	load, err := indexSymbol.LoadValue("$t0")
	if err != nil {
		return nil, err
	}
	code.append(load)
	code.add(tab + "bltz $t0, " + errorLabel)
	code.add(tab + "bgeu $t0, " + strconv.Itoa(arrayType.Size) + ", " + errorLabel)
	code.add(tab + "b " + endLabel)
	code.add(errorLabel + ":")
	code.add(tab + "jal " + trap.Name())
	code.add(endLabel + ":")
	return code, nil
}

func (a *AssignmentExpr) Evaluate(ctx *ExpressionContext) (*Code, Symbol, error) {
	// the right side is evaluated in ctx itself: its temporary is also the
	// assignment's result and must stay reserved for the caller
	code, value, err := a.exp.Evaluate(ctx)
	if err != nil {
		return nil, nil, err
	}

	assign, err := a.left.Assign(ctx, value)
	if err != nil {
		return nil, nil, err
	}
	return code.append(assign), value, nil
}

func (f *FunctionCall) Evaluate(ctx *ExpressionContext) (*Code, Symbol, error) {
	symbol := ctx.local.Lookup(f.name)
	if symbol == nil {
		return nil, nil, compileErrorf(f.loc, "function %q is not defined", f.name)
	}

	function, ok := symbol.(*Function)
	if !ok {
		return nil, nil, compileErrorf(f.loc, "symbol %q is not a function", f.name)
	}

	if len(function.ParamTypes) != len(f.args) {
		return nil, nil, compileErrorf(f.loc, "incorrect number of arguments")
	}

	inner := ctx.fork()
	var symbols []Symbol
	code := newCode()

	for i, arg := range f.args {
		argCode, argSymbol, err := arg.Evaluate(inner)
		if err != nil {
			return nil, nil, err
		}

		if !function.ParamTypes[i].CompatibleWith(argSymbol.Type()) {
			return nil, nil, compileErrorf(f.loc, "argument of type %s is not compatible with type %s",
				argSymbol.Type().Name(), function.ParamTypes[i].Name())
		}

		symbols = append(symbols, argSymbol)
		code.append(argCode)
	}

	// arguments go into the registers only just before the call, after
	// every argument expression has finished evaluating
	for i, argSymbol := range symbols {
		reg := "$a" + strconv.Itoa(i)
		load, err := argSymbol.LoadValue(reg)
		if err != nil {
			return nil, nil, err
		}
		code.append(load)
		if function.ParamTypes[i].Equal(charType) {
			code.add(tab + "and " + reg + ", " + reg + ", 0xff")
		}
	}

	code.add(tab + "jal " + function.Name())

	var result Symbol
	if function.Type().Equal(voidType) {
		result = NewVoidResult(f.loc)
	} else {
		temp := ctx.NewIntTemp(f.loc)
		save, err := temp.SaveValue("$v0")
		if err != nil {
			return nil, nil, err
		}
		code.append(save)
		result = temp
	}
	return code, result, nil
}

//  Logical expressions

func (u *UnaryLogical) Evaluate(ctx *ExpressionContext, trueLabel, falseLabel string) (*Code, error) {
	return u.exp.Evaluate(ctx, falseLabel, trueLabel)
}

func (b *BinaryLogical) Evaluate(ctx *ExpressionContext, trueLabel, falseLabel string) (*Code, error) {
	innerLabel := ctx.local.global.NewLabel()

	var code *Code
	var err error
	switch b.op {
	case "&&":
		code, err = b.exp1.Evaluate(ctx, innerLabel, falseLabel)
	case "||":
		code, err = b.exp1.Evaluate(ctx, trueLabel, innerLabel)
	default:
		panic("invalid binary logical operator " + b.op)
	}
	if err != nil {
		return nil, err
	}

	code.add(innerLabel + ":")
	second, err := b.exp2.Evaluate(ctx, trueLabel, falseLabel)
	if err != nil {
		return nil, err
	}
	return code.append(second), nil
}

func (r *Relational) Evaluate(ctx *ExpressionContext, trueLabel, falseLabel string) (*Code, error) {
	inner := ctx.fork()
	code1, symbol1, err := r.exp1.Evaluate(inner)
	if err != nil {
		return nil, err
	}
	code2, symbol2, err := r.exp2.Evaluate(inner)
	if err != nil {
		return nil, err
	}

	code := code1.append(code2)
	load1, err := symbol1.LoadValue("$v0")
	if err != nil {
		return nil, err
	}
	load2, err := symbol2.LoadValue("$v1")
	if err != nil {
		return nil, err
	}
	code.append(load1).append(load2)
	code.add(tab + relationalInstruction[r.op] + " $v0, $v1, " + trueLabel)
	code.add(tab + "b " + falseLabel)
	return code, nil
}

//  Statements

func (d *VariableDeclaration) Compile(ctx *LocalContext) (*Code, error) {
	if _, err := ctx.DeclareVariable(d.name, d.typ, d.loc); err != nil {
		return nil, err
	}
	return newCode(), nil
}

func (s *ExpressionStatement) Compile(ctx *LocalContext) (*Code, error) {
	switch exp := s.exp.(type) {
	case IntegralExpression:
		inner := NewExpressionContext(ctx)
		code, _, err := exp.Evaluate(inner)
		return code, err

	case LogicalExpression:
		// both targets collapse to one label right after the expression
		label := ctx.global.NewLabel()
		inner := NewExpressionContext(ctx)
		code, err := exp.Evaluate(inner, label, label)
		if err != nil {
			return nil, err
		}
		code.add(tab + label + ":")
		return code, nil
	}
	panic(fmt.Sprintf("expression %T cannot be used as a statement", s.exp))
}

// compileOn emits the block's statements into an already opened scope.
func (b *StatementBlock) compileOn(ctx *LocalContext) (*Code, error) {
	code := newCode()
	for _, s := range b.statements {
		c, err := s.Compile(ctx)
		if err != nil {
			return nil, err
		}
		code.append(c)
	}
	return code, nil
}

func (b *StatementBlock) Compile(parent *LocalContext) (*Code, error) {
	return b.compileOn(NewNestedContext(parent))
}

// CompileInFunction compiles the block as a function body, rooting the
// scope chain directly at the function context.
func (b *StatementBlock) CompileInFunction(fctx *FunctionContext) (*Code, error) {
	return b.compileOn(NewLocalContext(fctx))
}

func (s *IfElseStatement) Compile(ctx *LocalContext) (*Code, error) {
	label := ctx.global.NewLabel()
	thenLabel, elseLabel, endLabel := label+"_then", label+"_else", label+"_end"

	inner := NewExpressionContext(ctx)
	code, err := s.condition.Evaluate(inner, thenLabel, elseLabel)
	if err != nil {
		return nil, err
	}
	code.add(thenLabel + ":")
	thenCode, err := s.thenBlock.Compile(ctx)
	if err != nil {
		return nil, err
	}
	code.append(thenCode)
	code.add(tab + "b " + endLabel)
	code.add(elseLabel + ":")
	elseCode, err := s.elseBlock.Compile(ctx)
	if err != nil {
		return nil, err
	}
	code.append(elseCode)
	code.add(endLabel + ":")
	return code, nil
}

func (s *SwitchStatement) Compile(parentCtx *LocalContext) (*Code, error) {
	ctx := NewNestedContext(parentCtx)

	label := ctx.global.NewLabel()
	caseLabel, defaultLabel, endLabel := label+"_case", label+"_default", label+"_end"

	inner := NewExpressionContext(ctx)
	code, symbol, err := s.exp.Evaluate(inner)
	if err != nil {
		return nil, err
	}

	ctx.breakLabel = endLabel

	load, err := symbol.LoadValue("$v0")
	if err != nil {
		return nil, err
	}
	code.append(load)

	hasDefault := false
	for i, value := range s.caseValues {
		if value == nil {
			hasDefault = true
			continue
		}
		code.add(tab + "beq $v0, " + strconv.Itoa(int(*value)) + ", " + caseLabel + strconv.Itoa(i))
	}
	code.add(tab + "b " + defaultLabel)

	for i, body := range s.caseBodies {
		if s.caseValues[i] == nil {
			code.add(defaultLabel + ":")
		} else {
			code.add(caseLabel + strconv.Itoa(i) + ":")
		}
		for _, statement := range body {
			c, err := statement.Compile(ctx)
			if err != nil {
				return nil, err
			}
			code.append(c)
		}
	}
	// without a default arm the default target is the end of the switch
	if !hasDefault {
		code.add(defaultLabel + ":")
	}
	code.add(endLabel + ":")
	return code, nil
}

func (s *WhileStatement) Compile(parentCtx *LocalContext) (*Code, error) {
	ctx := NewNestedContext(parentCtx)

	label := ctx.global.NewLabel()
	loopLabel, bodyLabel, endLabel := label+"_loop", label+"_body", label+"_end"

	ctx.breakLabel = endLabel
	ctx.continueLabel = loopLabel

	inner := NewExpressionContext(ctx)

	code := newCode()
	code.add(loopLabel + ":")
	condition, err := s.condition.Evaluate(inner, bodyLabel, endLabel)
	if err != nil {
		return nil, err
	}
	code.append(condition)
	code.add(bodyLabel + ":")
	body, err := s.body.Compile(ctx)
	if err != nil {
		return nil, err
	}
	code.append(body)
	code.add(tab + "b " + loopLabel)
	code.add(endLabel + ":")
	return code, nil
}

func (s *ForStatement) Compile(parentCtx *LocalContext) (*Code, error) {
	ctx := NewNestedContext(parentCtx)

	label := ctx.global.NewLabel()
	loopLabel, bodyLabel := label+"_loop", label+"_body"
	stepLabel, endLabel := label+"_step", label+"_end"

	ctx.breakLabel = endLabel
	ctx.continueLabel = stepLabel

	inner := NewExpressionContext(ctx)

	code := newCode()
	for _, i := range s.initializer {
		c, err := i.Compile(ctx)
		if err != nil {
			return nil, err
		}
		code.append(c)
	}
	code.add(loopLabel + ":")
	condition, err := s.condition.Evaluate(inner, bodyLabel, endLabel)
	if err != nil {
		return nil, err
	}
	code.append(condition)
	code.add(bodyLabel + ":")
	body, err := s.body.Compile(ctx)
	if err != nil {
		return nil, err
	}
	code.append(body)
	code.add(stepLabel + ":")
	step, err := s.step.Compile(ctx)
	if err != nil {
		return nil, err
	}
	code.append(step)
	code.add(tab + "b " + loopLabel)
	code.add(endLabel + ":")
	return code, nil
}

func (s *ContinueStatement) Compile(ctx *LocalContext) (*Code, error) {
	label := ctx.LastContinueLabel()
	if label == "" {
		return nil, compileErrorf(s.loc, "no outer loop exists")
	}
	code := newCode()
	code.add(tab + "b " + label)
	return code, nil
}

func (s *BreakStatement) Compile(ctx *LocalContext) (*Code, error) {
	label := ctx.LastBreakLabel()
	if label == "" {
		return nil, compileErrorf(s.loc, "no outer loop or switch statement exists")
	}
	code := newCode()
	code.add(tab + "b " + label)
	return code, nil
}

func (s *ReturnStatement) Compile(ctx *LocalContext) (*Code, error) {
	returnType := ctx.function.fn.Type()

	code := newCode()
	switch {
	case s.exp != nil && (returnType.Equal(intType) || returnType.Equal(charType)):
		if value, ok := s.exp.Precompute(); ok {
			if returnType.Equal(charType) {
				value &= 0xff
			}
			code.add(tab + "li $v0, " + strconv.Itoa(int(value)))
		} else {
			inner := NewExpressionContext(ctx)
			expCode, symbol, err := s.exp.Evaluate(inner)
			if err != nil {
				return nil, err
			}
			code.append(expCode)
			load, err := symbol.LoadValue("$v0")
			if err != nil {
				return nil, err
			}
			code.append(load)
			if returnType.Equal(charType) {
				code.add(tab + "and $v0, $v0, 0xff")
			}
		}

	case s.exp == nil && returnType.Equal(voidType):
		// a bare return from a void function loads nothing

	default:
		return nil, compileErrorf(s.loc, "return value type does not match function return type")
	}

	code.add(tab + "b " + ctx.function.epilogueLabel)
	return code, nil
}

//  Definitions

func (d *FieldDefinition) Compile(ctx *GlobalContext) (*Code, error) {
	if _, err := ctx.DeclareField(NewField(d.name, d.typ, d.loc)); err != nil {
		return nil, err
	}

	code := newCode()
	if ctx.currentSection != "data" {
		ctx.currentSection = "data"
		code.add(".data")
	}

	code.add(d.name + ":")
	switch typ := d.typ.(type) {
	case ValueType:
		code.add(tab + typ.Allocation(d.value))

	case ArrayType:
		if d.hasValue {
			code.add(tab + typ.AllocationString(d.literal))
			if padding := typ.Width() - len(d.literal) - 1; padding > 0 {
				code.add(tab + ".space " + strconv.Itoa(padding))
			}
		} else {
			code.add(tab + typ.Allocation())
		}

	default:
		panic("field of type " + d.typ.Name())
	}

	code.add("")
	return code, nil
}

func (d *FunctionDefinition) Compile(ctx *GlobalContext) (*Code, error) {
	var paramTypes []SymbolType
	for _, p := range d.params {
		paramTypes = append(paramTypes, p.typ)
	}
	symbol, err := ctx.DeclareFunction(NewFunction(d.name, d.typ, paramTypes, d.loc))
	if err != nil {
		return nil, err
	}

	fctx := NewFunctionContext(ctx, symbol)

	// two synthetic slots head every frame: the return address and the
	// caller's frame pointer
	savedRA, err := fctx.DeclareParameter("$saved_ra", intType, d.loc)
	if err != nil {
		return nil, err
	}
	savedFP, err := fctx.DeclareParameter("$saved_fp", intType, d.loc)
	if err != nil {
		return nil, err
	}

	var params []*Variable
	for _, p := range d.params {
		v, err := fctx.DeclareParameter(p.name, p.typ, p.loc)
		if err != nil {
			return nil, err
		}
		params = append(params, v)
	}

	code := newCode()
	if ctx.currentSection != "text" {
		ctx.currentSection = "text"
		code.add(".text")
	}
	code.add(d.name + ":")

	// the body is walked first so the frame's stack depth is final by the
	// time the prologue and epilogue are rendered
	bodyCode, err := d.body.CompileInFunction(fctx)
	if err != nil {
		return nil, err
	}

	// prologue
	code.add(tab + "addu $sp, $sp, " + strconv.Itoa(-fctx.StackDepth()))
	if err := appendSave(code, savedRA, "$ra"); err != nil {
		return nil, err
	}
	if err := appendSave(code, savedFP, "$fp"); err != nil {
		return nil, err
	}
	code.add(tab + "move $fp, $sp")

	for i, param := range params {
		if err := appendSave(code, param, "$a"+strconv.Itoa(i)); err != nil {
			return nil, err
		}
	}

	code.append(bodyCode)

	// epilogue
	code.add(fctx.epilogueLabel + ":")
	code.add(tab + "move $sp, $fp")
	if err := appendLoad(code, savedRA, "$ra"); err != nil {
		return nil, err
	}
	if err := appendLoad(code, savedFP, "$fp"); err != nil {
		return nil, err
	}
	code.add(tab + "addu $sp, $sp, " + strconv.Itoa(fctx.StackDepth()))
	code.add(tab + "jr $ra")

	code.add("")
	return code, nil
}

// Compile emits the entry point. Main never saves $ra or $fp: it is
// reached by the preamble jump, not a call, and it leaves by jumping into
// the runtime's exit wrapper instead of returning.
func (d *MainFunctionDefinition) Compile(ctx *GlobalContext) (*Code, error) {
	symbol, err := ctx.DeclareFunction(NewFunction(d.name, d.typ, nil, d.loc))
	if err != nil {
		return nil, err
	}

	fctx := NewFunctionContext(ctx, symbol)

	code := newCode()
	if ctx.currentSection != "text" {
		ctx.currentSection = "text"
		code.add(".text")
	}

	code.add(".globl main")
	code.add(d.name + ":")

	bodyCode, err := d.body.CompileInFunction(fctx)
	if err != nil {
		return nil, err
	}

	// prologue
	code.add(tab + "addu $sp, $sp, " + strconv.Itoa(-fctx.StackDepth()))
	code.add(tab + "move $fp, $sp")

	code.append(bodyCode)

	// epilogue
	code.add(fctx.epilogueLabel + ":")
	code.add(tab + "move $sp, $fp")
	code.add(tab + "addu $sp, $sp, " + strconv.Itoa(fctx.StackDepth()))
	exitName := "exit"
	if !d.typ.Equal(voidType) {
		exitName = "exit2"
	}
	exitSymbol := ctx.Lookup(exitName)
	if exitSymbol == nil {
		return nil, compileErrorf(d.loc, "undefined symbol %q", exitName)
	}
	code.add(tab + "j " + exitSymbol.Name())

	code.add("")
	return code, nil
}

func appendSave(code *Code, v *Variable, reg string) error {
	c, err := v.SaveValue(reg)
	if err != nil {
		return err
	}
	code.append(c)
	return nil
}

func appendLoad(code *Code, v *Variable, reg string) error {
	c, err := v.LoadValue(reg)
	if err != nil {
		return err
	}
	code.append(c)
	return nil
}

//  Program

// builtinLocation is attached to the predeclared runtime symbols.
var builtinLocation = Location{File: "builtin", Line: 1, Column: 1, EndLine: 1, EndColumn: 1}

// declareBuiltins registers the runtime's entry points so user code can
// call them and the bounds check can reach its trap.
func declareBuiltins(ctx *GlobalContext) {
	declare := func(name string, returnType SymbolType, paramTypes ...SymbolType) {
		if _, err := ctx.DeclareFunction(NewFunction(name, returnType, paramTypes, builtinLocation)); err != nil {
			panic(err)
		}
	}

	declare("print_string", voidType, charPointerType)
	declare("print_char", voidType, charType)
	declare("print_int", voidType, intType)

	declare("read_string", voidType, charPointerType, intType)
	declare("read_char", charType)
	declare("read_int", intType)

	declare("exit", voidType)
	declare("exit2", voidType, intType)
	declare("$out_of_bounds_error", voidType, intType)
}

// Compile emits the whole program: the preamble, every definition in
// source order, and finally the runtime stub verbatim.
func (p *Program) Compile(runtimeStub string, printer Printer) (*Code, error) {
	ctx := NewGlobalContext(printer)
	declareBuiltins(ctx)

	ctx.currentSection = "text"
	code := newCode()
	code.add(".data")
	code.add(".align 2 # word align")
	code.add("")
	code.add(".text")
	code.add(tab + "j main # entry point")
	code.add("")

	for _, d := range p.definitions {
		c, err := d.Compile(ctx)
		if err != nil {
			return nil, err
		}
		code.append(c)
	}

	for _, line := range strings.Split(strings.TrimSuffix(runtimeStub, "\n"), "\n") {
		code.add(line)
	}

	return code, nil
}
