package compiler

import (
	"fmt"
	"strconv"
)

//  Statement nodes

// Statement is implemented by every node compiled for effect inside a
// function body.
type Statement interface {
	Loc() Location
	Compile(ctx *LocalContext) (*Code, error)
	Tree(indent int) string
}

type stmtBase struct {
	loc Location
}

func (s *stmtBase) Loc() Location { return s.loc }

// VariableDeclaration reserves a named slot in the current scope. It emits
// no code; the declaration itself accounts for the stack space.
type VariableDeclaration struct {
	stmtBase
	name string
	typ  SymbolType
}

func NewVariableDeclaration(name string, typ SymbolType, loc Location) *VariableDeclaration {
	return &VariableDeclaration{stmtBase{loc}, name, typ}
}

func (d *VariableDeclaration) Tree(indent int) string {
	return pad(indent) + d.name + " : " + d.typ.Name() + "\n"
}

// ExpressionStatement evaluates an expression for its side effects.
type ExpressionStatement struct {
	stmtBase
	exp Expression
}

func NewExpressionStatement(exp Expression) *ExpressionStatement {
	return &ExpressionStatement{stmtBase{exp.Loc()}, exp}
}

func (s *ExpressionStatement) Tree(indent int) string {
	return s.exp.Tree(indent)
}

// StatementBlock is a braced sequence of statements with its own scope.
type StatementBlock struct {
	stmtBase
	statements []Statement
}

func NewStatementBlock(statements []Statement, loc Location) *StatementBlock {
	return &StatementBlock{stmtBase{loc}, statements}
}

func (b *StatementBlock) Tree(indent int) string {
	str := pad(indent) + "block\n"
	for _, s := range b.statements {
		str += s.Tree(indent + treeIndent)
	}
	return str
}

// IfElseStatement branches on a condition. Both blocks are always present;
// a missing else parses as an empty block.
type IfElseStatement struct {
	stmtBase
	condition LogicalExpression
	thenBlock *StatementBlock
	elseBlock *StatementBlock
}

func NewIfElseStatement(condition Expression, thenBlock, elseBlock *StatementBlock, loc Location) *IfElseStatement {
	return &IfElseStatement{stmtBase{loc}, logicalIfNeeded(condition), thenBlock, elseBlock}
}

func (s *IfElseStatement) Tree(indent int) string {
	str := pad(indent) + "if\n"
	str += pad(indent+treeIndent) + "condition\n"
	str += s.condition.Tree(indent + 2*treeIndent)
	str += pad(indent+treeIndent) + "then\n"
	str += s.thenBlock.Tree(indent + 2*treeIndent)
	str += pad(indent+treeIndent) + "else\n"
	str += s.elseBlock.Tree(indent + 2*treeIndent)
	return str
}

// WhileStatement is a top-tested loop.
type WhileStatement struct {
	stmtBase
	condition LogicalExpression
	body      *StatementBlock
}

func NewWhileStatement(condition Expression, body *StatementBlock, loc Location) *WhileStatement {
	return &WhileStatement{stmtBase{loc}, logicalIfNeeded(condition), body}
}

func (s *WhileStatement) Tree(indent int) string {
	str := pad(indent) + "while\n"
	str += pad(indent+treeIndent) + "condition\n"
	str += s.condition.Tree(indent + 2*treeIndent)
	str += pad(indent+treeIndent) + "do\n"
	str += s.body.Tree(indent + 2*treeIndent)
	return str
}

// ForStatement runs its initializers once, then loops with the condition
// at the top and the step after the body. The initializers and the step
// live in the for's own scope, so loop declarations shadow outer names.
type ForStatement struct {
	stmtBase
	initializer []Statement
	condition   LogicalExpression
	step        Statement
	body        *StatementBlock
}

func NewForStatement(initializer []Statement, condition Expression, step Statement,
	body *StatementBlock, loc Location) *ForStatement {
	return &ForStatement{
		stmtBase{loc.Span(body.Loc())},
		initializer,
		logicalIfNeeded(condition),
		step,
		body,
	}
}

func (s *ForStatement) Tree(indent int) string {
	str := pad(indent) + "for\n"
	str += pad(indent+treeIndent) + "init\n"
	for _, i := range s.initializer {
		str += i.Tree(indent + 2*treeIndent)
	}
	str += pad(indent+treeIndent) + "condition\n"
	str += s.condition.Tree(indent + 2*treeIndent)
	str += pad(indent+treeIndent) + "step\n"
	str += s.step.Tree(indent + 2*treeIndent)
	str += pad(indent+treeIndent) + "do\n"
	str += s.body.Tree(indent + 2*treeIndent)
	return str
}

// SwitchStatement is populated incrementally while it is being parsed:
// the scrutinee, then alternating case markers and body statements.
// A nil entry in caseValues marks the default case.
type SwitchStatement struct {
	stmtBase
	exp        IntegralExpression
	caseValues []*int32
	caseBodies [][]Statement
}

func NewSwitchStatement(loc Location) *SwitchStatement {
	return &SwitchStatement{stmtBase: stmtBase{loc}}
}

func (s *SwitchStatement) SetExpression(exp Expression) {
	s.exp = integralIfNeeded(exp)
}

// AddCase opens a case arm. The value must be a compile-time constant and
// unique within this switch.
func (s *SwitchStatement) AddCase(valueExp Expression, loc Location) error {
	value, ok := integralIfNeeded(valueExp).Precompute()
	if !ok {
		return syntaxErrorf(loc, "case value must be a compile-time constant expression")
	}
	for _, other := range s.caseValues {
		if other != nil && *other == value {
			return syntaxErrorf(loc, "redeclaration of a case with the same value")
		}
	}
	s.caseValues = append(s.caseValues, &value)
	s.caseBodies = append(s.caseBodies, nil)
	return nil
}

// AddDefaultCase opens the default arm; at most one may exist.
func (s *SwitchStatement) AddDefaultCase(loc Location) error {
	for _, other := range s.caseValues {
		if other == nil {
			return syntaxErrorf(loc, "redeclaration of the default case")
		}
	}
	s.caseValues = append(s.caseValues, nil)
	s.caseBodies = append(s.caseBodies, nil)
	return nil
}

// AddStatement appends a statement to the most recently opened arm.
func (s *SwitchStatement) AddStatement(statement Statement) error {
	if len(s.caseBodies) == 0 {
		return syntaxErrorf(statement.Loc(), "no case declared before this statement")
	}
	last := len(s.caseBodies) - 1
	s.caseBodies[last] = append(s.caseBodies[last], statement)
	return nil
}

func (s *SwitchStatement) Tree(indent int) string {
	str := pad(indent) + "switch\n"
	str += pad(indent+treeIndent) + "on\n"
	str += s.exp.Tree(indent + 2*treeIndent)
	for i := range s.caseBodies {
		if s.caseValues[i] == nil {
			str += pad(indent+treeIndent) + "default\n"
		} else {
			str += pad(indent+treeIndent) + "case " + strconv.Itoa(int(*s.caseValues[i])) + "\n"
		}
		for _, stmt := range s.caseBodies[i] {
			str += stmt.Tree(indent + 2*treeIndent)
		}
	}
	return str
}

// ContinueStatement jumps to the innermost loop's continue label.
type ContinueStatement struct {
	stmtBase
}

func NewContinueStatement(loc Location) *ContinueStatement {
	return &ContinueStatement{stmtBase{loc}}
}

func (s *ContinueStatement) Tree(indent int) string {
	return pad(indent) + "continue\n"
}

// BreakStatement jumps to the innermost loop's or switch's break label.
type BreakStatement struct {
	stmtBase
}

func NewBreakStatement(loc Location) *BreakStatement {
	return &BreakStatement{stmtBase{loc}}
}

func (s *BreakStatement) Tree(indent int) string {
	return pad(indent) + "break\n"
}

// ReturnStatement branches to the function's epilogue, loading the return
// value into $v0 first when the function returns one.
type ReturnStatement struct {
	stmtBase
	exp IntegralExpression // nil for a bare return
}

func NewReturnStatement(exp Expression, loc Location) *ReturnStatement {
	s := &ReturnStatement{stmtBase: stmtBase{loc}}
	if exp != nil {
		s.exp = integralIfNeeded(exp)
	}
	return s
}

func (s *ReturnStatement) Tree(indent int) string {
	str := pad(indent) + "return\n"
	if s.exp != nil {
		str += s.exp.Tree(indent + treeIndent)
	}
	return str
}

//  Definitions

// Definition is a top-level entity: a global field or a function.
type Definition interface {
	Loc() Location
	Compile(ctx *GlobalContext) (*Code, error)
	Tree(indent int) string
}

// FieldDefinition declares a global. Value-typed fields carry a constant
// initializer; char arrays may carry a string literal.
type FieldDefinition struct {
	loc      Location
	name     string
	typ      SymbolType
	hasValue bool
	value    int32
	literal  string
}

func (d *FieldDefinition) Loc() Location { return d.loc }

// NewFieldDefinition declares an uninitialized global.
func NewFieldDefinition(name string, typ SymbolType, loc Location) *FieldDefinition {
	return &FieldDefinition{loc: loc, name: name, typ: typ}
}

// NewFieldDefinitionValue declares an initialized global, validating the
// initializer against the field's type at construction time.
func NewFieldDefinitionValue(name string, typ SymbolType, exp Expression, loc Location) (*FieldDefinition, error) {
	d := &FieldDefinition{loc: loc.Span(exp.Loc()), name: name, typ: typ}

	literal, isLiteral := exp.(*StringLiteral)
	switch {
	case isValueType(typ) && !isLiteral:
		value, ok := integralIfNeeded(exp).Precompute()
		if !ok {
			return nil, syntaxErrorf(d.loc, "value assigned to a global variable must be a constant expression")
		}
		d.value = value

	case isLiteral:
		array, ok := typ.(ArrayType)
		if !ok || !array.Elem.Equal(charType) {
			return nil, syntaxErrorf(d.loc, "a string literal can only initialize an array of characters")
		}
		if len(literal.value)+1 > array.Width() {
			return nil, syntaxErrorf(d.loc, "the assigned string literal does not fit in the array")
		}
		d.literal = literal.value

	default:
		return nil, syntaxErrorf(d.loc, "a string literal can only initialize an array of characters")
	}

	d.hasValue = true
	return d, nil
}

func (d *FieldDefinition) Tree(indent int) string {
	str := pad(indent) + "variable " + d.name + " : " + d.typ.Name()
	if d.hasValue {
		if isValueType(d.typ) {
			str += " = " + strconv.Itoa(int(d.value))
		} else {
			str += " = " + fmt.Sprintf("%q", d.literal)
		}
	}
	return str + "\n"
}

// FunctionDefinition declares and compiles one user function.
type FunctionDefinition struct {
	loc    Location
	name   string
	typ    SymbolType // return type
	params []*VariableDeclaration
	body   *StatementBlock
}

func (d *FunctionDefinition) Loc() Location { return d.loc }

// NewFunctionDefinition rejects more than four parameters; the error is
// keyed to the span of the excess declarations.
func NewFunctionDefinition(name string, typ SymbolType, params []*VariableDeclaration,
	body *StatementBlock, loc Location) (*FunctionDefinition, error) {
	if len(params) > 4 {
		span := params[4].Loc().Span(params[len(params)-1].Loc())
		return nil, syntaxErrorf(span, "a function definition cannot have more than 4 input parameters")
	}
	return &FunctionDefinition{loc: loc, name: name, typ: typ, params: params, body: body}, nil
}

func (d *FunctionDefinition) Tree(indent int) string {
	str := pad(indent) + "function " + d.name + " : " + d.typ.Name() + "\n"
	if len(d.params) > 0 {
		str += pad(indent+treeIndent) + "parameters\n"
		for _, p := range d.params {
			str += p.Tree(indent + 2*treeIndent)
		}
	}
	str += pad(indent+treeIndent) + "body\n"
	str += d.body.Tree(indent + 2*treeIndent)
	return str
}

// MainFunctionDefinition is the entry point. It takes no parameters and,
// unlike other functions, never saves $ra or $fp: it is entered from the
// runtime preamble and leaves by jumping into the runtime's exit path.
type MainFunctionDefinition struct {
	*FunctionDefinition
}

func NewMainFunctionDefinition(typ SymbolType, body *StatementBlock, loc Location) *MainFunctionDefinition {
	return &MainFunctionDefinition{
		&FunctionDefinition{loc: loc, name: "main", typ: typ, body: body},
	}
}

// Program is the root of the AST: the ordered top-level definitions.
type Program struct {
	definitions []Definition
}

func NewProgram(definitions []Definition) *Program {
	return &Program{definitions: definitions}
}

func (p *Program) Tree(indent int) string {
	str := pad(indent) + "program\n"
	for _, d := range p.definitions {
		str += d.Tree(indent + treeIndent)
	}
	return str
}
