package compiler

import "strconv"

// stackAlignment is the slot granularity of the stack frame. Every local
// and temporary reserves a multiple of this, even a single char.
const stackAlignment = 4

//  GlobalContext

// GlobalContext is the outermost scope of one compilation: global fields,
// functions, the diagnostics sink, and the label counter. It is created
// fresh per compilation so concurrent compilations never share labels.
type GlobalContext struct {
	currentSection string
	printer        Printer
	labelCount     int
	symbols        map[string]Symbol
}

func NewGlobalContext(printer Printer) *GlobalContext {
	if printer == nil {
		printer = func(Location, string, string) {}
	}
	return &GlobalContext{
		currentSection: "code",
		printer:        printer,
		symbols:        make(map[string]Symbol),
	}
}

// NewLabel returns a fresh label $L1, $L2, ... unique in this compilation.
func (g *GlobalContext) NewLabel() string {
	g.labelCount++
	return "$L" + strconv.Itoa(g.labelCount)
}

func (g *GlobalContext) DeclareField(field *Field) (*Field, error) {
	if _, exists := g.symbols[field.Name()]; exists {
		return nil, compileErrorf(field.Loc(), "redeclaration of global variable %q", field.Name())
	}
	g.symbols[field.Name()] = field
	return field, nil
}

func (g *GlobalContext) DeclareFunction(function *Function) (*Function, error) {
	if _, exists := g.symbols[function.Name()]; exists {
		return nil, compileErrorf(function.Loc(), "redeclaration of function %q", function.Name())
	}
	g.symbols[function.Name()] = function
	return function, nil
}

// Lookup returns the named global symbol, or nil.
func (g *GlobalContext) Lookup(name string) Symbol {
	if s, ok := g.symbols[name]; ok {
		return s
	}
	return nil
}

//  FunctionContext

// FunctionContext tracks one function's parameters, its epilogue label,
// and the frame's high-water stack depth. The depth cell is shared with
// every variable declared below so late frame growth reaches all of them.
type FunctionContext struct {
	global *GlobalContext
	fn     *Function

	epilogueLabel string

	contextDepth int
	stackDepth   *int
	symbols      []*Variable
}

func NewFunctionContext(global *GlobalContext, fn *Function) *FunctionContext {
	depth := 0
	return &FunctionContext{
		global:        global,
		fn:            fn,
		epilogueLabel: "$" + fn.Name() + "_epilogue",
		stackDepth:    &depth,
	}
}

// StackDepth returns the frame's current high-water mark in bytes.
func (f *FunctionContext) StackDepth() int { return *f.stackDepth }

// UpdateStackDepth publishes a deeper requirement to the shared cell.
func (f *FunctionContext) UpdateStackDepth(depth int) {
	if f.contextDepth+depth > *f.stackDepth {
		*f.stackDepth = f.contextDepth + depth
	}
}

// DeclareParameter reserves the next aligned slot in the parameter area.
func (f *FunctionContext) DeclareParameter(name string, typ SymbolType, loc Location) (*Variable, error) {
	for _, s := range f.symbols {
		if s.Name() == name {
			return nil, compileErrorf(loc, "redeclaration of function parameter %q", name)
		}
	}
	v := NewVariable(name, typ, f.contextDepth, f.stackDepth, loc)
	f.symbols = append(f.symbols, v)

	f.contextDepth += alignedWidth(typ, stackAlignment)
	f.UpdateStackDepth(0)
	return v, nil
}

// Lookup resolves a name against the parameters, then the globals.
func (f *FunctionContext) Lookup(name string) Symbol {
	for _, s := range f.symbols {
		if s.Name() == name {
			return s
		}
	}
	return f.global.Lookup(name)
}

//  LocalContext

// LocalContext is one lexical scope inside a function body. Contexts nest;
// each holds its own declarations and depth, and optionally the break and
// continue labels of the innermost enclosing loop or switch.
type LocalContext struct {
	previous *LocalContext
	function *FunctionContext
	global   *GlobalContext

	contextDepth int
	symbols      []*Variable

	breakLabel    string
	continueLabel string
}

// NewLocalContext opens the outermost scope of a function body.
func NewLocalContext(function *FunctionContext) *LocalContext {
	return &LocalContext{function: function, global: function.global}
}

// NewNestedContext opens a scope inside an existing one.
func NewNestedContext(previous *LocalContext) *LocalContext {
	return &LocalContext{
		previous: previous,
		function: previous.function,
		global:   previous.global,
	}
}

// CumulativeDepth is the bytes consumed by every scope from the function's
// parameter area down to and including this one.
func (l *LocalContext) CumulativeDepth() int {
	if l.previous == nil {
		return l.function.contextDepth + l.contextDepth
	}
	return l.previous.CumulativeDepth() + l.contextDepth
}

// UpdateStackDepth propagates a depth requirement up the scope chain.
func (l *LocalContext) UpdateStackDepth(depth int) {
	if l.previous == nil {
		l.function.UpdateStackDepth(l.contextDepth + depth)
	} else {
		l.previous.UpdateStackDepth(l.contextDepth + depth)
	}
}

// DeclareVariable reserves an aligned slot for a named local in this scope.
// Redeclaring a name present in this same scope is an error; shadowing an
// outer scope is allowed.
func (l *LocalContext) DeclareVariable(name string, typ SymbolType, loc Location) (*Variable, error) {
	for _, s := range l.symbols {
		if s.Name() == name {
			return nil, compileErrorf(loc, "redeclaration of local variable %q", name)
		}
	}
	offset := l.CumulativeDepth() + alignedWidth(typ, stackAlignment) - stackAlignment
	v := NewVariable(name, typ, offset, l.function.stackDepth, loc)
	l.symbols = append(l.symbols, v)

	l.contextDepth += alignedWidth(typ, stackAlignment)
	l.UpdateStackDepth(0)
	return v, nil
}

// Lookup resolves a name from the innermost scope outward.
func (l *LocalContext) Lookup(name string) Symbol {
	for _, s := range l.symbols {
		if s.Name() == name {
			return s
		}
	}
	if l.previous != nil {
		return l.previous.Lookup(name)
	}
	return l.function.Lookup(name)
}

// LastBreakLabel climbs the scope chain for the innermost break target.
func (l *LocalContext) LastBreakLabel() string {
	if l.breakLabel != "" {
		return l.breakLabel
	}
	if l.previous != nil {
		return l.previous.LastBreakLabel()
	}
	return ""
}

// LastContinueLabel climbs the scope chain for the innermost continue target.
func (l *LocalContext) LastContinueLabel() string {
	if l.continueLabel != "" {
		return l.continueLabel
	}
	if l.previous != nil {
		return l.previous.LastContinueLabel()
	}
	return ""
}

//  ExpressionContext

// ExpressionContext allocates stack slots for the temporaries of one
// expression tree. Forking it for a subexpression lets temporaries of
// sibling subtrees overlap in the frame.
type ExpressionContext struct {
	local        *LocalContext
	contextDepth int
}

func NewExpressionContext(local *LocalContext) *ExpressionContext {
	return &ExpressionContext{local: local}
}

// fork clones the context at its current depth.
func (e *ExpressionContext) fork() *ExpressionContext {
	return &ExpressionContext{local: e.local, contextDepth: e.contextDepth}
}

// NewTemp reserves a fresh anonymous stack slot for an intermediate value.
func (e *ExpressionContext) NewTemp(typ SymbolType, loc Location) *Variable {
	offset := e.local.CumulativeDepth() + e.contextDepth
	temp := NewVariable("", typ, offset, e.local.function.stackDepth, loc)

	e.contextDepth += stackAlignment
	e.local.UpdateStackDepth(e.contextDepth)
	return temp
}

// NewIntTemp reserves an int-typed temporary, the common case.
func (e *ExpressionContext) NewIntTemp(loc Location) *Variable {
	return e.NewTemp(intType, loc)
}
