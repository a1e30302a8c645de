package compiler

import "fmt"

// Symbol is a named entity the code generator can address: a global field,
// a function, a stack variable, or the void result placeholder. Each
// variant knows how to emit its own load/save/address sequences.
type Symbol interface {
	Name() string
	Type() SymbolType
	Loc() Location

	LoadValue(reg string) (*Code, error)
	SaveValue(reg string) (*Code, error)
	LoadAddress(reg string) (*Code, error)
	LoadElementValue(indexReg, destReg string) (*Code, error)
	SaveElementValue(indexReg, sourceReg string) (*Code, error)
}

type symbolBase struct {
	name string
	typ  SymbolType
	loc  Location
}

func (s *symbolBase) Name() string     { return s.name }
func (s *symbolBase) Type() SymbolType { return s.typ }
func (s *symbolBase) Loc() Location    { return s.loc }

// readableName is the diagnostic spelling of the symbol. Unnamed symbols
// (expression temporaries, call results) print as "result".
func (s *symbolBase) readableName() string {
	if s.name == "" {
		return "result"
	}
	return fmt.Sprintf("symbol %q", s.name)
}

//  Field: global data, addressed by label

type Field struct {
	symbolBase
}

func NewField(name string, typ SymbolType, loc Location) *Field {
	return &Field{symbolBase{name: name, typ: typ, loc: loc}}
}

func (f *Field) LoadAddress(reg string) (*Code, error) {
	code := newCode()
	code.add(tab + "la " + reg + ", " + f.name)
	return code, nil
}

func (f *Field) LoadValue(reg string) (*Code, error) {
	if isArrayType(f.typ) {
		return f.LoadAddress(reg)
	}
	code := newCode()
	code.add(tab + "lw " + reg + ", " + f.name)
	return code, nil
}

func (f *Field) SaveValue(reg string) (*Code, error) {
	if isArrayType(f.typ) {
		return nil, compileErrorf(f.loc, "%s of type %q is not assignable", f.readableName(), f.typ.Name())
	}
	code := newCode()
	code.add(tab + "sw " + reg + ", " + f.name)
	return code, nil
}

func (f *Field) LoadElementValue(indexReg, destReg string) (*Code, error) {
	return f.element("lb", "lw", indexReg, destReg)
}

func (f *Field) SaveElementValue(indexReg, sourceReg string) (*Code, error) {
	return f.element("sb", "sw", indexReg, sourceReg)
}

// element dispatches an indexed global access on the element width.
func (f *Field) element(byteOp, wordOp, indexReg, valueReg string) (*Code, error) {
	array, ok := f.typ.(ArrayType)
	if !ok {
		return nil, compileErrorf(f.loc, "%s of type %s is not indexable", f.readableName(), f.typ.Name())
	}

	code := newCode()
	switch array.Elem.Width() {
	case 1:
		code.add(tab + byteOp + " " + valueReg + ", " + f.name + "(" + indexReg + ")")
	case 4:
		code.add(tab + "mul " + indexReg + ", " + indexReg + ", 4")
		code.add(tab + wordOp + " " + valueReg + ", " + f.name + "(" + indexReg + ")")
	default:
		return nil, compileErrorf(f.loc, "unsupported type width")
	}
	return code, nil
}

//  Function: label plus signature; not loadable, not indexable

type Function struct {
	symbolBase
	ParamTypes []SymbolType
}

func NewFunction(name string, returnType SymbolType, paramTypes []SymbolType, loc Location) *Function {
	return &Function{
		symbolBase: symbolBase{name: name, typ: returnType, loc: loc},
		ParamTypes: paramTypes,
	}
}

func (f *Function) LoadAddress(reg string) (*Code, error) {
	code := newCode()
	code.add(tab + "la " + reg + ", " + f.name)
	return code, nil
}

func (f *Function) LoadValue(reg string) (*Code, error) {
	return nil, compileErrorf(f.loc, "%s is not a variable", f.readableName())
}

func (f *Function) SaveValue(reg string) (*Code, error) {
	return nil, compileErrorf(f.loc, "%s is not a variable", f.readableName())
}

func (f *Function) LoadElementValue(indexReg, destReg string) (*Code, error) {
	return nil, compileErrorf(f.loc, "%s is not indexable", f.readableName())
}

func (f *Function) SaveElementValue(indexReg, sourceReg string) (*Code, error) {
	return nil, compileErrorf(f.loc, "%s is not indexable", f.readableName())
}

//  Variable: parameter, local, or expression temporary on the stack

// Variable lives in the current function's frame. Its offset is fixed at
// declaration time, but the frame size keeps growing while the body is
// walked, so the runtime address stackDepth-offset is resolved only when
// the emitted code is rendered.
type Variable struct {
	symbolBase
	Offset     int
	stackDepth *int // shared with the owning FunctionContext
}

func NewVariable(name string, typ SymbolType, offset int, stackDepth *int, loc Location) *Variable {
	return &Variable{
		symbolBase: symbolBase{name: name, typ: typ, loc: loc},
		Offset:     offset,
		stackDepth: stackDepth,
	}
}

// StackAddress is the slot's distance above $sp once the frame is final.
func (v *Variable) StackAddress() int { return *v.stackDepth - v.Offset }

func (v *Variable) LoadValue(reg string) (*Code, error) {
	if isArrayType(v.typ) {
		return v.LoadAddress(reg)
	}
	code := newCode()
	code.addSlot(tab+"lw "+reg+", ", v, "($sp)")
	return code, nil
}

func (v *Variable) SaveValue(reg string) (*Code, error) {
	if isArrayType(v.typ) {
		return nil, compileErrorf(v.loc, "%s of type %q is not assignable", v.readableName(), v.typ.Name())
	}
	code := newCode()
	code.addSlot(tab+"sw "+reg+", ", v, "($sp)")
	return code, nil
}

func (v *Variable) LoadAddress(reg string) (*Code, error) {
	code := newCode()
	code.addSlot(tab+"addu "+reg+", $sp, ", v, "")
	return code, nil
}

func (v *Variable) LoadElementValue(indexReg, destReg string) (*Code, error) {
	return v.element("lb", "lw", indexReg, destReg)
}

func (v *Variable) SaveElementValue(indexReg, sourceReg string) (*Code, error) {
	return v.element("sb", "sw", indexReg, sourceReg)
}

// element dispatches an indexed stack access on the element width. Array
// accesses address the slot relative to $sp; pointer accesses first load
// the pointer into the $t0 scratch register and index through it.
func (v *Variable) element(byteOp, wordOp, indexReg, valueReg string) (*Code, error) {
	elem, ok := elementType(v.typ)
	if !ok {
		return nil, compileErrorf(v.loc, "%s of type %s is not indexable", v.readableName(), v.typ.Name())
	}

	code := newCode()
	switch elem.Width() {
	case 1:
	case 4:
		code.add(tab + "mul " + indexReg + ", " + indexReg + ", 4")
	default:
		return nil, compileErrorf(v.loc, "unsupported type width")
	}

	op := byteOp
	if elem.Width() == 4 {
		op = wordOp
	}
	if isArrayType(v.typ) {
		code.add(tab + "addu " + indexReg + ", $sp, " + indexReg)
		code.addSlot(tab+op+" "+valueReg+", ", v, "("+indexReg+")")
	} else {
		loaded, err := v.LoadValue("$t0")
		if err != nil {
			return nil, err
		}
		code.append(loaded)
		code.add(tab + "addu " + indexReg + ", $t0, " + indexReg)
		code.add(tab + op + " " + valueReg + ", (" + indexReg + ")")
	}
	return code, nil
}

//  VoidResult: sentinel for expressions of type void

type VoidResult struct {
	symbolBase
}

func NewVoidResult(loc Location) *VoidResult {
	return &VoidResult{symbolBase{name: "void", typ: voidType, loc: loc}}
}

func (v *VoidResult) invalidAccess() error {
	return compileErrorf(v.loc, "type of result is \"void\"")
}

func (v *VoidResult) LoadValue(reg string) (*Code, error)   { return nil, v.invalidAccess() }
func (v *VoidResult) SaveValue(reg string) (*Code, error)   { return nil, v.invalidAccess() }
func (v *VoidResult) LoadAddress(reg string) (*Code, error) { return nil, v.invalidAccess() }

func (v *VoidResult) LoadElementValue(indexReg, destReg string) (*Code, error) {
	return nil, v.invalidAccess()
}

func (v *VoidResult) SaveElementValue(indexReg, sourceReg string) (*Code, error) {
	return nil, v.invalidAccess()
}
