// Package codegen lowers a Kaleidoscope AST to SSA IR on top of
// github.com/llir/llvm (spec.md §4.3). All values are doubles; locals
// and parameters live in stack slots allocated in the owning function's
// entry block, loaded and stored explicitly, mirroring the teacher's
// LLVMIdent/localScopes convention in bootstrap/generate/generator.go —
// generalized from Chai's many-types scope table down to a single
// double-valued one, since Kaleidoscope has exactly one value type.
package codegen

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/frederikgramkortegaard/rust-kaleidoscope/internal/ast"
)

// Error is the error type returned for codegen failures, carrying the
// source line on which the failure was detected (spec.md §7).
type Error struct {
	Line int
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

func errorf(line int, format string, args ...interface{}) error {
	return &Error{Line: line, Msg: fmt.Sprintf(format, args...)}
}

// Generator owns the backend module and the state threaded through a
// single compilation: the prototype table, the set of backend functions
// declared so far, which of those have a body, the scoped symbol
// environment, and the insertion point.
type Generator struct {
	mod     *ir.Module
	protos  map[string]*ast.Prototype
	funcs   map[string]*ir.Func
	defined map[string]bool

	scopes []map[string]*ir.InstAlloca

	// phiVars backs genForPhi's alternate loop-variable binding, where
	// the variable is a live SSA phi value rather than a stack slot.
	// genFor (the default lowering) never touches this.
	phiVars map[string]value.Value

	enclosing *ir.Func
	entry     *ir.Block
	block     *ir.Block

	blockCounter     int
	topExprCounter   int
	lastTopLevelFunc *ir.Func
}

// New creates an empty generator, ready to Compile one program.
func New() *Generator {
	return &Generator{
		protos:  map[string]*ast.Prototype{},
		funcs:   map[string]*ir.Func{},
		defined: map[string]bool{},
	}
}

// Compile lowers a whole program's top-level items into a module and
// appends the synthetic main entry point (spec.md's "Top-level
// execution"). The first error aborts compilation of the remaining
// items, matching the parser's no-recovery behavior.
func (g *Generator) Compile(items []ast.TopLevelItem) (*ir.Module, error) {
	g.mod = ir.NewModule()

	for _, item := range items {
		var err error
		switch v := item.(type) {
		case *ast.ExternDecl:
			err = g.genExternDecl(v.Proto)
		case *ast.FuncDef:
			err = g.genFuncDef(v.Fn)
		}
		if err != nil {
			return nil, err
		}
	}

	g.genMain()
	return g.mod, nil
}

// -----------------------------------------------------------------------------

// declareFunc returns the backend function registered under name,
// creating it (with fresh double-typed parameters) if this is its first
// mention, whether from an extern, a forward reference, or a def.
func (g *Generator) declareFunc(name string, arity int) *ir.Func {
	if fn, ok := g.funcs[name]; ok {
		return fn
	}

	params := make([]*ir.Param, arity)
	for i := range params {
		params[i] = ir.NewParam(fmt.Sprintf("arg%d", i), types.Double)
	}

	fn := g.mod.NewFunc(name, types.Double, params...)
	fn.Linkage = enum.LinkageExternal
	g.funcs[name] = fn
	return fn
}

func (g *Generator) genExternDecl(proto *ast.Prototype) error {
	g.declareFunc(proto.Name, len(proto.Params))
	g.protos[proto.Name] = proto
	return nil
}

// genFuncDef lowers a def, either a named function/operator or a bare
// top-level expression (which gets its own mangled backend name so that
// repeated `_top_level_expr`s don't collide: `_top_level_expr.0`,
// `_top_level_expr.1`, ...).
func (g *Generator) genFuncDef(fn *ast.Function) error {
	if fn.Proto.Name == ast.TopLevelExprName {
		return g.genTopLevelExpr(fn)
	}

	proto := fn.Proto
	if g.defined[proto.Name] {
		return errorf(proto.Line, "function %q cannot be redefined", proto.Name)
	}

	llFunc := g.declareFunc(proto.Name, len(proto.Params))
	g.protos[proto.Name] = proto

	if err := g.lowerBody(llFunc, proto.Params, fn.Body); err != nil {
		return err
	}

	g.defined[proto.Name] = true
	return nil
}

func (g *Generator) genTopLevelExpr(fn *ast.Function) error {
	mangled := fmt.Sprintf("%s.%d", ast.TopLevelExprName, g.topExprCounter)
	g.topExprCounter++

	llFunc := g.mod.NewFunc(mangled, types.Double)
	llFunc.Linkage = enum.LinkageInternal

	if err := g.lowerBody(llFunc, nil, fn.Body); err != nil {
		return err
	}

	g.lastTopLevelFunc = llFunc
	return nil
}

// lowerBody builds the entry block, hoists parameter stack slots into
// it, lowers body, emits the implicit return, and verifies the result
// (spec.md §4.3 steps 2-5).
func (g *Generator) lowerBody(llFunc *ir.Func, params []string, body ast.Expr) error {
	entry := llFunc.NewBlock("entry")
	g.enclosing = llFunc
	g.entry = entry
	g.block = entry

	g.pushScope()

	for i, name := range params {
		slot := entry.NewAlloca(types.Double)
		entry.NewStore(llFunc.Params[i], slot)
		g.define(name, slot)
	}

	result, err := g.genExpr(body)
	if err != nil {
		g.popScope()
		return err
	}

	g.block.NewRet(result)
	g.popScope()

	if !g.verify(llFunc) {
		g.removeFunc(llFunc)
		return fmt.Errorf("function %q failed backend verification", llFunc.GlobalName)
	}

	return nil
}

// genMain synthesizes the entry point the JIT looks up and invokes:
// it calls the last top-level expression seen, or returns 0.0 if the
// program had none.
func (g *Generator) genMain() {
	mainFunc := g.mod.NewFunc("main", types.Double)
	mainFunc.Linkage = enum.LinkageExternal
	entry := mainFunc.NewBlock("entry")

	var result value.Value
	if g.lastTopLevelFunc != nil {
		result = entry.NewCall(g.lastTopLevelFunc)
	} else {
		result = constant.NewFloat(types.Double, 0.0)
	}

	entry.NewRet(result)
}

// verify checks that every block of fn ends in a terminator. Real
// miscompilation in this generator would mean a code path through
// genExpr left the current block untermined; this is the backstop
// spec.md §4.3 step 5 requires before a function is accepted.
func (g *Generator) verify(fn *ir.Func) bool {
	for _, b := range fn.Blocks {
		if b.Term == nil {
			return false
		}
	}
	return true
}

// removeFunc drops fn from the module and from the function table, so a
// verification failure leaves the module in a valid state (spec.md §7).
func (g *Generator) removeFunc(fn *ir.Func) {
	for i, f := range g.mod.Funcs {
		if f == fn {
			g.mod.Funcs = append(g.mod.Funcs[:i], g.mod.Funcs[i+1:]...)
			break
		}
	}
	for name, f := range g.funcs {
		if f == fn {
			delete(g.funcs, name)
			delete(g.defined, name)
		}
	}
}

// -----------------------------------------------------------------------------

func (g *Generator) pushScope() {
	g.scopes = append(g.scopes, map[string]*ir.InstAlloca{})
}

func (g *Generator) popScope() {
	g.scopes = g.scopes[:len(g.scopes)-1]
}

func (g *Generator) define(name string, slot *ir.InstAlloca) {
	g.scopes[len(g.scopes)-1][name] = slot
}

// lookup walks the scope stack innermost-first, implementing shadowing.
func (g *Generator) lookup(name string) (*ir.InstAlloca, bool) {
	for i := len(g.scopes) - 1; i >= 0; i-- {
		if slot, ok := g.scopes[i][name]; ok {
			return slot, true
		}
	}
	return nil, false
}

func (g *Generator) newBlockName(tag string) string {
	g.blockCounter++
	return fmt.Sprintf("%s%d", tag, g.blockCounter)
}
