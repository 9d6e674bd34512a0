package codegen

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/frederikgramkortegaard/rust-kaleidoscope/internal/ast"
)

// zero and one are the only float constants codegen needs to fabricate
// on its own (truthiness tests and the default for-loop step).
var (
	zero = constant.NewFloat(types.Double, 0.0)
	one  = constant.NewFloat(types.Double, 1.0)
)

// genExpr lowers a single expression to the SSA value it evaluates to,
// per the per-variant rules in spec.md §4.3.
func (g *Generator) genExpr(expr ast.Expr) (value.Value, error) {
	switch v := expr.(type) {
	case *ast.NumberExpr:
		return constant.NewFloat(types.Double, v.Value), nil
	case *ast.VariableExpr:
		return g.genVariable(v)
	case *ast.AssignExpr:
		return g.genAssign(v)
	case *ast.UnaryExpr:
		return g.genUnary(v)
	case *ast.BinaryExpr:
		return g.genBinary(v)
	case *ast.CallExpr:
		return g.genCall(v)
	case *ast.IfExpr:
		return g.genIf(v)
	case *ast.ForExpr:
		return g.genFor(v)
	case *ast.VarExpr:
		return g.genVar(v)
	default:
		return nil, errorf(0, "internal error: unhandled expression type %T", expr)
	}
}

func (g *Generator) genVariable(v *ast.VariableExpr) (value.Value, error) {
	if val, ok := g.phiVars[v.Name]; ok {
		return val, nil
	}

	slot, ok := g.lookup(v.Name)
	if !ok {
		return nil, errorf(v.Line, "unknown variable %q", v.Name)
	}
	return g.block.NewLoad(types.Double, slot), nil
}

func (g *Generator) genAssign(v *ast.AssignExpr) (value.Value, error) {
	slot, ok := g.lookup(v.Name)
	if !ok {
		return nil, errorf(v.Line, "unknown variable %q", v.Name)
	}

	val, err := g.genExpr(v.Value)
	if err != nil {
		return nil, err
	}

	g.block.NewStore(val, slot)
	return val, nil
}

func (g *Generator) genUnary(v *ast.UnaryExpr) (value.Value, error) {
	fnName := "unary" + string(v.Op)
	fn, ok := g.funcs[fnName]
	if !ok {
		return nil, errorf(v.Line, "unknown unary operator %q", string(v.Op))
	}

	operand, err := g.genExpr(v.Operand)
	if err != nil {
		return nil, err
	}

	return g.block.NewCall(fn, operand), nil
}

func (g *Generator) genBinary(v *ast.BinaryExpr) (value.Value, error) {
	lhs, err := g.genExpr(v.LHS)
	if err != nil {
		return nil, err
	}
	rhs, err := g.genExpr(v.RHS)
	if err != nil {
		return nil, err
	}

	switch v.Op {
	case '+':
		return g.block.NewFAdd(lhs, rhs), nil
	case '-':
		return g.block.NewFSub(lhs, rhs), nil
	case '*':
		return g.block.NewFMul(lhs, rhs), nil
	case '<':
		cmp := g.block.NewFCmp(enum.FPredULT, lhs, rhs)
		return g.block.NewUIToFP(cmp, types.Double), nil
	default:
		fnName := "binary" + string(v.Op)
		fn, ok := g.funcs[fnName]
		if !ok {
			return nil, errorf(v.Line, "unknown binary operator %q", string(v.Op))
		}
		return g.block.NewCall(fn, lhs, rhs), nil
	}
}

func (g *Generator) genCall(v *ast.CallExpr) (value.Value, error) {
	proto, ok := g.protos[v.Callee]
	if !ok {
		return nil, errorf(v.Line, "unknown function %q", v.Callee)
	}
	if len(proto.Params) != len(v.Args) {
		return nil, errorf(v.Line, "wrong number of arguments to %q: expected %d, got %d", v.Callee, len(proto.Params), len(v.Args))
	}

	args := make([]value.Value, len(v.Args))
	for i, argExpr := range v.Args {
		val, err := g.genExpr(argExpr)
		if err != nil {
			return nil, err
		}
		args[i] = val
	}

	return g.block.NewCall(g.funcs[v.Callee], args...), nil
}

// truthy lowers cond and compares it against 0.0 with an *unordered*
// not-equal predicate: NaN is truthy, since NaN != 0.0 under IEEE-754
// unordered comparison (spec.md's boundary-behavior requirement, a
// deliberate deviation from the ordered-compare the original Rust
// implementation used).
func (g *Generator) truthy(cond ast.Expr) (value.Value, error) {
	val, err := g.genExpr(cond)
	if err != nil {
		return nil, err
	}
	return g.block.NewFCmp(enum.FPredUNE, val, zero), nil
}

func (g *Generator) genIf(v *ast.IfExpr) (value.Value, error) {
	cmp, err := g.truthy(v.Cond)
	if err != nil {
		return nil, err
	}

	thenBlock := g.enclosing.NewBlock(g.newBlockName("then"))
	elseBlock := g.enclosing.NewBlock(g.newBlockName("else"))
	mergeBlock := g.enclosing.NewBlock(g.newBlockName("merge"))

	g.block.NewCondBr(cmp, thenBlock, elseBlock)

	g.block = thenBlock
	thenVal, err := g.genExpr(v.ThenBr)
	if err != nil {
		return nil, err
	}
	// The block in effect now may differ from thenBlock: nested control
	// flow inside the branch can have moved the insertion point. Record
	// *this* block as the phi predecessor, not the syntactic header.
	thenEndBlock := g.block
	thenEndBlock.NewBr(mergeBlock)

	g.block = elseBlock
	elseVal, err := g.genExpr(v.ElseBr)
	if err != nil {
		return nil, err
	}
	elseEndBlock := g.block
	elseEndBlock.NewBr(mergeBlock)

	g.block = mergeBlock
	return mergeBlock.NewPhi(
		ir.NewIncoming(thenVal, thenEndBlock),
		ir.NewIncoming(elseVal, elseEndBlock),
	), nil
}

// genFor lowers a counted loop with the mutable-slot strategy (spec.md
// §4.3's reference form, used unconditionally here; see for_phi.go for
// the alternate phi-SSA form kept only for the equivalence test).
func (g *Generator) genFor(v *ast.ForExpr) (value.Value, error) {
	startVal, err := g.genExpr(v.Start)
	if err != nil {
		return nil, err
	}

	slot := g.entry.NewAlloca(types.Double)
	g.block.NewStore(startVal, slot)

	loopBlock := g.enclosing.NewBlock(g.newBlockName("loop"))
	afterBlock := g.enclosing.NewBlock(g.newBlockName("afterloop"))
	g.block.NewBr(loopBlock)

	g.block = loopBlock
	g.pushScope()
	g.define(v.Var, slot)

	if _, err := g.genExpr(v.Body); err != nil {
		g.popScope()
		return nil, err
	}

	// The end condition is evaluated against the slot's current
	// (pre-increment) value, before it's overwritten below: a fresh
	// load here sees whatever the body left behind, matching what
	// genForPhi's phi value observes (it never advances until the
	// branch is taken). Checking post-increment instead would run the
	// loop one iteration short of genForPhi's count for the same
	// bounds.
	endVal, err := g.genExpr(v.End)
	if err != nil {
		g.popScope()
		return nil, err
	}
	cmp := g.block.NewFCmp(enum.FPredUNE, endVal, zero)

	curVal := g.block.NewLoad(types.Double, slot)

	var stepVal value.Value
	if v.Step != nil {
		stepVal, err = g.genExpr(v.Step)
		if err != nil {
			g.popScope()
			return nil, err
		}
	} else {
		stepVal = one
	}

	nextVal := g.block.NewFAdd(curVal, stepVal)
	g.block.NewStore(nextVal, slot)

	g.block.NewCondBr(cmp, loopBlock, afterBlock)

	g.popScope()
	g.block = afterBlock

	return zero, nil
}

// genVar lowers a `var` expression: bindings are introduced one at a
// time into a single new scope layer, so each binding's initializer can
// see the ones introduced earlier in the same `var` (spec.md §4.3's
// "sequentially scoped, not parallel" rule).
func (g *Generator) genVar(v *ast.VarExpr) (value.Value, error) {
	g.pushScope()
	defer g.popScope()

	for _, binding := range v.Bindings {
		var initVal value.Value
		if binding.Init != nil {
			val, err := g.genExpr(binding.Init)
			if err != nil {
				return nil, err
			}
			initVal = val
		} else {
			initVal = zero
		}

		slot := g.entry.NewAlloca(types.Double)
		g.block.NewStore(initVal, slot)
		g.define(binding.Name, slot)
	}

	return g.genExpr(v.Body)
}
