package codegen

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/value"

	"github.com/frederikgramkortegaard/rust-kaleidoscope/internal/ast"
)

// genForPhi is the alternate phi-SSA lowering for `for` that spec.md
// §4.3 describes as usable when the loop body never assigns the
// induction variable: the variable lives as a phi value threaded
// through the loop block rather than a stack slot, with no alloca at
// all. genFor (the mutable-slot form) is what Compile actually uses;
// this path exists so for_equivalence_test.go can check the two strategies
// agree on loops that qualify for either, per spec.md's equivalence
// requirement.
//
// Kept separate from genFor rather than merged behind a flag: the two
// strategies bind the loop variable through entirely different
// mechanisms (phi value vs. alloca+load), so a shared code path would
// need to abstract over "value" vs. "address" everywhere a variable is
// touched, for a strategy genFor itself never switches into.
func (g *Generator) genForPhi(v *ast.ForExpr) (value.Value, error) {
	startVal, err := g.genExpr(v.Start)
	if err != nil {
		return nil, err
	}
	preheader := g.block

	loopBlock := g.enclosing.NewBlock(g.newBlockName("loop"))
	preheader.NewBr(loopBlock)

	g.block = loopBlock
	phi := loopBlock.NewPhi(ir.NewIncoming(startVal, preheader))

	prevPhiVal, hadPrev := g.phiVars[v.Var]
	g.bindPhiVar(v.Var, phi)

	if _, err := g.genExpr(v.Body); err != nil {
		g.restorePhiVar(v.Var, prevPhiVal, hadPrev)
		return nil, err
	}

	var stepVal value.Value
	if v.Step != nil {
		stepVal, err = g.genExpr(v.Step)
		if err != nil {
			g.restorePhiVar(v.Var, prevPhiVal, hadPrev)
			return nil, err
		}
	} else {
		stepVal = one
	}

	latch := g.block
	next := latch.NewFAdd(phi, stepVal)
	phi.Incs = append(phi.Incs, ir.NewIncoming(next, latch))

	endVal, err := g.genExpr(v.End)
	if err != nil {
		g.restorePhiVar(v.Var, prevPhiVal, hadPrev)
		return nil, err
	}
	cmp := latch.NewFCmp(enum.FPredUNE, endVal, zero)

	afterBlock := g.enclosing.NewBlock(g.newBlockName("afterloop"))
	latch.NewCondBr(cmp, loopBlock, afterBlock)

	g.restorePhiVar(v.Var, prevPhiVal, hadPrev)
	g.block = afterBlock

	return zero, nil
}

// bindPhiVar and restorePhiVar implement shadow/restore for the single
// phi-backed variable binding a for-phi loop introduces, mirroring the
// save/restore genFor gets for free from its scope stack.
func (g *Generator) bindPhiVar(name string, val value.Value) {
	if g.phiVars == nil {
		g.phiVars = map[string]value.Value{}
	}
	g.phiVars[name] = val
}

func (g *Generator) restorePhiVar(name string, prev value.Value, hadPrev bool) {
	if hadPrev {
		g.phiVars[name] = prev
	} else {
		delete(g.phiVars, name)
	}
}
