// Package engine is the JIT execution engine spec.md §6.2 requires of
// the backend: since github.com/llir/llvm only constructs IR and has no
// execution facility of its own, this package supplies one by
// interpreting the emitted instructions directly against a register
// file of float64s, rather than materializing native machine code.
//
// Grounded on the block-walking control-flow shape of the teacher's own
// generator (bootstrap/generate/gen_control.go's block-reassignment
// pattern) read backwards: where the generator *emits* a block graph by
// tracking a "current block" pointer, this package *walks* that same
// graph the same way, tracking a "current block" and the block that led
// into it for phi resolution.
package engine

import (
	"fmt"
	"math"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/value"

	"github.com/frederikgramkortegaard/rust-kaleidoscope/internal/ffi"
)

// RuntimeError is returned for failures detected only at execution
// time: an unresolved extern symbol, the sole runtime error category
// spec.md §7 names.
type RuntimeError struct {
	Msg string
}

func (e *RuntimeError) Error() string { return e.Msg }

// Run finalizes mod against reg and invokes its "main" function,
// returning the double it computes (spec.md §4.3's "Top-level
// execution").
func Run(mod *ir.Module, reg *ffi.Registry) (float64, error) {
	funcs := map[string]*ir.Func{}
	for _, fn := range mod.Funcs {
		funcs[fn.GlobalName] = fn
	}

	main, ok := funcs["main"]
	if !ok {
		return 0, &RuntimeError{Msg: "module has no main function"}
	}

	interp := &interpreter{funcs: funcs, reg: reg}
	return interp.call(main, nil)
}

type interpreter struct {
	funcs map[string]*ir.Func
	reg   *ffi.Registry
}

// call invokes fn with args, interpreting its body one basic block at a
// time. A function with no blocks is an extern declaration, resolved
// against the FFI registry instead.
func (in *interpreter) call(fn *ir.Func, args []float64) (float64, error) {
	if len(fn.Blocks) == 0 {
		nativeFn, ok := in.reg.Lookup(fn.GlobalName)
		if !ok {
			return 0, &RuntimeError{Msg: fmt.Sprintf("unresolved extern symbol %q", fn.GlobalName)}
		}
		return nativeFn(args), nil
	}

	regs := map[value.Value]float64{}
	for i, p := range fn.Params {
		regs[p] = args[i]
	}
	mem := map[*ir.InstAlloca]float64{}

	var prev *ir.Block
	block := fn.Blocks[0]

	for {
		for _, inst := range block.Insts {
			if err := in.step(inst, regs, mem); err != nil {
				return 0, err
			}
		}

		switch term := block.Term.(type) {
		case *ir.TermRet:
			if term.X == nil {
				return 0, nil
			}
			return in.valueOf(term.X, regs), nil
		case *ir.TermBr:
			prev, block = block, term.Target.(*ir.Block)
		case *ir.TermCondBr:
			cond := in.valueOf(term.Cond, regs)
			next := term.TargetFalse.(*ir.Block)
			if cond != 0 {
				next = term.TargetTrue.(*ir.Block)
			}
			prev, block = block, next
		default:
			return 0, &RuntimeError{Msg: fmt.Sprintf("unsupported terminator %T", term)}
		}

		// step never sees prev, so the phis of the block just entered are
		// resolved here, before the instruction loop runs that block.
		for _, inst := range block.Insts {
			if phi, ok := inst.(*ir.InstPhi); ok {
				regs[phi] = in.resolvePhi(phi, prev, regs)
			}
		}
	}
}

// step executes one non-phi instruction. Phi nodes are resolved
// separately once the predecessor block is known (see call's loop).
func (in *interpreter) step(inst ir.Instruction, regs map[value.Value]float64, mem map[*ir.InstAlloca]float64) error {
	switch v := inst.(type) {
	case *ir.InstAlloca:
		mem[v] = 0

	case *ir.InstLoad:
		slot, ok := v.Src.(*ir.InstAlloca)
		if !ok {
			return &RuntimeError{Msg: "load from a non-alloca pointer"}
		}
		regs[v] = mem[slot]

	case *ir.InstStore:
		slot, ok := v.Dst.(*ir.InstAlloca)
		if !ok {
			return &RuntimeError{Msg: "store to a non-alloca pointer"}
		}
		mem[slot] = in.valueOf(v.Src, regs)

	case *ir.InstFAdd:
		regs[v] = in.valueOf(v.X, regs) + in.valueOf(v.Y, regs)
	case *ir.InstFSub:
		regs[v] = in.valueOf(v.X, regs) - in.valueOf(v.Y, regs)
	case *ir.InstFMul:
		regs[v] = in.valueOf(v.X, regs) * in.valueOf(v.Y, regs)

	case *ir.InstFCmp:
		x, y := in.valueOf(v.X, regs), in.valueOf(v.Y, regs)
		if fcmp(v.Pred, x, y) {
			regs[v] = 1.0
		} else {
			regs[v] = 0.0
		}

	case *ir.InstUIToFP:
		// The interpreter stores fcmp results already as 0.0/1.0 doubles,
		// so widening is a pass-through.
		regs[v] = in.valueOf(v.From, regs)

	case *ir.InstCall:
		calleeFn, ok := v.Callee.(*ir.Func)
		if !ok {
			return &RuntimeError{Msg: "call to a non-function value"}
		}
		args := make([]float64, len(v.Args))
		for i, a := range v.Args {
			args[i] = in.valueOf(a, regs)
		}
		result, err := in.call(calleeFn, args)
		if err != nil {
			return err
		}
		regs[v] = result

	case *ir.InstPhi:
		// handled by call once the predecessor block is known

	default:
		return &RuntimeError{Msg: fmt.Sprintf("unsupported instruction %T", inst)}
	}

	return nil
}

func (in *interpreter) resolvePhi(phi *ir.InstPhi, prev *ir.Block, regs map[value.Value]float64) float64 {
	for _, inc := range phi.Incs {
		if inc.Pred == prev {
			return in.valueOf(inc.X, regs)
		}
	}
	return 0
}

// valueOf resolves an operand to its float64: either a materialized
// constant, or a register already computed earlier in this call.
func (in *interpreter) valueOf(v value.Value, regs map[value.Value]float64) float64 {
	if f, ok := v.(*constant.Float); ok {
		x, _ := f.X.Float64()
		return x
	}
	return regs[v]
}

func fcmp(pred enum.FPred, x, y float64) bool {
	switch pred {
	case enum.FPredULT:
		return math.IsNaN(x) || math.IsNaN(y) || x < y
	case enum.FPredUNE:
		return x != y
	default:
		return x != y
	}
}
