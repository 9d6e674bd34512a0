package codegen

import (
	"testing"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"

	"github.com/frederikgramkortegaard/rust-kaleidoscope/internal/ast"
	"github.com/frederikgramkortegaard/rust-kaleidoscope/internal/lexer"
	"github.com/frederikgramkortegaard/rust-kaleidoscope/internal/parser"
)

func compile(t *testing.T, src string) *ir.Module {
	t.Helper()
	items, err := parser.New(lexer.Tokenize(src)).Parse()
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	mod, err := New().Compile(items)
	if err != nil {
		t.Fatalf("unexpected codegen error: %v", err)
	}
	return mod
}

func findFunc(mod *ir.Module, name string) *ir.Func {
	for _, f := range mod.Funcs {
		if f.GlobalName == name {
			return f
		}
	}
	return nil
}

func TestCompileArithmeticProducesMain(t *testing.T) {
	mod := compile(t, "4 + 5 * 2;")

	main := findFunc(mod, "main")
	if main == nil {
		t.Fatalf("expected a synthesized main function")
	}

	if len(mod.Funcs) < 2 {
		t.Fatalf("expected at least the top-level-expr function plus main, got %d funcs", len(mod.Funcs))
	}
}

func TestCompileEmptyProgramMainReturnsZero(t *testing.T) {
	mod := compile(t, "")

	main := findFunc(mod, "main")
	if main == nil {
		t.Fatalf("expected a synthesized main function even for an empty program")
	}
	if len(main.Blocks) != 1 {
		t.Fatalf("expected main to have a single block, got %d", len(main.Blocks))
	}
	ret, ok := main.Blocks[0].Term.(*ir.TermRet)
	if !ok {
		t.Fatalf("expected main to end in a ret, got %T", main.Blocks[0].Term)
	}
	if c, ok := ret.X.(*constant.Float); !ok || c.X.Sign() != 0 {
		t.Fatalf("expected main to return the constant 0.0, got %v", ret.X)
	}
}

func TestCompileIfProducesPhiWithTwoIncoming(t *testing.T) {
	mod := compile(t, "def foo(x) if x < 3 then 1 else 2; foo(2);")

	foo := findFunc(mod, "foo")
	if foo == nil {
		t.Fatalf("expected function foo")
	}

	var foundPhi bool
	for _, b := range foo.Blocks {
		for _, inst := range b.Insts {
			if phi, ok := inst.(*ir.InstPhi); ok {
				foundPhi = true
				if len(phi.Incs) != 2 {
					t.Fatalf("expected 2 incoming values on the if-merge phi, got %d", len(phi.Incs))
				}
			}
		}
	}
	if !foundPhi {
		t.Fatalf("expected to find a phi node lowered from the if expression")
	}
}

func TestCompileForProducesLoopBlocks(t *testing.T) {
	mod := compile(t, "extern putchard(c); def p(n) for i = 1, i < n, 1.0 in putchard(42); p(10);")

	p := findFunc(mod, "p")
	if p == nil {
		t.Fatalf("expected function p")
	}

	// entry, loop, afterloop at minimum.
	if len(p.Blocks) < 3 {
		t.Fatalf("expected at least 3 blocks for a for-loop lowering, got %d", len(p.Blocks))
	}
	for _, b := range p.Blocks {
		if b.Term == nil {
			t.Fatalf("every block must be terminated, found an untermined block")
		}
	}
}

func TestCompileFunctionRedefinitionIsAnError(t *testing.T) {
	items, err := parser.New(lexer.Tokenize("def foo(a) a; def foo(a) a+1;")).Parse()
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if _, err := New().Compile(items); err == nil {
		t.Fatalf("expected a redefinition error")
	}
}

func TestCompileUnknownVariableIsAnError(t *testing.T) {
	items, err := parser.New(lexer.Tokenize("def foo(a) b;")).Parse()
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if _, err := New().Compile(items); err == nil {
		t.Fatalf("expected an unknown-variable error")
	}
}

func TestCompileCallArityMismatchIsAnError(t *testing.T) {
	items, err := parser.New(lexer.Tokenize("def foo(a b) a+b; foo(1);")).Parse()
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if _, err := New().Compile(items); err == nil {
		t.Fatalf("expected an arity-mismatch error")
	}
}

func TestCompileUnknownFunctionIsAnError(t *testing.T) {
	items, err := parser.New(lexer.Tokenize("bogus(1);")).Parse()
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if _, err := New().Compile(items); err == nil {
		t.Fatalf("expected an unknown-function error")
	}
}

func TestCompileUserBinaryOperatorLowersToCall(t *testing.T) {
	mod := compile(t, "def binary> 10 (a b) b < a; 5 > 3;")

	var found bool
	for _, f := range mod.Funcs {
		if f.GlobalName == "binary>" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a backend function named binary> for the user-defined operator")
	}

	var called bool
	for _, f := range mod.Funcs {
		for _, b := range f.Blocks {
			for _, inst := range b.Insts {
				if call, ok := inst.(*ir.InstCall); ok {
					if callee, ok := call.Callee.(*ir.Func); ok && callee.GlobalName == "binary>" {
						called = true
					}
				}
			}
		}
	}
	if !called {
		t.Fatalf("expected `5 > 3` to lower to a call to binary>")
	}
}

func TestCompileMultipleTopLevelExprsGetDistinctNames(t *testing.T) {
	mod := compile(t, "1; 2; 3;")

	var names []string
	for _, f := range mod.Funcs {
		if len(f.GlobalName) >= len(ast.TopLevelExprName) && f.GlobalName[:len(ast.TopLevelExprName)] == ast.TopLevelExprName {
			names = append(names, f.GlobalName)
		}
	}
	if len(names) != 3 {
		t.Fatalf("expected 3 distinct top-level-expr functions, got %d: %v", len(names), names)
	}
	if names[0] == names[1] || names[1] == names[2] {
		t.Fatalf("expected distinct mangled names, got %v", names)
	}
}

func TestCompileVarSequentialScoping(t *testing.T) {
	mod := compile(t, "var a = 1, b = a+1 in b;")

	main := findFunc(mod, "main")
	if main == nil {
		t.Fatalf("expected main")
	}
	// The expression compiles without an unknown-variable error, which is
	// the behavior under test: `b`'s initializer sees `a`.
}
