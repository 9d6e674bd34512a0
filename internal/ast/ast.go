// Package ast defines the Kaleidoscope abstract syntax tree (spec.md §3):
// a small sum type over expression kinds plus function prototypes and
// definitions. Nodes carry no source span beyond a line number, per
// spec.md's decision to skip position tracking.
package ast

// Expr is the sum type over all expression kinds. It has no methods of
// its own; codegen and any other consumer switches on the concrete type.
type Expr interface {
	exprNode()
}

// NumberExpr is a literal double.
type NumberExpr struct {
	Value float64
}

// VariableExpr references a named binding in the current environment.
type VariableExpr struct {
	Name string
	Line int
}

// BinaryExpr applies a binary operator to two operands. Op is never '='
// here: the parser rewrites `lhs = rhs` into AssignExpr at parse time.
type BinaryExpr struct {
	Op   byte
	LHS  Expr
	RHS  Expr
	Line int
}

// UnaryExpr applies a user-defined unary operator to its operand.
type UnaryExpr struct {
	Op      byte
	Operand Expr
	Line    int
}

// CallExpr calls a named function or operator with an ordered argument
// list.
type CallExpr struct {
	Callee string
	Args   []Expr
	Line   int
}

// IfExpr is a three-branch conditional expression; Cond is truthy when
// not equal to 0.0 (NaN included, since NaN != 0.0).
type IfExpr struct {
	Cond   Expr
	ThenBr Expr
	ElseBr Expr
	Line   int
}

// ForExpr is a counted loop. Step may be nil, defaulting to 1.0. The loop
// always yields 0.0, and Var is scoped to Body only.
type ForExpr struct {
	Var   string
	Start Expr
	End   Expr
	Step  Expr // nil => default to 1.0
	Body  Expr
	Line  int
}

// VarBinding is one `name (= init)?` clause of a VarExpr.
type VarBinding struct {
	Name string
	Init Expr // nil => defaults to 0.0
}

// VarExpr introduces one or more local bindings, each of which may see
// the bindings introduced earlier in the same VarExpr, then evaluates
// Body under the extended environment.
type VarExpr struct {
	Bindings []VarBinding
	Body     Expr
	Line     int
}

// AssignExpr stores Value into the slot bound to Name and yields the
// stored value. Produced by the parser when `=` appears as a binary
// operator whose left operand is a bare variable.
type AssignExpr struct {
	Name  string
	Value Expr
	Line  int
}

func (*NumberExpr) exprNode()   {}
func (*VariableExpr) exprNode() {}
func (*BinaryExpr) exprNode()   {}
func (*UnaryExpr) exprNode()    {}
func (*CallExpr) exprNode()     {}
func (*IfExpr) exprNode()       {}
func (*ForExpr) exprNode()      {}
func (*VarExpr) exprNode()      {}
func (*AssignExpr) exprNode()   {}

// -----------------------------------------------------------------------------

// ProtoKind distinguishes a plain function prototype from a user-defined
// operator prototype.
type ProtoKind int

const (
	KindFunction ProtoKind = iota
	KindUnaryOp
	KindBinaryOp
)

// Prototype is a function signature without a body: a name, its ordered
// parameter names, and (for operator prototypes) the operator character
// and, for binary operators, its precedence.
type Prototype struct {
	Name       string
	Params     []string
	Kind       ProtoKind
	OpChar     byte // set when Kind != KindFunction
	Precedence int  // set when Kind == KindBinaryOp; always > 0
	Line       int
}

// Function pairs a prototype with its body.
type Function struct {
	Proto *Prototype
	Body  Expr
}

// -----------------------------------------------------------------------------

// TopLevelItem is one of ExternDecl or FuncDef (spec.md's TopExpr variant
// is represented as a FuncDef whose Proto.Name is "_top_level_expr",
// synthesized by the parser's top-level loop).
type TopLevelItem interface {
	topLevelItem()
}

// ExternDecl declares a prototype with no body.
type ExternDecl struct {
	Proto *Prototype
}

// FuncDef defines a function, operator, or synthetic top-level
// expression.
type FuncDef struct {
	Fn *Function
}

func (*ExternDecl) topLevelItem() {}
func (*FuncDef) topLevelItem()    {}

// TopLevelExprName is the name the parser gives every synthetic function
// wrapping a bare top-level expression (spec.md §4.2).
const TopLevelExprName = "_top_level_expr"
