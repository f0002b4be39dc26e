package compiler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/razen-lang/rajit/ir"
)

func TestCompileArithmetic(t *testing.T) {
	prog := &Program{Statements: []Stmt{
		ExprStmt{X: BinaryExpr{Op: "*", Left: IntLit{6}, Right: IntLit{7}}},
	}}
	out := New().Compile(prog)
	require.Empty(t, out.Errors)
	require.NoError(t, out.Instructions.ValidateJumps())
	require.Equal(t, ir.Stream{
		ir.PushInteger(6), ir.PushInteger(7), ir.Simple(ir.OpMultiply), ir.Simple(ir.OpPop),
	}, out.Instructions)
}

func TestCompileInterpolatedString(t *testing.T) {
	prog := &Program{Statements: []Stmt{
		PrintStmt{Value: InterpolatedString{Parts: []Expr{
			StringLit{"Hi, "}, StringLit{"Raz"}, StringLit{"en"},
		}}},
	}}
	out := New().Compile(prog)
	require.Empty(t, out.Errors)
	require.Equal(t, ir.Stream{
		ir.PushString("Hi, "), ir.PushString("Raz"), ir.Simple(ir.OpAdd),
		ir.PushString("en"), ir.Simple(ir.OpAdd), ir.Simple(ir.OpPrint),
	}, out.Instructions)
}

func TestCompileIfElse(t *testing.T) {
	prog := &Program{Statements: []Stmt{
		IfStmt{
			Cond: BinaryExpr{Op: "<", Left: IntLit{3}, Right: IntLit{5}},
			Then: []Stmt{PrintStmt{Value: StringLit{"lt"}}},
			Else: []Stmt{PrintStmt{Value: StringLit{"ge"}}},
		},
	}}
	out := New().Compile(prog)
	require.Empty(t, out.Errors)
	require.NoError(t, out.Instructions.ValidateJumps())

	want := ir.Stream{
		ir.PushInteger(3), ir.PushInteger(5), ir.Simple(ir.OpLessThan),
		ir.JumpIfFalse(7),
		ir.PushString("lt"), ir.Simple(ir.OpPrint),
		ir.Jump(9),
		ir.PushString("ge"), ir.Simple(ir.OpPrint),
		ir.Label("end"),
	}
	require.Equal(t, want, out.Instructions)
}

func TestCompileFunctionAndAutoMain(t *testing.T) {
	prog := &Program{Statements: []Stmt{
		FuncDeclStmt{
			Name:   "add",
			Params: []string{"a", "b"},
			Body: []Stmt{
				ReturnStmt{Value: BinaryExpr{Op: "+", Left: Identifier{"a"}, Right: Identifier{"b"}}},
			},
		},
		FuncDeclStmt{Name: "main", Body: nil},
	}}
	out := New().Compile(prog)
	require.Empty(t, out.Errors)
	require.NoError(t, out.Instructions.ValidateJumps())
	require.Equal(t, []string{"a", "b"}, out.FunctionParams["add"])

	// The trailing two instructions are the automatic main() call + discard.
	last := out.Instructions[len(out.Instructions)-2:]
	require.Equal(t, ir.Call("main", 0), last[0])
	require.Equal(t, ir.Simple(ir.OpPop), last[1])

	// Every DefineFunction entry must point at the instruction right after
	// the skip-jump that precedes it.
	for i, instr := range out.Instructions {
		if instr.Op == ir.OpDefineFunction {
			require.Equal(t, i, instr.Target)
		}
	}
}

func TestCompileWhileLoop(t *testing.T) {
	prog := &Program{Statements: []Stmt{
		WhileStmt{
			Cond: BoolLit{true},
			Body: []Stmt{ExprStmt{X: IntLit{1}}},
		},
	}}
	out := New().Compile(prog)
	require.Empty(t, out.Errors)
	require.NoError(t, out.Instructions.ValidateJumps())
	// Jump back to loop start must land on the condition push.
	for _, instr := range out.Instructions {
		if instr.Op == ir.OpJump {
			require.Equal(t, ir.OpPushBoolean, out.Instructions[instr.Target].Op)
		}
	}
}

func TestCompileStructLiteral(t *testing.T) {
	prog := &Program{Statements: []Stmt{
		ExprStmt{X: MapLit{
			Keys:   []string{"__type__", "x", "y"},
			Values: []Expr{StringLit{"Point"}, IntLit{1}, IntLit{2}},
		}},
	}}
	out := New().Compile(prog)
	require.Empty(t, out.Errors)
	require.Equal(t, ir.CreateMap(3), out.Instructions[len(out.Instructions)-2])
}
