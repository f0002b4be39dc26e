package runtime

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/razen-lang/rajit/ir"
	"github.com/razen-lang/rajit/value"
)

func run(t *testing.T, stream ir.Stream) (*Runtime, string, error) {
	t.Helper()
	r := New()
	var out bytes.Buffer
	r.SetStreams(strings.NewReader(""), &out)
	err := r.Execute(stream)
	return r, out.String(), err
}

// S1 — integer math.
func TestIntegerMath(t *testing.T) {
	r, _, err := run(t, ir.Stream{
		ir.PushInteger(6), ir.PushInteger(7), ir.Simple(ir.OpMultiply),
	})
	require.NoError(t, err)
	require.Equal(t, int64(42), r.top().Int())
}

// S2 — string concat.
func TestStringConcat(t *testing.T) {
	_, out, err := run(t, ir.Stream{
		ir.PushString("Hi, "), ir.PushString("Raz"), ir.PushString("en"),
		ir.Simple(ir.OpAdd), ir.Simple(ir.OpAdd), ir.Simple(ir.OpPrint),
	})
	require.NoError(t, err)
	require.Equal(t, "Hi, Razen", out)
}

// S3 — conditional.
func TestConditional(t *testing.T) {
	stream := ir.Stream{
		ir.PushInteger(3), ir.PushInteger(5), ir.Simple(ir.OpLessThan),
		ir.JumpIfFalse(6),
		ir.PushString("lt"),
		ir.Jump(7),
		ir.PushString("ge"),
		ir.Simple(ir.OpPrint),
	}
	_, out, err := run(t, stream)
	require.NoError(t, err)
	require.Equal(t, "lt", out)
}

// S4 — struct + access.
func TestStructAccess(t *testing.T) {
	stream := ir.Stream{
		ir.PushString("__type__"), ir.PushString("P"),
		ir.PushString("x"), ir.PushInteger(9),
		ir.CreateMap(2),
		ir.Simple(ir.OpDup),
		ir.PushString("x"),
		ir.Simple(ir.OpGetKey),
		ir.Simple(ir.OpPrint),
	}
	_, out, err := run(t, stream)
	require.NoError(t, err)
	require.Equal(t, "9", out)
}

// S5 — call + param binding.
func TestCallParamBinding(t *testing.T) {
	// add(a,b) { return a+b } then Call add 2 with args 2,3.
	stream := ir.Stream{
		ir.Jump(6),
		ir.DefineFunction("add", 2),
		ir.LoadVar("a"),
		ir.LoadVar("b"),
		ir.Simple(ir.OpAdd),
		ir.Simple(ir.OpReturn),
		ir.PushInteger(2),
		ir.PushInteger(3),
		ir.Call("add", 2),
	}
	r := New()
	r.RegisterFunctionParams("add", []string{"a", "b"})
	err := r.Execute(stream)
	require.NoError(t, err)
	require.Equal(t, int64(5), r.top().Int())
}

// S6 — division by zero.
func TestDivisionByZero(t *testing.T) {
	_, _, err := run(t, ir.Stream{
		ir.PushInteger(1), ir.PushInteger(0), ir.Simple(ir.OpDivide),
	})
	require.Error(t, err)
	require.Equal(t, value.ErrDivisionByZero.Error(), err.Error())
}

// String truthiness special cases.
func TestTruthiness(t *testing.T) {
	require.False(t, value.String("false").IsTruthy())
	require.False(t, value.String("False").IsTruthy())
	require.False(t, value.String("null").IsTruthy())
	require.True(t, value.String("0").IsTruthy())
}

// Running the same stream twice on fresh state yields identical globals
// and output.
func TestIdempotentReinitialization(t *testing.T) {
	stream := ir.Stream{
		ir.PushInteger(10), ir.StoreVar("x"),
		ir.Jump(5),
		ir.DefineFunction("unused", 4),
		ir.Simple(ir.OpReturn),
	}
	r1, out1, err1 := run(t, stream)
	r2, out2, err2 := run(t, stream)
	require.NoError(t, err1)
	require.NoError(t, err2)
	require.Equal(t, out1, out2)
	require.Equal(t, r1.Globals()["x"].Int(), r2.Globals()["x"].Int())
}

func TestMissingVariableIsRecoverable(t *testing.T) {
	_, _, err := run(t, ir.Stream{ir.LoadVar("nope"), ir.Simple(ir.OpPop)})
	require.NoError(t, err)
}

func TestMissingFunctionIsRecoverable(t *testing.T) {
	r, _, err := run(t, ir.Stream{ir.Call("nope", 0)})
	require.NoError(t, err)
	require.True(t, r.top().IsNull())
}

func TestMethodCallOnStruct(t *testing.T) {
	// Point.describe(self) { return self.x }
	stream := ir.Stream{
		ir.Jump(6),
		ir.DefineFunction("Point.describe", 2),
		ir.LoadVar("self"),
		ir.PushString("x"),
		ir.Simple(ir.OpGetKey),
		ir.Simple(ir.OpReturn),
		ir.PushString("__type__"), ir.PushString("Point"),
		ir.PushString("x"), ir.PushInteger(4),
		ir.CreateMap(2),
		ir.MethodCall("describe", 0),
	}
	r := New()
	r.RegisterFunctionParams("Point.describe", nil)
	err := r.Execute(stream)
	require.NoError(t, err)
	require.Equal(t, int64(4), r.top().Int())
}

func TestColorEscape(t *testing.T) {
	require.Equal(t, "\x1b[31m", colorEscape("red"))
	require.Equal(t, "\x1b[91m", colorEscape("brightred"))
	require.Equal(t, "\x1b[38;5;208m", colorEscape("orange"))
	require.Equal(t, "\x1b[38;2;255;0;0m", colorEscape("#FF0000"))
	require.Equal(t, ansiReset, colorEscape("not-a-color"))
}
