package value

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddPromotion(t *testing.T) {
	v := Add(Integer(2), Integer(3))
	require.Equal(t, KindInteger, v.Kind())
	require.Equal(t, int64(5), v.Int())

	v = Add(Integer(2), Float(0.5))
	require.Equal(t, KindFloat, v.Kind())
	require.Equal(t, 2.5, v.Float64())
}

func TestAddStringCoercion(t *testing.T) {
	require.Equal(t, "ab", Add(String("a"), String("b")).Str())
	require.Equal(t, "n=7", Add(String("n="), Integer(7)).Str())
	require.Equal(t, "7n", Add(Integer(7), String("n")).Str())
}

func TestDivideByZero(t *testing.T) {
	_, err := Divide(Integer(1), Integer(0))
	require.Equal(t, ErrDivisionByZero, err)

	_, err = Modulo(Integer(1), Integer(0))
	require.Equal(t, ErrModuloByZero, err)

	v, err := Divide(Integer(7), Integer(2))
	require.NoError(t, err)
	require.Equal(t, int64(3), v.Int())
}

func TestFloorDiv(t *testing.T) {
	v, err := FloorDiv(Integer(-7), Integer(2))
	require.NoError(t, err)
	require.Equal(t, int64(-4), v.Int())
}

func TestStructSentinel(t *testing.T) {
	s := NewMap(
		[]string{TypeSentinel, "x", "y"},
		[]Value{String("Point"), Integer(1), Integer(2)},
	)
	require.Equal(t, KindStruct, s.Kind())
	require.Equal(t, "Point", s.TypeName())
	require.Equal(t, int64(1), s.GetKey(String("x")).Int())

	// The sentinel is consumed, never stored.
	require.True(t, s.GetKey(String(TypeSentinel)).IsNull())
}

func TestMapWithoutSentinel(t *testing.T) {
	m := NewMap([]string{"a"}, []Value{Integer(1)})
	require.Equal(t, KindMap, m.Kind())
	require.Equal(t, int64(1), m.GetKey(String("a")).Int())
	require.True(t, m.GetKey(String("missing")).IsNull())
}

func TestArrayIndexing(t *testing.T) {
	a := Array([]Value{Integer(10), Integer(20)})
	require.Equal(t, int64(20), a.GetKey(Integer(1)).Int())
	require.True(t, a.GetKey(Integer(2)).IsNull())
	require.True(t, a.GetKey(Integer(-1)).IsNull())
	require.True(t, a.GetKey(String("0")).IsNull())
}

func TestTruthiness(t *testing.T) {
	falsy := []Value{
		Null(), Integer(0), Float(0), Boolean(false),
		String(""), String("null"), String("false"), String("False"),
		Array(nil), NewMap(nil, nil),
		Err(String("boom")), None(),
	}
	for _, v := range falsy {
		require.False(t, v.IsTruthy(), "%s should be falsy", v.DisplayString())
	}

	truthy := []Value{
		Integer(1), Float(0.1), Boolean(true), String("0"),
		Array([]Value{Null()}), Ok(Null()), Some(Null()),
	}
	for _, v := range truthy {
		require.True(t, v.IsTruthy(), "%s should be truthy", v.DisplayString())
	}
}

func TestEqualAcrossKinds(t *testing.T) {
	require.True(t, Equal(Integer(1), Float(1)))
	require.False(t, Equal(Integer(1), String("1")))
	require.True(t, Equal(Null(), Null()))
	require.True(t, Equal(
		Array([]Value{Integer(1)}),
		Array([]Value{Integer(1)}),
	))
}

func TestCompare(t *testing.T) {
	c, ok := Compare(Integer(3), Integer(5))
	require.True(t, ok)
	require.Equal(t, -1, c)

	c, ok = Compare(String("a"), String("b"))
	require.True(t, ok)
	require.Equal(t, -1, c)

	_, ok = Compare(Integer(1), String("a"))
	require.False(t, ok)
}

func TestDisplayString(t *testing.T) {
	require.Equal(t, "null", Null().DisplayString())
	require.Equal(t, "42", Integer(42).DisplayString())
	require.Equal(t, "true", Boolean(true).DisplayString())
	require.Equal(t, "[1, 2]", Array([]Value{Integer(1), Integer(2)}).DisplayString())
	require.Equal(t, "Ok(1)", Ok(Integer(1)).DisplayString())
	require.Equal(t, "None", None().DisplayString())
}

func TestResultOption(t *testing.T) {
	require.True(t, Ok(Integer(1)).IsOk())
	require.True(t, Err(Integer(1)).IsErr())
	require.True(t, Some(Integer(1)).IsSome())
	require.True(t, None().IsNone())
	require.Equal(t, int64(1), Ok(Integer(1)).Inner().Int())
	require.True(t, None().Inner().IsNull())
}
