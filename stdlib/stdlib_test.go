package stdlib

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/razen-lang/rajit/value"
)

func TestDefaultMathSqrt(t *testing.T) {
	d := Default()
	require.True(t, d.IsModule("math"))
	v, err := d.Call("math", "sqrt", []value.Value{value.Float(9)})
	require.NoError(t, err)
	require.Equal(t, 3.0, v.Float64())
}

func TestDefaultStringUpper(t *testing.T) {
	d := Default()
	v, err := d.Call("string", "upper", []value.Value{value.String("razen")})
	require.NoError(t, err)
	require.Equal(t, "RAZEN", v.Str())
}

func TestUnknownModule(t *testing.T) {
	d := Default()
	require.False(t, d.IsModule("http"))
	_, err := d.Call("http", "get", nil)
	require.Error(t, err)
}
