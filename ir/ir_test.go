package ir

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFindFirstDefineFunction(t *testing.T) {
	s := Stream{
		PushInteger(1),
		StoreVar("x"),
		Jump(4),
		DefineFunction("main", 3),
		Simple(OpReturn),
	}
	require.Equal(t, 3, s.FindFirstDefineFunction())
}

func TestFindFirstDefineFunctionAbsent(t *testing.T) {
	s := Stream{PushInteger(1), StoreVar("x")}
	require.Equal(t, len(s), s.FindFirstDefineFunction())
}

func TestValidateJumps(t *testing.T) {
	s := Stream{Jump(1), Simple(OpReturn)}
	require.NoError(t, s.ValidateJumps())

	bad := Stream{Jump(5), Simple(OpReturn)}
	err := bad.ValidateJumps()
	require.Error(t, err)
	var jumpErr *InvalidJumpError
	require.ErrorAs(t, err, &jumpErr)
	require.Equal(t, 5, jumpErr.Target)
}
