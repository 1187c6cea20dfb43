package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	require.Equal(t, "principlesofimperativecomputation", NormalizeName("Principles of  Imperative Computation:"))
	require.Equal(t, NormalizeName("Great Theoretical Ideas in C.S."), NormalizeName("great theoretical ideas in cs"))
}

func TestIsDigits(t *testing.T) {
	require.True(t, IsDigits("15122"))
	require.True(t, IsDigits("1"))
	require.False(t, IsDigits(""))
	require.False(t, IsDigits("Lec 1"))
	require.False(t, IsDigits("10.0"))
	require.False(t, IsDigits("١٢"))
}
