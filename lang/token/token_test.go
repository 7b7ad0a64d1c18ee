package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindString(t *testing.T) {
	for k := Kind(0); k < maxKind; k++ {
		require.NotEmpty(t, k.String())
	}
	require.Contains(t, Kind(127).String(), "invalid")
}

func TestLookupIdent(t *testing.T) {
	for k := kwStart; k <= kwEnd; k++ {
		require.Equal(t, k, LookupIdent(k.String()))
	}
	require.Equal(t, IDENT, LookupIdent("sum"))
	require.Equal(t, IDENT, LookupIdent("printer"))
}

func TestTokenString(t *testing.T) {
	require.Equal(t, "identifier", Token{Kind: IDENT}.String())
	require.Equal(t, `identifier "x"`, Token{Kind: IDENT, Lexeme: "x"}.String())
}
