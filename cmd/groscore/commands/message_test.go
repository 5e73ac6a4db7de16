package commands

import (
	"testing"

	"github.com/stretchr/testify/require"

	"groscore/internal/domain"
)

func TestParseCode(t *testing.T) {
	for in, want := range map[string]domain.Code{
		"GET":  domain.CodeGET,
		"post": domain.CodePOST,
		"0.05": domain.CodeFETCH,
		"2.04": domain.CodeChanged,
		"4.01": domain.CodeUnauthorized,
	} {
		got, err := parseCode(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}
	for _, in := range []string{"", "PATCHY", "8.00", "2.40", "x.y"} {
		_, err := parseCode(in)
		require.Error(t, err, in)
	}
}
