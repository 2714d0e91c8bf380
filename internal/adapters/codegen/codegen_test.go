package codegen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerator_Generate(t *testing.T) {
	gen := NewGenerator()

	seen := make(map[string]struct{})
	for i := 0; i < 500; i++ {
		code, err := gen.Generate()
		require.NoError(t, err)
		assert.Len(t, code, codeLength)
		for _, c := range code {
			assert.True(t, strings.ContainsRune(codeAlphabet, c), "unexpected character %q in code %q", c, code)
		}
		seen[code] = struct{}{}
	}
	// 500 draws from ~1 billion combinations should not all collapse.
	assert.Greater(t, len(seen), 490)
}

func TestGenerator_AlphabetExcludesAmbiguousCharacters(t *testing.T) {
	for _, c := range "0O1I" {
		assert.False(t, strings.ContainsRune(codeAlphabet, c), "alphabet must not contain %q", c)
	}
	assert.Len(t, codeAlphabet, 32)
}
