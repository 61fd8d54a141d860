package crypto

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSecureRandomString(t *testing.T) {
	a, err := GenerateSecureRandomString(32)
	require.NoError(t, err)
	b, err := GenerateSecureRandomString(32)
	require.NoError(t, err)

	assert.Len(t, a, base64.RawURLEncoding.EncodedLen(32))
	assert.NotEqual(t, a, b)
	assert.NotContains(t, a, "=")

	decoded, err := base64.RawURLEncoding.DecodeString(a)
	require.NoError(t, err)
	assert.Len(t, decoded, 32)
}

func TestGenerateSecureRandomString_InvalidLength(t *testing.T) {
	_, err := GenerateSecureRandomString(0)
	assert.Error(t, err)
}
