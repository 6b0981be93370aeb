package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCode(t *testing.T) {
	code, hash, err := GenerateCode()
	require.NoError(t, err)

	assert.Len(t, code, 32) // 16 random bytes hex-encoded
	assert.NotEqual(t, code, hash)
	assert.NoError(t, VerifyCode(hash, code))
}

func TestVerifyCode_Mismatch(t *testing.T) {
	_, hash, err := GenerateCode()
	require.NoError(t, err)

	assert.Error(t, VerifyCode(hash, "not-the-code"))
	assert.Error(t, VerifyCode(hash, ""))
}

func TestGenerateCode_Unique(t *testing.T) {
	a, _, err := GenerateCode()
	require.NoError(t, err)
	b, _, err := GenerateCode()
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}
