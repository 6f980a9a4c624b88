package security

import (
	"strings"
	"testing"

	"github.com/courierlabs/robocourier-backend/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     8,
		ArgonKeyLen:      16,
	}
}

func TestHashAndVerify(t *testing.T) {
	hash, err := HashPassword("hunter2", testConfig())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"))

	match, err := VerifyPassword("hunter2", hash)
	require.NoError(t, err)
	assert.True(t, match)

	match, err = VerifyPassword("wrong", hash)
	require.NoError(t, err)
	assert.False(t, match)
}

func TestHashIsSalted(t *testing.T) {
	first, err := HashPassword("hunter2", testConfig())
	require.NoError(t, err)
	second, err := HashPassword("hunter2", testConfig())
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestEmptyPasswordRejected(t *testing.T) {
	_, err := HashPassword("", testConfig())
	assert.Error(t, err)
}

func TestVerifyMalformedHash(t *testing.T) {
	_, err := VerifyPassword("hunter2", "not-a-hash")
	assert.ErrorIs(t, err, ErrInvalidHash)
}

func TestGenerateToken(t *testing.T) {
	token, err := GenerateToken(10)
	require.NoError(t, err)
	assert.Len(t, token, 10)

	for _, r := range token {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
		assert.True(t, isAlnum, "unexpected rune %q", r)
	}

	other, err := GenerateToken(10)
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}

func TestGenerateTokenRejectsNonPositiveLength(t *testing.T) {
	_, err := GenerateToken(0)
	assert.Error(t, err)
	_, err = GenerateToken(-3)
	assert.Error(t, err)
}
