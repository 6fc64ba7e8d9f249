package secrets

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	dErrors "automatik/pkg/domain-errors"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := HashWithCost("oguz123", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NoError(t, Verify("oguz123", hash))

	err = Verify("wrong", hash)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidCredentials))
}

func TestHashUsesDefaultCost(t *testing.T) {
	hash, err := Hash("test2025")
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, DefaultCost, cost)
}

func TestHashRejectsBadInput(t *testing.T) {
	_, err := Hash("")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = Hash(strings.Repeat("x", 73))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestVerifyMalformedHash(t *testing.T) {
	err := Verify("secret", "not-a-bcrypt-hash")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
}

func TestGenerate(t *testing.T) {
	a, err := Generate()
	require.NoError(t, err)
	b, err := Generate()
	require.NoError(t, err)
	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}
