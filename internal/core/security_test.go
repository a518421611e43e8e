// AngelaMos | 2026
// security_test.go

package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSecureToken(t *testing.T) {
	a, err := GenerateSecureToken(32)
	require.NoError(t, err)
	b, err := GenerateSecureToken(32)
	require.NoError(t, err)

	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}

func TestHashTokenDeterministic(t *testing.T) {
	hash := HashToken("some-token")

	assert.Len(t, hash, 64)
	assert.Equal(t, hash, HashToken("some-token"))
	assert.NotEqual(t, hash, HashToken("other-token"))
	assert.True(t, CompareTokenHash("some-token", hash))
	assert.False(t, CompareTokenHash("other-token", hash))
}

func TestHMACSignVerify(t *testing.T) {
	key := []byte("signing-key")

	sig := SignHMAC(key, "payload")

	assert.True(t, VerifyHMAC(key, "payload", sig))
	assert.False(t, VerifyHMAC(key, "payload2", sig))
	assert.False(t, VerifyHMAC([]byte("other-key"), "payload", sig))
	assert.False(t, VerifyHMAC(key, "payload", sig+"x"))
	assert.False(t, VerifyHMAC(key, "payload", ""))
}
