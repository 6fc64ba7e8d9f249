package guard

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeToken(payload string) string {
	enc := base64.RawURLEncoding
	return enc.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`)) + "." +
		enc.EncodeToString([]byte(payload)) + ".signature"
}

func TestDecodeClaims(t *testing.T) {
	t.Run("full payload", func(t *testing.T) {
		claims, err := DecodeClaims(makeToken(`{"sub":"101","role":"tenant-member","tenantId":201,"exp":1700000000}`))
		require.NoError(t, err)
		assert.Equal(t, "101", claims.Subject)
		assert.Equal(t, "tenant-member", claims.Role)
		require.NotNil(t, claims.TenantID)
		assert.Equal(t, int64(201), *claims.TenantID)
		require.NotNil(t, claims.ExpiresAt)
		assert.Equal(t, int64(1700000000), claims.ExpiresAt.Unix())
	})

	t.Run("numeric subject and null tenant", func(t *testing.T) {
		claims, err := DecodeClaims(makeToken(`{"sub":7,"role":"admin","tenantId":null}`))
		require.NoError(t, err)
		assert.Equal(t, "7", claims.Subject)
		assert.Nil(t, claims.TenantID)
		assert.Nil(t, claims.ExpiresAt)
	})

	t.Run("non-numeric exp is ignored", func(t *testing.T) {
		claims, err := DecodeClaims(makeToken(`{"sub":"1","role":"admin","exp":"tomorrow"}`))
		require.NoError(t, err)
		assert.Nil(t, claims.ExpiresAt)
	})

	t.Run("null exp never expires", func(t *testing.T) {
		claims, err := DecodeClaims(makeToken(`{"sub":"1","role":"admin","tenantId":null,"exp":null}`))
		require.NoError(t, err)
		assert.Nil(t, claims.TenantID)
		assert.Nil(t, claims.ExpiresAt)
		assert.False(t, claims.Expired(time.Now()))
	})

	t.Run("exp beyond int64 never expires", func(t *testing.T) {
		claims, err := DecodeClaims(makeToken(`{"sub":"1","role":"admin","exp":1e300}`))
		require.NoError(t, err)
		assert.Nil(t, claims.ExpiresAt)
		assert.False(t, claims.Expired(time.Now()))
	})

	t.Run("exp far in the past is expired", func(t *testing.T) {
		claims, err := DecodeClaims(makeToken(`{"sub":"1","role":"admin","exp":-1e300}`))
		require.NoError(t, err)
		assert.True(t, claims.Expired(time.Now()))
	})

	t.Run("padded standard alphabet", func(t *testing.T) {
		payload := base64.StdEncoding.EncodeToString([]byte(`{"sub":"1","role":"admin"}`))
		claims, err := DecodeClaims("h." + payload + ".s")
		require.NoError(t, err)
		assert.Equal(t, "1", claims.Subject)
	})

	t.Run("two segments suffice", func(t *testing.T) {
		token := makeToken(`{"sub":"1","role":"admin"}`)
		_, err := DecodeClaims(token[:len(token)-len(".signature")])
		require.NoError(t, err)
	})

	malformed := map[string]string{
		"empty":          "",
		"single segment": "abc",
		"empty payload":  "abc.",
		"not base64":     "abc.%%%.def",
		"not json":       "abc." + base64.RawURLEncoding.EncodeToString([]byte("nope")) + ".def",
		"json array":     "abc." + base64.RawURLEncoding.EncodeToString([]byte("[1,2]")) + ".def",
	}
	for name, token := range malformed {
		t.Run("malformed "+name, func(t *testing.T) {
			_, err := DecodeClaims(token)
			assert.ErrorIs(t, err, ErrMalformedToken)
		})
	}

	t.Run("missing subject", func(t *testing.T) {
		_, err := DecodeClaims(makeToken(`{"role":"admin"}`))
		assert.ErrorIs(t, err, ErrMissingClaim)
	})

	t.Run("missing role", func(t *testing.T) {
		_, err := DecodeClaims(makeToken(`{"sub":"1"}`))
		assert.ErrorIs(t, err, ErrMissingClaim)
	})
}

func TestClaimsExpired(t *testing.T) {
	exp := time.Unix(1000, 0)
	claims := &Claims{ExpiresAt: &exp}

	assert.False(t, claims.Expired(time.Unix(999, 0)))
	assert.True(t, claims.Expired(time.Unix(1000, 0)), "expiry instant itself is expired")
	assert.True(t, claims.Expired(time.Unix(1001, 0)))
	assert.False(t, (&Claims{}).Expired(time.Unix(1<<40, 0)), "no exp never expires")
}
