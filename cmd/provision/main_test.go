package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	t.Run("tenant defaults", func(t *testing.T) {
		o, err := parseFlags([]string{
			"-email", "barak@test.de", "-password", "barak2025", "-username", "barak", "-tenant", " Klees ",
		})
		require.NoError(t, err)
		assert.Equal(t, "klees", o.tenant)
		assert.Equal(t, "klees", o.tenantName)
		assert.Equal(t, "/klees", o.tenantTarget)
		assert.Equal(t, "tenant-member", o.role)
		assert.True(t, o.migrate)
	})

	t.Run("explicit tenant details", func(t *testing.T) {
		o, err := parseFlags([]string{
			"-email", "a@b.de", "-password", "x", "-username", "a",
			"-tenant", "oguz", "-tenant-name", "Oguz", "-tenant-redirect", "/oguz/start",
		})
		require.NoError(t, err)
		assert.Equal(t, "Oguz", o.tenantName)
		assert.Equal(t, "/oguz/start", o.tenantTarget)
	})

	t.Run("admin without tenant", func(t *testing.T) {
		o, err := parseFlags([]string{"-email", "a@b.de", "-password", "x", "-username", "a", "-role", "admin"})
		require.NoError(t, err)
		assert.Empty(t, o.tenant)
		assert.Empty(t, o.tenantName)
	})

	t.Run("missing required flags", func(t *testing.T) {
		_, err := parseFlags([]string{"-username", "a"})
		require.Error(t, err)
		assert.Equal(t, "missing required flags: -email, -password", err.Error())
	})
}
