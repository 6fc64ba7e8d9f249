package device

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescribe(t *testing.T) {
	t.Run("desktop browser", func(t *testing.T) {
		label := Describe("Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0")
		assert.True(t, strings.HasPrefix(label, "Firefox on "), label)
		assert.Contains(t, label, "Windows")
	})

	t.Run("empty header", func(t *testing.T) {
		assert.Equal(t, "Unknown Device", Describe("  "))
	})

	t.Run("oversized header", func(t *testing.T) {
		assert.Equal(t, "Unknown Device", Describe(strings.Repeat("a", MaxUserAgentLength+1)))
	})
}
