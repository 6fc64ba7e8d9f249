package string

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToSnakeCase(t *testing.T) {
	cases := map[string]string{
		"Email":        "email",
		"RedirectPath": "redirect_path",
		"TenantID":     "tenant_id",
		"HTTPStatus":   "http_status",
		"menu":         "menu",
	}
	for in, want := range cases {
		assert.Equal(t, want, ToSnakeCase(in), in)
	}
}
