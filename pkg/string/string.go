package string

import (
	"strings"
	"unicode"
)

// ToSnakeCase turns a Go field name into the snake_case key used in
// validation detail, keeping acronyms together ("RedirectPath" -> "redirect_path",
// "TenantID" -> "tenant_id").
func ToSnakeCase(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) && i > 0 &&
			(unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
