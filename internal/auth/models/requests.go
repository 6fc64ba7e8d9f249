package models

import (
	"strings"

	"automatik/pkg/validation"
)

// LoginRequest is the body of POST /auth/login. Path is the location the
// caller wants to land on after login.
type LoginRequest struct {
	Email    string  `json:"email"    validate:"required,email,max=254"`
	Password string  `json:"password" validate:"required"`
	Path     *string `json:"path"     validate:"omitempty,max=2048"`
}

func (r *LoginRequest) Normalize() {
	if r == nil {
		return
	}
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

func (r *LoginRequest) Validate() error {
	return validation.Validate(r)
}
