package models

import (
	tenantmodels "automatik/internal/tenant/models"
	id "automatik/pkg/domain"
)

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token        string      `json:"token"`
	User         UserSummary `json:"user"`
	RedirectPath string      `json:"redirectPath"`
}

// UserSummary is the client-cached view of the logged-in user.
type UserSummary struct {
	ID       id.UserID      `json:"id"`
	Username string         `json:"username"`
	Email    string         `json:"email"`
	Role     Role           `json:"role"`
	Tenant   *TenantSummary `json:"tenant"`
}

type TenantSummary struct {
	ID           id.TenantID `json:"id"`
	Slug         string      `json:"slug"`
	RedirectPath string      `json:"redirectPath"`
}

// ToUserSummary flattens a user for the login response. Users without a
// tenant serialize "tenant": null.
func ToUserSummary(u *User) UserSummary {
	return UserSummary{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
		Tenant:   toTenantSummary(u.Tenant),
	}
}

func toTenantSummary(t *tenantmodels.Tenant) *TenantSummary {
	if t == nil {
		return nil
	}
	return &TenantSummary{ID: t.ID, Slug: t.Slug, RedirectPath: t.RedirectPath}
}

// UserCountResponse is returned by GET /users/count.
type UserCountResponse struct {
	Count int `json:"count"`
}
