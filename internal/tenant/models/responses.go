package models

import id "automatik/pkg/domain"

// TenantSummary is the directory entry returned to admins.
type TenantSummary struct {
	ID           id.TenantID `json:"id"`
	Slug         string      `json:"slug"`
	Name         string      `json:"name"`
	RedirectPath string      `json:"redirectPath"`
}

type TenantListResponse struct {
	Tenants []TenantSummary `json:"tenants"`
}

func ToSummary(t *Tenant) TenantSummary {
	return TenantSummary{
		ID:           t.ID,
		Slug:         t.Slug,
		Name:         t.Name,
		RedirectPath: t.RedirectPath,
	}
}

// ToListResponse keeps the order of tenants and never yields a null list.
func ToListResponse(tenants []*Tenant) TenantListResponse {
	out := TenantListResponse{Tenants: make([]TenantSummary, 0, len(tenants))}
	for _, t := range tenants {
		out.Tenants = append(out.Tenants, ToSummary(t))
	}
	return out
}
