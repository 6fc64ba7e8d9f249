package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	id "automatik/pkg/domain"
	dErrors "automatik/pkg/domain-errors"
	"automatik/pkg/validation"
)

const (
	MenuRequiredMessage   = `Feld "menu" ist erforderlich.`
	UnresolvedIdentityMsg = "userId/tenantId konnten nicht ermittelt werden."
)

// Listing bounds for GET /logs.
const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// Entry records one menu visit by a user on behalf of a tenant.
type Entry struct {
	ID        uuid.UUID
	UserID    id.UserID
	TenantID  id.TenantID
	Menu      string
	CreatedAt time.Time
}

// LogRequest is the body of POST /logs. UserID and TenantID are fallbacks
// used only when the caller's assertion does not carry them.
type LogRequest struct {
	Menu     string `json:"menu" validate:"max=200"`
	UserID   *int64 `json:"userId"`
	TenantID *int64 `json:"tenantId"`
}

func (r *LogRequest) Normalize() {
	r.Menu = strings.TrimSpace(r.Menu)
}

func (r *LogRequest) Validate() error {
	if r.Menu == "" {
		return dErrors.Validation(MenuRequiredMessage, map[string]string{"menu": "is required"})
	}
	return validation.Validate(r)
}

type LogResponse struct {
	OK        bool      `json:"ok"`
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}

func ToLogResponse(e *Entry) *LogResponse {
	return &LogResponse{OK: true, ID: e.ID.String(), CreatedAt: e.CreatedAt}
}

type EntryResponse struct {
	ID        string      `json:"id"`
	UserID    id.UserID   `json:"userId"`
	TenantID  id.TenantID `json:"tenantId"`
	Menu      string      `json:"menu"`
	CreatedAt time.Time   `json:"createdAt"`
}

type ListResponse struct {
	Logs []EntryResponse `json:"logs"`
}

func ToListResponse(entries []*Entry) *ListResponse {
	out := &ListResponse{Logs: make([]EntryResponse, 0, len(entries))}
	for _, e := range entries {
		out.Logs = append(out.Logs, EntryResponse{
			ID:        e.ID.String(),
			UserID:    e.UserID,
			TenantID:  e.TenantID,
			Menu:      e.Menu,
			CreatedAt: e.CreatedAt,
		})
	}
	return out
}
