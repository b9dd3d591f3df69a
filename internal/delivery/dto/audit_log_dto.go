package dto

import (
	"time"

	"clinic-scheduling/internal/domain/entity"

	"github.com/google/uuid"
)

// Request DTOs

// AuditLogQuery is the parsed query string of the admin listing.
type AuditLogQuery struct {
	UserID string `validate:"omitempty,uuid"`
	Action string `validate:"omitempty,max=100"`
	From   string `validate:"omitempty,date"`
	To     string `validate:"omitempty,date"`
	Page   int    `validate:"gte=1"`
	Limit  int    `validate:"gte=1,lte=200"`
}

// Response DTOs

type AuditLogUser struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	FullName string    `json:"full_name"`
	Role     string    `json:"role"`
}

type AuditLogResponse struct {
	ID        int64         `json:"id"`
	User      *AuditLogUser `json:"user,omitempty"`
	Action    string        `json:"action"`
	Metadata  entity.JSON   `json:"metadata"`
	CreatedAt time.Time     `json:"created_at"`
}

type AuditLogListResponse struct {
	Logs  []AuditLogResponse `json:"logs"`
	Total int64              `json:"total"`
}
