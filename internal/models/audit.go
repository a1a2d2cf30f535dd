package models

import "time"

const (
	AuditActionCreate     = "create"
	AuditActionUpdate     = "update"
	AuditActionDelete     = "delete"
	AuditActionLogin      = "login"
	AuditActionRegister   = "register"
	AuditActionActivate   = "activate"
	AuditActionDeactivate = "deactivate"
)

type AuditLog struct {
	ID         int64          `json:"id"`
	UserID     *int64         `json:"user_id"`
	ActionType string         `json:"action_type"`
	EntityType string         `json:"entity_type"`
	EntityID   *int64         `json:"entity_id"`
	OldValue   map[string]any `json:"old_value"`
	NewValue   map[string]any `json:"new_value"`
	IPAddress  *string        `json:"ip_address"`
	UserAgent  *string        `json:"user_agent"`
	CreatedAt  time.Time      `json:"created_at"`
}

// RequestMeta is the client metadata captured on audited requests.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}
