package models

import "time"

const (
	TenantTypePublic     = "Public"
	TenantTypeGym        = "Gym"
	TenantTypeCorporate  = "Corporate"
	TenantTypeUniversity = "University"
)

var TenantTypes = []string{TenantTypePublic, TenantTypeGym, TenantTypeCorporate, TenantTypeUniversity}

type Tenant struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type TenantConfig struct {
	ID           int64          `json:"id"`
	TenantID     int64          `json:"tenant_id"`
	Branding     map[string]any `json:"branding"`
	FeatureFlags map[string]any `json:"feature_flags"`
	UserPolicies map[string]any `json:"user_policies"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

type TenantDetail struct {
	Tenant
	Config *TenantConfig `json:"config,omitempty"`
}

type User struct {
	ID           int64      `json:"id"`
	TenantID     int64      `json:"tenant_id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	IsAdmin      bool       `json:"is_admin"`
	IsActive     bool       `json:"is_active"`
	LastLogin    *time.Time `json:"last_login"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type UserDetail struct {
	User
	Profile                *UserProfile            `json:"profile"`
	NotificationPreference *NotificationPreference `json:"notification_preference"`
}

type UserStats struct {
	TotalUsers     int             `json:"total_users"`
	ActiveUsers    int             `json:"active_users"`
	InactiveUsers  int             `json:"inactive_users"`
	AdminUsers     int             `json:"admin_users"`
	RegularUsers   int             `json:"regular_users"`
	UsersPerTenant []TenantUserCnt `json:"users_per_tenant"`
}

type TenantUserCnt struct {
	TenantID   int64  `json:"tenant_id"`
	TenantName string `json:"tenant_name"`
	UserCount  int    `json:"user_count"`
}

type TenantConfigPatch struct {
	Branding     Optional[map[string]any] `json:"branding"`
	FeatureFlags Optional[map[string]any] `json:"feature_flags"`
	UserPolicies Optional[map[string]any] `json:"user_policies"`
}
