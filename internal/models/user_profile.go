package models

import "time"

const (
	GenderMale           = "Male"
	GenderFemale         = "Female"
	GenderOther          = "Other"
	GenderPreferNotToSay = "Prefer not to say"

	UnitMetric   = "metric"
	UnitImperial = "imperial"

	ConsentDataProcessing    = "data_processing"
	ConsentAnalytics         = "analytics"
	ConsentMarketing         = "marketing"
	ConsentThirdPartySharing = "third_party_sharing"
)

var (
	Genders         = []string{GenderMale, GenderFemale, GenderOther, GenderPreferNotToSay}
	UnitPreferences = []string{UnitMetric, UnitImperial}
	ConsentTypes    = []string{ConsentDataProcessing, ConsentAnalytics, ConsentMarketing, ConsentThirdPartySharing}
)

type UserProfile struct {
	ID             int64          `json:"id"`
	UserID         int64          `json:"user_id"`
	FullName       *string        `json:"full_name"`
	DateOfBirth    *time.Time     `json:"date_of_birth"`
	Gender         *string        `json:"gender"`
	HeightCM       *float64       `json:"height_cm"`
	UnitPreference string         `json:"unit_preference"`
	Timezone       string         `json:"timezone"`
	Language       string         `json:"language"`
	Preferences    map[string]any `json:"preferences"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

type NotificationPreference struct {
	ID               int64     `json:"id"`
	UserID           int64     `json:"user_id"`
	EmailEnabled     bool      `json:"email_enabled"`
	PushEnabled      bool      `json:"push_enabled"`
	WorkoutReminders bool      `json:"workout_reminders"`
	GoalMilestones   bool      `json:"goal_milestones"`
	StreakAlerts     bool      `json:"streak_alerts"`
	QuietHoursStart  *string   `json:"quiet_hours_start"`
	QuietHoursEnd    *string   `json:"quiet_hours_end"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type UserConsent struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"user_id"`
	ConsentType string     `json:"consent_type"`
	Granted     bool       `json:"granted"`
	Version     string     `json:"version"`
	GrantedAt   *time.Time `json:"granted_at"`
	RevokedAt   *time.Time `json:"revoked_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ProfilePatch only touches fields whose Optional is Set.
type ProfilePatch struct {
	FullName       Optional[string]         `json:"full_name"`
	DateOfBirth    Optional[string]         `json:"date_of_birth"`
	Gender         Optional[string]         `json:"gender"`
	HeightCM       Optional[float64]        `json:"height_cm"`
	UnitPreference Optional[string]         `json:"unit_preference"`
	Timezone       Optional[string]         `json:"timezone"`
	Language       Optional[string]         `json:"language"`
	Preferences    Optional[map[string]any] `json:"preferences"`
}

type NotificationPatch struct {
	EmailEnabled     Optional[bool]   `json:"email_enabled"`
	PushEnabled      Optional[bool]   `json:"push_enabled"`
	WorkoutReminders Optional[bool]   `json:"workout_reminders"`
	GoalMilestones   Optional[bool]   `json:"goal_milestones"`
	StreakAlerts     Optional[bool]   `json:"streak_alerts"`
	QuietHoursStart  Optional[string] `json:"quiet_hours_start"`
	QuietHoursEnd    Optional[string] `json:"quiet_hours_end"`
}
