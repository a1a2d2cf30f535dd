package models

import "time"

const (
	GoalStatusActive    = "active"
	GoalStatusCompleted = "completed"
	GoalStatusAbandoned = "abandoned"
)

var GoalStatuses = []string{GoalStatusActive, GoalStatusCompleted, GoalStatusAbandoned}

type Goal struct {
	ID            int64      `json:"id"`
	UserID        int64      `json:"user_id"`
	GoalName      string     `json:"goal_name"`
	MetricType    string     `json:"metric_type"`
	TargetValue   float64    `json:"target_value"`
	BaselineValue *float64   `json:"baseline_value"`
	Unit          string     `json:"unit"`
	StartDate     time.Time  `json:"start_date"`
	EndDate       *time.Time `json:"end_date"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type GoalMilestone struct {
	ID             int64      `json:"id"`
	GoalID         int64      `json:"goal_id"`
	MilestoneName  string     `json:"milestone_name"`
	MilestoneValue float64    `json:"milestone_value"`
	TargetDate     *time.Time `json:"target_date"`
	Achieved       bool       `json:"achieved"`
	AchievedAt     *time.Time `json:"achieved_at"`
	CreatedAt      time.Time  `json:"created_at"`
}

type GoalDetail struct {
	Goal
	Milestones []GoalMilestone `json:"milestones"`
}

type GoalPatch struct {
	GoalName      Optional[string]  `json:"goal_name"`
	MetricType    Optional[string]  `json:"metric_type"`
	TargetValue   Optional[float64] `json:"target_value"`
	BaselineValue Optional[float64] `json:"baseline_value"`
	Unit          Optional[string]  `json:"unit"`
	StartDate     Optional[string]  `json:"start_date"`
	EndDate       Optional[string]  `json:"end_date"`
	Status        Optional[string]  `json:"status"`
}

type MilestonePatch struct {
	MilestoneName  Optional[string]  `json:"milestone_name"`
	MilestoneValue Optional[float64] `json:"milestone_value"`
	TargetDate     Optional[string]  `json:"target_date"`
	Achieved       Optional[bool]    `json:"achieved"`
}
