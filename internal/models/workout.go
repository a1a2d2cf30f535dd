package models

import "time"

const (
	WorkoutTypeStrength    = "strength"
	WorkoutTypeCardio      = "cardio"
	WorkoutTypeFlexibility = "flexibility"
	WorkoutTypeMixed       = "mixed"

	WorkoutStatusPlanned   = "planned"
	WorkoutStatusCompleted = "completed"
	WorkoutStatusSkipped   = "skipped"

	MediaTypeImage = "image"
	MediaTypeVideo = "video"
)

var (
	WorkoutTypes    = []string{WorkoutTypeStrength, WorkoutTypeCardio, WorkoutTypeFlexibility, WorkoutTypeMixed}
	WorkoutStatuses = []string{WorkoutStatusPlanned, WorkoutStatusCompleted, WorkoutStatusSkipped}
)

type Workout struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"user_id"`
	WorkoutDatetime time.Time `json:"workout_datetime"`
	WorkoutType     string    `json:"workout_type"`
	DurationMinutes *int      `json:"duration_minutes"`
	Notes           *string   `json:"notes"`
	Tags            []string  `json:"tags"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type StrengthExercise struct {
	ID           int64     `json:"id"`
	WorkoutID    int64     `json:"workout_id"`
	ExerciseName string    `json:"exercise_name"`
	Sets         *int      `json:"sets"`
	Reps         *int      `json:"reps"`
	WeightKG     *float64  `json:"weight_kg"`
	RPE          *int      `json:"rpe"`
	Notes        *string   `json:"notes"`
	OrderIndex   int       `json:"order_index"`
	CreatedAt    time.Time `json:"created_at"`
}

type CardioActivity struct {
	ID              int64     `json:"id"`
	WorkoutID       int64     `json:"workout_id"`
	ActivityType    string    `json:"activity_type"`
	DistanceKM      *float64  `json:"distance_km"`
	DurationMinutes *int      `json:"duration_minutes"`
	AvgPaceMinPerKM *float64  `json:"avg_pace_min_per_km"`
	AvgHeartRate    *int      `json:"avg_heart_rate"`
	MaxHeartRate    *int      `json:"max_heart_rate"`
	CaloriesBurned  *int      `json:"calories_burned"`
	Notes           *string   `json:"notes"`
	CreatedAt       time.Time `json:"created_at"`
}

type WorkoutMedia struct {
	ID            int64     `json:"id"`
	WorkoutID     int64     `json:"workout_id"`
	MediaType     string    `json:"media_type"`
	BlobURL       string    `json:"blob_url"`
	ThumbnailURL  *string   `json:"thumbnail_url"`
	FileSizeBytes *int64    `json:"file_size_bytes"`
	CreatedAt     time.Time `json:"created_at"`
}

type WorkoutDetail struct {
	Workout
	StrengthExercises []StrengthExercise `json:"strength_exercises"`
	CardioActivities  []CardioActivity   `json:"cardio_activities"`
	Media             []WorkoutMedia     `json:"media"`
}

type WorkoutPatch struct {
	WorkoutDatetime Optional[time.Time] `json:"workout_datetime"`
	WorkoutType     Optional[string]    `json:"workout_type"`
	DurationMinutes Optional[int]       `json:"duration_minutes"`
	Notes           Optional[string]    `json:"notes"`
	Tags            Optional[[]string]  `json:"tags"`
	Status          Optional[string]    `json:"status"`
}
