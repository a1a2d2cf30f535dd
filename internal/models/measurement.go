package models

import "time"

type BodyMeasurement struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	MetricType string    `json:"metric_type"`
	Value      float64   `json:"value"`
	Unit       string    `json:"unit"`
	MeasuredAt time.Time `json:"measured_at"`
	Notes      *string   `json:"notes"`
	CreatedAt  time.Time `json:"created_at"`
}

type MeasurementPatch struct {
	Value Optional[float64] `json:"value"`
	Notes Optional[string]  `json:"notes"`
}
