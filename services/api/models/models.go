package models

import "time"

// Reading is a single stored noise/stress observation.
type Reading struct {
	ID          int64     `json:"id"`
	GridCell    string    `json:"gridCell"`
	StressScore float64   `json:"stressScore"`
	Timestamp   time.Time `json:"timestamp"`
}

// HeatmapCell summarises every reading that shares a grid cell.
type HeatmapCell struct {
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	AverageStress float64 `json:"averageStress"`
	Count         int     `json:"count"`
}

// Submission is a caller-supplied observation before quantization.
type Submission struct {
	Latitude    float64
	Longitude   float64
	StressScore float64
}
