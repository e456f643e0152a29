package models

// FeedReading is one entry of an import file. Fields are pointers so that
// missing values can be told apart from zero.
type FeedReading struct {
	Latitude          *float64 `json:"latitude"`
	Longitude         *float64 `json:"longitude"`
	StressScore       *float64 `json:"stressScore"`
	LegacyStressScore *float64 `json:"stress_score"`
}

// ReadingRow is a quantized reading ready for insertion.
type ReadingRow struct {
	GridCell    string
	StressScore float64
}
