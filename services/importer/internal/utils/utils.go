package utils

import (
	"fmt"
	"math"

	"github.com/02loveslollipop/noisemap/services/api/grid"
	"github.com/02loveslollipop/noisemap/services/importer/internal/models"
)

// BuildReadingRows quantizes feed entries into insertable rows. Entries with
// a missing or non-finite value are returned as skipped.
func BuildReadingRows(feed []models.FeedReading) (rows []models.ReadingRow, skipped []models.FeedReading) {
	rows = make([]models.ReadingRow, 0, len(feed))
	for _, fr := range feed {
		lat := NormalizeValue(fr.Latitude)
		lon := NormalizeValue(fr.Longitude)
		score := NormalizeValue(fr.StressScore)
		if score == nil {
			score = NormalizeValue(fr.LegacyStressScore)
		}
		if lat == nil || lon == nil || score == nil {
			skipped = append(skipped, fr)
			continue
		}
		rows = append(rows, models.ReadingRow{
			GridCell:    grid.Quantize(*lat, *lon).String(),
			StressScore: *score,
		})
	}
	return rows, skipped
}

// NormalizeValue drops missing and non-finite values.
func NormalizeValue(v *float64) *float64 {
	if v == nil {
		return nil
	}
	if math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil
	}
	val := *v
	return &val
}

// ValuePtrString prints pointer values for logging.
func ValuePtrString(v *float64) string {
	if v == nil {
		return "null"
	}
	return fmt.Sprintf("%.3f", *v)
}
