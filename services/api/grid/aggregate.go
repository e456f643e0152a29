package grid

import (
	"sort"

	"github.com/02loveslollipop/noisemap/services/api/models"
)

type cellTotals struct {
	sum    float64
	scaled float64 // sum of score/count, used when sum overflows
	count  int
}

func (t *cellTotals) mean() float64 {
	if finite(t.sum) {
		return t.sum / float64(t.count)
	}
	return t.scaled
}

// Aggregate groups readings by grid cell and reduces each group to its
// center, mean stress score and sample count. The result is sorted by grid
// cell key so repeated calls over the same snapshot are identical.
func Aggregate(readings []models.Reading) ([]models.HeatmapCell, error) {
	totals := make(map[string]*cellTotals)
	keys := make([]string, 0)
	for _, r := range readings {
		t, ok := totals[r.GridCell]
		if !ok {
			t = &cellTotals{}
			totals[r.GridCell] = t
			keys = append(keys, r.GridCell)
		}
		t.sum += r.StressScore
		t.count++
	}
	sort.Strings(keys)

	overflow := false
	for _, t := range totals {
		if !finite(t.sum) {
			overflow = true
			break
		}
	}
	if overflow {
		for _, r := range readings {
			if t := totals[r.GridCell]; !finite(t.sum) {
				t.scaled += r.StressScore / float64(t.count)
			}
		}
	}

	cells := make([]models.HeatmapCell, 0, len(keys))
	for _, key := range keys {
		lat, lon, err := ParseKey(key)
		if err != nil {
			return nil, err
		}
		t := totals[key]
		cells = append(cells, models.HeatmapCell{
			Latitude:      lat,
			Longitude:     lon,
			AverageStress: t.mean(),
			Count:         t.count,
		})
	}
	return cells, nil
}
